package catalogsvc

const errorFields = `
      ... on Error {
        statusCode
        cause
        message
        context
      }`

const productFields = `
        id
        isActive
        price
        translations {
          language
          description
        }`

const orderFields = `
        id
        status
        quantity
        total
        product {` + productFields + `
        }`

const (
	findProductsQuery = `query {
  findProducts {` + productFields + `
  }
}`

	findProductByIDQuery = `query findProductById($id: String!) {
  findProductById(id: $id) {
    __typename
    ... on Product {` + productFields + `
    }` + errorFields + `
  }
}`

	createProductMutation = `mutation createProduct($product: CreateProductInput!) {
  createProduct(product: $product) {
    __typename
    ... on Product {` + productFields + `
    }` + errorFields + `
  }
}`

	updateProductMutation = `mutation updateProduct($id: String!, $product: UpdateProductInput!) {
  updateProduct(id: $id, product: $product) {
    __typename
    ... on Product {` + productFields + `
    }` + errorFields + `
  }
}`

	deleteProductMutation = `mutation deleteProduct($id: String!) {
  deleteProduct(id: $id) {
    __typename
    ... on Product {
      id
    }` + errorFields + `
  }
}`

	activateProductMutation = `mutation activateProduct($id: String!) {
  activateProduct(id: $id) {
    __typename
    ... on Product {
      id
      isActive
    }` + errorFields + `
  }
}`

	deactivateProductMutation = `mutation deactivateProduct($id: String!) {
  deactivateProduct(id: $id) {
    __typename
    ... on Product {
      id
      isActive
    }` + errorFields + `
  }
}`

	findOrdersQuery = `query {
  findOrders {` + orderFields + `
  }
}`

	findOrderByIDQuery = `query findOrderById($id: String!) {
  findOrderById(id: $id) {
    __typename
    ... on Order {` + orderFields + `
    }` + errorFields + `
  }
}`

	createOrderMutation = `mutation createOrder($order: OrderInput!) {
  createOrder(order: $order) {
    __typename
    ... on Order {` + orderFields + `
    }` + errorFields + `
  }
}`

	markOrderAsReceivedMutation = `mutation markOrderAsReceived($id: String!) {
  markOrderAsReceived(id: $id) {
    __typename
    ... on Order {
      id
      status
    }` + errorFields + `
  }
}`

	cancelOrderMutation = `mutation cancelOrder($id: String!) {
  cancelOrder(id: $id) {
    __typename
    ... on Order {
      id
      status
    }` + errorFields + `
  }
}`
)
