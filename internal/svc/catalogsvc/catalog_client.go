package catalogsvc

import (
	"context"

	"github.com/mkrupp/homecase-console/internal/domain"
)

// Client is the typed surface of the catalog API.
//
// Every operation returns either a Result, holding the Success payload or the
// server's Domain Failure, or an error wrapping domain.ErrTransportFailure
// when no tagged result could be read. The two never occur together.
type Client interface {
	FindProducts(ctx context.Context) (domain.Result[[]domain.Product], error)
	FindProductByID(ctx context.Context, id string) (domain.Result[domain.Product], error)
	CreateProduct(ctx context.Context, id string, in domain.ProductInput) (domain.Result[domain.Product], error)
	UpdateProduct(ctx context.Context, id string, in domain.ProductInput) (domain.Result[domain.Product], error)
	DeleteProduct(ctx context.Context, id string) (domain.Result[domain.Product], error)
	ActivateProduct(ctx context.Context, id string) (domain.Result[domain.Product], error)
	DeactivateProduct(ctx context.Context, id string) (domain.Result[domain.Product], error)

	FindOrders(ctx context.Context) (domain.Result[[]domain.Order], error)
	FindOrderByID(ctx context.Context, id string) (domain.Result[domain.Order], error)
	CreateOrder(ctx context.Context, in domain.OrderInput) (domain.Result[domain.Order], error)
	MarkOrderAsReceived(ctx context.Context, id string) (domain.Result[domain.Order], error)
	CancelOrder(ctx context.Context, id string) (domain.Result[domain.Order], error)
}

// Operation names as they appear in the GraphQL schema.
const (
	OpFindProducts        = "findProducts"
	OpFindProductByID     = "findProductById"
	OpCreateProduct       = "createProduct"
	OpUpdateProduct       = "updateProduct"
	OpDeleteProduct       = "deleteProduct"
	OpActivateProduct     = "activateProduct"
	OpDeactivateProduct   = "deactivateProduct"
	OpFindOrders          = "findOrders"
	OpFindOrderByID       = "findOrderById"
	OpCreateOrder         = "createOrder"
	OpMarkOrderAsReceived = "markOrderAsReceived"
	OpCancelOrder         = "cancelOrder"
)

// Union member names reported in __typename.
const (
	TypenameProduct = "Product"
	TypenameOrder   = "Order"
	TypenameError   = "Error"
)
