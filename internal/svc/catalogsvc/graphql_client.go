package catalogsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/machinebox/graphql"

	"github.com/mkrupp/homecase-console/internal/domain"
	context_ "github.com/mkrupp/homecase-console/internal/infra/context"
	"github.com/mkrupp/homecase-console/internal/infra/logging"
)

// GraphQLClientConfig holds configuration for the catalog API client.
type GraphQLClientConfig struct {
	// URL is the GraphQL endpoint
	URL string `env:"URL" default:"https://interview.appliqloud.com/graphql"`
}

// GraphQLClient implements Client over a single GraphQL endpoint.
// Authentication is added by the http.Client passed in.
type GraphQLClient struct {
	gql *graphql.Client
	log logging.Logger
	cfg GraphQLClientConfig
}

var _ Client = (*GraphQLClient)(nil)

// NewGraphQLClient creates a new GraphQLClient. If httpClient is nil,
// http.DefaultClient will be used.
func NewGraphQLClient(cfg GraphQLClientConfig, httpClient *http.Client) *GraphQLClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	log := logging.GetLogger("svc.catalogsvc.graphql_client")

	gql := graphql.NewClient(cfg.URL, graphql.WithHTTPClient(httpClient))
	gql.Log = func(s string) { log.Debug(s) }

	return &GraphQLClient{
		gql: gql,
		log: log,
		cfg: cfg,
	}
}

type variables map[string]any

// do runs one operation and returns the raw value of its data field.
func (c *GraphQLClient) do(ctx context.Context, op, document string, vars variables) (_ json.RawMessage, err error) {
	log := c.log.With("op", op)

	defer func() {
		if err != nil {
			log.DebugContext(ctx, "graphql request failed", "error", err)
		} else {
			log.DebugContext(ctx, "graphql request completed")
		}
	}()

	req := graphql.NewRequest(document)
	for k, v := range vars {
		req.Var(k, v)
	}

	var data map[string]json.RawMessage
	if err := c.gql.Run(ctx, req, &data); err != nil {
		return nil, fmt.Errorf("run %s: %w", op, err)
	}

	raw, ok := data[op]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errMissingField, op)
	}

	return raw, nil
}

func runUnion[T any](ctx context.Context, c *GraphQLClient, op, document, variant string, vars variables) (domain.Result[T], error) {
	ctx = context_.WithOperation(ctx, op)

	raw, err := c.do(ctx, op, document, vars)
	if err != nil {
		return domain.Result[T]{}, errors.Join(domain.ErrTransportFailure, err)
	}

	res, err := decodeUnion[T](raw, variant)
	if err != nil {
		c.log.DebugContext(ctx, "decode union failed", "error", err)

		return domain.Result[T]{}, errors.Join(domain.ErrTransportFailure, fmt.Errorf("%s: %w", op, err))
	}

	return res, nil
}

func runList[T any](ctx context.Context, c *GraphQLClient, op, document string) (domain.Result[[]T], error) {
	ctx = context_.WithOperation(ctx, op)

	raw, err := c.do(ctx, op, document, nil)
	if err != nil {
		return domain.Result[[]T]{}, errors.Join(domain.ErrTransportFailure, err)
	}

	res, err := decodeList[T](raw)
	if err != nil {
		c.log.DebugContext(ctx, "decode list failed", "error", err)

		return domain.Result[[]T]{}, errors.Join(domain.ErrTransportFailure, fmt.Errorf("%s: %w", op, err))
	}

	return res, nil
}

// productInputVars encodes a product input. The price is sent as a JSON
// number because the schema declares it as Float.
func productInputVars(id string, in domain.ProductInput) map[string]any {
	translations := make([]map[string]string, 0, len(in.Translations))
	for _, t := range in.Translations {
		translations = append(translations, map[string]string{
			"language":    t.Language,
			"description": t.Description,
		})
	}

	vars := map[string]any{
		"price":        in.Price.InexactFloat64(),
		"translations": translations,
	}

	if id != "" {
		vars["id"] = id
	}

	return vars
}

// FindProducts implements Client.FindProducts.
func (c *GraphQLClient) FindProducts(ctx context.Context) (domain.Result[[]domain.Product], error) {
	return runList[domain.Product](ctx, c, OpFindProducts, findProductsQuery)
}

// FindProductByID implements Client.FindProductByID.
func (c *GraphQLClient) FindProductByID(ctx context.Context, id string) (domain.Result[domain.Product], error) {
	return runUnion[domain.Product](ctx, c, OpFindProductByID, findProductByIDQuery, TypenameProduct,
		variables{"id": id})
}

// CreateProduct implements Client.CreateProduct.
func (c *GraphQLClient) CreateProduct(
	ctx context.Context,
	id string,
	in domain.ProductInput,
) (domain.Result[domain.Product], error) {
	return runUnion[domain.Product](ctx, c, OpCreateProduct, createProductMutation, TypenameProduct,
		variables{"product": productInputVars(id, in)})
}

// UpdateProduct implements Client.UpdateProduct.
func (c *GraphQLClient) UpdateProduct(
	ctx context.Context,
	id string,
	in domain.ProductInput,
) (domain.Result[domain.Product], error) {
	return runUnion[domain.Product](ctx, c, OpUpdateProduct, updateProductMutation, TypenameProduct,
		variables{"id": id, "product": productInputVars("", in)})
}

// DeleteProduct implements Client.DeleteProduct.
func (c *GraphQLClient) DeleteProduct(ctx context.Context, id string) (domain.Result[domain.Product], error) {
	return runUnion[domain.Product](ctx, c, OpDeleteProduct, deleteProductMutation, TypenameProduct,
		variables{"id": id})
}

// ActivateProduct implements Client.ActivateProduct.
func (c *GraphQLClient) ActivateProduct(ctx context.Context, id string) (domain.Result[domain.Product], error) {
	return runUnion[domain.Product](ctx, c, OpActivateProduct, activateProductMutation, TypenameProduct,
		variables{"id": id})
}

// DeactivateProduct implements Client.DeactivateProduct.
func (c *GraphQLClient) DeactivateProduct(ctx context.Context, id string) (domain.Result[domain.Product], error) {
	return runUnion[domain.Product](ctx, c, OpDeactivateProduct, deactivateProductMutation, TypenameProduct,
		variables{"id": id})
}

// FindOrders implements Client.FindOrders.
func (c *GraphQLClient) FindOrders(ctx context.Context) (domain.Result[[]domain.Order], error) {
	return runList[domain.Order](ctx, c, OpFindOrders, findOrdersQuery)
}

// FindOrderByID implements Client.FindOrderByID.
func (c *GraphQLClient) FindOrderByID(ctx context.Context, id string) (domain.Result[domain.Order], error) {
	return runUnion[domain.Order](ctx, c, OpFindOrderByID, findOrderByIDQuery, TypenameOrder,
		variables{"id": id})
}

// CreateOrder implements Client.CreateOrder.
func (c *GraphQLClient) CreateOrder(ctx context.Context, in domain.OrderInput) (domain.Result[domain.Order], error) {
	return runUnion[domain.Order](ctx, c, OpCreateOrder, createOrderMutation, TypenameOrder,
		variables{"order": map[string]any{"productId": in.ProductID, "quantity": in.Quantity}})
}

// MarkOrderAsReceived implements Client.MarkOrderAsReceived.
func (c *GraphQLClient) MarkOrderAsReceived(ctx context.Context, id string) (domain.Result[domain.Order], error) {
	return runUnion[domain.Order](ctx, c, OpMarkOrderAsReceived, markOrderAsReceivedMutation, TypenameOrder,
		variables{"id": id})
}

// CancelOrder implements Client.CancelOrder.
func (c *GraphQLClient) CancelOrder(ctx context.Context, id string) (domain.Result[domain.Order], error) {
	return runUnion[domain.Order](ctx, c, OpCancelOrder, cancelOrderMutation, TypenameOrder,
		variables{"id": id})
}
