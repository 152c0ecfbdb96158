package consolesvc_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/homecase-console/internal/domain"
	"github.com/mkrupp/homecase-console/internal/svc/catalogsvc"
	"github.com/mkrupp/homecase-console/internal/svc/consolesvc"
)

// staticSessions implements authsvc.SessionReader for testing.
type staticSessions struct {
	session domain.Session
}

func (s staticSessions) Session(context.Context) (domain.Session, error) {
	return s.session, nil
}

var (
	adminSession = staticSessions{session: domain.NewSession("t", domain.RoleAdmin)}
	userSession  = staticSessions{session: domain.NewSession("t", domain.RoleUser)}
)

// stubCatalog implements catalogsvc.Client for testing. Unset operations panic.
type stubCatalog struct {
	catalogsvc.Client

	m        sync.Mutex
	calls    map[string]int
	products []domain.Product
	orders   []domain.Order

	createProduct func(id string, in domain.ProductInput) (domain.Result[domain.Product], error)
	findProduct   func(ctx context.Context, id string) (domain.Result[domain.Product], error)
	markReceived  func(id string) (domain.Result[domain.Order], error)
	findOrders    func() (domain.Result[[]domain.Order], error)
}

func (c *stubCatalog) record(op string) {
	c.m.Lock()
	defer c.m.Unlock()

	if c.calls == nil {
		c.calls = make(map[string]int)
	}

	c.calls[op]++
}

func (c *stubCatalog) Calls(op string) int {
	c.m.Lock()
	defer c.m.Unlock()

	return c.calls[op]
}

func (c *stubCatalog) FindProducts(context.Context) (domain.Result[[]domain.Product], error) {
	c.record(catalogsvc.OpFindProducts)

	return domain.Success(c.products), nil
}

func (c *stubCatalog) FindOrders(context.Context) (domain.Result[[]domain.Order], error) {
	c.record(catalogsvc.OpFindOrders)

	if c.findOrders != nil {
		return c.findOrders()
	}

	return domain.Success(c.orders), nil
}

func (c *stubCatalog) FindProductByID(ctx context.Context, id string) (domain.Result[domain.Product], error) {
	c.record(catalogsvc.OpFindProductByID)

	return c.findProduct(ctx, id)
}

func (c *stubCatalog) CreateProduct(_ context.Context, id string, in domain.ProductInput) (domain.Result[domain.Product], error) {
	c.record(catalogsvc.OpCreateProduct)

	return c.createProduct(id, in)
}

func (c *stubCatalog) UpdateProduct(_ context.Context, id string, in domain.ProductInput) (domain.Result[domain.Product], error) {
	c.record(catalogsvc.OpUpdateProduct)

	return domain.Success(domain.Product{ID: id, Price: in.Price, Translations: in.Translations}), nil
}

func (c *stubCatalog) ActivateProduct(_ context.Context, id string) (domain.Result[domain.Product], error) {
	c.record(catalogsvc.OpActivateProduct)

	return domain.Success(domain.Product{ID: id, IsActive: true}), nil
}

func (c *stubCatalog) DeactivateProduct(_ context.Context, id string) (domain.Result[domain.Product], error) {
	c.record(catalogsvc.OpDeactivateProduct)

	return domain.Success(domain.Product{ID: id}), nil
}

func (c *stubCatalog) MarkOrderAsReceived(_ context.Context, id string) (domain.Result[domain.Order], error) {
	c.record(catalogsvc.OpMarkOrderAsReceived)

	return c.markReceived(id)
}

func (c *stubCatalog) CreateOrder(_ context.Context, in domain.OrderInput) (domain.Result[domain.Order], error) {
	c.record(catalogsvc.OpCreateOrder)

	return domain.Success(domain.Order{ID: "o1", Status: domain.OrderStatusPending, Quantity: in.Quantity}), nil
}

func TestProductsView_CreateRefreshesListing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	stub := &stubCatalog{}
	stub.createProduct = func(id string, in domain.ProductInput) (domain.Result[domain.Product], error) {
		p := domain.Product{ID: id, Price: in.Price, IsActive: true, Translations: in.Translations}
		stub.products = append(stub.products, p)

		return domain.Success(p), nil
	}

	v := consolesvc.NewProductsView(stub, adminSession)

	outcome, err := v.Create(ctx, "", consolesvc.DefaultProductInput())
	require.NoError(t, err)
	assert.Equal(t, consolesvc.OutcomeSuccess, outcome)
	assert.Equal(t, consolesvc.Notice{Message: "¡Producto creado exitosamente!"}, v.Notice())
	assert.Equal(t, consolesvc.StatusIdle, v.Status())

	products := v.Products()
	require.Len(t, products, 1)
	assert.True(t, strings.HasPrefix(products[0].ID, "prod_"))
	assert.Equal(t, "Descripción del producto", products[0].Translations.Description())
	assert.True(t, products[0].Price.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, 1, stub.Calls(catalogsvc.OpFindProducts))
}

func TestProductsView_FailureDoesNotRefresh(t *testing.T) {
	t.Parallel()

	stub := &stubCatalog{}
	stub.createProduct = func(string, domain.ProductInput) (domain.Result[domain.Product], error) {
		return domain.Failure[domain.Product](domain.ErrorDetail{StatusCode: 409, Message: "Product already exists"}), nil
	}

	v := consolesvc.NewProductsView(stub, adminSession)

	outcome, err := v.Create(context.Background(), "p1", consolesvc.DefaultProductInput())
	require.NoError(t, err)
	assert.Equal(t, consolesvc.OutcomeFailure, outcome)
	assert.Equal(t, "Error al crear el producto: Product already exists", v.Notice().Error)
	assert.Zero(t, stub.Calls(catalogsvc.OpFindProducts))
}

func TestProductsView_TransportFailureShowsGenericMessage(t *testing.T) {
	t.Parallel()

	stub := &stubCatalog{}
	stub.createProduct = func(string, domain.ProductInput) (domain.Result[domain.Product], error) {
		return domain.Result[domain.Product]{}, errNetwork
	}

	v := consolesvc.NewProductsView(stub, adminSession)

	outcome, err := v.Create(context.Background(), "p1", consolesvc.DefaultProductInput())
	require.NoError(t, err)
	assert.Equal(t, consolesvc.OutcomeTransportFailure, outcome)
	assert.Equal(t, "Error al crear el producto.", v.Notice().Error)
	assert.NotContains(t, v.Notice().Error, errNetwork.Error())
}

func TestProductsView_MutationsRequireAdmin(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	stub := &stubCatalog{}
	v := consolesvc.NewProductsView(stub, userSession)

	outcome, err := v.Create(ctx, "p1", consolesvc.DefaultProductInput())
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Equal(t, consolesvc.OutcomeRejected, outcome)
	assert.Equal(t, consolesvc.MsgNotAllowed, v.Notice().Error)

	_, err = v.Delete(ctx, "p1")
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	assert.Zero(t, stub.Calls(catalogsvc.OpCreateProduct))
	assert.Empty(t, v.Actions(userSession.session, domain.Product{ID: "p1"}))
	assert.Equal(t,
		[]string{consolesvc.ProductActionEdit, consolesvc.ProductActionActivate, consolesvc.ProductActionDelete},
		v.Actions(adminSession.session, domain.Product{ID: "p1"}))
}

func TestProductsView_InvalidInput(t *testing.T) {
	t.Parallel()

	v := consolesvc.NewProductsView(&stubCatalog{}, adminSession)

	_, err := v.Create(context.Background(), "p1", domain.ProductInput{Price: decimal.NewFromInt(1)})
	require.ErrorIs(t, err, domain.ErrNoTranslations)
	assert.Equal(t, consolesvc.MsgInvalidProduct, v.Notice().Error)
}

func TestProductsView_EditBuffer(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	stub := &stubCatalog{products: []domain.Product{{
		ID:           "p1",
		Price:        decimal.NewFromInt(5),
		IsActive:     true,
		Translations: domain.Translations{{Language: "es", Description: "uno"}, {Language: "en", Description: "one"}},
	}}}

	v := consolesvc.NewProductsView(stub, adminSession)
	v.Load(ctx)

	require.NoError(t, v.StartEdit(ctx, "p1"))

	buf, ok := v.Editing()
	require.True(t, ok)
	assert.Equal(t, "uno", buf.Description)

	v.CancelEdit()

	_, ok = v.Editing()
	assert.False(t, ok)

	require.NoError(t, v.StartEdit(ctx, "p1"))
	v.SetEditPrice(decimal.RequireFromString("7.5"))
	v.SetEditDescription("nuevo")

	outcome, err := v.SaveEdit(ctx)
	require.NoError(t, err)
	assert.Equal(t, consolesvc.OutcomeSuccess, outcome)
	assert.Equal(t, "¡Producto actualizado exitosamente!", v.Notice().Message)

	_, ok = v.Editing()
	assert.False(t, ok)

	_, err = v.SaveEdit(ctx)
	require.Error(t, err)
	assert.Equal(t, consolesvc.MsgNoEdit, v.Notice().Error)
}

func TestProductsView_ToggleActive(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	stub := &stubCatalog{products: []domain.Product{{ID: "p1", IsActive: true}, {ID: "p2"}}}
	v := consolesvc.NewProductsView(stub, adminSession)
	v.Load(ctx)

	_, err := v.ToggleActive(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "¡Producto desactivado exitosamente!", v.Notice().Message)

	_, err = v.ToggleActive(ctx, "p2")
	require.NoError(t, err)
	assert.Equal(t, "¡Producto activado exitosamente!", v.Notice().Message)

	_, err = v.ToggleActive(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrNoProductID)

	assert.Equal(t, 1, stub.Calls(catalogsvc.OpActivateProduct))
	assert.Equal(t, 1, stub.Calls(catalogsvc.OpDeactivateProduct))
}

func TestProductsView_LateSearchDiscarded(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	started := make(chan struct{})
	release := make(chan struct{})

	stub := &stubCatalog{}
	stub.findProduct = func(_ context.Context, id string) (domain.Result[domain.Product], error) {
		if id == "slow" {
			close(started)
			<-release
		}

		return domain.Success(domain.Product{ID: id}), nil
	}

	v := consolesvc.NewProductsView(stub, adminSession)

	done := make(chan consolesvc.Outcome)

	go func() {
		outcome, _ := v.Search(ctx, "slow")
		done <- outcome
	}()

	<-started

	outcome, err := v.Search(ctx, "fast")
	require.NoError(t, err)
	assert.Equal(t, consolesvc.OutcomeSuccess, outcome)

	close(release)
	assert.Equal(t, consolesvc.OutcomeDiscarded, <-done)

	found, ok := v.SearchResult()
	require.True(t, ok)
	assert.Equal(t, "fast", found.ID)
}

func TestProductsView_ReentrantSubmitRejected(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	started := make(chan struct{})
	release := make(chan struct{})

	stub := &stubCatalog{}
	stub.createProduct = func(id string, _ domain.ProductInput) (domain.Result[domain.Product], error) {
		close(started)
		<-release

		return domain.Success(domain.Product{ID: id}), nil
	}

	v := consolesvc.NewProductsView(stub, adminSession)

	done := make(chan consolesvc.Outcome)

	go func() {
		outcome, _ := v.Create(ctx, "p1", consolesvc.DefaultProductInput())
		done <- outcome
	}()

	<-started
	assert.Equal(t, consolesvc.StatusSubmitting, v.Status())

	outcome, err := v.Create(ctx, "p2", consolesvc.DefaultProductInput())
	require.ErrorIs(t, err, consolesvc.ErrSubmissionInFlight)
	assert.Equal(t, consolesvc.OutcomeRejected, outcome)
	assert.Equal(t, consolesvc.MsgBusy, v.Notice().Error)

	close(release)
	assert.Equal(t, consolesvc.OutcomeSuccess, <-done)
	assert.Equal(t, 1, stub.Calls(catalogsvc.OpCreateProduct))
}

func TestProductsView_CloseDiscardsPending(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	started := make(chan struct{})
	release := make(chan struct{})

	stub := &stubCatalog{}
	stub.findProduct = func(_ context.Context, id string) (domain.Result[domain.Product], error) {
		close(started)
		<-release

		return domain.Success(domain.Product{ID: id}), nil
	}

	v := consolesvc.NewProductsView(stub, adminSession)

	done := make(chan consolesvc.Outcome)

	go func() {
		outcome, _ := v.Search(ctx, "p1")
		done <- outcome
	}()

	<-started
	v.Close()
	close(release)

	assert.Equal(t, consolesvc.OutcomeDiscarded, <-done)

	_, ok := v.SearchResult()
	assert.False(t, ok)
}

func TestOrdersView_LocalValidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	stub := &stubCatalog{}
	v := consolesvc.NewOrdersView(stub, userSession)

	outcome, err := v.Create(ctx, domain.OrderInput{Quantity: 1})
	require.ErrorIs(t, err, domain.ErrNoProductID)
	assert.Equal(t, consolesvc.OutcomeRejected, outcome)
	assert.Equal(t, "Por favor, selecciona un producto.", v.Notice().Error)

	_, err = v.Create(ctx, domain.OrderInput{ProductID: "p1", Quantity: 0})
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = v.Search(ctx, "")
	require.ErrorIs(t, err, domain.ErrNoOrderID)
	assert.Equal(t, "Por favor, ingresa un ID de orden.", v.Notice().Error)

	assert.Zero(t, stub.Calls(catalogsvc.OpCreateOrder))
	assert.Zero(t, stub.Calls(catalogsvc.OpFindOrderByID))
}

func TestOrdersView_LoadsOrdersAndProducts(t *testing.T) {
	t.Parallel()

	stub := &stubCatalog{
		products: []domain.Product{{ID: "p1"}},
		orders:   []domain.Order{{ID: "o1", Status: domain.OrderStatusPending}},
	}

	v := consolesvc.NewOrdersView(stub, userSession)

	assert.Equal(t, consolesvc.OutcomeSuccess, v.Load(context.Background()))
	assert.Len(t, v.Orders(), 1)
	assert.Len(t, v.Products(), 1)
	assert.Equal(t, []string{consolesvc.OrderActionReceive, consolesvc.OrderActionCancel}, v.Actions(v.Orders()[0]))
	assert.Empty(t, v.Actions(domain.Order{Status: domain.OrderStatusReceived}))
}

func TestOrdersView_LoadTransportFailure(t *testing.T) {
	t.Parallel()

	stub := &stubCatalog{products: []domain.Product{{ID: "p1"}}}
	stub.findOrders = func() (domain.Result[[]domain.Order], error) {
		return domain.Result[[]domain.Order]{}, errNetwork
	}

	v := consolesvc.NewOrdersView(stub, userSession)

	assert.Equal(t, consolesvc.OutcomeTransportFailure, v.Load(context.Background()))
	assert.Equal(t, "Error al cargar las órdenes.", v.Notice().Error)
	assert.Empty(t, v.Orders())
	assert.Empty(t, v.Products())
}

func TestOrdersView_MarkReceivedTwice(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	stub := &stubCatalog{orders: []domain.Order{{ID: "o1", Status: domain.OrderStatusPending}}}
	stub.markReceived = func(id string) (domain.Result[domain.Order], error) {
		o := stub.orders[0]

		next, err := o.Status.Transition(domain.OrderStatusReceived)
		if err != nil {
			return domain.Failure[domain.Order](domain.ErrorDetail{StatusCode: 409, Message: "Order is already RECEIVED"}), nil
		}

		stub.orders[0].Status = next

		return domain.Success(domain.Order{ID: id, Status: next}), nil
	}

	v := consolesvc.NewOrdersView(stub, userSession)

	outcome, err := v.MarkReceived(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, consolesvc.OutcomeSuccess, outcome)
	assert.Equal(t, "¡Orden marcada como recibida!", v.Notice().Message)
	assert.Equal(t, domain.OrderStatusReceived, v.Orders()[0].Status)

	outcome, err = v.MarkReceived(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, consolesvc.OutcomeFailure, outcome)
	assert.Equal(t, "Error al actualizar la orden: Order is already RECEIVED", v.Notice().Error)
}
