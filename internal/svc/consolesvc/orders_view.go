package consolesvc

import (
	"context"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/mkrupp/homecase-console/internal/domain"
	"github.com/mkrupp/homecase-console/internal/svc/authsvc"
	"github.com/mkrupp/homecase-console/internal/svc/catalogsvc"
)

// Order actions offered for PENDING orders.
const (
	OrderActionReceive = "receive"
	OrderActionCancel  = "cancel"
)

// DefaultOrderQuantity is the quantity used when none is given.
const DefaultOrderQuantity = 1

// ordersPage is what the orders view loads: the orders and the products
// they can be placed for.
type ordersPage struct {
	orders   []domain.Order
	products []domain.Product
}

// OrdersView lists, searches, creates and transitions orders.
type OrdersView struct {
	view

	client catalogsvc.Client

	orders       []domain.Order
	products     []domain.Product
	searchResult *domain.Order
}

// NewOrdersView creates an OrdersView.
func NewOrdersView(client catalogsvc.Client, sessions authsvc.SessionReader) *OrdersView {
	return &OrdersView{
		view:   newView(sessions, "orders_view"),
		client: client,
	}
}

// Load fetches orders and products concurrently. Both must succeed for the
// listing to be replaced.
func (v *OrdersView) Load(ctx context.Context) Outcome {
	return fetch(ctx, &v.view, slotList, ActionLoadOrders, v.loadPage,
		func(page ordersPage) {
			v.orders = page.orders
			v.products = page.products
		},
		nil,
	)
}

func (v *OrdersView) loadPage(ctx context.Context) (domain.Result[ordersPage], error) {
	var (
		orders   domain.Result[[]domain.Order]
		products domain.Result[[]domain.Product]
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		orders, err = v.client.FindOrders(gctx)

		return err
	})

	g.Go(func() error {
		var err error
		products, err = v.client.FindProducts(gctx)

		return err
	})

	if err := g.Wait(); err != nil {
		return domain.Result[ordersPage]{}, err
	}

	if d, failed := orders.Detail(); failed {
		return domain.Failure[ordersPage](d), nil
	}

	if d, failed := products.Detail(); failed {
		return domain.Failure[ordersPage](d), nil
	}

	o, _ := orders.Value()
	p, _ := products.Value()

	return domain.Success(ordersPage{orders: o, products: p}), nil
}

// Search looks an order up by id.
func (v *OrdersView) Search(ctx context.Context, id string) (Outcome, error) {
	if id == "" {
		return v.rejectInput(ctx, MsgEnterOrderID, domain.ErrNoOrderID)
	}

	return fetch(ctx, &v.view, slotSearch, ActionSearchOrder,
		func(ctx context.Context) (domain.Result[domain.Order], error) {
			return v.client.FindOrderByID(ctx, id)
		},
		func(o domain.Order) { v.searchResult = &o },
		func() { v.searchResult = nil },
	), nil
}

// Create places an order and refreshes the listing on success.
func (v *OrdersView) Create(ctx context.Context, in domain.OrderInput) (Outcome, error) {
	if in.ProductID == "" {
		return v.rejectInput(ctx, MsgSelectProduct, domain.ErrNoProductID)
	}

	if err := in.Validate(); err != nil {
		return v.rejectInput(ctx, MsgInvalidQuantity, err)
	}

	return v.refreshAfter(ctx)(submit(ctx, &v.view, ActionCreateOrder,
		func(ctx context.Context) (domain.Result[domain.Order], error) {
			return v.client.CreateOrder(ctx, in)
		},
		nil,
	))
}

// MarkReceived moves an order to RECEIVED. The transition rule is enforced by
// the server, which answers a terminal order with a Domain Failure.
func (v *OrdersView) MarkReceived(ctx context.Context, id string) (Outcome, error) {
	return v.transition(ctx, id, ActionReceiveOrder, v.client.MarkOrderAsReceived)
}

// Cancel moves an order to CANCELLED.
func (v *OrdersView) Cancel(ctx context.Context, id string) (Outcome, error) {
	return v.transition(ctx, id, ActionCancelOrder, v.client.CancelOrder)
}

func (v *OrdersView) transition(
	ctx context.Context,
	id string,
	action Action,
	call func(context.Context, string) (domain.Result[domain.Order], error),
) (Outcome, error) {
	if id == "" {
		return v.rejectInput(ctx, MsgEnterOrderID, domain.ErrNoOrderID)
	}

	return v.refreshAfter(ctx)(submit(ctx, &v.view, action,
		func(ctx context.Context) (domain.Result[domain.Order], error) {
			return call(ctx, id)
		},
		nil,
	))
}

func (v *OrdersView) refreshAfter(ctx context.Context) func(Outcome, error) (Outcome, error) {
	return func(outcome Outcome, err error) (Outcome, error) {
		if err == nil && outcome == OutcomeSuccess {
			v.Load(ctx)
		}

		return outcome, err
	}
}

// Orders returns the loaded orders.
func (v *OrdersView) Orders() []domain.Order {
	v.state.m.Lock()
	defer v.state.m.Unlock()

	return slices.Clone(v.orders)
}

// Products returns the products loaded alongside the orders.
func (v *OrdersView) Products() []domain.Product {
	v.state.m.Lock()
	defer v.state.m.Unlock()

	return slices.Clone(v.products)
}

// SearchResult returns the order found by the last search.
func (v *OrdersView) SearchResult() (domain.Order, bool) {
	v.state.m.Lock()
	defer v.state.m.Unlock()

	if v.searchResult == nil {
		return domain.Order{}, false
	}

	return *v.searchResult, true
}

// Actions lists the transitions offered for o: receive and cancel while PENDING.
func (v *OrdersView) Actions(o domain.Order) []string {
	if o.Status != domain.OrderStatusPending {
		return nil
	}

	return []string{OrderActionReceive, OrderActionCancel}
}

// Close leaves the view: pending responses are discarded and transient
// state is cleared.
func (v *OrdersView) Close() {
	v.state.reset()

	v.state.m.Lock()
	defer v.state.m.Unlock()

	v.orders = nil
	v.products = nil
	v.searchResult = nil
}
