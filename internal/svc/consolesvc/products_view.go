package consolesvc

import (
	"context"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/mkrupp/homecase-console/internal/domain"
	"github.com/mkrupp/homecase-console/internal/svc/authsvc"
	"github.com/mkrupp/homecase-console/internal/svc/catalogsvc"
	"github.com/mkrupp/homecase-console/internal/util/ident"
)

// Product actions offered to an ADMIN session.
const (
	ProductActionEdit       = "edit"
	ProductActionDelete     = "delete"
	ProductActionActivate   = "activate"
	ProductActionDeactivate = "deactivate"
)

// EditBuffer holds the fields being edited for one product. Saving sends the
// description as the single DefaultLanguage translation.
type EditBuffer struct {
	ProductID   string          `json:"productId"   yaml:"productId"`
	Price       decimal.Decimal `json:"price"       yaml:"price"`
	Description string          `json:"description" yaml:"description"`
}

// DefaultProductInput is the product created when no fields are given.
func DefaultProductInput() domain.ProductInput {
	return domain.ProductInput{
		Price: decimal.NewFromFloat(10.0),
		Translations: domain.Translations{
			{Language: domain.DefaultLanguage, Description: MsgDefaultProductDsc},
		},
	}
}

// ProductsView lists, searches and edits products. Mutations are offered to
// ADMIN sessions only.
type ProductsView struct {
	view

	client catalogsvc.Client
	newID  func() (string, error)

	products     []domain.Product
	searchResult *domain.Product
	edit         *EditBuffer
}

// NewProductsView creates a ProductsView. Product ids are generated with ident.NewProductID.
func NewProductsView(client catalogsvc.Client, sessions authsvc.SessionReader) *ProductsView {
	return &ProductsView{
		view:   newView(sessions, "products_view"),
		client: client,
		newID:  ident.NewProductID,
	}
}

// Load fetches the product listing.
func (v *ProductsView) Load(ctx context.Context) Outcome {
	return fetch(ctx, &v.view, slotList, ActionLoadProducts, v.client.FindProducts,
		func(products []domain.Product) { v.products = products },
		nil,
	)
}

// Search looks a product up by id.
func (v *ProductsView) Search(ctx context.Context, id string) (Outcome, error) {
	if id == "" {
		return v.rejectInput(ctx, MsgEnterProductID, domain.ErrNoProductID)
	}

	return fetch(ctx, &v.view, slotSearch, ActionSearchProduct,
		func(ctx context.Context) (domain.Result[domain.Product], error) {
			return v.client.FindProductByID(ctx, id)
		},
		func(p domain.Product) { v.searchResult = &p },
		func() { v.searchResult = nil },
	), nil
}

// Create creates a product with the given id, generating one when id is
// empty, and refreshes the listing on success.
func (v *ProductsView) Create(ctx context.Context, id string, in domain.ProductInput) (Outcome, error) {
	if err := v.requireAdmin(ctx); err != nil {
		return OutcomeRejected, err
	}

	if err := in.Validate(); err != nil {
		return v.rejectInput(ctx, MsgInvalidProduct, err)
	}

	if id == "" {
		var err error
		if id, err = v.newID(); err != nil {
			return OutcomeRejected, fmt.Errorf("new product id: %w", err)
		}
	}

	return v.refreshAfter(ctx)(submit(ctx, &v.view, ActionCreateProduct,
		func(ctx context.Context) (domain.Result[domain.Product], error) {
			return v.client.CreateProduct(ctx, id, in)
		},
		nil,
	))
}

// Update replaces price and translations of a product.
func (v *ProductsView) Update(ctx context.Context, id string, in domain.ProductInput) (Outcome, error) {
	if err := v.requireAdmin(ctx); err != nil {
		return OutcomeRejected, err
	}

	if id == "" {
		return v.rejectInput(ctx, MsgEnterProductID, domain.ErrNoProductID)
	}

	if err := in.Validate(); err != nil {
		return v.rejectInput(ctx, MsgInvalidProduct, err)
	}

	return v.refreshAfter(ctx)(submit(ctx, &v.view, ActionUpdateProduct,
		func(ctx context.Context) (domain.Result[domain.Product], error) {
			return v.client.UpdateProduct(ctx, id, in)
		},
		func(domain.Product) {
			if v.edit != nil && v.edit.ProductID == id {
				v.edit = nil
			}
		},
	))
}

// Delete removes a product.
func (v *ProductsView) Delete(ctx context.Context, id string) (Outcome, error) {
	return v.simpleMutation(ctx, id, ActionDeleteProduct, v.client.DeleteProduct)
}

// Activate marks a product active.
func (v *ProductsView) Activate(ctx context.Context, id string) (Outcome, error) {
	return v.simpleMutation(ctx, id, ActionActivateProduct, v.client.ActivateProduct)
}

// Deactivate marks a product inactive.
func (v *ProductsView) Deactivate(ctx context.Context, id string) (Outcome, error) {
	return v.simpleMutation(ctx, id, ActionDeactivateProduct, v.client.DeactivateProduct)
}

// ToggleActive activates an inactive product and deactivates an active one,
// based on the loaded listing.
func (v *ProductsView) ToggleActive(ctx context.Context, id string) (Outcome, error) {
	p, ok := v.Product(id)
	if !ok {
		return v.rejectInput(ctx, MsgProductNotLoaded, fmt.Errorf("%w: %s not loaded", domain.ErrNoProductID, id))
	}

	if p.IsActive {
		return v.Deactivate(ctx, id)
	}

	return v.Activate(ctx, id)
}

func (v *ProductsView) simpleMutation(
	ctx context.Context,
	id string,
	action Action,
	call func(context.Context, string) (domain.Result[domain.Product], error),
) (Outcome, error) {
	if err := v.requireAdmin(ctx); err != nil {
		return OutcomeRejected, err
	}

	if id == "" {
		return v.rejectInput(ctx, MsgEnterProductID, domain.ErrNoProductID)
	}

	return v.refreshAfter(ctx)(submit(ctx, &v.view, action,
		func(ctx context.Context) (domain.Result[domain.Product], error) {
			return call(ctx, id)
		},
		nil,
	))
}

// refreshAfter reloads the listing once a mutation's success has been observed.
func (v *ProductsView) refreshAfter(ctx context.Context) func(Outcome, error) (Outcome, error) {
	return func(outcome Outcome, err error) (Outcome, error) {
		if err == nil && outcome == OutcomeSuccess {
			v.Load(ctx)
		}

		return outcome, err
	}
}

// StartEdit fills the edit buffer from a loaded product: its price and first description.
func (v *ProductsView) StartEdit(ctx context.Context, id string) error {
	if err := v.requireAdmin(ctx); err != nil {
		return err
	}

	p, ok := v.Product(id)
	if !ok {
		_, err := v.rejectInput(ctx, MsgProductNotLoaded, fmt.Errorf("%w: %s not loaded", domain.ErrNoProductID, id))

		return err
	}

	v.state.m.Lock()
	defer v.state.m.Unlock()

	v.edit = &EditBuffer{ProductID: p.ID, Price: p.Price, Description: p.Translations.Description()}

	return nil
}

// SetEditPrice changes the price in the edit buffer.
func (v *ProductsView) SetEditPrice(price decimal.Decimal) {
	v.state.m.Lock()
	defer v.state.m.Unlock()

	if v.edit != nil {
		v.edit.Price = price
	}
}

// SetEditDescription changes the description in the edit buffer.
func (v *ProductsView) SetEditDescription(desc string) {
	v.state.m.Lock()
	defer v.state.m.Unlock()

	if v.edit != nil {
		v.edit.Description = desc
	}
}

// CancelEdit drops the edit buffer.
func (v *ProductsView) CancelEdit() {
	v.state.m.Lock()
	defer v.state.m.Unlock()

	v.edit = nil
}

// Editing returns the edit buffer.
func (v *ProductsView) Editing() (EditBuffer, bool) {
	v.state.m.Lock()
	defer v.state.m.Unlock()

	if v.edit == nil {
		return EditBuffer{}, false
	}

	return *v.edit, true
}

// SaveEdit sends the edit buffer as an update. The buffer is cleared on success.
func (v *ProductsView) SaveEdit(ctx context.Context) (Outcome, error) {
	buf, ok := v.Editing()
	if !ok {
		return v.rejectInput(ctx, MsgNoEdit, domain.ErrNoProductID)
	}

	return v.Update(ctx, buf.ProductID, domain.ProductInput{
		Price:        buf.Price,
		Translations: domain.Translations{{Language: domain.DefaultLanguage, Description: buf.Description}},
	})
}

// Products returns the loaded listing.
func (v *ProductsView) Products() []domain.Product {
	v.state.m.Lock()
	defer v.state.m.Unlock()

	return slices.Clone(v.products)
}

// Product returns a product from the loaded listing.
func (v *ProductsView) Product(id string) (domain.Product, bool) {
	v.state.m.Lock()
	defer v.state.m.Unlock()

	i := slices.IndexFunc(v.products, func(p domain.Product) bool { return p.ID == id })
	if i < 0 {
		return domain.Product{}, false
	}

	return v.products[i], true
}

// SearchResult returns the product found by the last search.
func (v *ProductsView) SearchResult() (domain.Product, bool) {
	v.state.m.Lock()
	defer v.state.m.Unlock()

	if v.searchResult == nil {
		return domain.Product{}, false
	}

	return *v.searchResult, true
}

// Actions lists what sess may do with p. Only ADMIN sessions get actions.
func (v *ProductsView) Actions(sess domain.Session, p domain.Product) []string {
	if !sess.IsAdmin() {
		return nil
	}

	toggle := ProductActionActivate
	if p.IsActive {
		toggle = ProductActionDeactivate
	}

	return []string{ProductActionEdit, toggle, ProductActionDelete}
}

// Close leaves the view: pending responses are discarded and transient
// state is cleared.
func (v *ProductsView) Close() {
	v.state.reset()

	v.state.m.Lock()
	defer v.state.m.Unlock()

	v.products = nil
	v.searchResult = nil
	v.edit = nil
}
