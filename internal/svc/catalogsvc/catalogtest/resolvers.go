package catalogtest

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/mkrupp/homecase-console/internal/domain"
)

// Causes reported in Error results.
const (
	CauseNotFound          = "NOT_FOUND"
	CauseConflict          = "CONFLICT"
	CauseForbidden         = "FORBIDDEN"
	CauseInvalidInput      = "INVALID_INPUT"
	CauseInvalidTransition = "INVALID_TRANSITION"
)

type translationDTO struct {
	Language    string `json:"language"`
	Description string `json:"description"`
}

type productDTO struct {
	Typename     string           `json:"__typename,omitempty"`
	ID           string           `json:"id"`
	IsActive     bool             `json:"isActive"`
	Price        json.Number      `json:"price"`
	Translations []translationDTO `json:"translations"`
}

type orderDTO struct {
	Typename string      `json:"__typename,omitempty"`
	ID       string      `json:"id"`
	Status   string      `json:"status"`
	Quantity int         `json:"quantity"`
	Total    json.Number `json:"total"`
	Product  productDTO  `json:"product"`
}

type errorDTO struct {
	Typename   string `json:"__typename"`
	StatusCode int    `json:"statusCode"`
	Cause      string `json:"cause"`
	Message    string `json:"message"`
	Context    any    `json:"context"`
}

type productInput struct {
	ID           string           `json:"id"`
	Price        float64          `json:"price"`
	Translations []translationDTO `json:"translations"`
}

type orderInput struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func failure(status int, cause, message string, ctx any) errorDTO {
	return errorDTO{Typename: "Error", StatusCode: status, Cause: cause, Message: message, Context: ctx}
}

func toProductDTO(p domain.Product, typename string) productDTO {
	translations := make([]translationDTO, 0, len(p.Translations))
	for _, t := range p.Translations {
		translations = append(translations, translationDTO(t))
	}

	return productDTO{
		Typename:     typename,
		ID:           p.ID,
		IsActive:     p.IsActive,
		Price:        json.Number(p.Price.String()),
		Translations: translations,
	}
}

func toOrderDTO(o domain.Order, typename string) orderDTO {
	return orderDTO{
		Typename: typename,
		ID:       o.ID,
		Status:   string(o.Status),
		Quantity: o.Quantity,
		Total:    json.Number(o.Total.String()),
		Product:  toProductDTO(o.Product, ""),
	}
}

func decodeVar(vars map[string]json.RawMessage, name string, v any) error {
	raw, ok := vars[name]
	if !ok {
		return fmt.Errorf("variable $%s is required", name)
	}

	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("variable $%s: %w", name, err)
	}

	return nil
}

// resolve computes the data value of op. A returned error becomes a GraphQL
// errors entry; business failures are returned as Error values.
func (s *Server) resolve(op string, role domain.Role, vars map[string]json.RawMessage) (any, error) {
	s.m.Lock()
	defer s.m.Unlock()

	switch op {
	case "findProducts":
		products := make([]productDTO, 0, len(s.productOrder))
		for _, id := range s.productOrder {
			products = append(products, toProductDTO(s.products[id], ""))
		}

		return products, nil

	case "findOrders":
		orders := make([]orderDTO, 0, len(s.orderOrder))
		for _, id := range s.orderOrder {
			orders = append(orders, toOrderDTO(s.orders[id], ""))
		}

		return orders, nil

	case "findProductById", "deleteProduct", "activateProduct", "deactivateProduct":
		var id string
		if err := decodeVar(vars, "id", &id); err != nil {
			return nil, err
		}

		return s.productByID(op, role, id), nil

	case "createProduct":
		var in productInput
		if err := decodeVar(vars, "product", &in); err != nil {
			return nil, err
		}

		return s.createProduct(role, in), nil

	case "updateProduct":
		var (
			id string
			in productInput
		)

		if err := decodeVar(vars, "id", &id); err != nil {
			return nil, err
		}

		if err := decodeVar(vars, "product", &in); err != nil {
			return nil, err
		}

		return s.updateProduct(role, id, in), nil

	case "findOrderById", "markOrderAsReceived", "cancelOrder":
		var id string
		if err := decodeVar(vars, "id", &id); err != nil {
			return nil, err
		}

		return s.orderByID(op, id), nil

	case "createOrder":
		var in orderInput
		if err := decodeVar(vars, "order", &in); err != nil {
			return nil, err
		}

		return s.createOrder(in), nil

	default:
		return nil, fmt.Errorf("%w: %s", errUnknownOperation, op)
	}
}

func forbidden(role domain.Role) errorDTO {
	return failure(http.StatusForbidden, CauseForbidden, "Only administrators can modify products",
		map[string]string{"role": role.String()})
}

func productNotFound(id string) errorDTO {
	return failure(http.StatusNotFound, CauseNotFound, "Product not found", map[string]string{"id": id})
}

func orderNotFound(id string) errorDTO {
	return failure(http.StatusNotFound, CauseNotFound, "Order not found", map[string]string{"id": id})
}

func (s *Server) productByID(op string, role domain.Role, id string) any {
	if op != "findProductById" && role != domain.RoleAdmin {
		return forbidden(role)
	}

	p, ok := s.products[id]
	if !ok {
		return productNotFound(id)
	}

	switch op {
	case "deleteProduct":
		delete(s.products, id)

		for i, pid := range s.productOrder {
			if pid == id {
				s.productOrder = append(s.productOrder[:i], s.productOrder[i+1:]...)

				break
			}
		}
	case "activateProduct":
		p.IsActive = true
		s.products[id] = p
	case "deactivateProduct":
		p.IsActive = false
		s.products[id] = p
	}

	return toProductDTO(p, "Product")
}

func (in productInput) validate() (domain.Translations, decimal.Decimal, *errorDTO) {
	translations := make(domain.Translations, 0, len(in.Translations))
	for _, t := range in.Translations {
		translations = append(translations, domain.Translation(t))
	}

	if err := translations.Validate(); err != nil {
		e := failure(http.StatusBadRequest, CauseInvalidInput, err.Error(), nil)

		return nil, decimal.Zero, &e
	}

	price := decimal.NewFromFloat(in.Price)
	if price.IsNegative() {
		e := failure(http.StatusBadRequest, CauseInvalidInput, "Price must not be negative", nil)

		return nil, decimal.Zero, &e
	}

	return translations, price, nil
}

func (s *Server) createProduct(role domain.Role, in productInput) any {
	if role != domain.RoleAdmin {
		return forbidden(role)
	}

	if in.ID == "" {
		return failure(http.StatusBadRequest, CauseInvalidInput, "Product id is required", nil)
	}

	if _, ok := s.products[in.ID]; ok {
		return failure(http.StatusConflict, CauseConflict, "Product already exists", map[string]string{"id": in.ID})
	}

	translations, price, errDTO := in.validate()
	if errDTO != nil {
		return *errDTO
	}

	p := domain.Product{ID: in.ID, Price: price, IsActive: true, Translations: translations}
	s.products[p.ID] = p
	s.productOrder = append(s.productOrder, p.ID)

	return toProductDTO(p, "Product")
}

func (s *Server) updateProduct(role domain.Role, id string, in productInput) any {
	if role != domain.RoleAdmin {
		return forbidden(role)
	}

	p, ok := s.products[id]
	if !ok {
		return productNotFound(id)
	}

	translations, price, errDTO := in.validate()
	if errDTO != nil {
		return *errDTO
	}

	p.Price = price
	p.Translations = translations
	s.products[id] = p

	return toProductDTO(p, "Product")
}

func (s *Server) orderByID(op, id string) any {
	o, ok := s.orders[id]
	if !ok {
		return orderNotFound(id)
	}

	var next domain.OrderStatus

	switch op {
	case "markOrderAsReceived":
		next = domain.OrderStatusReceived
	case "cancelOrder":
		next = domain.OrderStatusCancelled
	default:
		return toOrderDTO(o, "Order")
	}

	status, err := o.Status.Transition(next)
	if err != nil {
		return failure(http.StatusConflict, CauseInvalidTransition,
			fmt.Sprintf("Order is already %s", o.Status),
			map[string]string{"id": id, "status": string(o.Status)})
	}

	o.Status = status
	s.orders[id] = o

	return toOrderDTO(o, "Order")
}

func (s *Server) createOrder(in orderInput) any {
	p, ok := s.products[in.ProductID]
	if !ok {
		return productNotFound(in.ProductID)
	}

	if !p.IsActive {
		return failure(http.StatusBadRequest, CauseInvalidInput, "Product is not active",
			map[string]string{"productId": p.ID})
	}

	if in.Quantity < 1 {
		return failure(http.StatusBadRequest, CauseInvalidInput, "Quantity must be positive", nil)
	}

	s.orderSeq++

	o := domain.Order{
		ID:       fmt.Sprintf("ord_%04d", s.orderSeq),
		Status:   domain.OrderStatusPending,
		Quantity: in.Quantity,
		Total:    p.Price.Mul(decimal.NewFromInt(int64(in.Quantity))),
		Product:  p,
	}

	s.orders[o.ID] = o
	s.orderOrder = append(s.orderOrder, o.ID)

	return toOrderDTO(o, "Order")
}
