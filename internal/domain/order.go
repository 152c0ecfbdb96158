package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidQuantity is returned when an order quantity is not positive.
	ErrInvalidQuantity = errors.New("invalid quantity")
	// ErrNoOrderID is returned when an order operation is attempted without an id.
	ErrNoOrderID = errors.New("no order id")
	// ErrInvalidTransition is returned when an order status change leaves a terminal state.
	ErrInvalidTransition = errors.New("invalid order status transition")
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusReceived  OrderStatus = "RECEIVED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// IsTerminal reports whether no further transition is possible.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusReceived || s == OrderStatusCancelled
}

// CanTransition reports whether an order in status s may move to next.
// Only PENDING orders move, and only to RECEIVED or CANCELLED.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	return s == OrderStatusPending && next.IsTerminal()
}

// Transition returns next if the move is allowed.
func (s OrderStatus) Transition(next OrderStatus) (OrderStatus, error) {
	if !s.CanTransition(next) {
		return s, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, next)
	}

	return next, nil
}

// Order is an order as returned by the API. Product is a snapshot taken
// when the order was read, not a live reference.
type Order struct {
	ID       string          `json:"id"       yaml:"id"`
	Status   OrderStatus     `json:"status"   yaml:"status"`
	Quantity int             `json:"quantity" yaml:"quantity"`
	Total    decimal.Decimal `json:"total"    yaml:"total"`
	Product  Product         `json:"product"  yaml:"product"`
}

// OrderInput carries the fields for createOrder.
type OrderInput struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Validate checks that a product is selected and the quantity is positive.
func (in OrderInput) Validate() error {
	if in.ProductID == "" {
		return ErrNoProductID
	}

	if in.Quantity < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidQuantity, in.Quantity)
	}

	return nil
}
