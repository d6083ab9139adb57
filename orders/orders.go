package orders

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"

	"github.com/Mdhelaluddin3391/quickdash-go/api"
	"github.com/Mdhelaluddin3391/quickdash-go/cart"
	"github.com/Mdhelaluddin3391/quickdash-go/location"
)

const (
	createEndpoint   = "/orders/create/"
	myOrdersEndpoint = "/orders/my/"
)

var ErrNoDeliveryAddress = errors.New("checkout requires a selected delivery address")

// PaymentMethod selects how an order is paid. Online payment gateways are
// handled outside this client; cash on delivery completes entirely here.
type PaymentMethod string

const (
	PaymentCOD PaymentMethod = "COD"
)

// Order is a placed order as returned by the backend.
type Order struct {
	ID              string          `json:"id"`
	Status          string          `json:"status"`
	TotalAmount     float64         `json:"total_amount"`
	CreatedAt       string          `json:"created_at"`
	Items           []cart.Item     `json:"items"`
	DeliveryAddress json.RawMessage `json:"delivery_address_json"`
}

// createResponse tolerates both response envelopes the backend has used:
// a bare order and {"order": {...}}.
type createResponse struct {
	ID    string `json:"id"`
	Order *Order `json:"order"`
}

// Service wraps checkout and order history.
type Service struct {
	api       *api.Client
	carts     *cart.Service
	locations *location.Manager
}

// NewService creates the orders service.
func NewService(apiClient *api.Client, carts *cart.Service, locations *location.Manager) (*Service, error) {
	if apiClient == nil {
		return nil, errors.New("[NewService] api client is required")
	}
	if carts == nil {
		return nil, errors.New("[NewService] cart service is required")
	}
	if locations == nil {
		return nil, errors.New("[NewService] locations is required")
	}
	return &Service{api: apiClient, carts: carts, locations: locations}, nil
}

// Checkout places an order for the current cart against the selected delivery
// address. It requires an L2 context; browsing coordinates are not a
// deliverable destination. deliveryFee is added on top of the cart total.
func (s *Service) Checkout(ctx context.Context, method PaymentMethod, deliveryFee float64) (string, error) {
	loc := s.locations.Context()
	if loc.Type != location.ContextL2 {
		return "", ErrNoDeliveryAddress
	}

	current, err := s.carts.GetCart(ctx)
	if err != nil {
		return "", errors.Wrap(err, "[Service.Checkout] fetch cart")
	}
	if current.TotalAmount == 0 {
		return "", errors.New("[Service.Checkout] cart is empty")
	}

	var resp createResponse
	err = s.api.Post(ctx, createEndpoint, map[string]any{
		"delivery_address_id": loc.AddressID,
		"payment_method":      string(method),
		"delivery_type":       "express",
		"total_amount":        current.TotalAmount + deliveryFee,
	}, &resp)
	if err != nil {
		return "", errors.Wrap(err, "[Service.Checkout]")
	}

	orderID := resp.ID
	if resp.Order != nil && resp.Order.ID != "" {
		orderID = resp.Order.ID
	}
	return orderID, nil
}

// List fetches the order history, newest first.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	var raw json.RawMessage
	if err := s.api.Get(ctx, myOrdersEndpoint, nil, &raw); err != nil {
		return nil, errors.Wrap(err, "[Service.List]")
	}

	var list []Order
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var envelope struct {
		Results []Order `json:"results"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, errors.Wrap(err, "[Service.List] decode")
	}
	return envelope.Results, nil
}

// Get fetches one order by id.
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	if id == "" {
		return nil, errors.New("[Service.Get] id is required")
	}
	var order Order
	if err := s.api.Get(ctx, fmt.Sprintf("/orders/%s/", id), nil, &order); err != nil {
		return nil, errors.Wrap(err, "[Service.Get]")
	}
	return &order, nil
}

// Cancel cancels an order that has not yet been dispatched.
func (s *Service) Cancel(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("[Service.Cancel] id is required")
	}
	if err := s.api.Post(ctx, fmt.Sprintf("/orders/%s/cancel/", id), nil, nil); err != nil {
		return errors.Wrap(err, "[Service.Cancel]")
	}
	return nil
}
