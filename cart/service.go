package cart

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/Mdhelaluddin3391/quickdash-go/api"
	"github.com/Mdhelaluddin3391/quickdash-go/location"
	"github.com/Mdhelaluddin3391/quickdash-go/sessions"
)

const (
	cartEndpoint     = "/orders/cart/"
	cartAddEndpoint  = "/orders/cart/add/"
	validateEndpoint = "/orders/validate-cart/"
)

// ConflictPrompter surfaces the clear-cart decision when a location change
// invalidates the cart. Confirm returns whether the user accepted clearing.
type ConflictPrompter interface {
	ConfirmClearCart(unavailable []string) bool
}

// Service is a thin domain wrapper over the API client for cart reads and
// mutations. It keeps a best-effort {count, total} cache for badge rendering;
// the server snapshot is always authoritative for the cart itself.
type Service struct {
	api      *api.Client
	store    *sessions.Store
	log      zerolog.Logger
	prompter ConflictPrompter

	mu    sync.Mutex
	cache Snapshot
	subs  []func(*Cart)
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.log = l
	}
}

// WithConflictPrompter sets the clear-cart prompter. Without one, an invalid
// cart is left for the server-side 409 to catch at the next mutation.
func WithConflictPrompter(p ConflictPrompter) ServiceOption {
	return func(s *Service) {
		s.prompter = p
	}
}

// NewService creates the cart service.
func NewService(apiClient *api.Client, store *sessions.Store, options ...ServiceOption) (*Service, error) {
	if apiClient == nil {
		return nil, errors.New("[NewService] api client is required")
	}
	if store == nil {
		return nil, errors.New("[NewService] store is required")
	}
	s := &Service{
		api:   apiClient,
		store: store,
		log:   zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Subscribe registers fn to run after every cart change with the new snapshot.
func (s *Service) Subscribe(fn func(*Cart)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

// BindLocationChanges revalidates the cart whenever the location context
// changes. This is the proactive remediation path for warehouse mismatches.
func (s *Service) BindLocationChanges(manager *location.Manager) {
	manager.Subscribe(func() {
		s.ValidateForLocation(context.Background())
	})
}

// Snapshot returns the cached badge state.
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache
}

// GetCart fetches the current cart, replaces the cache, and broadcasts.
func (s *Service) GetCart(ctx context.Context) (*Cart, error) {
	var cart Cart
	if err := s.api.Get(ctx, cartEndpoint, nil, &cart); err != nil {
		return nil, errors.Wrap(err, "[Service.GetCart]")
	}
	s.applySnapshot(&cart)
	return &cart, nil
}

// AddItem sets the quantity of sku. It is the same operation as UpdateItem;
// quantities are absolute, not deltas.
func (s *Service) AddItem(ctx context.Context, sku string, quantity int) (*Cart, error) {
	return s.UpdateItem(ctx, sku, quantity)
}

// UpdateItem posts the desired absolute quantity for a SKU. Quantity zero
// removes the line; there is no separate delete verb. On failure the error is
// rethrown so the caller can revert optimistic UI state.
func (s *Service) UpdateItem(ctx context.Context, sku string, quantity int) (*Cart, error) {
	var cart Cart
	err := s.api.Post(ctx, cartAddEndpoint, map[string]any{
		"sku":      sku,
		"quantity": quantity,
	}, &cart)
	if err != nil {
		s.log.Error().Err(err).Str("sku", sku).Int("quantity", quantity).Msg("cart update failed")
		return nil, errors.Wrap(err, "[Service.UpdateItem]")
	}
	s.applySnapshot(&cart)
	return &cart, nil
}

// ClearCart deletes the cart server-side, then resets the cache and
// broadcasts an empty snapshot regardless of the response body shape.
func (s *Service) ClearCart(ctx context.Context) error {
	if err := s.api.Delete(ctx, cartEndpoint, nil); err != nil {
		s.log.Error().Err(err).Msg("cart clear failed")
		return errors.Wrap(err, "[Service.ClearCart]")
	}
	s.applySnapshot(&Cart{Items: []Item{}})
	return nil
}

// RefreshCount re-fetches the cart purely to update the badge cache. Failures
// are swallowed; the badge is best-effort.
func (s *Service) RefreshCount(ctx context.Context) {
	var cart Cart
	if err := s.api.Get(ctx, cartEndpoint, nil, &cart); err != nil {
		s.log.Debug().Err(err).Msg("cart count refresh failed")
		return
	}
	s.applySnapshot(&cart)
}

// ValidateForLocation asks the backend to re-validate the cart against the
// active location context. An invalid cart is surfaced through the prompter;
// on acceptance the cart is force-cleared. Errors are swallowed: a failure
// here is expected for empty carts, and the server-side 409 still guards the
// next mutation.
func (s *Service) ValidateForLocation(ctx context.Context) {
	if !s.store.LoggedIn() {
		return
	}

	var result validation
	if err := s.api.Post(ctx, validateEndpoint, map[string]any{}, &result); err != nil {
		s.log.Debug().Err(err).Msg("cart validation skipped")
		return
	}
	if result.IsValid {
		return
	}

	names := make([]string, 0, len(result.UnavailableItems))
	for _, item := range result.UnavailableItems {
		names = append(names, item.ProductName)
	}

	if s.prompter == nil || !s.prompter.ConfirmClearCart(names) {
		return
	}
	if err := s.ForceClear(ctx); err != nil {
		s.log.Error().Err(err).Msg("forced cart clear failed")
		return
	}
	s.RefreshCount(ctx)
}

// ForceClear issues the explicit override mutation that empties a cart bound
// to an unreachable warehouse.
func (s *Service) ForceClear(ctx context.Context) error {
	err := s.api.Post(ctx, cartAddEndpoint, map[string]any{
		"force_clear": true,
		"sku":         "DUMMY",
		"quantity":    0,
	}, nil)
	if err != nil {
		return errors.Wrap(err, "[Service.ForceClear]")
	}
	return nil
}

func (s *Service) applySnapshot(cart *Cart) {
	s.mu.Lock()
	s.cache = Snapshot{
		Count: len(cart.Items),
		Total: cart.TotalAmount,
	}
	subs := make([]func(*Cart), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(cart)
	}
}
