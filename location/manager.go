package location

import (
	"encoding/json"
	"math"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/Mdhelaluddin3391/quickdash-go/sessions"
)

var (
	ErrInvalidServiceLocation = errors.New("service location requires numeric lat/lng")
	ErrInvalidDeliveryAddress = errors.New("delivery address requires an id")
)

// Manager owns the two location contexts and resolves which one is
// authoritative. Every mutation raises one change notification; subscribers
// (cart validation, feed reload, nav chrome) react to that single event rather
// than polling the store.
type Manager struct {
	repo    sessions.Repo
	log     zerolog.Logger
	nowTime func() time.Time

	mu   sync.Mutex
	subs []func()
}

// ManagerOption defines a function type to modify the Manager instance.
type ManagerOption func(*Manager)

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.log = l
	}
}

// NewManager creates a location manager persisting contexts to repo.
func NewManager(repo sessions.Repo, options ...ManagerOption) (*Manager, error) {
	if repo == nil {
		return nil, errors.New("[NewManager] repo is required")
	}
	m := &Manager{
		repo:    repo,
		log:     zerolog.Nop(),
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(m)
	}
	return m, nil
}

// Subscribe registers fn to run after every context mutation. Callbacks run
// synchronously on the mutating call, in registration order.
func (m *Manager) Subscribe(fn func()) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	m.subs = append(m.subs, fn)
	m.mu.Unlock()
}

// SetServiceLocation stores the L1 browsing context. Missing or non-numeric
// coordinates are rejected: nothing is written and no event fires.
func (m *Manager) SetServiceLocation(in ServiceInput) error {
	if !validCoord(in.Lat) || !validCoord(in.Lng) {
		m.log.Error().Float64("lat", in.Lat).Float64("lng", in.Lng).Msg("invalid service location")
		return ErrInvalidServiceLocation
	}

	area := in.AreaName
	if area == "" {
		area = in.FormattedAddress
	}
	if area == "" {
		area = "Current Location"
	}

	ctx := ServiceContext{
		Lat:       in.Lat,
		Lng:       in.Lng,
		City:      in.City,
		AreaName:  area,
		Timestamp: m.nowTime().UnixMilli(),
	}
	if err := m.put(sessions.KeyServiceContext, ctx); err != nil {
		return errors.Wrap(err, "[Manager.SetServiceLocation] persist")
	}
	m.log.Info().Str("area", ctx.AreaName).Msg("service location set")
	m.notify()
	return nil
}

// SetDeliveryAddress stores the L2 delivery context. A missing identity is
// rejected: nothing is written and no event fires.
func (m *Manager) SetDeliveryAddress(in DeliveryInput) error {
	if in.ID == "" {
		m.log.Error().Msg("invalid delivery address: missing id")
		return ErrInvalidDeliveryAddress
	}

	lat := in.Latitude
	if lat == 0 {
		lat = in.Lat
	}
	lng := in.Longitude
	if lng == 0 {
		lng = in.Lng
	}
	label := in.Label
	if label == "" {
		label = "Delivery"
	}
	line := in.AddressLine
	if line == "" {
		line = "Selected Address"
	}

	ctx := DeliveryContext{
		ID:          in.ID,
		Lat:         lat,
		Lng:         lng,
		City:        in.City,
		Label:       label,
		AddressLine: line,
		Timestamp:   m.nowTime().UnixMilli(),
	}
	if err := m.put(sessions.KeyDeliveryContext, ctx); err != nil {
		return errors.Wrap(err, "[Manager.SetDeliveryAddress] persist")
	}
	m.log.Info().Str("id", ctx.ID).Msg("delivery address set")
	m.notify()
	return nil
}

// Context derives the authoritative location context: L2 wins whenever a
// delivery context with an id exists, else L1 with coordinates, else NONE.
func (m *Manager) Context() Context {
	if delivery, ok := m.delivery(); ok && delivery.ID != "" {
		return Context{
			Type:      ContextL2,
			AddressID: delivery.ID,
			Lat:       delivery.Lat,
			Lng:       delivery.Lng,
		}
	}
	if service, ok := m.service(); ok && service.Lat != 0 {
		return Context{
			Type: ContextL1,
			Lat:  service.Lat,
			Lng:  service.Lng,
		}
	}
	return Context{Type: ContextNone}
}

// DisplayLocation returns the UI-facing triple for navigation chrome.
func (m *Manager) DisplayLocation() Display {
	if delivery, ok := m.delivery(); ok {
		return Display{
			Type:    DisplayDelivery,
			Label:   delivery.Label,
			Subtext: delivery.AddressLine,
			Active:  true,
		}
	}
	if service, ok := m.service(); ok {
		return Display{
			Type:    DisplayService,
			Label:   service.AreaName,
			Subtext: "Browsing",
			Active:  false,
		}
	}
	return Display{
		Type:    DisplayNone,
		Label:   "Select Location",
		Subtext: "Location Required",
		Active:  false,
	}
}

// HasLocation reports whether either context exists.
func (m *Manager) HasLocation() bool {
	_, hasDelivery := m.delivery()
	if hasDelivery {
		return true
	}
	_, hasService := m.service()
	return hasService
}

// Clear removes both contexts and raises a change notification.
func (m *Manager) Clear() error {
	if err := m.repo.Delete(sessions.KeyServiceContext); err != nil {
		return errors.Wrap(err, "[Manager.Clear] service context")
	}
	if err := m.repo.Delete(sessions.KeyDeliveryContext); err != nil {
		return errors.Wrap(err, "[Manager.Clear] delivery context")
	}
	m.notify()
	return nil
}

func (m *Manager) service() (ServiceContext, bool) {
	var ctx ServiceContext
	ok := m.get(sessions.KeyServiceContext, &ctx)
	return ctx, ok
}

func (m *Manager) delivery() (DeliveryContext, bool) {
	var ctx DeliveryContext
	ok := m.get(sessions.KeyDeliveryContext, &ctx)
	return ctx, ok
}

func (m *Manager) get(key string, out any) bool {
	v, ok, err := m.repo.Get(key)
	if err != nil || !ok || v == "" {
		return false
	}
	if err := json.Unmarshal([]byte(v), out); err != nil {
		m.log.Error().Err(err).Str("key", key).Msg("context parse error")
		return false
	}
	return true
}

func (m *Manager) put(key string, ctx any) error {
	data, err := json.Marshal(ctx)
	if err != nil {
		return err
	}
	return m.repo.Put(key, string(data))
}

func (m *Manager) notify() {
	m.mu.Lock()
	subs := make([]func(), len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}

func validCoord(v float64) bool {
	return v != 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
