package tracking

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/Mdhelaluddin3391/quickdash-go/api"
)

const (
	ticketEndpoint = "/auth/ws/ticket/"

	maxReconnects   = 5
	initialInterval = time.Second
	maxInterval     = 30 * time.Second
	backoffMultiple = 1.5
)

var ErrNoTicket = errors.New("no tracking ticket received")

// LatLng is a rider coordinate pair. The backend sends coordinates as either
// numbers or strings depending on the producer; both decode.
type LatLng struct {
	Lat float64
	Lng float64
}

func (p *LatLng) UnmarshalJSON(data []byte) error {
	var raw struct {
		Lat json.Number `json:"lat"`
		Lng json.Number `json:"lng"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	lat, err := raw.Lat.Float64()
	if err != nil {
		return err
	}
	lng, err := raw.Lng.Float64()
	if err != nil {
		return err
	}
	p.Lat, p.Lng = lat, lng
	return nil
}

// Update is one inbound tracking frame. Either field may be absent.
type Update struct {
	Status        string  `json:"status"`
	RiderLocation *LatLng `json:"rider_location"`
}

// Tracker streams live order status and rider position over the tracking
// WebSocket. Access is ticket-gated: a short-lived ticket is fetched over the
// authenticated API, then presented in the socket path.
type Tracker struct {
	api    *api.Client
	wsBase string
	log    zerolog.Logger
	dialer *websocket.Dialer
}

// TrackerOption defines a function type to modify the Tracker instance.
type TrackerOption func(*Tracker)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) TrackerOption {
	return func(t *Tracker) {
		t.log = l
	}
}

// WithDialer sets the WebSocket dialer (primarily for testing).
func WithDialer(d *websocket.Dialer) TrackerOption {
	return func(t *Tracker) {
		t.dialer = d
	}
}

// NewTracker creates a tracker dialing sockets under wsBase
// (e.g. "wss://host").
func NewTracker(apiClient *api.Client, wsBase string, options ...TrackerOption) (*Tracker, error) {
	if apiClient == nil {
		return nil, errors.New("[NewTracker] api client is required")
	}
	if wsBase == "" {
		return nil, errors.New("[NewTracker] wsBase is required")
	}
	t := &Tracker{
		api:    apiClient,
		wsBase: wsBase,
		log:    zerolog.Nop(),
		dialer: websocket.DefaultDialer,
	}
	for _, opt := range options {
		opt(t)
	}
	return t, nil
}

// Track streams updates for an order to handler until ctx is cancelled or the
// reconnect budget is exhausted. Reconnects are bounded: up to 5 attempts with
// a multiplicative backoff capped at 30s, reset after every successful
// connection.
func (t *Tracker) Track(ctx context.Context, orderID string, handler func(Update)) error {
	if orderID == "" {
		return errors.New("[Tracker.Track] orderID is required")
	}
	if handler == nil {
		return errors.New("[Tracker.Track] handler is required")
	}

	attempts := 0
	interval := initialInterval

	for {
		connected, err := t.connectAndStream(ctx, orderID, handler)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if connected {
			// A successful connection resets the backoff budget.
			attempts = 0
			interval = initialInterval
		}
		lastErr := err
		t.log.Warn().Err(err).Int("attempt", attempts+1).Msg("tracking connection lost")

		attempts++
		if attempts > maxReconnects {
			return errors.Wrap(lastErr, "[Tracker.Track] reconnect budget exhausted")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
		interval = time.Duration(float64(interval) * backoffMultiple)
		if interval > maxInterval {
			interval = maxInterval
		}
	}
}

// connectAndStream returns whether a connection was established along with the
// error that ended it.
func (t *Tracker) connectAndStream(ctx context.Context, orderID string, handler func(Update)) (bool, error) {
	ticket, err := t.fetchTicket(ctx)
	if err != nil {
		return false, err
	}

	wsURL := fmt.Sprintf("%s/ws/tracking/%s/%s/", t.wsBase, orderID, ticket)
	conn, resp, err := t.dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return false, errors.Wrap(err, "[Tracker.connect] dial")
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	for {
		var update Update
		if err := conn.ReadJSON(&update); err != nil {
			if ctx.Err() != nil {
				return true, ctx.Err()
			}
			return true, errors.Wrap(err, "[Tracker.connect] read")
		}
		handler(update)
	}
}

func (t *Tracker) fetchTicket(ctx context.Context) (string, error) {
	var resp struct {
		Ticket string `json:"ticket"`
	}
	if err := t.api.Post(ctx, ticketEndpoint, nil, &resp); err != nil {
		return "", errors.Wrap(err, "[Tracker.fetchTicket]")
	}
	if resp.Ticket == "" {
		return "", ErrNoTicket
	}
	return resp.Ticket, nil
}
