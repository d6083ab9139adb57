package tracking_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/Mdhelaluddin3391/quickdash-go/api"
	"github.com/Mdhelaluddin3391/quickdash-go/location"
	"github.com/Mdhelaluddin3391/quickdash-go/sessions"
	"github.com/Mdhelaluddin3391/quickdash-go/tracking"
)

var upgrader = websocket.Upgrader{}

// newTrackingServer serves both the ticket endpoint and the tracking socket
// from one httptest server, mirroring how the backend exposes them.
func newTrackingServer(t *testing.T, ticket string, socket http.HandlerFunc) (*tracking.Tracker, *httptest.Server) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/ws/ticket/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"ticket": ticket})
	})
	mux.HandleFunc("/ws/tracking/", socket)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	repo := sessions.NewInMemoryRepo()
	store, err := sessions.NewStore(repo)
	require.NoError(t, err)
	manager, err := location.NewManager(repo)
	require.NoError(t, err)
	client, err := api.NewClient(server.URL, store, manager)
	require.NoError(t, err)

	wsBase := "ws" + strings.TrimPrefix(server.URL, "http")
	tracker, err := tracking.NewTracker(client, wsBase)
	require.NoError(t, err)
	return tracker, server
}

func TestTrackStreamsUpdates(t *testing.T) {
	var gotPath string
	tracker, _ := newTrackingServer(t, "tkt-1", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.WriteJSON(map[string]any{"status": "PACKED"})
		conn.WriteJSON(map[string]any{
			"status":         "OUT_FOR_DELIVERY",
			"rider_location": map[string]any{"lat": 12.97, "lng": "77.59"},
		})
		// Keep the socket open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var updates []tracking.Update
	done := make(chan error, 1)
	go func() {
		done <- tracker.Track(ctx, "ord-1", func(u tracking.Update) {
			updates = append(updates, u)
			if len(updates) == 2 {
				cancel()
			}
		})
	}()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("tracking never finished")
	}

	require.Equal(t, "/ws/tracking/ord-1/tkt-1/", gotPath, "the ticket gates socket access")
	require.Len(t, updates, 2)
	require.Equal(t, "PACKED", updates[0].Status)
	require.Equal(t, "OUT_FOR_DELIVERY", updates[1].Status)
	require.NotNil(t, updates[1].RiderLocation)
	require.Equal(t, 12.97, updates[1].RiderLocation.Lat)
	require.Equal(t, 77.59, updates[1].RiderLocation.Lng, "string coordinates decode too")
}

func TestTrackFailsWithoutTicket(t *testing.T) {
	tracker, _ := newTrackingServer(t, "", func(w http.ResponseWriter, r *http.Request) {
		t.Error("socket must not be dialed without a ticket")
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := tracker.Track(ctx, "ord-1", func(tracking.Update) {})
	require.ErrorIs(t, err, tracking.ErrNoTicket)
}

func TestTrackValidatesInput(t *testing.T) {
	tracker, _ := newTrackingServer(t, "tkt-1", func(w http.ResponseWriter, r *http.Request) {})

	require.Error(t, tracker.Track(context.Background(), "", func(tracking.Update) {}))
	require.Error(t, tracker.Track(context.Background(), "ord-1", nil))
}

func TestLatLngDecoding(t *testing.T) {
	tests := []struct {
		name string
		body string
		want tracking.LatLng
	}{
		{"numbers", `{"lat":12.97,"lng":77.59}`, tracking.LatLng{Lat: 12.97, Lng: 77.59}},
		{"strings", `{"lat":"12.97","lng":"77.59"}`, tracking.LatLng{Lat: 12.97, Lng: 77.59}},
		{"mixed", `{"lat":12.97,"lng":"77.59"}`, tracking.LatLng{Lat: 12.97, Lng: 77.59}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got tracking.LatLng
			require.NoError(t, json.Unmarshal([]byte(tc.body), &got))
			require.Equal(t, tc.want, got)
		})
	}
}
