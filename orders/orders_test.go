package orders_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Mdhelaluddin3391/quickdash-go/api"
	"github.com/Mdhelaluddin3391/quickdash-go/cart"
	"github.com/Mdhelaluddin3391/quickdash-go/location"
	"github.com/Mdhelaluddin3391/quickdash-go/orders"
	"github.com/Mdhelaluddin3391/quickdash-go/sessions"
)

type testFixture struct {
	manager *location.Manager
	orders  *orders.Service
}

func setupTestFixture(t *testing.T, handler http.Handler) *testFixture {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	repo := sessions.NewInMemoryRepo()
	store, err := sessions.NewStore(repo)
	require.NoError(t, err)
	manager, err := location.NewManager(repo)
	require.NoError(t, err)
	client, err := api.NewClient(server.URL, store, manager)
	require.NoError(t, err)
	carts, err := cart.NewService(client, store)
	require.NoError(t, err)
	service, err := orders.NewService(client, carts, manager)
	require.NoError(t, err)

	return &testFixture{manager: manager, orders: service}
}

func selectAddress(t *testing.T, f *testFixture) {
	t.Helper()
	require.NoError(t, f.manager.SetDeliveryAddress(location.DeliveryInput{
		ID: "addr-1", Latitude: 12.97, Longitude: 77.59,
	}))
}

func TestCheckoutRequiresDeliveryAddress(t *testing.T) {
	f := setupTestFixture(t, http.NotFoundHandler())

	_, err := f.orders.Checkout(context.Background(), orders.PaymentCOD, 0)
	require.ErrorIs(t, err, orders.ErrNoDeliveryAddress)

	// Browsing coordinates alone are not enough.
	require.NoError(t, f.manager.SetServiceLocation(location.ServiceInput{Lat: 12.97, Lng: 77.59}))
	_, err = f.orders.Checkout(context.Background(), orders.PaymentCOD, 0)
	require.ErrorIs(t, err, orders.ErrNoDeliveryAddress)
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	f := setupTestFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[],"total_amount":0}`))
	}))
	selectAddress(t, f)

	_, err := f.orders.Checkout(context.Background(), orders.PaymentCOD, 0)
	require.Error(t, err)
	require.Contains(t, err.Error(), "cart is empty")
}

func TestCheckoutPlacesOrder(t *testing.T) {
	var payload map[string]any
	f := setupTestFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/orders/cart/":
			w.Write([]byte(`{"items":[{"sku_code":"MILK-1L","quantity":2,"total_price":100}],"total_amount":100}`))
		case "/orders/create/":
			json.NewDecoder(r.Body).Decode(&payload)
			w.Write([]byte(`{"id":"ord-1"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	selectAddress(t, f)

	orderID, err := f.orders.Checkout(context.Background(), orders.PaymentCOD, 25)
	require.NoError(t, err)
	require.Equal(t, "ord-1", orderID)

	require.Equal(t, "addr-1", payload["delivery_address_id"])
	require.Equal(t, "COD", payload["payment_method"])
	require.Equal(t, "express", payload["delivery_type"])
	require.Equal(t, 125.0, payload["total_amount"], "delivery fee rides on top of the cart total")
}

func TestCheckoutAcceptsWrappedOrderEnvelope(t *testing.T) {
	f := setupTestFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/orders/cart/":
			w.Write([]byte(`{"items":[],"total_amount":50}`))
		case "/orders/create/":
			w.Write([]byte(`{"order":{"id":"ord-2","status":"PENDING"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	selectAddress(t, f)

	orderID, err := f.orders.Checkout(context.Background(), orders.PaymentCOD, 0)
	require.NoError(t, err)
	require.Equal(t, "ord-2", orderID)
}

func TestListAcceptsBothEnvelopes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bare array", `[{"id":"ord-1","status":"DELIVERED","total_amount":125}]`},
		{"paginated envelope", `{"results":[{"id":"ord-1","status":"DELIVERED","total_amount":125}]}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := setupTestFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			}))

			list, err := f.orders.List(context.Background())
			require.NoError(t, err)
			require.Len(t, list, 1)
			require.Equal(t, "ord-1", list[0].ID)
			require.Equal(t, 125.0, list[0].TotalAmount)
		})
	}
}

func TestCancel(t *testing.T) {
	var path string
	f := setupTestFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Write([]byte(`{}`))
	}))

	require.NoError(t, f.orders.Cancel(context.Background(), "ord-1"))
	require.Equal(t, "/orders/ord-1/cancel/", path)

	require.Error(t, f.orders.Cancel(context.Background(), ""))
}
