package basket_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/storefront-cart/internal/basket"
	"github.com/noah-isme/storefront-cart/internal/resilience"
)

func TestAddItemSuccess(t *testing.T) {
	var got basket.Product
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, basket.AddPath, r.URL.Path)
		require.Equal(t, "tok", r.Header.Get("X-CSRFToken"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ERROR": "", "isSuccess": true, "MESSAGE": "Added product to cart request session", "NUM_OF_ITEMS_IN_CART": 3,
		})
	}))
	t.Cleanup(srv.Close)

	client, err := basket.New(basket.Config{BaseURL: srv.URL, CSRFToken: "tok", Timeout: time.Second})
	require.NoError(t, err)

	res, err := client.AddItem(context.Background(), basket.Product{ID: "9", Name: "Hat", Price: "£8", Qty: 1, Stock: 4})
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, 3, res.CartItemCount)
	require.Equal(t, "9", got.ID)
	require.Equal(t, 4, got.Stock)
}

func TestAddItemRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ERROR": "Something went wrong and no product data was received.", "isSuccess": false, "NUM_OF_ITEMS_IN_CART": 1,
		})
	}))
	t.Cleanup(srv.Close)

	client, err := basket.New(basket.Config{BaseURL: srv.URL})
	require.NoError(t, err)
	res, err := client.AddItem(context.Background(), basket.Product{ID: "9"})
	require.ErrorIs(t, err, basket.ErrRejected)
	require.False(t, res.Success)
	require.Contains(t, res.Message, "no product data")
}

func TestAddItemOpenBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	breaker := resilience.NewBreaker(resilience.BreakerConfig{Target: "basket-test", MinRequests: 1, OpenFor: time.Minute}, zerolog.Nop())
	client, err := basket.New(basket.Config{BaseURL: srv.URL, Breaker: breaker})
	require.NoError(t, err)

	_, err = client.AddItem(context.Background(), basket.Product{ID: "9"})
	require.Error(t, err)
	_, err = client.AddItem(context.Background(), basket.Product{ID: "9"})
	require.ErrorIs(t, err, resilience.ErrOpenCircuit)
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := basket.New(basket.Config{BaseURL: "ftp://shop"})
	require.Error(t, err)
	_, err = basket.New(basket.Config{BaseURL: "http://"})
	require.Error(t, err)
}
