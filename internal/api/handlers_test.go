package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/mv-checkout/internal/checkout"
	"github.com/example/mv-checkout/internal/domain/coupon"
	"github.com/example/mv-checkout/internal/domain/order"
	"github.com/example/mv-checkout/internal/domain/store"
	"github.com/example/mv-checkout/internal/payment"
	"github.com/example/mv-checkout/internal/reconcile"
	"github.com/example/mv-checkout/internal/storage/mocks"
)

type stubPayer struct{}

func (stubPayer) Collect(ctx context.Context, phone string, amount decimal.Decimal, reference string) payment.Result {
	return payment.Result{Success: true, TransactionID: "txn-test"}
}

func newTestServer(t *testing.T) (*httptest.Server, *mocks.MockRepository) {
	t.Helper()
	repo := mocks.NewMockRepository()
	svc := checkout.NewService(repo, stubPayer{}, nil, zerolog.Nop())
	handlers := NewHandlers(svc, repo, zerolog.Nop())
	webhook := NewWebhookHandler(reconcile.NewReconciler(repo, nil, zerolog.Nop()), "whsec", false, zerolog.Nop())
	srv := httptest.NewServer(NewRouter(handlers, webhook, zerolog.Nop()))
	t.Cleanup(srv.Close)
	return srv, repo
}

func postJSON(t *testing.T, url string, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestQuoteDeliveryCost(t *testing.T) {
	srv, repo := newTestServer(t)
	repo.SeedStore(store.Store{ID: "s1", PickupLat: -15.4, PickupLng: 28.3})

	resp := postJSON(t, srv.URL+"/checkout/delivery-cost", `{
		"location": {"latitude": -15.4, "longitude": 28.3},
		"items": [{"product_id": "p1", "price": "50.00", "quantity": 1, "store_id": "s1"}]
	}`)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Costs map[string]string `json:"costs"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	// Customer at the store: base fee only, pickup stays free.
	assert.Equal(t, "0.00", body.Costs["pickup"])
	assert.Equal(t, "15.00", body.Costs["economy"])
	assert.Equal(t, "15.00", body.Costs["normal"])
	assert.Equal(t, "15.00", body.Costs["express"])
}

func TestQuoteDeliveryCost_EmptyCart(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/checkout/delivery-cost", `{"location":{"latitude":0,"longitude":0},"items":[]}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestQuoteDeliveryCost_BadJSON(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/checkout/delivery-cost", `{broken`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestVerifyCoupon(t *testing.T) {
	srv, repo := newTestServer(t)
	repo.SeedCoupon(coupon.Coupon{
		ID:            "c1",
		Code:          "SAVE10",
		StoreID:       "s1",
		DiscountType:  coupon.TypePercentage,
		DiscountValue: decimal.NewFromInt(10),
	})

	resp := postJSON(t, srv.URL+"/checkout/coupon", `{"code":"SAVE10","store_ids":["s1","s2"]}`)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var c coupon.Coupon
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&c))
	assert.Equal(t, "s1", c.StoreID)
	assert.Equal(t, "SAVE10", c.Code)
}

func TestVerifyCoupon_NotApplicable(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/checkout/coupon", `{"code":"NOPE","store_ids":["s1"]}`)

	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "coupon code is invalid or not applicable", body["error"])
}

func TestVerifyCoupon_MissingFields(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/checkout/coupon", `{"code":""}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPlaceOrder(t *testing.T) {
	srv, repo := newTestServer(t)
	repo.SeedStore(store.Store{ID: "s1", Name: "Store One", PickupLat: -15.4, PickupLng: 28.3})
	repo.SeedStock("p1", 5)

	resp := postJSON(t, srv.URL+"/checkout/orders", `{
		"form": {
			"email": "jo@example.com",
			"name": "Jo",
			"phone": "0961234567",
			"shipping_address": "12 Cairo Rd",
			"location": {"latitude": -15.4, "longitude": 28.3},
			"delivery_tier": "normal",
			"payment_method": "mobile_money",
			"payment_phone": "0961234567"
		},
		"items": [{"product_id": "p1", "name": "Widget", "price": "50.00", "quantity": 2, "store_id": "s1", "store_name": "Store One"}]
	}`)

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var result checkout.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, result.Success)
	require.Len(t, result.OrderIDs, 1)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 3, repo.Stock["p1"])
}

func TestPlaceOrder_ValidationError(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/checkout/orders", `{
		"form": {"delivery_tier": "normal"},
		"items": []
	}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPlaceOrder_AllStoresFail(t *testing.T) {
	srv, repo := newTestServer(t)
	repo.SeedStore(store.Store{ID: "s1", PickupLat: -15.4, PickupLng: 28.3})
	repo.SeedStock("p1", 1)

	resp := postJSON(t, srv.URL+"/checkout/orders", `{
		"form": {
			"email": "jo@example.com",
			"delivery_tier": "normal",
			"payment_phone": "0961234567",
			"location": {"latitude": -15.4, "longitude": 28.3}
		},
		"items": [{"product_id": "p1", "price": "50.00", "quantity": 3, "store_id": "s1"}]
	}`)

	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var result checkout.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.False(t, result.Success)
	assert.Empty(t, result.OrderIDs)
	assert.NotEmpty(t, result.Errors)
}

func TestGetOrder(t *testing.T) {
	srv, repo := newTestServer(t)
	repo.SeedOrder(order.Order{
		ID:      "o1",
		StoreID: "s1",
		Status:  order.StatusPendingPayment,
	})

	resp, err := http.Get(srv.URL + "/orders/o1")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var o order.Order
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&o))
	assert.Equal(t, "o1", o.ID)
	assert.Equal(t, order.StatusPendingPayment, o.Status)
}

func TestGetOrder_NotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/orders/missing")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/checkout/orders")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
