package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/example/mv-checkout/internal/checkout"
	"github.com/example/mv-checkout/internal/domain/cart"
	domaincoupon "github.com/example/mv-checkout/internal/domain/coupon"
	"github.com/example/mv-checkout/internal/domain/order"
	"github.com/example/mv-checkout/internal/storage"
)

type Handlers struct {
	checkoutSvc *checkout.Service
	repo        storage.Repository
	log         zerolog.Logger
}

func NewHandlers(checkoutSvc *checkout.Service, repo storage.Repository, log zerolog.Logger) *Handlers {
	return &Handlers{
		checkoutSvc: checkoutSvc,
		repo:        repo,
		log:         log.With().Str("component", "api").Logger(),
	}
}

// QuoteDeliveryCost prices every delivery tier for a cart and location.
func (h *Handlers) QuoteDeliveryCost(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Location checkout.Location `json:"location"`
		Items    []cart.Item       `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	quotes, err := h.checkoutSvc.QuoteDelivery(r.Context(), req.Location, req.Items)
	switch {
	case errors.Is(err, checkout.ErrEmptyCart), errors.Is(err, checkout.ErrInvalidLocation):
		respondError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.log.Error().Err(err).Msg("quote delivery cost")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	costs := make(map[string]string, len(quotes))
	for tier, cost := range quotes {
		costs[string(tier)] = cost.StringFixed(2)
	}
	respondJSON(w, http.StatusOK, map[string]any{"costs": costs})
}

// VerifyCoupon resolves a code against the stores present in the cart.
func (h *Handlers) VerifyCoupon(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code     string   `json:"code"`
		StoreIDs []string `json:"store_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Code == "" || len(req.StoreIDs) == 0 {
		respondError(w, http.StatusBadRequest, "code and store_ids are required")
		return
	}

	c, err := h.checkoutSvc.VerifyCoupon(r.Context(), req.Code, req.StoreIDs)
	switch {
	case errors.Is(err, domaincoupon.ErrNotApplicable):
		respondError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		h.log.Error().Err(err).Msg("verify coupon")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// PlaceOrder runs the commit pipeline and reports full, partial or no
// success with per-store errors.
func (h *Handlers) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Form    checkout.Form         `json:"form"`
		Items   []cart.Item           `json:"items"`
		Coupons []domaincoupon.Coupon `json:"coupons,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.checkoutSvc.PlaceOrder(r.Context(), req.Form, req.Items, req.Coupons)
	switch {
	case errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrInvalidTier),
		errors.Is(err, checkout.ErrInvalidLocation):
		respondError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.log.Error().Err(err).Msg("place order")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	status := http.StatusCreated
	if len(result.OrderIDs) == 0 {
		status = http.StatusUnprocessableEntity
	}
	respondJSON(w, status, result)
}

// GetOrder is the order-tracking read endpoint.
func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/orders/")
	if id == "" {
		respondError(w, http.StatusBadRequest, "order id is required")
		return
	}

	o, err := h.repo.GetOrderByID(r.Context(), id)
	switch {
	case errors.Is(err, order.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "order not found")
		return
	case err != nil:
		h.log.Error().Err(err).Str("order_id", id).Msg("get order")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
