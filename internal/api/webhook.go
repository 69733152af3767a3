package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/example/mv-checkout/internal/domain/order"
	"github.com/example/mv-checkout/internal/reconcile"
)

const signatureHeader = "X-Webhook-Signature"

// WebhookHandler terminates payment-provider callbacks: it authenticates
// the raw body, normalizes the payload and hands it to the reconciler.
type WebhookHandler struct {
	reconciler *reconcile.Reconciler
	secret     string
	// enforce requires a valid signature even when no secret is configured,
	// which rejects everything. Set in production so a missing secret fails
	// closed instead of accepting unsigned callbacks.
	enforce bool
	log     zerolog.Logger
}

func NewWebhookHandler(reconciler *reconcile.Reconciler, secret string, enforce bool, log zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		reconciler: reconciler,
		secret:     secret,
		enforce:    enforce,
		log:        log.With().Str("component", "webhook").Logger(),
	}
}

func (h *WebhookHandler) HandlePayment(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	if h.secret != "" || h.enforce {
		sig := r.Header.Get(signatureHeader)
		// An empty secret can never validate: an HMAC keyed on "" is
		// guessable, so enforced mode without a secret rejects everything.
		if h.secret == "" || !reconcile.VerifySignature(body, sig, h.secret) {
			h.log.Warn().Bool("signature_present", sig != "").Msg("webhook signature rejected")
			respondError(w, http.StatusUnauthorized, "invalid signature")
			return
		}
	}

	payload, err := reconcile.Normalize(body)
	if err != nil {
		h.log.Warn().Err(err).Msg("webhook payload rejected")
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	err = h.reconciler.Process(r.Context(), payload)
	switch {
	case errors.Is(err, order.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "no order matches transaction")
		return
	case err != nil:
		h.log.Error().Err(err).Str("transaction_id", payload.TransactionID).Msg("reconcile webhook")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
