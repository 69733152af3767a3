package reconcile

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
)

var (
	ErrMalformedPayload  = errors.New("malformed webhook payload")
	ErrMissingIdentifier = errors.New("webhook payload carries no transaction id or reference")
)

// Payload is the normalized webhook body.
type Payload struct {
	Status        string
	TransactionID string
	Reference     string
}

// webhookBody covers both shapes the provider sends: a flat object or an
// event wrapper with the same fields nested under data.
type webhookBody struct {
	Event         string `json:"event"`
	Status        string `json:"status"`
	TransactionID string `json:"transactionId"`
	Reference     string `json:"reference"`
	Data          struct {
		Status        string `json:"status"`
		TransactionID string `json:"transactionId"`
		Reference     string `json:"reference"`
	} `json:"data"`
}

// Normalize extracts status, transaction id and reference from either
// payload shape. When status is absent it is derived from the event name
// (transaction.successful -> successful).
func Normalize(raw []byte) (Payload, error) {
	var body webhookBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return Payload{}, ErrMalformedPayload
	}

	p := Payload{
		Status:        firstNonEmpty(body.Status, body.Data.Status),
		TransactionID: firstNonEmpty(body.TransactionID, body.Data.TransactionID),
		Reference:     firstNonEmpty(body.Reference, body.Data.Reference),
	}

	if p.Status == "" && body.Event != "" {
		// transaction.successful, transaction.failed, ...
		if i := strings.LastIndex(body.Event, "."); i >= 0 {
			p.Status = body.Event[i+1:]
		} else {
			p.Status = body.Event
		}
	}

	if p.TransactionID == "" && p.Reference == "" {
		return Payload{}, ErrMissingIdentifier
	}
	return p, nil
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// VerifySignature checks a hex-encoded HMAC-SHA512 of the raw body against
// the signature header value.
func VerifySignature(body []byte, signature, secret string) bool {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}
