package reconcile

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_FlatShape(t *testing.T) {
	p, err := Normalize([]byte(`{"status":"successful","transactionId":"txn-1","reference":"ref-1"}`))

	require.NoError(t, err)
	assert.Equal(t, "successful", p.Status)
	assert.Equal(t, "txn-1", p.TransactionID)
	assert.Equal(t, "ref-1", p.Reference)
}

func TestNormalize_EventWrappedShape(t *testing.T) {
	p, err := Normalize([]byte(`{"event":"transaction.settled","data":{"status":"successful","transactionId":"txn-2"}}`))

	require.NoError(t, err)
	assert.Equal(t, "successful", p.Status)
	assert.Equal(t, "txn-2", p.TransactionID)
}

func TestNormalize_StatusDerivedFromEvent(t *testing.T) {
	tests := []struct {
		event    string
		expected string
	}{
		{"transaction.successful", "successful"},
		{"transaction.failed", "failed"},
		{"collection.otp", "otp"},
		{"settled", "settled"},
	}
	for _, tt := range tests {
		t.Run(tt.event, func(t *testing.T) {
			p, err := Normalize([]byte(`{"event":"` + tt.event + `","data":{"reference":"ref-9"}}`))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, p.Status)
		})
	}
}

func TestNormalize_ExplicitStatusBeatsEvent(t *testing.T) {
	p, err := Normalize([]byte(`{"event":"transaction.failed","status":"successful","reference":"r"}`))

	require.NoError(t, err)
	assert.Equal(t, "successful", p.Status)
}

func TestNormalize_MissingIdentifier(t *testing.T) {
	_, err := Normalize([]byte(`{"status":"successful"}`))
	assert.ErrorIs(t, err, ErrMissingIdentifier)

	_, err = Normalize([]byte(`{"event":"transaction.successful","data":{}}`))
	assert.ErrorIs(t, err, ErrMissingIdentifier)
}

func TestNormalize_MalformedJSON(t *testing.T) {
	_, err := Normalize([]byte(`{not json`))
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func sign(body []byte, secret string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"status":"successful","reference":"ref-1"}`)

	assert.True(t, VerifySignature(body, sign(body, "secret"), "secret"))
	assert.False(t, VerifySignature(body, sign(body, "other"), "secret"))
	assert.False(t, VerifySignature(body, "deadbeef", "secret"))
	assert.False(t, VerifySignature(body, "", "secret"))

	// Signature of a tampered body never matches.
	tampered := []byte(`{"status":"failed","reference":"ref-1"}`)
	assert.False(t, VerifySignature(tampered, sign(body, "secret"), "secret"))
}

func TestVerifySignature_CaseInsensitiveHex(t *testing.T) {
	body := []byte(`payload`)
	upper := strings.ToUpper(sign(body, "secret"))
	assert.True(t, VerifySignature(body, upper, "secret"))
}
