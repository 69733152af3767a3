package email

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBuildOrderConfirmationBody(t *testing.T) {
	items := []OrderItem{
		{ProductID: "p1", Name: "Widget", Quantity: 2, Price: decimal.NewFromFloat(50)},
		{ProductID: "p2", Quantity: 1, Price: decimal.NewFromFloat(9.5)},
	}

	body := BuildOrderConfirmationBody("order-123", decimal.NewFromFloat(129.50), items)

	assert.Contains(t, body, "order-123")
	assert.Contains(t, body, "Widget")
	// Nameless items fall back to the product id.
	assert.Contains(t, body, "p2")
	assert.Contains(t, body, "K129.50")
	assert.Contains(t, body, "K100.00") // 2 x 50 line total
}

func TestBuildPaymentConfirmedBody(t *testing.T) {
	body := BuildPaymentConfirmedBody("order-123", "DLV-STOR-123456-0042")

	assert.Contains(t, body, "order-123")
	assert.Contains(t, body, "DLV-STOR-123456-0042")
	assert.Contains(t, body, "delivery code")
}
