package customer

import "time"

// Customer is keyed by email: created on first order, updated with the
// latest contact details on every subsequent one.
type Customer struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	Address     string    `json:"address"`
	LastOrderAt time.Time `json:"last_order_at"`
	CreatedAt   time.Time `json:"created_at"`
}
