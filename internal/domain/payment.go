package domain

import "time"

// Payment records a successful external charge.
type Payment struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customerId"`
	ChargeID   string    `json:"chargeId"`
	AmountYen  int64     `json:"amountYen"`
	CreatedAt  time.Time `json:"createdAt"`
}
