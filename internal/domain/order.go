package domain

import "time"

// Order status lifecycle: active -> pending_payment -> paid.
// pending_payment reverts to active when the charge fails.
const (
	OrderStatusActive         = "active"
	OrderStatusPendingPayment = "pending_payment"
	OrderStatusPaid           = "paid"
)

type Order struct {
	ID          string      `json:"id"`
	CustomerID  string      `json:"customerId"`
	Status      string      `json:"status"`
	CheckoutRef *string     `json:"-"`
	PaymentID   *string     `json:"paymentId,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	OrderedAt   *time.Time  `json:"orderedAt,omitempty"`
	Lines       []OrderItem `json:"lineItems"`
}

type OrderItem struct {
	ID           string    `json:"id"`
	OrderID      string    `json:"orderId"`
	ItemID       string    `json:"itemId"`
	ItemSlug     string    `json:"itemSlug"`
	ItemName     string    `json:"itemName"`
	Quantity     int       `json:"quantity"`
	UnitPriceYen int64     `json:"unitPriceYen"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Total sums unit price times quantity over all lines.
func (o Order) Total() int64 {
	var total int64
	for _, line := range o.Lines {
		total += line.UnitPriceYen * int64(line.Quantity)
	}
	return total
}

// Line returns the line item for the given item slug, or nil.
func (o Order) Line(slug string) *OrderItem {
	for i := range o.Lines {
		if o.Lines[i].ItemSlug == slug {
			return &o.Lines[i]
		}
	}
	return nil
}
