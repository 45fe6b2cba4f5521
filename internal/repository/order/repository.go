package order

import (
	"context"
	"time"

	"storefront/internal/domain"
)

type Repository interface {
	// GetActiveByCustomer returns the customer's open cart, lines included.
	GetActiveByCustomer(ctx context.Context, customerID string) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	// AddItem finds or creates the active order and inserts the line with
	// quantity 1, or increments the existing line by 1, in one transaction.
	AddItem(ctx context.Context, customerID string, item domain.Item) (*domain.Order, error)
	// RemoveLine deletes the line entirely regardless of quantity.
	RemoveLine(ctx context.Context, orderID, itemID string) error
	// DecrementLine lowers the quantity by one, deleting the line at quantity 1.
	DecrementLine(ctx context.Context, orderID, itemID string) error
	// MarkPendingPayment transitions active -> pending_payment and stamps the
	// checkout reference. ErrNotFound when the order is not active.
	MarkPendingPayment(ctx context.Context, orderID, checkoutRef string) error
	// Reactivate reverts pending_payment -> active after a failed charge.
	Reactivate(ctx context.Context, orderID string) error
	// Finalize inserts the payment record and marks the order paid in one
	// transaction. ErrNotFound when the order is not pending payment.
	Finalize(ctx context.Context, orderID string, payment domain.Payment) (*domain.Payment, error)
	// ListStalePending returns pending_payment orders older than the cutoff.
	ListStalePending(ctx context.Context, cutoff time.Time) ([]domain.Order, error)
}
