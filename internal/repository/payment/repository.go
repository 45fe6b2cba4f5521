package payment

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Payment, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Payment, error)
}
