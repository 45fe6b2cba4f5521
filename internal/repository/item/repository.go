package item

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	List(ctx context.Context) ([]domain.Item, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Item, error)
	Upsert(ctx context.Context, item domain.Item) (*domain.Item, error)
}
