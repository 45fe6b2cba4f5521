package cache

import (
	"context"
	"errors"

	"storefront/internal/domain"
)

// ItemCache is a read-through cache for the immutable catalog.
type ItemCache interface {
	GetItem(ctx context.Context, slug string) (*domain.Item, error)
	SetItem(ctx context.Context, item domain.Item) error
	GetList(ctx context.Context) ([]domain.Item, error)
	SetList(ctx context.Context, items []domain.Item) error
}

var ErrCacheMiss = errors.New("cache miss")
