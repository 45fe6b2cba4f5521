package catalog

import (
	"context"
	"errors"
	"io"
	"log"

	"storefront/internal/cache"
	"storefront/internal/domain"
)

type Service struct {
	repo   itemRepo
	cache  cache.ItemCache
	logger *log.Logger
}

type itemRepo interface {
	List(ctx context.Context) ([]domain.Item, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Item, error)
}

// New builds the catalog service. items may be nil to disable caching.
func New(repo itemRepo, items cache.ItemCache, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, cache: items, logger: logger}
}

func (s *Service) List(ctx context.Context) ([]domain.Item, error) {
	if s.cache != nil {
		items, err := s.cache.GetList(ctx)
		if err == nil {
			return items, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Printf("catalog: cache list error=%v", err)
		}
	}

	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetList(ctx, items); err != nil {
			s.logger.Printf("catalog: cache fill error=%v", err)
		}
	}
	return items, nil
}

func (s *Service) Get(ctx context.Context, slug string) (*domain.Item, error) {
	if s.cache != nil {
		item, err := s.cache.GetItem(ctx, slug)
		if err == nil {
			return item, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Printf("catalog: cache get slug=%s error=%v", slug, err)
		}
	}

	item, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetItem(ctx, *item); err != nil {
			s.logger.Printf("catalog: cache fill slug=%s error=%v", slug, err)
		}
	}
	return item, nil
}
