package catalog

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/cache"
	"storefront/internal/domain"
)

type stubItemRepo struct {
	items     []domain.Item
	item      *domain.Item
	err       error
	listCalls int
	getCalls  int
}

func (s *stubItemRepo) List(_ context.Context) ([]domain.Item, error) {
	s.listCalls++
	return s.items, s.err
}

func (s *stubItemRepo) GetBySlug(_ context.Context, _ string) (*domain.Item, error) {
	s.getCalls++
	if s.err != nil {
		return nil, s.err
	}
	return s.item, nil
}

type stubCache struct {
	item    *domain.Item
	items   []domain.Item
	getErr  error
	listErr error
	setItem *domain.Item
	setList []domain.Item
}

func (s *stubCache) GetItem(_ context.Context, _ string) (*domain.Item, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.item, nil
}

func (s *stubCache) SetItem(_ context.Context, item domain.Item) error {
	s.setItem = &item
	return nil
}

func (s *stubCache) GetList(_ context.Context) ([]domain.Item, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.items, nil
}

func (s *stubCache) SetList(_ context.Context, items []domain.Item) error {
	s.setList = items
	return nil
}

func TestListWithoutCache(t *testing.T) {
	repo := &stubItemRepo{items: []domain.Item{{Slug: "mug"}}}
	svc := New(repo, nil, nil)
	items, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].Slug != "mug" {
		t.Fatalf("unexpected items %+v", items)
	}
}

func TestListCacheHitSkipsRepo(t *testing.T) {
	repo := &stubItemRepo{}
	c := &stubCache{items: []domain.Item{{Slug: "mug"}}}
	svc := New(repo, c, nil)
	items, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || repo.listCalls != 0 {
		t.Fatalf("expected cache hit, repo calls=%d", repo.listCalls)
	}
}

func TestListCacheMissFillsCache(t *testing.T) {
	repo := &stubItemRepo{items: []domain.Item{{Slug: "mug"}}}
	c := &stubCache{listErr: cache.ErrCacheMiss}
	svc := New(repo, c, nil)
	if _, err := svc.List(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.listCalls != 1 || len(c.setList) != 1 {
		t.Fatalf("expected repo read and cache fill, calls=%d set=%+v", repo.listCalls, c.setList)
	}
}

func TestGetCacheErrorFallsBackToRepo(t *testing.T) {
	repo := &stubItemRepo{item: &domain.Item{Slug: "mug", PriceYen: 500}}
	c := &stubCache{getErr: errors.New("redis down")}
	svc := New(repo, c, nil)
	item, err := svc.Get(context.Background(), "mug")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.PriceYen != 500 || repo.getCalls != 1 {
		t.Fatalf("expected repo fallback, got %+v calls=%d", item, repo.getCalls)
	}
}

func TestGetNotFound(t *testing.T) {
	repo := &stubItemRepo{err: domain.ErrNotFound}
	svc := New(repo, nil, nil)
	if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
