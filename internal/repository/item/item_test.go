package item

import (
	"context"
	"errors"
	"os"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/migrate"
	"github.com/jackc/pgx/v5/pgxpool"
)

func TestPostgres_ListAndGet(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	repo := NewPostgres(pool, nil)

	created, err := repo.Upsert(ctx, domain.Item{Slug: "mug", Name: "Mug", PriceYen: 500})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected generated id")
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].Slug != "mug" {
		t.Fatalf("unexpected list %+v", list)
	}

	got, err := repo.GetBySlug(ctx, "mug")
	if err != nil {
		t.Fatalf("GetBySlug: %v", err)
	}
	if got.ID != created.ID || got.PriceYen != 500 {
		t.Fatalf("unexpected item %+v", got)
	}

	if _, err := repo.GetBySlug(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPostgres_UpsertUpdatesPrice(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	repo := NewPostgres(pool, nil)
	if _, err := repo.Upsert(ctx, domain.Item{Slug: "mug", Name: "Mug", PriceYen: 500}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	updated, err := repo.Upsert(ctx, domain.Item{Slug: "mug", Name: "Big Mug", PriceYen: 700})
	if err != nil {
		t.Fatalf("Upsert update: %v", err)
	}
	got, err := repo.GetBySlug(ctx, "mug")
	if err != nil {
		t.Fatalf("GetBySlug: %v", err)
	}
	if got.ID != updated.ID || got.Name != "Big Mug" || got.PriceYen != 700 {
		t.Fatalf("unexpected item %+v", got)
	}
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE order_items, orders, payments, items, tokens, customers CASCADE`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return pool
}
