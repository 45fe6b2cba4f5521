package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type itemSeed struct {
	Slug     string
	Name     string
	PriceYen int64
}

// Apply inserts basic seed data for manual testing. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	items := []itemSeed{
		{Slug: "mug", Name: "Mug", PriceYen: 500},
		{Slug: "tea", Name: "Tea", PriceYen: 300},
		{Slug: "kettle", Name: "Kettle", PriceYen: 700},
		{Slug: "tote-bag", Name: "Tote Bag", PriceYen: 1200},
	}

	for _, it := range items {
		if err := upsertItem(ctx, pool, it); err != nil {
			return fmt.Errorf("upsert item %s: %w", it.Slug, err)
		}
	}

	return nil
}

func upsertItem(ctx context.Context, pool *pgxpool.Pool, it itemSeed) error {
	const q = `
INSERT INTO items (slug, name, price_yen)
VALUES ($1, $2, $3)
ON CONFLICT (slug) DO UPDATE
SET name = EXCLUDED.name,
    price_yen = EXCLUDED.price_yen
`
	_, err := pool.Exec(ctx, q, it.Slug, it.Name, it.PriceYen)
	if err != nil {
		return err
	}
	return nil
}
