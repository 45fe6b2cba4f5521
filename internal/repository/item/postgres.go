package item

import (
	"context"
	"errors"
	"io"
	"log"

	"storefront/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Item, error) {
	const q = `
SELECT id::text, slug, name, price_yen, created_at
FROM items
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Printf("item repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Item
	for rows.Next() {
		var it domain.Item
		if err := rows.Scan(&it.ID, &it.Slug, &it.Name, &it.PriceYen, &it.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, it)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("item repo: list rows error=%v", err)
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) GetBySlug(ctx context.Context, slug string) (*domain.Item, error) {
	const q = `
SELECT id::text, slug, name, price_yen, created_at
FROM items
WHERE slug = $1
`
	var it domain.Item
	err := r.pool.QueryRow(ctx, q, slug).Scan(&it.ID, &it.Slug, &it.Name, &it.PriceYen, &it.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Printf("item repo: get slug=%s not found", slug)
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("item repo: get slug=%s error=%v", slug, err)
		return nil, err
	}
	return &it, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, item domain.Item) (*domain.Item, error) {
	const q = `
INSERT INTO items (slug, name, price_yen)
VALUES ($1, $2, $3)
ON CONFLICT (slug) DO UPDATE SET
    name = EXCLUDED.name,
    price_yen = EXCLUDED.price_yen
RETURNING id::text, created_at
`
	res := item
	if err := r.pool.QueryRow(ctx, q, item.Slug, item.Name, item.PriceYen).Scan(&res.ID, &res.CreatedAt); err != nil {
		r.logger.Printf("item repo: upsert slug=%s error=%v", item.Slug, err)
		return nil, err
	}
	r.logger.Printf("item repo: upserted slug=%s id=%s", res.Slug, res.ID)
	return &res, nil
}
