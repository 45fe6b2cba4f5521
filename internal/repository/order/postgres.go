package order

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"storefront/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const orderColumns = `id::text, customer_id::text, status, checkout_ref::text, payment_id::text, created_at, ordered_at`

const linesQuery = `
SELECT ol.id::text, ol.order_id::text, ol.item_id::text, i.slug, i.name, ol.quantity, ol.unit_price_yen, ol.created_at
FROM order_items ol
JOIN items i ON i.id = ol.item_id
WHERE ol.order_id = $1
ORDER BY ol.created_at ASC
`

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

func (r *postgresRepo) GetActiveByCustomer(ctx context.Context, customerID string) (*domain.Order, error) {
	q := `
SELECT ` + orderColumns + `
FROM orders
WHERE customer_id = $1 AND status = 'active'
`
	return r.fetchOrder(ctx, q, customerID)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	q := `
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1
`
	return r.fetchOrder(ctx, q, id)
}

func (r *postgresRepo) AddItem(ctx context.Context, customerID string, item domain.Item) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var orderID string
	err = tx.QueryRow(ctx, `
SELECT id::text
FROM orders
WHERE customer_id = $1 AND status = 'active'
FOR UPDATE
`, customerID).Scan(&orderID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if errors.Is(err, pgx.ErrNoRows) {
		if err := tx.QueryRow(ctx, `
INSERT INTO orders (customer_id, status)
VALUES ($1, 'active')
RETURNING id::text
`, customerID).Scan(&orderID); err != nil {
			return nil, err
		}
		r.logger.Printf("order repo: created order id=%s customer=%s", orderID, customerID)
	}

	var lineID string
	var qty int
	err = tx.QueryRow(ctx, `
SELECT id::text, quantity
FROM order_items
WHERE order_id = $1 AND item_id = $2
`, orderID, item.ID).Scan(&lineID, &qty)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	if err == nil {
		if _, err := tx.Exec(ctx, `
UPDATE order_items
SET quantity = quantity + 1
WHERE id = $1
`, lineID); err != nil {
			return nil, err
		}
	} else {
		if _, err := tx.Exec(ctx, `
INSERT INTO order_items (order_id, item_id, quantity, unit_price_yen)
VALUES ($1, $2, 1, $3)
`, orderID, item.ID, item.PriceYen); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, orderID)
}

func (r *postgresRepo) RemoveLine(ctx context.Context, orderID, itemID string) error {
	cmd, err := r.pool.Exec(ctx, `
DELETE FROM order_items
WHERE order_id = $1 AND item_id = $2
`, orderID, itemID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) DecrementLine(ctx context.Context, orderID, itemID string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var qty int
	err = tx.QueryRow(ctx, `
SELECT quantity
FROM order_items
WHERE order_id = $1 AND item_id = $2
FOR UPDATE
`, orderID, itemID).Scan(&qty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}

	if qty > 1 {
		if _, err := tx.Exec(ctx, `
UPDATE order_items
SET quantity = quantity - 1
WHERE order_id = $1 AND item_id = $2
`, orderID, itemID); err != nil {
			return err
		}
	} else {
		if _, err := tx.Exec(ctx, `
DELETE FROM order_items
WHERE order_id = $1 AND item_id = $2
`, orderID, itemID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *postgresRepo) MarkPendingPayment(ctx context.Context, orderID, checkoutRef string) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE orders
SET status = 'pending_payment', checkout_ref = $2
WHERE id = $1 AND status = 'active'
`, orderID, checkoutRef)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("order repo: order id=%s pending payment ref=%s", orderID, checkoutRef)
	return nil
}

func (r *postgresRepo) Reactivate(ctx context.Context, orderID string) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE orders
SET status = 'active', checkout_ref = NULL
WHERE id = $1 AND status = 'pending_payment'
`, orderID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("order repo: order id=%s reactivated", orderID)
	return nil
}

func (r *postgresRepo) Finalize(ctx context.Context, orderID string, payment domain.Payment) (*domain.Payment, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	res := payment
	if err := tx.QueryRow(ctx, `
INSERT INTO payments (customer_id, charge_id, amount_yen)
VALUES ($1, $2, $3)
RETURNING id::text, created_at
`, payment.CustomerID, payment.ChargeID, payment.AmountYen).Scan(&res.ID, &res.CreatedAt); err != nil {
		return nil, err
	}

	cmd, err := tx.Exec(ctx, `
UPDATE orders
SET status = 'paid', payment_id = $2, ordered_at = now()
WHERE id = $1 AND status = 'pending_payment'
`, orderID, res.ID)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("order repo: order id=%s paid payment=%s charge=%s", orderID, res.ID, res.ChargeID)
	return &res, nil
}

func (r *postgresRepo) ListStalePending(ctx context.Context, cutoff time.Time) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+orderColumns+`
FROM orders
WHERE status = 'pending_payment' AND created_at < $1
`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	var result []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, err
		}
		result = append(result, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		lines, err := r.fetchLines(ctx, ids[i])
		if err != nil {
			return nil, err
		}
		result[i].Lines = lines
	}
	return result, nil
}

func (r *postgresRepo) fetchOrder(ctx context.Context, q string, args ...interface{}) (*domain.Order, error) {
	var o domain.Order
	row := r.pool.QueryRow(ctx, q, args...)
	if err := scanOrder(row, &o); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	lines, err := r.fetchLines(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Lines = lines
	return &o, nil
}

func (r *postgresRepo) fetchLines(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	rows, err := r.pool.Query(ctx, linesQuery, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.OrderItem
	for rows.Next() {
		var line domain.OrderItem
		if err := rows.Scan(
			&line.ID,
			&line.OrderID,
			&line.ItemID,
			&line.ItemSlug,
			&line.ItemName,
			&line.Quantity,
			&line.UnitPriceYen,
			&line.CreatedAt,
		); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func scanOrder(row pgx.Row, o *domain.Order) error {
	return row.Scan(
		&o.ID,
		&o.CustomerID,
		&o.Status,
		&o.CheckoutRef,
		&o.PaymentID,
		&o.CreatedAt,
		&o.OrderedAt,
	)
}
