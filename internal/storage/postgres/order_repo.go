package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mbenitez/stockroom/internal/domain"
)

type OrderRepo struct{ DB *pgxpool.Pool }

func (r *OrderRepo) List(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, status, shipping_type, created_at, updated_at
		FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Order
	index := map[string]int{}
	for rows.Next() {
		var o domain.Order
		var status, shipping string
		if err := rows.Scan(&o.ID, &status, &shipping, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		o.Status = domain.Status(status)
		o.ShippingType = domain.ShippingType(shipping)
		index[o.ID] = len(out)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	irows, err := r.DB.Query(ctx, `
		SELECT id, order_id, COALESCE(product_id::text, ''), sku, qty, unit_price
		FROM order_items`)
	if err != nil {
		return nil, err
	}
	defer irows.Close()
	for irows.Next() {
		var it domain.OrderItem
		if err := irows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.SKU, &it.Qty, &it.UnitPrice); err != nil {
			return nil, err
		}
		if i, ok := index[it.OrderID]; ok {
			out[i].Items = append(out[i].Items, it)
		}
	}
	return out, irows.Err()
}

func (r *OrderRepo) Get(ctx context.Context, id string) (domain.Order, error) {
	var o domain.Order
	var status, shipping string
	err := r.DB.QueryRow(ctx, `
		SELECT id, status, shipping_type, created_at, updated_at
		FROM orders WHERE id=$1`, id).
		Scan(&o.ID, &status, &shipping, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	if err != nil {
		return domain.Order{}, err
	}
	o.Status = domain.Status(status)
	o.ShippingType = domain.ShippingType(shipping)

	rows, err := r.DB.Query(ctx, `
		SELECT id, order_id, COALESCE(product_id::text, ''), sku, qty, unit_price
		FROM order_items WHERE order_id=$1`, id)
	if err != nil {
		return domain.Order{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.SKU, &it.Qty, &it.UnitPrice); err != nil {
			return domain.Order{}, err
		}
		o.Items = append(o.Items, it)
	}
	return o, rows.Err()
}

// Create inserts the order with its items and reserves stock for every
// item that references a product, in one transaction.
func (r *OrderRepo) Create(ctx context.Context, o domain.Order) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		INSERT INTO orders(id, status, shipping_type) VALUES ($1,$2,$3)`,
		o.ID, string(o.Status), string(o.ShippingType)); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return err
	}

	for _, it := range o.Items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items(id, order_id, product_id, sku, qty, unit_price)
			VALUES ($1,$2,NULLIF($3,'')::uuid,$4,$5,$6)`,
			it.ID, o.ID, it.ProductID, it.SKU, it.Qty, it.UnitPrice); err != nil {
			return err
		}
		if it.ProductID == "" {
			continue // unregistered-product sale, nothing to reserve
		}
		var before int
		if err := tx.QueryRow(ctx,
			`SELECT stock_total FROM products WHERE id=$1 FOR UPDATE`, it.ProductID).Scan(&before); err != nil {
			return fmt.Errorf("reserve %s: %w", it.SKU, err)
		}
		if _, err := tx.Exec(ctx, `
			UPDATE products
			SET stock_reserved = stock_reserved + $2, version = version + 1, updated_at = NOW()
			WHERE id=$1`, it.ProductID, it.Qty); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO stock_movements(id, product_id, kind, qty, stock_before, stock_after, reference_id)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			uuid.NewString(), it.ProductID, string(domain.MovementReserve), it.Qty, before, before, o.ID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// SetStatus moves the order forward only if the stored status still
// equals from; a zero row count means the order moved under us or does
// not exist.
func (r *OrderRepo) SetStatus(ctx context.Context, id string, from, to domain.Status) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE orders SET status=$3, updated_at=NOW()
		WHERE id=$1 AND status=$2`, id, string(from), string(to))
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 1 {
		return nil
	}
	var exists bool
	if err := r.DB.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE id=$1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.ErrOrderNotFound
	}
	return domain.ErrInvalidTransition
}

// Dispatch is the single atomic dispatch operation: per-item stock
// decrement (floored at zero) plus the status flip commit together or
// not at all.
func (r *OrderRepo) Dispatch(ctx context.Context, id string) (domain.Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Order{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var status string
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1 FOR UPDATE`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	if err != nil {
		return domain.Order{}, err
	}
	switch domain.Status(status) {
	case domain.StatusPrepared:
	case domain.StatusDispatched:
		return domain.Order{}, domain.ErrOrderFinal
	default:
		return domain.Order{}, domain.ErrInvalidTransition
	}

	rows, err := tx.Query(ctx, `
		SELECT COALESCE(product_id::text, ''), sku, qty
		FROM order_items WHERE order_id=$1`, id)
	if err != nil {
		return domain.Order{}, err
	}
	type line struct {
		productID, sku string
		qty            int
	}
	var lines []line
	for rows.Next() {
		var l line
		if err := rows.Scan(&l.productID, &l.sku, &l.qty); err != nil {
			rows.Close()
			return domain.Order{}, err
		}
		lines = append(lines, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return domain.Order{}, err
	}

	for _, l := range lines {
		if l.productID == "" {
			continue
		}
		var total, reserved int
		if err := tx.QueryRow(ctx,
			`SELECT stock_total, stock_reserved FROM products WHERE id=$1 FOR UPDATE`, l.productID).
			Scan(&total, &reserved); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				// stale product reference, nothing to decrement
				continue
			}
			return domain.Order{}, err
		}
		newTotal := max(0, total-l.qty)
		newReserved := max(0, reserved-l.qty)
		if _, err := tx.Exec(ctx, `
			UPDATE products
			SET stock_total=$2, stock_reserved=$3, version=version+1, updated_at=NOW()
			WHERE id=$1`, l.productID, newTotal, newReserved); err != nil {
			return domain.Order{}, err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO stock_movements(id, product_id, kind, qty, stock_before, stock_after, reference_id)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			uuid.NewString(), l.productID, string(domain.MovementDispatch), l.qty, total, newTotal, id); err != nil {
			return domain.Order{}, err
		}
	}

	if _, err := tx.Exec(ctx, `
		UPDATE orders SET status=$2, updated_at=NOW() WHERE id=$1`,
		id, string(domain.StatusDispatched)); err != nil {
		return domain.Order{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Order{}, err
	}
	return r.Get(ctx, id)
}
