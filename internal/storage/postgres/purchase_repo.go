package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mbenitez/stockroom/internal/domain"
)

type PurchaseOrderRepo struct{ DB *pgxpool.Pool }

func (r *PurchaseOrderRepo) Create(ctx context.Context, po domain.PurchaseOrder) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		INSERT INTO purchase_orders(id, number, supplier, created_at) VALUES ($1,$2,$3,$4)`,
		po.ID, po.Number, po.Supplier, po.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return err
	}
	for _, l := range po.Lines {
		if _, err := tx.Exec(ctx, `
			INSERT INTO purchase_order_lines(purchase_order_id, sku, name, qty, unit_cost)
			VALUES ($1,$2,$3,$4,$5)`,
			po.ID, l.SKU, l.Name, l.Qty, l.UnitCost); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *PurchaseOrderRepo) List(ctx context.Context) ([]domain.PurchaseOrder, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, number, supplier, created_at FROM purchase_orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PurchaseOrder
	index := map[string]int{}
	for rows.Next() {
		var po domain.PurchaseOrder
		if err := rows.Scan(&po.ID, &po.Number, &po.Supplier, &po.CreatedAt); err != nil {
			return nil, err
		}
		index[po.ID] = len(out)
		out = append(out, po)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	lrows, err := r.DB.Query(ctx, `
		SELECT purchase_order_id, sku, name, qty, unit_cost FROM purchase_order_lines ORDER BY sku`)
	if err != nil {
		return nil, err
	}
	defer lrows.Close()
	for lrows.Next() {
		var poID string
		var l domain.PurchaseLine
		if err := lrows.Scan(&poID, &l.SKU, &l.Name, &l.Qty, &l.UnitCost); err != nil {
			return nil, err
		}
		if i, ok := index[poID]; ok {
			out[i].Lines = append(out[i].Lines, l)
		}
	}
	return out, lrows.Err()
}

func (r *PurchaseOrderRepo) Get(ctx context.Context, id string) (domain.PurchaseOrder, error) {
	var po domain.PurchaseOrder
	err := r.DB.QueryRow(ctx, `
		SELECT id, number, supplier, created_at FROM purchase_orders WHERE id=$1`, id).
		Scan(&po.ID, &po.Number, &po.Supplier, &po.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.PurchaseOrder{}, domain.ErrPurchaseOrderNotFound
	}
	if err != nil {
		return domain.PurchaseOrder{}, err
	}

	rows, err := r.DB.Query(ctx, `
		SELECT sku, name, qty, unit_cost FROM purchase_order_lines
		WHERE purchase_order_id=$1 ORDER BY sku`, id)
	if err != nil {
		return domain.PurchaseOrder{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var l domain.PurchaseLine
		if err := rows.Scan(&l.SKU, &l.Name, &l.Qty, &l.UnitCost); err != nil {
			return domain.PurchaseOrder{}, err
		}
		po.Lines = append(po.Lines, l)
	}
	return po, rows.Err()
}
