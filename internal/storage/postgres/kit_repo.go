package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mbenitez/stockroom/internal/domain"
)

type KitRepo struct{ DB *pgxpool.Pool }

func (r *KitRepo) List(ctx context.Context) ([]domain.Kit, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, sku, name, created_at, updated_at FROM kits ORDER BY sku`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Kit
	index := map[string]int{}
	for rows.Next() {
		var k domain.Kit
		if err := rows.Scan(&k.ID, &k.SKU, &k.Name, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, err
		}
		index[k.ID] = len(out)
		out = append(out, k)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	crows, err := r.DB.Query(ctx, `SELECT kit_id, product_id, sku, qty FROM kit_components`)
	if err != nil {
		return nil, err
	}
	defer crows.Close()
	for crows.Next() {
		var kitID string
		var c domain.KitComponent
		if err := crows.Scan(&kitID, &c.ProductID, &c.SKU, &c.Qty); err != nil {
			return nil, err
		}
		if i, ok := index[kitID]; ok {
			out[i].Components = append(out[i].Components, c)
		}
	}
	return out, crows.Err()
}

func (r *KitRepo) Get(ctx context.Context, id string) (domain.Kit, error) {
	return r.get(ctx, `SELECT id, sku, name, created_at, updated_at FROM kits WHERE id=$1`, id)
}

func (r *KitRepo) GetBySKU(ctx context.Context, sku string) (domain.Kit, error) {
	return r.get(ctx, `SELECT id, sku, name, created_at, updated_at FROM kits WHERE sku=$1`,
		domain.NormalizeSKU(sku))
}

func (r *KitRepo) get(ctx context.Context, query, arg string) (domain.Kit, error) {
	var k domain.Kit
	err := r.DB.QueryRow(ctx, query, arg).Scan(&k.ID, &k.SKU, &k.Name, &k.CreatedAt, &k.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Kit{}, domain.ErrKitNotFound
	}
	if err != nil {
		return domain.Kit{}, err
	}

	rows, err := r.DB.Query(ctx, `SELECT product_id, sku, qty FROM kit_components WHERE kit_id=$1`, k.ID)
	if err != nil {
		return domain.Kit{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var c domain.KitComponent
		if err := rows.Scan(&c.ProductID, &c.SKU, &c.Qty); err != nil {
			return domain.Kit{}, err
		}
		k.Components = append(k.Components, c)
	}
	return k, rows.Err()
}

func (r *KitRepo) Create(ctx context.Context, k domain.Kit) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `INSERT INTO kits(id, sku, name) VALUES ($1,$2,$3)`,
		k.ID, k.SKU, k.Name); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return err
	}
	if err := insertComponents(ctx, tx, k); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *KitRepo) Update(ctx context.Context, k domain.Kit) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ct, err := tx.Exec(ctx, `UPDATE kits SET sku=$2, name=$3, updated_at=NOW() WHERE id=$1`,
		k.ID, k.SKU, k.Name)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return domain.ErrKitNotFound
	}
	if _, err := tx.Exec(ctx, `DELETE FROM kit_components WHERE kit_id=$1`, k.ID); err != nil {
		return err
	}
	if err := insertComponents(ctx, tx, k); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Delete removes the kit only. Product stock is untouched: kits have no
// stock of their own.
func (r *KitRepo) Delete(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM kits WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return domain.ErrKitNotFound
	}
	return nil
}

func insertComponents(ctx context.Context, tx pgx.Tx, k domain.Kit) error {
	for _, c := range k.Components {
		if _, err := tx.Exec(ctx, `
			INSERT INTO kit_components(kit_id, product_id, sku, qty) VALUES ($1,$2,$3,$4)`,
			k.ID, c.ProductID, c.SKU, c.Qty); err != nil {
			return err
		}
	}
	return nil
}
