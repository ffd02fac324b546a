package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mbenitez/stockroom/internal/domain"
)

type ProductRepo struct{ DB *pgxpool.Pool }

const productCols = `id, sku, name, stock_total, stock_reserved, cost_price, sale_price, version, created_at, updated_at`

func scanProduct(row pgx.Row) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.StockTotal, &p.StockReserved,
		&p.CostPrice, &p.SalePrice, &p.Version, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *ProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+productCols+` FROM products ORDER BY sku`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	p, err := scanProduct(r.DB.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, err
}

func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (domain.Product, error) {
	p, err := scanProduct(r.DB.QueryRow(ctx,
		`SELECT `+productCols+` FROM products WHERE sku=$1`, domain.NormalizeSKU(sku)))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, err
}

func (r *ProductRepo) Create(ctx context.Context, p domain.Product) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO products(id, sku, name, stock_total, stock_reserved, cost_price, sale_price, version)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		p.ID, p.SKU, p.Name, p.StockTotal, p.StockReserved, p.CostPrice, p.SalePrice, p.Version)
	if isUniqueViolation(err) {
		return domain.ErrAlreadyExists
	}
	return err
}

// SaveStock is the compare-and-swap write for the mutable product
// fields: it only lands when the stored version still equals p.Version,
// and bumps it by one.
func (r *ProductRepo) SaveStock(ctx context.Context, p domain.Product) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE products
		SET name=$3, stock_total=$4, stock_reserved=$5, cost_price=$6, sale_price=$7,
		    version=version+1, updated_at=NOW()
		WHERE id=$1 AND version=$2`,
		p.ID, p.Version, p.Name, p.StockTotal, p.StockReserved, p.CostPrice, p.SalePrice)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return fmt.Errorf("save stock %s: %w", p.SKU, domain.ErrVersionConflict)
	}
	return nil
}

func (r *ProductRepo) AppendMovement(ctx context.Context, m domain.StockMovement) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO stock_movements(id, product_id, kind, qty, stock_before, stock_after, reference_id)
		VALUES ($1,$2,$3,$4,$5,$6,NULLIF($7,''))`,
		m.ID, m.ProductID, string(m.Kind), m.Qty, m.StockBefore, m.StockAfter, m.ReferenceID)
	return err
}

func (r *ProductRepo) ClearAll(ctx context.Context) (int, error) {
	ct, err := r.DB.Exec(ctx, `DELETE FROM products`)
	if err != nil {
		return 0, err
	}
	return int(ct.RowsAffected()), nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
