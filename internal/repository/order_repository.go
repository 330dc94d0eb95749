package repository

import (
	"context"
	"database/sql"
	"errors"

	"checkout-gateway/internal/models"
)

const orderColumns = `id, merchant_id, amount, currency, receipt, notes, status, created_at, updated_at`

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		o.ID,
		o.MerchantID,
		o.Amount,
		o.Currency,
		o.Receipt,
		o.Notes,
		o.Status,
		o.CreatedAt,
		o.UpdatedAt,
	)
	return err
}

// FindByID looks an order up without merchant scoping. Used by the public checkout path.
func (r *OrderRepository) FindByID(ctx context.Context, id string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return scanOrder(r.db.QueryRowContext(ctx, query, id))
}

func (r *OrderRepository) FindByIDForMerchant(ctx context.Context, id, merchantID string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 AND merchant_id = $2`
	return scanOrder(r.db.QueryRowContext(ctx, query, id, merchantID))
}

func scanOrder(row *sql.Row) (*models.Order, error) {
	o := &models.Order{}
	err := row.Scan(
		&o.ID,
		&o.MerchantID,
		&o.Amount,
		&o.Currency,
		&o.Receipt,
		&o.Notes,
		&o.Status,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}
