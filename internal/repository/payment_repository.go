package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"checkout-gateway/internal/models"
)

const paymentColumns = `id, order_id, merchant_id, amount, currency, method, status, vpa,
	card_network, card_last4, error_code, error_description, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

type PaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, p *models.Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.OrderID,
		p.MerchantID,
		p.Amount,
		p.Currency,
		p.Method,
		p.Status,
		p.VPA,
		p.CardNetwork,
		p.CardLast4,
		p.ErrorCode,
		p.ErrorDescription,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

// Update persists a terminal transition. The row must still be processing;
// otherwise models.ErrPaymentFinalized is returned and nothing changes.
func (r *PaymentRepository) Update(ctx context.Context, p *models.Payment) error {
	query := `
		UPDATE payments
		SET status = $1, error_code = $2, error_description = $3, updated_at = $4
		WHERE id = $5 AND status = 'processing'
	`

	res, err := r.db.ExecContext(ctx, query,
		p.Status,
		p.ErrorCode,
		p.ErrorDescription,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n != 1 {
		return models.ErrPaymentFinalized
	}
	return nil
}

func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	return scanPayment(r.db.QueryRowContext(ctx, query, id))
}

func (r *PaymentRepository) FindByIDForMerchant(ctx context.Context, id, merchantID string) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1 AND merchant_id = $2`
	return scanPayment(r.db.QueryRowContext(ctx, query, id, merchantID))
}

// ListByMerchant returns the merchant's payments, newest first.
func (r *PaymentRepository) ListByMerchant(ctx context.Context, merchantID string) ([]*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE merchant_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, merchantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]*models.Payment, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func scanPayment(row rowScanner) (*models.Payment, error) {
	p := &models.Payment{}
	err := row.Scan(
		&p.ID,
		&p.OrderID,
		&p.MerchantID,
		&p.Amount,
		&p.Currency,
		&p.Method,
		&p.Status,
		&p.VPA,
		&p.CardNetwork,
		&p.CardLast4,
		&p.ErrorCode,
		&p.ErrorDescription,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}
