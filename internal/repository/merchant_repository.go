package repository

import (
	"context"
	"database/sql"
	"errors"

	"checkout-gateway/internal/models"
)

const merchantColumns = `id, name, email, api_key, api_secret, webhook_url, is_active, created_at, updated_at`

type MerchantRepository struct {
	db *sql.DB
}

func NewMerchantRepository(db *sql.DB) *MerchantRepository {
	return &MerchantRepository{db: db}
}

func (r *MerchantRepository) Create(ctx context.Context, m *models.Merchant) error {
	query := `
		INSERT INTO merchants (` + merchantColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		m.ID,
		m.Name,
		m.Email,
		m.APIKey,
		m.APISecret,
		m.WebhookURL,
		m.IsActive,
		m.CreatedAt,
		m.UpdatedAt,
	)
	return err
}

func (r *MerchantRepository) FindByID(ctx context.Context, id string) (*models.Merchant, error) {
	return r.findOne(ctx, `SELECT `+merchantColumns+` FROM merchants WHERE id = $1`, id)
}

func (r *MerchantRepository) FindByAPIKey(ctx context.Context, apiKey string) (*models.Merchant, error) {
	return r.findOne(ctx, `SELECT `+merchantColumns+` FROM merchants WHERE api_key = $1`, apiKey)
}

func (r *MerchantRepository) FindByEmail(ctx context.Context, email string) (*models.Merchant, error) {
	return r.findOne(ctx, `SELECT `+merchantColumns+` FROM merchants WHERE email = $1`, email)
}

func (r *MerchantRepository) findOne(ctx context.Context, query string, arg interface{}) (*models.Merchant, error) {
	m := &models.Merchant{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&m.ID,
		&m.Name,
		&m.Email,
		&m.APIKey,
		&m.APISecret,
		&m.WebhookURL,
		&m.IsActive,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}
