package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"checkout-gateway/internal/models"
)

// Store lookups return (nil, nil) when the record does not exist.

type MerchantStore interface {
	Create(ctx context.Context, m *models.Merchant) error
	FindByID(ctx context.Context, id string) (*models.Merchant, error)
	FindByAPIKey(ctx context.Context, apiKey string) (*models.Merchant, error)
	FindByEmail(ctx context.Context, email string) (*models.Merchant, error)
}

type OrderStore interface {
	Create(ctx context.Context, o *models.Order) error
	FindByID(ctx context.Context, id string) (*models.Order, error)
	FindByIDForMerchant(ctx context.Context, id, merchantID string) (*models.Order, error)
}

type PaymentStore interface {
	Create(ctx context.Context, p *models.Payment) error
	Update(ctx context.Context, p *models.Payment) error
	FindByID(ctx context.Context, id string) (*models.Payment, error)
	FindByIDForMerchant(ctx context.Context, id, merchantID string) (*models.Payment, error)
	ListByMerchant(ctx context.Context, merchantID string) ([]*models.Payment, error)
}

const (
	OrderIDPrefix   = "order_"
	PaymentIDPrefix = "pay_"
)

// NewID returns prefix followed by 16 random hex characters.
func NewID(prefix string) string {
	return prefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}
