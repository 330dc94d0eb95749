package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"go.uber.org/zap"

	"checkout-gateway/internal/models"
)

const (
	TestMerchantID   = "550e8400-e29b-41d4-a716-446655440000"
	TestMerchantName = "Test Merchant"
)

type MerchantService struct {
	repo MerchantStore
	log  *zap.Logger
}

func NewMerchantService(repo MerchantStore, log *zap.Logger) *MerchantService {
	return &MerchantService{repo: repo, log: log}
}

// Authenticate resolves the merchant owning apiKey and checks apiSecret.
// Every failure mode returns ErrInvalidCredentials.
func (s *MerchantService) Authenticate(ctx context.Context, apiKey, apiSecret string) (*models.Merchant, error) {
	if apiKey == "" || apiSecret == "" {
		return nil, ErrInvalidCredentials
	}

	merchant, err := s.repo.FindByAPIKey(ctx, apiKey)
	if err != nil {
		return nil, fmt.Errorf("find merchant by api key: %w", err)
	}
	if merchant == nil {
		return nil, ErrInvalidCredentials
	}

	if subtle.ConstantTimeCompare([]byte(merchant.APISecret), []byte(apiSecret)) != 1 {
		return nil, ErrInvalidCredentials
	}
	if !merchant.IsActive {
		s.log.Warn("inactive merchant attempted access", zap.String("merchant_id", merchant.ID))
		return nil, ErrInvalidCredentials
	}

	return merchant, nil
}

type TestMerchantConfig struct {
	Email     string
	APIKey    string
	APISecret string
}

// SeedTestMerchant creates the well-known test merchant unless a merchant
// with the configured email already exists.
func (s *MerchantService) SeedTestMerchant(ctx context.Context, cfg TestMerchantConfig) (*models.Merchant, error) {
	existing, err := s.repo.FindByEmail(ctx, cfg.Email)
	if err != nil {
		return nil, fmt.Errorf("find test merchant: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now().UTC()
	merchant := &models.Merchant{
		ID:        TestMerchantID,
		Name:      TestMerchantName,
		Email:     cfg.Email,
		APIKey:    cfg.APIKey,
		APISecret: cfg.APISecret,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, merchant); err != nil {
		return nil, fmt.Errorf("create test merchant: %w", err)
	}

	s.log.Info("test merchant seeded", zap.String("merchant_id", merchant.ID), zap.String("email", merchant.Email))
	return merchant, nil
}

// FindByEmail returns a NOT_FOUND_ERROR when no merchant uses email.
func (s *MerchantService) FindByEmail(ctx context.Context, email string) (*models.Merchant, error) {
	merchant, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find merchant by email: %w", err)
	}
	if merchant == nil {
		return nil, newError(CodeNotFound, "Merchant not found")
	}
	return merchant, nil
}
