package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"checkout-gateway/internal/models"
	"checkout-gateway/internal/repository"
)

func TestSeedTestMerchant_Idempotent(t *testing.T) {
	repo := repository.NewMemoryMerchantRepository()
	svc := NewMerchantService(repo, zap.NewNop())
	cfg := TestMerchantConfig{Email: "test@example.com", APIKey: "key_test_abc123", APISecret: "secret_test_xyz789"}

	first, err := svc.SeedTestMerchant(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, TestMerchantID, first.ID)
	assert.True(t, first.IsActive)

	second, err := svc.SeedTestMerchant(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryMerchantRepository()
	svc := NewMerchantService(repo, zap.NewNop())

	_, err := svc.SeedTestMerchant(ctx, TestMerchantConfig{Email: "test@example.com", APIKey: "key_test_abc123", APISecret: "secret_test_xyz789"})
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, &models.Merchant{
		ID: "inactive", Email: "off@example.com", APIKey: "key_off", APISecret: "secret_off", IsActive: false,
	}))

	m, err := svc.Authenticate(ctx, "key_test_abc123", "secret_test_xyz789")
	require.NoError(t, err)
	assert.Equal(t, TestMerchantID, m.ID)

	tests := []struct {
		name   string
		key    string
		secret string
	}{
		{"missing key", "", "secret_test_xyz789"},
		{"missing secret", "key_test_abc123", ""},
		{"unknown key", "key_nope", "secret_test_xyz789"},
		{"wrong secret", "key_test_abc123", "secret_wrong"},
		{"inactive merchant", "key_off", "secret_off"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Authenticate(ctx, tt.key, tt.secret)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

func TestFindByEmail(t *testing.T) {
	svc := NewMerchantService(repository.NewMemoryMerchantRepository(), zap.NewNop())
	_, err := svc.FindByEmail(context.Background(), "nobody@example.com")
	assertServiceError(t, err, CodeNotFound)
}
