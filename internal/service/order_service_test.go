package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkout-gateway/internal/models"
	"checkout-gateway/internal/simulator"
)

func TestOrderCreate(t *testing.T) {
	f := newFixture(t, simulator.NewFixed(0, true), nil)
	receipt := "rcpt_42"

	o, err := f.orderSvc.Create(context.Background(), f.merchant, &models.OrderRequest{
		Amount:  50000,
		Receipt: &receipt,
		Notes:   models.Notes{"customer": "asha"},
	})
	require.NoError(t, err)

	assert.Regexp(t, `^order_[0-9a-f]{16}$`, o.ID)
	assert.Equal(t, models.DefaultCurrency, o.Currency)
	assert.Equal(t, models.OrderStatusCreated, o.Status)
	assert.Equal(t, f.merchant.ID, o.MerchantID)
	assert.Equal(t, "rcpt_42", *o.Receipt)
}

func TestOrderCreate_Validation(t *testing.T) {
	f := newFixture(t, simulator.NewFixed(0, true), nil)

	tests := []struct {
		name string
		req  models.OrderRequest
		err  error
	}{
		{"zero amount", models.OrderRequest{}, ErrAmountTooSmall},
		{"below minimum", models.OrderRequest{Amount: 99}, ErrAmountTooSmall},
		{"bad currency", models.OrderRequest{Amount: 100, Currency: "RUPEE"}, ErrInvalidCurrency},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := f.orderSvc.Create(context.Background(), f.merchant, &req)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	o, err := f.orderSvc.Create(context.Background(), f.merchant, &models.OrderRequest{Amount: 100, Currency: "usd"})
	require.NoError(t, err)
	assert.Equal(t, "USD", o.Currency)
}

func TestOrderGet_Scoped(t *testing.T) {
	f := newFixture(t, simulator.NewFixed(0, true), nil)
	o := f.createOrder(t, 100)

	got, err := f.orderSvc.Get(context.Background(), f.merchant.ID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)

	_, err = f.orderSvc.Get(context.Background(), "other-merchant", o.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderGetPublic_ExposesFourFields(t *testing.T) {
	f := newFixture(t, simulator.NewFixed(0, true), nil)
	o := f.createOrder(t, 100)

	public, err := f.orderSvc.GetPublic(context.Background(), o.ID)
	require.NoError(t, err)

	data, err := json.Marshal(public)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Len(t, fields, 4)
	assert.Equal(t, o.ID, fields["id"])
	assert.NotContains(t, fields, "merchant_id")

	_, err = f.orderSvc.GetPublic(context.Background(), "order_missing")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
