package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const (
	MinOrderAmount  int64 = 100
	DefaultCurrency       = "INR"

	OrderStatusCreated = "created"
)

type Order struct {
	ID         string    `json:"id" db:"id"`
	MerchantID string    `json:"merchant_id" db:"merchant_id"`
	Amount     int64     `json:"amount" db:"amount"`
	Currency   string    `json:"currency" db:"currency"`
	Receipt    *string   `json:"receipt" db:"receipt"`
	Notes      Notes     `json:"notes" db:"notes"`
	Status     string    `json:"status" db:"status"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// PublicOrder is the subset of an order that checkout may see without credentials.
type PublicOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

func (o *Order) Public() PublicOrder {
	return PublicOrder{
		ID:       o.ID,
		Amount:   o.Amount,
		Currency: o.Currency,
		Status:   o.Status,
	}
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	c := *o
	c.Receipt = cloneString(o.Receipt)
	if o.Notes != nil {
		c.Notes = make(Notes, len(o.Notes))
		for k, v := range o.Notes {
			c.Notes[k] = v
		}
	}
	return &c
}

type OrderRequest struct {
	Amount   int64   `json:"amount"`
	Currency string  `json:"currency"`
	Receipt  *string `json:"receipt"`
	Notes    Notes   `json:"notes"`
}

// Notes is an opaque key-value bag stored as JSONB.
type Notes map[string]interface{}

func (n Notes) Value() (driver.Value, error) {
	if n == nil {
		return nil, nil
	}
	return json.Marshal(n)
}

func (n *Notes) Scan(src interface{}) error {
	if src == nil {
		*n = nil
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("notes: unsupported scan type %T", src)
	}
	return json.Unmarshal(data, n)
}
