package models

import "time"

type Merchant struct {
	ID         string    `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Email      string    `json:"email" db:"email"`
	APIKey     string    `json:"api_key" db:"api_key"`
	APISecret  string    `json:"-" db:"api_secret"`
	WebhookURL *string   `json:"webhook_url,omitempty" db:"webhook_url"`
	IsActive   bool      `json:"is_active" db:"is_active"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

func (m *Merchant) Clone() *Merchant {
	if m == nil {
		return nil
	}
	c := *m
	c.WebhookURL = cloneString(m.WebhookURL)
	return &c
}
