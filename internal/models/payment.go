package models

import (
	"encoding/json"
	"errors"
	"time"
)

type PaymentStatus string

const (
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusSuccess    PaymentStatus = "success"
	PaymentStatusFailed     PaymentStatus = "failed"
)

// IsTerminal reports whether no further transition is allowed from s.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusSuccess || s == PaymentStatusFailed
}

type PaymentMethod string

const (
	PaymentMethodUPI  PaymentMethod = "upi"
	PaymentMethodCard PaymentMethod = "card"
)

const (
	ErrorCodePaymentFailed        = "PAYMENT_FAILED"
	ErrorDescriptionPaymentFailed = "Payment processing failed"
)

var ErrPaymentFinalized = errors.New("payment already in a terminal state")

type Payment struct {
	ID               string        `json:"id" db:"id"`
	OrderID          string        `json:"order_id" db:"order_id"`
	MerchantID       string        `json:"merchant_id" db:"merchant_id"`
	Amount           int64         `json:"amount" db:"amount"`
	Currency         string        `json:"currency" db:"currency"`
	Method           PaymentMethod `json:"method" db:"method"`
	Status           PaymentStatus `json:"status" db:"status"`
	VPA              *string       `json:"vpa,omitempty" db:"vpa"`
	CardNetwork      *string       `json:"card_network,omitempty" db:"card_network"`
	CardLast4        *string       `json:"card_last4,omitempty" db:"card_last4"`
	ErrorCode        *string       `json:"error_code,omitempty" db:"error_code"`
	ErrorDescription *string       `json:"error_description,omitempty" db:"error_description"`
	CreatedAt        time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at" db:"updated_at"`
}

// Finalize moves a processing payment to its terminal status. It is the only
// transition a payment ever makes.
func (p *Payment) Finalize(success bool) error {
	if p.Status != PaymentStatusProcessing {
		return ErrPaymentFinalized
	}

	if success {
		p.Status = PaymentStatusSuccess
	} else {
		p.Status = PaymentStatusFailed
		code, desc := ErrorCodePaymentFailed, ErrorDescriptionPaymentFailed
		p.ErrorCode = &code
		p.ErrorDescription = &desc
	}
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// Clone returns a deep copy of the payment.
func (p *Payment) Clone() *Payment {
	if p == nil {
		return nil
	}
	c := *p
	c.VPA = cloneString(p.VPA)
	c.CardNetwork = cloneString(p.CardNetwork)
	c.CardLast4 = cloneString(p.CardLast4)
	c.ErrorCode = cloneString(p.ErrorCode)
	c.ErrorDescription = cloneString(p.ErrorDescription)
	return &c
}

type CardDetails struct {
	Number      string      `json:"number"`
	ExpiryMonth ExpiryField `json:"expiry_month"`
	ExpiryYear  ExpiryField `json:"expiry_year"`
	CVV         string      `json:"cvv"`
	HolderName  string      `json:"holder_name"`
}

type PaymentRequest struct {
	OrderID string        `json:"order_id"`
	Method  PaymentMethod `json:"method"`
	VPA     string        `json:"vpa"`
	Card    *CardDetails  `json:"card"`
}

// ExpiryField accepts both JSON strings and numbers, since checkout clients
// send expiry values either way.
type ExpiryField string

func (f *ExpiryField) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = ExpiryField(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = ExpiryField(n.String())
	return nil
}

func (f ExpiryField) String() string { return string(f) }

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
