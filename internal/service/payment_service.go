package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"checkout-gateway/internal/metrics"
	"checkout-gateway/internal/models"
	"checkout-gateway/internal/simulator"
	"checkout-gateway/internal/validator"
	"checkout-gateway/pkg/events"
	"checkout-gateway/pkg/tracing"
)

type PaymentService struct {
	orders    OrderStore
	payments  PaymentStore
	simulator simulator.Simulator
	guard     SubmissionGuard
	publisher events.Publisher
	metrics   *metrics.Metrics
	tracer    *tracing.Tracer
	log       *zap.Logger
	now       func() time.Time
}

func NewPaymentService(
	orders OrderStore,
	payments PaymentStore,
	sim simulator.Simulator,
	guard SubmissionGuard,
	publisher events.Publisher,
	m *metrics.Metrics,
	log *zap.Logger,
) *PaymentService {
	if guard == nil {
		guard = AllowMultiple{}
	}
	return &PaymentService{
		orders:    orders,
		payments:  payments,
		simulator: sim,
		guard:     guard,
		publisher: publisher,
		metrics:   m,
		tracer:    tracing.New("checkout-gateway/payment"),
		log:       log,
		now:       time.Now,
	}
}

// CreatePayment submits a payment for one of merchant's own orders.
func (s *PaymentService) CreatePayment(ctx context.Context, merchant *models.Merchant, req *models.PaymentRequest) (payment *models.Payment, err error) {
	ctx, span := s.tracer.Start(ctx, "PaymentService.CreatePayment",
		attribute.String("merchant.id", merchant.ID),
		attribute.String("order.id", req.OrderID),
		attribute.String("payment.method", string(req.Method)))
	defer func() { tracing.End(span, err) }()

	order, err := s.orders.FindByIDForMerchant(ctx, req.OrderID, merchant.ID)
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	return s.submit(ctx, order, req)
}

// CreatePublicPayment submits a payment from the hosted checkout, where the
// order id alone identifies the order.
func (s *PaymentService) CreatePublicPayment(ctx context.Context, req *models.PaymentRequest) (payment *models.Payment, err error) {
	ctx, span := s.tracer.Start(ctx, "PaymentService.CreatePublicPayment",
		attribute.String("order.id", req.OrderID),
		attribute.String("payment.method", string(req.Method)))
	defer func() { tracing.End(span, err) }()

	order, err := s.orders.FindByID(ctx, req.OrderID)
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	return s.submit(ctx, order, req)
}

func (s *PaymentService) submit(ctx context.Context, order *models.Order, req *models.PaymentRequest) (*models.Payment, error) {
	if order == nil {
		s.metrics.ObserveValidationFailure(CodeNotFound)
		return nil, ErrOrderNotFound
	}

	payment, err := s.buildPayment(order, req)
	if err != nil {
		var svcErr *Error
		if errors.As(err, &svcErr) {
			s.metrics.ObserveValidationFailure(svcErr.Code)
		}
		return nil, err
	}

	release, err := s.guard.Acquire(ctx, order.ID)
	if err != nil {
		if errors.Is(err, ErrPaymentInProgress) {
			s.metrics.ObserveValidationFailure(CodePaymentInProgress)
		}
		return nil, err
	}
	defer release()

	// Once validated, the payment is created and driven to a terminal state
	// even if the client hangs up.
	work := context.WithoutCancel(ctx)

	if err := s.payments.Create(work, payment); err != nil {
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}
	s.publish(work, events.PaymentCreated, payment)

	start := time.Now()
	outcome, simErr := s.simulator.Simulate(work, payment.Method)
	s.metrics.ObserveSimulation(string(payment.Method), time.Since(start))
	if simErr != nil {
		s.log.Error("payment simulation failed",
			zap.String("payment_id", payment.ID),
			zap.Error(simErr))
		outcome.Success = false
	}

	if err := payment.Finalize(outcome.Success); err != nil {
		return nil, fmt.Errorf("finalize payment %s: %w", payment.ID, err)
	}
	if err := s.payments.Update(work, payment); err != nil {
		return nil, fmt.Errorf("failed to update payment %s: %w", payment.ID, err)
	}

	s.metrics.ObservePayment(string(payment.Method), string(payment.Status))
	if payment.Status == models.PaymentStatusSuccess {
		s.publish(work, events.PaymentSucceeded, payment)
	} else {
		s.publish(work, events.PaymentFailed, payment)
	}

	s.log.Info("payment processed",
		zap.String("payment_id", payment.ID),
		zap.String("order_id", payment.OrderID),
		zap.String("method", string(payment.Method)),
		zap.String("status", string(payment.Status)),
		zap.Duration("processing_time", outcome.Delay))

	return payment, nil
}

// buildPayment validates the method details and returns a processing payment
// carrying the order's amount, currency and merchant.
func (s *PaymentService) buildPayment(order *models.Order, req *models.PaymentRequest) (*models.Payment, error) {
	now := s.now().UTC()
	payment := &models.Payment{
		ID:         NewID(PaymentIDPrefix),
		OrderID:    order.ID,
		MerchantID: order.MerchantID,
		Amount:     order.Amount,
		Currency:   order.Currency,
		Method:     req.Method,
		Status:     models.PaymentStatusProcessing,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	switch req.Method {
	case models.PaymentMethodUPI:
		if !validator.ValidateVPA(req.VPA) {
			return nil, ErrInvalidVPA
		}
		vpa := req.VPA
		payment.VPA = &vpa

	case models.PaymentMethodCard:
		card := req.Card
		if card == nil || !validator.ValidateCardNumber(card.Number) {
			return nil, ErrInvalidCard
		}
		if !validator.ValidateExpiryAt(card.ExpiryMonth.String(), card.ExpiryYear.String(), s.now()) {
			return nil, ErrExpiredCard
		}
		network := string(validator.DetectCardNetwork(card.Number))
		last4 := validator.Last4(card.Number)
		payment.CardNetwork = &network
		payment.CardLast4 = &last4

	default:
		return nil, ErrInvalidMethod
	}

	return payment, nil
}

func (s *PaymentService) publish(ctx context.Context, event string, payment *models.Payment) {
	if err := s.publisher.Publish(ctx, event, payment.OrderID, payment); err != nil {
		s.log.Warn("failed to publish event",
			zap.String("event", event),
			zap.String("payment_id", payment.ID),
			zap.Error(err))
	}
}

// GetPayment returns the payment only if it belongs to merchantID.
func (s *PaymentService) GetPayment(ctx context.Context, merchantID, id string) (*models.Payment, error) {
	payment, err := s.payments.FindByIDForMerchant(ctx, id, merchantID)
	if err != nil {
		return nil, fmt.Errorf("find payment: %w", err)
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	return payment, nil
}

// ListPayments returns the merchant's payments, newest first.
func (s *PaymentService) ListPayments(ctx context.Context, merchantID string) ([]*models.Payment, error) {
	payments, err := s.payments.ListByMerchant(ctx, merchantID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

// GetPublicPayment is polled by the hosted checkout until the payment is terminal.
func (s *PaymentService) GetPublicPayment(ctx context.Context, id string) (*models.Payment, error) {
	payment, err := s.payments.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find payment: %w", err)
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	return payment, nil
}
