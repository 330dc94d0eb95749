package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"checkout-gateway/internal/metrics"
	"checkout-gateway/internal/models"
	"checkout-gateway/internal/repository"
	"checkout-gateway/internal/simulator"
	"checkout-gateway/pkg/events"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(_ context.Context, name, _ string, _ interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, name)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

type fixture struct {
	merchants *repository.MemoryMerchantRepository
	orders    *repository.MemoryOrderRepository
	payments  *repository.MemoryPaymentRepository
	publisher *recordingPublisher
	metrics   *metrics.Metrics

	merchantSvc *MerchantService
	orderSvc    *OrderService
	paymentSvc  *PaymentService

	merchant *models.Merchant
}

func newFixture(t *testing.T, sim simulator.Simulator, guard SubmissionGuard) *fixture {
	t.Helper()

	f := &fixture{
		merchants: repository.NewMemoryMerchantRepository(),
		orders:    repository.NewMemoryOrderRepository(),
		payments:  repository.NewMemoryPaymentRepository(),
		publisher: &recordingPublisher{},
		metrics:   metrics.New(prometheus.NewRegistry()),
	}
	log := zap.NewNop()
	f.merchantSvc = NewMerchantService(f.merchants, log)
	f.orderSvc = NewOrderService(f.orders, f.publisher, f.metrics, log)
	f.paymentSvc = NewPaymentService(f.orders, f.payments, sim, guard, f.publisher, f.metrics, log)
	f.paymentSvc.now = func() time.Time { return time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC) }

	m, err := f.merchantSvc.SeedTestMerchant(context.Background(), TestMerchantConfig{
		Email:     "test@example.com",
		APIKey:    "key_test_abc123",
		APISecret: "secret_test_xyz789",
	})
	require.NoError(t, err)
	f.merchant = m
	return f
}

func (f *fixture) createOrder(t *testing.T, amount int64) *models.Order {
	t.Helper()
	o, err := f.orderSvc.Create(context.Background(), f.merchant, &models.OrderRequest{Amount: amount})
	require.NoError(t, err)
	return o
}

func cardRequest(orderID, number, month, year string) *models.PaymentRequest {
	return &models.PaymentRequest{
		OrderID: orderID,
		Method:  models.PaymentMethodCard,
		Card: &models.CardDetails{
			Number:      number,
			ExpiryMonth: models.ExpiryField(month),
			ExpiryYear:  models.ExpiryField(year),
			CVV:         "123",
			HolderName:  "Asha Rao",
		},
	}
}

func assertServiceError(t *testing.T, err error, code string) {
	t.Helper()
	var svcErr *Error
	require.True(t, errors.As(err, &svcErr), "expected *Error, got %v", err)
	assert.Equal(t, code, svcErr.Code)
}

func TestCreatePayment_CardSuccess(t *testing.T) {
	f := newFixture(t, simulator.NewFixed(0, true), nil)
	order := f.createOrder(t, 50000)

	p, err := f.paymentSvc.CreatePayment(context.Background(), f.merchant,
		cardRequest(order.ID, "4111 1111 1111 1111", "12", "2030"))
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusSuccess, p.Status)
	assert.Equal(t, int64(50000), p.Amount)
	assert.Equal(t, "INR", p.Currency)
	assert.Equal(t, f.merchant.ID, p.MerchantID)
	assert.Equal(t, order.ID, p.OrderID)
	require.NotNil(t, p.CardNetwork)
	assert.Equal(t, "visa", *p.CardNetwork)
	require.NotNil(t, p.CardLast4)
	assert.Equal(t, "1111", *p.CardLast4)
	assert.Nil(t, p.VPA)
	assert.Nil(t, p.ErrorCode)
	assert.Regexp(t, `^pay_[0-9a-f]{16}$`, p.ID)

	stored, err := f.payments.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusSuccess, stored.Status)

	assert.Equal(t, []string{events.OrderCreated, events.PaymentCreated, events.PaymentSucceeded}, f.publisher.names())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.PaymentsTotal.WithLabelValues("card", "success")))
}

func TestCreatePayment_UPIFailureIsNotAnError(t *testing.T) {
	f := newFixture(t, simulator.NewFixed(0, false), nil)
	order := f.createOrder(t, 100)

	p, err := f.paymentSvc.CreatePayment(context.Background(), f.merchant, &models.PaymentRequest{
		OrderID: order.ID,
		Method:  models.PaymentMethodUPI,
		VPA:     "user@paytm",
	})
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusFailed, p.Status)
	require.NotNil(t, p.ErrorCode)
	assert.Equal(t, models.ErrorCodePaymentFailed, *p.ErrorCode)
	assert.Equal(t, models.ErrorDescriptionPaymentFailed, *p.ErrorDescription)
	require.NotNil(t, p.VPA)
	assert.Equal(t, "user@paytm", *p.VPA)
	assert.Nil(t, p.CardNetwork)
	assert.Contains(t, f.publisher.names(), events.PaymentFailed)
}

func TestCreatePayment_InvalidVPACreatesNothing(t *testing.T) {
	f := newFixture(t, simulator.NewFixed(0, true), nil)
	order := f.createOrder(t, 100)

	_, err := f.paymentSvc.CreatePayment(context.Background(), f.merchant, &models.PaymentRequest{
		OrderID: order.ID,
		Method:  models.PaymentMethodUPI,
		VPA:     "userpaytm",
	})
	assertServiceError(t, err, CodeInvalidVPA)

	list, err := f.payments.ListByMerchant(context.Background(), f.merchant.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ValidationFailures.WithLabelValues(CodeInvalidVPA)))
}

func TestCreatePayment_CardValidationOrder(t *testing.T) {
	f := newFixture(t, simulator.NewFixed(0, true), nil)
	order := f.createOrder(t, 100)
	ctx := context.Background()

	tests := []struct {
		name string
		req  *models.PaymentRequest
		code string
	}{
		{"bad luhn wins over expired date", cardRequest(order.ID, "4111111111111112", "01", "2020"), CodeInvalidCard},
		{"expired card", cardRequest(order.ID, "4111111111111111", "05", "2026"), CodeExpiredCard},
		{"bad month", cardRequest(order.ID, "4111111111111111", "13", "2030"), CodeExpiredCard},
		{"missing card details", &models.PaymentRequest{OrderID: order.ID, Method: models.PaymentMethodCard}, CodeInvalidCard},
		{"unknown method", &models.PaymentRequest{OrderID: order.ID, Method: "netbanking"}, CodeBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.paymentSvc.CreatePayment(ctx, f.merchant, tt.req)
			assertServiceError(t, err, tt.code)
		})
	}

	list, err := f.payments.ListByMerchant(ctx, f.merchant.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreatePayment_CurrentMonthIsValid(t *testing.T) {
	f := newFixture(t, simulator.NewFixed(0, true), nil)
	order := f.createOrder(t, 100)

	p, err := f.paymentSvc.CreatePayment(context.Background(), f.merchant,
		cardRequest(order.ID, "5555-5555-5555-4444", "6", "26"))
	require.NoError(t, err)
	assert.Equal(t, "mastercard", *p.CardNetwork)
	assert.Equal(t, "4444", *p.CardLast4)
}

func TestCreatePayment_OrderScopedToMerchant(t *testing.T) {
	f := newFixture(t, simulator.NewFixed(0, true), nil)
	order := f.createOrder(t, 100)
	other := &models.Merchant{ID: "other-merchant", Email: "other@example.com", APIKey: "key_other", APISecret: "s", IsActive: true}

	_, err := f.paymentSvc.CreatePayment(context.Background(), other, &models.PaymentRequest{
		OrderID: order.ID,
		Method:  models.PaymentMethodUPI,
		VPA:     "user@paytm",
	})
	assertServiceError(t, err, CodeNotFound)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestCreatePublicPayment(t *testing.T) {
	f := newFixture(t, simulator.NewFixed(0, true), nil)
	order := f.createOrder(t, 2500)

	p, err := f.paymentSvc.CreatePublicPayment(context.Background(), &models.PaymentRequest{
		OrderID: order.ID,
		Method:  models.PaymentMethodUPI,
		VPA:     "first.last-1@okhdfc",
	})
	require.NoError(t, err)
	assert.Equal(t, f.merchant.ID, p.MerchantID)
	assert.Equal(t, int64(2500), p.Amount)

	_, err = f.paymentSvc.CreatePublicPayment(context.Background(), &models.PaymentRequest{
		OrderID: "order_doesnotexist00",
		Method:  models.PaymentMethodUPI,
		VPA:     "user@paytm",
	})
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestCreatePayment_PollingSeesProcessingThenTerminal(t *testing.T) {
	f := newFixture(t, simulator.NewFixed(300*time.Millisecond, true), nil)
	order := f.createOrder(t, 100)

	done := make(chan *models.Payment, 1)
	go func() {
		p, err := f.paymentSvc.CreatePublicPayment(context.Background(), &models.PaymentRequest{
			OrderID: order.ID,
			Method:  models.PaymentMethodUPI,
			VPA:     "user@paytm",
		})
		assert.NoError(t, err)
		done <- p
	}()

	var pendingID string
	require.Eventually(t, func() bool {
		list, _ := f.payments.ListByMerchant(context.Background(), f.merchant.ID)
		if len(list) != 1 {
			return false
		}
		pendingID = list[0].ID
		return list[0].Status == models.PaymentStatusProcessing
	}, 2*time.Second, 10*time.Millisecond)

	p, err := f.paymentSvc.GetPublicPayment(context.Background(), pendingID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusProcessing, p.Status)

	final := <-done
	assert.Equal(t, pendingID, final.ID)

	p, err = f.paymentSvc.GetPublicPayment(context.Background(), pendingID)
	require.NoError(t, err)
	assert.True(t, p.Status.IsTerminal())
}

func TestCreatePayment_ClientCancellationStillFinalizes(t *testing.T) {
	f := newFixture(t, simulator.NewFixed(100*time.Millisecond, true), nil)
	order := f.createOrder(t, 100)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p, err := f.paymentSvc.CreatePayment(ctx, f.merchant, &models.PaymentRequest{
		OrderID: order.ID,
		Method:  models.PaymentMethodUPI,
		VPA:     "user@paytm",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusSuccess, p.Status)
}

// ctxAwarePayments fails writes on a done context, like a SQL driver would.
type ctxAwarePayments struct {
	*repository.MemoryPaymentRepository
}

func (r ctxAwarePayments) Create(ctx context.Context, p *models.Payment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.MemoryPaymentRepository.Create(ctx, p)
}

func (r ctxAwarePayments) Update(ctx context.Context, p *models.Payment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.MemoryPaymentRepository.Update(ctx, p)
}

func TestCreatePayment_CancelledBeforeCreateStillPersists(t *testing.T) {
	f := newFixture(t, simulator.NewFixed(0, false), nil)
	svc := NewPaymentService(f.orders, ctxAwarePayments{f.payments}, simulator.NewFixed(0, false),
		nil, f.publisher, f.metrics, zap.NewNop())
	order := f.createOrder(t, 100)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p, err := svc.CreatePayment(ctx, f.merchant, &models.PaymentRequest{
		OrderID: order.ID,
		Method:  models.PaymentMethodUPI,
		VPA:     "user@okhdfcbank",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusFailed, p.Status)

	stored, err := f.payments.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, models.PaymentStatusFailed, stored.Status)
	assert.Equal(t, []string{events.OrderCreated, events.PaymentCreated, events.PaymentFailed}, f.publisher.names())
}

func TestCreatePayment_RejectIfPending(t *testing.T) {
	f := newFixture(t, simulator.NewFixed(300*time.Millisecond, true), NewMemoryGuard())
	order := f.createOrder(t, 100)
	req := &models.PaymentRequest{OrderID: order.ID, Method: models.PaymentMethodUPI, VPA: "user@paytm"}

	done := make(chan error, 1)
	go func() {
		_, err := f.paymentSvc.CreatePublicPayment(context.Background(), req)
		done <- err
	}()

	require.Eventually(t, func() bool {
		list, _ := f.payments.ListByMerchant(context.Background(), f.merchant.ID)
		return len(list) == 1
	}, 2*time.Second, 10*time.Millisecond)

	_, err := f.paymentSvc.CreatePublicPayment(context.Background(), req)
	assertServiceError(t, err, CodePaymentInProgress)

	require.NoError(t, <-done)

	// Once terminal, the order accepts another attempt.
	p, err := f.paymentSvc.CreatePublicPayment(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusSuccess, p.Status)
}

func TestCreatePayment_AllowMultiple(t *testing.T) {
	f := newFixture(t, simulator.NewFixed(0, true), AllowMultiple{})
	order := f.createOrder(t, 100)
	req := &models.PaymentRequest{OrderID: order.ID, Method: models.PaymentMethodUPI, VPA: "user@paytm"}

	_, err := f.paymentSvc.CreatePayment(context.Background(), f.merchant, req)
	require.NoError(t, err)
	_, err = f.paymentSvc.CreatePayment(context.Background(), f.merchant, req)
	require.NoError(t, err)

	list, err := f.paymentSvc.ListPayments(context.Background(), f.merchant.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestGetPayment_Scoped(t *testing.T) {
	f := newFixture(t, simulator.NewFixed(0, true), nil)
	order := f.createOrder(t, 100)
	p, err := f.paymentSvc.CreatePayment(context.Background(), f.merchant,
		&models.PaymentRequest{OrderID: order.ID, Method: models.PaymentMethodUPI, VPA: "user@paytm"})
	require.NoError(t, err)

	got, err := f.paymentSvc.GetPayment(context.Background(), f.merchant.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = f.paymentSvc.GetPayment(context.Background(), "other-merchant", p.ID)
	assert.ErrorIs(t, err, ErrPaymentNotFound)

	_, err = f.paymentSvc.GetPublicPayment(context.Background(), "pay_missing")
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestListPayments_NewestFirst(t *testing.T) {
	f := newFixture(t, simulator.NewFixed(0, true), nil)
	order := f.createOrder(t, 100)
	req := &models.PaymentRequest{OrderID: order.ID, Method: models.PaymentMethodUPI, VPA: "user@paytm"}

	first, err := f.paymentSvc.CreatePayment(context.Background(), f.merchant, req)
	require.NoError(t, err)
	second, err := f.paymentSvc.CreatePayment(context.Background(), f.merchant, req)
	require.NoError(t, err)

	list, err := f.paymentSvc.ListPayments(context.Background(), f.merchant.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	empty, err := f.paymentSvc.ListPayments(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
