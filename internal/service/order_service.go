package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"checkout-gateway/internal/metrics"
	"checkout-gateway/internal/models"
	"checkout-gateway/pkg/events"
	"checkout-gateway/pkg/tracing"
)

type OrderService struct {
	repo      OrderStore
	publisher events.Publisher
	metrics   *metrics.Metrics
	tracer    *tracing.Tracer
	log       *zap.Logger
}

func NewOrderService(repo OrderStore, publisher events.Publisher, m *metrics.Metrics, log *zap.Logger) *OrderService {
	return &OrderService{
		repo:      repo,
		publisher: publisher,
		metrics:   m,
		tracer:    tracing.New("checkout-gateway/order"),
		log:       log,
	}
}

func (s *OrderService) Create(ctx context.Context, merchant *models.Merchant, req *models.OrderRequest) (order *models.Order, err error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.Create", attribute.String("merchant.id", merchant.ID))
	defer func() { tracing.End(span, err) }()

	if req.Amount < models.MinOrderAmount {
		return nil, ErrAmountTooSmall
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = models.DefaultCurrency
	}
	if !isCurrencyCode(currency) {
		return nil, ErrInvalidCurrency
	}

	now := time.Now().UTC()
	order = &models.Order{
		ID:         NewID(OrderIDPrefix),
		MerchantID: merchant.ID,
		Amount:     req.Amount,
		Currency:   currency,
		Receipt:    req.Receipt,
		Notes:      req.Notes,
		Status:     models.OrderStatusCreated,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	s.metrics.OrdersTotal.Inc()
	if err := s.publisher.Publish(ctx, events.OrderCreated, order.ID, order); err != nil {
		s.log.Warn("failed to publish event", zap.String("event", events.OrderCreated), zap.Error(err))
	}

	s.log.Info("order created",
		zap.String("order_id", order.ID),
		zap.String("merchant_id", merchant.ID),
		zap.Int64("amount", order.Amount))
	return order, nil
}

// Get returns the order only if it belongs to merchantID.
func (s *OrderService) Get(ctx context.Context, merchantID, id string) (*models.Order, error) {
	order, err := s.repo.FindByIDForMerchant(ctx, id, merchantID)
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) GetPublic(ctx context.Context, id string) (*models.PublicOrder, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	public := order.Public()
	return &public, nil
}

func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
