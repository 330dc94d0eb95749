package repository

import (
	"context"
	"errors"
	"sort"
	"sync"

	"checkout-gateway/internal/models"
)

// ErrDuplicate mirrors a unique constraint violation in the memory stores.
var ErrDuplicate = errors.New("duplicate key")

type MemoryMerchantRepository struct {
	mu        sync.RWMutex
	merchants map[string]*models.Merchant
}

func NewMemoryMerchantRepository() *MemoryMerchantRepository {
	return &MemoryMerchantRepository{merchants: make(map[string]*models.Merchant)}
}

func (r *MemoryMerchantRepository) Create(_ context.Context, m *models.Merchant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.merchants[m.ID]; ok {
		return ErrDuplicate
	}
	for _, existing := range r.merchants {
		if existing.Email == m.Email || existing.APIKey == m.APIKey {
			return ErrDuplicate
		}
	}
	r.merchants[m.ID] = m.Clone()
	return nil
}

func (r *MemoryMerchantRepository) FindByID(_ context.Context, id string) (*models.Merchant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.merchants[id].Clone(), nil
}

func (r *MemoryMerchantRepository) FindByAPIKey(_ context.Context, apiKey string) (*models.Merchant, error) {
	return r.find(func(m *models.Merchant) bool { return m.APIKey == apiKey }), nil
}

func (r *MemoryMerchantRepository) FindByEmail(_ context.Context, email string) (*models.Merchant, error) {
	return r.find(func(m *models.Merchant) bool { return m.Email == email }), nil
}

func (r *MemoryMerchantRepository) find(match func(*models.Merchant) bool) *models.Merchant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.merchants {
		if match(m) {
			return m.Clone()
		}
	}
	return nil
}

type MemoryOrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*models.Order
}

func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{orders: make(map[string]*models.Order)}
}

func (r *MemoryOrderRepository) Create(_ context.Context, o *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[o.ID]; ok {
		return ErrDuplicate
	}
	r.orders[o.ID] = o.Clone()
	return nil
}

func (r *MemoryOrderRepository) FindByID(_ context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.orders[id].Clone(), nil
}

func (r *MemoryOrderRepository) FindByIDForMerchant(_ context.Context, id, merchantID string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok || o.MerchantID != merchantID {
		return nil, nil
	}
	return o.Clone(), nil
}

type MemoryPaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*models.Payment
	seq      map[string]int
	next     int
}

func NewMemoryPaymentRepository() *MemoryPaymentRepository {
	return &MemoryPaymentRepository{
		payments: make(map[string]*models.Payment),
		seq:      make(map[string]int),
	}
}

func (r *MemoryPaymentRepository) Create(_ context.Context, p *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.payments[p.ID]; ok {
		return ErrDuplicate
	}
	r.payments[p.ID] = p.Clone()
	r.seq[p.ID] = r.next
	r.next++
	return nil
}

func (r *MemoryPaymentRepository) Update(_ context.Context, p *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.payments[p.ID]
	if !ok || stored.Status != models.PaymentStatusProcessing {
		return models.ErrPaymentFinalized
	}

	stored.Status = p.Status
	stored.ErrorCode = p.ErrorCode
	stored.ErrorDescription = p.ErrorDescription
	stored.UpdatedAt = p.UpdatedAt
	r.payments[p.ID] = stored.Clone()
	return nil
}

func (r *MemoryPaymentRepository) FindByID(_ context.Context, id string) (*models.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.payments[id].Clone(), nil
}

func (r *MemoryPaymentRepository) FindByIDForMerchant(_ context.Context, id, merchantID string) (*models.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.payments[id]
	if !ok || p.MerchantID != merchantID {
		return nil, nil
	}
	return p.Clone(), nil
}

func (r *MemoryPaymentRepository) ListByMerchant(_ context.Context, merchantID string) ([]*models.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	payments := make([]*models.Payment, 0)
	for _, p := range r.payments {
		if p.MerchantID == merchantID {
			payments = append(payments, p.Clone())
		}
	}

	// Newest first; insertion order breaks timestamp ties.
	sort.Slice(payments, func(i, j int) bool {
		a, b := payments[i], payments[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return r.seq[a.ID] > r.seq[b.ID]
	})
	return payments, nil
}
