package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	pendingKeyPrefix = "payment:pending:"
	// DefaultGuardTTL outlives the longest simulated processing window.
	DefaultGuardTTL = 60 * time.Second
)

// SubmissionGuard decides whether a new payment may start for an order.
// The returned release func must be called once the payment is terminal.
type SubmissionGuard interface {
	Acquire(ctx context.Context, orderID string) (release func(), err error)
}

// AllowMultiple never blocks. Any number of payments may target the same order.
type AllowMultiple struct{}

func (AllowMultiple) Acquire(context.Context, string) (func(), error) {
	return func() {}, nil
}

// MemoryGuard rejects a submission while another payment for the same order
// is processing in this process.
type MemoryGuard struct {
	mu      sync.Mutex
	pending map[string]struct{}
}

func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{pending: make(map[string]struct{})}
}

func (g *MemoryGuard) Acquire(_ context.Context, orderID string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.pending[orderID]; busy {
		return nil, ErrPaymentInProgress
	}
	g.pending[orderID] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.pending, orderID)
			g.mu.Unlock()
		})
	}, nil
}

// Locker is the subset of the redis client the distributed guard needs.
type Locker interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}

// RedisGuard holds a per-order SETNX lock for the lifetime of the payment,
// so the policy holds across gateway replicas.
type RedisGuard struct {
	locker Locker
	ttl    time.Duration
	log    *zap.Logger
}

func NewRedisGuard(locker Locker, ttl time.Duration, log *zap.Logger) *RedisGuard {
	if ttl <= 0 {
		ttl = DefaultGuardTTL
	}
	return &RedisGuard{locker: locker, ttl: ttl, log: log}
}

func (g *RedisGuard) Acquire(ctx context.Context, orderID string) (func(), error) {
	key := pendingKeyPrefix + orderID

	ok, err := g.locker.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339Nano), g.ttl)
	if err != nil {
		return nil, fmt.Errorf("acquire submission lock: %w", err)
	}
	if !ok {
		return nil, ErrPaymentInProgress
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			releaseCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := g.locker.Delete(releaseCtx, key); err != nil {
				g.log.Warn("failed to release submission lock", zap.String("order_id", orderID), zap.Error(err))
			}
		})
	}, nil
}
