// Package simulator stands in for the external payment processor: it decides
// an outcome for a payment method and holds the caller for the processing latency.
package simulator

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"checkout-gateway/internal/models"
)

const (
	DefaultMinDelay = 5 * time.Second
	DefaultMaxDelay = 10 * time.Second

	UPISuccessRate  = 0.90
	CardSuccessRate = 0.95

	DefaultTestDelay = time.Second
)

var ErrUnsupportedMethod = errors.New("simulator: unsupported payment method")

// Outcome is the simulated processor response.
type Outcome struct {
	Delay   time.Duration
	Success bool
}

// Simulator blocks for the simulated processing latency and returns the outcome.
type Simulator interface {
	Simulate(ctx context.Context, method models.PaymentMethod) (Outcome, error)
}

type Config struct {
	TestMode    bool
	TestDelay   time.Duration
	TestSuccess bool
}

// New returns the Fixed simulator in test mode and the Probabilistic one otherwise.
func New(cfg Config) Simulator {
	if cfg.TestMode {
		return NewFixed(cfg.TestDelay, cfg.TestSuccess)
	}
	return NewProbabilistic()
}

// Probabilistic draws a uniform delay from its window and flips a
// method-weighted coin for the outcome.
type Probabilistic struct {
	mu       sync.Mutex
	random   *rand.Rand
	minDelay time.Duration
	maxDelay time.Duration
	rates    map[models.PaymentMethod]float64
}

type Option func(*Probabilistic)

// WithSource replaces the random source, mostly for reproducible tests.
func WithSource(src rand.Source) Option {
	return func(p *Probabilistic) { p.random = rand.New(src) }
}

// WithDelayWindow overrides the [min, max] latency window.
func WithDelayWindow(min, max time.Duration) Option {
	return func(p *Probabilistic) {
		if max < min {
			min, max = max, min
		}
		p.minDelay, p.maxDelay = min, max
	}
}

func NewProbabilistic(opts ...Option) *Probabilistic {
	p := &Probabilistic{
		random:   rand.New(rand.NewSource(time.Now().UnixNano())),
		minDelay: DefaultMinDelay,
		maxDelay: DefaultMaxDelay,
		rates: map[models.PaymentMethod]float64{
			models.PaymentMethodUPI:  UPISuccessRate,
			models.PaymentMethodCard: CardSuccessRate,
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Probabilistic) Simulate(ctx context.Context, method models.PaymentMethod) (Outcome, error) {
	outcome, err := p.decide(method)
	if err != nil {
		return Outcome{}, err
	}
	if err := wait(ctx, outcome.Delay); err != nil {
		return Outcome{}, err
	}
	return outcome, nil
}

// SuccessRate returns the configured success probability for method.
func (p *Probabilistic) SuccessRate(method models.PaymentMethod) (float64, bool) {
	rate, ok := p.rates[method]
	return rate, ok
}

func (p *Probabilistic) decide(method models.PaymentMethod) (Outcome, error) {
	rate, ok := p.rates[method]
	if !ok {
		return Outcome{}, ErrUnsupportedMethod
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	delay := p.minDelay
	if span := p.maxDelay - p.minDelay; span > 0 {
		steps := int64(span/time.Millisecond) + 1
		delay += time.Duration(p.random.Int63n(steps)) * time.Millisecond
	}

	return Outcome{
		Delay:   delay,
		Success: p.random.Float64() < rate,
	}, nil
}

// Fixed always waits Delay and reports Success. Used when TEST_MODE is on.
type Fixed struct {
	Delay   time.Duration
	Success bool
}

func NewFixed(delay time.Duration, success bool) *Fixed {
	if delay < 0 {
		delay = DefaultTestDelay
	}
	return &Fixed{Delay: delay, Success: success}
}

func (f *Fixed) Simulate(ctx context.Context, method models.PaymentMethod) (Outcome, error) {
	if method != models.PaymentMethodUPI && method != models.PaymentMethodCard {
		return Outcome{}, ErrUnsupportedMethod
	}
	if err := wait(ctx, f.Delay); err != nil {
		return Outcome{}, err
	}
	return Outcome{Delay: f.Delay, Success: f.Success}, nil
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
