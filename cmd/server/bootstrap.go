package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"checkout-gateway/internal/config"
	"checkout-gateway/internal/repository"
	"checkout-gateway/internal/service"
	"checkout-gateway/pkg/database"
	"checkout-gateway/pkg/events"
	"checkout-gateway/pkg/redis"
)

func loadConfig(envFile string) (*config.Config, error) {
	if envFile != "" {
		return config.Load(envFile)
	}
	return config.Load()
}

type stores struct {
	db        *database.PostgresDB
	merchants service.MerchantStore
	orders    service.OrderStore
	payments  service.PaymentStore
}

func (s *stores) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// openStores connects the configured store and applies migrations for Postgres.
func openStores(cfg *config.Config, log *zap.Logger) (*stores, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		log.Warn("using in-memory store; data is lost on restart")
		return &stores{
			merchants: repository.NewMemoryMerchantRepository(),
			orders:    repository.NewMemoryOrderRepository(),
			payments:  repository.NewMemoryPaymentRepository(),
		}, nil
	}

	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.RunMigrations(db, log); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &stores{
		db:        db,
		merchants: repository.NewMerchantRepository(db.DB),
		orders:    repository.NewOrderRepository(db.DB),
		payments:  repository.NewPaymentRepository(db.DB),
	}, nil
}

func openPublisher(cfg *config.Config, log *zap.Logger) events.Publisher {
	if cfg.AMQPURL == "" {
		return events.NewLogPublisher(log)
	}

	pub, err := events.DialAMQP(cfg.AMQPURL, serviceName)
	if err != nil {
		log.Warn("RabbitMQ unavailable, falling back to log publisher", zap.Error(err))
		return events.NewLogPublisher(log)
	}
	log.Info("publishing events to RabbitMQ", zap.String("exchange", events.Exchange))
	return pub
}

// openGuard returns the submission guard for the configured policy and a
// cleanup func for any connection it opened.
func openGuard(ctx context.Context, cfg *config.Config, log *zap.Logger) (service.SubmissionGuard, func(), error) {
	noop := func() {}

	if cfg.SubmissionPolicy != config.PolicyRejectIfPending {
		return service.AllowMultiple{}, noop, nil
	}

	if cfg.RedisURL == "" {
		log.Info("submission guard uses in-process locks")
		return service.NewMemoryGuard(), noop, nil
	}

	client, err := redis.NewRedisClient(cfg.RedisURL)
	if err != nil {
		return nil, noop, fmt.Errorf("redis client: %w", err)
	}
	if err := client.Ping(ctx); err != nil {
		_ = client.Close()
		log.Warn("redis unreachable, submission guard uses in-process locks", zap.Error(err))
		return service.NewMemoryGuard(), noop, nil
	}

	log.Info("submission guard uses redis locks")
	return service.NewRedisGuard(client, service.DefaultGuardTTL, log), func() { _ = client.Close() }, nil
}
