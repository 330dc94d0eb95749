package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"checkout-gateway/internal/config"
	"checkout-gateway/internal/service"
	"checkout-gateway/pkg/logger"
)

func runMigrate(envFile string) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.StoreDriver != config.StoreDriverPostgres {
		return errors.New("migrate requires STORE_DRIVER=postgres")
	}

	log := logger.New(serviceName, cfg.Environment)
	defer log.Sync()

	// openStores runs the migrations as part of connecting.
	st, err := openStores(cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	merchants := service.NewMerchantService(st.merchants, log)
	if _, err := merchants.SeedTestMerchant(context.Background(), service.TestMerchantConfig{
		Email:     cfg.TestMerchantEmail,
		APIKey:    cfg.TestAPIKey,
		APISecret: cfg.TestAPISecret,
	}); err != nil {
		return err
	}

	log.Info("database ready", zap.String("store", cfg.StoreDriver))
	return nil
}
