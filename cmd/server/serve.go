package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"checkout-gateway/internal/handler"
	"checkout-gateway/internal/metrics"
	"checkout-gateway/internal/service"
	"checkout-gateway/internal/simulator"
	"checkout-gateway/pkg/logger"
	"checkout-gateway/pkg/tracing"
)

func runServe(envFile string) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(serviceName, cfg.Environment)
	defer log.Sync()

	// Only propagation is set up here. Spans are exported once the host
	// environment registers a provider with otel.SetTracerProvider.
	tracing.InstallPropagator()

	st, err := openStores(cfg, log)
	if err != nil {
		log.Error("failed to open store", zap.Error(err))
		return err
	}
	defer st.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	publisher := openPublisher(cfg, log)
	defer publisher.Close()

	ctx := context.Background()
	guard, closeGuard, err := openGuard(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeGuard()

	sim := simulator.New(simulator.Config{
		TestMode:    cfg.TestMode,
		TestDelay:   cfg.TestProcessingDelay,
		TestSuccess: cfg.TestPaymentSuccess,
	})
	if cfg.TestMode {
		log.Info("test mode enabled",
			zap.Duration("delay", cfg.TestProcessingDelay),
			zap.Bool("success", cfg.TestPaymentSuccess))
	}

	merchantService := service.NewMerchantService(st.merchants, log)
	orderService := service.NewOrderService(st.orders, publisher, m, log)
	paymentService := service.NewPaymentService(st.orders, st.payments, sim, guard, publisher, m, log)

	if _, err := merchantService.SeedTestMerchant(ctx, service.TestMerchantConfig{
		Email:     cfg.TestMerchantEmail,
		APIKey:    cfg.TestAPIKey,
		APISecret: cfg.TestAPISecret,
	}); err != nil {
		log.Error("failed to seed test merchant", zap.Error(err))
		return err
	}

	var dbChecker handler.DatabaseChecker
	if st.db != nil {
		dbChecker = st.db
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handler.NewRouter(handler.RouterConfig{
		ServiceName: serviceName,
		Logger:      log,
		Metrics:     m,
		Gatherer:    reg,
		Merchants:   merchantService,
		Payments:    handler.NewPaymentHandler(paymentService, log),
		Orders:      handler.NewOrderHandler(orderService, log),
		Health:      handler.NewHealthHandler(dbChecker, merchantService, cfg.TestMerchantEmail, log),
	})

	// WriteTimeout has to cover the simulated processor latency.
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("port", cfg.Port), zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Error("failed to start server", zap.Error(err))
		return err
	case <-quit:
	}

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
		return err
	}

	log.Info("server exited")
	return nil
}
