package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"checkout-gateway/internal/metrics"
	"checkout-gateway/internal/service"
	"checkout-gateway/pkg/middleware"
)

type RouterConfig struct {
	ServiceName string
	Logger      *zap.Logger
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer

	Merchants *service.MerchantService
	Payments  *PaymentHandler
	Orders    *OrderHandler
	Health    *HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Tracing(cfg.ServiceName))
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.Recovery(cfg.Logger))
	router.Use(middleware.CORS())
	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.Middleware())
	}

	router.GET("/health", cfg.Health.Health)
	router.GET("/ready", cfg.Health.Ready)
	if cfg.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	auth := Auth(cfg.Merchants, cfg.Logger)

	v1 := router.Group("/api/v1")
	{
		orders := v1.Group("/orders")
		{
			orders.POST("", auth, cfg.Orders.CreateOrder)
			orders.GET("/:id", auth, cfg.Orders.GetOrder)
			orders.GET("/:id/public", cfg.Orders.GetPublicOrder)
		}

		payments := v1.Group("/payments")
		{
			payments.POST("", auth, cfg.Payments.CreatePayment)
			payments.GET("", auth, cfg.Payments.ListPayments)
			payments.POST("/public", cfg.Payments.CreatePublicPayment)
			payments.GET("/:id", auth, cfg.Payments.GetPayment)
			payments.GET("/:id/public", cfg.Payments.GetPublicPayment)
		}

		v1.GET("/test/merchant", cfg.Health.TestMerchant)
	}

	return router
}
