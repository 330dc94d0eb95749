package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"checkout-gateway/internal/service"
)

// DatabaseChecker reports whether the backing store is reachable.
type DatabaseChecker interface {
	Healthy(ctx context.Context) bool
}

type HealthHandler struct {
	db                DatabaseChecker
	merchants         *service.MerchantService
	testMerchantEmail string
	logger            *zap.Logger
}

// NewHealthHandler builds the health handler. db may be nil when the gateway
// runs on the in-memory store.
func NewHealthHandler(db DatabaseChecker, merchants *service.MerchantService, testMerchantEmail string, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:                db,
		merchants:         merchants,
		testMerchantEmail: testMerchantEmail,
		logger:            logger,
	}
}

func (h *HealthHandler) databaseUp(ctx context.Context) bool {
	return h.db == nil || h.db.Healthy(ctx)
}

// Health handles GET /health. It always answers 200 and reports the database state.
func (h *HealthHandler) Health(c *gin.Context) {
	database := "connected"
	if !h.databaseUp(c.Request.Context()) {
		database = "disconnected"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"database":  database,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// Ready handles GET /ready.
func (h *HealthHandler) Ready(c *gin.Context) {
	if !h.databaseUp(c.Request.Context()) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// TestMerchant handles GET /api/v1/test/merchant
func (h *HealthHandler) TestMerchant(c *gin.Context) {
	merchant, err := h.merchants.FindByEmail(c.Request.Context(), h.testMerchantEmail)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":      merchant.ID,
		"email":   merchant.Email,
		"api_key": merchant.APIKey,
		"seeded":  true,
	})
}
