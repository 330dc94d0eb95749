package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"checkout-gateway/internal/models"
	"checkout-gateway/internal/service"
)

const (
	HeaderAPIKey    = "X-Api-Key"
	HeaderAPISecret = "X-Api-Secret"

	merchantKey = "merchant"
)

// Auth resolves the calling merchant from the API key headers.
func Auth(merchants *service.MerchantService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		merchant, err := merchants.Authenticate(
			c.Request.Context(),
			c.GetHeader(HeaderAPIKey),
			c.GetHeader(HeaderAPISecret),
		)
		if err != nil {
			respondError(c, log, err)
			return
		}

		c.Set(merchantKey, merchant)
		c.Next()
	}
}

func currentMerchant(c *gin.Context) *models.Merchant {
	v, ok := c.Get(merchantKey)
	if !ok {
		return nil
	}
	m, _ := v.(*models.Merchant)
	return m
}
