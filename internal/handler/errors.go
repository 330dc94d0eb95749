package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"checkout-gateway/internal/service"
)

type errorBody struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

var statusByCode = map[string]int{
	service.CodeAuthentication:    http.StatusUnauthorized,
	service.CodeBadRequest:        http.StatusBadRequest,
	service.CodeNotFound:          http.StatusNotFound,
	service.CodeInvalidVPA:        http.StatusBadRequest,
	service.CodeInvalidCard:       http.StatusBadRequest,
	service.CodeExpiredCard:       http.StatusBadRequest,
	service.CodePaymentInProgress: http.StatusConflict,
}

// respondError writes the error envelope for err. Anything that is not a
// service.Error is logged and reported as an internal error.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		status, ok := statusByCode[svcErr.Code]
		if !ok {
			status = http.StatusInternalServerError
		}
		c.AbortWithStatusJSON(status, errorResponse{Error: errorBody{
			Code:        svcErr.Code,
			Description: svcErr.Description,
		}})
		return
	}

	log.Error("request failed",
		zap.String("path", c.FullPath()),
		zap.String("request_id", c.GetString("request_id")),
		zap.Error(err))
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Error: errorBody{
		Code:        service.CodeInternal,
		Description: "Internal server error",
	}})
}

func badRequest(c *gin.Context, description string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: errorBody{
		Code:        service.CodeBadRequest,
		Description: description,
	}})
}
