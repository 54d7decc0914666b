package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/titleforge-backend/internal/http/middleware"
	"github.com/yungbote/titleforge-backend/internal/http/response"
	"github.com/yungbote/titleforge-backend/internal/services"
)

type UsageHandler struct {
	ledger services.QuotaLedger
}

func NewUsageHandler(ledger services.QuotaLedger) *UsageHandler {
	return &UsageHandler{ledger: ledger}
}

// GET /api/usage
func (h *UsageHandler) GetUsage(c *gin.Context) {
	rd := middleware.Identity(c)
	if rd == nil {
		response.RespondServiceError(c, services.ErrUnauthenticated)
		return
	}
	response.RespondOK(c, h.ledger.Usage(c.Request.Context(), rd.UserID))
}

// GET /api/usage/can-generate
func (h *UsageHandler) CanGenerate(c *gin.Context) {
	rd := middleware.Identity(c)
	if rd == nil {
		response.RespondServiceError(c, services.ErrUnauthenticated)
		return
	}
	allowed, remaining := h.ledger.CanGenerate(c.Request.Context(), rd.UserID)
	response.RespondOK(c, gin.H{"canGenerate": allowed, "remaining": remaining})
}
