package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/titleforge-backend/internal/catalog"
	"github.com/yungbote/titleforge-backend/internal/http/response"
)

type FormulaHandler struct {
	catalog *catalog.Catalog
}

func NewFormulaHandler(c *catalog.Catalog) *FormulaHandler {
	return &FormulaHandler{catalog: c}
}

// GET /api/formulas
func (h *FormulaHandler) List(c *gin.Context) {
	response.RespondOK(c, gin.H{
		"formulas":   h.catalog.Formulas(),
		"powerWords": h.catalog.AllPowerWords(),
	})
}
