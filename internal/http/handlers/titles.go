package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/titleforge-backend/internal/domain/titles"
	"github.com/yungbote/titleforge-backend/internal/domain/usage"
	"github.com/yungbote/titleforge-backend/internal/http/middleware"
	"github.com/yungbote/titleforge-backend/internal/http/response"
	"github.com/yungbote/titleforge-backend/internal/services"
)

const maxRequestBody = 64 << 10

type TitleHandler struct {
	titles services.TitleService
}

func NewTitleHandler(titles services.TitleService) *TitleHandler {
	return &TitleHandler{titles: titles}
}

type generateTitlesRequest struct {
	Description string `json:"description"`
}

type generateTitlesResponse struct {
	Titles     []string                `json:"titles"`
	Variations []titles.TitleVariation `json:"variations"`
	Quota      usage.QuotaState        `json:"quota"`
}

// POST /api/generate-titles
func (h *TitleHandler) Generate(c *gin.Context) {
	rd := middleware.Identity(c)
	if rd == nil {
		response.RespondServiceError(c, services.ErrUnauthenticated)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestBody)
	var req generateTitlesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeInvalidInput, errors.New("request body must be JSON with a description"))
		return
	}

	res, err := h.titles.Generate(c.Request.Context(), services.GenerateRequest{
		UserID:      rd.UserID,
		SessionID:   rd.SessionID,
		Description: req.Description,
	})
	if err != nil {
		_ = c.Error(err)
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, generateTitlesResponse{
		Titles:     titles.Texts(res.Variations),
		Variations: res.Variations,
		Quota:      res.Quota,
	})
}
