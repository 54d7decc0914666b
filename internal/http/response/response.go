package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIError is the body of every non-2xx response: {"error":{...}}.
type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Limit   *int   `json:"limit,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

type ErrorOption func(*APIError)

// WithLimit attaches the generation limit to a quota rejection.
func WithLimit(limit int) ErrorOption {
	return func(e *APIError) { e.Limit = &limit }
}

func RespondError(c *gin.Context, status int, code string, err error, opts ...ErrorOption) {
	apiErr := APIError{Message: "unknown error", Code: code}
	if err != nil {
		apiErr.Message = err.Error()
	}
	for _, opt := range opts {
		opt(&apiErr)
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: apiErr})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
