package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	pkgerrors "github.com/yungbote/titleforge-backend/internal/pkg/errors"
)

const (
	CodeInvalidInput     = "invalid_input"
	CodeUnauthorized     = "unauthorized"
	CodeQuotaExceeded    = "quota_exceeded"
	CodeGenerationFailed = "generation_failed"
	CodeInternal         = "internal_error"
)

// limitCarrier is implemented by quota errors that know the configured limit.
type limitCarrier interface {
	QuotaLimit() int
}

// RespondServiceError maps the service error taxonomy onto HTTP. Generation
// failures get a generic message so provider details never leak.
func RespondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pkgerrors.ErrInvalidInput):
		RespondError(c, http.StatusBadRequest, CodeInvalidInput, err)
	case errors.Is(err, pkgerrors.ErrUnauthenticated):
		RespondError(c, http.StatusUnauthorized, CodeUnauthorized, errors.New("authentication required"))
	case errors.Is(err, pkgerrors.ErrQuotaExceeded):
		var opts []ErrorOption
		var lc limitCarrier
		if errors.As(err, &lc) {
			opts = append(opts, WithLimit(lc.QuotaLimit()))
		}
		RespondError(c, http.StatusTooManyRequests, CodeQuotaExceeded, err, opts...)
	case errors.Is(err, pkgerrors.ErrGenerationFailed):
		RespondError(c, http.StatusInternalServerError, CodeGenerationFailed, errors.New("failed to generate titles, please try again"))
	default:
		RespondError(c, http.StatusInternalServerError, CodeInternal, errors.New("internal error"))
	}
}
