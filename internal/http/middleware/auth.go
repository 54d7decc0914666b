package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/titleforge-backend/internal/http/response"
	"github.com/yungbote/titleforge-backend/internal/platform/ctxutil"
	"github.com/yungbote/titleforge-backend/internal/platform/logger"
	"github.com/yungbote/titleforge-backend/internal/services"
)

type AuthMiddleware struct {
	log      *logger.Logger
	identity services.IdentityVerifier
}

func NewAuthMiddleware(log *logger.Logger, identity services.IdentityVerifier) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("Middleware", "AuthMiddleware"), identity: identity}
}

// RequireAuth rejects requests without a verified identity.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractBearer(c)
		if tokenString == "" {
			response.RespondError(c, http.StatusUnauthorized, response.CodeUnauthorized, errors.New("missing or invalid token"))
			return
		}
		ctx, err := am.identity.SetContextFromToken(c.Request.Context(), tokenString)
		if err != nil {
			am.log.Debug("token rejected", "error", err)
			response.RespondError(c, http.StatusUnauthorized, response.CodeUnauthorized, errors.New("missing or invalid token"))
			return
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// OptionalAuth attaches identity when a valid token is present and otherwise
// lets the request through as anonymous.
func (am *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := extractBearer(c); tokenString != "" {
			if ctx, err := am.identity.SetContextFromToken(c.Request.Context(), tokenString); err == nil {
				c.Request = c.Request.WithContext(ctx)
			} else {
				am.log.Debug("ignoring invalid token", "error", err)
			}
		}
		c.Next()
	}
}

// Identity returns the verified caller, or nil for anonymous requests.
func Identity(c *gin.Context) *ctxutil.RequestData {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if !rd.Authenticated() {
		return nil
	}
	return rd
}

func extractBearer(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
