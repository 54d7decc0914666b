package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/titleforge-backend/internal/platform/ctxutil"
	"github.com/yungbote/titleforge-backend/internal/platform/logger"
)

// RequestLogger logs one line per request. user_id and session_id are hashed
// by the logger when redaction is on.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if log == nil {
			return
		}

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		fields := []interface{}{
			"method", strings.ToUpper(c.Request.Method),
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		fields = append(fields, ctxutil.TraceFields(c.Request.Context())...)
		if rd := ctxutil.GetRequestData(c.Request.Context()); rd.Authenticated() {
			fields = append(fields, "user_id", rd.UserID)
			if rd.SessionID != "" {
				fields = append(fields, "session_id", rd.SessionID)
			}
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}
