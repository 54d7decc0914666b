package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/titleforge-backend/internal/observability"
	"github.com/yungbote/titleforge-backend/internal/platform/ctxutil"
	"github.com/yungbote/titleforge-backend/internal/platform/logger"
	"github.com/yungbote/titleforge-backend/internal/services"
)

func newAuth() (*AuthMiddleware, services.IdentityVerifier) {
	id := services.NewIdentityVerifier(logger.NewNop(), services.IdentityConfig{Secret: "s", Audience: "authenticated"})
	return NewAuthMiddleware(logger.NewNop(), id), id
}

func TestRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	am, id := newAuth()
	good, err := id.Sign("user-1", "sess-1", time.Hour)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing", header: "", want: http.StatusUnauthorized},
		{name: "not_bearer", header: "Basic abc", want: http.StatusUnauthorized},
		{name: "bad_token", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "valid", header: "Bearer " + good, want: http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/me", am.RequireAuth(), func(c *gin.Context) {
				rd := Identity(c)
				if rd == nil || rd.UserID != "user-1" || rd.SessionID != "sess-1" {
					t.Errorf("identity not attached: %+v", rd)
				}
				c.Status(http.StatusOK)
			})
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("status: want=%d got=%d body=%s", tc.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestOptionalAuthPassesAnonymous(t *testing.T) {
	gin.SetMode(gin.TestMode)
	am, _ := newAuth()
	r := gin.New()
	r.GET("/x", am.OptionalAuth(), func(c *gin.Context) {
		if Identity(c) != nil {
			t.Errorf("expected anonymous")
		}
		c.Status(http.StatusNoContent)
	})
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status: want=%d got=%d", http.StatusNoContent, rec.Code)
	}
}

func TestAttachTraceContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	var seen *ctxutil.TraceData
	r.GET("/x", func(c *gin.Context) {
		seen = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if got := rec.Header().Get(HeaderRequestID); got != "req-123" {
		t.Fatalf("request id: want=%q got=%q", "req-123", got)
	}
	if seen == nil || seen.RequestID != "req-123" || seen.TraceID == "" {
		t.Fatalf("trace data: got %+v", seen)
	}
	if rec.Header().Get(HeaderTraceID) != seen.TraceID {
		t.Fatalf("trace id header mismatch")
	}
}

func TestMetricsSkipsHealthAndCollapsesUnmatched(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := observability.Init(logger.NewNop(), observability.MetricsConfig{Enabled: true})

	r := gin.New()
	r.Use(Metrics(m, "/healthcheck"))
	r.GET("/healthcheck", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/formulas", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/healthcheck", "/api/formulas", "/wp-admin.php"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`tf_api_requests_total{method="GET",route="/api/formulas",status="200"} 1`,
		`tf_api_requests_total{method="GET",route="unmatched",status="404"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "/healthcheck") || strings.Contains(out, "wp-admin") {
		t.Fatalf("unexpected route label in:\n%s", out)
	}
}
