package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestCORSPreflight(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name      string
		origins   []string
		origin    string
		wantAllow string
	}{
		{name: "default_dev_origin", origin: "http://localhost:5173", wantAllow: "http://localhost:5173"},
		{name: "configured_origin", origins: []string{"https://titles.example.com"}, origin: "https://titles.example.com", wantAllow: "https://titles.example.com"},
		{name: "unknown_origin", origins: []string{"https://titles.example.com"}, origin: "https://evil.example.com", wantAllow: ""},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			r := gin.New()
			r.Use(CORS(tc.origins))
			r.POST("/api/generate-titles", func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodOptions, "/api/generate-titles", nil)
			req.Header.Set("Origin", tc.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tc.wantAllow {
				t.Fatalf("unexpected allow-origin header: got=%q want=%q", got, tc.wantAllow)
			}
		})
	}
}
