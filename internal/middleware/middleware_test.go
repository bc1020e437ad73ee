package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)

	r := gin.New()
	r.Use(Logger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	if w.Header().Get("X-Trace-ID") == "" {
		t.Errorf("Expected a generated trace id")
	}

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set("X-Trace-ID", "trace-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("X-Trace-ID") != "trace-123" {
		t.Errorf("Expected the incoming trace id to be kept, got %q", w.Header().Get("X-Trace-ID"))
	}

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("Expected 2 log entries, got %d", len(entries))
	}
	if entries[0].Level != zap.InfoLevel || entries[1].Level != zap.ErrorLevel {
		t.Errorf("Unexpected levels %v, %v", entries[0].Level, entries[1].Level)
	}
	if entries[1].ContextMap()["trace_id"] != "trace-123" {
		t.Errorf("Expected trace id field, got %v", entries[1].ContextMap())
	}
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name        string
		origins     []string
		origin      string
		method      string
		allowOrigin string
		status      int
	}{
		{"Allowed origin", []string{"http://localhost:5173"}, "http://localhost:5173", http.MethodGet, "http://localhost:5173", http.StatusOK},
		{"Unknown origin", []string{"http://localhost:5173"}, "http://evil.test", http.MethodGet, "", http.StatusOK},
		{"Wildcard", []string{"*"}, "http://school.test", http.MethodGet, "http://school.test", http.StatusOK},
		{"Preflight", []string{"http://localhost:5173"}, "http://localhost:5173", http.MethodOptions, "http://localhost:5173", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(CORS(tt.origins))
			r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(tt.method, "/x", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, w.Code)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.allowOrigin {
				t.Errorf("Expected allow origin %q, got %q", tt.allowOrigin, got)
			}
		})
	}
}
