package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/samrat1446/farcaster-mini-app/pkg/logging"
)

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func TestRequestIDMiddleware_GeneratesID(t *testing.T) {
	router := setupRouter()
	router.Use(RequestIDMiddleware())
	router.GET("/ping", func(c *gin.Context) {
		if c.GetString("request_id") == "" {
			t.Error("expected request_id in context")
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	router.ServeHTTP(w, req)

	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected X-Request-ID header to be set")
	}
}

func TestRequestIDMiddleware_PreservesInboundID(t *testing.T) {
	router := setupRouter()
	router.Use(RequestIDMiddleware())
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "inbound-id")
	router.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "inbound-id" {
		t.Fatalf("expected inbound request id preserved, got %q", got)
	}
}

func TestCORSMiddleware_PreflightShortCircuits(t *testing.T) {
	router := setupRouter()
	router.Use(CORSMiddleware())
	router.GET("/profile", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/profile", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("expected CORS headers on preflight")
	}
}

func TestRecoveryMiddleware_ConvertsPanicsTo500(t *testing.T) {
	router := setupRouter()
	router.Use(RecoveryMiddleware(logging.NewTestLogger()))
	router.GET("/boom", func(c *gin.Context) {
		panic("scoring exploded")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 after panic, got %d", w.Code)
	}
}
