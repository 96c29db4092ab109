package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ask-mark/internal/apierror"
	"ask-mark/internal/ratelimit"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func get(r http.Handler, remote, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = remote
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitRejectsOverLimit(t *testing.T) {
	limiter := ratelimit.NewMemory(ratelimit.WithMax(2))
	r := newEngine(RateLimit(limiter, zap.NewNop()))

	for i := 0; i < 2; i++ {
		if w := get(r, "10.0.0.1:1234", ""); w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i+1, w.Code)
		}
	}
	w := get(r, "10.0.0.1:1234", "")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Header().Get("Retry-After") != "60" || w.Header().Get("X-RateLimit-Limit") != "2" {
		t.Fatalf("unexpected headers %v", w.Header())
	}
	var body map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["error"] != apierror.MsgRateLimited {
		t.Fatalf("body = %v", body)
	}

	if w := get(r, "10.0.0.2:1234", ""); w.Code != http.StatusOK {
		t.Fatalf("other client status = %d", w.Code)
	}
}

type brokenLimiter struct{}

func (brokenLimiter) Allow(context.Context, string) (bool, error) {
	return false, errors.New("down")
}

func (brokenLimiter) Max() int { return 1 }

func (brokenLimiter) Window() time.Duration { return time.Minute }

func TestRateLimitFailsOpen(t *testing.T) {
	r := newEngine(RateLimit(brokenLimiter{}, zap.NewNop()))
	if w := get(r, "10.0.0.1:1234", ""); w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestCORS(t *testing.T) {
	mw, err := CORS([]string{"https://braveandboundless.com/", " http://localhost:3000"}, time.Hour)
	if err != nil {
		t.Fatalf("CORS: %v", err)
	}
	r := newEngine(mw)

	w := get(r, "10.0.0.1:1", "https://braveandboundless.com")
	if w.Code != http.StatusOK || w.Header().Get("Access-Control-Allow-Origin") != "https://braveandboundless.com" {
		t.Fatalf("allowed origin: status %d headers %v", w.Code, w.Header())
	}
	if w := get(r, "10.0.0.1:1", "https://evil.example"); w.Code != http.StatusForbidden {
		t.Fatalf("disallowed origin status = %d", w.Code)
	}
	if w := get(r, "10.0.0.1:1", ""); w.Code != http.StatusOK {
		t.Fatalf("no origin status = %d", w.Code)
	}
}

func TestCORSConfigErrors(t *testing.T) {
	if _, err := CORS(nil, 0); err == nil {
		t.Fatal("expected error for empty origin list")
	}
	if _, err := CORS([]string{"braveandboundless.com"}, 0); err == nil {
		t.Fatal("expected error for origin without scheme")
	}
	if _, err := CORS([]string{"*"}, 0); err != nil {
		t.Fatalf("wildcard: %v", err)
	}
}

func TestAccessLogPassesThrough(t *testing.T) {
	r := newEngine(AccessLog(zap.NewNop()))
	if w := get(r, "10.0.0.1:1", ""); w.Code != http.StatusOK || w.Body.String() != "pong" {
		t.Fatalf("status %d body %q", w.Code, w.Body.String())
	}
}
