package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/rosterdesk/rosterdesk/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(rl *middleware.RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(rl.Handler())
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	return r
}

func hit(r *gin.Engine, remoteAddr string) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.RemoteAddr = remoteAddr
	r.ServeHTTP(w, req)

	return w.Code
}

func TestRateLimiter_AllowsWithinLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := newRouter(middleware.NewRateLimiter(ctx, 10, 5))

	if code := hit(r, "1.2.3.4:1234"); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
}

func TestRateLimiter_BlocksExceedingBurst(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := newRouter(middleware.NewRateLimiter(ctx, 1, 2))

	for i := range 3 {
		code := hit(r, "1.2.3.4:1234")

		if i < 2 && code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, code)
		}
		if i == 2 && code != http.StatusTooManyRequests {
			t.Fatalf("request %d: expected 429, got %d", i, code)
		}
	}
}

func TestRateLimiter_IndependentClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := newRouter(middleware.NewRateLimiter(ctx, 1, 1))

	hit(r, "1.1.1.1:1000")

	if code := hit(r, "2.2.2.2:1000"); code != http.StatusOK {
		t.Fatalf("different IP should not be rate limited, got %d", code)
	}
}

func TestRateLimiter_TokensRefillOverTime(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// High rate so even tiny elapsed time refills tokens.
	r := newRouter(middleware.NewRateLimiter(ctx, 1000000, 2))

	for range 2 {
		hit(r, "5.5.5.5:1000")
	}

	if code := hit(r, "5.5.5.5:1000"); code != http.StatusOK {
		t.Fatalf("expected tokens to refill, got %d", code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(middleware.SecurityHeaders())
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	r.ServeHTTP(w, req)

	expected := map[string]string{
		"X-Content-Type-Options":    "nosniff",
		"X-Frame-Options":           "DENY",
		"Referrer-Policy":           "strict-origin-when-cross-origin",
		"Content-Security-Policy":   "default-src 'none'; frame-ancestors 'none'",
		"Strict-Transport-Security": "max-age=63072000; includeSubDomains",
		"Permissions-Policy":        "camera=(), microphone=(), geolocation=()",
		"Cache-Control":             "no-store",
	}

	for header, want := range expected {
		if got := w.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
}

func TestMaxBodySize(t *testing.T) {
	r := gin.New()
	r.Use(middleware.MaxBodySize(16))
	r.POST("/test", func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.AbortWithStatus(http.StatusRequestEntityTooLarge)

			return
		}
		c.Status(http.StatusOK)
	})

	t.Run("small body passes", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"a":1}`))
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", w.Code)
		}
	})

	t.Run("oversized body rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/test",
			strings.NewReader(`{"a":"`+strings.Repeat("x", 64)+`"}`))
		r.ServeHTTP(w, req)

		if w.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("expected 413, got %d", w.Code)
		}
	})
}
