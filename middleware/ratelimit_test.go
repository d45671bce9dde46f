package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pocketbook/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newRateLimitedRouter(cfg config.RateLimitConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(LoginRateLimit(cfg))
	router.POST("/login", func(c *gin.Context) {
		c.String(200, "ok")
	})
	return router
}

func attemptLogin(router *gin.Engine, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/login", nil)
	req.RemoteAddr = ip + ":12345"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestLoginRateLimit_BlocksOverLimit(t *testing.T) {
	router := newRateLimitedRouter(config.RateLimitConfig{MaxAttempts: 2, WindowSeconds: 60})

	assert.Equal(t, 200, attemptLogin(router, "192.168.1.1").Code)
	assert.Equal(t, 200, attemptLogin(router, "192.168.1.1").Code)

	// 超限后返回 429 并给出重试时间
	w := attemptLogin(router, "192.168.1.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "频繁")
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestLoginRateLimit_PerIPIsolation(t *testing.T) {
	router := newRateLimitedRouter(config.RateLimitConfig{MaxAttempts: 1, WindowSeconds: 60})

	assert.Equal(t, 200, attemptLogin(router, "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, attemptLogin(router, "10.0.0.1").Code)

	// 另一个 IP 拥有独立窗口
	assert.Equal(t, 200, attemptLogin(router, "10.0.0.2").Code)
}

func TestLoginLimiter_WindowExpiry(t *testing.T) {
	limiter := newLoginLimiter(config.RateLimitConfig{MaxAttempts: 1, WindowSeconds: 60})

	ok, _ := limiter.allow("10.0.0.1")
	assert.True(t, ok)
	ok, wait := limiter.allow("10.0.0.1")
	assert.False(t, ok)
	assert.Greater(t, wait, time.Duration(0))

	// 窗口过期后重新计数
	limiter.windows["10.0.0.1"].start = time.Now().Add(-2 * time.Minute)
	ok, _ = limiter.allow("10.0.0.1")
	assert.True(t, ok)
}

func TestLoginLimiter_Sweep(t *testing.T) {
	limiter := newLoginLimiter(config.RateLimitConfig{MaxAttempts: 5, WindowSeconds: 60})

	limiter.allow("10.0.0.1")
	limiter.allow("10.0.0.2")
	limiter.windows["10.0.0.1"].start = time.Now().Add(-2 * time.Minute)
	limiter.lastSweep = time.Now().Add(-2 * time.Minute)

	// 下一次访问触发过期窗口回收
	limiter.allow("10.0.0.3")
	_, stale := limiter.windows["10.0.0.1"]
	assert.False(t, stale)
	_, fresh := limiter.windows["10.0.0.2"]
	assert.True(t, fresh)
}
