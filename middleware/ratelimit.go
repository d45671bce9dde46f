package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"pocketbook/config"

	"github.com/gin-gonic/gin"
)

// ipWindow 单个 IP 的固定窗口计数
type ipWindow struct {
	start    time.Time
	attempts int
}

// loginLimiter 按 IP 的固定窗口限流器
// 窗口过期的条目在访问和周期性扫描时惰性回收
type loginLimiter struct {
	mu          sync.Mutex
	windows     map[string]*ipWindow
	maxAttempts int
	window      time.Duration
	lastSweep   time.Time
}

func newLoginLimiter(cfg config.RateLimitConfig) *loginLimiter {
	return &loginLimiter{
		windows:     make(map[string]*ipWindow),
		maxAttempts: cfg.MaxAttempts,
		window:      cfg.Window(),
		lastSweep:   time.Now(),
	}
}

// allow 记录一次尝试并判断是否放行，返回剩余等待时间
func (l *loginLimiter) allow(ip string) (bool, time.Duration) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > l.window {
		l.sweep(now)
	}

	w, ok := l.windows[ip]
	if !ok || now.Sub(w.start) >= l.window {
		l.windows[ip] = &ipWindow{start: now, attempts: 1}
		return true, 0
	}

	if w.attempts >= l.maxAttempts {
		return false, l.window - now.Sub(w.start)
	}
	w.attempts++
	return true, 0
}

// sweep 回收已过期的窗口，调用方需持有锁
func (l *loginLimiter) sweep(now time.Time) {
	for ip, w := range l.windows {
		if now.Sub(w.start) >= l.window {
			delete(l.windows, ip)
		}
	}
	l.lastSweep = now
}

// LoginRateLimit 登录接口限流中间件
// 窗口和次数由配置决定，超限返回 429 并带 Retry-After
func LoginRateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	limiter := newLoginLimiter(cfg)

	return func(c *gin.Context) {
		ok, wait := limiter.allow(c.ClientIP())
		if !ok {
			retryAfter := int(wait.Seconds()) + 1
			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"code":    http.StatusTooManyRequests,
				"message": fmt.Sprintf("登录尝试过于频繁，请 %d 秒后再试", retryAfter),
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
