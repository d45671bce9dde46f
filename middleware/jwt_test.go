package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pocketbook/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withTestSecret(t *testing.T) {
	t.Helper()
	config.GlobalConfig = &config.Config{
		Server: config.ServerConfig{Mode: "debug"},
		JWT:    config.JWTConfig{Secret: "test-jwt-secret-key"},
	}
	InitJWT(config.GlobalConfig)
	t.Cleanup(func() { config.GlobalConfig = nil })
}

func TestGenerateAndParseToken(t *testing.T) {
	withTestSecret(t)

	token, err := GenerateToken(1, "testuser", 24*time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(1), claims.UserID)
	assert.Equal(t, "testuser", claims.Username)
	assert.Equal(t, "pocketbook", claims.Issuer)
}

func TestParseToken_Rejects(t *testing.T) {
	withTestSecret(t)

	expired, err := GenerateToken(1, "testuser", -time.Minute)
	require.NoError(t, err)

	cases := []struct {
		name  string
		token string
	}{
		{"空字符串", ""},
		{"非 JWT 格式", "not.a.valid.jwt"},
		{"伪造签名", "eyJhbGciOiJmb29iIn0.xxxx.yyyy"},
		{"已过期", expired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseToken(tc.token)
			assert.Error(t, err)
		})
	}
}

func TestJWTAuth(t *testing.T) {
	withTestSecret(t)
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(JWTAuth())
	router.GET("/protected", func(c *gin.Context) {
		c.String(200, "id:%d", GetCurrentUserID(c))
	})

	valid, err := GenerateToken(42, "user42", time.Hour)
	require.NoError(t, err)

	cases := []struct {
		name       string
		authHeader string
		wantCode   int
		wantBody   string
	}{
		{"无 Authorization 头", "", http.StatusUnauthorized, "请先登录"},
		{"非 Bearer 方案", "Basic xyz", http.StatusUnauthorized, "认证格式错误"},
		{"仅 Bearer 无 token", "Bearer ", http.StatusUnauthorized, "认证格式错误"},
		{"被篡改的 token", "Bearer " + valid + "x", http.StatusUnauthorized, "无效或过期"},
		{"有效 token", "Bearer " + valid, 200, "id:42"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/protected", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tc.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tc.wantBody)
		})
	}
}

func TestGetCurrentUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	// 未认证的上下文返回 0
	assert.Equal(t, uint(0), GetCurrentUserID(c))

	c.Set("userID", uint(99))
	c.Set("username", "user99")
	assert.Equal(t, uint(99), GetCurrentUserID(c))
	assert.Equal(t, "user99", GetCurrentUsername(c))
}
