package models

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPasswordReset(t *testing.T) {
	reset, err := NewPasswordReset(7)
	require.NoError(t, err)

	assert.Equal(t, uint(7), reset.UserID)
	assert.False(t, reset.Used)
	assert.True(t, reset.IsValid())

	// 64 位十六进制令牌
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{64}$`), reset.Token)

	// 有效期为签发时刻起 30 分钟
	ttl := time.Until(reset.ExpiresAt)
	assert.Greater(t, ttl, ResetTokenTTL-time.Minute)
	assert.LessOrEqual(t, ttl, ResetTokenTTL)
}

func TestNewPasswordReset_TokensAreUnique(t *testing.T) {
	a, err := NewPasswordReset(1)
	require.NoError(t, err)
	b, err := NewPasswordReset(1)
	require.NoError(t, err)
	assert.NotEqual(t, a.Token, b.Token)
}

func TestPasswordReset_Lifecycle(t *testing.T) {
	reset, err := NewPasswordReset(1)
	require.NoError(t, err)

	// 刚签发：可用
	assert.False(t, reset.IsExpired())
	assert.True(t, reset.IsValid())

	// 使用后作废，即使尚未过期
	reset.Used = true
	assert.False(t, reset.IsValid())

	// 过期后作废，即使从未使用
	expired, err := NewPasswordReset(1)
	require.NoError(t, err)
	expired.ExpiresAt = time.Now().Add(-time.Second)
	assert.True(t, expired.IsExpired())
	assert.False(t, expired.IsValid())
}
