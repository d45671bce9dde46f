package models

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"gorm.io/gorm"
)

// ResetTokenTTL 重置令牌有效期，与重置邮件里的提示保持一致
const ResetTokenTTL = 30 * time.Minute

// PasswordReset 密码重置令牌
// 一次性使用，过期或使用后作废；用户邮箱通过 UserID 关联取得
type PasswordReset struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"user_id" gorm:"index;not null"`
	Token     string         `json:"token" gorm:"uniqueIndex;size:64;not null"`
	ExpiresAt time.Time      `json:"expires_at" gorm:"not null"`
	Used      bool           `json:"used" gorm:"default:false"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
	User      User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (PasswordReset) TableName() string {
	return "password_resets"
}

// NewPasswordReset 为用户签发一个重置令牌，有效期 ResetTokenTTL
func NewPasswordReset(userID uint) (*PasswordReset, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}
	return &PasswordReset{
		UserID:    userID,
		Token:     hex.EncodeToString(raw),
		ExpiresAt: time.Now().Add(ResetTokenTTL),
	}, nil
}

// IsExpired 检查令牌是否过期
func (p *PasswordReset) IsExpired() bool {
	return time.Now().After(p.ExpiresAt)
}

// IsValid 令牌未使用且未过期时可用于重置
func (p *PasswordReset) IsValid() bool {
	return !p.Used && !p.IsExpired()
}
