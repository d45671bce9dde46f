package models

import (
	"time"

	"gorm.io/gorm"
)

// Pocket 钱包（预算信封）模型
// Limit 仅记录不做强制校验，Funds 为可变余额
type Pocket struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"user_id" gorm:"index;not null"`
	Name      string         `json:"name" gorm:"size:40;not null"`
	Limit     float64        `json:"limit" gorm:"type:decimal(9,2);not null"`
	Funds     float64        `json:"funds" gorm:"type:decimal(9,2);not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
	User      User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (Pocket) TableName() string {
	return "pockets"
}
