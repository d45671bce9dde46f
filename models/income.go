package models

import (
	"time"

	"gorm.io/gorm"
)

// Income 收入记录模型
type Income struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	UserID     uint           `json:"user_id" gorm:"index;not null"`
	Name       string         `json:"name" gorm:"size:40;not null"`
	SourceID   uint           `json:"source_id" gorm:"index;not null"`
	Amount     float64        `json:"amount" gorm:"type:decimal(9,2);not null"`
	IncomeDate time.Time      `json:"income_date" gorm:"not null;index"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
	User       User           `json:"-" gorm:"foreignKey:UserID"`
	Source     IncomeSource   `json:"-" gorm:"foreignKey:SourceID"`
}

// TableName 设置表名
func (Income) TableName() string {
	return "incomes"
}
