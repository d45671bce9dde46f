package models

import (
	"time"

	"gorm.io/gorm"
)

// IncomeSource 收入来源模型
type IncomeSource struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	UserID       uint           `json:"user_id" gorm:"index;not null"`
	Name         string         `json:"name" gorm:"size:40;not null"`
	TypeOfIncome string         `json:"type_of_income" gorm:"size:20;not null"`
	Permanent    bool           `json:"permanent" gorm:"not null;default:false"` // 是否固定收入
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
	User         User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (IncomeSource) TableName() string {
	return "income_sources"
}
