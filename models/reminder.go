package models

import (
	"time"

	"gorm.io/gorm"
)

// Importance 提醒重要程度常量
const (
	ImportanceHigh   = "high"
	ImportanceMedium = "medium"
	ImportanceLow    = "low"
)

// GetImportanceLevels 获取所有重要程度
func GetImportanceLevels() []string {
	return []string{ImportanceHigh, ImportanceMedium, ImportanceLow}
}

// Reminder 提醒模型
// 仅作为记录存在，系统不负责到期推送
type Reminder struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	UserID     uint           `json:"user_id" gorm:"index;not null"`
	Name       string         `json:"name" gorm:"size:30;not null"`
	RemindDate time.Time      `json:"remind_date" gorm:"not null"`
	AsBefore   time.Time      `json:"as_before" gorm:"not null"` // 提前提醒日期
	Message    string         `json:"message" gorm:"size:100"`
	Importance string         `json:"importance" gorm:"size:10;not null"` // high/medium/low
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
	User       User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (Reminder) TableName() string {
	return "reminders"
}
