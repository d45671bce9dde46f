package models

import (
	"time"

	"gorm.io/gorm"
)

// Expense 支出记录模型
// Category/Pocket/Place 必填且必须属于同一用户，Reminder 可空
type Expense struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	UserID     uint           `json:"user_id" gorm:"index;not null"`
	Name       string         `json:"name" gorm:"size:40;not null"`
	ExpDate    time.Time      `json:"exp_date" gorm:"not null;index"`
	CategoryID uint           `json:"category_id" gorm:"index;not null"`
	Price      float64        `json:"price" gorm:"type:decimal(9,2);not null"`
	PocketID   uint           `json:"pocket_id" gorm:"index;not null"`
	PlaceID    uint           `json:"place_id" gorm:"index;not null"`
	ReminderID *uint          `json:"reminder_id" gorm:"index"` // 删除提醒时置空，不级联删除支出
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
	User       User           `json:"-" gorm:"foreignKey:UserID"`
	Category   Category       `json:"-" gorm:"foreignKey:CategoryID"`
	Pocket     Pocket         `json:"-" gorm:"foreignKey:PocketID"`
	Place      Place          `json:"-" gorm:"foreignKey:PlaceID"`
}

// TableName 设置表名
func (Expense) TableName() string {
	return "expenses"
}
