package models

import (
	"time"
)

// 记录类型常量，作为授权表里的 kind 取值
const (
	KindCategory     = "category"
	KindPlace        = "place"
	KindIncomeSource = "income_source"
	KindPocket       = "pocket"
	KindReminder     = "reminder"
	KindExpense      = "expense"
	KindIncome       = "income"
)

// 操作权限常量
const (
	ActionView   = "view"
	ActionChange = "change"
	ActionDelete = "delete"
)

// Grant 记录级权限授权
// 一行代表「某用户对某条记录拥有某个操作权限」，创建记录时授予创建者
// view/change/delete 三项，记录删除时整体回收
type Grant struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_grant_unique"`
	Kind      string    `json:"kind" gorm:"size:20;not null;uniqueIndex:idx_grant_unique"`
	RecordID  uint      `json:"record_id" gorm:"not null;uniqueIndex:idx_grant_unique"`
	Action    string    `json:"action" gorm:"size:10;not null;uniqueIndex:idx_grant_unique"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName 设置表名
func (Grant) TableName() string {
	return "grants"
}

// GetActions 获取创建记录时授予的全部操作权限
func GetActions() []string {
	return []string{ActionView, ActionChange, ActionDelete}
}
