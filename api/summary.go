package api

import (
	"database/sql"

	"pocketbook/database"
	"pocketbook/middleware"
	"pocketbook/models"

	"github.com/gin-gonic/gin"
)

// SummaryHandler 统计处理器
type SummaryHandler struct{}

// NewSummaryHandler 创建统计处理器
func NewSummaryHandler() *SummaryHandler {
	return &SummaryHandler{}
}

// SummaryResponse 收支汇总返回
// 用户没有任何支出/收入记录时对应字段整体缺省，
// 「没有记录」和「总和恰好为 0」是两种不同的状态
type SummaryResponse struct {
	TotalExpense *float64 `json:"total_expense,omitempty" example:"123.45"`
	TotalIncome  *float64 `json:"total_income,omitempty" example:"5000.00"`
}

// CategoryBreakdownItem 单个分类的支出统计
type CategoryBreakdownItem struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Count    int64   `json:"count"`
}

// sumColumn 对当前用户某张表的金额列求和
// 无记录时 SUM 为 NULL，返回 nil 而不是 0
func sumColumn(model interface{}, column string, userID uint) (*float64, error) {
	var sum sql.NullFloat64
	err := database.DB.Model(model).
		Select("SUM("+column+")").
		Where("user_id = ?", userID).
		Scan(&sum).Error
	if err != nil {
		return nil, err
	}
	if !sum.Valid {
		return nil, nil
	}
	return &sum.Float64, nil
}

// GetSummary 获取收支汇总
// @Summary 获取收支汇总
// @Description 统计当前用户的支出总和与收入总和。没有任何记录的项不返回对应字段，由调用方区分「无记录」与「总和为 0」
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=SummaryResponse} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/statistics/summary [get]
func (h *SummaryHandler) GetSummary(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	totalExpense, err := sumColumn(&models.Expense{}, "price", userID)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "统计失败"))
		return
	}
	totalIncome, err := sumColumn(&models.Income{}, "amount", userID)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "统计失败"))
		return
	}

	Success(c, SummaryResponse{
		TotalExpense: totalExpense,
		TotalIncome:  totalIncome,
	})
}

// GetCategoryBreakdown 获取分类支出统计
// @Summary 获取分类支出统计
// @Description 按分类统计当前用户的支出总额与笔数。没有支出记录的分类不会出现在结果里，各分类总额之和等于支出总和
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]CategoryBreakdownItem} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/statistics/categories [get]
func (h *SummaryHandler) GetCategoryBreakdown(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	// INNER JOIN 天然排除没有支出的分类
	var items []CategoryBreakdownItem
	err := database.DB.Model(&models.Expense{}).
		Select("categories.name AS category, SUM(expenses.price) AS total, COUNT(*) AS count").
		Joins("JOIN categories ON categories.id = expenses.category_id AND categories.deleted_at IS NULL").
		Where("expenses.user_id = ?", userID).
		Group("categories.name").
		Order("total DESC").
		Scan(&items).Error
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "统计失败"))
		return
	}

	Success(c, items)
}
