package api

import (
	"strconv"
	"strings"
	"time"

	"pocketbook/database"
	"pocketbook/middleware"
	"pocketbook/models"
	"pocketbook/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// IncomeHandler 收入记录处理器
type IncomeHandler struct{}

// NewIncomeHandler 创建收入记录处理器
func NewIncomeHandler() *IncomeHandler {
	return &IncomeHandler{}
}

// CreateIncomeRequest 创建收入请求
type CreateIncomeRequest struct {
	Name       string  `json:"name" binding:"required,min=1,max=40" example:"一月工资"`
	SourceID   uint    `json:"source_id" binding:"required" example:"1"`
	Amount     float64 `json:"amount" binding:"required,gt=0" example:"5000.00"`
	IncomeDate string  `json:"income_date" example:"2024-01-15"` // 缺省为当天
}

// UpdateIncomeRequest 更新收入请求
type UpdateIncomeRequest struct {
	Name       string  `json:"name" binding:"omitempty,min=1,max=40"`
	SourceID   uint    `json:"source_id"`
	Amount     float64 `json:"amount" binding:"omitempty,gt=0"`
	IncomeDate string  `json:"income_date"`
}

// IncomeOptionsResponse 创建/编辑收入时可选的收入来源
type IncomeOptionsResponse struct {
	Sources []models.IncomeSource `json:"sources"`
}

// checkIncomeSource 校验收入来源归当前用户所有
func checkIncomeSource(c *gin.Context, userID, sourceID uint) bool {
	if sourceID == 0 {
		return true
	}
	var source models.IncomeSource
	if err := database.DB.Where("id = ? AND user_id = ?", sourceID, userID).First(&source).Error; err != nil {
		BadRequest(c, "无效的收入来源")
		return false
	}
	return true
}

// Create 创建收入记录
// @Summary 创建收入记录
// @Description 创建一条新的收入记录，收入来源必须属于当前用户
// @Tags 收入记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateIncomeRequest true "收入信息"
// @Success 200 {object} Response{data=models.Income} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/incomes [post]
func (h *IncomeHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateIncomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		BadRequest(c, "名称不能为空")
		return
	}

	incomeDate := time.Now()
	if req.IncomeDate != "" {
		var err error
		incomeDate, err = time.ParseInLocation("2006-01-02", req.IncomeDate, time.Local)
		if err != nil {
			BadRequest(c, "日期格式错误，应为: 2006-01-02")
			return
		}
	}

	if !checkIncomeSource(c, userID, req.SourceID) {
		return
	}

	income := models.Income{
		UserID:     userID,
		Name:       req.Name,
		SourceID:   req.SourceID,
		Amount:     req.Amount,
		IncomeDate: incomeDate,
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&income).Error; err != nil {
			return err
		}
		return service.GrantDefaults(tx, userID, models.KindIncome, income.ID)
	})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "创建收入失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", income)
}

// List 获取收入列表
// @Summary 获取收入列表
// @Description 获取当前用户的收入列表，按收入来源排序，支持分页与筛选
// @Tags 收入记录
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Param source_id query int false "收入来源筛选"
// @Param start_date query string false "开始日期 (2024-01-01)"
// @Param end_date query string false "结束日期 (2024-12-31)"
// @Success 200 {object} Response{data=PageResponse{list=[]models.Income}} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/incomes [get]
func (h *IncomeHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	page, pageSize := parsePagination(c)

	query := database.DB.Model(&models.Income{}).Where("user_id = ?", userID)

	if v := c.Query("source_id"); v != "" {
		if sourceID, err := strconv.ParseUint(v, 10, 32); err == nil {
			query = query.Where("source_id = ?", sourceID)
		}
	}
	if v := c.Query("start_date"); v != "" {
		if t, err := time.ParseInLocation("2006-01-02", v, time.Local); err == nil {
			query = query.Where("income_date >= ?", t)
		}
	}
	if v := c.Query("end_date"); v != "" {
		if t, err := time.ParseInLocation("2006-01-02", v, time.Local); err == nil {
			// 包含结束日期当天的全部记录
			query = query.Where("income_date < ?", t.AddDate(0, 0, 1))
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	var incomes []models.Income
	offset := (page - 1) * pageSize
	if err := query.Order("source_id ASC, income_date ASC").Offset(offset).Limit(pageSize).Find(&incomes).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, PageResponse{
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		List:     incomes,
	})
}

// Get 获取单条收入记录
// @Summary 获取单条收入记录
// @Description 根据ID获取收入详情，他人的记录一律返回 404
// @Tags 收入记录
// @Produce json
// @Security BearerAuth
// @Param id path int true "收入记录ID"
// @Success 200 {object} Response{data=models.Income} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 403 {object} Response "权限已回收"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/incomes/{id} [get]
func (h *IncomeHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var income models.Income
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&income).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}
	if !requireGrant(c, userID, models.KindIncome, income.ID, models.ActionView) {
		return
	}

	Success(c, income)
}

// Update 更新收入记录
// @Summary 更新收入记录
// @Description 更新指定的收入记录，收入来源会重新校验归属
// @Tags 收入记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "收入记录ID"
// @Param request body UpdateIncomeRequest true "收入信息"
// @Success 200 {object} Response{data=models.Income} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 403 {object} Response "权限已回收"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/incomes/{id} [put]
func (h *IncomeHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var income models.Income
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&income).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}
	if !requireGrant(c, userID, models.KindIncome, income.ID, models.ActionChange) {
		return
	}

	var req UpdateIncomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	if !checkIncomeSource(c, userID, req.SourceID) {
		return
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = strings.TrimSpace(req.Name)
	}
	if req.SourceID != 0 {
		updates["source_id"] = req.SourceID
	}
	if req.Amount > 0 {
		updates["amount"] = req.Amount
	}
	if req.IncomeDate != "" {
		t, err := time.ParseInLocation("2006-01-02", req.IncomeDate, time.Local)
		if err != nil {
			BadRequest(c, "日期格式错误，应为: 2006-01-02")
			return
		}
		updates["income_date"] = t
	}
	if len(updates) == 0 {
		Success(c, income)
		return
	}

	if err := database.DB.Model(&income).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}

	database.DB.First(&income, income.ID)
	SuccessWithMessage(c, "更新成功", income)
}

// Delete 删除收入记录
// @Summary 删除收入记录
// @Description 删除指定的收入记录并回收其授权
// @Tags 收入记录
// @Produce json
// @Security BearerAuth
// @Param id path int true "收入记录ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 403 {object} Response "权限已回收"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/incomes/{id} [delete]
func (h *IncomeHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var income models.Income
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&income).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}
	if !requireGrant(c, userID, models.KindIncome, income.ID, models.ActionDelete) {
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := service.RevokeRecordGrants(tx, models.KindIncome, income.ID); err != nil {
			return err
		}
		return tx.Delete(&income).Error
	})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}

// Options 获取创建收入时的可选项
// @Summary 获取收入表单可选项
// @Description 获取创建/编辑收入时可选的收入来源，限定为当前用户自己的记录
// @Tags 收入记录
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=IncomeOptionsResponse} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/incomes/options [get]
func (h *IncomeHandler) Options(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var resp IncomeOptionsResponse
	if err := database.DB.Where("user_id = ?", userID).Order("name ASC").Find(&resp.Sources).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, resp)
}
