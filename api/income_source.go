package api

import (
	"strconv"
	"strings"

	"pocketbook/database"
	"pocketbook/middleware"
	"pocketbook/models"
	"pocketbook/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// IncomeSourceHandler 收入来源处理器
type IncomeSourceHandler struct{}

// NewIncomeSourceHandler 创建收入来源处理器
func NewIncomeSourceHandler() *IncomeSourceHandler {
	return &IncomeSourceHandler{}
}

// CreateIncomeSourceRequest 创建收入来源请求
type CreateIncomeSourceRequest struct {
	Name         string `json:"name" binding:"required,min=1,max=40" example:"公司A"`
	TypeOfIncome string `json:"type_of_income" binding:"required,min=1,max=20" example:"工资"`
	Permanent    bool   `json:"permanent" example:"true"`
}

// UpdateIncomeSourceRequest 更新收入来源请求
type UpdateIncomeSourceRequest struct {
	Name         string `json:"name" binding:"omitempty,min=1,max=40"`
	TypeOfIncome string `json:"type_of_income" binding:"omitempty,min=1,max=20"`
	Permanent    *bool  `json:"permanent"`
}

// Create 创建收入来源
// @Summary 创建收入来源
// @Description 创建一个属于当前用户的收入来源
// @Tags 收入来源
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateIncomeSourceRequest true "收入来源信息"
// @Success 200 {object} Response{data=models.IncomeSource} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/income-sources [post]
func (h *IncomeSourceHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateIncomeSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		BadRequest(c, "名称不能为空")
		return
	}

	source := models.IncomeSource{
		UserID:       userID,
		Name:         req.Name,
		TypeOfIncome: req.TypeOfIncome,
		Permanent:    req.Permanent,
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&source).Error; err != nil {
			return err
		}
		return service.GrantDefaults(tx, userID, models.KindIncomeSource, source.ID)
	})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "创建收入来源失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", source)
}

// List 获取收入来源列表
// @Summary 获取收入来源列表
// @Description 获取当前用户的收入来源列表，按名称升序排列，支持分页
// @Tags 收入来源
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} Response{data=PageResponse{list=[]models.IncomeSource}} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/income-sources [get]
func (h *IncomeSourceHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	page, pageSize := parsePagination(c)

	query := database.DB.Model(&models.IncomeSource{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	var sources []models.IncomeSource
	offset := (page - 1) * pageSize
	if err := query.Order("name ASC").Offset(offset).Limit(pageSize).Find(&sources).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, PageResponse{
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		List:     sources,
	})
}

// Get 获取单个收入来源
// @Summary 获取单个收入来源
// @Description 根据ID获取收入来源详情，他人的记录一律返回 404
// @Tags 收入来源
// @Produce json
// @Security BearerAuth
// @Param id path int true "收入来源ID"
// @Success 200 {object} Response{data=models.IncomeSource} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 403 {object} Response "权限已回收"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/income-sources/{id} [get]
func (h *IncomeSourceHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var source models.IncomeSource
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&source).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}
	if !requireGrant(c, userID, models.KindIncomeSource, source.ID, models.ActionView) {
		return
	}

	Success(c, source)
}

// Update 更新收入来源
// @Summary 更新收入来源
// @Description 更新指定的收入来源，需要持有该记录的 change 权限
// @Tags 收入来源
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "收入来源ID"
// @Param request body UpdateIncomeSourceRequest true "收入来源信息"
// @Success 200 {object} Response{data=models.IncomeSource} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 403 {object} Response "权限已回收"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/income-sources/{id} [put]
func (h *IncomeSourceHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var source models.IncomeSource
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&source).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}
	if !requireGrant(c, userID, models.KindIncomeSource, source.ID, models.ActionChange) {
		return
	}

	var req UpdateIncomeSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = strings.TrimSpace(req.Name)
	}
	if req.TypeOfIncome != "" {
		updates["type_of_income"] = req.TypeOfIncome
	}
	if req.Permanent != nil {
		updates["permanent"] = *req.Permanent
	}
	if len(updates) == 0 {
		Success(c, source)
		return
	}

	if err := database.DB.Model(&source).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}

	database.DB.First(&source, source.ID)
	SuccessWithMessage(c, "更新成功", source)
}

// Delete 删除收入来源
// @Summary 删除收入来源
// @Description 删除指定的收入来源，引用该来源的收入记录会被一并删除
// @Tags 收入来源
// @Produce json
// @Security BearerAuth
// @Param id path int true "收入来源ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 403 {object} Response "权限已回收"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/income-sources/{id} [delete]
func (h *IncomeSourceHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var source models.IncomeSource
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&source).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}
	if !requireGrant(c, userID, models.KindIncomeSource, source.ID, models.ActionDelete) {
		return
	}

	// 级联删除引用该来源的收入及其授权
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var incomeIDs []uint
		if err := tx.Model(&models.Income{}).
			Where("source_id = ?", source.ID).
			Pluck("id", &incomeIDs).Error; err != nil {
			return err
		}
		if len(incomeIDs) > 0 {
			if err := tx.Where("id IN ?", incomeIDs).Delete(&models.Income{}).Error; err != nil {
				return err
			}
			if err := service.RevokeRecordsGrants(tx, models.KindIncome, incomeIDs); err != nil {
				return err
			}
		}
		if err := service.RevokeRecordGrants(tx, models.KindIncomeSource, source.ID); err != nil {
			return err
		}
		return tx.Delete(&source).Error
	})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}
