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

// CategoryHandler 消费分类处理器
type CategoryHandler struct{}

// NewCategoryHandler 创建消费分类处理器
func NewCategoryHandler() *CategoryHandler {
	return &CategoryHandler{}
}

// CreateCategoryRequest 创建分类请求
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,min=1,max=40" example:"餐饮"`
}

// UpdateCategoryRequest 更新分类请求
type UpdateCategoryRequest struct {
	Name string `json:"name" binding:"omitempty,min=1,max=40" example:"餐饮"`
}

// Create 创建分类
// @Summary 创建消费分类
// @Description 创建一个属于当前用户的消费分类，创建者自动获得该记录的 view/change/delete 权限
// @Tags 消费分类
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateCategoryRequest true "分类信息"
// @Success 200 {object} Response{data=models.Category} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		BadRequest(c, "名称不能为空")
		return
	}

	category := models.Category{
		UserID: userID,
		Name:   req.Name,
	}

	// 创建与授权在同一事务内完成
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&category).Error; err != nil {
			return err
		}
		return service.GrantDefaults(tx, userID, models.KindCategory, category.ID)
	})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "创建分类失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", category)
}

// List 获取分类列表
// @Summary 获取消费分类列表
// @Description 获取当前用户的消费分类列表，按名称升序排列，支持分页
// @Tags 消费分类
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} Response{data=PageResponse{list=[]models.Category}} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	page, pageSize := parsePagination(c)

	query := database.DB.Model(&models.Category{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	var categories []models.Category
	offset := (page - 1) * pageSize
	if err := query.Order("name ASC").Offset(offset).Limit(pageSize).Find(&categories).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, PageResponse{
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		List:     categories,
	})
}

// Get 获取单个分类
// @Summary 获取单个消费分类
// @Description 根据ID获取分类详情，他人的记录一律返回 404
// @Tags 消费分类
// @Produce json
// @Security BearerAuth
// @Param id path int true "分类ID"
// @Success 200 {object} Response{data=models.Category} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 403 {object} Response "权限已回收"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/categories/{id} [get]
func (h *CategoryHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var category models.Category
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&category).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}
	if !requireGrant(c, userID, models.KindCategory, category.ID, models.ActionView) {
		return
	}

	Success(c, category)
}

// Update 更新分类
// @Summary 更新消费分类
// @Description 更新指定的消费分类，需要持有该记录的 change 权限
// @Tags 消费分类
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "分类ID"
// @Param request body UpdateCategoryRequest true "分类信息"
// @Success 200 {object} Response{data=models.Category} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 403 {object} Response "权限已回收"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/categories/{id} [put]
func (h *CategoryHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var category models.Category
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&category).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}
	if !requireGrant(c, userID, models.KindCategory, category.ID, models.ActionChange) {
		return
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = strings.TrimSpace(req.Name)
	}
	if len(updates) == 0 {
		Success(c, category)
		return
	}

	if err := database.DB.Model(&category).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}

	database.DB.First(&category, category.ID)
	SuccessWithMessage(c, "更新成功", category)
}

// Delete 删除分类
// @Summary 删除消费分类
// @Description 删除指定的消费分类，引用该分类的支出记录会被一并删除
// @Tags 消费分类
// @Produce json
// @Security BearerAuth
// @Param id path int true "分类ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 403 {object} Response "权限已回收"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var category models.Category
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&category).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}
	if !requireGrant(c, userID, models.KindCategory, category.ID, models.ActionDelete) {
		return
	}

	// 级联删除引用该分类的支出及其授权
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var expenseIDs []uint
		if err := tx.Model(&models.Expense{}).
			Where("category_id = ?", category.ID).
			Pluck("id", &expenseIDs).Error; err != nil {
			return err
		}
		if len(expenseIDs) > 0 {
			if err := tx.Where("id IN ?", expenseIDs).Delete(&models.Expense{}).Error; err != nil {
				return err
			}
			if err := service.RevokeRecordsGrants(tx, models.KindExpense, expenseIDs); err != nil {
				return err
			}
		}
		if err := service.RevokeRecordGrants(tx, models.KindCategory, category.ID); err != nil {
			return err
		}
		return tx.Delete(&category).Error
	})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}
