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

// PlaceHandler 消费地点处理器
type PlaceHandler struct{}

// NewPlaceHandler 创建消费地点处理器
func NewPlaceHandler() *PlaceHandler {
	return &PlaceHandler{}
}

// CreatePlaceRequest 创建地点请求
type CreatePlaceRequest struct {
	Name string `json:"name" binding:"required,min=1,max=40" example:"超市"`
}

// UpdatePlaceRequest 更新地点请求
type UpdatePlaceRequest struct {
	Name string `json:"name" binding:"omitempty,min=1,max=40" example:"超市"`
}

// Create 创建地点
// @Summary 创建消费地点
// @Description 创建一个属于当前用户的消费地点
// @Tags 消费地点
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreatePlaceRequest true "地点信息"
// @Success 200 {object} Response{data=models.Place} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/places [post]
func (h *PlaceHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreatePlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		BadRequest(c, "名称不能为空")
		return
	}

	place := models.Place{
		UserID: userID,
		Name:   req.Name,
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&place).Error; err != nil {
			return err
		}
		return service.GrantDefaults(tx, userID, models.KindPlace, place.ID)
	})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "创建地点失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", place)
}

// List 获取地点列表
// @Summary 获取消费地点列表
// @Description 获取当前用户的消费地点列表，按名称升序排列，支持分页
// @Tags 消费地点
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} Response{data=PageResponse{list=[]models.Place}} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/places [get]
func (h *PlaceHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	page, pageSize := parsePagination(c)

	query := database.DB.Model(&models.Place{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	var places []models.Place
	offset := (page - 1) * pageSize
	if err := query.Order("name ASC").Offset(offset).Limit(pageSize).Find(&places).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, PageResponse{
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		List:     places,
	})
}

// Get 获取单个地点
// @Summary 获取单个消费地点
// @Description 根据ID获取地点详情，他人的记录一律返回 404
// @Tags 消费地点
// @Produce json
// @Security BearerAuth
// @Param id path int true "地点ID"
// @Success 200 {object} Response{data=models.Place} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 403 {object} Response "权限已回收"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/places/{id} [get]
func (h *PlaceHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var place models.Place
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&place).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}
	if !requireGrant(c, userID, models.KindPlace, place.ID, models.ActionView) {
		return
	}

	Success(c, place)
}

// Update 更新地点
// @Summary 更新消费地点
// @Description 更新指定的消费地点，需要持有该记录的 change 权限
// @Tags 消费地点
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "地点ID"
// @Param request body UpdatePlaceRequest true "地点信息"
// @Success 200 {object} Response{data=models.Place} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 403 {object} Response "权限已回收"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/places/{id} [put]
func (h *PlaceHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var place models.Place
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&place).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}
	if !requireGrant(c, userID, models.KindPlace, place.ID, models.ActionChange) {
		return
	}

	var req UpdatePlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = strings.TrimSpace(req.Name)
	}
	if len(updates) == 0 {
		Success(c, place)
		return
	}

	if err := database.DB.Model(&place).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}

	database.DB.First(&place, place.ID)
	SuccessWithMessage(c, "更新成功", place)
}

// Delete 删除地点
// @Summary 删除消费地点
// @Description 删除指定的消费地点，引用该地点的支出记录会被一并删除
// @Tags 消费地点
// @Produce json
// @Security BearerAuth
// @Param id path int true "地点ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 403 {object} Response "权限已回收"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/places/{id} [delete]
func (h *PlaceHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var place models.Place
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&place).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}
	if !requireGrant(c, userID, models.KindPlace, place.ID, models.ActionDelete) {
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var expenseIDs []uint
		if err := tx.Model(&models.Expense{}).
			Where("place_id = ?", place.ID).
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
		if err := service.RevokeRecordGrants(tx, models.KindPlace, place.ID); err != nil {
			return err
		}
		return tx.Delete(&place).Error
	})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}
