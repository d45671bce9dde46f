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

// PocketHandler 钱包处理器
type PocketHandler struct{}

// NewPocketHandler 创建钱包处理器
func NewPocketHandler() *PocketHandler {
	return &PocketHandler{}
}

// CreatePocketRequest 创建钱包请求
type CreatePocketRequest struct {
	Name  string  `json:"name" binding:"required,min=1,max=40" example:"现金"`
	Limit float64 `json:"limit" binding:"required,gte=0" example:"500.00"`
	Funds float64 `json:"funds" binding:"gte=0" example:"500.00"`
}

// UpdatePocketRequest 更新钱包请求
type UpdatePocketRequest struct {
	Name  string   `json:"name" binding:"omitempty,min=1,max=40"`
	Limit *float64 `json:"limit" binding:"omitempty,gte=0"`
	Funds *float64 `json:"funds" binding:"omitempty,gte=0"`
}

// Create 创建钱包
// @Summary 创建钱包
// @Description 创建一个属于当前用户的钱包。limit 仅做记录，系统不强制余额或支出不超过上限
// @Tags 钱包
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreatePocketRequest true "钱包信息"
// @Success 200 {object} Response{data=models.Pocket} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/pockets [post]
func (h *PocketHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreatePocketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		BadRequest(c, "名称不能为空")
		return
	}

	pocket := models.Pocket{
		UserID: userID,
		Name:   req.Name,
		Limit:  req.Limit,
		Funds:  req.Funds,
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&pocket).Error; err != nil {
			return err
		}
		return service.GrantDefaults(tx, userID, models.KindPocket, pocket.ID)
	})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "创建钱包失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", pocket)
}

// List 获取钱包列表
// @Summary 获取钱包列表
// @Description 获取当前用户的钱包列表，按名称升序排列，支持分页
// @Tags 钱包
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} Response{data=PageResponse{list=[]models.Pocket}} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/pockets [get]
func (h *PocketHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	page, pageSize := parsePagination(c)

	query := database.DB.Model(&models.Pocket{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	var pockets []models.Pocket
	offset := (page - 1) * pageSize
	if err := query.Order("name ASC").Offset(offset).Limit(pageSize).Find(&pockets).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, PageResponse{
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		List:     pockets,
	})
}

// Get 获取单个钱包
// @Summary 获取单个钱包
// @Description 根据ID获取钱包详情，他人的记录一律返回 404
// @Tags 钱包
// @Produce json
// @Security BearerAuth
// @Param id path int true "钱包ID"
// @Success 200 {object} Response{data=models.Pocket} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 403 {object} Response "权限已回收"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/pockets/{id} [get]
func (h *PocketHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var pocket models.Pocket
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&pocket).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}
	if !requireGrant(c, userID, models.KindPocket, pocket.ID, models.ActionView) {
		return
	}

	Success(c, pocket)
}

// Update 更新钱包
// @Summary 更新钱包
// @Description 更新指定的钱包（名称、上限、余额），需要持有该记录的 change 权限
// @Tags 钱包
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "钱包ID"
// @Param request body UpdatePocketRequest true "钱包信息"
// @Success 200 {object} Response{data=models.Pocket} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 403 {object} Response "权限已回收"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/pockets/{id} [put]
func (h *PocketHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var pocket models.Pocket
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&pocket).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}
	if !requireGrant(c, userID, models.KindPocket, pocket.ID, models.ActionChange) {
		return
	}

	var req UpdatePocketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = strings.TrimSpace(req.Name)
	}
	if req.Limit != nil {
		updates["limit"] = *req.Limit
	}
	if req.Funds != nil {
		updates["funds"] = *req.Funds
	}
	if len(updates) == 0 {
		Success(c, pocket)
		return
	}

	if err := database.DB.Model(&pocket).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}

	database.DB.First(&pocket, pocket.ID)
	SuccessWithMessage(c, "更新成功", pocket)
}

// Delete 删除钱包
// @Summary 删除钱包
// @Description 删除指定的钱包，引用该钱包的支出记录会被一并删除
// @Tags 钱包
// @Produce json
// @Security BearerAuth
// @Param id path int true "钱包ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 403 {object} Response "权限已回收"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/pockets/{id} [delete]
func (h *PocketHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var pocket models.Pocket
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&pocket).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}
	if !requireGrant(c, userID, models.KindPocket, pocket.ID, models.ActionDelete) {
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var expenseIDs []uint
		if err := tx.Model(&models.Expense{}).
			Where("pocket_id = ?", pocket.ID).
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
		if err := service.RevokeRecordGrants(tx, models.KindPocket, pocket.ID); err != nil {
			return err
		}
		return tx.Delete(&pocket).Error
	})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}
