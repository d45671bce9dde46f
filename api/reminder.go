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

// ReminderHandler 提醒处理器
type ReminderHandler struct{}

// NewReminderHandler 创建提醒处理器
func NewReminderHandler() *ReminderHandler {
	return &ReminderHandler{}
}

// CreateReminderRequest 创建提醒请求
type CreateReminderRequest struct {
	Name       string `json:"name" binding:"required,min=1,max=30" example:"交房租"`
	RemindDate string `json:"remind_date" binding:"required" example:"2024-02-01"`
	AsBefore   string `json:"as_before" binding:"required" example:"2024-01-28"`
	Message    string `json:"message" binding:"omitempty,max=100" example:"别忘了转账"`
	Importance string `json:"importance" binding:"required,oneof=high medium low" example:"high"`
}

// UpdateReminderRequest 更新提醒请求
type UpdateReminderRequest struct {
	Name       string  `json:"name" binding:"omitempty,min=1,max=30"`
	RemindDate string  `json:"remind_date"`
	AsBefore   string  `json:"as_before"`
	Message    *string `json:"message" binding:"omitempty,max=100"`
	Importance string  `json:"importance" binding:"omitempty,oneof=high medium low"`
}

// Create 创建提醒
// @Summary 创建提醒
// @Description 创建一条属于当前用户的提醒记录。提醒仅做记录，系统不负责到期推送。不校验 as_before 与 remind_date 的先后关系
// @Tags 提醒
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateReminderRequest true "提醒信息"
// @Success 200 {object} Response{data=models.Reminder} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/reminders [post]
func (h *ReminderHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		BadRequest(c, "名称不能为空")
		return
	}

	remindDate, err := time.ParseInLocation("2006-01-02", req.RemindDate, time.Local)
	if err != nil {
		BadRequest(c, "remind_date 格式错误，应为: 2006-01-02")
		return
	}
	asBefore, err := time.ParseInLocation("2006-01-02", req.AsBefore, time.Local)
	if err != nil {
		BadRequest(c, "as_before 格式错误，应为: 2006-01-02")
		return
	}

	reminder := models.Reminder{
		UserID:     userID,
		Name:       req.Name,
		RemindDate: remindDate,
		AsBefore:   asBefore,
		Message:    req.Message,
		Importance: req.Importance,
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&reminder).Error; err != nil {
			return err
		}
		return service.GrantDefaults(tx, userID, models.KindReminder, reminder.ID)
	})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "创建提醒失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", reminder)
}

// List 获取提醒列表
// @Summary 获取提醒列表
// @Description 获取当前用户的提醒列表，按提醒日期倒序排列，支持分页
// @Tags 提醒
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} Response{data=PageResponse{list=[]models.Reminder}} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/reminders [get]
func (h *ReminderHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	page, pageSize := parsePagination(c)

	query := database.DB.Model(&models.Reminder{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	var reminders []models.Reminder
	offset := (page - 1) * pageSize
	if err := query.Order("remind_date DESC").Offset(offset).Limit(pageSize).Find(&reminders).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, PageResponse{
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		List:     reminders,
	})
}

// Get 获取单条提醒
// @Summary 获取单条提醒
// @Description 根据ID获取提醒详情，他人的记录一律返回 404
// @Tags 提醒
// @Produce json
// @Security BearerAuth
// @Param id path int true "提醒ID"
// @Success 200 {object} Response{data=models.Reminder} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 403 {object} Response "权限已回收"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/reminders/{id} [get]
func (h *ReminderHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var reminder models.Reminder
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&reminder).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}
	if !requireGrant(c, userID, models.KindReminder, reminder.ID, models.ActionView) {
		return
	}

	Success(c, reminder)
}

// Update 更新提醒
// @Summary 更新提醒
// @Description 更新指定的提醒，需要持有该记录的 change 权限
// @Tags 提醒
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "提醒ID"
// @Param request body UpdateReminderRequest true "提醒信息"
// @Success 200 {object} Response{data=models.Reminder} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 403 {object} Response "权限已回收"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/reminders/{id} [put]
func (h *ReminderHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var reminder models.Reminder
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&reminder).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}
	if !requireGrant(c, userID, models.KindReminder, reminder.ID, models.ActionChange) {
		return
	}

	var req UpdateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = strings.TrimSpace(req.Name)
	}
	if req.RemindDate != "" {
		remindDate, err := time.ParseInLocation("2006-01-02", req.RemindDate, time.Local)
		if err != nil {
			BadRequest(c, "remind_date 格式错误，应为: 2006-01-02")
			return
		}
		updates["remind_date"] = remindDate
	}
	if req.AsBefore != "" {
		asBefore, err := time.ParseInLocation("2006-01-02", req.AsBefore, time.Local)
		if err != nil {
			BadRequest(c, "as_before 格式错误，应为: 2006-01-02")
			return
		}
		updates["as_before"] = asBefore
	}
	if req.Message != nil {
		updates["message"] = *req.Message
	}
	if req.Importance != "" {
		updates["importance"] = req.Importance
	}
	if len(updates) == 0 {
		Success(c, reminder)
		return
	}

	if err := database.DB.Model(&reminder).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}

	database.DB.First(&reminder, reminder.ID)
	SuccessWithMessage(c, "更新成功", reminder)
}

// Delete 删除提醒
// @Summary 删除提醒
// @Description 删除指定的提醒。引用该提醒的支出记录不会被删除，其提醒引用会被置空
// @Tags 提醒
// @Produce json
// @Security BearerAuth
// @Param id path int true "提醒ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 403 {object} Response "权限已回收"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/reminders/{id} [delete]
func (h *ReminderHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var reminder models.Reminder
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&reminder).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}
	if !requireGrant(c, userID, models.KindReminder, reminder.ID, models.ActionDelete) {
		return
	}

	// 支出保留，仅置空提醒引用
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Expense{}).
			Where("reminder_id = ?", reminder.ID).
			Update("reminder_id", nil).Error; err != nil {
			return err
		}
		if err := service.RevokeRecordGrants(tx, models.KindReminder, reminder.ID); err != nil {
			return err
		}
		return tx.Delete(&reminder).Error
	})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}
