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

// ExpenseHandler 支出记录处理器
type ExpenseHandler struct{}

// NewExpenseHandler 创建支出记录处理器
func NewExpenseHandler() *ExpenseHandler {
	return &ExpenseHandler{}
}

// CreateExpenseRequest 创建支出记录请求
type CreateExpenseRequest struct {
	Name       string  `json:"name" binding:"required,min=1,max=40" example:"午餐"`
	ExpDate    string  `json:"exp_date" example:"2024-01-15"` // 缺省为当天
	CategoryID uint    `json:"category_id" binding:"required" example:"1"`
	Price      float64 `json:"price" binding:"required,gt=0" example:"12.50"`
	PocketID   uint    `json:"pocket_id" binding:"required" example:"1"`
	PlaceID    uint    `json:"place_id" binding:"required" example:"1"`
	ReminderID *uint   `json:"reminder_id" example:"1"`
}

// UpdateExpenseRequest 更新支出记录请求
type UpdateExpenseRequest struct {
	Name       string  `json:"name" binding:"omitempty,min=1,max=40"`
	ExpDate    string  `json:"exp_date"`
	CategoryID uint    `json:"category_id"`
	Price      float64 `json:"price" binding:"omitempty,gt=0"`
	PocketID   uint    `json:"pocket_id"`
	PlaceID    uint    `json:"place_id"`
	ReminderID *uint   `json:"reminder_id"`
}

// ExpenseOptionsResponse 创建/编辑支出时可选的引用记录
// 仅包含当前用户自己的分类、钱包、地点与提醒
type ExpenseOptionsResponse struct {
	Categories []models.Category `json:"categories"`
	Pockets    []models.Pocket   `json:"pockets"`
	Places     []models.Place    `json:"places"`
	Reminders  []models.Reminder `json:"reminders"`
}

// checkExpenseRefs 校验引用的分类/钱包/地点/提醒均归当前用户所有
// 下拉框只展示本人数据只是表单层约定，这里在写入前再做一次强校验
func checkExpenseRefs(c *gin.Context, userID uint, categoryID, pocketID, placeID uint, reminderID *uint) bool {
	if categoryID != 0 {
		var cat models.Category
		if err := database.DB.Where("id = ? AND user_id = ?", categoryID, userID).First(&cat).Error; err != nil {
			BadRequest(c, "无效的分类")
			return false
		}
	}
	if pocketID != 0 {
		var pocket models.Pocket
		if err := database.DB.Where("id = ? AND user_id = ?", pocketID, userID).First(&pocket).Error; err != nil {
			BadRequest(c, "无效的钱包")
			return false
		}
	}
	if placeID != 0 {
		var place models.Place
		if err := database.DB.Where("id = ? AND user_id = ?", placeID, userID).First(&place).Error; err != nil {
			BadRequest(c, "无效的地点")
			return false
		}
	}
	if reminderID != nil && *reminderID != 0 {
		var reminder models.Reminder
		if err := database.DB.Where("id = ? AND user_id = ?", *reminderID, userID).First(&reminder).Error; err != nil {
			BadRequest(c, "无效的提醒")
			return false
		}
	}
	return true
}

// Create 创建支出记录
// @Summary 创建支出记录
// @Description 创建一条新的支出记录。分类、钱包、地点必填且必须属于当前用户，提醒可选
// @Tags 支出记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateExpenseRequest true "支出记录信息"
// @Success 200 {object} Response{data=models.Expense} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/expenses [post]
func (h *ExpenseHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		BadRequest(c, "名称不能为空")
		return
	}

	// 解析日期，缺省为当天
	expDate := time.Now()
	if req.ExpDate != "" {
		var err error
		expDate, err = time.ParseInLocation("2006-01-02", req.ExpDate, time.Local)
		if err != nil {
			BadRequest(c, "日期格式错误，应为: 2006-01-02")
			return
		}
	}

	if !checkExpenseRefs(c, userID, req.CategoryID, req.PocketID, req.PlaceID, req.ReminderID) {
		return
	}

	expense := models.Expense{
		UserID:     userID,
		Name:       req.Name,
		ExpDate:    expDate,
		CategoryID: req.CategoryID,
		Price:      req.Price,
		PocketID:   req.PocketID,
		PlaceID:    req.PlaceID,
		ReminderID: req.ReminderID,
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&expense).Error; err != nil {
			return err
		}
		return service.GrantDefaults(tx, userID, models.KindExpense, expense.ID)
	})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "创建支出记录失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", expense)
}

// List 获取支出记录列表
// @Summary 获取支出记录列表
// @Description 获取当前用户的支出记录列表，按消费日期升序排列，支持分页与筛选
// @Tags 支出记录
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Param category_id query int false "分类筛选"
// @Param start_date query string false "开始日期 (2024-01-01)"
// @Param end_date query string false "结束日期 (2024-12-31)"
// @Success 200 {object} Response{data=PageResponse{list=[]models.Expense}} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/expenses [get]
func (h *ExpenseHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	page, pageSize := parsePagination(c)

	query := database.DB.Model(&models.Expense{}).Where("user_id = ?", userID)

	// 分类筛选
	if v := c.Query("category_id"); v != "" {
		if categoryID, err := strconv.ParseUint(v, 10, 32); err == nil {
			query = query.Where("category_id = ?", categoryID)
		}
	}

	// 日期范围筛选
	if v := c.Query("start_date"); v != "" {
		if t, err := time.ParseInLocation("2006-01-02", v, time.Local); err == nil {
			query = query.Where("exp_date >= ?", t)
		}
	}
	if v := c.Query("end_date"); v != "" {
		if t, err := time.ParseInLocation("2006-01-02", v, time.Local); err == nil {
			// 包含结束日期当天的全部记录
			query = query.Where("exp_date < ?", t.AddDate(0, 0, 1))
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	var expenses []models.Expense
	offset := (page - 1) * pageSize
	if err := query.Order("exp_date ASC").Offset(offset).Limit(pageSize).Find(&expenses).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, PageResponse{
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		List:     expenses,
	})
}

// Get 获取单条支出记录
// @Summary 获取单条支出记录
// @Description 根据ID获取支出记录详情，他人的记录一律返回 404
// @Tags 支出记录
// @Produce json
// @Security BearerAuth
// @Param id path int true "支出记录ID"
// @Success 200 {object} Response{data=models.Expense} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 403 {object} Response "权限已回收"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/expenses/{id} [get]
func (h *ExpenseHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var expense models.Expense
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&expense).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}
	if !requireGrant(c, userID, models.KindExpense, expense.ID, models.ActionView) {
		return
	}

	Success(c, expense)
}

// Update 更新支出记录
// @Summary 更新支出记录
// @Description 更新指定的支出记录，引用字段会重新校验归属
// @Tags 支出记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "支出记录ID"
// @Param request body UpdateExpenseRequest true "支出记录信息"
// @Success 200 {object} Response{data=models.Expense} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 403 {object} Response "权限已回收"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/expenses/{id} [put]
func (h *ExpenseHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var expense models.Expense
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&expense).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}
	if !requireGrant(c, userID, models.KindExpense, expense.ID, models.ActionChange) {
		return
	}

	var req UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	if !checkExpenseRefs(c, userID, req.CategoryID, req.PocketID, req.PlaceID, req.ReminderID) {
		return
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = strings.TrimSpace(req.Name)
	}
	if req.ExpDate != "" {
		expDate, err := time.ParseInLocation("2006-01-02", req.ExpDate, time.Local)
		if err != nil {
			BadRequest(c, "日期格式错误，应为: 2006-01-02")
			return
		}
		updates["exp_date"] = expDate
	}
	if req.CategoryID != 0 {
		updates["category_id"] = req.CategoryID
	}
	if req.Price > 0 {
		updates["price"] = req.Price
	}
	if req.PocketID != 0 {
		updates["pocket_id"] = req.PocketID
	}
	if req.PlaceID != 0 {
		updates["place_id"] = req.PlaceID
	}
	if req.ReminderID != nil {
		if *req.ReminderID == 0 {
			updates["reminder_id"] = nil
		} else {
			updates["reminder_id"] = *req.ReminderID
		}
	}
	if len(updates) == 0 {
		Success(c, expense)
		return
	}

	if err := database.DB.Model(&expense).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}

	database.DB.First(&expense, expense.ID)
	SuccessWithMessage(c, "更新成功", expense)
}

// Delete 删除支出记录
// @Summary 删除支出记录
// @Description 删除指定的支出记录并回收其授权
// @Tags 支出记录
// @Produce json
// @Security BearerAuth
// @Param id path int true "支出记录ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 403 {object} Response "权限已回收"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/expenses/{id} [delete]
func (h *ExpenseHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var expense models.Expense
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&expense).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}
	if !requireGrant(c, userID, models.KindExpense, expense.ID, models.ActionDelete) {
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := service.RevokeRecordGrants(tx, models.KindExpense, expense.ID); err != nil {
			return err
		}
		return tx.Delete(&expense).Error
	})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}

// Options 获取创建支出时的可选项
// @Summary 获取支出表单可选项
// @Description 获取创建/编辑支出时可选的分类、钱包、地点、提醒，均限定为当前用户自己的记录
// @Tags 支出记录
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=ExpenseOptionsResponse} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/expenses/options [get]
func (h *ExpenseHandler) Options(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var resp ExpenseOptionsResponse
	if err := database.DB.Where("user_id = ?", userID).Order("name ASC").Find(&resp.Categories).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	if err := database.DB.Where("user_id = ?", userID).Order("name ASC").Find(&resp.Pockets).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	if err := database.DB.Where("user_id = ?", userID).Order("name ASC").Find(&resp.Places).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	if err := database.DB.Where("user_id = ?", userID).Order("remind_date DESC").Find(&resp.Reminders).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, resp)
}
