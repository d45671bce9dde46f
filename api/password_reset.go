package api

import (
	"fmt"
	"time"

	"pocketbook/config"
	"pocketbook/database"
	"pocketbook/models"
	"pocketbook/service"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// PasswordResetHandler 密码重置处理器
type PasswordResetHandler struct {
	cfg          *config.Config
	emailService *service.EmailService
}

// NewPasswordResetHandler 创建密码重置处理器
func NewPasswordResetHandler(cfg *config.Config) *PasswordResetHandler {
	return &PasswordResetHandler{
		cfg:          cfg,
		emailService: service.NewEmailService(&cfg.Email),
	}
}

// RequestResetRequest 请求重置密码
type RequestResetRequest struct {
	Email string `json:"email" binding:"required,email" example:"user@example.com"`
}

// ResetPasswordRequest 重置密码请求
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// RequestPasswordReset 请求密码重置
// @Summary 请求密码重置
// @Description 通过邮箱请求密码重置，系统会发送包含重置链接的邮件。为防止枚举，无论邮箱是否注册均返回成功
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body RequestResetRequest true "邮箱地址"
// @Success 200 {object} Response "请求成功"
// @Failure 400 {object} Response "参数错误"
// @Failure 500 {object} Response "邮件发送失败"
// @Router /api/v1/auth/password/request-reset [post]
func (h *PasswordResetHandler) RequestPasswordReset(c *gin.Context) {
	var req RequestResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请输入有效的邮箱地址")
		return
	}

	var user models.User
	if err := database.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		// 防枚举：用户不存在也返回成功
		SuccessWithMessage(c, "如果该邮箱已注册，您将收到密码重置邮件", nil)
		return
	}

	// 已有未使用的有效令牌时不重复发送
	var existing models.PasswordReset
	if err := database.DB.Where("user_id = ? AND used = ? AND expires_at > ?",
		user.ID, false, time.Now()).First(&existing).Error; err == nil {
		SuccessWithMessage(c, "重置邮件已发送，请检查您的邮箱", nil)
		return
	}

	reset, err := models.NewPasswordReset(user.ID)
	if err != nil {
		InternalError(c, "生成重置令牌失败")
		return
	}
	if err := database.DB.Create(reset).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建重置令牌失败"))
		return
	}

	resetLink := fmt.Sprintf("%s/reset-password?token=%s", h.cfg.Server.BaseURL, reset.Token)
	if err := h.emailService.SendPasswordResetEmail(user.Email, user.Username, resetLink); err != nil {
		// 邮件发送失败时令牌作废，避免留下无法投递的有效令牌
		database.DB.Delete(reset)
		InternalError(c, SafeErrorMessage(err, "邮件发送失败，请稍后重试"))
		return
	}

	SuccessWithMessage(c, "如果该邮箱已注册，您将收到密码重置邮件", nil)
}

// VerifyResetToken 校验重置令牌
// @Summary 校验重置令牌
// @Description 校验密码重置令牌是否有效，供重置页面加载时调用
// @Tags 认证
// @Produce json
// @Param token query string true "重置令牌"
// @Success 200 {object} Response "令牌有效"
// @Failure 400 {object} Response "令牌无效或已过期"
// @Router /api/v1/auth/password/verify-token [get]
func (h *PasswordResetHandler) VerifyResetToken(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		BadRequest(c, "缺少重置令牌")
		return
	}

	var reset models.PasswordReset
	if err := database.DB.Where("token = ?", token).First(&reset).Error; err != nil {
		BadRequest(c, "重置令牌无效")
		return
	}
	if !reset.IsValid() {
		BadRequest(c, "重置令牌已过期或已使用")
		return
	}

	SuccessWithMessage(c, "令牌有效", nil)
}

// ResetPassword 重置密码
// @Summary 重置密码
// @Description 使用重置令牌设置新密码，成功后该用户所有未使用的令牌均失效
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body ResetPasswordRequest true "重置信息"
// @Success 200 {object} Response "重置成功"
// @Failure 400 {object} Response "令牌无效或参数错误"
// @Failure 500 {object} Response "服务器错误"
// @Router /api/v1/auth/password/reset [post]
func (h *PasswordResetHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误，密码至少6位")
		return
	}

	var reset models.PasswordReset
	if err := database.DB.Where("token = ?", req.Token).First(&reset).Error; err != nil {
		BadRequest(c, "重置令牌无效")
		return
	}
	if !reset.IsValid() {
		BadRequest(c, "重置令牌已过期或已使用")
		return
	}

	var user models.User
	if err := database.DB.First(&user, reset.UserID).Error; err != nil {
		BadRequest(c, "用户不存在")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		InternalError(c, "密码加密失败")
		return
	}

	if err := database.DB.Model(&user).Update("password", string(hashed)).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "密码更新失败"))
		return
	}

	// 令牌一次性使用，同时作废该用户其余未使用的令牌
	database.DB.Model(&reset).Update("used", true)
	database.DB.Model(&models.PasswordReset{}).
		Where("user_id = ? AND used = ?", user.ID, false).
		Update("used", true)

	SuccessWithMessage(c, "密码重置成功，请使用新密码登录", nil)
}
