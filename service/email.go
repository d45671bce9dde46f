package service

import (
	"fmt"

	"pocketbook/config"
	"pocketbook/models"

	"gopkg.in/gomail.v2"
)

// EmailService 邮件服务
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// SendPasswordResetEmail 发送密码重置邮件
func (s *EmailService) SendPasswordResetEmail(toEmail, username, resetLink string) error {
	if !s.cfg.Enabled {
		return fmt.Errorf("邮件服务未启用，请在配置中开启 email.enabled")
	}

	subject := "【口袋记账】密码重置"
	body := s.generateResetEmailBody(username, resetLink)

	return s.sendEmail(toEmail, subject, body)
}

// generateResetEmailBody 生成重置邮件内容
// 有效期文案取自令牌模型，避免邮件与实际过期时间不一致
func (s *EmailService) generateResetEmailBody(username, resetLink string) string {
	minutes := int(models.ResetTokenTTL.Minutes())
	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="zh-CN">
<head><meta charset="UTF-8"></head>
<body style="margin:0;background:#eef1f5;font-family:'PingFang SC','Microsoft YaHei',sans-serif;">
    <table role="presentation" width="100%%" cellpadding="0" cellspacing="0">
        <tr><td align="center" style="padding:32px 16px;">
            <table role="presentation" width="560" cellpadding="0" cellspacing="0"
                   style="background:#ffffff;border-radius:8px;border:1px solid #e2e6ea;">
                <tr><td style="padding:28px 36px;border-bottom:1px solid #eef1f5;">
                    <span style="font-size:20px;font-weight:700;color:#1f2937;">口袋记账</span>
                </td></tr>
                <tr><td style="padding:32px 36px;color:#374151;font-size:15px;line-height:1.8;">
                    <p style="margin:0 0 16px;">%s，您好：</p>
                    <p style="margin:0 0 24px;">您正在找回口袋记账的登录密码。点击下方按钮设置新密码，本次链接 <strong>%d 分钟</strong>内有效且只能使用一次。</p>
                    <p style="margin:0 0 24px;text-align:center;">
                        <a href="%s" style="display:inline-block;background:#16a34a;color:#ffffff;text-decoration:none;padding:12px 36px;border-radius:6px;font-weight:600;">设置新密码</a>
                    </p>
                    <p style="margin:0 0 8px;color:#6b7280;font-size:13px;">按钮无法打开时，请将以下地址复制到浏览器：</p>
                    <p style="margin:0 0 24px;word-break:break-all;color:#2563eb;font-size:13px;">%s</p>
                    <p style="margin:0;color:#9ca3af;font-size:13px;">不是您本人的操作？忽略这封邮件即可，您的密码不会被改动。</p>
                </td></tr>
                <tr><td style="padding:20px 36px;background:#f9fafb;border-radius:0 0 8px 8px;color:#9ca3af;font-size:12px;">
                    系统邮件，请勿直接回复
                </td></tr>
            </table>
        </td></tr>
    </table>
</body>
</html>
`, username, minutes, resetLink, resetLink)
}

// sendEmail 发送邮件
func (s *EmailService) sendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.Username, s.cfg.From))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}

	return nil
}

// SendTestEmail 发送测试邮件，用于验证 SMTP 配置
func (s *EmailService) SendTestEmail(toEmail string) error {
	if !s.cfg.Enabled {
		return fmt.Errorf("邮件服务未启用")
	}

	subject := "【口袋记账】邮件配置测试"
	body := `
<!DOCTYPE html>
<html lang="zh-CN">
<head><meta charset="UTF-8"></head>
<body style="font-family:'PingFang SC','Microsoft YaHei',sans-serif;padding:24px;color:#374151;">
    <p style="font-size:16px;font-weight:600;">邮件配置已生效</p>
    <p>收到这封邮件说明口袋记账的 SMTP 配置可以正常投递。</p>
</body>
</html>
`
	return s.sendEmail(toEmail, subject, body)
}
