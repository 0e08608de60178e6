package mailer

import (
	"fmt"
	"net/smtp"

	"go.uber.org/zap"

	"userdir/backend/config"
)

// Sender 通知发送接口
// 注册成功后异步调用，失败不影响注册事务
type Sender interface {
	Send(to, subject, body string) error
}

// SMTPSender 基于 net/smtp 的实现
type SMTPSender struct {
	cfg    *config.MailConfig
	logger *zap.Logger
}

// NewSMTPSender 创建 SMTP 发送器
func NewSMTPSender(cfg *config.MailConfig, logger *zap.Logger) *SMTPSender {
	return &SMTPSender{cfg: cfg, logger: logger}
}

// Send 发送一封纯文本邮件
// 未配置 SMTP 主机时静默跳过（开发环境）
func (s *SMTPSender) Send(to, subject, body string) error {
	if s.cfg.SMTPHost == "" {
		s.logger.Debug("未配置 SMTP，跳过邮件发送", zap.String("to", to))
		return nil
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s\r\n",
		s.cfg.From, to, subject, body,
	))

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)
	}

	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}

	s.logger.Info("邮件发送成功", zap.String("to", to), zap.String("subject", subject))
	return nil
}
