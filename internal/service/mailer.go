package service

import (
	"github.com/user/movieplatform/internal/config"
	"gopkg.in/gomail.v2"
)

// MailSender 邮件发送接口，便于任务测试时替换
type MailSender interface {
	Send(subject, body string, to []string) error
}

// Mailer SMTP 邮件发送器
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewMailer 创建邮件发送器
func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:   cfg.MailFrom,
	}
}

// Send 发送纯文本邮件
func (m *Mailer) Send(subject, body string, to []string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	return m.dialer.DialAndSend(msg)
}
