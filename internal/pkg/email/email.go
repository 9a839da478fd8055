package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/qs3c/comment_go_server/config"
)

type Service struct {
	cfg *config.EmailConfig
}

func NewService(cfg *config.EmailConfig) *Service {
	return &Service{cfg: cfg}
}

// SendConfirmationRequest 发送匿名评论确认邮件
func (s *Service) SendConfirmationRequest(to, confirmURL string) error {
	subject := "请确认您的评论 - 评论服务"
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #2563eb;">确认您的评论</h2>
        <p>您好，</p>
        <p>我们收到了一条使用此邮箱提交的评论。点击下方按钮确认后评论才会发布：</p>
        <div style="text-align: center; margin: 30px 0;">
            <a href="%s" style="background-color: #2563eb; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px; display: inline-block;">确认评论</a>
        </div>
        <p>或者复制以下链接到浏览器：</p>
        <p style="background-color: #f3f4f6; padding: 10px; word-break: break-all;">%s</p>
        <p>如果这条评论不是您提交的，请忽略此邮件，评论不会被发布。</p>
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">此邮件由系统自动发送，请勿回复。</p>
    </div>
</body>
</html>
`, confirmURL, confirmURL)

	return s.sendHTML(to, subject, body)
}

// SendFollowupNotification 发送后续评论提醒邮件
func (s *Service) SendFollowupNotification(to, targetTitle, targetURL, excerpt string) error {
	subject := fmt.Sprintf("「%s」有新评论 - 评论服务", targetTitle)
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #2563eb;">有新评论</h2>
        <p>您好，</p>
        <p>您关注的「%s」下发布了新评论：</p>
        <blockquote style="background-color: #f3f4f6; padding: 15px; margin: 20px 0; border-left: 4px solid #2563eb;">%s</blockquote>
        <div style="text-align: center; margin: 30px 0;">
            <a href="%s" style="background-color: #2563eb; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px; display: inline-block;">查看讨论</a>
        </div>
        <p>您收到此邮件是因为发表评论时勾选了「有后续评论时通知我」。</p>
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">此邮件由系统自动发送，请勿回复。</p>
    </div>
</body>
</html>
`, targetTitle, excerpt, targetURL)

	return s.sendHTML(to, subject, body)
}

// SendVerificationCode 发送注册邮箱验证码
func (s *Service) SendVerificationCode(to, code string) error {
	subject := "验证码 - 评论服务"
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #2563eb;">邮箱验证</h2>
        <p>您好，</p>
        <p>您正在注册评论服务账号，验证码为：</p>
        <div style="background-color: #f3f4f6; padding: 15px; text-align: center; font-size: 24px; font-weight: bold; letter-spacing: 5px; margin: 20px 0;">
            %s
        </div>
        <p>验证码有效期为 10 分钟，请尽快完成验证。</p>
        <p>如果您没有进行此操作，请忽略此邮件。</p>
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">此邮件由系统自动发送，请勿回复。</p>
    </div>
</body>
</html>
`, code)

	return s.sendHTML(to, subject, body)
}

// DigestItem 待审核摘要中的一条评论
type DigestItem struct {
	CommentID   int64
	TargetTitle string
	UserName    string
	Excerpt     string
}

// SendModerationDigest 发送待审核评论摘要给版主
func (s *Service) SendModerationDigest(to string, items []DigestItem) error {
	subject := fmt.Sprintf("%d 条评论等待审核 - 评论服务", len(items))

	var rows strings.Builder
	for _, item := range items {
		rows.WriteString(fmt.Sprintf(`
        <li style="margin-bottom: 10px;">
            <strong>#%d</strong> %s 在「%s」：
            <div style="background-color: #f3f4f6; padding: 8px; margin-top: 4px;">%s</div>
        </li>`, item.CommentID, item.UserName, item.TargetTitle, item.Excerpt))
	}

	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #2563eb;">待审核评论摘要</h2>
        <p>您好，</p>
        <p>以下评论正在等待审核：</p>
        <ul style="list-style: none; padding: 0;">%s</ul>
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">此邮件由系统自动发送，请勿回复。</p>
    </div>
</body>
</html>
`, rows.String())

	return s.sendHTML(to, subject, body)
}

// sendHTML 发送 HTML 邮件
func (s *Service) sendHTML(to, subject, body string) error {
	headers := make(map[string]string)
	headers["From"] = s.cfg.From
	headers["To"] = to
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"

	var msg strings.Builder
	for k, v := range headers {
		msg.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	msg.WriteString("\r\n")
	msg.WriteString(body)

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg.String()))
}
