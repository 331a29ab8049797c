// Package mailer sends transactional email over SMTP.
package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	htmltemplate "html/template"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	texttemplate "text/template"
	"time"

	"resume-scanner/internal/shared/telemetry"
)

// ResetSubject is the subject line of password reset emails.
const ResetSubject = "Reset Your Password - Resume Scanner"

// Config holds SMTP settings and the reset link base.
type Config struct {
	Host        string
	Port        int
	Username    string
	Password    string
	UseTLS      bool
	FromEmail   string
	FromName    string
	ResetURL    string
	ExpiryHours int
}

// sendFunc delivers a fully formatted message.
type sendFunc func(ctx context.Context, cfg Config, from string, to []string, msg []byte) error

// Mailer renders and sends emails.
type Mailer struct {
	cfg  Config
	send sendFunc
}

// New constructs a Mailer that talks to cfg.Host.
func New(cfg Config) *Mailer {
	if cfg.ExpiryHours <= 0 {
		cfg.ExpiryHours = 24
	}
	if cfg.FromName == "" {
		cfg.FromName = "Resume Scanner"
	}
	return &Mailer{cfg: cfg, send: sendSMTP}
}

// DevMode reports whether credentials are missing, in which case links are
// logged instead of sent.
func (m *Mailer) DevMode() bool {
	return m.cfg.Username == "" || m.cfg.Password == ""
}

// ResetLink builds the link a user follows to reset their password.
func (m *Mailer) ResetLink(token string) string {
	sep := "?"
	if strings.Contains(m.cfg.ResetURL, "?") {
		sep = "&"
	}
	return m.cfg.ResetURL + sep + "token=" + token
}

type resetData struct {
	Name        string
	Link        string
	ExpiryHours int
}

// SendPasswordReset emails a reset link to the given address.
func (m *Mailer) SendPasswordReset(ctx context.Context, to, token, name string) error {
	link := m.ResetLink(token)
	if m.DevMode() {
		telemetry.Info("mailer.dev_mode", map[string]any{
			"to":        to,
			"reset_url": link,
		})
		return nil
	}

	data := resetData{Name: name, Link: link, ExpiryHours: m.cfg.ExpiryHours}
	var text, html bytes.Buffer
	if err := resetText.Execute(&text, data); err != nil {
		return fmt.Errorf("render reset text: %w", err)
	}
	if err := resetHTML.Execute(&html, data); err != nil {
		return fmt.Errorf("render reset html: %w", err)
	}

	msg, err := buildMessage(m.cfg.FromName, m.cfg.FromEmail, to, ResetSubject, text.String(), html.String())
	if err != nil {
		return err
	}
	if err := m.send(ctx, m.cfg, m.cfg.FromEmail, []string{to}, msg); err != nil {
		telemetry.Error("mailer.send_failed", map[string]any{"to": to, "error": err})
		return fmt.Errorf("send reset email: %w", err)
	}
	telemetry.Info("mailer.sent", map[string]any{"to": to, "subject": ResetSubject})
	return nil
}

func buildMessage(fromName, fromEmail, to, subject, textBody, htmlBody string) ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	parts := []struct {
		contentType string
		content     string
	}{
		{"text/plain; charset=UTF-8", textBody},
		{"text/html; charset=UTF-8", htmlBody},
	}
	for _, p := range parts {
		w, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {p.contentType}})
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(p.content)); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", fromName, fromEmail)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	fmt.Fprintf(&msg, "Date: %s\r\n", time.Now().UTC().Format(time.RFC1123Z))
	msg.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", mw.Boundary())
	msg.Write(body.Bytes())
	return msg.Bytes(), nil
}

func sendSMTP(ctx context.Context, cfg Config, from string, to []string, msg []byte) error {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer c.Close()

	if cfg.UseTLS {
		if err := c.StartTLS(&tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}
	if cfg.Username != "" && cfg.Password != "" {
		if err := c.Auth(smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

var resetText = texttemplate.Must(texttemplate.New("reset_text").Parse(`Password Reset Request

Hello{{if .Name}} {{.Name}}{{end}}!

We received a request to reset your password for your Resume Scanner account.

To reset your password, please visit the following link:
{{.Link}}

This link will expire in {{.ExpiryHours}} hours for security reasons.

If you didn't request this password reset, please ignore this email. Your password will remain unchanged.

Best regards,
Resume Scanner Team
`))

var resetHTML = htmltemplate.Must(htmltemplate.New("reset_html").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Password Reset</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
  <div style="background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 30px; text-align: center; border-radius: 10px 10px 0 0;">
    <h1>Password Reset Request</h1>
  </div>
  <div style="background: #f9f9f9; padding: 30px; border-radius: 0 0 10px 10px;">
    <h2>Hello{{if .Name}} {{.Name}}{{end}}!</h2>
    <p>We received a request to reset your password for your Resume Scanner account.</p>
    <p>Click the button below to reset your password:</p>
    <a href="{{.Link}}" style="display: inline-block; background: #667eea; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px; margin: 20px 0; font-weight: bold;">Reset Password</a>
    <p>Or copy and paste this link into your browser:</p>
    <p style="word-break: break-all; background: #eee; padding: 10px; border-radius: 5px;">{{.Link}}</p>
    <p><strong>This link will expire in {{.ExpiryHours}} hours for security reasons.</strong></p>
    <p>If you didn't request this password reset, please ignore this email. Your password will remain unchanged.</p>
  </div>
  <div style="text-align: center; margin-top: 30px; color: #666; font-size: 14px;">
    <p>This email was sent from Resume Scanner. If you have any questions, please contact support.</p>
  </div>
</body>
</html>
`))
