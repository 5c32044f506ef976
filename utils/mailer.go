package utils

import (
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"html"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/cicc-pucmm/open-house-social-app-2026/config"
)

// SendHTMLMail sends an HTML email using SMTP settings from config.
func SendHTMLMail(to, subject, htmlBody string) error {
	cfg := config.Get()
	if cfg.SMTPHost == "" || cfg.SMTPFrom == "" {
		return fmt.Errorf("smtp not configured")
	}
	addr := net.JoinHostPort(cfg.SMTPHost, strconv.Itoa(cfg.SMTPPort))
	auth := smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost)

	fromName := cfg.SMTPFromName
	if fromName == "" {
		fromName = "OpenHouse"
	}
	fromHeader := fmt.Sprintf("%s <%s>", encodeRFC2047(fromName), cfg.SMTPFrom)

	headers := map[string]string{
		"From":         fromHeader,
		"To":           to,
		"Subject":      encodeRFC2047(subject),
		"MIME-Version": "1.0",
		"Content-Type": "text/html; charset=UTF-8",
	}
	var msg strings.Builder
	for k, v := range headers {
		msg.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	if cfg.SMTPTLS {
		// STARTTLS with timeouts
		d := net.Dialer{Timeout: 5 * time.Second}
		conn, err := d.Dial("tcp", addr)
		if err != nil {
			return err
		}
		_ = conn.SetDeadline(time.Now().Add(15 * time.Second))
		host, _, _ := net.SplitHostPort(addr)
		c, err := smtp.NewClient(conn, host)
		if err != nil {
			_ = conn.Close()
			return err
		}
		defer c.Close()
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(&tls.Config{ServerName: host}); err != nil {
				return err
			}
		}
		if cfg.SMTPUsername != "" {
			if err := c.Auth(auth); err != nil {
				return err
			}
		}
		if err := c.Mail(cfg.SMTPFrom); err != nil {
			return err
		}
		if err := c.Rcpt(to); err != nil {
			return err
		}
		wc, err := c.Data()
		if err != nil {
			return err
		}
		if _, err := wc.Write([]byte(msg.String())); err != nil {
			_ = wc.Close()
			return err
		}
		return wc.Close()
	}

	return smtp.SendMail(addr, auth, cfg.SMTPFrom, []string{to}, []byte(msg.String()))
}

// RenderPostPhotosHTML builds the opt-in email embedding a post's photos.
func RenderPostPhotosHTML(username, caption string, imageURLs []string) string {
	var images strings.Builder
	for i, url := range imageURLs {
		images.WriteString(fmt.Sprintf(
			`<div style="margin-bottom: 16px;"><img src="%s" alt="Photo %d" style="max-width: 100%%; border-radius: 12px; display: block;" /></div>`,
			html.EscapeString(url), i+1,
		))
	}

	captionBlock := ""
	if caption != "" {
		captionBlock = fmt.Sprintf(
			`<div style="background: #f0f0f0; padding: 16px; border-radius: 12px; margin-bottom: 20px;"><p style="color: #333; font-size: 14px; margin: 0; font-style: italic;">&quot;%s&quot;</p></div>`,
			html.EscapeString(caption),
		)
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1.0"></head>
<body style="margin: 0; padding: 0; background-color: #f5f5f5; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;">
  <div style="max-width: 600px; margin: 24px auto; background: white; border-radius: 16px; overflow: hidden;">
    <div style="background-color: #00599D; padding: 24px; text-align: center;">
      <h1 style="color: white; margin: 0; font-size: 24px;">&#128248; OpenHouse 2026</h1>
      <p style="color: rgba(255,255,255,0.85); margin: 8px 0 0 0; font-size: 14px;">Your post photos</p>
    </div>
    <div style="padding: 24px;">
      <p style="color: #333; font-size: 16px; margin-bottom: 8px;">Hi <strong>%s</strong>!</p>
      <p style="color: #666; font-size: 14px; margin-bottom: 20px;">Here are the photos from your post:</p>
      %s
      %s
    </div>
    <div style="background: #f9f9f9; padding: 20px; text-align: center; border-top: 1px solid #eee;">
      <p style="color: #999; font-size: 12px; margin: 0;">OpenHouse 2026 Social App</p>
    </div>
  </div>
</body>
</html>`, html.EscapeString(username), captionBlock, images.String())
}

// encodeRFC2047 encodes a string for non-ASCII mail headers.
func encodeRFC2047(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] >= 128 {
			return fmt.Sprintf("=?UTF-8?B?%s?=", base64.StdEncoding.EncodeToString([]byte(s)))
		}
	}
	return s
}
