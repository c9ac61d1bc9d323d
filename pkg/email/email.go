// Package email, uygulama genelinde email gönderimi için soyutlama katmanı sağlar.
//
// EmailSender interface'i ile gönderim detayları soyutlanır (Dependency Inversion).
// Şu anki implementasyon Resend API kullanır — farklı bir sağlayıcıya geçmek için
// yeni bir implementasyon yazıp wire-up'ta değiştirmek yeterli.
package email

import (
	"context"
	"fmt"
	"log"

	"github.com/resend/resend-go/v3"
)

// EmailSender, email gönderimi için interface.
// Service katmanı bu interface'e bağımlıdır, concrete Resend implementasyonuna değil.
type EmailSender interface {
	// SendPasswordReset, şifre sıfırlama linki içeren email gönderir.
	// token plaintext'tir — DB'de sadece hash'i vardır.
	SendPasswordReset(ctx context.Context, toEmail, token string) error

	// SendEmailVerification, email doğrulama linki içeren email gönderir.
	SendEmailVerification(ctx context.Context, toEmail, token string) error
}

// resendSender, Resend API ile email gönderen EmailSender implementasyonu.
type resendSender struct {
	client    *resend.Client
	fromEmail string // Gönderici adresi (ör: noreply@klik.app) — Resend'de doğrulanmış domain altında olmalı
	appURL    string // Uygulamanın public URL'i — linklerde kullanılır
}

// logSender, email konfigürasyonu eksikken kullanılan fallback implementasyon.
// Gerçek email göndermez — token'ı log'a yazar. Development ortamında
// Resend hesabı olmadan şifre sıfırlama/doğrulama akışını test etmeyi sağlar.
type logSender struct{}

// NewLogSender, sadece log'a yazan bir EmailSender döner.
func NewLogSender() EmailSender {
	return logSender{}
}

func (logSender) SendPasswordReset(_ context.Context, toEmail, token string) error {
	log.Printf("[email] (disabled) password reset for %s token=%s", toEmail, token)
	return nil
}

func (logSender) SendEmailVerification(_ context.Context, toEmail, token string) error {
	log.Printf("[email] (disabled) email verification for %s token=%s", toEmail, token)
	return nil
}

// NewResendSender, Resend API client'ı ile yeni bir EmailSender oluşturur.
func NewResendSender(apiKey, fromEmail, appURL string) EmailSender {
	return &resendSender{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
		appURL:    appURL,
	}
}

// SendPasswordReset, şifre sıfırlama email'i gönderir.
// Link format: {appURL}/reset-password?token={token}
// Kullanıcı link'e tıklayınca frontend token'ı URL'den okur ve
// POST /api/auth/reset-password endpoint'ine gönderir.
func (s *resendSender) SendPasswordReset(ctx context.Context, toEmail, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", s.appURL, token)

	html := s.renderMail(
		"Password Reset Request",
		"We received a request to reset your password. Click the button below to choose a new password.",
		"Reset Password",
		link,
		"This link will expire in 1 hour. If you didn't request a password reset, you can safely ignore this email.",
	)

	return s.send(ctx, toEmail, "Reset Your Password — klik", html)
}

// SendEmailVerification, email doğrulama email'i gönderir.
// Link format: {appURL}/verify-email?token={token}
func (s *resendSender) SendEmailVerification(ctx context.Context, toEmail, token string) error {
	link := fmt.Sprintf("%s/verify-email?token=%s", s.appURL, token)

	html := s.renderMail(
		"Verify Your Email",
		"Welcome to klik! Click the button below to verify your email address.",
		"Verify Email",
		link,
		"This link will expire in 24 hours. If you didn't create a klik account, you can safely ignore this email.",
	)

	return s.send(ctx, toEmail, "Verify Your Email — klik", html)
}

func (s *resendSender) send(ctx context.Context, toEmail, subject, html string) error {
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("klik <%s>", s.fromEmail),
		To:      []string{toEmail},
		Subject: subject,
		Html:    html,
	}

	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// renderMail, tüm transactional email'lerin paylaştığı basit HTML şablonu.
func (s *resendSender) renderMail(title, body, buttonLabel, link, footer string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="margin:0;padding:0;background-color:#0f172a;font-family:Arial,Helvetica,sans-serif;">
  <table width="100%%" cellpadding="0" cellspacing="0" style="background-color:#0f172a;padding:40px 0;">
    <tr>
      <td align="center">
        <table width="480" cellpadding="0" cellspacing="0" style="background-color:#1e293b;border-radius:8px;padding:40px;">
          <tr>
            <td>
              <h1 style="color:#e2e8f0;font-size:24px;margin:0 0 8px 0;">klik</h1>
              <h2 style="color:#e2e8f0;font-size:18px;margin:0 0 24px 0;">%s</h2>
              <p style="color:#94a3b8;font-size:15px;line-height:1.6;margin:0 0 24px 0;">%s</p>
              <table cellpadding="0" cellspacing="0" style="margin:0 0 24px 0;">
                <tr>
                  <td style="background-color:#0ea5e9;border-radius:6px;padding:12px 32px;">
                    <a href="%s" style="color:#ffffff;text-decoration:none;font-size:15px;font-weight:600;">%s</a>
                  </td>
                </tr>
              </table>
              <p style="color:#64748b;font-size:13px;line-height:1.6;margin:0 0 16px 0;">%s</p>
              <p style="color:#475569;font-size:13px;line-height:1.6;margin:0;word-break:break-all;">
                If the button doesn't work, copy and paste this link:<br>
                <a href="%s" style="color:#0ea5e9;">%s</a>
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`, title, body, link, buttonLabel, footer, link, link)
}
