package models

import (
	"fmt"
	"strings"
	"time"
)

// OneTimeToken, tek kullanımlık bir doğrulama token'ını temsil eder
// (şifre sıfırlama, e-posta doğrulama).
//
// Ham token değeri ASLA saklanmaz — kullanıcıya verilen link içinde
// taşınır, DB'de yalnızca SHA-256 hash'i (TokenHash) tutulur.
// UsedAt dolu ise token harcanmıştır ve tekrar kabul edilmez.
type OneTimeToken struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	TokenHash string     `json:"-"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"-"`
	CreatedAt time.Time  `json:"created_at"`
}

// Usable, token'ın verilen anda hâlâ geçerli olup olmadığını döner.
func (t *OneTimeToken) Usable(now time.Time) bool {
	return t.UsedAt == nil && now.Before(t.ExpiresAt)
}

// ForgotPasswordRequest, şifre sıfırlama isteği payload'ı.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// Validate, ForgotPasswordRequest kontrolü.
func (r *ForgotPasswordRequest) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	if !EmailRegex().MatchString(r.Email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ResetPasswordRequest, şifre sıfırlama tamamlama payload'ı.
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// Validate, ResetPasswordRequest kontrolü.
func (r *ResetPasswordRequest) Validate() error {
	r.Token = strings.TrimSpace(r.Token)
	if r.Token == "" {
		return fmt.Errorf("token is required")
	}
	if len(r.NewPassword) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	if len(r.NewPassword) > 72 {
		return fmt.Errorf("password must be at most 72 characters")
	}
	return nil
}

// VerifyEmailRequest, e-posta doğrulama payload'ı.
type VerifyEmailRequest struct {
	Token string `json:"token"`
}

// Validate, VerifyEmailRequest kontrolü.
func (r *VerifyEmailRequest) Validate() error {
	r.Token = strings.TrimSpace(r.Token)
	if r.Token == "" {
		return fmt.Errorf("token is required")
	}
	return nil
}
