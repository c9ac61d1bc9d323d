// Package models, uygulamanın domain modellerini (veri yapıları) tanımlar.
//
// Model, veritabanındaki bir tablonun Go karşılığıdır; aynı zamanda API'den
// gelen/giden verilerin şeklini de belirler. Request struct'ları HTTP body'den
// parse edilir ve Validate() ile kontrol edilir — validation handler'a
// ulaşmadan service katmanında yapılır.
package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// User, bir kullanıcıyı temsil eder.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        *string   `json:"email"` // *string = nullable
	DisplayName  *string   `json:"display_name"`
	AvatarURL    *string   `json:"avatar_url"`
	PasswordHash string    `json:"-"` // API response'a DAHİL ETME
	IsVerified   bool      `json:"is_verified"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserSnapshot, cache tier'da tutulan denormalize kullanıcı görünümü.
//
// Kısa TTL (dakikalar) ile yaşar ve profil değiştiren HER operasyon
// SessionService.InvalidateUserSnapshot çağırmak ZORUNDADIR — cache'in
// açık bir profil yazısından sonra bayat veri sunmasına izin verilmez.
type UserSnapshot struct {
	ID          string  `json:"id"`
	Email       *string `json:"email"`
	Username    string  `json:"username"`
	DisplayName *string `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
	IsVerified  bool    `json:"is_verified"`
}

// Snapshot, User'dan cache'lenecek görünümü üretir.
func (u *User) Snapshot() *UserSnapshot {
	return &UserSnapshot{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		IsVerified:  u.IsVerified,
	}
}

// emailRegex, basit email format kontrolü.
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// EmailRegex, paylaşılan email regex'ine erişim sağlar.
func EmailRegex() *regexp.Regexp {
	return emailRegex
}

// CreateUserRequest, kayıt olurken frontend'den gelen veri.
// PasswordHash yerine Password alırız — hash'leme service katmanında yapılır.
type CreateUserRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// Validate — kurallar:
//   - Username: 3-32 karakter, alfanumerik + alt çizgi
//   - Email: zorunlu, geçerli format
//   - Password: minimum 8 karakter
//   - DisplayName: opsiyonel, max 32 karakter
func (r *CreateUserRequest) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	usernameLen := utf8.RuneCountInString(r.Username)
	if usernameLen < 3 || usernameLen > 32 {
		return fmt.Errorf("username must be between 3 and 32 characters")
	}

	for _, ch := range r.Username {
		if !isValidUsernameChar(ch) {
			return fmt.Errorf("username can only contain letters, numbers, and underscores")
		}
	}

	r.Email = strings.TrimSpace(r.Email)
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	if !emailRegex.MatchString(r.Email) {
		return fmt.Errorf("invalid email format")
	}

	if utf8.RuneCountInString(r.Password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}

	r.DisplayName = strings.TrimSpace(r.DisplayName)
	if utf8.RuneCountInString(r.DisplayName) > 32 {
		return fmt.Errorf("display name must be at most 32 characters")
	}

	return nil
}

// LoginRequest, giriş yaparken frontend'den gelen veri.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate, LoginRequest kontrolü.
func (r *LoginRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	if r.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

// UpdateProfileRequest, profil güncellemesi için.
// nil field = "değiştirme", boş string = "temizle" (avatar/display name için).
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
}

// Validate, UpdateProfileRequest kontrolü.
func (r *UpdateProfileRequest) Validate() error {
	if r.DisplayName == nil && r.AvatarURL == nil {
		return fmt.Errorf("nothing to update")
	}
	if r.DisplayName != nil && utf8.RuneCountInString(*r.DisplayName) > 32 {
		return fmt.Errorf("display name must be at most 32 characters")
	}
	if r.AvatarURL != nil && len(*r.AvatarURL) > 512 {
		return fmt.Errorf("avatar url too long")
	}
	return nil
}

// ChangePasswordRequest, oturum açmış kullanıcının şifre değiştirmesi için.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Validate, ChangePasswordRequest kontrolü.
func (r *ChangePasswordRequest) Validate() error {
	if r.CurrentPassword == "" || r.NewPassword == "" {
		return fmt.Errorf("current_password and new_password are required")
	}
	if utf8.RuneCountInString(r.NewPassword) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	return nil
}

// isValidUsernameChar, username'de izin verilen karakterleri kontrol eder.
func isValidUsernameChar(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9') ||
		ch == '_'
}
