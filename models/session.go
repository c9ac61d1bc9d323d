package models

import "time"

// Session, sunucu tarafında tutulan opak oturum kaydını temsil eder.
//
// ID, session token'ının KENDİSİDİR — 256 bit rastgele hex string.
// Token bir bearer capability'dir: kimde varsa oturum onundur.
// Bu yüzden cookie HttpOnly + Secure taşınır; DB'de ise olduğu gibi saklanır
// (reset token'larının aksine hash'lenmez — session lookup'ı token ile yapılır
// ve token zaten tek başına yetki taşır).
//
// Geçerlilik kuralı: kayıt mevcut (cache VEYA durable) VE ExpiresAt > now.
// Durable store otoritedir; cache TTL sınırlı bir projeksiyondur.
type Session struct {
	ID        string    `json:"-"` // token — API response'a serialize edilmez
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired, session'ın süresinin dolup dolmadığını kontrol eder.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
