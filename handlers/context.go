// Package handlers, HTTP request/response işlemlerini yönetir.
//
// Handler'ın görevi "ince" (thin) olmalı:
// 1. Request body'yi parse et (JSON → struct)
// 2. Service katmanını çağır
// 3. Sonucu HTTP response olarak döndür
//
// Handler ASLA iş mantığı içermez.
// Handler ASLA doğrudan DB'ye erişmez.
// Tüm akıl service'de, handler sadece köprü.
package handlers

import (
	"net/http"

	"github.com/ekinaktas/klik/models"
)

// contextKey, context value'ları için özel tip.
// string yerine özel tip kullanmak package'lar arası key çakışmasını önler.
type contextKey string

// UserContextKey, auth middleware'ın çözdüğü kullanıcı snapshot'ını taşır.
const UserContextKey contextKey = "user"

// SessionTokenContextKey, isteği açan session'ın token'ını taşır.
// Logout kendi oturumunu kapatmak için buna ihtiyaç duyar.
const SessionTokenContextKey contextKey = "session_token"

// CurrentUser, context'teki kullanıcı snapshot'ını döner.
// Auth middleware'dan geçmemiş bir route'ta ok=false döner.
func CurrentUser(r *http.Request) (*models.UserSnapshot, bool) {
	snapshot, ok := r.Context().Value(UserContextKey).(*models.UserSnapshot)
	return snapshot, ok
}

// SessionToken, context'teki session token'ını döner.
func SessionToken(r *http.Request) (string, bool) {
	tokenStr, ok := r.Context().Value(SessionTokenContextKey).(string)
	return tokenStr, ok
}
