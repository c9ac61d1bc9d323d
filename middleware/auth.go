// Package middleware, HTTP request pipeline'ına eklenen ara katmanları barındırır.
//
// Middleware Pattern:
// Her HTTP request, handler'a ulaşmadan önce bir veya daha fazla middleware'dan geçer.
// Zincir: RateLimit → Auth → Handler
//
// Go'da middleware bir fonksiyondur:
//
//	func(next http.Handler) http.Handler
//
// "next" parametresi zincirdeki bir sonraki handler'dır.
// Middleware kendi işini yapar (ör: session çöz), sonra next'i çağırır.
// Hata varsa next'i ÇAĞIRMAZ → request burada durur.
package middleware

import (
	"context"
	"net/http"

	"github.com/ekinaktas/klik/handlers"
	"github.com/ekinaktas/klik/pkg"
	"github.com/ekinaktas/klik/pkg/credential"
	"github.com/ekinaktas/klik/services"
)

// AuthMiddleware, session doğrulama middleware'ı.
type AuthMiddleware struct {
	sessions services.SessionService
}

// NewAuthMiddleware, constructor.
func NewAuthMiddleware(sessions services.SessionService) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// Require, geçerli session zorunlu kılan middleware.
//
// Credential iki kanaldan gelebilir (öncelik sırasıyla):
// 1. Authorization: Bearer <token> header'ı (API client'ları)
// 2. __Host-session cookie'si (tarayıcı)
//
// Flow:
// 1. credential.FromRequest ile token'ı al
// 2. SessionService.ResolveUser → cache-first session + snapshot çözümü
// 3. Geçerliyse snapshot + token context'e eklenir, next çağrılır
// 4. Geçersizse 401, next ÇAĞIRILMAZ
func (m *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr, ok := credential.FromRequest(r)
		if !ok {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "authentication required")
			return
		}

		snapshot, err := m.sessions.ResolveUser(r.Context(), tokenStr)
		if err != nil {
			pkg.Error(w, err)
			return
		}

		// Downstream handler'lar handlers.CurrentUser(r) ile erişir.
		ctx := context.WithValue(r.Context(), handlers.UserContextKey, snapshot)
		ctx = context.WithValue(ctx, handlers.SessionTokenContextKey, tokenStr)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
