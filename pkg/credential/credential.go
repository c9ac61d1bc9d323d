// Package credential, session token'ının request ile nasıl taşındığını soyutlar.
//
// İki transport aynı anda desteklenir:
//   - Cookie: tarayıcı client'ları için __Host-session cookie'si
//     (Secure + HttpOnly + SameSite — JS erişemez, cross-site gönderilmez)
//   - Bearer: programatik client'lar için "Authorization: Bearer <token>" header'ı
//
// Her ikisi de AYNI opak session token'ını taşır. FromRequest önce header'a,
// sonra cookie'ye bakar — ikisi de aynı session'ı çözer.
package credential

import (
	"net/http"
	"strings"
	"time"
)

// CookieName — __Host- prefix'i tarayıcıya ekstra garanti verdirir:
// cookie sadece Secure bağlantıda, Path=/ ile ve Domain attribute'suz set edilebilir.
const CookieName = "__Host-session"

// Options, cookie'nin nasıl yazılacağını belirler.
// Secure, dev ortamında (plain HTTP) kapatılabilir — production'da daima açık.
type Options struct {
	Secure bool
}

// FromRequest, request'ten session token'ı çıkarır.
// Öncelik: Authorization header, sonra cookie. İkisi de yoksa ("", false).
func FromRequest(r *http.Request) (string, bool) {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok && token != "" {
			return token, true
		}
	}

	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value, true
	}

	return "", false
}

// Issue, session cookie'sini client'a yazar.
// Bearer client'lar cookie'yi yok sayar — token'ı response body'den alırlar.
func Issue(w http.ResponseWriter, token string, expiresAt time.Time, opts Options) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/", // __Host- için zorunlu
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear, session cookie'sini siler (logout).
func Clear(w http.ResponseWriter, opts Options) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
