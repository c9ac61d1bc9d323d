package middleware

import (
	"net/http"
	"strconv"

	"github.com/ekinaktas/klik/pkg"
	"github.com/ekinaktas/klik/pkg/ratelimit"
)

// RateLimitMiddleware, genel API rate limit middleware'ı.
//
// Auth endpoint'lerinin sıkı policy'leri (login, register, password reset)
// handler İÇİNDE uygulanır — çünkü key'leri IP + email kompozitidir ve
// body parse edilmeden bilinemez. Bu middleware yalnızca IP bazlı genel
// API policy'sini (100 istek / dakika) uygular.
type RateLimitMiddleware struct {
	limiter *ratelimit.Limiter
}

// NewRateLimitMiddleware, constructor.
func NewRateLimitMiddleware(limiter *ratelimit.Limiter) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: limiter}
}

// Limit, IP başına genel API kotasını uygular.
// Limit aşıldığında 429 + Retry-After header döner.
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := ratelimit.ExtractIP(r)

		result := m.limiter.Check(r.Context(), ratelimit.PolicyAPI, ip)
		if !result.Allowed {
			seconds := ratelimit.RetryAfterSeconds(result.RetryAfter)
			w.Header().Set("Retry-After", strconv.Itoa(seconds))
			pkg.ErrorWithMessage(w, http.StatusTooManyRequests, ratelimit.FormatRetryMessage(seconds))
			return
		}

		next.ServeHTTP(w, r)
	})
}
