// Package ratelimit — brute-force saldırılarına karşı sliding window + lockout
// bazlı rate limiting.
//
// Tasarım:
//   - Her identity key'i (ip veya ip:email) için window içindeki deneme sayısı tutulur.
//   - Window içinde MaxAttempts aşılırsa key lockout'a girer: LockedUntil geçene kadar
//     window durumundan bağımsız olarak tüm denemeler reddedilir.
//   - Başarılı işlem (ör. doğru şifreyle login) Reset() ile sayacı tamamen siler.
//
// Sayaçlar cache tier'da yaşar (cache.Store). Naif read-then-write yaklaşımı
// eşzamanlı burst'lerde increment kaybeder; bu yüzden tüm geçişler
// Store.Update (compare-and-swap) üzerinden yapılır.
//
// Cache tier erişilemezse limiter FAIL-OPEN çalışır: istek kabul edilir ve
// hata loglanır. Bir cache kesintisinin meşru kullanıcılara karşı
// denial-of-service'e dönüşmemesi için bilinçli tercihtir.
//
// pkg/ratelimit hiçbir proje içi pakete bağımlı değildir (pkg/cache hariç) —
// handlers ↔ middleware arasında import cycle oluşmaz.
package ratelimit

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/ekinaktas/klik/pkg/cache"
)

// Policy, bir endpoint sınıfının rate limit parametrelerini tanımlar.
// Name cache key'inde namespace olarak kullanılır — farklı policy'lerin
// sayaçları birbirine karışmaz.
type Policy struct {
	Name        string
	MaxAttempts int
	Window      time.Duration
	Lockout     time.Duration
}

// Hazır policy'ler. Login en sıkısıdır; genel API en gevşeği.
var (
	PolicyLogin         = Policy{Name: "login", MaxAttempts: 5, Window: 15 * time.Minute, Lockout: 30 * time.Minute}
	PolicyRegister      = Policy{Name: "register", MaxAttempts: 3, Window: 60 * time.Minute, Lockout: 60 * time.Minute}
	PolicyPasswordReset = Policy{Name: "password_reset", MaxAttempts: 3, Window: 60 * time.Minute, Lockout: 60 * time.Minute}
	PolicyAPI           = Policy{Name: "api", MaxAttempts: 100, Window: time.Minute, Lockout: time.Minute}
)

// counter, cache'te JSON olarak saklanan sayaç kaydı.
//
// Yaşam döngüsü:
// - Window'daki ilk denemede oluşur (Count=1, WindowStart=now)
// - Sonraki denemelerde Count artar
// - Window süresi geçince taze window ile değiştirilir
// - Count > MaxAttempts olunca LockedUntil set edilir
// - Başarılı işlemde Reset() komple siler
type counter struct {
	Count       int        `json:"count"`
	WindowStart time.Time  `json:"window_start"`
	LockedUntil *time.Time `json:"locked_until,omitempty"`
}

// Result, Check'in kararı.
type Result struct {
	Allowed    bool
	Remaining  int           // bu window'da kalan deneme hakkı
	ResetAt    time.Time     // window'un biteceği an
	RetryAfter time.Duration // reddedildiyse ne kadar beklenmeli (> 0)
}

// Limiter, cache tier destekli rate limiter.
type Limiter struct {
	store cache.Store
}

// New, verilen cache store ile yeni bir Limiter oluşturur.
func New(store cache.Store) *Limiter {
	return &Limiter{store: store}
}

func cacheKey(p Policy, key string) string {
	return "ratelimit:" + p.Name + ":" + key
}

// Check, key için bir deneme kaydeder ve izin kararını döner.
//
// Karar sırası:
// 1. LockedUntil gelecekteyse → reddet, RetryAfter = kalan lockout süresi
// 2. Kayıt yoksa veya window süresi geçmişse → taze window (Count=1), izin ver
// 3. Count'u artır; MaxAttempts aşıldıysa lockout yaz ve reddet
// 4. Aksi halde sayacı persist et, izin ver
//
// Sayaç TTL'i 2×Window'dur — window sınırındaki okumalar sayaç silindiği
// için değil süresi dolduğu için taze window görür.
func (l *Limiter) Check(ctx context.Context, p Policy, key string) Result {
	now := time.Now().UTC()
	var res Result

	err := l.store.Update(ctx, cacheKey(p, key), func(old []byte) ([]byte, time.Duration, error) {
		var c counter
		if old != nil {
			if err := json.Unmarshal(old, &c); err != nil {
				// Bozuk kayıt — taze window gibi davran
				c = counter{}
			}
		}

		// 1. Aktif lockout
		if c.LockedUntil != nil && c.LockedUntil.After(now) {
			res = Result{
				Allowed:    false,
				Remaining:  0,
				ResetAt:    *c.LockedUntil,
				RetryAfter: c.LockedUntil.Sub(now),
			}
			return old, time.Until(*c.LockedUntil), nil
		}

		// 2. Kayıt yok veya window bitti → taze window
		if old == nil || now.Sub(c.WindowStart) > p.Window {
			c = counter{Count: 1, WindowStart: now, LockedUntil: nil}
			res = Result{
				Allowed:   true,
				Remaining: p.MaxAttempts - 1,
				ResetAt:   now.Add(p.Window),
			}
			next, err := json.Marshal(c)
			return next, 2 * p.Window, err
		}

		// 3. Window içindeyiz — sayacı artır
		c.Count++
		if c.Count > p.MaxAttempts {
			locked := now.Add(p.Lockout)
			c.LockedUntil = &locked
			res = Result{
				Allowed:    false,
				Remaining:  0,
				ResetAt:    locked,
				RetryAfter: p.Lockout,
			}
			next, err := json.Marshal(c)
			return next, p.Lockout + p.Window, err
		}

		// 4. Limit içinde
		res = Result{
			Allowed:   true,
			Remaining: p.MaxAttempts - c.Count,
			ResetAt:   c.WindowStart.Add(p.Window),
		}
		next, err := json.Marshal(c)
		return next, 2 * p.Window, err
	})

	if err != nil {
		// FAIL-OPEN: cache tier çökükse istekler reddedilmez.
		log.Printf("[ratelimit] cache error for key %s, failing open: %v", key, err)
		return Result{Allowed: true, Remaining: p.MaxAttempts, ResetAt: now.Add(p.Window)}
	}

	return res
}

// Reset, key'in sayacını tamamen siler — window/lockout durumundan bağımsız.
// Başarılı login gibi "credential'ın meşru kullanımı" sonrası çağrılır:
// doğru şifreyi giren kullanıcının önceki başarısız deneme geçmişi temizlenir.
func (l *Limiter) Reset(ctx context.Context, p Policy, key string) {
	if err := l.store.Delete(ctx, cacheKey(p, key)); err != nil {
		log.Printf("[ratelimit] failed to reset key %s: %v", key, err)
	}
}

// CompositeKey, IP ve login identifier'ı birleştirip tek identity key üretir.
// Aynı IP'den farklı email'lere yapılan denemeler birbirini etkilemez.
func CompositeKey(ip, identifier string) string {
	return ip + ":" + strings.ToLower(strings.TrimSpace(identifier))
}

// ExtractIP, HTTP request'ten client IP adresini çıkarır.
//
// Öncelik sırası:
// 1. X-Forwarded-For header (reverse proxy arkasındaysa, ilk IP)
// 2. X-Real-IP header (nginx gibi proxy'ler ekler)
// 3. RemoteAddr (doğrudan bağlantı)
func ExtractIP(r *http.Request) string {
	// X-Forwarded-For: client, proxy1, proxy2 — ilk değer gerçek client
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RetryAfterSeconds, Retry-After header değeri için süreyi saniyeye yuvarlar.
// +1 yuvarlama — client'ın tam süreyi beklemesi için.
func RetryAfterSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d.Seconds()) + 1
}

// FormatRetryMessage, kalan süreyi okunabilir formata çevirir.
// Örn: 120 → "2 minute(s)", 45 → "45 second(s)"
func FormatRetryMessage(seconds int) string {
	if seconds >= 60 {
		return fmt.Sprintf("%d minute(s)", seconds/60)
	}
	return fmt.Sprintf("%d second(s)", seconds)
}
