// Package cache, hızlı key-value cache katmanının soyutlamasıdır.
//
// Cache tier, durable store'un (SQLite) önünde duran TTL bazlı bir projeksiyondur:
// session lookup'ları, kullanıcı snapshot'ları ve rate limit sayaçları burada tutulur.
// Kaynak-of-truth DEĞİLDİR — cache'e yazılamayan veya cache'ten okunamayan her veri
// için durable store'a düşülür.
//
// İki implementasyon vardır:
//   - MemoryStore: tek instance deploy için in-memory, per-key TTL
//   - RedisStore: go-redis ile paylaşımlı cache tier
//
// Update metodu compare-and-swap semantiği sağlar: rate limiter'ın
// read-increment-write döngüsü lost update olmadan bu metodla çalışır.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss, key'in cache'te bulunmadığını (veya süresinin dolduğunu) bildirir.
// Caller bunu hata değil "yok" olarak yorumlar ve durable store'a düşer.
var ErrMiss = errors.New("cache miss")

// UpdateFunc, Update çağrısında mevcut değeri yeni değere dönüştürür.
// old, key yoksa nil gelir. Dönen next değeri ttl ile yazılır.
// Error dönerse update iptal edilir ve error caller'a iletilir.
type UpdateFunc func(old []byte) (next []byte, ttl time.Duration, err error)

// Store, cache tier'ın ortak interface'i.
//
// Tüm operasyonlar context alır — caller deadline koyarsa cache çağrısı
// o deadline'da iptal olur. Cache bir projeksiyon olduğu için operasyon
// hataları caller tarafında "miss" gibi ele alınabilir (rate limiter hariç,
// o fail-open politikasını kendi uygular).
type Store interface {
	// Get, key'in değerini döner. Key yoksa veya süresi dolmuşsa ErrMiss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set, değeri verilen TTL ile yazar. ttl <= 0 ise key silinir —
	// süresi geçmiş bir değeri yazmak anlamsızdır.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete, key'i siler. Key'in olmaması hata değildir.
	Delete(ctx context.Context, key string) error

	// Update, key'i atomik olarak dönüştürür (compare-and-swap).
	// Eşzamanlı Update çağrıları birbirinin yazmasını ezmez:
	// MemoryStore mutex altında, RedisStore WATCH/MULTI retry loop ile çalışır.
	Update(ctx context.Context, key string, fn UpdateFunc) error
}
