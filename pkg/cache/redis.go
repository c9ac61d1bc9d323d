package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// maxCASRetries, RedisStore.Update'in WATCH çakışmasında kaç kez
// yeniden deneyeceğini belirler. Rate limit burst'lerinde bile
// birkaç retry yeterlidir — sonsuz loop'a girilmez.
const maxCASRetries = 8

// RedisStore, Store'un Redis implementasyonu.
//
// Birden fazla instance'ın aynı cache tier'ı paylaştığı deploy'larda kullanılır.
// Tüm key'ler prefix ile namespace'lenir — aynı Redis'i başka uygulamalar
// da kullanıyorsa çakışma olmaz.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore, verilen client ile yeni bir RedisStore oluşturur.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "klik:"}
}

func (s *RedisStore) key(k string) string {
	return s.prefix + k
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return val, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return s.Delete(ctx, key)
	}
	if err := s.client.Set(ctx, s.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}

// Update, WATCH/MULTI ile optimistic compare-and-swap yapar.
//
// Redis'in WATCH mekanizması: key WATCH edildikten sonra başka bir client
// o key'i değiştirirse EXEC başarısız olur (redis.TxFailedErr).
// Bu durumda güncel değerle baştan denenir — lost update oluşmaz.
func (s *RedisStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	rkey := s.key(key)

	txFn := func(tx *redis.Tx) error {
		old, err := tx.Get(ctx, rkey).Bytes()
		if errors.Is(err, redis.Nil) {
			old = nil
		} else if err != nil {
			return fmt.Errorf("redis cas get: %w", err)
		}

		next, ttl, err := fn(old)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if ttl <= 0 {
				pipe.Del(ctx, rkey)
				return nil
			}
			pipe.Set(ctx, rkey, next, ttl)
			return nil
		})
		return err
	}

	for i := 0; i < maxCASRetries; i++ {
		err := s.client.Watch(ctx, txFn, rkey)
		if errors.Is(err, redis.TxFailedErr) {
			continue // çakışma — güncel değerle tekrar dene
		}
		return err
	}

	return fmt.Errorf("redis cas: too many conflicts on key %s", key)
}
