package cache

import (
	"context"
	"sync"
	"time"
)

// entry, MemoryStore'daki tek bir kayıttır.
type entry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore, Store'un in-memory implementasyonu.
//
// Tek instance deploy için Redis bağımlılığı olmadan çalışır.
// sync.RWMutex ile thread-safe: RLock okuma, Lock yazma.
// Süresi dolan entry'ler Get'te döndürülmez, fiziksel silme
// arka plandaki cleanup goroutine'inde yapılır (bellek sızıntısı engeli).
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry

	stopCleanup chan struct{}
	stopOnce    sync.Once
}

// NewMemoryStore, yeni bir MemoryStore oluşturur ve periyodik temizleme
// goroutine'ini başlatır. cleanupInterval tipik olarak 1 dakikadır.
func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	s := &MemoryStore{
		entries:     make(map[string]entry),
		stopCleanup: make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.evictExpired()
			case <-s.stopCleanup:
				return
			}
		}
	}()

	return s
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, ErrMiss
	}

	// Kopyayla dön — caller slice'ı değiştirirse cache bozulmasın
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ttl <= 0 {
		delete(s.entries, key)
		return nil
	}

	v := make([]byte, len(value))
	copy(v, value)
	s.entries[key] = entry{value: v, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

// Update, fn'i tek Lock altında çalıştırır — eşzamanlı Update çağrıları
// serialize olur, read-modify-write kaybı oluşmaz.
func (s *MemoryStore) Update(_ context.Context, key string, fn UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var old []byte
	if e, ok := s.entries[key]; ok && time.Now().Before(e.expiresAt) {
		old = make([]byte, len(e.value))
		copy(old, e.value)
	}

	next, ttl, err := fn(old)
	if err != nil {
		return err
	}

	if ttl <= 0 {
		delete(s.entries, key)
		return nil
	}

	s.entries[key] = entry{value: next, expiresAt: time.Now().Add(ttl)}
	return nil
}

// Len, cache'teki toplam entry sayısını döner (süresi dolmuşlar dahil).
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Close, cleanup goroutine'ini durdurur. İki kez çağrılması güvenlidir.
func (s *MemoryStore) Close() {
	s.stopOnce.Do(func() { close(s.stopCleanup) })
}

func (s *MemoryStore) evictExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, key)
		}
	}
}
