// Package services, business logic katmanını barındırır.
//
// Service Layer Pattern:
// Handler (HTTP) ile Repository (DB) arasında oturan katmandır.
// Tüm iş kuralları burada yaşar — session çözümleme, arkadaşlık state
// machine'i, şifre hash'leme, rate limit politikaları.
//
// Service ASLA http.Request/Response bilmez — sadece domain modelleri alır/verir.
// Service ASLA doğrudan SQL çalıştırmaz — Repository interface'i kullanır.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ekinaktas/klik/models"
	"github.com/ekinaktas/klik/pkg"
	"github.com/ekinaktas/klik/pkg/cache"
	"github.com/ekinaktas/klik/pkg/token"
	"github.com/ekinaktas/klik/repository"
	"github.com/ekinaktas/klik/ws"
)

// Cache key önekleri. Token ve userID zaten benzersizdir — önek yalnızca
// key uzaylarını birbirinden ayırır.
const (
	sessionKeyPrefix  = "session:"
	snapshotKeyPrefix = "usersnap:"
)

// SessionService interface'i — iki katmanlı session yönetimi.
//
// Katman modeli:
//   - Cache tier (Redis / in-memory): hızlı lookup, TTL sınırlı projeksiyon
//   - Durable tier (SQLite): OTORİTE — cache düşse bile oturumlar yaşar
//
// Okuma yolu cache-first'tür: hit → tek cache okuması, miss → durable okuma
// + kalan TTL ile cache'e geri yazma. Cache HATASI asla isteği düşürmez —
// miss gibi ele alınıp durable'a düşülür; durable hatası ise gerçek hatadır.
type SessionService interface {
	// CreateSession, kullanıcı için yeni bir oturum açar.
	// Dönen Session.ID client'a verilecek opak token'dır.
	CreateSession(ctx context.Context, userID string) (*models.Session, error)

	// ResolveSession, token'dan geçerli session döner.
	// Token bilinmiyorsa veya süresi dolmuşsa pkg.ErrUnauthorized.
	ResolveSession(ctx context.Context, tokenStr string) (*models.Session, error)

	// ResolveUser, token'dan kullanıcı snapshot'ı döner (session + snapshot çözümü).
	ResolveUser(ctx context.Context, tokenStr string) (*models.UserSnapshot, error)

	// GetSnapshot, kullanıcı snapshot'ını döner (cache-first).
	GetSnapshot(ctx context.Context, userID string) (*models.UserSnapshot, error)

	// RefreshSession, oturumun son kullanma tarihini ileri alar (sliding expiry).
	RefreshSession(ctx context.Context, tokenStr string) (*models.Session, error)

	// InvalidateSession, tek bir oturumu kapatır (logout).
	InvalidateSession(ctx context.Context, tokenStr string) error

	// InvalidateUserSessions, kullanıcının TÜM oturumlarını kapatır.
	// Şifre sıfırlama sonrası çağrılır. Kullanıcının canlı WS bağlantıları
	// session_revoked event'i gönderilip düşürülür.
	InvalidateUserSessions(ctx context.Context, userID string) error

	// InvalidateUserSnapshot, snapshot cache'ini düşürür.
	// Profil değiştiren HER operasyon bunu çağırmak ZORUNDADIR.
	InvalidateUserSnapshot(ctx context.Context, userID string)
}

// sessionService, SessionService implementasyonu.
type sessionService struct {
	sessionRepo repository.SessionRepository
	userRepo    repository.UserRepository
	store       cache.Store
	hub         ws.EventPublisher
	sessionTTL  time.Duration
	snapshotTTL time.Duration
}

// NewSessionService, constructor.
func NewSessionService(
	sessionRepo repository.SessionRepository,
	userRepo repository.UserRepository,
	store cache.Store,
	hub ws.EventPublisher,
	sessionTTL time.Duration,
	snapshotTTL time.Duration,
) SessionService {
	return &sessionService{
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
		store:       store,
		hub:         hub,
		sessionTTL:  sessionTTL,
		snapshotTTL: snapshotTTL,
	}
}

func (s *sessionService) CreateSession(ctx context.Context, userID string) (*models.Session, error) {
	tok, err := token.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	session := &models.Session{
		ID:        tok,
		UserID:    userID,
		ExpiresAt: time.Now().UTC().Add(s.sessionTTL),
	}

	// Önce durable — otorite orası. Durable yazılamadıysa oturum YOK.
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	// Fırsat temizliği: her yeni oturumda süresi dolmuş satırlar süpürülür.
	// Temizlik hatası oturumu düşürmez.
	if err := s.sessionRepo.DeleteExpired(ctx); err != nil {
		log.Printf("[session] expired session cleanup failed: %v", err)
	}

	// Cache yazımı best-effort: başarısız olursa ilk lookup durable'dan
	// okuyup cache'i kendisi dolduracak.
	s.cacheSession(ctx, session)

	return session, nil
}

func (s *sessionService) ResolveSession(ctx context.Context, tokenStr string) (*models.Session, error) {
	if tokenStr == "" {
		return nil, pkg.ErrUnauthorized
	}
	now := time.Now().UTC()

	// 1. Cache lookup. Hata = miss: cache down olsa bile istek yaşar.
	data, err := s.store.Get(ctx, sessionKeyPrefix+tokenStr)
	if err == nil {
		var session models.Session
		if jsonErr := json.Unmarshal(data, &session); jsonErr == nil {
			// ID json:"-" taşır, cache'e yazılmaz — key zaten token.
			session.ID = tokenStr
			// Cache'teki kayıt da expiry taşır — TTL ile expiry arasındaki
			// küçük sapmalarda bayat oturum kabul edilmez.
			if session.Expired(now) {
				_ = s.store.Delete(ctx, sessionKeyPrefix+tokenStr)
				return nil, pkg.ErrUnauthorized
			}
			return &session, nil
		}
		log.Printf("[session] corrupt cache entry, falling back to durable store")
	} else if !errors.Is(err, cache.ErrMiss) {
		log.Printf("[session] cache read failed, falling back to durable store: %v", err)
	}

	// 2. Durable lookup — otorite.
	session, err := s.sessionRepo.GetByToken(ctx, tokenStr)
	if errors.Is(err, pkg.ErrNotFound) {
		return nil, pkg.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}

	if session.Expired(now) {
		// Fırsat temizliği: süresi dolan kaydı durable'dan da düşür.
		if delErr := s.sessionRepo.DeleteByToken(ctx, tokenStr); delErr != nil {
			log.Printf("[session] failed to delete expired session: %v", delErr)
		}
		return nil, pkg.ErrUnauthorized
	}

	// 3. Cache'i KALAN ömürle doldur — tam TTL ile yazmak oturumun
	// cache'te gerçek bitişinden sonra yaşamasına yol açardı.
	s.cacheSession(ctx, session)

	return session, nil
}

func (s *sessionService) ResolveUser(ctx context.Context, tokenStr string) (*models.UserSnapshot, error) {
	session, err := s.ResolveSession(ctx, tokenStr)
	if err != nil {
		return nil, err
	}
	return s.GetSnapshot(ctx, session.UserID)
}

func (s *sessionService) GetSnapshot(ctx context.Context, userID string) (*models.UserSnapshot, error) {
	data, err := s.store.Get(ctx, snapshotKeyPrefix+userID)
	if err == nil {
		var snapshot models.UserSnapshot
		if jsonErr := json.Unmarshal(data, &snapshot); jsonErr == nil {
			return &snapshot, nil
		}
		log.Printf("[session] corrupt snapshot cache entry for user %s", userID)
	} else if !errors.Is(err, cache.ErrMiss) {
		log.Printf("[session] snapshot cache read failed: %v", err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	snapshot := user.Snapshot()
	if data, err := json.Marshal(snapshot); err == nil {
		if err := s.store.Set(ctx, snapshotKeyPrefix+userID, data, s.snapshotTTL); err != nil {
			log.Printf("[session] snapshot cache write failed: %v", err)
		}
	}

	return snapshot, nil
}

func (s *sessionService) RefreshSession(ctx context.Context, tokenStr string) (*models.Session, error) {
	session, err := s.ResolveSession(ctx, tokenStr)
	if err != nil {
		return nil, err
	}

	session.ExpiresAt = time.Now().UTC().Add(s.sessionTTL)
	if err := s.sessionRepo.ExtendExpiry(ctx, tokenStr, session.ExpiresAt); err != nil {
		return nil, err
	}

	s.cacheSession(ctx, session)
	return session, nil
}

func (s *sessionService) InvalidateSession(ctx context.Context, tokenStr string) error {
	// Önce cache: durable silme başarısız olursa bile cache'teki kopya
	// en fazla kalan TTL kadar yaşar; tersi sırada cache'te hayalet kalırdı.
	if err := s.store.Delete(ctx, sessionKeyPrefix+tokenStr); err != nil {
		log.Printf("[session] cache delete failed during logout: %v", err)
	}

	if err := s.sessionRepo.DeleteByToken(ctx, tokenStr); err != nil {
		return err
	}
	return nil
}

func (s *sessionService) InvalidateUserSessions(ctx context.Context, userID string) error {
	// Cache key'leri token bazlı — önce token listesi lazım.
	sessions, err := s.sessionRepo.ListByUserID(ctx, userID)
	if err != nil {
		return err
	}

	for _, session := range sessions {
		if err := s.store.Delete(ctx, sessionKeyPrefix+session.ID); err != nil {
			log.Printf("[session] cache delete failed during global logout: %v", err)
		}
	}

	if err := s.sessionRepo.DeleteByUserID(ctx, userID); err != nil {
		return err
	}

	// Kapanan oturumların canlı WS bağlantıları da düşürülür — önce
	// session_revoked gönderilir ki client yeniden bağlanmayı denemesin.
	s.hub.BroadcastToUser(userID, ws.Event{Op: ws.OpSessionRevoked})
	s.hub.DisconnectUser(userID)

	log.Printf("[session] all sessions invalidated for user %s (%d sessions)", userID, len(sessions))
	return nil
}

func (s *sessionService) InvalidateUserSnapshot(ctx context.Context, userID string) {
	if err := s.store.Delete(ctx, snapshotKeyPrefix+userID); err != nil {
		log.Printf("[session] snapshot invalidation failed for user %s: %v", userID, err)
	}
}

// cacheSession, session'ı kalan ömrüyle cache'e yazar. Best-effort —
// hata loglanır, caller'a dönmez.
func (s *sessionService) cacheSession(ctx context.Context, session *models.Session) {
	remaining := time.Until(session.ExpiresAt)
	if remaining <= 0 {
		return
	}

	data, err := json.Marshal(session)
	if err != nil {
		log.Printf("[session] failed to marshal session for cache: %v", err)
		return
	}

	if err := s.store.Set(ctx, sessionKeyPrefix+session.ID, data, remaining); err != nil {
		log.Printf("[session] cache write failed: %v", err)
	}
}
