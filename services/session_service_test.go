package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ekinaktas/klik/models"
	"github.com/ekinaktas/klik/pkg"
	"github.com/ekinaktas/klik/pkg/cache"
	"github.com/ekinaktas/klik/ws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─── Fakes ───

// fakeSessionRepo, SessionRepository'nin in-memory implementasyonu.
// Çağrı sayaçları cache-first davranışı doğrulamak için tutulur.
type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]models.Session // token → session
	getCalls int
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]models.Session)}
}

func (r *fakeSessionRepo) Create(_ context.Context, s *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.CreatedAt = time.Now().UTC()
	r.sessions[s.ID] = *s
	return nil
}

func (r *fakeSessionRepo) GetByToken(_ context.Context, token string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getCalls++
	s, ok := r.sessions[token]
	if !ok {
		return nil, pkg.ErrNotFound
	}
	out := s
	return &out, nil
}

func (r *fakeSessionRepo) ExtendExpiry(_ context.Context, token string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[token]
	if !ok {
		return pkg.ErrNotFound
	}
	s.ExpiresAt = expiresAt
	r.sessions[token] = s
	return nil
}

func (r *fakeSessionRepo) ListByUserID(_ context.Context, userID string) ([]models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Session
	for _, s := range r.sessions {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) DeleteByToken(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, token)
	return nil
}

func (r *fakeSessionRepo) DeleteByUserID(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for token, s := range r.sessions {
		if s.UserID == userID {
			delete(r.sessions, token)
		}
	}
	return nil
}

func (r *fakeSessionRepo) DeleteExpired(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	for token, s := range r.sessions {
		if s.Expired(now) {
			delete(r.sessions, token)
		}
	}
	return nil
}

// fakeUserRepo, UserRepository'nin test implementasyonu.
type fakeUserRepo struct {
	mu       sync.Mutex
	users    map[string]models.User // id → user
	getCalls int
}

func newFakeUserRepo(users ...models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]models.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = *u
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getCalls++
	u, ok := r.users[id]
	if !ok {
		return nil, pkg.ErrNotFound
	}
	out := u
	return &out, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			out := u
			return &out, nil
		}
	}
	return nil, pkg.ErrNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email != nil && *u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, pkg.ErrNotFound
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.users[u.ID]
	if !ok {
		return pkg.ErrNotFound
	}
	existing.DisplayName = u.DisplayName
	existing.AvatarURL = u.AvatarURL
	r.users[u.ID] = existing
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, userID, newHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return pkg.ErrNotFound
	}
	u.PasswordHash = newHash
	r.users[userID] = u
	return nil
}

func (r *fakeUserRepo) MarkVerified(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return pkg.ErrNotFound
	}
	u.IsVerified = true
	r.users[userID] = u
	return nil
}

// failStore, tüm operasyonlarda hata dönen cache.Store — cache kesintisi simülasyonu.
type failStore struct{}

var errCacheDown = errors.New("cache down")

func (failStore) Get(context.Context, string) ([]byte, error) { return nil, errCacheDown }
func (failStore) Set(context.Context, string, []byte, time.Duration) error {
	return errCacheDown
}
func (failStore) Delete(context.Context, string) error { return errCacheDown }
func (failStore) Update(context.Context, string, cache.UpdateFunc) error {
	return errCacheDown
}

// ─── Helpers ───

func newTestSessionService(t *testing.T) (SessionService, *fakeSessionRepo, *fakeUserRepo, *cache.MemoryStore) {
	t.Helper()

	svc, sessionRepo, userRepo, store, _ := newTestSessionServiceWithHub(t)
	return svc, sessionRepo, userRepo, store
}

func newTestSessionServiceWithHub(t *testing.T) (SessionService, *fakeSessionRepo, *fakeUserRepo, *cache.MemoryStore, *fakeHub) {
	t.Helper()

	sessionRepo := newFakeSessionRepo()
	userRepo := newFakeUserRepo(models.User{ID: "u1", Username: "alice"})
	hub := newFakeHub()

	store := cache.NewMemoryStore(time.Minute)
	t.Cleanup(store.Close)

	svc := NewSessionService(sessionRepo, userRepo, store, hub, time.Hour, 5*time.Minute)
	return svc, sessionRepo, userRepo, store, hub
}

// ─── Tests ───

func TestCreateSession(t *testing.T) {
	svc, repo, _, _ := newTestSessionService(t)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "u1")
	require.NoError(t, err)

	assert.Len(t, session.ID, 64, "token should be 64 hex chars")
	assert.Equal(t, "u1", session.UserID)
	assert.True(t, session.ExpiresAt.After(time.Now()))

	// Durable store otorite — kayıt orada olmalı
	repo.mu.Lock()
	_, ok := repo.sessions[session.ID]
	repo.mu.Unlock()
	assert.True(t, ok)
}

func TestResolveSession_CacheHit(t *testing.T) {
	svc, repo, _, _ := newTestSessionService(t)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "u1")
	require.NoError(t, err)

	resolved, err := svc.ResolveSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, resolved.ID)
	assert.Equal(t, "u1", resolved.UserID)

	// Cache hit — durable store'a hiç gidilmedi
	repo.mu.Lock()
	calls := repo.getCalls
	repo.mu.Unlock()
	assert.Zero(t, calls)
}

func TestResolveSession_CacheMissFallsToDurable(t *testing.T) {
	svc, repo, _, store := newTestSessionService(t)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "u1")
	require.NoError(t, err)

	// Cache'i boşalt — durable'dan okunmalı ve cache yeniden dolmalı
	require.NoError(t, store.Delete(ctx, "session:"+session.ID))

	resolved, err := svc.ResolveSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "u1", resolved.UserID)

	repo.mu.Lock()
	calls := repo.getCalls
	repo.mu.Unlock()
	assert.Equal(t, 1, calls)

	// Repopulate: ikinci resolve yine cache'ten gelmeli
	_, err = svc.ResolveSession(ctx, session.ID)
	require.NoError(t, err)

	repo.mu.Lock()
	calls = repo.getCalls
	repo.mu.Unlock()
	assert.Equal(t, 1, calls, "second resolve should be served from cache")
}

func TestResolveSession_UnknownToken(t *testing.T) {
	svc, _, _, _ := newTestSessionService(t)

	_, err := svc.ResolveSession(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)
}

func TestResolveSession_EmptyToken(t *testing.T) {
	svc, _, _, _ := newTestSessionService(t)

	_, err := svc.ResolveSession(context.Background(), "")
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)
}

func TestResolveSession_ExpiredDurable(t *testing.T) {
	svc, repo, _, _ := newTestSessionService(t)
	ctx := context.Background()

	// Süresi geçmiş kaydı doğrudan durable'a koy (cache boş)
	expired := models.Session{
		ID:        "expiredtoken",
		UserID:    "u1",
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
	}
	repo.mu.Lock()
	repo.sessions[expired.ID] = expired
	repo.mu.Unlock()

	_, err := svc.ResolveSession(ctx, expired.ID)
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)

	// Fırsat temizliği: kayıt durable'dan silindi
	repo.mu.Lock()
	_, ok := repo.sessions[expired.ID]
	repo.mu.Unlock()
	assert.False(t, ok)
}

func TestResolveSession_CacheDownFailsToDurable(t *testing.T) {
	sessionRepo := newFakeSessionRepo()
	userRepo := newFakeUserRepo(models.User{ID: "u1", Username: "alice"})
	svc := NewSessionService(sessionRepo, userRepo, failStore{}, newFakeHub(), time.Hour, 5*time.Minute)
	ctx := context.Background()

	// Cache tamamen çökük: oturum açma ve çözümleme yine de çalışmalı
	session, err := svc.CreateSession(ctx, "u1")
	require.NoError(t, err)

	resolved, err := svc.ResolveSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "u1", resolved.UserID)
}

func TestRefreshSession(t *testing.T) {
	svc, repo, _, _ := newTestSessionService(t)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "u1")
	require.NoError(t, err)
	originalExpiry := session.ExpiresAt

	time.Sleep(5 * time.Millisecond)

	refreshed, err := svc.RefreshSession(ctx, session.ID)
	require.NoError(t, err)
	assert.True(t, refreshed.ExpiresAt.After(originalExpiry))

	// Durable da güncellendi
	repo.mu.Lock()
	stored := repo.sessions[session.ID]
	repo.mu.Unlock()
	assert.Equal(t, refreshed.ExpiresAt, stored.ExpiresAt)
}

func TestInvalidateSession(t *testing.T) {
	svc, repo, _, store := newTestSessionService(t)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "u1")
	require.NoError(t, err)

	require.NoError(t, svc.InvalidateSession(ctx, session.ID))

	_, err = svc.ResolveSession(ctx, session.ID)
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)

	// Hem cache hem durable temiz
	_, err = store.Get(ctx, "session:"+session.ID)
	assert.ErrorIs(t, err, cache.ErrMiss)
	repo.mu.Lock()
	_, ok := repo.sessions[session.ID]
	repo.mu.Unlock()
	assert.False(t, ok)
}

func TestInvalidateUserSessions(t *testing.T) {
	svc, _, _, _ := newTestSessionService(t)
	ctx := context.Background()

	s1, err := svc.CreateSession(ctx, "u1")
	require.NoError(t, err)
	s2, err := svc.CreateSession(ctx, "u1")
	require.NoError(t, err)

	require.NoError(t, svc.InvalidateUserSessions(ctx, "u1"))

	_, err = svc.ResolveSession(ctx, s1.ID)
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)
	_, err = svc.ResolveSession(ctx, s2.ID)
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)
}

func TestInvalidateUserSessions_RevokesLiveConnections(t *testing.T) {
	svc, _, _, _, hub := newTestSessionServiceWithHub(t)
	ctx := context.Background()

	_, err := svc.CreateSession(ctx, "u1")
	require.NoError(t, err)

	require.NoError(t, svc.InvalidateUserSessions(ctx, "u1"))

	// Client önce session_revoked alır, sonra bağlantısı düşürülür
	assert.Contains(t, hub.opsFor("u1"), ws.OpSessionRevoked)
	hub.mu.Lock()
	disconnected := append([]string(nil), hub.disconnected...)
	hub.mu.Unlock()
	assert.Equal(t, []string{"u1"}, disconnected)
}

func TestCreateSession_PurgesExpiredRows(t *testing.T) {
	svc, repo, _, _ := newTestSessionService(t)
	ctx := context.Background()

	// Süresi geçmiş bir kayıt durable'da duruyor
	repo.mu.Lock()
	repo.sessions["staletoken"] = models.Session{
		ID:        "staletoken",
		UserID:    "u1",
		ExpiresAt: time.Now().UTC().Add(-time.Hour),
	}
	repo.mu.Unlock()

	// Yeni oturum açmak fırsat temizliğini tetikler
	session, err := svc.CreateSession(ctx, "u1")
	require.NoError(t, err)

	repo.mu.Lock()
	_, staleOK := repo.sessions["staletoken"]
	_, liveOK := repo.sessions[session.ID]
	repo.mu.Unlock()
	assert.False(t, staleOK, "süresi dolmuş satır süpürülmeli")
	assert.True(t, liveOK)
}

func TestGetSnapshot_CachesResult(t *testing.T) {
	svc, _, userRepo, _ := newTestSessionService(t)
	ctx := context.Background()

	snap, err := svc.GetSnapshot(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", snap.Username)

	// İkinci okuma cache'ten gelmeli
	_, err = svc.GetSnapshot(ctx, "u1")
	require.NoError(t, err)

	userRepo.mu.Lock()
	calls := userRepo.getCalls
	userRepo.mu.Unlock()
	assert.Equal(t, 1, calls)
}

func TestInvalidateUserSnapshot(t *testing.T) {
	svc, _, userRepo, _ := newTestSessionService(t)
	ctx := context.Background()

	_, err := svc.GetSnapshot(ctx, "u1")
	require.NoError(t, err)

	svc.InvalidateUserSnapshot(ctx, "u1")

	// Invalidation sonrası okuma DB'ye düşer
	_, err = svc.GetSnapshot(ctx, "u1")
	require.NoError(t, err)

	userRepo.mu.Lock()
	calls := userRepo.getCalls
	userRepo.mu.Unlock()
	assert.Equal(t, 2, calls)
}

func TestResolveUser(t *testing.T) {
	svc, _, _, _ := newTestSessionService(t)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "u1")
	require.NoError(t, err)

	snap, err := svc.ResolveUser(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "u1", snap.ID)
	assert.Equal(t, "alice", snap.Username)
}
