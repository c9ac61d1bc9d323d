package repository

import (
	"context"
	"testing"
	"time"

	"github.com/ekinaktas/klik/models"
	"github.com/ekinaktas/klik/pkg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepo_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	userRepo := NewSQLiteUserRepo(db.Conn)
	repo := NewSQLiteSessionRepo(db.Conn)
	ctx := context.Background()

	user := seedUser(t, userRepo, "alice")

	session := &models.Session{
		ID:        "tok-1",
		UserID:    user.ID,
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	require.NoError(t, repo.Create(ctx, session))
	assert.False(t, session.CreatedAt.IsZero())

	got, err := repo.GetByToken(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.UserID)
	assert.Equal(t, "tok-1", got.ID)
}

func TestSessionRepo_GetUnknownToken(t *testing.T) {
	db := newTestDB(t)
	repo := NewSQLiteSessionRepo(db.Conn)

	_, err := repo.GetByToken(context.Background(), "nope")
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestSessionRepo_GetReturnsExpiredRows(t *testing.T) {
	db := newTestDB(t)
	userRepo := NewSQLiteUserRepo(db.Conn)
	repo := NewSQLiteSessionRepo(db.Conn)
	ctx := context.Background()

	user := seedUser(t, userRepo, "alice")
	require.NoError(t, repo.Create(ctx, &models.Session{
		ID:        "expired",
		UserID:    user.ID,
		ExpiresAt: time.Now().UTC().Add(-time.Hour),
	}))

	// Expiry kararı service katmanında — repo süresi geçmiş satırı da döner
	got, err := repo.GetByToken(ctx, "expired")
	require.NoError(t, err)
	assert.True(t, got.Expired(time.Now().UTC()))
}

func TestSessionRepo_ExtendExpiry(t *testing.T) {
	db := newTestDB(t)
	userRepo := NewSQLiteUserRepo(db.Conn)
	repo := NewSQLiteSessionRepo(db.Conn)
	ctx := context.Background()

	user := seedUser(t, userRepo, "alice")
	expires := time.Now().UTC().Add(time.Hour)
	require.NoError(t, repo.Create(ctx, &models.Session{ID: "tok", UserID: user.ID, ExpiresAt: expires}))

	newExpiry := expires.Add(24 * time.Hour)
	require.NoError(t, repo.ExtendExpiry(ctx, "tok", newExpiry))

	got, err := repo.GetByToken(ctx, "tok")
	require.NoError(t, err)
	assert.WithinDuration(t, newExpiry, got.ExpiresAt, time.Second)

	assert.ErrorIs(t, repo.ExtendExpiry(ctx, "missing", newExpiry), pkg.ErrNotFound)
}

func TestSessionRepo_ListByUserID(t *testing.T) {
	db := newTestDB(t)
	userRepo := NewSQLiteUserRepo(db.Conn)
	repo := NewSQLiteSessionRepo(db.Conn)
	ctx := context.Background()

	alice := seedUser(t, userRepo, "alice")
	bob := seedUser(t, userRepo, "bob")

	expires := time.Now().UTC().Add(time.Hour)
	require.NoError(t, repo.Create(ctx, &models.Session{ID: "a1", UserID: alice.ID, ExpiresAt: expires}))
	require.NoError(t, repo.Create(ctx, &models.Session{ID: "a2", UserID: alice.ID, ExpiresAt: expires}))
	require.NoError(t, repo.Create(ctx, &models.Session{ID: "b1", UserID: bob.ID, ExpiresAt: expires}))

	sessions, err := repo.ListByUserID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}

func TestSessionRepo_DeleteByToken(t *testing.T) {
	db := newTestDB(t)
	userRepo := NewSQLiteUserRepo(db.Conn)
	repo := NewSQLiteSessionRepo(db.Conn)
	ctx := context.Background()

	user := seedUser(t, userRepo, "alice")
	require.NoError(t, repo.Create(ctx, &models.Session{
		ID: "tok", UserID: user.ID, ExpiresAt: time.Now().UTC().Add(time.Hour),
	}))

	require.NoError(t, repo.DeleteByToken(ctx, "tok"))
	_, err := repo.GetByToken(ctx, "tok")
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestSessionRepo_DeleteByUserID(t *testing.T) {
	db := newTestDB(t)
	userRepo := NewSQLiteUserRepo(db.Conn)
	repo := NewSQLiteSessionRepo(db.Conn)
	ctx := context.Background()

	alice := seedUser(t, userRepo, "alice")
	bob := seedUser(t, userRepo, "bob")

	expires := time.Now().UTC().Add(time.Hour)
	require.NoError(t, repo.Create(ctx, &models.Session{ID: "a1", UserID: alice.ID, ExpiresAt: expires}))
	require.NoError(t, repo.Create(ctx, &models.Session{ID: "a2", UserID: alice.ID, ExpiresAt: expires}))
	require.NoError(t, repo.Create(ctx, &models.Session{ID: "b1", UserID: bob.ID, ExpiresAt: expires}))

	require.NoError(t, repo.DeleteByUserID(ctx, alice.ID))

	sessions, err := repo.ListByUserID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, sessions)

	// Bob'un oturumu etkilenmez
	_, err = repo.GetByToken(ctx, "b1")
	assert.NoError(t, err)
}

func TestSessionRepo_DeleteExpired(t *testing.T) {
	db := newTestDB(t)
	userRepo := NewSQLiteUserRepo(db.Conn)
	repo := NewSQLiteSessionRepo(db.Conn)
	ctx := context.Background()

	user := seedUser(t, userRepo, "alice")
	require.NoError(t, repo.Create(ctx, &models.Session{
		ID: "old", UserID: user.ID, ExpiresAt: time.Now().UTC().Add(-time.Hour),
	}))
	require.NoError(t, repo.Create(ctx, &models.Session{
		ID: "live", UserID: user.ID, ExpiresAt: time.Now().UTC().Add(time.Hour),
	}))

	require.NoError(t, repo.DeleteExpired(ctx))

	_, err := repo.GetByToken(ctx, "old")
	assert.ErrorIs(t, err, pkg.ErrNotFound)
	_, err = repo.GetByToken(ctx, "live")
	assert.NoError(t, err)
}
