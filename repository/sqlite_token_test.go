package repository

import (
	"context"
	"testing"
	"time"

	"github.com/ekinaktas/klik/models"
	"github.com/ekinaktas/klik/pkg"
	"github.com/ekinaktas/klik/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRepo_CreateAndGetByHash(t *testing.T) {
	db := newTestDB(t)
	userRepo := NewSQLiteUserRepo(db.Conn)
	repo := NewSQLitePasswordResetRepo(db.Conn)
	ctx := context.Background()

	user := seedUser(t, userRepo, "alice")

	hash := token.Hash("plaintext-token")
	tok := &models.OneTimeToken{
		UserID:    user.ID,
		TokenHash: hash,
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	require.NoError(t, repo.Create(ctx, tok))
	assert.NotEmpty(t, tok.ID)

	got, err := repo.GetByTokenHash(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.UserID)
	assert.Nil(t, got.UsedAt)
	assert.True(t, got.Usable(time.Now().UTC()))
}

func TestTokenRepo_GetUnknownHash(t *testing.T) {
	db := newTestDB(t)
	repo := NewSQLitePasswordResetRepo(db.Conn)

	_, err := repo.GetByTokenHash(context.Background(), token.Hash("nope"))
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestTokenRepo_MarkUsed_SingleRedeem(t *testing.T) {
	db := newTestDB(t)
	userRepo := NewSQLiteUserRepo(db.Conn)
	repo := NewSQLitePasswordResetRepo(db.Conn)
	ctx := context.Background()

	user := seedUser(t, userRepo, "alice")
	tok := &models.OneTimeToken{
		UserID:    user.ID,
		TokenHash: token.Hash("t"),
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	require.NoError(t, repo.Create(ctx, tok))

	require.NoError(t, repo.MarkUsed(ctx, tok.ID))

	// İkinci redeem atomik koşula takılır — tek kullanımlık garanti
	assert.ErrorIs(t, repo.MarkUsed(ctx, tok.ID), pkg.ErrNotFound)

	got, err := repo.GetByTokenHash(ctx, tok.TokenHash)
	require.NoError(t, err)
	assert.NotNil(t, got.UsedAt)
	assert.False(t, got.Usable(time.Now().UTC()))
}

func TestTokenRepo_DeleteByUserID(t *testing.T) {
	db := newTestDB(t)
	userRepo := NewSQLiteUserRepo(db.Conn)
	repo := NewSQLitePasswordResetRepo(db.Conn)
	ctx := context.Background()

	user := seedUser(t, userRepo, "alice")
	tok := &models.OneTimeToken{
		UserID:    user.ID,
		TokenHash: token.Hash("t"),
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	require.NoError(t, repo.Create(ctx, tok))

	require.NoError(t, repo.DeleteByUserID(ctx, user.ID))

	_, err := repo.GetByTokenHash(ctx, tok.TokenHash)
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestTokenRepo_SeparateTables(t *testing.T) {
	db := newTestDB(t)
	userRepo := NewSQLiteUserRepo(db.Conn)
	resetRepo := NewSQLitePasswordResetRepo(db.Conn)
	verifyRepo := NewSQLiteEmailVerificationRepo(db.Conn)
	ctx := context.Background()

	user := seedUser(t, userRepo, "alice")
	hash := token.Hash("t")

	require.NoError(t, resetRepo.Create(ctx, &models.OneTimeToken{
		UserID: user.ID, TokenHash: hash, ExpiresAt: time.Now().UTC().Add(time.Hour),
	}))

	// Reset token'ı verification tablosundan okunamaz
	_, err := verifyRepo.GetByTokenHash(ctx, hash)
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}
