package repository

import (
	"context"
	"testing"

	"github.com/ekinaktas/klik/models"
	"github.com/ekinaktas/klik/pkg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationRepo_CreateAndList(t *testing.T) {
	db := newTestDB(t)
	userRepo := NewSQLiteUserRepo(db.Conn)
	repo := NewSQLiteNotificationRepo(db.Conn)
	ctx := context.Background()

	alice := seedUser(t, userRepo, "alice")
	bob := seedUser(t, userRepo, "bob")

	n := &models.Notification{
		UserID:  alice.ID,
		ActorID: bob.ID,
		Kind:    models.NotificationFriendRequest,
	}
	require.NoError(t, repo.Create(ctx, n))
	assert.NotEmpty(t, n.ID)

	list, err := repo.ListByUserID(ctx, alice.ID, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)

	// Aktör bilgisi JOIN ile gelir
	assert.Equal(t, bob.ID, list[0].ActorID)
	assert.Equal(t, "bob", list[0].ActorUsername)
	assert.Equal(t, models.NotificationFriendRequest, list[0].Kind)
	assert.Nil(t, list[0].ReadAt)

	// Bob'un listesi boş — bildirim alice'e gitti
	list, err = repo.ListByUserID(ctx, bob.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestNotificationRepo_ListLimit(t *testing.T) {
	db := newTestDB(t)
	userRepo := NewSQLiteUserRepo(db.Conn)
	repo := NewSQLiteNotificationRepo(db.Conn)
	ctx := context.Background()

	alice := seedUser(t, userRepo, "alice")
	bob := seedUser(t, userRepo, "bob")

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(ctx, &models.Notification{
			UserID: alice.ID, ActorID: bob.ID, Kind: models.NotificationFriendRequest,
		}))
	}

	list, err := repo.ListByUserID(ctx, alice.ID, 3)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestNotificationRepo_MarkRead(t *testing.T) {
	db := newTestDB(t)
	userRepo := NewSQLiteUserRepo(db.Conn)
	repo := NewSQLiteNotificationRepo(db.Conn)
	ctx := context.Background()

	alice := seedUser(t, userRepo, "alice")
	bob := seedUser(t, userRepo, "bob")

	n := &models.Notification{UserID: alice.ID, ActorID: bob.ID, Kind: models.NotificationFriendAccept}
	require.NoError(t, repo.Create(ctx, n))

	require.NoError(t, repo.MarkRead(ctx, n.ID, alice.ID))

	list, err := repo.ListByUserID(ctx, alice.ID, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.NotNil(t, list[0].ReadAt)

	// İkinci işaretleme no-op — read_at IS NULL koşuluna takılır
	assert.ErrorIs(t, repo.MarkRead(ctx, n.ID, alice.ID), pkg.ErrNotFound)
}

func TestNotificationRepo_MarkRead_OwnerGuard(t *testing.T) {
	db := newTestDB(t)
	userRepo := NewSQLiteUserRepo(db.Conn)
	repo := NewSQLiteNotificationRepo(db.Conn)
	ctx := context.Background()

	alice := seedUser(t, userRepo, "alice")
	bob := seedUser(t, userRepo, "bob")

	n := &models.Notification{UserID: alice.ID, ActorID: bob.ID, Kind: models.NotificationFriendRequest}
	require.NoError(t, repo.Create(ctx, n))

	// Başkasının bildirimi işaretlenemez
	assert.ErrorIs(t, repo.MarkRead(ctx, n.ID, bob.ID), pkg.ErrNotFound)
}

func TestNotificationRepo_MarkAllRead(t *testing.T) {
	db := newTestDB(t)
	userRepo := NewSQLiteUserRepo(db.Conn)
	repo := NewSQLiteNotificationRepo(db.Conn)
	ctx := context.Background()

	alice := seedUser(t, userRepo, "alice")
	bob := seedUser(t, userRepo, "bob")

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &models.Notification{
			UserID: alice.ID, ActorID: bob.ID, Kind: models.NotificationFriendRequest,
		}))
	}

	require.NoError(t, repo.MarkAllRead(ctx, alice.ID))

	list, err := repo.ListByUserID(ctx, alice.ID, 0)
	require.NoError(t, err)
	for _, n := range list {
		assert.NotNil(t, n.ReadAt)
	}
}
