package repository

import (
	"context"
	"testing"

	"github.com/ekinaktas/klik/models"
	"github.com/ekinaktas/klik/pkg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFriendshipRepo_CreateAndGetByPair(t *testing.T) {
	db := newTestDB(t)
	userRepo := NewSQLiteUserRepo(db.Conn)
	repo := NewSQLiteFriendshipRepo(db.Conn)
	ctx := context.Background()

	alice := seedUser(t, userRepo, "alice")
	bob := seedUser(t, userRepo, "bob")

	f := &models.Friendship{
		RequesterID: alice.ID,
		AddresseeID: bob.ID,
		Status:      models.FriendshipStatusPending,
	}
	require.NoError(t, repo.Create(ctx, f))
	assert.NotEmpty(t, f.ID)
	assert.Equal(t, models.PairKey(alice.ID, bob.ID), f.PairKey)

	// Lookup iki yönden de aynı satırı bulur
	got, err := repo.GetByPair(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, f.ID, got.ID)

	got, err = repo.GetByPair(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, f.ID, got.ID)
}

func TestFriendshipRepo_PairUniqueness(t *testing.T) {
	db := newTestDB(t)
	userRepo := NewSQLiteUserRepo(db.Conn)
	repo := NewSQLiteFriendshipRepo(db.Conn)
	ctx := context.Background()

	alice := seedUser(t, userRepo, "alice")
	bob := seedUser(t, userRepo, "bob")

	require.NoError(t, repo.Create(ctx, &models.Friendship{
		RequesterID: alice.ID, AddresseeID: bob.ID, Status: models.FriendshipStatusPending,
	}))

	// Ters yönlü insert bile aynı pair_key'e çakışır — yarışan mutual
	// isteklerde kaybeden taraf buraya düşer
	err := repo.Create(ctx, &models.Friendship{
		RequesterID: bob.ID, AddresseeID: alice.ID, Status: models.FriendshipStatusPending,
	})
	assert.ErrorIs(t, err, pkg.ErrAlreadyExists)
}

func TestFriendshipRepo_UpdateStatus(t *testing.T) {
	db := newTestDB(t)
	userRepo := NewSQLiteUserRepo(db.Conn)
	repo := NewSQLiteFriendshipRepo(db.Conn)
	ctx := context.Background()

	alice := seedUser(t, userRepo, "alice")
	bob := seedUser(t, userRepo, "bob")

	f := &models.Friendship{RequesterID: alice.ID, AddresseeID: bob.ID, Status: models.FriendshipStatusPending}
	require.NoError(t, repo.Create(ctx, f))

	require.NoError(t, repo.UpdateStatus(ctx, f.ID, models.FriendshipStatusAccepted))

	got, err := repo.GetByPair(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FriendshipStatusAccepted, got.Status)

	assert.ErrorIs(t, repo.UpdateStatus(ctx, "missing", models.FriendshipStatusAccepted), pkg.ErrNotFound)
}

func TestFriendshipRepo_Reorient(t *testing.T) {
	db := newTestDB(t)
	userRepo := NewSQLiteUserRepo(db.Conn)
	repo := NewSQLiteFriendshipRepo(db.Conn)
	ctx := context.Background()

	alice := seedUser(t, userRepo, "alice")
	bob := seedUser(t, userRepo, "bob")

	// alice → bob accepted; bob alice'i engelliyor
	f := &models.Friendship{RequesterID: alice.ID, AddresseeID: bob.ID, Status: models.FriendshipStatusAccepted}
	require.NoError(t, repo.Create(ctx, f))

	require.NoError(t, repo.Reorient(ctx, f.ID, bob.ID, alice.ID, models.FriendshipStatusBlocked))

	got, err := repo.GetByPair(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, bob.ID, got.RequesterID, "blocker becomes requester")
	assert.Equal(t, models.FriendshipStatusBlocked, got.Status)
	assert.Equal(t, f.PairKey, got.PairKey, "pair_key is unchanged")
}

func TestFriendshipRepo_DeleteByPair(t *testing.T) {
	db := newTestDB(t)
	userRepo := NewSQLiteUserRepo(db.Conn)
	repo := NewSQLiteFriendshipRepo(db.Conn)
	ctx := context.Background()

	alice := seedUser(t, userRepo, "alice")
	bob := seedUser(t, userRepo, "bob")

	require.NoError(t, repo.Create(ctx, &models.Friendship{
		RequesterID: alice.ID, AddresseeID: bob.ID, Status: models.FriendshipStatusPending,
	}))

	// Yön fark etmez
	require.NoError(t, repo.DeleteByPair(ctx, bob.ID, alice.ID))

	_, err := repo.GetByPair(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, pkg.ErrNotFound)

	assert.ErrorIs(t, repo.DeleteByPair(ctx, alice.ID, bob.ID), pkg.ErrNotFound)
}

func TestFriendshipRepo_ListFriends_BothDirections(t *testing.T) {
	db := newTestDB(t)
	userRepo := NewSQLiteUserRepo(db.Conn)
	repo := NewSQLiteFriendshipRepo(db.Conn)
	ctx := context.Background()

	alice := seedUser(t, userRepo, "alice")
	bob := seedUser(t, userRepo, "bob")
	carol := seedUser(t, userRepo, "carol")

	// alice → bob (alice requester), carol → alice (alice addressee)
	require.NoError(t, repo.Create(ctx, &models.Friendship{
		RequesterID: alice.ID, AddresseeID: bob.ID, Status: models.FriendshipStatusAccepted,
	}))
	require.NoError(t, repo.Create(ctx, &models.Friendship{
		RequesterID: carol.ID, AddresseeID: alice.ID, Status: models.FriendshipStatusAccepted,
	}))

	friends, err := repo.ListFriends(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, friends, 2)

	// Her satırda KARŞI tarafın bilgisi döner
	names := []string{friends[0].Username, friends[1].Username}
	assert.ElementsMatch(t, []string{"bob", "carol"}, names)
}

func TestFriendshipRepo_ListIncomingOutgoing(t *testing.T) {
	db := newTestDB(t)
	userRepo := NewSQLiteUserRepo(db.Conn)
	repo := NewSQLiteFriendshipRepo(db.Conn)
	ctx := context.Background()

	alice := seedUser(t, userRepo, "alice")
	bob := seedUser(t, userRepo, "bob")
	carol := seedUser(t, userRepo, "carol")

	require.NoError(t, repo.Create(ctx, &models.Friendship{
		RequesterID: alice.ID, AddresseeID: bob.ID, Status: models.FriendshipStatusPending,
	}))
	require.NoError(t, repo.Create(ctx, &models.Friendship{
		RequesterID: carol.ID, AddresseeID: bob.ID, Status: models.FriendshipStatusPending,
	}))

	incoming, err := repo.ListIncoming(ctx, bob.ID)
	require.NoError(t, err)
	assert.Len(t, incoming, 2)

	outgoing, err := repo.ListOutgoing(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, outgoing, 1)
	assert.Equal(t, "bob", outgoing[0].Username)

	// Accepted kayıtlar pending listelerine karışmaz
	require.NoError(t, repo.UpdateStatus(ctx, incoming[0].ID, models.FriendshipStatusAccepted))
	incoming, err = repo.ListIncoming(ctx, bob.ID)
	require.NoError(t, err)
	assert.Len(t, incoming, 1)
}

func TestFriendshipRepo_ListBlocked(t *testing.T) {
	db := newTestDB(t)
	userRepo := NewSQLiteUserRepo(db.Conn)
	repo := NewSQLiteFriendshipRepo(db.Conn)
	ctx := context.Background()

	alice := seedUser(t, userRepo, "alice")
	bob := seedUser(t, userRepo, "bob")

	require.NoError(t, repo.Create(ctx, &models.Friendship{
		RequesterID: alice.ID, AddresseeID: bob.ID, Status: models.FriendshipStatusBlocked,
	}))

	// Sadece engeli koyan taraf listede görür
	blocked, err := repo.ListBlocked(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, blocked, 1)
	assert.Equal(t, "bob", blocked[0].Username)

	blocked, err = repo.ListBlocked(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, blocked)
}
