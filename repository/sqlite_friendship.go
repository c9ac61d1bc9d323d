// Package repository — FriendshipRepository SQLite implementasyonu.
//
// Arkadaşlık tablosu sırasız çift başına TEK satır tutar; satırın yönü
// (requester_id → addressee_id) pending'de kimin istek gönderdiğini,
// blocked'da kimin engeli koyduğunu söyler.
//
// JOIN ile kullanıcı bilgileri (username, display_name, avatar) eklenip
// FriendshipWithUser DTO'su oluşturulur.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ekinaktas/klik/database"
	"github.com/ekinaktas/klik/models"
	"github.com/ekinaktas/klik/pkg"
)

// sqliteFriendshipRepo, FriendshipRepository'nin SQLite implementasyonu.
// Private struct — dışarıdan sadece interface üzerinden erişilir.
type sqliteFriendshipRepo struct {
	db database.TxQuerier
}

// NewSQLiteFriendshipRepo, constructor. Dependency injection ile DB bağlantısı alır.
func NewSQLiteFriendshipRepo(db database.TxQuerier) FriendshipRepository {
	return &sqliteFriendshipRepo{db: db}
}

func (r *sqliteFriendshipRepo) Create(ctx context.Context, f *models.Friendship) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	f.PairKey = models.PairKey(f.RequesterID, f.AddresseeID)

	query := `INSERT INTO friendships (id, requester_id, addressee_id, pair_key, status)
	          VALUES (?, ?, ?, ?, ?)
	          RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		f.ID, f.RequesterID, f.AddresseeID, f.PairKey, f.Status,
	).Scan(&f.CreatedAt, &f.UpdatedAt)

	if err != nil {
		// pair_key UNIQUE → bu çift için zaten bir kayıt var.
		// Yarışan iki sendRequest'ten kaybeden buraya düşer.
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: relationship already exists", pkg.ErrAlreadyExists)
		}
		return fmt.Errorf("friendship create: %w", err)
	}
	return nil
}

func (r *sqliteFriendshipRepo) GetByPair(ctx context.Context, userA, userB string) (*models.Friendship, error) {
	query := `SELECT id, requester_id, addressee_id, pair_key, status, created_at, updated_at
	          FROM friendships WHERE pair_key = ?`

	var f models.Friendship
	err := r.db.QueryRowContext(ctx, query, models.PairKey(userA, userB)).Scan(
		&f.ID, &f.RequesterID, &f.AddresseeID, &f.PairKey, &f.Status, &f.CreatedAt, &f.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no relationship between users", pkg.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("friendship get by pair: %w", err)
	}
	return &f, nil
}

func (r *sqliteFriendshipRepo) UpdateStatus(ctx context.Context, id string, status models.FriendshipStatus) error {
	query := `UPDATE friendships SET status = ?, updated_at = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("friendship update status: %w", err)
	}
	return checkAffected(result, fmt.Errorf("%w: friendship %s", pkg.ErrNotFound, id))
}

// Reorient, yön + durum güncellemesi. Block akışında mevcut kayıt
// silinip yeniden yaratılmaz — aynı satır engeli koyan tarafa çevrilir,
// pair_key değişmediği için UNIQUE invariant'ı bozulmaz.
func (r *sqliteFriendshipRepo) Reorient(ctx context.Context, id string, requesterID, addresseeID string, status models.FriendshipStatus) error {
	query := `UPDATE friendships
	          SET requester_id = ?, addressee_id = ?, status = ?, updated_at = ?
	          WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, requesterID, addresseeID, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("friendship reorient: %w", err)
	}
	return checkAffected(result, fmt.Errorf("%w: friendship %s", pkg.ErrNotFound, id))
}

func (r *sqliteFriendshipRepo) DeleteByPair(ctx context.Context, userA, userB string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM friendships WHERE pair_key = ?`, models.PairKey(userA, userB))
	if err != nil {
		return fmt.Errorf("friendship delete by pair: %w", err)
	}
	return checkAffected(result, fmt.Errorf("%w: no relationship between users", pkg.ErrNotFound))
}

// ListFriends, kabul edilmiş arkadaşları döner.
//
// UNION sorgusu:
// 1) requester_id = me → addressee bilgileri
// 2) addressee_id = me → requester bilgileri
func (r *sqliteFriendshipRepo) ListFriends(ctx context.Context, userID string) ([]models.FriendshipWithUser, error) {
	query := `
		SELECT f.id, f.status, f.created_at AS created_at,
		       u.id, u.username, u.display_name, u.avatar_url
		FROM friendships f
		JOIN users u ON u.id = f.addressee_id
		WHERE f.requester_id = ? AND f.status = 'accepted'

		UNION

		SELECT f.id, f.status, f.created_at AS created_at,
		       u.id, u.username, u.display_name, u.avatar_url
		FROM friendships f
		JOIN users u ON u.id = f.requester_id
		WHERE f.addressee_id = ? AND f.status = 'accepted'

		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("friendship list friends: %w", err)
	}
	defer rows.Close()

	return scanFriendshipRows(rows)
}

// ListIncoming, gelen bekleyen istekleri döner.
// addressee_id = me AND status = 'pending' — gönderen bilgisi JOIN ile gelir.
func (r *sqliteFriendshipRepo) ListIncoming(ctx context.Context, userID string) ([]models.FriendshipWithUser, error) {
	query := `
		SELECT f.id, f.status, f.created_at,
		       u.id, u.username, u.display_name, u.avatar_url
		FROM friendships f
		JOIN users u ON u.id = f.requester_id
		WHERE f.addressee_id = ? AND f.status = 'pending'
		ORDER BY f.created_at DESC
	`

	return r.listWithUser(ctx, query, userID)
}

// ListOutgoing, gönderilen bekleyen istekleri döner.
// requester_id = me AND status = 'pending' — hedef kullanıcı bilgisi JOIN ile gelir.
func (r *sqliteFriendshipRepo) ListOutgoing(ctx context.Context, userID string) ([]models.FriendshipWithUser, error) {
	query := `
		SELECT f.id, f.status, f.created_at,
		       u.id, u.username, u.display_name, u.avatar_url
		FROM friendships f
		JOIN users u ON u.id = f.addressee_id
		WHERE f.requester_id = ? AND f.status = 'pending'
		ORDER BY f.created_at DESC
	`

	return r.listWithUser(ctx, query, userID)
}

// ListBlocked, kullanıcının engellediği kullanıcıları döner.
// Blocked kayıtta requester_id her zaman engeli koyan taraftır.
func (r *sqliteFriendshipRepo) ListBlocked(ctx context.Context, userID string) ([]models.FriendshipWithUser, error) {
	query := `
		SELECT f.id, f.status, f.created_at,
		       u.id, u.username, u.display_name, u.avatar_url
		FROM friendships f
		JOIN users u ON u.id = f.addressee_id
		WHERE f.requester_id = ? AND f.status = 'blocked'
		ORDER BY f.created_at DESC
	`

	return r.listWithUser(ctx, query, userID)
}

// listWithUser, tek parametreli liste sorgularının ortak yürütme mantığı.
func (r *sqliteFriendshipRepo) listWithUser(ctx context.Context, query string, userID string) ([]models.FriendshipWithUser, error) {
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("friendship list: %w", err)
	}
	defer rows.Close()

	return scanFriendshipRows(rows)
}

// scanFriendshipRows, ortak scan mantığı — tüm liste sorguları aynı column
// set'ini döner.
func scanFriendshipRows(rows *sql.Rows) ([]models.FriendshipWithUser, error) {
	results := []models.FriendshipWithUser{}
	for rows.Next() {
		var fw models.FriendshipWithUser
		if err := rows.Scan(
			&fw.ID, &fw.Status, &fw.CreatedAt,
			&fw.UserID, &fw.Username, &fw.DisplayName, &fw.AvatarURL,
		); err != nil {
			return nil, fmt.Errorf("friendship list scan: %w", err)
		}
		results = append(results, fw)
	}
	return results, rows.Err()
}
