package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ekinaktas/klik/database"
	"github.com/ekinaktas/klik/models"
	"github.com/ekinaktas/klik/pkg"
)

// sqliteNotificationRepo, NotificationRepository'nin SQLite implementasyonu.
type sqliteNotificationRepo struct {
	db database.TxQuerier
}

// NewSQLiteNotificationRepo, constructor.
func NewSQLiteNotificationRepo(db database.TxQuerier) NotificationRepository {
	return &sqliteNotificationRepo{db: db}
}

func (r *sqliteNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}

	query := `INSERT INTO notifications (id, user_id, kind, actor_id)
		VALUES (?, ?, ?, ?)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query, n.ID, n.UserID, n.Kind, n.ActorID).Scan(&n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *sqliteNotificationRepo) ListByUserID(ctx context.Context, userID string, limit int) ([]models.NotificationWithActor, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := `
		SELECT n.id, n.kind, n.read_at, n.created_at,
		       u.id, u.username, u.avatar_url
		FROM notifications n
		JOIN users u ON u.id = n.actor_id
		WHERE n.user_id = ?
		ORDER BY n.created_at DESC
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	results := []models.NotificationWithActor{}
	for rows.Next() {
		var n models.NotificationWithActor
		if err := rows.Scan(
			&n.ID, &n.Kind, &n.ReadAt, &n.CreatedAt,
			&n.ActorID, &n.ActorUsername, &n.ActorAvatar,
		); err != nil {
			return nil, fmt.Errorf("failed to scan notification row: %w", err)
		}
		results = append(results, n)
	}

	return results, rows.Err()
}

func (r *sqliteNotificationRepo) MarkRead(ctx context.Context, id, userID string) error {
	// user_id koşulu: başkasının bildirimini okundu işaretlemek mümkün olmamalı.
	query := `UPDATE notifications SET read_at = ? WHERE id = ? AND user_id = ? AND read_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return checkAffected(result, pkg.ErrNotFound)
}

func (r *sqliteNotificationRepo) MarkAllRead(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read_at = ? WHERE user_id = ? AND read_at IS NULL`,
		time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}
