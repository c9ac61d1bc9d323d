// Package repository — OneTimeTokenRepository'nin SQLite implementasyonu.
//
// Token plaintext olarak SAKLANMAZ — sadece SHA256 hash saklanır.
// Aynı implementasyon iki tabloya hizmet eder: password_reset_tokens
// ve email_verification_tokens.
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

// sqliteTokenRepo, OneTimeTokenRepository'nin SQLite implementasyonu.
// table field'ı hangi tabloya yazılacağını belirler — SQL injection riski yok,
// değer yalnızca aşağıdaki iki constructor'dan gelir.
type sqliteTokenRepo struct {
	db    database.TxQuerier
	table string
}

// NewSQLitePasswordResetRepo, şifre sıfırlama token repository'si.
func NewSQLitePasswordResetRepo(db database.TxQuerier) OneTimeTokenRepository {
	return &sqliteTokenRepo{db: db, table: "password_reset_tokens"}
}

// NewSQLiteEmailVerificationRepo, e-posta doğrulama token repository'si.
func NewSQLiteEmailVerificationRepo(db database.TxQuerier) OneTimeTokenRepository {
	return &sqliteTokenRepo{db: db, table: "email_verification_tokens"}
}

func (r *sqliteTokenRepo) Create(ctx context.Context, token *models.OneTimeToken) error {
	if token.ID == "" {
		token.ID = uuid.NewString()
	}

	query := `INSERT INTO ` + r.table + ` (id, user_id, token_hash, expires_at)
		VALUES (?, ?, ?, ?)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		token.ID, token.UserID, token.TokenHash, token.ExpiresAt,
	).Scan(&token.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create token: %w", err)
	}
	return nil
}

func (r *sqliteTokenRepo) GetByTokenHash(ctx context.Context, tokenHash string) (*models.OneTimeToken, error) {
	query := `SELECT id, user_id, token_hash, expires_at, used_at, created_at
		FROM ` + r.table + ` WHERE token_hash = ?`

	token := &models.OneTimeToken{}
	err := r.db.QueryRowContext(ctx, query, tokenHash).Scan(
		&token.ID, &token.UserID, &token.TokenHash, &token.ExpiresAt, &token.UsedAt, &token.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get token by hash: %w", err)
	}

	return token, nil
}

// MarkUsed — WHERE used_at IS NULL koşulu sayesinde atomik: aynı token'ı
// iki istek aynı anda redeem etmeye çalışırsa yalnızca biri satırı etkiler,
// diğeri pkg.ErrNotFound alır.
func (r *sqliteTokenRepo) MarkUsed(ctx context.Context, id string) error {
	query := `UPDATE ` + r.table + ` SET used_at = ? WHERE id = ? AND used_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to mark token used: %w", err)
	}
	return checkAffected(result, pkg.ErrNotFound)
}

func (r *sqliteTokenRepo) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM `+r.table+` WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user tokens: %w", err)
	}
	return nil
}

func (r *sqliteTokenRepo) DeleteExpired(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM `+r.table+` WHERE expires_at < CURRENT_TIMESTAMP`)
	if err != nil {
		return fmt.Errorf("failed to delete expired tokens: %w", err)
	}
	return nil
}
