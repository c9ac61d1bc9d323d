package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ekinaktas/klik/database"
	"github.com/ekinaktas/klik/models"
	"github.com/ekinaktas/klik/pkg"
)

// sqliteUserRepo, UserRepository interface'inin SQLite implementasyonu.
//
// Go'da struct field'ları küçük harfle başlarsa (db) → private.
// Repository'nin DB bağlantısı dışarıya açık olmamalı — bu yüzden küçük harf.
type sqliteUserRepo struct {
	db database.TxQuerier
}

// NewSQLiteUserRepo, constructor fonksiyonu.
// UserRepository interface'i döner (concrete struct değil) — Dependency Inversion.
// TxQuerier kabul eder: hem *sql.DB hem *sql.Tx geçilebilir, böylece aynı
// repo kodu transaction içinde de kullanılır.
func NewSQLiteUserRepo(db database.TxQuerier) UserRepository {
	return &sqliteUserRepo{db: db}
}

const userColumns = `id, username, email, display_name, avatar_url, password_hash, is_verified, created_at, updated_at`

func (r *sqliteUserRepo) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	query := `
		INSERT INTO users (id, username, email, display_name, avatar_url, password_hash, is_verified)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.DisplayName,
		user.AvatarURL,
		user.PasswordHash,
		user.IsVerified,
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		// UNIQUE constraint violation → kullanıcı adı veya email zaten var
		if isUniqueViolation(err) {
			if strings.Contains(err.Error(), "idx_users_email") {
				return fmt.Errorf("%w: email already in use", pkg.ErrAlreadyExists)
			}
			return fmt.Errorf("%w: username already taken", pkg.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *sqliteUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *sqliteUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	// users.username COLLATE NOCASE — karşılaştırma case-insensitive.
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ?`
	return r.scanUser(r.db.QueryRowContext(ctx, query, username))
}

func (r *sqliteUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *sqliteUserRepo) UpdateProfile(ctx context.Context, user *models.User) error {
	query := `UPDATE users SET display_name = ?, avatar_url = ?, updated_at = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		user.DisplayName, user.AvatarURL, time.Now().UTC(), user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user profile: %w", err)
	}
	return checkAffected(result, pkg.ErrNotFound)
}

func (r *sqliteUserRepo) UpdatePassword(ctx context.Context, userID string, newPasswordHash string) error {
	query := `UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, newPasswordHash, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return checkAffected(result, pkg.ErrNotFound)
}

func (r *sqliteUserRepo) MarkVerified(ctx context.Context, userID string) error {
	query := `UPDATE users SET is_verified = 1, updated_at = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to mark user verified: %w", err)
	}
	return checkAffected(result, pkg.ErrNotFound)
}

// scanUser, tek satırlık user sorgularının ortak scan mantığı.
func (r *sqliteUserRepo) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.DisplayName, &user.AvatarURL,
		&user.PasswordHash, &user.IsVerified, &user.CreatedAt, &user.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	return user, nil
}

// isUniqueViolation, SQLite UNIQUE constraint hatasını tespit eder.
// modernc.org/sqlite typed error export etmez — string kontrolü gerekir.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// checkAffected, UPDATE/DELETE sonrası etkilenen satır sayısını kontrol eder.
// 0 satır etkilendiyse notFound hatası döner.
func checkAffected(result sql.Result, notFound error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return notFound
	}
	return nil
}
