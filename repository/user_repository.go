// Package repository — UserRepository interface.
//
// Service katmanı bu interface'e bağımlıdır, SQLite implementasyonuna değil.
// Interface Segregation: her aggregate'in kendi repository interface'i var.
package repository

import (
	"context"

	"github.com/ekinaktas/klik/models"
)

// UserRepository, kullanıcı veritabanı işlemleri için interface.
type UserRepository interface {
	// Create, yeni kullanıcı kaydı oluşturur.
	// Username veya email çakışırsa pkg.ErrAlreadyExists döner.
	Create(ctx context.Context, user *models.User) error

	// GetByID, ID ile kullanıcı döner. Bulunamazsa pkg.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// GetByUsername, kullanıcı adı ile kullanıcı döner (case-insensitive).
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// GetByEmail, email ile kullanıcı döner (case-insensitive).
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// UpdateProfile, display_name ve avatar_url alanlarını günceller.
	UpdateProfile(ctx context.Context, user *models.User) error

	// UpdatePassword, kullanıcının şifre hash'ini günceller.
	UpdatePassword(ctx context.Context, userID string, newPasswordHash string) error

	// MarkVerified, kullanıcının email doğrulamasını işaretler.
	MarkVerified(ctx context.Context, userID string) error
}
