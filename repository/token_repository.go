// Package repository — OneTimeTokenRepository interface.
//
// Şifre sıfırlama ve e-posta doğrulama token'ları aynı şemayı paylaşır
// (user_id, token_hash, expires_at, used_at) — tek interface, tablo başına
// bir implementasyon instance'ı.
package repository

import (
	"context"

	"github.com/ekinaktas/klik/models"
)

// OneTimeTokenRepository, tek kullanımlık token veritabanı işlemleri için interface.
type OneTimeTokenRepository interface {
	// Create, yeni bir token kaydı oluşturur.
	Create(ctx context.Context, token *models.OneTimeToken) error

	// GetByTokenHash, SHA256 hash'e göre token kaydını bulur.
	// used_at dolu olsa bile kaydı döner — tek kullanımlık kontrolü çağıranın işi.
	// Bulunamazsa pkg.ErrNotFound döner.
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.OneTimeToken, error)

	// MarkUsed, token'ı harcanmış işaretler. Zaten harcanmışsa pkg.ErrNotFound
	// döner — yarışan iki redeem'den yalnızca biri kazanır.
	MarkUsed(ctx context.Context, id string) error

	// DeleteByUserID, bir kullanıcının TÜM token'larını siler.
	// Yeni token oluşturmadan önce eskileri geçersiz kılmak için.
	DeleteByUserID(ctx context.Context, userID string) error

	// DeleteExpired, süresi dolmuş token'ları temizler.
	// Her yeni istek sırasında "fırsat temizliği" olarak çağrılır —
	// ayrı bir cron job'a gerek kalmaz.
	DeleteExpired(ctx context.Context) error
}
