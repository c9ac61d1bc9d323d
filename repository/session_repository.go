package repository

import (
	"context"
	"time"

	"github.com/ekinaktas/klik/models"
)

// SessionRepository, kalıcı (durable) session store için interface.
//
// Session geçerliliğinde OTORİTE bu katmandır — cache tier yalnızca
// buradaki kaydın TTL sınırlı bir projeksiyonudur. Cache düşse bile
// buradaki kayıtlar ayakta kaldığı sürece oturumlar yaşamaya devam eder.
type SessionRepository interface {
	// Create, yeni bir session kaydı oluşturur. session.ID token'ın kendisidir.
	Create(ctx context.Context, session *models.Session) error

	// GetByToken, token ile session kaydı döner. Bulunamazsa pkg.ErrNotFound.
	// Süresi dolmuş kayıtları da döner — expiry kontrolü çağıranın işi.
	GetByToken(ctx context.Context, token string) (*models.Session, error)

	// ExtendExpiry, session'ın son kullanma tarihini ileri alır (sliding expiry).
	ExtendExpiry(ctx context.Context, token string, expiresAt time.Time) error

	// ListByUserID, kullanıcının tüm session'larını döner.
	// Global invalidation öncesi cache key'lerini bulmak için kullanılır.
	ListByUserID(ctx context.Context, userID string) ([]models.Session, error)

	// DeleteByToken, tek bir session'ı siler (logout).
	DeleteByToken(ctx context.Context, token string) error

	// DeleteByUserID, kullanıcının TÜM session'larını siler.
	// Şifre sıfırlama sonrası global oturum kapatma için.
	DeleteByUserID(ctx context.Context, userID string) error

	// DeleteExpired, süresi dolmuş session'ları temizler (fırsat temizliği).
	DeleteExpired(ctx context.Context) error
}
