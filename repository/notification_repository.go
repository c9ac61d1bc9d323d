package repository

import (
	"context"

	"github.com/ekinaktas/klik/models"
)

// NotificationRepository, bildirim veritabanı işlemleri için interface.
type NotificationRepository interface {
	// Create, yeni bir bildirim kaydı oluşturur.
	Create(ctx context.Context, n *models.Notification) error

	// ListByUserID, kullanıcının bildirimlerini aktör bilgisiyle döner (yeni → eski).
	ListByUserID(ctx context.Context, userID string, limit int) ([]models.NotificationWithActor, error)

	// MarkRead, tek bir bildirimi okundu işaretler.
	// Bildirim başka kullanıcıya aitse pkg.ErrNotFound döner.
	MarkRead(ctx context.Context, id, userID string) error

	// MarkAllRead, kullanıcının tüm bildirimlerini okundu işaretler.
	MarkAllRead(ctx context.Context, userID string) error
}
