package services

import (
	"context"

	"github.com/ekinaktas/klik/models"
	"github.com/ekinaktas/klik/repository"
)

// NotificationService interface'i — bildirim okuma işlemleri.
// Bildirim ÜRETİMİ burada değildir: friendship service kendi geçişlerinde
// doğrudan repository'ye yazar, bu service sadece okuma/işaretleme sunar.
type NotificationService interface {
	// List, kullanıcının bildirimlerini aktör bilgisiyle döner (yeni → eski).
	List(ctx context.Context, userID string, limit int) ([]models.NotificationWithActor, error)

	// MarkRead, tek bir bildirimi okundu işaretler.
	MarkRead(ctx context.Context, userID, notificationID string) error

	// MarkAllRead, kullanıcının tüm bildirimlerini okundu işaretler.
	MarkAllRead(ctx context.Context, userID string) error
}

// notificationService, NotificationService implementasyonu.
type notificationService struct {
	notificationRepo repository.NotificationRepository
}

// NewNotificationService, constructor.
func NewNotificationService(notificationRepo repository.NotificationRepository) NotificationService {
	return &notificationService{notificationRepo: notificationRepo}
}

func (s *notificationService) List(ctx context.Context, userID string, limit int) ([]models.NotificationWithActor, error) {
	return s.notificationRepo.ListByUserID(ctx, userID, limit)
}

func (s *notificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	return s.notificationRepo.MarkRead(ctx, notificationID, userID)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) error {
	return s.notificationRepo.MarkAllRead(ctx, userID)
}
