// Package repository — FriendshipRepository interface.
//
// Arkadaşlık sistemi için CRUD soyutlaması.
//
// Sorgu mantığı:
// - Çift lookup'ları pair_key üzerinden yapılır — yön (kim requester) fark etmez.
// - "Accepted" arkadaşlar: requester_id = me OR addressee_id = me (çift yönlü)
// - Gelen istekler: addressee_id = me AND status = 'pending'
// - Giden istekler: requester_id = me AND status = 'pending'
package repository

import (
	"context"

	"github.com/ekinaktas/klik/models"
)

// FriendshipRepository, arkadaşlık veritabanı işlemleri için interface.
type FriendshipRepository interface {
	// Create, yeni bir arkadaşlık kaydı oluşturur.
	// pair_key UNIQUE index'i sayesinde aynı çift için ikinci kayıt
	// pkg.ErrAlreadyExists ile reddedilir — yarışan istekler burada çözülür.
	Create(ctx context.Context, friendship *models.Friendship) error

	// GetByPair, iki kullanıcı arasındaki kaydı döner (yön fark etmez).
	// Bulunamazsa pkg.ErrNotFound.
	GetByPair(ctx context.Context, userA, userB string) (*models.Friendship, error)

	// UpdateStatus, kaydın durumunu günceller (pending → accepted vb.).
	UpdateStatus(ctx context.Context, id string, status models.FriendshipStatus) error

	// Reorient, kaydın yönünü ve durumunu birlikte günceller.
	// Block, mevcut kaydın requester'ını engeli koyan tarafa çevirir.
	Reorient(ctx context.Context, id string, requesterID, addresseeID string, status models.FriendshipStatus) error

	// DeleteByPair, iki kullanıcı arasındaki kaydı siler (yön fark etmez).
	DeleteByPair(ctx context.Context, userA, userB string) error

	// ListFriends, kullanıcının kabul edilmiş arkadaşlarını kullanıcı bilgisiyle döner.
	ListFriends(ctx context.Context, userID string) ([]models.FriendshipWithUser, error)

	// ListIncoming, kullanıcıya gelen bekleyen istekleri döner.
	ListIncoming(ctx context.Context, userID string) ([]models.FriendshipWithUser, error)

	// ListOutgoing, kullanıcının gönderdiği bekleyen istekleri döner.
	ListOutgoing(ctx context.Context, userID string) ([]models.FriendshipWithUser, error)

	// ListBlocked, kullanıcının engellediği kullanıcıları döner.
	ListBlocked(ctx context.Context, userID string) ([]models.FriendshipWithUser, error)
}
