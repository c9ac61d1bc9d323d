package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/ekinaktas/klik/models"
	"github.com/ekinaktas/klik/pkg"
	"github.com/ekinaktas/klik/repository"
	"github.com/ekinaktas/klik/ws"
)

// FriendshipService interface'i — arkadaşlık state machine'i.
//
// Durumlar (sırasız çift başına): none (satır yok) → pending → accepted
// veya silinir (reject/cancel/unfriend hepsi aynı delete'e iner).
// blocked, pending/accepted geçişlerini tamamen bastırır.
//
// Yarış durumu: iki kullanıcı aynı anda birbirine istek gönderirse
// existence check ile insert arasında yarış olabilir. Bunu uygulama
// kilidi değil, pair_key üzerindeki UNIQUE constraint çözer — kaybeden
// taraf ErrAlreadyExists alır ve temiz şekilde başarısız olur.
type FriendshipService interface {
	// SendRequest, targetUsername'e arkadaşlık isteği gönderir.
	// Karşı tarafın bekleyen isteği varsa OTOMATİK kabul eder (mutual merge).
	SendRequest(ctx context.Context, requesterID, targetUsername string) (*models.Friendship, error)

	// AcceptRequest, requesterID'den gelen bekleyen isteği kabul eder.
	// Sadece isteğin MUHATABI kabul edebilir.
	AcceptRequest(ctx context.Context, userID, requesterID string) error

	// RemoveEdge, iki kullanıcı arasındaki pending/accepted kaydı siler.
	// Reject, cancel ve unfriend'in hepsi buraya iner — storage katmanı
	// bu üçünü ayırt etmez, fark sadece çağıranın niyetindedir.
	RemoveEdge(ctx context.Context, userID, otherUserID string) error

	// Block, otherUserID'yi engeller. Mevcut pending/accepted kayıt
	// engele dönüştürülür — engel her zaman mevcut ilişkiyi ezer.
	Block(ctx context.Context, userID, otherUserID string) error

	// Unblock, engeli kaldırır. Sadece engeli koyan taraf kaldırabilir.
	Unblock(ctx context.Context, userID, otherUserID string) error

	// StatusFor, viewer'a göre hesaplanmış ilişki durumunu döner.
	// Ham yönelim asla dışarı sızmaz.
	StatusFor(ctx context.Context, viewerID, otherUserID string) (models.RelationStatus, error)

	ListFriends(ctx context.Context, userID string) ([]models.FriendshipWithUser, error)
	ListIncoming(ctx context.Context, userID string) ([]models.FriendshipWithUser, error)
	ListOutgoing(ctx context.Context, userID string) ([]models.FriendshipWithUser, error)
	ListBlocked(ctx context.Context, userID string) ([]models.FriendshipWithUser, error)
}

// friendshipService, FriendshipService implementasyonu.
type friendshipService struct {
	friendshipRepo   repository.FriendshipRepository
	userRepo         repository.UserRepository
	notificationRepo repository.NotificationRepository
	hub              ws.EventPublisher
}

// NewFriendshipService, constructor.
func NewFriendshipService(
	friendshipRepo repository.FriendshipRepository,
	userRepo repository.UserRepository,
	notificationRepo repository.NotificationRepository,
	hub ws.EventPublisher,
) FriendshipService {
	return &friendshipService{
		friendshipRepo:   friendshipRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		hub:              hub,
	}
}

// SendRequest — state machine'in giriş noktası.
//
// Mevcut kayda göre davranış:
//   - kayıt yok        → pending oluştur, muhataba bildirim
//   - accepted         → ErrAlreadyExists (zaten arkadaşsınız)
//   - pending (benden) → ErrAlreadyExists (idempotent duplicate)
//   - pending (bana)   → AUTO-ACCEPT: karşı taraf zaten istemiş,
//     ikinci satır yaratmak yerine status accepted'a çevrilir
//   - blocked          → ErrBlocked (iki taraf için de)
func (s *friendshipService) SendRequest(ctx context.Context, requesterID, targetUsername string) (*models.Friendship, error) {
	target, err := s.userRepo.GetByUsername(ctx, targetUsername)
	if err != nil {
		return nil, err
	}

	if target.ID == requesterID {
		return nil, fmt.Errorf("%w: cannot send a friend request to yourself", pkg.ErrBadRequest)
	}

	existing, err := s.friendshipRepo.GetByPair(ctx, requesterID, target.ID)
	if err != nil && !errors.Is(err, pkg.ErrNotFound) {
		return nil, err
	}

	if existing != nil {
		switch existing.Status {
		case models.FriendshipStatusAccepted:
			return nil, fmt.Errorf("%w: already friends", pkg.ErrAlreadyExists)

		case models.FriendshipStatusBlocked:
			return nil, fmt.Errorf("%w: relationship is blocked", pkg.ErrBlocked)

		case models.FriendshipStatusPending:
			if existing.RequesterID == requesterID {
				return nil, fmt.Errorf("%w: request already pending", pkg.ErrAlreadyExists)
			}
			// Auto-accept: karşı taraf zaten bana istek göndermiş.
			// Karşılıklı iki isteğin kabule birleştirilmesi.
			if err := s.friendshipRepo.UpdateStatus(ctx, existing.ID, models.FriendshipStatusAccepted); err != nil {
				return nil, err
			}
			existing.Status = models.FriendshipStatusAccepted
			s.notify(ctx, existing.RequesterID, requesterID, models.NotificationFriendAccept, ws.OpFriendRequestAccept)
			return existing, nil
		}
	}

	friendship := &models.Friendship{
		RequesterID: requesterID,
		AddresseeID: target.ID,
		Status:      models.FriendshipStatusPending,
	}

	// Yarışan mutual istekte kaybeden taraf burada ErrAlreadyExists alır —
	// UNIQUE(pair_key) sayesinde çift için asla iki satır oluşmaz.
	if err := s.friendshipRepo.Create(ctx, friendship); err != nil {
		return nil, err
	}

	s.notify(ctx, target.ID, requesterID, models.NotificationFriendRequest, ws.OpFriendRequestCreate)
	return friendship, nil
}

func (s *friendshipService) AcceptRequest(ctx context.Context, userID, requesterID string) error {
	existing, err := s.friendshipRepo.GetByPair(ctx, userID, requesterID)
	if err != nil {
		return err
	}

	if existing.Status != models.FriendshipStatusPending {
		return fmt.Errorf("%w: no pending request to accept", pkg.ErrBadRequest)
	}

	// Sadece muhatap kabul edebilir — kendi gönderdiğin isteği
	// "kabul etmek" anlamsızdır.
	if existing.AddresseeID != userID {
		return fmt.Errorf("%w: only the addressee can accept a request", pkg.ErrForbidden)
	}

	if err := s.friendshipRepo.UpdateStatus(ctx, existing.ID, models.FriendshipStatusAccepted); err != nil {
		return err
	}

	s.notify(ctx, existing.RequesterID, userID, models.NotificationFriendAccept, ws.OpFriendRequestAccept)
	return nil
}

func (s *friendshipService) RemoveEdge(ctx context.Context, userID, otherUserID string) error {
	existing, err := s.friendshipRepo.GetByPair(ctx, userID, otherUserID)
	if err != nil {
		return err
	}

	// Engel kaydı bu yoldan silinemez — Unblock ayrı bir operasyondur
	// ve sadece engeli koyan taraf çağırabilir.
	if existing.Status == models.FriendshipStatusBlocked {
		return fmt.Errorf("%w: relationship is blocked", pkg.ErrBlocked)
	}

	if err := s.friendshipRepo.DeleteByPair(ctx, userID, otherUserID); err != nil {
		return err
	}

	// Silme işlemleri kalıcı bildirim üretmez — karşı tarafa sadece
	// anlık arayüz güncellemesi için WS event gider (liste tazeleme).
	s.hub.BroadcastToUser(otherUserID, ws.Event{Op: ws.OpFriendRemove, Data: ws.FriendEventData{ActorID: userID}})
	return nil
}

// Block — mevcut ilişki ne olursa olsun engel her şeyi ezer.
// Kayıt varsa aynı satır yeniden yönlendirilir (requester = engeli koyan);
// yoksa doğrudan blocked satır yaratılır.
func (s *friendshipService) Block(ctx context.Context, userID, otherUserID string) error {
	if userID == otherUserID {
		return fmt.Errorf("%w: cannot block yourself", pkg.ErrBadRequest)
	}

	// Hedefin varlığını doğrula — olmayan kullanıcıyı engellemek 404'tür.
	if _, err := s.userRepo.GetByID(ctx, otherUserID); err != nil {
		return err
	}

	existing, err := s.friendshipRepo.GetByPair(ctx, userID, otherUserID)
	if err != nil && !errors.Is(err, pkg.ErrNotFound) {
		return err
	}

	if existing != nil {
		if existing.Status == models.FriendshipStatusBlocked {
			if existing.RequesterID == userID {
				return fmt.Errorf("%w: already blocked", pkg.ErrAlreadyExists)
			}
			// Karşı taraf beni zaten engellemiş — satır çifti kilitliyor.
			return fmt.Errorf("%w: relationship is blocked", pkg.ErrBlocked)
		}
		return s.friendshipRepo.Reorient(ctx, existing.ID, userID, otherUserID, models.FriendshipStatusBlocked)
	}

	friendship := &models.Friendship{
		RequesterID: userID,
		AddresseeID: otherUserID,
		Status:      models.FriendshipStatusBlocked,
	}
	return s.friendshipRepo.Create(ctx, friendship)
}

func (s *friendshipService) Unblock(ctx context.Context, userID, otherUserID string) error {
	existing, err := s.friendshipRepo.GetByPair(ctx, userID, otherUserID)
	if err != nil {
		return err
	}

	if existing.Status != models.FriendshipStatusBlocked {
		return fmt.Errorf("%w: user is not blocked", pkg.ErrBadRequest)
	}
	if existing.RequesterID != userID {
		// Engeli koyan ben değilim — engelin varlığını da ifşa etme.
		return fmt.Errorf("%w: no relationship between users", pkg.ErrNotFound)
	}

	// Engel kalkınca ilişki none'a döner — eski arkadaşlık geri gelmez.
	return s.friendshipRepo.DeleteByPair(ctx, userID, otherUserID)
}

func (s *friendshipService) StatusFor(ctx context.Context, viewerID, otherUserID string) (models.RelationStatus, error) {
	existing, err := s.friendshipRepo.GetByPair(ctx, viewerID, otherUserID)
	if errors.Is(err, pkg.ErrNotFound) {
		return models.RelationNone, nil
	}
	if err != nil {
		return models.RelationNone, err
	}
	return existing.RelationTo(viewerID), nil
}

func (s *friendshipService) ListFriends(ctx context.Context, userID string) ([]models.FriendshipWithUser, error) {
	return s.friendshipRepo.ListFriends(ctx, userID)
}

func (s *friendshipService) ListIncoming(ctx context.Context, userID string) ([]models.FriendshipWithUser, error) {
	return s.friendshipRepo.ListIncoming(ctx, userID)
}

func (s *friendshipService) ListOutgoing(ctx context.Context, userID string) ([]models.FriendshipWithUser, error) {
	return s.friendshipRepo.ListOutgoing(ctx, userID)
}

func (s *friendshipService) ListBlocked(ctx context.Context, userID string) ([]models.FriendshipWithUser, error) {
	return s.friendshipRepo.ListBlocked(ctx, userID)
}

// notify, muhataba kalıcı bildirim + WS push gönderir.
// Fire-and-forget: bildirim yazılamazsa ana operasyon GERİ ALINMAZ —
// arkadaşlık geçişi bildirimden daha önemlidir, hata sadece loglanır.
func (s *friendshipService) notify(ctx context.Context, recipientID, actorID string, kind models.NotificationKind, op string) {
	notification := &models.Notification{
		UserID:  recipientID,
		ActorID: actorID,
		Kind:    kind,
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		log.Printf("[friendship] failed to persist notification: %v", err)
	}

	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		log.Printf("[friendship] failed to load actor for ws push: %v", err)
		s.hub.BroadcastToUser(recipientID, ws.Event{Op: op, Data: ws.FriendEventData{ActorID: actorID}})
		return
	}

	s.hub.BroadcastToUser(recipientID, ws.Event{
		Op: op,
		Data: ws.FriendEventData{
			ActorID:       actorID,
			ActorUsername: actor.Username,
			ActorAvatar:   actor.AvatarURL,
		},
	})
}
