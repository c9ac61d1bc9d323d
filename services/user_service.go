package services

import (
	"context"
	"fmt"
	"log"

	"github.com/ekinaktas/klik/models"
	"github.com/ekinaktas/klik/pkg"
	"github.com/ekinaktas/klik/repository"
	"github.com/ekinaktas/klik/ws"
)

// PublicProfile, başka bir kullanıcıya gösterilen profil görünümü.
// Email gibi özel alanlar taşınmaz; ilişki durumu viewer'a göre hesaplanır.
type PublicProfile struct {
	ID          string                `json:"id"`
	Username    string                `json:"username"`
	DisplayName *string               `json:"display_name"`
	AvatarURL   *string               `json:"avatar_url"`
	Relation    models.RelationStatus `json:"relation"`
}

// UserService interface'i — profil okuma/yazma.
type UserService interface {
	// GetMe, oturum sahibinin tam profilini döner.
	GetMe(ctx context.Context, userID string) (*models.User, error)

	// GetPublicProfile, username ile profil döner; ilişki durumu
	// viewer'a göre hesaplanır.
	GetPublicProfile(ctx context.Context, viewerID, username string) (*PublicProfile, error)

	// UpdateProfile, display_name / avatar_url günceller.
	// Snapshot cache'i DÜŞÜRÜLÜR ve arkadaşlara profile_update push'lanır.
	UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.User, error)
}

// userService, UserService implementasyonu.
type userService struct {
	userRepo       repository.UserRepository
	friendshipRepo repository.FriendshipRepository
	friendships    FriendshipService
	sessions       SessionService
	hub            ws.EventPublisher
}

// NewUserService, constructor.
func NewUserService(
	userRepo repository.UserRepository,
	friendshipRepo repository.FriendshipRepository,
	friendships FriendshipService,
	sessions SessionService,
	hub ws.EventPublisher,
) UserService {
	return &userService{
		userRepo:       userRepo,
		friendshipRepo: friendshipRepo,
		friendships:    friendships,
		sessions:       sessions,
		hub:            hub,
	}
}

func (s *userService) GetMe(ctx context.Context, userID string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *userService) GetPublicProfile(ctx context.Context, viewerID, username string) (*PublicProfile, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	relation := models.RelationNone
	if user.ID != viewerID {
		relation, err = s.friendships.StatusFor(ctx, viewerID, user.ID)
		if err != nil {
			return nil, err
		}
	}

	return &PublicProfile{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		AvatarURL:   user.AvatarURL,
		Relation:    relation,
	}, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// nil field = "değiştirme" — sadece gönderilen alanlar yazılır.
	if req.DisplayName != nil {
		if *req.DisplayName == "" {
			user.DisplayName = nil
		} else {
			user.DisplayName = req.DisplayName
		}
	}
	if req.AvatarURL != nil {
		if *req.AvatarURL == "" {
			user.AvatarURL = nil
		} else {
			user.AvatarURL = req.AvatarURL
		}
	}

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}

	// Truth değişti → snapshot cache'i MUTLAKA düşür. Cache kendi
	// kendine tazelenmez; bayat snapshot bir sonraki TTL'e kadar yaşardı.
	s.sessions.InvalidateUserSnapshot(ctx, userID)

	// Arkadaşlara anlık bildir — liste görünümleri güncellensin.
	s.pushProfileUpdate(ctx, user)

	return user, nil
}

// pushProfileUpdate, güncellenen profili kullanıcının arkadaşlarına push'lar.
// Best-effort: arkadaş listesi okunamazsa push atlanır.
func (s *userService) pushProfileUpdate(ctx context.Context, user *models.User) {
	friends, err := s.friendshipRepo.ListFriends(ctx, user.ID)
	if err != nil {
		log.Printf("[user] failed to list friends for profile push: %v", err)
		return
	}

	ids := make([]string, 0, len(friends))
	for _, f := range friends {
		ids = append(ids, f.UserID)
	}

	s.hub.BroadcastToUsers(ids, ws.Event{
		Op: ws.OpProfileUpdate,
		Data: ws.ProfileUpdateData{
			UserID:      user.ID,
			Username:    user.Username,
			DisplayName: user.DisplayName,
			AvatarURL:   user.AvatarURL,
		},
	})
}
