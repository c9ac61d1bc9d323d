// Package main — Service katmanı başlatma.
//
// initServices, tüm service implementasyonlarını oluşturur.
// Her service, ihtiyaç duyduğu repository interface'lerini ve diğer
// dependency'leri constructor injection ile alır.
//
// Sıralama kuralı: SessionService diğer her şeyden ÖNCE — hem AuthService
// hem UserService hem de WebSocket handler ona bağımlıdır.
package main

import (
	"log"
	"time"

	"github.com/ekinaktas/klik/config"
	"github.com/ekinaktas/klik/database"
	"github.com/ekinaktas/klik/pkg/cache"
	"github.com/ekinaktas/klik/pkg/email"
	"github.com/ekinaktas/klik/pkg/ratelimit"
	"github.com/ekinaktas/klik/services"
	"github.com/ekinaktas/klik/ws"
)

// Services, tüm service instance'larını tutan container struct.
type Services struct {
	Session      services.SessionService
	Auth         services.AuthService
	Friendship   services.FriendshipService
	User         services.UserService
	Notification services.NotificationService
}

// initServices, tüm service'leri ve paylaşılan rate limiter'ı oluşturur.
//
// db doğrudan AuthService'e gider (şifre sıfırlama transaction'ı için),
// store hem session cache'i hem rate limiter sayaçları için paylaşılır.
func initServices(
	db *database.DB,
	repos *Repositories,
	store cache.Store,
	hub ws.EventPublisher,
	cfg *config.Config,
) (*Services, *ratelimit.Limiter) {
	sessionTTL := time.Duration(cfg.Session.TTLDays) * 24 * time.Hour
	snapshotTTL := time.Duration(cfg.Session.SnapshotTTLMinutes) * time.Minute

	sessionService := services.NewSessionService(
		repos.Session, repos.User, store, hub, sessionTTL, snapshotTTL,
	)

	// Email — üç ayar birden set değilse log-only fallback devreye girer.
	// Auth akışı (reset/verify) email olmadan da çalışır, link log'a düşer.
	var mailer email.EmailSender
	if cfg.Email.ResendAPIKey != "" && cfg.Email.FromEmail != "" && cfg.Email.AppURL != "" {
		mailer = email.NewResendSender(cfg.Email.ResendAPIKey, cfg.Email.FromEmail, cfg.Email.AppURL)
		log.Printf("[main] email service enabled (from=%s)", cfg.Email.FromEmail)
	} else {
		mailer = email.NewLogSender()
		log.Println("[main] email service disabled — tokens will be logged")
	}

	authService := services.NewAuthService(
		db, repos.User, repos.ResetToken, repos.VerifyToken, sessionService, mailer,
	)

	friendshipService := services.NewFriendshipService(
		repos.Friendship, repos.User, repos.Notification, hub,
	)

	userService := services.NewUserService(
		repos.User, repos.Friendship, friendshipService, sessionService, hub,
	)

	notificationService := services.NewNotificationService(repos.Notification)

	limiter := ratelimit.New(store)

	return &Services{
		Session:      sessionService,
		Auth:         authService,
		Friendship:   friendshipService,
		User:         userService,
		Notification: notificationService,
	}, limiter
}
