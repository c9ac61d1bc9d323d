// Package main — Handler katmanı başlatma.
//
// initHandlers, tüm HTTP handler'larını oluşturur.
// Her handler, ihtiyaç duyduğu service interface'lerini constructor'dan alır.
// Handler'lar "thin" dir — sadece HTTP parse + service call + response write.
package main

import (
	"github.com/ekinaktas/klik/config"
	"github.com/ekinaktas/klik/handlers"
	"github.com/ekinaktas/klik/pkg/credential"
	"github.com/ekinaktas/klik/pkg/ratelimit"
	"github.com/ekinaktas/klik/ws"
)

// Handlers, tüm handler instance'larını tutan container struct.
type Handlers struct {
	Auth         *handlers.AuthHandler
	User         *handlers.UserHandler
	Friendship   *handlers.FriendshipHandler
	Notification *handlers.NotificationHandler
	WS           *ws.Handler
}

// initHandlers, tüm handler'ları service ve rate limiter dependency'leri ile oluşturur.
// cookieOpts, session cookie'sinin Secure flag'ini config'ten alır —
// dev ortamında (plain HTTP) kapatılabilir.
func initHandlers(svcs *Services, limiter *ratelimit.Limiter, hub *ws.Hub, cfg *config.Config) *Handlers {
	cookieOpts := credential.Options{Secure: cfg.Session.SecureCookie}

	return &Handlers{
		Auth:         handlers.NewAuthHandler(svcs.Auth, limiter, cookieOpts),
		User:         handlers.NewUserHandler(svcs.User),
		Friendship:   handlers.NewFriendshipHandler(svcs.Friendship),
		Notification: handlers.NewNotificationHandler(svcs.Notification),
		WS:           ws.NewHandler(hub, svcs.Session),
	}
}
