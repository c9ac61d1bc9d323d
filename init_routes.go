// Package main — HTTP route registration.
//
// initRoutes, tüm API endpoint'lerini mux'a bağlar.
// Middleware chain helper'ları burada tanımlıdır:
//   - public: sadece genel API rate limit (IP başına)
//   - auth:   rate limit + session doğrulaması
//
// Auth endpoint'lerinin kendi policy'leri (login/register/reset) handler
// içindedir — composite key (IP + email) request body'sinden çıkarıldığı
// için middleware katmanında uygulanamaz.
package main

import (
	"fmt"
	"net/http"

	"github.com/ekinaktas/klik/middleware"
	"github.com/ekinaktas/klik/pkg/ratelimit"
	"github.com/ekinaktas/klik/services"
)

// initRoutes, middleware chain'i kurar ve tüm endpoint'leri mux'a bağlar.
//
// Route sıralama kuralı: Literal path'ler parametrik path'lerden ÖNCE tanımlanmalı.
// Örnek: "/api/users/me" → "/api/users/{username}" öncesinde,
// yoksa Go router "me" kelimesini bir username olarak yorumlar.
// (Go 1.22 mux aslında en spesifik pattern'i seçer, ama okunabilirlik
// için sıralamayı yine de koruyoruz.)
func initRoutes(
	mux *http.ServeMux,
	h *Handlers,
	sessions services.SessionService,
	limiter *ratelimit.Limiter,
) {
	// ─── Middleware ───
	authMw := middleware.NewAuthMiddleware(sessions)
	rateMw := middleware.NewRateLimitMiddleware(limiter)

	// ─── Middleware Chain Helpers ───
	public := func(handler http.HandlerFunc) http.Handler {
		return rateMw.Limit(http.HandlerFunc(handler))
	}
	auth := func(handler http.HandlerFunc) http.Handler {
		return rateMw.Limit(authMw.Require(http.HandlerFunc(handler)))
	}

	// Health check
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"ok","service":"klik"}`)
	})

	// ─── Auth ───
	// register/login/forgot-password kendi sıkı policy'lerini handler içinde uygular.
	mux.Handle("POST /api/auth/register", public(h.Auth.Register))
	mux.Handle("POST /api/auth/login", public(h.Auth.Login))
	mux.Handle("POST /api/auth/logout", auth(h.Auth.Logout))
	mux.Handle("POST /api/auth/refresh", auth(h.Auth.Refresh))
	mux.Handle("POST /api/auth/forgot-password", public(h.Auth.ForgotPassword))
	mux.Handle("POST /api/auth/reset-password", public(h.Auth.ResetPassword))
	mux.Handle("POST /api/auth/verify-email", public(h.Auth.VerifyEmail))
	mux.Handle("POST /api/auth/change-password", auth(h.Auth.ChangePassword))

	// ─── Users ───
	mux.Handle("GET /api/users/me", auth(h.User.Me))
	mux.Handle("PATCH /api/users/me/profile", auth(h.User.UpdateProfile))
	mux.Handle("GET /api/users/{username}", auth(h.User.PublicProfile))

	// ─── Friends ───
	mux.Handle("GET /api/friends", auth(h.Friendship.ListFriends))
	mux.Handle("GET /api/friends/requests", auth(h.Friendship.ListRequests))
	mux.Handle("POST /api/friends/requests", auth(h.Friendship.SendRequest))
	mux.Handle("POST /api/friends/requests/{userID}/accept", auth(h.Friendship.AcceptRequest))
	mux.Handle("GET /api/friends/status/{userID}", auth(h.Friendship.Status))
	mux.Handle("DELETE /api/friends/{userID}", auth(h.Friendship.RemoveEdge))

	// ─── Blocks ───
	mux.Handle("GET /api/blocks", auth(h.Friendship.ListBlocked))
	mux.Handle("POST /api/blocks/{userID}", auth(h.Friendship.Block))
	mux.Handle("DELETE /api/blocks/{userID}", auth(h.Friendship.Unblock))

	// ─── Notifications ───
	mux.Handle("GET /api/notifications", auth(h.Notification.List))
	mux.Handle("POST /api/notifications/read-all", auth(h.Notification.MarkAllRead))
	mux.Handle("POST /api/notifications/{id}/read", auth(h.Notification.MarkRead))

	// ─── WebSocket ───
	//
	// Neden auth middleware kullanmıyoruz?
	// Tarayıcılar WebSocket upgrade sırasında custom HTTP header gönderemez.
	// Session token URL query parameter olarak taşınır:
	//   ws://server/ws?token=SESSION_TOKEN
	// WS handler kendi içinde token doğrulaması yapar.
	mux.HandleFunc("GET /ws", h.WS.HandleConnection)
}
