// Package handlers — FriendshipHandler: arkadaşlık HTTP endpoint'leri.
//
// Thin handler prensibi: Parse → Service → Response.
// Tüm endpoint'ler auth middleware gerektirir.
//
// Route'lar (init_routes.go'da bağlanır):
//
//	GET    /api/friends                          → ListFriends
//	GET    /api/friends/requests                 → ListRequests (incoming + outgoing)
//	POST   /api/friends/requests                 → SendRequest
//	POST   /api/friends/requests/{userID}/accept → AcceptRequest
//	DELETE /api/friends/{userID}                 → RemoveEdge (reject/cancel/unfriend)
//	GET    /api/friends/status/{userID}          → Status
//	GET    /api/blocks                           → ListBlocked
//	POST   /api/blocks/{userID}                  → Block
//	DELETE /api/blocks/{userID}                  → Unblock
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ekinaktas/klik/models"
	"github.com/ekinaktas/klik/pkg"
	"github.com/ekinaktas/klik/services"
)

// FriendshipHandler, arkadaşlık endpoint'lerini yöneten struct.
type FriendshipHandler struct {
	friendService services.FriendshipService
}

// NewFriendshipHandler, constructor.
func NewFriendshipHandler(friendService services.FriendshipService) *FriendshipHandler {
	return &FriendshipHandler{friendService: friendService}
}

// ListFriends godoc
// GET /api/friends
func (h *FriendshipHandler) ListFriends(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	friends, err := h.friendService.ListFriends(r.Context(), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, friends)
}

// ListRequests godoc
// GET /api/friends/requests
// Response: { incoming: [...], outgoing: [...] }
func (h *FriendshipHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	incoming, err := h.friendService.ListIncoming(r.Context(), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	outgoing, err := h.friendService.ListOutgoing(r.Context(), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]any{
		"incoming": incoming,
		"outgoing": outgoing,
	})
}

// SendRequest godoc
// POST /api/friends/requests
// Body: { "username": "..." }
// Mutual pending varsa otomatik kabul — yanıt status alanından anlaşılır.
func (h *FriendshipHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req models.SendFriendRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	friendship, err := h.friendService.SendRequest(r.Context(), user.ID, req.Username)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, friendship)
}

// AcceptRequest godoc
// POST /api/friends/requests/{userID}/accept
// {userID}: isteği GÖNDEREN kullanıcının ID'si.
func (h *FriendshipHandler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	requesterID := r.PathValue("userID")
	if requesterID == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "user id is required")
		return
	}

	if err := h.friendService.AcceptRequest(r.Context(), user.ID, requesterID); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "friend request accepted"})
}

// RemoveEdge godoc
// DELETE /api/friends/{userID}
// Reject, cancel ve unfriend aynı operasyona iner — hepsi kaydı siler.
func (h *FriendshipHandler) RemoveEdge(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	otherUserID := r.PathValue("userID")
	if otherUserID == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "user id is required")
		return
	}

	if err := h.friendService.RemoveEdge(r.Context(), user.ID, otherUserID); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "relationship removed"})
}

// Status godoc
// GET /api/friends/status/{userID}
// Viewer'a göre hesaplanmış ilişki durumu döner.
func (h *FriendshipHandler) Status(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	otherUserID := r.PathValue("userID")
	if otherUserID == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "user id is required")
		return
	}

	status, err := h.friendService.StatusFor(r.Context(), user.ID, otherUserID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]models.RelationStatus{"status": status})
}

// ListBlocked godoc
// GET /api/blocks
func (h *FriendshipHandler) ListBlocked(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	blocked, err := h.friendService.ListBlocked(r.Context(), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, blocked)
}

// Block godoc
// POST /api/blocks/{userID}
func (h *FriendshipHandler) Block(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	otherUserID := r.PathValue("userID")
	if otherUserID == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "user id is required")
		return
	}

	if err := h.friendService.Block(r.Context(), user.ID, otherUserID); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "user blocked"})
}

// Unblock godoc
// DELETE /api/blocks/{userID}
func (h *FriendshipHandler) Unblock(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	otherUserID := r.PathValue("userID")
	if otherUserID == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "user id is required")
		return
	}

	if err := h.friendService.Unblock(r.Context(), user.ID, otherUserID); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "user unblocked"})
}
