package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ekinaktas/klik/models"
	"github.com/ekinaktas/klik/pkg"
	"github.com/ekinaktas/klik/services"
)

// UserHandler, kullanıcı/profil endpoint'lerini yöneten struct.
//
// Route'lar:
//
//	GET   /api/users/me               → Me
//	PATCH /api/users/me/profile       → UpdateProfile
//	GET   /api/users/{username}       → PublicProfile
type UserHandler struct {
	userService services.UserService
}

// NewUserHandler, constructor.
func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Me godoc
// GET /api/users/me
// Oturum sahibinin tam profilini döner (email dahil).
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	// Snapshot kısa TTL ile cache'lenir; /me taze veri dönmeli —
	// doğrudan durable store'dan okunur.
	me, err := h.userService.GetMe(r.Context(), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, me)
}

// UpdateProfile godoc
// PATCH /api/users/me/profile
// Body: { "display_name": "...", "avatar_url": "..." } — nil alan değişmez.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req models.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.userService.UpdateProfile(r.Context(), user.ID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, updated)
}

// PublicProfile godoc
// GET /api/users/{username}
// İlişki durumu viewer'a göre hesaplanır.
func (h *UserHandler) PublicProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	username := r.PathValue("username")
	if username == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "username is required")
		return
	}

	profile, err := h.userService.GetPublicProfile(r.Context(), user.ID, username)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, profile)
}
