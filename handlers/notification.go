package handlers

import (
	"net/http"
	"strconv"

	"github.com/ekinaktas/klik/pkg"
	"github.com/ekinaktas/klik/services"
)

// NotificationHandler, bildirim endpoint'lerini yöneten struct.
//
// Route'lar:
//
//	GET  /api/notifications              → List
//	POST /api/notifications/{id}/read    → MarkRead
//	POST /api/notifications/read-all     → MarkAllRead
type NotificationHandler struct {
	notificationService services.NotificationService
}

// NewNotificationHandler, constructor.
func NewNotificationHandler(notificationService services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// List godoc
// GET /api/notifications?limit=50
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	notifications, err := h.notificationService.List(r.Context(), user.ID, limit)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, notifications)
}

// MarkRead godoc
// POST /api/notifications/{id}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "notification id is required")
		return
	}

	if err := h.notificationService.MarkRead(r.Context(), user.ID, id); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "notification marked as read"})
}

// MarkAllRead godoc
// POST /api/notifications/read-all
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	if err := h.notificationService.MarkAllRead(r.Context(), user.ID); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "all notifications marked as read"})
}
