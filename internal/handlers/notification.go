package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pandamarket/apiserver/internal/services"
	"github.com/pandamarket/apiserver/types"
)

// NotificationHandler provides HTTP handlers for per-user
// notifications. All routes require an authenticated session.
type NotificationHandler struct {
	notificationService *services.NotificationService
}

// NewNotificationHandler constructs a handler with the provided service.
func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// NotificationRouter registers notification routes on the given router.
func NotificationRouter(r chi.Router, handler *NotificationHandler) {
	r.Use(RequireAuth)
	r.Get("/", handler.ListNotifications)
	r.Get("/unread-count", handler.UnreadCount)
	r.Patch("/{notificationID}/read", handler.MarkRead)
}

// ListNotifications returns a page of the requester's notifications,
// newest first.
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	notifications, total, err := h.notificationService.ListForUser(r.Context(), requesterID(r), offset, limit)
	if err != nil {
		writeServiceError(w, err, "failed to list notifications")
		return
	}
	writeJSON(w, http.StatusOK, ListResponse[types.Notification]{
		Items: notifications,
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

// UnreadCount returns how many of the requester's notifications are
// unread.
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.notificationService.CountUnread(r.Context(), requesterID(r))
	if err != nil {
		writeServiceError(w, err, "failed to count notifications")
		return
	}
	writeJSON(w, http.StatusOK, UnreadCountResponse{Count: count})
}

// MarkRead marks one of the requester's notifications as read. Marking
// an already-read notification succeeds without changing its read time.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "notificationID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid notification id")
		return
	}

	notification, err := h.notificationService.MarkRead(r.Context(), id, requesterID(r))
	if err != nil {
		writeServiceError(w, err, "failed to mark notification read")
		return
	}
	writeJSON(w, http.StatusOK, notification)
}

type UnreadCountResponse struct {
	Count int64 `json:"count"`
}
