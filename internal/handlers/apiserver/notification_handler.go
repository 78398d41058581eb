package apiserver

import (
	"errors"
	"net/http"

	"spendmate/internal/middleware"
	"spendmate/internal/services"
)

// NotificationHandler bundles the notification HTTP handlers.
type NotificationHandler struct {
	NotificationService services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler instance.
func NewNotificationHandler(notificationService services.NotificationService) *NotificationHandler {
	return &NotificationHandler{NotificationService: notificationService}
}

// ListNotifications handles GET /api/v1/notifications.
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	notifications, err := h.NotificationService.List(r.Context(), userID)
	if err != nil {
		writeJSONError(w, "failed to load notifications", http.StatusInternalServerError)
		return
	}

	writeJSONResponse(w, http.StatusOK, notifications)
}

// MarkNotificationRead handles POST /api/v1/notifications/{notificationID}/read.
func (h *NotificationHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	notificationID, ok := parseUintVar(w, r, "notificationID")
	if !ok {
		return
	}

	if err := h.NotificationService.MarkRead(r.Context(), userID, notificationID); err != nil {
		if errors.Is(err, services.ErrNotificationNotFound) {
			writeJSONError(w, err.Error(), http.StatusNotFound)
		} else {
			writeJSONError(w, "failed to mark notification read", http.StatusInternalServerError)
		}
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]string{"message": "notification marked read"})
}
