package api

import (
	"errors"
	"net/http"

	"github.com/assetmanager/registry-service/internal/domain"
	"github.com/assetmanager/registry-service/internal/store"
)

// ListNotificationsHandler lists the authenticated user's mailbox, newest first.
func (h *RegistryHandlers) ListNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := h.caller(w, r)
	if !ok {
		return
	}

	notifications, err := h.service.ListNotifications(r.Context(), user.ID)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to fetch notifications")
		return
	}
	if notifications == nil {
		notifications = []domain.Notification{}
	}

	h.writeJSON(w, http.StatusOK, notifications)
}

// MarkNotificationReadHandler flags one of the caller's notifications as read.
func (h *RegistryHandlers) MarkNotificationReadHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := h.caller(w, r)
	if !ok {
		return
	}

	notificationID, err := parseIDParam(r, "notificationID")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid notification id")
		return
	}

	notification, err := h.service.MarkNotificationRead(r.Context(), notificationID, user.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotificationNotFound) {
			h.writeError(w, http.StatusNotFound, "Notification not found")
			return
		}
		h.writeError(w, http.StatusInternalServerError, "Failed to mark notification as read")
		return
	}

	h.writeJSON(w, http.StatusOK, notification)
}

// MarkAllNotificationsReadHandler flags the caller's whole mailbox as read.
func (h *RegistryHandlers) MarkAllNotificationsReadHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := h.caller(w, r)
	if !ok {
		return
	}

	updated, err := h.service.MarkAllNotificationsRead(r.Context(), user.ID)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to mark all notifications as read")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "updated": updated})
}

// DeleteNotificationHandler removes one of the caller's notifications.
func (h *RegistryHandlers) DeleteNotificationHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := h.caller(w, r)
	if !ok {
		return
	}

	notificationID, err := parseIDParam(r, "notificationID")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid notification id")
		return
	}

	notification, err := h.service.DeleteNotification(r.Context(), notificationID, user.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotificationNotFound) {
			h.writeError(w, http.StatusNotFound, "Notification not found")
			return
		}
		h.writeError(w, http.StatusInternalServerError, "Failed to delete notification")
		return
	}

	h.writeJSON(w, http.StatusOK, notification)
}

// DeleteAllNotificationsHandler empties the caller's mailbox.
func (h *RegistryHandlers) DeleteAllNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := h.caller(w, r)
	if !ok {
		return
	}

	deleted, err := h.service.DeleteAllNotifications(r.Context(), user.ID)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to delete all notifications")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "deleted": deleted})
}
