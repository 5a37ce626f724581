package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sandeepkv93/taskdesk/internal/notify"
)

type notificationList struct {
	Items  []notify.Notification `json:"items"`
	Unread int                   `json:"unread"`
}

// ListNotifications evaluates due dates first so polling clients see the
// same notifications the terminal UI would raise.
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	now := h.store.Now()
	h.monitor.Evaluate(h.store.Tasks(), now)
	respondJSON(w, r, http.StatusOK, notificationList{Items: h.monitor.Visible(now), Unread: h.monitor.UnreadCount(now)})
}

func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	if !h.monitor.MarkRead(chi.URLParam(r, "id")) {
		respondError(w, r, http.StatusNotFound, "not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	h.monitor.MarkAllRead()
	w.WriteHeader(http.StatusNoContent)
}

// SnoozeNotification hides a notification for ?for=<duration>, 10m by
// default.
func (h *Handler) SnoozeNotification(w http.ResponseWriter, r *http.Request) {
	d := 10 * time.Minute
	if raw := r.URL.Query().Get("for"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 {
			respondError(w, r, http.StatusBadRequest, "for must be a positive duration such as 15m")
			return
		}
		d = parsed
	}
	if !h.monitor.Snooze(chi.URLParam(r, "id"), d, h.store.Now()) {
		respondError(w, r, http.StatusNotFound, "not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DismissNotification(w http.ResponseWriter, r *http.Request) {
	if !h.monitor.Dismiss(chi.URLParam(r, "id")) {
		respondError(w, r, http.StatusNotFound, "not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
