package api

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vitraforge/atelier/internal/pagination"
)

// handleListNotifications returns one admin page of notifications, newest
// first. The "unread" filter narrows to rows not yet marked read; the unread
// count rides along for the badge in the header.
func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	view := listQuery(r, pagination.AdminPageSize)
	unreadOnly := view.Filter() == "unread"

	notifications, total, err := s.db.ListNotifications(r.Context(), s.db.DB(), unreadOnly, view.PageSize(), view.Offset())
	if err != nil {
		s.storeError(w, err)
		return
	}

	unread, err := s.db.UnreadNotificationCount(r.Context(), s.db.DB())
	if err != nil {
		s.storeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{
		"notifications": notifications,
		"unreadCount":   unread,
		"pagination":    pagination.NewMeta(view.Page(), view.PageSize(), total),
	})
}

// handleMarkNotificationRead marks one notification as read. Idempotent:
// re-marking a read notification succeeds.
func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	err := s.db.Write(func(tx *sql.Tx) error {
		return s.db.MarkNotificationRead(r.Context(), tx, chi.URLParam(r, "notificationID"))
	})
	if err != nil {
		s.storeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, envelope{"message": "notification marked as read"})
}

// handleNotificationStream is the SSE endpoint for the admin back-office. It
// registers a per-connection channel with the broker and relays broadcast
// events until the client disconnects.
func (s *Server) handleNotificationStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.errorJSON(w, errors.New("streaming is not supported"), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// A per-connection id lets the same admin stream from multiple tabs.
	connID := uuid.NewString()
	events := s.broker.AddClient(connID)
	defer s.broker.RemoveClient(connID)

	// Tell the client the stream is live before any event arrives.
	fmt.Fprintf(w, "event: connected\ndata: {}\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, open := <-events:
			if !open {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
