package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vitraforge/atelier/internal/database"
	"github.com/vitraforge/atelier/internal/pagination"
	"github.com/vitraforge/atelier/internal/realtime"
)

type createContactPayload struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type setContactStatusPayload struct {
	Status string `json:"status"`
}

// handleCreateContactMessage accepts a public contact form submission, files
// an admin notification, pushes the lead to the live stream, and mails the
// admin inbox. Only the database work can fail the request; the email is
// best-effort.
func (s *Server) handleCreateContactMessage(w http.ResponseWriter, r *http.Request) {
	var payload createContactPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.errorJSON(w, errors.New("bad request: could not decode JSON"), http.StatusBadRequest)
		return
	}

	var created *database.ContactMessage
	err := s.db.Write(func(tx *sql.Tx) error {
		var createErr error
		created, createErr = s.db.CreateContactMessage(r.Context(), tx, payload.Name, payload.Email, payload.Message)
		if createErr != nil {
			return createErr
		}
		_, notifyErr := s.db.CreateNotification(r.Context(), tx, "contact",
			"New contact message",
			fmt.Sprintf("%s sent a message through the contact form.", created.Name))
		return notifyErr
	})
	if err != nil {
		s.storeError(w, err)
		return
	}

	s.broker.Broadcast(realtime.Message{Type: "contact", Payload: created})

	if s.email != nil && s.config.AdminEmail != "" {
		go func(name, email, message string) {
			if err := s.email.SendContactAlert(s.config.AdminEmail, name, email, message); err != nil {
				s.log.WithError(err).Warn("could not send contact alert email")
			}
		}(created.Name, created.Email, created.Message)
	}

	s.writeJSON(w, http.StatusCreated, envelope{"message": created})
}

// handleListContactMessages returns one admin page of the mailbox; the filter
// selects a status (new, read, replied, archived) or "all".
func (s *Server) handleListContactMessages(w http.ResponseWriter, r *http.Request) {
	view := listQuery(r, pagination.AdminPageSize)

	messages, total, err := s.db.ListContactMessages(r.Context(), s.db.DB(), view.Filter(), view.PageSize(), view.Offset())
	if err != nil {
		s.storeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{
		"messages":   messages,
		"pagination": pagination.NewMeta(view.Page(), view.PageSize(), total),
	})
}

// handleSetContactMessageStatus moves a message through the mailbox states.
// Transitions are idempotent: re-archiving an archived message succeeds.
func (s *Server) handleSetContactMessageStatus(w http.ResponseWriter, r *http.Request) {
	messageID := chi.URLParam(r, "messageID")

	var payload setContactStatusPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.errorJSON(w, errors.New("bad request: could not decode JSON"), http.StatusBadRequest)
		return
	}

	err := s.db.Write(func(tx *sql.Tx) error {
		return s.db.SetContactMessageStatus(r.Context(), tx, messageID, payload.Status)
	})
	if err != nil {
		s.storeError(w, err)
		return
	}

	message, err := s.db.GetContactMessageByID(r.Context(), s.db.DB(), messageID)
	if err != nil {
		s.storeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, envelope{"message": message})
}
