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

type createMeetingPayload struct {
	Title       string `json:"title"`
	Date        string `json:"date"` // YYYY-MM-DD
	Time        string `json:"time"` // HH:MM
	Location    string `json:"location"`
	Address     string `json:"address"`
	Spots       int    `json:"spots"`
	Description string `json:"description"`
}

type registrationPayload struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Message string `json:"message"`
}

type setRegistrationStatusPayload struct {
	Status string `json:"status"`
}

// handleListUpcomingMeetings returns meetings from today onward, soonest
// first, with the derived remaining capacity per meeting.
func (s *Server) handleListUpcomingMeetings(w http.ResponseWriter, r *http.Request) {
	view := listQuery(r, pagination.DefaultPageSize)

	meetings, total, err := s.db.ListUpcomingMeetings(r.Context(), s.db.DB(), view.PageSize(), view.Offset())
	if err != nil {
		s.storeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{
		"meetings":   toMeetingResponseList(meetings),
		"pagination": pagination.NewMeta(view.Page(), view.PageSize(), total),
	})
}

func (s *Server) handleGetMeeting(w http.ResponseWriter, r *http.Request) {
	meeting, err := s.db.GetMeetingByID(r.Context(), s.db.DB(), chi.URLParam(r, "meetingID"))
	if err != nil {
		s.storeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, envelope{"meeting": toMeetingResponse(meeting)})
}

// handleRegisterForMeeting accepts a public signup for a meeting. The capacity
// check and the insert run inside one write transaction, so two concurrent
// signups cannot both take the last spot; a full meeting answers 409.
func (s *Server) handleRegisterForMeeting(w http.ResponseWriter, r *http.Request) {
	meetingID := chi.URLParam(r, "meetingID")

	var payload registrationPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.errorJSON(w, errors.New("bad request: could not decode JSON"), http.StatusBadRequest)
		return
	}

	reg := registrationFromPayload(payload)
	reg.MeetingID = sql.NullString{String: meetingID, Valid: true}

	created, err := s.createRegistration(r, reg, "registration",
		"New meeting registration",
		fmt.Sprintf("%s registered for a meeting.", payload.Name))
	if err != nil {
		s.storeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, envelope{"registration": toRegistrationResponse(created)})
}

// handleRequestConsultation accepts a public consultation request about a
// project. It reuses the registration pipeline with the project side of the
// either/or set.
func (s *Server) handleRequestConsultation(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	var payload registrationPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.errorJSON(w, errors.New("bad request: could not decode JSON"), http.StatusBadRequest)
		return
	}

	reg := registrationFromPayload(payload)
	reg.ProjectID = sql.NullString{String: projectID, Valid: true}

	created, err := s.createRegistration(r, reg, "consultation",
		"New consultation request",
		fmt.Sprintf("%s asked about a project.", payload.Name))
	if err != nil {
		s.storeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, envelope{"registration": toRegistrationResponse(created)})
}

func registrationFromPayload(p registrationPayload) *database.Registration {
	reg := &database.Registration{Name: p.Name, Email: p.Email}
	if p.Phone != "" {
		reg.Phone = sql.NullString{String: p.Phone, Valid: true}
	}
	if p.Company != "" {
		reg.Company = sql.NullString{String: p.Company, Valid: true}
	}
	if p.Message != "" {
		reg.Message = sql.NullString{String: p.Message, Valid: true}
	}
	return reg
}

// createRegistration runs the shared insert + notification transaction and
// pushes the event to any connected admin.
func (s *Server) createRegistration(r *http.Request, reg *database.Registration, kind, title, body string) (*database.Registration, error) {
	var created *database.Registration
	err := s.db.Write(func(tx *sql.Tx) error {
		var createErr error
		created, createErr = s.db.CreateRegistration(r.Context(), tx, reg)
		if createErr != nil {
			return createErr
		}
		_, notifyErr := s.db.CreateNotification(r.Context(), tx, kind, title, body)
		return notifyErr
	})
	if err != nil {
		return nil, err
	}

	s.broker.Broadcast(realtime.Message{Type: kind, Payload: toRegistrationResponse(created)})
	return created, nil
}

// --- Admin ---

func (s *Server) handleCreateMeeting(w http.ResponseWriter, r *http.Request) {
	var payload createMeetingPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.errorJSON(w, errors.New("bad request: could not decode JSON"), http.StatusBadRequest)
		return
	}
	if payload.Title == "" || payload.Location == "" {
		s.errorJSON(w, errors.New("title and location are required"), http.StatusBadRequest)
		return
	}

	meeting := &database.Meeting{
		Title:    payload.Title,
		Date:     payload.Date,
		Time:     payload.Time,
		Location: payload.Location,
		Spots:    payload.Spots,
	}
	if payload.Address != "" {
		meeting.Address = sql.NullString{String: payload.Address, Valid: true}
	}
	if payload.Description != "" {
		meeting.Description = sql.NullString{String: payload.Description, Valid: true}
	}

	var created *database.Meeting
	err := s.db.Write(func(tx *sql.Tx) error {
		var createErr error
		created, createErr = s.db.CreateMeeting(r.Context(), tx, meeting)
		return createErr
	})
	if err != nil {
		s.storeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, envelope{"meeting": toMeetingResponse(created)})
}

func (s *Server) handleDeleteMeeting(w http.ResponseWriter, r *http.Request) {
	err := s.db.Write(func(tx *sql.Tx) error {
		return s.db.DeleteMeeting(r.Context(), tx, chi.URLParam(r, "meetingID"))
	})
	if err != nil {
		s.storeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, envelope{"message": "meeting deleted"})
}

// handleListAllMeetings is the admin view: every meeting, newest first.
func (s *Server) handleListAllMeetings(w http.ResponseWriter, r *http.Request) {
	view := listQuery(r, pagination.AdminPageSize)

	meetings, total, err := s.db.ListMeetings(r.Context(), s.db.DB(), view.PageSize(), view.Offset())
	if err != nil {
		s.storeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{
		"meetings":   toMeetingResponseList(meetings),
		"pagination": pagination.NewMeta(view.Page(), view.PageSize(), total),
	})
}

// handleListRegistrations lists registrations and consultation requests for
// the back-office; the filter selects a status, ?meetingId narrows to one
// meeting.
func (s *Server) handleListRegistrations(w http.ResponseWriter, r *http.Request) {
	view := listQuery(r, pagination.AdminPageSize)

	regs, total, err := s.db.ListRegistrations(r.Context(), s.db.DB(),
		view.Filter(), r.URL.Query().Get("meetingId"), view.PageSize(), view.Offset())
	if err != nil {
		s.storeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{
		"registrations": toRegistrationResponseList(regs),
		"pagination":    pagination.NewMeta(view.Page(), view.PageSize(), total),
	})
}

// handleSetRegistrationStatus records an approve/reject decision and emails
// the registrant when the registration belongs to a meeting. The email is
// best-effort: a send failure is logged and never fails the request.
func (s *Server) handleSetRegistrationStatus(w http.ResponseWriter, r *http.Request) {
	registrationID := chi.URLParam(r, "registrationID")

	var payload setRegistrationStatusPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.errorJSON(w, errors.New("bad request: could not decode JSON"), http.StatusBadRequest)
		return
	}

	err := s.db.Write(func(tx *sql.Tx) error {
		return s.db.SetRegistrationStatus(r.Context(), tx, registrationID, payload.Status)
	})
	if err != nil {
		s.storeError(w, err)
		return
	}

	reg, err := s.db.GetRegistrationByID(r.Context(), s.db.DB(), registrationID)
	if err != nil {
		s.storeError(w, err)
		return
	}

	if s.email != nil && reg.MeetingID.Valid &&
		(reg.Status == database.RegistrationApproved || reg.Status == database.RegistrationRejected) {
		if meeting, err := s.db.GetMeetingByID(r.Context(), s.db.DB(), reg.MeetingID.String); err == nil {
			go func(recipient, name, title, status string) {
				if err := s.email.SendRegistrationDecision(recipient, name, title, status); err != nil {
					s.log.WithError(err).Warn("could not send registration decision email")
				}
			}(reg.Email, reg.Name, meeting.Title, reg.Status)
		}
	}

	s.writeJSON(w, http.StatusOK, envelope{"registration": toRegistrationResponse(reg)})
}
