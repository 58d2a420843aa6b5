package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vitraforge/atelier/internal/database"
	"github.com/vitraforge/atelier/internal/pagination"
)

type updateProfilePayload struct {
	FullName *string `json:"fullName"`
	Username *string `json:"username"`
	Phone    *string `json:"phone"`
	Location *string `json:"location"`
}

// handleGetMyProfile returns the authenticated user's profile. A user who has
// never saved a profile gets `"profile": null`, not a 404: the frontend treats
// that as the "complete your profile" state.
func (s *Server) handleGetMyProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := s.getUserIDFromContext(r)
	if err != nil {
		s.errorJSON(w, err, http.StatusInternalServerError)
		return
	}

	profile, err := s.db.GetProfileByUserID(r.Context(), s.db.DB(), userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			s.writeJSON(w, http.StatusOK, envelope{"profile": nil})
			return
		}
		s.storeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{"profile": toProfileResponse(profile)})
}

// handleUpdateMyProfile applies a partial update to the caller's profile,
// creating the row first if this is the user's first save.
func (s *Server) handleUpdateMyProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := s.getUserIDFromContext(r)
	if err != nil {
		s.errorJSON(w, err, http.StatusInternalServerError)
		return
	}

	var payload updateProfilePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.errorJSON(w, errors.New("bad request: could not decode JSON"), http.StatusBadRequest)
		return
	}

	err = s.db.Write(func(tx *sql.Tx) error {
		_, err := s.db.GetProfileByUserID(r.Context(), tx, userID)
		if errors.Is(err, database.ErrNotFound) {
			// First save: create the row, then apply the partial update on top.
			fullName := ""
			if payload.FullName != nil {
				fullName = *payload.FullName
			}
			username := ""
			if payload.Username != nil {
				username = *payload.Username
			}
			_, err = s.db.CreateProfile(r.Context(), tx, userID, fullName, username)
			if err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
		return s.db.UpdateProfile(r.Context(), tx, userID, database.ProfileUpdate{
			FullName: payload.FullName,
			Username: payload.Username,
			Phone:    payload.Phone,
			Location: payload.Location,
		})
	})
	if err != nil {
		s.storeError(w, err)
		return
	}

	profile, err := s.db.GetProfileByUserID(r.Context(), s.db.DB(), userID)
	if err != nil {
		s.storeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, envelope{"profile": toProfileResponse(profile)})
}

// handleListProfiles returns one admin page of registered profiles.
func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	view := listQuery(r, pagination.AdminPageSize)

	profiles, total, err := s.db.ListProfiles(r.Context(), s.db.DB(), view.PageSize(), view.Offset())
	if err != nil {
		s.storeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{
		"profiles":   toProfileResponseList(profiles),
		"pagination": pagination.NewMeta(view.Page(), view.PageSize(), total),
	})
}

// handleSetProfileActive toggles a profile's active flag. Deactivation stands
// in for deletion so nothing that owns projects or reviews disappears.
func (s *Server) handleSetProfileActive(w http.ResponseWriter, r *http.Request) {
	profileID := chi.URLParam(r, "profileID")

	active := true
	if raw := r.URL.Query().Get("active"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			s.errorJSON(w, errors.New("'active' must be true or false"), http.StatusBadRequest)
			return
		}
		active = parsed
	}

	err := s.db.Write(func(tx *sql.Tx) error {
		return s.db.SetProfileActive(r.Context(), tx, profileID, active)
	})
	if err != nil {
		s.storeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{"message": "profile updated"})
}
