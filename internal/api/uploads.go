package api

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/vitraforge/atelier/internal/database"
	"github.com/vitraforge/atelier/internal/storage"
)

// Upload handlers are only live when object storage is configured; without it
// they answer 503 instead of failing somewhere deep in the S3 client.

// handleUploadAvatar replaces the caller's profile avatar. The file must be a
// jpeg, png, or webp of at most 2 MB.
func (s *Server) handleUploadAvatar(w http.ResponseWriter, r *http.Request) {
	if s.uploader == nil {
		s.errorJSON(w, errors.New("file storage is not configured"), http.StatusServiceUnavailable)
		return
	}

	userID, err := s.getUserIDFromContext(r)
	if err != nil {
		s.errorJSON(w, err, http.StatusInternalServerError)
		return
	}

	if err := r.ParseMultipartForm(storage.AvatarConstraints.MaxBytes); err != nil {
		s.errorJSON(w, errors.New("could not parse upload"), http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.errorJSON(w, errors.New("a 'file' form field is required"), http.StatusBadRequest)
		return
	}
	defer file.Close()

	url, err := s.uploader.Upload(r.Context(), "avatars", userID, file, header, storage.AvatarConstraints)
	if err != nil {
		var constraintErr *storage.ErrConstraint
		if errors.As(err, &constraintErr) {
			s.errorJSON(w, err, http.StatusBadRequest)
			return
		}
		s.log.WithError(err).Error("avatar upload failed")
		s.errorJSON(w, errors.New("upload failed"), http.StatusInternalServerError)
		return
	}

	err = s.db.Write(func(tx *sql.Tx) error {
		return s.db.UpdateProfile(r.Context(), tx, userID, database.ProfileUpdate{AvatarURL: &url})
	})
	if err != nil {
		s.storeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{"avatarUrl": url})
}

// handleUploadGalleryImage stores one image for the gallery or a project and
// returns its public URL; the admin then attaches the URL to an item. Allows
// jpeg, png, webp, and gif up to 5 MB.
func (s *Server) handleUploadGalleryImage(w http.ResponseWriter, r *http.Request) {
	if s.uploader == nil {
		s.errorJSON(w, errors.New("file storage is not configured"), http.StatusServiceUnavailable)
		return
	}

	userID, err := s.getUserIDFromContext(r)
	if err != nil {
		s.errorJSON(w, err, http.StatusInternalServerError)
		return
	}

	if err := r.ParseMultipartForm(storage.GalleryConstraints.MaxBytes); err != nil {
		s.errorJSON(w, errors.New("could not parse upload"), http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.errorJSON(w, errors.New("a 'file' form field is required"), http.StatusBadRequest)
		return
	}
	defer file.Close()

	url, err := s.uploader.Upload(r.Context(), "gallery", userID, file, header, storage.GalleryConstraints)
	if err != nil {
		var constraintErr *storage.ErrConstraint
		if errors.As(err, &constraintErr) {
			s.errorJSON(w, err, http.StatusBadRequest)
			return
		}
		s.log.WithError(err).Error("gallery upload failed")
		s.errorJSON(w, errors.New("upload failed"), http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusCreated, envelope{"url": url})
}
