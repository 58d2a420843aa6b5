package api

import (
	"errors"
	"net/http"

	"github.com/vitraforge/atelier/internal/database"
	"github.com/vitraforge/atelier/internal/pagination"
)

// handleSearch runs a case-insensitive substring search across the projects
// showcase and the gallery: plain LIKE matching over title, description, and
// category, no ranking. Each side returns its own first page.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	needle := r.URL.Query().Get("q")
	if needle == "" {
		s.errorJSON(w, errors.New("query parameter 'q' is required"), http.StatusBadRequest)
		return
	}

	filter := database.CollectionFilter{Search: needle}

	projects, projectTotal, err := s.db.ListCollection(r.Context(), s.db.DB(),
		database.TableProjects, filter, pagination.DefaultPageSize, 0)
	if err != nil {
		s.storeError(w, err)
		return
	}

	gallery, galleryTotal, err := s.db.ListCollection(r.Context(), s.db.DB(),
		database.TableGallery, filter, pagination.DefaultPageSize, 0)
	if err != nil {
		s.storeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{
		"query":        needle,
		"projects":     toCollectionItemResponseList(projects, nil),
		"gallery":      toCollectionItemResponseList(gallery, nil),
		"projectCount": projectTotal,
		"galleryCount": galleryTotal,
	})
}
