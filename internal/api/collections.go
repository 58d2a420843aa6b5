package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vitraforge/atelier/internal/database"
	"github.com/vitraforge/atelier/internal/pagination"
)

// The projects showcase and the gallery share one handler core: both are
// paginated, category-filtered image collections backed by the same queries.
// Only the projects side carries ratings.

type createCollectionItemPayload struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Images      []string `json:"images"`
	Status      string   `json:"status"`
	Featured    bool     `json:"featured"`
}

type updateCollectionItemPayload struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Images      []string `json:"images"`
	Status      *string  `json:"status"`
}

// --- Projects ---

// handleListProjects returns one public page of the projects showcase. The
// category filter comes from the query string; changing it implicitly starts
// back at page 1 when no explicit page is present. Rating summaries for the
// whole page are fetched in a single batched query.
func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	view := listQuery(r, pagination.DefaultPageSize)
	filter := database.CollectionFilter{
		Category:     view.Filter(),
		FeaturedOnly: r.URL.Query().Get("featured") == "true",
	}

	items, total, err := s.db.ListCollection(r.Context(), s.db.DB(), database.TableProjects, filter, view.PageSize(), view.Offset())
	if err != nil {
		s.storeError(w, err)
		return
	}

	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	ratings, err := s.db.RatingSummaries(r.Context(), s.db.DB(), ids)
	if err != nil {
		// Ratings are decoration on this page; the list still renders.
		s.log.WithError(err).Warn("could not load rating summaries")
		ratings = nil
	}

	s.writeJSON(w, http.StatusOK, envelope{
		"projects":   toCollectionItemResponseList(items, ratings),
		"pagination": pagination.NewMeta(view.Page(), view.PageSize(), total),
	})
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	item, err := s.db.GetCollectionItem(r.Context(), s.db.DB(), database.TableProjects, projectID)
	if err != nil {
		s.storeError(w, err)
		return
	}

	resp := toCollectionItemResponse(item)
	if ratings, err := s.db.RatingSummaries(r.Context(), s.db.DB(), []string{item.ID}); err == nil {
		if sum, ok := ratings[item.ID]; ok {
			resp.Rating = &sum
		}
	}

	s.writeJSON(w, http.StatusOK, envelope{"project": resp})
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	s.handleCreateCollectionItem(w, r, database.TableProjects, "project")
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	s.handleUpdateCollectionItem(w, r, database.TableProjects, chi.URLParam(r, "projectID"), "project")
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	s.handleDeleteCollectionItem(w, r, database.TableProjects, chi.URLParam(r, "projectID"))
}

func (s *Server) handleToggleProjectFeatured(w http.ResponseWriter, r *http.Request) {
	s.handleToggleFeatured(w, r, database.TableProjects, chi.URLParam(r, "projectID"), "project")
}

// handleListMyProjects returns the authenticated user's own projects.
func (s *Server) handleListMyProjects(w http.ResponseWriter, r *http.Request) {
	userID, err := s.getUserIDFromContext(r)
	if err != nil {
		s.errorJSON(w, err, http.StatusInternalServerError)
		return
	}

	view := listQuery(r, pagination.DefaultPageSize)
	filter := database.CollectionFilter{OwnerID: userID}

	items, total, err := s.db.ListCollection(r.Context(), s.db.DB(), database.TableProjects, filter, view.PageSize(), view.Offset())
	if err != nil {
		s.storeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{
		"projects":   toCollectionItemResponseList(items, nil),
		"pagination": pagination.NewMeta(view.Page(), view.PageSize(), total),
	})
}

// --- Gallery ---

func (s *Server) handleListGallery(w http.ResponseWriter, r *http.Request) {
	view := listQuery(r, pagination.DefaultPageSize)
	filter := database.CollectionFilter{
		Category:     view.Filter(),
		FeaturedOnly: r.URL.Query().Get("featured") == "true",
	}

	items, total, err := s.db.ListCollection(r.Context(), s.db.DB(), database.TableGallery, filter, view.PageSize(), view.Offset())
	if err != nil {
		s.storeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{
		"items":      toCollectionItemResponseList(items, nil),
		"pagination": pagination.NewMeta(view.Page(), view.PageSize(), total),
	})
}

func (s *Server) handleGetGalleryItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.db.GetCollectionItem(r.Context(), s.db.DB(), database.TableGallery, chi.URLParam(r, "itemID"))
	if err != nil {
		s.storeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, envelope{"item": toCollectionItemResponse(item)})
}

func (s *Server) handleCreateGalleryItem(w http.ResponseWriter, r *http.Request) {
	s.handleCreateCollectionItem(w, r, database.TableGallery, "item")
}

func (s *Server) handleUpdateGalleryItem(w http.ResponseWriter, r *http.Request) {
	s.handleUpdateCollectionItem(w, r, database.TableGallery, chi.URLParam(r, "itemID"), "item")
}

func (s *Server) handleDeleteGalleryItem(w http.ResponseWriter, r *http.Request) {
	s.handleDeleteCollectionItem(w, r, database.TableGallery, chi.URLParam(r, "itemID"))
}

func (s *Server) handleToggleGalleryFeatured(w http.ResponseWriter, r *http.Request) {
	s.handleToggleFeatured(w, r, database.TableGallery, chi.URLParam(r, "itemID"), "item")
}

// --- Shared cores ---

func (s *Server) handleCreateCollectionItem(w http.ResponseWriter, r *http.Request, table, key string) {
	var payload createCollectionItemPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.errorJSON(w, errors.New("bad request: could not decode JSON"), http.StatusBadRequest)
		return
	}
	if payload.Title == "" {
		s.errorJSON(w, errors.New("title is required"), http.StatusBadRequest)
		return
	}

	userID, _ := s.getUserIDFromContext(r)

	item := &database.Project{
		Title:       payload.Title,
		Description: payload.Description,
		Category:    payload.Category,
		Images:      payload.Images,
		Status:      payload.Status,
		Featured:    payload.Featured,
	}
	if userID != "" {
		item.UserID = sql.NullString{String: userID, Valid: true}
	}

	var created *database.Project
	err := s.db.Write(func(tx *sql.Tx) error {
		var createErr error
		created, createErr = s.db.CreateCollectionItem(r.Context(), tx, table, item)
		return createErr
	})
	if err != nil {
		s.storeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, envelope{key: toCollectionItemResponse(created)})
}

func (s *Server) handleUpdateCollectionItem(w http.ResponseWriter, r *http.Request, table, id, key string) {
	var payload updateCollectionItemPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.errorJSON(w, errors.New("bad request: could not decode JSON"), http.StatusBadRequest)
		return
	}

	err := s.db.Write(func(tx *sql.Tx) error {
		return s.db.UpdateCollectionItem(r.Context(), tx, table, id, database.CollectionUpdate{
			Title:       payload.Title,
			Description: payload.Description,
			Category:    payload.Category,
			Images:      payload.Images,
			Status:      payload.Status,
		})
	})
	if err != nil {
		s.storeError(w, err)
		return
	}

	item, err := s.db.GetCollectionItem(r.Context(), s.db.DB(), table, id)
	if err != nil {
		s.storeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, envelope{key: toCollectionItemResponse(item)})
}

func (s *Server) handleDeleteCollectionItem(w http.ResponseWriter, r *http.Request, table, id string) {
	err := s.db.Write(func(tx *sql.Tx) error {
		return s.db.DeleteCollectionItem(r.Context(), tx, table, id)
	})
	if err != nil {
		s.storeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, envelope{"message": "deleted"})
}

// handleToggleFeatured flips the featured flag by reading the current value
// inside the same write transaction that updates it.
func (s *Server) handleToggleFeatured(w http.ResponseWriter, r *http.Request, table, id, key string) {
	var item *database.Project
	err := s.db.Write(func(tx *sql.Tx) error {
		current, err := s.db.GetCollectionItem(r.Context(), tx, table, id)
		if err != nil {
			return err
		}
		if err := s.db.SetCollectionFeatured(r.Context(), tx, table, id, !current.Featured); err != nil {
			return err
		}
		item, err = s.db.GetCollectionItem(r.Context(), tx, table, id)
		return err
	})
	if err != nil {
		s.storeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, envelope{key: toCollectionItemResponse(item)})
}
