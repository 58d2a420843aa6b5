package api

import (
	"net/http"
	"sync"

	"github.com/vitraforge/atelier/internal/database"
)

// handleDashboard aggregates the back-office overview. Each section is an
// independent snapshot fetched concurrently; a failing section is logged and
// returned as null while every other section still populates, so one broken
// table never blanks the whole dashboard.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	sections := envelope{
		"projects": nil,
		"gallery":  nil,
		"reviews":  nil,
		"meetings": nil,
		"messages": nil,
		"profiles": nil,
	}

	fetch := func(name string, load func() (interface{}, error)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			value, err := load()
			if err != nil {
				s.log.WithError(err).WithField("section", name).Warn("dashboard section failed")
				return
			}
			mu.Lock()
			sections[name] = value
			mu.Unlock()
		}()
	}

	ctx := r.Context()
	db := s.db.DB()

	fetch("projects", func() (interface{}, error) {
		return s.db.GetCollectionStats(ctx, db, database.TableProjects)
	})
	fetch("gallery", func() (interface{}, error) {
		return s.db.GetCollectionStats(ctx, db, database.TableGallery)
	})
	fetch("reviews", func() (interface{}, error) {
		return s.db.GetReviewStats(ctx, db)
	})
	fetch("meetings", func() (interface{}, error) {
		return s.db.GetMeetingStats(ctx, db)
	})
	fetch("messages", func() (interface{}, error) {
		return s.db.GetContactStats(ctx, db)
	})
	fetch("profiles", func() (interface{}, error) {
		return s.db.GetProfileStats(ctx, db)
	})

	wg.Wait()
	s.writeJSON(w, http.StatusOK, envelope{"stats": sections})
}
