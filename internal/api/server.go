package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/vitraforge/atelier/internal/config"
	"github.com/vitraforge/atelier/internal/database"
	"github.com/vitraforge/atelier/internal/email"
	"github.com/vitraforge/atelier/internal/pagination"
	"github.com/vitraforge/atelier/internal/realtime"
	"github.com/vitraforge/atelier/internal/storage"
)

// Server is the main struct for the API. It holds all dependencies required
// by the HTTP handlers, injected through the constructor so the application
// stays modular and testable. The email service and uploader may be nil when
// their configuration is absent; handlers check before using them.
type Server struct {
	config   *config.Config
	db       *database.Service
	broker   *realtime.Broker
	email    *email.EmailService
	uploader *storage.Uploader
	log      *logrus.Logger
}

// NewServer is a constructor function that creates and returns a new instance
// of the Server with its dependencies wired in.
func NewServer(cfg *config.Config, db *database.Service, broker *realtime.Broker, emailSvc *email.EmailService, uploader *storage.Uploader, log *logrus.Logger) *Server {
	return &Server{
		config:   cfg,
		db:       db,
		broker:   broker,
		email:    emailSvc,
		uploader: uploader,
		log:      log,
	}
}

// envelope is a custom map type used for creating structured JSON responses,
// e.g. `envelope{"project": project}`.
type envelope map[string]interface{}

// writeJSON is a helper method for sending JSON responses. It centralizes
// response logic so all JSON responses are consistent.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}, headers ...http.Header) {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		// If marshaling fails, it's a server-side error. Send plain text since
		// we can't be sure our JSON error format would be valid either.
		http.Error(w, "Internal Server Error: Failed to marshal JSON", http.StatusInternalServerError)
		return
	}

	if len(headers) > 0 {
		for key, value := range headers[0] {
			w.Header()[key] = value
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(js)
}

// errorJSON is a helper method for sending standardized JSON error responses
// in the shape `{"error": "message"}`.
func (s *Server) errorJSON(w http.ResponseWriter, err error, status ...int) {
	statusCode := http.StatusInternalServerError
	if len(status) > 0 {
		statusCode = status[0]
	}
	s.writeJSON(w, statusCode, envelope{"error": err.Error()})
}

// storeError maps the data layer's error taxonomy onto HTTP statuses. Every
// handler that talks to the store funnels failures through here so the
// mapping lives in exactly one place.
func (s *Server) storeError(w http.ResponseWriter, err error) {
	var validationErr *database.ValidationError
	var capacityErr *database.CapacityError

	switch {
	case errors.Is(err, database.ErrNotFound):
		s.errorJSON(w, err, http.StatusNotFound)
	case errors.As(err, &validationErr):
		s.errorJSON(w, err, http.StatusBadRequest)
	case errors.As(err, &capacityErr):
		s.errorJSON(w, err, http.StatusConflict)
	default:
		// ColumnError, FormatError, and unknown failures are server-side
		// problems; log with context, never silently dropped.
		s.log.WithError(err).Error("store error")
		s.errorJSON(w, errors.New("internal server error"), http.StatusInternalServerError)
	}
}

// listQuery builds the pagination view for a list request from its query
// parameters. The filter is applied before the page so an explicit page
// request on the incoming URL survives; a later filter change on an existing
// view resets the page, which is exercised directly in the pagination tests.
func listQuery(r *http.Request, pageSize int) *pagination.View {
	view := pagination.NewView(pageSize)
	view.SetFilter(r.URL.Query().Get("filter"))
	if page, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		view.SetPage(page)
	}
	return view
}
