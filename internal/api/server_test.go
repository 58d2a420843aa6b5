package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitraforge/atelier/internal/auth"
	"github.com/vitraforge/atelier/internal/config"
	"github.com/vitraforge/atelier/internal/database"
	"github.com/vitraforge/atelier/internal/pagination"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return &Server{
		config: &config.Config{JwtSecret: "test-secret", FrontendURL: "http://localhost:5173"},
		log:    log,
	}
}

func TestStoreErrorStatusMapping(t *testing.T) {
	s := testServer(t)

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", database.ErrNotFound, http.StatusNotFound},
		{"validation", &database.ValidationError{Field: "id", Reason: "must be a UUID"}, http.StatusBadRequest},
		{"capacity", &database.CapacityError{MeetingID: "m", Spots: 3}, http.StatusConflict},
		{"schema", &database.ColumnError{Err: errors.New("no such column")}, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.storeError(rec, tc.err)
			assert.Equal(t, tc.status, rec.Code)
			assert.Contains(t, rec.Body.String(), "error")
		})
	}
}

func TestListQuery(t *testing.T) {
	newRequest := func(query string) *http.Request {
		return &http.Request{URL: &url.URL{RawQuery: query}}
	}

	view := listQuery(newRequest(""), pagination.DefaultPageSize)
	assert.Equal(t, "all", view.Filter())
	assert.Equal(t, 1, view.Page())
	assert.Equal(t, pagination.DefaultPageSize, view.PageSize())

	view = listQuery(newRequest("filter=commercial&page=3"), pagination.DefaultPageSize)
	assert.Equal(t, "commercial", view.Filter())
	assert.Equal(t, 3, view.Page())
	assert.Equal(t, 18, view.Offset())

	// Junk page values fall back to page 1.
	view = listQuery(newRequest("page=banana"), pagination.AdminPageSize)
	assert.Equal(t, 1, view.Page())
}

func TestAuthMiddleware(t *testing.T) {
	s := testServer(t)

	protected := s.authMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := s.getUserIDFromContext(r)
		require.NoError(t, err)
		w.Write([]byte(userID))
	}))

	t.Run("no token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer junk")
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("bearer header", func(t *testing.T) {
		token, err := auth.GenerateJWT("0b906e8a-8d3c-4a1e-9c0f-7f31c1e9dc55", false, "test-secret")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "0b906e8a-8d3c-4a1e-9c0f-7f31c1e9dc55", rec.Body.String())
	})

	t.Run("query fallback for event streams", func(t *testing.T) {
		token, err := auth.GenerateJWT("0b906e8a-8d3c-4a1e-9c0f-7f31c1e9dc55", true, "test-secret")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/?token="+token, nil)
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestAdminMiddleware(t *testing.T) {
	s := testServer(t)

	adminOnly := s.authMiddleware(s.adminMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	userToken, err := auth.GenerateJWT("0b906e8a-8d3c-4a1e-9c0f-7f31c1e9dc55", false, "test-secret")
	require.NoError(t, err)
	adminToken, err := auth.GenerateJWT("1c817f9b-9e4d-4b2f-8d1e-8a42d2fadc66", true, "test-secret")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	rec := httptest.NewRecorder()
	adminOnly.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec = httptest.NewRecorder()
	adminOnly.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
