package api

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/vitraforge/atelier/internal/auth"
	"github.com/vitraforge/atelier/internal/database"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	googleOauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// --- Structs for JSON Payloads ---

type registerUserPayload struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginUserPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordPayload struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// --- OAUTH LOGIC ---

// googleOAuthConfig holds the configuration for our Google OAuth2 client.
// It's initialized once on first use.
var googleOAuthConfig *oauth2.Config

func (s *Server) initOAuthConfig() {
	googleOAuthConfig = &oauth2.Config{
		ClientID:     s.config.GoogleOauthClientID,
		ClientSecret: s.config.GoogleOauthClientSecret,
		RedirectURL:  s.config.GoogleOauthRedirectURL,
		Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
		Endpoint:     google.Endpoint,
	}
}

// generateStateOauthCookie creates a random state string and sets it as an
// HttpOnly cookie to prevent CSRF during the OAuth flow.
func generateStateOauthCookie(w http.ResponseWriter) string {
	b := make([]byte, 16)
	rand.Read(b)
	state := hex.EncodeToString(b)
	cookie := &http.Cookie{
		Name:     "oauthstate",
		Value:    state,
		Expires:  time.Now().Add(10 * time.Minute),
		HttpOnly: true,
	}
	http.SetCookie(w, cookie)
	return state
}

// handleGoogleLogin is the entry point for the OAuth flow. It redirects the
// user to Google's consent page.
func (s *Server) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.config.OauthConfigured() {
		s.errorJSON(w, errors.New("google login is not configured"), http.StatusNotImplemented)
		return
	}
	if googleOAuthConfig == nil {
		s.initOAuthConfig()
	}
	state := generateStateOauthCookie(w)
	url := googleOAuthConfig.AuthCodeURL(state)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// handleGoogleCallback is where Google redirects the user back after consent.
func (s *Server) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if googleOAuthConfig == nil {
		s.errorJSON(w, errors.New("google login is not configured"), http.StatusNotImplemented)
		return
	}

	// 1. Validate the state cookie to ensure the request is legitimate.
	oauthState, err := r.Cookie("oauthstate")
	if err != nil || r.FormValue("state") != oauthState.Value {
		s.errorJSON(w, errors.New("invalid oauth state"), http.StatusUnauthorized)
		return
	}

	// 2. Exchange the authorization code from Google for an access token.
	code := r.FormValue("code")
	token, err := googleOAuthConfig.Exchange(r.Context(), code)
	if err != nil {
		s.errorJSON(w, fmt.Errorf("failed to exchange code for token: %w", err), http.StatusInternalServerError)
		return
	}

	// 3. Use the access token to get the user's profile info from Google.
	oauth2Service, err := googleOauth2.NewService(context.Background(),
		option.WithTokenSource(googleOAuthConfig.TokenSource(context.Background(), token)))
	if err != nil {
		s.errorJSON(w, fmt.Errorf("failed to create oauth service: %w", err), http.StatusInternalServerError)
		return
	}
	userInfo, err := oauth2Service.Userinfo.Get().Do()
	if err != nil {
		s.errorJSON(w, fmt.Errorf("failed to get user info: %w", err), http.StatusInternalServerError)
		return
	}

	// 4. "Upsert" user: find by email or create on first login. The profile
	// row is NOT created here; it appears lazily when the user first saves
	// their profile, so a missing profile row simply means "new user".
	user, err := s.db.GetUserByEmail(r.Context(), s.db.DB(), userInfo.Email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			err = s.db.Write(func(tx *sql.Tx) error {
				var createErr error
				// password_hash is empty for OAuth-only users.
				user, createErr = s.db.CreateUser(r.Context(), tx, userInfo.Email, "", false)
				return createErr
			})
			if err != nil {
				s.errorJSON(w, errors.New("failed to create user"), http.StatusInternalServerError)
				return
			}
		} else {
			s.storeError(w, err)
			return
		}
	}

	// 5. Generate our application's own JWT for session management.
	appToken, err := auth.GenerateJWT(user.ID, user.IsAdmin, s.config.JwtSecret)
	if err != nil {
		s.errorJSON(w, errors.New("could not generate token"), http.StatusInternalServerError)
		return
	}

	// 6. Redirect back to the frontend's callback page with the token.
	redirectURL := fmt.Sprintf("%s/auth/callback?token=%s", s.config.FrontendURL, appToken)
	http.Redirect(w, r, redirectURL, http.StatusTemporaryRedirect)
}

// --- PASSWORD-BASED AUTH ---

// handleRegisterUser handles creation of a new account via email/password.
// The profile row is created in the same transaction, so password signups
// land with a profile already loaded.
func (s *Server) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	var payload registerUserPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.errorJSON(w, errors.New("bad request: could not decode JSON"), http.StatusBadRequest)
		return
	}

	if payload.Email == "" || payload.Password == "" || payload.Username == "" {
		s.errorJSON(w, errors.New("username, email, and password are required"), http.StatusBadRequest)
		return
	}
	if len(payload.Password) < 8 {
		s.errorJSON(w, errors.New("password must be at least 8 characters long"), http.StatusBadRequest)
		return
	}
	if payload.FullName == "" {
		payload.FullName = payload.Username
	}

	_, err := s.db.GetUserByEmail(r.Context(), s.db.DB(), payload.Email)
	if err == nil {
		s.errorJSON(w, errors.New("a user with this email address already exists"), http.StatusConflict)
		return
	}
	if !errors.Is(err, database.ErrNotFound) {
		s.storeError(w, err)
		return
	}

	hashedPassword, err := auth.HashPassword(payload.Password)
	if err != nil {
		s.errorJSON(w, errors.New("internal server error"), http.StatusInternalServerError)
		return
	}

	err = s.db.Write(func(tx *sql.Tx) error {
		user, err := s.db.CreateUser(r.Context(), tx, payload.Email, hashedPassword, false)
		if err != nil {
			return err
		}
		_, err = s.db.CreateProfile(r.Context(), tx, user.ID, payload.FullName, payload.Username)
		return err
	})
	if err != nil {
		s.log.WithError(err).Error("registration failed")
		s.errorJSON(w, errors.New("could not create user"), http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusCreated, envelope{"message": "user registered successfully"})
}

// handleLoginUser handles authentication for an existing user via email/password.
func (s *Server) handleLoginUser(w http.ResponseWriter, r *http.Request) {
	var payload loginUserPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.errorJSON(w, errors.New("bad request: could not decode JSON"), http.StatusBadRequest)
		return
	}

	if payload.Email == "" || payload.Password == "" {
		s.errorJSON(w, errors.New("email and password are required"), http.StatusBadRequest)
		return
	}

	user, err := s.db.GetUserByEmail(r.Context(), s.db.DB(), payload.Email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			s.errorJSON(w, errors.New("invalid email or password"), http.StatusUnauthorized)
			return
		}
		s.storeError(w, err)
		return
	}

	// OAuth-only users have no password set.
	if !user.PasswordHash.Valid || user.PasswordHash.String == "" {
		s.errorJSON(w, errors.New("please log in using the method you signed up with"), http.StatusUnauthorized)
		return
	}

	if !auth.CheckPasswordHash(payload.Password, user.PasswordHash.String) {
		s.errorJSON(w, errors.New("invalid email or password"), http.StatusUnauthorized)
		return
	}

	tokenString, err := auth.GenerateJWT(user.ID, user.IsAdmin, s.config.JwtSecret)
	if err != nil {
		s.errorJSON(w, errors.New("could not generate token"), http.StatusInternalServerError)
		return
	}

	// Fetch the profile for the session exactly once. A missing profile is
	// not an error here: it means a new user who hasn't saved one yet, and
	// the frontend renders accordingly.
	var profile interface{}
	if p, err := s.db.GetProfileByUserID(r.Context(), s.db.DB(), user.ID); err == nil {
		resp := toProfileResponse(p)
		profile = resp
	} else if !errors.Is(err, database.ErrNotFound) {
		s.log.WithError(err).Warn("could not load profile at login")
	}

	s.writeJSON(w, http.StatusOK, envelope{
		"token":   tokenString,
		"isAdmin": user.IsAdmin,
		"profile": profile,
	})
}

// handleChangePassword sets a new password for the authenticated user after
// verifying the current one. OAuth-only accounts have no current password and
// can use this to set one, enabling email/password login alongside Google.
func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, err := s.getUserIDFromContext(r)
	if err != nil {
		s.errorJSON(w, err, http.StatusInternalServerError)
		return
	}

	var payload changePasswordPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.errorJSON(w, errors.New("bad request: could not decode JSON"), http.StatusBadRequest)
		return
	}
	if len(payload.NewPassword) < 8 {
		s.errorJSON(w, errors.New("new password must be at least 8 characters long"), http.StatusBadRequest)
		return
	}

	user, err := s.db.GetUserByID(r.Context(), s.db.DB(), userID)
	if err != nil {
		s.storeError(w, err)
		return
	}

	if user.PasswordHash.Valid && user.PasswordHash.String != "" {
		if !auth.CheckPasswordHash(payload.CurrentPassword, user.PasswordHash.String) {
			s.errorJSON(w, errors.New("current password is incorrect"), http.StatusUnauthorized)
			return
		}
	}

	hashed, err := auth.HashPassword(payload.NewPassword)
	if err != nil {
		s.errorJSON(w, errors.New("internal server error"), http.StatusInternalServerError)
		return
	}

	err = s.db.Write(func(tx *sql.Tx) error {
		return s.db.UpdateUserPassword(r.Context(), tx, userID, hashed)
	})
	if err != nil {
		s.storeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{"message": "password updated"})
}
