package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

// RegisterRoutes sets up all the API endpoints and middleware for the application.
func (s *Server) RegisterRoutes(r *chi.Mux) {
	// --- Global Middleware (Applied to ALL routes) ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer) // Recovers from panics and returns a 500 error

	// --- REST API Group with CORS ---
	// All routes defined within this group are prefixed with "/api/v1".
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000", s.config.FrontendURL},
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300, // How long the browser can cache preflight results
		}))

		// Auth routes
		r.Post("/users/register", s.handleRegisterUser)
		r.Post("/users/login", s.handleLoginUser)
		r.Get("/auth/google/login", s.handleGoogleLogin)
		r.Get("/auth/google/callback", s.handleGoogleCallback)

		// Public catalog routes
		r.Get("/projects", s.handleListProjects)
		r.Get("/projects/{projectID}", s.handleGetProject)
		r.Get("/gallery", s.handleListGallery)
		r.Get("/gallery/{itemID}", s.handleGetGalleryItem)
		r.Get("/reviews", s.handleListApprovedReviews)
		r.Get("/meetings", s.handleListUpcomingMeetings)
		r.Get("/meetings/{meetingID}", s.handleGetMeeting)
		r.Get("/search", s.handleSearch)

		// Public form submissions, rate limited per client IP so the lead
		// forms can't be trivially flooded.
		r.Group(func(r chi.Router) {
			r.Use(httprate.Limit(
				10,
				1*time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint),
			))
			r.Post("/contact", s.handleCreateContactMessage)
			r.Post("/reviews", s.handleCreateReview)
			r.Post("/meetings/{meetingID}/register", s.handleRegisterForMeeting)
			r.Post("/projects/{projectID}/consult", s.handleRequestConsultation)
		})

		// --- Authenticated Routes ---
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/users/me", s.handleGetMyProfile)
			r.Patch("/users/me", s.handleUpdateMyProfile)
			r.Put("/users/me/password", s.handleChangePassword)
			r.Put("/users/me/avatar", s.handleUploadAvatar)
			r.Get("/users/me/projects", s.handleListMyProjects)

			// --- Admin Back-Office Routes ---
			r.Group(func(r chi.Router) {
				r.Use(s.adminMiddleware)

				r.Get("/admin/dashboard", s.handleDashboard)
				r.Get("/admin/notifications/stream", s.handleNotificationStream)
				r.Get("/admin/notifications", s.handleListNotifications)
				r.Post("/admin/notifications/{notificationID}/read", s.handleMarkNotificationRead)

				r.Post("/admin/projects", s.handleCreateProject)
				r.Patch("/admin/projects/{projectID}", s.handleUpdateProject)
				r.Delete("/admin/projects/{projectID}", s.handleDeleteProject)
				r.Post("/admin/projects/{projectID}/featured", s.handleToggleProjectFeatured)

				r.Post("/admin/gallery", s.handleCreateGalleryItem)
				r.Patch("/admin/gallery/{itemID}", s.handleUpdateGalleryItem)
				r.Delete("/admin/gallery/{itemID}", s.handleDeleteGalleryItem)
				r.Post("/admin/gallery/{itemID}/featured", s.handleToggleGalleryFeatured)
				r.Post("/admin/gallery/upload", s.handleUploadGalleryImage)

				r.Get("/admin/reviews", s.handleListReviews)
				r.Post("/admin/reviews/{reviewID}/approve", s.handleApproveReview)
				r.Post("/admin/reviews/{reviewID}/reject", s.handleRejectReview)

				r.Post("/admin/meetings", s.handleCreateMeeting)
				r.Delete("/admin/meetings/{meetingID}", s.handleDeleteMeeting)
				r.Get("/admin/meetings/all", s.handleListAllMeetings)
				r.Get("/admin/registrations", s.handleListRegistrations)
				r.Patch("/admin/registrations/{registrationID}", s.handleSetRegistrationStatus)

				r.Get("/admin/messages", s.handleListContactMessages)
				r.Patch("/admin/messages/{messageID}", s.handleSetContactMessageStatus)

				r.Get("/admin/profiles", s.handleListProfiles)
				r.Post("/admin/profiles/{profileID}/active", s.handleSetProfileActive)
			})
		})
	})
}
