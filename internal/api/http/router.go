package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"sigap-backend/internal/domain"
	"sigap-backend/internal/repository"
	"sigap-backend/internal/security"
	"sigap-backend/internal/service"
)

// RouterConfig carries everything the HTTP surface needs.
type RouterConfig struct {
	Auth          service.AuthService
	Users         service.UserService
	Fokontany     service.FokontanyService
	Residences    service.ResidenceService
	Persons       service.PersonService
	Approvals     service.ApprovalService
	Notifications service.NotificationService

	Tokens   security.TokenManager
	UserRepo repository.UserRepository

	UploadsDir  string
	MaxPhotoMiB int64
}

// NewRouter wires the full route table. Everything under /api except login
// and forgot-password requires a bearer token; /uploads serves the photo
// files read-only.
func NewRouter(cfg RouterConfig) *mux.Router {
	authHandler := NewAuthHandler(cfg.Auth)
	userHandler := NewUserHandler(cfg.Users, cfg.MaxPhotoMiB)
	fokontanyHandler := NewFokontanyHandler(cfg.Fokontany)
	residenceHandler := NewResidenceHandler(cfg.Residences, cfg.Persons, cfg.MaxPhotoMiB)
	submissionHandler := NewSubmissionHandler(cfg.Approvals, cfg.MaxPhotoMiB)
	notificationHandler := NewNotificationHandler(cfg.Notifications)

	adminOnly := RequireRoles(domain.RoleAdmin)
	reviewers := RequireRoles(domain.RoleSecretary, domain.RoleAdmin)

	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()

	// Unauthenticated.
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/forgot-password", authHandler.ForgotPassword).Methods(http.MethodPost)

	// Everything below carries a bearer token.
	authed := api.NewRoute().Subrouter()
	middleware := NewAuthMiddleware(cfg.Tokens, cfg.UserRepo)
	authed.Use(middleware.Authenticate)

	authed.HandleFunc("/auth/me", authHandler.Me).Methods(http.MethodGet)
	authed.HandleFunc("/auth/change-password", authHandler.ChangePassword).Methods(http.MethodPost)
	authed.HandleFunc("/auth/password-resets", adminOnly(authHandler.ListPasswordResets)).Methods(http.MethodGet)
	authed.HandleFunc("/auth/password-resets/{id}/approve", adminOnly(authHandler.ApprovePasswordReset)).Methods(http.MethodPost)
	authed.HandleFunc("/auth/password-changes", adminOnly(authHandler.ListPasswordChanges)).Methods(http.MethodGet)
	authed.HandleFunc("/auth/password-changes/{id}/approve", adminOnly(authHandler.ApprovePasswordChange)).Methods(http.MethodPost)

	authed.HandleFunc("/users", adminOnly(userHandler.Create)).Methods(http.MethodPost)
	authed.HandleFunc("/users", adminOnly(userHandler.List)).Methods(http.MethodGet)
	authed.HandleFunc("/users/me/photo", userHandler.UpdateMyPhoto).Methods(http.MethodPost)
	authed.HandleFunc("/users/{id}", adminOnly(userHandler.Get)).Methods(http.MethodGet)
	authed.HandleFunc("/users/{id}", adminOnly(userHandler.Update)).Methods(http.MethodPut)
	authed.HandleFunc("/users/{id}", adminOnly(userHandler.Delete)).Methods(http.MethodDelete)
	authed.HandleFunc("/users/{id}/activate", adminOnly(userHandler.Activate)).Methods(http.MethodPost)
	authed.HandleFunc("/users/{id}/deactivate", adminOnly(userHandler.Deactivate)).Methods(http.MethodPost)
	authed.HandleFunc("/users/{id}/invalidate-password", adminOnly(authHandler.InvalidatePassword)).Methods(http.MethodPost)

	authed.HandleFunc("/fokontany", fokontanyHandler.List).Methods(http.MethodGet)
	authed.HandleFunc("/fokontany/search", fokontanyHandler.Search).Methods(http.MethodGet)
	authed.HandleFunc("/fokontany/nearest", fokontanyHandler.Nearest).Methods(http.MethodGet)
	authed.HandleFunc("/fokontany/me", fokontanyHandler.Mine).Methods(http.MethodGet)
	authed.HandleFunc("/fokontany/import", adminOnly(fokontanyHandler.Import)).Methods(http.MethodPost)
	authed.HandleFunc("/fokontany/{id}", fokontanyHandler.Get).Methods(http.MethodGet)

	authed.HandleFunc("/residences", residenceHandler.List).Methods(http.MethodGet)
	authed.HandleFunc("/residences/{id}", residenceHandler.Get).Methods(http.MethodGet)
	authed.HandleFunc("/residences/{id}", reviewers(residenceHandler.Update)).Methods(http.MethodPut)
	authed.HandleFunc("/residences/{id}", adminOnly(residenceHandler.Delete)).Methods(http.MethodDelete)
	authed.HandleFunc("/residences/{id}/activate", reviewers(residenceHandler.Activate)).Methods(http.MethodPost)
	authed.HandleFunc("/residences/{id}/deactivate", reviewers(residenceHandler.Deactivate)).Methods(http.MethodPost)
	authed.HandleFunc("/residences/{id}/photos", reviewers(residenceHandler.AddPhoto)).Methods(http.MethodPost)
	authed.HandleFunc("/residences/{id}/photos/{photoID}", reviewers(residenceHandler.DeletePhoto)).Methods(http.MethodDelete)
	authed.HandleFunc("/residences/{id}/persons", residenceHandler.ListPersons).Methods(http.MethodGet)
	authed.HandleFunc("/residences/{id}/persons", reviewers(residenceHandler.AddPerson)).Methods(http.MethodPost)
	authed.HandleFunc("/persons/{id}", reviewers(residenceHandler.UpdatePerson)).Methods(http.MethodPut)
	authed.HandleFunc("/persons/{id}", reviewers(residenceHandler.DeletePerson)).Methods(http.MethodDelete)

	authed.HandleFunc("/submissions", submissionHandler.Submit).Methods(http.MethodPost)
	authed.HandleFunc("/submissions/photos", submissionHandler.StagePhoto).Methods(http.MethodPost)
	authed.HandleFunc("/submissions/pending", reviewers(submissionHandler.ListPending)).Methods(http.MethodGet)
	// Detail and the transitions stay open to agents: the service allows an
	// agent to act on their own submission and refuses everything else.
	authed.HandleFunc("/submissions/{id}", submissionHandler.Get).Methods(http.MethodGet)
	authed.HandleFunc("/submissions/{id}/approve", submissionHandler.Approve).Methods(http.MethodPost)
	authed.HandleFunc("/submissions/{id}/reject", submissionHandler.Reject).Methods(http.MethodPost)

	authed.HandleFunc("/notifications", notificationHandler.List).Methods(http.MethodGet)
	authed.HandleFunc("/notifications/unread-count", notificationHandler.UnreadCount).Methods(http.MethodGet)
	authed.HandleFunc("/notifications/{id}/read", notificationHandler.MarkRead).Methods(http.MethodPost)

	router.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir))))

	return router
}
