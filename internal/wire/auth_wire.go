package wire

import (
	"identity-service/internal/adaptor"
	"identity-service/internal/data/repository"
	"identity-service/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// wireAuth configures registration, login and logout routes
func wireAuth(
	r chi.Router,
	authHandler *adaptor.AuthHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	r.Post("/api/owner/register", authHandler.RegisterOwner)
	r.Post("/api/owner/login", authHandler.LoginOwner)
	r.Post("/api/customer/register", authHandler.RegisterCustomer)
	r.Post("/api/customer/login", authHandler.LoginCustomer)

	// ==================== PROTECTED ROUTES ====================
	r.With(middleware.AuthSession(repo.Session, log)).Post("/api/logout", authHandler.Logout)
}
