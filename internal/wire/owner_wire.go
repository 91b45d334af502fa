package wire

import (
	"identity-service/internal/adaptor"
	"identity-service/internal/data/entity"
	"identity-service/internal/data/repository"
	"identity-service/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// wireOwner configures owner account routes
func wireOwner(
	r chi.Router,
	ownerHandler *adaptor.OwnerHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	// Email confirmation arrives from an email client without a session.
	r.Get("/api/owner/confirm-email", ownerHandler.ConfirmEmailChange)

	// ==================== PROTECTED OWNER ROUTES ====================
	r.With(
		middleware.AuthSession(repo.Session, log),
		middleware.RequireAccountType(entity.AccountTypeOwner, log),
	).Route("/api/owner", func(r chi.Router) {
		r.Get("/profile", ownerHandler.GetProfile)
		r.Patch("/profile", ownerHandler.UpdateAccount)
		r.Post("/onboarding", ownerHandler.CompleteOnboarding)
	})
}
