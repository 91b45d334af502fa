package wire

import (
	"identity-service/internal/adaptor"
	"identity-service/internal/data/entity"
	"identity-service/internal/data/repository"
	"identity-service/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// wireCustomer configures customer account routes
func wireCustomer(
	r chi.Router,
	customerHandler *adaptor.CustomerHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	r.Get("/api/customer/confirm-email", customerHandler.ConfirmEmailChange)

	// ==================== PROTECTED CUSTOMER ROUTES ====================
	r.With(
		middleware.AuthSession(repo.Session, log),
		middleware.RequireAccountType(entity.AccountTypeCustomer, log),
	).Route("/api/customer", func(r chi.Router) {
		r.Get("/profile", customerHandler.GetProfile)
		r.Patch("/profile", customerHandler.UpdateAccount)
		r.Post("/onboarding", customerHandler.CompleteOnboarding)
	})
}
