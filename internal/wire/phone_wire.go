package wire

import (
	"identity-service/internal/adaptor"
	"identity-service/internal/data/repository"
	"identity-service/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// wirePhone configures the phone verification routes. Both account types
// use the same endpoints; the session decides whose OTP is minted.
func wirePhone(
	r chi.Router,
	phoneHandler *adaptor.PhoneHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	r.With(middleware.AuthSession(repo.Session, log)).Route("/api/phone", func(r chi.Router) {
		r.Post("/request-otp", phoneHandler.RequestOTP)
		r.Post("/verify-otp", phoneHandler.VerifyOTP)
	})
}
