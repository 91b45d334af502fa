package middleware

import (
	"net/http"
	"strings"

	"identity-service/internal/data/entity"
	"identity-service/internal/data/repository"
	"identity-service/pkg/utils"

	"go.uber.org/zap"
)

// AuthSession validates the bearer session token and stores the account
// identity in the request context.
func AuthSession(sessionRepo repository.SessionRepository, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.ResponseUnauthorized(w, "Missing authorization token")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				utils.ResponseUnauthorized(w, "Invalid token format. Use: Bearer <token>")
				return
			}

			token := parts[1]

			session, err := sessionRepo.FindValidSession(r.Context(), token)
			if err != nil {
				logger.Error("Failed to validate session", zap.Error(err))
				utils.ResponseInternalError(w, "Internal server error")
				return
			}

			if session == nil {
				logger.Warn("Invalid or expired session")
				utils.ResponseUnauthorized(w, "Invalid or expired session")
				return
			}

			ctx := utils.SetAccountContext(r.Context(), session.AccountID, string(session.AccountType))
			ctx = utils.SetTokenContext(ctx, token)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAccountType rejects sessions that belong to the other account
// population. Owner routes never accept customer sessions and vice versa.
func RequireAccountType(accountType entity.AccountType, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := utils.GetAccountTypeFromContext(r.Context())
			if !ok {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			if got != string(accountType) {
				logger.Warn("Account type mismatch",
					zap.String("required", string(accountType)),
					zap.String("got", got),
					zap.String("path", r.URL.Path))
				utils.ResponseForbidden(w, "Access denied for this account type")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
