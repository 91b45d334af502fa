package adaptor

import (
	"encoding/json"
	"net/http"

	"identity-service/internal/usecase"
	"identity-service/pkg/apperrors"
	"identity-service/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Auth     *AuthHandler
	Phone    *PhoneHandler
	Owner    *OwnerHandler
	Customer *CustomerHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth:     NewAuthHandler(service.Auth, log),
		Phone:    NewPhoneHandler(service.Phone, log),
		Owner:    NewOwnerHandler(service.Owner, log),
		Customer: NewCustomerHandler(service.Customer, log),
	}
}

// decodeJSON reads the request body into dst, rejecting unknown fields so
// misspelled field names fail loudly instead of being silently dropped.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// handleServiceError maps a service error to the matching HTTP response.
// Only the coded message reaches the client; the cause stays in the logs.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	msg := apperrors.MessageOf(err)

	switch apperrors.CodeOf(err) {
	case apperrors.CodeBadRequest:
		log.Warn(operation+" rejected", zap.Error(err))
		utils.ResponseBadRequest(w, msg, nil)

	case apperrors.CodeUnauthorized:
		log.Warn(operation+" unauthorized", zap.Error(err))
		utils.ResponseUnauthorized(w, msg)

	case apperrors.CodeForbidden:
		log.Warn(operation+" forbidden", zap.Error(err))
		utils.ResponseForbidden(w, msg)

	case apperrors.CodeNotFound:
		log.Warn(operation+" not found", zap.Error(err))
		utils.ResponseNotFound(w, msg)

	case apperrors.CodeConflict:
		log.Warn(operation+" conflict", zap.Error(err))
		utils.ResponseConflict(w, msg)

	case apperrors.CodeUnavailable:
		log.Error(operation+" unavailable", zap.Error(err))
		utils.ResponseUnavailable(w, msg)

	default:
		log.Error("Failed to "+operation, zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
