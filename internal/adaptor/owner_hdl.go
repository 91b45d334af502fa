package adaptor

import (
	"net/http"

	"identity-service/internal/dto/request"
	"identity-service/internal/usecase"
	"identity-service/pkg/utils"

	"go.uber.org/zap"
)

type OwnerHandler struct {
	service usecase.OwnerService
	log     *zap.Logger
}

func NewOwnerHandler(service usecase.OwnerService, log *zap.Logger) *OwnerHandler {
	return &OwnerHandler{
		service: service,
		log:     log,
	}
}

// GetProfile handles GET /api/owner/profile
func (h *OwnerHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := utils.GetAccountIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	res, err := h.service.GetProfile(r.Context(), ownerID)
	if err != nil {
		handleServiceError(w, h.log, err, "get owner profile")
		return
	}

	utils.ResponseSuccess(w, "Profile retrieved successfully", res)
}

// CompleteOnboarding handles POST /api/owner/onboarding
func (h *OwnerHandler) CompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := utils.GetAccountIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.OwnerOnboardingRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	res, err := h.service.CompleteOnboarding(r.Context(), ownerID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "complete owner onboarding")
		return
	}

	utils.ResponseCreated(w, "Onboarding completed successfully", res)
}

// UpdateAccount handles PATCH /api/owner/profile
func (h *OwnerHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := utils.GetAccountIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.OwnerUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	res, err := h.service.UpdateAccount(r.Context(), ownerID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update owner account")
		return
	}

	message := "Account updated successfully"
	if res.EmailChangeLink != "" {
		message = "Account updated, check your new email address to confirm the change"
	}

	utils.ResponseSuccess(w, message, res)
}

// ConfirmEmailChange handles GET /api/owner/confirm-email?token=...
// The route is public: the link lands in an email client, not in an
// authenticated session.
func (h *OwnerHandler) ConfirmEmailChange(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		utils.ResponseBadRequest(w, "Verification token is required", nil)
		return
	}

	res, err := h.service.ConfirmEmailChange(r.Context(), token)
	if err != nil {
		handleServiceError(w, h.log, err, "confirm owner email change")
		return
	}

	utils.ResponseSuccess(w, "Email address updated successfully", res)
}
