package adaptor

import (
	"net/http"

	"identity-service/internal/dto/request"
	"identity-service/internal/usecase"
	"identity-service/pkg/utils"

	"go.uber.org/zap"
)

type CustomerHandler struct {
	service usecase.CustomerService
	log     *zap.Logger
}

func NewCustomerHandler(service usecase.CustomerService, log *zap.Logger) *CustomerHandler {
	return &CustomerHandler{
		service: service,
		log:     log,
	}
}

// GetProfile handles GET /api/customer/profile
func (h *CustomerHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	customerID, ok := utils.GetAccountIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	res, err := h.service.GetProfile(r.Context(), customerID)
	if err != nil {
		handleServiceError(w, h.log, err, "get customer profile")
		return
	}

	utils.ResponseSuccess(w, "Profile retrieved successfully", res)
}

// CompleteOnboarding handles POST /api/customer/onboarding
func (h *CustomerHandler) CompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	customerID, ok := utils.GetAccountIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CustomerOnboardingRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	res, err := h.service.CompleteOnboarding(r.Context(), customerID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "complete customer onboarding")
		return
	}

	utils.ResponseCreated(w, "Onboarding completed successfully", res)
}

// UpdateAccount handles PATCH /api/customer/profile
func (h *CustomerHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	customerID, ok := utils.GetAccountIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CustomerUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	res, err := h.service.UpdateAccount(r.Context(), customerID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update customer account")
		return
	}

	message := "Account updated successfully"
	if res.EmailChangeLink != "" {
		message = "Account updated, check your new email address to confirm the change"
	}

	utils.ResponseSuccess(w, message, res)
}

// ConfirmEmailChange handles GET /api/customer/confirm-email?token=...
func (h *CustomerHandler) ConfirmEmailChange(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		utils.ResponseBadRequest(w, "Verification token is required", nil)
		return
	}

	res, err := h.service.ConfirmEmailChange(r.Context(), token)
	if err != nil {
		handleServiceError(w, h.log, err, "confirm customer email change")
		return
	}

	utils.ResponseSuccess(w, "Email address updated successfully", res)
}
