package adaptor

import (
	"net/http"

	"identity-service/internal/data/entity"
	"identity-service/internal/dto/request"
	"identity-service/internal/usecase"
	"identity-service/pkg/utils"

	"go.uber.org/zap"
)

type PhoneHandler struct {
	service usecase.PhoneService
	log     *zap.Logger
}

func NewPhoneHandler(service usecase.PhoneService, log *zap.Logger) *PhoneHandler {
	return &PhoneHandler{
		service: service,
		log:     log,
	}
}

// RequestOTP handles POST /api/phone/request-otp
func (h *PhoneHandler) RequestOTP(w http.ResponseWriter, r *http.Request) {
	accountID, ok := utils.GetAccountIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}
	accountType, ok := utils.GetAccountTypeFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.RequestOTPRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	err := h.service.RequestOTP(r.Context(), accountID, entity.AccountType(accountType), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "request OTP")
		return
	}

	utils.ResponseSuccess(w, "OTP sent successfully", nil)
}

// VerifyOTP handles POST /api/phone/verify-otp
func (h *PhoneHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	accountID, ok := utils.GetAccountIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}
	accountType, ok := utils.GetAccountTypeFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.VerifyOTPRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	res, err := h.service.VerifyOTP(r.Context(), accountID, entity.AccountType(accountType), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "verify OTP")
		return
	}

	utils.ResponseSuccess(w, "Phone verified successfully", res)
}
