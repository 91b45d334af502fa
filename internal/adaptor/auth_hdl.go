package adaptor

import (
	"net/http"

	"identity-service/internal/dto/request"
	"identity-service/internal/usecase"
	"identity-service/pkg/utils"

	"go.uber.org/zap"
)

type AuthHandler struct {
	service usecase.AuthService
	log     *zap.Logger
}

func NewAuthHandler(service usecase.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		log:     log,
	}
}

// RegisterOwner handles POST /api/owner/register
func (h *AuthHandler) RegisterOwner(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	res, err := h.service.RegisterOwner(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "register owner")
		return
	}

	utils.ResponseCreated(w, "Account registered successfully", res)
}

// RegisterCustomer handles POST /api/customer/register
func (h *AuthHandler) RegisterCustomer(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	res, err := h.service.RegisterCustomer(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "register customer")
		return
	}

	utils.ResponseCreated(w, "Account registered successfully", res)
}

// LoginOwner handles POST /api/owner/login
func (h *AuthHandler) LoginOwner(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	res, err := h.service.LoginOwner(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "login owner")
		return
	}

	utils.ResponseSuccess(w, "Login successful", res)
}

// LoginCustomer handles POST /api/customer/login
func (h *AuthHandler) LoginCustomer(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	res, err := h.service.LoginCustomer(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "login customer")
		return
	}

	utils.ResponseSuccess(w, "Login successful", res)
}

// Logout handles POST /api/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, ok := utils.GetTokenFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	if err := h.service.Logout(r.Context(), token); err != nil {
		handleServiceError(w, h.log, err, "logout")
		return
	}

	utils.ResponseSuccess(w, "Logged out successfully", nil)
}
