package response

import (
	"time"

	"identity-service/internal/data/entity"
)

type AuthResponse struct {
	AccountID         string             `json:"account_id"`
	AccountType       entity.AccountType `json:"account_type"`
	Token             string             `json:"token"`
	ExpiresAt         time.Time          `json:"expires_at"`
	Email             string             `json:"email"`
	FullName          string             `json:"full_name"`
	IsActive          bool               `json:"is_active"`
	IsProfileComplete bool               `json:"is_profile_complete"`
}

func OwnerAuthToResponse(owner *entity.Owner, session *entity.Session) *AuthResponse {
	resp := &AuthResponse{
		AccountID:         owner.ID.String(),
		AccountType:       entity.AccountTypeOwner,
		Email:             owner.Email,
		FullName:          owner.FullName,
		IsActive:          owner.IsActive,
		IsProfileComplete: owner.IsProfileComplete,
	}

	if session != nil {
		resp.Token = session.Token.String()
		resp.ExpiresAt = session.ExpiresAt
	}

	return resp
}

func CustomerAuthToResponse(customer *entity.Customer, session *entity.Session) *AuthResponse {
	resp := &AuthResponse{
		AccountID:         customer.ID.String(),
		AccountType:       entity.AccountTypeCustomer,
		Email:             customer.Email,
		FullName:          customer.FullName,
		IsActive:          customer.IsActive,
		IsProfileComplete: customer.IsProfileComplete,
	}

	if session != nil {
		resp.Token = session.Token.String()
		resp.ExpiresAt = session.ExpiresAt
	}

	return resp
}
