package response

import (
	"time"

	"identity-service/internal/data/entity"
)

type CustomerResponse struct {
	ID                 string                   `json:"id"`
	FullName           string                   `json:"full_name"`
	Email              string                   `json:"email"`
	IsActive           bool                     `json:"is_active"`
	IsProfileComplete  bool                     `json:"is_profile_complete"`
	EmailVerifyVersion int64                    `json:"email_verify_version"`
	CreatedAt          time.Time                `json:"created_at"`
	Profile            *CustomerProfileResponse `json:"profile,omitempty"`
}

type CustomerProfileResponse struct {
	Phone             string  `json:"phone"`
	CountryCode       string  `json:"country_code"`
	PhotoURL          *string `json:"photo_url,omitempty"`
	ShortBio          *string `json:"short_bio,omitempty"`
	Address           *string `json:"address,omitempty"`
	PreferredLanguage *string `json:"preferred_language,omitempty"`
}

type CustomerUpdateResponse struct {
	Customer        CustomerResponse `json:"customer"`
	EmailChangeLink string           `json:"email_change_link,omitempty"`
	PhoneChanged    bool             `json:"phone_changed"`
}

func CustomerToResponse(customer *entity.Customer, profile *entity.CustomerProfile) CustomerResponse {
	resp := CustomerResponse{
		ID:                 customer.ID.String(),
		FullName:           customer.FullName,
		Email:              customer.Email,
		IsActive:           customer.IsActive,
		IsProfileComplete:  customer.IsProfileComplete,
		EmailVerifyVersion: customer.EmailVerifyVersion,
		CreatedAt:          customer.CreatedAt,
	}

	if profile != nil {
		resp.Profile = &CustomerProfileResponse{
			Phone:             profile.Phone,
			CountryCode:       profile.CountryCode,
			PhotoURL:          profile.PhotoURL,
			ShortBio:          profile.ShortBio,
			Address:           profile.Address,
			PreferredLanguage: profile.PreferredLanguage,
		}
	}

	return resp
}
