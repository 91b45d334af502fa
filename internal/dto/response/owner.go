package response

import (
	"time"

	"identity-service/internal/data/entity"
)

type OwnerResponse struct {
	ID                 string                `json:"id"`
	FullName           string                `json:"full_name"`
	Email              string                `json:"email"`
	IsActive           bool                  `json:"is_active"`
	IsProfileComplete  bool                  `json:"is_profile_complete"`
	EmailVerifyVersion int64                 `json:"email_verify_version"`
	CreatedAt          time.Time             `json:"created_at"`
	Profile            *OwnerProfileResponse `json:"profile,omitempty"`
}

type OwnerProfileResponse struct {
	Phone             string  `json:"phone"`
	CountryCode       string  `json:"country_code"`
	PhotoURL          *string `json:"photo_url,omitempty"`
	ShortBio          *string `json:"short_bio,omitempty"`
	Address           *string `json:"address,omitempty"`
	PreferredLanguage *string `json:"preferred_language,omitempty"`
	GSTNumber         *string `json:"gst_number,omitempty"`
	GSTLegalName      *string `json:"gst_legal_name,omitempty"`
	GSTAddress        *string `json:"gst_address,omitempty"`
	GSTStateCode      *string `json:"gst_state_code,omitempty"`
}

// OwnerUpdateResponse reports the outcome of a single mutation call. The
// email change link is only present when an email change was initiated;
// the stored email stays unchanged until the link is confirmed.
type OwnerUpdateResponse struct {
	Owner           OwnerResponse `json:"owner"`
	EmailChangeLink string        `json:"email_change_link,omitempty"`
	PhoneChanged    bool          `json:"phone_changed"`
}

func OwnerToResponse(owner *entity.Owner, profile *entity.OwnerProfile) OwnerResponse {
	resp := OwnerResponse{
		ID:                 owner.ID.String(),
		FullName:           owner.FullName,
		Email:              owner.Email,
		IsActive:           owner.IsActive,
		IsProfileComplete:  owner.IsProfileComplete,
		EmailVerifyVersion: owner.EmailVerifyVersion,
		CreatedAt:          owner.CreatedAt,
	}

	if profile != nil {
		resp.Profile = &OwnerProfileResponse{
			Phone:             profile.Phone,
			CountryCode:       profile.CountryCode,
			PhotoURL:          profile.PhotoURL,
			ShortBio:          profile.ShortBio,
			Address:           profile.Address,
			PreferredLanguage: profile.PreferredLanguage,
			GSTNumber:         profile.GSTNumber,
			GSTLegalName:      profile.GSTLegalName,
			GSTAddress:        profile.GSTAddress,
			GSTStateCode:      profile.GSTStateCode,
		}
	}

	return resp
}
