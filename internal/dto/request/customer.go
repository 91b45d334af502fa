package request

import (
	"identity-service/pkg/types"
)

type CustomerOnboardingRequest struct {
	PhoneToken        string  `json:"phoneToken" validate:"required"`
	CountryCode       string  `json:"countryCode" validate:"required,min=1,max=5"`
	PhotoURL          *string `json:"photoUrl,omitempty" validate:"omitempty,url"`
	ShortBio          *string `json:"shortBio,omitempty" validate:"omitempty,max=500"`
	Address           *string `json:"address,omitempty" validate:"omitempty,max=500"`
	PreferredLanguage *string `json:"preferredLanguage,omitempty" validate:"omitempty,oneof=en hi bn mr ta te gu kn ml pa"`
}

type CustomerUpdateRequest struct {
	FullName          types.Optional[string] `json:"fullName"`
	Email             types.Optional[string] `json:"email"`
	PhoneToken        types.Optional[string] `json:"phoneToken"`
	CountryCode       types.Optional[string] `json:"countryCode"`
	PhotoURL          types.Optional[string] `json:"photoUrl"`
	ShortBio          types.Optional[string] `json:"shortBio"`
	Address           types.Optional[string] `json:"address"`
	PreferredLanguage types.Optional[string] `json:"preferredLanguage"`
}

func (r *CustomerUpdateRequest) Validate() map[string]string {
	errs := make(map[string]string)

	requireValue(errs, "fullName", r.FullName, "min=2,max=100")
	requireValue(errs, "email", r.Email, "email")
	requireValue(errs, "phoneToken", r.PhoneToken, "min=1")
	requireValue(errs, "countryCode", r.CountryCode, "min=1,max=5")
	checkValue(errs, "photoUrl", r.PhotoURL, "url")
	checkValue(errs, "shortBio", r.ShortBio, "max=500")
	checkValue(errs, "address", r.Address, "max=500")
	checkValue(errs, "preferredLanguage", r.PreferredLanguage, languageOneOf)

	if len(errs) == 0 {
		return nil
	}
	return errs
}
