package request

import (
	"identity-service/pkg/types"
	"identity-service/pkg/utils"
)

// Preferred languages form a closed set, validated once at the boundary.
const languageOneOf = "oneof=en hi bn mr ta te gu kn ml pa"

type OwnerOnboardingRequest struct {
	PhoneToken        string  `json:"phoneToken" validate:"required"`
	CountryCode       string  `json:"countryCode" validate:"required,min=1,max=5"`
	PhotoURL          *string `json:"photoUrl,omitempty" validate:"omitempty,url"`
	ShortBio          *string `json:"shortBio,omitempty" validate:"omitempty,max=500"`
	Address           *string `json:"address,omitempty" validate:"omitempty,max=500"`
	PreferredLanguage *string `json:"preferredLanguage,omitempty" validate:"omitempty,oneof=en hi bn mr ta te gu kn ml pa"`
	GSTNumber         *string `json:"gstNumber,omitempty" validate:"omitempty,len=15"`
	GSTLegalName      *string `json:"gstLegalName,omitempty" validate:"omitempty,max=200"`
	GSTAddress        *string `json:"gstAddress,omitempty" validate:"omitempty,max=500"`
	GSTStateCode      *string `json:"gstStateCode,omitempty" validate:"omitempty,len=2"`
}

// OwnerUpdateRequest is the single-call mutation surface. Every field is
// tri-state: absent leaves the stored value alone, null clears it, a
// value replaces it. Email and phoneToken start the verified-change
// flows instead of writing directly.
type OwnerUpdateRequest struct {
	FullName          types.Optional[string] `json:"fullName"`
	Email             types.Optional[string] `json:"email"`
	PhoneToken        types.Optional[string] `json:"phoneToken"`
	CountryCode       types.Optional[string] `json:"countryCode"`
	PhotoURL          types.Optional[string] `json:"photoUrl"`
	ShortBio          types.Optional[string] `json:"shortBio"`
	Address           types.Optional[string] `json:"address"`
	PreferredLanguage types.Optional[string] `json:"preferredLanguage"`
	GSTNumber         types.Optional[string] `json:"gstNumber"`
	GSTLegalName      types.Optional[string] `json:"gstLegalName"`
	GSTAddress        types.Optional[string] `json:"gstAddress"`
	GSTStateCode      types.Optional[string] `json:"gstStateCode"`
}

// Validate runs field checks struct tags cannot express for tri-state
// wrappers. Required fields reject explicit nulls; clearable fields
// only validate when a concrete value is present.
func (r *OwnerUpdateRequest) Validate() map[string]string {
	errs := make(map[string]string)

	requireValue(errs, "fullName", r.FullName, "min=2,max=100")
	requireValue(errs, "email", r.Email, "email")
	requireValue(errs, "phoneToken", r.PhoneToken, "min=1")
	requireValue(errs, "countryCode", r.CountryCode, "min=1,max=5")
	checkValue(errs, "photoUrl", r.PhotoURL, "url")
	checkValue(errs, "shortBio", r.ShortBio, "max=500")
	checkValue(errs, "address", r.Address, "max=500")
	checkValue(errs, "preferredLanguage", r.PreferredLanguage, languageOneOf)
	checkValue(errs, "gstNumber", r.GSTNumber, "len=15")
	checkValue(errs, "gstLegalName", r.GSTLegalName, "max=200")
	checkValue(errs, "gstAddress", r.GSTAddress, "max=500")
	checkValue(errs, "gstStateCode", r.GSTStateCode, "len=2")

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// requireValue validates a field that may be replaced but never cleared.
func requireValue(errs map[string]string, name string, field types.Optional[string], tag string) {
	if !field.IsSet() {
		return
	}
	if field.IsNull() {
		errs[name] = "This field cannot be null"
		return
	}
	if !utils.ValidateVar(field.Value(), tag) {
		errs[name] = "Invalid value"
	}
}

// checkValue validates a clearable field; explicit null is allowed.
func checkValue(errs map[string]string, name string, field types.Optional[string], tag string) {
	v, ok := field.Get()
	if !ok {
		return
	}
	if !utils.ValidateVar(v, tag) {
		errs[name] = "Invalid value"
	}
}
