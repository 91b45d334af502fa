package entity

import (
	"identity-service/pkg/types"

	"github.com/google/uuid"
)

// Owner is an admin/merchant identity. Email and phone are only ever
// changed through the verified-change flows; EmailVerifyVersion is the
// anti-replay stamp for email-change links and only increases.
type Owner struct {
	Base
	FullName           string `db:"full_name"`
	Email              string `db:"email"`
	PasswordHash       string `db:"password"`
	IsActive           bool   `db:"is_active"`
	IsProfileComplete  bool   `db:"is_profile_complete"`
	EmailVerifyVersion int64  `db:"email_verify_version"`
}

// OwnerProfile is the one-to-one extension record, created once when
// onboarding completes and only updated afterwards.
type OwnerProfile struct {
	BaseNoDelete
	OwnerID           uuid.UUID `db:"owner_id"`
	Phone             string    `db:"phone"`
	CountryCode       string    `db:"country_code"`
	PhotoURL          *string   `db:"photo_url"`
	ShortBio          *string   `db:"short_bio"`
	Address           *string   `db:"address"`
	PreferredLanguage *string   `db:"preferred_language"`
	GSTNumber         *string   `db:"gst_number"`
	GSTLegalName      *string   `db:"gst_legal_name"`
	GSTAddress        *string   `db:"gst_address"`
	GSTStateCode      *string   `db:"gst_state_code"`
}

// OwnerChanges stages updates to the owners row. Absent fields are left
// untouched, explicit nulls clear the column.
type OwnerChanges struct {
	FullName types.Optional[string]
}

func (c OwnerChanges) IsEmpty() bool {
	return !c.FullName.IsSet()
}

// OwnerProfileChanges stages updates to the owner_profiles row. Phone is
// a plain pointer because it is never cleared, only replaced through the
// verified-phone path.
type OwnerProfileChanges struct {
	Phone             *string
	CountryCode       types.Optional[string]
	PhotoURL          types.Optional[string]
	ShortBio          types.Optional[string]
	Address           types.Optional[string]
	PreferredLanguage types.Optional[string]
	GSTNumber         types.Optional[string]
	GSTLegalName      types.Optional[string]
	GSTAddress        types.Optional[string]
	GSTStateCode      types.Optional[string]
}

func (c OwnerProfileChanges) IsEmpty() bool {
	return c.Phone == nil &&
		!c.CountryCode.IsSet() &&
		!c.PhotoURL.IsSet() &&
		!c.ShortBio.IsSet() &&
		!c.Address.IsSet() &&
		!c.PreferredLanguage.IsSet() &&
		!c.GSTNumber.IsSet() &&
		!c.GSTLegalName.IsSet() &&
		!c.GSTAddress.IsSet() &&
		!c.GSTStateCode.IsSet()
}
