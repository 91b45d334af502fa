package entity

import (
	"identity-service/pkg/types"

	"github.com/google/uuid"
)

// Customer mirrors Owner minus the billing block.
type Customer struct {
	Base
	FullName           string `db:"full_name"`
	Email              string `db:"email"`
	PasswordHash       string `db:"password"`
	IsActive           bool   `db:"is_active"`
	IsProfileComplete  bool   `db:"is_profile_complete"`
	EmailVerifyVersion int64  `db:"email_verify_version"`
}

type CustomerProfile struct {
	BaseNoDelete
	CustomerID        uuid.UUID `db:"customer_id"`
	Phone             string    `db:"phone"`
	CountryCode       string    `db:"country_code"`
	PhotoURL          *string   `db:"photo_url"`
	ShortBio          *string   `db:"short_bio"`
	Address           *string   `db:"address"`
	PreferredLanguage *string   `db:"preferred_language"`
}

type CustomerChanges struct {
	FullName types.Optional[string]
}

func (c CustomerChanges) IsEmpty() bool {
	return !c.FullName.IsSet()
}

type CustomerProfileChanges struct {
	Phone             *string
	CountryCode       types.Optional[string]
	PhotoURL          types.Optional[string]
	ShortBio          types.Optional[string]
	Address           types.Optional[string]
	PreferredLanguage types.Optional[string]
}

func (c CustomerProfileChanges) IsEmpty() bool {
	return c.Phone == nil &&
		!c.CountryCode.IsSet() &&
		!c.PhotoURL.IsSet() &&
		!c.ShortBio.IsSet() &&
		!c.Address.IsSet() &&
		!c.PreferredLanguage.IsSet()
}
