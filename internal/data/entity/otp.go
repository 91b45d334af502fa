package entity

import (
	"time"

	"github.com/google/uuid"
)

// OTP backs the phone verification step that precedes a phone change.
// A consumed OTP is what entitles the account to a signed phone proof.
type OTP struct {
	BaseSimple
	AccountID   uuid.UUID   `db:"account_id"`
	AccountType AccountType `db:"account_type"`
	Phone       string      `db:"phone"`
	OTPCode     string      `db:"otp_code"`
	ExpiresAt   time.Time   `db:"expires_at"`
	IsUsed      bool        `db:"is_used"`
}
