package entity

import (
	"time"

	"github.com/google/uuid"
)

type Session struct {
	BaseSimple
	AccountID   uuid.UUID   `db:"account_id"`
	AccountType AccountType `db:"account_type"`
	Token       uuid.UUID   `db:"token"`
	ExpiresAt   time.Time   `db:"expires_at"`
	RevokedAt   *time.Time  `db:"revoked_at"`
}
