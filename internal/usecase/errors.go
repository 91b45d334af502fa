package usecase

import (
	"errors"

	"identity-service/pkg/apperrors"
)

// Stable messages, shared by the owner and customer variants so both
// populations surface identical failures for identical situations.
const (
	msgAccountNotFound    = "account not found"
	msgNoChanges          = "no changes requested"
	msgMutuallyExclusive  = "email and phone cannot be changed in the same request"
	msgStaleLink          = "verification link is no longer valid, request a new one"
	msgEmailMismatch      = "email has changed since this link was issued"
	msgInactiveAccount    = "complete onboarding before changing email"
	msgOnboardingRequired = "complete onboarding before updating profile fields"
	msgInvalidCredentials = "invalid email or password"
	msgInvalidOTP         = "invalid or expired OTP"
	msgInvalidPhoneProof  = "invalid phone verification token"
	msgInvalidLink        = "invalid or expired verification link"
)

// Phone numbers shorter than this cannot be real subscriber numbers even
// with a one-digit country code.
const minPhoneDigits = 7

// asAppError passes coded errors through untouched and wraps raw storage
// failures as internal, so engine details never reach a client.
func asAppError(err error) error {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.Wrap(err, apperrors.CodeInternal, "internal server error")
}
