package token

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"identity-service/pkg/apperrors"
	"identity-service/pkg/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// EmailChangeClaims is the payload of an email-change verification link.
// Version must equal the account's live email_verify_version at confirm
// time; that equality is what makes a link single-use.
type EmailChangeClaims struct {
	AccountID   string `json:"account_id"`
	AccountType string `json:"account_type"`
	NewEmail    string `json:"new_email"`
	OldEmail    string `json:"old_email"`
	Version     int64  `json:"version"`
	jwt.RegisteredClaims
}

// PhoneProofClaims attests that a phone number passed OTP verification.
// It carries no version: phone uniqueness is enforced by direct lookup at
// update time, not by a multi-step pending state.
type PhoneProofClaims struct {
	Phone      string `json:"phone"`
	IsVerified bool   `json:"is_verified"`
	jwt.RegisteredClaims
}

// Service signs and verifies the short-lived change tokens.
type Service struct {
	secret         []byte
	emailChangeTTL time.Duration
	phoneProofTTL  time.Duration
}

func NewService(config utils.TokenConfig) *Service {
	return &Service{
		secret:         []byte(config.Secret),
		emailChangeTTL: time.Duration(config.EmailChangeTTLMinutes) * time.Minute,
		phoneProofTTL:  time.Duration(config.PhoneProofTTLMinutes) * time.Minute,
	}
}

func (s *Service) SignEmailChange(accountType string, accountID uuid.UUID, newEmail, oldEmail string, version int64) (string, error) {
	if len(s.secret) == 0 {
		return "", apperrors.New(apperrors.CodeUnavailable, "service temporarily unavailable, please try again later")
	}

	claims := EmailChangeClaims{
		AccountID:   accountID.String(),
		AccountType: accountType,
		NewEmail:    newEmail,
		OldEmail:    oldEmail,
		Version:     version,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.emailChangeTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign email change token: %w", err)
	}
	return signed, nil
}

func (s *Service) VerifyEmailChange(tokenStr string) (*EmailChangeClaims, error) {
	if len(s.secret) == 0 {
		return nil, apperrors.New(apperrors.CodeUnavailable, "service temporarily unavailable, please try again later")
	}

	parsed, err := jwt.ParseWithClaims(tokenStr, &EmailChangeClaims{}, s.keyFunc)
	if err != nil || !parsed.Valid {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "invalid or expired verification link")
	}

	claims, ok := parsed.Claims.(*EmailChangeClaims)
	if !ok || claims.AccountID == "" || claims.NewEmail == "" {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "invalid or expired verification link")
	}

	return claims, nil
}

func (s *Service) SignPhoneProof(phone string) (string, error) {
	if len(s.secret) == 0 {
		return "", apperrors.New(apperrors.CodeUnavailable, "service temporarily unavailable, please try again later")
	}

	claims := PhoneProofClaims{
		Phone:      utils.NormalizePhone(phone),
		IsVerified: true,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.phoneProofTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign phone proof token: %w", err)
	}
	return signed, nil
}

// VerifyPhoneProof validates a phone attestation and returns the phone
// number normalized to bare digits. Expiry is reported separately from
// malformed tokens so the caller can prompt for re-verification instead
// of rejecting the input outright.
func (s *Service) VerifyPhoneProof(tokenStr string) (*PhoneProofClaims, error) {
	if len(s.secret) == 0 {
		return nil, apperrors.New(apperrors.CodeUnavailable, "service temporarily unavailable, please try again later")
	}

	parsed, err := jwt.ParseWithClaims(tokenStr, &PhoneProofClaims{}, s.keyFunc)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.New(apperrors.CodeBadRequest, "phone verification expired, please verify the number again")
		}
		return nil, apperrors.New(apperrors.CodeBadRequest, "invalid phone verification token")
	}
	if !parsed.Valid {
		return nil, apperrors.New(apperrors.CodeBadRequest, "invalid phone verification token")
	}

	claims, ok := parsed.Claims.(*PhoneProofClaims)
	if !ok || !claims.IsVerified || claims.Phone == "" {
		return nil, apperrors.New(apperrors.CodeBadRequest, "invalid phone verification token")
	}

	claims.Phone = utils.NormalizePhone(claims.Phone)
	return claims, nil
}

func (s *Service) keyFunc(t *jwt.Token) (interface{}, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, jwt.ErrTokenUnverifiable
	}
	return s.secret, nil
}

// BuildVerificationLink assembles the link embedded in the change email.
func BuildVerificationLink(baseURL, path, token string) string {
	return baseURL + path + "?token=" + url.QueryEscape(token)
}
