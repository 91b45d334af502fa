package usecase

import (
	"context"
	"time"

	"identity-service/internal/data/entity"
	"identity-service/internal/data/repository"
	"identity-service/internal/dto/request"
	"identity-service/internal/dto/response"
	"identity-service/pkg/apperrors"
	"identity-service/pkg/token"
	"identity-service/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PhoneService is the OTP producer side of the phone-change flow: it
// verifies ownership of a number and mints the signed attestation that
// the update call later consumes.
type PhoneService interface {
	RequestOTP(ctx context.Context, accountID uuid.UUID, accountType entity.AccountType, req *request.RequestOTPRequest) error
	VerifyOTP(ctx context.Context, accountID uuid.UUID, accountType entity.AccountType, req *request.VerifyOTPRequest) (*response.PhoneProofResponse, error)
}

type phoneService struct {
	repo   *repository.Repository
	tokens *token.Service
	config *utils.Config
	log    *zap.Logger
}

func NewPhoneService(repo *repository.Repository, tokens *token.Service, config *utils.Config, log *zap.Logger) PhoneService {
	return &phoneService{
		repo:   repo,
		tokens: tokens,
		config: config,
		log:    log,
	}
}

func (s *phoneService) RequestOTP(ctx context.Context, accountID uuid.UUID, accountType entity.AccountType, req *request.RequestOTPRequest) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return apperrors.New(apperrors.CodeBadRequest, "validation failed: "+utils.FormatValidationErrors(errs))
	}

	phone := utils.NormalizePhone(req.Phone)
	if len(phone) < minPhoneDigits {
		return apperrors.New(apperrors.CodeBadRequest, "invalid phone number")
	}

	otpCode := utils.GenerateOTP(s.config.OTP.Length)
	expiresAt := time.Now().Add(time.Duration(s.config.OTP.ExpiryMinutes) * time.Minute)

	otp := &entity.OTP{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		AccountID:   accountID,
		AccountType: accountType,
		Phone:       phone,
		OTPCode:     otpCode,
		ExpiresAt:   expiresAt,
		IsUsed:      false,
	}

	if err := s.repo.OTP.Create(ctx, otp); err != nil {
		s.log.Error("Failed to save OTP", zap.Error(err), zap.String("account_id", accountID.String()))
		return asAppError(err)
	}

	// No SMS gateway wired up; the code lands in the logs.
	s.log.Info("OTP generated",
		zap.String("account_id", accountID.String()),
		zap.String("phone", phone),
		zap.String("otp_code", otpCode),
		zap.Time("expires_at", expiresAt),
	)

	return nil
}

func (s *phoneService) VerifyOTP(ctx context.Context, accountID uuid.UUID, accountType entity.AccountType, req *request.VerifyOTPRequest) (*response.PhoneProofResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperrors.New(apperrors.CodeBadRequest, "validation failed: "+utils.FormatValidationErrors(errs))
	}

	phone := utils.NormalizePhone(req.Phone)

	otp, err := s.repo.OTP.FindValidOTP(ctx, accountID, phone, req.OTP)
	if err != nil {
		s.log.Error("Failed to find OTP", zap.Error(err), zap.String("account_id", accountID.String()))
		return nil, asAppError(err)
	}
	if otp == nil {
		return nil, apperrors.New(apperrors.CodeBadRequest, msgInvalidOTP)
	}

	if err := s.repo.OTP.MarkAsUsed(ctx, otp.ID); err != nil {
		s.log.Error("Failed to mark OTP as used", zap.Error(err), zap.String("otp_id", otp.ID.String()))
		return nil, asAppError(err)
	}

	proof, err := s.tokens.SignPhoneProof(phone)
	if err != nil {
		s.log.Error("Failed to sign phone proof", zap.Error(err), zap.String("account_id", accountID.String()))
		return nil, err
	}

	s.log.Info("Phone verified",
		zap.String("account_id", accountID.String()),
		zap.String("phone", phone))

	return &response.PhoneProofResponse{
		Phone:      phone,
		PhoneToken: proof,
		ExpiresAt:  time.Now().Add(time.Duration(s.config.Token.PhoneProofTTLMinutes) * time.Minute),
	}, nil
}
