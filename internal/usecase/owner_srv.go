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

type OwnerService interface {
	GetProfile(ctx context.Context, ownerID uuid.UUID) (*response.OwnerResponse, error)
	CompleteOnboarding(ctx context.Context, ownerID uuid.UUID, req *request.OwnerOnboardingRequest) (*response.OwnerResponse, error)
	UpdateAccount(ctx context.Context, ownerID uuid.UUID, req *request.OwnerUpdateRequest) (*response.OwnerUpdateResponse, error)
	ConfirmEmailChange(ctx context.Context, tokenStr string) (*response.OwnerResponse, error)
}

type ownerService struct {
	repo   *repository.Repository
	tokens *token.Service
	config *utils.Config
	log    *zap.Logger
}

func NewOwnerService(repo *repository.Repository, tokens *token.Service, config *utils.Config, log *zap.Logger) OwnerService {
	return &ownerService{
		repo:   repo,
		tokens: tokens,
		config: config,
		log:    log,
	}
}

func (s *ownerService) GetProfile(ctx context.Context, ownerID uuid.UUID) (*response.OwnerResponse, error) {
	owner, err := s.repo.Owner.FindByID(ctx, ownerID)
	if err != nil {
		s.log.Error("Failed to find owner", zap.Error(err), zap.String("owner_id", ownerID.String()))
		return nil, asAppError(err)
	}
	if owner == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, msgAccountNotFound)
	}

	profile, err := s.repo.OwnerProfile.FindByOwnerID(ctx, ownerID)
	if err != nil {
		s.log.Error("Failed to find owner profile", zap.Error(err), zap.String("owner_id", ownerID.String()))
		return nil, asAppError(err)
	}

	resp := response.OwnerToResponse(owner, profile)
	return &resp, nil
}

// CompleteOnboarding creates the profile sub-record exactly once and
// activates the account. The phone comes from a verified proof token,
// never from free-form input.
func (s *ownerService) CompleteOnboarding(ctx context.Context, ownerID uuid.UUID, req *request.OwnerOnboardingRequest) (*response.OwnerResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperrors.New(apperrors.CodeBadRequest, "validation failed: "+utils.FormatValidationErrors(errs))
	}

	claims, err := s.tokens.VerifyPhoneProof(req.PhoneToken)
	if err != nil {
		return nil, err
	}
	if len(claims.Phone) < minPhoneDigits {
		return nil, apperrors.New(apperrors.CodeBadRequest, msgInvalidPhoneProof)
	}

	var result response.OwnerResponse

	err = s.repo.Tx.InTx(ctx, func(r *repository.Repository) error {
		owner, err := r.Owner.FindByIDForUpdate(ctx, ownerID)
		if err != nil {
			return asAppError(err)
		}
		if owner == nil {
			return apperrors.New(apperrors.CodeNotFound, msgAccountNotFound)
		}

		existing, err := r.OwnerProfile.FindByOwnerID(ctx, ownerID)
		if err != nil {
			return asAppError(err)
		}
		if existing != nil {
			return repository.ErrProfileExists()
		}

		taken, err := r.OwnerProfile.FindByPhone(ctx, claims.Phone, ownerID)
		if err != nil {
			return asAppError(err)
		}
		if taken != nil {
			return repository.ErrPhoneInUse()
		}

		if req.GSTNumber != nil {
			gstTaken, err := r.OwnerProfile.FindByGSTNumber(ctx, *req.GSTNumber, ownerID)
			if err != nil {
				return asAppError(err)
			}
			if gstTaken != nil {
				return repository.ErrGSTInUse()
			}
		}

		now := time.Now()
		profile := &entity.OwnerProfile{
			BaseNoDelete: entity.BaseNoDelete{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			OwnerID:           ownerID,
			Phone:             claims.Phone,
			CountryCode:       req.CountryCode,
			PhotoURL:          req.PhotoURL,
			ShortBio:          req.ShortBio,
			Address:           req.Address,
			PreferredLanguage: req.PreferredLanguage,
			GSTNumber:         req.GSTNumber,
			GSTLegalName:      req.GSTLegalName,
			GSTAddress:        req.GSTAddress,
			GSTStateCode:      req.GSTStateCode,
		}

		if err := r.OwnerProfile.Create(ctx, profile); err != nil {
			return asAppError(err)
		}
		if err := r.Owner.MarkOnboarded(ctx, ownerID); err != nil {
			return asAppError(err)
		}

		updated, err := r.Owner.FindByID(ctx, ownerID)
		if err != nil {
			return asAppError(err)
		}
		result = response.OwnerToResponse(updated, profile)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Owner onboarding completed", zap.String("owner_id", ownerID.String()))

	return &result, nil
}

// UpdateAccount is the single-call mutation transaction. It applies
// plain profile fields directly, swaps the phone only when backed by a
// fresh proof token, and turns an email difference into a pending change
// that must be confirmed through the emailed link. Email and phone are
// never changed in the same call.
func (s *ownerService) UpdateAccount(ctx context.Context, ownerID uuid.UUID, req *request.OwnerUpdateRequest) (*response.OwnerUpdateResponse, error) {
	if errs := req.Validate(); len(errs) > 0 {
		return nil, apperrors.New(apperrors.CodeBadRequest, "validation failed: "+utils.FormatValidationErrors(errs))
	}

	var result response.OwnerUpdateResponse

	err := s.repo.Tx.InTx(ctx, func(r *repository.Repository) error {
		owner, err := r.Owner.FindByIDForUpdate(ctx, ownerID)
		if err != nil {
			return asAppError(err)
		}
		if owner == nil {
			return apperrors.New(apperrors.CodeNotFound, msgAccountNotFound)
		}

		profile, err := r.OwnerProfile.FindByOwnerID(ctx, ownerID)
		if err != nil {
			return asAppError(err)
		}

		// An email equal to the stored one is not a change request.
		newEmail, wantsEmailChange := "", false
		if v, ok := req.Email.Get(); ok && v != owner.Email {
			newEmail, wantsEmailChange = v, true
		}

		// The proof token is the only accepted source for a new phone.
		verifiedPhone, wantsPhoneChange := "", false
		if proof, ok := req.PhoneToken.Get(); ok {
			claims, err := s.tokens.VerifyPhoneProof(proof)
			if err != nil {
				return err
			}
			if len(claims.Phone) < minPhoneDigits {
				return apperrors.New(apperrors.CodeBadRequest, msgInvalidPhoneProof)
			}
			if profile == nil || claims.Phone != profile.Phone {
				verifiedPhone, wantsPhoneChange = claims.Phone, true
			}
		}

		if wantsEmailChange && wantsPhoneChange {
			return apperrors.New(apperrors.CodeBadRequest, msgMutuallyExclusive)
		}

		ownerChanges := entity.OwnerChanges{
			FullName: req.FullName,
		}
		profileChanges := entity.OwnerProfileChanges{
			CountryCode:       req.CountryCode,
			PhotoURL:          req.PhotoURL,
			ShortBio:          req.ShortBio,
			Address:           req.Address,
			PreferredLanguage: req.PreferredLanguage,
			GSTNumber:         req.GSTNumber,
			GSTLegalName:      req.GSTLegalName,
			GSTAddress:        req.GSTAddress,
			GSTStateCode:      req.GSTStateCode,
		}

		if wantsPhoneChange {
			if profile == nil {
				return apperrors.New(apperrors.CodeBadRequest, msgOnboardingRequired)
			}
			taken, err := r.OwnerProfile.FindByPhone(ctx, verifiedPhone, ownerID)
			if err != nil {
				return asAppError(err)
			}
			if taken != nil {
				return repository.ErrPhoneInUse()
			}
			profileChanges.Phone = &verifiedPhone
			result.PhoneChanged = true
		}

		if gst, ok := req.GSTNumber.Get(); ok {
			gstTaken, err := r.OwnerProfile.FindByGSTNumber(ctx, gst, ownerID)
			if err != nil {
				return asAppError(err)
			}
			if gstTaken != nil {
				return repository.ErrGSTInUse()
			}
		}

		if wantsEmailChange {
			link, err := s.initiateEmailChange(ctx, r, owner, newEmail)
			if err != nil {
				return err
			}
			result.EmailChangeLink = link
		}

		if ownerChanges.IsEmpty() && profileChanges.IsEmpty() && !wantsEmailChange {
			return apperrors.New(apperrors.CodeBadRequest, msgNoChanges)
		}
		if profile == nil && !profileChanges.IsEmpty() {
			return apperrors.New(apperrors.CodeBadRequest, msgOnboardingRequired)
		}

		if err := r.Owner.ApplyChanges(ctx, ownerID, ownerChanges); err != nil {
			return asAppError(err)
		}
		if profile != nil {
			if err := r.OwnerProfile.ApplyChanges(ctx, ownerID, profileChanges); err != nil {
				return asAppError(err)
			}
		}

		updated, err := r.Owner.FindByID(ctx, ownerID)
		if err != nil {
			return asAppError(err)
		}
		updatedProfile, err := r.OwnerProfile.FindByOwnerID(ctx, ownerID)
		if err != nil {
			return asAppError(err)
		}
		result.Owner = response.OwnerToResponse(updated, updatedProfile)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Owner account updated",
		zap.String("owner_id", ownerID.String()),
		zap.Bool("phone_changed", result.PhoneChanged),
		zap.Bool("email_change_initiated", result.EmailChangeLink != ""))

	return &result, nil
}

// initiateEmailChange runs inside the caller's transaction. It bumps the
// version stamp, which retires any previously issued link, and signs the
// token over the email the database holds rather than anything the
// client supplied. The stored email stays untouched until confirmation.
func (s *ownerService) initiateEmailChange(ctx context.Context, r *repository.Repository, owner *entity.Owner, newEmail string) (string, error) {
	existing, err := r.Owner.FindByEmail(ctx, newEmail)
	if err != nil {
		return "", asAppError(err)
	}
	if existing != nil && existing.ID != owner.ID {
		return "", repository.ErrEmailInUse()
	}

	if !owner.IsActive {
		return "", apperrors.New(apperrors.CodeForbidden, msgInactiveAccount)
	}

	version, currentEmail, err := r.Owner.BumpEmailVersion(ctx, owner.ID)
	if err != nil {
		return "", asAppError(err)
	}

	changeToken, err := s.tokens.SignEmailChange(string(entity.AccountTypeOwner), owner.ID, newEmail, currentEmail, version)
	if err != nil {
		return "", err
	}

	s.log.Info("Owner email change initiated",
		zap.String("owner_id", owner.ID.String()),
		zap.Int64("version", version))

	return token.BuildVerificationLink(s.config.App.BaseURL, "/api/owner/confirm-email", changeToken), nil
}

// ConfirmEmailChange applies a pending email change from the emailed
// link. The version equality check makes each link single-use, and the
// second version bump on apply retires the link that was just used.
func (s *ownerService) ConfirmEmailChange(ctx context.Context, tokenStr string) (*response.OwnerResponse, error) {
	claims, err := s.tokens.VerifyEmailChange(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.AccountType != string(entity.AccountTypeOwner) {
		return nil, apperrors.New(apperrors.CodeUnauthorized, msgInvalidLink)
	}
	ownerID, err := uuid.Parse(claims.AccountID)
	if err != nil {
		return nil, apperrors.New(apperrors.CodeUnauthorized, msgInvalidLink)
	}

	var result response.OwnerResponse

	err = s.repo.Tx.InTx(ctx, func(r *repository.Repository) error {
		owner, err := r.Owner.FindByIDForUpdate(ctx, ownerID)
		if err != nil {
			return asAppError(err)
		}
		if owner == nil {
			return apperrors.New(apperrors.CodeNotFound, msgAccountNotFound)
		}

		if claims.Version != owner.EmailVerifyVersion {
			return apperrors.New(apperrors.CodeBadRequest, msgStaleLink)
		}
		if owner.Email != claims.OldEmail {
			return apperrors.New(apperrors.CodeBadRequest, msgEmailMismatch)
		}

		// The address may have been claimed between initiate and confirm.
		existing, err := r.Owner.FindByEmail(ctx, claims.NewEmail)
		if err != nil {
			return asAppError(err)
		}
		if existing != nil && existing.ID != ownerID {
			return repository.ErrEmailInUse()
		}

		if err := r.Owner.ApplyEmailChange(ctx, ownerID, claims.NewEmail); err != nil {
			return asAppError(err)
		}

		updated, err := r.Owner.FindByID(ctx, ownerID)
		if err != nil {
			return asAppError(err)
		}
		profile, err := r.OwnerProfile.FindByOwnerID(ctx, ownerID)
		if err != nil {
			return asAppError(err)
		}
		result = response.OwnerToResponse(updated, profile)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Owner email change confirmed",
		zap.String("owner_id", ownerID.String()),
		zap.String("email", claims.NewEmail))

	return &result, nil
}
