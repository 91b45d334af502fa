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

// CustomerService mirrors the owner flows for the customer population.
// Customers have no tax block, otherwise the rules are the same.
type CustomerService interface {
	GetProfile(ctx context.Context, customerID uuid.UUID) (*response.CustomerResponse, error)
	CompleteOnboarding(ctx context.Context, customerID uuid.UUID, req *request.CustomerOnboardingRequest) (*response.CustomerResponse, error)
	UpdateAccount(ctx context.Context, customerID uuid.UUID, req *request.CustomerUpdateRequest) (*response.CustomerUpdateResponse, error)
	ConfirmEmailChange(ctx context.Context, tokenStr string) (*response.CustomerResponse, error)
}

type customerService struct {
	repo   *repository.Repository
	tokens *token.Service
	config *utils.Config
	log    *zap.Logger
}

func NewCustomerService(repo *repository.Repository, tokens *token.Service, config *utils.Config, log *zap.Logger) CustomerService {
	return &customerService{
		repo:   repo,
		tokens: tokens,
		config: config,
		log:    log,
	}
}

func (s *customerService) GetProfile(ctx context.Context, customerID uuid.UUID) (*response.CustomerResponse, error) {
	customer, err := s.repo.Customer.FindByID(ctx, customerID)
	if err != nil {
		s.log.Error("Failed to find customer", zap.Error(err), zap.String("customer_id", customerID.String()))
		return nil, asAppError(err)
	}
	if customer == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, msgAccountNotFound)
	}

	profile, err := s.repo.CustomerProfile.FindByCustomerID(ctx, customerID)
	if err != nil {
		s.log.Error("Failed to find customer profile", zap.Error(err), zap.String("customer_id", customerID.String()))
		return nil, asAppError(err)
	}

	resp := response.CustomerToResponse(customer, profile)
	return &resp, nil
}

func (s *customerService) CompleteOnboarding(ctx context.Context, customerID uuid.UUID, req *request.CustomerOnboardingRequest) (*response.CustomerResponse, error) {
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

	var result response.CustomerResponse

	err = s.repo.Tx.InTx(ctx, func(r *repository.Repository) error {
		customer, err := r.Customer.FindByIDForUpdate(ctx, customerID)
		if err != nil {
			return asAppError(err)
		}
		if customer == nil {
			return apperrors.New(apperrors.CodeNotFound, msgAccountNotFound)
		}

		existing, err := r.CustomerProfile.FindByCustomerID(ctx, customerID)
		if err != nil {
			return asAppError(err)
		}
		if existing != nil {
			return repository.ErrProfileExists()
		}

		taken, err := r.CustomerProfile.FindByPhone(ctx, claims.Phone, customerID)
		if err != nil {
			return asAppError(err)
		}
		if taken != nil {
			return repository.ErrPhoneInUse()
		}

		now := time.Now()
		profile := &entity.CustomerProfile{
			BaseNoDelete: entity.BaseNoDelete{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			CustomerID:        customerID,
			Phone:             claims.Phone,
			CountryCode:       req.CountryCode,
			PhotoURL:          req.PhotoURL,
			ShortBio:          req.ShortBio,
			Address:           req.Address,
			PreferredLanguage: req.PreferredLanguage,
		}

		if err := r.CustomerProfile.Create(ctx, profile); err != nil {
			return asAppError(err)
		}
		if err := r.Customer.MarkOnboarded(ctx, customerID); err != nil {
			return asAppError(err)
		}

		updated, err := r.Customer.FindByID(ctx, customerID)
		if err != nil {
			return asAppError(err)
		}
		result = response.CustomerToResponse(updated, profile)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Customer onboarding completed", zap.String("customer_id", customerID.String()))

	return &result, nil
}

func (s *customerService) UpdateAccount(ctx context.Context, customerID uuid.UUID, req *request.CustomerUpdateRequest) (*response.CustomerUpdateResponse, error) {
	if errs := req.Validate(); len(errs) > 0 {
		return nil, apperrors.New(apperrors.CodeBadRequest, "validation failed: "+utils.FormatValidationErrors(errs))
	}

	var result response.CustomerUpdateResponse

	err := s.repo.Tx.InTx(ctx, func(r *repository.Repository) error {
		customer, err := r.Customer.FindByIDForUpdate(ctx, customerID)
		if err != nil {
			return asAppError(err)
		}
		if customer == nil {
			return apperrors.New(apperrors.CodeNotFound, msgAccountNotFound)
		}

		profile, err := r.CustomerProfile.FindByCustomerID(ctx, customerID)
		if err != nil {
			return asAppError(err)
		}

		newEmail, wantsEmailChange := "", false
		if v, ok := req.Email.Get(); ok && v != customer.Email {
			newEmail, wantsEmailChange = v, true
		}

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

		customerChanges := entity.CustomerChanges{
			FullName: req.FullName,
		}
		profileChanges := entity.CustomerProfileChanges{
			CountryCode:       req.CountryCode,
			PhotoURL:          req.PhotoURL,
			ShortBio:          req.ShortBio,
			Address:           req.Address,
			PreferredLanguage: req.PreferredLanguage,
		}

		if wantsPhoneChange {
			if profile == nil {
				return apperrors.New(apperrors.CodeBadRequest, msgOnboardingRequired)
			}
			taken, err := r.CustomerProfile.FindByPhone(ctx, verifiedPhone, customerID)
			if err != nil {
				return asAppError(err)
			}
			if taken != nil {
				return repository.ErrPhoneInUse()
			}
			profileChanges.Phone = &verifiedPhone
			result.PhoneChanged = true
		}

		if wantsEmailChange {
			link, err := s.initiateEmailChange(ctx, r, customer, newEmail)
			if err != nil {
				return err
			}
			result.EmailChangeLink = link
		}

		if customerChanges.IsEmpty() && profileChanges.IsEmpty() && !wantsEmailChange {
			return apperrors.New(apperrors.CodeBadRequest, msgNoChanges)
		}
		if profile == nil && !profileChanges.IsEmpty() {
			return apperrors.New(apperrors.CodeBadRequest, msgOnboardingRequired)
		}

		if err := r.Customer.ApplyChanges(ctx, customerID, customerChanges); err != nil {
			return asAppError(err)
		}
		if profile != nil {
			if err := r.CustomerProfile.ApplyChanges(ctx, customerID, profileChanges); err != nil {
				return asAppError(err)
			}
		}

		updated, err := r.Customer.FindByID(ctx, customerID)
		if err != nil {
			return asAppError(err)
		}
		updatedProfile, err := r.CustomerProfile.FindByCustomerID(ctx, customerID)
		if err != nil {
			return asAppError(err)
		}
		result.Customer = response.CustomerToResponse(updated, updatedProfile)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Customer account updated",
		zap.String("customer_id", customerID.String()),
		zap.Bool("phone_changed", result.PhoneChanged),
		zap.Bool("email_change_initiated", result.EmailChangeLink != ""))

	return &result, nil
}

func (s *customerService) initiateEmailChange(ctx context.Context, r *repository.Repository, customer *entity.Customer, newEmail string) (string, error) {
	existing, err := r.Customer.FindByEmail(ctx, newEmail)
	if err != nil {
		return "", asAppError(err)
	}
	if existing != nil && existing.ID != customer.ID {
		return "", repository.ErrEmailInUse()
	}

	if !customer.IsActive {
		return "", apperrors.New(apperrors.CodeForbidden, msgInactiveAccount)
	}

	version, currentEmail, err := r.Customer.BumpEmailVersion(ctx, customer.ID)
	if err != nil {
		return "", asAppError(err)
	}

	changeToken, err := s.tokens.SignEmailChange(string(entity.AccountTypeCustomer), customer.ID, newEmail, currentEmail, version)
	if err != nil {
		return "", err
	}

	s.log.Info("Customer email change initiated",
		zap.String("customer_id", customer.ID.String()),
		zap.Int64("version", version))

	return token.BuildVerificationLink(s.config.App.BaseURL, "/api/customer/confirm-email", changeToken), nil
}

func (s *customerService) ConfirmEmailChange(ctx context.Context, tokenStr string) (*response.CustomerResponse, error) {
	claims, err := s.tokens.VerifyEmailChange(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.AccountType != string(entity.AccountTypeCustomer) {
		return nil, apperrors.New(apperrors.CodeUnauthorized, msgInvalidLink)
	}
	customerID, err := uuid.Parse(claims.AccountID)
	if err != nil {
		return nil, apperrors.New(apperrors.CodeUnauthorized, msgInvalidLink)
	}

	var result response.CustomerResponse

	err = s.repo.Tx.InTx(ctx, func(r *repository.Repository) error {
		customer, err := r.Customer.FindByIDForUpdate(ctx, customerID)
		if err != nil {
			return asAppError(err)
		}
		if customer == nil {
			return apperrors.New(apperrors.CodeNotFound, msgAccountNotFound)
		}

		if claims.Version != customer.EmailVerifyVersion {
			return apperrors.New(apperrors.CodeBadRequest, msgStaleLink)
		}
		if customer.Email != claims.OldEmail {
			return apperrors.New(apperrors.CodeBadRequest, msgEmailMismatch)
		}

		existing, err := r.Customer.FindByEmail(ctx, claims.NewEmail)
		if err != nil {
			return asAppError(err)
		}
		if existing != nil && existing.ID != customerID {
			return repository.ErrEmailInUse()
		}

		if err := r.Customer.ApplyEmailChange(ctx, customerID, claims.NewEmail); err != nil {
			return asAppError(err)
		}

		updated, err := r.Customer.FindByID(ctx, customerID)
		if err != nil {
			return asAppError(err)
		}
		profile, err := r.CustomerProfile.FindByCustomerID(ctx, customerID)
		if err != nil {
			return asAppError(err)
		}
		result = response.CustomerToResponse(updated, profile)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Customer email change confirmed",
		zap.String("customer_id", customerID.String()),
		zap.String("email", claims.NewEmail))

	return &result, nil
}
