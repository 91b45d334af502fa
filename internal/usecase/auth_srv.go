package usecase

import (
	"context"
	"time"

	"identity-service/internal/data/entity"
	"identity-service/internal/data/repository"
	"identity-service/internal/dto/request"
	"identity-service/internal/dto/response"
	"identity-service/pkg/apperrors"
	"identity-service/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthService interface {
	RegisterOwner(ctx context.Context, req *request.RegisterRequest) (*response.AuthResponse, error)
	RegisterCustomer(ctx context.Context, req *request.RegisterRequest) (*response.AuthResponse, error)
	LoginOwner(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error)
	LoginCustomer(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error)
	Logout(ctx context.Context, token string) error
}

type authService struct {
	repo   *repository.Repository
	config *utils.Config
	log    *zap.Logger
}

func NewAuthService(repo *repository.Repository, config *utils.Config, log *zap.Logger) AuthService {
	return &authService{
		repo:   repo,
		config: config,
		log:    log,
	}
}

func (s *authService) RegisterOwner(ctx context.Context, req *request.RegisterRequest) (*response.AuthResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperrors.New(apperrors.CodeBadRequest, "validation failed: "+utils.FormatValidationErrors(errs))
	}

	// Uniqueness pre-check; the constraint on owners.email is the backstop.
	existing, err := s.repo.Owner.FindByEmail(ctx, req.Email)
	if err != nil {
		s.log.Error("Failed to check owner email", zap.Error(err), zap.String("email", req.Email))
		return nil, asAppError(err)
	}
	if existing != nil {
		return nil, repository.ErrEmailInUse()
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return nil, asAppError(err)
	}

	// New accounts stay inactive until onboarding completes.
	now := time.Now()
	owner := &entity.Owner{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		FullName:           req.FullName,
		Email:              req.Email,
		PasswordHash:       hashedPassword,
		IsActive:           false,
		IsProfileComplete:  false,
		EmailVerifyVersion: 0,
	}

	if err := s.repo.Owner.Create(ctx, owner); err != nil {
		s.log.Error("Failed to create owner", zap.Error(err), zap.String("email", req.Email))
		return nil, asAppError(err)
	}

	session, err := s.createSession(ctx, owner.ID, entity.AccountTypeOwner)
	if err != nil {
		s.log.Warn("Failed to create session after register",
			zap.Error(err), zap.String("owner_id", owner.ID.String()))
		// Continue without a session
	}

	s.log.Info("Owner registered",
		zap.String("owner_id", owner.ID.String()),
		zap.String("email", owner.Email))

	return response.OwnerAuthToResponse(owner, session), nil
}

func (s *authService) RegisterCustomer(ctx context.Context, req *request.RegisterRequest) (*response.AuthResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperrors.New(apperrors.CodeBadRequest, "validation failed: "+utils.FormatValidationErrors(errs))
	}

	existing, err := s.repo.Customer.FindByEmail(ctx, req.Email)
	if err != nil {
		s.log.Error("Failed to check customer email", zap.Error(err), zap.String("email", req.Email))
		return nil, asAppError(err)
	}
	if existing != nil {
		return nil, repository.ErrEmailInUse()
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return nil, asAppError(err)
	}

	now := time.Now()
	customer := &entity.Customer{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		FullName:           req.FullName,
		Email:              req.Email,
		PasswordHash:       hashedPassword,
		IsActive:           false,
		IsProfileComplete:  false,
		EmailVerifyVersion: 0,
	}

	if err := s.repo.Customer.Create(ctx, customer); err != nil {
		s.log.Error("Failed to create customer", zap.Error(err), zap.String("email", req.Email))
		return nil, asAppError(err)
	}

	session, err := s.createSession(ctx, customer.ID, entity.AccountTypeCustomer)
	if err != nil {
		s.log.Warn("Failed to create session after register",
			zap.Error(err), zap.String("customer_id", customer.ID.String()))
	}

	s.log.Info("Customer registered",
		zap.String("customer_id", customer.ID.String()),
		zap.String("email", customer.Email))

	return response.CustomerAuthToResponse(customer, session), nil
}

func (s *authService) LoginOwner(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperrors.New(apperrors.CodeBadRequest, "validation failed: "+utils.FormatValidationErrors(errs))
	}

	owner, err := s.repo.Owner.FindByEmail(ctx, req.Email)
	if err != nil {
		s.log.Error("Failed to find owner by email", zap.Error(err), zap.String("email", req.Email))
		return nil, asAppError(err)
	}
	if owner == nil || !utils.CheckPasswordHash(req.Password, owner.PasswordHash) {
		s.log.Warn("Invalid owner login", zap.String("email", req.Email))
		return nil, apperrors.New(apperrors.CodeUnauthorized, msgInvalidCredentials)
	}

	session, err := s.createSession(ctx, owner.ID, entity.AccountTypeOwner)
	if err != nil {
		s.log.Error("Failed to create session", zap.Error(err), zap.String("owner_id", owner.ID.String()))
		return nil, asAppError(err)
	}

	s.log.Info("Owner logged in", zap.String("owner_id", owner.ID.String()))

	return response.OwnerAuthToResponse(owner, session), nil
}

func (s *authService) LoginCustomer(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperrors.New(apperrors.CodeBadRequest, "validation failed: "+utils.FormatValidationErrors(errs))
	}

	customer, err := s.repo.Customer.FindByEmail(ctx, req.Email)
	if err != nil {
		s.log.Error("Failed to find customer by email", zap.Error(err), zap.String("email", req.Email))
		return nil, asAppError(err)
	}
	if customer == nil || !utils.CheckPasswordHash(req.Password, customer.PasswordHash) {
		s.log.Warn("Invalid customer login", zap.String("email", req.Email))
		return nil, apperrors.New(apperrors.CodeUnauthorized, msgInvalidCredentials)
	}

	session, err := s.createSession(ctx, customer.ID, entity.AccountTypeCustomer)
	if err != nil {
		s.log.Error("Failed to create session", zap.Error(err), zap.String("customer_id", customer.ID.String()))
		return nil, asAppError(err)
	}

	s.log.Info("Customer logged in", zap.String("customer_id", customer.ID.String()))

	return response.CustomerAuthToResponse(customer, session), nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	tokenUUID, err := uuid.Parse(token)
	if err != nil {
		s.log.Warn("Invalid session token format", zap.Error(err))
		return apperrors.New(apperrors.CodeBadRequest, "invalid token format")
	}

	if err := s.repo.Session.Revoke(ctx, tokenUUID.String()); err != nil {
		s.log.Error("Failed to revoke session", zap.Error(err))
		return asAppError(err)
	}

	s.log.Info("Session revoked")
	return nil
}

func (s *authService) createSession(ctx context.Context, accountID uuid.UUID, accountType entity.AccountType) (*entity.Session, error) {
	session := &entity.Session{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		AccountID:   accountID,
		AccountType: accountType,
		Token:       uuid.New(),
		ExpiresAt:   time.Now().Add(24 * time.Hour),
	}

	if err := s.repo.Session.Create(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}
