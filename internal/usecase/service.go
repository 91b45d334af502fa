package usecase

import (
	"identity-service/internal/data/repository"
	"identity-service/pkg/token"
	"identity-service/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth     AuthService
	Phone    PhoneService
	Owner    OwnerService
	Customer CustomerService
}

func NewService(repo *repository.Repository, tokens *token.Service, config *utils.Config, log *zap.Logger) *Service {
	return &Service{
		Auth:     NewAuthService(repo, config, log),
		Phone:    NewPhoneService(repo, tokens, config, log),
		Owner:    NewOwnerService(repo, tokens, config, log),
		Customer: NewCustomerService(repo, tokens, config, log),
	}
}
