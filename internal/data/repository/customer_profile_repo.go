package repository

import (
	"context"
	"fmt"
	"strings"

	"identity-service/internal/data/entity"
	"identity-service/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type CustomerProfileRepository interface {
	Create(ctx context.Context, profile *entity.CustomerProfile) error
	FindByCustomerID(ctx context.Context, customerID uuid.UUID) (*entity.CustomerProfile, error)
	FindByPhone(ctx context.Context, phone string, excludeCustomerID uuid.UUID) (*entity.CustomerProfile, error)
	ApplyChanges(ctx context.Context, customerID uuid.UUID, changes entity.CustomerProfileChanges) error
}

type customerProfileRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewCustomerProfileRepository(db database.Querier, log *zap.Logger) CustomerProfileRepository {
	return &customerProfileRepository{
		db:  db,
		log: log.With(zap.String("repository", "customer_profile")),
	}
}

const customerProfileColumns = `id, customer_id, phone, country_code, photo_url, short_bio,
	       address, preferred_language, created_at, updated_at`

func (r *customerProfileRepository) Create(ctx context.Context, profile *entity.CustomerProfile) error {
	query := `
		INSERT INTO customer_profiles (id, customer_id, phone, country_code,
		                               photo_url, short_bio, address,
		                               preferred_language, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(ctx, query,
		profile.ID,
		profile.CustomerID,
		profile.Phone,
		profile.CountryCode,
		profile.PhotoURL,
		profile.ShortBio,
		profile.Address,
		profile.PreferredLanguage,
		profile.CreatedAt,
		profile.UpdatedAt,
	)

	if err != nil {
		switch {
		case isUniqueViolation(err, "customer_profiles_customer_id_key"):
			return ErrProfileExists()
		case isUniqueViolation(err, "customer_profiles_phone_key"):
			return ErrPhoneInUse()
		}
		r.log.Error("Failed to create customer profile",
			zap.Error(err),
			zap.String("customer_id", profile.CustomerID.String()),
		)
		return fmt.Errorf("create customer profile %s: %w", profile.CustomerID.String(), err)
	}

	return nil
}

func (r *customerProfileRepository) FindByCustomerID(ctx context.Context, customerID uuid.UUID) (*entity.CustomerProfile, error) {
	query := `
		SELECT ` + customerProfileColumns + `
		FROM customer_profiles
		WHERE customer_id = $1
	`
	return r.scanOne(ctx, query, "find customer profile by customer ID", customerID)
}

func (r *customerProfileRepository) FindByPhone(ctx context.Context, phone string, excludeCustomerID uuid.UUID) (*entity.CustomerProfile, error) {
	query := `
		SELECT ` + customerProfileColumns + `
		FROM customer_profiles
		WHERE phone = $1 AND customer_id <> $2
	`
	return r.scanOne(ctx, query, "find customer profile by phone", phone, excludeCustomerID)
}

func (r *customerProfileRepository) scanOne(ctx context.Context, query, op string, args ...any) (*entity.CustomerProfile, error) {
	var profile entity.CustomerProfile
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&profile.ID,
		&profile.CustomerID,
		&profile.Phone,
		&profile.CountryCode,
		&profile.PhotoURL,
		&profile.ShortBio,
		&profile.Address,
		&profile.PreferredLanguage,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Customer profile query failed", zap.Error(err), zap.String("op", op))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &profile, nil
}

func (r *customerProfileRepository) ApplyChanges(ctx context.Context, customerID uuid.UUID, changes entity.CustomerProfileChanges) error {
	setClauses := []string{"updated_at = NOW()"}
	args := []any{customerID}

	if changes.Phone != nil {
		args = append(args, *changes.Phone)
		setClauses = append(setClauses, fmt.Sprintf("phone = $%d", len(args)))
	}
	stageOptional(&setClauses, &args, "country_code", changes.CountryCode)
	stageOptional(&setClauses, &args, "photo_url", changes.PhotoURL)
	stageOptional(&setClauses, &args, "short_bio", changes.ShortBio)
	stageOptional(&setClauses, &args, "address", changes.Address)
	stageOptional(&setClauses, &args, "preferred_language", changes.PreferredLanguage)

	if len(setClauses) == 1 {
		return nil
	}

	query := fmt.Sprintf(`
		UPDATE customer_profiles
		SET %s
		WHERE customer_id = $1
	`, strings.Join(setClauses, ", "))

	result, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err, "customer_profiles_phone_key") {
			return ErrPhoneInUse()
		}
		r.log.Error("Failed to apply customer profile changes",
			zap.Error(err),
			zap.String("customer_id", customerID.String()),
		)
		return fmt.Errorf("apply customer profile changes %s: %w", customerID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("customer profile %s not found", customerID.String())
	}

	return nil
}
