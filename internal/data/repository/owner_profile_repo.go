package repository

import (
	"context"
	"fmt"
	"strings"

	"identity-service/internal/data/entity"
	"identity-service/pkg/database"
	"identity-service/pkg/types"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type OwnerProfileRepository interface {
	Create(ctx context.Context, profile *entity.OwnerProfile) error
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID) (*entity.OwnerProfile, error)
	FindByPhone(ctx context.Context, phone string, excludeOwnerID uuid.UUID) (*entity.OwnerProfile, error)
	FindByGSTNumber(ctx context.Context, gstNumber string, excludeOwnerID uuid.UUID) (*entity.OwnerProfile, error)
	ApplyChanges(ctx context.Context, ownerID uuid.UUID, changes entity.OwnerProfileChanges) error
}

type ownerProfileRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewOwnerProfileRepository(db database.Querier, log *zap.Logger) OwnerProfileRepository {
	return &ownerProfileRepository{
		db:  db,
		log: log.With(zap.String("repository", "owner_profile")),
	}
}

const ownerProfileColumns = `id, owner_id, phone, country_code, photo_url, short_bio,
	       address, preferred_language, gst_number, gst_legal_name,
	       gst_address, gst_state_code, created_at, updated_at`

func (r *ownerProfileRepository) Create(ctx context.Context, profile *entity.OwnerProfile) error {
	query := `
		INSERT INTO owner_profiles (id, owner_id, phone, country_code, photo_url,
		                            short_bio, address, preferred_language,
		                            gst_number, gst_legal_name, gst_address,
		                            gst_state_code, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.Exec(ctx, query,
		profile.ID,
		profile.OwnerID,
		profile.Phone,
		profile.CountryCode,
		profile.PhotoURL,
		profile.ShortBio,
		profile.Address,
		profile.PreferredLanguage,
		profile.GSTNumber,
		profile.GSTLegalName,
		profile.GSTAddress,
		profile.GSTStateCode,
		profile.CreatedAt,
		profile.UpdatedAt,
	)

	if err != nil {
		switch {
		case isUniqueViolation(err, "owner_profiles_owner_id_key"):
			return ErrProfileExists()
		case isUniqueViolation(err, "owner_profiles_phone_key"):
			return ErrPhoneInUse()
		case isUniqueViolation(err, "owner_profiles_gst_number_key"):
			return ErrGSTInUse()
		}
		r.log.Error("Failed to create owner profile",
			zap.Error(err),
			zap.String("owner_id", profile.OwnerID.String()),
		)
		return fmt.Errorf("create owner profile %s: %w", profile.OwnerID.String(), err)
	}

	return nil
}

func (r *ownerProfileRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID) (*entity.OwnerProfile, error) {
	query := `
		SELECT ` + ownerProfileColumns + `
		FROM owner_profiles
		WHERE owner_id = $1
	`
	return r.scanOne(ctx, query, "find owner profile by owner ID", ownerID)
}

// FindByPhone checks phone uniqueness across other owners. The caller's
// own row is excluded so re-submitting the current phone is not a conflict.
func (r *ownerProfileRepository) FindByPhone(ctx context.Context, phone string, excludeOwnerID uuid.UUID) (*entity.OwnerProfile, error) {
	query := `
		SELECT ` + ownerProfileColumns + `
		FROM owner_profiles
		WHERE phone = $1 AND owner_id <> $2
	`
	return r.scanOne(ctx, query, "find owner profile by phone", phone, excludeOwnerID)
}

func (r *ownerProfileRepository) FindByGSTNumber(ctx context.Context, gstNumber string, excludeOwnerID uuid.UUID) (*entity.OwnerProfile, error) {
	query := `
		SELECT ` + ownerProfileColumns + `
		FROM owner_profiles
		WHERE gst_number = $1 AND owner_id <> $2
	`
	return r.scanOne(ctx, query, "find owner profile by GST number", gstNumber, excludeOwnerID)
}

func (r *ownerProfileRepository) scanOne(ctx context.Context, query, op string, args ...any) (*entity.OwnerProfile, error) {
	var profile entity.OwnerProfile
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&profile.ID,
		&profile.OwnerID,
		&profile.Phone,
		&profile.CountryCode,
		&profile.PhotoURL,
		&profile.ShortBio,
		&profile.Address,
		&profile.PreferredLanguage,
		&profile.GSTNumber,
		&profile.GSTLegalName,
		&profile.GSTAddress,
		&profile.GSTStateCode,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Owner profile query failed", zap.Error(err), zap.String("op", op))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &profile, nil
}

// ApplyChanges writes only the staged fields; explicit nulls clear the
// column, absent fields leave it untouched.
func (r *ownerProfileRepository) ApplyChanges(ctx context.Context, ownerID uuid.UUID, changes entity.OwnerProfileChanges) error {
	setClauses := []string{"updated_at = NOW()"}
	args := []any{ownerID}

	if changes.Phone != nil {
		args = append(args, *changes.Phone)
		setClauses = append(setClauses, fmt.Sprintf("phone = $%d", len(args)))
	}
	stageOptional(&setClauses, &args, "country_code", changes.CountryCode)
	stageOptional(&setClauses, &args, "photo_url", changes.PhotoURL)
	stageOptional(&setClauses, &args, "short_bio", changes.ShortBio)
	stageOptional(&setClauses, &args, "address", changes.Address)
	stageOptional(&setClauses, &args, "preferred_language", changes.PreferredLanguage)
	stageOptional(&setClauses, &args, "gst_number", changes.GSTNumber)
	stageOptional(&setClauses, &args, "gst_legal_name", changes.GSTLegalName)
	stageOptional(&setClauses, &args, "gst_address", changes.GSTAddress)
	stageOptional(&setClauses, &args, "gst_state_code", changes.GSTStateCode)

	if len(setClauses) == 1 {
		return nil
	}

	query := fmt.Sprintf(`
		UPDATE owner_profiles
		SET %s
		WHERE owner_id = $1
	`, strings.Join(setClauses, ", "))

	result, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		switch {
		case isUniqueViolation(err, "owner_profiles_phone_key"):
			return ErrPhoneInUse()
		case isUniqueViolation(err, "owner_profiles_gst_number_key"):
			return ErrGSTInUse()
		}
		r.log.Error("Failed to apply owner profile changes",
			zap.Error(err),
			zap.String("owner_id", ownerID.String()),
		)
		return fmt.Errorf("apply owner profile changes %s: %w", ownerID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("owner profile %s not found", ownerID.String())
	}

	return nil
}

// stageOptional appends a SET clause for a tri-state field: a null value
// becomes SQL NULL, an absent field is skipped entirely.
func stageOptional(setClauses *[]string, args *[]any, column string, field types.Optional[string]) {
	if !field.IsSet() {
		return
	}
	if field.IsNull() {
		*args = append(*args, nil)
	} else {
		*args = append(*args, field.Value())
	}
	*setClauses = append(*setClauses, fmt.Sprintf("%s = $%d", column, len(*args)))
}
