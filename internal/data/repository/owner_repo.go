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

type OwnerRepository interface {
	Create(ctx context.Context, owner *entity.Owner) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Owner, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Owner, error)
	FindByEmail(ctx context.Context, email string) (*entity.Owner, error)
	ApplyChanges(ctx context.Context, id uuid.UUID, changes entity.OwnerChanges) error
	MarkOnboarded(ctx context.Context, id uuid.UUID) error
	BumpEmailVersion(ctx context.Context, id uuid.UUID) (int64, string, error)
	ApplyEmailChange(ctx context.Context, id uuid.UUID, newEmail string) error
}

type ownerRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewOwnerRepository(db database.Querier, log *zap.Logger) OwnerRepository {
	return &ownerRepository{
		db:  db,
		log: log.With(zap.String("repository", "owner")),
	}
}

const ownerColumns = `id, full_name, email, password, is_active, is_profile_complete,
	       email_verify_version, created_at, updated_at, deleted_at`

func (r *ownerRepository) Create(ctx context.Context, owner *entity.Owner) error {
	query := `
		INSERT INTO owners (id, full_name, email, password, is_active,
		                    is_profile_complete, email_verify_version,
		                    created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		owner.ID,
		owner.FullName,
		owner.Email,
		owner.PasswordHash,
		owner.IsActive,
		owner.IsProfileComplete,
		owner.EmailVerifyVersion,
		owner.CreatedAt,
		owner.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err, "owners_email_key") {
			return ErrEmailInUse()
		}
		r.log.Error("Failed to create owner",
			zap.Error(err),
			zap.String("email", owner.Email),
		)
		return fmt.Errorf("create owner %s: %w", owner.Email, err)
	}

	return nil
}

func (r *ownerRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Owner, error) {
	query := `
		SELECT ` + ownerColumns + `
		FROM owners
		WHERE id = $1 AND deleted_at IS NULL
	`
	return r.scanOne(ctx, query, "find owner by ID", id)
}

// FindByIDForUpdate locks the owner row for the rest of the transaction.
// The mutation and confirmation flows use it so the version counter and
// uniqueness checks cannot race between two concurrent requests.
func (r *ownerRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Owner, error) {
	query := `
		SELECT ` + ownerColumns + `
		FROM owners
		WHERE id = $1 AND deleted_at IS NULL
		FOR UPDATE
	`
	return r.scanOne(ctx, query, "find owner for update", id)
}

func (r *ownerRepository) FindByEmail(ctx context.Context, email string) (*entity.Owner, error) {
	query := `
		SELECT ` + ownerColumns + `
		FROM owners
		WHERE email = $1 AND deleted_at IS NULL
	`
	return r.scanOne(ctx, query, "find owner by email", email)
}

func (r *ownerRepository) scanOne(ctx context.Context, query, op string, arg any) (*entity.Owner, error) {
	var owner entity.Owner
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&owner.ID,
		&owner.FullName,
		&owner.Email,
		&owner.PasswordHash,
		&owner.IsActive,
		&owner.IsProfileComplete,
		&owner.EmailVerifyVersion,
		&owner.CreatedAt,
		&owner.UpdatedAt,
		&owner.DeletedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Owner query failed", zap.Error(err), zap.String("op", op))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &owner, nil
}

// ApplyChanges writes only the staged fields. An empty change set is a no-op.
func (r *ownerRepository) ApplyChanges(ctx context.Context, id uuid.UUID, changes entity.OwnerChanges) error {
	setClauses := []string{"updated_at = NOW()"}
	args := []any{id}

	if v, ok := changes.FullName.Get(); ok {
		args = append(args, v)
		setClauses = append(setClauses, fmt.Sprintf("full_name = $%d", len(args)))
	}

	if len(setClauses) == 1 {
		return nil
	}

	query := fmt.Sprintf(`
		UPDATE owners
		SET %s
		WHERE id = $1 AND deleted_at IS NULL
	`, strings.Join(setClauses, ", "))

	result, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to apply owner changes",
			zap.Error(err),
			zap.String("owner_id", id.String()),
		)
		return fmt.Errorf("apply owner changes %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("owner %s not found or already deleted", id.String())
	}

	return nil
}

func (r *ownerRepository) MarkOnboarded(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE owners
		SET is_active = true, is_profile_complete = true, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to mark owner onboarded",
			zap.Error(err),
			zap.String("owner_id", id.String()),
		)
		return fmt.Errorf("mark owner onboarded %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("owner %s not found", id.String())
	}

	return nil
}

// BumpEmailVersion atomically increments the email-change version stamp
// and reads back the stored email in the same statement, so the token is
// signed over what the database holds rather than what the client sent.
func (r *ownerRepository) BumpEmailVersion(ctx context.Context, id uuid.UUID) (int64, string, error) {
	query := `
		UPDATE owners
		SET email_verify_version = email_verify_version + 1, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING email_verify_version, email
	`

	var version int64
	var email string
	err := r.db.QueryRow(ctx, query, id).Scan(&version, &email)
	if err != nil {
		r.log.Error("Failed to bump owner email version",
			zap.Error(err),
			zap.String("owner_id", id.String()),
		)
		return 0, "", fmt.Errorf("bump owner email version %s: %w", id.String(), err)
	}

	return version, email, nil
}

// ApplyEmailChange swaps the email and bumps the version a second time,
// which is what retires the just-used link and any stale duplicates.
func (r *ownerRepository) ApplyEmailChange(ctx context.Context, id uuid.UUID, newEmail string) error {
	query := `
		UPDATE owners
		SET email = $2, email_verify_version = email_verify_version + 1, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.Exec(ctx, query, id, newEmail)
	if err != nil {
		if isUniqueViolation(err, "owners_email_key") {
			return ErrEmailInUse()
		}
		r.log.Error("Failed to apply owner email change",
			zap.Error(err),
			zap.String("owner_id", id.String()),
		)
		return fmt.Errorf("apply owner email change %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("owner %s not found", id.String())
	}

	return nil
}
