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

type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Customer, error)
	FindByEmail(ctx context.Context, email string) (*entity.Customer, error)
	ApplyChanges(ctx context.Context, id uuid.UUID, changes entity.CustomerChanges) error
	MarkOnboarded(ctx context.Context, id uuid.UUID) error
	BumpEmailVersion(ctx context.Context, id uuid.UUID) (int64, string, error)
	ApplyEmailChange(ctx context.Context, id uuid.UUID, newEmail string) error
}

type customerRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewCustomerRepository(db database.Querier, log *zap.Logger) CustomerRepository {
	return &customerRepository{
		db:  db,
		log: log.With(zap.String("repository", "customer")),
	}
}

const customerColumns = `id, full_name, email, password, is_active, is_profile_complete,
	       email_verify_version, created_at, updated_at, deleted_at`

func (r *customerRepository) Create(ctx context.Context, customer *entity.Customer) error {
	query := `
		INSERT INTO customers (id, full_name, email, password, is_active,
		                       is_profile_complete, email_verify_version,
		                       created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		customer.ID,
		customer.FullName,
		customer.Email,
		customer.PasswordHash,
		customer.IsActive,
		customer.IsProfileComplete,
		customer.EmailVerifyVersion,
		customer.CreatedAt,
		customer.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err, "customers_email_key") {
			return ErrEmailInUse()
		}
		r.log.Error("Failed to create customer",
			zap.Error(err),
			zap.String("email", customer.Email),
		)
		return fmt.Errorf("create customer %s: %w", customer.Email, err)
	}

	return nil
}

func (r *customerRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	query := `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE id = $1 AND deleted_at IS NULL
	`
	return r.scanOne(ctx, query, "find customer by ID", id)
}

func (r *customerRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	query := `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE id = $1 AND deleted_at IS NULL
		FOR UPDATE
	`
	return r.scanOne(ctx, query, "find customer for update", id)
}

func (r *customerRepository) FindByEmail(ctx context.Context, email string) (*entity.Customer, error) {
	query := `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE email = $1 AND deleted_at IS NULL
	`
	return r.scanOne(ctx, query, "find customer by email", email)
}

func (r *customerRepository) scanOne(ctx context.Context, query, op string, arg any) (*entity.Customer, error) {
	var customer entity.Customer
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&customer.ID,
		&customer.FullName,
		&customer.Email,
		&customer.PasswordHash,
		&customer.IsActive,
		&customer.IsProfileComplete,
		&customer.EmailVerifyVersion,
		&customer.CreatedAt,
		&customer.UpdatedAt,
		&customer.DeletedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Customer query failed", zap.Error(err), zap.String("op", op))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &customer, nil
}

func (r *customerRepository) ApplyChanges(ctx context.Context, id uuid.UUID, changes entity.CustomerChanges) error {
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
		UPDATE customers
		SET %s
		WHERE id = $1 AND deleted_at IS NULL
	`, strings.Join(setClauses, ", "))

	result, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to apply customer changes",
			zap.Error(err),
			zap.String("customer_id", id.String()),
		)
		return fmt.Errorf("apply customer changes %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("customer %s not found or already deleted", id.String())
	}

	return nil
}

func (r *customerRepository) MarkOnboarded(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE customers
		SET is_active = true, is_profile_complete = true, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to mark customer onboarded",
			zap.Error(err),
			zap.String("customer_id", id.String()),
		)
		return fmt.Errorf("mark customer onboarded %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("customer %s not found", id.String())
	}

	return nil
}

func (r *customerRepository) BumpEmailVersion(ctx context.Context, id uuid.UUID) (int64, string, error) {
	query := `
		UPDATE customers
		SET email_verify_version = email_verify_version + 1, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING email_verify_version, email
	`

	var version int64
	var email string
	err := r.db.QueryRow(ctx, query, id).Scan(&version, &email)
	if err != nil {
		r.log.Error("Failed to bump customer email version",
			zap.Error(err),
			zap.String("customer_id", id.String()),
		)
		return 0, "", fmt.Errorf("bump customer email version %s: %w", id.String(), err)
	}

	return version, email, nil
}

func (r *customerRepository) ApplyEmailChange(ctx context.Context, id uuid.UUID, newEmail string) error {
	query := `
		UPDATE customers
		SET email = $2, email_verify_version = email_verify_version + 1, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.Exec(ctx, query, id, newEmail)
	if err != nil {
		if isUniqueViolation(err, "customers_email_key") {
			return ErrEmailInUse()
		}
		r.log.Error("Failed to apply customer email change",
			zap.Error(err),
			zap.String("customer_id", id.String()),
		)
		return fmt.Errorf("apply customer email change %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("customer %s not found", id.String())
	}

	return nil
}
