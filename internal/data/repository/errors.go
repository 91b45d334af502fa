package repository

import (
	"errors"

	"identity-service/pkg/apperrors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Conflict errors are produced both by in-transaction pre-checks and by
// the unique-constraint backstop when a race slips past a pre-check.
// Both paths must be indistinguishable to callers, so the constructors
// live here and everything funnels through them.

func ErrEmailInUse() error {
	return apperrors.New(apperrors.CodeConflict, "email address already in use")
}

func ErrPhoneInUse() error {
	return apperrors.New(apperrors.CodeConflict, "phone number already in use")
}

func ErrGSTInUse() error {
	return apperrors.New(apperrors.CodeConflict, "GST number already in use")
}

func ErrProfileExists() error {
	return apperrors.New(apperrors.CodeConflict, "profile already exists")
}

const uniqueViolationCode = "23505"

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolationCode {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
