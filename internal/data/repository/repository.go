package repository

import (
	"context"
	"fmt"

	"identity-service/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	Owner           OwnerRepository
	OwnerProfile    OwnerProfileRepository
	Customer        CustomerRepository
	CustomerProfile CustomerProfileRepository
	Session         SessionRepository
	OTP             OTPRepository
	Tx              TxManager
}

// TxManager runs fn with every repository bound to a single database
// transaction. Every read-check-write sequence in the update and
// confirmation flows goes through it so concurrent requests cannot
// interleave between a uniqueness check and the write it guards.
type TxManager interface {
	InTx(ctx context.Context, fn func(r *Repository) error) error
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	r := newQuerierRepository(db, log)
	r.Tx = &pgxTxManager{db: db, log: log}
	return r
}

func newQuerierRepository(q database.Querier, log *zap.Logger) *Repository {
	r := &Repository{
		Owner:           NewOwnerRepository(q, log),
		OwnerProfile:    NewOwnerProfileRepository(q, log),
		Customer:        NewCustomerRepository(q, log),
		CustomerProfile: NewCustomerProfileRepository(q, log),
		Session:         NewSessionRepository(q, log),
		OTP:             NewOTPRepository(q, log),
	}
	// Nested InTx calls reuse the already-open transaction.
	r.Tx = reentrantTx{r}
	return r
}

type pgxTxManager struct {
	db  database.PgxIface
	log *zap.Logger
}

func (m *pgxTxManager) InTx(ctx context.Context, fn func(r *Repository) error) error {
	tx, err := m.db.Begin(ctx)
	if err != nil {
		m.log.Error("Failed to begin transaction", zap.Error(err))
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(newQuerierRepository(tx, m.log)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		m.log.Error("Failed to commit transaction", zap.Error(err))
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

type reentrantTx struct {
	r *Repository
}

func (t reentrantTx) InTx(ctx context.Context, fn func(r *Repository) error) error {
	return fn(t.r)
}
