package usecase

import (
	"context"
	"testing"

	"identity-service/internal/dto/request"
	"identity-service/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterOwner(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	res, err := svc.Auth.RegisterOwner(ctx, &request.RegisterRequest{
		FullName: "Asha Verma",
		Email:    "asha@example.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	assert.False(t, res.IsActive)
	assert.NotEmpty(t, res.Token)

	// Same address again is a conflict.
	_, err = svc.Auth.RegisterOwner(ctx, &request.RegisterRequest{
		FullName: "Other",
		Email:    "asha@example.com",
		Password: "s3cret-pass",
	})
	requireCode(t, err, apperrors.CodeConflict)
	assert.Len(t, store.owners, 1)
}

func TestRegisterOwner_DoesNotStorePlaintextPassword(t *testing.T) {
	svc, store, _ := newTestService()

	_, err := svc.Auth.RegisterOwner(context.Background(), &request.RegisterRequest{
		FullName: "Asha Verma",
		Email:    "asha@example.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	for _, o := range store.owners {
		assert.NotEqual(t, "s3cret-pass", o.PasswordHash)
	}
}

func TestLoginOwner(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Auth.RegisterOwner(ctx, &request.RegisterRequest{
		FullName: "Asha Verma",
		Email:    "asha@example.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	// Inactive accounts can log in; they need a session to run onboarding.
	res, err := svc.Auth.LoginOwner(ctx, &request.LoginRequest{
		Email:    "asha@example.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)

	_, err = svc.Auth.LoginOwner(ctx, &request.LoginRequest{
		Email:    "asha@example.com",
		Password: "wrong-pass",
	})
	requireCode(t, err, apperrors.CodeUnauthorized)

	_, err = svc.Auth.LoginOwner(ctx, &request.LoginRequest{
		Email:    "nobody@example.com",
		Password: "s3cret-pass",
	})
	requireCode(t, err, apperrors.CodeUnauthorized)
}

func TestRegisterCustomer_SameEmailAsOwnerAllowed(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Auth.RegisterOwner(ctx, &request.RegisterRequest{
		FullName: "Asha Verma",
		Email:    "asha@example.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	// Email uniqueness is per account type.
	_, err = svc.Auth.RegisterCustomer(ctx, &request.RegisterRequest{
		FullName: "Asha Verma",
		Email:    "asha@example.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
}

func TestLogout(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	res, err := svc.Auth.RegisterOwner(ctx, &request.RegisterRequest{
		FullName: "Asha Verma",
		Email:    "asha@example.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Auth.Logout(ctx, res.Token))

	sess, err := store.repository().Session.FindValidSession(ctx, res.Token)
	require.NoError(t, err)
	assert.Nil(t, sess)

	err = svc.Auth.Logout(ctx, "not-a-uuid")
	requireCode(t, err, apperrors.CodeBadRequest)
}
