package utils

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	AccountIDKey   contextKey = "account_id"
	AccountTypeKey contextKey = "account_type"
	TokenKey       contextKey = "token"
)

func GetAccountIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	idVal := ctx.Value(AccountIDKey)
	if idVal == nil {
		return uuid.Nil, false
	}

	idStr, ok := idVal.(string)
	if !ok {
		return uuid.Nil, false
	}

	accountID, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, false
	}

	return accountID, true
}

func GetAccountTypeFromContext(ctx context.Context) (string, bool) {
	typeVal := ctx.Value(AccountTypeKey)
	if typeVal == nil {
		return "", false
	}

	accountType, ok := typeVal.(string)
	return accountType, ok
}

func SetAccountContext(ctx context.Context, accountID uuid.UUID, accountType string) context.Context {
	ctx = context.WithValue(ctx, AccountIDKey, accountID.String())
	ctx = context.WithValue(ctx, AccountTypeKey, accountType)
	return ctx
}

// GetTokenFromContext returns the raw session token from context
func GetTokenFromContext(ctx context.Context) (string, bool) {
	tokenVal := ctx.Value(TokenKey)
	if tokenVal == nil {
		return "", false
	}

	token, ok := tokenVal.(string)
	return token, ok
}

// SetTokenContext stores the raw session token in context
func SetTokenContext(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, TokenKey, token)
}
