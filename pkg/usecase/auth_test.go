package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/briareus/pkg/domain/types"
)

func TestLoginIssuesToken(t *testing.T) {
	uc, _ := newTestUseCases(t)
	ctx := context.Background()

	account := registerAccount(t, uc, "alice@example.com", "Alice")

	token, err := uc.Auth.Login(ctx, "alice@example.com")
	gt.NoError(t, err).Required()

	gt.Value(t, token.AccountID).Equal(account.ID)
	gt.Value(t, string(token.ID)).NotEqual("")
	gt.Value(t, string(token.Secret)).NotEqual("")
	gt.Value(t, token.ExpiresAt.IsZero()).Equal(false)
}

func TestLoginUnknownEmail(t *testing.T) {
	uc, _ := newTestUseCases(t)
	ctx := context.Background()

	_, err := uc.Auth.Login(ctx, "nobody@example.com")
	gt.Value(t, errors.Is(err, types.ErrNotFound)).Equal(true)
}

func TestValidateToken(t *testing.T) {
	uc, _ := newTestUseCases(t)
	ctx := context.Background()

	registerAccount(t, uc, "bob@example.com", "Bob")
	token, err := uc.Auth.Login(ctx, "bob@example.com")
	gt.NoError(t, err).Required()

	t.Run("valid pair", func(t *testing.T) {
		got, err := uc.Auth.ValidateToken(ctx, token.ID, token.Secret)
		gt.NoError(t, err).Required()
		gt.Value(t, got.AccountID).Equal(token.AccountID)
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, err := uc.Auth.ValidateToken(ctx, token.ID, "forged-secret")
		gt.Value(t, err).NotNil()
	})

	t.Run("unknown token ID", func(t *testing.T) {
		_, err := uc.Auth.ValidateToken(ctx, "no-such-token", token.Secret)
		gt.Value(t, errors.Is(err, types.ErrNotFound)).Equal(true)
	})
}

func TestLogout(t *testing.T) {
	uc, _ := newTestUseCases(t)
	ctx := context.Background()

	registerAccount(t, uc, "carol@example.com", "Carol")
	token, err := uc.Auth.Login(ctx, "carol@example.com")
	gt.NoError(t, err).Required()

	gt.NoError(t, uc.Auth.Logout(ctx, token.ID)).Required()

	_, err = uc.Auth.ValidateToken(ctx, token.ID, token.Secret)
	gt.Value(t, err).NotNil()

	// Logging out an already removed session is not an error
	gt.NoError(t, uc.Auth.Logout(ctx, token.ID)).Required()
}
