package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareus/pkg/domain/interfaces"
	"github.com/secmon-lab/briareus/pkg/domain/model/auth"
	"github.com/secmon-lab/briareus/pkg/domain/types"
	"github.com/secmon-lab/briareus/pkg/utils/logging"
)

// DefaultTokenTTL is the session lifetime for issued tokens
const DefaultTokenTTL = 24 * time.Hour

type AuthUseCase struct {
	repo     interfaces.Repository
	tokenTTL time.Duration
}

func NewAuthUseCase(repo interfaces.Repository) *AuthUseCase {
	return &AuthUseCase{
		repo:     repo,
		tokenTTL: DefaultTokenTTL,
	}
}

// Login issues a session token for the account with the given email. Any
// registered account may hold a session, including pending ones; the
// section gate decides what the session can actually reach.
func (uc *AuthUseCase) Login(ctx context.Context, email string) (*auth.Token, error) {
	if email == "" {
		return nil, goerr.Wrap(ErrValidation, "email is required", goerr.V(FieldKey, "email"))
	}

	account, err := uc.repo.Account().GetByEmail(ctx, email)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to find account", goerr.V("email", email))
	}

	token := auth.NewToken(account.ID, uc.tokenTTL)
	if err := uc.repo.PutToken(ctx, token); err != nil {
		return nil, goerr.Wrap(err, "failed to store token", goerr.V(AccountIDKey, account.ID))
	}

	logging.From(ctx).Info("Session issued",
		"account_id", account.ID,
		"expires_at", token.ExpiresAt)

	return token, nil
}

// ValidateToken checks a presented token pair and returns the stored token.
// Expired tokens are deleted on sight.
func (uc *AuthUseCase) ValidateToken(ctx context.Context, tokenID auth.TokenID, secret auth.TokenSecret) (*auth.Token, error) {
	if err := tokenID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid token ID")
	}

	token, err := uc.repo.GetToken(ctx, tokenID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get token")
	}

	if !token.VerifySecret(secret) {
		return nil, goerr.Wrap(types.ErrNotFound, "token secret mismatch")
	}

	if token.IsExpired(time.Now().UTC()) {
		if err := uc.repo.DeleteToken(ctx, tokenID); err != nil {
			logging.From(ctx).Warn("Failed to delete expired token",
				"token_id", tokenID.String(),
				"error", err.Error())
		}
		return nil, goerr.Wrap(types.ErrNotFound, "token expired")
	}

	return token, nil
}

// Logout deletes the session token. Deleting an unknown token is not an
// error; the session is gone either way.
func (uc *AuthUseCase) Logout(ctx context.Context, tokenID auth.TokenID) error {
	if err := tokenID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid token ID")
	}

	if err := uc.repo.DeleteToken(ctx, tokenID); err != nil && !errors.Is(err, types.ErrNotFound) {
		return goerr.Wrap(err, "failed to delete token")
	}
	return nil
}
