package auth

import (
	"crypto/subtle"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// TokenID identifies a session token
type TokenID string

// TokenSecret is the secret half of a session token pair
type TokenSecret string

// Token is an opaque server-side session token. The pair (ID, Secret) is
// carried by cookies; nothing access-relevant is encoded in the token
// itself.
type Token struct {
	ID        TokenID
	Secret    TokenSecret
	AccountID int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// NewToken issues a fresh token for the account
func NewToken(accountID int64, ttl time.Duration) *Token {
	now := time.Now().UTC()
	return &Token{
		ID:        TokenID(uuid.NewString()),
		Secret:    TokenSecret(uuid.NewString()),
		AccountID: accountID,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
}

// Validate checks if the TokenID is well-formed
func (t TokenID) Validate() error {
	if t == "" {
		return goerr.New("token ID cannot be empty")
	}
	return nil
}

// String returns the string representation of TokenID
func (t TokenID) String() string {
	return string(t)
}

// Validate checks structural validity of the token
func (t *Token) Validate() error {
	if err := t.ID.Validate(); err != nil {
		return err
	}
	if t.Secret == "" {
		return goerr.New("token secret cannot be empty")
	}
	if t.AccountID == 0 {
		return goerr.New("token account ID is required")
	}
	if t.ExpiresAt.IsZero() {
		return goerr.New("token expiry is required")
	}
	return nil
}

// VerifySecret compares the presented secret in constant time
func (t *Token) VerifySecret(secret TokenSecret) bool {
	return subtle.ConstantTimeCompare([]byte(t.Secret), []byte(secret)) == 1
}

// IsExpired reports whether the token has passed its expiry
func (t *Token) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
