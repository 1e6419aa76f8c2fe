package interfaces

import (
	"context"

	"github.com/secmon-lab/briareus/pkg/domain/model/auth"
)

// Repository defines the interface for data persistence
type Repository interface {
	Risk() RiskRepository
	Account() AccountRepository

	// Session token methods
	PutToken(ctx context.Context, token *auth.Token) error
	GetToken(ctx context.Context, tokenID auth.TokenID) (*auth.Token, error)
	DeleteToken(ctx context.Context, tokenID auth.TokenID) error

	// Close releases backend resources. No-op for the in-memory backend.
	Close() error
}
