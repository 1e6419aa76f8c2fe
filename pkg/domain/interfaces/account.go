package interfaces

import (
	"context"

	"github.com/secmon-lab/briareus/pkg/domain/model"
	"github.com/secmon-lab/briareus/pkg/domain/types"
)

// AccountRepository defines the interface for Account data access
type AccountRepository interface {
	// Create creates a new account with auto-generated ID. Email and
	// employee code are unique; violations fail with types.ErrDuplicate.
	Create(ctx context.Context, account *model.Account) (*model.Account, error)

	// Get retrieves an account by ID
	Get(ctx context.Context, id int64) (*model.Account, error)

	// GetByEmail retrieves an account by email
	GetByEmail(ctx context.Context, email string) (*model.Account, error)

	// List retrieves all accounts
	List(ctx context.Context) ([]*model.Account, error)

	// ListByStatus retrieves accounts in the given status. Accounts with no
	// recorded status count as pending.
	ListByStatus(ctx context.Context, status types.AccountStatus) ([]*model.Account, error)

	// Update updates an existing account
	Update(ctx context.Context, account *model.Account) (*model.Account, error)
}
