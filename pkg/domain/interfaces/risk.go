package interfaces

import (
	"context"

	"github.com/secmon-lab/briareus/pkg/domain/model"
	"github.com/secmon-lab/briareus/pkg/domain/types"
)

// RiskRepository defines the interface for Risk data access
type RiskRepository interface {
	// Create creates a new risk with auto-generated ID and code
	Create(ctx context.Context, risk *model.Risk) (*model.Risk, error)

	// Get retrieves a risk by ID
	Get(ctx context.Context, id int64) (*model.Risk, error)

	// GetByCode retrieves a risk by its immutable code
	GetByCode(ctx context.Context, code string) (*model.Risk, error)

	// List retrieves all risks
	List(ctx context.Context) ([]*model.Risk, error)

	// ListByStatus retrieves risks in the given status
	ListByStatus(ctx context.Context, status types.RiskStatus) ([]*model.Risk, error)

	// Update updates an existing risk with a compare-and-set on
	// risk.Revision: if the stored revision differs, the update fails with
	// types.ErrRevisionMismatch and nothing is written. On success the
	// returned risk carries the incremented revision.
	Update(ctx context.Context, risk *model.Risk) (*model.Risk, error)

	// Delete deletes a risk by ID
	Delete(ctx context.Context, id int64) error
}
