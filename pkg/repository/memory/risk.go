package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareus/pkg/domain/model"
	"github.com/secmon-lab/briareus/pkg/domain/types"
)

type riskRepository struct {
	mu     sync.RWMutex
	risks  map[int64]*model.Risk
	nextID int64
}

func newRiskRepository() *riskRepository {
	return &riskRepository{
		risks:  make(map[int64]*model.Risk),
		nextID: 1,
	}
}

func (r *riskRepository) Create(ctx context.Context, risk *model.Risk) (*model.Risk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	created := risk.Clone()
	created.ID = r.nextID
	created.Code = fmt.Sprintf("RISK-%d", r.nextID)
	created.Revision = 1
	created.CreatedAt = now
	created.UpdatedAt = now
	r.nextID++

	r.risks[created.ID] = created
	return created.Clone(), nil
}

func (r *riskRepository) Get(ctx context.Context, id int64) (*model.Risk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	risk, exists := r.risks[id]
	if !exists {
		return nil, goerr.Wrap(types.ErrNotFound, "risk not found", goerr.V("id", id))
	}

	// Return a copy to prevent external modification
	return risk.Clone(), nil
}

func (r *riskRepository) GetByCode(ctx context.Context, code string) (*model.Risk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, risk := range r.risks {
		if risk.Code == code {
			return risk.Clone(), nil
		}
	}
	return nil, goerr.Wrap(types.ErrNotFound, "risk not found", goerr.V("code", code))
}

func (r *riskRepository) List(ctx context.Context) ([]*model.Risk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	risks := make([]*model.Risk, 0, len(r.risks))
	for _, risk := range r.risks {
		risks = append(risks, risk.Clone())
	}
	return risks, nil
}

func (r *riskRepository) ListByStatus(ctx context.Context, status types.RiskStatus) ([]*model.Risk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var risks []*model.Risk
	for _, risk := range r.risks {
		if risk.Status.Normalize() == status {
			risks = append(risks, risk.Clone())
		}
	}
	return risks, nil
}

func (r *riskRepository) Update(ctx context.Context, risk *model.Risk) (*model.Risk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.risks[risk.ID]
	if !exists {
		return nil, goerr.Wrap(types.ErrNotFound, "risk not found", goerr.V("id", risk.ID))
	}

	if existing.Revision != risk.Revision {
		return nil, goerr.Wrap(types.ErrRevisionMismatch, "risk was modified concurrently",
			goerr.V("id", risk.ID),
			goerr.V("expected", risk.Revision),
			goerr.V("actual", existing.Revision))
	}

	updated := risk.Clone()
	updated.Code = existing.Code
	updated.CreatedAt = existing.CreatedAt
	updated.Revision = existing.Revision + 1
	updated.UpdatedAt = time.Now().UTC()

	r.risks[updated.ID] = updated
	return updated.Clone(), nil
}

func (r *riskRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.risks[id]; !exists {
		return goerr.Wrap(types.ErrNotFound, "risk not found", goerr.V("id", id))
	}

	delete(r.risks, id)
	return nil
}
