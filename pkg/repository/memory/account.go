package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareus/pkg/domain/model"
	"github.com/secmon-lab/briareus/pkg/domain/types"
)

type accountRepository struct {
	mu       sync.RWMutex
	accounts map[int64]*model.Account
	nextID   int64
}

func newAccountRepository() *accountRepository {
	return &accountRepository{
		accounts: make(map[int64]*model.Account),
		nextID:   1,
	}
}

func (r *accountRepository) Create(ctx context.Context, account *model.Account) (*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.accounts {
		if a.Email == account.Email {
			return nil, goerr.Wrap(types.ErrDuplicate, "email already registered", goerr.V("email", account.Email))
		}
		if a.EmployeeCode == account.EmployeeCode {
			return nil, goerr.Wrap(types.ErrDuplicate, "employee code already registered", goerr.V("employee_code", account.EmployeeCode))
		}
	}

	now := time.Now().UTC()
	created := account.Clone()
	created.ID = r.nextID
	created.CreatedAt = now
	created.UpdatedAt = now
	r.nextID++

	r.accounts[created.ID] = created
	return created.Clone(), nil
}

func (r *accountRepository) Get(ctx context.Context, id int64) (*model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, exists := r.accounts[id]
	if !exists {
		return nil, goerr.Wrap(types.ErrNotFound, "account not found", goerr.V("id", id))
	}
	return account.Clone(), nil
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, account := range r.accounts {
		if account.Email == email {
			return account.Clone(), nil
		}
	}
	return nil, goerr.Wrap(types.ErrNotFound, "account not found", goerr.V("email", email))
}

func (r *accountRepository) List(ctx context.Context) ([]*model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	accounts := make([]*model.Account, 0, len(r.accounts))
	for _, account := range r.accounts {
		accounts = append(accounts, account.Clone())
	}
	return accounts, nil
}

func (r *accountRepository) ListByStatus(ctx context.Context, status types.AccountStatus) ([]*model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var accounts []*model.Account
	for _, account := range r.accounts {
		if account.Status.Normalize() == status {
			accounts = append(accounts, account.Clone())
		}
	}
	return accounts, nil
}

func (r *accountRepository) Update(ctx context.Context, account *model.Account) (*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.accounts[account.ID]
	if !exists {
		return nil, goerr.Wrap(types.ErrNotFound, "account not found", goerr.V("id", account.ID))
	}

	updated := account.Clone()
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.accounts[updated.ID] = updated
	return updated.Clone(), nil
}
