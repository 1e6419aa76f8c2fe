package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareus/pkg/domain/interfaces"
	"github.com/secmon-lab/briareus/pkg/domain/model"
	"github.com/secmon-lab/briareus/pkg/domain/model/auth"
	"github.com/secmon-lab/briareus/pkg/domain/model/config"
	"github.com/secmon-lab/briareus/pkg/domain/types"
	"github.com/secmon-lab/briareus/pkg/service/notify"
	"github.com/secmon-lab/briareus/pkg/utils/async"
)

type AccessUseCase struct {
	repo     interfaces.Repository
	roles    *config.RoleCatalog
	notifier notify.Service
}

func NewAccessUseCase(repo interfaces.Repository, roles *config.RoleCatalog, notifier notify.Service) *AccessUseCase {
	return &AccessUseCase{
		repo:     repo,
		roles:    roles,
		notifier: notifier,
	}
}

// RegisterAccountInput carries the self-service signup fields
type RegisterAccountInput struct {
	Email        string
	EmployeeCode string
	Name         string
}

// RegisterAccount creates a pending account. Pending accounts carry no role
// and no sections; everything is granted at approval time.
func (uc *AccessUseCase) RegisterAccount(ctx context.Context, in *RegisterAccountInput) (*model.Account, error) {
	if in.Email == "" {
		return nil, goerr.Wrap(ErrValidation, "email is required", goerr.V(FieldKey, "email"))
	}
	if in.Name == "" {
		return nil, goerr.Wrap(ErrValidation, "name is required", goerr.V(FieldKey, "name"))
	}

	account := &model.Account{
		Email:        in.Email,
		EmployeeCode: in.EmployeeCode,
		Name:         in.Name,
		Status:       types.AccountStatusPending,
	}

	created, err := uc.repo.Account().Create(ctx, account)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create account", goerr.V("email", in.Email))
	}
	return created, nil
}

// Approve grants an account access with the given role. The role must exist
// in the catalog. When sectionOverrides is non-nil it replaces the role's
// default sections entirely; the result is snapshotted onto the account.
// Approving an already approved account fails so repeated submissions of
// the same form cannot silently rewrite a grant.
func (uc *AccessUseCase) Approve(ctx context.Context, accountID int64, roleID types.RoleID, sectionOverrides []types.SectionID) (*model.Account, error) {
	if !uc.roles.Has(roleID) {
		return nil, goerr.Wrap(types.ErrNotFound, "unknown role",
			goerr.V(AccountIDKey, accountID), goerr.V("role", roleID))
	}

	account, err := uc.repo.Account().Get(ctx, accountID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get account", goerr.V(AccountIDKey, accountID))
	}

	if account.Status.Normalize() == types.AccountStatusApproved {
		return nil, goerr.Wrap(ErrPrecondition, "account is already approved",
			goerr.V(AccountIDKey, accountID))
	}

	sections := sectionOverrides
	if sections == nil {
		sections = uc.roles.DefaultSections(roleID)
	}
	for _, s := range sections {
		if err := s.Validate(); err != nil {
			return nil, goerr.Wrap(ErrValidation, "invalid section override",
				goerr.V(AccountIDKey, accountID), goerr.V("section", s))
		}
	}

	now := time.Now().UTC()
	account.Status = types.AccountStatusApproved
	account.RoleID = roleID
	account.GrantedSections = sections
	account.ApprovedAt = &now

	updated, err := uc.repo.Account().Update(ctx, account)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to approve account", goerr.V(AccountIDKey, accountID))
	}

	if uc.notifier != nil {
		notified := updated.Clone()
		async.Dispatch(ctx, func(ctx context.Context) error {
			return uc.notifier.NotifyAccountApproved(ctx, notified)
		})
	}

	return updated, nil
}

// Reject denies an account. Rejecting an approved account revokes its role
// binding; the section snapshot stays on the record for audit but the gate
// ignores it once the status is no longer approved. Rejecting a rejected
// account fails.
func (uc *AccessUseCase) Reject(ctx context.Context, accountID int64) (*model.Account, error) {
	account, err := uc.repo.Account().Get(ctx, accountID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get account", goerr.V(AccountIDKey, accountID))
	}

	if account.Status.Normalize() == types.AccountStatusRejected {
		return nil, goerr.Wrap(ErrPrecondition, "account is already rejected",
			goerr.V(AccountIDKey, accountID))
	}

	account.Status = types.AccountStatusRejected
	account.RoleID = ""
	account.ApprovedAt = nil

	updated, err := uc.repo.Account().Update(ctx, account)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to reject account", goerr.V(AccountIDKey, accountID))
	}
	return updated, nil
}

// BulkResult is the per-account outcome of a bulk operation
type BulkResult struct {
	AccountID int64
	Account   *model.Account
	Err       error
}

// BulkApprove approves each account in order with the same role and no
// section overrides. One failure does not abort the rest; each entry in the
// result carries its own error.
func (uc *AccessUseCase) BulkApprove(ctx context.Context, accountIDs []int64, roleID types.RoleID) []BulkResult {
	results := make([]BulkResult, 0, len(accountIDs))
	for _, id := range accountIDs {
		account, err := uc.Approve(ctx, id, roleID, nil)
		results = append(results, BulkResult{AccountID: id, Account: account, Err: err})
	}
	return results
}

// BulkReject rejects each account in order, continuing past failures
func (uc *AccessUseCase) BulkReject(ctx context.Context, accountIDs []int64) []BulkResult {
	results := make([]BulkResult, 0, len(accountIDs))
	for _, id := range accountIDs {
		account, err := uc.Reject(ctx, id)
		results = append(results, BulkResult{AccountID: id, Account: account, Err: err})
	}
	return results
}

func (uc *AccessUseCase) GetAccount(ctx context.Context, accountID int64) (*model.Account, error) {
	account, err := uc.repo.Account().Get(ctx, accountID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get account", goerr.V(AccountIDKey, accountID))
	}
	return account, nil
}

func (uc *AccessUseCase) ListAccounts(ctx context.Context) ([]*model.Account, error) {
	accounts, err := uc.repo.Account().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list accounts")
	}
	return accounts, nil
}

// ListPending returns accounts awaiting a decision
func (uc *AccessUseCase) ListPending(ctx context.Context) ([]*model.Account, error) {
	accounts, err := uc.repo.Account().ListByStatus(ctx, types.AccountStatusPending)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list pending accounts")
	}
	return accounts, nil
}

// Identity loads the account and builds its gate view. Every protected
// request goes through here so a revoked account loses access on its next
// request, not at token expiry.
func (uc *AccessUseCase) Identity(ctx context.Context, accountID int64) (*auth.Identity, error) {
	account, err := uc.repo.Account().Get(ctx, accountID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load account for identity",
			goerr.V(AccountIDKey, accountID))
	}
	return auth.IdentityFromAccount(account), nil
}
