package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/briareus/pkg/domain/model"
	"github.com/secmon-lab/briareus/pkg/domain/model/config"
	"github.com/secmon-lab/briareus/pkg/domain/types"
	"github.com/secmon-lab/briareus/pkg/usecase"
)

func registerAccount(t *testing.T, uc *usecase.UseCases, email, name string) *model.Account {
	t.Helper()
	account, err := uc.Access.RegisterAccount(context.Background(), &usecase.RegisterAccountInput{
		Email: email,
		Name:  name,
	})
	gt.NoError(t, err).Required()
	return account
}

func TestRegisterAccount(t *testing.T) {
	uc, _ := newTestUseCases(t)
	ctx := context.Background()

	account, err := uc.Access.RegisterAccount(ctx, &usecase.RegisterAccountInput{
		Email:        "alice@example.com",
		EmployeeCode: "E-1001",
		Name:         "Alice",
	})
	gt.NoError(t, err).Required()

	gt.Value(t, account.Status).Equal(types.AccountStatusPending)
	gt.Value(t, account.RoleID).Equal(types.RoleID(""))
	gt.Value(t, len(account.GrantedSections)).Equal(0)
	gt.Value(t, account.ApprovedAt).Nil()
}

func TestRegisterAccountDuplicateEmail(t *testing.T) {
	uc, _ := newTestUseCases(t)
	ctx := context.Background()

	registerAccount(t, uc, "alice@example.com", "Alice")

	_, err := uc.Access.RegisterAccount(ctx, &usecase.RegisterAccountInput{
		Email: "alice@example.com",
		Name:  "Alice again",
	})
	gt.Value(t, errors.Is(err, types.ErrDuplicate)).Equal(true)
}

func TestApproveWithRoleDefaults(t *testing.T) {
	uc, notifier := newTestUseCases(t)
	ctx := context.Background()

	account := registerAccount(t, uc, "bob@example.com", "Bob")

	approved, err := uc.Access.Approve(ctx, account.ID, "risk-owner", nil)
	gt.NoError(t, err).Required()

	gt.Value(t, approved.Status).Equal(types.AccountStatusApproved)
	gt.Value(t, approved.RoleID).Equal(types.RoleID("risk-owner"))
	gt.Value(t, approved.ApprovedAt).NotNil()

	// Snapshot comes from the role catalog defaults
	gt.Value(t, approved.GrantedSections).Equal([]types.SectionID{
		config.SectionOverview,
		config.SectionRiskManagement,
		config.SectionReports,
	})

	select {
	case notified := <-notifier.approved:
		gt.Value(t, notified.ID).Equal(account.ID)
	case <-time.After(time.Second):
		t.Fatal("approval notification not delivered")
	}
}

func TestApproveWithSectionOverrides(t *testing.T) {
	uc, _ := newTestUseCases(t)
	ctx := context.Background()

	account := registerAccount(t, uc, "carol@example.com", "Carol")

	// Overrides replace the role defaults entirely
	approved, err := uc.Access.Approve(ctx, account.ID, "risk-owner", []types.SectionID{
		config.SectionOverview,
	})
	gt.NoError(t, err).Required()

	gt.Value(t, approved.GrantedSections).Equal([]types.SectionID{config.SectionOverview})

	// The role's catalog entry is unaffected; a second account approved
	// with the same role still gets the full defaults
	other := registerAccount(t, uc, "dan@example.com", "Dan")
	otherApproved, err := uc.Access.Approve(ctx, other.ID, "risk-owner", nil)
	gt.NoError(t, err).Required()
	gt.Value(t, len(otherApproved.GrantedSections)).Equal(3)
}

func TestApprovePreconditions(t *testing.T) {
	uc, _ := newTestUseCases(t)
	ctx := context.Background()

	t.Run("unknown role", func(t *testing.T) {
		account := registerAccount(t, uc, "eve@example.com", "Eve")
		_, err := uc.Access.Approve(ctx, account.ID, "superuser", nil)
		gt.Value(t, errors.Is(err, types.ErrNotFound)).Equal(true)
	})

	t.Run("repeated approval is rejected", func(t *testing.T) {
		account := registerAccount(t, uc, "frank@example.com", "Frank")
		_, err := uc.Access.Approve(ctx, account.ID, "reporter", nil)
		gt.NoError(t, err).Required()

		_, err = uc.Access.Approve(ctx, account.ID, "admin", nil)
		gt.Value(t, errors.Is(err, usecase.ErrPrecondition)).Equal(true)

		// The original grant survives the failed re-approval
		current, err := uc.Access.GetAccount(ctx, account.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, current.RoleID).Equal(types.RoleID("reporter"))
	})

	t.Run("unknown account", func(t *testing.T) {
		_, err := uc.Access.Approve(ctx, 9999, "reporter", nil)
		gt.Value(t, errors.Is(err, types.ErrNotFound)).Equal(true)
	})
}

func TestReject(t *testing.T) {
	uc, _ := newTestUseCases(t)
	ctx := context.Background()

	t.Run("pending account", func(t *testing.T) {
		account := registerAccount(t, uc, "grace@example.com", "Grace")
		rejected, err := uc.Access.Reject(ctx, account.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, rejected.Status).Equal(types.AccountStatusRejected)
	})

	t.Run("approved account loses role binding", func(t *testing.T) {
		account := registerAccount(t, uc, "heidi@example.com", "Heidi")
		_, err := uc.Access.Approve(ctx, account.ID, "auditor", nil)
		gt.NoError(t, err).Required()

		rejected, err := uc.Access.Reject(ctx, account.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, rejected.Status).Equal(types.AccountStatusRejected)
		gt.Value(t, rejected.RoleID).Equal(types.RoleID(""))
		gt.Value(t, rejected.ApprovedAt).Nil()
	})

	t.Run("repeated rejection fails", func(t *testing.T) {
		account := registerAccount(t, uc, "ivan@example.com", "Ivan")
		_, err := uc.Access.Reject(ctx, account.ID)
		gt.NoError(t, err).Required()

		_, err = uc.Access.Reject(ctx, account.ID)
		gt.Value(t, errors.Is(err, usecase.ErrPrecondition)).Equal(true)
	})
}

func TestRejectedAccountCanBeApproved(t *testing.T) {
	uc, _ := newTestUseCases(t)
	ctx := context.Background()

	account := registerAccount(t, uc, "judy@example.com", "Judy")
	_, err := uc.Access.Reject(ctx, account.ID)
	gt.NoError(t, err).Required()

	approved, err := uc.Access.Approve(ctx, account.ID, "reporter", nil)
	gt.NoError(t, err).Required()
	gt.Value(t, approved.Status).Equal(types.AccountStatusApproved)
	gt.Value(t, approved.RoleID).Equal(types.RoleID("reporter"))
}

func TestBulkApprovePartialFailure(t *testing.T) {
	uc, _ := newTestUseCases(t)
	ctx := context.Background()

	a := registerAccount(t, uc, "kim@example.com", "Kim")
	b := registerAccount(t, uc, "lee@example.com", "Lee")

	// Middle ID does not exist; the rest must still be processed
	results := uc.Access.BulkApprove(ctx, []int64{a.ID, 9999, b.ID}, "reporter")
	gt.Value(t, len(results)).Equal(3)

	gt.NoError(t, results[0].Err).Required()
	gt.Value(t, results[0].Account.Status).Equal(types.AccountStatusApproved)

	gt.Value(t, results[1].Err).NotNil()
	gt.Value(t, errors.Is(results[1].Err, types.ErrNotFound)).Equal(true)

	gt.NoError(t, results[2].Err).Required()
	gt.Value(t, results[2].Account.Status).Equal(types.AccountStatusApproved)
}

func TestBulkReject(t *testing.T) {
	uc, _ := newTestUseCases(t)
	ctx := context.Background()

	a := registerAccount(t, uc, "mallory@example.com", "Mallory")
	b := registerAccount(t, uc, "nick@example.com", "Nick")

	results := uc.Access.BulkReject(ctx, []int64{a.ID, b.ID})
	gt.Value(t, len(results)).Equal(2)
	for _, res := range results {
		gt.NoError(t, res.Err).Required()
		gt.Value(t, res.Account.Status).Equal(types.AccountStatusRejected)
	}
}

func TestListPending(t *testing.T) {
	uc, _ := newTestUseCases(t)
	ctx := context.Background()

	a := registerAccount(t, uc, "olga@example.com", "Olga")
	b := registerAccount(t, uc, "pete@example.com", "Pete")
	_, err := uc.Access.Approve(ctx, a.ID, "reporter", nil)
	gt.NoError(t, err).Required()

	pending, err := uc.Access.ListPending(ctx)
	gt.NoError(t, err).Required()
	gt.Value(t, len(pending)).Equal(1)
	gt.Value(t, pending[0].ID).Equal(b.ID)
}

func TestIdentityGate(t *testing.T) {
	uc, _ := newTestUseCases(t)
	ctx := context.Background()

	account := registerAccount(t, uc, "quinn@example.com", "Quinn")

	// Pending accounts hold an identity but pass no gate
	identity, err := uc.Access.Identity(ctx, account.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, identity.CanAccess(config.SectionOverview)).Equal(false)

	_, err = uc.Access.Approve(ctx, account.ID, "auditor", nil)
	gt.NoError(t, err).Required()

	identity, err = uc.Access.Identity(ctx, account.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, identity.CanAccess(config.SectionOverview)).Equal(true)
	gt.Value(t, identity.CanAccess(config.SectionReports)).Equal(true)

	// Auditor has no risk-management grant
	gt.Value(t, identity.CanAccess(config.SectionRiskManagement)).Equal(false)

	// Rejection revokes access on the next identity rebuild even though
	// the section snapshot is still on the record
	_, err = uc.Access.Reject(ctx, account.ID)
	gt.NoError(t, err).Required()

	identity, err = uc.Access.Identity(ctx, account.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, identity.CanAccess(config.SectionOverview)).Equal(false)
}
