package auth

import (
	"slices"

	"github.com/secmon-lab/briareus/pkg/domain/model"
	"github.com/secmon-lab/briareus/pkg/domain/types"
)

// Identity is the per-request view of the acting account, rebuilt from the
// stored account on every request. Access decisions come from here and only
// from here: the granted set can be a manually adjusted subset of the
// role's defaults, so a role claim alone is never sufficient.
type Identity struct {
	AccountID int64
	Email     string
	Name      string
	RoleID    types.RoleID
	Status    types.AccountStatus
	Sections  []types.SectionID
}

// IdentityFromAccount builds the gate view of an account
func IdentityFromAccount(a *model.Account) *Identity {
	return &Identity{
		AccountID: a.ID,
		Email:     a.Email,
		Name:      a.Name,
		RoleID:    a.RoleID,
		Status:    a.Status.Normalize(),
		Sections:  slices.Clone(a.GrantedSections),
	}
}

// CanAccess is the section gate: false unless the account is approved and
// the section is in its granted snapshot.
func (i *Identity) CanAccess(section types.SectionID) bool {
	if i == nil || i.Status != types.AccountStatusApproved {
		return false
	}
	return slices.Contains(i.Sections, section)
}
