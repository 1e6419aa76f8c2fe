package model

import (
	"slices"
	"time"

	"github.com/secmon-lab/briareus/pkg/domain/types"
)

// Account is a registered user account moving through the access request
// lifecycle. GrantedSections is the approval-time snapshot; editing the
// role catalog later never changes an already approved account.
type Account struct {
	ID           int64
	Email        string
	EmployeeCode string
	Name         string

	Status          types.AccountStatus
	RoleID          types.RoleID
	GrantedSections []types.SectionID
	ApprovedAt      *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasSection reports whether the section is in the account's granted set
func (a *Account) HasSection(section types.SectionID) bool {
	return slices.Contains(a.GrantedSections, section)
}

// Clone returns a deep copy of the account
func (a *Account) Clone() *Account {
	c := *a
	c.GrantedSections = slices.Clone(a.GrantedSections)
	if a.ApprovedAt != nil {
		t := *a.ApprovedAt
		c.ApprovedAt = &t
	}
	return &c
}
