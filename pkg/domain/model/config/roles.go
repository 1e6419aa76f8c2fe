package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareus/pkg/domain/types"
)

// RoleEntry maps a role to its default dashboard sections. The sections are
// a seed: the operator may override them per account at approval time, and
// the account keeps its own snapshot afterwards.
type RoleEntry struct {
	ID          types.RoleID
	Name        string
	Description string
	Sections    []types.SectionID
}

// RoleCatalog is the static role table. A role may exist with an empty
// section list; the operator then picks sections manually at approval.
type RoleCatalog struct {
	roles []RoleEntry
}

// NewRoleCatalog builds a catalog from entries
func NewRoleCatalog(entries []RoleEntry) *RoleCatalog {
	return &RoleCatalog{roles: entries}
}

// Validate checks for duplicate role IDs and malformed identifiers
func (c *RoleCatalog) Validate() error {
	seen := make(map[types.RoleID]bool)
	for _, r := range c.roles {
		if err := r.ID.Validate(); err != nil {
			return goerr.Wrap(err, "invalid role ID")
		}
		if seen[r.ID] {
			return goerr.New("duplicate role ID", goerr.V("id", r.ID))
		}
		seen[r.ID] = true
		if r.Name == "" {
			return goerr.New("role name is required", goerr.V("id", r.ID))
		}
		for _, s := range r.Sections {
			if err := s.Validate(); err != nil {
				return goerr.Wrap(err, "invalid section ID", goerr.V("role", r.ID))
			}
		}
	}
	return nil
}

// Get returns the entry for the given role ID
func (c *RoleCatalog) Get(id types.RoleID) (*RoleEntry, bool) {
	for i := range c.roles {
		if c.roles[i].ID == id {
			return &c.roles[i], true
		}
	}
	return nil, false
}

// Has reports whether the role exists in the catalog
func (c *RoleCatalog) Has(id types.RoleID) bool {
	_, ok := c.Get(id)
	return ok
}

// DefaultSections returns the role's default section set. An unknown role
// yields an empty set rather than an error: the operator must grant
// sections explicitly in that case.
func (c *RoleCatalog) DefaultSections(id types.RoleID) []types.SectionID {
	entry, ok := c.Get(id)
	if !ok {
		return nil
	}
	out := make([]types.SectionID, len(entry.Sections))
	copy(out, entry.Sections)
	return out
}

// List returns all entries in catalog order
func (c *RoleCatalog) List() []RoleEntry {
	out := make([]RoleEntry, len(c.roles))
	copy(out, c.roles)
	return out
}

// Well-known dashboard sections granted through the role catalog
const (
	SectionOverview       types.SectionID = "overview"
	SectionRiskManagement types.SectionID = "risk-management"
	SectionReports        types.SectionID = "reports"
	SectionAccessControl  types.SectionID = "access-control"
	SectionAuditLog       types.SectionID = "audit-log"
)

// DefaultRoleCatalog returns the built-in role table
func DefaultRoleCatalog() *RoleCatalog {
	return NewRoleCatalog([]RoleEntry{
		{
			ID:          "admin",
			Name:        "Administrator",
			Description: "Full dashboard access including account approval",
			Sections: []types.SectionID{
				SectionOverview,
				SectionRiskManagement,
				SectionReports,
				SectionAccessControl,
				SectionAuditLog,
			},
		},
		{
			ID:          "risk-owner",
			Name:        "Risk Owner",
			Description: "Evaluates reported risks and manages treatment",
			Sections: []types.SectionID{
				SectionOverview,
				SectionRiskManagement,
				SectionReports,
			},
		},
		{
			ID:          "reporter",
			Name:        "Reporter",
			Description: "Registers risks for evaluation",
			Sections: []types.SectionID{
				SectionOverview,
				SectionRiskManagement,
			},
		},
		{
			ID:          "auditor",
			Name:        "Auditor",
			Description: "Read-only reporting access",
			Sections: []types.SectionID{
				SectionOverview,
				SectionReports,
				SectionAuditLog,
			},
		},
	})
}
