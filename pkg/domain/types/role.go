package types

import (
	"github.com/m-mizutani/goerr/v2"
)

// RoleID identifies a role in the role catalog
type RoleID string

// Validate checks if the RoleID is valid
func (r RoleID) Validate() error {
	if r == "" {
		return goerr.New("role ID cannot be empty")
	}
	if !idPattern.MatchString(string(r)) {
		return goerr.New("role ID must be lowercase alphanumeric with hyphens", goerr.V("id", r))
	}
	return nil
}

// String returns the string representation of RoleID
func (r RoleID) String() string {
	return string(r)
}
