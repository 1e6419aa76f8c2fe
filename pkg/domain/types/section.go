package types

import (
	"github.com/m-mizutani/goerr/v2"
)

// SectionID identifies a dashboard section that can be granted to an
// approved account
type SectionID string

// Validate checks if the SectionID is valid
func (s SectionID) Validate() error {
	if s == "" {
		return goerr.New("section ID cannot be empty")
	}
	if !idPattern.MatchString(string(s)) {
		return goerr.New("section ID must be lowercase alphanumeric with hyphens", goerr.V("id", s))
	}
	return nil
}

// String returns the string representation of SectionID
func (s SectionID) String() string {
	return string(s)
}
