package types

import (
	"github.com/m-mizutani/goerr/v2"
)

// ImpactID identifies an impact level. Impact levels belong to a category's
// own scale; an ImpactID is only meaningful together with its CategoryID.
type ImpactID string

// Validate checks if the ImpactID is valid
func (i ImpactID) Validate() error {
	if i == "" {
		return goerr.New("impact ID cannot be empty")
	}
	if !idPattern.MatchString(string(i)) {
		return goerr.New("impact ID must be lowercase alphanumeric with hyphens", goerr.V("id", i))
	}
	return nil
}

// String returns the string representation of ImpactID
func (i ImpactID) String() string {
	return string(i)
}
