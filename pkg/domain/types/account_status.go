package types

import "fmt"

// AccountStatus represents the approval state of a registered account
type AccountStatus string

const (
	AccountStatusPending  AccountStatus = "pending"
	AccountStatusApproved AccountStatus = "approved"
	AccountStatusRejected AccountStatus = "rejected"
)

// AllAccountStatuses returns all valid account statuses
func AllAccountStatuses() []AccountStatus {
	return []AccountStatus{
		AccountStatusPending,
		AccountStatusApproved,
		AccountStatusRejected,
	}
}

// IsValid checks if the account status is valid
func (s AccountStatus) IsValid() bool {
	switch s {
	case AccountStatusPending, AccountStatusApproved, AccountStatusRejected:
		return true
	default:
		return false
	}
}

// Normalize returns the status, treating empty as pending. An account that
// never went through approval has no recorded status; absence is not an
// error state.
func (s AccountStatus) Normalize() AccountStatus {
	if s == "" {
		return AccountStatusPending
	}
	return s
}

// String returns the string representation of the account status
func (s AccountStatus) String() string {
	return string(s)
}

// ParseAccountStatus parses a string into an AccountStatus
func ParseAccountStatus(s string) (AccountStatus, error) {
	status := AccountStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid account status: %s", s)
	}
	return status, nil
}
