package types

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors shared by repositories and use cases. Callers branch on
// these with errors.Is; goerr.Wrap preserves the chain.
var (
	// ErrNotFound indicates a referenced risk, account, role or token does
	// not exist.
	ErrNotFound = goerr.New("not found")

	// ErrRevisionMismatch indicates a compare-and-set update lost the race:
	// the record was modified after it was read.
	ErrRevisionMismatch = goerr.New("revision mismatch")

	// ErrDuplicate indicates a uniqueness violation (email, employee code).
	ErrDuplicate = goerr.New("duplicate")
)
