package usecase

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for the use case layer. Validation and precondition
// failures are distinct so callers can branch between "bad input" and
// "already in that state".
var (
	// ErrValidation indicates a required field is missing or a submitted
	// value is outside its canonical set.
	ErrValidation = goerr.New("validation failed")

	// ErrPrecondition indicates the entity is in a state that forbids the
	// requested operation.
	ErrPrecondition = goerr.New("precondition failed")
)

// Context keys for error values
const (
	RiskIDKey    = "risk_id"
	AccountIDKey = "account_id"
	FieldKey     = "field"
	StatusKey    = "status"
)
