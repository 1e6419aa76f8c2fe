package types

import "fmt"

// RiskStatus represents the lifecycle status of a risk. Two vocabularies
// share the type: the self-managed flow (open, in_progress, resolved,
// closed) and the reported-risk evaluation flow (submitted, in_review,
// mitigated, escalated). A risk stays in the vocabulary it was created in;
// the transition table never crosses flows.
type RiskStatus string

const (
	// Self-managed flow
	RiskStatusOpen       RiskStatus = "open"
	RiskStatusInProgress RiskStatus = "in_progress"
	RiskStatusResolved   RiskStatus = "resolved"
	RiskStatusClosed     RiskStatus = "closed"

	// Evaluation flow
	RiskStatusSubmitted RiskStatus = "submitted"
	RiskStatusInReview  RiskStatus = "in_review"
	RiskStatusMitigated RiskStatus = "mitigated"
	RiskStatusEscalated RiskStatus = "escalated"
)

// RiskFlow identifies which lifecycle vocabulary a status belongs to
type RiskFlow string

const (
	RiskFlowSelfManaged RiskFlow = "self_managed"
	RiskFlowEvaluation  RiskFlow = "evaluation"
)

// AllRiskStatuses returns all valid risk statuses
func AllRiskStatuses() []RiskStatus {
	return []RiskStatus{
		RiskStatusOpen,
		RiskStatusInProgress,
		RiskStatusResolved,
		RiskStatusClosed,
		RiskStatusSubmitted,
		RiskStatusInReview,
		RiskStatusMitigated,
		RiskStatusEscalated,
	}
}

// IsValid checks if the risk status is valid
func (s RiskStatus) IsValid() bool {
	switch s {
	case RiskStatusOpen,
		RiskStatusInProgress,
		RiskStatusResolved,
		RiskStatusClosed,
		RiskStatusSubmitted,
		RiskStatusInReview,
		RiskStatusMitigated,
		RiskStatusEscalated:
		return true
	default:
		return false
	}
}

// Flow returns the lifecycle vocabulary the status belongs to
func (s RiskStatus) Flow() RiskFlow {
	switch s {
	case RiskStatusSubmitted, RiskStatusInReview, RiskStatusMitigated, RiskStatusEscalated:
		return RiskFlowEvaluation
	default:
		return RiskFlowSelfManaged
	}
}

// Normalize returns the status, treating empty as RiskStatusOpen for
// backward compatibility with records written before statuses were typed.
func (s RiskStatus) Normalize() RiskStatus {
	if s == "" {
		return RiskStatusOpen
	}
	return s
}

// CanTransition reports whether a transition from s to next is legal.
// Self-managed statuses transition freely among themselves. Evaluation
// statuses follow submitted -> in_review -> mitigated|escalated, with
// re-entry into in_review to revise an assessment.
func (s RiskStatus) CanTransition(next RiskStatus) bool {
	if !s.IsValid() || !next.IsValid() || s == next {
		return false
	}
	if s.Flow() != next.Flow() {
		return false
	}
	if s.Flow() == RiskFlowSelfManaged {
		return true
	}

	switch s {
	case RiskStatusSubmitted:
		return next == RiskStatusInReview
	case RiskStatusInReview:
		return next == RiskStatusMitigated || next == RiskStatusEscalated
	case RiskStatusMitigated, RiskStatusEscalated:
		return next == RiskStatusInReview
	default:
		return false
	}
}

// String returns the string representation of the risk status
func (s RiskStatus) String() string {
	return string(s)
}

// ParseRiskStatus parses a string into a RiskStatus
func ParseRiskStatus(s string) (RiskStatus, error) {
	status := RiskStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid risk status: %s", s)
	}
	return status, nil
}
