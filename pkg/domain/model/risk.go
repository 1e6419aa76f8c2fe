package model

import (
	"time"

	"github.com/secmon-lab/briareus/pkg/domain/types"
)

// Risk is a registered risk record. The Code is assigned at creation and
// never changes; Revision backs the compare-and-set update that keeps the
// evaluate transition atomic per record.
type Risk struct {
	ID   int64
	Code string

	Title       string
	Description string
	CategoryID  types.CategoryID

	// Assessment inputs, empty until evaluated
	LikelihoodID types.LikelihoodID
	ImpactID     types.ImpactID

	// Derived from the assessment inputs, never set independently of them
	Score types.Score
	Level types.RiskLevel

	Status          types.RiskStatus
	Severity        types.Severity
	AssessmentNotes string
	TreatmentPlan   string
	ReviewDate      time.Time

	OwnerID    string
	ReporterID string
	ReviewerID string

	Revision  int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Evaluated reports whether the record carries a persisted assessment
func (r *Risk) Evaluated() bool {
	return r.LikelihoodID != "" && r.ImpactID != "" && r.Level != ""
}

// ClearAssessment drops the assessment inputs and everything derived from
// them. Called when the category changes: the old impact selection belongs
// to the old category's scale.
func (r *Risk) ClearAssessment() {
	r.LikelihoodID = ""
	r.ImpactID = ""
	r.Score = 0
	r.Level = ""
}

// Clone returns a deep copy of the risk
func (r *Risk) Clone() *Risk {
	c := *r
	return &c
}
