package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/briareus/pkg/domain/model"
	"github.com/secmon-lab/briareus/pkg/domain/types"
	"github.com/secmon-lab/briareus/pkg/repository/memory"
	"github.com/secmon-lab/briareus/pkg/usecase"
)

// mockNotifier records notifications on channels so async delivery can be
// awaited from tests
type mockNotifier struct {
	escalated chan *model.Risk
	approved  chan *model.Account
	reviewDue chan *model.Risk
}

func newMockNotifier() *mockNotifier {
	return &mockNotifier{
		escalated: make(chan *model.Risk, 8),
		approved:  make(chan *model.Account, 8),
		reviewDue: make(chan *model.Risk, 8),
	}
}

func (m *mockNotifier) NotifyRiskEscalated(ctx context.Context, risk *model.Risk) error {
	m.escalated <- risk
	return nil
}

func (m *mockNotifier) NotifyAccountApproved(ctx context.Context, account *model.Account) error {
	m.approved <- account
	return nil
}

func (m *mockNotifier) NotifyReviewDue(ctx context.Context, risk *model.Risk) error {
	m.reviewDue <- risk
	return nil
}

func newTestUseCases(t *testing.T) (*usecase.UseCases, *mockNotifier) {
	t.Helper()
	notifier := newMockNotifier()
	uc := usecase.New(memory.New(), usecase.WithNotifier(notifier))
	return uc, notifier
}

func TestRegisterRisk(t *testing.T) {
	uc, _ := newTestUseCases(t)
	ctx := context.Background()

	risk, err := uc.Risk.Register(ctx, &usecase.CreateRiskInput{
		Title:       "Vendor contract lapse",
		Description: "Key vendor contract renews without review",
		CategoryID:  "financial",
		OwnerID:     "alice@example.com",
	})
	gt.NoError(t, err).Required()

	gt.Value(t, risk.ID).Equal(int64(1))
	gt.Value(t, risk.Code).Equal("RISK-1")
	gt.Value(t, risk.Status).Equal(types.RiskStatusOpen)
	gt.Value(t, risk.Evaluated()).Equal(false)
	gt.Value(t, risk.Revision).Equal(int64(1))
}

func TestRegisterRiskValidation(t *testing.T) {
	uc, _ := newTestUseCases(t)
	ctx := context.Background()

	t.Run("missing title", func(t *testing.T) {
		_, err := uc.Risk.Register(ctx, &usecase.CreateRiskInput{
			Description: "no title",
			CategoryID:  "financial",
		})
		gt.Value(t, errors.Is(err, usecase.ErrValidation)).Equal(true)
	})

	t.Run("missing description", func(t *testing.T) {
		_, err := uc.Risk.Register(ctx, &usecase.CreateRiskInput{
			Title:      "no description",
			CategoryID: "financial",
		})
		gt.Value(t, errors.Is(err, usecase.ErrValidation)).Equal(true)
	})

	t.Run("unknown category", func(t *testing.T) {
		_, err := uc.Risk.Register(ctx, &usecase.CreateRiskInput{
			Title:       "bad category",
			Description: "category is not in the matrix",
			CategoryID:  "astrological",
		})
		gt.Value(t, errors.Is(err, usecase.ErrValidation)).Equal(true)
	})
}

func TestSubmitRisk(t *testing.T) {
	uc, _ := newTestUseCases(t)
	ctx := context.Background()

	risk, err := uc.Risk.Submit(ctx, &usecase.CreateRiskInput{
		Title:       "Untracked chemical storage",
		Description: "Solvent drums stored without inventory",
		CategoryID:  "environmental",
		ReporterID:  "bob@example.com",
	})
	gt.NoError(t, err).Required()

	gt.Value(t, risk.Status).Equal(types.RiskStatusSubmitted)
	gt.Value(t, risk.ReporterID).Equal("bob@example.com")
}

func TestUpdateStatusSelfManaged(t *testing.T) {
	uc, _ := newTestUseCases(t)
	ctx := context.Background()

	risk, err := uc.Risk.Register(ctx, &usecase.CreateRiskInput{
		Title:       "Stale dependency",
		Description: "Library past end of life",
		CategoryID:  "other",
	})
	gt.NoError(t, err).Required()

	// Self-managed statuses move freely, including reopening
	for _, next := range []types.RiskStatus{
		types.RiskStatusInProgress,
		types.RiskStatusResolved,
		types.RiskStatusClosed,
		types.RiskStatusOpen,
	} {
		updated, err := uc.Risk.UpdateStatus(ctx, risk.ID, next)
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Status).Equal(next)
	}
}

func TestUpdateStatusRejectsEvaluationFlow(t *testing.T) {
	uc, _ := newTestUseCases(t)
	ctx := context.Background()

	risk, err := uc.Risk.Register(ctx, &usecase.CreateRiskInput{
		Title:       "Self-managed record",
		Description: "Must not reach review statuses",
		CategoryID:  "other",
	})
	gt.NoError(t, err).Required()

	_, err = uc.Risk.UpdateStatus(ctx, risk.ID, types.RiskStatusInReview)
	gt.Value(t, errors.Is(err, usecase.ErrValidation)).Equal(true)

	// A rejected transition leaves the record untouched
	current, err := uc.Risk.GetRisk(ctx, risk.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, current.Status).Equal(types.RiskStatusOpen)
}

func TestUpdateStatusGuardLeavesStatusUnchanged(t *testing.T) {
	uc, _ := newTestUseCases(t)
	ctx := context.Background()

	submitted, err := uc.Risk.Submit(ctx, &usecase.CreateRiskInput{
		Title:       "Reported risk",
		Description: "Evaluation flow record",
		CategoryID:  "reputation",
	})
	gt.NoError(t, err).Required()

	// Evaluation records never take self-managed statuses
	_, err = uc.Risk.UpdateStatus(ctx, submitted.ID, types.RiskStatusClosed)
	gt.Value(t, err).NotNil()

	current, err := uc.Risk.GetRisk(ctx, submitted.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, current.Status).Equal(types.RiskStatusSubmitted)
}

func TestOpenReview(t *testing.T) {
	uc, _ := newTestUseCases(t)
	ctx := context.Background()

	risk, err := uc.Risk.Submit(ctx, &usecase.CreateRiskInput{
		Title:       "Data retention gap",
		Description: "Logs kept past the policy limit",
		CategoryID:  "legal-regulatory",
	})
	gt.NoError(t, err).Required()

	reviewed, err := uc.Risk.OpenReview(ctx, risk.ID, "carol@example.com")
	gt.NoError(t, err).Required()
	gt.Value(t, reviewed.Status).Equal(types.RiskStatusInReview)
	gt.Value(t, reviewed.ReviewerID).Equal("carol@example.com")
}

func TestOpenReviewPreconditions(t *testing.T) {
	uc, _ := newTestUseCases(t)
	ctx := context.Background()

	t.Run("self-managed risk cannot enter review", func(t *testing.T) {
		risk, err := uc.Risk.Register(ctx, &usecase.CreateRiskInput{
			Title:       "Self-managed",
			Description: "Not part of the review pipeline",
			CategoryID:  "other",
		})
		gt.NoError(t, err).Required()

		_, err = uc.Risk.OpenReview(ctx, risk.ID, "carol@example.com")
		gt.Value(t, errors.Is(err, usecase.ErrPrecondition)).Equal(true)
	})

	t.Run("reviewer is required", func(t *testing.T) {
		risk, err := uc.Risk.Submit(ctx, &usecase.CreateRiskInput{
			Title:       "Reported",
			Description: "Needs a reviewer",
			CategoryID:  "other",
		})
		gt.NoError(t, err).Required()

		_, err = uc.Risk.OpenReview(ctx, risk.ID, "")
		gt.Value(t, errors.Is(err, usecase.ErrValidation)).Equal(true)
	})
}

func submitAndReview(t *testing.T, uc *usecase.UseCases, category types.CategoryID) *model.Risk {
	t.Helper()
	ctx := context.Background()

	risk, err := uc.Risk.Submit(ctx, &usecase.CreateRiskInput{
		Title:       "Reported risk",
		Description: "For evaluation",
		CategoryID:  category,
	})
	gt.NoError(t, err).Required()

	reviewed, err := uc.Risk.OpenReview(ctx, risk.ID, "carol@example.com")
	gt.NoError(t, err).Required()
	return reviewed
}

func TestEvaluateMitigated(t *testing.T) {
	uc, notifier := newTestUseCases(t)
	ctx := context.Background()

	risk := submitAndReview(t, uc, "environmental")

	evaluated, err := uc.Risk.Evaluate(ctx, risk.ID, &usecase.EvaluateInput{
		Outcome:         types.RiskStatusMitigated,
		CategoryID:      "environmental",
		LikelihoodID:    "possible",
		ImpactID:        "moderate",
		Severity:        types.SeverityMedium,
		AssessmentNotes: "Containment installed, spill risk reduced",
		TreatmentPlan:   "Quarterly inspection of storage area",
	})
	gt.NoError(t, err).Required()

	gt.Value(t, evaluated.Status).Equal(types.RiskStatusMitigated)
	gt.Value(t, evaluated.Level).Equal(types.RiskLevelMedium)
	gt.Value(t, evaluated.Evaluated()).Equal(true)

	diff := evaluated.Score.Float() - 0.10
	if diff < -1e-9 || diff > 1e-9 {
		t.Errorf("score = %v, want 0.10", evaluated.Score.Float())
	}

	// Mitigation does not notify
	select {
	case <-notifier.escalated:
		t.Error("unexpected escalation notification")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEvaluateEscalatedNotifies(t *testing.T) {
	uc, notifier := newTestUseCases(t)
	ctx := context.Background()

	risk := submitAndReview(t, uc, "financial")

	evaluated, err := uc.Risk.Evaluate(ctx, risk.ID, &usecase.EvaluateInput{
		Outcome:         types.RiskStatusEscalated,
		CategoryID:      "financial",
		LikelihoodID:    "likely",
		ImpactID:        "major",
		Severity:        types.SeverityHigh,
		AssessmentNotes: "Exposure exceeds the unit's budget authority",
	})
	gt.NoError(t, err).Required()
	gt.Value(t, evaluated.Status).Equal(types.RiskStatusEscalated)
	gt.Value(t, evaluated.Level).Equal(types.RiskLevelHigh)

	select {
	case notified := <-notifier.escalated:
		gt.Value(t, notified.ID).Equal(risk.ID)
		gt.Value(t, notified.Level).Equal(types.RiskLevelHigh)
	case <-time.After(time.Second):
		t.Fatal("escalation notification not delivered")
	}
}

func TestEvaluateValidation(t *testing.T) {
	uc, _ := newTestUseCases(t)
	ctx := context.Background()

	risk := submitAndReview(t, uc, "reputation")

	tests := []struct {
		name string
		in   *usecase.EvaluateInput
	}{
		{
			name: "missing assessment notes",
			in: &usecase.EvaluateInput{
				Outcome:      types.RiskStatusMitigated,
				CategoryID:   "reputation",
				LikelihoodID: "rare",
				ImpactID:     "minor",
				Severity:     types.SeverityLow,
			},
		},
		{
			name: "outcome outside evaluation results",
			in: &usecase.EvaluateInput{
				Outcome:         types.RiskStatusClosed,
				CategoryID:      "reputation",
				LikelihoodID:    "rare",
				ImpactID:        "minor",
				Severity:        types.SeverityLow,
				AssessmentNotes: "notes",
			},
		},
		{
			name: "invalid severity",
			in: &usecase.EvaluateInput{
				Outcome:         types.RiskStatusMitigated,
				CategoryID:      "reputation",
				LikelihoodID:    "rare",
				ImpactID:        "minor",
				Severity:        "catastrophic",
				AssessmentNotes: "notes",
			},
		},
		{
			name: "unknown likelihood",
			in: &usecase.EvaluateInput{
				Outcome:         types.RiskStatusMitigated,
				CategoryID:      "reputation",
				LikelihoodID:    "certain",
				ImpactID:        "minor",
				Severity:        types.SeverityLow,
				AssessmentNotes: "notes",
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Risk.Evaluate(ctx, risk.ID, tc.in)
			gt.Value(t, errors.Is(err, usecase.ErrValidation)).Equal(true)

			// A failed evaluation leaves the record in review, unassessed
			current, err := uc.Risk.GetRisk(ctx, risk.ID)
			gt.NoError(t, err).Required()
			gt.Value(t, current.Status).Equal(types.RiskStatusInReview)
			gt.Value(t, current.Evaluated()).Equal(false)
		})
	}
}

func TestEvaluateRequiresInReview(t *testing.T) {
	uc, _ := newTestUseCases(t)
	ctx := context.Background()

	risk, err := uc.Risk.Submit(ctx, &usecase.CreateRiskInput{
		Title:       "Still submitted",
		Description: "Review not yet opened",
		CategoryID:  "other",
	})
	gt.NoError(t, err).Required()

	_, err = uc.Risk.Evaluate(ctx, risk.ID, &usecase.EvaluateInput{
		Outcome:         types.RiskStatusMitigated,
		CategoryID:      "other",
		LikelihoodID:    "rare",
		ImpactID:        "minor",
		Severity:        types.SeverityLow,
		AssessmentNotes: "notes",
	})
	gt.Value(t, errors.Is(err, usecase.ErrPrecondition)).Equal(true)
}

func TestReEvaluationCycle(t *testing.T) {
	uc, _ := newTestUseCases(t)
	ctx := context.Background()

	risk := submitAndReview(t, uc, "time-schedule")

	_, err := uc.Risk.Evaluate(ctx, risk.ID, &usecase.EvaluateInput{
		Outcome:         types.RiskStatusMitigated,
		CategoryID:      "time-schedule",
		LikelihoodID:    "unlikely",
		ImpactID:        "minor",
		Severity:        types.SeverityLow,
		AssessmentNotes: "Buffer added to the schedule",
	})
	gt.NoError(t, err).Required()

	// Re-enter review and revise the assessment upward
	_, err = uc.Risk.OpenReview(ctx, risk.ID, "dave@example.com")
	gt.NoError(t, err).Required()

	revised, err := uc.Risk.Evaluate(ctx, risk.ID, &usecase.EvaluateInput{
		Outcome:         types.RiskStatusEscalated,
		CategoryID:      "time-schedule",
		LikelihoodID:    "almost-certain",
		ImpactID:        "severe",
		Severity:        types.SeverityHigh,
		AssessmentNotes: "Critical path slipped again",
	})
	gt.NoError(t, err).Required()

	gt.Value(t, revised.Status).Equal(types.RiskStatusEscalated)
	gt.Value(t, revised.Level).Equal(types.RiskLevelCritical)
	gt.Value(t, revised.ReviewerID).Equal("dave@example.com")
}

func TestUpdateDetailsCategoryChangeClearsAssessment(t *testing.T) {
	uc, _ := newTestUseCases(t)
	ctx := context.Background()

	risk := submitAndReview(t, uc, "financial")

	evaluated, err := uc.Risk.Evaluate(ctx, risk.ID, &usecase.EvaluateInput{
		Outcome:         types.RiskStatusMitigated,
		CategoryID:      "financial",
		LikelihoodID:    "likely",
		ImpactID:        "major",
		Severity:        types.SeverityHigh,
		AssessmentNotes: "Budget exposure confirmed",
	})
	gt.NoError(t, err).Required()
	gt.Value(t, evaluated.Evaluated()).Equal(true)

	// Switching category invalidates the impact selection: the stale
	// assessment must not survive
	newCat := types.CategoryID("reputation")
	updated, err := uc.Risk.UpdateDetails(ctx, risk.ID, &usecase.UpdateDetailsInput{
		CategoryID: &newCat,
	})
	gt.NoError(t, err).Required()

	gt.Value(t, updated.CategoryID).Equal(newCat)
	gt.Value(t, updated.Evaluated()).Equal(false)
	gt.Value(t, updated.Score).Equal(types.Score(0))
	gt.Value(t, updated.Level).Equal(types.RiskLevel(""))
}

func TestUpdateDetailsRecomputesScore(t *testing.T) {
	uc, _ := newTestUseCases(t)
	ctx := context.Background()

	risk := submitAndReview(t, uc, "financial")

	_, err := uc.Risk.Evaluate(ctx, risk.ID, &usecase.EvaluateInput{
		Outcome:         types.RiskStatusMitigated,
		CategoryID:      "financial",
		LikelihoodID:    "likely",
		ImpactID:        "major",
		Severity:        types.SeverityHigh,
		AssessmentNotes: "Initial assessment",
	})
	gt.NoError(t, err).Required()

	newLikelihood := types.LikelihoodID("rare")
	updated, err := uc.Risk.UpdateDetails(ctx, risk.ID, &usecase.UpdateDetailsInput{
		LikelihoodID: &newLikelihood,
	})
	gt.NoError(t, err).Required()

	// 0.05 * 0.4 = 0.02, below the medium floor
	gt.Value(t, updated.Level).Equal(types.RiskLevelLow)
}

func TestDeleteRisk(t *testing.T) {
	uc, _ := newTestUseCases(t)
	ctx := context.Background()

	t.Run("unevaluated risk can be deleted", func(t *testing.T) {
		risk, err := uc.Risk.Register(ctx, &usecase.CreateRiskInput{
			Title:       "Duplicate entry",
			Description: "Registered twice by mistake",
			CategoryID:  "other",
		})
		gt.NoError(t, err).Required()

		gt.NoError(t, uc.Risk.DeleteRisk(ctx, risk.ID)).Required()

		_, err = uc.Risk.GetRisk(ctx, risk.ID)
		gt.Value(t, errors.Is(err, types.ErrNotFound)).Equal(true)
	})

	t.Run("evaluated risk is permanent", func(t *testing.T) {
		risk := submitAndReview(t, uc, "other")
		_, err := uc.Risk.Evaluate(ctx, risk.ID, &usecase.EvaluateInput{
			Outcome:         types.RiskStatusMitigated,
			CategoryID:      "other",
			LikelihoodID:    "rare",
			ImpactID:        "minor",
			Severity:        types.SeverityLow,
			AssessmentNotes: "Assessed and accepted",
		})
		gt.NoError(t, err).Required()

		err = uc.Risk.DeleteRisk(ctx, risk.ID)
		gt.Value(t, errors.Is(err, usecase.ErrPrecondition)).Equal(true)
	})

	t.Run("risk in review cannot be deleted", func(t *testing.T) {
		risk := submitAndReview(t, uc, "other")

		err := uc.Risk.DeleteRisk(ctx, risk.ID)
		gt.Value(t, errors.Is(err, usecase.ErrPrecondition)).Equal(true)
	})

	t.Run("category change does not unlock a finalized record", func(t *testing.T) {
		risk := submitAndReview(t, uc, "financial")
		_, err := uc.Risk.Evaluate(ctx, risk.ID, &usecase.EvaluateInput{
			Outcome:         types.RiskStatusMitigated,
			CategoryID:      "financial",
			LikelihoodID:    "rare",
			ImpactID:        "minor",
			Severity:        types.SeverityLow,
			AssessmentNotes: "Assessed and accepted",
		})
		gt.NoError(t, err).Required()

		// The category switch clears the assessment inputs, but the record
		// stays in the evaluation flow and stays permanent
		newCat := types.CategoryID("reputation")
		updated, err := uc.Risk.UpdateDetails(ctx, risk.ID, &usecase.UpdateDetailsInput{
			CategoryID: &newCat,
		})
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Evaluated()).Equal(false)

		err = uc.Risk.DeleteRisk(ctx, risk.ID)
		gt.Value(t, errors.Is(err, usecase.ErrPrecondition)).Equal(true)
	})

	t.Run("self-managed risk with a score can be deleted", func(t *testing.T) {
		risk, err := uc.Risk.Register(ctx, &usecase.CreateRiskInput{
			Title:       "Tracked informally",
			Description: "Scored for the dashboard only",
			CategoryID:  "financial",
		})
		gt.NoError(t, err).Required()

		likelihood := types.LikelihoodID("rare")
		impact := types.ImpactID("minor")
		_, err = uc.Risk.UpdateDetails(ctx, risk.ID, &usecase.UpdateDetailsInput{
			LikelihoodID: &likelihood,
			ImpactID:     &impact,
		})
		gt.NoError(t, err).Required()

		gt.NoError(t, uc.Risk.DeleteRisk(ctx, risk.ID)).Required()
	})
}
