package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareus/pkg/domain/interfaces"
	"github.com/secmon-lab/briareus/pkg/domain/model"
	"github.com/secmon-lab/briareus/pkg/domain/model/config"
	"github.com/secmon-lab/briareus/pkg/domain/types"
	"github.com/secmon-lab/briareus/pkg/service/notify"
	"github.com/secmon-lab/briareus/pkg/utils/async"
)

type RiskUseCase struct {
	repo     interfaces.Repository
	matrix   *config.RiskMatrix
	notifier notify.Service
}

func NewRiskUseCase(repo interfaces.Repository, matrix *config.RiskMatrix, notifier notify.Service) *RiskUseCase {
	return &RiskUseCase{
		repo:     repo,
		matrix:   matrix,
		notifier: notifier,
	}
}

// CreateRiskInput carries the fields common to both creation flows
type CreateRiskInput struct {
	Title       string
	Description string
	CategoryID  types.CategoryID
	OwnerID     string
	ReporterID  string
}

func (uc *RiskUseCase) validateCreate(in *CreateRiskInput) error {
	if in.Title == "" {
		return goerr.Wrap(ErrValidation, "risk title is required", goerr.V(FieldKey, "title"))
	}
	if in.Description == "" {
		return goerr.Wrap(ErrValidation, "risk description is required", goerr.V(FieldKey, "description"))
	}
	if _, ok := uc.matrix.Category(in.CategoryID); !ok {
		return goerr.Wrap(ErrValidation, "unknown risk category",
			goerr.V(FieldKey, "category_id"), goerr.V("category", in.CategoryID))
	}
	return nil
}

// Register creates a self-managed risk in the open status. Self-managed
// risks move freely among open, in_progress, resolved and closed.
func (uc *RiskUseCase) Register(ctx context.Context, in *CreateRiskInput) (*model.Risk, error) {
	if err := uc.validateCreate(in); err != nil {
		return nil, err
	}

	risk := &model.Risk{
		Title:       in.Title,
		Description: in.Description,
		CategoryID:  in.CategoryID,
		OwnerID:     in.OwnerID,
		ReporterID:  in.ReporterID,
		Status:      types.RiskStatusOpen,
	}

	created, err := uc.repo.Risk().Create(ctx, risk)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create risk")
	}
	return created, nil
}

// Submit creates a reported risk in the submitted status, entering the
// two-actor evaluation pipeline.
func (uc *RiskUseCase) Submit(ctx context.Context, in *CreateRiskInput) (*model.Risk, error) {
	if err := uc.validateCreate(in); err != nil {
		return nil, err
	}

	risk := &model.Risk{
		Title:       in.Title,
		Description: in.Description,
		CategoryID:  in.CategoryID,
		OwnerID:     in.OwnerID,
		ReporterID:  in.ReporterID,
		Status:      types.RiskStatusSubmitted,
	}

	created, err := uc.repo.Risk().Create(ctx, risk)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create risk")
	}
	return created, nil
}

func (uc *RiskUseCase) GetRisk(ctx context.Context, id int64) (*model.Risk, error) {
	risk, err := uc.repo.Risk().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get risk", goerr.V(RiskIDKey, id))
	}
	return risk, nil
}

func (uc *RiskUseCase) GetRiskByCode(ctx context.Context, code string) (*model.Risk, error) {
	risk, err := uc.repo.Risk().GetByCode(ctx, code)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get risk", goerr.V("code", code))
	}
	return risk, nil
}

func (uc *RiskUseCase) ListRisks(ctx context.Context) ([]*model.Risk, error) {
	risks, err := uc.repo.Risk().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list risks")
	}
	return risks, nil
}

// UpdateStatus moves a self-managed risk between its statuses. Evaluation
// flow statuses are not reachable here; those transitions carry field
// requirements and go through OpenReview / Evaluate.
func (uc *RiskUseCase) UpdateStatus(ctx context.Context, id int64, next types.RiskStatus) (*model.Risk, error) {
	if !next.IsValid() {
		return nil, goerr.Wrap(ErrValidation, "invalid risk status",
			goerr.V(FieldKey, "status"), goerr.V(StatusKey, next))
	}
	if next.Flow() != types.RiskFlowSelfManaged {
		return nil, goerr.Wrap(ErrValidation, "evaluation statuses require the review flow",
			goerr.V(FieldKey, "status"), goerr.V(StatusKey, next))
	}

	risk, err := uc.repo.Risk().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get risk", goerr.V(RiskIDKey, id))
	}

	current := risk.Status.Normalize()
	if !current.CanTransition(next) {
		return nil, goerr.Wrap(ErrPrecondition, "illegal status transition",
			goerr.V(RiskIDKey, id), goerr.V("from", current), goerr.V("to", next))
	}

	risk.Status = next
	updated, err := uc.repo.Risk().Update(ctx, risk)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update risk status", goerr.V(RiskIDKey, id))
	}
	return updated, nil
}

// OpenReview moves a submitted risk into review and records the reviewer.
// A mitigated or escalated risk may re-enter review to revise its
// assessment.
func (uc *RiskUseCase) OpenReview(ctx context.Context, id int64, reviewerID string) (*model.Risk, error) {
	if reviewerID == "" {
		return nil, goerr.Wrap(ErrValidation, "reviewer is required", goerr.V(FieldKey, "reviewer_id"))
	}

	risk, err := uc.repo.Risk().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get risk", goerr.V(RiskIDKey, id))
	}

	current := risk.Status.Normalize()
	if !current.CanTransition(types.RiskStatusInReview) {
		return nil, goerr.Wrap(ErrPrecondition, "risk cannot enter review",
			goerr.V(RiskIDKey, id), goerr.V("from", current))
	}

	risk.Status = types.RiskStatusInReview
	risk.ReviewerID = reviewerID

	updated, err := uc.repo.Risk().Update(ctx, risk)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open review", goerr.V(RiskIDKey, id))
	}
	return updated, nil
}

// EvaluateInput carries everything the evaluation transition requires.
// TreatmentPlan and ReviewDate are optional.
type EvaluateInput struct {
	Outcome         types.RiskStatus
	CategoryID      types.CategoryID
	LikelihoodID    types.LikelihoodID
	ImpactID        types.ImpactID
	Severity        types.Severity
	AssessmentNotes string
	TreatmentPlan   string
	ReviewDate      time.Time
}

func (in *EvaluateInput) validate() error {
	if in.Outcome != types.RiskStatusMitigated && in.Outcome != types.RiskStatusEscalated {
		return goerr.Wrap(ErrValidation, "evaluation outcome must be mitigated or escalated",
			goerr.V(FieldKey, "outcome"), goerr.V(StatusKey, in.Outcome))
	}
	if in.CategoryID == "" {
		return goerr.Wrap(ErrValidation, "category is required", goerr.V(FieldKey, "category_id"))
	}
	if in.LikelihoodID == "" {
		return goerr.Wrap(ErrValidation, "likelihood is required", goerr.V(FieldKey, "likelihood_id"))
	}
	if in.ImpactID == "" {
		return goerr.Wrap(ErrValidation, "impact is required", goerr.V(FieldKey, "impact_id"))
	}
	if in.AssessmentNotes == "" {
		return goerr.Wrap(ErrValidation, "assessment notes are required", goerr.V(FieldKey, "assessment_notes"))
	}
	if !in.Severity.IsValid() {
		return goerr.Wrap(ErrValidation, "invalid severity",
			goerr.V(FieldKey, "severity"), goerr.V("severity", in.Severity))
	}
	return nil
}

// Evaluate finalizes a review: it validates the assessment, computes the
// score and level from the matrix, and persists everything together with
// the status change in one compare-and-set write. A failed validation
// leaves the record untouched. Repeating the cycle through OpenReview
// recomputes the score from whatever inputs are supplied at that time.
func (uc *RiskUseCase) Evaluate(ctx context.Context, id int64, in *EvaluateInput) (*model.Risk, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	score, level, err := uc.matrix.Score(in.CategoryID, in.LikelihoodID, in.ImpactID)
	if err != nil {
		return nil, goerr.Wrap(ErrValidation, "inconsistent assessment inputs",
			goerr.V(RiskIDKey, id), goerr.V("cause", err.Error()))
	}

	risk, err := uc.repo.Risk().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get risk", goerr.V(RiskIDKey, id))
	}

	current := risk.Status.Normalize()
	if current != types.RiskStatusInReview {
		return nil, goerr.Wrap(ErrPrecondition, "risk is not in review",
			goerr.V(RiskIDKey, id), goerr.V(StatusKey, current))
	}

	risk.CategoryID = in.CategoryID
	risk.LikelihoodID = in.LikelihoodID
	risk.ImpactID = in.ImpactID
	risk.Score = score
	risk.Level = level
	risk.Severity = in.Severity
	risk.AssessmentNotes = in.AssessmentNotes
	risk.TreatmentPlan = in.TreatmentPlan
	risk.ReviewDate = in.ReviewDate
	risk.Status = in.Outcome

	updated, err := uc.repo.Risk().Update(ctx, risk)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to persist evaluation", goerr.V(RiskIDKey, id))
	}

	if uc.notifier != nil && updated.Status == types.RiskStatusEscalated {
		notified := updated.Clone()
		async.Dispatch(ctx, func(ctx context.Context) error {
			return uc.notifier.NotifyRiskEscalated(ctx, notified)
		})
	}

	return updated, nil
}

// UpdateDetailsInput carries the mutable descriptive fields. Nil pointers
// mean "leave unchanged".
type UpdateDetailsInput struct {
	Title         *string
	Description   *string
	CategoryID    *types.CategoryID
	LikelihoodID  *types.LikelihoodID
	ImpactID      *types.ImpactID
	TreatmentPlan *string
	ReviewDate    *time.Time
	OwnerID       *string
}

// UpdateDetails edits a risk's descriptive and assessment fields. Changing
// the category invalidates the previous impact selection, so the stale
// assessment is cleared. Whenever both assessment inputs are present the
// score and level are recomputed; they are never written independently of
// their inputs.
func (uc *RiskUseCase) UpdateDetails(ctx context.Context, id int64, in *UpdateDetailsInput) (*model.Risk, error) {
	risk, err := uc.repo.Risk().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get risk", goerr.V(RiskIDKey, id))
	}

	if in.Title != nil {
		if *in.Title == "" {
			return nil, goerr.Wrap(ErrValidation, "risk title is required", goerr.V(FieldKey, "title"))
		}
		risk.Title = *in.Title
	}
	if in.Description != nil {
		if *in.Description == "" {
			return nil, goerr.Wrap(ErrValidation, "risk description is required", goerr.V(FieldKey, "description"))
		}
		risk.Description = *in.Description
	}
	if in.CategoryID != nil && *in.CategoryID != risk.CategoryID {
		if _, ok := uc.matrix.Category(*in.CategoryID); !ok {
			return nil, goerr.Wrap(ErrValidation, "unknown risk category",
				goerr.V(FieldKey, "category_id"), goerr.V("category", *in.CategoryID))
		}
		risk.CategoryID = *in.CategoryID
		risk.ClearAssessment()
	}
	if in.LikelihoodID != nil {
		risk.LikelihoodID = *in.LikelihoodID
	}
	if in.ImpactID != nil {
		risk.ImpactID = *in.ImpactID
	}
	if in.TreatmentPlan != nil {
		risk.TreatmentPlan = *in.TreatmentPlan
	}
	if in.ReviewDate != nil {
		risk.ReviewDate = *in.ReviewDate
	}
	if in.OwnerID != nil {
		risk.OwnerID = *in.OwnerID
	}

	if risk.LikelihoodID != "" && risk.ImpactID != "" {
		score, level, err := uc.matrix.Score(risk.CategoryID, risk.LikelihoodID, risk.ImpactID)
		if err != nil {
			return nil, goerr.Wrap(ErrValidation, "inconsistent assessment inputs",
				goerr.V(RiskIDKey, id), goerr.V("cause", err.Error()))
		}
		risk.Score = score
		risk.Level = level
	} else {
		risk.Score = 0
		risk.Level = ""
	}

	updated, err := uc.repo.Risk().Update(ctx, risk)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update risk", goerr.V(RiskIDKey, id))
	}
	return updated, nil
}

// DeleteRisk removes a risk. Records in the evaluation flow become permanent
// the moment a review opens: only status transitions are allowed from then
// on, even if a later detail edit clears the assessment inputs.
func (uc *RiskUseCase) DeleteRisk(ctx context.Context, id int64) error {
	risk, err := uc.repo.Risk().Get(ctx, id)
	if err != nil {
		return goerr.Wrap(err, "failed to get risk", goerr.V(RiskIDKey, id))
	}

	status := risk.Status.Normalize()
	if status.Flow() == types.RiskFlowEvaluation && status != types.RiskStatusSubmitted {
		return goerr.Wrap(ErrPrecondition, "risk under or past evaluation cannot be deleted",
			goerr.V(RiskIDKey, id), goerr.V(StatusKey, risk.Status))
	}

	if err := uc.repo.Risk().Delete(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete risk", goerr.V(RiskIDKey, id))
	}
	return nil
}
