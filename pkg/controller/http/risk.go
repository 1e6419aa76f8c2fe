package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareus/pkg/domain/model"
	"github.com/secmon-lab/briareus/pkg/domain/model/auth"
	"github.com/secmon-lab/briareus/pkg/domain/types"
	"github.com/secmon-lab/briareus/pkg/usecase"
)

type riskResponse struct {
	ID              int64   `json:"id"`
	Code            string  `json:"code"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	Category        string  `json:"category"`
	Likelihood      string  `json:"likelihood,omitempty"`
	Impact          string  `json:"impact,omitempty"`
	Score           float64 `json:"score"`
	Level           string  `json:"level,omitempty"`
	Status          string  `json:"status"`
	Severity        string  `json:"severity,omitempty"`
	AssessmentNotes string  `json:"assessment_notes,omitempty"`
	TreatmentPlan   string  `json:"treatment_plan,omitempty"`
	ReviewDate      string  `json:"review_date,omitempty"`
	Owner           string  `json:"owner,omitempty"`
	Reporter        string  `json:"reporter,omitempty"`
	Reviewer        string  `json:"reviewer,omitempty"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

func toRiskResponse(r *model.Risk) riskResponse {
	resp := riskResponse{
		ID:              r.ID,
		Code:            r.Code,
		Title:           r.Title,
		Description:     r.Description,
		Category:        r.CategoryID.String(),
		Likelihood:      r.LikelihoodID.String(),
		Impact:          r.ImpactID.String(),
		Score:           r.Score.Float(),
		Level:           r.Level.String(),
		Status:          r.Status.Normalize().String(),
		Severity:        r.Severity.String(),
		AssessmentNotes: r.AssessmentNotes,
		TreatmentPlan:   r.TreatmentPlan,
		Owner:           r.OwnerID,
		Reporter:        r.ReporterID,
		Reviewer:        r.ReviewerID,
		CreatedAt:       r.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       r.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if !r.ReviewDate.IsZero() {
		resp.ReviewDate = r.ReviewDate.UTC().Format(time.RFC3339)
	}
	return resp
}

func riskIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, goerr.Wrap(usecase.ErrValidation, "invalid risk ID", goerr.V("id", raw))
	}
	return id, nil
}

type createRiskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Owner       string `json:"owner,omitempty"`
}

// createRiskHandler registers a risk. Submit selects the evaluation flow;
// otherwise the record starts in the self-managed open status.
func createRiskHandler(riskUC *usecase.RiskUseCase, submit bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRiskRequest
		if err := decodeJSON(r, &req); err != nil {
			handleError(r.Context(), w, goerr.Wrap(usecase.ErrValidation, "invalid request body"))
			return
		}

		in := &usecase.CreateRiskInput{
			Title:       req.Title,
			Description: req.Description,
			CategoryID:  types.CategoryID(req.Category),
			OwnerID:     req.Owner,
		}
		if identity := auth.IdentityFrom(r.Context()); identity != nil {
			in.ReporterID = identity.Email
		}

		var (
			risk *model.Risk
			err  error
		)
		if submit {
			risk, err = riskUC.Submit(r.Context(), in)
		} else {
			risk, err = riskUC.Register(r.Context(), in)
		}
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		writeJSON(r.Context(), w, http.StatusCreated, toRiskResponse(risk))
	}
}

func listRisksHandler(riskUC *usecase.RiskUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		risks, err := riskUC.ListRisks(r.Context())
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		resp := make([]riskResponse, len(risks))
		for i, risk := range risks {
			resp[i] = toRiskResponse(risk)
		}
		writeJSON(r.Context(), w, http.StatusOK, map[string]interface{}{"risks": resp})
	}
}

func getRiskHandler(riskUC *usecase.RiskUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := riskIDParam(r)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		risk, err := riskUC.GetRisk(r.Context(), id)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, toRiskResponse(risk))
	}
}

type updateRiskRequest struct {
	Title         *string `json:"title,omitempty"`
	Description   *string `json:"description,omitempty"`
	Category      *string `json:"category,omitempty"`
	Likelihood    *string `json:"likelihood,omitempty"`
	Impact        *string `json:"impact,omitempty"`
	TreatmentPlan *string `json:"treatment_plan,omitempty"`
	ReviewDate    *string `json:"review_date,omitempty"`
	Owner         *string `json:"owner,omitempty"`
}

func updateRiskHandler(riskUC *usecase.RiskUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := riskIDParam(r)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		var req updateRiskRequest
		if err := decodeJSON(r, &req); err != nil {
			handleError(r.Context(), w, goerr.Wrap(usecase.ErrValidation, "invalid request body"))
			return
		}

		in := &usecase.UpdateDetailsInput{
			Title:         req.Title,
			Description:   req.Description,
			TreatmentPlan: req.TreatmentPlan,
			OwnerID:       req.Owner,
		}
		if req.Category != nil {
			cat := types.CategoryID(*req.Category)
			in.CategoryID = &cat
		}
		if req.Likelihood != nil {
			lh := types.LikelihoodID(*req.Likelihood)
			in.LikelihoodID = &lh
		}
		if req.Impact != nil {
			im := types.ImpactID(*req.Impact)
			in.ImpactID = &im
		}
		if req.ReviewDate != nil {
			t, err := time.Parse(time.RFC3339, *req.ReviewDate)
			if err != nil {
				handleError(r.Context(), w, goerr.Wrap(usecase.ErrValidation, "invalid review date",
					goerr.V("review_date", *req.ReviewDate)))
				return
			}
			in.ReviewDate = &t
		}

		risk, err := riskUC.UpdateDetails(r.Context(), id, in)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, toRiskResponse(risk))
	}
}

func deleteRiskHandler(riskUC *usecase.RiskUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := riskIDParam(r)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		if err := riskUC.DeleteRisk(r.Context(), id); err != nil {
			handleError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true})
	}
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func updateRiskStatusHandler(riskUC *usecase.RiskUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := riskIDParam(r)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		var req updateStatusRequest
		if err := decodeJSON(r, &req); err != nil {
			handleError(r.Context(), w, goerr.Wrap(usecase.ErrValidation, "invalid request body"))
			return
		}

		risk, err := riskUC.UpdateStatus(r.Context(), id, types.RiskStatus(req.Status))
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, toRiskResponse(risk))
	}
}

// openReviewHandler moves a submitted risk into review, recording the
// acting account as reviewer
func openReviewHandler(riskUC *usecase.RiskUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := riskIDParam(r)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		identity := auth.IdentityFrom(r.Context())
		if identity == nil {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		risk, err := riskUC.OpenReview(r.Context(), id, identity.Email)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, toRiskResponse(risk))
	}
}

type evaluateRequest struct {
	Outcome         string `json:"outcome"`
	Category        string `json:"category"`
	Likelihood      string `json:"likelihood"`
	Impact          string `json:"impact"`
	Severity        string `json:"severity"`
	AssessmentNotes string `json:"assessment_notes"`
	TreatmentPlan   string `json:"treatment_plan,omitempty"`
	ReviewDate      string `json:"review_date,omitempty"`
}

func evaluateRiskHandler(riskUC *usecase.RiskUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := riskIDParam(r)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		var req evaluateRequest
		if err := decodeJSON(r, &req); err != nil {
			handleError(r.Context(), w, goerr.Wrap(usecase.ErrValidation, "invalid request body"))
			return
		}

		in := &usecase.EvaluateInput{
			Outcome:         types.RiskStatus(req.Outcome),
			CategoryID:      types.CategoryID(req.Category),
			LikelihoodID:    types.LikelihoodID(req.Likelihood),
			ImpactID:        types.ImpactID(req.Impact),
			Severity:        types.Severity(req.Severity),
			AssessmentNotes: req.AssessmentNotes,
			TreatmentPlan:   req.TreatmentPlan,
		}
		if req.ReviewDate != "" {
			t, err := time.Parse(time.RFC3339, req.ReviewDate)
			if err != nil {
				handleError(r.Context(), w, goerr.Wrap(usecase.ErrValidation, "invalid review date",
					goerr.V("review_date", req.ReviewDate)))
				return
			}
			in.ReviewDate = t
		}

		risk, err := riskUC.Evaluate(r.Context(), id, in)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, toRiskResponse(risk))
	}
}
