package http

import (
	"net/http"

	"github.com/secmon-lab/briareus/pkg/domain/model/config"
	"github.com/secmon-lab/briareus/pkg/usecase"
)

type overviewResponse struct {
	TotalRisks      int            `json:"total_risks"`
	ByStatus        map[string]int `json:"by_status"`
	ByLevel         map[string]int `json:"by_level"`
	PendingAccounts int            `json:"pending_accounts"`
}

// overviewHandler aggregates registry-wide counts for the dashboard
func overviewHandler(riskUC *usecase.RiskUseCase, accessUC *usecase.AccessUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		risks, err := riskUC.ListRisks(r.Context())
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		pending, err := accessUC.ListPending(r.Context())
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		resp := overviewResponse{
			TotalRisks:      len(risks),
			ByStatus:        make(map[string]int),
			ByLevel:         make(map[string]int),
			PendingAccounts: len(pending),
		}
		for _, risk := range risks {
			resp.ByStatus[risk.Status.Normalize().String()]++
			if risk.Level != "" {
				resp.ByLevel[risk.Level.String()]++
			}
		}

		writeJSON(r.Context(), w, http.StatusOK, resp)
	}
}

type matrixLevelResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Weight      float64 `json:"weight"`
}

type matrixCategoryResponse struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Description string                `json:"description,omitempty"`
	Impact      []matrixLevelResponse `json:"impact"`
}

type matrixBucketResponse struct {
	Level string  `json:"level"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

type matrixResponse struct {
	Categories []matrixCategoryResponse `json:"categories"`
	Likelihood []matrixLevelResponse    `json:"likelihood"`
	Buckets    []matrixBucketResponse   `json:"buckets"`
}

// matrixHandler exposes the scoring configuration so clients can render
// assessment forms from the live matrix instead of hardcoding scales
func matrixHandler(matrix *config.RiskMatrix) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := matrixResponse{
			Categories: make([]matrixCategoryResponse, len(matrix.Categories)),
			Likelihood: make([]matrixLevelResponse, len(matrix.Likelihood)),
			Buckets:    make([]matrixBucketResponse, len(matrix.Buckets)),
		}

		for i, cat := range matrix.Categories {
			impact := make([]matrixLevelResponse, len(cat.Impact))
			for j, lv := range cat.Impact {
				impact[j] = matrixLevelResponse{
					ID:          lv.ID.String(),
					Name:        lv.Name,
					Description: lv.Description,
					Weight:      lv.Weight,
				}
			}
			resp.Categories[i] = matrixCategoryResponse{
				ID:          cat.ID.String(),
				Name:        cat.Name,
				Description: cat.Description,
				Impact:      impact,
			}
		}
		for i, lv := range matrix.Likelihood {
			resp.Likelihood[i] = matrixLevelResponse{
				ID:          lv.ID.String(),
				Name:        lv.Name,
				Description: lv.Description,
				Weight:      lv.Weight,
			}
		}
		for i, b := range matrix.Buckets {
			resp.Buckets[i] = matrixBucketResponse{
				Level: b.Level.String(),
				Min:   b.Min,
				Max:   b.Max,
			}
		}

		writeJSON(r.Context(), w, http.StatusOK, resp)
	}
}

type roleResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Sections    []string `json:"sections"`
}

// rolesHandler exposes the role catalog for the approval form
func rolesHandler(catalog *config.RoleCatalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries := catalog.List()
		resp := make([]roleResponse, len(entries))
		for i, e := range entries {
			sections := make([]string, len(e.Sections))
			for j, s := range e.Sections {
				sections[j] = s.String()
			}
			resp[i] = roleResponse{
				ID:          e.ID.String(),
				Name:        e.Name,
				Description: e.Description,
				Sections:    sections,
			}
		}
		writeJSON(r.Context(), w, http.StatusOK, map[string]interface{}{"roles": resp})
	}
}
