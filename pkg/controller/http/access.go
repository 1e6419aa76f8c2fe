package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareus/pkg/domain/model"
	"github.com/secmon-lab/briareus/pkg/domain/types"
	"github.com/secmon-lab/briareus/pkg/service/export"
	"github.com/secmon-lab/briareus/pkg/usecase"
	"github.com/secmon-lab/briareus/pkg/utils/errutil"
)

type accountResponse struct {
	ID              int64    `json:"id"`
	Email           string   `json:"email"`
	EmployeeCode    string   `json:"employee_code,omitempty"`
	Name            string   `json:"name"`
	Status          string   `json:"status"`
	Role            string   `json:"role,omitempty"`
	GrantedSections []string `json:"granted_sections"`
	ApprovedAt      string   `json:"approved_at,omitempty"`
	CreatedAt       string   `json:"created_at"`
}

func toAccountResponse(a *model.Account) accountResponse {
	sections := make([]string, len(a.GrantedSections))
	for i, s := range a.GrantedSections {
		sections[i] = s.String()
	}
	resp := accountResponse{
		ID:              a.ID,
		Email:           a.Email,
		EmployeeCode:    a.EmployeeCode,
		Name:            a.Name,
		Status:          a.Status.Normalize().String(),
		Role:            a.RoleID.String(),
		GrantedSections: sections,
		CreatedAt:       a.CreatedAt.UTC().Format(time.RFC3339),
	}
	if a.ApprovedAt != nil {
		resp.ApprovedAt = a.ApprovedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

func accountIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, goerr.Wrap(usecase.ErrValidation, "invalid account ID", goerr.V("id", raw))
	}
	return id, nil
}

type registerAccountRequest struct {
	Email        string `json:"email"`
	EmployeeCode string `json:"employee_code,omitempty"`
	Name         string `json:"name"`
}

// registerAccountHandler is the self-service signup endpoint. It is the one
// access route outside the section gate: the requester has no account yet.
func registerAccountHandler(accessUC *usecase.AccessUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerAccountRequest
		if err := decodeJSON(r, &req); err != nil {
			handleError(r.Context(), w, goerr.Wrap(usecase.ErrValidation, "invalid request body"))
			return
		}

		account, err := accessUC.RegisterAccount(r.Context(), &usecase.RegisterAccountInput{
			Email:        req.Email,
			EmployeeCode: req.EmployeeCode,
			Name:         req.Name,
		})
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusCreated, toAccountResponse(account))
	}
}

func listAccountsHandler(accessUC *usecase.AccessUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accounts, err := accessUC.ListAccounts(r.Context())
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		resp := make([]accountResponse, len(accounts))
		for i, a := range accounts {
			resp[i] = toAccountResponse(a)
		}
		writeJSON(r.Context(), w, http.StatusOK, map[string]interface{}{"accounts": resp})
	}
}

func listPendingAccountsHandler(accessUC *usecase.AccessUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accounts, err := accessUC.ListPending(r.Context())
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		resp := make([]accountResponse, len(accounts))
		for i, a := range accounts {
			resp[i] = toAccountResponse(a)
		}
		writeJSON(r.Context(), w, http.StatusOK, map[string]interface{}{"accounts": resp})
	}
}

type approveRequest struct {
	Role     string   `json:"role"`
	Sections []string `json:"sections,omitempty"`
}

func approveAccountHandler(accessUC *usecase.AccessUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := accountIDParam(r)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		var req approveRequest
		if err := decodeJSON(r, &req); err != nil {
			handleError(r.Context(), w, goerr.Wrap(usecase.ErrValidation, "invalid request body"))
			return
		}

		var overrides []types.SectionID
		if req.Sections != nil {
			overrides = make([]types.SectionID, len(req.Sections))
			for i, s := range req.Sections {
				overrides[i] = types.SectionID(s)
			}
		}

		account, err := accessUC.Approve(r.Context(), id, types.RoleID(req.Role), overrides)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, toAccountResponse(account))
	}
}

func rejectAccountHandler(accessUC *usecase.AccessUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := accountIDParam(r)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		account, err := accessUC.Reject(r.Context(), id)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, toAccountResponse(account))
	}
}

type bulkApproveRequest struct {
	AccountIDs []int64 `json:"account_ids"`
	Role       string  `json:"role"`
}

type bulkRejectRequest struct {
	AccountIDs []int64 `json:"account_ids"`
}

type bulkResultResponse struct {
	AccountID int64            `json:"account_id"`
	Account   *accountResponse `json:"account,omitempty"`
	Error     string           `json:"error,omitempty"`
}

func toBulkResponse(results []usecase.BulkResult) []bulkResultResponse {
	resp := make([]bulkResultResponse, len(results))
	for i, res := range results {
		resp[i] = bulkResultResponse{AccountID: res.AccountID}
		if res.Account != nil {
			a := toAccountResponse(res.Account)
			resp[i].Account = &a
		}
		if res.Err != nil {
			resp[i].Error = res.Err.Error()
		}
	}
	return resp
}

// bulkApproveHandler approves a batch of accounts with one role. Partial
// failure is reported per entry; the response is always 200.
func bulkApproveHandler(accessUC *usecase.AccessUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bulkApproveRequest
		if err := decodeJSON(r, &req); err != nil {
			handleError(r.Context(), w, goerr.Wrap(usecase.ErrValidation, "invalid request body"))
			return
		}
		if len(req.AccountIDs) == 0 {
			handleError(r.Context(), w, goerr.Wrap(usecase.ErrValidation, "account_ids is required"))
			return
		}

		results := accessUC.BulkApprove(r.Context(), req.AccountIDs, types.RoleID(req.Role))
		writeJSON(r.Context(), w, http.StatusOK, map[string]interface{}{"results": toBulkResponse(results)})
	}
}

func bulkRejectHandler(accessUC *usecase.AccessUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bulkRejectRequest
		if err := decodeJSON(r, &req); err != nil {
			handleError(r.Context(), w, goerr.Wrap(usecase.ErrValidation, "invalid request body"))
			return
		}
		if len(req.AccountIDs) == 0 {
			handleError(r.Context(), w, goerr.Wrap(usecase.ErrValidation, "account_ids is required"))
			return
		}

		results := accessUC.BulkReject(r.Context(), req.AccountIDs)
		writeJSON(r.Context(), w, http.StatusOK, map[string]interface{}{"results": toBulkResponse(results)})
	}
}

// exportAccountsHandler streams the account list as a CSV download
func exportAccountsHandler(accessUC *usecase.AccessUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accounts, err := accessUC.ListAccounts(r.Context())
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="accounts.csv"`)
		if err := export.WriteAccountsCSV(w, accounts); err != nil {
			// Headers are already committed, log only
			_ = errutil.Handle(r.Context(), err, "failed to stream account CSV")
		}
	}
}
