package export_test

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/briareus/pkg/domain/model"
	"github.com/secmon-lab/briareus/pkg/domain/types"
	"github.com/secmon-lab/briareus/pkg/service/export"
)

func TestWriteAccountsCSV(t *testing.T) {
	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	accounts := []*model.Account{
		{
			ID:           1,
			Email:        "alice@example.com",
			EmployeeCode: "E-1001",
			Name:         "Alice",
			Status:       types.AccountStatusApproved,
			RoleID:       "risk-owner",
			GrantedSections: []types.SectionID{
				"overview", "risk-management",
			},
			CreatedAt: created,
		},
		{
			ID:        2,
			Email:     "bob@example.com",
			Name:      "Bob",
			CreatedAt: created,
		},
	}

	var buf bytes.Buffer
	gt.NoError(t, export.WriteAccountsCSV(&buf, accounts)).Required()

	records, err := csv.NewReader(&buf).ReadAll()
	gt.NoError(t, err).Required()
	gt.Value(t, len(records)).Equal(3)

	gt.Value(t, records[0]).Equal([]string{
		"id", "email", "employee_code", "name", "status", "role", "granted_sections", "created_at",
	})
	gt.Value(t, records[1]).Equal([]string{
		"1", "alice@example.com", "E-1001", "Alice", "approved", "risk-owner",
		"overview;risk-management", "2025-03-01T09:00:00Z",
	})

	// Missing status is reported as pending
	gt.Value(t, records[2][4]).Equal("pending")
	gt.Value(t, records[2][6]).Equal("")
}

func TestWriteAccountsCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	gt.NoError(t, export.WriteAccountsCSV(&buf, nil)).Required()

	records, err := csv.NewReader(&buf).ReadAll()
	gt.NoError(t, err).Required()
	gt.Value(t, len(records)).Equal(1)
}
