package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/secmon-lab/briareus/pkg/domain/interfaces"
	"github.com/secmon-lab/briareus/pkg/domain/model"
	"github.com/secmon-lab/briareus/pkg/domain/types"
	"github.com/secmon-lab/briareus/pkg/repository/firestore"
	"github.com/secmon-lab/briareus/pkg/repository/memory"
)

func runRiskRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create assigns sequential IDs and codes", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created1, err := repo.Risk().Create(ctx, &model.Risk{
			Title:       "Vendor lock-in",
			Description: "Single supplier for critical parts",
			CategoryID:  "financial",
			Status:      types.RiskStatusOpen,
		})
		if err != nil {
			t.Fatalf("failed to create risk: %v", err)
		}

		if created1.ID != 1 {
			t.Errorf("expected ID=1, got %d", created1.ID)
		}
		if created1.Code != "RISK-1" {
			t.Errorf("expected code=RISK-1, got %s", created1.Code)
		}
		if created1.Revision != 1 {
			t.Errorf("expected revision=1, got %d", created1.Revision)
		}
		if created1.CreatedAt.IsZero() {
			t.Error("expected non-zero CreatedAt")
		}

		created2, err := repo.Risk().Create(ctx, &model.Risk{
			Title:       "Second risk",
			Description: "Auto-increment check",
			CategoryID:  "other",
			Status:      types.RiskStatusSubmitted,
		})
		if err != nil {
			t.Fatalf("failed to create risk: %v", err)
		}
		if created2.ID != 2 {
			t.Errorf("expected ID=2, got %d", created2.ID)
		}
		if created2.Code != "RISK-2" {
			t.Errorf("expected code=RISK-2, got %s", created2.Code)
		}
	})

	t.Run("Get returns ErrNotFound for missing ID", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Risk().Get(ctx, 42)
		if !errors.Is(err, types.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("GetByCode retrieves by assigned code", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Risk().Create(ctx, &model.Risk{
			Title:       "Lookup by code",
			Description: "Code index check",
			CategoryID:  "other",
			Status:      types.RiskStatusOpen,
		})
		if err != nil {
			t.Fatalf("failed to create risk: %v", err)
		}

		got, err := repo.Risk().GetByCode(ctx, created.Code)
		if err != nil {
			t.Fatalf("failed to get risk by code: %v", err)
		}
		if got.ID != created.ID {
			t.Errorf("expected ID=%d, got %d", created.ID, got.ID)
		}

		if _, err := repo.Risk().GetByCode(ctx, "RISK-404"); !errors.Is(err, types.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Update enforces revision compare-and-set", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Risk().Create(ctx, &model.Risk{
			Title:       "Concurrent edit target",
			Description: "Two writers race on this record",
			CategoryID:  "other",
			Status:      types.RiskStatusSubmitted,
		})
		if err != nil {
			t.Fatalf("failed to create risk: %v", err)
		}

		// First writer wins
		first := created.Clone()
		first.Status = types.RiskStatusInReview
		updated, err := repo.Risk().Update(ctx, first)
		if err != nil {
			t.Fatalf("failed to update risk: %v", err)
		}
		if updated.Revision != created.Revision+1 {
			t.Errorf("expected revision=%d, got %d", created.Revision+1, updated.Revision)
		}

		// Second writer still holds the old revision and must fail
		second := created.Clone()
		second.Status = types.RiskStatusInReview
		if _, err := repo.Risk().Update(ctx, second); !errors.Is(err, types.ErrRevisionMismatch) {
			t.Errorf("expected ErrRevisionMismatch, got %v", err)
		}

		// The first write is intact
		current, err := repo.Risk().Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("failed to get risk: %v", err)
		}
		if current.Status != types.RiskStatusInReview {
			t.Errorf("expected status=in_review, got %s", current.Status)
		}
	})

	t.Run("Update preserves code and creation time", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Risk().Create(ctx, &model.Risk{
			Title:       "Immutable fields",
			Description: "Code never changes",
			CategoryID:  "other",
			Status:      types.RiskStatusOpen,
		})
		if err != nil {
			t.Fatalf("failed to create risk: %v", err)
		}

		edit := created.Clone()
		edit.Code = "RISK-999"
		edit.Title = "Edited"

		updated, err := repo.Risk().Update(ctx, edit)
		if err != nil {
			t.Fatalf("failed to update risk: %v", err)
		}
		if updated.Code != created.Code {
			t.Errorf("expected code=%s, got %s", created.Code, updated.Code)
		}
		if !updated.CreatedAt.Equal(created.CreatedAt) {
			t.Errorf("expected CreatedAt preserved, got %v", updated.CreatedAt)
		}
		if updated.Title != "Edited" {
			t.Errorf("expected title=Edited, got %s", updated.Title)
		}
	})

	t.Run("ListByStatus filters and treats empty as open", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		for _, status := range []types.RiskStatus{
			types.RiskStatusOpen,
			types.RiskStatusSubmitted,
			types.RiskStatusSubmitted,
		} {
			if _, err := repo.Risk().Create(ctx, &model.Risk{
				Title:       "Status fixture",
				Description: "ListByStatus check",
				CategoryID:  "other",
				Status:      status,
			}); err != nil {
				t.Fatalf("failed to create risk: %v", err)
			}
		}

		submitted, err := repo.Risk().ListByStatus(ctx, types.RiskStatusSubmitted)
		if err != nil {
			t.Fatalf("failed to list risks: %v", err)
		}
		if len(submitted) != 2 {
			t.Errorf("expected 2 submitted risks, got %d", len(submitted))
		}

		open, err := repo.Risk().ListByStatus(ctx, types.RiskStatusOpen)
		if err != nil {
			t.Fatalf("failed to list risks: %v", err)
		}
		if len(open) != 1 {
			t.Errorf("expected 1 open risk, got %d", len(open))
		}
	})

	t.Run("Delete removes the record", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Risk().Create(ctx, &model.Risk{
			Title:       "Short-lived",
			Description: "Delete check",
			CategoryID:  "other",
			Status:      types.RiskStatusOpen,
		})
		if err != nil {
			t.Fatalf("failed to create risk: %v", err)
		}

		if err := repo.Risk().Delete(ctx, created.ID); err != nil {
			t.Fatalf("failed to delete risk: %v", err)
		}
		if _, err := repo.Risk().Get(ctx, created.ID); !errors.Is(err, types.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
		if err := repo.Risk().Delete(ctx, created.ID); !errors.Is(err, types.ErrNotFound) {
			t.Errorf("expected ErrNotFound on double delete, got %v", err)
		}
	})
}

func newFirestoreRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}

	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")
	if databaseID == "" {
		t.Skip("TEST_FIRESTORE_DATABASE_ID not set")
	}

	ctx := context.Background()
	prefix := fmt.Sprintf("test_%d", time.Now().UnixNano())
	repo, err := firestore.New(ctx, projectID, databaseID, firestore.WithCollectionPrefix(prefix))
	if err != nil {
		t.Fatalf("failed to create firestore repository: %v", err)
	}
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Errorf("failed to close firestore repository: %v", err)
		}
	})
	return repo
}

func TestMemoryRiskRepository(t *testing.T) {
	runRiskRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestFirestoreRiskRepository(t *testing.T) {
	runRiskRepositoryTest(t, newFirestoreRepository)
}
