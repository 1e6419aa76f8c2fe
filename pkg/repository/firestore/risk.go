package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareus/pkg/domain/model"
	"github.com/secmon-lab/briareus/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type riskDocument struct {
	ID              int64     `firestore:"id"`
	Code            string    `firestore:"code"`
	Title           string    `firestore:"title"`
	Description     string    `firestore:"description"`
	CategoryID      string    `firestore:"category_id"`
	LikelihoodID    string    `firestore:"likelihood_id"`
	ImpactID        string    `firestore:"impact_id"`
	Score           float64   `firestore:"score"`
	Level           string    `firestore:"level"`
	Status          string    `firestore:"status"`
	Severity        string    `firestore:"severity"`
	AssessmentNotes string    `firestore:"assessment_notes"`
	TreatmentPlan   string    `firestore:"treatment_plan"`
	ReviewDate      time.Time `firestore:"review_date"`
	OwnerID         string    `firestore:"owner_id"`
	ReporterID      string    `firestore:"reporter_id"`
	ReviewerID      string    `firestore:"reviewer_id"`
	Revision        int64     `firestore:"revision"`
	CreatedAt       time.Time `firestore:"created_at"`
	UpdatedAt       time.Time `firestore:"updated_at"`
}

func riskToDocument(r *model.Risk) *riskDocument {
	return &riskDocument{
		ID:              r.ID,
		Code:            r.Code,
		Title:           r.Title,
		Description:     r.Description,
		CategoryID:      r.CategoryID.String(),
		LikelihoodID:    r.LikelihoodID.String(),
		ImpactID:        r.ImpactID.String(),
		Score:           r.Score.Float(),
		Level:           r.Level.String(),
		Status:          r.Status.String(),
		Severity:        r.Severity.String(),
		AssessmentNotes: r.AssessmentNotes,
		TreatmentPlan:   r.TreatmentPlan,
		ReviewDate:      r.ReviewDate,
		OwnerID:         r.OwnerID,
		ReporterID:      r.ReporterID,
		ReviewerID:      r.ReviewerID,
		Revision:        r.Revision,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func (d *riskDocument) toModel() *model.Risk {
	return &model.Risk{
		ID:              d.ID,
		Code:            d.Code,
		Title:           d.Title,
		Description:     d.Description,
		CategoryID:      types.CategoryID(d.CategoryID),
		LikelihoodID:    types.LikelihoodID(d.LikelihoodID),
		ImpactID:        types.ImpactID(d.ImpactID),
		Score:           types.Score(d.Score),
		Level:           types.RiskLevel(d.Level),
		Status:          types.RiskStatus(d.Status),
		Severity:        types.Severity(d.Severity),
		AssessmentNotes: d.AssessmentNotes,
		TreatmentPlan:   d.TreatmentPlan,
		ReviewDate:      d.ReviewDate,
		OwnerID:         d.OwnerID,
		ReporterID:      d.ReporterID,
		ReviewerID:      d.ReviewerID,
		Revision:        d.Revision,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

type riskRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newRiskRepository(client *firestore.Client) *riskRepository {
	return &riskRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *riskRepository) risksCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_risks"
	}
	return "risks"
}

func (r *riskRepository) countersCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_counters"
	}
	return "counters"
}

func (r *riskRepository) getNextID(ctx context.Context) (int64, error) {
	counterRef := r.client.Collection(r.countersCollection()).Doc("risk_counter")

	var nextID int64
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(counterRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				nextID = 1
				return tx.Set(counterRef, map[string]interface{}{
					"value": nextID,
				})
			}
			return goerr.Wrap(err, "failed to get counter")
		}

		currentValue, err := doc.DataAt("value")
		if err != nil {
			return goerr.Wrap(err, "failed to get counter value")
		}

		nextID = currentValue.(int64) + 1
		return tx.Update(counterRef, []firestore.Update{
			{Path: "value", Value: nextID},
		})
	})

	if err != nil {
		return 0, goerr.Wrap(err, "failed to get next ID")
	}

	return nextID, nil
}

func (r *riskRepository) Create(ctx context.Context, risk *model.Risk) (*model.Risk, error) {
	id, err := r.getNextID(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created := risk.Clone()
	created.ID = id
	created.Code = fmt.Sprintf("RISK-%d", id)
	created.Revision = 1
	created.CreatedAt = now
	created.UpdatedAt = now

	docRef := r.client.Collection(r.risksCollection()).Doc(fmt.Sprintf("%d", id))
	if _, err := docRef.Set(ctx, riskToDocument(created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create risk")
	}

	return created, nil
}

func (r *riskRepository) Get(ctx context.Context, id int64) (*model.Risk, error) {
	docRef := r.client.Collection(r.risksCollection()).Doc(fmt.Sprintf("%d", id))
	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(types.ErrNotFound, "risk not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get risk", goerr.V("id", id))
	}

	var riskDoc riskDocument
	if err := doc.DataTo(&riskDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal risk", goerr.V("id", id))
	}

	return riskDoc.toModel(), nil
}

func (r *riskRepository) GetByCode(ctx context.Context, code string) (*model.Risk, error) {
	iter := r.client.Collection(r.risksCollection()).Where("code", "==", code).Limit(1).Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, goerr.Wrap(types.ErrNotFound, "risk not found", goerr.V("code", code))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query risk by code", goerr.V("code", code))
	}

	var riskDoc riskDocument
	if err := doc.DataTo(&riskDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal risk", goerr.V("code", code))
	}

	return riskDoc.toModel(), nil
}

func (r *riskRepository) List(ctx context.Context) ([]*model.Risk, error) {
	iter := r.client.Collection(r.risksCollection()).Documents(ctx)
	defer iter.Stop()

	var risks []*model.Risk
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate risks")
		}

		var riskDoc riskDocument
		if err := doc.DataTo(&riskDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal risk")
		}

		risks = append(risks, riskDoc.toModel())
	}

	return risks, nil
}

func (r *riskRepository) ListByStatus(ctx context.Context, st types.RiskStatus) ([]*model.Risk, error) {
	iter := r.client.Collection(r.risksCollection()).Where("status", "==", st.String()).Documents(ctx)
	defer iter.Stop()

	var risks []*model.Risk
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate risks", goerr.V("status", st))
		}

		var riskDoc riskDocument
		if err := doc.DataTo(&riskDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal risk")
		}

		risks = append(risks, riskDoc.toModel())
	}

	return risks, nil
}

// Update performs the compare-and-set inside a Firestore transaction so the
// evaluate transition stays atomic per record.
func (r *riskRepository) Update(ctx context.Context, risk *model.Risk) (*model.Risk, error) {
	docRef := r.client.Collection(r.risksCollection()).Doc(fmt.Sprintf("%d", risk.ID))

	var result *model.Risk
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(types.ErrNotFound, "risk not found", goerr.V("id", risk.ID))
			}
			return goerr.Wrap(err, "failed to get risk", goerr.V("id", risk.ID))
		}

		var existing riskDocument
		if err := doc.DataTo(&existing); err != nil {
			return goerr.Wrap(err, "failed to unmarshal risk", goerr.V("id", risk.ID))
		}

		if existing.Revision != risk.Revision {
			return goerr.Wrap(types.ErrRevisionMismatch, "risk was modified concurrently",
				goerr.V("id", risk.ID),
				goerr.V("expected", risk.Revision),
				goerr.V("actual", existing.Revision))
		}

		updated := risk.Clone()
		updated.Code = existing.Code
		updated.CreatedAt = existing.CreatedAt
		updated.Revision = existing.Revision + 1
		updated.UpdatedAt = time.Now().UTC()

		if err := tx.Set(docRef, riskToDocument(updated)); err != nil {
			return goerr.Wrap(err, "failed to update risk", goerr.V("id", risk.ID))
		}

		result = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *riskRepository) Delete(ctx context.Context, id int64) error {
	docRef := r.client.Collection(r.risksCollection()).Doc(fmt.Sprintf("%d", id))

	_, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(types.ErrNotFound, "risk not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to get risk", goerr.V("id", id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete risk", goerr.V("id", id))
	}

	return nil
}
