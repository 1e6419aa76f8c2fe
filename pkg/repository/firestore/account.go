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

type accountDocument struct {
	ID              int64      `firestore:"id"`
	Email           string     `firestore:"email"`
	EmployeeCode    string     `firestore:"employee_code"`
	Name            string     `firestore:"name"`
	Status          string     `firestore:"status"`
	RoleID          string     `firestore:"role_id"`
	GrantedSections []string   `firestore:"granted_sections"`
	ApprovedAt      *time.Time `firestore:"approved_at"`
	CreatedAt       time.Time  `firestore:"created_at"`
	UpdatedAt       time.Time  `firestore:"updated_at"`
}

func accountToDocument(a *model.Account) *accountDocument {
	sections := make([]string, len(a.GrantedSections))
	for i, s := range a.GrantedSections {
		sections[i] = s.String()
	}
	return &accountDocument{
		ID:              a.ID,
		Email:           a.Email,
		EmployeeCode:    a.EmployeeCode,
		Name:            a.Name,
		Status:          a.Status.String(),
		RoleID:          a.RoleID.String(),
		GrantedSections: sections,
		ApprovedAt:      a.ApprovedAt,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func (d *accountDocument) toModel() *model.Account {
	sections := make([]types.SectionID, len(d.GrantedSections))
	for i, s := range d.GrantedSections {
		sections[i] = types.SectionID(s)
	}
	return &model.Account{
		ID:              d.ID,
		Email:           d.Email,
		EmployeeCode:    d.EmployeeCode,
		Name:            d.Name,
		Status:          types.AccountStatus(d.Status),
		RoleID:          types.RoleID(d.RoleID),
		GrantedSections: sections,
		ApprovedAt:      d.ApprovedAt,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

type accountRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newAccountRepository(client *firestore.Client) *accountRepository {
	return &accountRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *accountRepository) accountsCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_accounts"
	}
	return "accounts"
}

func (r *accountRepository) countersCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_counters"
	}
	return "counters"
}

func (r *accountRepository) getNextID(ctx context.Context) (int64, error) {
	counterRef := r.client.Collection(r.countersCollection()).Doc("account_counter")

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

func (r *accountRepository) findByField(ctx context.Context, field, value string) (*model.Account, error) {
	iter := r.client.Collection(r.accountsCollection()).Where(field, "==", value).Limit(1).Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, goerr.Wrap(types.ErrNotFound, "account not found", goerr.V(field, value))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query account", goerr.V(field, value))
	}

	var accountDoc accountDocument
	if err := doc.DataTo(&accountDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal account")
	}

	return accountDoc.toModel(), nil
}

func (r *accountRepository) Create(ctx context.Context, account *model.Account) (*model.Account, error) {
	// Uniqueness checks. Registration volume is low enough that the query +
	// write pair does not need a transaction here.
	if _, err := r.findByField(ctx, "email", account.Email); err == nil {
		return nil, goerr.Wrap(types.ErrDuplicate, "email already registered", goerr.V("email", account.Email))
	}
	if _, err := r.findByField(ctx, "employee_code", account.EmployeeCode); err == nil {
		return nil, goerr.Wrap(types.ErrDuplicate, "employee code already registered", goerr.V("employee_code", account.EmployeeCode))
	}

	id, err := r.getNextID(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created := account.Clone()
	created.ID = id
	created.CreatedAt = now
	created.UpdatedAt = now

	docRef := r.client.Collection(r.accountsCollection()).Doc(fmt.Sprintf("%d", id))
	if _, err := docRef.Set(ctx, accountToDocument(created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create account")
	}

	return created, nil
}

func (r *accountRepository) Get(ctx context.Context, id int64) (*model.Account, error) {
	docRef := r.client.Collection(r.accountsCollection()).Doc(fmt.Sprintf("%d", id))
	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(types.ErrNotFound, "account not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get account", goerr.V("id", id))
	}

	var accountDoc accountDocument
	if err := doc.DataTo(&accountDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal account", goerr.V("id", id))
	}

	return accountDoc.toModel(), nil
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	return r.findByField(ctx, "email", email)
}

func (r *accountRepository) List(ctx context.Context) ([]*model.Account, error) {
	iter := r.client.Collection(r.accountsCollection()).Documents(ctx)
	defer iter.Stop()

	var accounts []*model.Account
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate accounts")
		}

		var accountDoc accountDocument
		if err := doc.DataTo(&accountDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal account")
		}

		accounts = append(accounts, accountDoc.toModel())
	}

	return accounts, nil
}

func (r *accountRepository) ListByStatus(ctx context.Context, st types.AccountStatus) ([]*model.Account, error) {
	// Pending covers documents written before the status field existed, so
	// filter in memory rather than in the query.
	accounts, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	var out []*model.Account
	for _, a := range accounts {
		if a.Status.Normalize() == st {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *accountRepository) Update(ctx context.Context, account *model.Account) (*model.Account, error) {
	docRef := r.client.Collection(r.accountsCollection()).Doc(fmt.Sprintf("%d", account.ID))

	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(types.ErrNotFound, "account not found", goerr.V("id", account.ID))
		}
		return nil, goerr.Wrap(err, "failed to get account", goerr.V("id", account.ID))
	}

	var existing accountDocument
	if err := doc.DataTo(&existing); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal account", goerr.V("id", account.ID))
	}

	updated := account.Clone()
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	if _, err := docRef.Set(ctx, accountToDocument(updated)); err != nil {
		return nil, goerr.Wrap(err, "failed to update account", goerr.V("id", account.ID))
	}

	return updated, nil
}
