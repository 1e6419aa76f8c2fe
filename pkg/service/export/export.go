package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareus/pkg/domain/model"
	"github.com/secmon-lab/briareus/pkg/utils/safe"
)

// Service writes account exports to a Cloud Storage bucket. This is a
// one-way side channel; the approval workflow never depends on it.
type Service struct {
	client *storage.Client
	bucket string
}

// New creates an export service bound to a bucket
func New(ctx context.Context, bucket string) (*Service, error) {
	if bucket == "" {
		return nil, goerr.New("export bucket is required")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}

	return &Service{
		client: client,
		bucket: bucket,
	}, nil
}

// Close releases the storage client
func (s *Service) Close() error {
	return s.client.Close()
}

// WriteAccountsCSV writes the account list as CSV to w. Split out from the
// upload so the HTTP download handler can reuse it.
func WriteAccountsCSV(w io.Writer, accounts []*model.Account) error {
	cw := csv.NewWriter(w)

	header := []string{"id", "email", "employee_code", "name", "status", "role", "granted_sections", "created_at"}
	if err := cw.Write(header); err != nil {
		return goerr.Wrap(err, "failed to write CSV header")
	}

	for _, a := range accounts {
		sections := make([]string, len(a.GrantedSections))
		for i, sec := range a.GrantedSections {
			sections[i] = sec.String()
		}
		record := []string{
			fmt.Sprintf("%d", a.ID),
			a.Email,
			a.EmployeeCode,
			a.Name,
			a.Status.Normalize().String(),
			a.RoleID.String(),
			strings.Join(sections, ";"),
			a.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return goerr.Wrap(err, "failed to write CSV record", goerr.V("account_id", a.ID))
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return goerr.Wrap(err, "failed to flush CSV")
	}
	return nil
}

// ExportPendingAccounts uploads the given accounts as a timestamped CSV
// object and returns the object name.
func (s *Service) ExportPendingAccounts(ctx context.Context, accounts []*model.Account) (string, error) {
	objectName := fmt.Sprintf("pending-accounts/%s.csv", time.Now().UTC().Format("20060102-150405"))

	obj := s.client.Bucket(s.bucket).Object(objectName)
	w := obj.NewWriter(ctx)
	w.ContentType = "text/csv"

	if err := WriteAccountsCSV(w, accounts); err != nil {
		safe.Close(ctx, w)
		return "", err
	}

	if err := w.Close(); err != nil {
		return "", goerr.Wrap(err, "failed to finalize export object",
			goerr.V("bucket", s.bucket), goerr.V("object", objectName))
	}

	return objectName, nil
}
