package notify

import (
	"context"

	"github.com/secmon-lab/briareus/pkg/domain/model"
)

// Service delivers one-way notifications about finalized state changes.
// Delivery failures never roll back the state change that triggered them.
type Service interface {
	// NotifyRiskEscalated announces a risk that left review as escalated
	NotifyRiskEscalated(ctx context.Context, risk *model.Risk) error

	// NotifyAccountApproved announces a newly approved account
	NotifyAccountApproved(ctx context.Context, account *model.Account) error

	// NotifyReviewDue reminds the owner that a risk's review date passed
	NotifyReviewDue(ctx context.Context, risk *model.Risk) error
}
