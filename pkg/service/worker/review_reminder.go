package worker

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareus/pkg/domain/interfaces"
	"github.com/secmon-lab/briareus/pkg/domain/types"
	"github.com/secmon-lab/briareus/pkg/service/notify"
	"github.com/secmon-lab/briareus/pkg/utils/logging"
)

// ReviewReminderWorker periodically reminds owners of mitigated risks whose
// review date has passed.
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
// - For future horizontal scaling, implement distributed locking or leader election
type ReviewReminderWorker struct {
	repo     interfaces.Repository
	notifier notify.Service
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}

	// notified tracks risk IDs already reminded this process lifetime so a
	// short interval does not spam the channel.
	notified map[int64]bool
}

// NewReviewReminderWorker creates a worker for review date reminders
func NewReviewReminderWorker(repo interfaces.Repository, notifier notify.Service, interval time.Duration) *ReviewReminderWorker {
	return &ReviewReminderWorker{
		repo:     repo,
		notifier: notifier,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
		notified: make(map[int64]bool),
	}
}

// Start begins the background reminder loop without blocking server startup
func (w *ReviewReminderWorker) Start(ctx context.Context) error {
	logging.Default().Info("Review reminder worker starting",
		"interval", w.interval.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *ReviewReminderWorker) Stop() {
	logging.Default().Info("Review reminder worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("Review reminder worker stopped")
}

func (w *ReviewReminderWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	if err := w.scan(ctx); err != nil {
		logging.Default().Error("Initial review scan failed (will retry next interval)",
			"error", err.Error())
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.scan(ctx); err != nil {
				logging.Default().Error("Review scan failed (will retry next interval)",
					"error", err.Error())
			}

		case <-w.stopCh:
			logging.Default().Info("Review reminder worker received stop signal")
			return

		case <-ctx.Done():
			logging.Default().Info("Review reminder worker context cancelled")
			return
		}
	}
}

// scan performs a single pass over mitigated risks
func (w *ReviewReminderWorker) scan(ctx context.Context) error {
	risks, err := w.repo.Risk().ListByStatus(ctx, types.RiskStatusMitigated)
	if err != nil {
		return goerr.Wrap(err, "failed to list mitigated risks")
	}

	now := time.Now().UTC()
	for _, risk := range risks {
		if risk.ReviewDate.IsZero() || risk.ReviewDate.After(now) {
			continue
		}
		if w.notified[risk.ID] {
			continue
		}

		if err := w.notifier.NotifyReviewDue(ctx, risk); err != nil {
			logging.Default().Error("Failed to send review reminder",
				"risk_id", risk.ID,
				"error", err.Error())
			continue
		}
		w.notified[risk.ID] = true
	}

	return nil
}
