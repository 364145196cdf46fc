package notifications

import (
	"context"
	"fmt"

	"github.com/riverqueue/river"

	"github.com/sharenet/backend/internal/models"
)

// NotificationJobArgs is the payload enqueued (transactionally, via
// river.Client.InsertTx) by the ledger and chat flows.
type NotificationJobArgs struct {
	AccountID int64  `json:"account_id"`
	Category  string `json:"category"`
	Body      string `json:"body"`
}

func (NotificationJobArgs) Kind() string { return "notification" }

// Store is the contract the worker needs to persist a notification.
type Store interface {
	Create(ctx context.Context, n *models.Notification) error
}

type Worker struct {
	river.WorkerDefaults[NotificationJobArgs]
	store Store
}

func NewWorker(store Store) *Worker {
	return &Worker{store: store}
}

func (w *Worker) Work(ctx context.Context, job *river.Job[NotificationJobArgs]) error {
	args := job.Args
	n := &models.Notification{
		AccountID: args.AccountID,
		Kind:      args.Category,
		Body:      args.Body,
	}
	if err := w.store.Create(ctx, n); err != nil {
		return fmt.Errorf("persist notification for account %d: %w", args.AccountID, err)
	}
	return nil
}
