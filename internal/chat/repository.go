package chat

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sharenet/backend/internal/models"
	"github.com/sharenet/backend/internal/notifications"
)

// InsertNotificationTxFunc enqueues a notification job within the given
// transaction. Provided by main using river.Client.InsertTx; nil disables
// notifications.
type InsertNotificationTxFunc func(ctx context.Context, tx pgx.Tx, args notifications.NotificationJobArgs) error

type Repository struct {
	pool   *pgxpool.Pool
	notify InsertNotificationTxFunc
}

func NewRepository(pool *pgxpool.Pool, notify InsertNotificationTxFunc) *Repository {
	return &Repository{pool: pool, notify: notify}
}

var _ Store = (*Repository)(nil)

// Append inserts the message and enqueues the receiver's notification in
// one transaction.
func (r *Repository) Append(ctx context.Context, msg *models.ChatMessage) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO chat_messages (sender_id, receiver_id, body, sent_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, msg.SenderID, msg.ReceiverID, msg.Body, msg.SentAt).Scan(&msg.ID)
	if err != nil {
		return err
	}

	if r.notify != nil {
		args := notifications.NotificationJobArgs{
			AccountID: msg.ReceiverID,
			Category:  models.NotificationMessageReceived,
			Body:      fmt.Sprintf("New message from user %d", msg.SenderID),
		}
		if err := r.notify(ctx, tx, args); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// ListBetween returns the union of (a→b) and (b→a) rows. Ordering is left
// to the service, which re-sorts for determinism.
func (r *Repository) ListBetween(ctx context.Context, a, b int64) ([]*models.ChatMessage, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, sender_id, receiver_id, body, sent_at
		FROM chat_messages
		WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY sent_at, id
	`, a, b)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Body, &m.SentAt); err != nil {
			return nil, err
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

func (r *Repository) AccountsExist(ctx context.Context, ids ...int64) (bool, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT count(DISTINCT id) FROM accounts WHERE id = ANY($1)
	`, ids).Scan(&count)
	if err != nil {
		return false, err
	}
	distinct := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		distinct[id] = struct{}{}
	}
	return count == len(distinct), nil
}
