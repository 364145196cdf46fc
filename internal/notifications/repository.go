package notifications

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sharenet/backend/internal/models"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ Store = (*Repository)(nil)

func (r *Repository) Create(ctx context.Context, n *models.Notification) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO notifications (account_id, kind, body)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, n.AccountID, n.Kind, n.Body).Scan(&n.ID, &n.CreatedAt)
}

// ListByAccount returns the account's notifications, newest first.
func (r *Repository) ListByAccount(ctx context.Context, accountID int64) ([]*models.Notification, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, account_id, kind, body, created_at
		FROM notifications WHERE account_id = $1 ORDER BY created_at DESC, id DESC
	`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.AccountID, &n.Kind, &n.Body, &n.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &n)
	}
	return list, rows.Err()
}
