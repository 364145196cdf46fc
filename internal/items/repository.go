package items

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
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

const itemColumns = `id, owner_id, name, description, price_per_day, image_url, is_available, available_until, latitude, longitude, created_at`

func (r *Repository) Create(ctx context.Context, item *models.Item) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO items (owner_id, name, description, price_per_day, image_url, is_available, available_until, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`, item.OwnerID, item.Name, item.Description, item.PricePerDay, item.ImageURL, item.IsAvailable, item.AvailableUntil, item.Latitude, item.Longitude).
		Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrOwnerNotFound
		}
		return err
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*models.Item, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return item, nil
}

func (r *Repository) List(ctx context.Context) ([]*models.Item, error) {
	return r.list(ctx, `SELECT `+itemColumns+` FROM items ORDER BY created_at DESC`)
}

func (r *Repository) ListAvailable(ctx context.Context) ([]*models.Item, error) {
	return r.list(ctx, `SELECT `+itemColumns+` FROM items WHERE is_available ORDER BY created_at DESC`)
}

func (r *Repository) list(ctx context.Context, query string) ([]*models.Item, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, item)
	}
	return list, rows.Err()
}

func scanItem(row pgx.Row) (*models.Item, error) {
	var it models.Item
	err := row.Scan(&it.ID, &it.OwnerID, &it.Name, &it.Description, &it.PricePerDay, &it.ImageURL, &it.IsAvailable, &it.AvailableUntil, &it.Latitude, &it.Longitude, &it.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}
