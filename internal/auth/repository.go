package auth

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

func (r *Repository) Create(ctx context.Context, acc *models.Account) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO accounts (name, email, password_hash, balance)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, acc.Name, acc.Email, acc.PasswordHash, acc.Balance).Scan(&acc.ID, &acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// GetByEmail returns nil, nil when the email is unknown.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	var acc models.Account
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash, balance, created_at, updated_at
		FROM accounts WHERE email = $1
	`, email).Scan(&acc.ID, &acc.Name, &acc.Email, &acc.PasswordHash, &acc.Balance, &acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &acc, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	var acc models.Account
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash, balance, created_at, updated_at
		FROM accounts WHERE id = $1
	`, id).Scan(&acc.ID, &acc.Name, &acc.Email, &acc.PasswordHash, &acc.Balance, &acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &acc, nil
}

// UpdateProfile changes name and email only; the balance stays untouched
// so only ledger operations ever move it.
func (r *Repository) UpdateProfile(ctx context.Context, id int64, name, email string) (*models.Account, error) {
	var acc models.Account
	err := r.pool.QueryRow(ctx, `
		UPDATE accounts SET name = $2, email = $3, updated_at = now()
		WHERE id = $1
		RETURNING id, name, email, password_hash, balance, created_at, updated_at
	`, id, name, email).Scan(&acc.ID, &acc.Name, &acc.Email, &acc.PasswordHash, &acc.Balance, &acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return &acc, nil
}
