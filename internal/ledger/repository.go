package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/sharenet/backend/internal/models"
	"github.com/sharenet/backend/internal/notifications"
)

// InsertNotificationTxFunc enqueues a notification job within the given
// transaction. Provided by main using river.Client.InsertTx; nil disables
// notifications.
type InsertNotificationTxFunc func(ctx context.Context, tx pgx.Tx, args notifications.NotificationJobArgs) error

// Repository is the Postgres implementation of Store.
type Repository struct {
	pool   *pgxpool.Pool
	notify InsertNotificationTxFunc
}

func NewRepository(pool *pgxpool.Pool, notify InsertNotificationTxFunc) *Repository {
	return &Repository{pool: pool, notify: notify}
}

var _ Store = (*Repository)(nil)

// ApplyCredit applies the delta and appends the transaction entry in one
// database transaction. A conditional UPDATE enforces the zero-balance
// floor and serializes concurrent updates on the account row; the entry
// insert and the notification enqueue ride the same transaction, so a
// failure of any step rolls back all of them.
func (r *Repository) ApplyCredit(ctx context.Context, accountID int64, amount decimal.Decimal, description string, idempotencyKey *uuid.UUID) (*models.Account, *models.TransactionEntry, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, translateError(err)
	}
	defer tx.Rollback(ctx)

	if idempotencyKey != nil {
		entry, err := findEntryByKey(ctx, tx, *idempotencyKey)
		if err != nil {
			return nil, nil, err
		}
		if entry != nil {
			acc, err := getAccount(ctx, tx, entry.AccountID)
			if err != nil {
				return nil, nil, err
			}
			return acc, entry, nil
		}
	}

	var acc models.Account
	err = tx.QueryRow(ctx, `
		UPDATE accounts SET balance = balance + $1, updated_at = now()
		WHERE id = $2 AND balance + $1 >= 0
		RETURNING id, name, email, password_hash, balance, created_at, updated_at
	`, amount, accountID).Scan(&acc.ID, &acc.Name, &acc.Email, &acc.PasswordHash, &acc.Balance, &acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, accountID).Scan(&exists); err != nil {
				return nil, nil, translateError(err)
			}
			if !exists {
				return nil, nil, ErrAccountNotFound
			}
			return nil, nil, ErrInsufficientFunds
		}
		return nil, nil, translateError(err)
	}

	entry := &models.TransactionEntry{
		AccountID:      accountID,
		Amount:         amount,
		Description:    description,
		Reference:      uuid.New(),
		IdempotencyKey: idempotencyKey,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO transactions (account_id, amount, description, reference, idempotency_key)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, entry.AccountID, entry.Amount, entry.Description, entry.Reference, entry.IdempotencyKey).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return nil, nil, translateError(err)
	}

	if r.notify != nil {
		body := fmt.Sprintf("%s credits added to your balance", amount.String())
		if amount.IsNegative() {
			body = fmt.Sprintf("%s credits charged from your balance", amount.Neg().String())
		}
		args := notifications.NotificationJobArgs{
			AccountID: accountID,
			Category:  models.NotificationCreditAdded,
			Body:      body,
		}
		if err := r.notify(ctx, tx, args); err != nil {
			return nil, nil, translateError(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, translateError(err)
	}
	return &acc, entry, nil
}

func (r *Repository) GetAccount(ctx context.Context, id int64) (*models.Account, error) {
	var acc models.Account
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash, balance, created_at, updated_at
		FROM accounts WHERE id = $1
	`, id).Scan(&acc.ID, &acc.Name, &acc.Email, &acc.PasswordHash, &acc.Balance, &acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, translateError(err)
	}
	return &acc, nil
}

func (r *Repository) ListByAccount(ctx context.Context, accountID int64) ([]*models.TransactionEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, account_id, amount, description, reference, idempotency_key, created_at
		FROM transactions WHERE account_id = $1 ORDER BY created_at, id
	`, accountID)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()
	var list []*models.TransactionEntry
	for rows.Next() {
		var e models.TransactionEntry
		if err := rows.Scan(&e.ID, &e.AccountID, &e.Amount, &e.Description, &e.Reference, &e.IdempotencyKey, &e.CreatedAt); err != nil {
			return nil, translateError(err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

func findEntryByKey(ctx context.Context, tx pgx.Tx, key uuid.UUID) (*models.TransactionEntry, error) {
	var e models.TransactionEntry
	err := tx.QueryRow(ctx, `
		SELECT id, account_id, amount, description, reference, idempotency_key, created_at
		FROM transactions WHERE idempotency_key = $1
	`, key).Scan(&e.ID, &e.AccountID, &e.Amount, &e.Description, &e.Reference, &e.IdempotencyKey, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, translateError(err)
	}
	return &e, nil
}

func getAccount(ctx context.Context, tx pgx.Tx, id int64) (*models.Account, error) {
	var acc models.Account
	err := tx.QueryRow(ctx, `
		SELECT id, name, email, password_hash, balance, created_at, updated_at
		FROM accounts WHERE id = $1
	`, id).Scan(&acc.ID, &acc.Name, &acc.Email, &acc.PasswordHash, &acc.Balance, &acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, translateError(err)
	}
	return &acc, nil
}

// translateError maps Postgres error codes onto the ledger's sentinel
// errors so handlers never see raw driver errors for known cases.
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01": // serialization failure, deadlock
			return ErrConflict
		case "23514": // balance CHECK violation
			return ErrInsufficientFunds
		case "23503": // FK: entry references a missing account
			return ErrAccountNotFound
		case "23505": // duplicate idempotency key race
			return ErrConflict
		}
	}
	return err
}
