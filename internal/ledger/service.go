package ledger

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sharenet/backend/internal/models"
)

// ErrAccountNotFound is returned when the referenced account does not exist.
var ErrAccountNotFound = errors.New("account not found")

// ErrInsufficientFunds is returned when a negative delta would take the
// balance below zero.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrNegativeAmount is returned for negative deltas when the charge path is
// disabled by configuration.
var ErrNegativeAmount = errors.New("negative amount not permitted")

// ErrConflict is returned when the storage layer reports a concurrency
// conflict (serialization failure or deadlock). Callers may retry.
var ErrConflict = errors.New("concurrent ledger update conflict")

// Store is the persistence boundary for the ledger. ApplyCredit is the one
// atomic unit: the balance update and the entry append either both happen
// or neither does.
type Store interface {
	ApplyCredit(ctx context.Context, accountID int64, amount decimal.Decimal, description string, idempotencyKey *uuid.UUID) (*models.Account, *models.TransactionEntry, error)
	GetAccount(ctx context.Context, id int64) (*models.Account, error)
	ListByAccount(ctx context.Context, accountID int64) ([]*models.TransactionEntry, error)
}

type Service interface {
	AddCredit(ctx context.Context, accountID int64, amount decimal.Decimal, description string, idempotencyKey *uuid.UUID) (*models.Account, *models.TransactionEntry, error)
	ListTransactions(ctx context.Context, accountID int64) ([]*models.TransactionEntry, error)
	GetAccount(ctx context.Context, id int64) (*models.Account, error)
}

// Options tune validation and the storage timeout.
type Options struct {
	// AllowNegative permits negative deltas (charges). The zero-balance
	// floor is enforced by the store either way.
	AllowNegative bool

	// StorageTimeout bounds each store call. Zero means no bound.
	StorageTimeout time.Duration
}

type service struct {
	store Store
	opts  Options
}

func NewService(store Store, opts Options) Service {
	return &service{store: store, opts: opts}
}

var _ Service = (*service)(nil)

func (s *service) AddCredit(ctx context.Context, accountID int64, amount decimal.Decimal, description string, idempotencyKey *uuid.UUID) (*models.Account, *models.TransactionEntry, error) {
	if amount.IsNegative() && !s.opts.AllowNegative {
		return nil, nil, ErrNegativeAmount
	}
	if description == "" {
		description = models.TxDescriptionTopUp
	}
	ctx, cancel := s.boundCtx(ctx)
	defer cancel()
	return s.store.ApplyCredit(ctx, accountID, amount, description, idempotencyKey)
}

func (s *service) ListTransactions(ctx context.Context, accountID int64) ([]*models.TransactionEntry, error) {
	ctx, cancel := s.boundCtx(ctx)
	defer cancel()
	entries, err := s.store.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	// The store may return entries in any order; sort ascending by creation
	// time with the id as a deterministic tie-break.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries, nil
}

func (s *service) GetAccount(ctx context.Context, id int64) (*models.Account, error) {
	ctx, cancel := s.boundCtx(ctx)
	defer cancel()
	return s.store.GetAccount(ctx, id)
}

func (s *service) boundCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.StorageTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.opts.StorageTimeout)
}
