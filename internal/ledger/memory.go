package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sharenet/backend/internal/models"
)

// MemoryStore is an in-memory Store. It mirrors the atomicity of the
// Postgres store with a single mutex held for the whole apply-and-append
// unit, which makes it usable for concurrency tests without a database.
type MemoryStore struct {
	mu         sync.Mutex
	nextAcctID int64
	nextTxID   int64
	accounts   map[int64]*models.Account
	entries    []*models.TransactionEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{accounts: make(map[int64]*models.Account)}
}

var _ Store = (*MemoryStore)(nil)

// AddAccount seeds an account and returns a copy of it.
func (m *MemoryStore) AddAccount(name, email string, balance decimal.Decimal) *models.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextAcctID++
	now := time.Now()
	acc := &models.Account{
		ID:        m.nextAcctID,
		Name:      name,
		Email:     email,
		Balance:   balance,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.accounts[acc.ID] = acc
	cp := *acc
	return &cp
}

func (m *MemoryStore) ApplyCredit(_ context.Context, accountID int64, amount decimal.Decimal, description string, idempotencyKey *uuid.UUID) (*models.Account, *models.TransactionEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if idempotencyKey != nil {
		for _, e := range m.entries {
			if e.IdempotencyKey != nil && *e.IdempotencyKey == *idempotencyKey {
				acc, ok := m.accounts[e.AccountID]
				if !ok {
					return nil, nil, ErrAccountNotFound
				}
				accCp, eCp := *acc, *e
				return &accCp, &eCp, nil
			}
		}
	}

	acc, ok := m.accounts[accountID]
	if !ok {
		return nil, nil, ErrAccountNotFound
	}
	newBalance := acc.Balance.Add(amount)
	if newBalance.IsNegative() {
		return nil, nil, ErrInsufficientFunds
	}
	acc.Balance = newBalance
	acc.UpdatedAt = time.Now()

	m.nextTxID++
	entry := &models.TransactionEntry{
		ID:             m.nextTxID,
		AccountID:      accountID,
		Amount:         amount,
		Description:    description,
		Reference:      uuid.New(),
		IdempotencyKey: idempotencyKey,
		CreatedAt:      time.Now(),
	}
	m.entries = append(m.entries, entry)

	accCp, eCp := *acc, *entry
	return &accCp, &eCp, nil
}

func (m *MemoryStore) GetAccount(_ context.Context, id int64) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	cp := *acc
	return &cp, nil
}

func (m *MemoryStore) ListByAccount(_ context.Context, accountID int64) ([]*models.TransactionEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.TransactionEntry
	for _, e := range m.entries {
		if e.AccountID == accountID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}
