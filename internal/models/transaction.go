package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction descriptions recorded by the built-in flows.
const (
	TxDescriptionTopUp = "credit top-up"
)

// TransactionEntry is one append-only ledger record. Amount is the signed
// delta applied to the owning account's balance; entries are never updated
// or deleted.
type TransactionEntry struct {
	ID             int64           `json:"id"`
	AccountID      int64           `json:"account_id"`
	Amount         decimal.Decimal `json:"amount"`
	Description    string          `json:"description,omitempty"`
	Reference      uuid.UUID       `json:"reference"`
	IdempotencyKey *uuid.UUID      `json:"-"`
	CreatedAt      time.Time       `json:"created_at"`
}
