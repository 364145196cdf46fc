package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a registered user: identity plus the mutable credit balance.
// The balance is only ever changed by ledger operations; the schema backs
// this with a CHECK (balance >= 0) constraint.
type Account struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	PasswordHash string          `json:"-"`
	Balance      decimal.Decimal `json:"balance"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
