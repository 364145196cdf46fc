package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newTestService(store Store) Service {
	return NewService(store, Options{AllowNegative: true})
}

// ---------------------------------------------------------------------------
// 1. Sequential credits: balance equals initial plus the sum of deltas, and
//    every applied delta has exactly one ledger entry.
// ---------------------------------------------------------------------------

func TestAddCreditSequential(t *testing.T) {
	store := NewMemoryStore()
	acc := store.AddAccount("alice", "alice@example.com", dec("10.00"))
	svc := newTestService(store)
	ctx := context.Background()

	deltas := []string{"25.50", "-5.00", "0.25", "-10.75"}
	expected := dec("10.00")
	for _, d := range deltas {
		updated, entry, err := svc.AddCredit(ctx, acc.ID, dec(d), "", nil)
		if err != nil {
			t.Fatalf("AddCredit(%s): %v", d, err)
		}
		expected = expected.Add(dec(d))
		if !updated.Balance.Equal(expected) {
			t.Errorf("balance after %s: got %s, want %s", d, updated.Balance, expected)
		}
		if !entry.Amount.Equal(dec(d)) {
			t.Errorf("entry amount: got %s, want %s", entry.Amount, d)
		}
		if entry.Reference == uuid.Nil {
			t.Error("entry should carry a non-nil reference")
		}
	}

	entries, err := svc.ListTransactions(ctx, acc.ID)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(entries) != len(deltas) {
		t.Fatalf("entries: got %d, want %d", len(entries), len(deltas))
	}
	for i := 1; i < len(entries); i++ {
		prev, cur := entries[i-1], entries[i]
		if cur.CreatedAt.Before(prev.CreatedAt) {
			t.Errorf("entries out of order at %d", i)
		}
		if cur.CreatedAt.Equal(prev.CreatedAt) && cur.ID < prev.ID {
			t.Errorf("tie-break violated at %d", i)
		}
	}
}

// ---------------------------------------------------------------------------
// 2. Concurrent top-ups: N goroutines crediting the same account leave the
//    balance at initial + N*d with exactly N entries.
// ---------------------------------------------------------------------------

func TestAddCreditConcurrent(t *testing.T) {
	store := NewMemoryStore()
	acc := store.AddAccount("bob", "bob@example.com", dec("100.00"))
	svc := newTestService(store)
	ctx := context.Background()

	const n = 50
	delta := dec("3.50")

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := svc.AddCredit(ctx, acc.ID, delta, "concurrent top-up", nil); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("AddCredit: %v", err)
	}

	got, err := svc.GetAccount(ctx, acc.ID)
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	want := dec("100.00").Add(delta.Mul(decimal.NewFromInt(n)))
	if !got.Balance.Equal(want) {
		t.Errorf("balance: got %s, want %s", got.Balance, want)
	}

	entries, err := svc.ListTransactions(ctx, acc.ID)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(entries) != n {
		t.Errorf("entries: got %d, want %d", len(entries), n)
	}
}

// ---------------------------------------------------------------------------
// 3. Failed applies leave no trace: unknown account and insufficient funds
//    both produce zero entries and an unchanged balance.
// ---------------------------------------------------------------------------

func TestAddCreditFailuresLeaveNoEntry(t *testing.T) {
	store := NewMemoryStore()
	acc := store.AddAccount("carol", "carol@example.com", dec("5.00"))
	svc := newTestService(store)
	ctx := context.Background()

	if _, _, err := svc.AddCredit(ctx, 9999, dec("10.00"), "", nil); !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("unknown account: got %v, want ErrAccountNotFound", err)
	}
	if _, _, err := svc.AddCredit(ctx, acc.ID, dec("-6.00"), "charge", nil); !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("overdraft: got %v, want ErrInsufficientFunds", err)
	}

	got, err := svc.GetAccount(ctx, acc.ID)
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if !got.Balance.Equal(dec("5.00")) {
		t.Errorf("balance changed by failed applies: got %s", got.Balance)
	}
	entries, err := svc.ListTransactions(ctx, acc.ID)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("failed applies left %d entries", len(entries))
	}
}

// ---------------------------------------------------------------------------
// 4. Scripted scenario: empty account, +50.00, -20.00, then an apply against
//    a missing account. The surviving state is 30.00 with two entries.
// ---------------------------------------------------------------------------

func TestLedgerScenario(t *testing.T) {
	store := NewMemoryStore()
	acc := store.AddAccount("dave", "dave@example.com", decimal.Zero)
	svc := newTestService(store)
	ctx := context.Background()

	if _, _, err := svc.AddCredit(ctx, acc.ID, dec("50.00"), "top-up", nil); err != nil {
		t.Fatalf("first credit: %v", err)
	}
	if _, _, err := svc.AddCredit(ctx, acc.ID, dec("-20.00"), "rental charge", nil); err != nil {
		t.Fatalf("charge: %v", err)
	}
	if _, _, err := svc.AddCredit(ctx, 4242, dec("1.00"), "", nil); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("missing account: got %v, want ErrAccountNotFound", err)
	}

	got, err := svc.GetAccount(ctx, acc.ID)
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if !got.Balance.Equal(dec("30.00")) {
		t.Errorf("balance: got %s, want 30.00", got.Balance)
	}
	entries, err := svc.ListTransactions(ctx, acc.ID)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries: got %d, want 2", len(entries))
	}
	if !entries[0].Amount.Equal(dec("50.00")) || !entries[1].Amount.Equal(dec("-20.00")) {
		t.Errorf("entry amounts: got %s, %s", entries[0].Amount, entries[1].Amount)
	}
}

// ---------------------------------------------------------------------------
// 5. Idempotency: replaying a top-up with the same key returns the original
//    entry and does not move the balance again.
// ---------------------------------------------------------------------------

func TestAddCreditIdempotent(t *testing.T) {
	store := NewMemoryStore()
	acc := store.AddAccount("erin", "erin@example.com", decimal.Zero)
	svc := newTestService(store)
	ctx := context.Background()

	key := uuid.New()
	_, first, err := svc.AddCredit(ctx, acc.ID, dec("40.00"), "", &key)
	if err != nil {
		t.Fatalf("first apply: %v", err)
	}
	updated, replay, err := svc.AddCredit(ctx, acc.ID, dec("40.00"), "", &key)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if replay.ID != first.ID || replay.Reference != first.Reference {
		t.Errorf("replay returned a different entry: got %d/%s, want %d/%s",
			replay.ID, replay.Reference, first.ID, first.Reference)
	}
	if !updated.Balance.Equal(dec("40.00")) {
		t.Errorf("balance after replay: got %s, want 40.00", updated.Balance)
	}

	entries, err := svc.ListTransactions(ctx, acc.ID)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("entries after replay: got %d, want 1", len(entries))
	}
}

// ---------------------------------------------------------------------------
// 6. Negative deltas are rejected up front when the charge path is disabled.
// ---------------------------------------------------------------------------

func TestAddCreditNegativeDisabled(t *testing.T) {
	store := NewMemoryStore()
	acc := store.AddAccount("frank", "frank@example.com", dec("100.00"))
	svc := NewService(store, Options{AllowNegative: false})
	ctx := context.Background()

	if _, _, err := svc.AddCredit(ctx, acc.ID, dec("-1.00"), "", nil); !errors.Is(err, ErrNegativeAmount) {
		t.Errorf("got %v, want ErrNegativeAmount", err)
	}
	entries, err := svc.ListTransactions(ctx, acc.ID)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("rejected charge left %d entries", len(entries))
	}
}
