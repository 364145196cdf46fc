package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sharenet/backend/internal/models"
)

// ---------------------------------------------------------------------------
// In-memory mock Store. Accounts are a plain id set; messages get sequential
// ids on append.
// ---------------------------------------------------------------------------

type mockStore struct {
	mu       sync.Mutex
	nextID   int64
	accounts map[int64]bool
	msgs     []*models.ChatMessage
}

func newMockStore(accountIDs ...int64) *mockStore {
	m := &mockStore{accounts: make(map[int64]bool)}
	for _, id := range accountIDs {
		m.accounts[id] = true
	}
	return m
}

func (m *mockStore) Append(_ context.Context, msg *models.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	msg.ID = m.nextID
	cp := *msg
	m.msgs = append(m.msgs, &cp)
	return nil
}

func (m *mockStore) ListBetween(_ context.Context, a, b int64) ([]*models.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.ChatMessage
	for _, msg := range m.msgs {
		if (msg.SenderID == a && msg.ReceiverID == b) || (msg.SenderID == b && msg.ReceiverID == a) {
			cp := *msg
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockStore) AccountsExist(_ context.Context, ids ...int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		if !m.accounts[id] {
			return false, nil
		}
	}
	return true, nil
}

func defaultOpts() Options {
	return Options{AllowSelfMessages: false, RequireParticipants: true}
}

// ---------------------------------------------------------------------------
// 1. Send round-trip: body survives and the timestamp is server-assigned.
// ---------------------------------------------------------------------------

func TestSendRoundTrip(t *testing.T) {
	store := newMockStore(1, 2)
	svc := NewService(store, defaultOpts())
	ctx := context.Background()

	start := time.Now().UTC()
	msg, err := svc.Send(ctx, 1, 2, "is the ladder still available?")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if msg.Body != "is the ladder still available?" {
		t.Errorf("body: got %q", msg.Body)
	}
	if msg.SentAt.Before(start) {
		t.Errorf("timestamp %v predates the call", msg.SentAt)
	}
	if msg.ID == 0 {
		t.Error("message id not assigned")
	}

	thread, err := svc.History(ctx, 1, 2)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(thread) != 1 || thread[0].Body != msg.Body {
		t.Errorf("thread: got %d messages", len(thread))
	}
}

// ---------------------------------------------------------------------------
// 2. History symmetry and ordering: both directions interleave into one
//    ascending thread, identical for (a,b) and (b,a).
// ---------------------------------------------------------------------------

func TestHistorySymmetryAndOrder(t *testing.T) {
	store := newMockStore(1, 2, 3)
	svc := NewService(store, defaultOpts())
	// Fixed clock so ordering falls to the id tie-break.
	fixed := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	svc.(*service).now = func() time.Time { return fixed }
	ctx := context.Background()

	if _, err := svc.Send(ctx, 1, 2, "hi"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if _, err := svc.Send(ctx, 2, 1, "hello back"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	// Unrelated pair must not leak into the thread.
	if _, err := svc.Send(ctx, 1, 3, "different thread"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	forward, err := svc.History(ctx, 1, 2)
	if err != nil {
		t.Fatalf("History(1,2): %v", err)
	}
	reverse, err := svc.History(ctx, 2, 1)
	if err != nil {
		t.Fatalf("History(2,1): %v", err)
	}

	if len(forward) != 2 {
		t.Fatalf("thread length: got %d, want 2", len(forward))
	}
	if forward[0].Body != "hi" || forward[1].Body != "hello back" {
		t.Errorf("order: got %q, %q", forward[0].Body, forward[1].Body)
	}
	if len(reverse) != len(forward) {
		t.Fatalf("symmetry: %d vs %d messages", len(reverse), len(forward))
	}
	for i := range forward {
		if forward[i].ID != reverse[i].ID {
			t.Errorf("symmetry violated at %d: %d vs %d", i, forward[i].ID, reverse[i].ID)
		}
	}
}

// ---------------------------------------------------------------------------
// 3. Validation: empty bodies, self-messages, unknown participants.
// ---------------------------------------------------------------------------

func TestSendValidation(t *testing.T) {
	store := newMockStore(1, 2)
	svc := NewService(store, defaultOpts())
	ctx := context.Background()

	if _, err := svc.Send(ctx, 1, 2, "   "); !errors.Is(err, ErrEmptyBody) {
		t.Errorf("blank body: got %v, want ErrEmptyBody", err)
	}
	if _, err := svc.Send(ctx, 1, 1, "note to self"); !errors.Is(err, ErrSelfMessage) {
		t.Errorf("self message: got %v, want ErrSelfMessage", err)
	}
	if _, err := svc.Send(ctx, 1, 99, "anyone there?"); !errors.Is(err, ErrUnknownParticipant) {
		t.Errorf("unknown receiver: got %v, want ErrUnknownParticipant", err)
	}
	if _, err := svc.Send(ctx, 99, 2, "ghost sender"); !errors.Is(err, ErrUnknownParticipant) {
		t.Errorf("unknown sender: got %v, want ErrUnknownParticipant", err)
	}

	thread, err := svc.History(ctx, 1, 2)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(thread) != 0 {
		t.Errorf("rejected sends left %d messages", len(thread))
	}
}

// ---------------------------------------------------------------------------
// 4. Configuration flips: self-messaging on, participant validation off.
// ---------------------------------------------------------------------------

func TestSendConfigOverrides(t *testing.T) {
	store := newMockStore(1)
	svc := NewService(store, Options{AllowSelfMessages: true, RequireParticipants: false})
	ctx := context.Background()

	if _, err := svc.Send(ctx, 1, 1, "reminder"); err != nil {
		t.Errorf("self message with AllowSelfMessages: %v", err)
	}
	if _, err := svc.Send(ctx, 1, 42, "no existence check"); err != nil {
		t.Errorf("unknown receiver with validation off: %v", err)
	}
}
