package ledger

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func newTestMux(t *testing.T, store Store) *http.ServeMux {
	t.Helper()
	h := NewHandler(newTestService(store), nil)
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/users/buy-credit", h.BuyCredit)
	mux.HandleFunc("POST /api/transactions/create", h.CreateTransaction)
	mux.HandleFunc("GET /api/transactions/user/{userId}", h.ListTransactions)
	return mux
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestBuyCreditEndpoint(t *testing.T) {
	store := NewMemoryStore()
	store.AddAccount("alice", "alice@example.com", decimal.Zero)
	mux := newTestMux(t, store)

	rec := doJSON(t, mux, http.MethodPost, "/api/users/buy-credit",
		`{"user_id": 1, "amount": "50.00"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body)
	}
	var resp TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Account == nil || !resp.Account.Balance.Equal(decimal.RequireFromString("50.00")) {
		t.Errorf("account balance in response: got %+v", resp.Account)
	}
	if resp.Transaction == nil || !resp.Transaction.Amount.Equal(decimal.RequireFromString("50.00")) {
		t.Errorf("transaction in response: got %+v", resp.Transaction)
	}

	// Validation failures.
	for body, want := range map[string]int{
		`{"amount": "10.00"}`:                        http.StatusBadRequest,
		`{"user_id": 1}`:                             http.StatusBadRequest,
		`not json`:                                   http.StatusBadRequest,
		`{"user_id": 999, "amount": "10.00"}`:        http.StatusNotFound,
		`{"user_id": 1, "amount": "1", "idempotency_key": "nope"}`: http.StatusBadRequest,
	} {
		if rec := doJSON(t, mux, http.MethodPost, "/api/users/buy-credit", body); rec.Code != want {
			t.Errorf("body %s: got status %d, want %d", body, rec.Code, want)
		}
	}
}

func TestBuyCreditIdempotencyEndpoint(t *testing.T) {
	store := NewMemoryStore()
	store.AddAccount("bob", "bob@example.com", decimal.Zero)
	mux := newTestMux(t, store)

	const body = `{"user_id": 1, "amount": "20.00", "idempotency_key": "0e6f1c2a-8f1d-4a4b-9c3d-2b1a0e6f1c2a"}`
	first := doJSON(t, mux, http.MethodPost, "/api/users/buy-credit", body)
	second := doJSON(t, mux, http.MethodPost, "/api/users/buy-credit", body)
	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("statuses: %d, %d", first.Code, second.Code)
	}

	var resp TransactionResponse
	if err := json.Unmarshal(second.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Account.Balance.Equal(decimal.RequireFromString("20.00")) {
		t.Errorf("balance after replay: got %s, want 20.00", resp.Account.Balance)
	}
}

func TestCreateTransactionEndpoint(t *testing.T) {
	store := NewMemoryStore()
	store.AddAccount("carol", "carol@example.com", decimal.RequireFromString("30.00"))
	mux := newTestMux(t, store)

	rec := doJSON(t, mux, http.MethodPost, "/api/transactions/create",
		`{"user_id": 1, "amount": "-12.50", "description": "drill rental"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body)
	}
	var resp TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Transaction.Description != "drill rental" {
		t.Errorf("description: got %q", resp.Transaction.Description)
	}
	if !resp.Account.Balance.Equal(decimal.RequireFromString("17.50")) {
		t.Errorf("balance: got %s, want 17.50", resp.Account.Balance)
	}

	// Overdraft maps to 400.
	rec = doJSON(t, mux, http.MethodPost, "/api/transactions/create",
		`{"user_id": 1, "amount": "-100.00", "description": "too much"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("overdraft status: got %d, want 400", rec.Code)
	}
}

func TestListTransactionsEndpoint(t *testing.T) {
	store := NewMemoryStore()
	store.AddAccount("dave", "dave@example.com", decimal.Zero)
	mux := newTestMux(t, store)

	// Empty history serializes as an empty array, not null.
	rec := doJSON(t, mux, http.MethodGet, "/api/transactions/user/1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"transactions":[]`) {
		t.Errorf("empty list body: got %s", rec.Body)
	}

	doJSON(t, mux, http.MethodPost, "/api/users/buy-credit", `{"user_id": 1, "amount": "5.00"}`)
	doJSON(t, mux, http.MethodPost, "/api/users/buy-credit", `{"user_id": 1, "amount": "7.00"}`)

	rec = doJSON(t, mux, http.MethodGet, "/api/transactions/user/1", "")
	var resp TransactionListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Transactions) != 2 {
		t.Fatalf("transactions: got %d, want 2", len(resp.Transactions))
	}
	if !resp.Transactions[0].Amount.Equal(decimal.RequireFromString("5.00")) {
		t.Errorf("first entry amount: got %s", resp.Transactions[0].Amount)
	}

	if rec := doJSON(t, mux, http.MethodGet, "/api/transactions/user/abc", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad user id: got status %d, want 400", rec.Code)
	}
}
