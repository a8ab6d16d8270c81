package store

import (
	"errors"
	"testing"

	"github.com/mwilkes/arcadia/internal/database"
)

func setupWalletTestDB(t *testing.T) (*WalletStore, *UserStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewWalletStore(db), NewUserStore(db)
}

func TestWalletBalanceConservation(t *testing.T) {
	ws, us := setupWalletTestDB(t)

	u, err := us.Create("astra", "pw-pw-pw", "")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	if err := ws.Credit(u.ID, 1000, "Signup bonus", "bonus"); err != nil {
		t.Fatalf("credit: %v", err)
	}

	deductions := []int{100, 250, 50}
	for _, amount := range deductions {
		if err := ws.Deduct(u.ID, amount, "Test spend", "test"); err != nil {
			t.Fatalf("deduct %d: %v", amount, err)
		}
	}

	balance, err := ws.Balance(u.ID)
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if balance != 600 {
		t.Errorf("balance = %d, want 600", balance)
	}

	// The ledger must sum to the balance.
	txs, total, err := ws.Transactions(u.ID, 1, 50)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if total != 4 {
		t.Errorf("total = %d, want 4", total)
	}
	sum := 0
	for _, tx := range txs {
		sum += tx.Delta
	}
	if sum != balance {
		t.Errorf("ledger sum = %d, balance = %d", sum, balance)
	}
}

func TestWalletDeductInsufficientFunds(t *testing.T) {
	ws, us := setupWalletTestDB(t)

	u, _ := us.Create("astra", "pw-pw-pw", "")
	if err := ws.Credit(u.ID, 100, "Signup bonus", "bonus"); err != nil {
		t.Fatalf("credit: %v", err)
	}

	err := ws.Deduct(u.ID, 500, "Too much", "test")
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	// Balance and ledger untouched by the failed deduction.
	balance, err := ws.Balance(u.ID)
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if balance != 100 {
		t.Errorf("balance = %d, want 100", balance)
	}

	_, total, err := ws.Transactions(u.ID, 1, 10)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if total != 1 {
		t.Errorf("ledger rows = %d, want 1", total)
	}
}

func TestWalletDeductExactBalance(t *testing.T) {
	ws, us := setupWalletTestDB(t)

	u, _ := us.Create("astra", "pw-pw-pw", "")
	if err := ws.Credit(u.ID, 300, "Signup bonus", "bonus"); err != nil {
		t.Fatalf("credit: %v", err)
	}

	if err := ws.Deduct(u.ID, 300, "All in", "test"); err != nil {
		t.Fatalf("deduct: %v", err)
	}

	balance, _ := ws.Balance(u.ID)
	if balance != 0 {
		t.Errorf("balance = %d, want 0", balance)
	}
}

func TestWalletBalanceUnknownUser(t *testing.T) {
	ws, _ := setupWalletTestDB(t)

	balance, err := ws.Balance(999)
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if balance != 0 {
		t.Errorf("balance = %d, want 0", balance)
	}
}
