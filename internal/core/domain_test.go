package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestTransactionValidate(t *testing.T) {
	date := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	good := []Transaction{
		{ID: "1", Type: Expense, Amount: Money{Cents: 100}, Category: "food", Date: date},
		{ID: "2", Type: Income, Amount: Money{Cents: 100}, Category: "salary", Date: date},
		{ID: "3", Type: Transfer, Amount: Money{Cents: 100}, Category: "transfer", Date: date,
			FromAccount: AccountCurrent, ToAccount: AccountSavings},
	}
	for i, tx := range good {
		if err := tx.Validate(); err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
	}

	bads := []struct {
		tx   Transaction
		want error
	}{
		{Transaction{Type: "refund", Amount: Money{Cents: 1}, Category: "c", Date: date}, ErrInvalidType},
		{Transaction{Type: Expense, Amount: Money{Cents: 0}, Category: "c", Date: date}, ErrInvalidAmount},
		{Transaction{Type: Expense, Amount: Money{Cents: 1}, Category: "c"}, ErrInvalidDate},
		{Transaction{Type: Expense, Amount: Money{Cents: 1}, Category: "  ", Date: date}, ErrEmptyCategory},
		{Transaction{Type: Transfer, Amount: Money{Cents: 1}, Date: date,
			FromAccount: "checking", ToAccount: AccountSavings}, ErrBadAccount},
		{Transaction{Type: Transfer, Amount: Money{Cents: 1}, Date: date,
			FromAccount: AccountSavings, ToAccount: AccountSavings}, ErrSameAccount},
	}
	for i, tc := range bads {
		if err := tc.tx.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestTransactionJSONShape(t *testing.T) {
	date := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tx := Transaction{
		ID: "abc", Type: Transfer, Amount: Money{Cents: 20000},
		Category: "transfer", Date: date,
		FromAccount: AccountCurrent, ToAccount: AccountSavings,
	}
	b, err := json.Marshal(tx)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}
	for _, field := range []string{"id", "type", "amount", "category", "date", "fromAccount", "toAccount"} {
		if _, ok := raw[field]; !ok {
			t.Fatalf("missing field %q in %s", field, b)
		}
	}

	// Account fields are omitted for non-transfers.
	b, err = json.Marshal(Transaction{ID: "x", Type: Expense, Amount: Money{Cents: 5}, Category: "food", Date: date})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	raw = nil
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}
	if _, ok := raw["fromAccount"]; ok {
		t.Fatalf("expected fromAccount omitted: %s", b)
	}

	var got Transaction
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if got.ID != "x" || got.Amount.Cents != 5 || got.Category != "food" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestInitialBalancesJSON(t *testing.T) {
	b, err := json.Marshal(InitialBalances{Current: Money{Cents: 100}, Savings: Money{Cents: 200}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"current":100,"savings":200}` {
		t.Fatalf("unexpected shape: %s", b)
	}
}
