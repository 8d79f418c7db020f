package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"kopilka/internal/core"
	"kopilka/internal/store"
)

func TestLoadMissingKeysReturnsZeroValues(t *testing.T) {
	s, err := NewFromDir(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	ctx := context.Background()

	txs, err := s.LoadTransactions(ctx)
	if err != nil {
		t.Fatalf("load transactions: %v", err)
	}
	if len(txs) != 0 {
		t.Fatalf("expected empty sequence, got %d", len(txs))
	}

	bal, err := s.LoadBalances(ctx)
	if err != nil {
		t.Fatalf("load balances: %v", err)
	}
	if bal != (core.InitialBalances{}) {
		t.Fatalf("expected zero pair, got %+v", bal)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFromDir(dir)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	ctx := context.Background()

	txs := []core.Transaction{
		{ID: "a", Type: core.Expense, Amount: core.Money{Cents: 100}, Category: "food",
			Date: time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)},
		{ID: "b", Type: core.Transfer, Amount: core.Money{Cents: 200}, Category: "transfer",
			Date:        time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC),
			FromAccount: core.AccountCurrent, ToAccount: core.AccountSavings},
	}
	res, err := s.SaveTransactions(ctx, txs)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if res.Source != store.SourceMemory {
		t.Fatalf("unexpected source %q", res.Source)
	}
	if _, err := s.SaveBalances(ctx, core.InitialBalances{Current: core.Money{Cents: 5}}); err != nil {
		t.Fatalf("save balances: %v", err)
	}
	if _, err := s.SaveGoal(ctx, core.Money{Cents: 100000}); err != nil {
		t.Fatalf("save goal: %v", err)
	}

	// Re-open from disk and check everything survived.
	s2, err := NewFromDir(dir)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	got, err := s2.LoadTransactions(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 || got[0].ID != "a" || got[1].FromAccount != core.AccountCurrent {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	bal, _ := s2.LoadBalances(ctx)
	if bal.Current.Cents != 5 {
		t.Fatalf("balances mismatch: %+v", bal)
	}
	goal, _ := s2.LoadGoal(ctx)
	if goal.Cents != 100000 {
		t.Fatalf("goal mismatch: %+v", goal)
	}
}

func TestLegacyKeyMigration(t *testing.T) {
	dir := t.TempDir()
	legacy := filepath.Join(dir, legacyTransactionsFile)
	payload := `[{"id":"old","type":"expense","amount":300,"category":"food","date":"2025-01-01T00:00:00Z"}]`
	if err := os.WriteFile(legacy, []byte(payload), 0644); err != nil {
		t.Fatalf("write legacy file: %v", err)
	}

	s, err := NewFromDir(dir)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	txs, err := s.LoadTransactions(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(txs) != 1 || txs[0].ID != "old" {
		t.Fatalf("legacy data not migrated: %+v", txs)
	}

	if _, err := os.Stat(legacy); !os.IsNotExist(err) {
		t.Fatalf("legacy file should be removed after migration")
	}
	if _, err := os.Stat(filepath.Join(dir, transactionsFile)); err != nil {
		t.Fatalf("new key should exist after migration: %v", err)
	}
}
