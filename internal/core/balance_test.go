package core

import (
	"math/rand"
	"testing"
	"time"
)

func TestComputeBalancesEmpty(t *testing.T) {
	got := ComputeBalances(nil, InitialBalances{Current: Money{Cents: 150}, Savings: Money{Cents: 250}})
	if got.Current.Cents != 150 || got.Savings.Cents != 250 || got.Total.Cents != 400 {
		t.Fatalf("unexpected balances: %+v", got)
	}
}

func TestComputeBalancesScenario(t *testing.T) {
	date := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	txs := []Transaction{
		{ID: "1", Type: Income, Amount: Money{Cents: 100000}, Category: "salary", Date: date},
		{ID: "2", Type: Expense, Amount: Money{Cents: 30000}, Category: "food", Date: date},
	}

	got := ComputeBalances(txs, InitialBalances{})
	if got.Current.Cents != 70000 || got.Savings.Cents != 0 || got.Total.Cents != 70000 {
		t.Fatalf("unexpected balances: %+v", got)
	}

	// A transfer moves funds between accounts without changing the total.
	txs = append(txs, Transaction{
		ID: "3", Type: Transfer, Amount: Money{Cents: 20000}, Category: "transfer", Date: date,
		FromAccount: AccountCurrent, ToAccount: AccountSavings,
	})
	got = ComputeBalances(txs, InitialBalances{})
	if got.Current.Cents != 50000 || got.Savings.Cents != 20000 || got.Total.Cents != 70000 {
		t.Fatalf("unexpected balances after transfer: %+v", got)
	}
}

func TestComputeBalancesReverseTransfer(t *testing.T) {
	date := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	txs := []Transaction{
		{ID: "1", Type: Transfer, Amount: Money{Cents: 500}, Category: "transfer", Date: date,
			FromAccount: AccountSavings, ToAccount: AccountCurrent},
	}
	got := ComputeBalances(txs, InitialBalances{Savings: Money{Cents: 1000}})
	if got.Current.Cents != 500 || got.Savings.Cents != 500 || got.Total.Cents != 1000 {
		t.Fatalf("unexpected balances: %+v", got)
	}
}

func TestComputeBalancesMalformedTransferIsNoop(t *testing.T) {
	date := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	txs := []Transaction{
		{ID: "1", Type: Transfer, Amount: Money{Cents: 500}, Category: "transfer", Date: date,
			FromAccount: "checking", ToAccount: AccountSavings},
		{ID: "2", Type: Transfer, Amount: Money{Cents: 500}, Category: "transfer", Date: date},
	}
	got := ComputeBalances(txs, InitialBalances{Current: Money{Cents: 100}})
	if got.Current.Cents != 100 || got.Savings.Cents != 0 {
		t.Fatalf("malformed transfers must not move balances: %+v", got)
	}
}

func TestComputeBalancesOrderInvariant(t *testing.T) {
	date := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	txs := []Transaction{
		{ID: "1", Type: Income, Amount: Money{Cents: 1000}, Category: "salary", Date: date},
		{ID: "2", Type: Expense, Amount: Money{Cents: 300}, Category: "food", Date: date},
		{ID: "3", Type: Transfer, Amount: Money{Cents: 200}, Category: "transfer", Date: date,
			FromAccount: AccountCurrent, ToAccount: AccountSavings},
		{ID: "4", Type: Expense, Amount: Money{Cents: 50}, Category: "transport", Date: date},
		{ID: "5", Type: Transfer, Amount: Money{Cents: 100}, Category: "transfer", Date: date,
			FromAccount: AccountSavings, ToAccount: AccountCurrent},
	}
	initial := InitialBalances{Current: Money{Cents: 42}, Savings: Money{Cents: 7}}
	want := ComputeBalances(txs, initial)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		shuffled := append([]Transaction(nil), txs...)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		if got := ComputeBalances(shuffled, initial); got != want {
			t.Fatalf("iteration %d: balances depend on order: got %+v want %+v", i, got, want)
		}
	}
}
