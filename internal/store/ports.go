package store

import (
	"context"

	"kopilka/internal/core"
)

// Source names which physical store ultimately accepted a write.
const (
	SourceMemory Source = "memory"
	SourceSQLite Source = "sqlite"
)

type (
	Source string

	// SaveResult reports the outcome of an asynchronous persistence
	// attempt back to the caller.
	SaveResult struct {
		Source Source
		Err    error
	}

	// TransactionStore persists the transaction snapshot under the
	// "transactions" key. Load on an empty or missing key returns an
	// empty sequence, not an error.
	TransactionStore interface {
		LoadTransactions(ctx context.Context) ([]core.Transaction, error)
		SaveTransactions(ctx context.Context, txs []core.Transaction) (SaveResult, error)
	}

	// BalanceStore persists the initial balances pair under the
	// "initial-balances" key. Load on a missing key returns the zero
	// pair.
	BalanceStore interface {
		LoadBalances(ctx context.Context) (core.InitialBalances, error)
		SaveBalances(ctx context.Context, b core.InitialBalances) (SaveResult, error)
	}

	// GoalStore persists the user-set savings goal.
	GoalStore interface {
		LoadGoal(ctx context.Context) (core.Money, error)
		SaveGoal(ctx context.Context, goal core.Money) (SaveResult, error)
	}

	// Store is the full storage collaborator the ledger is wired to.
	Store interface {
		TransactionStore
		BalanceStore
		GoalStore
	}
)
