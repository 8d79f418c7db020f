// Package memory implements the storage ports on top of JSON files in a
// data directory, loaded once and served from memory afterwards. It is
// the default backend for local use and tests.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"kopilka/internal/core"
	"kopilka/internal/store"
)

const (
	transactionsFile = "transactions.json"
	balancesFile     = "initial-balances.json"
	goalFile         = "savings-goal.json"

	// Key used by old deployments for the transaction snapshot.
	legacyTransactionsFile = "money-counter-transactions.json"
)

type Store struct {
	mu   sync.Mutex
	dir  string
	txs  []core.Transaction
	bal  core.InitialBalances
	goal core.Money
}

var _ store.Store = (*Store)(nil)

// NewFromDir opens the store rooted at dir, creating it if needed, and
// migrates the legacy transaction key once: the old file is read,
// rewritten under the new name and removed.
func NewFromDir(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	s := &Store{dir: dir}
	if err := s.migrateLegacyKey(); err != nil {
		return nil, fmt.Errorf("migrate legacy key: %w", err)
	}

	if err := readJSONFile(filepath.Join(dir, transactionsFile), &s.txs); err != nil {
		return nil, fmt.Errorf("read transactions: %w", err)
	}
	if err := readJSONFile(filepath.Join(dir, balancesFile), &s.bal); err != nil {
		return nil, fmt.Errorf("read balances: %w", err)
	}
	if err := readJSONFile(filepath.Join(dir, goalFile), &s.goal); err != nil {
		return nil, fmt.Errorf("read goal: %w", err)
	}

	return s, nil
}

func (s *Store) migrateLegacyKey() error {
	legacy := filepath.Join(s.dir, legacyTransactionsFile)
	current := filepath.Join(s.dir, transactionsFile)

	if _, err := os.Stat(legacy); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if _, err := os.Stat(current); err == nil {
		// New key already exists; the legacy file is stale.
		return os.Remove(legacy)
	}

	data, err := os.ReadFile(legacy)
	if err != nil {
		return err
	}
	if err := os.WriteFile(current, data, 0644); err != nil {
		return err
	}
	return os.Remove(legacy)
}

func (s *Store) LoadTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.txs...), nil
}

func (s *Store) SaveTransactions(_ context.Context, txs []core.Transaction) (store.SaveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = append([]core.Transaction(nil), txs...)
	if err := writeJSONFile(filepath.Join(s.dir, transactionsFile), s.txs); err != nil {
		return store.SaveResult{Source: store.SourceMemory, Err: err}, err
	}
	return store.SaveResult{Source: store.SourceMemory}, nil
}

func (s *Store) LoadBalances(_ context.Context) (core.InitialBalances, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bal, nil
}

func (s *Store) SaveBalances(_ context.Context, b core.InitialBalances) (store.SaveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bal = b
	if err := writeJSONFile(filepath.Join(s.dir, balancesFile), s.bal); err != nil {
		return store.SaveResult{Source: store.SourceMemory, Err: err}, err
	}
	return store.SaveResult{Source: store.SourceMemory}, nil
}

func (s *Store) LoadGoal(_ context.Context) (core.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.goal, nil
}

func (s *Store) SaveGoal(_ context.Context, goal core.Money) (store.SaveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goal = goal
	if err := writeJSONFile(filepath.Join(s.dir, goalFile), s.goal); err != nil {
		return store.SaveResult{Source: store.SourceMemory, Err: err}, err
	}
	return store.SaveResult{Source: store.SourceMemory}, nil
}

func readJSONFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}

func writeJSONFile(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
