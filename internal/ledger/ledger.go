// Package ledger owns the canonical ordered transaction log. It is the
// single writer the computation engines read from: mutations update the
// in-memory snapshot synchronously and return immediately, persistence
// happens on a background write path whose outcome is reported through
// an optional callback.
package ledger

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"kopilka/internal/core"
	"kopilka/internal/store"
)

// EventPublisher receives a best-effort notification after every
// mutation. Publish failures never fail the mutation.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, txID, action string) error
}

// Mutation actions reported to the event publisher.
const (
	ActionAdd    = "add"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

type Manager struct {
	mu   sync.RWMutex
	txs  []core.Transaction // canonical order, newest first
	bal  core.InitialBalances
	goal core.Money

	store  store.Store
	pub    EventPublisher
	onSave func(store.SaveResult)

	saveCh chan struct{}
	done   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// NewManager wires the ledger to its storage collaborator. Both the
// publisher and the save callback are optional.
func NewManager(st store.Store, pub EventPublisher, onSave func(store.SaveResult)) *Manager {
	m := &Manager{
		store:  st,
		pub:    pub,
		onSave: onSave,
		saveCh: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	if st != nil {
		m.wg.Add(1)
		go m.writeLoop()
	}
	return m
}

// Load hydrates the in-memory snapshot from the store. Missing keys
// hydrate to the empty log and zero balances.
func (m *Manager) Load(ctx context.Context) error {
	if m.store == nil {
		return nil
	}
	txs, err := m.store.LoadTransactions(ctx)
	if err != nil {
		return err
	}
	bal, err := m.store.LoadBalances(ctx)
	if err != nil {
		return err
	}
	goal, err := m.store.LoadGoal(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.txs = txs
	m.bal = bal
	m.goal = goal
	m.mu.Unlock()
	return nil
}

// Add assigns a fresh id, defaults the date to now when absent and
// prepends the transaction to the log. The stored transaction is
// returned.
func (m *Manager) Add(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	tx.ID = uuid.NewString()
	if tx.Date.IsZero() {
		tx.Date = time.Now()
	}
	if tx.Type == core.Transfer {
		tx.Category = "transfer"
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	m.mu.Lock()
	m.txs = append([]core.Transaction{tx}, m.txs...)
	m.mu.Unlock()

	m.afterMutation(ctx, tx.ID, ActionAdd)
	return tx, nil
}

// Update replaces the entry matching the id, keeping identity. A
// missing id is a silent no-op, as is an invalid replacement record.
func (m *Manager) Update(ctx context.Context, tx core.Transaction) {
	if err := tx.Validate(); err != nil {
		slog.WarnContext(ctx, "Rejected ledger update", "id", tx.ID, "error", err)
		return
	}

	m.mu.Lock()
	replaced := false
	next := make([]core.Transaction, len(m.txs))
	for i, existing := range m.txs {
		if existing.ID == tx.ID {
			next[i] = tx
			replaced = true
		} else {
			next[i] = existing
		}
	}
	if replaced {
		m.txs = next
	}
	m.mu.Unlock()

	if replaced {
		m.afterMutation(ctx, tx.ID, ActionUpdate)
	}
}

// Delete removes the entry with the given id. Missing ids are a no-op,
// so deleting twice has the same effect as deleting once.
func (m *Manager) Delete(ctx context.Context, id string) {
	m.mu.Lock()
	removed := false
	next := make([]core.Transaction, 0, len(m.txs))
	for _, existing := range m.txs {
		if existing.ID == id {
			removed = true
			continue
		}
		next = append(next, existing)
	}
	if removed {
		m.txs = next
	}
	m.mu.Unlock()

	if removed {
		m.afterMutation(ctx, id, ActionDelete)
	}
}

// All returns a copied snapshot of the log, newest first.
func (m *Manager) All() []core.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]core.Transaction(nil), m.txs...)
}

// Balances returns the configured initial balances.
func (m *Manager) Balances() core.InitialBalances {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bal
}

// SetInitialBalances records the balances at the moment tracking began.
// This is independent of the transaction log.
func (m *Manager) SetInitialBalances(ctx context.Context, b core.InitialBalances) {
	m.mu.Lock()
	m.bal = b
	m.mu.Unlock()

	if m.store != nil {
		// The store call must happen inside the goroutine; as a go
		// statement argument it would run on the caller.
		saveCtx := context.WithoutCancel(ctx)
		go func() {
			m.report(m.store.SaveBalances(saveCtx, b))
		}()
	}
}

// Goal returns the user-set savings goal.
func (m *Manager) Goal() core.Money {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.goal
}

// SetGoal records the savings goal.
func (m *Manager) SetGoal(ctx context.Context, goal core.Money) {
	m.mu.Lock()
	m.goal = goal
	m.mu.Unlock()

	if m.store != nil {
		saveCtx := context.WithoutCancel(ctx)
		go func() {
			m.report(m.store.SaveGoal(saveCtx, goal))
		}()
	}
}

// Close stops the background writer after flushing any pending
// snapshot.
func (m *Manager) Close() {
	m.once.Do(func() {
		close(m.done)
	})
	m.wg.Wait()
}

func (m *Manager) afterMutation(ctx context.Context, txID, action string) {
	m.requestSave()

	if m.pub != nil {
		if err := m.pub.PublishLedgerEvent(ctx, txID, action); err != nil {
			slog.ErrorContext(ctx, "Failed to publish ledger event",
				"id", txID, "action", action, "error", err)
		}
	}
}

// requestSave signals the writer; pending signals coalesce so the
// writer always persists the latest snapshot.
func (m *Manager) requestSave() {
	if m.store == nil {
		return
	}
	select {
	case m.saveCh <- struct{}{}:
	default:
	}
}

func (m *Manager) writeLoop() {
	defer m.wg.Done()
	for {
		select {
		case <-m.saveCh:
			m.persistSnapshot()
		case <-m.done:
			// Final flush of anything still pending.
			select {
			case <-m.saveCh:
				m.persistSnapshot()
			default:
			}
			return
		}
	}
}

func (m *Manager) persistSnapshot() {
	snapshot := m.All()
	m.report(m.store.SaveTransactions(context.Background(), snapshot))
}

func (m *Manager) report(res store.SaveResult, err error) {
	if err != nil {
		// The in-memory log stays authoritative regardless of
		// persistence outcome.
		slog.Error("Persistence failed", "source", res.Source, "error", err)
	}
	if m.onSave != nil {
		m.onSave(res)
	}
}
