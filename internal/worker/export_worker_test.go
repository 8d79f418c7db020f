package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"kopilka/internal/amqp"
	"kopilka/internal/core"
)

type fakeRecords struct {
	records  map[string]core.Transaction
	exported map[string]bool
	order    []string
}

func newFakeRecords(txs ...core.Transaction) *fakeRecords {
	f := &fakeRecords{
		records:  make(map[string]core.Transaction),
		exported: make(map[string]bool),
	}
	for _, tx := range txs {
		f.records[tx.ID] = tx
		f.order = append(f.order, tx.ID)
	}
	return f
}

func (f *fakeRecords) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	tx, ok := f.records[id]
	if !ok {
		return core.Transaction{}, errors.New("not found")
	}
	return tx, nil
}

func (f *fakeRecords) ListUnexported(_ context.Context) ([]core.Transaction, error) {
	var txs []core.Transaction
	for _, id := range f.order {
		if !f.exported[id] {
			txs = append(txs, f.records[id])
		}
	}
	return txs, nil
}

func (f *fakeRecords) MarkExported(_ context.Context, id string) error {
	f.exported[id] = true
	return nil
}

func (f *fakeRecords) IsExported(_ context.Context, id string) (bool, error) {
	return f.exported[id], nil
}

type fakeAppender struct {
	appended []core.Transaction
	fail     bool
}

func (f *fakeAppender) AppendTransaction(_ context.Context, tx core.Transaction) (string, error) {
	if f.fail {
		return "", errors.New("sheets unavailable")
	}
	f.appended = append(f.appended, tx)
	return "mem:1", nil
}

func testTx(id string) core.Transaction {
	return core.Transaction{ID: id, Type: core.Expense, Amount: core.Money{Cents: 100},
		Category: "food", Date: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}
}

func TestHandleEventAppendsOnAdd(t *testing.T) {
	records := newFakeRecords(testTx("a"))
	appender := &fakeAppender{}
	w := NewExportWorker(records, appender)

	if err := w.HandleEvent(context.Background(), amqp.NewLedgerEventMessage("a", "add")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(appender.appended) != 1 || appender.appended[0].ID != "a" {
		t.Fatalf("expected one appended record, got %+v", appender.appended)
	}
	if !records.exported["a"] {
		t.Fatalf("exported record must be marked")
	}
}

func TestHandleEventSkipsAlreadyExported(t *testing.T) {
	records := newFakeRecords(testTx("a"))
	appender := &fakeAppender{}
	w := NewExportWorker(records, appender)

	// A redelivered event for the same record must not duplicate the row.
	for i := 0; i < 2; i++ {
		if err := w.HandleEvent(context.Background(), amqp.NewLedgerEventMessage("a", "add")); err != nil {
			t.Fatalf("handle %d: %v", i, err)
		}
	}
	if len(appender.appended) != 1 {
		t.Fatalf("expected exactly one appended record, got %d", len(appender.appended))
	}
}

func TestHandleEventSkipsUpdatesAndDeletes(t *testing.T) {
	records := newFakeRecords()
	appender := &fakeAppender{}
	w := NewExportWorker(records, appender)

	for _, action := range []string{"update", "delete"} {
		if err := w.HandleEvent(context.Background(), amqp.NewLedgerEventMessage("a", action)); err != nil {
			t.Fatalf("%s should be acknowledged without effect: %v", action, err)
		}
	}
	if len(appender.appended) != 0 {
		t.Fatalf("non-add events must not append: %+v", appender.appended)
	}
}

func TestHandleEventErrors(t *testing.T) {
	// Missing record surfaces the error so the delivery is requeued.
	w := NewExportWorker(newFakeRecords(), &fakeAppender{})
	if err := w.HandleEvent(context.Background(), amqp.NewLedgerEventMessage("a", "add")); err == nil {
		t.Fatalf("expected error for missing record")
	}

	// Appender failure surfaces too, and leaves the record unmarked.
	records := newFakeRecords(testTx("a"))
	w = NewExportWorker(records, &fakeAppender{fail: true})
	if err := w.HandleEvent(context.Background(), amqp.NewLedgerEventMessage("a", "add")); err == nil {
		t.Fatalf("expected error for append failure")
	}
	if records.exported["a"] {
		t.Fatalf("failed append must not mark the record exported")
	}
}

func TestBackfillExportsMissedRecords(t *testing.T) {
	records := newFakeRecords(testTx("a"), testTx("b"), testTx("c"))
	records.exported["b"] = true
	appender := &fakeAppender{}
	w := NewExportWorker(records, appender)

	if err := w.Backfill(context.Background()); err != nil {
		t.Fatalf("backfill: %v", err)
	}
	if len(appender.appended) != 2 {
		t.Fatalf("expected 2 backfilled records, got %d", len(appender.appended))
	}
	if appender.appended[0].ID != "a" || appender.appended[1].ID != "c" {
		t.Fatalf("unexpected backfill order: %+v", appender.appended)
	}
	for _, id := range []string{"a", "b", "c"} {
		if !records.exported[id] {
			t.Fatalf("record %s must be marked after backfill", id)
		}
	}

	// A second pass finds nothing to do.
	if err := w.Backfill(context.Background()); err != nil {
		t.Fatalf("second backfill: %v", err)
	}
	if len(appender.appended) != 2 {
		t.Fatalf("second backfill must not re-append, got %d", len(appender.appended))
	}
}
