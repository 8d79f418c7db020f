// Package worker runs the export path: it consumes ledger events from
// AMQP and mirrors the referenced records to an external sheet.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"kopilka/internal/amqp"
	"kopilka/internal/core"
	"kopilka/internal/sheets"
)

// RecordSource reads ledger records and tracks which of them have
// already been mirrored. Satisfied by the SQLite repository.
type RecordSource interface {
	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	ListUnexported(ctx context.Context) ([]core.Transaction, error)
	MarkExported(ctx context.Context, id string) error
	IsExported(ctx context.Context, id string) (bool, error)
}

type ExportWorker struct {
	records  RecordSource
	appender sheets.TransactionAppender
}

func NewExportWorker(records RecordSource, appender sheets.TransactionAppender) *ExportWorker {
	return &ExportWorker{
		records:  records,
		appender: appender,
	}
}

// HandleEvent processes one ledger event. Only additions are mirrored;
// the export sheet is an append-only journal, so updates and deletes
// are acknowledged without effect. Already-exported records are skipped
// so a redelivered event never duplicates a row.
func (w *ExportWorker) HandleEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	if msg.Action != "add" {
		slog.DebugContext(ctx, "Skipping non-add ledger event",
			"tx_id", msg.TxID, "action", msg.Action)
		return nil
	}

	exported, err := w.records.IsExported(ctx, msg.TxID)
	if err != nil {
		return fmt.Errorf("check exported %s: %w", msg.TxID, err)
	}
	if exported {
		slog.DebugContext(ctx, "Skipping already exported record", "tx_id", msg.TxID)
		return nil
	}

	tx, err := w.records.GetTransaction(ctx, msg.TxID)
	if err != nil {
		return fmt.Errorf("get transaction %s: %w", msg.TxID, err)
	}

	return w.export(ctx, tx)
}

// Backfill mirrors every record that has no export marker yet. Run at
// startup so events missed while the worker was down are not lost.
func (w *ExportWorker) Backfill(ctx context.Context) error {
	txs, err := w.records.ListUnexported(ctx)
	if err != nil {
		return fmt.Errorf("list unexported: %w", err)
	}
	if len(txs) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Backfilling missed exports", "count", len(txs))
	for _, tx := range txs {
		if err := w.export(ctx, tx); err != nil {
			return err
		}
	}
	return nil
}

func (w *ExportWorker) export(ctx context.Context, tx core.Transaction) error {
	ref, err := w.appender.AppendTransaction(ctx, tx)
	if err != nil {
		return fmt.Errorf("append transaction %s: %w", tx.ID, err)
	}
	if err := w.records.MarkExported(ctx, tx.ID); err != nil {
		return fmt.Errorf("mark exported %s: %w", tx.ID, err)
	}

	slog.InfoContext(ctx, "Ledger event exported", "tx_id", tx.ID, "row_ref", ref)
	return nil
}
