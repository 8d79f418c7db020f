// Package storage implements the storage ports on SQLite. The whole
// snapshot is replaced transactionally on every save so a reader never
// observes a partially applied write.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"kopilka/internal/core"
	"kopilka/internal/store"

	_ "modernc.org/sqlite"
)

const (
	settingBalances = "initial-balances"
	settingGoal     = "savings-goal"
)

type SQLiteRepository struct {
	db *sql.DB
}

var _ store.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) LoadTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, type, amount_cents, category, date, from_account, to_account
		FROM transactions ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		var (
			tx      core.Transaction
			typ     string
			dateStr string
			from    string
			to      string
		)
		if err := rows.Scan(&tx.ID, &typ, &tx.Amount.Cents, &tx.Category, &dateStr, &from, &to); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Type = core.TransactionType(typ)
		tx.FromAccount = core.AccountID(from)
		tx.ToAccount = core.AccountID(to)
		tx.Date, err = time.Parse(time.RFC3339Nano, dateStr)
		if err != nil {
			return nil, fmt.Errorf("parse transaction date %q: %w", dateStr, err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txs, nil
}

func (r *SQLiteRepository) SaveTransactions(ctx context.Context, txs []core.Transaction) (store.SaveResult, error) {
	res := store.SaveResult{Source: store.SourceSQLite}

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		res.Err = fmt.Errorf("begin tx: %w", err)
		return res, res.Err
	}
	defer dbTx.Rollback()

	if _, err := dbTx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		res.Err = fmt.Errorf("clear transactions: %w", err)
		return res, res.Err
	}

	stmt, err := dbTx.PrepareContext(ctx, `
		INSERT INTO transactions (id, position, type, amount_cents, category, date, from_account, to_account)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		res.Err = fmt.Errorf("prepare insert: %w", err)
		return res, res.Err
	}
	defer stmt.Close()

	for i, tx := range txs {
		_, err := stmt.ExecContext(ctx, tx.ID, i, string(tx.Type), tx.Amount.Cents,
			tx.Category, tx.Date.Format(time.RFC3339Nano),
			string(tx.FromAccount), string(tx.ToAccount))
		if err != nil {
			res.Err = fmt.Errorf("insert transaction %s: %w", tx.ID, err)
			return res, res.Err
		}
	}

	if err := dbTx.Commit(); err != nil {
		res.Err = fmt.Errorf("commit: %w", err)
		return res, res.Err
	}

	slog.DebugContext(ctx, "Transaction snapshot saved", "count", len(txs))
	return res, nil
}

// GetTransaction returns a single record by id for the export path.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, type, amount_cents, category, date, from_account, to_account
		FROM transactions WHERE id = ?`, id)

	var (
		tx      core.Transaction
		typ     string
		dateStr string
		from    string
		to      string
	)
	if err := row.Scan(&tx.ID, &typ, &tx.Amount.Cents, &tx.Category, &dateStr, &from, &to); err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %s: %w", id, err)
	}
	tx.Type = core.TransactionType(typ)
	tx.FromAccount = core.AccountID(from)
	tx.ToAccount = core.AccountID(to)
	var err error
	tx.Date, err = time.Parse(time.RFC3339Nano, dateStr)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction date %q: %w", dateStr, err)
	}
	return tx, nil
}

// ListUnexported returns the records that have no export_log marker,
// oldest position first. The export_log table survives snapshot
// replacement, so markers outlive SaveTransactions.
func (r *SQLiteRepository) ListUnexported(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.id, t.type, t.amount_cents, t.category, t.date, t.from_account, t.to_account
		FROM transactions t
		LEFT JOIN export_log e ON e.tx_id = t.id
		WHERE e.tx_id IS NULL
		ORDER BY t.position ASC`)
	if err != nil {
		return nil, fmt.Errorf("query unexported: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		var (
			tx      core.Transaction
			typ     string
			dateStr string
			from    string
			to      string
		)
		if err := rows.Scan(&tx.ID, &typ, &tx.Amount.Cents, &tx.Category, &dateStr, &from, &to); err != nil {
			return nil, fmt.Errorf("scan unexported: %w", err)
		}
		tx.Type = core.TransactionType(typ)
		tx.FromAccount = core.AccountID(from)
		tx.ToAccount = core.AccountID(to)
		tx.Date, err = time.Parse(time.RFC3339Nano, dateStr)
		if err != nil {
			return nil, fmt.Errorf("parse transaction date %q: %w", dateStr, err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate unexported: %w", err)
	}
	return txs, nil
}

// MarkExported records that the transaction has been mirrored. Marking
// twice is harmless.
func (r *SQLiteRepository) MarkExported(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO export_log (tx_id, exported_at) VALUES (?, ?)`,
		id, time.Now().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("mark exported %s: %w", id, err)
	}
	return nil
}

// IsExported reports whether the transaction already carries a marker.
func (r *SQLiteRepository) IsExported(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM export_log WHERE tx_id = ?)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check exported %s: %w", id, err)
	}
	return exists, nil
}

func (r *SQLiteRepository) LoadBalances(ctx context.Context) (core.InitialBalances, error) {
	var b core.InitialBalances
	if err := r.loadSetting(ctx, settingBalances, &b); err != nil {
		return core.InitialBalances{}, err
	}
	return b, nil
}

func (r *SQLiteRepository) SaveBalances(ctx context.Context, b core.InitialBalances) (store.SaveResult, error) {
	return r.saveSetting(ctx, settingBalances, b)
}

func (r *SQLiteRepository) LoadGoal(ctx context.Context) (core.Money, error) {
	var goal core.Money
	if err := r.loadSetting(ctx, settingGoal, &goal); err != nil {
		return core.Money{}, err
	}
	return goal, nil
}

func (r *SQLiteRepository) SaveGoal(ctx context.Context, goal core.Money) (store.SaveResult, error) {
	return r.saveSetting(ctx, settingGoal, goal)
}

// loadSetting leaves out untouched when the key is missing.
func (r *SQLiteRepository) loadSetting(ctx context.Context, key string, out any) error {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load setting %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(value), out); err != nil {
		return fmt.Errorf("decode setting %s: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) saveSetting(ctx context.Context, key string, v any) (store.SaveResult, error) {
	res := store.SaveResult{Source: store.SourceSQLite}

	data, err := json.Marshal(v)
	if err != nil {
		res.Err = fmt.Errorf("encode setting %s: %w", key, err)
		return res, res.Err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, string(data))
	if err != nil {
		res.Err = fmt.Errorf("save setting %s: %w", key, err)
		return res, res.Err
	}
	return res, nil
}
