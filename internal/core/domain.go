package core

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

const (
	Expense  TransactionType = "expense"
	Income   TransactionType = "income"
	Transfer TransactionType = "transfer"
)

const (
	AccountCurrent AccountID = "current"
	AccountSavings AccountID = "savings"
)

type (
	TransactionType string

	AccountID string

	// Transaction is one recorded financial event. ID is assigned by the
	// ledger on creation and never changes afterwards.
	Transaction struct {
		ID          string
		Type        TransactionType
		Amount      Money
		Category    string
		Date        time.Time
		FromAccount AccountID
		ToAccount   AccountID
	}

	// InitialBalances is the pair of account balances at the moment
	// tracking began, before any recorded transaction.
	InitialBalances struct {
		Current Money
		Savings Money
	}

	// Balances is the current snapshot derived by folding the ledger
	// over the initial balances.
	Balances struct {
		Current Money
		Savings Money
		Total   Money
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidType   = errors.New("invalid transaction type")
	ErrInvalidDate   = errors.New("invalid date")
	ErrEmptyCategory = errors.New("empty category")
	ErrBadAccount    = errors.New("invalid account")
	ErrSameAccount   = errors.New("transfer accounts must differ")
)

func (t TransactionType) IsValid() bool {
	switch t {
	case Expense, Income, Transfer:
		return true
	default:
		return false
	}
}

func (a AccountID) IsValid() bool {
	return a == AccountCurrent || a == AccountSavings
}

// Validate checks the invariants the ledger enforces on add and update.
// The computation engines never call this; they absorb malformed records
// as no-ops instead.
func (t Transaction) Validate() error {
	if !t.Type.IsValid() {
		return ErrInvalidType
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	switch t.Type {
	case Transfer:
		if !t.FromAccount.IsValid() || !t.ToAccount.IsValid() {
			return ErrBadAccount
		}
		if t.FromAccount == t.ToAccount {
			return ErrSameAccount
		}
	default:
		if strings.TrimSpace(t.Category) == "" {
			return ErrEmptyCategory
		}
	}
	return nil
}

// transactionRecord is the persisted shape: a flat record with optional
// account fields, date in RFC 3339.
type transactionRecord struct {
	ID          string          `json:"id"`
	Type        TransactionType `json:"type"`
	Amount      Money           `json:"amount"`
	Category    string          `json:"category"`
	Date        time.Time       `json:"date"`
	FromAccount AccountID       `json:"fromAccount,omitempty"`
	ToAccount   AccountID       `json:"toAccount,omitempty"`
}

func (t Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(transactionRecord{
		ID:          t.ID,
		Type:        t.Type,
		Amount:      t.Amount,
		Category:    t.Category,
		Date:        t.Date,
		FromAccount: t.FromAccount,
		ToAccount:   t.ToAccount,
	})
}

func (t *Transaction) UnmarshalJSON(data []byte) error {
	var rec transactionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	*t = Transaction{
		ID:          rec.ID,
		Type:        rec.Type,
		Amount:      rec.Amount,
		Category:    rec.Category,
		Date:        rec.Date,
		FromAccount: rec.FromAccount,
		ToAccount:   rec.ToAccount,
	}
	return nil
}

type initialBalancesRecord struct {
	Current Money `json:"current"`
	Savings Money `json:"savings"`
}

func (b InitialBalances) MarshalJSON() ([]byte, error) {
	return json.Marshal(initialBalancesRecord{Current: b.Current, Savings: b.Savings})
}

func (b *InitialBalances) UnmarshalJSON(data []byte) error {
	var rec initialBalancesRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	b.Current = rec.Current
	b.Savings = rec.Savings
	return nil
}
