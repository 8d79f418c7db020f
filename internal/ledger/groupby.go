package ledger

import "kopilka/internal/core"

// DayGroup is a contiguous run of transactions sharing a calendar-day
// label.
type DayGroup struct {
	Label        string             `json:"label"`
	Transactions []core.Transaction `json:"transactions"`
}

// GroupByDate partitions a sequence into contiguous runs sharing the
// same calendar-day label, preserving the input order. It never
// re-sorts: a sequence that is not already day-clustered produces
// repeated labels as separate groups.
func GroupByDate(txs []core.Transaction) []DayGroup {
	var groups []DayGroup
	for _, tx := range txs {
		label := tx.Date.Format("2006-01-02")
		if n := len(groups); n > 0 && groups[n-1].Label == label {
			groups[n-1].Transactions = append(groups[n-1].Transactions, tx)
			continue
		}
		groups = append(groups, DayGroup{Label: label, Transactions: []core.Transaction{tx}})
	}
	return groups
}
