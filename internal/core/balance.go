package core

// ComputeBalances folds the transaction sequence over the initial
// balances and returns the current per-account snapshot. Each
// transaction independently adjusts one or two account totals, so the
// result does not depend on traversal order.
//
// A transfer whose account pair is not one of the two recognized
// directions leaves the balances untouched.
func ComputeBalances(txs []Transaction, initial InitialBalances) Balances {
	current := initial.Current.Cents
	savings := initial.Savings.Cents

	for _, t := range txs {
		switch t.Type {
		case Income:
			current += t.Amount.Cents
		case Expense:
			current -= t.Amount.Cents
		case Transfer:
			switch {
			case t.FromAccount == AccountCurrent && t.ToAccount == AccountSavings:
				current -= t.Amount.Cents
				savings += t.Amount.Cents
			case t.FromAccount == AccountSavings && t.ToAccount == AccountCurrent:
				savings -= t.Amount.Cents
				current += t.Amount.Cents
			}
		}
	}

	return Balances{
		Current: Money{Cents: current},
		Savings: Money{Cents: savings},
		Total:   Money{Cents: current + savings},
	}
}
