package core

import "time"

// Forecast is a linear time-to-goal projection derived from transfer
// flow into and out of the savings account.
type Forecast struct {
	// Trailing 30-day transfer flow.
	MonthlyIn  Money `json:"monthlyIn"`
	MonthlyOut Money `json:"monthlyOut"`
	MonthlyNet Money `json:"monthlyNet"`

	// Mean net over all calendar months with transfer activity.
	AvgMonthly Money `json:"avgMonthly"`

	Remaining Money `json:"remaining"`

	// MonthsToGoal is meaningful only when Known is true; the caller
	// renders an unknown forecast as a dash, never as infinity.
	MonthsToGoal int  `json:"monthsToGoal"`
	Known        bool `json:"known"`

	// Progress is unclamped: it may exceed 100 when the goal is
	// overshot and go negative when the savings balance is negative.
	Progress float64 `json:"progress"`
}

// ComputeSavingsForecast projects the time to reach a savings goal from
// historical transfer activity. Only transfer transactions contribute;
// months without any transfer do not pull the average toward zero
// because they produce no bucket at all.
func ComputeSavingsForecast(txs []Transaction, goal, savingsBalance Money, now time.Time) Forecast {
	cutoff := now.AddDate(0, 0, -30)

	var monthlyIn, monthlyOut int64
	months := make(map[string]int64)
	var monthOrder []string

	for _, t := range txs {
		if t.Type != Transfer {
			continue
		}
		var net int64
		switch {
		case t.ToAccount == AccountSavings:
			net = t.Amount.Cents
		case t.FromAccount == AccountSavings:
			net = -t.Amount.Cents
		default:
			continue
		}

		if !t.Date.Before(cutoff) && t.Date.Before(now) {
			if net > 0 {
				monthlyIn += net
			} else {
				monthlyOut += -net
			}
		}

		key := t.Date.Format("2006-01")
		if _, seen := months[key]; !seen {
			monthOrder = append(monthOrder, key)
		}
		months[key] += net
	}

	var avgMonthly int64
	if len(monthOrder) > 0 {
		var sum int64
		for _, key := range monthOrder {
			sum += months[key]
		}
		// Round half away from zero; integer division would truncate
		// the mean toward zero.
		n := int64(len(monthOrder))
		if sum >= 0 {
			avgMonthly = (sum + n/2) / n
		} else {
			avgMonthly = -((-sum + n/2) / n)
		}
	}

	remaining := goal.Cents - savingsBalance.Cents

	f := Forecast{
		MonthlyIn:  Money{Cents: monthlyIn},
		MonthlyOut: Money{Cents: monthlyOut},
		MonthlyNet: Money{Cents: monthlyIn - monthlyOut},
		AvgMonthly: Money{Cents: avgMonthly},
		Remaining:  Money{Cents: remaining},
	}

	if avgMonthly > 0 {
		f.Known = true
		if remaining > 0 {
			f.MonthsToGoal = int((remaining + avgMonthly - 1) / avgMonthly)
		}
	}

	if goal.Cents > 0 {
		f.Progress = float64(savingsBalance.Cents) / float64(goal.Cents) * 100
	}

	return f
}
