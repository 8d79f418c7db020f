package http

import (
	"net/url"
	"testing"
	"time"

	"kopilka/internal/core"
)

func TestParseStatsQuery(t *testing.T) {
	tests := []struct {
		name       string
		query      url.Values
		wantPeriod core.Period
		wantMonth  string
		wantErr    bool
	}{
		{
			name:       "empty defaults to month period",
			query:      url.Values{},
			wantPeriod: core.PeriodMonth,
		},
		{
			name:       "explicit day period",
			query:      url.Values{"period": {"day"}},
			wantPeriod: core.PeriodDay,
		},
		{
			name:       "explicit week period",
			query:      url.Values{"period": {"week"}},
			wantPeriod: core.PeriodWeek,
		},
		{
			name:    "unknown period rejected",
			query:   url.Values{"period": {"year"}},
			wantErr: true,
		},
		{
			name:      "month parameter selects month mode",
			query:     url.Values{"month": {"2026-03"}},
			wantMonth: "2026-03",
		},
		{
			name:      "month wins over period",
			query:     url.Values{"month": {"2025-12"}, "period": {"day"}},
			wantMonth: "2025-12",
		},
		{
			name:    "malformed month rejected",
			query:   url.Values{"month": {"march-2026"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := ParseStatsQuery(tt.query)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tt.wantMonth != "" {
				if !q.MonthMode {
					t.Fatal("expected month mode")
				}
				if got := q.Month.String(); got != tt.wantMonth {
					t.Errorf("Month = %q, want %q", got, tt.wantMonth)
				}
				return
			}

			if q.MonthMode {
				t.Fatal("unexpected month mode")
			}
			if q.Period != tt.wantPeriod {
				t.Errorf("Period = %q, want %q", q.Period, tt.wantPeriod)
			}
		})
	}
}

func TestParseGoalOverride(t *testing.T) {
	tests := []struct {
		name      string
		query     url.Values
		wantCents int64
		wantOK    bool
		wantErr   bool
	}{
		{name: "absent", query: url.Values{}},
		{name: "decimal amount", query: url.Values{"goal": {"1500.50"}}, wantCents: 150050, wantOK: true},
		{name: "integer amount", query: url.Values{"goal": {"200"}}, wantCents: 20000, wantOK: true},
		{name: "comma separator", query: url.Values{"goal": {"12,34"}}, wantCents: 1234, wantOK: true},
		{name: "zero goal accepted", query: url.Values{"goal": {"0"}}, wantCents: 0, wantOK: true},
		{name: "zero with decimals accepted", query: url.Values{"goal": {"0.00"}}, wantCents: 0, wantOK: true},
		{name: "garbage rejected", query: url.Values{"goal": {"lots"}}, wantErr: true},
		{name: "negative rejected", query: url.Values{"goal": {"-5"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			goal, ok, err := ParseGoalOverride(tt.query)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if goal.Cents != tt.wantCents {
				t.Errorf("Cents = %d, want %d", goal.Cents, tt.wantCents)
			}
		})
	}
}

func TestTransactionID(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/transactions/abc-123", "abc-123"},
		{"/api/transactions/abc-123/", "abc-123"},
		{"/api/transactions/", ""},
	}

	for _, tt := range tests {
		if got := TransactionID(tt.path); got != tt.want {
			t.Errorf("TransactionID(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  food\x00\x01  "); got != "food" {
		t.Errorf("sanitizeInput = %q, want %q", got, "food")
	}
	if got := sanitizeInput("multi\nline"); got != "multi\nline" {
		t.Errorf("newlines should survive, got %q", got)
	}
}

// Guard against the month-mode cache key ever colliding with a period key.
func TestMonthKeyStringFormat(t *testing.T) {
	key := core.MonthKey{Year: 2026, Month: time.March}
	if key.String() != "2026-03" {
		t.Errorf("MonthKey.String() = %q, want 2026-03", key.String())
	}
}
