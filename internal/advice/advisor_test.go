package advice

import (
	"context"
	"errors"
	"strings"
	"testing"

	"kopilka/internal/core"
)

func TestNewFromEnvNotConfigured(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	if _, err := NewFromEnv(context.Background()); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestBuildPrompt(t *testing.T) {
	stats := core.PeriodStats{
		Stats: core.Stats{
			Expenses: core.Money{Cents: 150000},
			Income:   core.Money{Cents: 300000},
			Balance:  core.Money{Cents: 150000},
			CategoryBreakdown: []core.CategoryShare{
				{Category: "food", Amount: core.Money{Cents: 100000}, Percent: 66.7},
				{Category: "transport", Amount: core.Money{Cents: 50000}, Percent: 33.3},
			},
		},
		ExpenseChange: 25,
	}

	prompt := buildPrompt(stats, core.PeriodWeek)
	for _, want := range []string{"неделю", "1500.00", "3000.00", "+25%", "Еда", "Транспорт"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildPromptEmptyBreakdown(t *testing.T) {
	prompt := buildPrompt(core.PeriodStats{}, core.PeriodDay)
	if !strings.Contains(prompt, "нет данных") {
		t.Fatalf("empty breakdown should be reported as no data:\n%s", prompt)
	}
	if !strings.Contains(prompt, "день") {
		t.Fatalf("expected period name in prompt:\n%s", prompt)
	}
}
