// Package advice turns period statistics into short free-text tips via
// an external text-generation model. It is purely additive: nothing
// here is required for core correctness and failures never affect
// financial state.
package advice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"

	"kopilka/internal/core"
)

const defaultModel = "gemini-2.5-flash-lite"

var ErrNotConfigured = errors.New("advice generator not configured: set GEMINI_API_KEY")

type Generator struct {
	client *genai.Client
	model  string
}

// NewFromEnv creates a generator when GEMINI_API_KEY is set and returns
// ErrNotConfigured otherwise so callers can degrade gracefully.
func NewFromEnv(ctx context.Context) (*Generator, error) {
	if strings.TrimSpace(os.Getenv("GEMINI_API_KEY")) == "" {
		return nil, ErrNotConfigured
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	model := strings.TrimSpace(os.Getenv("GEMINI_MODEL"))
	if model == "" {
		model = defaultModel
	}

	return &Generator{client: client, model: model}, nil
}

// Generate produces advice text for the given window statistics.
func (g *Generator) Generate(ctx context.Context, stats core.PeriodStats, period core.Period) (string, error) {
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: buildPrompt(stats, period)}},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("empty response from model")
	}
	return text, nil
}

var periodNames = map[core.Period]string{
	core.PeriodDay:   "день",
	core.PeriodWeek:  "неделю",
	core.PeriodMonth: "месяц",
}

func buildPrompt(stats core.PeriodStats, period core.Period) string {
	var shares []string
	for _, share := range stats.CategoryBreakdown {
		name := core.ResolveCategory(share.Category, core.Expense).Name
		shares = append(shares, fmt.Sprintf("%s: %.2f (%.0f%%)", name, share.Amount.Units(), share.Percent))
	}
	breakdown := strings.Join(shares, ", ")
	if breakdown == "" {
		breakdown = "нет данных"
	}

	sign := ""
	if stats.ExpenseChange > 0 {
		sign = "+"
	}

	return fmt.Sprintf(`Ты — персональный финансовый помощник. Проанализируй расходы пользователя за %s и дай краткие советы.

Данные:
- Расходы: %.2f
- Доходы: %.2f
- Баланс: %.2f
- Изменение расходов: %s%.0f%% по сравнению с прошлым периодом
- Категории расходов: %s

Ответь кратко (3-4 пункта), используй эмодзи. Формат:
📊 Краткий анализ
💡 1-2 совета по оптимизации
⚠️ Предупреждение (если есть проблема)`,
		periodNames[period],
		stats.Expenses.Units(),
		stats.Income.Units(),
		stats.Balance.Units(),
		sign, stats.ExpenseChange,
		breakdown)
}
