// Package http provides the JSON API server.
//
// This file implements utilities for parsing and validating HTTP request
// data. It consolidates the query-parameter and body-decoding patterns
// shared by the handlers.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"kopilka/internal/core"
)

// maxBodyBytes caps request bodies; ledger records are tiny.
const maxBodyBytes = 1 << 16

var errNoBody = errors.New("empty request body")

// StatsQuery holds the parsed parameters of a stats request. Exactly
// one of Period or Month is set: a month parameter selects fixed
// calendar-month mode, otherwise the rolling-window mode applies.
type StatsQuery struct {
	Period    core.Period
	Month     core.MonthKey
	MonthMode bool
}

// ParseStatsQuery extracts period/month from query parameters. The
// period defaults to month when absent.
func ParseStatsQuery(query url.Values) (StatsQuery, error) {
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		key, err := core.ParseMonthKey(v)
		if err != nil {
			return StatsQuery{}, fmt.Errorf("invalid month %q: expected YYYY-MM", v)
		}
		return StatsQuery{Month: key, MonthMode: true}, nil
	}

	period := core.PeriodMonth
	if v := strings.TrimSpace(query.Get("period")); v != "" {
		period = core.Period(v)
		if !period.IsValid() {
			return StatsQuery{}, fmt.Errorf("invalid period %q: expected day, week or month", v)
		}
	}
	return StatsQuery{Period: period}, nil
}

// ParseGoalOverride reads an optional ?goal= decimal amount. The zero
// return with ok=false means no override was requested. Unlike
// transaction amounts, a goal of zero is acceptable: it simply means
// no target is set and progress reads as zero.
func ParseGoalOverride(query url.Values) (core.Money, bool, error) {
	v := strings.TrimSpace(query.Get("goal"))
	if v == "" {
		return core.Money{}, false, nil
	}
	if isZeroDecimal(v) {
		return core.Money{}, true, nil
	}
	cents, err := core.ParseDecimalToCents(v)
	if err != nil {
		return core.Money{}, false, fmt.Errorf("invalid goal %q: %w", v, err)
	}
	return core.Money{Cents: cents}, true, nil
}

// isZeroDecimal reports whether s is a well-formed decimal that equals
// zero, e.g. "0", "0.00" or "0,0".
func isZeroDecimal(s string) bool {
	s = strings.ReplaceAll(s, ",", ".")
	digits := 0
	seps := 0
	for _, r := range s {
		switch {
		case r == '.':
			seps++
			if seps > 1 {
				return false
			}
		case r == '0':
			digits++
		default:
			return false
		}
	}
	return digits > 0
}

// TransactionID extracts the trailing path element of a
// /api/transactions/{id} request.
func TransactionID(path string) string {
	id := strings.TrimPrefix(path, "/api/transactions/")
	return strings.Trim(id, "/")
}

// DecodeBody parses a JSON request body into dst, enforcing the size cap.
func DecodeBody(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if len(body) == 0 {
		return errNoBody
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
