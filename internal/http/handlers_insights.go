package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"kopilka/internal/advice"
	"kopilka/internal/core"
	"kopilka/internal/log"
)

type balancesResponse struct {
	Current core.Money `json:"current"`
	Savings core.Money `json:"savings"`
	Total   core.Money `json:"total"`
}

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		b := core.ComputeBalances(s.ledger.All(), s.ledger.Balances())
		writeJSON(w, http.StatusOK, balancesResponse{
			Current: b.Current,
			Savings: b.Savings,
			Total:   b.Total,
		})
	case http.MethodPut:
		var initial core.InitialBalances
		if err := DecodeBody(r, &initial); err != nil {
			writeError(w, http.StatusBadRequest, "malformed balances body")
			return
		}
		s.ledger.SetInitialBalances(r.Context(), initial)
		s.invalidateDerived()

		b := core.ComputeBalances(s.ledger.All(), initial)
		writeJSON(w, http.StatusOK, balancesResponse{
			Current: b.Current,
			Savings: b.Savings,
			Total:   b.Total,
		})
	default:
		methodNotAllowed(w, "GET, PUT")
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	q, err := ParseStatsQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if q.MonthMode {
		key := "month:" + q.Month.String()
		if cached, found := s.monthCache.Get(key); found {
			writeJSON(w, http.StatusOK, cached)
			return
		}
		stats := core.ComputeMonthStats(s.ledger.All(), q.Month)
		s.monthCache.Set(key, stats)
		writeJSON(w, http.StatusOK, stats)
		return
	}

	key := string(q.Period)
	if cached, found := s.statsCache.Get(key); found {
		writeJSON(w, http.StatusOK, cached)
		return
	}
	stats := core.ComputeStats(s.ledger.All(), q.Period, time.Now())
	s.statsCache.Set(key, stats)
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	goal := s.ledger.Goal()
	override, ok, err := ParseGoalOverride(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if ok {
		goal = override
	}

	key := strconv.FormatInt(goal.Cents, 10)
	if cached, found := s.forecastCache.Get(key); found {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	txs := s.ledger.All()
	savings := core.ComputeBalances(txs, s.ledger.Balances()).Savings
	fc := core.ComputeSavingsForecast(txs, goal, savings, time.Now())
	s.forecastCache.Set(key, fc)
	writeJSON(w, http.StatusOK, fc)
}

type goalPayload struct {
	Goal core.Money `json:"goal"`
}

func (s *Server) handleGoal(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, goalPayload{Goal: s.ledger.Goal()})
	case http.MethodPut:
		var payload goalPayload
		if err := DecodeBody(r, &payload); err != nil {
			writeError(w, http.StatusBadRequest, "malformed goal body")
			return
		}
		if payload.Goal.Cents < 0 {
			writeError(w, http.StatusUnprocessableEntity, "goal must not be negative")
			return
		}
		s.ledger.SetGoal(r.Context(), payload.Goal)
		s.invalidateDerived()
		writeJSON(w, http.StatusOK, payload)
	default:
		methodNotAllowed(w, "GET, PUT")
	}
}

type adviceResponse struct {
	Period core.Period `json:"period"`
	Advice string      `json:"advice"`
}

func (s *Server) handleAdvice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	if s.advisor == nil {
		writeError(w, http.StatusServiceUnavailable, "advice generator not configured")
		return
	}

	q, err := ParseStatsQuery(r.URL.Query())
	if err != nil || q.MonthMode {
		writeError(w, http.StatusBadRequest, "advice requires a period of day, week or month")
		return
	}

	stats := core.ComputeStats(s.ledger.All(), q.Period, time.Now())
	text, err := s.advisor.Generate(r.Context(), stats, q.Period)
	if err != nil {
		if errors.Is(err, advice.ErrNotConfigured) {
			writeError(w, http.StatusServiceUnavailable, "advice generator not configured")
			return
		}
		slog.ErrorContext(r.Context(), "Advice generation failed",
			log.FieldError, err.Error(),
			log.FieldPeriod, string(q.Period),
			log.FieldComponent, log.ComponentAdvice)
		writeError(w, http.StatusBadGateway, "advice generation failed")
		return
	}

	writeJSON(w, http.StatusOK, adviceResponse{Period: q.Period, Advice: text})
}
