package http

import (
	"errors"
	"log/slog"
	"net/http"

	"kopilka/internal/core"
	"kopilka/internal/ledger"
	"kopilka/internal/log"
)

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listTransactions(w, r)
	case http.MethodPost:
		s.createTransaction(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	txs := s.ledger.All()

	if r.URL.Query().Get("grouped") == "1" {
		groups := ledger.GroupByDate(txs)
		if groups == nil {
			groups = []ledger.DayGroup{}
		}
		writeJSON(w, http.StatusOK, groups)
		return
	}

	if txs == nil {
		txs = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	var tx core.Transaction
	if err := DecodeBody(r, &tx); err != nil {
		slog.ErrorContext(r.Context(), "Transaction decode error", "error", err)
		writeError(w, http.StatusBadRequest, "malformed transaction body")
		return
	}
	tx.Category = sanitizeInput(tx.Category)

	created, err := s.ledger.Add(r.Context(), tx)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.invalidateDerived()

	slog.InfoContext(r.Context(), "Transaction created",
		log.FieldTxID, created.ID,
		log.FieldTxType, string(created.Type),
		log.FieldCategory, created.Category,
		log.FieldAmountCents, created.Amount.Cents)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	id := TransactionID(r.URL.Path)
	if id == "" {
		writeError(w, http.StatusNotFound, "missing transaction id")
		return
	}

	switch r.Method {
	case http.MethodPut:
		s.updateTransaction(w, r, id)
	case http.MethodDelete:
		s.deleteTransaction(w, r, id)
	default:
		methodNotAllowed(w, "PUT, DELETE")
	}
}

func (s *Server) updateTransaction(w http.ResponseWriter, r *http.Request, id string) {
	var tx core.Transaction
	if err := DecodeBody(r, &tx); err != nil {
		if errors.Is(err, errNoBody) {
			writeError(w, http.StatusBadRequest, "empty request body")
			return
		}
		slog.ErrorContext(r.Context(), "Transaction decode error", "error", err, "transaction_id", id)
		writeError(w, http.StatusBadRequest, "malformed transaction body")
		return
	}

	// The path id wins over whatever the body carries.
	tx.ID = id
	tx.Category = sanitizeInput(tx.Category)
	if tx.Type == core.Transfer {
		tx.Category = "transfer"
	}
	if err := tx.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.ledger.Update(r.Context(), tx)
	s.invalidateDerived()
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request, id string) {
	s.ledger.Delete(r.Context(), id)
	s.invalidateDerived()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"expense":  core.ExpenseCategories,
		"income":   core.IncomeCategories,
		"accounts": core.Accounts,
	})
}
