package http

import (
	"net/http"

	"ledgerly/internal/amqp"
	"ledgerly/internal/log"
)

const (
	kindIncome   = amqp.KindIncome
	kindExpense  = amqp.KindExpense
	kindInvoice  = amqp.KindInvoice
	kindTransfer = amqp.KindTransfer
)

func (s *Server) handleListIncomes(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	items, err := s.deps.Ledger.ListIncomes(r.Context(), userID)
	if err != nil {
		writeError(w, r, err, log.OpList)
		return
	}
	NewJSONResponse().Body(incomeViews(items)).Write(w)
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req incomeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, log.OpCreate)
		return
	}
	in, err := req.toIncome(userID)
	if err != nil {
		writeError(w, r, err, log.OpCreate)
		return
	}
	id, err := s.deps.Ledger.AddIncome(r.Context(), in)
	if err != nil {
		writeError(w, r, err, log.OpCreate)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(createdView{ID: id}).Write(w)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	items, err := s.deps.Ledger.ListExpenses(r.Context(), userID)
	if err != nil {
		writeError(w, r, err, log.OpList)
		return
	}
	NewJSONResponse().Body(expenseViews(items)).Write(w)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, log.OpCreate)
		return
	}
	e, err := req.toExpense(userID)
	if err != nil {
		writeError(w, r, err, log.OpCreate)
		return
	}
	id, err := s.deps.Ledger.AddExpense(r.Context(), e)
	if err != nil {
		writeError(w, r, err, log.OpCreate)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(createdView{ID: id}).Write(w)
}

func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	items, err := s.deps.Ledger.ListInvoices(r.Context(), userID)
	if err != nil {
		writeError(w, r, err, log.OpList)
		return
	}
	NewJSONResponse().Body(invoiceViews(items)).Write(w)
}

func (s *Server) handleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req invoiceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, log.OpCreate)
		return
	}
	inv, err := req.toInvoice(userID)
	if err != nil {
		writeError(w, r, err, log.OpCreate)
		return
	}
	id, err := s.deps.Ledger.AddInvoice(r.Context(), inv)
	if err != nil {
		writeError(w, r, err, log.OpCreate)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(createdView{ID: id}).Write(w)
}

func (s *Server) handleMarkInvoicePaid(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err, log.OpUpdate)
		return
	}
	if err := s.deps.Ledger.MarkInvoicePaid(r.Context(), userID, id); err != nil {
		writeError(w, r, err, log.OpUpdate)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListTransfers(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	items, err := s.deps.Ledger.ListTransfers(r.Context(), userID)
	if err != nil {
		writeError(w, r, err, log.OpList)
		return
	}
	NewJSONResponse().Body(transferViews(items)).Write(w)
}

func (s *Server) handleCreateTransfer(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req transferRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, log.OpCreate)
		return
	}
	t, err := req.toTransfer(userID)
	if err != nil {
		writeError(w, r, err, log.OpCreate)
		return
	}
	id, err := s.deps.Ledger.AddTransfer(r.Context(), t)
	if err != nil {
		writeError(w, r, err, log.OpCreate)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(createdView{ID: id}).Write(w)
}

// handleDelete removes one entry of kind owned by the caller.
func (s *Server) handleDelete(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		id, err := pathID(r)
		if err != nil {
			writeError(w, r, err, log.OpDelete)
			return
		}
		if err := s.deps.Ledger.Delete(r.Context(), userID, kind, id); err != nil {
			writeError(w, r, err, log.OpDelete)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
