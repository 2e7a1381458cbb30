package http

import (
	"fmt"
	"net/http"

	"ledgerly/internal/log"
	"ledgerly/internal/services"
)

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	st, err := s.deps.Ledger.GetSettings(r.Context(), userID)
	if err != nil {
		writeError(w, r, err, log.OpRead)
		return
	}
	NewJSONResponse().Body(newSettingsView(st)).Write(w)
}

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req settingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, log.OpUpdate)
		return
	}
	st, err := req.toSettings(userID)
	if err != nil {
		writeError(w, r, err, log.OpUpdate)
		return
	}
	if err := s.deps.Ledger.SaveSettings(r.Context(), st); err != nil {
		writeError(w, r, err, log.OpUpdate)
		return
	}
	NewJSONResponse().Body(newSettingsView(st)).Write(w)
}

// handleGetBankDetails returns the caller's bank details. The account number
// is masked unless ?full=true.
func (s *Server) handleGetBankDetails(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	full, err := boolQuery(r, "full")
	if err != nil {
		writeError(w, r, err, log.OpRead)
		return
	}
	b, err := s.deps.BankDetails.Get(r.Context(), userID, full)
	if err != nil {
		writeError(w, r, err, log.OpRead)
		return
	}
	NewJSONResponse().Body(newBankDetailsView(b)).Write(w)
}

func (s *Server) handleSaveBankDetails(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req bankDetailsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, log.OpUpdate)
		return
	}
	b := req.toBankDetails(userID)
	if err := b.Validate(); err != nil {
		writeError(w, r, fmt.Errorf("%w: %w", services.ErrValidation, err), log.OpUpdate)
		return
	}
	if err := s.deps.BankDetails.Save(r.Context(), b); err != nil {
		writeError(w, r, err, log.OpUpdate)
		return
	}

	masked := b
	masked.AccountNumber = b.MaskedAccountNumber()
	NewJSONResponse().Body(newBankDetailsView(masked)).Write(w)
}
