package http

import (
	"errors"
	"net/http"
	"strings"

	"ledgerly/internal/advisor"
	"ledgerly/internal/core"
	"ledgerly/internal/ledger"
	"ledgerly/internal/log"
	"ledgerly/internal/middleware/auth"
	"ledgerly/internal/services"
	"ledgerly/internal/summary"
	"ledgerly/internal/vault"
)

// validationErrors are the entry-level sentinels reported back to the caller
// verbatim.
var validationErrors = []error{
	services.ErrValidation,
	advisor.ErrQuestionTooLong,
	core.ErrInvalidAmount,
	core.ErrInvalidDate,
	core.ErrEmptyDescription,
	core.ErrEmptyCategory,
	core.ErrInvalidAccount,
	core.ErrSameAccount,
	core.ErrEmptyClient,
	core.ErrInvalidEmail,
	core.ErrInvalidTaxRate,
	core.ErrInvalidCurrency,
}

func isValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// errorResponse maps an error to its status code and public message.
// Internal causes are never echoed for 5xx responses.
func errorResponse(err error) *JSONResponseBuilder {
	switch {
	case errors.Is(err, errBadRequest):
		return BadRequestError(err.Error())
	case isValidation(err):
		return UnprocessableEntityError(strings.TrimPrefix(err.Error(), services.ErrValidation.Error()+": "))
	case errors.Is(err, ledger.ErrNotFound):
		return NotFoundError("not found")
	case errors.Is(err, auth.ErrMissingToken), errors.Is(err, auth.ErrInvalidToken):
		return UnauthorizedError(err.Error())
	case errors.Is(err, summary.ErrSummaryUnavailable):
		return ServiceUnavailableError("summary unavailable")
	case errors.Is(err, advisor.ErrDisabled):
		return ServiceUnavailableError("advisor disabled")
	case errors.Is(err, vault.ErrDisabled):
		return ServiceUnavailableError("bank details storage disabled")
	default:
		return InternalServerError()
	}
}

// writeError logs err at a level matching its status and writes the JSON error.
func writeError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	resp := errorResponse(err)
	logger := log.FromContext(r.Context()).WithComponent(log.ComponentHTTP)
	switch {
	case resp.statusCode >= http.StatusInternalServerError:
		logger.ErrorContext(r.Context(), "Request failed",
			log.FieldOperation, operation,
			log.FieldStatusCode, resp.statusCode,
			log.FieldError, err)
	default:
		logger.DebugContext(r.Context(), "Request rejected",
			log.FieldOperation, operation,
			log.FieldStatusCode, resp.statusCode,
			log.FieldError, err)
	}
	resp.Write(w)
}

// requireUser returns the authenticated user id. The auth middleware
// guarantees it for every /api route.
func requireUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		UnauthorizedError(auth.ErrMissingToken.Error()).Write(w)
		return 0, false
	}
	return userID, true
}
