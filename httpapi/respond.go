package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"gigflow/fraud"
	"gigflow/marketplace"
	"gigflow/quizgen"
	"gigflow/users"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeDomainError maps domain sentinel errors to HTTP statuses. Unknown
// errors become a 500 without leaking internals.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, users.ErrUserNotFound),
		errors.Is(err, users.ErrNoQuiz),
		errors.Is(err, marketplace.ErrJobNotFound),
		errors.Is(err, fraud.ErrReportNotFound):
		writeError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, users.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())

	case errors.Is(err, marketplace.ErrForbidden),
		errors.Is(err, fraud.ErrAdminReporter):
		writeError(w, http.StatusForbidden, err.Error())

	case errors.Is(err, marketplace.ErrPriceAlreadySet),
		errors.Is(err, marketplace.ErrNoPrice),
		errors.Is(err, marketplace.ErrAlreadyPaid),
		errors.Is(err, marketplace.ErrJobPaid),
		errors.Is(err, marketplace.ErrJobCompleted),
		errors.Is(err, marketplace.ErrJobNotActive),
		errors.Is(err, marketplace.ErrNotPending),
		errors.Is(err, users.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, err.Error())

	case errors.Is(err, users.ErrMissingFields),
		errors.Is(err, users.ErrNotCandidate),
		errors.Is(err, marketplace.ErrMissingFields),
		errors.Is(err, marketplace.ErrInvalidPrice),
		errors.Is(err, fraud.ErrMissingFields),
		errors.Is(err, fraud.ErrSelfReport),
		errors.Is(err, quizgen.ErrNotPDF),
		errors.Is(err, quizgen.ErrMalformedQuiz),
		errors.Is(err, quizgen.ErrBadAnswers):
		writeError(w, http.StatusBadRequest, err.Error())

	default:
		slog.Error("internal error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
