package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"gigflow/fraud"
	"gigflow/users"
)

func (s *Server) handleFileReport(w http.ResponseWriter, r *http.Request) {
	var params fraud.FileParams
	if !decodeJSON(w, r, &params) {
		return
	}

	report, err := s.fraud.File(r.Context(), callerID(r), callerRole(r) == users.RoleAdmin, params)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":     report.ID,
		"status": report.Status,
	})
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	list, err := s.fraud.Reports(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReportResponses(list))
}

func (s *Server) handleResolveReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.fraud.Resolve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":     report.ID,
		"status": report.Status,
	})
}
