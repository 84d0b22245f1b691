package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gigflow/marketplace"
)

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var params marketplace.CreateParams
	if !decodeJSON(w, r, &params) {
		return
	}

	job, err := s.jobs.Post(r.Context(), callerID(r), params)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toJobResponse(job))
}

func (s *Server) handleClientJobs(w http.ResponseWriter, r *http.Request) {
	list, err := s.jobs.JobsForClient(r.Context(), callerID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toJobResponses(list))
}

func (s *Server) handleFreelancerJobs(w http.ResponseWriter, r *http.Request) {
	// The path carries the freelancer id, but the listing is always scoped to
	// the token's subject.
	if chi.URLParam(r, "id") != callerID(r) {
		writeError(w, http.StatusForbidden, "cannot list another freelancer's jobs")
		return
	}

	list, err := s.jobs.JobsForFreelancer(r.Context(), callerID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toJobResponses(list))
}

func (s *Server) handleSetPrice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Price int `json:"price"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	job, err := s.jobs.SetPrice(r.Context(), callerID(r), chi.URLParam(r, "id"), req.Price)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toJobResponse(job))
}

func (s *Server) handleAcceptJob(w http.ResponseWriter, r *http.Request) {
	s.jobTransition(w, r, s.jobs.Accept)
}

func (s *Server) handleIgnoreJob(w http.ResponseWriter, r *http.Request) {
	s.jobTransition(w, r, s.jobs.Ignore)
}

func (s *Server) handleCompleteJob(w http.ResponseWriter, r *http.Request) {
	s.jobTransition(w, r, s.jobs.Complete)
}

func (s *Server) handlePayJob(w http.ResponseWriter, r *http.Request) {
	s.jobTransition(w, r, s.jobs.Pay)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	if err := s.jobs.Delete(r.Context(), callerID(r), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// jobTransition runs one single-round-trip lifecycle transition keyed by the
// caller's token subject and the job id in the path.
func (s *Server) jobTransition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, callerID, jobID string) (marketplace.Job, error)) {
	job, err := fn(r.Context(), callerID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toJobResponse(job))
}
