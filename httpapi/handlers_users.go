package httpapi

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gigflow/users"
)

// maxResumeSize caps freelancer resume uploads at 8 MiB.
const maxResumeSize = 8 << 20

func (s *Server) handleRegisterClient(w http.ResponseWriter, r *http.Request) {
	var req users.RegisterClientRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := s.users.RegisterClient(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

func (s *Server) handleRegisterFreelancer(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxResumeSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "resume file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxResumeSize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read resume file")
		return
	}

	candidate, err := s.users.RegisterCandidate(r.Context(), data)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": candidate.ID})
}

func (s *Server) handleGetQuiz(w http.ResponseWriter, r *http.Request) {
	payload, err := s.users.Quiz(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	// The quiz payload is model output passed through verbatim (answer key
	// stripped), possibly fenced. Clients run their tolerant parser on it.
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, payload); err != nil {
		return
	}
}

func (s *Server) handleSubmitQuiz(w http.ResponseWriter, r *http.Request) {
	// The client echoes its parsed quiz copy alongside the answers; grading
	// only trusts the server-held key.
	var req struct {
		Quiz    string `json:"quiz"`
		Answers string `json:"answers"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := s.users.EvaluateQuiz(r.Context(), chi.URLParam(r, "id"), req.Answers)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCompleteProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := s.users.CompleteProfile(r.Context(), chi.URLParam(r, "id"), req.Name, req.Email, req.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req users.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := s.users.Login(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token": result.Token,
		"user": map[string]any{
			"id":   result.User.ID,
			"name": result.User.Name,
			"role": result.User.Role,
		},
	})
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req users.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, err := s.users.AdminLogin(r.Context(), req.Email, req.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleListFreelancers(w http.ResponseWriter, r *http.Request) {
	list, err := s.users.Freelancers(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponses(list))
}
