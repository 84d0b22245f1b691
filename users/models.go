package users

import "time"

type Role string

const (
	RoleFreelancer Role = "FREELANCER"
	RoleClient     Role = "CLIENT"
	RoleAdmin      Role = "ADMIN"
)

// User is the domain representation of a platform account. Freelancer
// candidates exist as inactive users until they pass the quiz and complete
// their profile. No JSON annotations here so the HTTP layer controls what is
// exposed (password hashes and resume text stay server-side).
type User struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	Role         Role
	Skills       string
	ResumeText   string
	Active       bool
	Earnings     float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RegisterClientRequest contains client self-registration data.
type RegisterClientRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// LoginRequest contains login credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// QuizResult is returned after grading a candidate's quiz submission. Name
// and Email are populated on a pass so the profile form can be prefilled
// from the parsed resume.
type QuizResult struct {
	Passed bool   `json:"passed"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
}
