package client

// JobStatus is a job's server-side lifecycle state as seen by clients.
type JobStatus string

const (
	JobPending   JobStatus = "PENDING"
	JobActive    JobStatus = "ACTIVE"
	JobCompleted JobStatus = "COMPLETED"
)

// Job is the wire shape of a platform job. Price is null until the assigned
// freelancer quotes one.
type Job struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	EstimatedTime string    `json:"estimatedTime"`
	ClientID      string    `json:"clientId"`
	FreelancerID  string    `json:"freelancerId,omitempty"`
	Price         *int      `json:"price"`
	Paid          bool      `json:"paid"`
	Status        JobStatus `json:"status"`
}

// User is the wire shape of a platform account.
type User struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Phone    string  `json:"phone,omitempty"`
	Role     string  `json:"role"`
	Skills   string  `json:"skills,omitempty"`
	Active   bool    `json:"active"`
	Earnings float64 `json:"earnings"`
}

// RegisterClientRequest contains client self-registration fields.
type RegisterClientRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

// CreateJobRequest contains the fields for posting a job.
type CreateJobRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	EstimatedTime string `json:"estimatedTime"`
	FreelancerID  string `json:"freelancerId"`
}

// QuizResult is the grading verdict. Name and Email prefill the profile
// form on a pass when the resume yielded them.
type QuizResult struct {
	Passed bool   `json:"passed"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
}

// FraudReport is the wire shape of a fraud report.
type FraudReport struct {
	ID             string `json:"id"`
	ReporterID     string `json:"reporterId"`
	ReportedUserID string `json:"reportedUserId"`
	Description    string `json:"description"`
	Status         string `json:"status"`
}
