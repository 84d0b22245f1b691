package marketplace

import "time"

// Status is a job's lifecycle state. Payment runs as a parallel boolean:
// a paid job is never PENDING.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
)

// Job is a unit of work posted by a client, optionally assigned to a
// freelancer. Price is nil until the freelancer quotes one.
type Job struct {
	ID            string
	Title         string
	Description   string
	EstimatedTime string
	ClientID      string
	FreelancerID  string
	Price         *int
	Paid          bool
	Status        Status
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CreateParams contains the client-supplied fields for a new job.
type CreateParams struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	EstimatedTime string `json:"estimatedTime"`
	FreelancerID  string `json:"freelancerId"`
}
