package fraud

import "time"

// ReportStatus tracks admin review of a fraud report.
type ReportStatus string

const (
	StatusPending  ReportStatus = "PENDING"
	StatusResolved ReportStatus = "RESOLVED"
)

// Report is a complaint one platform user files against another. Reports are
// write-once for the reporter; only admins change their status.
type Report struct {
	ID             string
	ReporterID     string
	ReportedUserID string
	Description    string
	Status         ReportStatus
	CreatedAt      time.Time
}

// FileParams contains the reporter-supplied fields for a new report.
type FileParams struct {
	ReportedUserID string `json:"reportedUserId"`
	Description    string `json:"description"`
}
