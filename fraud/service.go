package fraud

import (
	"context"
	"errors"
)

var (
	// ErrMissingFields signals a report without a target or description.
	ErrMissingFields = errors.New("fraud: reported user and description are required")
	// ErrSelfReport signals a user reporting themselves.
	ErrSelfReport = errors.New("fraud: cannot report yourself")
	// ErrAdminReporter signals an admin filing a report. Admins review
	// reports, they do not file them.
	ErrAdminReporter = errors.New("fraud: admins cannot file reports")
)

// Service handles filing and admin review of fraud reports.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// File records a new PENDING report from reporterID. isAdmin callers are
// rejected.
func (s *Service) File(ctx context.Context, reporterID string, isAdmin bool, params FileParams) (Report, error) {
	if isAdmin {
		return Report{}, ErrAdminReporter
	}
	if params.ReportedUserID == "" || params.Description == "" {
		return Report{}, ErrMissingFields
	}
	if params.ReportedUserID == reporterID {
		return Report{}, ErrSelfReport
	}
	return s.repo.CreateReport(ctx, CreateReportParams{
		ReporterID:     reporterID,
		ReportedUserID: params.ReportedUserID,
		Description:    params.Description,
	})
}

// Reports lists every filed report for admin review.
func (s *Service) Reports(ctx context.Context) ([]Report, error) {
	return s.repo.ListReports(ctx)
}

// Resolve marks a report reviewed.
func (s *Service) Resolve(ctx context.Context, reportID string) (Report, error) {
	return s.repo.UpdateStatus(ctx, reportID, StatusResolved)
}
