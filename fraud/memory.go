package fraud

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory Repository for dev mode and HTTP-level
// tests.
type MemoryRepository struct {
	mu      sync.Mutex
	reports map[string]Report
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{reports: make(map[string]Report)}
}

func (m *MemoryRepository) CreateReport(_ context.Context, params CreateReportParams) (Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	report := Report{
		ID:             uuid.NewString(),
		ReporterID:     params.ReporterID,
		ReportedUserID: params.ReportedUserID,
		Description:    params.Description,
		Status:         StatusPending,
		CreatedAt:      time.Now().UTC(),
	}
	m.reports[report.ID] = report
	return report, nil
}

func (m *MemoryRepository) GetReport(_ context.Context, reportID string) (Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	report, ok := m.reports[reportID]
	if !ok {
		return Report{}, ErrReportNotFound
	}
	return report, nil
}

func (m *MemoryRepository) UpdateStatus(_ context.Context, reportID string, status ReportStatus) (Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	report, ok := m.reports[reportID]
	if !ok {
		return Report{}, ErrReportNotFound
	}
	report.Status = status
	m.reports[reportID] = report
	return report, nil
}

func (m *MemoryRepository) ListReports(_ context.Context) ([]Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := []Report{}
	for _, report := range m.reports {
		list = append(list, report)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list, nil
}
