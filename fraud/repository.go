package fraud

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrReportNotFound signals that the report does not exist.
var ErrReportNotFound = errors.New("fraud: report not found")

// Repository handles data access for fraud reports.
type Repository interface {
	CreateReport(ctx context.Context, params CreateReportParams) (Report, error)
	GetReport(ctx context.Context, reportID string) (Report, error)
	UpdateStatus(ctx context.Context, reportID string, status ReportStatus) (Report, error)
	ListReports(ctx context.Context) ([]Report, error)
}

// CreateReportParams contains write parameters for filing reports.
type CreateReportParams struct {
	ReporterID     string
	ReportedUserID string
	Description    string
}

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a PostgreSQL-backed fraud repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const reportColumns = `id, reporter_id, reported_user_id, description, status, created_at`

func (r *PGRepository) CreateReport(ctx context.Context, params CreateReportParams) (Report, error) {
	const insertSQL = `
		INSERT INTO fraud_reports (reporter_id, reported_user_id, description, status)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + reportColumns

	report, err := scanReport(r.pool.QueryRow(ctx, insertSQL,
		params.ReporterID, params.ReportedUserID, params.Description, StatusPending))
	if err != nil {
		return Report{}, fmt.Errorf("fraud: create report: %w", err)
	}
	return report, nil
}

func (r *PGRepository) GetReport(ctx context.Context, reportID string) (Report, error) {
	report, err := scanReport(r.pool.QueryRow(ctx,
		`SELECT `+reportColumns+` FROM fraud_reports WHERE id = $1`, reportID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Report{}, ErrReportNotFound
		}
		return Report{}, fmt.Errorf("fraud: get report: %w", err)
	}
	return report, nil
}

func (r *PGRepository) UpdateStatus(ctx context.Context, reportID string, status ReportStatus) (Report, error) {
	report, err := scanReport(r.pool.QueryRow(ctx,
		`UPDATE fraud_reports SET status = $2 WHERE id = $1 RETURNING `+reportColumns,
		reportID, status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Report{}, ErrReportNotFound
		}
		return Report{}, fmt.Errorf("fraud: update report status: %w", err)
	}
	return report, nil
}

func (r *PGRepository) ListReports(ctx context.Context) ([]Report, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+reportColumns+` FROM fraud_reports ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("fraud: list reports: %w", err)
	}
	defer rows.Close()

	list := []Report{}
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("fraud: scan report row: %w", err)
		}
		list = append(list, report)
	}
	return list, rows.Err()
}

func scanReport(row pgx.Row) (Report, error) {
	var report Report
	err := row.Scan(
		&report.ID,
		&report.ReporterID,
		&report.ReportedUserID,
		&report.Description,
		&report.Status,
		&report.CreatedAt,
	)
	if err != nil {
		return Report{}, err
	}
	return report, nil
}
