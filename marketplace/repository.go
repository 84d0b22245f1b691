package marketplace

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrJobNotFound signals that the job does not exist.
var ErrJobNotFound = errors.New("marketplace: job not found")

// Repository handles data access for jobs.
//
// Transition applies mutate to the current row while holding it exclusively,
// so two concurrent lifecycle changes on one job serialize instead of
// overwriting each other. mutate sees the committed state; returning an
// error aborts without writing.
type Repository interface {
	CreateJob(ctx context.Context, params CreateJobParams) (Job, error)
	GetJob(ctx context.Context, jobID string) (Job, error)
	Transition(ctx context.Context, jobID string, mutate func(*Job) error) (Job, error)
	DeleteJob(ctx context.Context, jobID string) error
	ListByClient(ctx context.Context, clientID string) ([]Job, error)
	ListByFreelancer(ctx context.Context, freelancerID string) ([]Job, error)
	ListAll(ctx context.Context) ([]Job, error)
}

// CreateJobParams contains write parameters for creating jobs.
type CreateJobParams struct {
	Title         string
	Description   string
	EstimatedTime string
	ClientID      string
	FreelancerID  string
}

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a PostgreSQL-backed jobs repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const jobColumns = `id, title, description, estimated_time, client_id, freelancer_id, price, paid, status, created_at, updated_at`

func (r *PGRepository) CreateJob(ctx context.Context, params CreateJobParams) (Job, error) {
	const insertSQL = `
		INSERT INTO jobs (title, description, estimated_time, client_id, freelancer_id, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + jobColumns

	var freelancerID *string
	if params.FreelancerID != "" {
		freelancerID = &params.FreelancerID
	}

	job, err := scanJob(r.pool.QueryRow(ctx, insertSQL,
		params.Title, params.Description, params.EstimatedTime,
		params.ClientID, freelancerID, StatusPending))
	if err != nil {
		return Job{}, fmt.Errorf("marketplace: create job: %w", err)
	}
	return job, nil
}

func (r *PGRepository) GetJob(ctx context.Context, jobID string) (Job, error) {
	job, err := scanJob(r.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1`, jobID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Job{}, ErrJobNotFound
		}
		return Job{}, fmt.Errorf("marketplace: get job: %w", err)
	}
	return job, nil
}

func (r *PGRepository) Transition(ctx context.Context, jobID string, mutate func(*Job) error) (Job, error) {
	const updateSQL = `
		UPDATE jobs
		SET freelancer_id=$2, price=$3, paid=$4, status=$5, updated_at=NOW()
		WHERE id=$1
		RETURNING ` + jobColumns

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Job{}, fmt.Errorf("marketplace: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	job, err := scanJob(tx.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1 FOR UPDATE`, jobID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Job{}, ErrJobNotFound
		}
		return Job{}, fmt.Errorf("marketplace: lock job: %w", err)
	}

	if err := mutate(&job); err != nil {
		return Job{}, err
	}

	var freelancerID *string
	if job.FreelancerID != "" {
		freelancerID = &job.FreelancerID
	}
	updated, err := scanJob(tx.QueryRow(ctx, updateSQL,
		job.ID, freelancerID, job.Price, job.Paid, job.Status))
	if err != nil {
		return Job{}, fmt.Errorf("marketplace: update job: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Job{}, fmt.Errorf("marketplace: commit tx: %w", err)
	}
	return updated, nil
}

func (r *PGRepository) DeleteJob(ctx context.Context, jobID string) error {
	// Conditional delete so a payment landing after the caller's precondition
	// check cannot be erased together with the row.
	tag, err := r.pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1 AND NOT paid`, jobID)
	if err != nil {
		return fmt.Errorf("marketplace: delete job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var paid bool
		err := r.pool.QueryRow(ctx, `SELECT paid FROM jobs WHERE id = $1`, jobID).Scan(&paid)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrJobNotFound
		}
		if err != nil {
			return fmt.Errorf("marketplace: delete job: %w", err)
		}
		return ErrJobPaid
	}
	return nil
}

func (r *PGRepository) ListByClient(ctx context.Context, clientID string) ([]Job, error) {
	return r.list(ctx, `SELECT `+jobColumns+` FROM jobs WHERE client_id = $1 ORDER BY created_at`, clientID)
}

func (r *PGRepository) ListByFreelancer(ctx context.Context, freelancerID string) ([]Job, error) {
	return r.list(ctx, `SELECT `+jobColumns+` FROM jobs WHERE freelancer_id = $1 ORDER BY created_at`, freelancerID)
}

func (r *PGRepository) ListAll(ctx context.Context) ([]Job, error) {
	return r.list(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY created_at`)
}

func (r *PGRepository) list(ctx context.Context, query string, args ...any) ([]Job, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("marketplace: list jobs: %w", err)
	}
	defer rows.Close()

	list := []Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("marketplace: scan job row: %w", err)
		}
		list = append(list, job)
	}
	return list, rows.Err()
}

func scanJob(row pgx.Row) (Job, error) {
	var job Job
	var freelancerID *string
	err := row.Scan(
		&job.ID,
		&job.Title,
		&job.Description,
		&job.EstimatedTime,
		&job.ClientID,
		&freelancerID,
		&job.Price,
		&job.Paid,
		&job.Status,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		return Job{}, err
	}
	if freelancerID != nil {
		job.FreelancerID = *freelancerID
	}
	return job, nil
}
