package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrUserNotFound signals that the user does not exist.
	ErrUserNotFound = errors.New("users: user not found")
	// ErrDuplicateEmail signals that the email is already registered.
	ErrDuplicateEmail = errors.New("users: email already exists")
	// ErrNoQuiz signals that no quiz is pending for the candidate.
	ErrNoQuiz = errors.New("users: no pending quiz for candidate")
)

// Repository handles data access for platform accounts and the per-candidate
// pending quiz (stored with its answer key, which never leaves the server).
type Repository interface {
	CreateUser(ctx context.Context, params CreateUserParams) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByID(ctx context.Context, userID string) (User, error)
	UpdateUser(ctx context.Context, user User) (User, error)
	AddEarnings(ctx context.Context, userID string, amount float64) error
	ListByRole(ctx context.Context, role Role, activeOnly bool) ([]User, error)
	DeleteUser(ctx context.Context, userID string) error

	SaveQuiz(ctx context.Context, userID, payload string) error
	GetQuiz(ctx context.Context, userID string) (string, error)
	ClearQuiz(ctx context.Context, userID string) error
}

// CreateUserParams contains write parameters for creating users.
type CreateUserParams struct {
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	Role         Role
	Skills       string
	ResumeText   string
	Active       bool
}

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a PostgreSQL-backed users repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const userColumns = `id, name, email, phone, password_hash, role, skills, resume_text, active, earnings, created_at, updated_at`

func (r *PGRepository) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	const insertSQL = `
		INSERT INTO users (name, email, phone, password_hash, role, skills, resume_text, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + userColumns

	user, err := scanUser(r.pool.QueryRow(ctx, insertSQL,
		params.Name, params.Email, params.Phone, params.PasswordHash,
		params.Role, params.Skills, params.ResumeText, params.Active))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, ErrDuplicateEmail
		}
		return User{}, fmt.Errorf("users: create user: %w", err)
	}
	return user, nil
}

func (r *PGRepository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("users: get user by email: %w", err)
	}
	return user, nil
}

func (r *PGRepository) GetUserByID(ctx context.Context, userID string) (User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("users: get user by id: %w", err)
	}
	return user, nil
}

func (r *PGRepository) UpdateUser(ctx context.Context, user User) (User, error) {
	const updateSQL = `
		UPDATE users
		SET name=$2, email=$3, phone=$4, password_hash=$5, skills=$6, active=$7, earnings=$8, updated_at=NOW()
		WHERE id=$1
		RETURNING ` + userColumns

	updated, err := scanUser(r.pool.QueryRow(ctx, updateSQL,
		user.ID, user.Name, user.Email, user.Phone, user.PasswordHash,
		user.Skills, user.Active, user.Earnings))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, ErrDuplicateEmail
		}
		return User{}, fmt.Errorf("users: update user: %w", err)
	}
	return updated, nil
}

// AddEarnings increments the earnings counter in place so concurrent job
// completions cannot overwrite each other's credit.
func (r *PGRepository) AddEarnings(ctx context.Context, userID string, amount float64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET earnings = earnings + $2, updated_at = NOW() WHERE id = $1`,
		userID, amount)
	if err != nil {
		return fmt.Errorf("users: add earnings: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *PGRepository) ListByRole(ctx context.Context, role Role, activeOnly bool) ([]User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE role = $1`
	if activeOnly {
		query += ` AND active`
	}
	query += ` ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, role)
	if err != nil {
		return nil, fmt.Errorf("users: list by role: %w", err)
	}
	defer rows.Close()

	list := []User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("users: scan user row: %w", err)
		}
		list = append(list, user)
	}
	return list, rows.Err()
}

func (r *PGRepository) DeleteUser(ctx context.Context, userID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("users: delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *PGRepository) SaveQuiz(ctx context.Context, userID, payload string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO candidate_quizzes (user_id, payload)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET payload = EXCLUDED.payload, created_at = NOW()
	`, userID, payload)
	if err != nil {
		return fmt.Errorf("users: save quiz: %w", err)
	}
	return nil
}

func (r *PGRepository) GetQuiz(ctx context.Context, userID string) (string, error) {
	var payload string
	err := r.pool.QueryRow(ctx,
		`SELECT payload FROM candidate_quizzes WHERE user_id = $1`, userID).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNoQuiz
		}
		return "", fmt.Errorf("users: get quiz: %w", err)
	}
	return payload, nil
}

func (r *PGRepository) ClearQuiz(ctx context.Context, userID string) error {
	if _, err := r.pool.Exec(ctx,
		`DELETE FROM candidate_quizzes WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("users: clear quiz: %w", err)
	}
	return nil
}

func scanUser(row pgx.Row) (User, error) {
	var user User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Phone,
		&user.PasswordHash,
		&user.Role,
		&user.Skills,
		&user.ResumeText,
		&user.Active,
		&user.Earnings,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return User{}, err
	}
	return user, nil
}
