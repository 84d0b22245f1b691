package users

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory Repository used when the API runs without
// a database (dev mode) and by the HTTP-level tests.
type MemoryRepository struct {
	mu      sync.Mutex
	byID    map[string]User
	byEmail map[string]string
	quizzes map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]User),
		byEmail: make(map[string]string),
		quizzes: make(map[string]string),
	}
}

func (m *MemoryRepository) CreateUser(_ context.Context, params CreateUserParams) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(params.Email)
	if key != "" {
		if _, exists := m.byEmail[key]; exists {
			return User{}, ErrDuplicateEmail
		}
	}

	now := time.Now().UTC()
	user := User{
		ID:           uuid.NewString(),
		Name:         params.Name,
		Email:        params.Email,
		Phone:        params.Phone,
		PasswordHash: params.PasswordHash,
		Role:         params.Role,
		Skills:       params.Skills,
		ResumeText:   params.ResumeText,
		Active:       params.Active,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.byID[user.ID] = user
	if key != "" {
		m.byEmail[key] = user.ID
	}
	return user, nil
}

func (m *MemoryRepository) GetUserByEmail(_ context.Context, email string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byEmail[strings.ToLower(email)]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return m.byID[id], nil
}

func (m *MemoryRepository) GetUserByID(_ context.Context, userID string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.byID[userID]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

func (m *MemoryRepository) UpdateUser(_ context.Context, user User) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev, ok := m.byID[user.ID]
	if !ok {
		return User{}, ErrUserNotFound
	}

	newKey := strings.ToLower(user.Email)
	oldKey := strings.ToLower(prev.Email)
	if newKey != oldKey {
		if owner, exists := m.byEmail[newKey]; exists && owner != user.ID {
			return User{}, ErrDuplicateEmail
		}
		delete(m.byEmail, oldKey)
		if newKey != "" {
			m.byEmail[newKey] = user.ID
		}
	}

	user.CreatedAt = prev.CreatedAt
	user.UpdatedAt = time.Now().UTC()
	m.byID[user.ID] = user
	return user, nil
}

func (m *MemoryRepository) AddEarnings(_ context.Context, userID string, amount float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.byID[userID]
	if !ok {
		return ErrUserNotFound
	}
	user.Earnings += amount
	user.UpdatedAt = time.Now().UTC()
	m.byID[userID] = user
	return nil
}

func (m *MemoryRepository) ListByRole(_ context.Context, role Role, activeOnly bool) ([]User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := []User{}
	for _, user := range m.byID {
		if user.Role != role {
			continue
		}
		if activeOnly && !user.Active {
			continue
		}
		list = append(list, user)
	}
	return list, nil
}

func (m *MemoryRepository) DeleteUser(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.byID[userID]
	if !ok {
		return ErrUserNotFound
	}
	delete(m.byID, userID)
	delete(m.byEmail, strings.ToLower(user.Email))
	delete(m.quizzes, userID)
	return nil
}

func (m *MemoryRepository) SaveQuiz(_ context.Context, userID, payload string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quizzes[userID] = payload
	return nil
}

func (m *MemoryRepository) GetQuiz(_ context.Context, userID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	payload, ok := m.quizzes[userID]
	if !ok {
		return "", ErrNoQuiz
	}
	return payload, nil
}

func (m *MemoryRepository) ClearQuiz(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.quizzes, userID)
	return nil
}
