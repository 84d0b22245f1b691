package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"gigflow/quizgen"
)

var (
	// ErrInvalidCredentials signals wrong email or password.
	ErrInvalidCredentials = errors.New("users: invalid credentials")
	// ErrMissingFields signals required registration fields left empty.
	ErrMissingFields = errors.New("users: name, email, and password are required")
	// ErrNotCandidate signals a quiz operation against a non-candidate user.
	ErrNotCandidate = errors.New("users: user is not a freelancer candidate")
)

// AdminCredentials configures the single platform administrator. The admin
// has no users row; a matching login mints an ADMIN-role token directly.
type AdminCredentials struct {
	Email    string
	Password string
}

// Service handles registration, the quiz-gated freelancer onboarding, and
// authentication.
type Service struct {
	repo      Repository
	generator quizgen.Generator
	jwtSecret []byte
	admin     AdminCredentials
}

// LoginResult bundles the token and domain user returned after a login.
type LoginResult struct {
	Token string
	User  User
}

// NewService creates the users service.
func NewService(repo Repository, generator quizgen.Generator, jwtSecret string, admin AdminCredentials) *Service {
	return &Service{
		repo:      repo,
		generator: generator,
		jwtSecret: []byte(jwtSecret),
		admin:     admin,
	}
}

// RegisterClient creates an active client account.
func (s *Service) RegisterClient(ctx context.Context, req RegisterClientRequest) (User, error) {
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return User{}, ErrMissingFields
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("users: hash password: %w", err)
	}

	return s.repo.CreateUser(ctx, CreateUserParams{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		Role:         RoleClient,
		Active:       true,
	})
}

// RegisterCandidate turns an uploaded PDF resume into an inactive freelancer
// candidate and generates that candidate's quiz. Each upload is a fresh
// attempt with a fresh quiz.
func (s *Service) RegisterCandidate(ctx context.Context, resume []byte) (User, error) {
	profile, err := quizgen.ExtractResume(resume)
	if err != nil {
		return User{}, err
	}

	user, err := s.repo.CreateUser(ctx, CreateUserParams{
		Name:       profile.Name,
		Email:      "",
		Role:       RoleFreelancer,
		Skills:     profile.Skills,
		ResumeText: profile.Text,
		Active:     false,
	})
	if err != nil {
		return User{}, err
	}
	// Candidate email is kept off the unique login column until the profile
	// is completed; the parsed value rides along for quiz-pass prefill.
	user.Email = profile.Email

	payload, err := s.generator.Generate(ctx, profile.Skills)
	if err != nil {
		return User{}, fmt.Errorf("users: generate candidate quiz: %w", err)
	}
	if err := s.repo.SaveQuiz(ctx, user.ID, payload); err != nil {
		return User{}, err
	}
	return user, nil
}

// Quiz returns the candidate's pending quiz payload with the answer key
// stripped. The fence texture of the generator output is preserved.
func (s *Service) Quiz(ctx context.Context, userID string) (string, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.Role != RoleFreelancer || user.Active {
		return "", ErrNotCandidate
	}

	payload, err := s.repo.GetQuiz(ctx, userID)
	if err != nil {
		return "", err
	}
	return quizgen.Sanitize(payload)
}

// EvaluateQuiz grades a submission against the stored answer key. The quiz
// is single-use: pass or fail, it is cleared, and a failed candidate must
// restart from resume upload.
func (s *Service) EvaluateQuiz(ctx context.Context, userID, answers string) (QuizResult, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return QuizResult{}, err
	}
	if user.Role != RoleFreelancer || user.Active {
		return QuizResult{}, ErrNotCandidate
	}

	payload, err := s.repo.GetQuiz(ctx, userID)
	if err != nil {
		return QuizResult{}, err
	}
	quiz, err := quizgen.Parse(payload)
	if err != nil {
		return QuizResult{}, err
	}
	parsed, err := quizgen.ParseAnswers(answers)
	if err != nil {
		return QuizResult{}, err
	}

	if err := s.repo.ClearQuiz(ctx, userID); err != nil {
		return QuizResult{}, err
	}

	if quizgen.Grade(quiz, parsed) < quizgen.PassThreshold {
		return QuizResult{Passed: false}, nil
	}
	return QuizResult{
		Passed: true,
		Name:   user.Name,
		Email:  quizgen.FindEmail(user.ResumeText),
	}, nil
}

// CompleteProfile finalizes a passed candidate's registration and activates
// the account.
func (s *Service) CompleteProfile(ctx context.Context, userID, name, email, password string) (User, error) {
	if name == "" || email == "" || password == "" {
		return User{}, ErrMissingFields
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return User{}, err
	}
	if user.Role != RoleFreelancer {
		return User{}, ErrNotCandidate
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("users: hash password: %w", err)
	}

	user.Name = name
	user.Email = email
	user.PasswordHash = string(hash)
	user.Active = true
	return s.repo.UpdateUser(ctx, user)
}

// Login authenticates an active user and returns a signed token.
func (s *Service) Login(ctx context.Context, req LoginRequest) (LoginResult, error) {
	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}
	if !user.Active {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := s.generateToken(user.ID, user.Role)
	if err != nil {
		return LoginResult{}, fmt.Errorf("users: generate token: %w", err)
	}
	return LoginResult{Token: token, User: user}, nil
}

// AdminLogin validates the configured administrator credentials and mints an
// ADMIN-role token.
func (s *Service) AdminLogin(_ context.Context, email, password string) (string, error) {
	if s.admin.Email == "" || email != s.admin.Email || password != s.admin.Password {
		return "", ErrInvalidCredentials
	}
	token, err := s.generateToken("admin", RoleAdmin)
	if err != nil {
		return "", fmt.Errorf("users: generate admin token: %w", err)
	}
	return token, nil
}

// VerifyToken validates a bearer token and returns the subject and role.
func (s *Service) VerifyToken(tokenString string) (string, Role, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return "", "", fmt.Errorf("users: parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", "", fmt.Errorf("users: invalid token")
	}
	userID, ok := claims["sub"].(string)
	if !ok || userID == "" {
		return "", "", fmt.Errorf("users: invalid subject in token")
	}
	roleStr, ok := claims["role"].(string)
	if !ok {
		return "", "", fmt.Errorf("users: invalid role in token")
	}
	role := Role(roleStr)
	if role != RoleFreelancer && role != RoleClient && role != RoleAdmin {
		return "", "", fmt.Errorf("users: invalid role %q in token", roleStr)
	}
	return userID, role, nil
}

// Freelancers lists active freelancers available for assignment.
func (s *Service) Freelancers(ctx context.Context) ([]User, error) {
	return s.repo.ListByRole(ctx, RoleFreelancer, true)
}

// AllFreelancers lists every freelancer account, inactive candidates
// included. Admin view.
func (s *Service) AllFreelancers(ctx context.Context) ([]User, error) {
	return s.repo.ListByRole(ctx, RoleFreelancer, false)
}

// Clients lists all registered clients.
func (s *Service) Clients(ctx context.Context) ([]User, error) {
	return s.repo.ListByRole(ctx, RoleClient, false)
}

// Get retrieves a user by ID.
func (s *Service) Get(ctx context.Context, userID string) (User, error) {
	return s.repo.GetUserByID(ctx, userID)
}

// Delete removes a user account.
func (s *Service) Delete(ctx context.Context, userID string) error {
	return s.repo.DeleteUser(ctx, userID)
}

// AddEarnings credits a freelancer's lifetime earnings counter. The
// repository applies the increment in place, so concurrent completions each
// land.
func (s *Service) AddEarnings(ctx context.Context, userID string, amount float64) error {
	return s.repo.AddEarnings(ctx, userID, amount)
}

func (s *Service) generateToken(subject string, role Role) (string, error) {
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
		"iat":  time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
