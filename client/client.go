// Package client is a Go SDK for the gigflow platform API, mirroring what
// the browser dashboards do: per-role bearer sessions, JSON requests, and a
// uniform error surface.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"gigflow/client/session"
)

// APIError is a non-2xx response from the platform, carrying the server's
// error envelope message when one was provided.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error %d", e.StatusCode)
}

// IsAuthError reports whether err is a 401 response, the platform's signal
// that the session token is missing, invalid, or expired.
func IsAuthError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// Client talks to the platform API. Safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	sessions   session.Store
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = timeout }
}

// New creates a platform client. Sessions established via Login/AdminLogin
// land in store; authenticated calls read their bearer token from it.
func New(baseURL string, store session.Store, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		sessions:   store,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Sessions exposes the underlying session store.
func (c *Client) Sessions() session.Store {
	return c.sessions
}

// do runs one request. role selects which session slot supplies the bearer
// token; the zero role makes an unauthenticated call. A 401 clears that
// role's slot before the error is returned, so the next poll or user action
// sees a logged-out state.
func (c *Client) do(ctx context.Context, method, path string, role session.Role, body, out any) error {
	var reader io.Reader
	contentType := ""
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
		contentType = "application/json"
	}
	data, err := c.doRaw(ctx, method, path, role, reader, contentType)
	if err != nil {
		return err
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("client: decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) doRaw(ctx context.Context, method, path string, role session.Role, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("client: build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if role != "" {
		if sess, ok := c.sessions.Get(role); ok {
			req.Header.Set("Authorization", "Bearer "+sess.Token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("client: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusUnauthorized && role != "" {
			_ = c.sessions.Clear(role)
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: errorMessage(data)}
	}
	return data, nil
}

// errorMessage pulls the message out of the server's {"error": "..."}
// envelope, falling back to raw text for non-JSON bodies.
func errorMessage(data []byte) string {
	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Error != "" {
		return envelope.Error
	}
	return strings.TrimSpace(string(data))
}

// RegisterClient creates a client account.
func (c *Client) RegisterClient(ctx context.Context, req RegisterClientRequest) (User, error) {
	var user User
	if err := c.do(ctx, http.MethodPost, "/api/users/register/client", "", req, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

// Login authenticates an account and stores its session under the role the
// server reports.
func (c *Client) Login(ctx context.Context, email, password string) (session.Session, error) {
	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID   string       `json:"id"`
			Name string       `json:"name"`
			Role session.Role `json:"role"`
		} `json:"user"`
	}
	err := c.do(ctx, http.MethodPost, "/api/users/login", "", map[string]string{
		"email": email, "password": password,
	}, &resp)
	if err != nil {
		return session.Session{}, err
	}

	sess := session.Session{
		Role:        resp.User.Role,
		Token:       resp.Token,
		IdentityID:  resp.User.ID,
		DisplayName: resp.User.Name,
	}
	if err := c.sessions.Set(sess); err != nil {
		return session.Session{}, fmt.Errorf("client: store session: %w", err)
	}
	return sess, nil
}

// AdminLogin authenticates the platform administrator.
func (c *Client) AdminLogin(ctx context.Context, email, password string) (session.Session, error) {
	var resp struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, http.MethodPost, "/api/admin/login/admin", "", map[string]string{
		"email": email, "password": password,
	}, &resp)
	if err != nil {
		return session.Session{}, err
	}

	sess := session.Session{Role: session.RoleAdmin, Token: resp.Token, IdentityID: "admin"}
	if err := c.sessions.Set(sess); err != nil {
		return session.Session{}, fmt.Errorf("client: store session: %w", err)
	}
	return sess, nil
}

// RegisterFreelancer uploads a resume PDF and returns the candidate id.
// Local file-type validation belongs to the quiz workflow; this is the raw
// transport call.
func (c *Client) RegisterFreelancer(ctx context.Context, filename string, file io.Reader) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("client: build multipart form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("client: copy resume: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("client: close multipart form: %w", err)
	}

	data, err := c.doRaw(ctx, http.MethodPost, "/api/users/register/freelancer", "", &buf, writer.FormDataContentType())
	if err != nil {
		return "", err
	}
	var resp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("client: decode candidate id: %w", err)
	}
	return resp.ID, nil
}

// Quiz fetches the candidate's quiz payload verbatim. The payload may be
// plain JSON or fenced model output; callers parse it tolerantly.
func (c *Client) Quiz(ctx context.Context, candidateID string) (string, error) {
	data, err := c.doRaw(ctx, http.MethodGet, "/api/users/"+candidateID+"/quiz", "", nil, "")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// SubmitQuiz sends the parsed quiz copy plus comma-joined answer indices and
// returns the grading verdict.
func (c *Client) SubmitQuiz(ctx context.Context, candidateID, quizJSON, answers string) (QuizResult, error) {
	var result QuizResult
	err := c.do(ctx, http.MethodPost, "/api/users/quiz/"+candidateID, "", map[string]string{
		"quiz": quizJSON, "answers": answers,
	}, &result)
	if err != nil {
		return QuizResult{}, err
	}
	return result, nil
}

// CompleteProfile finalizes a passed candidate's registration.
func (c *Client) CompleteProfile(ctx context.Context, candidateID, name, email, password string) (User, error) {
	var user User
	err := c.do(ctx, http.MethodPost, "/api/users/freelancers/"+candidateID, "", map[string]string{
		"name": name, "email": email, "password": password,
	}, &user)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// Freelancers lists active freelancers available for job assignment.
func (c *Client) Freelancers(ctx context.Context, as session.Role) ([]User, error) {
	var list []User
	if err := c.do(ctx, http.MethodGet, "/api/users/freelancers", as, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// CreateJob posts a new job targeting a freelancer.
func (c *Client) CreateJob(ctx context.Context, req CreateJobRequest) (Job, error) {
	var job Job
	if err := c.do(ctx, http.MethodPost, "/api/jobs", session.RoleClient, req, &job); err != nil {
		return Job{}, err
	}
	return job, nil
}

// ClientJobs lists the logged-in client's jobs.
func (c *Client) ClientJobs(ctx context.Context) ([]Job, error) {
	var list []Job
	if err := c.do(ctx, http.MethodGet, "/api/jobs/client", session.RoleClient, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// FreelancerJobs lists jobs assigned to the logged-in freelancer.
func (c *Client) FreelancerJobs(ctx context.Context, freelancerID string) ([]Job, error) {
	var list []Job
	if err := c.do(ctx, http.MethodGet, "/api/jobs/freelancer/"+freelancerID, session.RoleFreelancer, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SetPrice quotes a price on an assigned job.
func (c *Client) SetPrice(ctx context.Context, jobID string, price int) (Job, error) {
	var job Job
	err := c.do(ctx, http.MethodPut, "/api/jobs/"+jobID+"/price", session.RoleFreelancer, map[string]int{"price": price}, &job)
	if err != nil {
		return Job{}, err
	}
	return job, nil
}

// AcceptJob starts an assigned job.
func (c *Client) AcceptJob(ctx context.Context, jobID string) (Job, error) {
	return c.jobTransition(ctx, jobID, "accept", session.RoleFreelancer)
}

// IgnoreJob releases the freelancer from an assigned job.
func (c *Client) IgnoreJob(ctx context.Context, jobID string) (Job, error) {
	return c.jobTransition(ctx, jobID, "ignore", session.RoleFreelancer)
}

// CompleteJob finishes an active job.
func (c *Client) CompleteJob(ctx context.Context, jobID string) (Job, error) {
	return c.jobTransition(ctx, jobID, "complete", session.RoleFreelancer)
}

// PayJob marks a priced job paid.
func (c *Client) PayJob(ctx context.Context, jobID string) (Job, error) {
	return c.jobTransition(ctx, jobID, "payment", session.RoleClient)
}

func (c *Client) jobTransition(ctx context.Context, jobID, action string, role session.Role) (Job, error) {
	var job Job
	if err := c.do(ctx, http.MethodPut, "/api/jobs/"+jobID+"/"+action, role, nil, &job); err != nil {
		return Job{}, err
	}
	return job, nil
}

// DeleteJob removes an unpaid job.
func (c *Client) DeleteJob(ctx context.Context, jobID string) error {
	return c.do(ctx, http.MethodDelete, "/api/jobs/"+jobID, session.RoleClient, nil, nil)
}

// ReportFraud files a fraud report against another user.
func (c *Client) ReportFraud(ctx context.Context, as session.Role, reportedUserID, description string) error {
	return c.do(ctx, http.MethodPost, "/api/fraud/report", as, map[string]string{
		"reportedUserId": reportedUserID, "description": description,
	}, nil)
}

// FraudReports lists filed reports. Admin only.
func (c *Client) FraudReports(ctx context.Context) ([]FraudReport, error) {
	var list []FraudReport
	if err := c.do(ctx, http.MethodGet, "/api/fraud/reports", session.RoleAdmin, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// ResolveFraudReport marks a report resolved. Admin only.
func (c *Client) ResolveFraudReport(ctx context.Context, reportID string) error {
	return c.do(ctx, http.MethodPut, "/api/fraud/reports/"+reportID+"/resolve", session.RoleAdmin, nil, nil)
}

// AdminFreelancers lists all freelancer accounts, inactive included.
func (c *Client) AdminFreelancers(ctx context.Context) ([]User, error) {
	var list []User
	if err := c.do(ctx, http.MethodGet, "/api/admin/freelancers", session.RoleAdmin, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// AdminClients lists all client accounts.
func (c *Client) AdminClients(ctx context.Context) ([]User, error) {
	var list []User
	if err := c.do(ctx, http.MethodGet, "/api/admin/clients", session.RoleAdmin, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// AdminDeleteUser removes a user account.
func (c *Client) AdminDeleteUser(ctx context.Context, userID string) error {
	return c.do(ctx, http.MethodDelete, "/api/admin/delete/"+userID, session.RoleAdmin, nil, nil)
}

// Overview is the admin dashboard's aggregate view.
type Overview struct {
	Freelancers []User
	Clients     []User
	Reports     []FraudReport
}

// AdminOverview fetches the admin dashboard's three lists in parallel. The
// first failure cancels the rest.
func (c *Client) AdminOverview(ctx context.Context) (Overview, error) {
	var overview Overview
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := c.AdminFreelancers(ctx)
		overview.Freelancers = list
		return err
	})
	g.Go(func() error {
		list, err := c.AdminClients(ctx)
		overview.Clients = list
		return err
	})
	g.Go(func() error {
		list, err := c.FraudReports(ctx)
		overview.Reports = list
		return err
	})
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}
	return overview, nil
}
