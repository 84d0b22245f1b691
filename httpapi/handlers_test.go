package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gigflow/fraud"
	"gigflow/marketplace"
	"gigflow/quizgen"
	"gigflow/users"
)

const testSecret = "handler-test-secret"

var testAdmin = users.AdminCredentials{Email: "admin@gigflow.dev", Password: "admin-pass"}

type testEnv struct {
	server   *httptest.Server
	users    *users.Service
	userRepo *users.MemoryRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	userRepo := users.NewMemoryRepository()
	userSvc := users.NewService(userRepo, quizgen.StaticGenerator{}, testSecret, testAdmin)
	jobSvc := marketplace.NewService(marketplace.NewMemoryRepository(), userSvc)
	fraudSvc := fraud.NewService(fraud.NewMemoryRepository())

	srv := httptest.NewServer(NewServer(userSvc, jobSvc, fraudSvc).Router())
	t.Cleanup(srv.Close)
	return &testEnv{server: srv, users: userSvc, userRepo: userRepo}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	return resp, data
}

// registerAndLoginClient drives the public registration and login endpoints.
func (e *testEnv) registerAndLoginClient(t *testing.T, email string) (token, id string) {
	t.Helper()

	resp, _ := e.request(t, http.MethodPost, "/api/users/register/client", "", map[string]string{
		"name": "Acme Corp", "email": email, "password": "s3cret",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register client: status %d", resp.StatusCode)
	}

	resp, body := e.request(t, http.MethodPost, "/api/users/login", "", map[string]string{
		"email": email, "password": "s3cret",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: status %d: %s", resp.StatusCode, body)
	}
	var login struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := json.Unmarshal(body, &login); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return login.Token, login.User.ID
}

// seedFreelancer creates an active freelancer account and logs it in.
func (e *testEnv) seedFreelancer(t *testing.T, email string) (token, id string) {
	t.Helper()
	ctx := context.Background()

	candidate, err := e.userRepo.CreateUser(ctx, users.CreateUserParams{
		Name: "Jane Smith", Role: users.RoleFreelancer, Skills: "Go", Active: false,
	})
	if err != nil {
		t.Fatalf("seed candidate: %v", err)
	}
	if _, err := e.users.CompleteProfile(ctx, candidate.ID, "Jane Smith", email, "pass123"); err != nil {
		t.Fatalf("complete profile: %v", err)
	}

	resp, body := e.request(t, http.MethodPost, "/api/users/login", "", map[string]string{
		"email": email, "password": "pass123",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("freelancer login: status %d: %s", resp.StatusCode, body)
	}
	var login struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := json.Unmarshal(body, &login); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return login.Token, login.User.ID
}

func decodeJob(t *testing.T, data []byte) jobResponse {
	t.Helper()
	var job jobResponse
	if err := json.Unmarshal(data, &job); err != nil {
		t.Fatalf("decode job: %v (%s)", err, data)
	}
	return job
}

func TestCreateJobAppearsInClientList(t *testing.T) {
	env := newTestEnv(t)
	clientToken, _ := env.registerAndLoginClient(t, "ops@acme.test")
	_, freelancerID := env.seedFreelancer(t, "jane@x.test")

	resp, body := env.request(t, http.MethodPost, "/api/jobs", clientToken, map[string]string{
		"title":         "Logo design",
		"description":   "Design a logo",
		"estimatedTime": "3 days",
		"freelancerId":  freelancerID,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create job: status %d: %s", resp.StatusCode, body)
	}
	created := decodeJob(t, body)
	if created.Status != marketplace.StatusPending || created.Price != nil || created.Paid {
		t.Fatalf("unexpected new job state: %+v", created)
	}

	resp, body = env.request(t, http.MethodGet, "/api/jobs/client", clientToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list jobs: status %d", resp.StatusCode)
	}
	var list []jobResponse
	if err := json.Unmarshal(body, &list); err != nil {
		t.Fatalf("decode job list: %v", err)
	}
	if len(list) != 1 || list[0].ID != created.ID {
		t.Fatalf("created job missing from client list: %+v", list)
	}
}

func TestPriceThenPaymentActivatesJob(t *testing.T) {
	env := newTestEnv(t)
	clientToken, _ := env.registerAndLoginClient(t, "ops@acme.test")
	freelancerToken, freelancerID := env.seedFreelancer(t, "jane@x.test")

	_, body := env.request(t, http.MethodPost, "/api/jobs", clientToken, map[string]string{
		"title": "Logo design", "description": "Design a logo",
		"estimatedTime": "3 days", "freelancerId": freelancerID,
	})
	job := decodeJob(t, body)

	resp, body := env.request(t, http.MethodPut, "/api/jobs/"+job.ID+"/price", freelancerToken, map[string]int{"price": 50})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set price: status %d: %s", resp.StatusCode, body)
	}
	priced := decodeJob(t, body)
	if priced.Price == nil || *priced.Price != 50 || priced.Paid {
		t.Fatalf("unexpected priced state: %+v", priced)
	}

	resp, body = env.request(t, http.MethodPut, "/api/jobs/"+job.ID+"/payment", clientToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("pay: status %d: %s", resp.StatusCode, body)
	}
	paid := decodeJob(t, body)
	if !paid.Paid || paid.Status != marketplace.StatusActive {
		t.Fatalf("payment should activate the job: %+v", paid)
	}
}

func TestPaymentWithoutPriceConflicts(t *testing.T) {
	env := newTestEnv(t)
	clientToken, _ := env.registerAndLoginClient(t, "ops@acme.test")
	_, freelancerID := env.seedFreelancer(t, "jane@x.test")

	_, body := env.request(t, http.MethodPost, "/api/jobs", clientToken, map[string]string{
		"title": "T", "description": "D", "estimatedTime": "1 day", "freelancerId": freelancerID,
	})
	job := decodeJob(t, body)

	resp, body := env.request(t, http.MethodPut, "/api/jobs/"+job.ID+"/payment", clientToken, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 paying unpriced job, got %d: %s", resp.StatusCode, body)
	}
	var envelope map[string]string
	if err := json.Unmarshal(body, &envelope); err != nil || envelope["error"] == "" {
		t.Fatalf("expected error envelope, got %s", body)
	}
}

func TestRoleGates(t *testing.T) {
	env := newTestEnv(t)
	clientToken, _ := env.registerAndLoginClient(t, "ops@acme.test")
	freelancerToken, freelancerID := env.seedFreelancer(t, "jane@x.test")

	_, body := env.request(t, http.MethodPost, "/api/jobs", clientToken, map[string]string{
		"title": "T", "description": "D", "estimatedTime": "1 day", "freelancerId": freelancerID,
	})
	job := decodeJob(t, body)

	// Client may not price; freelancer may not pay.
	resp, _ := env.request(t, http.MethodPut, "/api/jobs/"+job.ID+"/price", clientToken, map[string]int{"price": 10})
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("client pricing: expected 403, got %d", resp.StatusCode)
	}
	resp, _ = env.request(t, http.MethodPut, "/api/jobs/"+job.ID+"/payment", freelancerToken, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("freelancer paying: expected 403, got %d", resp.StatusCode)
	}
}

func TestBadTokenIsUnauthorized(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.request(t, http.MethodGet, "/api/jobs/client", "not-a-token", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	resp, _ = env.request(t, http.MethodGet, "/api/jobs/client", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}
}

func TestQuizFetchAndGrade(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	candidate, err := env.userRepo.CreateUser(ctx, users.CreateUserParams{
		Name: "Jane Smith", Role: users.RoleFreelancer, Skills: "Go",
		ResumeText: "Jane Smith\njane@example.com\nGo", Active: false,
	})
	if err != nil {
		t.Fatalf("seed candidate: %v", err)
	}
	payload, err := quizgen.StaticGenerator{}.Generate(ctx, "Go")
	if err != nil {
		t.Fatalf("generate quiz: %v", err)
	}
	if err := env.userRepo.SaveQuiz(ctx, candidate.ID, payload); err != nil {
		t.Fatalf("save quiz: %v", err)
	}

	resp, body := env.request(t, http.MethodGet, "/api/users/"+candidate.ID+"/quiz", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get quiz: status %d", resp.StatusCode)
	}
	raw := string(body)
	if !strings.HasPrefix(strings.TrimSpace(raw), "```") {
		t.Error("quiz payload lost its fence texture")
	}
	if strings.Contains(raw, `"answer"`) {
		t.Error("quiz payload leaked the answer key")
	}

	quiz, err := quizgen.Parse(payload)
	if err != nil {
		t.Fatalf("parse stored quiz: %v", err)
	}
	answers := make([]string, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		answers = append(answers, fmt.Sprintf("%d", q.Answer))
	}

	resp, body = env.request(t, http.MethodPost, "/api/users/quiz/"+candidate.ID, "", map[string]string{
		"quiz":    raw,
		"answers": strings.Join(answers, ","),
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("submit quiz: status %d: %s", resp.StatusCode, body)
	}
	var result users.QuizResult
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if !result.Passed {
		t.Fatal("all-correct submission should pass")
	}
	if result.Name != "Jane Smith" || result.Email != "jane@example.com" {
		t.Errorf("expected resume prefill, got %+v", result)
	}
}

func TestAdminSurface(t *testing.T) {
	env := newTestEnv(t)
	clientToken, _ := env.registerAndLoginClient(t, "ops@acme.test")
	_, freelancerID := env.seedFreelancer(t, "jane@x.test")

	resp, body := env.request(t, http.MethodPost, "/api/admin/login/admin", "", map[string]string{
		"email": testAdmin.Email, "password": testAdmin.Password,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin login: status %d: %s", resp.StatusCode, body)
	}
	var login struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &login); err != nil {
		t.Fatalf("decode admin login: %v", err)
	}

	resp, body = env.request(t, http.MethodGet, "/api/admin/freelancers", login.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin freelancers: status %d", resp.StatusCode)
	}
	var freelancers []userResponse
	if err := json.Unmarshal(body, &freelancers); err != nil {
		t.Fatalf("decode freelancers: %v", err)
	}
	if len(freelancers) != 1 {
		t.Fatalf("expected 1 freelancer, got %d", len(freelancers))
	}

	// Admins review reports, non-admins cannot list them.
	resp, _ = env.request(t, http.MethodPost, "/api/fraud/report", clientToken, map[string]string{
		"reportedUserId": freelancerID, "description": "Suspicious behavior",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("file report: status %d", resp.StatusCode)
	}
	resp, _ = env.request(t, http.MethodGet, "/api/fraud/reports", clientToken, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("client listing reports: expected 403, got %d", resp.StatusCode)
	}
	resp, body = env.request(t, http.MethodGet, "/api/fraud/reports", login.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin listing reports: status %d", resp.StatusCode)
	}
	var reports []reportResponse
	if err := json.Unmarshal(body, &reports); err != nil {
		t.Fatalf("decode reports: %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("expected 1 report, got %d", len(reports))
	}

	resp, _ = env.request(t, http.MethodPut, "/api/fraud/reports/"+reports[0].ID+"/resolve", login.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("resolve report: status %d", resp.StatusCode)
	}
	resp, body = env.request(t, http.MethodGet, "/api/fraud/reports", login.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("relist reports: status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, &reports); err != nil {
		t.Fatalf("decode resolved reports: %v", err)
	}
	if reports[0].Status != fraud.StatusResolved {
		t.Errorf("expected resolved report, got %s", reports[0].Status)
	}

	resp, _ = env.request(t, http.MethodDelete, "/api/admin/delete/"+freelancerID, login.Token, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("admin delete: status %d", resp.StatusCode)
	}
}
