// Package quiz drives the freelancer onboarding flow: resume upload, the
// generated skill quiz, grading, and profile completion.
package quiz

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"gigflow/client"
)

// State is the workflow's current position. FAILED only leads back through
// a fresh resume submission; the same quiz instance is never retried.
type State string

const (
	AwaitingResume      State = "AWAITING_RESUME"
	AwaitingQuizAnswers State = "AWAITING_QUIZ_ANSWERS"
	Grading             State = "GRADING"
	Passed              State = "PASSED"
	ProfileForm         State = "PROFILE_FORM"
	Registered          State = "REGISTERED"
	Failed              State = "FAILED"
)

// Unanswered is the sentinel for an explicitly skipped question.
const Unanswered = -1

var (
	// ErrInvalidFileType signals a resume that is not a PDF. Checked locally;
	// no request is made.
	ErrInvalidFileType = errors.New("quiz: resume must be a PDF file")
	// ErrIncompleteAnswers signals submission before every question has a
	// recorded answer. Skips count as recorded.
	ErrIncompleteAnswers = errors.New("quiz: every question needs a recorded answer")
	// ErrIncompleteProfile signals empty profile fields.
	ErrIncompleteProfile = errors.New("quiz: name, email, and password are required")
	// ErrInvalidState signals an operation that the current state does not
	// allow.
	ErrInvalidState = errors.New("quiz: operation not allowed in current state")
)

// API is the slice of the platform client the workflow needs.
type API interface {
	RegisterFreelancer(ctx context.Context, filename string, file io.Reader) (string, error)
	Quiz(ctx context.Context, candidateID string) (string, error)
	SubmitQuiz(ctx context.Context, candidateID, quizJSON, answers string) (client.QuizResult, error)
	CompleteProfile(ctx context.Context, candidateID, name, email, password string) (client.User, error)
}

// Workflow is the onboarding state machine. Not safe for concurrent use;
// like the page it mirrors, one user drives it serially.
type Workflow struct {
	api API

	state       State
	candidateID string
	quiz        Quiz
	answers     []int
	recorded    []bool

	prefillName  string
	prefillEmail string
}

// NewWorkflow starts a workflow at AWAITING_RESUME.
func NewWorkflow(api API) *Workflow {
	return &Workflow{api: api, state: AwaitingResume}
}

// State returns the current workflow state.
func (w *Workflow) State() State {
	return w.state
}

// CandidateID returns the server-issued candidate id, empty before a resume
// is accepted.
func (w *Workflow) CandidateID() string {
	return w.candidateID
}

// Quiz returns the parsed quiz presented to the candidate.
func (w *Workflow) Quiz() Quiz {
	return w.quiz
}

// Prefill returns the name and email parsed from the resume, available once
// the quiz is passed.
func (w *Workflow) Prefill() (name, email string) {
	return w.prefillName, w.prefillEmail
}

// SubmitResume validates the file locally, uploads it, and fetches the
// generated quiz. A non-PDF is rejected before any network traffic. A quiz
// payload that cannot be parsed into five questions leaves the workflow in
// AWAITING_RESUME.
func (w *Workflow) SubmitResume(ctx context.Context, filename string, data []byte) error {
	if w.state != AwaitingResume {
		return ErrInvalidState
	}
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") || !bytes.HasPrefix(data, []byte("%PDF-")) {
		return ErrInvalidFileType
	}

	candidateID, err := w.api.RegisterFreelancer(ctx, filename, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("quiz: upload resume: %w", err)
	}

	payload, err := w.api.Quiz(ctx, candidateID)
	if err != nil {
		return fmt.Errorf("quiz: fetch quiz: %w", err)
	}
	parsed, err := ParsePayload(payload)
	if err != nil {
		return err
	}

	w.candidateID = candidateID
	w.quiz = parsed
	w.answers = make([]int, QuestionCount)
	w.recorded = make([]bool, QuestionCount)
	w.state = AwaitingQuizAnswers
	return nil
}

// SelectAnswer records an option index for a question. Unanswered (-1)
// explicitly skips the question. Pure local update.
func (w *Workflow) SelectAnswer(questionIndex, optionIndex int) error {
	if w.state != AwaitingQuizAnswers {
		return ErrInvalidState
	}
	if questionIndex < 0 || questionIndex >= len(w.quiz.Questions) {
		return fmt.Errorf("quiz: question index %d out of range", questionIndex)
	}
	if optionIndex < Unanswered || optionIndex >= len(w.quiz.Questions[questionIndex].Options) {
		return fmt.Errorf("quiz: option index %d out of range for question %d", optionIndex, questionIndex)
	}
	w.answers[questionIndex] = optionIndex
	w.recorded[questionIndex] = true
	return nil
}

// SubmitQuiz sends the quiz content and the comma-joined answers for
// grading. Every question must have a recorded answer first; otherwise no
// request is made. Pass moves to PROFILE_FORM (via PASSED) with prefill;
// fail moves to FAILED.
func (w *Workflow) SubmitQuiz(ctx context.Context) (bool, error) {
	if w.state != AwaitingQuizAnswers {
		return false, ErrInvalidState
	}
	for _, ok := range w.recorded {
		if !ok {
			return false, ErrIncompleteAnswers
		}
	}

	quizJSON, err := json.Marshal(w.quiz)
	if err != nil {
		return false, fmt.Errorf("quiz: marshal quiz: %w", err)
	}
	parts := make([]string, len(w.answers))
	for i, a := range w.answers {
		parts[i] = strconv.Itoa(a)
	}

	w.state = Grading
	result, err := w.api.SubmitQuiz(ctx, w.candidateID, string(quizJSON), strings.Join(parts, ","))
	if err != nil {
		// Transport failure is not a verdict; the candidate may retry the
		// same submission.
		w.state = AwaitingQuizAnswers
		return false, fmt.Errorf("quiz: submit for grading: %w", err)
	}

	if !result.Passed {
		w.state = Failed
		return false, nil
	}
	w.state = Passed
	w.prefillName = result.Name
	w.prefillEmail = result.Email
	w.state = ProfileForm
	return true, nil
}

// CompleteProfile finalizes registration with non-empty credentials and
// moves to REGISTERED.
func (w *Workflow) CompleteProfile(ctx context.Context, name, email, password string) error {
	if w.state != ProfileForm {
		return ErrInvalidState
	}
	if name == "" || email == "" || password == "" {
		return ErrIncompleteProfile
	}

	if _, err := w.api.CompleteProfile(ctx, w.candidateID, name, email, password); err != nil {
		return fmt.Errorf("quiz: complete profile: %w", err)
	}
	w.state = Registered
	return nil
}

// Retry restarts a failed attempt from resume upload. The old quiz instance
// is discarded; the server generates a fresh one per upload.
func (w *Workflow) Retry() error {
	if w.state != Failed {
		return ErrInvalidState
	}
	w.state = AwaitingResume
	w.candidateID = ""
	w.quiz = Quiz{}
	w.answers = nil
	w.recorded = nil
	w.prefillName = ""
	w.prefillEmail = ""
	return nil
}
