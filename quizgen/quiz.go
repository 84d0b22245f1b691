// Package quizgen owns the server side of the onboarding quiz: resume text
// extraction, quiz generation, and grading against the held answer key.
package quizgen

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// QuestionCount is the fixed number of questions per quiz.
	QuestionCount = 5
	// PassThreshold is the minimum number of correct answers for a pass.
	PassThreshold = 3
	// Unanswered is the sentinel a candidate may submit for a skipped question.
	Unanswered = -1
)

var (
	// ErrMalformedQuiz signals a generator payload that does not contain a
	// valid 5-question quiz.
	ErrMalformedQuiz = errors.New("quizgen: malformed quiz payload")
	// ErrBadAnswers signals a submitted answer string that is not five
	// comma-separated option indices.
	ErrBadAnswers = errors.New("quizgen: answers must be five comma-separated indices")
)

// Question carries one multiple-choice question. Answer is the index of the
// correct option; it is stripped before the quiz is handed to a candidate.
type Question struct {
	Text    string   `json:"question"`
	Options []string `json:"options"`
	Answer  int      `json:"answer"`
}

// Quiz is the generated quiz, answer key included.
type Quiz struct {
	Questions []Question `json:"questions"`
}

// Parse extracts a Quiz from a generator payload. Model output often arrives
// wrapped in a Markdown code fence with trailing chatter, so the payload is
// cleaned the same way the client cleans it: fences stripped, content cut at
// the last closing brace.
func Parse(payload string) (Quiz, error) {
	cleaned := Clean(payload)

	var quiz Quiz
	if err := json.Unmarshal([]byte(cleaned), &quiz); err != nil {
		return Quiz{}, fmt.Errorf("%w: %v", ErrMalformedQuiz, err)
	}
	if len(quiz.Questions) != QuestionCount {
		return Quiz{}, fmt.Errorf("%w: expected %d questions, got %d", ErrMalformedQuiz, QuestionCount, len(quiz.Questions))
	}
	for i, q := range quiz.Questions {
		if q.Text == "" || len(q.Options) < 2 {
			return Quiz{}, fmt.Errorf("%w: question %d incomplete", ErrMalformedQuiz, i)
		}
		if q.Answer < 0 || q.Answer >= len(q.Options) {
			return Quiz{}, fmt.Errorf("%w: question %d answer index out of range", ErrMalformedQuiz, i)
		}
	}
	return quiz, nil
}

// Clean strips leading/trailing Markdown code-fence markers and cuts the
// payload at the last closing brace, tolerating trailing content.
func Clean(payload string) string {
	s := strings.TrimSpace(payload)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}
	if last := strings.LastIndex(s, "}"); last >= 0 {
		s = s[:last+1]
	}
	return s
}

// Sanitize re-emits a quiz payload with the answer key removed, preserving a
// Markdown fence when the original had one so clients see the same texture
// the upstream model produces.
func Sanitize(payload string) (string, error) {
	quiz, err := Parse(payload)
	if err != nil {
		return "", err
	}

	type publicQuestion struct {
		Text    string   `json:"question"`
		Options []string `json:"options"`
	}
	public := struct {
		Questions []publicQuestion `json:"questions"`
	}{}
	for _, q := range quiz.Questions {
		public.Questions = append(public.Questions, publicQuestion{Text: q.Text, Options: q.Options})
	}

	out, err := json.Marshal(public)
	if err != nil {
		return "", fmt.Errorf("quizgen: marshal sanitized quiz: %w", err)
	}
	if strings.HasPrefix(strings.TrimSpace(payload), "```") {
		return "```json\n" + string(out) + "\n```", nil
	}
	return string(out), nil
}

// ParseAnswers parses the comma-joined answer indices submitted by a
// candidate ("1,0,2,-1,3"). Exactly QuestionCount entries are required; the
// Unanswered sentinel is allowed.
func ParseAnswers(answers string) ([]int, error) {
	parts := strings.Split(strings.TrimSpace(answers), ",")
	if len(parts) != QuestionCount {
		return nil, ErrBadAnswers
	}
	parsed := make([]int, 0, QuestionCount)
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < Unanswered {
			return nil, ErrBadAnswers
		}
		parsed = append(parsed, n)
	}
	return parsed, nil
}

// Grade counts correct answers against the quiz's answer key.
func Grade(quiz Quiz, answers []int) int {
	correct := 0
	for i, q := range quiz.Questions {
		if i < len(answers) && answers[i] == q.Answer {
			correct++
		}
	}
	return correct
}
