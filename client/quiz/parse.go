package quiz

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// QuestionCount is the fixed quiz length; anything else is malformed.
const QuestionCount = 5

// ErrMalformedQuiz signals a quiz payload that could not be parsed into
// exactly five questions.
var ErrMalformedQuiz = errors.New("quiz: malformed quiz payload")

// Question is one multiple-choice question as presented to the candidate.
// The answer key stays on the server.
type Question struct {
	Text    string   `json:"question"`
	Options []string `json:"options"`
}

// Quiz is the parsed quiz content.
type Quiz struct {
	Questions []Question `json:"questions"`
}

// ParsePayload parses a quiz payload tolerantly. Generated payloads often
// arrive as model output: wrapped in a ```json fence, sometimes with chatter
// after the JSON. Fences are stripped and the content cut at the last
// closing brace before parsing.
func ParsePayload(payload string) (Quiz, error) {
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

	var quiz Quiz
	if err := json.Unmarshal([]byte(s), &quiz); err != nil {
		return Quiz{}, fmt.Errorf("%w: %v", ErrMalformedQuiz, err)
	}
	if len(quiz.Questions) != QuestionCount {
		return Quiz{}, fmt.Errorf("%w: expected %d questions, got %d", ErrMalformedQuiz, QuestionCount, len(quiz.Questions))
	}
	for i, q := range quiz.Questions {
		if q.Text == "" || len(q.Options) == 0 {
			return Quiz{}, fmt.Errorf("%w: question %d incomplete", ErrMalformedQuiz, i)
		}
	}
	return quiz, nil
}
