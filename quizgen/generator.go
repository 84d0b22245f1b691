package quizgen

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

// Generator produces a raw quiz payload for a candidate's skill set. The
// payload may be plain JSON or model output wrapped in a Markdown fence;
// callers validate it with Parse before storing.
type Generator interface {
	Generate(ctx context.Context, skills string) (string, error)
}

const quizPrompt = `Generate a %d-question multiple-choice quiz based on these skills: %s. ` +
	`Return the quiz in strict JSON with exactly %d questions, each having a "question" string, ` +
	`an "options" array with exactly 4 unique options, and an "answer" index (0-3) indicating the correct option. ` +
	`Use this exact structure: {"questions": [{"question": "...", "options": ["...", "...", "...", "..."], "answer": 0}]}`

// GeminiGenerator generates quizzes with a Gemini model.
type GeminiGenerator struct {
	model llms.Model
}

// NewGeminiGenerator initializes the Gemini client. modelName defaults to
// gemini-2.0-flash when empty.
func NewGeminiGenerator(ctx context.Context, apiKey, modelName string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("quizgen: gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.0-flash"
	}

	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(modelName),
	)
	if err != nil {
		return nil, fmt.Errorf("quizgen: init gemini client: %w", err)
	}
	return &GeminiGenerator{model: llm}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, skills string) (string, error) {
	prompt := fmt.Sprintf(quizPrompt, QuestionCount, skills, QuestionCount)
	payload, err := llms.GenerateFromSinglePrompt(ctx, g.model, prompt)
	if err != nil {
		return "", fmt.Errorf("quizgen: generate quiz: %w", err)
	}
	if _, err := Parse(payload); err != nil {
		return "", err
	}
	return payload, nil
}

// StaticGenerator produces deterministic quizzes from a skill list without
// any model call. Used in dev mode and tests. Output is fenced like model
// output so downstream cleaning paths stay exercised.
type StaticGenerator struct{}

func (StaticGenerator) Generate(_ context.Context, skills string) (string, error) {
	list := strings.Split(skills, ",")
	for i := range list {
		list[i] = strings.TrimSpace(list[i])
	}
	if len(list) == 0 || list[0] == "" {
		list = []string{"freelancing"}
	}

	quiz := Quiz{}
	for i := 0; i < QuestionCount; i++ {
		skill := list[i%len(list)]
		options := []string{
			fmt.Sprintf("%s is best learned through practice on real projects", skill),
			fmt.Sprintf("%s requires no prior experience at all", skill),
			fmt.Sprintf("%s has been obsolete for a decade", skill),
			fmt.Sprintf("%s cannot be used professionally", skill),
		}
		ans := answerIndex(skill, i)
		options[0], options[ans] = options[ans], options[0]
		quiz.Questions = append(quiz.Questions, Question{
			Text:    fmt.Sprintf("Which statement about %s is most accurate?", skill),
			Options: options,
			Answer:  ans,
		})
	}

	out, err := json.Marshal(quiz)
	if err != nil {
		return "", fmt.Errorf("quizgen: marshal static quiz: %w", err)
	}
	return "```json\n" + string(out) + "\n```", nil
}

// answerIndex shuffles the correct option position deterministically so the
// key is not always zero.
func answerIndex(skill string, questionIdx int) int {
	h := fnv.New32a()
	h.Write([]byte(skill))
	return int(h.Sum32()+uint32(questionIdx)) % 4
}
