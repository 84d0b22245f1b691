package quizgen

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNotPDF signals an upload that is not a parseable PDF document.
var ErrNotPDF = errors.New("quizgen: resume is not a valid PDF")

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// knownSkills is the vocabulary scanned for in resume text. The original
// platform asked a model to extract free-form skills; a fixed vocabulary
// keeps generation deterministic when no model is configured.
var knownSkills = []string{
	"Go", "Java", "Python", "JavaScript", "TypeScript", "C++", "C#", "Rust",
	"React", "Angular", "Vue", "Node.js", "Spring", "Django",
	"PostgreSQL", "MySQL", "MongoDB", "Redis",
	"Docker", "Kubernetes", "AWS", "GCP", "Azure",
	"HTML", "CSS", "SQL", "Git", "Linux",
	"Machine Learning", "Data Analysis", "UI Design", "Graphic Design",
	"Copywriting", "SEO", "Project Management",
}

// ResumeProfile is what the platform learns about a candidate from the
// uploaded resume.
type ResumeProfile struct {
	Name   string
	Email  string
	Skills string
	Text   string
}

// ExtractResume pulls plain text out of a PDF resume and derives the
// candidate's name, email, and skill set from it.
func ExtractResume(data []byte) (ResumeProfile, error) {
	text, err := extractText(data)
	if err != nil {
		return ResumeProfile{}, err
	}

	profile := ResumeProfile{Text: text}
	profile.Email = emailPattern.FindString(text)
	profile.Name = guessName(text)
	profile.Skills = ExtractSkills(text)
	return profile, nil
}

func extractText(data []byte) (string, error) {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return "", ErrNotPDF
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotPDF, err)
	}

	var sb strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page should not sink the whole resume.
			continue
		}
		sb.WriteString(content)
		sb.WriteString("\n")
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("%w: no extractable text", ErrNotPDF)
	}
	return text, nil
}

// FindEmail returns the first email address appearing in resume text.
func FindEmail(text string) string {
	return emailPattern.FindString(text)
}

// ExtractSkills scans resume text for known skill keywords and returns them
// comma-joined, the shape the quiz prompt expects.
func ExtractSkills(text string) string {
	lower := strings.ToLower(text)
	found := []string{}
	for _, skill := range knownSkills {
		if strings.Contains(lower, strings.ToLower(skill)) {
			found = append(found, skill)
		}
	}
	if len(found) == 0 {
		return "general freelancing"
	}
	return strings.Join(found, ", ")
}

// guessName takes the first non-empty line that does not look like contact
// details. Resumes conventionally lead with the candidate's name.
func guessName(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.Contains(line, "@") || strings.ContainsAny(line, "0123456789") {
			continue
		}
		if len(line) > 60 {
			continue
		}
		return line
	}
	return ""
}
