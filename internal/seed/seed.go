// Package seed loads the test bank from a JSON file and installs it into the
// store at service startup.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"testprep-app/internal/exam"
)

const defaultPassingScore = 50

// File mirrors the on-disk test-bank payload.
type File struct {
	Tests []TestSpec `json:"tests"`
}

type TestSpec struct {
	TestID          string         `json:"test_id"`
	Name            string         `json:"name"`
	Subject         string         `json:"subject"`
	DurationMinutes int            `json:"duration_minutes"`
	PassingScore    int            `json:"passing_score"`
	Questions       []QuestionSpec `json:"questions"`
}

type QuestionSpec struct {
	QuestionID      string       `json:"question_id"`
	Subject         string       `json:"subject"`
	Text            string       `json:"text"`
	Options         []OptionSpec `json:"options"`
	CorrectOptionID string       `json:"correct_option_id"`
	Explanation     string       `json:"explanation"`
}

type OptionSpec struct {
	OptionID string `json:"option_id"`
	Label    string `json:"label"`
	Text     string `json:"text"`
}

func LoadFile(path string) (File, error) {
	f, err := os.Open(path)
	if err != nil {
		return File{}, err
	}
	defer f.Close()

	file, err := Parse(f)
	if err != nil {
		return File{}, fmt.Errorf("seed file %s: %w", path, err)
	}
	return file, nil
}

func Parse(r io.Reader) (File, error) {
	var file File
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return File{}, err
	}
	if len(file.Tests) == 0 {
		return File{}, errors.New("no tests defined")
	}
	for idx, test := range file.Tests {
		if err := validateTest(test); err != nil {
			return File{}, fmt.Errorf("test %d (%s): %w", idx, test.TestID, err)
		}
	}
	return file, nil
}

func validateTest(test TestSpec) error {
	if strings.TrimSpace(test.TestID) == "" {
		return errors.New("test_id is required")
	}
	if test.DurationMinutes <= 0 {
		return errors.New("duration_minutes must be positive")
	}
	if len(test.Questions) == 0 {
		return errors.New("at least one question is required")
	}
	for idx, question := range test.Questions {
		if len(question.Options) == 0 {
			return fmt.Errorf("question %d has no options", idx)
		}
		seen := make(map[string]bool, len(question.Options))
		correctFound := false
		for _, option := range question.Options {
			if option.OptionID == "" {
				return fmt.Errorf("question %d has an option without an id", idx)
			}
			if seen[option.OptionID] {
				return fmt.Errorf("question %d has duplicate option id %s", idx, option.OptionID)
			}
			seen[option.OptionID] = true
			if option.OptionID == question.CorrectOptionID {
				correctFound = true
			}
		}
		if !correctFound {
			return fmt.Errorf("question %d: correct_option_id %q is not one of its options", idx, question.CorrectOptionID)
		}
	}
	return nil
}

// Build converts a test spec into domain types. Questions without explicit
// IDs get stable content-derived ones so reseeding does not duplicate rows.
func Build(spec TestSpec) (exam.Test, []exam.Question) {
	passingScore := spec.PassingScore
	if passingScore <= 0 {
		passingScore = defaultPassingScore
	}

	questions := make([]exam.Question, 0, len(spec.Questions))
	for idx, questionSpec := range spec.Questions {
		options := make([]exam.Option, 0, len(questionSpec.Options))
		for _, optionSpec := range questionSpec.Options {
			options = append(options, exam.Option{
				OptionID: optionSpec.OptionID,
				Label:    optionSpec.Label,
				Text:     optionSpec.Text,
			})
		}

		question := exam.Question{
			QuestionID:      questionSpec.QuestionID,
			Order:           idx,
			Subject:         questionSpec.Subject,
			Text:            questionSpec.Text,
			Options:         options,
			CorrectOptionID: questionSpec.CorrectOptionID,
			Explanation:     questionSpec.Explanation,
		}
		if question.QuestionID == "" {
			question.QuestionID = exam.MakeQuestionID(question)
		}
		questions = append(questions, question)
	}

	test := exam.Test{
		TestID:        spec.TestID,
		Name:          spec.Name,
		Subject:       spec.Subject,
		Duration:      time.Duration(spec.DurationMinutes) * time.Minute,
		PassingScore:  passingScore,
		QuestionCount: len(questions),
	}
	return test, questions
}

// Install writes every test in the file into the repository.
func Install(ctx context.Context, repo exam.TestRepository, file File) error {
	for _, spec := range file.Tests {
		test, questions := Build(spec)
		if err := repo.CreateTest(ctx, test, questions); err != nil {
			return fmt.Errorf("seed test %s: %w", test.TestID, err)
		}
	}
	return nil
}
