package exam

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service owns tests, attempt issuance, and authoritative scoring. The
// attempt deadline is computed here exactly once; clients only ever read it.
type Service struct {
	tests    TestRepository
	attempts AttemptRepository

	newID func() string
	now   func() time.Time
}

func NewService(tests TestRepository, attempts AttemptRepository) *Service {
	return &Service{
		tests:    tests,
		attempts: attempts,
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

func (s *Service) GetTest(ctx context.Context, testID string) (Test, error) {
	testID = strings.TrimSpace(testID)
	if testID == "" {
		return Test{}, ErrTestNotFound
	}
	return s.tests.GetTest(ctx, testID)
}

func (s *Service) ListTests(ctx context.Context, limit int) ([]Test, error) {
	return s.tests.ListTests(ctx, limit)
}

func (s *Service) GetTestQuestions(ctx context.Context, testID string) (Test, []Question, error) {
	test, err := s.GetTest(ctx, testID)
	if err != nil {
		return Test{}, nil, err
	}

	questions, err := s.tests.GetTestQuestions(ctx, test.TestID)
	if err != nil {
		return Test{}, nil, err
	}
	return test, questions, nil
}

// StartAttempt creates a new attempt for the student with
// endTime = startTime + test duration. The end time is fixed for the
// lifetime of the attempt and is never extended.
func (s *Service) StartAttempt(ctx context.Context, testID, student string) (Attempt, error) {
	studentNormalized, err := normalizeStudent(student)
	if err != nil {
		return Attempt{}, err
	}

	test, err := s.GetTest(ctx, testID)
	if err != nil {
		return Attempt{}, err
	}

	start := s.now().UTC()
	attempt := Attempt{
		AttemptID: s.newID(),
		TestID:    test.TestID,
		Student:   studentNormalized,
		StartTime: start,
		EndTime:   start.Add(test.Duration),
	}

	if err := s.attempts.CreateAttempt(ctx, attempt); err != nil {
		return Attempt{}, err
	}
	return attempt, nil
}

func (s *Service) GetAttempt(ctx context.Context, attemptID string) (Attempt, error) {
	attemptID = strings.TrimSpace(attemptID)
	if attemptID == "" {
		return Attempt{}, ErrAttemptNotFound
	}
	return s.attempts.GetAttempt(ctx, attemptID)
}

// SubmitAttempt scores the submitted answers against the attempt's test and
// persists the result. The first submission wins; a repeat fails with
// ErrAttemptAlreadySubmitted and leaves the stored result unchanged.
func (s *Service) SubmitAttempt(ctx context.Context, attemptID string, answers []Answer) (Result, error) {
	attempt, err := s.GetAttempt(ctx, attemptID)
	if err != nil {
		return Result{}, err
	}
	if attempt.Submitted() {
		return Result{}, ErrAttemptAlreadySubmitted
	}

	test, questions, err := s.GetTestQuestions(ctx, attempt.TestID)
	if err != nil {
		return Result{}, err
	}

	result := ScoreAnswers(questions, answers, test.PassingScore)
	if err := s.attempts.SaveSubmission(ctx, attempt.AttemptID, answers, result, s.now().UTC()); err != nil {
		return Result{}, err
	}
	return result, nil
}

// GetAttemptReview assembles the review-screen data for a submitted attempt:
// the stored result plus per-question selections and correctness.
func (s *Service) GetAttemptReview(ctx context.Context, attemptID string) (Review, error) {
	attempt, err := s.GetAttempt(ctx, attemptID)
	if err != nil {
		return Review{}, err
	}
	if !attempt.Submitted() {
		return Review{}, ErrAttemptNotFound
	}

	answers, result, err := s.attempts.GetSubmission(ctx, attempt.AttemptID)
	if err != nil {
		return Review{}, err
	}

	_, questions, err := s.GetTestQuestions(ctx, attempt.TestID)
	if err != nil {
		return Review{}, err
	}

	selectedByQuestion := make(map[string]string, len(answers))
	for _, answer := range answers {
		selectedByQuestion[answer.QuestionID] = answer.SelectedOptionID
	}

	items := make([]ReviewItem, 0, len(questions))
	for _, question := range questions {
		selected := selectedByQuestion[question.QuestionID]
		items = append(items, ReviewItem{
			Question:         question,
			SelectedOptionID: selected,
			Correct:          selected != "" && selected == question.CorrectOptionID,
		})
	}

	return Review{
		Attempt: attempt,
		Result:  result,
		Items:   items,
	}, nil
}

func normalizeStudent(student string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(student))
	if normalized == "" {
		return "", ErrInvalidStudent
	}
	return normalized, nil
}
