package exam

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeTestRepo struct {
	tests     map[string]Test
	questions map[string][]Question

	createCalls int
}

func newFakeTestRepo() *fakeTestRepo {
	return &fakeTestRepo{
		tests:     make(map[string]Test),
		questions: make(map[string][]Question),
	}
}

func (f *fakeTestRepo) CreateTest(_ context.Context, test Test, questions []Question) error {
	f.createCalls++
	f.tests[test.TestID] = test
	f.questions[test.TestID] = questions
	return nil
}

func (f *fakeTestRepo) GetTest(_ context.Context, testID string) (Test, error) {
	test, ok := f.tests[testID]
	if !ok {
		return Test{}, ErrTestNotFound
	}
	return test, nil
}

func (f *fakeTestRepo) GetTestQuestions(_ context.Context, testID string) ([]Question, error) {
	questions, ok := f.questions[testID]
	if !ok {
		return nil, ErrTestNotFound
	}
	return questions, nil
}

func (f *fakeTestRepo) ListTests(_ context.Context, limit int) ([]Test, error) {
	out := make([]Test, 0, len(f.tests))
	for _, test := range f.tests {
		out = append(out, test)
	}
	if limit > 0 && limit < len(out) {
		return out[:limit], nil
	}
	return out, nil
}

type fakeAttemptRepo struct {
	attempts    map[string]Attempt
	submissions map[string][]Answer
	results     map[string]Result
}

func newFakeAttemptRepo() *fakeAttemptRepo {
	return &fakeAttemptRepo{
		attempts:    make(map[string]Attempt),
		submissions: make(map[string][]Answer),
		results:     make(map[string]Result),
	}
}

func (f *fakeAttemptRepo) CreateAttempt(_ context.Context, attempt Attempt) error {
	f.attempts[attempt.AttemptID] = attempt
	return nil
}

func (f *fakeAttemptRepo) GetAttempt(_ context.Context, attemptID string) (Attempt, error) {
	attempt, ok := f.attempts[attemptID]
	if !ok {
		return Attempt{}, ErrAttemptNotFound
	}
	return attempt, nil
}

func (f *fakeAttemptRepo) SaveSubmission(_ context.Context, attemptID string, answers []Answer, result Result, submittedAt time.Time) error {
	attempt, ok := f.attempts[attemptID]
	if !ok {
		return ErrAttemptNotFound
	}
	if attempt.SubmittedAt != nil {
		return ErrAttemptAlreadySubmitted
	}
	attempt.SubmittedAt = &submittedAt
	f.attempts[attemptID] = attempt
	f.submissions[attemptID] = answers
	f.results[attemptID] = result
	return nil
}

func (f *fakeAttemptRepo) GetSubmission(_ context.Context, attemptID string) ([]Answer, Result, error) {
	attempt, ok := f.attempts[attemptID]
	if !ok || attempt.SubmittedAt == nil {
		return nil, Result{}, ErrAttemptNotFound
	}
	return f.submissions[attemptID], f.results[attemptID], nil
}

func newServiceFixture(t *testing.T) (*Service, *fakeTestRepo, *fakeAttemptRepo) {
	t.Helper()

	tests := newFakeTestRepo()
	attempts := newFakeAttemptRepo()
	tests.tests["test-1"] = Test{
		TestID:       "test-1",
		Name:         "Algebra basics",
		Duration:     80 * time.Minute,
		PassingScore: 50,
	}
	tests.questions["test-1"] = buildQuestions(4)

	service := NewService(tests, attempts)
	ids := 0
	service.newID = func() string { ids++; return "attempt-" + string(rune('0'+ids)) }
	service.now = func() time.Time { return time.Unix(1_700_000_000, 0).UTC() }

	return service, tests, attempts
}

func TestServiceStartAttemptIssuesDeadline(t *testing.T) {
	service, _, attempts := newServiceFixture(t)

	attempt, err := service.StartAttempt(context.Background(), "test-1", "  Sam ")
	if err != nil {
		t.Fatalf("start attempt failed: %v", err)
	}

	if attempt.Student != "sam" {
		t.Fatalf("expected normalized student name, got %q", attempt.Student)
	}
	if want := attempt.StartTime.Add(80 * time.Minute); !attempt.EndTime.Equal(want) {
		t.Fatalf("expected endTime=startTime+duration, got %v (want %v)", attempt.EndTime, want)
	}
	if _, ok := attempts.attempts[attempt.AttemptID]; !ok {
		t.Fatal("expected the attempt to be persisted")
	}
}

func TestServiceStartAttemptValidation(t *testing.T) {
	service, _, _ := newServiceFixture(t)

	if _, err := service.StartAttempt(context.Background(), "test-1", "   "); !errors.Is(err, ErrInvalidStudent) {
		t.Fatalf("expected ErrInvalidStudent, got %v", err)
	}
	if _, err := service.StartAttempt(context.Background(), "missing", "sam"); !errors.Is(err, ErrTestNotFound) {
		t.Fatalf("expected ErrTestNotFound, got %v", err)
	}
}

func TestServiceSubmitAttemptScoresAndPersists(t *testing.T) {
	service, _, attempts := newServiceFixture(t)

	attempt, err := service.StartAttempt(context.Background(), "test-1", "sam")
	if err != nil {
		t.Fatalf("start attempt failed: %v", err)
	}

	answers := []Answer{
		correctAnswer("qa"),
		correctAnswer("qb"),
		wrongAnswer("qc"),
	}

	result, err := service.SubmitAttempt(context.Background(), attempt.AttemptID, answers)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if result.Score != 2 || result.Total != 4 || result.Percentage != 50 || !result.Passed {
		t.Fatalf("unexpected result %+v", result)
	}
	if stored := attempts.results[attempt.AttemptID]; stored != result {
		t.Fatalf("expected the result to be persisted, got %+v", stored)
	}
}

func TestServiceSubmitAttemptTwiceFails(t *testing.T) {
	service, _, attempts := newServiceFixture(t)

	attempt, err := service.StartAttempt(context.Background(), "test-1", "sam")
	if err != nil {
		t.Fatalf("start attempt failed: %v", err)
	}

	first, err := service.SubmitAttempt(context.Background(), attempt.AttemptID, []Answer{correctAnswer("qa")})
	if err != nil {
		t.Fatalf("first submit failed: %v", err)
	}

	if _, err := service.SubmitAttempt(context.Background(), attempt.AttemptID, nil); !errors.Is(err, ErrAttemptAlreadySubmitted) {
		t.Fatalf("expected ErrAttemptAlreadySubmitted, got %v", err)
	}
	if stored := attempts.results[attempt.AttemptID]; stored != first {
		t.Fatalf("repeat submission must not overwrite the stored result, got %+v", stored)
	}
}

func TestServiceSubmitUnknownAttempt(t *testing.T) {
	service, _, _ := newServiceFixture(t)

	if _, err := service.SubmitAttempt(context.Background(), "missing", nil); !errors.Is(err, ErrAttemptNotFound) {
		t.Fatalf("expected ErrAttemptNotFound, got %v", err)
	}
}

func TestServiceGetAttemptReview(t *testing.T) {
	service, _, _ := newServiceFixture(t)

	attempt, err := service.StartAttempt(context.Background(), "test-1", "sam")
	if err != nil {
		t.Fatalf("start attempt failed: %v", err)
	}

	// Review before submission behaves as not found.
	if _, err := service.GetAttemptReview(context.Background(), attempt.AttemptID); !errors.Is(err, ErrAttemptNotFound) {
		t.Fatalf("expected ErrAttemptNotFound before submission, got %v", err)
	}

	answers := []Answer{correctAnswer("qa"), wrongAnswer("qb")}
	if _, err := service.SubmitAttempt(context.Background(), attempt.AttemptID, answers); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	review, err := service.GetAttemptReview(context.Background(), attempt.AttemptID)
	if err != nil {
		t.Fatalf("review failed: %v", err)
	}
	if len(review.Items) != 4 {
		t.Fatalf("expected one review item per question, got %d", len(review.Items))
	}
	if !review.Items[0].Correct || review.Items[1].Correct {
		t.Fatalf("unexpected correctness: %+v", review.Items[:2])
	}
	if review.Items[3].SelectedOptionID != "" || review.Items[3].Correct {
		t.Fatalf("unanswered question must be incorrect with no selection, got %+v", review.Items[3])
	}
}
