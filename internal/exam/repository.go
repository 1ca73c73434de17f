package exam

import (
	"context"
	"errors"
	"time"
)

var (
	ErrTestNotFound            = errors.New("test not found")
	ErrAttemptNotFound         = errors.New("attempt not found")
	ErrAttemptAlreadySubmitted = errors.New("attempt already submitted")
	ErrInvalidStudent          = errors.New("invalid student name")

	// Session-side errors surfaced to the UI layer.
	ErrUnansweredQuestions = errors.New("attempt has unanswered questions")
	ErrAttemptBackgrounded = errors.New("attempt is backgrounded")
	ErrSubmissionInFlight  = errors.New("submission already in flight")
)

type TestRepository interface {
	CreateTest(ctx context.Context, test Test, questions []Question) error
	GetTest(ctx context.Context, testID string) (Test, error)
	GetTestQuestions(ctx context.Context, testID string) ([]Question, error)
	ListTests(ctx context.Context, limit int) ([]Test, error)
}

type AttemptRepository interface {
	CreateAttempt(ctx context.Context, attempt Attempt) error
	GetAttempt(ctx context.Context, attemptID string) (Attempt, error)
	// SaveSubmission persists answers and result for a not-yet-submitted
	// attempt. A second call for the same attempt must fail with
	// ErrAttemptAlreadySubmitted and leave the first submission unchanged.
	SaveSubmission(ctx context.Context, attemptID string, answers []Answer, result Result, submittedAt time.Time) error
	GetSubmission(ctx context.Context, attemptID string) ([]Answer, Result, error)
}
