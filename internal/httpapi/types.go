package httpapi

import (
	"time"

	"testprep-app/internal/exam"
)

type testResponse struct {
	TestID          string    `json:"test_id"`
	Name            string    `json:"name"`
	Subject         string    `json:"subject,omitempty"`
	DurationSeconds int       `json:"duration_seconds"`
	PassingScore    int       `json:"passing_score"`
	QuestionCount   int       `json:"question_count"`
	CreatedAt       time.Time `json:"created_at"`
}

type testsResponse struct {
	Tests []testResponse `json:"tests"`
}

type questionResponse struct {
	QuestionID      string        `json:"question_id"`
	Order           int           `json:"order"`
	Subject         string        `json:"subject,omitempty"`
	Text            string        `json:"text"`
	Options         []exam.Option `json:"options"`
	CorrectOptionID string        `json:"correct_option_id"`
	Explanation     string        `json:"explanation,omitempty"`
}

type testQuestionsResponse struct {
	TestID        string             `json:"test_id"`
	PassingScore  int                `json:"passing_score"`
	QuestionCount int                `json:"question_count"`
	Questions     []questionResponse `json:"questions"`
}

type startAttemptRequest struct {
	Student string `json:"student"`
}

// Timestamps cross the wire as ISO-8601 via time.Time's RFC 3339 encoding.
// end_time is authoritative: the client must never recompute it from the
// test duration.
type attemptResponse struct {
	AttemptID   string     `json:"attempt_id"`
	TestID      string     `json:"test_id"`
	Student     string     `json:"student"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     time.Time  `json:"end_time"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
}

type submitAttemptRequest struct {
	Answers []exam.Answer `json:"answers"`
}

type resultResponse struct {
	Score      int  `json:"score"`
	Total      int  `json:"total"`
	Percentage int  `json:"percentage"`
	Passed     bool `json:"passed"`
}

type reviewItemResponse struct {
	QuestionID       string        `json:"question_id"`
	Text             string        `json:"text"`
	Options          []exam.Option `json:"options"`
	CorrectOptionID  string        `json:"correct_option_id"`
	SelectedOptionID string        `json:"selected_option_id,omitempty"`
	Correct          bool          `json:"correct"`
	Explanation      string        `json:"explanation,omitempty"`
}

type reviewResponse struct {
	Attempt attemptResponse      `json:"attempt"`
	Result  resultResponse       `json:"result"`
	Items   []reviewItemResponse `json:"items"`
}

type errorResponse struct {
	Error string `json:"error"`
}
