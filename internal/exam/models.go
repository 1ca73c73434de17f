package exam

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"time"
)

// Option is one selectable choice of a multiple-choice question.
type Option struct {
	OptionID string `json:"option_id"`
	Label    string `json:"label"`
	Text     string `json:"text"`
}

// Question is one test item. Questions are immutable once an attempt begins.
type Question struct {
	QuestionID      string   `json:"question_id"`
	Order           int      `json:"order"`
	Subject         string   `json:"subject,omitempty"`
	Text            string   `json:"text"`
	Options         []Option `json:"options"`
	CorrectOptionID string   `json:"correct_option_id"`
	Explanation     string   `json:"explanation,omitempty"`
}

// Test describes one purchasable test in the catalog.
type Test struct {
	TestID        string
	Name          string
	Subject       string
	Duration      time.Duration
	PassingScore  int
	QuestionCount int
	CreatedAt     time.Time
}

// Attempt is one timed session of a student taking a test. EndTime is issued
// once at creation and is authoritative; it is never recomputed or extended.
type Attempt struct {
	AttemptID   string
	TestID      string
	Student     string
	StartTime   time.Time
	EndTime     time.Time
	SubmittedAt *time.Time
}

func (a Attempt) Submitted() bool {
	return a.SubmittedAt != nil
}

// Answer records student intent for a single question. The selection and the
// review flag are independent; an entry may carry only a review flag.
type Answer struct {
	QuestionID       string `json:"question_id"`
	SelectedOptionID string `json:"selected_option_id,omitempty"`
	MarkedForReview  bool   `json:"marked_for_review,omitempty"`
}

// Result is the output of scoring an attempt.
type Result struct {
	Score      int  `json:"score"`
	Total      int  `json:"total"`
	Percentage int  `json:"percentage"`
	Passed     bool `json:"passed"`
}

// ReviewItem pairs a question with what the student selected for the
// post-submission review screen.
type ReviewItem struct {
	Question         Question
	SelectedOptionID string
	Correct          bool
}

// Review is everything the review screen needs for a submitted attempt.
type Review struct {
	Attempt Attempt
	Result  Result
	Items   []ReviewItem
}

// MakeQuestionID derives a stable identifier from question content so seed
// files can omit explicit IDs without producing duplicates across reloads.
func MakeQuestionID(question Question) string {
	var keyBuilder strings.Builder
	keyBuilder.WriteString(question.Text)
	for _, option := range question.Options {
		keyBuilder.WriteString("|")
		keyBuilder.WriteString(option.Text)
	}

	hash := sha1.Sum([]byte(keyBuilder.String()))
	return "q_" + hex.EncodeToString(hash[:])
}
