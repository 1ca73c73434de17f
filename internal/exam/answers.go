package exam

// AnswerSet is the in-memory record of student intent during an attempt.
// It never validates correctness; correctness is evaluated only at scoring
// time. Selecting an option replaces any previous selection for that question
// and the review flag is independent of the selection.
type AnswerSet struct {
	byQuestion map[string]Answer
}

func NewAnswerSet() *AnswerSet {
	return &AnswerSet{byQuestion: make(map[string]Answer)}
}

// Select records optionID for questionID, replacing any previous selection.
// An existing review flag is preserved.
func (s *AnswerSet) Select(questionID, optionID string) {
	answer := s.byQuestion[questionID]
	answer.QuestionID = questionID
	answer.SelectedOptionID = optionID
	s.byQuestion[questionID] = answer
}

// ToggleReview flips the review flag for questionID, creating a
// flagged-but-unanswered entry if none exists. The selection is preserved.
func (s *AnswerSet) ToggleReview(questionID string) {
	answer := s.byQuestion[questionID]
	answer.QuestionID = questionID
	answer.MarkedForReview = !answer.MarkedForReview
	s.byQuestion[questionID] = answer
}

func (s *AnswerSet) Get(questionID string) (Answer, bool) {
	answer, ok := s.byQuestion[questionID]
	return answer, ok
}

// Answered reports whether a selection has been recorded for questionID.
// A flagged-only entry does not count.
func (s *AnswerSet) Answered(questionID string) bool {
	answer, ok := s.byQuestion[questionID]
	return ok && answer.SelectedOptionID != ""
}

func (s *AnswerSet) AnsweredCount() int {
	count := 0
	for _, answer := range s.byQuestion {
		if answer.SelectedOptionID != "" {
			count++
		}
	}
	return count
}

// Unanswered returns the IDs of questions with no recorded selection, in
// question order.
func (s *AnswerSet) Unanswered(questions []Question) []string {
	missing := make([]string, 0)
	for _, question := range questions {
		if !s.Answered(question.QuestionID) {
			missing = append(missing, question.QuestionID)
		}
	}
	return missing
}

// InOrder returns the recorded answers ordered by the given question list.
// Entries for unknown questions are dropped; questions without an entry
// produce none.
func (s *AnswerSet) InOrder(questions []Question) []Answer {
	answers := make([]Answer, 0, len(s.byQuestion))
	for _, question := range questions {
		if answer, ok := s.byQuestion[question.QuestionID]; ok {
			answers = append(answers, answer)
		}
	}
	return answers
}
