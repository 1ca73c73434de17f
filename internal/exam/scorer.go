package exam

// ScoreAnswers evaluates recorded answers against the question list and
// returns the tallied result. It is pure: no I/O, identical inputs yield
// identical output.
//
// Leniency policy: an answer naming an unknown question is skipped silently;
// it contributes neither a correct nor an incorrect tally. The denominator is
// always the number of questions, never the number of valid answers. A second
// answer for the same question replaces the first, matching AnswerSet
// semantics. The review flag has no bearing on correctness.
func ScoreAnswers(questions []Question, answers []Answer, passingScore int) Result {
	total := len(questions)
	if total == 0 {
		// Zero questions is a defined edge case, not an error.
		return Result{Score: 0, Total: 0, Percentage: 0, Passed: 0 >= passingScore}
	}

	correctByQuestion := make(map[string]string, total)
	for _, question := range questions {
		correctByQuestion[question.QuestionID] = question.CorrectOptionID
	}

	selected := make(map[string]string, len(answers))
	for _, answer := range answers {
		if _, ok := correctByQuestion[answer.QuestionID]; !ok {
			continue
		}
		selected[answer.QuestionID] = answer.SelectedOptionID
	}

	score := 0
	for questionID, optionID := range selected {
		if optionID != "" && optionID == correctByQuestion[questionID] {
			score++
		}
	}

	percentage := roundedPercentage(score, total)
	return Result{
		Score:      score,
		Total:      total,
		Percentage: percentage,
		Passed:     percentage >= passingScore,
	}
}

// Score is ScoreAnswers over an AnswerSet.
func Score(questions []Question, answers *AnswerSet, passingScore int) Result {
	return ScoreAnswers(questions, answers.InOrder(questions), passingScore)
}

// roundedPercentage computes round-half-up(score/total*100) in integer
// arithmetic so exact .5 quotients never depend on float representation.
func roundedPercentage(score, total int) int {
	return (200*score + total) / (2 * total)
}
