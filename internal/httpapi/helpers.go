package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"testprep-app/internal/exam"
)

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, exam.ErrTestNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "test not found"})
	case errors.Is(err, exam.ErrAttemptNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "attempt not found"})
	case errors.Is(err, exam.ErrAttemptAlreadySubmitted):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "attempt already submitted"})
	case errors.Is(err, exam.ErrInvalidStudent):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "student name is required to start an attempt"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "request failed"})
	}
}

func toTestResponse(test exam.Test) testResponse {
	return testResponse{
		TestID:          test.TestID,
		Name:            test.Name,
		Subject:         test.Subject,
		DurationSeconds: int(test.Duration.Seconds()),
		PassingScore:    test.PassingScore,
		QuestionCount:   test.QuestionCount,
		CreatedAt:       test.CreatedAt,
	}
}

func toQuestionResponses(questions []exam.Question) []questionResponse {
	response := make([]questionResponse, 0, len(questions))
	for _, question := range questions {
		// Intentionally expose correct_option_id because the client scores
		// locally during the attempt (offline mode) and shows explanations on
		// review. Fine for a study tool, not for adversarial clients.
		response = append(response, questionResponse{
			QuestionID:      question.QuestionID,
			Order:           question.Order,
			Subject:         question.Subject,
			Text:            question.Text,
			Options:         question.Options,
			CorrectOptionID: question.CorrectOptionID,
			Explanation:     question.Explanation,
		})
	}
	return response
}

func toAttemptResponse(attempt exam.Attempt) attemptResponse {
	return attemptResponse{
		AttemptID:   attempt.AttemptID,
		TestID:      attempt.TestID,
		Student:     attempt.Student,
		StartTime:   attempt.StartTime,
		EndTime:     attempt.EndTime,
		SubmittedAt: attempt.SubmittedAt,
	}
}

func toResultResponse(result exam.Result) resultResponse {
	return resultResponse{
		Score:      result.Score,
		Total:      result.Total,
		Percentage: result.Percentage,
		Passed:     result.Passed,
	}
}

func parseIntParam(r *http.Request, key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return 0, errors.New(key + " must be a positive integer")
	}
	return parsed, nil
}

func writeMethodNotAllowed(w http.ResponseWriter, allowedMethod string) {
	w.Header().Set("Allow", allowedMethod)
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}
