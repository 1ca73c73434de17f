package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
)

const defaultListLimit = 20

func (a *API) HandleListTests(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	limit, err := parseIntParam(r, "limit", defaultListLimit)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	tests, err := a.service.ListTests(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to list tests"})
		return
	}

	response := testsResponse{Tests: make([]testResponse, 0, len(tests))}
	for _, test := range tests {
		response.Tests = append(response.Tests, toTestResponse(test))
	}

	writeJSON(w, http.StatusOK, response)
}

func (a *API) HandleGetTest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	test, err := a.service.GetTest(r.Context(), r.PathValue("test_id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTestResponse(test))
}

func (a *API) HandleTestQuestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	test, questions, err := a.service.GetTestQuestions(r.Context(), r.PathValue("test_id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, testQuestionsResponse{
		TestID:        test.TestID,
		PassingScore:  test.PassingScore,
		QuestionCount: len(questions),
		Questions:     toQuestionResponses(questions),
	})
}

func (a *API) HandleStartAttempt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}

	defer r.Body.Close()

	var request startAttemptRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	attempt, err := a.service.StartAttempt(r.Context(), r.PathValue("test_id"), request.Student)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAttemptResponse(attempt))
}

func (a *API) HandleGetAttempt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	attempt, err := a.service.GetAttempt(r.Context(), r.PathValue("attempt_id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toAttemptResponse(attempt))
}

func (a *API) HandleSubmitAttempt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}

	defer r.Body.Close()

	var request submitAttemptRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	if request.Answers == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "answers is required"})
		return
	}

	attemptID := strings.TrimSpace(r.PathValue("attempt_id"))
	result, err := a.service.SubmitAttempt(r.Context(), attemptID, request.Answers)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResultResponse(result))
}

func (a *API) HandleAttemptReview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	review, err := a.service.GetAttemptReview(r.Context(), r.PathValue("attempt_id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	items := make([]reviewItemResponse, 0, len(review.Items))
	for _, item := range review.Items {
		items = append(items, reviewItemResponse{
			QuestionID:       item.Question.QuestionID,
			Text:             item.Question.Text,
			Options:          item.Question.Options,
			CorrectOptionID:  item.Question.CorrectOptionID,
			SelectedOptionID: item.SelectedOptionID,
			Correct:          item.Correct,
			Explanation:      item.Question.Explanation,
		})
	}

	writeJSON(w, http.StatusOK, reviewResponse{
		Attempt: toAttemptResponse(review.Attempt),
		Result:  toResultResponse(review.Result),
		Items:   items,
	})
}
