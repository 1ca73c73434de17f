package studentclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"testprep-app/internal/exam"
)

var ErrServiceUnavailable = errors.New("test service unavailable")

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

type testItem struct {
	TestID          string `json:"test_id"`
	Name            string `json:"name"`
	Subject         string `json:"subject"`
	DurationSeconds int    `json:"duration_seconds"`
	PassingScore    int    `json:"passing_score"`
	QuestionCount   int    `json:"question_count"`
}

type testsResponse struct {
	Tests []testItem `json:"tests"`
}

type questionItem struct {
	QuestionID      string        `json:"question_id"`
	Order           int           `json:"order"`
	Subject         string        `json:"subject"`
	Text            string        `json:"text"`
	Options         []exam.Option `json:"options"`
	CorrectOptionID string        `json:"correct_option_id"`
	Explanation     string        `json:"explanation"`
}

type testQuestionsResponse struct {
	TestID        string         `json:"test_id"`
	PassingScore  int            `json:"passing_score"`
	QuestionCount int            `json:"question_count"`
	Questions     []questionItem `json:"questions"`
}

type startAttemptRequest struct {
	Student string `json:"student"`
}

type attemptResponse struct {
	AttemptID string `json:"attempt_id"`
	TestID    string `json:"test_id"`
	Student   string `json:"student"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
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

type reviewItem struct {
	QuestionID       string        `json:"question_id"`
	Text             string        `json:"text"`
	Options          []exam.Option `json:"options"`
	CorrectOptionID  string        `json:"correct_option_id"`
	SelectedOptionID string        `json:"selected_option_id"`
	Correct          bool          `json:"correct"`
	Explanation      string        `json:"explanation"`
}

type reviewResponse struct {
	Result resultResponse `json:"result"`
	Items  []reviewItem   `json:"items"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewHTTPClient(baseURL string, httpClient *http.Client) *HTTPClient {
	baseURL = strings.TrimSpace(baseURL)
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = "http://127.0.0.1:8080"
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

func (c *HTTPClient) ListTests(ctx context.Context, limit int) ([]exam.Test, error) {
	if limit <= 0 {
		limit = 20
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))

	var payload testsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/tests?"+query.Encode(), nil, &payload); err != nil {
		return nil, err
	}

	tests := make([]exam.Test, 0, len(payload.Tests))
	for _, item := range payload.Tests {
		tests = append(tests, exam.Test{
			TestID:        item.TestID,
			Name:          item.Name,
			Subject:       item.Subject,
			Duration:      time.Duration(item.DurationSeconds) * time.Second,
			PassingScore:  item.PassingScore,
			QuestionCount: item.QuestionCount,
		})
	}

	return tests, nil
}

func (c *HTTPClient) GetTestQuestions(ctx context.Context, testID string) (int, []exam.Question, error) {
	if strings.TrimSpace(testID) == "" {
		return 0, nil, errors.New("test_id is required")
	}

	var payload testQuestionsResponse
	path := "/tests/" + url.PathEscape(testID) + "/questions"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return 0, nil, err
	}

	questions := make([]exam.Question, 0, len(payload.Questions))
	for _, item := range payload.Questions {
		questions = append(questions, exam.Question{
			QuestionID:      item.QuestionID,
			Order:           item.Order,
			Subject:         item.Subject,
			Text:            item.Text,
			Options:         item.Options,
			CorrectOptionID: item.CorrectOptionID,
			Explanation:     item.Explanation,
		})
	}

	return payload.PassingScore, questions, nil
}

// StartAttempt asks the service to open a timed attempt. The returned end
// time is authoritative; the client never recomputes it from the test
// duration.
func (c *HTTPClient) StartAttempt(ctx context.Context, testID, student string) (exam.Attempt, error) {
	if strings.TrimSpace(testID) == "" {
		return exam.Attempt{}, errors.New("test_id is required")
	}

	request := startAttemptRequest{Student: student}
	path := "/tests/" + url.PathEscape(testID) + "/attempts"

	var payload attemptResponse
	if err := c.doJSON(ctx, http.MethodPost, path, request, &payload); err != nil {
		return exam.Attempt{}, err
	}

	startTime, err := parseTime(payload.StartTime)
	if err != nil {
		return exam.Attempt{}, err
	}
	endTime, err := parseTime(payload.EndTime)
	if err != nil {
		return exam.Attempt{}, err
	}

	return exam.Attempt{
		AttemptID: payload.AttemptID,
		TestID:    payload.TestID,
		Student:   payload.Student,
		StartTime: startTime,
		EndTime:   endTime,
	}, nil
}

func (c *HTTPClient) SubmitAttempt(ctx context.Context, attemptID string, answers []exam.Answer) (exam.Result, error) {
	if strings.TrimSpace(attemptID) == "" {
		return exam.Result{}, errors.New("attempt_id is required")
	}
	if answers == nil {
		answers = []exam.Answer{}
	}

	request := submitAttemptRequest{Answers: answers}
	path := "/attempts/" + url.PathEscape(attemptID) + "/submission"

	var payload resultResponse
	if err := c.doJSON(ctx, http.MethodPost, path, request, &payload); err != nil {
		return exam.Result{}, err
	}

	return exam.Result{
		Score:      payload.Score,
		Total:      payload.Total,
		Percentage: payload.Percentage,
		Passed:     payload.Passed,
	}, nil
}

func (c *HTTPClient) GetAttemptReview(ctx context.Context, attemptID string) (exam.Result, []reviewItem, error) {
	if strings.TrimSpace(attemptID) == "" {
		return exam.Result{}, nil, errors.New("attempt_id is required")
	}

	var payload reviewResponse
	path := "/attempts/" + url.PathEscape(attemptID) + "/review"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return exam.Result{}, nil, err
	}

	result := exam.Result{
		Score:      payload.Result.Score,
		Total:      payload.Result.Total,
		Percentage: payload.Result.Percentage,
		Passed:     payload.Result.Passed,
	}
	return result, payload.Items, nil
}

// Submit implements exam.Submitter so a Session can hand its answers
// straight to the service.
func (c *HTTPClient) Submit(ctx context.Context, attemptID string, answers []exam.Answer) (exam.Result, error) {
	return c.SubmitAttempt(ctx, attemptID, answers)
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, requestBody any, responseBody any) error {
	fullURL := c.baseURL + path

	var body io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return err
	}
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer response.Body.Close()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		apiErr := APIError{StatusCode: response.StatusCode}
		var payload errorResponse
		if err := json.NewDecoder(response.Body).Decode(&payload); err == nil && strings.TrimSpace(payload.Error) != "" {
			apiErr.Message = payload.Error
		}
		if apiErr.Message == "" {
			apiErr.Message = response.Status
		}
		return &apiErr
	}

	if responseBody == nil {
		return nil
	}
	return json.NewDecoder(response.Body).Decode(responseBody)
}

func parseTime(value string) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", value, err)
	}
	return parsed, nil
}
