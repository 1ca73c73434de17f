package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"testprep-app/internal/exam"
)

type memoryTestRepo struct {
	tests     map[string]exam.Test
	questions map[string][]exam.Question
}

func (m *memoryTestRepo) CreateTest(_ context.Context, test exam.Test, questions []exam.Question) error {
	m.tests[test.TestID] = test
	m.questions[test.TestID] = questions
	return nil
}

func (m *memoryTestRepo) GetTest(_ context.Context, testID string) (exam.Test, error) {
	test, ok := m.tests[testID]
	if !ok {
		return exam.Test{}, exam.ErrTestNotFound
	}
	return test, nil
}

func (m *memoryTestRepo) GetTestQuestions(_ context.Context, testID string) ([]exam.Question, error) {
	questions, ok := m.questions[testID]
	if !ok {
		return nil, exam.ErrTestNotFound
	}
	return questions, nil
}

func (m *memoryTestRepo) ListTests(_ context.Context, limit int) ([]exam.Test, error) {
	out := make([]exam.Test, 0, len(m.tests))
	for _, test := range m.tests {
		out = append(out, test)
	}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

type memoryAttemptRepo struct {
	attempts    map[string]exam.Attempt
	submissions map[string][]exam.Answer
	results     map[string]exam.Result
}

func (m *memoryAttemptRepo) CreateAttempt(_ context.Context, attempt exam.Attempt) error {
	m.attempts[attempt.AttemptID] = attempt
	return nil
}

func (m *memoryAttemptRepo) GetAttempt(_ context.Context, attemptID string) (exam.Attempt, error) {
	attempt, ok := m.attempts[attemptID]
	if !ok {
		return exam.Attempt{}, exam.ErrAttemptNotFound
	}
	return attempt, nil
}

func (m *memoryAttemptRepo) SaveSubmission(_ context.Context, attemptID string, answers []exam.Answer, result exam.Result, submittedAt time.Time) error {
	attempt, ok := m.attempts[attemptID]
	if !ok {
		return exam.ErrAttemptNotFound
	}
	if attempt.SubmittedAt != nil {
		return exam.ErrAttemptAlreadySubmitted
	}
	attempt.SubmittedAt = &submittedAt
	m.attempts[attemptID] = attempt
	m.submissions[attemptID] = answers
	m.results[attemptID] = result
	return nil
}

func (m *memoryAttemptRepo) GetSubmission(_ context.Context, attemptID string) ([]exam.Answer, exam.Result, error) {
	attempt, ok := m.attempts[attemptID]
	if !ok || attempt.SubmittedAt == nil {
		return nil, exam.Result{}, exam.ErrAttemptNotFound
	}
	return m.submissions[attemptID], m.results[attemptID], nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	tests := &memoryTestRepo{
		tests:     make(map[string]exam.Test),
		questions: make(map[string][]exam.Question),
	}
	attempts := &memoryAttemptRepo{
		attempts:    make(map[string]exam.Attempt),
		submissions: make(map[string][]exam.Answer),
		results:     make(map[string]exam.Result),
	}

	tests.tests["test-1"] = exam.Test{
		TestID:        "test-1",
		Name:          "Algebra basics",
		Duration:      80 * time.Minute,
		PassingScore:  50,
		QuestionCount: 2,
	}
	tests.questions["test-1"] = []exam.Question{
		{
			QuestionID: "qa",
			Order:      0,
			Text:       "2 + 2 = ?",
			Options: []exam.Option{
				{OptionID: "qa-o1", Label: "A", Text: "4"},
				{OptionID: "qa-o2", Label: "B", Text: "5"},
			},
			CorrectOptionID: "qa-o1",
		},
		{
			QuestionID: "qb",
			Order:      1,
			Text:       "3 * 3 = ?",
			Options: []exam.Option{
				{OptionID: "qb-o1", Label: "A", Text: "6"},
				{OptionID: "qb-o2", Label: "B", Text: "9"},
			},
			CorrectOptionID: "qb-o2",
		},
	}

	server := httptest.NewServer(NewRouter(exam.NewService(tests, attempts)))
	t.Cleanup(server.Close)
	return server
}

func decodeBody(t *testing.T, resp *http.Response, target any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func startAttempt(t *testing.T, server *httptest.Server) attemptResponse {
	t.Helper()

	resp, err := http.Post(server.URL+"/tests/test-1/attempts", "application/json", strings.NewReader(`{"student":"sam"}`))
	if err != nil {
		t.Fatalf("start attempt: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var attempt attemptResponse
	decodeBody(t, resp, &attempt)
	return attempt
}

func TestListTests(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/tests")
	if err != nil {
		t.Fatalf("list tests: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body testsResponse
	decodeBody(t, resp, &body)
	if len(body.Tests) != 1 || body.Tests[0].TestID != "test-1" {
		t.Fatalf("unexpected tests: %+v", body.Tests)
	}
	if body.Tests[0].DurationSeconds != 4800 {
		t.Fatalf("expected 4800s duration, got %d", body.Tests[0].DurationSeconds)
	}
}

func TestGetTestNotFound(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/tests/missing")
	if err != nil {
		t.Fatalf("get test: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestGetTestQuestions(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/tests/test-1/questions")
	if err != nil {
		t.Fatalf("get questions: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body testQuestionsResponse
	decodeBody(t, resp, &body)
	if body.QuestionCount != 2 || len(body.Questions) != 2 {
		t.Fatalf("unexpected question payload: %+v", body)
	}
	if body.PassingScore != 50 {
		t.Fatalf("expected passing score 50, got %d", body.PassingScore)
	}
	if body.Questions[0].CorrectOptionID != "qa-o1" {
		t.Fatalf("expected the answer key in the payload, got %+v", body.Questions[0])
	}
}

func TestStartAttempt(t *testing.T) {
	server := newTestServer(t)

	attempt := startAttempt(t, server)
	if attempt.Student != "sam" || attempt.TestID != "test-1" {
		t.Fatalf("unexpected attempt: %+v", attempt)
	}
	if want := attempt.StartTime.Add(80 * time.Minute); !attempt.EndTime.Equal(want) {
		t.Fatalf("expected end_time=start_time+duration, got %v (want %v)", attempt.EndTime, want)
	}
	if attempt.SubmittedAt != nil {
		t.Fatalf("new attempt must not be submitted: %+v", attempt)
	}
}

func TestStartAttemptRejectsBlankStudent(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Post(server.URL+"/tests/test-1/attempts", "application/json", strings.NewReader(`{"student":"   "}`))
	if err != nil {
		t.Fatalf("start attempt: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestSubmitAttempt(t *testing.T) {
	server := newTestServer(t)
	attempt := startAttempt(t, server)

	payload := `{"answers":[{"question_id":"qa","selected_option_id":"qa-o1"},{"question_id":"qb","selected_option_id":"qb-o1"}]}`
	resp, err := http.Post(server.URL+"/attempts/"+attempt.AttemptID+"/submission", "application/json", strings.NewReader(payload))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result resultResponse
	decodeBody(t, resp, &result)
	if result.Score != 1 || result.Total != 2 || result.Percentage != 50 || !result.Passed {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestSubmitAttemptTwiceConflicts(t *testing.T) {
	server := newTestServer(t)
	attempt := startAttempt(t, server)

	payload := `{"answers":[]}`
	url := server.URL + "/attempts/" + attempt.AttemptID + "/submission"

	resp, err := http.Post(url, "application/json", strings.NewReader(payload))
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on first submit, got %d", resp.StatusCode)
	}

	resp, err = http.Post(url, "application/json", strings.NewReader(payload))
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 on repeat submit, got %d", resp.StatusCode)
	}
}

func TestSubmitAttemptRequiresAnswers(t *testing.T) {
	server := newTestServer(t)
	attempt := startAttempt(t, server)

	resp, err := http.Post(server.URL+"/attempts/"+attempt.AttemptID+"/submission", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing answers, got %d", resp.StatusCode)
	}
}

func TestAttemptReview(t *testing.T) {
	server := newTestServer(t)
	attempt := startAttempt(t, server)

	reviewURL := server.URL + "/attempts/" + attempt.AttemptID + "/review"

	resp, err := http.Get(reviewURL)
	if err != nil {
		t.Fatalf("review before submit: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 before submission, got %d", resp.StatusCode)
	}

	payload := `{"answers":[{"question_id":"qa","selected_option_id":"qa-o2"}]}`
	resp, err = http.Post(server.URL+"/attempts/"+attempt.AttemptID+"/submission", "application/json", strings.NewReader(payload))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	resp.Body.Close()

	resp, err = http.Get(reviewURL)
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var review reviewResponse
	decodeBody(t, resp, &review)
	if len(review.Items) != 2 {
		t.Fatalf("expected one item per question, got %d", len(review.Items))
	}
	if review.Items[0].Correct || review.Items[0].SelectedOptionID != "qa-o2" {
		t.Fatalf("unexpected first item: %+v", review.Items[0])
	}
	if review.Items[1].SelectedOptionID != "" || review.Items[1].Correct {
		t.Fatalf("unanswered item must carry no selection: %+v", review.Items[1])
	}
	if review.Attempt.SubmittedAt == nil {
		t.Fatal("review attempt must be submitted")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Post(server.URL+"/tests", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("post tests: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
	if allow := resp.Header.Get("Allow"); allow != http.MethodGet {
		t.Fatalf("expected Allow: GET, got %q", allow)
	}
}
