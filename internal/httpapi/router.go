package httpapi

import (
	"net/http"

	"testprep-app/internal/exam"
)

func NewRouter(service *exam.Service) http.Handler {
	api := NewAPI(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/tests", api.HandleListTests)
	mux.HandleFunc("/tests/{test_id}", api.HandleGetTest)
	mux.HandleFunc("/tests/{test_id}/questions", api.HandleTestQuestions)
	mux.HandleFunc("/tests/{test_id}/attempts", api.HandleStartAttempt)
	mux.HandleFunc("/attempts/{attempt_id}", api.HandleGetAttempt)
	mux.HandleFunc("/attempts/{attempt_id}/submission", api.HandleSubmitAttempt)
	mux.HandleFunc("/attempts/{attempt_id}/review", api.HandleAttemptReview)

	return mux
}
