package httpapi

import "testprep-app/internal/exam"

type API struct {
	service *exam.Service
}

func NewAPI(service *exam.Service) *API {
	return &API{service: service}
}
