package handler

import (
	"net/http"

	customError "github.com/segyhp/microloans/pkg/errors"
	"github.com/segyhp/microloans/pkg/response"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type route struct {
	method  string
	path    string
	handler http.HandlerFunc
}

func routes(loans *LoanHandler, health *HealthHandler) []route {
	return []route{
		{http.MethodGet, "/health", health.Health},
		{http.MethodGet, "/health/ready", health.Ready},
		{http.MethodGet, "/api/loans", loans.ListLoans},
		{http.MethodPost, "/api/loans", loans.CreateLoan},
		{http.MethodGet, "/api/loans/{id}", loans.GetLoan},
		{http.MethodGet, "/api/stats", loans.GetStats},
	}
}

// NewRouter registers the route table and the middleware chain.
func NewRouter(loans *LoanHandler, health *HealthHandler, log logrus.FieldLogger) *mux.Router {
	router := mux.NewRouter()

	preflight := make(map[string]bool)
	for _, rt := range routes(loans, health) {
		router.HandleFunc(rt.path, rt.handler).Methods(rt.method)
		if !preflight[rt.path] {
			// answered by CORSMiddleware
			router.HandleFunc(rt.path, func(http.ResponseWriter, *http.Request) {}).Methods(http.MethodOptions)
			preflight[rt.path] = true
		}
	}

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, customError.ErrCodeNotFound, "route not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, customError.ErrCodeMethodNotAllowed, "method not allowed", nil)
	})

	router.Use(
		response.RecoverMiddleware(log),
		response.LoggingMiddleware(log),
		response.CORSMiddleware,
	)

	return router
}
