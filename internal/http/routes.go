package httpx

import (
	"net/http"

	"github.com/marlinprotocol/oyster-watchdog/internal/core"
)

// RouterServices holds the dependencies the HTTP router needs.
type RouterServices struct {
	Failures core.FailureRepository
}

// NewRouter creates and configures the ops HTTP router.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	if services.Failures != nil {
		failureHandlers := &FailureHandlers{Repo: services.Failures}
		mux.HandleFunc("GET /api/failures/reachability", failureHandlers.ListReachability)
		mux.HandleFunc("GET /api/failures/endpoint", failureHandlers.ListEndpoint)
	}

	return mux
}
