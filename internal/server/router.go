// Package server exposes the search pipeline over HTTP: a JSON endpoint,
// a server-sent event stream, health and Prometheus metrics.
package server

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spiffcs/repofinder/internal/assembler"
	"github.com/spiffcs/repofinder/internal/model"
	"github.com/spiffcs/repofinder/internal/server/recovery"
)

// Searcher runs searches. *assembler.Assembler implements it.
type Searcher interface {
	Search(ctx context.Context, req model.SearchRequest) (model.SearchResponse, error)
	Stream(ctx context.Context, req model.SearchRequest, emit assembler.EmitFunc) error
}

// Ensure Assembler implements Searcher.
var _ Searcher = (*assembler.Assembler)(nil)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	CORSOrigins []string
	// Defaults seeds every request before client values are applied.
	Defaults model.SearchRequest
}

// NewRouter creates the HTTP router with all API routes.
func NewRouter(searcher Searcher, opts RouterOptions) *mux.Router {
	router := mux.NewRouter()

	// Global middlewares
	router.Use(requestContext)
	router.Use(recovery.Middleware)
	router.Use(cors(opts.CORSOrigins))

	h := &searchHandler{searcher: searcher, defaults: opts.Defaults}

	router.HandleFunc("/health", handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/search", h.handleSearch).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/search/stream", h.handleStream).Methods(http.MethodGet, http.MethodOptions)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return router
}
