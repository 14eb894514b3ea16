package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/spiffcs/repofinder/internal/assembler"
	"github.com/spiffcs/repofinder/internal/log"
	"github.com/spiffcs/repofinder/internal/model"
	"github.com/spiffcs/repofinder/internal/server/respond"
)

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	respond.WriteJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

type searchHandler struct {
	searcher Searcher
	defaults model.SearchRequest
}

// newRequest returns the configured defaults, or the built-in ones.
func (h *searchHandler) newRequest() model.SearchRequest {
	if h.defaults.PerPage == 0 {
		return model.NewSearchRequest("")
	}
	req := h.defaults
	req.Filters = nil
	return req
}

func (h *searchHandler) handleSearch(w http.ResponseWriter, r *http.Request) {
	req := h.newRequest()
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if err := req.Validate(); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	resp, err := h.searcher.Search(r.Context(), req)
	if err != nil {
		writeSearchError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, resp)
}

// writeSearchError maps pipeline failures onto status codes: intent
// failures are internal, search failures are upstream.
func writeSearchError(w http.ResponseWriter, r *http.Request, err error) {
	logger := log.FromContext(r.Context())
	se, ok := assembler.AsStageError(err)
	switch {
	case ok && se.Stage == assembler.StageSearch:
		logger.Warn("repository search failed", "error", se.Err)
		respond.WriteBadGateway(w, fmt.Sprintf("repository search failed: %v", se.Err))
	case ok && se.Stage == assembler.StageIntent:
		logger.Error("intent resolution failed", "error", se.Err)
		respond.WriteInternalError(w, fmt.Sprintf("intent resolution failed: %v", se.Err))
	case r.Context().Err() != nil:
		logger.Info("client cancelled search")
	default:
		logger.Error("search failed", "error", err)
		respond.WriteInternalError(w, err.Error())
	}
}

// requestFromQuery overlays URL parameters on req. Unknown parameters are
// ignored; malformed values are errors.
func requestFromQuery(req model.SearchRequest, q url.Values) (model.SearchRequest, error) {
	var errs []error
	req.Query = q.Get("query")

	setBool := func(name string, dst *bool) {
		if v := q.Get(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s must be a boolean", name))
				return
			}
			*dst = b
		}
	}
	setInt := func(name string, dst *int) {
		if v := q.Get(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s must be an integer", name))
				return
			}
			*dst = n
		}
	}

	setBool("use_cache", &req.UseCache)
	setInt("per_page", &req.PerPage)
	setInt("limit", &req.Limit)
	setBool("include_name", &req.IncludeName)
	setBool("include_description", &req.IncludeDescription)
	setBool("include_readme", &req.IncludeReadme)
	setBool("include_topics", &req.IncludeTopics)
	setInt("pushed_within_days", &req.PushedWithinDays)
	setInt("min_stars", &req.MinStars)
	if v := q.Get("sort"); v != "" {
		req.Sort = v
	}
	if filters, ok := q["filter"]; ok {
		req.Filters = filters
	}

	if err := errors.Join(errs...); err != nil {
		return req, err
	}
	return req, req.Validate()
}
