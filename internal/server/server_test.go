package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spiffcs/repofinder/internal/assembler"
	"github.com/spiffcs/repofinder/internal/ghclient"
	"github.com/spiffcs/repofinder/internal/model"
)

type fakeSearcher struct {
	resp   model.SearchResponse
	err    error
	events []assembler.Event

	mu  sync.Mutex
	got model.SearchRequest
}

func (f *fakeSearcher) record(req model.SearchRequest) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = req
}

func (f *fakeSearcher) request() model.SearchRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.got
}

func (f *fakeSearcher) Search(_ context.Context, req model.SearchRequest) (model.SearchResponse, error) {
	f.record(req)
	return f.resp, f.err
}

func (f *fakeSearcher) Stream(_ context.Context, req model.SearchRequest, emit assembler.EmitFunc) error {
	f.record(req)
	for _, e := range f.events {
		if err := emit(e); err != nil {
			return err
		}
	}
	return f.err
}

func newTestServer(t *testing.T, s Searcher, origins ...string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewRouter(s, RouterOptions{CORSOrigins: origins}))
	t.Cleanup(srv.Close)
	return srv
}

func postSearch(t *testing.T, srv *httptest.Server, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(srv.URL+"/search", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &fakeSearcher{})

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))

	var body healthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	_, err = time.Parse(time.RFC3339, body.Timestamp)
	assert.NoError(t, err)
}

func TestSearchReturnsResponse(t *testing.T) {
	f := &fakeSearcher{resp: model.SearchResponse{
		Query:          "go crawler",
		IntentKeywords: []string{"crawler"},
		Results:        []model.RepoResult{{Name: "colly", FullName: "gocolly/colly", Score: 0.9, Topics: []string{}}},
	}}
	srv := newTestServer(t, f)

	resp, body := postSearch(t, srv, `{"query": "  go crawler ", "limit": 3, "use_cache": false}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "go crawler", body["query"])
	assert.Len(t, body["results"], 1)

	got := f.request()
	assert.Equal(t, "go crawler", got.Query, "query is trimmed before the pipeline")
	assert.Equal(t, 3, got.Limit)
	assert.False(t, got.UseCache)
	assert.Equal(t, 12, got.PerPage, "unset fields keep their defaults")
	assert.True(t, got.IncludeReadme)
}

func TestSearchErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
		detail string
	}{
		{
			name:   "malformed json",
			body:   `{"query":`,
			status: http.StatusBadRequest,
			detail: "invalid request body",
		},
		{
			name:   "empty query",
			body:   `{"query": "  "}`,
			status: http.StatusBadRequest,
			detail: "query must not be empty",
		},
		{
			name:   "limit out of range",
			body:   `{"query": "x", "limit": 500}`,
			status: http.StatusBadRequest,
			detail: "limit must be between",
		},
		{
			name:   "intent failure",
			body:   `{"query": "x"}`,
			err:    &assembler.StageError{Stage: assembler.StageIntent, Err: errors.New("parser exploded")},
			status: http.StatusInternalServerError,
			detail: "parser exploded",
		},
		{
			name: "search failure",
			body: `{"query": "x"}`,
			err: &assembler.StageError{Stage: assembler.StageSearch, Err: &ghclient.TransportError{
				StatusCode: http.StatusUnprocessableEntity, Body: "Validation Failed",
			}},
			status: http.StatusBadGateway,
			detail: "Validation Failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, &fakeSearcher{err: tt.err})
			resp, body := postSearch(t, srv, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Contains(t, body["detail"], tt.detail)
		})
	}
}

type sseEvent struct {
	name string
	data string
}

func readEvents(t *testing.T, resp *http.Response) []sseEvent {
	t.Helper()
	var events []sseEvent
	var cur sseEvent
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			cur.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			cur.data = strings.TrimPrefix(line, "data: ")
		case line == "":
			events = append(events, cur)
			cur = sseEvent{}
		}
	}
	require.NoError(t, scanner.Err())
	return events
}

func TestStream(t *testing.T) {
	f := &fakeSearcher{events: []assembler.Event{
		{Kind: assembler.EventIntent, Data: assembler.IntentData{Keywords: []string{"crawler"}}},
		{Kind: assembler.EventDebugQuery, Data: assembler.DebugQueryData{GitHubQuery: "crawler in:name"}},
		{Kind: assembler.EventItem, Data: model.RepoResult{FullName: "gocolly/colly", Topics: []string{}}},
		{Kind: assembler.EventError, Data: assembler.ErrorData{Stage: assembler.StageResolve, Detail: "gone"}},
		{Kind: assembler.EventDone, Data: assembler.DoneData{Count: 1}},
	}}
	srv := newTestServer(t, f)

	params := url.Values{
		"query":          {"go crawler"},
		"limit":          {"5"},
		"include_readme": {"false"},
		"filter":         {"license:mit"},
	}
	resp, err := http.Get(srv.URL + "/search/stream?" + params.Encode())
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := readEvents(t, resp)
	require.Len(t, events, 5)
	names := make([]string, len(events))
	for i, e := range events {
		names[i] = e.name
	}
	assert.Equal(t, []string{"intent", "debug-query", "item", "error", "done"}, names)
	assert.JSONEq(t, `{"keywords":["crawler"]}`, events[0].data)
	assert.JSONEq(t, `{"github_query":"crawler in:name"}`, events[1].data)
	assert.JSONEq(t, `{"stage":"resolve","detail":"gone"}`, events[3].data)
	assert.JSONEq(t, `{"count":1}`, events[4].data)

	got := f.request()
	assert.Equal(t, "go crawler", got.Query)
	assert.Equal(t, 5, got.Limit)
	assert.False(t, got.IncludeReadme)
	assert.Equal(t, []string{"license:mit"}, got.Filters)
}

func TestStreamRejectsInvalidParams(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"missing query", ""},
		{"bad integer", "query=x&per_page=many"},
		{"bad boolean", "query=x&use_cache=maybe"},
		{"bad sort", "query=x&sort=random"},
	}
	srv := newTestServer(t, &fakeSearcher{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(srv.URL + "/search/stream?" + tt.query)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
		})
	}
}

func TestCORS(t *testing.T) {
	srv := newTestServer(t, &fakeSearcher{}, "https://app.example.com")

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/search", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "https://app.example.com", resp.Header.Get("Access-Control-Allow-Origin"))

	req, err = http.NewRequest(http.MethodGet, srv.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://evil.example.com")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRequestIDIsEchoed(t *testing.T) {
	srv := newTestServer(t, &fakeSearcher{})

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, "fixed-id")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "fixed-id", resp.Header.Get(RequestIDHeader))
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, &fakeSearcher{})

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestParseOrigins(t *testing.T) {
	assert.Equal(t, []string{"*"}, ParseOrigins("*"))
	assert.Equal(t, []string{"https://a", "https://b"}, ParseOrigins(" https://a , ,https://b"))
	assert.Nil(t, ParseOrigins(""))
}
