// Package testutil provides testing utilities for the OMDB client and the
// services built on it.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"time"
)

// MockOMDBResponse defines the behavior for a single mock OMDB response.
type MockOMDBResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockOMDB is a configurable mock OMDB server for testing. Responses are
// selected by lookup: search pages by (term, page), details by id or title.
// Lookups with no configured response get the provider's not-found envelope.
type MockOMDB struct {
	server *httptest.Server
	mu     sync.RWMutex

	search  map[string][]MockOMDBResponse
	byID    map[string][]MockOMDBResponse
	byTitle map[string][]MockOMDBResponse

	// Tracking
	RequestCount int
	Requests     []url.Values
	LastHeader   http.Header
}

// NewMockOMDB creates a new mock OMDB server.
func NewMockOMDB() *MockOMDB {
	m := &MockOMDB{
		search:  make(map[string][]MockOMDBResponse),
		byID:    make(map[string][]MockOMDBResponse),
		byTitle: make(map[string][]MockOMDBResponse),
	}

	m.server = httptest.NewServer(http.HandlerFunc(m.serve))
	return m
}

// URL returns the mock server URL with a trailing slash, like the real
// provider's base URL.
func (m *MockOMDB) URL() string {
	return m.server.URL + "/"
}

// Close shuts down the mock server.
func (m *MockOMDB) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockOMDB) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.Requests = nil
	m.LastHeader = nil
}

// SetSearch queues responses for a search page. Each request consumes one
// response; the last one is repeated once the queue is drained.
func (m *MockOMDB) SetSearch(term string, page int, resps ...MockOMDBResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.search[searchKey(term, page)] = resps
}

// SetDetail queues responses for a lookup by id.
func (m *MockOMDB) SetDetail(id string, resps ...MockOMDBResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[id] = resps
}

// SetTitle queues responses for a lookup by title.
func (m *MockOMDB) SetTitle(title string, resps ...MockOMDBResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byTitle[title] = resps
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockOMDB) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetLastHeader returns the headers of the most recent request.
func (m *MockOMDB) GetLastHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastHeader.Clone()
}

// GetRequests returns a copy of the query parameters of every request.
func (m *MockOMDB) GetRequests() []url.Values {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]url.Values, len(m.Requests))
	copy(out, m.Requests)
	return out
}

func (m *MockOMDB) serve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	m.mu.Lock()
	m.RequestCount++
	m.Requests = append(m.Requests, q)
	m.LastHeader = r.Header.Clone()

	var resp MockOMDBResponse
	var ok bool
	switch {
	case q.Has("s"):
		page := q.Get("page")
		if page == "" {
			page = "1"
		}
		resp, ok = pop(m.search, q.Get("s")+"#"+page)
	case q.Has("i"):
		resp, ok = pop(m.byID, q.Get("i"))
	case q.Has("t"):
		resp, ok = pop(m.byTitle, q.Get("t"))
	}
	if !ok {
		resp = NewNotFoundResponse("Movie not found!")
	}
	m.mu.Unlock()

	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}

// pop takes the next queued response for key, keeping the last one in place.
// Callers hold m.mu.
func pop(queues map[string][]MockOMDBResponse, key string) (MockOMDBResponse, bool) {
	queue := queues[key]
	if len(queue) == 0 {
		return MockOMDBResponse{}, false
	}
	if len(queue) > 1 {
		queues[key] = queue[1:]
	}
	return queue[0], true
}

func searchKey(term string, page int) string {
	return fmt.Sprintf("%s#%d", term, page)
}

// NewJSONResponse creates a 200 OK response with v encoded as JSON.
func NewJSONResponse(v any) MockOMDBResponse {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("testutil: marshal mock body: %v", err))
	}
	return MockOMDBResponse{
		StatusCode: http.StatusOK,
		Body:       string(b),
	}
}

// NewSearchResponse creates a search page listing the given ids.
func NewSearchResponse(ids ...string) MockOMDBResponse {
	items := make([]map[string]string, 0, len(ids))
	for _, id := range ids {
		items = append(items, map[string]string{
			"Title":  "Title " + id,
			"Year":   "2019",
			"imdbID": id,
			"Type":   "movie",
		})
	}
	return NewJSONResponse(map[string]any{
		"Search":       items,
		"totalResults": fmt.Sprint(len(ids)),
		"Response":     "True",
	})
}

// NewDetailResponse creates a detail response with every field the mapper reads.
func NewDetailResponse(id, title, year string) MockOMDBResponse {
	return NewJSONResponse(DetailFixture(id, title, year))
}

// DetailFixture returns a complete detail object as decoded JSON.
func DetailFixture(id, title, year string) map[string]any {
	return map[string]any{
		"imdbID":   id,
		"Title":    title,
		"Year":     year,
		"Genre":    "Action, Adventure",
		"Released": "23 Jun 1989",
		"Language": "English",
		"Director": "Tim Burton",
		"Writer":   "Bob Kane, Sam Hamm",
		"Actors":   "Michael Keaton, Jack Nicholson",
		"Response": "True",
	}
}

// NewNotFoundResponse creates the provider's 200 OK "Response":"False" envelope.
func NewNotFoundResponse(message string) MockOMDBResponse {
	return NewJSONResponse(map[string]string{
		"Response": "False",
		"Error":    message,
	})
}

// NewServerErrorResponse creates a response with a 5xx status.
func NewServerErrorResponse(status int) MockOMDBResponse {
	return MockOMDBResponse{
		StatusCode: status,
		Body:       `{"error": "Internal server error"}`,
	}
}

// Repeat returns n copies of resp, for queuing retry sequences.
func Repeat(resp MockOMDBResponse, n int) []MockOMDBResponse {
	out := make([]MockOMDBResponse, n)
	for i := range out {
		out[i] = resp
	}
	return out
}
