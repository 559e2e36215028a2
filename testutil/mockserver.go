package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// Route is a canned reply for one method and path
type Route struct {
	Status int
	Body   string
	Delay  time.Duration
}

// RecordedRequest is a request the mock server received
type RecordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   []byte
}

// MockServer is an httptest server that answers with canned JSON and
// records every request
type MockServer struct {
	*httptest.Server

	mu       sync.Mutex
	routes   map[string][]Route
	requests []RecordedRequest
}

// NewMockServer starts a mock assistant service that is closed when the
// test ends
func NewMockServer(t *testing.T) *MockServer {
	t.Helper()
	s := &MockServer{routes: make(map[string][]Route)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// Handle queues a reply for method and path. Queued replies are used in
// order; the last one keeps answering once the others are used up.
func (s *MockServer) Handle(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := method + " " + path
	s.routes[key] = append(s.routes[key], Route{Status: status, Body: body})
}

// HandleJSON queues a reply whose body is v encoded as JSON
func (s *MockServer) HandleJSON(t *testing.T, method, path string, status int, v interface{}) {
	t.Helper()
	s.Handle(method, path, status, string(JSONMarshal(t, v)))
}

// HandleDelayed queues a reply that is sent after delay
func (s *MockServer) HandleDelayed(method, path string, status int, body string, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := method + " " + path
	s.routes[key] = append(s.routes[key], Route{Status: status, Body: body, Delay: delay})
}

// Requests returns every request received so far
func (s *MockServer) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// RequestsTo returns the requests received for method and path
func (s *MockServer) RequestsTo(method, path string) []RecordedRequest {
	var matched []RecordedRequest
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			matched = append(matched, r)
		}
	}
	return matched
}

// DecodeBody unmarshals a recorded request body into v
func DecodeBody(t *testing.T, r RecordedRequest, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(r.Body, v); err != nil {
		t.Fatalf("Failed to decode request body %q: %v", r.Body, err)
	}
}

func (s *MockServer) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	s.requests = append(s.requests, RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Body:   body,
	})
	key := r.Method + " " + r.URL.Path
	queue := s.routes[key]
	var route Route
	found := len(queue) > 0
	if found {
		route = queue[0]
		if len(queue) > 1 {
			s.routes[key] = queue[1:]
		}
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !found {
		w.WriteHeader(http.StatusNotFound)
		_, _ = fmt.Fprintf(w, `{"error":"no route for %s"}`, key)
		return
	}
	if route.Delay > 0 {
		time.Sleep(route.Delay)
	}
	w.WriteHeader(route.Status)
	_, _ = io.WriteString(w, route.Body)
}
