// Package upstreamtest fakes third-party JSON endpoints for fetcher tests.
package upstreamtest

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
)

type Reply struct {
	Status int
	Body   string
}

// Recorded is what the fake saw of one request.
type Recorded struct {
	Method   string
	Path     string
	Query    url.Values
	RawQuery string
	Header   http.Header
}

type Server struct {
	*httptest.Server

	mu      sync.Mutex
	routes  map[string]Reply
	calls   map[string]int
	history []Recorded
}

// New starts a fake that answers 404 for any path without a reply.
func New(t *testing.T) *Server {
	t.Helper()
	s := &Server{
		routes: make(map[string]Reply),
		calls:  make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

func (s *Server) Handle(path string, status int, body string) *Server {
	s.mu.Lock()
	s.routes[path] = Reply{Status: status, Body: body}
	s.mu.Unlock()
	return s
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.calls[r.URL.Path]++
	s.history = append(s.history, Recorded{
		Method:   r.Method,
		Path:     r.URL.Path,
		Query:    r.URL.Query(),
		RawQuery: r.URL.RawQuery,
		Header:   r.Header.Clone(),
	})
	reply, ok := s.routes[r.URL.Path]
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(reply.Status)
	_, _ = w.Write([]byte(reply.Body))
}

// Calls counts requests to path.
func (s *Server) Calls(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[path]
}

// Last returns the most recent request; ok is false if none arrived.
func (s *Server) Last() (Recorded, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.history) == 0 {
		return Recorded{}, false
	}
	return s.history[len(s.history)-1], true
}

// DeadURL is an address nothing listens on.
func DeadURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	u := srv.URL
	srv.Close()
	return u
}
