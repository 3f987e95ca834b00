// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/searchviz/internal/services"
)

// MockSearcher is a test double for [services.Searcher]
type MockSearcher struct {
	Result   *services.Result
	Err      error
	Delay    time.Duration
	Progress []services.ProgressUpdate

	mu      sync.Mutex
	calls   int
	queries []services.Query
}

func (m *MockSearcher) Search(ctx context.Context, q services.Query, progress chan<- services.ProgressUpdate) (*services.Result, error) {
	m.mu.Lock()
	m.calls++
	m.queries = append(m.queries, q)
	m.mu.Unlock()

	for _, u := range m.Progress {
		if progress == nil {
			break
		}
		select {
		case progress <- u:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if m.Delay > 0 {
		timer := time.NewTimer(m.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if m.Err != nil {
		return nil, m.Err
	}
	if m.Result == nil {
		return &services.Result{Matches: []services.Match{{ID: "1", Title: "mock"}}, Candidates: 1}, nil
	}
	return m.Result, nil
}

func (m *MockSearcher) Name() string { return "mock" }

// Calls returns how many searches were made.
func (m *MockSearcher) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Queries returns the queries searched so far.
func (m *MockSearcher) Queries() []services.Query {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]services.Query(nil), m.queries...)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}
