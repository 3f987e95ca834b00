package services

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/searchviz/internal/models"
	"github.com/desertthunder/searchviz/internal/recovery"
	"github.com/desertthunder/searchviz/internal/shared"
)

// Query is one search request.
type Query struct {
	Text string
	Type models.SearchType
}

// Match is a single search hit.
type Match struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Snippet string  `json:"snippet,omitempty"`
	Score   float64 `json:"score"`
}

// Result is a completed search.
type Result struct {
	Matches      []Match
	Candidates   int           // documents scanned
	ResponseTime time.Duration // wall time of the backend call
}

// ProgressUpdate is a backend reported completion estimate.
type ProgressUpdate struct {
	Percent float64
	Message string
}

// Searcher runs searches against a backend.
type Searcher interface {
	// Search blocks until the backend answers, fails, or ctx is done.
	// Progress may be nil.
	Search(ctx context.Context, q Query, progress chan<- ProgressUpdate) (*Result, error)

	// Name returns the backend name (e.g., "simulated", "http")
	Name() string
}

const (
	KindSimulated = "simulated"
	KindHTTP      = "http"
)

// New builds the searcher selected by cfg.
func New(cfg shared.BackendConfig, logger *log.Logger) (Searcher, error) {
	switch cfg.Kind {
	case KindSimulated, "":
		return NewSimulatedSearcher(SimulatedOptions{
			Latency:           cfg.Latency(),
			FailWith:          recoveryKind(cfg.FailWith),
			RequestsPerMinute: cfg.RequestsPerMinute,
			ResultCount:       cfg.ResultCount,
			Logger:            logger,
		}), nil
	case KindHTTP:
		return NewHTTPSearcher(cfg.URL, nil, cfg.Timeout(), logger), nil
	default:
		return nil, fmt.Errorf("%w: unknown backend kind %q", shared.ErrInvalidConfig, cfg.Kind)
	}
}

func recoveryKind(s string) models.ErrorKind {
	if s == "" {
		return ""
	}
	return recovery.ParseKind(s)
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
