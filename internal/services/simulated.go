// In-process simulation of a search backend
package services

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/searchviz/internal/models"
	"github.com/desertthunder/searchviz/internal/recovery"
	"github.com/desertthunder/searchviz/internal/shared"
)

// maxSimulatedProgress keeps pushed progress below the completion signal.
const maxSimulatedProgress = 90

// SimulatedOptions configure a [SimulatedSearcher]. Zero values select defaults.
type SimulatedOptions struct {
	Latency           time.Duration
	FailWith          models.ErrorKind // fail every search with this kind; empty to succeed
	RequestsPerMinute int              // quota; zero or negative disables it
	ResultCount       int
	ProgressInterval  time.Duration
	Logger            *log.Logger
}

// SimulatedSearcher implements [Searcher] without a network.
type SimulatedSearcher struct {
	opts    SimulatedOptions
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewSimulatedSearcher creates a simulated backend.
func NewSimulatedSearcher(opts SimulatedOptions) *SimulatedSearcher {
	if opts.Latency < 0 {
		opts.Latency = 0
	}
	if opts.ProgressInterval <= 0 {
		opts.ProgressInterval = max(opts.Latency/10, 10*time.Millisecond)
	}
	if opts.Logger == nil {
		opts.Logger = shared.DiscardLogger()
	}

	s := &SimulatedSearcher{opts: opts, logger: opts.Logger}
	if opts.RequestsPerMinute > 0 {
		s.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), opts.RequestsPerMinute)
	}
	return s
}

// Name returns the backend name.
func (s *SimulatedSearcher) Name() string {
	return KindSimulated
}

// Search waits for the configured latency while reporting progress.
//
// An injected failure is returned halfway through the latency. An empty query fails to parse; a zero
// result count produces no results.
func (s *SimulatedSearcher) Search(ctx context.Context, q Query, progress chan<- ProgressUpdate) (*Result, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, fmt.Errorf("%w: empty query", shared.ErrQueryParse)
	}
	if s.limiter != nil && !s.limiter.Allow() {
		return nil, fmt.Errorf("%w: %d requests per minute", shared.ErrRateLimited, s.opts.RequestsPerMinute)
	}

	wait := s.opts.Latency
	if s.opts.FailWith != "" {
		wait /= 2
	}

	start := time.Now()
	if err := s.wait(ctx, wait, progress); err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	if s.opts.FailWith != "" {
		s.logger.Debug("simulated failure", "kind", s.opts.FailWith)
		sentinel := recovery.Sentinel(s.opts.FailWith)
		if sentinel == nil {
			return nil, fmt.Errorf("simulated %s failure", s.opts.FailWith)
		}
		return nil, fmt.Errorf("%w: simulated", sentinel)
	}
	if s.opts.ResultCount <= 0 {
		return nil, fmt.Errorf("%w: for %q", shared.ErrNoResults, q.Text)
	}

	return &Result{
		Matches:      simulatedMatches(q, s.opts.ResultCount),
		Candidates:   candidateCount(q),
		ResponseTime: elapsed,
	}, nil
}

func (s *SimulatedSearcher) wait(ctx context.Context, d time.Duration, progress chan<- ProgressUpdate) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	ticker := time.NewTicker(s.opts.ProgressInterval)
	defer ticker.Stop()

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("%w: %v", shared.ErrTimeout, ctx.Err())
			}
			return ctx.Err()
		case <-timer.C:
			return nil
		case <-ticker.C:
			if d <= 0 {
				continue
			}
			pct := min(float64(time.Since(start))/float64(d)*100, maxSimulatedProgress)
			sendProgress(progress, ProgressUpdate{Percent: pct, Message: "Searching"})
		}
	}
}

func querySeed(q Query) uint32 {
	h := fnv.New32a()
	h.Write([]byte(string(q.Type) + ":" + q.Text))
	return h.Sum32()
}

func candidateCount(q Query) int {
	return 1200 + int(querySeed(q)%48000)
}

func simulatedMatches(q Query, n int) []Match {
	seed := querySeed(q)
	matches := make([]Match, n)
	for i := range matches {
		matches[i] = Match{
			ID:      fmt.Sprintf("doc-%08x-%02d", seed, i+1),
			Title:   fmt.Sprintf("%s result %d", q.Text, i+1),
			Snippet: fmt.Sprintf("Matched %q by %s search", q.Text, q.Type),
			Score:   1 - float64(i)/float64(n+1),
		}
	}
	return matches
}
