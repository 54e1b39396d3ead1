package automatic

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/domino14/wordlebot/config"
)

// Status is a snapshot of a background evaluation.
type Status struct {
	Running   bool      `json:"running"`
	Played    int64     `json:"played"`
	Total     int       `json:"total"`
	StartedAt time.Time `json:"started_at,omitzero"`
	Error     string    `json:"error,omitempty"`
	Result    *Summary  `json:"result,omitempty"`
}

// Evaluator runs one strategy evaluation at a time in the background, for
// callers such as the HTTP service that can't block on it.
type Evaluator struct {
	Config *config.Config

	mu      sync.Mutex
	running bool
	total   int
	started time.Time
	last    *Result
	lastErr error
}

// Start kicks off an evaluation and returns right away. ctx bounds the
// evaluation itself, not the call.
func (e *Evaluator) Start(ctx context.Context, opts Options) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return ErrAlreadyEvaluating
	}
	if opts.Guesses == nil || opts.Answers == nil {
		return errNoWordlists
	}
	e.running = true
	e.total = len(opts.Answers.TopByScore(percentileOrAll(opts.TopPercentile)))
	e.started = time.Now()
	e.lastErr = nil

	go func() {
		res, err := EvaluateStrategy(ctx, e.Config, opts)
		if err != nil {
			zerolog.Ctx(ctx).Err(err).Msg("background-evaluation-failed")
		}
		e.mu.Lock()
		defer e.mu.Unlock()
		e.running = false
		e.last, e.lastErr = res, err
	}()
	return nil
}

func (e *Evaluator) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := Status{
		Running:   e.running,
		Total:     e.total,
		StartedAt: e.started,
	}
	if e.running {
		st.Played = GamesCounter.Value()
	}
	if e.lastErr != nil {
		st.Error = e.lastErr.Error()
	}
	if e.last != nil {
		sum := e.last.Summary()
		st.Result = &sum
		if !e.running {
			st.Played = int64(sum.Games)
		}
	}
	return st
}

func percentileOrAll(p float64) float64 {
	if p <= 0 {
		return 100
	}
	return p
}
