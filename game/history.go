package game

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/domino14/wordlebot/outcome"
	"github.com/domino14/wordlebot/strategy"
)

// StrategyHistoryEntry describes the candidate pool after a turn. Entry 0
// is the pool before any guess and has no guess.
type StrategyHistoryEntry struct {
	Turn         int             `yaml:"turn"`
	Guess        string          `yaml:"guess,omitempty"`
	Outcome      outcome.Outcome `yaml:"-"`
	FromStrategy bool            `yaml:"from_strategy"`

	Remaining         int     `yaml:"remaining"`
	UnweightedEntropy float64 `yaml:"unweighted_entropy"`
	// WeightedEntropy is NaN when weighted scoring did not apply.
	WeightedEntropy float64 `yaml:"weighted_entropy"`
}

// OutcomeString is the outcome in g/y/b notation, empty for entry 0.
func (e StrategyHistoryEntry) OutcomeString() string {
	if e.Guess == "" {
		return ""
	}
	return e.Outcome.String()
}

// History is the append-only record of a game. The caller owns it; the
// game only ever appends to it.
type History struct {
	GameID   string                 `yaml:"game_id"`
	Answer   string                 `yaml:"answer,omitempty"`
	State    State                  `yaml:"-"`
	MaxTurns int                    `yaml:"max_turns"`
	Started  time.Time              `yaml:"started"`
	Entries  []StrategyHistoryEntry `yaml:"entries"`
}

func NewHistory() *History {
	return &History{}
}

func (h *History) start(gameID string, maxTurns int, m strategy.Metrics) {
	h.GameID = gameID
	h.MaxTurns = maxTurns
	h.Started = time.Now()
	h.State = AwaitingGuess
	h.Entries = append(h.Entries, entryFromMetrics(0, m))
}

func (h *History) add(turn int, t Turn, m strategy.Metrics) {
	e := entryFromMetrics(turn, m)
	e.Guess = t.Guess.String()
	e.Outcome = t.Outcome
	e.FromStrategy = t.FromStrategy
	h.Entries = append(h.Entries, e)
}

func entryFromMetrics(turn int, m strategy.Metrics) StrategyHistoryEntry {
	return StrategyHistoryEntry{
		Turn:              turn,
		Remaining:         m.Remaining,
		UnweightedEntropy: m.UnweightedEntropy,
		WeightedEntropy:   m.WeightedEntropy,
	}
}

// Guesses lists the guessed words in order.
func (h *History) Guesses() []string {
	var out []string
	for _, e := range h.Entries {
		if e.Guess != "" {
			out = append(out, e.Guess)
		}
	}
	return out
}

// Fprint writes one line per entry.
func (h *History) Fprint(w io.Writer) error {
	for _, e := range h.Entries {
		guess := "-----"
		if e.Guess != "" {
			guess = e.Guess + " " + e.Outcome.String()
		}
		weighted := "n/a"
		if !math.IsNaN(e.WeightedEntropy) {
			weighted = fmt.Sprintf("%.4f", e.WeightedEntropy)
		}
		if _, err := fmt.Fprintf(w, "%2d  %-11s  remaining %5d  entropy %7.4f  weighted %s\n",
			e.Turn, guess, e.Remaining, e.UnweightedEntropy, weighted); err != nil {
			return err
		}
	}
	return nil
}
