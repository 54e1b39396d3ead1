package automatic

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/domino14/wordlebot/alphabet"
	"github.com/domino14/wordlebot/game"
	"github.com/domino14/wordlebot/stats"
)

// Result aggregates a strategy evaluation. Games are kept in the order the
// answers were selected, so the aggregates don't depend on which worker
// finished first.
type Result struct {
	Games    []GameResult
	Opening  alphabet.Word
	MaxTurns int
	Elapsed  time.Duration

	Solved    int
	Exhausted int
	Aborted   int
	// Turns only counts solved games.
	Turns  stats.Statistic
	Counts *stats.TurnCounts
}

func newResult(games []GameResult, maxTurns int, opening alphabet.Word, elapsed time.Duration) *Result {
	r := &Result{
		Games:    games,
		Opening:  opening,
		MaxTurns: maxTurns,
		Elapsed:  elapsed,
		Counts:   stats.NewTurnCounts(maxTurns),
	}
	for _, g := range games {
		switch g.State {
		case game.Solved:
			r.Solved++
			r.Turns.Push(float64(g.Turns))
		case game.Exhausted:
			r.Exhausted++
		case game.Aborted:
			r.Aborted++
		}
		r.Counts.Add(g.Turns, g.Solved())
	}
	return r
}

// AverageTurns is the mean number of turns over solved games. It is NaN
// when nothing was solved.
func (r *Result) AverageTurns() float64 {
	if r.Turns.Iterations() == 0 {
		return math.NaN()
	}
	return r.Turns.Mean()
}

// Summary is the JSON shape of a Result.
type Summary struct {
	Games        int            `json:"games"`
	Solved       int            `json:"solved"`
	Exhausted    int            `json:"exhausted"`
	Aborted      int            `json:"aborted"`
	Opening      string         `json:"opening"`
	// AverageTurns is null when nothing was solved.
	AverageTurns *float64       `json:"average_turns"`
	Stdev        float64        `json:"stdev"`
	CI95         float64        `json:"ci95"`
	MaxTurns     int            `json:"max_turns"`
	ByTurns      map[string]int `json:"by_turns"`
	ElapsedSecs  float64        `json:"elapsed_secs"`
}

func (r *Result) Summary() Summary {
	s := Summary{
		Games:        len(r.Games),
		Solved:       r.Solved,
		Exhausted:    r.Exhausted,
		Aborted:      r.Aborted,
		Opening:      r.Opening.String(),
		MaxTurns:     r.MaxTurns,
		ByTurns:      map[string]int{},
		ElapsedSecs:  r.Elapsed.Seconds(),
	}
	if avg := r.AverageTurns(); !math.IsNaN(avg) {
		s.AverageTurns = &avg
	}
	if r.Turns.Iterations() > 1 {
		s.Stdev = r.Turns.Stdev()
		s.CI95 = r.Turns.ConfidenceInterval(95)
	}
	for _, g := range r.Games {
		if g.Solved() {
			s.ByTurns[fmt.Sprint(g.Turns)]++
		} else {
			s.ByTurns["X"]++
		}
	}
	return s
}

// Fprint writes a human-readable report with a turn histogram.
func (r *Result) Fprint(w io.Writer) error {
	fmt.Fprintf(w, "Opening guess: %s\n", r.Opening.UserVisible())
	fmt.Fprintf(w, "Games played: %d (%.1fs)\n", len(r.Games), r.Elapsed.Seconds())
	fmt.Fprintf(w, "Solved: %d  Out of guesses: %d  Lost the answer: %d\n",
		r.Solved, r.Exhausted, r.Aborted)
	switch {
	case r.Turns.Iterations() == 0:
		fmt.Fprintln(w, "Average turns: n/a (nothing solved)")
	case r.Turns.Iterations() > 1:
		fmt.Fprintf(w, "Average turns: %.4f ± %.4f (95%% CI), stdev %.4f\n",
			r.AverageTurns(), r.Turns.ConfidenceInterval(95), r.Turns.Stdev())
	default:
		fmt.Fprintf(w, "Average turns: %.4f\n", r.AverageTurns())
	}
	fmt.Fprintln(w)
	return r.Counts.Fprint(w, 40)
}
