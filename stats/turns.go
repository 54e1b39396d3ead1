package stats

import (
	"fmt"
	"io"

	"github.com/aybabtme/uniplot/histogram"
)

// TurnCounts tallies how many games were solved in each number of turns,
// and how many were not solved at all.
type TurnCounts struct {
	solved []int
	failed int
}

func NewTurnCounts(maxTurns int) *TurnCounts {
	return &TurnCounts{solved: make([]int, maxTurns+1)}
}

// Add records one game. Games solved past the initial turn cap still count.
func (tc *TurnCounts) Add(turns int, solved bool) {
	if !solved {
		tc.failed++
		return
	}
	for turns >= len(tc.solved) {
		tc.solved = append(tc.solved, 0)
	}
	tc.solved[turns]++
}

// Solved returns how many games were solved in exactly turns turns.
func (tc *TurnCounts) Solved(turns int) int {
	if turns < 0 || turns >= len(tc.solved) {
		return 0
	}
	return tc.solved[turns]
}

func (tc *TurnCounts) Failed() int { return tc.failed }

func (tc *TurnCounts) Total() int {
	total := tc.failed
	for _, c := range tc.solved {
		total += c
	}
	return total
}

// Histogram has one bucket per turn count from 1 to the largest seen, plus
// a final bucket for unsolved games (labelled with a turn count of 0).
func (tc *TurnCounts) Histogram() histogram.Histogram {
	last := 1
	for t, c := range tc.solved {
		if c > 0 {
			last = t
		}
	}
	h := histogram.Histogram{Count: tc.Total()}
	add := func(label float64, count int) {
		if len(h.Buckets) == 0 || count < h.Min {
			h.Min = count
		}
		h.Max = max(h.Max, count)
		h.Buckets = append(h.Buckets, histogram.Bucket{Count: count, Min: label, Max: label})
	}
	for t := 1; t <= last; t++ {
		add(float64(t), tc.Solved(t))
	}
	if tc.failed > 0 {
		add(0, tc.failed)
	}
	return h
}

// Fprint draws the histogram as text bars, one row per turn count and an
// X-X row for unsolved games.
func (tc *TurnCounts) Fprint(w io.Writer, width int) error {
	if tc.Total() == 0 {
		_, err := fmt.Fprintln(w, "(no games)")
		return err
	}
	return histogram.Fprintf(w, tc.Histogram(), histogram.Linear(width), func(v float64) string {
		if v == 0 {
			return "X"
		}
		return fmt.Sprintf("%.0f", v)
	})
}
