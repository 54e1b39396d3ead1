package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matryer/is"
)

func TestRunningStat(t *testing.T) {
	is := is.New(t)
	type tc struct {
		turns []int
		mean  float64
		stdev float64
		min   float64
		max   float64
	}
	cases := []tc{
		{[]int{3, 4, 4, 5, 3, 4, 6, 3}, 4, 1.0690449676497, 3, 6},
		{[]int{2, 3, 3, 4, 4, 4, 5, 5, 6, 7}, 4.3, 1.4944341180973, 2, 7},
		{[]int{1}, 1, 0, 1, 1},
		{[]int{}, 0, 0, 0, 0},
		{[]int{4, 4}, 4, 0, 4, 4},
	}
	for _, c := range cases {
		s := &Statistic{}
		for _, turns := range c.turns {
			s.Push(float64(turns))
		}
		is.Equal(s.Iterations(), len(c.turns))
		is.True(FuzzyEqual(s.Mean(), c.mean))
		is.True(FuzzyEqual(s.Stdev(), c.stdev))
		is.Equal(s.Min(), c.min)
		is.Equal(s.Max(), c.max)
	}
}

func TestZVal(t *testing.T) {
	is := is.New(t)
	is.True(FuzzyEqual(ZVal(95), 1.959963984540054))
	is.True(FuzzyEqual(ZVal(99), 2.5758293035489))
}

func TestConfidenceInterval(t *testing.T) {
	is := is.New(t)
	s := &Statistic{}
	for _, v := range []float64{2, 4, 4, 4, 5, 5, 7, 9} {
		s.Push(v)
	}
	want := ZVal(95) * s.Stdev() / 2 / 1.4142135623730951
	is.True(FuzzyEqual(s.ConfidenceInterval(95), want))
	is.Equal((&Statistic{}).ConfidenceInterval(95), 0.0)
}

func TestTurnCounts(t *testing.T) {
	is := is.New(t)
	tc := NewTurnCounts(6)
	for _, turns := range []int{3, 4, 4, 5, 3, 4} {
		tc.Add(turns, true)
	}
	tc.Add(6, false)
	tc.Add(8, true)
	is.Equal(tc.Solved(4), 3)
	is.Equal(tc.Solved(8), 1)
	is.Equal(tc.Solved(9), 0)
	is.Equal(tc.Failed(), 1)
	is.Equal(tc.Total(), 8)

	h := tc.Histogram()
	is.Equal(len(h.Buckets), 9) // turns 1 through 8, then unsolved
	is.Equal(h.Buckets[3].Count, 3)
	is.Equal(h.Max, 3)
	is.Equal(h.Min, 0)
	is.Equal(h.Count, 8)

	var buf bytes.Buffer
	is.NoErr(tc.Fprint(&buf, 20))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	is.Equal(len(lines), 9)
	is.True(strings.HasPrefix(lines[3], "4-4"))
	is.True(strings.HasPrefix(lines[8], "X-X"))
}

func TestTurnCountsEmpty(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	is.NoErr(NewTurnCounts(6).Fprint(&buf, 20))
	is.Equal(buf.String(), "(no games)\n")
}
