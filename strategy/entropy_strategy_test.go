package strategy

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/wordlebot/alphabet"
	"github.com/domino14/wordlebot/outcome"
	"github.com/domino14/wordlebot/testhelpers"
	"github.com/domino14/wordlebot/wordlist"
)

func w(s string) alphabet.Word { return alphabet.MustWord(s) }

func TestBetter(t *testing.T) {
	is := is.New(t)
	nan := Candidate{Word: w("aaaaa"), Entropy: math.NaN(), IsCandidate: true, Score: 100}
	low := Candidate{Word: w("zzzzz"), Entropy: 0.5}
	is.True(Better(low, nan))
	is.True(!Better(nan, low))

	hi := Candidate{Word: w("zzzzz"), Entropy: 2}
	cand := Candidate{Word: w("yyyyy"), Entropy: 2, IsCandidate: true}
	is.True(Better(cand, hi))

	common := Candidate{Word: w("yyyyy"), Entropy: 2, Score: 10}
	rare := Candidate{Word: w("xxxxx"), Entropy: 2, Score: 1}
	is.True(Better(common, rare))

	a := Candidate{Word: w("abcde"), Entropy: 2}
	b := Candidate{Word: w("abcdf"), Entropy: 2}
	is.True(Better(a, b))
	is.True(!Better(b, a))
	is.True(!Better(a, a))
}

func TestThreadCountDoesNotMatter(t *testing.T) {
	is := is.New(t)
	guesses, answers := testhelpers.SmallLists(t)
	ctx := context.Background()
	pools := []*wordlist.Subset{
		answers.All(),
		answers.All().Filter(func(a alphabet.Word) bool { return a[1] == w("boned")[1] }),
	}
	for _, pool := range pools {
		for _, weighted := range []bool{false, true} {
			ref, refBest, err := EvaluateTurn(ctx, guesses, pool, TurnOptions{Threads: 1, Weighted: weighted})
			is.NoErr(err)
			for threads := 2; threads <= 8; threads++ {
				cands, best, err := EvaluateTurn(ctx, guesses, pool, TurnOptions{Threads: threads, Weighted: weighted})
				is.NoErr(err)
				is.Equal(best, refBest)
				is.Equal(len(cands), len(ref))
				for i := range cands {
					is.Equal(cands[i].Word, ref[i].Word)
					is.Equal(math.Float64bits(cands[i].Entropy), math.Float64bits(ref[i].Entropy))
				}
			}
		}
	}
}

func TestBestGuessIsMaximal(t *testing.T) {
	is := is.New(t)
	guesses, answers := testhelpers.SmallLists(t)
	ctx := context.Background()
	pool := answers.All()
	cands, best, err := EvaluateTurn(ctx, guesses, pool, TurnOptions{Threads: 3})
	is.NoErr(err)
	for _, c := range cands {
		is.True(!Better(c, cands[best]))
	}
	g, err := BestGuess(ctx, guesses, pool, TurnOptions{Threads: 3})
	is.NoErr(err)
	is.Equal(g, cands[best].Word)

	top, err := TopGuesses(ctx, guesses, pool, TurnOptions{Threads: 2}, 5)
	is.NoErr(err)
	is.Equal(len(top), 5)
	is.Equal(top[0].Word, g)
	for i := 1; i < len(top); i++ {
		is.True(Better(top[i-1], top[i]))
	}
}

func TestSingleAndEmpty(t *testing.T) {
	is := is.New(t)
	guesses, answers := testhelpers.SmallLists(t)
	ctx := context.Background()
	one := answers.All().Filter(func(a alphabet.Word) bool { return a == w("humph") })
	g, err := BestGuess(ctx, guesses, one, TurnOptions{})
	is.NoErr(err)
	is.Equal(g, w("humph"))

	none := answers.NewSubset(nil)
	_, err = BestGuess(ctx, guesses, none, TurnOptions{})
	is.True(errors.Is(err, ErrInconsistentState))
	_, _, err = EvaluateTurn(ctx, guesses, none, TurnOptions{})
	is.True(errors.Is(err, ErrInconsistentState))
}

// With two candidates left every separating guess is worth one bit; the
// more common candidate wins the tie.
func TestTieBreakPrefersCommonCandidate(t *testing.T) {
	is := is.New(t)
	guesses, answers := testhelpers.SmallLists(t)
	pool := answers.All().Filter(func(a alphabet.Word) bool {
		return a == w("cigar") || a == w("humph")
	})
	g, err := BestGuess(context.Background(), guesses, pool, TurnOptions{Threads: 4})
	is.NoErr(err)
	is.Equal(g, w("cigar"))
}

// hymns splits the four answers 2/1/1 and wagon splits them 1/3, but the
// 1/3 split isolates the only two words with any weight.
func weightFixture(t *testing.T, answerScore float64) (*wordlist.Wordlist, *wordlist.Wordlist) {
	guesses := testhelpers.MakeWordlist(t, "g", []wordlist.Record{
		{Word: "hymns", Score: 5}, {Word: "wagon", Score: 5},
	}, wordlist.WeightRaw)
	answers := testhelpers.MakeWordlist(t, "a", []wordlist.Record{
		{Word: "cigar", Score: answerScore}, {Word: "rebut", Score: answerScore},
		{Word: "sissy", Score: 0}, {Word: "humph", Score: 0},
	}, wordlist.WeightRaw)
	return guesses, answers
}

func TestWeightedChangesChoice(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	guesses, answers := weightFixture(t, 1023)

	s := NewEntropyStrategy(guesses, answers)
	s.SetThreads(2)
	is.True(!s.UsesWeighted())
	g, err := s.ChosenGuess(ctx)
	is.NoErr(err)
	is.Equal(g, w("hymns"))
	is.True(math.IsNaN(s.Metrics().WeightedEntropy))

	s.SetWeightedThreshold(10)
	is.True(s.UsesWeighted())
	g, err = s.ChosenGuess(ctx)
	is.NoErr(err)
	is.Equal(g, w("wagon"))
	is.Equal(s.Metrics().WeightedEntropy, 1.0)
}

func TestWeightlessPoolFallsBack(t *testing.T) {
	is := is.New(t)
	guesses, answers := weightFixture(t, 0)
	s := NewEntropyStrategy(guesses, answers)
	s.SetWeightedThreshold(10)
	g, err := s.ChosenGuess(context.Background())
	is.NoErr(err)
	is.Equal(g, w("hymns"))
	is.True(math.IsNaN(s.Metrics().WeightedEntropy))
}

func TestRegisterGuess(t *testing.T) {
	is := is.New(t)
	guesses, answers := testhelpers.SmallLists(t)
	s := NewEntropyStrategy(guesses, answers)
	m := s.Metrics()
	is.Equal(m.Remaining, answers.Len())
	is.Equal(m.UnweightedEntropy, math.Log2(float64(answers.Len())))

	s.RegisterGuess(w("soare"), outcome.Score(w("soare"), w("boyed")))
	is.Equal(s.Candidates().Len(), 5)
	is.Equal(s.Metrics().UnweightedEntropy, math.Log2(5))
	is.True(!s.Pattern().IsEmpty())

	s.Reset()
	is.Equal(s.Candidates().Len(), answers.Len())
	is.True(s.Pattern().IsEmpty())
}

func TestOpeningGuessUsedOnce(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	guesses, answers := testhelpers.SmallLists(t)
	s := NewEntropyStrategy(guesses, answers)
	s.SetOpeningGuess(w("crwth"))
	g, err := s.ChosenGuess(ctx)
	is.NoErr(err)
	is.Equal(g, w("crwth"))

	s.RegisterGuess(w("crwth"), outcome.Score(w("crwth"), w("humph")))
	g, err = s.ChosenGuess(ctx)
	is.NoErr(err)
	is.True(g != w("crwth"))
}

func TestCanceledContext(t *testing.T) {
	is := is.New(t)
	guesses, answers := testhelpers.SmallLists(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := EvaluateTurn(ctx, guesses, answers.All(), TurnOptions{Threads: 2})
	is.True(errors.Is(err, context.Canceled))
}

func BenchmarkBestGuess(b *testing.B) {
	guesses, answers := testhelpers.SmallLists(b)
	pool := answers.All()
	ctx := context.Background()
	for i := 0; i < b.N; i++ {
		BestGuess(ctx, guesses, pool, TurnOptions{Threads: 1})
	}
}
