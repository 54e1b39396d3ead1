package strategy

import (
	"context"
	"math"
	"runtime"
	"slices"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/wordlebot/alphabet"
	"github.com/domino14/wordlebot/entropy"
	"github.com/domino14/wordlebot/wordlist"
)

// How many guesses a worker scores between progress updates and context
// checks.
const progressStride = 128

// Candidate is a guess together with how well it splits the remaining
// answers.
type Candidate struct {
	Word    alphabet.Word
	Entropy float64
	// IsCandidate is set when the guess could itself be the answer.
	IsCandidate bool
	// Score is the guess's raw frequency, taken from the answer list when
	// it is a candidate and from the guess list otherwise.
	Score float64
}

// Better reports whether a ranks strictly above b: higher entropy first
// (NaN ranks below any number), then guesses that could be the answer,
// then higher score, then alphabetical order. Distinct words never tie, so
// any reduction using Better has a single answer.
func Better(a, b Candidate) bool {
	an, bn := math.IsNaN(a.Entropy), math.IsNaN(b.Entropy)
	if an != bn {
		return bn
	}
	if !an && a.Entropy != b.Entropy {
		return a.Entropy > b.Entropy
	}
	if a.IsCandidate != b.IsCandidate {
		return a.IsCandidate
	}
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Word.Less(b.Word)
}

// TurnOptions control a single vocabulary scan.
type TurnOptions struct {
	// Threads is the number of workers. Values below 1 mean one per CPU.
	Threads  int
	Weighted bool
	// Progress shows a progress bar on stderr.
	Progress bool
}

func (o TurnOptions) threads(n int) int {
	t := o.Threads
	if t < 1 {
		t = runtime.NumCPU()
	}
	return max(1, min(t, n))
}

// EvaluateTurn scores every word of vocab against remaining. The
// vocabulary is cut into one contiguous chunk per worker; each worker
// fills in its own range of the result and remembers its local best, and
// the local bests are then reduced in chunk order. It returns the scored
// vocabulary, in list order, and the index of the best guess.
func EvaluateTurn(ctx context.Context, vocab *wordlist.Wordlist, remaining *wordlist.Subset,
	opts TurnOptions) ([]Candidate, int, error) {

	n := vocab.Len()
	if n == 0 {
		return nil, -1, wordlist.ErrEmptyWordlist
	}
	if remaining.Len() == 0 {
		return nil, -1, ErrInconsistentState
	}
	threads := opts.threads(n)
	chunk := (n + threads - 1) / threads

	var bar *progressbar.ProgressBar
	if opts.Progress {
		bar = progressbar.Default(int64(n), "scoring guesses")
	} else {
		bar = progressbar.DefaultSilent(int64(n))
	}

	cands := make([]Candidate, n)
	localBest := make([]int, threads)
	g, ctx := errgroup.WithContext(ctx)

	for t := 0; t < threads; t++ {
		lo, hi := t*chunk, min((t+1)*chunk, n)
		localBest[t] = -1
		g.Go(func() error {
			var sc entropy.Scorer
			best := -1
			for i := lo; i < hi; i++ {
				if (i-lo)%progressStride == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
					if i > lo {
						bar.Add(progressStride)
					}
				}
				w := vocab.Word(i)
				c := Candidate{Word: w, Entropy: sc.GuessEntropy(w, remaining, opts.Weighted)}
				if score, ok := remaining.ScoreOf(w); ok {
					c.IsCandidate = true
					c.Score = score
				} else {
					c.Score = vocab.Score(i)
				}
				cands[i] = c
				if best < 0 || Better(c, cands[best]) {
					best = i
				}
			}
			localBest[t] = best
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, -1, err
	}
	bar.Finish()

	best := -1
	for _, b := range localBest {
		if b < 0 {
			continue
		}
		if best < 0 || Better(cands[b], cands[best]) {
			best = b
		}
	}
	return cands, best, nil
}

// BestGuess scans the whole guess vocabulary and returns the guess that
// splits remaining most evenly. With a single candidate left it is
// returned without scanning. Weighted scoring over a pool with no weight
// falls back to unweighted scoring.
func BestGuess(ctx context.Context, vocab *wordlist.Wordlist, remaining *wordlist.Subset,
	opts TurnOptions) (alphabet.Word, error) {

	switch remaining.Len() {
	case 0:
		return alphabet.Word{}, ErrInconsistentState
	case 1:
		return remaining.Word(0), nil
	}
	opts = withWeightFallback(ctx, remaining, opts)
	cands, best, err := EvaluateTurn(ctx, vocab, remaining, opts)
	if err != nil {
		return alphabet.Word{}, err
	}
	zerolog.Ctx(ctx).Debug().Str("guess", cands[best].Word.String()).
		Float64("entropy", cands[best].Entropy).Int("remaining", remaining.Len()).
		Bool("weighted", opts.Weighted).Msg("best-guess")
	return cands[best].Word, nil
}

// TopGuesses returns the n best guesses, best first.
func TopGuesses(ctx context.Context, vocab *wordlist.Wordlist, remaining *wordlist.Subset,
	opts TurnOptions, n int) ([]Candidate, error) {

	opts = withWeightFallback(ctx, remaining, opts)
	cands, _, err := EvaluateTurn(ctx, vocab, remaining, opts)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(cands, func(a, b Candidate) int {
		if Better(a, b) {
			return -1
		}
		if Better(b, a) {
			return 1
		}
		return 0
	})
	if n > 0 && n < len(cands) {
		cands = cands[:n]
	}
	return cands, nil
}

func withWeightFallback(ctx context.Context, remaining *wordlist.Subset, opts TurnOptions) TurnOptions {
	if opts.Weighted && !(remaining.TotalWeight() > 0) {
		zerolog.Ctx(ctx).Warn().Int("remaining", remaining.Len()).
			Msg("candidates have no weight; scoring unweighted")
		opts.Weighted = false
	}
	return opts
}
