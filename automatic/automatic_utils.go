// Package automatic evaluates a strategy by playing it, without a human,
// against many answers at once.
package automatic

import (
	"context"
	"encoding/csv"
	"errors"
	"expvar"
	"fmt"
	"io"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/wordlebot/alphabet"
	"github.com/domino14/wordlebot/cache"
	"github.com/domino14/wordlebot/config"
	"github.com/domino14/wordlebot/game"
	"github.com/domino14/wordlebot/strategy"
	"github.com/domino14/wordlebot/wordlist"
)

var (
	GamesCounter *expvar.Int
	IsEvaluating *expvar.Int
)

func init() {
	GamesCounter = expvar.NewInt("evalGamesCounter")
	IsEvaluating = expvar.NewInt("isEvaluating")
}

var ErrAlreadyEvaluating = errors.New("a strategy evaluation is already running, please wait till complete")

var errNoWordlists = errors.New("evaluation needs a guess list and an answer list")

// evalLock allows one evaluation per process; IsEvaluating mirrors it for
// /debug/vars.
var evalLock sync.Mutex

const openingCachePrefix = "opening:"

// Options configure a strategy evaluation.
type Options struct {
	Guesses *wordlist.Wordlist
	Answers *wordlist.Wordlist
	// TopPercentile selects the most frequent answers to play, 0-100.
	TopPercentile float64
	// Threads is the number of games played at once. Below 1 means one per
	// CPU. Each game scans the vocabulary on a single thread.
	Threads           int
	MaxTurns          int
	WeightedThreshold int
	// Log, if set, receives one CSV row per game.
	Log      io.Writer
	Progress bool
}

// OptionsFromConfig fills in everything but the wordlists and the log.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		TopPercentile:     cfg.GetFloat64(config.ConfigTopPercentile),
		Threads:           cfg.Threads(),
		MaxTurns:          cfg.GetInt(config.ConfigMaxTurns),
		WeightedThreshold: cfg.GetInt(config.ConfigWeightedThreshold),
	}
}

func (o Options) threads() int {
	if o.Threads < 1 {
		return max(1, runtime.NumCPU())
	}
	return o.Threads
}

func openingCacheKey(guesses, answers *wordlist.Wordlist, weightedThreshold int) string {
	return fmt.Sprintf("%s%016x:%016x:%d", openingCachePrefix, guesses.Fingerprint(),
		answers.Fingerprint(), weightedThreshold)
}

// OpeningGuess returns the first guess of the entropy strategy for this
// pair of lists. It is the same for every game, so it is computed once per
// process and cached.
func OpeningGuess(ctx context.Context, cfg *config.Config, guesses, answers *wordlist.Wordlist,
	weightedThreshold, threads int) (alphabet.Word, error) {

	key := openingCacheKey(guesses, answers, weightedThreshold)
	obj, err := cache.Load(cfg, key, func(*config.Config, string) (any, error) {
		remaining := answers.All()
		opts := strategy.TurnOptions{
			Threads:  threads,
			Weighted: remaining.Len() < weightedThreshold,
		}
		return strategy.BestGuess(ctx, guesses, remaining, opts)
	})
	if err != nil {
		return alphabet.Word{}, err
	}
	w, ok := obj.(alphabet.Word)
	if !ok {
		return alphabet.Word{}, errors.New("opening guess cache holds the wrong type")
	}
	return w, nil
}

// EvaluateStrategy plays one game per selected answer, many at a time, and
// aggregates how long the entropy strategy took to solve them.
func EvaluateStrategy(ctx context.Context, cfg *config.Config, opts Options) (*Result, error) {
	if !evalLock.TryLock() {
		return nil, ErrAlreadyEvaluating
	}
	defer evalLock.Unlock()
	IsEvaluating.Set(1)
	defer IsEvaluating.Set(0)

	logger := zerolog.Ctx(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.Guesses == nil || opts.Answers == nil {
		return nil, errNoWordlists
	}
	if opts.MaxTurns <= 0 {
		opts.MaxTurns = game.DefaultMaxTurns
	}
	opts.TopPercentile = percentileOrAll(opts.TopPercentile)
	tstart := time.Now()
	threads := opts.threads()

	opening, err := OpeningGuess(ctx, cfg, opts.Guesses, opts.Answers, opts.WeightedThreshold, threads)
	if err != nil {
		return nil, err
	}
	indices := opts.Answers.TopByScore(opts.TopPercentile)
	logger.Info().Int("games", len(indices)).Int("threads", threads).
		Str("opening", opening.String()).Msg("starting-evaluation")

	GamesCounter.Set(0)
	results := make([]GameResult, len(indices))
	jobs := make(chan int, 100)
	logChan := make(chan []string, 100)

	var bar *progressbar.ProgressBar
	if opts.Progress {
		bar = progressbar.Default(int64(len(indices)), "playing games")
	} else {
		bar = progressbar.DefaultSilent(int64(len(indices)))
	}

	writer := errgroup.Group{}
	if opts.Log != nil {
		writer.Go(func() error {
			defer logger.Debug().Msg("exiting game logger goroutine")
			w := csv.NewWriter(opts.Log)
			w.Write([]string{"answer", "state", "turns", "guesses"})
			for row := range logChan {
				w.Write(row)
			}
			w.Flush()
			return w.Error()
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(jobs)
		for i := range indices {
			select {
			case jobs <- i:
			case <-gctx.Done():
				logger.Info().Msg("got stop signal, exiting soon...")
				return gctx.Err()
			}
		}
		return nil
	})
	for t := 0; t < threads; t++ {
		g.Go(func() error {
			for i := range jobs {
				if err := gctx.Err(); err != nil {
					return err
				}
				answer := opts.Answers.Word(indices[i])
				r, err := playOne(gctx, opts, opening, answer)
				if err != nil {
					return err
				}
				results[i] = r
				GamesCounter.Add(1)
				bar.Add(1)
				if opts.Log != nil {
					logChan <- r.csvRow()
				}
			}
			return nil
		})
	}
	err = g.Wait()
	close(logChan)
	if werr := writer.Wait(); werr != nil && err == nil {
		err = werr
	}
	if err != nil {
		return nil, err
	}
	bar.Finish()

	res := newResult(results, opts.MaxTurns, opening, time.Since(tstart))
	logger.Info().Int("games", len(results)).Int("solved", res.Solved).
		Float64("average-turns", res.AverageTurns()).Dur("elapsed", res.Elapsed).
		Msg("evaluation-finished")
	return res, nil
}

func playOne(ctx context.Context, opts Options, opening, answer alphabet.Word) (GameResult, error) {
	s := strategy.NewEntropyStrategy(opts.Guesses, opts.Answers)
	s.SetThreads(1)
	s.SetWeightedThreshold(opts.WeightedThreshold)
	s.SetOpeningGuess(opening)
	g, err := game.NewGame(game.Options{
		Guesses:  opts.Guesses,
		Answers:  opts.Answers,
		Strategy: s,
		MaxTurns: opts.MaxTurns,
	})
	if err != nil {
		return GameResult{}, err
	}
	if err := g.SetAnswer(answer.String()); err != nil {
		return GameResult{}, err
	}
	state, err := g.Simulate(ctx)
	if err != nil && !errors.Is(err, game.ErrInconsistentState) {
		return GameResult{}, err
	}
	if err != nil {
		zerolog.Ctx(ctx).Warn().Str("answer", answer.String()).Msg("strategy-lost-the-answer")
	}
	r := GameResult{Answer: answer, State: state, Turns: g.TurnCount()}
	for _, t := range g.Turns() {
		r.Guesses = append(r.Guesses, t.Guess)
	}
	return r, nil
}

// GameResult is how one simulated game went.
type GameResult struct {
	Answer  alphabet.Word
	State   game.State
	Turns   int
	Guesses []alphabet.Word
}

func (r GameResult) Solved() bool { return r.State == game.Solved }

func (r GameResult) csvRow() []string {
	guesses := lo.Map(r.Guesses, func(g alphabet.Word, _ int) string { return g.String() })
	return []string{r.Answer.String(), r.State.String(), strconv.Itoa(r.Turns), strings.Join(guesses, " ")}
}
