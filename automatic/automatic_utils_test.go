package automatic

import (
	"bytes"
	"context"
	"encoding/csv"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"

	"github.com/domino14/wordlebot/alphabet"
	"github.com/domino14/wordlebot/cache"
	"github.com/domino14/wordlebot/config"
	"github.com/domino14/wordlebot/game"
	"github.com/domino14/wordlebot/stats"
	"github.com/domino14/wordlebot/testhelpers"
)

func evalOptions(t *testing.T) Options {
	guesses, answers := testhelpers.SmallLists(t)
	return Options{
		Guesses:       guesses,
		Answers:       answers,
		TopPercentile: 100,
		Threads:       2,
		MaxTurns:      game.DefaultMaxTurns,
	}
}

func TestOpeningGuessIsCached(t *testing.T) {
	is := is.New(t)
	cfg := testhelpers.ConfigWithSmallLists(t)
	opts := evalOptions(t)

	first, err := OpeningGuess(context.Background(), cfg, opts.Guesses, opts.Answers, 0, 2)
	is.NoErr(err)
	is.Equal(first, alphabet.MustWord("serve"))

	key := openingCacheKey(opts.Guesses, opts.Answers, 0)
	obj, err := cache.Load(cfg, key, func(_ *config.Config, _ string) (any, error) {
		t.Fatal("opening guess was computed again")
		return nil, nil
	})
	is.NoErr(err)
	is.Equal(obj.(alphabet.Word), first)
}

func TestEvaluateStrategy(t *testing.T) {
	is := is.New(t)
	cfg := testhelpers.ConfigWithSmallLists(t)
	opts := evalOptions(t)
	var logged bytes.Buffer
	opts.Log = &logged

	res, err := EvaluateStrategy(context.Background(), cfg, opts)
	is.NoErr(err)
	is.Equal(len(res.Games), len(testhelpers.AnswerRecords))
	is.Equal(res.Solved, len(testhelpers.AnswerRecords))
	is.Equal(res.Exhausted, 0)
	is.Equal(res.Aborted, 0)
	is.Equal(res.Counts.Total(), len(res.Games))
	is.Equal(res.Opening, alphabet.MustWord("serve"))
	is.Equal(GamesCounter.Value(), int64(len(res.Games)))
	is.Equal(IsEvaluating.Value(), int64(0))

	// Answers are played most frequent first.
	is.Equal(res.Games[0].Answer, alphabet.MustWord("bored"))
	is.Equal(res.Games[1].Answer, alphabet.MustWord("cigar"))

	for _, g := range res.Games {
		is.True(g.Solved())
		is.True(g.Turns >= 1 && g.Turns <= 4)
		is.Equal(g.Guesses[0], alphabet.MustWord("serve"))
		is.Equal(g.Guesses[len(g.Guesses)-1], g.Answer)
	}
	// serve is itself an answer and gets solved on the first guess.
	is.Equal(res.Counts.Solved(1), 1)

	rows, err := csv.NewReader(&logged).ReadAll()
	is.NoErr(err)
	is.Equal(len(rows), len(res.Games)+1)
	is.Equal(rows[0], []string{"answer", "state", "turns", "guesses"})
	for _, row := range rows[1:] {
		is.Equal(row[1], "solved")
	}

	sum := res.Summary()
	is.Equal(sum.Games, 16)
	is.Equal(sum.Opening, "serve")
	is.Equal(sum.ByTurns["X"], 0)
	is.True(sum.AverageTurns != nil)
	is.True(*sum.AverageTurns > 1 && *sum.AverageTurns <= 4)

	var report bytes.Buffer
	is.NoErr(res.Fprint(&report))
	assert.Contains(t, report.String(), "Opening guess: SERVE")
	assert.Contains(t, report.String(), "Solved: 16")
}

func TestEvaluateStrategyThreadIndependent(t *testing.T) {
	is := is.New(t)
	cfg := testhelpers.ConfigWithSmallLists(t)

	opts := evalOptions(t)
	opts.Threads = 1
	single, err := EvaluateStrategy(context.Background(), cfg, opts)
	is.NoErr(err)

	opts.Threads = 5
	multi, err := EvaluateStrategy(context.Background(), cfg, opts)
	is.NoErr(err)

	is.Equal(single.Games, multi.Games)
	is.Equal(single.AverageTurns(), multi.AverageTurns())
}

func TestEvaluateTopPercentile(t *testing.T) {
	is := is.New(t)
	cfg := testhelpers.ConfigWithSmallLists(t)
	opts := evalOptions(t)
	opts.TopPercentile = 50

	res, err := EvaluateStrategy(context.Background(), cfg, opts)
	is.NoErr(err)
	is.Equal(len(res.Games), 8)
	is.Equal(res.Games[0].Answer, alphabet.MustWord("bored"))
	is.Equal(res.Games[2].Answer, alphabet.MustWord("serve"))
}

func TestEvaluateRejectsConcurrentRun(t *testing.T) {
	is := is.New(t)
	cfg := testhelpers.ConfigWithSmallLists(t)
	evalLock.Lock()
	defer evalLock.Unlock()

	_, err := EvaluateStrategy(context.Background(), cfg, evalOptions(t))
	is.Equal(err, ErrAlreadyEvaluating)
}

func TestEvaluateCanceled(t *testing.T) {
	is := is.New(t)
	cfg := testhelpers.ConfigWithSmallLists(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := EvaluateStrategy(ctx, cfg, evalOptions(t))
	is.True(err != nil)
	is.Equal(IsEvaluating.Value(), int64(0))
}

func TestEvaluatorBackground(t *testing.T) {
	is := is.New(t)
	cfg := testhelpers.ConfigWithSmallLists(t)
	ev := &Evaluator{Config: cfg}

	is.NoErr(ev.Start(context.Background(), evalOptions(t)))
	deadline := time.Now().Add(30 * time.Second)
	for ev.Status().Running {
		if time.Now().After(deadline) {
			t.Fatal("evaluation did not finish")
		}
		time.Sleep(10 * time.Millisecond)
	}
	st := ev.Status()
	is.Equal(st.Error, "")
	is.Equal(st.Total, 16)
	is.Equal(st.Played, int64(16))
	is.True(st.Result != nil)
	is.Equal(st.Result.Solved, 16)
}

func TestEvaluatorNeedsWordlists(t *testing.T) {
	is := is.New(t)
	ev := &Evaluator{Config: testhelpers.ConfigWithSmallLists(t)}
	is.Equal(ev.Start(context.Background(), Options{}), errNoWordlists)
	is.True(!ev.Status().Running)
}

func TestAnalyzeLog(t *testing.T) {
	is := is.New(t)
	log := `answer,state,turns,guesses
bored,solved,3,serve boned bored
serve,solved,1,serve
boded,exhausted,2,humph cigar
`
	res, err := AnalyzeLog(strings.NewReader(log), 2)
	is.NoErr(err)
	is.Equal(len(res.Games), 3)
	is.Equal(res.Solved, 2)
	is.Equal(res.Exhausted, 1)
	is.Equal(res.AverageTurns(), 2.0)
	is.Equal(res.Opening, alphabet.MustWord("serve"))
	is.Equal(res.Counts.Failed(), 1)
	is.Equal(res.Games[0].Guesses[1], alphabet.MustWord("boned"))
}

func TestAnalyzeLogRoundTrip(t *testing.T) {
	is := is.New(t)
	cfg := testhelpers.ConfigWithSmallLists(t)
	opts := evalOptions(t)
	var logged bytes.Buffer
	opts.Log = &logged

	res, err := EvaluateStrategy(context.Background(), cfg, opts)
	is.NoErr(err)
	analyzed, err := AnalyzeLog(&logged, opts.MaxTurns)
	is.NoErr(err)
	// Rows are logged in completion order, so compare the aggregates.
	is.Equal(analyzed.Solved, res.Solved)
	is.True(stats.FuzzyEqual(analyzed.AverageTurns(), res.AverageTurns()))
	is.Equal(analyzed.Summary().ByTurns, res.Summary().ByTurns)
}

func TestAnalyzeLogBadState(t *testing.T) {
	is := is.New(t)
	_, err := AnalyzeLog(strings.NewReader("bored,won,3,serve boned bored\n"), 6)
	is.True(err != nil)
}

func TestAnalyzeLogNothingSolved(t *testing.T) {
	is := is.New(t)
	log := `answer,state,turns,guesses
boded,exhausted,2,humph cigar
booed,aborted,1,serve
`
	res, err := AnalyzeLog(strings.NewReader(log), 2)
	is.NoErr(err)
	is.Equal(res.Solved, 0)
	is.True(math.IsNaN(res.AverageTurns()))
	is.True(res.Summary().AverageTurns == nil)

	var report bytes.Buffer
	is.NoErr(res.Fprint(&report))
	assert.Contains(t, report.String(), "Average turns: n/a")
}
