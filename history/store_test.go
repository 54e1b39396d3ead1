package history

import (
	"bytes"
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/domino14/wordlebot/game"
	"github.com/domino14/wordlebot/testhelpers"
)

func playedGame(t *testing.T, answer string, guesses ...string) *game.History {
	t.Helper()
	gl, al := testhelpers.SmallLists(t)
	h := game.NewHistory()
	g, err := game.NewGame(game.Options{Guesses: gl, Answers: al, History: h})
	require.NoError(t, err)
	require.NoError(t, g.SetAnswer(answer))
	for _, guess := range guesses {
		_, err := g.PlayGuess(guess)
		require.NoError(t, err)
	}
	return h
}

func TestFromHistory(t *testing.T) {
	is := is.New(t)
	h := playedGame(t, "boyed", "soare", "boyed")
	rec := FromHistory(h, ModePlay)
	is.Equal(rec.ID, h.GameID)
	is.Equal(rec.State, "solved")
	is.Equal(rec.Turns(), 2)
	is.Equal(rec.Entries[1].Outcome, "bgbby")
	is.Equal(rec.Entries[0].Outcome, "")
	is.True(rec.Entries[1].WeightedEntropy == nil)
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	defer s.Close()

	h := playedGame(t, "boyed", "soare", "boyed")
	rec := FromHistory(h, ModePlay)
	we := 1.25
	rec.Entries[1].WeightedEntropy = &we
	require.NoError(t, s.Save(ctx, rec))

	got, err := s.Game(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, ModePlay, got.Mode)
	assert.Equal(t, "boyed", got.Answer)
	assert.Equal(t, rec.Started.Unix(), got.Started.Unix())
	require.Len(t, got.Entries, 3)
	assert.Equal(t, "soare", got.Entries[1].Guess)
	assert.Equal(t, "bgbby", got.Entries[1].Outcome)
	assert.Equal(t, 5, got.Entries[1].Remaining)
	assert.InDelta(t, math.Log2(5), got.Entries[1].UnweightedEntropy, 1e-12)
	require.NotNil(t, got.Entries[1].WeightedEntropy)
	assert.Equal(t, 1.25, *got.Entries[1].WeightedEntropy)
	assert.Nil(t, got.Entries[2].WeightedEntropy)

	// saving again replaces
	require.NoError(t, s.Save(ctx, rec))
	recent, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, recent, 1)

	_, err = s.Game(ctx, "nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSummary(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	s, err := Open(ctx, filepath.Join(t.TempDir(), "sub", "history.db"))
	is.NoErr(err)
	defer s.Close()

	sum, err := s.Summary(ctx)
	is.NoErr(err)
	is.Equal(sum.Games, 0)
	is.Equal(sum.Solved, 0)
	is.True(math.IsNaN(sum.AverageTurns))

	is.NoErr(s.SaveHistory(ctx, playedGame(t, "boyed", "soare", "boyed"), ModePlay))
	is.NoErr(s.SaveHistory(ctx, playedGame(t, "cigar", "cigar"), ModeSimulate))
	is.NoErr(s.SaveHistory(ctx, playedGame(t, "humph", "soare"), ModeAssist))

	sum, err = s.Summary(ctx)
	is.NoErr(err)
	is.Equal(sum.Games, 3)
	is.Equal(sum.Solved, 2)
	is.Equal(sum.AverageTurns, 1.5)
}

func TestReopenKeepsData(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(ctx, path)
	is.NoErr(err)
	h := playedGame(t, "cigar", "cigar")
	is.NoErr(s.SaveHistory(ctx, h, ModePlay))
	is.NoErr(s.Close())

	s, err = Open(ctx, path)
	is.NoErr(err)
	defer s.Close()
	rec, err := s.Game(ctx, h.GameID)
	is.NoErr(err)
	is.Equal(rec.Answer, "cigar")
}

func TestExportYAML(t *testing.T) {
	is := is.New(t)
	h := playedGame(t, "boyed", "soare", "boyed")
	recs := []GameRecord{FromHistory(h, ModePlay)}
	var buf bytes.Buffer
	is.NoErr(ExportYAML(&buf, recs))

	var back []GameRecord
	is.NoErr(yaml.Unmarshal(buf.Bytes(), &back))
	is.Equal(len(back), 1)
	is.Equal(back[0].ID, recs[0].ID)
	is.Equal(back[0].Entries[1].Guess, "soare")
	is.True(bytes.Contains(buf.Bytes(), []byte("outcome: bgbby")))
}
