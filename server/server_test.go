package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"

	"github.com/domino14/wordlebot/alphabet"
	"github.com/domino14/wordlebot/automatic"
	"github.com/domino14/wordlebot/game"
	"github.com/domino14/wordlebot/history"
	"github.com/domino14/wordlebot/outcome"
	"github.com/domino14/wordlebot/testhelpers"
)

func newTestServer(t *testing.T) (*Server, *history.Store) {
	t.Helper()
	ctx := context.Background()
	store, err := history.Open(ctx, ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	guesses, answers := testhelpers.SmallLists(t)
	return New(ctx, testhelpers.ConfigWithSmallLists(t), guesses, answers, store), store
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	is := is.New(t)
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/healthz", nil)
	is.Equal(rec.Code, http.StatusOK)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/nowhere", nil)
	is.Equal(rec.Code, http.StatusNotFound)
}

func TestSuggestOpening(t *testing.T) {
	is := is.New(t)
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/suggest", suggestReq{})
	is.Equal(rec.Code, http.StatusOK)
	var res suggestRes
	is.NoErr(json.NewDecoder(rec.Body).Decode(&res))
	is.Equal(res.Guess, "serve")
	is.Equal(res.Remaining, 16)
	is.Equal(len(res.Candidates), 16)
	is.True(res.UnweightedEntropy != nil)
	is.True(res.WeightedEntropy == nil)
}

func TestSuggestAfterTurns(t *testing.T) {
	is := is.New(t)
	s, _ := newTestServer(t)

	o := outcome.Score(alphabet.MustWord("soare"), alphabet.MustWord("boyed"))
	rec := do(t, s, http.MethodPost, "/api/suggest", suggestReq{
		Turns: []turnReq{{Guess: "soare", Outcome: o.String()}},
		Top:   3,
	})
	is.Equal(rec.Code, http.StatusOK)
	var res suggestRes
	is.NoErr(json.NewDecoder(rec.Body).Decode(&res))
	is.Equal(res.Remaining, 5)
	is.Equal(res.Candidates, []string{"bowed", "boned", "booed", "boyed", "boded"})
	is.Equal(len(res.Top), 3)
	is.Equal(res.Top[0].Guess, res.Guess)
}

func TestSuggestErrors(t *testing.T) {
	is := is.New(t)
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/suggest", suggestReq{
		Turns: []turnReq{{Guess: "cigar", Outcome: "ggggb"}},
	})
	is.Equal(rec.Code, http.StatusConflict)

	rec = do(t, s, http.MethodPost, "/api/suggest", suggestReq{
		Turns: []turnReq{{Guess: "cigar", Outcome: "gggg"}},
	})
	is.Equal(rec.Code, http.StatusBadRequest)

	rec = do(t, s, http.MethodPost, "/api/suggest", suggestReq{
		Turns: []turnReq{{Guess: "cig4r", Outcome: "bbbbb"}},
	})
	is.Equal(rec.Code, http.StatusBadRequest)

	req := httptest.NewRequest(http.MethodPost, "/api/suggest", bytes.NewBufferString("{"))
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	is.Equal(w.Code, http.StatusBadRequest)
}

func TestEvaluate(t *testing.T) {
	is := is.New(t)
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/evaluate", evaluateReq{TopPercentile: 50, Threads: 2})
	is.Equal(rec.Code, http.StatusAccepted)

	var st automatic.Status
	deadline := time.Now().Add(30 * time.Second)
	for {
		rec = do(t, s, http.MethodGet, "/api/evaluate", nil)
		is.Equal(rec.Code, http.StatusOK)
		st = automatic.Status{}
		is.NoErr(json.NewDecoder(rec.Body).Decode(&st))
		if !st.Running {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("evaluation did not finish")
		}
		time.Sleep(10 * time.Millisecond)
	}
	is.Equal(st.Error, "")
	is.Equal(st.Total, 8)
	is.True(st.Result != nil)
	is.Equal(st.Result.Games, 8)
	is.Equal(st.Result.Solved, 8)
	is.Equal(st.Result.Opening, "serve")

	rec = do(t, s, http.MethodGet, "/debug/vars", nil)
	is.Equal(rec.Code, http.StatusOK)
	assert.Contains(t, rec.Body.String(), `"evalGamesCounter": 8`)
}

func TestGames(t *testing.T) {
	is := is.New(t)
	s, store := newTestServer(t)
	guesses, answers := testhelpers.SmallLists(t)

	g, err := game.NewGame(game.Options{Guesses: guesses, Answers: answers})
	is.NoErr(err)
	is.NoErr(g.SetAnswer("serve"))
	_, err = g.PlayGuess("soare")
	is.NoErr(err)
	_, err = g.PlayGuess("serve")
	is.NoErr(err)
	is.NoErr(store.SaveHistory(context.Background(), g.History(), history.ModePlay))

	rec := do(t, s, http.MethodGet, "/api/games", nil)
	is.Equal(rec.Code, http.StatusOK)
	var list []gameRes
	is.NoErr(json.NewDecoder(rec.Body).Decode(&list))
	is.Equal(len(list), 1)
	is.Equal(list[0].ID, g.Uid())
	is.Equal(list[0].Turns, 2)
	is.Equal(list[0].State, "solved")

	rec = do(t, s, http.MethodGet, "/api/games/"+g.Uid(), nil)
	is.Equal(rec.Code, http.StatusOK)
	var one gameRes
	is.NoErr(json.NewDecoder(rec.Body).Decode(&one))
	is.Equal(len(one.Entries), 3)
	is.Equal(one.Entries[1].Guess, "soare")

	rec = do(t, s, http.MethodGet, "/api/games/nope", nil)
	is.Equal(rec.Code, http.StatusNotFound)
	rec = do(t, s, http.MethodGet, "/api/games?limit=x", nil)
	is.Equal(rec.Code, http.StatusBadRequest)
}
