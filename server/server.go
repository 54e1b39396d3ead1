// Package server is the HTTP front end: guess suggestions for a game in
// progress, background strategy evaluation and stored game history.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"expvar"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/wordlebot/alphabet"
	"github.com/domino14/wordlebot/automatic"
	"github.com/domino14/wordlebot/config"
	"github.com/domino14/wordlebot/history"
	"github.com/domino14/wordlebot/outcome"
	"github.com/domino14/wordlebot/strategy"
	"github.com/domino14/wordlebot/wordlist"
)

const maxCandidatesShown = 20

// Server bundles the router with what the handlers need.
type Server struct {
	r         *chi.Mux
	ctx       context.Context
	cfg       *config.Config
	guesses   *wordlist.Wordlist
	answers   *wordlist.Wordlist
	evaluator *automatic.Evaluator
	store     *history.Store
}

// New builds the router. ctx outlives requests and bounds background
// evaluations; store may be nil, which turns the game routes off.
func New(ctx context.Context, cfg *config.Config, guesses, answers *wordlist.Wordlist,
	store *history.Store) *Server {

	s := &Server{
		r:         chi.NewRouter(),
		ctx:       ctx,
		cfg:       cfg,
		guesses:   guesses,
		answers:   answers,
		evaluator: &automatic.Evaluator{Config: cfg},
		store:     store,
	}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(requestLogger)

	s.r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	s.r.Handle("/debug/vars", expvar.Handler())

	s.r.Route("/api", func(r chi.Router) {
		r.With(chimw.Timeout(60*time.Second)).Post("/suggest", s.handleSuggest)
		r.Post("/evaluate", s.handleStartEvaluation)
		r.Get("/evaluate", s.handleEvaluationStatus)
		if store != nil {
			r.Get("/games", s.handleRecentGames)
			r.Get("/games/{id}", s.handleGame)
		}
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
	})
	return s
}

// Router exposes the router, for tests and for http.Server.
func (s *Server) Router() chi.Router { return s.r }

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		logger := log.With().Str("req", chimw.GetReqID(r.Context())).Logger()
		next.ServeHTTP(ww, r.WithContext(logger.WithContext(r.Context())))
		logger.Debug().Str("method", r.Method).Str("path", r.URL.Path).
			Int("status", ww.Status()).Dur("took", time.Since(start)).Msg("request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type turnReq struct {
	Guess   string `json:"guess"`
	Outcome string `json:"outcome"`
}

type suggestReq struct {
	Turns []turnReq `json:"turns"`
	Top   int       `json:"top"`
}

type scoredGuess struct {
	Guess       string  `json:"guess"`
	Entropy     float64 `json:"entropy"`
	IsCandidate bool    `json:"is_candidate"`
}

type suggestRes struct {
	Guess             string        `json:"guess"`
	Remaining         int           `json:"remaining"`
	Candidates        []string      `json:"candidates"`
	UnweightedEntropy *float64      `json:"unweighted_entropy"`
	WeightedEntropy   *float64      `json:"weighted_entropy"`
	Top               []scoredGuess `json:"top,omitempty"`
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func (s *Server) newStrategy() *strategy.EntropyStrategy {
	st := strategy.NewEntropyStrategy(s.guesses, s.answers)
	st.SetThreads(s.cfg.Threads())
	st.SetWeightedThreshold(s.cfg.GetInt(config.ConfigWeightedThreshold))
	return st
}

// handleSuggest replays the turns of a game played elsewhere and answers
// with the next guess.
func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req suggestReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	st := s.newStrategy()
	for _, t := range req.Turns {
		guess, err := alphabet.ToWord(t.Guess)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		o, err := outcome.Parse(t.Outcome)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		st.RegisterGuess(guess, o)
	}
	if st.Candidates().Len() == 0 {
		writeError(w, http.StatusConflict, strategy.ErrInconsistentState.Error())
		return
	}
	if len(req.Turns) == 0 {
		opening, err := automatic.OpeningGuess(s.ctx, s.cfg, s.guesses, s.answers,
			st.WeightedThreshold(), st.Threads())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		st.SetOpeningGuess(opening)
	}
	guess, err := st.ChosenGuess(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Err(err).Msg("suggest-failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	m := st.Metrics()
	res := suggestRes{
		Guess:             guess.String(),
		Remaining:         m.Remaining,
		UnweightedEntropy: finite(m.UnweightedEntropy),
		WeightedEntropy:   finite(m.WeightedEntropy),
	}
	cands := st.Candidates()
	for i := 0; i < cands.Len() && i < maxCandidatesShown; i++ {
		res.Candidates = append(res.Candidates, cands.Word(i).String())
	}
	if req.Top > 0 {
		top, err := st.TopGuesses(ctx, req.Top)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		for _, c := range top {
			res.Top = append(res.Top, scoredGuess{Guess: c.Word.String(), Entropy: c.Entropy,
				IsCandidate: c.IsCandidate})
		}
	}
	writeJSON(w, http.StatusOK, res)
}

type evaluateReq struct {
	TopPercentile float64 `json:"top_percentile"`
	Threads       int     `json:"threads"`
}

func (s *Server) handleStartEvaluation(w http.ResponseWriter, r *http.Request) {
	req := evaluateReq{}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_json")
			return
		}
	}
	opts := automatic.OptionsFromConfig(s.cfg)
	opts.Guesses, opts.Answers = s.guesses, s.answers
	if req.TopPercentile > 0 {
		opts.TopPercentile = req.TopPercentile
	}
	if req.Threads > 0 {
		opts.Threads = req.Threads
	}
	err := s.evaluator.Start(s.ctx, opts)
	if errors.Is(err, automatic.ErrAlreadyEvaluating) {
		writeError(w, http.StatusConflict, err.Error())
		return
	} else if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, s.evaluator.Status())
}

func (s *Server) handleEvaluationStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.evaluator.Status())
}

type gameRes struct {
	ID       string          `json:"id"`
	Mode     history.Mode    `json:"mode"`
	Answer   string          `json:"answer,omitempty"`
	State    string          `json:"state"`
	Turns    int             `json:"turns"`
	MaxTurns int             `json:"max_turns"`
	Started  time.Time       `json:"started"`
	Entries  []history.Entry `json:"entries,omitempty"`
}

func toGameRes(rec history.GameRecord, withEntries bool) gameRes {
	g := gameRes{
		ID:       rec.ID,
		Mode:     rec.Mode,
		Answer:   rec.Answer,
		State:    rec.State,
		Turns:    rec.Turns(),
		MaxTurns: rec.MaxTurns,
		Started:  rec.Started,
	}
	if withEntries {
		g.Entries = rec.Entries
	}
	return g
}

func (s *Server) handleRecentGames(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "bad_limit")
			return
		}
		limit = n
	}
	recs, err := s.store.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out := make([]gameRes, len(recs))
	for i, rec := range recs {
		out[i] = toGameRes(rec, false)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGame(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Game(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, history.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found")
		return
	} else if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toGameRes(rec, true))
}
