// Package game drives a single Wordle game: it holds the hidden answer (or,
// in assisted mode, takes outcomes from the user), plays guesses, folds
// their outcomes into the strategy's knowledge and tracks when the game is
// over.
package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/domino14/wordlebot/alphabet"
	"github.com/domino14/wordlebot/outcome"
	"github.com/domino14/wordlebot/strategy"
	"github.com/domino14/wordlebot/wordlist"
)

const DefaultMaxTurns = 6

var (
	ErrGameOver      = errors.New("the game is over")
	ErrNotInWordList = errors.New("not in the guess list")
	ErrNoAnswer      = errors.New("no hidden answer is set; enter outcomes instead")
	ErrAnswerSet     = errors.New("an answer can only be set before the first guess")
	// ErrHistoryInUse is returned by NewGame when the history passed in
	// already records a game. A history is only ever appended to.
	ErrHistoryInUse = errors.New("history already records a game")
	// ErrInconsistentState is returned when no candidate answer is left
	// after an outcome that did not solve the game.
	ErrInconsistentState = strategy.ErrInconsistentState
)

// State is where a game is in its life cycle.
type State int

const (
	AwaitingGuess State = iota
	Solved
	Exhausted
	// Aborted games ended with outcomes that no candidate answer fits.
	Aborted
)

func (s State) String() string {
	switch s {
	case AwaitingGuess:
		return "awaiting-guess"
	case Solved:
		return "solved"
	case Exhausted:
		return "exhausted"
	case Aborted:
		return "aborted"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// ParseState is the inverse of State.String.
func ParseState(s string) (State, error) {
	for st := AwaitingGuess; st <= Aborted; st++ {
		if st.String() == s {
			return st, nil
		}
	}
	return AwaitingGuess, fmt.Errorf("unknown game state %q", s)
}

// Terminal reports whether no more guesses can be made.
func (s State) Terminal() bool {
	return s != AwaitingGuess
}

// Turn is one guess and the feedback it got.
type Turn struct {
	Guess   alphabet.Word
	Outcome outcome.Outcome
	// FromStrategy is set when the strategy chose the guess.
	FromStrategy bool
}

// Options configure a new game.
type Options struct {
	Guesses *wordlist.Wordlist
	Answers *wordlist.Wordlist
	// Strategy defaults to an entropy strategy over the two lists.
	Strategy strategy.Strategizer
	// MaxTurns defaults to DefaultMaxTurns.
	MaxTurns int
	// History receives one entry per turn. It is owned by the caller; a
	// fresh one is made when nil.
	History *History
}

// Game is the state machine for one game. It is not safe for concurrent
// use; run many games in parallel by giving each goroutine its own Game.
type Game struct {
	uid      string
	guesses  *wordlist.Wordlist
	answers  *wordlist.Wordlist
	strat    strategy.Strategizer
	maxTurns int

	answer    alphabet.Word
	hasAnswer bool

	turns   []Turn
	state   State
	history *History
}

func NewGame(opts Options) (*Game, error) {
	if opts.Guesses == nil || opts.Answers == nil {
		return nil, errors.New("a game needs both a guess list and an answer list")
	}
	if opts.Answers.Len() == 0 {
		return nil, wordlist.ErrEmptyWordlist
	}
	if opts.History != nil && len(opts.History.Entries) > 0 {
		return nil, fmt.Errorf("game %s: %w", opts.History.GameID, ErrHistoryInUse)
	}
	g := &Game{
		uid:      newGameID(),
		guesses:  opts.Guesses,
		answers:  opts.Answers,
		strat:    opts.Strategy,
		maxTurns: opts.MaxTurns,
		history:  opts.History,
		state:    AwaitingGuess,
	}
	if g.strat == nil {
		g.strat = strategy.NewEntropyStrategy(opts.Guesses, opts.Answers)
	}
	if g.maxTurns <= 0 {
		g.maxTurns = DefaultMaxTurns
	}
	if g.history == nil {
		g.history = NewHistory()
	}
	g.history.start(g.uid, g.maxTurns, g.strat.Metrics())
	return g, nil
}

// SetAnswer fixes the hidden answer. It may be any word of the guess list,
// not only the answer list.
func (g *Game) SetAnswer(s string) error {
	if len(g.turns) > 0 {
		return ErrAnswerSet
	}
	w, err := alphabet.ToWord(s)
	if err != nil {
		return err
	}
	if !g.guesses.Contains(w) && !g.answers.Contains(w) {
		return fmt.Errorf("%s: %w", w, ErrNotInWordList)
	}
	g.answer = w
	g.hasAnswer = true
	g.history.Answer = w.String()
	return nil
}

// ChooseRandomAnswer picks the hidden answer uniformly from the answer list.
func (g *Game) ChooseRandomAnswer() {
	g.answer = g.answers.Word(frand.Intn(g.answers.Len()))
	g.hasAnswer = true
	g.history.Answer = g.answer.String()
}

// PlayStrategyTurn plays the strategy's chosen guess against the hidden
// answer.
func (g *Game) PlayStrategyTurn(ctx context.Context) (Turn, error) {
	if g.state.Terminal() {
		return Turn{}, ErrGameOver
	}
	if !g.hasAnswer {
		return Turn{}, ErrNoAnswer
	}
	guess, err := g.strat.ChosenGuess(ctx)
	if err != nil {
		if errors.Is(err, ErrInconsistentState) {
			g.setState(Aborted)
		}
		return Turn{}, err
	}
	return g.apply(guess, outcome.Score(guess, g.answer), true)
}

// PlayGuess plays a guess typed by a person against the hidden answer.
func (g *Game) PlayGuess(s string) (Turn, error) {
	if g.state.Terminal() {
		return Turn{}, ErrGameOver
	}
	if !g.hasAnswer {
		return Turn{}, ErrNoAnswer
	}
	guess, err := alphabet.ToWord(s)
	if err != nil {
		return Turn{}, err
	}
	if !g.guesses.Contains(guess) {
		return Turn{}, fmt.Errorf("%s: %w", guess, ErrNotInWordList)
	}
	return g.apply(guess, outcome.Score(guess, g.answer), false)
}

// RecordOutcome is assisted mode: the game is being played elsewhere and
// the user reports each guess with the outcome it got.
func (g *Game) RecordOutcome(s string, o outcome.Outcome) (Turn, error) {
	if g.state.Terminal() {
		return Turn{}, ErrGameOver
	}
	guess, err := alphabet.ToWord(s)
	if err != nil {
		return Turn{}, err
	}
	if !g.guesses.Contains(guess) {
		log.Warn().Str("guess", guess.String()).Msg("guess-not-in-guess-list")
	}
	if g.hasAnswer && outcome.Score(guess, g.answer) != o {
		log.Warn().Str("guess", guess.String()).Str("outcome", o.String()).
			Msg("outcome-does-not-match-answer")
	}
	return g.apply(guess, o, false)
}

// Simulate plays strategy turns until the game ends and returns the final
// state.
func (g *Game) Simulate(ctx context.Context) (State, error) {
	for !g.state.Terminal() {
		if _, err := g.PlayStrategyTurn(ctx); err != nil {
			return g.state, err
		}
	}
	return g.state, nil
}

func (g *Game) apply(guess alphabet.Word, o outcome.Outcome, fromStrategy bool) (Turn, error) {
	t := Turn{Guess: guess, Outcome: o, FromStrategy: fromStrategy}
	g.turns = append(g.turns, t)
	g.strat.RegisterGuess(guess, o)
	g.history.add(len(g.turns), t, g.strat.Metrics())

	switch {
	case o.Solved():
		g.setState(Solved)
		if !g.hasAnswer {
			g.answer = guess
			g.hasAnswer = true
			g.history.Answer = guess.String()
		}
	case g.strat.Candidates().Len() == 0:
		g.setState(Aborted)
		log.Debug().Str("game", g.uid).Str("pattern", g.strat.Pattern().String()).
			Msg("no-candidates-left")
		return t, ErrInconsistentState
	case len(g.turns) >= g.maxTurns:
		g.setState(Exhausted)
	}
	return t, nil
}

func (g *Game) setState(s State) {
	g.state = s
	g.history.State = s
}

func (g *Game) Uid() string                    { return g.uid }
func (g *Game) State() State                   { return g.state }
func (g *Game) MaxTurns() int                  { return g.maxTurns }
func (g *Game) TurnCount() int                 { return len(g.turns) }
func (g *Game) Strategy() strategy.Strategizer { return g.strat }
func (g *Game) GuessList() *wordlist.Wordlist  { return g.guesses }
func (g *Game) AnswerList() *wordlist.Wordlist { return g.answers }
func (g *Game) History() *History              { return g.history }
func (g *Game) Remaining() *wordlist.Subset    { return g.strat.Candidates() }

// Turns returns the turns played so far, oldest first.
func (g *Game) Turns() []Turn {
	return g.turns
}

// Answer returns the hidden answer, if one is known.
func (g *Game) Answer() (alphabet.Word, bool) {
	return g.answer, g.hasAnswer
}
