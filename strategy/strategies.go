package strategy

import (
	"context"
	"errors"

	"github.com/domino14/wordlebot/alphabet"
	"github.com/domino14/wordlebot/outcome"
	"github.com/domino14/wordlebot/pattern"
	"github.com/domino14/wordlebot/wordlist"
)

// ErrInconsistentState means no candidate answer is consistent with the
// outcomes seen so far. Either an outcome was entered wrongly or the
// answer is not in the answer list.
var ErrInconsistentState = errors.New("no remaining candidate is consistent with the outcomes so far")

// Strategizer picks guesses. The game driver tells it about each guess and
// its outcome, and asks it for the next guess.
type Strategizer interface {
	// ChosenGuess is the strategy's best guess given what it knows.
	ChosenGuess(ctx context.Context) (alphabet.Word, error)
	// RegisterGuess folds the outcome of a guess into the strategy's
	// knowledge and narrows its candidates.
	RegisterGuess(guess alphabet.Word, o outcome.Outcome)
	// Candidates are the answers still consistent with everything seen.
	Candidates() *wordlist.Subset
	Pattern() pattern.Pattern
	Metrics() Metrics
}

// Metrics describe the candidate pool at one point in a game.
type Metrics struct {
	Remaining         int
	UnweightedEntropy float64
	// WeightedEntropy is NaN unless the pool is small enough for weighted
	// scoring and has some weight.
	WeightedEntropy float64
}
