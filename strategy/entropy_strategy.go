package strategy

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/domino14/wordlebot/alphabet"
	"github.com/domino14/wordlebot/entropy"
	"github.com/domino14/wordlebot/outcome"
	"github.com/domino14/wordlebot/pattern"
	"github.com/domino14/wordlebot/wordlist"
)

// EntropyStrategy always plays the guess with the highest expected
// information gain over the remaining candidates.
type EntropyStrategy struct {
	guesses   *wordlist.Wordlist
	answers   *wordlist.Wordlist
	knowledge pattern.Pattern
	remaining *wordlist.Subset

	threads int
	verbose bool
	// Weighted scoring kicks in when fewer than this many candidates
	// remain. Zero turns it off.
	weightedThreshold int

	openingGuess    alphabet.Word
	hasOpeningGuess bool
}

func NewEntropyStrategy(guesses, answers *wordlist.Wordlist) *EntropyStrategy {
	return &EntropyStrategy{
		guesses:   guesses,
		answers:   answers,
		knowledge: pattern.New(),
		remaining: answers.All(),
		threads:   max(1, runtime.NumCPU()),
	}
}

func (s *EntropyStrategy) SetThreads(threads int) {
	s.threads = threads
}

func (s *EntropyStrategy) Threads() int {
	return s.threads
}

// SetVerbose turns the progress bar on.
func (s *EntropyStrategy) SetVerbose(v bool) {
	s.verbose = v
}

func (s *EntropyStrategy) SetWeightedThreshold(n int) {
	s.weightedThreshold = n
}

func (s *EntropyStrategy) WeightedThreshold() int {
	return s.weightedThreshold
}

// SetOpeningGuess sets the guess to play when nothing is known yet. The
// first guess only depends on the two wordlists and the scoring options, so
// it can be computed once and shared by many games.
func (s *EntropyStrategy) SetOpeningGuess(w alphabet.Word) {
	s.openingGuess = w
	s.hasOpeningGuess = true
}

func (s *EntropyStrategy) GuessList() *wordlist.Wordlist  { return s.guesses }
func (s *EntropyStrategy) AnswerList() *wordlist.Wordlist { return s.answers }

// Reset forgets every registered guess.
func (s *EntropyStrategy) Reset() {
	s.knowledge = pattern.New()
	s.remaining = s.answers.All()
}

// UsesWeighted reports whether the next guess is scored with word weights.
func (s *EntropyStrategy) UsesWeighted() bool {
	return s.remaining.Len() < s.weightedThreshold
}

func (s *EntropyStrategy) turnOptions() TurnOptions {
	return TurnOptions{
		Threads:  s.threads,
		Weighted: s.UsesWeighted(),
		Progress: s.verbose,
	}
}

func (s *EntropyStrategy) ChosenGuess(ctx context.Context) (alphabet.Word, error) {
	if s.hasOpeningGuess && s.knowledge.IsEmpty() {
		return s.openingGuess, nil
	}
	return BestGuess(ctx, s.guesses, s.remaining, s.turnOptions())
}

// TopGuesses ranks the whole guess list for the current position.
func (s *EntropyStrategy) TopGuesses(ctx context.Context, n int) ([]Candidate, error) {
	return TopGuesses(ctx, s.guesses, s.remaining, s.turnOptions(), n)
}

// Explain partitions the remaining candidates by the outcome w would give.
func (s *EntropyStrategy) Explain(w alphabet.Word) []entropy.Bucket {
	return entropy.Partition(w, s.remaining)
}

func (s *EntropyStrategy) RegisterGuess(guess alphabet.Word, o outcome.Outcome) {
	s.knowledge = s.knowledge.Fold(guess, o)
	s.remaining = s.knowledge.FilterSubset(s.remaining)
}

func (s *EntropyStrategy) Candidates() *wordlist.Subset { return s.remaining }
func (s *EntropyStrategy) Pattern() pattern.Pattern     { return s.knowledge }

func (s *EntropyStrategy) Metrics() Metrics {
	m := Metrics{
		Remaining:         s.remaining.Len(),
		UnweightedEntropy: entropy.PoolEntropy(s.remaining, false),
		WeightedEntropy:   entropy.Undefined,
	}
	if s.UsesWeighted() {
		m.WeightedEntropy = entropy.PoolEntropy(s.remaining, true)
	}
	return m
}

func (s *EntropyStrategy) String() string {
	var sb strings.Builder
	m := s.Metrics()
	fmt.Fprintf(&sb, "Candidates: %d (entropy %.4f bits)\n", m.Remaining, m.UnweightedEntropy)
	fmt.Fprintf(&sb, "Pattern:    %s\n", s.knowledge)
	if s.UsesWeighted() {
		fmt.Fprintf(&sb, "Scoring:    weighted (fewer than %d candidates)\n", s.weightedThreshold)
	} else {
		sb.WriteString("Scoring:    unweighted\n")
	}
	return sb.String()
}
