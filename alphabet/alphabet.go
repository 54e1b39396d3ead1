// Package alphabet maps the letters of the word game onto small machine
// integers, so that words can be scored, compared and hashed without any
// allocation in the hot paths of the solver.
package alphabet

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// WordLength is the fixed length of every word in the game.
	WordLength = 5
	// AlphabetSize is the number of distinct letters, a through z.
	AlphabetSize = 26
)

// ErrMalformedInput is returned for any word that has the wrong length or
// contains a symbol outside of the alphabet.
var ErrMalformedInput = errors.New("malformed input")

// MachineLetter is a machine-only representation of a letter. It goes from
// 0 ('a') to AlphabetSize - 1 ('z').
type MachineLetter uint8

// LetterSet is a bit mask of letters, with bit i standing for MachineLetter i.
type LetterSet uint32

// Word is a machine-only representation of a word of the game.
type Word [WordLength]MachineLetter

// Rune returns the user-visible lowercase letter.
func (ml MachineLetter) Rune() rune {
	return rune('a' + ml)
}

// ToMachineLetter converts a rune into a machine letter. Uppercase letters
// are accepted.
func ToMachineLetter(r rune) (MachineLetter, error) {
	if r >= 'A' && r <= 'Z' {
		r += 'a' - 'A'
	}
	if r < 'a' || r > 'z' {
		return 0, fmt.Errorf("%w: letter %q is not in the alphabet", ErrMalformedInput, r)
	}
	return MachineLetter(r - 'a'), nil
}

// ToWord converts a user-visible string into a Word. It never truncates or
// pads; anything that is not exactly WordLength letters is rejected.
func ToWord(s string) (Word, error) {
	var w Word
	runes := []rune(s)
	if len(runes) != WordLength {
		return w, fmt.Errorf("%w: %q has %d letters, want %d", ErrMalformedInput, s,
			len(runes), WordLength)
	}
	for i, r := range runes {
		ml, err := ToMachineLetter(r)
		if err != nil {
			return w, fmt.Errorf("%q: %w", s, err)
		}
		w[i] = ml
	}
	return w, nil
}

// MustWord is like ToWord but panics on bad input. Meant for tests and
// constants.
func MustWord(s string) Word {
	w, err := ToWord(s)
	if err != nil {
		panic(err)
	}
	return w
}

func (w Word) String() string {
	var sb strings.Builder
	sb.Grow(WordLength)
	for _, ml := range w {
		sb.WriteRune(ml.Rune())
	}
	return sb.String()
}

// UserVisible returns the word in uppercase, the way it is shown on a board.
func (w Word) UserVisible() string {
	return strings.ToUpper(w.String())
}

// Count returns how many times the letter occurs in the word.
func (w Word) Count(ml MachineLetter) int {
	ct := 0
	for _, l := range w {
		if l == ml {
			ct++
		}
	}
	return ct
}

// Counts returns the number of occurrences of every letter.
func (w Word) Counts() [AlphabetSize]uint8 {
	var counts [AlphabetSize]uint8
	for _, l := range w {
		counts[l]++
	}
	return counts
}

// LetterSet returns the set of distinct letters in the word.
func (w Word) LetterSet() LetterSet {
	var s LetterSet
	for _, l := range w {
		s = s.Add(l)
	}
	return s
}

// Less reports whether w sorts lexically before o.
func (w Word) Less(o Word) bool {
	for i := range w {
		if w[i] != o[i] {
			return w[i] < o[i]
		}
	}
	return false
}

// Contains reports whether ml is in the set.
func (s LetterSet) Contains(ml MachineLetter) bool {
	return s&(1<<ml) != 0
}

// Add returns a copy of the set with ml added.
func (s LetterSet) Add(ml MachineLetter) LetterSet {
	return s | (1 << ml)
}

// Remove returns a copy of the set with ml removed.
func (s LetterSet) Remove(ml MachineLetter) LetterSet {
	return s &^ (1 << ml)
}

// Letters lists the members of the set in alphabetical order.
func (s LetterSet) Letters() []MachineLetter {
	var out []MachineLetter
	for ml := MachineLetter(0); ml < AlphabetSize; ml++ {
		if s.Contains(ml) {
			out = append(out, ml)
		}
	}
	return out
}

func (s LetterSet) String() string {
	var sb strings.Builder
	for _, ml := range s.Letters() {
		sb.WriteRune(ml.Rune())
	}
	return sb.String()
}
