// Package pattern accumulates what a sequence of guess outcomes has revealed
// about the hidden word, and filters wordlists down to the words that are
// still consistent with it.
package pattern

import (
	"strings"

	"github.com/domino14/wordlebot/alphabet"
	"github.com/domino14/wordlebot/outcome"
	"github.com/domino14/wordlebot/wordlist"
)

const unknown = -1

// Pattern is the constraint state after zero or more guesses. It is a plain
// value; Fold returns a new Pattern and never changes its receiver.
type Pattern struct {
	// fixed holds the letter confirmed at each position, or -1.
	fixed [alphabet.WordLength]int8
	// excluded holds the letters ruled out at each position.
	excluded [alphabet.WordLength]alphabet.LetterSet
	// required holds the minimum number of copies of each letter.
	required [alphabet.AlphabetSize]uint8
}

// New returns a pattern with no knowledge.
func New() Pattern {
	var p Pattern
	for i := range p.fixed {
		p.fixed[i] = unknown
	}
	return p
}

// Fixed returns the letter known to be at pos, if any.
func (p Pattern) Fixed(pos int) (alphabet.MachineLetter, bool) {
	if p.fixed[pos] == unknown {
		return 0, false
	}
	return alphabet.MachineLetter(p.fixed[pos]), true
}

func (p Pattern) Excluded(pos int) alphabet.LetterSet { return p.excluded[pos] }

func (p Pattern) Required(ml alphabet.MachineLetter) int { return int(p.required[ml]) }

// IsEmpty reports whether the pattern holds no knowledge at all.
func (p Pattern) IsEmpty() bool {
	return p == New()
}

// Matches reports whether w is consistent with every constraint.
func (p Pattern) Matches(w alphabet.Word) bool {
	for i, ml := range w {
		if p.fixed[i] != unknown && ml != alphabet.MachineLetter(p.fixed[i]) {
			return false
		}
		if p.excluded[i].Contains(ml) {
			return false
		}
	}
	var counts [alphabet.AlphabetSize]uint8
	for _, ml := range w {
		counts[ml]++
	}
	for l, min := range p.required {
		if counts[l] < min {
			return false
		}
	}
	return true
}

// Filter returns the words of list that match the pattern.
func (p Pattern) Filter(list *wordlist.Wordlist) *wordlist.Subset {
	indices := make([]int, 0, list.Len())
	for i := 0; i < list.Len(); i++ {
		if p.Matches(list.Word(i)) {
			indices = append(indices, i)
		}
	}
	return list.NewSubset(indices)
}

// FilterSubset narrows an existing subset. Since folding only ever adds
// constraints, filtering the previous turn's candidates gives the same
// result as filtering the whole list.
func (p Pattern) FilterSubset(s *wordlist.Subset) *wordlist.Subset {
	return s.Filter(p.Matches)
}

// Fold returns the pattern extended with the outcome of one guess.
//
// An Exact tile fixes its position. A Present tile excludes its letter at
// that position. Each letter's minimum count is raised to the number of
// Present and Exact tiles it received in this guess. An Absent tile
// excludes its letter everywhere that is not fixed, unless the same letter
// matched elsewhere in this guess, in which case only that position is
// excluded.
//
// Folding never relaxes a constraint. Outcomes that contradict earlier ones
// leave a pattern that matches no word, which callers detect as an empty
// candidate set.
func (p Pattern) Fold(guess alphabet.Word, o outcome.Outcome) Pattern {
	next := p
	var matched [alphabet.AlphabetSize]uint8
	for i, t := range o {
		switch t {
		case outcome.Exact:
			if next.fixed[i] != unknown && next.fixed[i] != int8(guess[i]) {
				// Contradicts an earlier outcome; no word can match.
				next.excluded[i] = next.excluded[i].Add(alphabet.MachineLetter(next.fixed[i]))
			} else {
				next.fixed[i] = int8(guess[i])
			}
			matched[guess[i]]++
		case outcome.Present:
			next.excluded[i] = next.excluded[i].Add(guess[i])
			matched[guess[i]]++
		}
	}
	for i, t := range o {
		if t != outcome.Absent {
			continue
		}
		ml := guess[i]
		if matched[ml] > 0 {
			next.excluded[i] = next.excluded[i].Add(ml)
			continue
		}
		for j := range next.excluded {
			if next.fixed[j] != int8(ml) {
				next.excluded[j] = next.excluded[j].Add(ml)
			}
		}
	}
	for l, n := range matched {
		if n > next.required[l] {
			next.required[l] = n
		}
	}
	return next
}

// String renders the pattern compactly, e.g.
//
//	b o _ _ d  !1:a !2:er  +e
//
// with fixed letters, per-position exclusions and required letters
// (repeated once per required copy).
func (p Pattern) String() string {
	var sb strings.Builder
	for i, f := range p.fixed {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if f == unknown {
			sb.WriteByte('_')
		} else {
			sb.WriteRune(alphabet.MachineLetter(f).Rune())
		}
	}
	first := true
	for i, ex := range p.excluded {
		if ex == 0 {
			continue
		}
		if first {
			sb.WriteString(" ")
			first = false
		}
		sb.WriteString(" !")
		sb.WriteByte(byte('1' + i))
		sb.WriteByte(':')
		sb.WriteString(ex.String())
	}
	var req strings.Builder
	for l, n := range p.required {
		for k := uint8(0); k < n; k++ {
			req.WriteRune(alphabet.MachineLetter(l).Rune())
		}
	}
	if req.Len() > 0 {
		sb.WriteString("  +")
		sb.WriteString(req.String())
	}
	return sb.String()
}
