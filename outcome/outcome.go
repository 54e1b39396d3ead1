// Package outcome models the feedback the game gives for a guess: one tile
// per letter, telling whether the letter is in the right spot, somewhere
// else in the answer, or not in the answer at all.
package outcome

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/domino14/wordlebot/alphabet"
)

// Tile is the feedback for one letter of a guess.
type Tile uint8

const (
	Absent Tile = iota
	Present
	Exact
)

// NumKeys is the number of distinct outcomes, 3^WordLength.
const NumKeys = 243

func (t Tile) String() string {
	switch t {
	case Absent:
		return "absent"
	case Present:
		return "present"
	case Exact:
		return "exact"
	}
	return fmt.Sprintf("tile(%d)", t)
}

// Outcome is the per-position feedback for one guess. It is comparable, so
// it can key a map directly.
type Outcome [alphabet.WordLength]Tile

// Score computes the feedback for guess when the hidden word is answer.
// Exact matches are resolved first and each consumes one copy of its
// letter from the answer; a remaining guess letter is Present only while
// unconsumed copies of it are left, scanning left to right.
func Score(guess, answer alphabet.Word) Outcome {
	var o Outcome
	var unmatched [alphabet.AlphabetSize]uint8
	for i := range guess {
		if guess[i] == answer[i] {
			o[i] = Exact
		} else {
			unmatched[answer[i]]++
		}
	}
	for i := range guess {
		if o[i] == Exact {
			continue
		}
		if unmatched[guess[i]] > 0 {
			o[i] = Present
			unmatched[guess[i]]--
		}
	}
	return o
}

// ScoreKey is Score(guess, answer).Key().
func ScoreKey(guess, answer alphabet.Word) uint8 {
	return Score(guess, answer).Key()
}

// Key returns a dense signature in [0, NumKeys). Two outcomes have the
// same key if and only if they are equal.
func (o Outcome) Key() uint8 {
	k := 0
	for i := len(o) - 1; i >= 0; i-- {
		k = k*3 + int(o[i])
	}
	return uint8(k)
}

// FromKey is the inverse of Key.
func FromKey(k uint8) Outcome {
	var o Outcome
	v := int(k)
	for i := range o {
		o[i] = Tile(v % 3)
		v /= 3
	}
	return o
}

// AllExact is the outcome of guessing the answer itself.
func AllExact() Outcome {
	var o Outcome
	for i := range o {
		o[i] = Exact
	}
	return o
}

// Solved reports whether every tile is Exact.
func (o Outcome) Solved() bool {
	return o == AllExact()
}

// Parse reads an outcome typed by a person. Each position is one of
// g/2 (exact), y/1 (present) or b/x/./-/_/0 (absent), case-insensitive.
func Parse(s string) (Outcome, error) {
	var o Outcome
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) != alphabet.WordLength {
		return o, fmt.Errorf("%w: outcome %q has %d tiles, want %d", alphabet.ErrMalformedInput,
			s, len(runes), alphabet.WordLength)
	}
	for i, r := range runes {
		switch r {
		case 'g', 'G', '2':
			o[i] = Exact
		case 'y', 'Y', '1':
			o[i] = Present
		case 'b', 'B', 'x', 'X', '.', '-', '_', '0':
			o[i] = Absent
		default:
			return o, fmt.Errorf("%w: outcome %q has unknown tile %q", alphabet.ErrMalformedInput, s, r)
		}
	}
	return o, nil
}

// String renders the outcome in the same notation Parse accepts.
func (o Outcome) String() string {
	var sb strings.Builder
	for _, t := range o {
		switch t {
		case Exact:
			sb.WriteByte('g')
		case Present:
			sb.WriteByte('y')
		default:
			sb.WriteByte('b')
		}
	}
	return sb.String()
}

// Emoji renders the outcome as the familiar shareable square grid row.
func (o Outcome) Emoji() string {
	var sb strings.Builder
	for _, t := range o {
		switch t {
		case Exact:
			sb.WriteString("🟩")
		case Present:
			sb.WriteString("🟨")
		default:
			sb.WriteString("⬛")
		}
	}
	return sb.String()
}

var (
	exactColor   = color.New(color.BgGreen, color.FgHiWhite, color.Bold)
	presentColor = color.New(color.BgYellow, color.FgHiWhite, color.Bold)
	absentColor  = color.New(color.BgHiBlack, color.FgHiWhite, color.Bold)
)

// Colorize renders the guessed word with a colored background per tile.
// Colors are dropped automatically when output is not a terminal.
func (o Outcome) Colorize(guess alphabet.Word) string {
	var sb strings.Builder
	for i, t := range o {
		letter := " " + strings.ToUpper(string(guess[i].Rune())) + " "
		switch t {
		case Exact:
			sb.WriteString(exactColor.Sprint(letter))
		case Present:
			sb.WriteString(presentColor.Sprint(letter))
		default:
			sb.WriteString(absentColor.Sprint(letter))
		}
	}
	return sb.String()
}
