package outcome

import (
	"errors"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/wordlebot/alphabet"
)

func TestScore(t *testing.T) {
	is := is.New(t)
	type tc struct {
		guess, answer string
		expected      string
	}
	cases := []tc{
		{"soare", "boyed", "bgbby"},
		{"boyed", "boyed", "ggggg"},
		// repeated guess letter, one copy in the answer
		{"speed", "abide", "bbyby"},
		{"eerie", "abide", "bbbyg"},
		// both copies of the guess letter are in the answer
		{"booed", "boyed", "ggbgg"},
		{"llama", "hello", "yybbb"},
		{"lolly", "hello", "byggb"},
		// an exact match takes priority over an earlier misplaced copy
		{"geese", "those", "bbbgg"},
		{"abcde", "fghij", "bbbbb"},
		{"aaaaa", "abaca", "gbgbg"},
	}
	for _, c := range cases {
		o := Score(alphabet.MustWord(c.guess), alphabet.MustWord(c.answer))
		is.Equal(o.String(), c.expected)
	}
}

func TestScoreSpecExample(t *testing.T) {
	is := is.New(t)
	o := Score(alphabet.MustWord("soare"), alphabet.MustWord("boyed"))
	is.Equal(o, Outcome{Absent, Exact, Absent, Absent, Present})
}

// Property: the number of Exact tiles equals the number of agreeing
// positions, and no letter gets more Present+Exact tiles than it has copies
// in the answer.
func TestScoreProperties(t *testing.T) {
	is := is.New(t)
	words := []string{"soare", "boyed", "booed", "eerie", "abide", "speed", "geese", "those",
		"llama", "hello", "lolly", "mamma", "xylyl", "added", "dodos", "odder"}
	for _, g := range words {
		for _, a := range words {
			gw, aw := alphabet.MustWord(g), alphabet.MustWord(a)
			o := Score(gw, aw)
			agree, exact := 0, 0
			var marked [alphabet.AlphabetSize]int
			for i := range gw {
				if gw[i] == aw[i] {
					agree++
				}
				if o[i] == Exact {
					exact++
				}
				if o[i] != Absent {
					marked[gw[i]]++
				}
			}
			is.Equal(agree, exact)
			counts := aw.Counts()
			for l := range marked {
				is.True(marked[l] <= int(counts[l]))
			}
		}
	}
}

func TestKeyRoundTrip(t *testing.T) {
	is := is.New(t)
	seen := map[uint8]bool{}
	for k := 0; k < NumKeys; k++ {
		o := FromKey(uint8(k))
		is.Equal(o.Key(), uint8(k))
		seen[o.Key()] = true
	}
	is.Equal(len(seen), NumKeys)
	is.Equal(Outcome{}.Key(), uint8(0))
	is.Equal(AllExact().Key(), uint8(NumKeys-1))
}

func TestParse(t *testing.T) {
	is := is.New(t)
	o, err := Parse("bGy.2")
	is.NoErr(err)
	is.Equal(o, Outcome{Absent, Exact, Present, Absent, Exact})
	o, err = Parse("01200")
	is.NoErr(err)
	is.Equal(o.String(), "bygbb")

	_, err = Parse("gggg")
	is.True(errors.Is(err, alphabet.ErrMalformedInput))
	_, err = Parse("ggggz")
	is.True(errors.Is(err, alphabet.ErrMalformedInput))
}

func TestSolved(t *testing.T) {
	is := is.New(t)
	is.True(AllExact().Solved())
	is.True(!Outcome{Exact, Exact, Exact, Exact, Present}.Solved())
	is.Equal(Score(alphabet.MustWord("cigar"), alphabet.MustWord("cigar")), AllExact())
}

func TestEmoji(t *testing.T) {
	is := is.New(t)
	is.Equal(Outcome{Absent, Exact, Absent, Absent, Present}.Emoji(), "⬛🟩⬛⬛🟨")
}

func BenchmarkScore(b *testing.B) {
	g, a := alphabet.MustWord("soare"), alphabet.MustWord("boyed")
	for i := 0; i < b.N; i++ {
		Score(g, a)
	}
}
