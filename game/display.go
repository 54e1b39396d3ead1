package game

import (
	"fmt"
	"strings"
)

// ToDisplayText renders the board: every guess with colored tiles, the
// number of candidates left and, when the game is over, how it ended.
func (g *Game) ToDisplayText() string {
	var sb strings.Builder
	for i, t := range g.turns {
		marker := " "
		if t.FromStrategy {
			marker = "*"
		}
		fmt.Fprintf(&sb, "%d%s %s  %s\n", i+1, marker, t.Outcome.Colorize(t.Guess), t.Guess.UserVisible())
	}
	for i := len(g.turns); i < g.maxTurns; i++ {
		fmt.Fprintf(&sb, "%d  %s\n", i+1, strings.Repeat(" _ ", 5))
	}
	sb.WriteString("\n")
	remaining := g.Remaining()
	fmt.Fprintf(&sb, "Turn %d/%d, %d candidate(s) left", len(g.turns), g.maxTurns, remaining.Len())
	if n := remaining.Len(); n > 0 && n <= 10 {
		words := make([]string, n)
		for i := range words {
			words[i] = remaining.Word(i).String()
		}
		fmt.Fprintf(&sb, ": %s", strings.Join(words, " "))
	}
	sb.WriteString("\n")

	switch g.state {
	case Solved:
		fmt.Fprintf(&sb, "Solved in %d.\n", len(g.turns))
	case Exhausted:
		if g.hasAnswer {
			fmt.Fprintf(&sb, "Out of guesses. The answer was %s.\n", g.answer.UserVisible())
		} else {
			sb.WriteString("Out of guesses.\n")
		}
	case Aborted:
		sb.WriteString("No candidate fits these outcomes; the game was abandoned.\n")
	}
	return sb.String()
}

// ShareText is the emoji grid people paste after a game.
func (g *Game) ShareText() string {
	score := "X"
	if g.state == Solved {
		score = fmt.Sprint(len(g.turns))
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "wordlebot %s/%d\n", score, g.maxTurns)
	for _, t := range g.turns {
		sb.WriteString(t.Outcome.Emoji())
		sb.WriteString("\n")
	}
	return sb.String()
}
