package shell

import (
	"strings"

	"github.com/kballard/go-shellquote"
)

// ShellCompleter provides context-aware autocomplete for shell commands
type ShellCompleter struct {
	sc *ShellController
}

func NewShellCompleter(sc *ShellController) *ShellCompleter {
	return &ShellCompleter{sc: sc}
}

// CommandMetadata holds autocomplete information for a command
type CommandMetadata struct {
	Options []string
	Args    []string
}

var commandMetadata = map[string]CommandMetadata{
	"eval": {
		Options: []string{"-threads", "-log"},
	},
	"export": {
		Options: []string{"-recent"},
	},
	"set": {
		Args: optionKeys,
	},
	"help": {
		Args: []string{"outcome", "set", "eval"},
	},
}

var commandNames = []string{
	"help", "new", "assist", "autoplay", "guess", "ai", "outcome", "hint", "show",
	"candidates", "explain", "history", "recent", "export", "eval", "set", "exit",
}

var boolValues = []string{"true", "false"}

// Do implements the readline.AutoComplete interface.
func (c *ShellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])

	fields, err := shellquote.Split(text)
	if err != nil {
		fields = strings.Fields(text)
	}
	endsWithSpace := len(text) > 0 && text[len(text)-1] == ' '

	var prefix string
	var completions []string

	if len(fields) == 0 || (len(fields) == 1 && !endsWithSpace) {
		if len(fields) == 1 {
			prefix = fields[0]
		}
		completions = commandNames
	} else {
		cmdName := fields[0]
		if !endsWithSpace {
			prefix = fields[len(fields)-1]
		}
		args := fields[1:]
		if !endsWithSpace {
			args = args[:len(args)-1]
		}

		switch {
		case cmdName == "set" && len(args) == 1:
			switch args[0] {
			case "verbose":
				completions = boolValues
			case "weighting":
				completions = []string{"logz", "raw"}
			}
		case (cmdName == "guess" || cmdName == "g" || cmdName == "explain") && len(args) == 0:
			completions = c.candidateWords(prefix)
		}

		if (completions == nil && len(args) == 0) || strings.HasPrefix(prefix, "-") {
			if metadata, exists := commandMetadata[cmdName]; exists {
				if strings.HasPrefix(prefix, "-") || len(metadata.Args) == 0 {
					completions = metadata.Options
				} else {
					completions = metadata.Args
				}
			}
		}
	}

	var matches [][]rune
	for _, completion := range completions {
		if strings.HasPrefix(completion, prefix) {
			matches = append(matches, []rune(completion[len(prefix):]))
		}
	}
	return matches, len(prefix)
}

// candidateWords offers the remaining candidates once the prefix narrows
// them down enough to be useful.
func (c *ShellCompleter) candidateWords(prefix string) []string {
	if c.sc == nil || c.sc.game == nil || len(prefix) < 2 {
		return nil
	}
	remaining := c.sc.game.Remaining()
	var out []string
	for i := 0; i < remaining.Len(); i++ {
		if w := remaining.Word(i).String(); strings.HasPrefix(w, prefix) {
			out = append(out, w)
		}
	}
	return out
}
