package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/domino14/wordlebot/config"
	"github.com/domino14/wordlebot/game"
	"github.com/domino14/wordlebot/history"
	"github.com/domino14/wordlebot/strategy"
	"github.com/domino14/wordlebot/wordlist"
)

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
	errNoGame            = errors.New("no game in progress; type new or assist")
)

type shellcmd struct {
	cmd     string
	args    []string
	options map[string]string
}

type Response struct {
	message string
}

func msg(message string) *Response {
	return &Response{message: message}
}

type ShellController struct {
	l        *readline.Instance
	out      io.Writer
	ctx      context.Context
	config   *config.Config
	execPath string
	options  *ShellOptions

	guesses *wordlist.Wordlist
	answers *wordlist.Wordlist
	game    *game.Game
	strat   *strategy.EntropyStrategy
	mode    history.Mode
	saved   bool

	store *history.Store
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func writeln(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

func (sc *ShellController) showMessage(msg string) {
	writeln(msg, sc.out)
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

// NewShellController sets up the readline prompt and opens the game
// history store. ctx carries the logger and bounds long commands.
func NewShellController(ctx context.Context, cfg *config.Config, execPath string) *ShellController {
	sc := newController(ctx, cfg, execPath, nil)
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[32mwordlebot>\033[0m ",
		HistoryFile:     "/tmp/wordlebot_readline.tmp",
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",
		AutoComplete:    NewShellCompleter(sc),

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		panic(err)
	}
	sc.l = l
	sc.out = l.Stderr()
	return sc
}

func newController(ctx context.Context, cfg *config.Config, execPath string, out io.Writer) *ShellController {
	execPath = config.FindBasePath(execPath)
	opts := NewShellOptions()
	opts.SetDefaults(cfg)
	sc := &ShellController{
		out:      out,
		ctx:      ctx,
		config:   cfg,
		execPath: execPath,
		options:  opts,
	}
	store, err := history.Open(ctx, cfg.GetString(config.ConfigHistoryDB))
	if err != nil {
		log.Warn().Err(err).Msg("could not open game history; games will not be saved")
	} else {
		sc.store = store
	}
	return sc
}

// Close releases the history store.
func (sc *ShellController) Close() error {
	if sc.store == nil {
		return nil
	}
	return sc.store.Close()
}

func (sc *ShellController) IsPlaying() bool {
	return sc.game != nil && !sc.game.State().Terminal()
}

func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := fields[0]
	var args []string
	options := map[string]string{}
	for idx := 1; idx < len(fields); idx++ {
		if isOption(fields[idx]) {
			if idx+1 >= len(fields) {
				return nil, errWrongOptionSyntax
			}
			options[fields[idx][1:]] = fields[idx+1]
			idx++
			continue
		}
		args = append(args, fields[idx])
	}
	return &shellcmd{cmd: cmd, args: args, options: options}, nil
}

// isOption tells -threads from an outcome written with dashes, like -y--g.
func isOption(field string) bool {
	if len(field) < 2 || field[0] != '-' {
		return false
	}
	c := field[1]
	return c >= 'a' && c <= 'z' && len(strings.Trim(field[1:], "-bgyx")) > 0
}

func (sc *ShellController) handle(line string) (*Response, error) {
	cmd, err := extractFields(line)
	if err != nil {
		return nil, err
	}
	switch cmd.cmd {
	case "new", "n":
		return sc.newGame(cmd)
	case "assist":
		return sc.assist(cmd)
	case "autoplay":
		return sc.autoplay(cmd)
	case "guess", "g":
		return sc.guess(cmd)
	case "ai", "a":
		return sc.aiplay(cmd)
	case "outcome", "o":
		return sc.outcome(cmd)
	case "hint", "h":
		return sc.hint(cmd)
	case "show", "s":
		return sc.show(cmd)
	case "candidates", "c":
		return sc.candidates(cmd)
	case "explain":
		return sc.explain(cmd)
	case "history":
		return sc.showHistory(cmd)
	case "recent":
		return sc.recent(cmd)
	case "export":
		return sc.export(cmd)
	case "eval":
		return sc.eval(cmd)
	case "set":
		return sc.set(cmd)
	case "help":
		return sc.help(cmd)
	default:
		return nil, fmt.Errorf("command %q not found", cmd.cmd)
	}
}

// Execute runs a single command line, for non-interactive use.
func (sc *ShellController) Execute(line string) {
	resp, err := sc.handle(line)
	if err != nil {
		sc.showError(err)
	} else if resp != nil {
		sc.showMessage(resp.message)
	}
}

// Cleanup closes the prompt and the history store.
func (sc *ShellController) Cleanup() {
	if sc.l != nil {
		sc.l.Close()
	}
	if err := sc.Close(); err != nil {
		log.Error().Err(err).Msg("closing-history-store")
	}
}

func (sc *ShellController) Loop(sig chan os.Signal) {
	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if line == "exit" || line == "bye" {
			sig <- syscall.SIGINT
			break
		}
		sc.Execute(line)
	}
	log.Debug().Msgf("Exiting readline loop...")
}
