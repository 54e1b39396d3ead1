package shell

import (
	"errors"
	"fmt"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/domino14/wordlebot/alphabet"
	"github.com/domino14/wordlebot/automatic"
	"github.com/domino14/wordlebot/config"
	"github.com/domino14/wordlebot/entropy"
	"github.com/domino14/wordlebot/game"
	"github.com/domino14/wordlebot/history"
	"github.com/domino14/wordlebot/outcome"
	"github.com/domino14/wordlebot/strategy"
	"github.com/domino14/wordlebot/wordlist"
)

func intArg(cmd *shellcmd, idx, defaultI int) (int, error) {
	if len(cmd.args) <= idx {
		return defaultI, nil
	}
	return strconv.Atoi(cmd.args[idx])
}

func (sc *ShellController) loadLists() error {
	sc.config.Set(config.ConfigWeighting, sc.options.Weighting.String())
	guesses, err := wordlist.Get(sc.config, config.ConfigGuessList)
	if err != nil {
		return err
	}
	answers, err := wordlist.Get(sc.config, config.ConfigAnswerList)
	if err != nil {
		return err
	}
	sc.guesses, sc.answers = guesses, answers
	return nil
}

func (sc *ShellController) startGame(mode history.Mode) error {
	if err := sc.loadLists(); err != nil {
		return err
	}
	strat := strategy.NewEntropyStrategy(sc.guesses, sc.answers)
	strat.SetThreads(sc.options.Threads)
	strat.SetWeightedThreshold(sc.options.WeightedThreshold)
	strat.SetVerbose(sc.options.Verbose)
	g, err := game.NewGame(game.Options{
		Guesses:  sc.guesses,
		Answers:  sc.answers,
		Strategy: strat,
		MaxTurns: sc.options.MaxTurns,
	})
	if err != nil {
		return err
	}
	sc.game, sc.strat, sc.mode, sc.saved = g, strat, mode, false
	return nil
}

// useOpeningGuess gives the strategy the cached first guess, which is the
// same for every game over these lists.
func (sc *ShellController) useOpeningGuess() error {
	if sc.game.TurnCount() > 0 {
		return nil
	}
	w, err := automatic.OpeningGuess(sc.ctx, sc.config, sc.guesses, sc.answers,
		sc.options.WeightedThreshold, sc.options.Threads)
	if err != nil {
		return err
	}
	sc.strat.SetOpeningGuess(w)
	return nil
}

func (sc *ShellController) requireGame() error {
	if sc.game == nil {
		return errNoGame
	}
	return nil
}

func (sc *ShellController) saveGame() {
	if sc.saved || sc.store == nil || !sc.game.State().Terminal() {
		return
	}
	if err := sc.store.SaveHistory(sc.ctx, sc.game.History(), sc.mode); err != nil {
		log.Error().Err(err).Msg("could-not-save-game")
		return
	}
	sc.saved = true
}

// afterTurn shows the board, and the share grid once the game is over.
func (sc *ShellController) afterTurn() (*Response, error) {
	text := sc.game.ToDisplayText()
	if sc.game.State().Terminal() {
		sc.saveGame()
		if sc.game.State() == game.Solved {
			text += "\n" + sc.game.ShareText()
		}
	}
	return msg(text), nil
}

func (sc *ShellController) newGame(cmd *shellcmd) (*Response, error) {
	if err := sc.startGame(history.ModePlay); err != nil {
		return nil, err
	}
	if len(cmd.args) > 0 {
		if err := sc.game.SetAnswer(cmd.args[0]); err != nil {
			return nil, err
		}
	} else {
		sc.game.ChooseRandomAnswer()
	}
	return msg(sc.game.ToDisplayText()), nil
}

func (sc *ShellController) assist(cmd *shellcmd) (*Response, error) {
	if err := sc.startGame(history.ModeAssist); err != nil {
		return nil, err
	}
	return msg("Assisted mode: play each guess elsewhere, then enter it with\n" +
		"  outcome <word> <tiles>    (tiles: g = green, y = yellow, b = gray)\n" +
		"and type ai for a suggestion.\n\n" + sc.game.ToDisplayText()), nil
}

func (sc *ShellController) autoplay(cmd *shellcmd) (*Response, error) {
	if err := sc.startGame(history.ModeSimulate); err != nil {
		return nil, err
	}
	if len(cmd.args) > 0 {
		if err := sc.game.SetAnswer(cmd.args[0]); err != nil {
			return nil, err
		}
	} else {
		sc.game.ChooseRandomAnswer()
	}
	if err := sc.useOpeningGuess(); err != nil {
		return nil, err
	}
	if _, err := sc.game.Simulate(sc.ctx); err != nil && !errors.Is(err, game.ErrInconsistentState) {
		return nil, err
	}
	return sc.afterTurn()
}

func (sc *ShellController) guess(cmd *shellcmd) (*Response, error) {
	if err := sc.requireGame(); err != nil {
		return nil, err
	}
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: guess <word>")
	}
	if _, err := sc.game.PlayGuess(cmd.args[0]); err != nil {
		if errors.Is(err, game.ErrNoAnswer) {
			return nil, errors.New("this is an assisted game; use outcome <word> <tiles>")
		}
		return nil, err
	}
	return sc.afterTurn()
}

func (sc *ShellController) aiplay(cmd *shellcmd) (*Response, error) {
	if err := sc.requireGame(); err != nil {
		return nil, err
	}
	if sc.game.State().Terminal() {
		return nil, game.ErrGameOver
	}
	if err := sc.useOpeningGuess(); err != nil {
		return nil, err
	}
	if _, hasAnswer := sc.game.Answer(); !hasAnswer {
		w, err := sc.strat.ChosenGuess(sc.ctx)
		if err != nil {
			return nil, err
		}
		return msg("Suggested guess: " + w.UserVisible()), nil
	}
	if _, err := sc.game.PlayStrategyTurn(sc.ctx); err != nil {
		if errors.Is(err, game.ErrInconsistentState) {
			sc.saveGame()
		}
		return nil, err
	}
	return sc.afterTurn()
}

func (sc *ShellController) outcome(cmd *shellcmd) (*Response, error) {
	if err := sc.requireGame(); err != nil {
		return nil, err
	}
	if len(cmd.args) != 2 {
		return nil, errors.New("usage: outcome <word> <tiles>")
	}
	o, err := outcome.Parse(cmd.args[1])
	if err != nil {
		return nil, err
	}
	if _, err := sc.game.RecordOutcome(cmd.args[0], o); err != nil {
		if errors.Is(err, game.ErrInconsistentState) {
			sc.saveGame()
			return nil, fmt.Errorf("no candidate answer fits these outcomes: %w", err)
		}
		return nil, err
	}
	return sc.afterTurn()
}

func (sc *ShellController) hint(cmd *shellcmd) (*Response, error) {
	if err := sc.requireGame(); err != nil {
		return nil, err
	}
	n, err := intArg(cmd, 0, 10)
	if err != nil {
		return nil, err
	}
	cands, err := sc.strat.TopGuesses(sc.ctx, n)
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%3s  %-6s %8s  %-4s %10s\n", "#", "Guess", "Bits", "Ans", "Score")
	for i, c := range cands {
		isAns := ""
		if c.IsCandidate {
			isAns = "*"
		}
		fmt.Fprintf(&sb, "%3d  %-6s %8.4f  %-4s %10.4g\n", i+1, c.Word.UserVisible(), c.Entropy, isAns, c.Score)
	}
	return msg(sb.String()), nil
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	if err := sc.requireGame(); err != nil {
		return nil, err
	}
	return msg(sc.game.ToDisplayText() + "\n" + sc.strat.Pattern().String()), nil
}

func (sc *ShellController) candidates(cmd *shellcmd) (*Response, error) {
	if err := sc.requireGame(); err != nil {
		return nil, err
	}
	n, err := intArg(cmd, 0, 20)
	if err != nil {
		return nil, err
	}
	remaining := sc.game.Remaining()
	idxs := lo.Range(remaining.Len())
	slices.SortStableFunc(idxs, func(a, b int) int {
		sa, sb := remaining.Score(a), remaining.Score(b)
		switch {
		case sa > sb:
			return -1
		case sa < sb:
			return 1
		}
		return 0
	})
	if n > 0 && n < len(idxs) {
		idxs = idxs[:n]
	}
	words := lo.Map(idxs, func(i int, _ int) string {
		return fmt.Sprintf("%s (%.4g)", remaining.Word(i).UserVisible(), remaining.Score(i))
	})
	return msg(fmt.Sprintf("%d candidate(s), most frequent first:\n%s",
		remaining.Len(), strings.Join(words, "\n"))), nil
}

func (sc *ShellController) explain(cmd *shellcmd) (*Response, error) {
	if err := sc.requireGame(); err != nil {
		return nil, err
	}
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: explain <word>")
	}
	w, err := alphabet.ToWord(cmd.args[0])
	if err != nil {
		return nil, err
	}
	buckets := sc.strat.Explain(w)
	remaining := sc.game.Remaining()
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s splits %d candidate(s) into %d group(s); %.4f bits, %.2f expected left\n",
		w.UserVisible(), remaining.Len(), len(buckets),
		entropy.GuessEntropy(w, remaining, false), entropy.ExpectedRemaining(buckets))
	for _, b := range buckets {
		shown := b.Words
		more := ""
		if len(shown) > 8 {
			more = fmt.Sprintf(" ... %d more", len(shown)-8)
			shown = shown[:8]
		}
		names := lo.Map(shown, func(x alphabet.Word, _ int) string { return x.String() })
		fmt.Fprintf(&sb, "%s %5d  %s%s\n", b.Outcome.Colorize(w), len(b.Words), strings.Join(names, " "), more)
	}
	return msg(sb.String()), nil
}

func (sc *ShellController) showHistory(cmd *shellcmd) (*Response, error) {
	if err := sc.requireGame(); err != nil {
		return nil, err
	}
	var sb strings.Builder
	if err := sc.game.History().Fprint(&sb); err != nil {
		return nil, err
	}
	return msg(sb.String()), nil
}

func (sc *ShellController) recent(cmd *shellcmd) (*Response, error) {
	if sc.store == nil {
		return nil, errors.New("game history is not available")
	}
	n, err := intArg(cmd, 0, 10)
	if err != nil {
		return nil, err
	}
	recs, err := sc.store.Recent(sc.ctx, n)
	if err != nil {
		return nil, err
	}
	sum, err := sc.store.Summary(sc.ctx)
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	for _, r := range recs {
		fmt.Fprintf(&sb, "%s  %-8s %-6s %-10s %d/%d  %s\n", r.ID, r.Mode, r.Answer, r.State,
			r.Turns(), r.MaxTurns, r.Started.Format("2006-01-02 15:04"))
	}
	avg := "n/a"
	if !math.IsNaN(sum.AverageTurns) {
		avg = fmt.Sprintf("%.3f", sum.AverageTurns)
	}
	fmt.Fprintf(&sb, "%d game(s) stored, %d solved, %s turns on average\n",
		sum.Games, sum.Solved, avg)
	return msg(sb.String()), nil
}

func (sc *ShellController) export(cmd *shellcmd) (*Response, error) {
	if cmd.args == nil {
		return nil, errors.New("please provide a filename to save to")
	}
	filename := cmd.args[0]
	var recs []history.GameRecord
	if n, ok := cmd.options["recent"]; ok {
		if sc.store == nil {
			return nil, errors.New("game history is not available")
		}
		limit, err := strconv.Atoi(n)
		if err != nil {
			return nil, err
		}
		if recs, err = sc.store.Recent(sc.ctx, limit); err != nil {
			return nil, err
		}
	} else {
		if err := sc.requireGame(); err != nil {
			return nil, err
		}
		recs = []history.GameRecord{history.FromHistory(sc.game.History(), sc.mode)}
	}
	f, err := os.Create(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := history.ExportYAML(f, recs); err != nil {
		return nil, err
	}
	log.Debug().Int("games", len(recs)).Str("file", filename).Msg("exported-history")
	return msg(fmt.Sprintf("%d game(s) written to %s", len(recs), filename)), nil
}

func (sc *ShellController) eval(cmd *shellcmd) (*Response, error) {
	if err := sc.loadLists(); err != nil {
		return nil, err
	}
	opts := automatic.OptionsFromConfig(sc.config)
	opts.Guesses, opts.Answers = sc.guesses, sc.answers
	opts.Threads = sc.options.Threads
	opts.MaxTurns = sc.options.MaxTurns
	opts.WeightedThreshold = sc.options.WeightedThreshold
	opts.Progress = true
	if len(cmd.args) > 0 {
		p, err := strconv.ParseFloat(cmd.args[0], 64)
		if err != nil {
			return nil, err
		}
		opts.TopPercentile = p
	}
	if t, ok := cmd.options["threads"]; ok {
		n, err := strconv.Atoi(t)
		if err != nil {
			return nil, err
		}
		opts.Threads = n
	}
	if logfile, ok := cmd.options["log"]; ok {
		f, err := os.Create(logfile)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		opts.Log = f
	}
	res, err := automatic.EvaluateStrategy(sc.ctx, sc.config, opts)
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	if err := res.Fprint(&sb); err != nil {
		return nil, err
	}
	return msg(sb.String()), nil
}

func (sc *ShellController) set(cmd *shellcmd) (*Response, error) {
	if cmd.args == nil {
		return msg(sc.options.ToDisplayText()), nil
	}
	opt := cmd.args[0]
	if len(cmd.args) == 1 {
		_, val := sc.options.Show(opt)
		return msg(val), nil
	}
	ret, err := sc.options.Set(opt, cmd.args[1])
	if err != nil {
		return nil, err
	}
	if sc.IsPlaying() && opt != "weighting" && opt != "max-turns" {
		sc.strat.SetThreads(sc.options.Threads)
		sc.strat.SetWeightedThreshold(sc.options.WeightedThreshold)
		sc.strat.SetVerbose(sc.options.Verbose)
	}
	return msg("set " + opt + " to " + ret), nil
}

func (sc *ShellController) help(cmd *shellcmd) (*Response, error) {
	if cmd.args == nil {
		return usage("standard")
	}
	return usageTopic(cmd.args[0])
}
