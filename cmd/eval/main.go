// eval plays the entropy strategy against the answer list and reports how
// many turns it needs.
//
//	eval [--top-percentile p] [--threads n] [--eval-log file.csv]
//	eval analyze file.csv
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/wordlebot/automatic"
	"github.com/domino14/wordlebot/config"
	"github.com/domino14/wordlebot/wordlist"
)

func main() {
	ex, err := os.Executable()
	if err != nil {
		panic(err)
	}
	exPath := filepath.Dir(ex)

	_ = godotenv.Load()
	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	cfg.AdjustRelativePaths(exPath)

	level := zerolog.InfoLevel
	if cfg.GetBool(config.ConfigDebug) {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).With().Timestamp().Logger()
	log.Logger = logger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx)

	if args := cfg.Args(); len(args) == 2 && args[0] == "analyze" {
		res, err := automatic.AnalyzeLogFile(args[1], cfg.GetInt(config.ConfigMaxTurns))
		if err != nil {
			log.Fatal().Err(err).Msg("could not analyze log")
		}
		res.Fprint(os.Stdout)
		return
	} else if len(args) > 0 {
		log.Fatal().Strs("args", args).Msg("unexpected arguments; the only subcommand is analyze <file>")
	}

	guesses, err := wordlist.Get(cfg, config.ConfigGuessList)
	if err != nil {
		log.Fatal().Err(err).Msg("could not load guess list")
	}
	answers, err := wordlist.Get(cfg, config.ConfigAnswerList)
	if err != nil {
		log.Fatal().Err(err).Msg("could not load answer list")
	}

	opts := automatic.OptionsFromConfig(cfg)
	opts.Guesses, opts.Answers = guesses, answers
	opts.Progress = true
	if logfile := cfg.GetString(config.ConfigEvalLog); logfile != "" {
		f, err := os.Create(logfile)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create evaluation log")
		}
		defer f.Close()
		opts.Log = f
	}

	res, err := automatic.EvaluateStrategy(ctx, cfg, opts)
	if err != nil {
		log.Error().Err(err).Msg("evaluation failed")
		return
	}
	res.Fprint(os.Stdout)
}
