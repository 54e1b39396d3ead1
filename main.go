package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/wordlebot/config"
	"github.com/domino14/wordlebot/history"
	"github.com/domino14/wordlebot/server"
	"github.com/domino14/wordlebot/wordlist"
)

const (
	GracefulShutdownTimeout = 20 * time.Second
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

	if cfg.GetBool(config.ConfigDebug) {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &log.Logger
	log.Info().Interface("config", cfg.SanitizedSettings()).Msg("loaded-config")

	if cfg.GetString(config.ConfigCPUProfile) != "" {
		f, err := os.Create(cfg.GetString(config.ConfigCPUProfile))
		if err != nil {
			log.Fatal().Err(err).Msg("")
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	guesses, err := wordlist.Get(cfg, config.ConfigGuessList)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load guess list")
	}
	answers, err := wordlist.Get(cfg, config.ConfigAnswerList)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load answer list")
	}

	// Background evaluations run until shutdown.
	ctx, cancelEvals := context.WithCancel(log.Logger.WithContext(context.Background()))
	defer cancelEvals()

	store, err := history.Open(ctx, cfg.GetString(config.ConfigHistoryDB))
	if err != nil {
		log.Warn().Err(err).Msg("game history unavailable")
		store = nil
	} else {
		defer store.Close()
	}

	srv := &http.Server{
		Addr:    cfg.GetString(config.ConfigListenAddr),
		Handler: server.New(ctx, cfg, guesses, answers, store).Router(),
	}

	idleConnsClosed := make(chan struct{})
	sig := make(chan os.Signal, 1)
	go func() {
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		// We received an interrupt signal, shut down.
		log.Info().Msg("got quit signal...")
		cancelEvals()
		ctx, cancel := context.WithTimeout(context.Background(), GracefulShutdownTimeout)

		if err := srv.Shutdown(ctx); err != nil {
			// Error from closing listeners, or context timeout:
			log.Error().Msgf("HTTP server Shutdown: %v", err)
		}
		cancel()
		close(idleConnsClosed)
	}()

	log.Info().Str("addr", srv.Addr).Int("guesses", guesses.Len()).Int("answers", answers.Len()).
		Msg("starting-server")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("")
	}
	<-idleConnsClosed
	log.Info().Msg("server gracefully shutting down")
}
