package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/jeopardy/apps/go-server/internal/config"
	"github.com/robalobadob/jeopardy/apps/go-server/internal/game"
	"github.com/robalobadob/jeopardy/apps/go-server/internal/history"
	"github.com/robalobadob/jeopardy/apps/go-server/internal/httpserver"
	"github.com/robalobadob/jeopardy/apps/go-server/internal/store"
	"github.com/robalobadob/jeopardy/apps/go-server/internal/trivia"
	"github.com/robalobadob/jeopardy/apps/go-server/internal/words"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.Env == "local" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	hc := &http.Client{Timeout: cfg.FetchTimeout}
	dealer := game.NewDealer(
		trivia.New(cfg.QuestionURL, hc),
		words.New(cfg.WordURL, hc),
	)

	var journal *history.Store
	if cfg.DBPath != "" {
		db, err := history.Open(cfg.DBPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open round journal")
		}
		defer db.Close()
		journal = history.NewStore(db)
	} else {
		log.Warn().Msg("DB_PATH empty, round journal disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mem := store.NewMemoryStore()
	go store.Sweep(ctx, mem, cfg.Session.TTL, time.Minute)

	srv := httpserver.New(httpserver.Options{
		Store:        mem,
		Dealer:       dealer,
		History:      journal,
		HistoryLimit: cfg.HistoryLimit,
		ClientOrigin: cfg.ClientOrigin,
		Secret:       cfg.Session.Secret,
		CookieName:   cfg.Session.CookieName,
		SessionTTL:   cfg.Session.TTL,
		Secure:       cfg.Production(),
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting go-server")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}
