package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/contexto/assets"
	"github.com/robalobadob/contexto/internal/config"
	"github.com/robalobadob/contexto/internal/events"
	"github.com/robalobadob/contexto/internal/game"
	"github.com/robalobadob/contexto/internal/httpserver"
	"github.com/robalobadob/contexto/internal/ranking"
	"github.com/robalobadob/contexto/internal/store"
	"github.com/robalobadob/contexto/internal/words"
)

const defaultSecret = "dev_change_me"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	setupLogging(cfg.Log)

	dataset, err := words.Load(cfg.Words.File)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load word lists")
	}
	cats, total := dataset.Stats()
	log.Info().Int("categories", cats).Int("words", total).Msg("dataset loaded")

	backend, board, db, err := openStorage(cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("open storage")
	}

	mirror := ranking.NewMirror(board, cfg.Ranking.TopN)
	sink := events.NewSink(events.Config{
		Endpoint:  cfg.Events.Endpoint,
		Timeout:   cfg.Events.Timeout,
		QueueSize: cfg.Events.QueueSize,
	})
	sessions := game.NewSessions(game.Options{
		Dataset: dataset,
		Backend: backend,
		Mirror:  mirror,
		Events:  sink,
		Rules:   cfg.Game.Rules(),
	})

	srv := httpserver.New(httpserver.Deps{
		Config:   cfg,
		Dataset:  dataset,
		Sessions: sessions,
		Board:    mirror,
	})

	if cfg.Auth.JWTSecret == defaultSecret {
		log.Warn().Msg("JWT_SECRET is the development default; set it in production")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		log.Info().Str("addr", addr).Str("storage", cfg.Storage.Driver).Bool("events", sink.Enabled()).Msg("starting contexto server")
		errc <- srv.Start(addr)
	}()

	select {
	case err := <-errc:
		if err != nil {
			log.Error().Err(err).Msg("server exited")
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown")
	}
	sessions.Close()
	if err := mirror.Close(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("ranking mirror shutdown")
	}
	if err := sink.Close(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("event sink shutdown")
	}
	if db != nil {
		if err := db.Close(); err != nil {
			log.Warn().Err(err).Msg("close database")
		}
	}
}

func setupLogging(cfg config.LogConfig) {
	if lvl, err := zerolog.ParseLevel(cfg.Level); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

// openStorage builds the player-state backend and the ranking store for the
// configured driver. db is nil for the memory driver.
func openStorage(cfg config.StorageConfig) (store.Backend, ranking.Store, *sql.DB, error) {
	if cfg.Driver == "memory" {
		return store.NewMemoryBackend(), ranking.NewMemoryStore(), nil, nil
	}

	db, err := store.OpenSQLite(cfg.DSN)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := store.Migrate(db, assets.Migrations()); err != nil {
		_ = db.Close()
		return nil, nil, nil, err
	}
	return store.NewSQLiteBackend(db), ranking.NewSQLStore(db), db, nil
}
