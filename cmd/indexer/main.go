package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"

	appcfg "github.com/Skotchmaster/game_store/internal/config"
	"github.com/Skotchmaster/game_store/internal/events"
	"github.com/Skotchmaster/game_store/internal/repo"
	"github.com/Skotchmaster/game_store/internal/search"
	"github.com/Skotchmaster/game_store/pkg/config"
	pkgdb "github.com/Skotchmaster/game_store/pkg/db"
	"github.com/Skotchmaster/game_store/pkg/logging"
)

const (
	groupID   = "game_store-indexer"
	batchSize = 200
)

func main() {
	if err := appcfg.LoadDotEnv(".env"); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}
	cfg := appcfg.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmpty(cfg.ESURL, "ES_URL")

	logger := logging.New(cfg.LogLevel).With("service", "indexer")
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.IntoContext(ctx, logger)

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	db, err := pkgdb.Open(openCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer func() { _ = pkgdb.Close(db) }()

	client, err := search.NewClient(ctx, search.Config{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword})
	if err != nil {
		log.Fatalf("elasticsearch: %v", err)
	}
	engine := search.New(client, cfg.ESIndex)
	if err := engine.EnsureIndex(ctx); err != nil {
		log.Fatalf("ensure index: %v", err)
	}

	n, err := search.Reindex(ctx, &repo.GormRepo{DB: db}, engine, batchSize)
	if err != nil {
		log.Fatalf("reindex: %v", err)
	}
	logger.Info("reindex_complete", "index", engine.Index(), "games", n)

	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("indexer_done", "reason", "no kafka brokers configured")
		return
	}

	reader := events.NewReader(cfg.KafkaBrokers, groupID, events.TopicGames)
	defer reader.Close()

	logger.Info("indexer_consuming", "topic", events.TopicGames, "group", groupID)
	err = events.Consume(ctx, reader, logger, func(ctx context.Context, m kafka.Message) error {
		ev, err := events.DecodeGameEvent(m.Value)
		if err != nil {
			return err
		}
		if err := search.ApplyGameEvent(ctx, engine, ev); err != nil {
			return err
		}
		logger.Debug("game_indexed", "type", ev.Type, "game_id", ev.GameID.String())
		return nil
	})
	if err != nil {
		logger.Error("indexer_stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("indexer_stopped")
}
