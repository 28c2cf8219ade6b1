package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	appcfg "github.com/Skotchmaster/game_store/internal/config"
	"github.com/Skotchmaster/game_store/internal/queue"
	"github.com/Skotchmaster/game_store/pkg/config"
	"github.com/Skotchmaster/game_store/pkg/logging"
)

func main() {
	if err := appcfg.LoadDotEnv(".env"); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}
	cfg := appcfg.Load()
	config.MustNonEmpty(cfg.RabbitMQURL, "RABBITMQ_URL")

	logger := logging.New(cfg.LogLevel).With("service", "receipts")
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.IntoContext(ctx, logger)

	sink := &queue.FileSink{Path: cfg.ReceiptsLog}
	logger.Info("receipts_consuming", "queue", queue.PurchaseQueue, "log", cfg.ReceiptsLog)

	err := queue.Run(ctx, cfg.RabbitMQURL, logger, func(ctx context.Context, r queue.Receipt) error {
		if err := sink.Write(ctx, r); err != nil {
			return err
		}
		logger.Info("receipt_written", "purchase_id", r.PurchaseID.String(), "total", r.TotalAmount)
		return nil
	})
	if err != nil {
		logger.Error("receipts_stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("receipts_stopped")
}
