package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/yengalvez/tour360/internal/config"
	apphttp "github.com/yengalvez/tour360/internal/http"
	"github.com/yengalvez/tour360/internal/modules/tours"
	"github.com/yengalvez/tour360/internal/storage"
)

func main() {
	// Load .env file (ignore error if not found - prod uses real env vars)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	blobs, err := storage.FromConfig(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	logger.Info("storage_ready", slog.String("driver", blobs.Driver))

	svc := tours.NewService(tours.NewStore(blobs.Storage), logger)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           apphttp.NewRouter(logger, cfg, svc),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := apphttp.Serve(ctx, logger, srv, cfg.ShutdownTimeout); err != nil {
		logger.Error("server_failed", slog.Any("err", err))
		os.Exit(1)
	}
}
