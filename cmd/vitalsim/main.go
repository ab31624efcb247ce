package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"healthmon/internal/config"
	"healthmon/internal/simulator"
	"healthmon/pkg/logger"
	"healthmon/pkg/redisx"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	deviceID := flag.String("device", "sim-01", "device id to report")
	interval := flag.Duration("interval", time.Second, "time between readings")
	seed := flag.Int64("seed", 0, "random seed, 0 means time-based")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "vitalsim")
	if err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer log.Sync()

	redisClient := redisx.NewClient(&cfg.Redis)
	defer redisClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := redisx.Ping(ctx, redisClient); err != nil {
		log.Fatal("Failed to connect to redis", zap.Error(err))
	}

	publisher := simulator.NewPublisher(
		simulator.New(*deviceID, *seed),
		redisClient,
		cfg.Monitor.Stream,
		*interval,
		log,
	)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		log.Info("Received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	log.Info("Simulator started",
		zap.String("device_id", *deviceID),
		zap.String("stream", cfg.Monitor.Stream),
		zap.Duration("interval", *interval),
	)

	if err := publisher.Run(ctx); err != nil {
		log.Fatal("Simulator stopped with error", zap.Error(err))
	}

	log.Info("Simulator stopped")
}
