package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/mersey-rowing/condition-checker/internal/adapter/http"
	kafkaadapter "github.com/mersey-rowing/condition-checker/internal/adapter/kafka"
	"github.com/mersey-rowing/condition-checker/internal/adapter/openweather"
	"github.com/mersey-rowing/condition-checker/internal/checker"
	"github.com/mersey-rowing/condition-checker/internal/config"
	"github.com/mersey-rowing/condition-checker/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	client := openweather.NewClient(cfg, metrics, logger)
	provider := openweather.NewCachedProvider(client, cfg.OpenWeatherCacheSize, metrics)

	// Decision publishing is feature-flagged via KAFKA_ENABLED.
	var (
		publisher checker.Publisher
		writer    *kafkaadapter.Writer
	)
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		metrics.PublishEnabled.Set(1)
		logger.Info("boat check publishing enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("boat check publishing disabled")
	}

	c := checker.New(provider, cfg.Limits, publisher, logger, metrics)
	logger.Info("boat limits loaded",
		"feels_like_min_kelvin", cfg.Limits.FeelsLikeTempMinKelvin,
		"feels_like_max_kelvin", cfg.Limits.FeelsLikeTempMaxKelvin,
		"wind_limits", cfg.Limits.WindLimits,
		"unacceptable_codes", cfg.Limits.UnacceptableConditionCodes,
		"exceptions", cfg.Limits.ConditionCodeExceptions,
	)

	srv := httpadapter.NewServer(cfg.HTTPAddr, c, cfg.ClubTimezone, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
