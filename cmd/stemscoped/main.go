package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/stemscope/stemscope/api"
	"github.com/stemscope/stemscope/logging"
	"github.com/stemscope/stemscope/store"
	"github.com/stemscope/stemscope/structure"
)

var Version = "0.1.0"

// Config comes from STEMSCOPE_* environment variables.
type Config struct {
	Port     int    `default:"8080"`
	LogLevel string `split_words:"true" default:"info"`

	SensitivityDrums       float64 `split_words:"true" default:"0.5"`
	SensitivityBass        float64 `split_words:"true" default:"0.5"`
	SensitivityVocals      float64 `split_words:"true" default:"0.5"`
	SensitivityInstruments float64 `split_words:"true" default:"0.5"`
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func run() error {
	startTime := time.Now()

	var cfg Config
	if err := envconfig.Process("stemscope", &cfg); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()

	// Library packages log through the logging interface; route them
	// to zap.
	logging.SetGlobalLogger(logging.NewZapLogger(logger))

	logger.Info("starting stemscoped",
		zap.String("version", Version),
		zap.Int("port", cfg.Port),
	)

	apiServer := api.NewServer(api.ServerConfig{
		Port:      cfg.Port,
		Store:     store.NewMemoryStore(),
		Logger:    logger,
		StartTime: startTime,
		DefaultSensitivity: structure.SensitivityConfig{
			Drums:       cfg.SensitivityDrums,
			Bass:        cfg.SensitivityBass,
			Vocals:      cfg.SensitivityVocals,
			Instruments: cfg.SensitivityInstruments,
		},
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- apiServer.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return apiServer.Shutdown(shutdownCtx)
}

func newLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(zapLevel)
	return zapCfg.Build()
}
