package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openbornes/bornes-server-go/internal/config"
	"github.com/openbornes/bornes-server-go/internal/game"
	"github.com/openbornes/bornes-server-go/internal/repository"
	"github.com/openbornes/bornes-server-go/internal/server"
	"github.com/openbornes/bornes-server-go/internal/session"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	seed       = flag.Int64("seed", 0, "deterministic shuffle seed (0 = time-based)")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting bornes server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Optional results store.
	var store session.ResultStore
	if cfg.Database.Enabled {
		db, dbErr := repository.NewDB(ctx, cfg.Database, logger)
		if dbErr != nil {
			logger.Fatal("failed to connect to database", zap.Error(dbErr))
		}
		defer db.Close()

		stats := db.Stats()
		logger.Info("database connection pool initialized",
			zap.Int32("total_conns", stats.TotalConns()),
			zap.Int32("idle_conns", stats.IdleConns()),
		)
		store = repository.NewResultRepository(db)
	} else {
		logger.Info("result persistence disabled")
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(rngSeed))
	logger.Info("random source initialized", zap.Int64("seed", rngSeed))

	engine := game.NewEngine(logger, rng)

	var recorder *game.ReplayRecorder
	if cfg.Game.RecordReplays {
		recorder = game.NewReplayRecorder(logger, cfg.Game.ReplayDir)
		logger.Info("replay recording enabled", zap.String("dir", cfg.Game.ReplayDir))
	}

	sessionMgr := session.NewManager(engine, recorder, store, session.Options{
		TurnTimeLimit:   cfg.Game.TurnTimeLimit,
		TurnActionLimit: cfg.Game.TurnActionLimit,
	}, logger)
	logger.Info("session manager initialized",
		zap.Duration("turn_time_limit", cfg.Game.TurnTimeLimit),
		zap.Int("turn_action_limit", cfg.Game.TurnActionLimit),
	)

	wsServer := server.New(cfg.Server, sessionMgr, logger)

	stop := make(chan struct{})
	go func() {
		if serveErr := wsServer.Start(stop); serveErr != nil {
			logger.Error("websocket server error", zap.Error(serveErr))
		}
	}()

	logger.Info("bornes server initialized",
		zap.String("version", version),
		zap.String("address", cfg.Server.Address),
	)

	sig := <-sigChan
	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	logger.Info("shutting down gracefully...")
	close(stop)
	cancel()

	logger.Info("bornes server stopped")
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
