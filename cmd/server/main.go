package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/keepalive"

	"github.com/gempswccg/swccg-server/internal/config"
	"github.com/gempswccg/swccg-server/internal/game"
	"github.com/gempswccg/swccg-server/internal/game/cards"
	"github.com/gempswccg/swccg-server/internal/game/catalog"
	"github.com/gempswccg/swccg-server/internal/history"
	"github.com/gempswccg/swccg-server/internal/server"
	"github.com/gempswccg/swccg-server/internal/storage/postgres"
)

var (
	configPath = flag.String("config", "configs/dev.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting SWCCG rules server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Load the card catalog
	cat := catalog.New()
	if err := cards.Register(cat); err != nil {
		logger.Fatal("failed to register card blueprints", zap.Error(err))
	}
	if err := cat.LoadDirectory(cfg.Rules.CatalogDir); err != nil {
		logger.Fatal("failed to load card catalog", zap.String("dir", cfg.Rules.CatalogDir), zap.Error(err))
	}
	if err := cat.Validate(); err != nil {
		logger.Fatal("card catalog is inconsistent", zap.Error(err))
	}
	logger.Info("card catalog loaded", zap.Int("definitions", cat.Len()))

	// Initialize match history
	var store history.Store = history.NewMemoryStore()
	if cfg.Database.Enabled {
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer pool.Close()

		stats := pool.DB().Stat()
		logger.Info("database connection pool initialized",
			zap.Int32("total_conns", stats.TotalConns()),
			zap.Int32("idle_conns", stats.IdleConns()),
		)
		store = history.NewPostgresStore(pool.DB())
	} else {
		logger.Warn("database disabled; match history kept in memory")
	}

	if cfg.Rules.RecordingsDir != "" {
		if err := os.MkdirAll(cfg.Rules.RecordingsDir, 0o755); err != nil {
			logger.Fatal("failed to create recordings directory", zap.String("dir", cfg.Rules.RecordingsDir), zap.Error(err))
		}
	}

	engine := game.NewEngine(game.Options{
		Logger:        logger,
		Catalog:       cat,
		Sink:          store,
		RecordingsDir: cfg.Rules.RecordingsDir,
		MaxDepth:      cfg.Rules.MaxResolutionDepth,
	})

	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(server.ChainUnaryInterceptors(
			server.RecoveryInterceptor(logger),
			server.LoggingInterceptor(logger),
		)),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time:    cfg.Server.GRPC.KeepaliveTime,
			Timeout: cfg.Server.GRPC.KeepaliveTimeout,
		}),
		grpc.MaxConcurrentStreams(uint32(cfg.Server.GRPC.MaxConcurrentStreams)),
	)
	server.RegisterRulesServer(grpcServer, server.NewRulesServer(engine, store, cfg.Rules, logger))

	lis, err := net.Listen("tcp", cfg.Server.GRPC.Address)
	if err != nil {
		logger.Fatal("failed to listen", zap.Error(err))
	}

	// Start gRPC server
	go func() {
		logger.Info("starting gRPC server", zap.String("address", cfg.Server.GRPC.Address))
		if serveErr := grpcServer.Serve(lis); serveErr != nil {
			logger.Error("gRPC server error", zap.Error(serveErr))
		}
	}()

	// Start WebSocket server
	if cfg.Server.WebSocket.Enabled {
		hub := server.NewHub(engine, cfg.Server.WebSocket.WriteTimeout, logger)
		engine.SetNotificationHandler(hub.Notify)
		go func() {
			if wsErr := server.StartWebSocketServer(ctx, cfg.Server.WebSocket, hub, logger); wsErr != nil {
				logger.Error("WebSocket server error", zap.Error(wsErr))
			}
		}()
	}

	logger.Info("SWCCG rules server initialized",
		zap.String("version", version),
		zap.String("grpc_address", cfg.Server.GRPC.Address),
		zap.Bool("websocket", cfg.Server.WebSocket.Enabled),
		zap.Bool("database", cfg.Database.Enabled),
	)

	// Wait for termination signal
	sig := <-sigChan
	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	logger.Info("shutting down gracefully...")
	cancel()

	// Cancel running matches so each one reaches the history store.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	for _, id := range engine.MatchIDs() {
		if _, err := engine.CancelMatch(shutdownCtx, id, "server shutdown"); err != nil {
			logger.Warn("failed to cancel match", zap.String("match_id", id), zap.Error(err))
		}
	}

	grpcServer.GracefulStop()

	logger.Info("SWCCG rules server stopped")
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
