package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kettleby/autoctx/internal/config"
	"github.com/kettleby/autoctx/internal/contextloader"
	"github.com/kettleby/autoctx/internal/embedder"
	"github.com/kettleby/autoctx/internal/index"
	"github.com/kettleby/autoctx/internal/indexer"
	"github.com/kettleby/autoctx/internal/mcp"
	"github.com/kettleby/autoctx/internal/searcher"
	"github.com/kettleby/autoctx/internal/watcher"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	root := flag.String("root", ".", "project root to index and serve")
	watch := flag.Bool("watch", false, "reindex automatically on file changes")
	debug := flag.Bool("debug", false, "enable debug logging")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("autoctx MCP server\n")
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Build Time: %s\n", buildTime)
		os.Exit(0)
	}

	// Environment files are optional; a missing .env is not an error.
	_ = godotenv.Load()

	logger := newLogger(*debug)
	defer func() { _ = logger.Sync() }()

	absRoot, err := filepath.Abs(*root)
	if err != nil {
		logger.Fatal("resolve project root", zap.String("root", *root), zap.Error(err))
	}
	if info, err := os.Stat(absRoot); err != nil || !info.IsDir() {
		logger.Fatal("project root is not a directory", zap.String("root", absRoot))
	}

	cfg, err := config.LoadProject(absRoot)
	if err != nil {
		logger.Fatal("load config", zap.String("root", absRoot), zap.Error(err))
	}

	emb, err := newEmbedder(cfg.Embedding.Provider)
	if err != nil {
		logger.Fatal("initialize embedding provider", zap.Error(err))
	}
	defer func() { _ = emb.Close() }()

	logger.Info("starting",
		zap.String("version", version),
		zap.String("root", absRoot),
		zap.String("provider", emb.Provider()),
		zap.String("model", emb.Model()))

	store := index.NewStore(absRoot, index.WithLogger(logger))
	idx := indexer.New(absRoot, cfg, store, emb, indexer.WithLogger(logger))
	srch := searcher.New(idx, emb, cfg.Search, searcher.WithLogger(logger))
	tracker := contextloader.NewTracker(store.Dir())
	loader := contextloader.New(absRoot, tracker, srch, cfg.Context, contextloader.WithLogger(logger))
	server := mcp.NewServer(idx, srch, loader, mcp.WithLogger(logger))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *watch || cfg.Watch.Enabled {
		w := watcher.New(absRoot, cfg.Extensions, func() {
			if _, err := idx.Reindex(context.Background()); err != nil {
				// A pass already in flight picks the changes up.
				logger.Warn("watch-triggered reindex skipped", zap.Error(err))
			}
		},
			watcher.WithLogger(logger),
			watcher.WithDebounce(time.Duration(cfg.Watch.DebounceMs)*time.Millisecond))
		if err := w.Start(ctx); err != nil {
			logger.Fatal("start watcher", zap.Error(err))
		}
		defer w.Stop()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Serve(ctx)
	}()

	select {
	case sig := <-sigChan:
		logger.Info("shutting down", zap.String("signal", sig.String()))
		cancel()
	case err := <-errChan:
		if err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	}

	logger.Info("stopped")
}

// newEmbedder honors a provider pinned in project config; otherwise the
// environment decides.
func newEmbedder(provider string) (embedder.Embedder, error) {
	if provider != "" {
		return embedder.New(embedder.Config{Provider: provider})
	}
	return embedder.NewFromEnv()
}

// newLogger builds a console logger on stderr. stdout is reserved for
// MCP protocol traffic.
func newLogger(debug bool) *zap.Logger {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		level,
	)
	return zap.New(core)
}
