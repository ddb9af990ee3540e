package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/terplab/coa-extractor/internal/coa"
	"github.com/terplab/coa-extractor/internal/config"
	"github.com/terplab/coa-extractor/internal/mcp"
	"github.com/terplab/coa-extractor/internal/store"
	"github.com/terplab/coa-extractor/internal/textsource"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// setupLogging builds the logger for the server mode. In stdio mode log
// output goes to stderr so it cannot interfere with the MCP protocol, and
// is discarded entirely unless debug is enabled.
func setupLogging(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var out io.Writer = os.Stderr
	if cfg.IsStdioMode() && !cfg.IsDebug() {
		out = io.Discard
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// buildExtractor assembles the extraction engine, extending the terpene
// dictionary from the configured synonyms file when set.
func buildExtractor(cfg *config.Config) (*coa.Extractor, error) {
	if cfg.SynonymsPath == "" {
		return coa.NewExtractor(), nil
	}

	synonyms, err := coa.LoadSynonyms(cfg.SynonymsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load synonyms: %w", err)
	}
	return coa.NewExtractor(coa.WithDictionary(coa.NewDictionaryWithSynonyms(synonyms))), nil
}

// runServerMode handles server mode execution with signal handling
func runServerMode(ctx context.Context, cancel context.CancelFunc, server *mcp.Server, logger zerolog.Logger) {
	// Set up signal handling for graceful shutdown
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	// Start server in a goroutine
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.Run(ctx)
	}()

	// Wait for shutdown signal or server error
	select {
	case sig := <-signalCh:
		logger.Info().Str("signal", sig.String()).Msg("initiating graceful shutdown")
		cancel()

		// Wait for server to shutdown
		if err := <-serverErrCh; err != nil {
			logger.Error().Err(err).Msg("server shutdown with error")
			os.Exit(1)
		}

	case err := <-serverErrCh:
		if err != nil {
			logger.Error().Err(err).Msg("server error")
			os.Exit(1)
		}
	}

	logger.Info().Msg("server stopped successfully")
}

// runStdioMode handles stdio mode execution
func runStdioMode(ctx context.Context, _ context.CancelFunc, server *mcp.Server, logger zerolog.Logger) {
	// In stdio mode, the parent process controls our lifecycle
	// We should exit cleanly when stdin is closed or we get an error
	if err := server.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("server error")
		os.Exit(1)
	}
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	// Load configuration from flags first
	cfg, err := config.LoadFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := setupLogging(cfg)

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}

	if cfg.IsDebug() && cfg.IsServerMode() {
		logger.Debug().Str("config", cfg.String()).Msg("starting")
	}

	engine, err := buildExtractor(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build extraction engine")
	}

	docs, err := textsource.NewService(cfg.ReportDirectory, cfg.MaxFileSize, cfg.FetchTimeout)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create document service")
	}

	var records *store.Store
	if cfg.PersistenceEnabled() {
		records, err = store.Open(context.Background(), cfg.StorePath)
		if err != nil {
			logger.Fatal().Err(err).Str("path", cfg.StorePath).Msg("failed to open record store")
		}
		defer records.Close()
	}

	server, err := mcp.NewServer(cfg, engine, docs, records, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create MCP server")
	}

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle different modes
	if cfg.IsServerMode() {
		runServerMode(ctx, cancel, server, logger)
	} else {
		runStdioMode(ctx, cancel, server, logger)
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("COA Extractor\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
