// =============================================================================
// imagemcp entry point
// =============================================================================
// MCP server exposing DALL-E 3 image generation tools over stdio, with an
// optional HTTP listener for WebSocket/SSE clients, health checks, and
// Prometheus metrics.
//
// Usage:
//
//	imagemcp serve                       # serve MCP over stdio
//	imagemcp serve --config config.yaml  # with a config file
//	imagemcp serve --http                # also start the HTTP listener
//	imagemcp version                     # show version info
//	imagemcp health                      # check a running HTTP listener
// =============================================================================
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/openai-image-mcp/config"
	"github.com/BaSui01/openai-image-mcp/image"
	"github.com/BaSui01/openai-image-mcp/internal/metrics"
	"github.com/BaSui01/openai-image-mcp/mcp"
	"github.com/BaSui01/openai-image-mcp/tools"
)

// Version info injected at build time.
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		runServe(os.Args[2:])
	case "version":
		printVersion()
	case "health":
		runHealthCheck(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// =============================================================================
// serve command
// =============================================================================

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	httpEnabled := fs.Bool("http", false, "Start the HTTP listener alongside stdio")
	fs.Parse(args)

	loader := config.NewLoader()
	if *configPath != "" {
		loader = loader.WithConfigPath(*configPath)
	}

	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *httpEnabled {
		cfg.Server.Enabled = true
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Log)
	defer logger.Sync()

	logger.Info("Starting imagemcp",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
	)

	// Pick up OPENAI_API_KEY from a .env file before resolving credentials.
	if path, err := config.LoadEnvFile(cfg.Storage.Root); err != nil {
		logger.Warn("failed to load env file", zap.Error(err))
	} else if path != "" {
		logger.Info("loaded env file", zap.String("path", path))
	}

	creds, err := config.ResolveCredentials(cfg.Storage.Root)
	if err != nil {
		logger.Warn("failed to resolve credentials", zap.Error(err))
	}
	if !creds.Present() {
		// Tools report the missing key per call; the server still starts so
		// clients can list tools and read the error.
		logger.Warn("no OpenAI API key found, generation calls will fail",
			zap.String("env", config.EnvAPIKey))
	}

	collector := metrics.NewCollector("imagemcp", nil, logger)

	generator := image.NewClient(image.Config{
		APIKey:  creds.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.Model,
		Timeout: cfg.OpenAI.Timeout,
	})

	server := mcp.NewServer("openai-image-mcp", Version, logger).WithObserver(collector)

	toolset := tools.New(creds, generator, cfg.Storage, logger,
		tools.WithSaveObserver(collector),
	)
	if err := toolset.Register(server); err != nil {
		logger.Fatal("failed to register tools", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// stdio is the primary transport; stdout carries protocol frames, so the
	// logger is configured to write to stderr.
	stdio := mcp.NewStdioTransport(os.Stdin, os.Stdout, logger)
	g.Go(func() error {
		defer stop()
		return server.Serve(ctx, stdio)
	})

	if cfg.Server.Enabled {
		httpSrv := &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
			Handler:      mcp.NewHandler(server, logger),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		}

		g.Go(func() error {
			logger.Info("HTTP listener started", zap.String("addr", httpSrv.Addr))
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})

		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			return httpSrv.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		logger.Fatal("server error", zap.Error(err))
	}

	logger.Info("imagemcp stopped")
}

// =============================================================================
// health command
// =============================================================================

func runHealthCheck(args []string) {
	fs := flag.NewFlagSet("health", flag.ExitOnError)
	addr := fs.String("addr", "http://localhost:8080", "Server address")
	fs.Parse(args)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(*addr + "/healthz")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "Health check failed: status %d\n", resp.StatusCode)
		os.Exit(1)
	}

	fmt.Println("OK")
}

// =============================================================================
// version and help
// =============================================================================

func printVersion() {
	fmt.Printf("imagemcp %s\n", Version)
	fmt.Printf("  Build Time: %s\n", BuildTime)
	fmt.Printf("  Git Commit: %s\n", GitCommit)
}

func printUsage() {
	fmt.Println(`imagemcp - DALL-E 3 image generation MCP server

Usage:
  imagemcp <command> [options]

Commands:
  serve     Start the MCP server (stdio, optionally HTTP)
  version   Show version information
  health    Check server health
  help      Show this help message

Options for 'serve':
  --config <path>   Path to configuration file (YAML)
  --http            Start the HTTP listener (WebSocket, SSE, metrics)

Examples:
  imagemcp serve
  imagemcp serve --config /etc/imagemcp/config.yaml
  imagemcp serve --http
  imagemcp health --addr http://localhost:8080
  imagemcp version`)
}

// =============================================================================
// logger setup
// =============================================================================

func initLogger(cfg config.LogConfig) *zap.Logger {
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

	var encoderConfig zapcore.EncoderConfig
	encoding := "json"
	if cfg.Format == "console" {
		encoding = "console"
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	// stdout belongs to the stdio transport; all logs go to stderr.
	zapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      cfg.Format == "console",
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	opts := []zap.Option{zap.AddStacktrace(zapcore.ErrorLevel)}
	if cfg.EnableCaller {
		opts = append(opts, zap.AddCaller())
	}

	logger, err := zapConfig.Build(opts...)
	if err != nil {
		logger, _ = zap.NewProduction()
	}

	return logger
}
