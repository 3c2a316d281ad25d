package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/kanonhq/kanon/db"
	"github.com/kanonhq/kanon/internal/api"
	"github.com/kanonhq/kanon/internal/config"
	"github.com/kanonhq/kanon/internal/database"
	"github.com/kanonhq/kanon/internal/gemini"
	"github.com/kanonhq/kanon/internal/log"
	"github.com/kanonhq/kanon/internal/observability"
	"github.com/kanonhq/kanon/internal/report"
	"github.com/kanonhq/kanon/internal/research"
	"github.com/kanonhq/kanon/internal/simulation"
	"github.com/kanonhq/kanon/internal/strategy"
	"github.com/kanonhq/kanon/internal/wizard"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(parent context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := newLogger(cfg)
	logger.Info("starting kanon", "version", AppVersion)

	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := observability.Setup(ctx, cfg.Tracing, logger)
	if err != nil {
		return fmt.Errorf("setting up tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("flushing traces failed", "error", err)
		}
	}()

	// Database is optional: without one kanon serves the demo corpus and
	// keeps wizard state on disk.
	var pool *pgxpool.Pool
	if cfg.DatabaseConfigured() {
		if err := db.Migrate(cfg.PostgresURL(), logger); err != nil {
			return fmt.Errorf("migrating database: %w", err)
		}
		pool, err = database.Open(ctx, cfg)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer pool.Close()
	}

	var store wizard.Store
	if pool != nil {
		store = wizard.NewPostgresStore(pool, logger)
	} else {
		fs, err := wizard.NewFileStore(cfg.DataDir)
		if err != nil {
			return fmt.Errorf("opening wizard file store: %w", err)
		}
		store = fs
	}

	// AI collaborators degrade gracefully: without a Gemini key the server
	// runs in demo mode and the AI-backed endpoints report unavailable.
	var (
		searcher    api.Searcher = research.NewSeedSearcher()
		synthesizer api.Synthesizer
		memo        api.MemoGenerator
	)
	gem, err := gemini.New(ctx, gemini.Config{
		APIKey:        cfg.GeminiAPIKey(),
		Model:         cfg.GeminiModel,
		EmbedderModel: cfg.EmbedderModel,
	}, logger)
	switch {
	case err == nil:
		synthesizer = strategy.NewSynthesizer(gem, logger)
		memo = report.NewGenerator(gem, logger)
		if pool != nil {
			searcher = research.NewPostgresSearcher(pool, gem, logger)
		}
	default:
		logger.Warn("AI backend unavailable, running in demo mode", "error", err)
	}

	var runner api.SimulationRunner
	if cfg.UpstreamAPIKey != "" {
		llm := simulation.NewOpenAIClient(simulation.OpenAIConfig{
			BaseURL:     cfg.UpstreamBaseURL,
			APIKey:      cfg.UpstreamAPIKey,
			Model:       cfg.UpstreamModel,
			Temperature: cfg.UpstreamTemp,
			MaxTokens:   cfg.UpstreamMaxTokens,
		}, logger)
		runner = simulation.NewRunner(llm, logger)
	} else {
		logger.Warn("no upstream API key, simulations disabled")
	}

	server, err := api.NewServer(api.ServerConfig{
		Logger:      logger,
		WizardStore: store,
		Searcher:    searcher,
		Synthesizer: synthesizer,
		Runner:      runner,
		Memo:        memo,
		Pool:        pool,
		CORSOrigins: cfg.CORSOrigins,
		IsDev:       cfg.PostgresSSLMode == "disable" || pool == nil,
		TrustProxy:  cfg.TrustProxy,
		RateRPS:     cfg.RateLimitRPS,
		RateBurst:   cfg.RateLimitBurst,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	addr := net.JoinHostPort(cfg.ServerHost, strconv.Itoa(cfg.ServerPort))
	return server.Run(ctx, addr)
}

func newLogger(cfg *config.Config) log.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	return log.New(log.Config{Level: level, JSON: cfg.LogJSON})
}
