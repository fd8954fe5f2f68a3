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

	"github.com/joho/godotenv"
	"github.com/nidhogg/concerto-copilot/internal/api"
	"github.com/nidhogg/concerto-copilot/internal/config"
	"github.com/nidhogg/concerto-copilot/internal/corpus"
	"github.com/nidhogg/concerto-copilot/internal/embedcache"
	"github.com/nidhogg/concerto-copilot/internal/llm"
	"github.com/nidhogg/concerto-copilot/internal/prompt"
	"go.uber.org/zap"
)

func main() {
	importCorpus := flag.Bool("import", false, "import the corpus directory into PostgreSQL and exit")
	flag.Parse()

	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "configs/copilot.json"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config %s: %v\n", cfgPath, err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Server.LogLevel)
	defer logger.Sync()
	logger.Info("Config loaded", zap.String("path", cfgPath))

	ctx := context.Background()

	var pgStore *corpus.PGStore
	if cfg.Corpus.PostgresDSN != "" {
		pgStore, err = corpus.NewPGStore(ctx, cfg.Corpus.PostgresDSN, logger)
		if err != nil {
			logger.Fatal("PostgreSQL unavailable", zap.Error(err))
		}
		defer pgStore.Close()
		if err := pgStore.Migrate(ctx, cfg.Corpus.MigrationsDir); err != nil {
			logger.Fatal("migration failed", zap.Error(err))
		}
	}

	if *importCorpus {
		if pgStore == nil {
			logger.Fatal("-import requires corpus.postgres_dsn")
		}
		c, err := corpus.LoadDir(cfg.Corpus.Dir)
		if err != nil {
			logger.Fatal("failed to read corpus directory", zap.String("dir", cfg.Corpus.Dir), zap.Error(err))
		}
		if err := pgStore.Import(ctx, c); err != nil {
			logger.Fatal("corpus import failed", zap.Error(err))
		}
		logger.Info("Corpus imported",
			zap.Int("models", len(c.Models)),
			zap.Int("templates", len(c.Templates)))
		return
	}

	var c *corpus.Corpus
	if pgStore != nil {
		c, err = pgStore.Load(ctx)
	} else {
		c, err = corpus.LoadDir(cfg.Corpus.Dir)
	}
	if err != nil {
		logger.Fatal("failed to load corpus", zap.Error(err))
	}
	logger.Info("Corpus loaded",
		zap.Int("models", len(c.Models)),
		zap.Int("templates", len(c.Templates)))

	var cache embedcache.Cache
	if cfg.Cache.RedisURL != "" {
		rc, err := embedcache.NewRedis(ctx, cfg.Cache.RedisURL, cfg.Cache.TTL(), logger)
		if err != nil {
			logger.Warn("Redis unavailable, caching embeddings in memory", zap.Error(err))
		} else {
			defer rc.Close()
			cache = rc
		}
	}
	if cache == nil {
		mc := embedcache.NewMemory(cfg.Cache.TTL())
		defer mc.Close()
		cache = mc
	}

	gateway := llm.NewGateway(cache, logger)
	assembler := prompt.NewAssembler(gateway, c, prompt.Options{
		RegistryURL:  cfg.Registry.BaseURL,
		ModelTopN:    cfg.Retrieval.ModelTopN,
		TemplateTopN: cfg.Retrieval.TemplateTopN,
		GrammarTopN:  cfg.Retrieval.GrammarTopN,
	}, logger)

	handler := api.NewHandler(assembler, gateway, cfg.Resolve, api.CorpusStats{
		Models:    len(c.Models),
		Templates: len(c.Templates),
	}, logger)

	port := fmt.Sprintf("%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Copilot listening", zap.String("port", port))
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func newLogger(level string) *zap.Logger {
	var logger *zap.Logger
	var err error
	if level == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		cfg := zap.NewProductionConfig()
		if lvl, perr := zap.ParseAtomicLevel(level); perr == nil {
			cfg.Level = lvl
		}
		logger, err = cfg.Build()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
