// Package app builds the analysis pipeline and its optional backends from config.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"resume-analyzer/internal/analyzer"
	"resume-analyzer/internal/api"
	"resume-analyzer/internal/config"
	"resume-analyzer/internal/extractor"
	"resume-analyzer/internal/geministore"
	"resume-analyzer/internal/logger"
	"resume-analyzer/internal/postgresdb"
	"resume-analyzer/internal/processor"
	"resume-analyzer/internal/rasterizer"
	"resume-analyzer/internal/secrets"
	"resume-analyzer/internal/storage"
	"resume-analyzer/internal/valkeydb"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type App struct {
	Config    *config.Config
	Processor *processor.Processor
	// Runs is nil unless a run ledger is configured.
	Runs storage.RunReader

	logger  *zap.Logger
	closers []func()
}

func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {

	log = logger.OrNop(log)
	a := &App{Config: cfg, logger: log}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.Gemini.APIKey,
		File:  cfg.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, err
	}

	gemini, err := geministore.New(ctx, geministore.Config{
		APIKey:       apiKey,
		Model:        cfg.Gemini.Model,
		Temperature:  cfg.Gemini.Temperature,
		BaseURL:      cfg.Gemini.BaseURL,
		MaxLogLength: cfg.Gemini.MaxLogLength,
	}, log)
	if err != nil {
		return nil, err
	}

	var cache extractor.PageCache
	if cfg.Cache.URL != "" {
		valkeyCache, err := valkeydb.New(ctx, cfg.Cache.URL, cfg.Cache.Password, cfg.Cache.TTL)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, valkeyCache.Close)
		cache = valkeyCache
		log.Info("page cache enabled", zap.String("addr", cfg.Cache.URL), zap.Duration("ttl", cfg.Cache.TTL))
	}

	var ledger storage.RunStore
	if cfg.Ledger.DatabaseURL != "" {
		store, err := postgresdb.New(ctx, cfg.Ledger.DatabaseURL)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, store.Close)

		if err := store.EnsureSchema(ctx); err != nil {
			a.Close()
			return nil, err
		}
		ledger = store
		a.Runs = store
		log.Info("run ledger enabled")
	}

	a.Processor = processor.NewProcessor(
		rasterizer.New(rasterizer.Config{
			Scale:      cfg.Render.Scale,
			ScratchDir: cfg.Render.ScratchDir,
		}, rasterizer.OpenPDF, log),
		extractor.New(gemini, cache, log),
		analyzer.New(gemini, log, cfg.Gemini.MaxLogLength),
		ledger,
		log,
	)

	return a, nil
}

// Close releases the optional backends in reverse order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// Serve runs the HTTP server until ctx is done or SIGINT/SIGTERM arrives, then
// drains in-flight requests within the shutdown timeout.
func (a *App) Serve(ctx context.Context, version string) error {

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srvCfg := a.Config.Server

	handler := api.NewAPIHandler(a.Processor, a.Runs, srvCfg.MaxUploadBytes, version, a.logger)
	router := api.NewRouter(handler, api.RouterConfig{
		AllowOrigins: srvCfg.AllowOrigins,
		BodyLimit:    srvCfg.BodyLimit,
	}, a.logger)

	server := &http.Server{
		Addr:         srvCfg.Addr,
		Handler:      router,
		ReadTimeout:  srvCfg.ReadTimeout,
		WriteTimeout: srvCfg.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("listening", zap.String("addr", srvCfg.Addr), zap.String("version", version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down", zap.Duration("timeout", srvCfg.ShutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), srvCfg.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
