package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/Snoopiam/sales-offer-sub000/internal/config"
	"github.com/Snoopiam/sales-offer-sub000/internal/service/calc"
	"github.com/Snoopiam/sales-offer-sub000/internal/service/docfield"
	generate_excel "github.com/Snoopiam/sales-offer-sub000/internal/service/generate-excel"
	"github.com/Snoopiam/sales-offer-sub000/internal/service/notify"
	"github.com/Snoopiam/sales-offer-sub000/internal/service/store"
	"github.com/Snoopiam/sales-offer-sub000/internal/storage"
	"github.com/Snoopiam/sales-offer-sub000/internal/storage/memory"
	"github.com/Snoopiam/sales-offer-sub000/internal/storage/mysql"
	"github.com/Snoopiam/sales-offer-sub000/internal/storage/redis"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	cfg := config.MustConfig()

	log := setupLogger(cfg.Env)

	kv, err := openKV(*cfg)
	if err != nil {
		log.Error("failed to open storage backend", slog.String("error", err.Error()))
		os.Exit(1)
	}

	sink := notify.NewSink(log)
	stateStore := store.New(log, kv, cfg.Storage.DocumentKey, sink)

	form := docfield.New()
	form.Reset(stateStore.GetCurrentOffer(context.Background()))

	// The debounced persist step: derived values written during a recompute
	// burst land in the store once the burst settles.
	persist := func() {
		if err := stateStore.SaveCurrentOffer(context.Background(), form.DerivedValues()); err != nil {
			log.Error("failed to persist derived values", slog.String("error", err.Error()))
		}
	}

	engine := calc.NewEngine(log, form, lockRegistry{stateStore}, form, persist, cfg.DebounceWindow)

	genService := generate_excel.NewGenerateService(stateStore)

	log.Info("server started", slog.String("address", cfg.Address))

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      routes(*cfg, log, stateStore, engine, form, sink, genService),
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		engine.Flush()
		return srv.Shutdown(context.Background())
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("server stopped")
}

// lockRegistry adapts the store's persisted lock set to the engine's
// synchronous view.
type lockRegistry struct {
	store *store.Store
}

func (l lockRegistry) IsFieldLocked(fieldID string) bool {
	return l.store.IsFieldLocked(context.Background(), fieldID)
}

func openKV(cfg config.Config) (storage.KeyValueStore, error) {
	switch cfg.Storage.Backend {
	case "mysql":
		return mysql.New(cfg)
	case "redis":
		return redis.New(cfg)
	default:
		return memory.New(cfg.Storage.MaxDocumentBytes * 2), nil
	}
}

type dualHandler struct {
	coreHandler  slog.Handler
	errorHandler slog.Handler
}

func (h *dualHandler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return h.coreHandler.Enabled(ctx, lvl) || h.errorHandler.Enabled(ctx, lvl)
}

func (h *dualHandler) Handle(ctx context.Context, r slog.Record) error {
	var err error

	// Everything goes to stdout.
	if h.coreHandler.Enabled(ctx, r.Level) {
		err = h.coreHandler.Handle(ctx, r)
		if err != nil {
			return err
		}
	}

	// Errors additionally go to the file.
	if r.Level >= slog.LevelError && h.errorHandler.Enabled(ctx, r.Level) {
		cloned := r.Clone()
		_ = h.errorHandler.Handle(ctx, cloned)
	}

	return err
}

func (h *dualHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &dualHandler{
		coreHandler:  h.coreHandler.WithAttrs(attrs),
		errorHandler: h.errorHandler.WithAttrs(attrs),
	}
}

func (h *dualHandler) WithGroup(name string) slog.Handler {
	return &dualHandler{
		coreHandler:  h.coreHandler.WithGroup(name),
		errorHandler: h.errorHandler.WithGroup(name),
	}
}

func setupLogger(env string) *slog.Logger {
	var level slog.Level = slog.LevelDebug
	switch env {
	case envProd:
		level = slog.LevelInfo
	}

	var coreHandler slog.Handler
	switch env {
	case envDev:
		coreHandler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	default:
		coreHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}

	errorFile, err := os.OpenFile("errors.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		slog.Warn("cannot open error log file", "error", err)
		return slog.New(coreHandler)
	}

	errorHandler := slog.NewTextHandler(errorFile, &slog.HandlerOptions{
		Level: slog.LevelError,
	})

	handler := &dualHandler{
		coreHandler:  coreHandler,
		errorHandler: errorHandler,
	}

	return slog.New(handler)
}
