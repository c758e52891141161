// Command searchd serves fuzzy dictionary lookups over HTTP. The dictionary
// is loaded lazily on the first request: from the remote database when
// reachable, from the local CSV snapshot otherwise.
//
// Exit codes: 0 = clean shutdown, 1 = startup or shutdown error.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/leobook/canondict/internal/adapter/localstore"
	"github.com/leobook/canondict/internal/adapter/postgres"
	"github.com/leobook/canondict/internal/adapter/postgres/entity"
	"github.com/leobook/canondict/internal/app"
	"github.com/leobook/canondict/internal/config"
	"github.com/leobook/canondict/internal/search"
	"github.com/leobook/canondict/internal/transport/httpapi"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)
	logger.Info("starting searchd", slog.String("version", app.Version))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The remote store is optional: without a DSN the runtime serves the
	// local snapshot only.
	var remote search.RemotePager
	if cfg.Database.DSN != "" {
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Warn("database unreachable at startup, will rely on local snapshot",
				slog.String("error", err.Error()),
			)
		} else {
			defer pool.Close()
			remote = entity.New(pool, logger)
		}
	}

	local := localstore.NewStore(cfg.Store.SnapshotPath)
	rt := search.NewRuntime(remote, local, cfg.Search, logger)

	srv := httpapi.NewServer(rt, logger).HTTPServer(cfg.Server)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		logger.Error("http server failed", slog.String("error", err.Error()))
		os.Exit(1)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("stopped")
}
