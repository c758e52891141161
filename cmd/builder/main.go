// Command builder runs the dictionary build pipeline: it reads the raw
// extraction dump, aggregates name variants into alias groups, resolves them
// through the inference service, assigns canonical IDs, and syncs the result
// to the local snapshot and the remote database. It is intended to be run
// offline, not as part of the search server.
//
// Flags:
//
//	--records  path to the raw records CSV (default: from config)
//	--dry-run  aggregate without calling the inference service or writing
//	--limit    process at most N alias groups (0 = all)
//	--local    skip the remote database entirely
//
// Exit codes: 0 = success, 1 = error or completed with errors.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/leobook/canondict/internal/adapter/localstore"
	"github.com/leobook/canondict/internal/adapter/postgres"
	"github.com/leobook/canondict/internal/adapter/postgres/entity"
	"github.com/leobook/canondict/internal/app"
	"github.com/leobook/canondict/internal/app/enricher"
	"github.com/leobook/canondict/internal/app/pipeline"
	"github.com/leobook/canondict/internal/config"
)

// Compile-time interface assertions.
var (
	_ pipeline.RemoteRepo = (*entity.Repo)(nil)
	_ pipeline.LocalStore = (*localstore.Store)(nil)
	_ pipeline.Enricher   = (*enricher.Client)(nil)
)

func main() {
	recordsFlag := flag.String("records", "", "path to raw records CSV (default: from config)")
	dryRunFlag := flag.Bool("dry-run", false, "aggregate without enriching or writing")
	limitFlag := flag.Int("limit", 0, "process at most N alias groups (0 = all)")
	localFlag := flag.Bool("local", false, "skip the remote database")
	flag.Parse()

	// Optional .env for local runs; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	runCfg := pipeline.Config{
		RecordsPath: cfg.Store.RecordsPath,
		DryRun:      *dryRunFlag,
		Limit:       *limitFlag,
	}
	if *recordsFlag != "" {
		runCfg.RecordsPath = *recordsFlag
	}

	if !runCfg.DryRun && cfg.Enrich.APIKey == "" {
		logger.Error("enrich api key is required (set ENRICH_API_KEY or use --dry-run)")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	// Remote store is optional: --local runs write only the snapshot.
	var remote pipeline.RemoteRepo
	var entityRepo *entity.Repo
	if !*localFlag && !runCfg.DryRun {
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Error("connect to database", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer pool.Close()

		if err := postgres.Migrate(ctx, pool); err != nil {
			logger.Error("apply migrations", slog.String("error", err.Error()))
			os.Exit(1)
		}
		entityRepo = entity.New(pool, logger)
		remote = entityRepo
	}

	local := localstore.NewStore(cfg.Store.SnapshotPath)
	syncer := pipeline.NewSyncer(local, remote, cfg.Store, logger)

	completer := enricher.NewAnthropicCompleter(cfg.Enrich.APIKey, cfg.Enrich.Model)
	enrClient := enricher.NewClient(completer, cfg.Enrich, logger)

	p := pipeline.NewPipeline(logger, localstore.ReadRawRecords, enrClient, syncer, local, runCfg)
	if err := p.Run(ctx); err != nil {
		logger.Error("pipeline failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// End-of-run report includes the remote dictionary size so operators can
	// spot a drifting snapshot at a glance.
	if entityRepo != nil {
		if n, err := entityRepo.Count(ctx); err != nil {
			logger.Warn("count remote entities", slog.String("error", err.Error()))
		} else {
			logger.Info("remote dictionary size", slog.Int("entities", n))
		}
	}

	if p.HasErrors() {
		logger.Warn("pipeline completed with errors")
		os.Exit(1)
	}

	logger.Info("pipeline completed successfully")
}
