package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/leobook/canondict/internal/config"
	"github.com/leobook/canondict/internal/domain"
)

// LocalStore is the flat-file side of the dual store.
type LocalStore interface {
	Load() ([]domain.CanonicalEntity, error)
	Upsert(entities []domain.CanonicalEntity) error
}

// RemoteRepo is the PostgreSQL side of the dual store.
type RemoteRepo interface {
	UpsertChunk(ctx context.Context, entities []domain.CanonicalEntity) error
}

// ChunkFailure records one remote chunk that could not be written. The rows
// are already safe in the local snapshot; the next run retries them.
type ChunkFailure struct {
	Chunk  int
	Size   int
	Reason string
}

// SyncReport summarizes one dual-store sync.
type SyncReport struct {
	Inserted       int
	Updated        int
	Skipped        int
	Checkpoints    int
	RemoteChunks   int
	RemoteFailures []ChunkFailure
}

// Syncer writes resolved entities to the local snapshot first (in checkpoint
// batches, so progress survives a kill) and then to the remote database in
// sequential chunks. Local failures abort the sync; remote chunk failures
// are contained and reported.
type Syncer struct {
	local  LocalStore
	remote RemoteRepo
	cfg    config.StoreConfig
	log    *slog.Logger
}

// NewSyncer creates a Syncer. remote may be nil for local-only runs.
func NewSyncer(local LocalStore, remote RemoteRepo, cfg config.StoreConfig, log *slog.Logger) *Syncer {
	return &Syncer{local: local, remote: remote, cfg: cfg, log: log}
}

// Sync persists entities to both stores. Entities whose content matches the
// previous snapshot are skipped entirely, which makes repeated runs over
// unchanged input idempotent. The returned error is non-nil only for local
// store failures (wrapping domain.ErrLocalStore); those are fatal because
// the snapshot is the fallback source of truth.
func (s *Syncer) Sync(ctx context.Context, entities []domain.CanonicalEntity) (SyncReport, error) {
	var report SyncReport

	previous, err := s.local.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return report, fmt.Errorf("%w: load previous snapshot: %v", domain.ErrLocalStore, err)
	}
	known := make(map[string]domain.CanonicalEntity, len(previous))
	for _, e := range previous {
		known[e.CanonicalID] = e
	}

	var changed []domain.CanonicalEntity
	for _, e := range entities {
		prev, ok := known[e.CanonicalID]
		switch {
		case !ok:
			report.Inserted++
		case prev.ContentEquals(e):
			report.Skipped++
			continue
		default:
			report.Updated++
		}
		changed = append(changed, e)
	}
	if len(changed) == 0 {
		return report, nil
	}

	// Local first: checkpoint batches keep everything written so far durable.
	for start := 0; start < len(changed); start += s.cfg.CheckpointSize {
		end := min(start+s.cfg.CheckpointSize, len(changed))
		if err := s.local.Upsert(changed[start:end]); err != nil {
			return report, err
		}
		report.Checkpoints++
	}
	s.log.Info("local snapshot updated",
		slog.Int("entities", len(changed)),
		slog.Int("checkpoints", report.Checkpoints),
	)

	if s.remote == nil {
		return report, nil
	}

	// Remote chunks run sequentially; a failed chunk is recorded and the
	// next one still runs.
	chunkNum := 0
	for start := 0; start < len(changed); start += s.cfg.RemoteChunkSize {
		end := min(start+s.cfg.RemoteChunkSize, len(changed))
		chunk := changed[start:end]
		chunkNum++

		if err := s.remote.UpsertChunk(ctx, chunk); err != nil {
			s.log.Warn("remote chunk failed",
				slog.Int("chunk", chunkNum),
				slog.Int("size", len(chunk)),
				slog.String("error", err.Error()),
			)
			report.RemoteFailures = append(report.RemoteFailures, ChunkFailure{
				Chunk:  chunkNum,
				Size:   len(chunk),
				Reason: err.Error(),
			})
			continue
		}
		report.RemoteChunks++
	}
	return report, nil
}
