package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/leobook/canondict/internal/config"
	"github.com/leobook/canondict/internal/domain"
)

// RemotePager pages through the remote dictionary in stable order.
type RemotePager interface {
	ListPage(ctx context.Context, limit, offset int) ([]domain.CanonicalEntity, error)
}

// LocalLoader reads the snapshot fallback.
type LocalLoader interface {
	Load() ([]domain.CanonicalEntity, error)
}

// Match is one search hit.
type Match struct {
	Entity domain.CanonicalEntity
	Score  float64
}

// Runtime serves fuzzy lookups over an in-memory copy of the dictionary.
//
// It starts cold and loads lazily on the first request: remote store first
// (paged), local snapshot on remote failure. Concurrent cold requests share
// a single load via singleflight. When both sources fail the runtime stays
// cold and reports domain.ErrDictionaryUnavailable, which callers must keep
// distinct from an empty result set.
type Runtime struct {
	remote RemotePager
	local  LocalLoader
	cfg    config.SearchConfig
	log    *slog.Logger

	loadGroup singleflight.Group

	mu       sync.RWMutex
	entities []domain.CanonicalEntity
	ready    bool
}

// NewRuntime creates a cold runtime. remote may be nil for snapshot-only
// deployments.
func NewRuntime(remote RemotePager, local LocalLoader, cfg config.SearchConfig, log *slog.Logger) *Runtime {
	return &Runtime{remote: remote, local: local, cfg: cfg, log: log}
}

// Ready reports whether a dictionary is loaded.
func (r *Runtime) Ready() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ready
}

// Len returns the number of loaded entities.
func (r *Runtime) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entities)
}

// Refresh drops the loaded dictionary and reloads it immediately. On
// failure the runtime is left cold.
func (r *Runtime) Refresh(ctx context.Context) error {
	r.mu.Lock()
	r.ready = false
	r.entities = nil
	r.mu.Unlock()

	_, err := r.ensureReady(ctx)
	return err
}

// Search returns entities matching query, best first. kind narrows results
// to one entity kind when non-empty. limit is clamped to the configured
// maximum; zero or negative means the default.
func (r *Runtime) Search(ctx context.Context, query string, kind domain.EntityKind, limit int) ([]Match, error) {
	entities, err := r.ensureReady(ctx)
	if err != nil {
		return nil, err
	}

	normQuery := domain.NormalizeName(query)
	if normQuery == "" {
		return nil, nil
	}
	threshold := Threshold(len([]rune(normQuery)))

	if limit <= 0 {
		limit = r.cfg.DefaultLimit
	}
	if limit > r.cfg.MaxLimit {
		limit = r.cfg.MaxLimit
	}

	var matches []Match
	for _, e := range entities {
		if kind != "" && e.Kind != kind {
			continue
		}
		if score := Score(normQuery, e); score >= threshold {
			matches = append(matches, Match{Entity: e, Score: score})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		a, b := matches[i].Entity.DisplayName, matches[j].Entity.DisplayName
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return a < b
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// ensureReady returns the loaded dictionary, performing the cold load if
// needed. Concurrent callers share one load.
func (r *Runtime) ensureReady(ctx context.Context) ([]domain.CanonicalEntity, error) {
	r.mu.RLock()
	if r.ready {
		entities := r.entities
		r.mu.RUnlock()
		return entities, nil
	}
	r.mu.RUnlock()

	_, err, _ := r.loadGroup.Do("load", func() (any, error) {
		return nil, r.load(ctx)
	})
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entities, nil
}

func (r *Runtime) load(ctx context.Context) error {
	// Another caller may have finished the load while we queued.
	r.mu.RLock()
	ready := r.ready
	r.mu.RUnlock()
	if ready {
		return nil
	}

	entities, err := r.loadRemote(ctx)
	if err != nil {
		r.log.Warn("remote dictionary load failed, trying local snapshot",
			slog.String("error", err.Error()),
		)
		entities, err = r.loadLocal()
		if err != nil {
			r.log.Error("local snapshot load failed", slog.String("error", err.Error()))
			return domain.ErrDictionaryUnavailable
		}
		r.log.Info("dictionary loaded from local snapshot", slog.Int("entities", len(entities)))
	} else {
		r.log.Info("dictionary loaded from remote store", slog.Int("entities", len(entities)))
	}

	r.mu.Lock()
	r.entities = entities
	r.ready = true
	r.mu.Unlock()
	return nil
}

func (r *Runtime) loadRemote(ctx context.Context) ([]domain.CanonicalEntity, error) {
	if r.remote == nil {
		return nil, fmt.Errorf("no remote store configured")
	}

	var all []domain.CanonicalEntity
	for offset := 0; ; offset += r.cfg.PageSize {
		page, err := r.remote.ListPage(ctx, r.cfg.PageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("list page at offset %d: %w", offset, err)
		}
		all = append(all, page...)
		if len(page) < r.cfg.PageSize {
			return all, nil
		}
	}
}

func (r *Runtime) loadLocal() ([]domain.CanonicalEntity, error) {
	if r.local == nil {
		return nil, fmt.Errorf("no local snapshot configured")
	}
	return r.local.Load()
}
