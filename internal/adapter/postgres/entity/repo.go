// Package entity implements the canonical dictionary repository on
// PostgreSQL. Writes are chunked multi-row upserts keyed by canonical_id;
// reads page through the table in stable order for the search runtime.
package entity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/leobook/canondict/internal/adapter/postgres"
	"github.com/leobook/canondict/internal/domain"
)

const table = "entities"

var columns = []string{"canonical_id", "entity_kind", "display_name", "region", "aliases", "updated_at"}

var builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Repo provides entity persistence backed by PostgreSQL.
//
// When the remote schema lags behind (an upsert fails with
// undefined_column), the offending column is dropped from the statement and
// the chunk retried once; the column stays dropped for the rest of the run
// so later chunks skip the failed round-trip.
type Repo struct {
	q   postgres.Querier
	log *slog.Logger

	mu      sync.Mutex
	dropped map[string]bool
}

// New creates an entity repository.
func New(q postgres.Querier, log *slog.Logger) *Repo {
	return &Repo{q: q, log: log, dropped: make(map[string]bool)}
}

// UpsertChunk writes one chunk of entities with a single multi-row
// INSERT ... ON CONFLICT (canonical_id) DO UPDATE. Last write wins on every
// non-key column.
func (r *Repo) UpsertChunk(ctx context.Context, entities []domain.CanonicalEntity) error {
	if len(entities) == 0 {
		return nil
	}

	cols := r.activeColumns()
	err := r.execUpsert(ctx, cols, entities)
	if err == nil {
		return nil
	}

	col, ok := postgres.UndefinedColumn(err)
	if !ok || col == "canonical_id" || r.isDropped(col) {
		return postgres.MapError(err, "entities chunk", entities[0].CanonicalID)
	}

	r.log.Warn("remote schema missing column, dropping it from sync",
		slog.String("column", col),
	)
	r.markDropped(col)

	if err := r.execUpsert(ctx, r.activeColumns(), entities); err != nil {
		return postgres.MapError(err, "entities chunk", entities[0].CanonicalID)
	}
	return nil
}

// ListPage returns one page of entities ordered by canonical_id so repeated
// paging sees a stable sequence.
func (r *Repo) ListPage(ctx context.Context, limit, offset int) ([]domain.CanonicalEntity, error) {
	query := builder.
		Select(columns...).
		From(table).
		OrderBy("canonical_id ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "entities page", fmt.Sprintf("offset=%d", offset))
	}
	defer rows.Close()

	var entities []domain.CanonicalEntity
	if err := pgxscan.ScanAll(&entities, rows); err != nil {
		return nil, postgres.MapError(err, "entities page", fmt.Sprintf("offset=%d", offset))
	}
	return entities, nil
}

// Count returns the number of dictionary rows.
func (r *Repo) Count(ctx context.Context) (int, error) {
	sql, args, err := builder.Select("COUNT(*)").From(table).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var n int
	if err := r.q.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, postgres.MapError(err, "entities count", "")
	}
	return n, nil
}

func (r *Repo) execUpsert(ctx context.Context, cols []string, entities []domain.CanonicalEntity) error {
	insert := builder.Insert(table).Columns(cols...)
	for _, e := range entities {
		row := make([]any, len(cols))
		for i, col := range cols {
			row[i] = columnValue(e, col)
		}
		insert = insert.Values(row...)
	}
	insert = insert.Suffix("ON CONFLICT (canonical_id) DO UPDATE SET " + conflictSet(cols))

	sql, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("build upsert query: %w", err)
	}

	_, err = r.q.Exec(ctx, sql, args...)
	return err
}

func (r *Repo) activeColumns() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	cols := make([]string, 0, len(columns))
	for _, col := range columns {
		if !r.dropped[col] {
			cols = append(cols, col)
		}
	}
	return cols
}

func (r *Repo) isDropped(col string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped[col]
}

func (r *Repo) markDropped(col string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dropped[col] = true
}

// conflictSet renders "col = EXCLUDED.col" for every non-key column.
func conflictSet(cols []string) string {
	parts := make([]string, 0, len(cols)-1)
	for _, col := range cols {
		if col == "canonical_id" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
	}
	return strings.Join(parts, ", ")
}

func columnValue(e domain.CanonicalEntity, col string) any {
	switch col {
	case "canonical_id":
		return e.CanonicalID
	case "entity_kind":
		return string(e.Kind)
	case "display_name":
		return e.DisplayName
	case "region":
		return e.Region
	case "aliases":
		return e.Aliases
	case "updated_at":
		return e.UpdatedAt
	default:
		return nil
	}
}
