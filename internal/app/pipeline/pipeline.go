// Package pipeline orchestrates the dictionary build: extract raw records,
// aggregate them into alias groups, enrich the groups through the inference
// client, assign canonical IDs, and sync the result to both stores.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/leobook/canondict/internal/app/enricher"
	"github.com/leobook/canondict/internal/domain"
)

// allPhases defines the canonical execution order.
var allPhases = []string{"extract", "aggregate", "enrich", "assign", "sync"}

// Enricher resolves alias groups to canonical names.
type Enricher interface {
	EnrichAll(ctx context.Context, groups []domain.AliasGroup) enricher.Outcome
}

// RecordsReader loads the raw extraction dump.
type RecordsReader func(path string) ([]domain.RawRecord, error)

// Config holds per-run pipeline options.
type Config struct {
	RecordsPath string
	DryRun      bool
	Limit       int // max alias groups to process; 0 = all
}

// PhaseResult holds the outcome of a single pipeline phase.
type PhaseResult struct {
	Inserted int
	Updated  int
	Skipped  int
	Errors   int
	Duration time.Duration
	Err      error
}

// Pipeline orchestrates the 5-phase build process.
type Pipeline struct {
	log         *slog.Logger
	readRecords RecordsReader
	enricher    Enricher
	syncer      *Syncer
	local       LocalStore
	cfg         Config
	results     map[string]PhaseResult

	// carried between phases
	records  []domain.RawRecord
	groups   []domain.AliasGroup
	outcome  enricher.Outcome
	entities []domain.CanonicalEntity
}

// NewPipeline creates a new Pipeline.
func NewPipeline(log *slog.Logger, readRecords RecordsReader, enr Enricher, syncer *Syncer, local LocalStore, cfg Config) *Pipeline {
	return &Pipeline{
		log:         log,
		readRecords: readRecords,
		enricher:    enr,
		syncer:      syncer,
		local:       local,
		cfg:         cfg,
		results:     make(map[string]PhaseResult),
	}
}

// Results returns phase results after Run completes.
func (p *Pipeline) Results() map[string]PhaseResult {
	return p.results
}

// HasErrors returns true if any phase recorded errors.
func (p *Pipeline) HasErrors() bool {
	for _, r := range p.results {
		if r.Err != nil || r.Errors > 0 {
			return true
		}
	}
	return false
}

// Run executes the phases in order. A phase error stops the run only when it
// is fatal (local store failures); enrichment and remote failures are
// recorded in the phase results and the run continues.
func (p *Pipeline) Run(ctx context.Context) error {
	for _, phase := range allPhases {
		start := time.Now()
		p.log.Info("starting phase", slog.String("phase", phase))

		var result PhaseResult
		switch phase {
		case "extract":
			result = p.runExtract()
		case "aggregate":
			result = p.runAggregate()
		case "enrich":
			result = p.runEnrich(ctx)
		case "assign":
			result = p.runAssign()
		case "sync":
			result = p.runSync(ctx)
		}
		result.Duration = time.Since(start)
		p.results[phase] = result

		if result.Err != nil {
			p.log.Warn("phase failed",
				slog.String("phase", phase),
				slog.String("error", result.Err.Error()),
				slog.Duration("duration", result.Duration),
			)
			if errors.Is(result.Err, domain.ErrLocalStore) {
				return fmt.Errorf("phase %s: %w", phase, result.Err)
			}
			if phase == "extract" {
				// Nothing downstream can run without records.
				return fmt.Errorf("phase %s: %w", phase, result.Err)
			}
		} else {
			p.log.Info("phase completed",
				slog.String("phase", phase),
				slog.Int("inserted", result.Inserted),
				slog.Int("updated", result.Updated),
				slog.Int("skipped", result.Skipped),
				slog.Int("errors", result.Errors),
				slog.Duration("duration", result.Duration),
			)
		}
	}

	p.log.Info("pipeline completed", slog.Int("phases_run", len(allPhases)))
	return nil
}

func (p *Pipeline) runExtract() PhaseResult {
	records, err := p.readRecords(p.cfg.RecordsPath)
	if err != nil {
		return PhaseResult{Err: fmt.Errorf("read records: %w", err)}
	}
	p.records = records
	return PhaseResult{Inserted: len(records)}
}

func (p *Pipeline) runAggregate() PhaseResult {
	p.groups = Aggregate(p.records)
	skipped := 0
	if p.cfg.Limit > 0 && len(p.groups) > p.cfg.Limit {
		skipped = len(p.groups) - p.cfg.Limit
		p.groups = p.groups[:p.cfg.Limit]
	}
	return PhaseResult{Inserted: len(p.groups), Skipped: skipped}
}

func (p *Pipeline) runEnrich(ctx context.Context) PhaseResult {
	if p.cfg.DryRun {
		return PhaseResult{Skipped: len(p.groups)}
	}

	p.outcome = p.enricher.EnrichAll(ctx, p.groups)

	failed := 0
	for _, f := range p.outcome.Failures {
		failed += len(f.SourceIDs)
	}
	return PhaseResult{
		Inserted: len(p.outcome.Results),
		Errors:   failed,
	}
}

// runAssign turns enriched groups into canonical entities. IDs already
// present in the local snapshot keep their assignment, so re-runs never move
// an entity to a new ID.
func (p *Pipeline) runAssign() PhaseResult {
	if p.cfg.DryRun {
		return PhaseResult{Skipped: len(p.groups)}
	}

	existing, err := p.existingAssignments()
	if err != nil {
		return PhaseResult{Err: err}
	}

	now := time.Now().UTC()
	var result PhaseResult
	for _, g := range p.groups {
		res, ok := p.outcome.Results[g.SourceID]
		if !ok {
			// Unresolved groups stay out of the dictionary; the next run
			// retries them.
			result.Skipped++
			continue
		}

		spec := domain.IDSpec{Kind: g.Kind, Region: res.Region, Name: res.CanonicalName}
		id := domain.AssignID(spec, existing)
		existing[id] = spec

		aliases := append([]string(nil), g.Names...)
		p.entities = append(p.entities, domain.CanonicalEntity{
			CanonicalID: id,
			Kind:        g.Kind,
			DisplayName: res.CanonicalName,
			Region:      res.Region,
			Aliases:     aliases,
			UpdatedAt:   now,
		})
		result.Inserted++
	}
	return result
}

func (p *Pipeline) runSync(ctx context.Context) PhaseResult {
	if p.cfg.DryRun {
		return PhaseResult{Skipped: len(p.entities)}
	}

	report, err := p.syncer.Sync(ctx, p.entities)
	if err != nil {
		return PhaseResult{Err: err}
	}
	return PhaseResult{
		Inserted: report.Inserted,
		Updated:  report.Updated,
		Skipped:  report.Skipped,
		Errors:   len(report.RemoteFailures),
	}
}

// existingAssignments rebuilds the ID map from the previous snapshot.
func (p *Pipeline) existingAssignments() (map[string]domain.IDSpec, error) {
	previous, err := p.local.Load()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return make(map[string]domain.IDSpec), nil
		}
		return nil, fmt.Errorf("%w: load snapshot for id assignment: %v", domain.ErrLocalStore, err)
	}
	existing := make(map[string]domain.IDSpec, len(previous))
	for _, e := range previous {
		existing[e.CanonicalID] = domain.IDSpec{Kind: e.Kind, Region: e.Region, Name: e.DisplayName}
	}
	return existing, nil
}
