// Package enricher sends batches of alias groups to an external inference
// service and salvages canonicalization results from its free-text responses.
// The service is reached through the Completer capability, so any
// implementation satisfying the batch-in/repaired-result-out contract is
// substitutable.
package enricher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/leobook/canondict/internal/config"
	"github.com/leobook/canondict/internal/domain"
)

// Completer produces a free-text completion for a prompt. Implementations
// must honor ctx cancellation and deadlines.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Client batches alias groups to a Completer with bounded concurrency,
// per-attempt timeouts and bounded retries.
type Client struct {
	completer Completer
	cfg       config.EnrichConfig
	log       *slog.Logger
}

// NewClient creates an enrichment client.
func NewClient(completer Completer, cfg config.EnrichConfig, log *slog.Logger) *Client {
	return &Client{completer: completer, cfg: cfg, log: log}
}

// EnrichAll processes all groups in fixed-size batches dispatched through a
// bounded worker pool. Batches are independent: a batch that exhausts its
// retries is recorded in the outcome's failure list and does not abort
// sibling batches. Results below the configured confidence floor are ignored.
func (c *Client) EnrichAll(ctx context.Context, groups []domain.AliasGroup) Outcome {
	outcome := Outcome{Results: make(map[string]Result, len(groups))}
	if len(groups) == 0 {
		return outcome
	}

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(c.cfg.Workers)

	batchNum := 0
	for start := 0; start < len(groups); start += c.cfg.BatchSize {
		end := min(start+c.cfg.BatchSize, len(groups))
		batch := groups[start:end]
		batchNum++
		num := batchNum

		g.Go(func() error {
			results, attempts, err := c.enrichBatch(ctx, batch)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				c.log.Warn("enrichment batch failed permanently",
					slog.Int("batch", num),
					slog.Int("attempts", attempts),
					slog.String("error", err.Error()),
				)
				outcome.Failures = append(outcome.Failures, BatchFailure{
					Batch:     num,
					SourceIDs: sourceIDs(batch),
					Attempts:  attempts,
					Reason:    err.Error(),
				})
				return nil
			}
			for _, r := range results {
				outcome.Results[r.SourceID] = r
			}
			return nil
		})
	}
	// Workers never return errors; failures are collected per batch.
	_ = g.Wait()

	return outcome
}

// enrichBatch runs one batch with retry. Attempt k (1-based) that fails is
// followed by a backoff of BackoffStep×k, so the default 5s step yields the
// 5s/10s/15s schedule. Returns the accepted results, the number of attempts
// made, and a terminal error wrapping domain.ErrEnrichmentExhausted when all
// attempts failed.
func (c *Client) enrichBatch(ctx context.Context, batch []domain.AliasGroup) ([]Result, int, error) {
	prompt := buildPrompt(summarize(batch))
	wanted := make(map[string]bool, len(batch))
	for _, g := range batch {
		wanted[g.SourceID] = true
	}

	attempts := c.cfg.MaxRetries + 1
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		results, err := c.attempt(ctx, prompt, wanted)
		if err == nil {
			return results, attempt, nil
		}
		lastErr = err

		if attempt == attempts {
			break
		}
		backoff := c.cfg.BackoffStep * time.Duration(attempt)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, attempt, fmt.Errorf("%w: %v", domain.ErrEnrichmentExhausted, ctx.Err())
		}
	}
	return nil, attempts, fmt.Errorf("%w: %v", domain.ErrEnrichmentExhausted, lastErr)
}

// attempt performs a single request with its own timeout and salvages the
// response. Zero salvageable objects counts as a failed attempt.
func (c *Client) attempt(ctx context.Context, prompt string, wanted map[string]bool) ([]Result, error) {
	attemptCtx := ctx
	if c.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, c.cfg.RequestTimeout)
		defer cancel()
	}

	text, err := c.completer.Complete(attemptCtx, prompt)
	if err != nil {
		return nil, fmt.Errorf("completion: %w", err)
	}

	salvaged := Salvage(text)
	if len(salvaged.Unparsed) > 0 {
		c.log.Debug("dropped unparsed response spans", slog.Int("count", len(salvaged.Unparsed)))
	}
	if len(salvaged.Objects) == 0 {
		return nil, fmt.Errorf("no salvageable objects in response")
	}

	var results []Result
	for _, raw := range salvaged.Objects {
		var r Result
		if err := json.Unmarshal(raw, &r); err != nil {
			continue
		}
		if !wanted[r.SourceID] || r.CanonicalName == "" {
			continue
		}
		if r.Confidence < c.cfg.MinConfidence {
			c.log.Debug("result below confidence floor",
				slog.String("source_id", r.SourceID),
				slog.Float64("confidence", r.Confidence),
			)
			continue
		}
		results = append(results, r)
	}
	return results, nil
}

func summarize(batch []domain.AliasGroup) []GroupSummary {
	summaries := make([]GroupSummary, len(batch))
	for i, g := range batch {
		summaries[i] = GroupSummary{
			SourceID:   g.SourceID,
			EntityKind: string(g.Kind),
			RegionHint: g.RegionHint,
			Variants:   g.Names,
		}
	}
	return summaries
}

func sourceIDs(batch []domain.AliasGroup) []string {
	ids := make([]string, len(batch))
	for i, g := range batch {
		ids[i] = g.SourceID
	}
	return ids
}
