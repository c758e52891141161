package domain

import "errors"

// Sentinel errors used across all layers.
var (
	ErrNotFound = errors.New("not found")

	// ErrLocalStore marks a failed write to the local snapshot store. It is
	// the one error class with no fallback: the local store is the
	// resilience backstop, so the pipeline aborts on it.
	ErrLocalStore = errors.New("local store write failed")

	// ErrSchemaMismatch marks a remote chunk that still failed after the
	// drop-and-retry pass for an unrecognized column.
	ErrSchemaMismatch = errors.New("remote schema mismatch")

	// ErrEnrichmentExhausted marks a batch that failed all enrichment
	// attempts. The batch is reported, not retried, within the run.
	ErrEnrichmentExhausted = errors.New("enrichment retries exhausted")

	// ErrDictionaryUnavailable is returned by the search runtime when both
	// the remote load and the local fallback fail. Callers distinguish it
	// from an empty result set.
	ErrDictionaryUnavailable = errors.New("dictionary unavailable")
)
