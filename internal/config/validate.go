package config

import "fmt"

// Validate checks cross-field constraints the tag defaults cannot express.
func (c *Config) Validate() error {
	if c.Store.CheckpointSize <= 0 {
		return fmt.Errorf("store.checkpoint_size must be positive, got %d", c.Store.CheckpointSize)
	}
	if c.Store.RemoteChunkSize <= 0 {
		return fmt.Errorf("store.remote_chunk_size must be positive, got %d", c.Store.RemoteChunkSize)
	}
	if c.Enrich.BatchSize <= 0 {
		return fmt.Errorf("enrich.batch_size must be positive, got %d", c.Enrich.BatchSize)
	}
	if c.Enrich.Workers <= 0 {
		return fmt.Errorf("enrich.workers must be positive, got %d", c.Enrich.Workers)
	}
	if c.Enrich.MaxRetries < 0 {
		return fmt.Errorf("enrich.max_retries must not be negative, got %d", c.Enrich.MaxRetries)
	}
	if c.Enrich.MinConfidence < 0 || c.Enrich.MinConfidence > 1 {
		return fmt.Errorf("enrich.min_confidence must be in [0,1], got %g", c.Enrich.MinConfidence)
	}
	if c.Search.PageSize <= 0 {
		return fmt.Errorf("search.page_size must be positive, got %d", c.Search.PageSize)
	}
	if c.Search.MaxLimit < c.Search.DefaultLimit {
		return fmt.Errorf("search.max_limit %d below default_limit %d", c.Search.MaxLimit, c.Search.DefaultLimit)
	}
	return nil
}
