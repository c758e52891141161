package enricher

// GroupSummary is the per-group payload sent to the enrichment service as
// part of a batch prompt.
type GroupSummary struct {
	SourceID   string   `json:"source_id"`
	EntityKind string   `json:"entity_kind"`
	RegionHint string   `json:"region_hint,omitempty"`
	Variants   []string `json:"variants"`
}

// Result is one canonicalization answer salvaged from a service response.
type Result struct {
	SourceID      string  `json:"source_id"`
	CanonicalName string  `json:"canonical_name"`
	Region        string  `json:"region"`
	Confidence    float64 `json:"confidence"`
}

// BatchFailure records a batch that exhausted all attempts. It is kept for
// the run's failure report; the pipeline does not retry it automatically.
type BatchFailure struct {
	Batch     int
	SourceIDs []string
	Attempts  int
	Reason    string
}

// Outcome aggregates results and permanent failures across all batches of
// one EnrichAll call.
type Outcome struct {
	Results  map[string]Result
	Failures []BatchFailure
}
