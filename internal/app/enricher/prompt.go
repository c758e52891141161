package enricher

import (
	"encoding/json"
	"fmt"
)

// buildPrompt creates the batch prompt for a set of alias-group summaries.
// Related entities share one call so the service sees them in context.
func buildPrompt(groups []GroupSummary) string {
	payload, err := json.MarshalIndent(groups, "", "  ")
	if err != nil {
		// GroupSummary contains only strings and slices; this cannot fail.
		payload = []byte("[]")
	}

	return fmt.Sprintf(`You are a sports data editor who canonicalizes team and league names.

Each input item below lists the name variants observed for one source entity,
its entity kind (team, league, region_league) and an optional region hint.

Input:
%s

For every input item produce one JSON object with this exact schema:
{
  "source_id": "<copied from the input item>",
  "canonical_name": "<the most official English name of the entity>",
  "region": "<lowercase 3-letter region/country code, or empty if unknown>",
  "confidence": <0.0-1.0, how certain you are the variants denote this entity>
}

Rules:
- Output ONLY a single JSON array with one object per input item, no markdown, no explanations
- Keep source_id values exactly as given
- Prefer the commonly used official club/league name over abbreviations
- Use the region hint when it is consistent with the variants`, payload)
}
