package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leobook/canondict/internal/domain"
)

func rec(sourceID, name string) domain.RawRecord {
	return domain.RawRecord{
		SourceID:    sourceID,
		RawName:     name,
		Kind:        domain.KindTeam,
		Occurrences: 1,
	}
}

func TestAggregateGroupsBySourceID(t *testing.T) {
	t.Parallel()

	groups := Aggregate([]domain.RawRecord{
		rec("s1", "Man Utd"),
		rec("s2", "Arsenal"),
		rec("s1", "Manchester United"),
	})

	require.Len(t, groups, 2)
	assert.Equal(t, "s1", groups[0].SourceID, "first-seen order")
	assert.Equal(t, "s2", groups[1].SourceID)
}

func TestAggregateFirstSeenSpellingIsDisplayCandidate(t *testing.T) {
	t.Parallel()

	groups := Aggregate([]domain.RawRecord{
		rec("s1", "Man Utd"),
		rec("s1", "Manchester United"),
		rec("s1", "MUFC"),
	})

	require.Len(t, groups, 1)
	assert.Equal(t, []string{"Man Utd", "Manchester United", "MUFC"}, groups[0].Names)
	assert.Equal(t, "Man Utd", groups[0].DisplayCandidate())
}

func TestAggregateDropsNormalizedDuplicates(t *testing.T) {
	t.Parallel()

	// "MAN  UTD" and "man utd" normalize identically: the first-seen
	// original casing survives.
	groups := Aggregate([]domain.RawRecord{
		rec("s1", "MAN  UTD"),
		rec("s1", "Manchester United"),
		rec("s1", "man utd"),
	})

	require.Len(t, groups, 1)
	assert.Equal(t, []string{"MAN  UTD", "Manchester United"}, groups[0].Names)
}

func TestAggregateFirstRegionHintWins(t *testing.T) {
	t.Parallel()

	groups := Aggregate([]domain.RawRecord{
		{SourceID: "s1", RawName: "PSG", Kind: domain.KindTeam, Occurrences: 1},
		{SourceID: "s1", RawName: "Paris SG", Kind: domain.KindTeam, RegionHint: "fra", Occurrences: 1},
		{SourceID: "s1", RawName: "Paris Saint-Germain", Kind: domain.KindTeam, RegionHint: "esp", Occurrences: 1},
	})

	require.Len(t, groups, 1)
	assert.Equal(t, "fra", groups[0].RegionHint, "first non-empty hint wins")
}

func TestAggregateDropsEmptyGroups(t *testing.T) {
	t.Parallel()

	groups := Aggregate([]domain.RawRecord{
		rec("s1", "   "),
		rec("s2", "Arsenal"),
	})

	require.Len(t, groups, 1)
	assert.Equal(t, "s2", groups[0].SourceID)
}

func TestAggregateDeterministic(t *testing.T) {
	t.Parallel()

	records := []domain.RawRecord{
		rec("s1", "Alpha"), rec("s2", "Beta"), rec("s1", "Alfa"),
		rec("s3", "Gamma"), rec("s2", "Beta FC"),
	}
	first := Aggregate(records)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Aggregate(records))
	}
}
