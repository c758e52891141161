package domain

import (
	"testing"
	"time"
)

func TestEntityKindIsValid(t *testing.T) {
	t.Parallel()

	valid := []EntityKind{KindTeam, KindLeague, KindRegionLeague}
	for _, k := range valid {
		if !k.IsValid() {
			t.Errorf("EntityKind(%q).IsValid() = false, want true", k)
		}
	}
	for _, k := range []EntityKind{"", "player", "TEAM"} {
		if k.IsValid() {
			t.Errorf("EntityKind(%q).IsValid() = true, want false", k)
		}
	}
}

func TestAliasGroupAddName(t *testing.T) {
	t.Parallel()

	g := &AliasGroup{SourceID: "abc123", Kind: KindTeam}

	if !g.AddName("Manchester United") {
		t.Fatal("first AddName returned false")
	}
	if g.AddName("MANCHESTER   UNITED") {
		t.Error("normalized duplicate was added")
	}
	if !g.AddName("Man Utd") {
		t.Error("distinct variant was rejected")
	}
	if g.AddName("") {
		t.Error("empty name was added")
	}

	if got := g.DisplayCandidate(); got != "Manchester United" {
		t.Errorf("DisplayCandidate() = %q, want first-seen spelling", got)
	}
	if len(g.Names) != 2 {
		t.Errorf("len(Names) = %d, want 2", len(g.Names))
	}
}

func TestCanonicalEntityContentEquals(t *testing.T) {
	t.Parallel()

	base := CanonicalEntity{
		CanonicalID: "eng-manchester-united",
		Kind:        KindTeam,
		DisplayName: "Manchester United",
		Region:      "eng",
		Aliases:     []string{"Manchester United", "Man Utd"},
		UpdatedAt:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	same := base
	same.UpdatedAt = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	if !base.ContentEquals(same) {
		t.Error("ContentEquals() = false for timestamp-only difference")
	}

	changed := base
	changed.Aliases = []string{"Manchester United"}
	if base.ContentEquals(changed) {
		t.Error("ContentEquals() = true for differing alias sets")
	}
}
