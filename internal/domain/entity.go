// Package domain holds the core types of the canonical dictionary and the
// pure logic over them: name normalization, slug and ID derivation, and the
// shared error taxonomy.
package domain

import (
	"slices"
	"time"
)

// EntityKind classifies a dictionary entity.
type EntityKind string

const (
	KindTeam         EntityKind = "team"
	KindLeague       EntityKind = "league"
	KindRegionLeague EntityKind = "region_league"
)

// IsValid reports whether k is one of the known kinds.
func (k EntityKind) IsValid() bool {
	switch k {
	case KindTeam, KindLeague, KindRegionLeague:
		return true
	}
	return false
}

// RawRecord is one extraction observation: a name spelling as some upstream
// source printed it, tied to that source's entity ID.
type RawRecord struct {
	SourceID    string
	RawName     string
	Kind        EntityKind
	RegionHint  string
	Occurrences int
}

// AliasGroup collects every observed spelling of one source entity.
type AliasGroup struct {
	SourceID   string
	Kind       EntityKind
	RegionHint string
	Names      []string
}

// AddName appends a spelling unless its normalized form is already present
// or empty. Returns whether the name was added.
func (g *AliasGroup) AddName(name string) bool {
	norm := NormalizeName(name)
	if norm == "" {
		return false
	}
	for _, existing := range g.Names {
		if NormalizeName(existing) == norm {
			return false
		}
	}
	g.Names = append(g.Names, name)
	return true
}

// DisplayCandidate returns the first (most representative) spelling, or ""
// for an empty group.
func (g *AliasGroup) DisplayCandidate() string {
	if len(g.Names) == 0 {
		return ""
	}
	return g.Names[0]
}

// CanonicalEntity is one resolved dictionary row, shared by the CSV snapshot
// and the entities table.
type CanonicalEntity struct {
	CanonicalID string     `db:"canonical_id"`
	Kind        EntityKind `db:"entity_kind"`
	DisplayName string     `db:"display_name"`
	Region      string     `db:"region"`
	Aliases     []string   `db:"aliases"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

// ContentEquals reports whether two entities carry the same content,
// ignoring UpdatedAt. The sync layer uses it to skip rewriting rows that
// have not actually changed.
func (e CanonicalEntity) ContentEquals(other CanonicalEntity) bool {
	return e.CanonicalID == other.CanonicalID &&
		e.Kind == other.Kind &&
		e.DisplayName == other.DisplayName &&
		e.Region == other.Region &&
		slices.Equal(e.Aliases, other.Aliases)
}

// IDSpec is the input to canonical ID assignment.
type IDSpec struct {
	Kind   EntityKind
	Region string
	Name   string
}
