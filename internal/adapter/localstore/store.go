// Package localstore implements the local flat-file side of the dual-store
// setup: a CSV snapshot of the canonical dictionary, written by the build
// pipeline and read by the search runtime's fallback path.
package localstore

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/leobook/canondict/internal/domain"
)

var header = []string{"canonical_id", "entity_kind", "display_name", "region", "aliases", "updated_at"}

// Store is a CSV snapshot keyed by canonical_id. Writes go through a
// temp-file + rename per checkpoint, so a concurrent reader (the search
// runtime runs as a separate process) never observes a half-written file.
// The single mutex serializes writers within this process.
type Store struct {
	path string

	mu       sync.Mutex
	entities map[string]domain.CanonicalEntity
	loaded   bool
}

// NewStore creates a store for the snapshot at path. Nothing is read until
// Load or the first Upsert.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the snapshot location.
func (s *Store) Path() string { return s.path }

// Load reads the full snapshot. A missing file is reported as
// fs.ErrNotExist so callers can decide whether that is a fresh start (build
// pipeline) or a failed fallback (search runtime).
func (s *Store) Load() ([]domain.CanonicalEntity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	return s.snapshotLocked(), nil
}

// Upsert folds entities into the snapshot and durably rewrites it. Callers
// checkpoint after every processed batch, so a killed run keeps everything
// written so far. Any failure wraps domain.ErrLocalStore.
func (s *Store) Upsert(entities []domain.CanonicalEntity) error {
	if len(entities) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: %v", domain.ErrLocalStore, err)
	}
	if s.entities == nil {
		s.entities = make(map[string]domain.CanonicalEntity)
		s.loaded = true
	}
	for _, e := range entities {
		s.entities[e.CanonicalID] = e
	}
	if err := s.writeLocked(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrLocalStore, err)
	}
	return nil
}

// ensureLoaded populates the in-memory index from disk once.
func (s *Store) ensureLoaded() error {
	if s.loaded {
		return nil
	}
	entities, err := readSnapshot(s.path)
	if err != nil {
		return err
	}
	s.entities = make(map[string]domain.CanonicalEntity, len(entities))
	for _, e := range entities {
		s.entities[e.CanonicalID] = e
	}
	s.loaded = true
	return nil
}

// snapshotLocked returns rows sorted by canonical_id; the stable order keeps
// repeated runs byte-identical on disk.
func (s *Store) snapshotLocked() []domain.CanonicalEntity {
	out := make([]domain.CanonicalEntity, 0, len(s.entities))
	for _, e := range s.entities {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CanonicalID < out[j].CanonicalID })
	return out
}

// writeLocked rewrites the snapshot atomically: write a temp file in the
// same directory, fsync, then rename over the target.
func (s *Store) writeLocked() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		tmp.Close()
		return fmt.Errorf("write header: %w", err)
	}
	for _, e := range s.snapshotLocked() {
		aliases, err := encodeAliases(e.Aliases)
		if err != nil {
			tmp.Close()
			return fmt.Errorf("encode aliases for %s: %w", e.CanonicalID, err)
		}
		row := []string{
			e.CanonicalID,
			string(e.Kind),
			e.DisplayName,
			e.Region,
			aliases,
			e.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			tmp.Close()
			return fmt.Errorf("write row %s: %w", e.CanonicalID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}

// encodeAliases serializes the alias list as a JSON array inside the CSV
// cell. Scraped aliases are untrusted input, so no separator character is
// safe to reserve; JSON round-trips anything.
func encodeAliases(aliases []string) (string, error) {
	b, err := json.Marshal(aliases)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeAliases(cell string) ([]string, error) {
	if cell == "" {
		return nil, nil
	}
	var aliases []string
	if err := json.Unmarshal([]byte(cell), &aliases); err != nil {
		return nil, err
	}
	return aliases, nil
}

func readSnapshot(path string) ([]domain.CanonicalEntity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(header)

	// Header row.
	if _, err := r.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	var entities []domain.CanonicalEntity
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read snapshot row: %w", err)
		}
		updatedAt, err := time.Parse(time.RFC3339, row[5])
		if err != nil {
			return nil, fmt.Errorf("row %s: parse updated_at: %w", row[0], err)
		}
		aliases, err := decodeAliases(row[4])
		if err != nil {
			return nil, fmt.Errorf("row %s: decode aliases: %w", row[0], err)
		}
		entities = append(entities, domain.CanonicalEntity{
			CanonicalID: row[0],
			Kind:        domain.EntityKind(row[1]),
			DisplayName: row[2],
			Region:      row[3],
			Aliases:     aliases,
			UpdatedAt:   updatedAt,
		})
	}
	return entities, nil
}
