package pipeline

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leobook/canondict/internal/config"
	"github.com/leobook/canondict/internal/domain"
)

// fakeLocal is an in-memory LocalStore recording every Upsert call.
type fakeLocal struct {
	entities map[string]domain.CanonicalEntity
	upserts  [][]domain.CanonicalEntity
	loadErr  error
	writeErr error
}

func newFakeLocal() *fakeLocal {
	return &fakeLocal{entities: make(map[string]domain.CanonicalEntity)}
}

func (f *fakeLocal) Load() ([]domain.CanonicalEntity, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	var out []domain.CanonicalEntity
	for _, e := range f.entities {
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeLocal) Upsert(entities []domain.CanonicalEntity) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.upserts = append(f.upserts, entities)
	for _, e := range entities {
		f.entities[e.CanonicalID] = e
	}
	return nil
}

// fakeRemote fails chunks whose index is listed in failChunks (1-based).
type fakeRemote struct {
	chunks     [][]domain.CanonicalEntity
	calls      int
	failChunks map[int]bool
}

func (f *fakeRemote) UpsertChunk(_ context.Context, entities []domain.CanonicalEntity) error {
	f.calls++
	if f.failChunks[f.calls] {
		return errors.New("connection refused")
	}
	f.chunks = append(f.chunks, entities)
	return nil
}

func storeConfig() config.StoreConfig {
	return config.StoreConfig{CheckpointSize: 2, RemoteChunkSize: 2}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func syncEntity(id, name string) domain.CanonicalEntity {
	return domain.CanonicalEntity{
		CanonicalID: id,
		Kind:        domain.KindTeam,
		DisplayName: name,
		Region:      "eng",
		Aliases:     []string{name},
		UpdatedAt:   time.Now().UTC(),
	}
}

func TestSyncWritesLocalThenRemote(t *testing.T) {
	t.Parallel()

	local := newFakeLocal()
	remote := &fakeRemote{}
	s := NewSyncer(local, remote, storeConfig(), discardLogger())

	entities := []domain.CanonicalEntity{
		syncEntity("a", "A"), syncEntity("b", "B"), syncEntity("c", "C"),
	}
	report, err := s.Sync(context.Background(), entities)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Inserted)
	assert.Equal(t, 2, report.Checkpoints, "3 entities, checkpoint size 2")
	assert.Equal(t, 2, report.RemoteChunks)
	assert.Len(t, local.entities, 3)
}

func TestSyncSkipsUnchangedEntities(t *testing.T) {
	t.Parallel()

	local := newFakeLocal()
	remote := &fakeRemote{}
	s := NewSyncer(local, remote, storeConfig(), discardLogger())

	entities := []domain.CanonicalEntity{syncEntity("a", "A"), syncEntity("b", "B")}
	_, err := s.Sync(context.Background(), entities)
	require.NoError(t, err)

	// Same content again: nothing to write anywhere.
	remote.calls = 0
	report, err := s.Sync(context.Background(), entities)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Skipped)
	assert.Zero(t, report.Inserted+report.Updated)
	assert.Zero(t, remote.calls)
}

func TestSyncCountsUpdates(t *testing.T) {
	t.Parallel()

	local := newFakeLocal()
	s := NewSyncer(local, &fakeRemote{}, storeConfig(), discardLogger())

	_, err := s.Sync(context.Background(), []domain.CanonicalEntity{syncEntity("a", "A")})
	require.NoError(t, err)

	changed := syncEntity("a", "A")
	changed.Aliases = []string{"A", "A FC"}
	report, err := s.Sync(context.Background(), []domain.CanonicalEntity{changed})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Updated)
}

func TestSyncRemoteChunkFailureIsContained(t *testing.T) {
	t.Parallel()

	local := newFakeLocal()
	remote := &fakeRemote{failChunks: map[int]bool{1: true}}
	s := NewSyncer(local, remote, storeConfig(), discardLogger())

	entities := []domain.CanonicalEntity{
		syncEntity("a", "A"), syncEntity("b", "B"), syncEntity("c", "C"),
	}
	report, err := s.Sync(context.Background(), entities)
	require.NoError(t, err, "remote failures must not fail the sync")

	require.Len(t, report.RemoteFailures, 1)
	assert.Equal(t, 1, report.RemoteFailures[0].Chunk)
	assert.Equal(t, 2, report.RemoteFailures[0].Size)
	assert.Equal(t, 1, report.RemoteChunks, "second chunk still ran")
	assert.Len(t, local.entities, 3, "local snapshot complete despite remote failure")
}

func TestSyncLocalFailureIsFatal(t *testing.T) {
	t.Parallel()

	local := newFakeLocal()
	local.writeErr = domain.ErrLocalStore
	s := NewSyncer(local, &fakeRemote{}, storeConfig(), discardLogger())

	_, err := s.Sync(context.Background(), []domain.CanonicalEntity{syncEntity("a", "A")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrLocalStore))
}

func TestSyncMissingSnapshotIsFreshStart(t *testing.T) {
	t.Parallel()

	local := newFakeLocal()
	local.loadErr = fs.ErrNotExist
	s := NewSyncer(local, nil, storeConfig(), discardLogger())

	local.loadErr = fs.ErrNotExist
	report, err := s.Sync(context.Background(), []domain.CanonicalEntity{syncEntity("a", "A")})
	// Load fails with not-exist, but Upsert still goes through.
	require.NoError(t, err)
	assert.Equal(t, 1, report.Inserted)
}

func TestSyncNilRemoteIsLocalOnly(t *testing.T) {
	t.Parallel()

	local := newFakeLocal()
	s := NewSyncer(local, nil, storeConfig(), discardLogger())

	report, err := s.Sync(context.Background(), []domain.CanonicalEntity{syncEntity("a", "A")})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Inserted)
	assert.Zero(t, report.RemoteChunks)
}
