package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SeamusWaldron/cubeanim/internal/cube"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpen_AppliesMigrations(t *testing.T) {
	db := openTestDB(t)

	v, err := db.CurrentVersion()
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	// reopening is a no-op
	path := db.Path()
	require.NoError(t, db.Close())
	db2, err := Open(path)
	require.NoError(t, err)
	defer db2.Close()
	v, err = db2.CurrentVersion()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestSnapshotRepository_CRUD(t *testing.T) {
	db := openTestDB(t)
	repo := NewSnapshotRepository(db)
	state := cube.Build(cube.DefaultConfig()).Snapshot()

	id, err := repo.Create("solved", state, true, "fresh")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	byID, err := repo.Get(id)
	require.NoError(t, err)
	byName, err := repo.Get("solved")
	require.NoError(t, err)
	assert.Equal(t, byID, byName)

	assert.Equal(t, "solved", byID.Name)
	assert.True(t, byID.Solved)
	require.NotNil(t, byID.Notes)
	assert.Equal(t, "fresh", *byID.Notes)
	assert.Equal(t, state, byID.State)
	assert.False(t, byID.CreatedAt.IsZero())

	_, err = repo.Create("solved", state, true, "")
	assert.Error(t, err, "names are unique")

	_, err = repo.Create("other", state, false, "")
	require.NoError(t, err)
	all, err := repo.List()
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, repo.Delete("solved"))
	_, err = repo.Get("solved")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete("solved"), ErrNotFound)
}

func TestSnapshotRepository_Replace(t *testing.T) {
	db := openTestDB(t)
	repo := NewSnapshotRepository(db)
	state := cube.Build(cube.DefaultConfig()).Snapshot()

	first, err := repo.Replace("slot", state, true, "")
	require.NoError(t, err)
	second, err := repo.Replace("slot", state, false, "again")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	all, err := repo.List()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, second, all[0].SnapshotID)
	assert.False(t, all[0].Solved)
}

func TestReportRepository(t *testing.T) {
	db := openTestDB(t)
	repo := NewReportRepository(db)

	for i := 0; i < 3; i++ {
		_, err := repo.Create(DriftReport{
			Seed:               uint64(i) + 1<<63,
			Moves:              200,
			Frames:             6400,
			Speed:              0.05,
			OrientationSnap:    i%2 == 0,
			MaxPositionDrift:   1e-15,
			SolvedAfterInverse: true,
		})
		require.NoError(t, err)
	}

	all, err := repo.List(0)
	require.NoError(t, err)
	require.Len(t, all, 3)

	seeds := map[uint64]bool{}
	for _, r := range all {
		seeds[r.Seed] = true
		assert.Equal(t, 200, r.Moves)
		assert.True(t, r.SolvedAfterInverse)
		assert.InDelta(t, 1e-15, r.MaxPositionDrift, 1e-20)
	}
	assert.True(t, seeds[1<<63+2])

	limited, err := repo.List(2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}
