package runstate

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLastRunEmptyStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	store, err := Open(path)
	require.NoError(t, err)
	defer store.Close()

	_, ok, err := store.LastRun()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRecordRunAndLastRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	store, err := Open(path)
	require.NoError(t, err)
	defer store.Close()

	rec1, err := store.RecordRun("hash1", nil)
	require.NoError(t, err)
	require.NotEmpty(t, rec1.RunID)

	time.Sleep(2 * time.Millisecond)
	rec2, err := store.RecordRun("hash2", []string{"task x: check failed"})
	require.NoError(t, err)

	last, ok, err := store.LastRun()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, rec2.RunID, last.RunID)
	require.Equal(t, "hash2", last.GraphHash)
	require.Equal(t, []string{"task x: check failed"}, last.CheckErrors)
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	store, err := Open(path)
	require.NoError(t, err)
	_, err = store.RecordRun("hash1", nil)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	last, ok, err := reopened.LastRun()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "hash1", last.GraphHash)
}
