package toolexecutor

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords(n int) []ExecutionRecord {
	records := make([]ExecutionRecord, 0, n)
	for i := 1; i <= n; i++ {
		rec := ExecutionRecord{
			ExecutionID: fmt.Sprintf("exec_%d_1700000000", i),
			ToolID:      "system_echo_1700000000",
			Parameters:  map[string]any{"text": fmt.Sprintf("v%d", i)},
			Timestamp:   time.Unix(1700000000+int64(i), 0).UTC().Format(time.RFC3339Nano),
			Duration:    0.01 * float64(i),
			Success:     i%2 == 1,
		}
		if rec.Success {
			rec.Result = stringPtr(fmt.Sprintf("v%d", i))
		} else {
			rec.Error = stringPtr("failed")
		}
		records = append(records, rec)
	}
	return records
}

func TestJSONLogStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tool-executions.json")
	store := NewJSONLogStore(path)

	empty, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, empty)

	records := sampleRecords(3)
	require.NoError(t, store.Persist(records))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, records, loaded)
	assert.NoError(t, store.Close())

	require.NoError(t, os.WriteFile(path, []byte("[{"), 0644))
	_, err = store.Load()
	assert.Error(t, err)
}

func TestSQLiteLogStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "executions.db")
	store, err := NewSQLiteLogStore(path, 2)
	require.NoError(t, err)
	defer store.Close()

	empty, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, empty)

	records := sampleRecords(4)
	require.NoError(t, store.Persist(records[:2]))
	require.NoError(t, store.Persist(records[:3]))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, records[1:3], loaded)

	// The window slides: only the latest two survive.
	require.NoError(t, store.Persist(records[2:4]))
	loaded, err = store.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "exec_3_1700000000", loaded[0].ExecutionID)
	assert.Equal(t, "exec_4_1700000000", loaded[1].ExecutionID)
	assert.Nil(t, loaded[1].Result)
	require.NotNil(t, loaded[1].Error)
	assert.Equal(t, "failed", *loaded[1].Error)
}

func TestSQLiteLogStore_KeepsRowsMissingFromWindow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "executions.db")
	store, err := NewSQLiteLogStore(path, 0)
	require.NoError(t, err)
	defer store.Close()

	records := sampleRecords(4)
	require.NoError(t, store.Persist(records[:3]))

	// A process whose load failed persists only its own record.
	require.NoError(t, store.Persist(records[3:]))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, records, loaded)
}

func TestSQLiteLogStore_RequiresPath(t *testing.T) {
	_, err := NewSQLiteLogStore("", 0)
	assert.Error(t, err)
}

func TestLogWatcher(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tool-executions.json")

	var changes atomic.Int32
	watcher, err := NewLogWatcher(path, zerolog.Nop(), func() { changes.Add(1) })
	require.NoError(t, err)
	defer watcher.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0644))
	require.NoError(t, NewJSONLogStore(path).Persist(sampleRecords(1)))

	require.Eventually(t, func() bool { return changes.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
}
