package history

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gait-analysis/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "nested", "history.json"))
}

func TestAppendFillsIDAndTimestamp(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	record := &models.AnalysisRecord{
		DatasetID:    "clinic",
		SequenceID:   "walk-1",
		OverallLevel: "good",
		Result:       json.RawMessage(`{}`),
	}
	require.NoError(t, store.Append(record))

	assert.NotEmpty(t, record.ID)
	assert.False(t, record.Timestamp.IsZero())

	count, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRecentReturnsNewestFirst(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	for i := 0; i < 5; i++ {
		record := &models.AnalysisRecord{
			SequenceID: fmt.Sprintf("walk-%d", i),
			Timestamp:  time.Date(2024, 6, 1, 10, i, 0, 0, time.UTC),
			Result:     json.RawMessage(`{}`),
		}
		require.NoError(t, store.Append(record))
	}

	records, err := store.Recent(3)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "walk-4", records[0].SequenceID)
	assert.Equal(t, "walk-3", records[1].SequenceID)
	assert.Equal(t, "walk-2", records[2].SequenceID)

	all, err := store.Recent(0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestRecentOnEmptyStore(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	records, err := store.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, records)

	count, err := store.Count()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestAppendPreservesExistingRecords(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	first := &models.AnalysisRecord{SequenceID: "a", Result: json.RawMessage(`{"x":1}`)}
	require.NoError(t, store.Append(first))

	second := &models.AnalysisRecord{SequenceID: "b", Result: json.RawMessage(`{"x":2}`)}
	require.NoError(t, store.Append(second))

	records, err := store.Recent(0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "b", records[0].SequenceID)
	assert.Equal(t, "a", records[1].SequenceID)
	assert.JSONEq(t, `{"x":1}`, string(records[1].Result))
}
