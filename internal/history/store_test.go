// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/assetconv/internal/convert"
	"github.com/pdiddy/assetconv/pkg/types"
)

var _ convert.Recorder = (*Store)(nil)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(types.HistoryConfig{DBPath: filepath.Join(t.TempDir(), "nested", "history.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func record(asset string, status types.ConversionStatus, started time.Time) types.ConversionRecord {
	return types.ConversionRecord{
		Asset:     asset,
		Result:    asset + ".out",
		BasePath:  "/assets",
		Command:   "lessc /assets/" + asset,
		ExitCode:  map[types.ConversionStatus]int{types.ConversionDone: 0, types.ConversionFailed: 1}[status],
		Stderr:    "stderr of " + asset,
		Status:    status,
		StartedAt: started,
		Duration:  1500 * time.Millisecond,
	}
}

func TestOpenCreatesDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "history.db")
	s, err := Open(types.HistoryConfig{DBPath: path})
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	require.NoError(t, err)

	// Reopening an existing database keeps the schema.
	s2, err := Open(types.HistoryConfig{DBPath: path})
	require.NoError(t, err)
	require.NoError(t, s2.Close())
}

func TestRecordAndList(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.UTC)

	require.NoError(t, s.Record(ctx, record("a.less", types.ConversionDone, start)))
	require.NoError(t, s.Record(ctx, record("b.scss", types.ConversionFailed, start.Add(time.Minute))))
	require.NoError(t, s.Record(ctx, record("a.less", types.ConversionFailed, start.Add(2*time.Minute))))

	all, err := s.List(ctx, QueryOptions{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a.less", all[0].Asset, "newest first")
	assert.Equal(t, types.ConversionFailed, all[0].Status)
	assert.Equal(t, "b.scss", all[1].Asset)
	assert.Equal(t, record("a.less", types.ConversionDone, start), all[2])

	byAsset, err := s.List(ctx, QueryOptions{Asset: "a.less"})
	require.NoError(t, err)
	assert.Len(t, byAsset, 2)

	failed, err := s.List(ctx, QueryOptions{Status: types.ConversionFailed})
	require.NoError(t, err)
	assert.Len(t, failed, 2)

	both, err := s.List(ctx, QueryOptions{Asset: "a.less", Status: types.ConversionDone})
	require.NoError(t, err)
	assert.Len(t, both, 1)

	limited, err := s.List(ctx, QueryOptions{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestListEmpty(t *testing.T) {
	s := testStore(t)
	got, err := s.List(context.Background(), QueryOptions{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPrune(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	cutoff := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.Record(ctx, record("old.less", types.ConversionDone, cutoff.Add(-time.Nanosecond))))
	require.NoError(t, s.Record(ctx, record("new.less", types.ConversionDone, cutoff.Add(500*time.Millisecond))))

	n, err := s.Prune(ctx, cutoff)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	left, err := s.List(ctx, QueryOptions{})
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "new.less", left[0].Asset)
}

func TestWriteYAMLAndJSON(t *testing.T) {
	recs := []types.ConversionRecord{record("a.less", types.ConversionDone, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))}

	var y bytes.Buffer
	require.NoError(t, WriteYAML(&y, recs))
	var fromYAML []map[string]any
	require.NoError(t, yaml.Unmarshal(y.Bytes(), &fromYAML))
	require.Len(t, fromYAML, 1)
	assert.Equal(t, "a.less", fromYAML[0]["asset"])
	assert.Equal(t, "converted", fromYAML[0]["status"])

	var j bytes.Buffer
	require.NoError(t, WriteJSON(&j, nil))
	assert.JSONEq(t, "[]", j.String())

	j.Reset()
	require.NoError(t, WriteJSON(&j, recs))
	var fromJSON []types.ConversionRecord
	require.NoError(t, json.Unmarshal(j.Bytes(), &fromJSON))
	assert.Equal(t, recs[0].Command, fromJSON[0].Command)
}
