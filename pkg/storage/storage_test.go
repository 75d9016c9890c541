package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritzau/casegraph/pkg/model"
)

type persister interface {
	LoadCases(ctx context.Context) ([]model.Case, error)
	SaveCases(ctx context.Context, cases []model.Case) error
}

func backends(t *testing.T) map[string]persister {
	t.Helper()
	dir := t.TempDir()

	db, err := OpenSQLite(context.Background(), filepath.Join(dir, "cases.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return map[string]persister{
		"json":   NewJSONFile(filepath.Join(dir, "nested", DataFileName)),
		"sqlite": db,
	}
}

func TestFreshStoreHasNoData(t *testing.T) {
	for name, p := range backends(t) {
		t.Run(name, func(t *testing.T) {
			cases, err := p.LoadCases(context.Background())
			require.NoError(t, err)
			assert.Nil(t, cases)
		})
	}
}

func TestRoundTripReproducesGraph(t *testing.T) {
	for name, p := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			original := model.SampleCases()

			require.NoError(t, p.SaveCases(ctx, original))
			loaded, err := p.LoadCases(ctx)
			require.NoError(t, err)

			if diff := cmp.Diff(original, loaded, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
			for i := range original {
				assert.Equal(t, original[i].Nodes, loaded[i].Nodes)
				assert.Equal(t, original[i].Edges, loaded[i].Edges)
			}
		})
	}
}

func TestEmptyListIsKept(t *testing.T) {
	for name, p := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, p.SaveCases(ctx, model.SampleCases()))
			require.NoError(t, p.SaveCases(ctx, []model.Case{}))

			cases, err := p.LoadCases(ctx)
			require.NoError(t, err)
			assert.NotNil(t, cases)
			assert.Empty(t, cases)
		})
	}
}

func TestSaveOverwritesPreviousList(t *testing.T) {
	for name, p := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			samples := model.SampleCases()
			require.NoError(t, p.SaveCases(ctx, samples))
			require.NoError(t, p.SaveCases(ctx, samples[2:3]))

			cases, err := p.LoadCases(ctx)
			require.NoError(t, err)
			require.Len(t, cases, 1)
			assert.Equal(t, "case-003", cases[0].ID)
		})
	}
}

func TestJSONFileIsPrettyAndLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	f := NewJSONFile(filepath.Join(dir, DataFileName))

	require.NoError(t, f.SaveCases(context.Background(), model.SampleCases()[:1]))

	data, err := os.ReadFile(f.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  {\n    \"id\": \"case-001\"")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestJSONFileCorruptContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), DataFileName)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewJSONFile(path).LoadCases(context.Background())
	assert.Error(t, err)
}

func TestJSONFileBlankContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), DataFileName)
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o644))

	cases, err := NewJSONFile(path).LoadCases(context.Background())
	require.NoError(t, err)
	assert.Nil(t, cases)
}

func TestSQLiteReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cases.db")

	db, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, db.SaveCases(ctx, model.SampleCases()))
	require.NoError(t, db.Close())

	db, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	cases, err := db.LoadCases(ctx)
	require.NoError(t, err)
	require.Len(t, cases, 4)
	assert.Equal(t, "case-001", cases[0].ID)
	assert.Equal(t, "case-004", cases[3].ID)
}
