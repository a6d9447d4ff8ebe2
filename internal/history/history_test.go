// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/slidegrid/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func record(source string, pages int, at time.Time) types.ConversionRecord {
	return types.ConversionRecord{
		SourcePath:  source,
		OutputPath:  "/lib/" + filepath.Base(source),
		Mode:        types.ModeLibrary,
		DocumentID:  "id-" + filepath.Base(source),
		VisibleName: filepath.Base(source),
		PageCount:   pages,
		ConvertedAt: at,
	}
}

func TestRecordAndList(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.Record(ctx, record("/in/a.pdf", 3, base)))
	require.NoError(t, s.Record(ctx, record("/in/b.pdf", 5, base.Add(time.Minute))))
	require.NoError(t, s.Record(ctx, record("/in/a.pdf", 4, base.Add(2*time.Minute))))

	tests := []struct {
		name    string
		opts    QueryOptions
		sources []string
		pages   []int
	}{
		{"all newest first", QueryOptions{}, []string{"/in/a.pdf", "/in/b.pdf", "/in/a.pdf"}, []int{4, 5, 3}},
		{"limit", QueryOptions{Limit: 1}, []string{"/in/a.pdf"}, []int{4}},
		{"by source", QueryOptions{Source: "/in/a.pdf"}, []string{"/in/a.pdf", "/in/a.pdf"}, []int{4, 3}},
		{"unknown source", QueryOptions{Source: "/in/zzz.pdf"}, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.List(ctx, tt.opts)
			require.NoError(t, err)
			require.Len(t, got, len(tt.sources))
			for i := range got {
				assert.Equal(t, tt.sources[i], got[i].SourcePath)
				assert.Equal(t, tt.pages[i], got[i].PageCount)
			}
		})
	}
}

func TestRecordRoundTripsFields(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	at := time.Date(2026, 3, 1, 12, 30, 15, 123000000, time.UTC)

	want := record("/in/deck.pdf", 9, at)
	require.NoError(t, s.Record(ctx, want))

	got, err := s.List(ctx, QueryOptions{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, want.OutputPath, got[0].OutputPath)
	assert.Equal(t, types.ModeLibrary, got[0].Mode)
	assert.Equal(t, "id-deck.pdf", got[0].DocumentID)
	assert.Equal(t, "deck.pdf", got[0].VisibleName)
	assert.True(t, at.Equal(got[0].ConvertedAt))
}

func TestReopenKeepsRecords(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Record(ctx, record("/in/a.pdf", 1, time.Now())))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.List(ctx, QueryOptions{})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Record(ctx, record("/in/a.pdf", 3, base)))
	require.NoError(t, s.Record(ctx, record("/in/b.pdf", 5, base.Add(time.Minute))))

	t.Run("yaml oldest first", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, s.Export(ctx, &buf, FormatYAML))

		var got []types.ConversionRecord
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
		require.Len(t, got, 2)
		assert.Equal(t, "/in/a.pdf", got[0].SourcePath)
		assert.Equal(t, "/in/b.pdf", got[1].SourcePath)
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, s.Export(ctx, &buf, FormatJSON))

		var got []map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		require.Len(t, got, 2)
		assert.Equal(t, float64(5), got[1]["page_count"])
		assert.Equal(t, "library", got[1]["mode"])
	})

	t.Run("unknown format", func(t *testing.T) {
		err := s.Export(ctx, &bytes.Buffer{}, "csv")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown export format")
	})
}

func TestExportEmpty(t *testing.T) {
	s := testStore(t)
	var buf bytes.Buffer
	require.NoError(t, s.Export(context.Background(), &buf, FormatJSON))
	assert.Equal(t, "[]\n", buf.String())
}
