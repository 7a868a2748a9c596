package store

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leowmjw/go-countdown-timeline/pkg/plan"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "plans.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func stores(t *testing.T) map[string]DocumentStore {
	return map[string]DocumentStore{
		"sqlite": newTestStore(t),
		"memory": NewMemoryStore(),
	}
}

func TestSaveLoad(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := s.Load(ctx, "raid")
			assert.ErrorIs(t, err, ErrNotFound)

			doc := plan.Default()
			doc.ChartTitle = "Raid night"
			require.NoError(t, s.Save(ctx, "raid", doc))

			got, err := s.Load(ctx, "raid")
			require.NoError(t, err)
			assert.Equal(t, doc, got)

			// save replaces
			doc.TotalDuration = 420
			require.NoError(t, s.Save(ctx, "raid", doc))
			got, err = s.Load(ctx, "raid")
			require.NoError(t, err)
			assert.Equal(t, 420.0, got.TotalDuration)
		})
	}
}

func TestListDelete(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Save(ctx, "b", plan.Default()))
			require.NoError(t, s.Save(ctx, "a", plan.Default()))

			list, err := s.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, "a", list[0].ID)
			assert.Equal(t, "b", list[1].ID)
			assert.False(t, list[0].UpdatedAt.IsZero())

			require.NoError(t, s.Delete(ctx, "a"))
			require.NoError(t, s.Delete(ctx, "missing"))

			list, err = s.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, "b", list[0].ID)
		})
	}
}

func TestMemoryStoreIsolatesCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	doc := plan.Default()
	require.NoError(t, m.Save(ctx, "p", doc))

	doc.Streams[0].Intervals[0].Start = 100
	got, err := m.Load(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, 5.0, got.Streams[0].Intervals[0].Start)
}

func TestLoadCorruptBody(t *testing.T) {
	s := newTestStore(t)
	_, err := s.db.Exec(`INSERT INTO plans (id, body, updated_at) VALUES ('bad', '{"totalDuration":', 'x')`)
	require.NoError(t, err)

	_, err = s.Load(context.Background(), "bad")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestLoadOrDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	ctx := context.Background()
	s := newTestStore(t)

	doc := LoadOrDefault(ctx, s, "missing", logger)
	assert.Equal(t, plan.Default(), doc)
	assert.Contains(t, buf.String(), "No saved plan")

	_, err := s.db.Exec(`INSERT INTO plans (id, body, updated_at) VALUES ('bad', 'not json', 'x')`)
	require.NoError(t, err)
	buf.Reset()
	doc = LoadOrDefault(ctx, s, "bad", logger)
	assert.Equal(t, plan.Default(), doc)
	assert.Contains(t, buf.String(), "Failed to load plan")

	saved := plan.Default()
	saved.ChartTitle = "mine"
	require.NoError(t, s.Save(ctx, "mine", saved))
	assert.Equal(t, "mine", LoadOrDefault(ctx, s, "mine", logger).ChartTitle)
}
