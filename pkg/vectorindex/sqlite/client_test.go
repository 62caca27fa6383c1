package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifelog-io/lifelog-go/pkg/vectorindex"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := NewClient(&Config{DBPath: filepath.Join(t.TempDir(), "vectors.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestCollectionLifecycle(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	_, exists, err := client.CollectionInfo(ctx, "daily_summaries")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, client.CreateCollection(ctx, "daily_summaries", 4))

	size, exists, err := client.CollectionInfo(ctx, "daily_summaries")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, 4, size)
}

func TestUpsertReplacesById(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	require.NoError(t, client.CreateCollection(ctx, "daily_summaries", 2))

	id := vectorindex.PointID("2024-06-01")
	first := &vectorindex.Point{
		ID:      id,
		Vector:  []float64{1, 0},
		Payload: map[string]interface{}{"summary": "first"},
	}
	require.NoError(t, client.Upsert(ctx, "daily_summaries", first))

	second := &vectorindex.Point{
		ID:      id,
		Vector:  []float64{0, 1},
		Payload: map[string]interface{}{"summary": "second"},
	}
	require.NoError(t, client.Upsert(ctx, "daily_summaries", second))

	results, err := client.Search(ctx, "daily_summaries", []float64{0, 1}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, id, results[0].ID)
	assert.Equal(t, "second", results[0].Payload["summary"])
}

func TestSearchOrdersByCosineSimilarity(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	require.NoError(t, client.CreateCollection(ctx, "daily_summaries", 2))

	points := []*vectorindex.Point{
		{ID: 1, Vector: []float64{1, 0}, Payload: map[string]interface{}{"date": "2024-06-01"}},
		{ID: 2, Vector: []float64{0.9, 0.1}, Payload: map[string]interface{}{"date": "2024-06-02"}},
		{ID: 3, Vector: []float64{0, 1}, Payload: map[string]interface{}{"date": "2024-06-03"}},
	}
	for _, p := range points {
		require.NoError(t, client.Upsert(ctx, "daily_summaries", p))
	}

	results, err := client.Search(ctx, "daily_summaries", []float64{1, 0}, 2)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, uint64(1), results[0].ID)
	assert.Equal(t, uint64(2), results[1].ID)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestSearchLargePointIDRoundTrip(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	require.NoError(t, client.CreateCollection(ctx, "daily_summaries", 2))

	// Ids above math.MaxInt64 must survive the signed SQLite column.
	id := vectorindex.PointID("2024-06-01")
	require.Greater(t, id, uint64(1)<<63)

	point := &vectorindex.Point{ID: id, Vector: []float64{1, 1}}
	require.NoError(t, client.Upsert(ctx, "daily_summaries", point))

	results, err := client.Search(ctx, "daily_summaries", []float64{1, 1}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, id, results[0].ID)
}

func TestSearchEmptyCollection(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	require.NoError(t, client.CreateCollection(ctx, "daily_summaries", 2))

	results, err := client.Search(ctx, "daily_summaries", []float64{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}
