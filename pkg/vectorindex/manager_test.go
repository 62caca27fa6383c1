package vectorindex

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	dims  int
	err   error
	calls int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	vec := make([]float64, f.dims)
	for i := range vec {
		vec[i] = float64(len(text)%7) + float64(i)
	}
	return vec, nil
}

func (f *fakeEmbedder) Close() error { return nil }

type fakeStore struct {
	size    int
	exists  bool
	creates int
	points  map[uint64]*Point
	results []*ScoredPoint

	lastSearchVector []float64
}

func newFakeStore() *fakeStore {
	return &fakeStore{points: map[uint64]*Point{}}
}

func (f *fakeStore) CollectionInfo(ctx context.Context, name string) (int, bool, error) {
	return f.size, f.exists, nil
}

func (f *fakeStore) CreateCollection(ctx context.Context, name string, vectorSize int) error {
	f.creates++
	f.size = vectorSize
	f.exists = true
	return nil
}

func (f *fakeStore) Upsert(ctx context.Context, collection string, point *Point) error {
	f.points[point.ID] = point
	return nil
}

func (f *fakeStore) Search(ctx context.Context, collection string, vector []float64, limit int) ([]*ScoredPoint, error) {
	f.lastSearchVector = vector
	if limit < len(f.results) {
		return f.results[:limit], nil
	}
	return f.results, nil
}

func (f *fakeStore) Close() error { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEnsureCollectionCreatesWithProbedDims(t *testing.T) {
	store := newFakeStore()
	emb := &fakeEmbedder{dims: 4}
	m := NewManager(store, emb, "daily_summaries", discardLogger())

	require.NoError(t, m.EnsureCollection(context.Background()))

	assert.Equal(t, 1, store.creates)
	assert.Equal(t, 4, store.size)
	assert.Equal(t, 4, m.Dimensions())
}

func TestEnsureCollectionProbesOnce(t *testing.T) {
	store := newFakeStore()
	emb := &fakeEmbedder{dims: 4}
	m := NewManager(store, emb, "daily_summaries", discardLogger())

	require.NoError(t, m.EnsureCollection(context.Background()))
	require.NoError(t, m.EnsureCollection(context.Background()))
	require.NoError(t, m.EnsureCollection(context.Background()))

	assert.Equal(t, 1, emb.calls)
	assert.Equal(t, 1, store.creates)
}

func TestEnsureCollectionMismatchKeepsDeclaredSize(t *testing.T) {
	store := newFakeStore()
	store.exists = true
	store.size = 8
	emb := &fakeEmbedder{dims: 4}
	m := NewManager(store, emb, "daily_summaries", discardLogger())

	// Mismatch is a warning, not an error; the declared size wins.
	require.NoError(t, m.EnsureCollection(context.Background()))
	assert.Equal(t, 0, store.creates)
	assert.Equal(t, 8, m.Dimensions())
}

func TestUpsertSummaryStoresPoint(t *testing.T) {
	store := newFakeStore()
	emb := &fakeEmbedder{dims: 4}
	m := NewManager(store, emb, "daily_summaries", discardLogger())

	meta := map[string]interface{}{"event_count": 2}
	require.NoError(t, m.UpsertSummary(context.Background(), "2024-06-01", "a quiet day", meta))

	point, ok := store.points[PointID("2024-06-01")]
	require.True(t, ok)
	assert.Len(t, point.Vector, 4)
	assert.Equal(t, "2024-06-01", point.Payload["date"])
	assert.Equal(t, "a quiet day", point.Payload["summary"])
	assert.Equal(t, 2, point.Payload["event_count"])
	assert.NotEmpty(t, point.Payload["created_at"])
}

func TestUpsertSummaryOverwritesSameDate(t *testing.T) {
	store := newFakeStore()
	emb := &fakeEmbedder{dims: 4}
	m := NewManager(store, emb, "daily_summaries", discardLogger())

	require.NoError(t, m.UpsertSummary(context.Background(), "2024-06-01", "first", nil))
	require.NoError(t, m.UpsertSummary(context.Background(), "2024-06-01", "second", nil))

	assert.Len(t, store.points, 1)
	assert.Equal(t, "second", store.points[PointID("2024-06-01")].Payload["summary"])
}

func TestUpsertSummaryEmbedFailureIsFatal(t *testing.T) {
	store := newFakeStore()
	store.exists = true
	store.size = 4
	emb := &fakeEmbedder{dims: 4}
	m := NewManager(store, emb, "daily_summaries", discardLogger())
	require.NoError(t, m.EnsureCollection(context.Background()))

	emb.err = errors.New("model offline")
	err := m.UpsertSummary(context.Background(), "2024-06-01", "a day", nil)
	require.Error(t, err)
	assert.Empty(t, store.points)
}

func TestUpsertSummaryDimensionMismatch(t *testing.T) {
	store := newFakeStore()
	store.exists = true
	store.size = 8
	emb := &fakeEmbedder{dims: 4}
	m := NewManager(store, emb, "daily_summaries", discardLogger())

	err := m.UpsertSummary(context.Background(), "2024-06-01", "a day", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Empty(t, store.points)
}

// gatedEmbedder parks the embedding call for one chosen text until
// released, so tests can hold an upsert mid-embed.
type gatedEmbedder struct {
	fakeEmbedder
	slowText string
	started  chan struct{}
	release  chan struct{}
}

func (g *gatedEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if text == g.slowText {
		close(g.started)
		<-g.release
	}
	return g.fakeEmbedder.Embed(ctx, text)
}

func TestUpsertSummaryDoesNotBlockSearch(t *testing.T) {
	store := newFakeStore()
	emb := &gatedEmbedder{
		fakeEmbedder: fakeEmbedder{dims: 4},
		slowText:     "a slow day",
		started:      make(chan struct{}),
		release:      make(chan struct{}),
	}
	m := NewManager(store, emb, "daily_summaries", discardLogger())
	require.NoError(t, m.EnsureCollection(context.Background()))

	done := make(chan error, 1)
	go func() {
		done <- m.UpsertSummary(context.Background(), "2024-06-01", "a slow day", nil)
	}()
	<-emb.started

	searched := make(chan error, 1)
	go func() {
		_, err := m.Search(context.Background(), "anything", 5)
		searched <- err
	}()

	select {
	case err := <-searched:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("search blocked behind an in-flight upsert embedding")
	}

	close(emb.release)
	require.NoError(t, <-done)
	assert.Len(t, store.points, 1)
}

func TestSearchDegradesToZeroVectorOnEmbedFailure(t *testing.T) {
	store := newFakeStore()
	store.exists = true
	store.size = 4
	emb := &fakeEmbedder{dims: 4}
	m := NewManager(store, emb, "daily_summaries", discardLogger())
	require.NoError(t, m.EnsureCollection(context.Background()))

	store.results = []*ScoredPoint{{ID: 1, Score: 0.5}}
	emb.err = errors.New("model offline")

	results, err := m.Search(context.Background(), "anything", 5)
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, make([]float64, 4), store.lastSearchVector)
}

func TestSearchPassesQueryVector(t *testing.T) {
	store := newFakeStore()
	emb := &fakeEmbedder{dims: 4}
	m := NewManager(store, emb, "daily_summaries", discardLogger())

	_, err := m.Search(context.Background(), "when did I sleep best", 5)
	require.NoError(t, err)
	require.Len(t, store.lastSearchVector, 4)
	assert.NotEqual(t, make([]float64, 4), store.lastSearchVector)
}
