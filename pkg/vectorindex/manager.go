package vectorindex

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lifelog-io/lifelog-go/pkg/embedder"
)

// canaryText is the throwaway input used solely to discover the
// embedding model's vector dimensionality.
const canaryText = "dimensionality probe"

// Manager owns a single named collection in a vector store.
//
// It lazily ensures the collection exists with the correct
// dimensionality, memoizes the discovered dimensionality so the canary
// embedding is not repeated per operation, and performs point upsert and
// similarity search. The memoized state is per-instance, not global, so
// tests can construct a fresh Manager per case.
//
// Manager is safe for concurrent use.
type Manager struct {
	store      Store
	embedder   embedder.Provider
	collection string
	logger     *slog.Logger

	// mu guards dims and ensured. Re-running the ensure step is
	// idempotent, so stale state is safe to recompute.
	mu      sync.Mutex
	dims    int
	ensured bool
}

// NewManager creates a Manager for the named collection.
//
// Parameters:
//   - store: Vector store backend (Qdrant, SQLite)
//   - emb: Embedding provider for texts and queries
//   - collection: Collection name, e.g. "daily_summaries"
//   - logger: Structured logger for drift warnings and degraded modes
func NewManager(store Store, emb embedder.Provider, collection string, logger *slog.Logger) *Manager {
	return &Manager{
		store:      store,
		embedder:   emb,
		collection: collection,
		logger:     logger,
	}
}

// EnsureCollection makes sure the collection exists and its declared
// dimensionality agrees with the embedding provider.
//
// If the collection does not exist it is created with a canary-derived
// vector size. If it exists with a different size than a fresh canary
// reports, a non-fatal warning is emitted and the collection is left
// as-is; the declared size stays authoritative for subsequent writes.
func (m *Manager) EnsureCollection(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ensureLocked(ctx)
}

func (m *Manager) ensureLocked(ctx context.Context) error {
	if m.ensured {
		return nil
	}

	size, exists, err := m.store.CollectionInfo(ctx, m.collection)
	if err != nil {
		return fmt.Errorf("EnsureCollection: %w", err)
	}

	probed, err := m.probeDimensions(ctx)
	if err != nil {
		return fmt.Errorf("EnsureCollection: %w", err)
	}

	if !exists {
		if err := m.store.CreateCollection(ctx, m.collection, probed); err != nil {
			return fmt.Errorf("EnsureCollection: %w", err)
		}
		m.logger.Info("created collection",
			"collection", m.collection, "vector_size", probed)
		m.dims = probed
	} else {
		if size != probed {
			m.logger.Warn("collection vector size mismatch, collection left as-is",
				"collection", m.collection, "declared", size, "probed", probed,
				"err", ErrDimensionMismatch)
		}
		m.dims = size
	}

	m.ensured = true
	return nil
}

// probeDimensions issues one canary embedding call and returns the
// resulting vector length.
func (m *Manager) probeDimensions(ctx context.Context) (int, error) {
	vec, err := m.embedder.Embed(ctx, canaryText)
	if err != nil {
		return 0, fmt.Errorf("canary embedding: %w", err)
	}
	if len(vec) == 0 {
		return 0, fmt.Errorf("canary embedding: empty vector")
	}
	return len(vec), nil
}

// Dimensions returns the memoized collection dimensionality, zero before
// the first successful EnsureCollection.
func (m *Manager) Dimensions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dims
}

// UpsertSummary embeds the summary text and creates or replaces the
// point for the date.
//
// The point id is PointID(date), so indexing the same date twice leaves
// exactly one point whose payload reflects the second write. An
// embedding failure fails the whole call: no partial point is ever
// written, and a zero-vector entry would permanently pollute the corpus.
func (m *Manager) UpsertSummary(ctx context.Context, date, summary string, metadata map[string]interface{}) error {
	m.mu.Lock()
	if err := m.ensureLocked(ctx); err != nil {
		m.mu.Unlock()
		return err
	}
	dims := m.dims
	m.mu.Unlock()

	// Embed outside the lock; a slow provider must not stall searches.
	vec, err := m.embedder.Embed(ctx, summary)
	if err != nil {
		return fmt.Errorf("UpsertSummary: embed: %w", err)
	}
	if len(vec) != dims {
		return fmt.Errorf("UpsertSummary: got %d-dimensional vector for %d-dimensional collection %q: %w",
			len(vec), dims, m.collection, ErrDimensionMismatch)
	}

	payload := map[string]interface{}{
		"date":       date,
		"summary":    summary,
		"created_at": time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range metadata {
		payload[k] = v
	}

	point := &Point{
		ID:      PointID(date),
		Vector:  vec,
		Payload: payload,
	}

	if err := m.store.Upsert(ctx, m.collection, point); err != nil {
		return fmt.Errorf("UpsertSummary: %w", err)
	}

	m.logger.Info("stored daily summary point",
		"collection", m.collection, "date", date, "point_id", point.ID)
	return nil
}

// Search embeds the query text and returns the limit nearest points by
// cosine similarity, ordered by descending score.
//
// An embedding failure during search is downgraded to a zero-vector
// query rather than an error, trading search quality for availability.
func (m *Manager) Search(ctx context.Context, query string, limit int) ([]*ScoredPoint, error) {
	m.mu.Lock()
	if err := m.ensureLocked(ctx); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	dims := m.dims
	m.mu.Unlock()

	vec, err := m.embedder.Embed(ctx, query)
	if err != nil {
		m.logger.Warn("query embedding failed, degrading to zero vector",
			"collection", m.collection, "err", err)
		vec = make([]float64, dims)
	}

	results, err := m.store.Search(ctx, m.collection, vec, limit)
	if err != nil {
		return nil, fmt.Errorf("Search: %w", err)
	}
	return results, nil
}

// Close closes the underlying store.
func (m *Manager) Close() error {
	return m.store.Close()
}
