// Package vectorindex manages the named vector collection holding daily
// summary points: lazy collection creation with runtime-discovered
// dimensionality, idempotent point upsert keyed by a deterministic
// date-derived id, and cosine similarity search.
package vectorindex

import (
	"context"
	"errors"
)

// ErrDimensionMismatch indicates a vector whose length disagrees with the
// collection's declared size. On collection ensure it is downgraded to a
// logged warning; on upsert it fails the write, because a wrong-sized
// vector would permanently corrupt the collection.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Point is one vector-plus-payload record, keyed by a deterministic id.
type Point struct {
	// ID is the deterministic identifier derived from the civil date.
	ID uint64

	// Vector is the embedding, collection-wide fixed length.
	Vector []float64

	// Payload carries the date, summary text, creation time and numeric
	// metadata alongside the vector.
	Payload map[string]interface{}
}

// ScoredPoint is a search match with its similarity score.
type ScoredPoint struct {
	ID      uint64
	Score   float64
	Payload map[string]interface{}
}

// Store defines the wire contract against a vector store backend.
//
// All backends (Qdrant, SQLite) must implement this interface. Distance
// metric is cosine throughout.
type Store interface {
	// CollectionInfo reports the declared vector size of the named
	// collection, or exists=false when it has not been created.
	CollectionInfo(ctx context.Context, name string) (size int, exists bool, err error)

	// CreateCollection creates the named collection with the given
	// vector size and cosine distance.
	CreateCollection(ctx context.Context, name string, vectorSize int) error

	// Upsert inserts the point or replaces any existing point with the
	// same id.
	Upsert(ctx context.Context, collection string, point *Point) error

	// Search returns the limit nearest points by cosine similarity,
	// ordered by descending score, payloads attached.
	Search(ctx context.Context, collection string, vector []float64, limit int) ([]*ScoredPoint, error)

	// Close closes the store and releases resources.
	Close() error
}
