// Package sqlite provides a SQLite vector store backend with in-memory
// cosine similarity search. Suitable for local and embedded deployments
// where running a dedicated vector database is not worth the overhead.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lifelog-io/lifelog-go/pkg/vectorindex"
)

// Client implements vectorindex.Store backed by a SQLite database.
type Client struct {
	db *sql.DB
}

// Config is the configuration for the SQLite vector store.
// DBPath: Database file path, use ":memory:" for an in-memory store
type Config struct {
	DBPath string
}

// NewClient creates a new SQLite vector store client.
func NewClient(cfg *Config) (*Client, error) {
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "vectors.db"
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	client := &Client{db: db}
	if err := client.initTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init tables: %w", err)
	}

	return client, nil
}

func (c *Client) initTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS collections (
			name TEXT PRIMARY KEY,
			vector_size INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS points (
			collection TEXT NOT NULL,
			id INTEGER NOT NULL,
			vector TEXT NOT NULL,
			payload TEXT,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (collection, id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_points_collection ON points(collection)`,
	}

	for _, query := range queries {
		if _, err := c.db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}

// CollectionInfo reports the declared vector size of the collection.
func (c *Client) CollectionInfo(ctx context.Context, name string) (int, bool, error) {
	var size int
	err := c.db.QueryRowContext(ctx,
		"SELECT vector_size FROM collections WHERE name = ?", name).Scan(&size)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("CollectionInfo: %w", err)
	}
	return size, true, nil
}

// CreateCollection registers the collection with its vector size.
func (c *Client) CreateCollection(ctx context.Context, name string, vectorSize int) error {
	_, err := c.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO collections (name, vector_size) VALUES (?, ?)",
		name, vectorSize)
	if err != nil {
		return fmt.Errorf("CreateCollection: %w", err)
	}
	return nil
}

// Upsert inserts or replaces the point with its id.
func (c *Client) Upsert(ctx context.Context, collection string, point *vectorindex.Point) error {
	vectorJSON, err := json.Marshal(point.Vector)
	if err != nil {
		return fmt.Errorf("Upsert: marshal vector: %w", err)
	}

	var payloadJSON []byte
	if point.Payload != nil {
		payloadJSON, err = json.Marshal(point.Payload)
		if err != nil {
			return fmt.Errorf("Upsert: marshal payload: %w", err)
		}
	}

	// SQLite INTEGER is signed 64-bit; the uint64 id round-trips through int64.
	_, err = c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO points (collection, id, vector, payload, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		collection, int64(point.ID), string(vectorJSON), string(payloadJSON), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("Upsert: %w", err)
	}
	return nil
}

// Search scans all points in the collection and returns the limit nearest
// by cosine similarity, sorted by score descending.
func (c *Client) Search(ctx context.Context, collection string, vector []float64, limit int) ([]*vectorindex.ScoredPoint, error) {
	rows, err := c.db.QueryContext(ctx,
		"SELECT id, vector, payload FROM points WHERE collection = ?", collection)
	if err != nil {
		return nil, fmt.Errorf("Search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var points []*vectorindex.ScoredPoint
	for rows.Next() {
		var id int64
		var vectorStr string
		var payloadStr sql.NullString
		if err := rows.Scan(&id, &vectorStr, &payloadStr); err != nil {
			return nil, fmt.Errorf("Search: scan row: %w", err)
		}

		var stored []float64
		if err := json.Unmarshal([]byte(vectorStr), &stored); err != nil {
			return nil, fmt.Errorf("Search: parse vector: %w", err)
		}

		point := &vectorindex.ScoredPoint{
			ID:    uint64(id),
			Score: cosineSimilarity(vector, stored),
		}
		if payloadStr.Valid && payloadStr.String != "" {
			if err := json.Unmarshal([]byte(payloadStr.String), &point.Payload); err != nil {
				return nil, fmt.Errorf("Search: parse payload: %w", err)
			}
		}
		points = append(points, point)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Search: %w", err)
	}

	return sortByScore(points, limit), nil
}

// Close closes the database connection.
func (c *Client) Close() error {
	return c.db.Close()
}

// cosineSimilarity calculates the cosine similarity between two vectors.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// sortByScore sorts points by score (descending) and limits the number of results.
//
// Uses a simple bubble sort which is sufficient for small datasets.
func sortByScore(points []*vectorindex.ScoredPoint, limit int) []*vectorindex.ScoredPoint {
	n := len(points)
	for i := 0; i < n-1; i++ {
		for j := 0; j < n-i-1; j++ {
			if points[j].Score < points[j+1].Score {
				points[j], points[j+1] = points[j+1], points[j]
			}
		}
	}

	if limit > 0 && len(points) > limit {
		return points[:limit]
	}

	return points
}
