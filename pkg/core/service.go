package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"

	"github.com/lifelog-io/lifelog-go/pkg/embedder"
	ollamaEmbedder "github.com/lifelog-io/lifelog-go/pkg/embedder/ollama"
	openaiEmbedder "github.com/lifelog-io/lifelog-go/pkg/embedder/openai"
	"github.com/lifelog-io/lifelog-go/pkg/llm"
	ollamaLLM "github.com/lifelog-io/lifelog-go/pkg/llm/ollama"
	openaiLLM "github.com/lifelog-io/lifelog-go/pkg/llm/openai"
	"github.com/lifelog-io/lifelog-go/pkg/logging"
	"github.com/lifelog-io/lifelog-go/pkg/metricstore"
	mysqlStore "github.com/lifelog-io/lifelog-go/pkg/metricstore/mysql"
	postgresStore "github.com/lifelog-io/lifelog-go/pkg/metricstore/postgres"
	sqliteStore "github.com/lifelog-io/lifelog-go/pkg/metricstore/sqlite"
	"github.com/lifelog-io/lifelog-go/pkg/snapshot"
	"github.com/lifelog-io/lifelog-go/pkg/vectorindex"
	qdrantIndex "github.com/lifelog-io/lifelog-go/pkg/vectorindex/qdrant"
	sqliteIndex "github.com/lifelog-io/lifelog-go/pkg/vectorindex/sqlite"
)

// Limits applied to API inputs.
const (
	// maxBulkDays caps the size of a bulk creation range.
	maxBulkDays = 30

	// maxQueryLimit caps how many matches a query may request.
	maxQueryLimit = 30

	// defaultQueryLimit is used when the caller passes limit <= 0.
	defaultQueryLimit = 5
)

// recentQueryText is the broad probe used to pull back summaries for the
// recency listing; results are re-sorted by date afterwards.
const recentQueryText = "recent daily activities"

// Client is the main Lifelog client for daily summary management.
//
// It aggregates one day of tracked life data into a snapshot, turns it
// into a prose summary, indexes the summary as a vector point, and
// answers natural-language questions over the indexed history.
//
// The client is thread-safe and can be used concurrently from multiple
// goroutines.
//
// Example usage:
//
//	config, _ := core.LoadConfigFromEnv()
//	client, _ := core.NewClient(config)
//	defer client.Close()
//
//	result, _ := client.CreateDailySummary(ctx, "2024-06-01")
type Client struct {
	// config contains the client configuration.
	config *Config

	// metrics is the store tracked life data is read from.
	metrics metricstore.Store

	// builder aggregates one day of metrics into a snapshot.
	builder *snapshot.Builder

	// llm generates summary and answer text.
	llm llm.Provider

	// index manages the summary vector collection.
	index *vectorindex.Manager

	// loc is the home timezone all day boundaries are anchored in.
	loc *time.Location

	// snowflakeNode generates ids for bulk run correlation.
	snowflakeNode *snowflake.Node

	// logger is the structured logger.
	logger *slog.Logger

	// mu protects concurrent access to the client.
	mu sync.RWMutex
}

// NewClient creates a new Lifelog client.
//
// The client is initialized with:
//   - Metric store (SQLite, PostgreSQL, or MySQL)
//   - Vector store (Qdrant or SQLite)
//   - LLM provider (OpenAI or Ollama)
//   - Embedding provider (OpenAI or Ollama)
//
// Parameters:
//   - cfg: Configuration containing timezone, storage, LLM, and embedding settings
//
// Returns a new Client instance, or an error if initialization fails.
func NewClient(cfg *Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tz := cfg.Timezone
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, NewClientError("NewClient", fmt.Errorf("%w: unknown timezone %q", ErrInvalidConfig, tz))
	}

	store, err := initMetricStore(cfg.MetricStore)
	if err != nil {
		return nil, err
	}

	vectorStore, err := initVectorStore(cfg.VectorStore)
	if err != nil {
		closeAll(store)
		return nil, err
	}

	llmProvider, err := initLLM(cfg.LLM)
	if err != nil {
		closeAll(store, vectorStore)
		return nil, err
	}

	embedderProvider, err := initEmbedder(cfg.Embedder)
	if err != nil {
		closeAll(store, vectorStore, llmProvider)
		return nil, err
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		closeAll(store, vectorStore, llmProvider, embedderProvider)
		return nil, NewClientError("NewClient", err)
	}

	logger := logging.Default()

	return &Client{
		config:        cfg,
		metrics:       store,
		builder:       snapshot.NewBuilder(store, loc, logger),
		llm:           llmProvider,
		index:         vectorindex.NewManager(vectorStore, embedderProvider, cfg.VectorStore.Collection, logger),
		loc:           loc,
		snowflakeNode: node,
		logger:        logger,
	}, nil
}

// closeAll releases the providers initialized before a NewClient failure.
func closeAll(closers ...interface{ Close() error }) {
	for _, c := range closers {
		_ = c.Close()
	}
}

// CreateDailySummary aggregates, summarizes, and indexes one day.
//
// If date is empty, it defaults to the local calendar day immediately
// preceding now in the configured timezone. Indexing the same date twice
// overwrites the previous point.
//
// Parameters:
//   - ctx: Context for cancellation
//   - date: The day to summarize, formatted YYYY-MM-DD, or empty for yesterday
//
// Returns the summary with its structured metadata, or an error wrapped
// in a SummaryError naming the failed pipeline stage.
func (c *Client) CreateDailySummary(ctx context.Context, date string) (*SummaryResult, error) {
	if date == "" {
		date = time.Now().In(c.loc).AddDate(0, 0, -1).Format(dateLayout)
	}

	window, err := ResolveDayWindow(date, c.loc)
	if err != nil {
		return nil, err
	}

	c.logger.Info("creating daily summary",
		"date", date, "window_start", window.Start, "window_end", window.End)

	snap, err := c.builder.Build(ctx, date, window.Start, window.End)
	if err != nil {
		return nil, NewSummaryError(date, StageAggregate, fmt.Errorf("%w: %v", ErrStorageOperation, err))
	}
	if len(snap.Ambiguities) > 0 {
		c.logger.Warn("ambiguous aggregation resolved by latest record",
			"date", date, "metrics", snap.Ambiguities, "err", ErrAmbiguousAggregation)
	}

	prompt := buildSummaryPrompt(snap, c.loc.String())
	summary, err := c.llm.Generate(ctx, prompt)
	if err != nil {
		return nil, NewSummaryError(date, StageGenerate, fmt.Errorf("%w: %v", ErrGenerationFailed, err))
	}

	metadata := deriveMetadata(snap)

	if err := c.index.UpsertSummary(ctx, date, summary, metadata.Map()); err != nil {
		stage := StageIndex
		if errors.Is(err, vectorindex.ErrDimensionMismatch) {
			stage = StageEmbed
		}
		return nil, NewSummaryError(date, stage, err)
	}

	return &SummaryResult{
		Date:     date,
		Summary:  summary,
		Metadata: metadata,
	}, nil
}

// BulkCreateDailySummaries creates summaries for every day in the
// inclusive range [startDate, endDate].
//
// Days are processed sequentially in date order. A failure on one day is
// recorded and does not stop the remaining days. Ranges longer than 30
// days are rejected.
//
// Parameters:
//   - ctx: Context for cancellation
//   - startDate: First day of the range, formatted YYYY-MM-DD
//   - endDate: Last day of the range, formatted YYYY-MM-DD
//
// Returns the per-day outcomes keyed by a run id for log correlation.
func (c *Client) BulkCreateDailySummaries(ctx context.Context, startDate, endDate string) (*BulkResult, error) {
	start, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return nil, NewClientError("BulkCreateDailySummaries",
			fmt.Errorf("%w: bad start date %q", ErrInvalidInput, startDate))
	}
	end, err := time.Parse(dateLayout, endDate)
	if err != nil {
		return nil, NewClientError("BulkCreateDailySummaries",
			fmt.Errorf("%w: bad end date %q", ErrInvalidInput, endDate))
	}
	if end.Before(start) {
		return nil, NewClientError("BulkCreateDailySummaries",
			fmt.Errorf("%w: end date %s before start date %s", ErrInvalidInput, endDate, startDate))
	}

	days := int(end.Sub(start).Hours()/24) + 1
	if days > maxBulkDays {
		return nil, NewClientError("BulkCreateDailySummaries",
			fmt.Errorf("%w: range of %d days exceeds maximum of %d", ErrInvalidInput, days, maxBulkDays))
	}

	runID := c.snowflakeNode.Generate().String()
	result := &BulkResult{
		RunID:     runID,
		StartDate: startDate,
		EndDate:   endDate,
		Entries:   make([]BulkEntry, 0, days),
	}

	c.logger.Info("starting bulk summary run",
		"run_id", runID, "start_date", startDate, "end_date", endDate, "days", days)

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		date := d.Format(dateLayout)

		if err := ctx.Err(); err != nil {
			return result, NewClientError("BulkCreateDailySummaries", err)
		}

		if _, err := c.CreateDailySummary(ctx, date); err != nil {
			c.logger.Warn("bulk summary day failed", "run_id", runID, "date", date, "err", err)
			result.Entries = append(result.Entries, BulkEntry{Date: date, Success: false, Error: err.Error()})
			result.Failed++
			continue
		}

		result.Entries = append(result.Entries, BulkEntry{Date: date, Success: true})
		result.Succeeded++
	}

	c.logger.Info("bulk summary run finished",
		"run_id", runID, "succeeded", result.Succeeded, "failed", result.Failed)
	return result, nil
}

// QuerySummaries answers a natural-language question over the indexed
// summaries.
//
// The query is embedded and matched against the index; the best matches
// ground a generated answer. Limits above 30 are clamped, and limit <= 0
// defaults to 5.
//
// Parameters:
//   - ctx: Context for cancellation
//   - query: The natural-language question
//   - limit: Maximum number of matches to return
//
// Returns the generated answer and the matches it was grounded in.
func (c *Client) QuerySummaries(ctx context.Context, query string, limit int) (*AnswerResult, error) {
	if query == "" {
		return nil, NewClientError("QuerySummaries", fmt.Errorf("%w: empty query", ErrInvalidInput))
	}
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	if limit > maxQueryLimit {
		limit = maxQueryLimit
	}

	points, err := c.index.Search(ctx, query, limit)
	if err != nil {
		return nil, NewClientError("QuerySummaries", err)
	}

	matches := matchesFromPoints(points)

	answer := "No relevant summaries found."
	if len(matches) > 0 {
		answer, err = c.llm.Generate(ctx, buildAnswerPrompt(query, matches))
		if err != nil {
			return nil, NewClientError("QuerySummaries", fmt.Errorf("%w: %v", ErrGenerationFailed, err))
		}
	}

	return &AnswerResult{
		Query:      query,
		Answer:     answer,
		Matches:    matches,
		TotalFound: len(matches),
	}, nil
}

// GetRecentSummaries lists the most recently dated summaries in the
// index, newest first.
//
// The index has no listing primitive, so this probes it with a broad
// query and re-sorts the hits by date.
//
// Parameters:
//   - ctx: Context for cancellation
//   - limit: Maximum number of summaries to return
//
// Returns the summaries sorted by date descending.
func (c *Client) GetRecentSummaries(ctx context.Context, limit int) ([]SummaryMatch, error) {
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	if limit > maxQueryLimit {
		limit = maxQueryLimit
	}

	points, err := c.index.Search(ctx, recentQueryText, limit)
	if err != nil {
		return nil, NewClientError("GetRecentSummaries", err)
	}

	matches := matchesFromPoints(points)
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Date > matches[j].Date
	})
	return matches, nil
}

// EnsureReady verifies the vector collection exists and matches the
// embedding provider, creating it on first use.
func (c *Client) EnsureReady(ctx context.Context) error {
	if err := c.index.EnsureCollection(ctx); err != nil {
		return NewClientError("EnsureReady", fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err))
	}
	return nil
}

// Close closes the client and releases all provider resources.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var firstErr error
	if err := c.metrics.Close(); err != nil {
		firstErr = err
	}
	if err := c.index.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := c.llm.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return NewClientError("Close", firstErr)
}

// deriveMetadata extracts the structured highlights stored with a
// summary. Pointer fields stay nil when the underlying metric was not
// recorded; a recorded zero stays zero.
func deriveMetadata(snap *snapshot.Snapshot) *SummaryMetadata {
	day, _ := time.Parse(dateLayout, snap.Date)

	meta := &SummaryMetadata{
		TotalCalories: snap.FoodIntake.TotalCalories,
		EventCount:    len(snap.CalendarEvents),
		MealCount:     snap.FoodIntake.MealCount,
		DayOfWeek:     day.Weekday().String(),
	}

	if mv, ok := snap.HealthMetrics["steps"]; ok && mv.Value != nil {
		v := *mv.Value
		meta.Steps = &v
	}
	if mv, ok := snap.HealthMetrics["exercise_minutes"]; ok && mv.Value != nil {
		v := *mv.Value
		meta.ExerciseMinutes = &v
	}
	if snap.SleepData != nil {
		v := snap.SleepData.TotalHours
		meta.SleepHours = &v
	}

	return meta
}

// matchesFromPoints converts scored index points into API matches,
// splitting the reserved payload keys from caller metadata.
func matchesFromPoints(points []*vectorindex.ScoredPoint) []SummaryMatch {
	matches := make([]SummaryMatch, 0, len(points))
	for _, p := range points {
		match := SummaryMatch{Score: p.Score}
		metadata := make(map[string]interface{})
		for k, v := range p.Payload {
			switch k {
			case "date":
				if s, ok := v.(string); ok {
					match.Date = s
				}
			case "summary":
				if s, ok := v.(string); ok {
					match.Summary = s
				}
			case "created_at":
				// internal bookkeeping, not surfaced
			default:
				metadata[k] = v
			}
		}
		if len(metadata) > 0 {
			match.Metadata = metadata
		}
		matches = append(matches, match)
	}
	return matches
}

// initMetricStore initializes the metric store provider.
func initMetricStore(cfg MetricStoreConfig) (metricstore.Store, error) {
	switch cfg.Provider {
	case "sqlite":
		return sqliteStore.NewClient(&sqliteStore.Config{
			DBPath: stringValue(cfg.Config, "db_path"),
		})
	case "postgres":
		sslMode := "disable"
		if s, ok := cfg.Config["ssl_mode"].(string); ok {
			sslMode = s
		}
		return postgresStore.NewClient(&postgresStore.Config{
			Host:     stringValue(cfg.Config, "host"),
			Port:     intValue(cfg.Config, "port"),
			User:     stringValue(cfg.Config, "user"),
			Password: stringValue(cfg.Config, "password"),
			DBName:   stringValue(cfg.Config, "db_name"),
			SSLMode:  sslMode,
		})
	case "mysql":
		return mysqlStore.NewClient(&mysqlStore.Config{
			Host:     stringValue(cfg.Config, "host"),
			Port:     intValue(cfg.Config, "port"),
			User:     stringValue(cfg.Config, "user"),
			Password: stringValue(cfg.Config, "password"),
			DBName:   stringValue(cfg.Config, "db_name"),
		})
	default:
		return nil, NewClientError("initMetricStore", ErrInvalidConfig)
	}
}

// initVectorStore initializes the vector store provider.
func initVectorStore(cfg VectorStoreConfig) (vectorindex.Store, error) {
	switch cfg.Provider {
	case "qdrant":
		return qdrantIndex.NewClient(&qdrantIndex.Config{
			BaseURL: stringValue(cfg.Config, "base_url"),
			APIKey:  stringValue(cfg.Config, "api_key"),
		})
	case "sqlite":
		return sqliteIndex.NewClient(&sqliteIndex.Config{
			DBPath: stringValue(cfg.Config, "db_path"),
		})
	default:
		return nil, NewClientError("initVectorStore", ErrInvalidConfig)
	}
}

// initLLM initializes the LLM provider.
func initLLM(cfg LLMConfig) (llm.Provider, error) {
	switch cfg.Provider {
	case "openai":
		return openaiLLM.NewClient(&openaiLLM.Config{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		})
	case "ollama":
		return ollamaLLM.NewClient(&ollamaLLM.Config{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		})
	default:
		return nil, NewClientError("initLLM", ErrInvalidConfig)
	}
}

// initEmbedder initializes the embedder provider.
func initEmbedder(cfg EmbedderConfig) (embedder.Provider, error) {
	switch cfg.Provider {
	case "openai":
		return openaiEmbedder.NewClient(&openaiEmbedder.Config{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		})
	case "ollama":
		return ollamaEmbedder.NewClient(&ollamaEmbedder.Config{
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		})
	default:
		return nil, NewClientError("initEmbedder", ErrInvalidConfig)
	}
}

func stringValue(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func intValue(m map[string]interface{}, key string) int {
	switch v := m[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}
