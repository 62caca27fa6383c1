// Package core provides the main Lifelog client and daily summary functionality.
package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config contains the complete configuration for a Lifelog client.
//
// It includes settings for:
//   - Timezone (the user's home timezone for day boundaries)
//   - Metric store (where tracked life data is read from)
//   - Vector store (where summary embeddings are indexed)
//   - LLM provider (for summary and answer generation)
//   - Embedding provider (for vector generation)
//
// Example:
//
//	config := &core.Config{
//	    Timezone: "America/New_York",
//	    MetricStore: core.MetricStoreConfig{
//	        Provider: "sqlite",
//	        Config: map[string]interface{}{
//	            "db_path": "./lifelog.db",
//	        },
//	    },
//	    VectorStore: core.VectorStoreConfig{
//	        Provider:   "qdrant",
//	        Collection: "daily_summaries",
//	        Config: map[string]interface{}{
//	            "base_url": "http://localhost:6333",
//	        },
//	    },
//	    LLM: core.LLMConfig{
//	        Provider: "openai",
//	        APIKey:   "sk-...",
//	        Model:    "gpt-4o-mini",
//	    },
//	    Embedder: core.EmbedderConfig{
//	        Provider: "ollama",
//	        Model:    "nomic-embed-text",
//	    },
//	}
type Config struct {
	// Timezone is the IANA timezone name used to resolve day boundaries
	// (e.g., "America/New_York"). Defaults to "UTC".
	Timezone string `json:"timezone"`

	// MetricStore contains metric store configuration.
	MetricStore MetricStoreConfig `json:"metric_store"`

	// VectorStore contains vector store configuration.
	VectorStore VectorStoreConfig `json:"vector_store"`

	// LLM contains LLM provider configuration.
	LLM LLMConfig `json:"llm"`

	// Embedder contains embedding provider configuration.
	Embedder EmbedderConfig `json:"embedder"`

	// Server contains HTTP server configuration (optional, only used by the daemon).
	Server *ServerConfig `json:"server,omitempty"`
}

// MetricStoreConfig contains configuration for the metric store.
//
// Supported providers: sqlite, postgres, mysql
type MetricStoreConfig struct {
	// Provider is the metric store provider name (sqlite, postgres, mysql).
	Provider string `json:"provider"`

	// Config contains provider-specific configuration.
	// For SQLite: db_path
	// For PostgreSQL: host, port, user, password, db_name, ssl_mode
	// For MySQL: host, port, user, password, db_name
	Config map[string]interface{} `json:"config"`
}

// VectorStoreConfig contains configuration for the vector store.
//
// Supported providers: qdrant, sqlite
type VectorStoreConfig struct {
	// Provider is the vector store provider name (qdrant, sqlite).
	Provider string `json:"provider"`

	// Collection is the collection holding daily summary points.
	Collection string `json:"collection"`

	// Config contains provider-specific configuration.
	// For Qdrant: base_url, api_key
	// For SQLite: db_path
	Config map[string]interface{} `json:"config"`
}

// LLMConfig contains configuration for the LLM provider.
//
// Supported providers: openai, ollama
type LLMConfig struct {
	// Provider is the LLM provider name (openai, ollama).
	Provider string `json:"provider"`

	// APIKey is the API key for the LLM provider.
	APIKey string `json:"api_key"`

	// Model is the model name to use (e.g., "gpt-4o-mini", "llama3.1").
	Model string `json:"model"`

	// BaseURL is the base URL for the API (optional, uses provider default if empty).
	BaseURL string `json:"base_url,omitempty"`
}

// EmbedderConfig contains configuration for the embedding provider.
//
// Supported providers: openai, ollama
type EmbedderConfig struct {
	// Provider is the embedding provider name (openai, ollama).
	Provider string `json:"provider"`

	// APIKey is the API key for the embedding provider.
	APIKey string `json:"api_key"`

	// Model is the embedding model name (e.g., "text-embedding-3-small", "nomic-embed-text").
	Model string `json:"model"`

	// BaseURL is the base URL for the API (optional, uses provider default if empty).
	BaseURL string `json:"base_url,omitempty"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// Addr is the listen address (e.g., ":8000").
	Addr string `json:"addr"`

	// APIKey is the key expected in the X-API-Key request header.
	// Empty disables authentication.
	APIKey string `json:"api_key,omitempty"`

	// LogLevel sets the logger level (debug, info, warn, error).
	LogLevel string `json:"log_level,omitempty"`
}

// LoadConfigFromEnv loads configuration from environment variables.
//
// The function:
//  1. Searches for .env or .env.example files (up to 5 directory levels up)
//  2. Loads environment variables from the found file
//  3. Parses environment variables into a Config struct
//
// Supported environment variables:
//   - TIMEZONE (IANA name, default "UTC")
//   - METRIC_DB_PROVIDER (sqlite, postgres, mysql)
//   - SQLITE_PATH, POSTGRES_HOST, POSTGRES_PORT, MYSQL_HOST, etc.
//   - VECTOR_PROVIDER (qdrant, sqlite), VECTOR_COLLECTION
//   - QDRANT_URL, QDRANT_API_KEY, VECTOR_SQLITE_PATH
//   - LLM_PROVIDER, LLM_API_KEY, LLM_MODEL, LLM_BASE_URL
//   - EMBEDDING_PROVIDER, EMBEDDING_API_KEY, EMBEDDING_MODEL, EMBEDDING_BASE_URL
//   - HTTP_ADDR, API_KEY, LOG_LEVEL
//
// Returns a Config instance, or an error if loading fails.
func LoadConfigFromEnv() (*Config, error) {
	// Use FindEnvFile to locate .env file (supports upward search)
	envPath, found := FindEnvFile()
	if found {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	metricProvider := getEnvOrDefault("METRIC_DB_PROVIDER", "sqlite")
	metricConfig := make(map[string]interface{})

	switch metricProvider {
	case "sqlite":
		metricConfig = map[string]interface{}{
			"db_path": getEnvOrDefault("SQLITE_PATH", "./lifelog.db"),
		}
	case "postgres":
		port, _ := strconv.Atoi(getEnvOrDefault("POSTGRES_PORT", "5432"))
		metricConfig = map[string]interface{}{
			"host":     getEnvOrDefault("POSTGRES_HOST", "localhost"),
			"port":     port,
			"user":     getEnvOrDefault("POSTGRES_USER", "postgres"),
			"password": os.Getenv("POSTGRES_PASSWORD"),
			"db_name":  getEnvOrDefault("POSTGRES_DATABASE", "lifelog"),
			"ssl_mode": getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
		}
	case "mysql":
		port, _ := strconv.Atoi(getEnvOrDefault("MYSQL_PORT", "3306"))
		metricConfig = map[string]interface{}{
			"host":     getEnvOrDefault("MYSQL_HOST", "localhost"),
			"port":     port,
			"user":     getEnvOrDefault("MYSQL_USER", "root"),
			"password": os.Getenv("MYSQL_PASSWORD"),
			"db_name":  getEnvOrDefault("MYSQL_DATABASE", "lifelog"),
		}
	}

	vectorProvider := getEnvOrDefault("VECTOR_PROVIDER", "qdrant")
	vectorConfig := make(map[string]interface{})

	switch vectorProvider {
	case "qdrant":
		vectorConfig = map[string]interface{}{
			"base_url": getEnvOrDefault("QDRANT_URL", "http://localhost:6333"),
			"api_key":  os.Getenv("QDRANT_API_KEY"),
		}
	case "sqlite":
		vectorConfig = map[string]interface{}{
			"db_path": getEnvOrDefault("VECTOR_SQLITE_PATH", "./vectors.db"),
		}
	}

	llmProvider := getEnvOrDefault("LLM_PROVIDER", "openai")
	var llmBaseURL string
	var defaultModel string

	switch llmProvider {
	case "ollama":
		llmBaseURL = os.Getenv("OLLAMA_LLM_BASE_URL")
		if llmBaseURL == "" {
			llmBaseURL = "http://localhost:11434"
		}
		defaultModel = "llama3.1"
	default:
		llmBaseURL = os.Getenv("LLM_BASE_URL")
		defaultModel = "gpt-4o-mini"
	}

	embedderProvider := getEnvOrDefault("EMBEDDING_PROVIDER", "ollama")
	embedderModel := os.Getenv("EMBEDDING_MODEL")
	var embedderBaseURL string

	switch embedderProvider {
	case "ollama":
		embedderBaseURL = os.Getenv("OLLAMA_EMBEDDING_BASE_URL")
		if embedderBaseURL == "" {
			embedderBaseURL = "http://localhost:11434"
		}
		if embedderModel == "" {
			embedderModel = "nomic-embed-text"
		}
	case "openai":
		embedderBaseURL = os.Getenv("OPENAI_EMBEDDING_BASE_URL")
		if embedderModel == "" {
			embedderModel = "text-embedding-3-small"
		}
	default:
		embedderBaseURL = os.Getenv("EMBEDDING_BASE_URL")
	}

	config := &Config{
		Timezone: getEnvOrDefault("TIMEZONE", "UTC"),
		MetricStore: MetricStoreConfig{
			Provider: metricProvider,
			Config:   metricConfig,
		},
		VectorStore: VectorStoreConfig{
			Provider:   vectorProvider,
			Collection: getEnvOrDefault("VECTOR_COLLECTION", "daily_summaries"),
			Config:     vectorConfig,
		},
		LLM: LLMConfig{
			Provider: llmProvider,
			APIKey:   os.Getenv("LLM_API_KEY"),
			Model:    getEnvOrDefault("LLM_MODEL", defaultModel),
			BaseURL:  llmBaseURL,
		},
		Embedder: EmbedderConfig{
			Provider: embedderProvider,
			APIKey:   os.Getenv("EMBEDDING_API_KEY"),
			Model:    embedderModel,
			BaseURL:  embedderBaseURL,
		},
		Server: &ServerConfig{
			Addr:     getEnvOrDefault("HTTP_ADDR", ":8000"),
			APIKey:   os.Getenv("API_KEY"),
			LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		},
	}

	return config, nil
}

// LoadConfigFromEnvFile loads configuration from a specific .env file.
//
// Parameters:
//   - envPath: Path to the .env file
//
// Returns a Config instance, or an error if loading fails.
func LoadConfigFromEnvFile(envPath string) (*Config, error) {
	if err := godotenv.Load(envPath); err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return LoadConfigFromEnv()
}

// LoadConfigFromJSON loads configuration from a JSON file.
//
// Parameters:
//   - path: Path to the JSON configuration file
//
// Returns a Config instance, or an error if loading or parsing fails.
func LoadConfigFromJSON(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewClientError("LoadConfigFromJSON", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, NewClientError("LoadConfigFromJSON", err)
	}

	return &config, nil
}

// Validate validates the configuration.
//
// Checks that all required fields are set:
//   - Metric store provider must be specified
//   - Vector store provider and collection must be specified
//   - LLM provider must be specified
//   - Embedder provider must be specified
//
// Returns an error if validation fails, nil otherwise.
func (c *Config) Validate() error {
	if c.MetricStore.Provider == "" {
		return NewClientError("Validate", ErrInvalidConfig)
	}
	if c.VectorStore.Provider == "" || c.VectorStore.Collection == "" {
		return NewClientError("Validate", ErrInvalidConfig)
	}
	if c.LLM.Provider == "" {
		return NewClientError("Validate", ErrInvalidConfig)
	}
	if c.Embedder.Provider == "" {
		return NewClientError("Validate", ErrInvalidConfig)
	}
	return nil
}

// getEnvOrDefault gets an environment variable or returns the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FindEnvFile searches for .env or .env.example files.
//
// The search:
//  1. Checks the current directory
//  2. Searches up to 5 directory levels up
//  3. Returns the first .env or .env.example file found
//
// Returns:
//   - path: Path to the found file (empty if not found)
//   - found: True if a file was found, false otherwise
func FindEnvFile() (string, bool) {
	if _, err := os.Stat(".env"); err == nil {
		return ".env", true
	}
	if _, err := os.Stat(".env.example"); err == nil {
		return ".env.example", true
	}

	dir, _ := os.Getwd()
	for i := 0; i < 5; i++ {
		envPath := filepath.Join(dir, ".env")
		envExamplePath := filepath.Join(dir, ".env.example")

		if _, err := os.Stat(envPath); err == nil {
			return envPath, true
		}
		if _, err := os.Stat(envExamplePath); err == nil {
			return envExamplePath, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", false
}
