package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the searchd API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Auth      AuthConfig      `yaml:"auth"`
	Ranking   RankingConfig   `yaml:"ranking"`
	Session   SessionConfig   `yaml:"session"`
	Storage   StorageConfig   `yaml:"storage"`
	Index     IndexConfig     `yaml:"index"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig maps API keys to tenant identifiers. Every request is scoped to
// the tenant its key resolves to.
type AuthConfig struct {
	APIKeys map[string]string `yaml:"api_keys"` // key -> tenant_id
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// RankingConfig holds score fusion and lexical scoring settings.
type RankingConfig struct {
	Fusion  FusionConfig  `yaml:"fusion"`
	Lexical LexicalConfig `yaml:"lexical"`
	// TopK bounds the vector neighbor count per search.
	TopK int `yaml:"top_k"`
	// CandidateLimit bounds the lexical candidate enumeration per search.
	CandidateLimit int `yaml:"candidate_limit"`
	// VectorTimeoutSec bounds the embed + index round-trip before the search
	// degrades to lexical-only.
	VectorTimeoutSec int `yaml:"vector_timeout_sec"`
	// AnaphoraTriggers is the closed set of follow-up phrases resolved against
	// conversation context instead of being searched literally.
	AnaphoraTriggers []string `yaml:"anaphora_triggers"`
	// CategorySynonyms extends the built-in category synonym table.
	CategorySynonyms map[string]string `yaml:"category_synonyms"`
}

// FusionConfig holds the score fusion weights.
type FusionConfig struct {
	VectorWeight  float64 `yaml:"vector_weight"`
	LexicalWeight float64 `yaml:"lexical_weight"`
}

// LexicalConfig holds the lexical scorer field weights.
type LexicalConfig struct {
	NameWeight        float64 `yaml:"name_weight"`
	CategoryWeight    float64 `yaml:"category_weight"`
	DescriptionWeight float64 `yaml:"description_weight"`
	PartialDiscount   float64 `yaml:"partial_discount"`
}

// SessionConfig holds conversation context settings.
type SessionConfig struct {
	TTLHours int `yaml:"ttl_hours"` // 0 = no expiry
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// IndexConfig holds HNSW index settings.
type IndexConfig struct {
	HNSWM           int `yaml:"hnsw_m"`
	HNSWEFConstruct int `yaml:"hnsw_ef_construction"`
}

// EmbeddingConfig holds embedding settings.
type EmbeddingConfig struct {
	Provider   ProviderConfig   `yaml:"provider"`
	Vectorizer VectorizerConfig `yaml:"vectorizer"`
}

// ProviderConfig holds embedding provider settings.
type ProviderConfig struct {
	Name    string `yaml:"name"`
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// VectorizerConfig holds vectorizer settings.
type VectorizerConfig struct {
	Model               string `yaml:"model"`
	Dimensions          int    `yaml:"dimensions"`
	DocumentInstruction string `yaml:"document_instruction"`
	QueryInstruction    string `yaml:"query_instruction"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// DefaultAnaphoraTriggers is the built-in follow-up phrase set.
var DefaultAnaphoraTriggers = []string{
	"similar",
	"similar products",
	"more like this",
	"show me similar",
	"show me similar products",
	"show me more",
	"more of these",
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Ranking.Fusion.VectorWeight <= 0 {
		c.Ranking.Fusion.VectorWeight = 0.6
	}
	if c.Ranking.Fusion.LexicalWeight <= 0 {
		c.Ranking.Fusion.LexicalWeight = 0.4
	}
	if c.Ranking.Lexical.NameWeight <= 0 {
		c.Ranking.Lexical.NameWeight = 0.5
	}
	if c.Ranking.Lexical.CategoryWeight <= 0 {
		c.Ranking.Lexical.CategoryWeight = 0.3
	}
	if c.Ranking.Lexical.DescriptionWeight <= 0 {
		c.Ranking.Lexical.DescriptionWeight = 0.2
	}
	if c.Ranking.Lexical.PartialDiscount <= 0 {
		c.Ranking.Lexical.PartialDiscount = 0.5
	}
	if c.Ranking.TopK <= 0 {
		c.Ranking.TopK = 50
	}
	if c.Ranking.CandidateLimit <= 0 {
		c.Ranking.CandidateLimit = 500
	}
	if c.Ranking.VectorTimeoutSec <= 0 {
		c.Ranking.VectorTimeoutSec = 5
	}
	if len(c.Ranking.AnaphoraTriggers) == 0 {
		c.Ranking.AnaphoraTriggers = DefaultAnaphoraTriggers
	}
	if c.Session.TTLHours < 0 {
		c.Session.TTLHours = 0
	}
	if c.Index.HNSWM <= 0 {
		c.Index.HNSWM = 32
	}
	if c.Index.HNSWEFConstruct <= 0 {
		c.Index.HNSWEFConstruct = 400
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "searchd:"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	wSum := c.Ranking.Fusion.VectorWeight + c.Ranking.Fusion.LexicalWeight
	if wSum < 0.999 || wSum > 1.001 {
		return fmt.Errorf("ranking.fusion weights must sum to 1, got %g", wSum)
	}
	for key, tenant := range c.Auth.APIKeys {
		if key == "" || tenant == "" {
			return fmt.Errorf("auth.api_keys entries must map a non-empty key to a non-empty tenant id")
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
