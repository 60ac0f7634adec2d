// Package config loads and validates seoscope configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Dispatch strategy names accepted by workflow.dispatch.
const (
	DispatchQueue  = "queue"
	DispatchInline = "inline"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Workflow WorkflowConfig `mapstructure:"workflow"`
	Fetch    FetchConfig    `mapstructure:"fetch"`
	Cache    CacheConfig    `mapstructure:"cache"`
	LLM      LLMConfig      `mapstructure:"llm"`
	History  HistoryConfig  `mapstructure:"history"`
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
	Events   EventsConfig   `mapstructure:"events"`
	Render   RenderConfig   `mapstructure:"render"`
	Progress ProgressConfig `mapstructure:"progress"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port                  int `mapstructure:"port"`
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds"`
}

// WorkflowConfig governs job dispatch and orchestration behavior.
type WorkflowConfig struct {
	Dispatch              string `mapstructure:"dispatch"`
	Concurrency           int    `mapstructure:"concurrency"`
	QueueDepth            int    `mapstructure:"queue_depth"`
	AcquireTimeoutSeconds int    `mapstructure:"acquire_timeout_seconds"`
	JobTimeoutSeconds     int    `mapstructure:"job_timeout_seconds"`
	JobTTLSeconds         int    `mapstructure:"job_ttl_seconds"`
	ResultTTLSeconds      int    `mapstructure:"result_ttl_seconds"`
}

// FetchConfig configures the page fetch layer.
type FetchConfig struct {
	TimeoutSeconds int      `mapstructure:"timeout_seconds"`
	UserAgent      string   `mapstructure:"user_agent"`
	PerHostRPS     float64  `mapstructure:"per_host_rps"`
	PerHostBurst   int      `mapstructure:"per_host_burst"`
	BlockedDomains []string `mapstructure:"blocked_domains"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Provider string      `mapstructure:"provider"`
	Redis    RedisConfig `mapstructure:"redis"`
}

// RedisConfig holds connection settings for the Redis cache provider.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LLMConfig configures the language model providers used by enrichment tasks.
type LLMConfig struct {
	TimeoutSeconds int            `mapstructure:"timeout_seconds"`
	MaxTokens      int            `mapstructure:"max_tokens"`
	OpenAI         ProviderConfig `mapstructure:"openai"`
	Grok           ProviderConfig `mapstructure:"grok"`
}

// ProviderConfig holds credentials and model selection for one LLM provider.
type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// HistoryConfig selects the terminal-job archive backend.
type HistoryConfig struct {
	Provider               string `mapstructure:"provider"`
	DSN                    string `mapstructure:"dsn"`
	Table                  string `mapstructure:"table"`
	MaxConns               int32  `mapstructure:"max_conns"`
	MinConns               int32  `mapstructure:"min_conns"`
	MaxConnLifetimeSeconds int    `mapstructure:"max_conn_lifetime_seconds"`
}

// SnapshotConfig selects where raw fetched HTML is archived.
type SnapshotConfig struct {
	Provider  string `mapstructure:"provider"`
	GCSBucket string `mapstructure:"gcs_bucket"`
	Prefix    string `mapstructure:"prefix"`
	LocalDir  string `mapstructure:"local_dir"`
}

// EventsConfig configures the completion event publisher.
type EventsConfig struct {
	Provider  string `mapstructure:"provider"`
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// RenderConfig configures the optional headless re-render of JS shell pages.
type RenderConfig struct {
	Provider          string `mapstructure:"provider"`
	MaxParallel       int    `mapstructure:"max_parallel"`
	NavTimeoutSeconds int    `mapstructure:"nav_timeout_seconds"`
}

// ProgressConfig controls lifecycle event emission.
type ProgressConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	LogEnabled bool `mapstructure:"log_enabled"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
	// Level overrides the mode's default level when non-empty
	// (debug, info, warn, error).
	Level string `mapstructure:"level"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SEOSCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.request_timeout_seconds", 60)
	v.SetDefault("workflow.dispatch", DispatchQueue)
	v.SetDefault("workflow.concurrency", 5)
	v.SetDefault("workflow.queue_depth", 64)
	v.SetDefault("workflow.acquire_timeout_seconds", 5)
	v.SetDefault("workflow.job_timeout_seconds", 300)
	v.SetDefault("workflow.job_ttl_seconds", 86400)
	v.SetDefault("workflow.result_ttl_seconds", 3600)
	v.SetDefault("fetch.timeout_seconds", 30)
	v.SetDefault("fetch.user_agent", "")
	v.SetDefault("fetch.per_host_rps", 2.0)
	v.SetDefault("fetch.per_host_burst", 4)
	v.SetDefault("cache.provider", "memory")
	v.SetDefault("cache.redis.addr", "localhost:6379")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("llm.timeout_seconds", 120)
	v.SetDefault("llm.max_tokens", 2500)
	v.SetDefault("llm.openai.model", "gpt-4o")
	v.SetDefault("llm.grok.model", "grok-beta")
	v.SetDefault("llm.grok.base_url", "https://api.x.ai/v1")
	v.SetDefault("history.provider", "noop")
	v.SetDefault("history.table", "job_history")
	v.SetDefault("history.max_conns", 4)
	v.SetDefault("history.min_conns", 1)
	v.SetDefault("history.max_conn_lifetime_seconds", 1800)
	v.SetDefault("snapshot.provider", "noop")
	v.SetDefault("snapshot.prefix", "snapshots")
	v.SetDefault("events.provider", "noop")
	v.SetDefault("render.provider", "noop")
	v.SetDefault("render.max_parallel", 2)
	v.SetDefault("render.nav_timeout_seconds", 25)
	v.SetDefault("progress.enabled", true)
	v.SetDefault("progress.log_enabled", false)
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Workflow.Dispatch != DispatchQueue && c.Workflow.Dispatch != DispatchInline {
		return fmt.Errorf("workflow.dispatch must be %q or %q", DispatchQueue, DispatchInline)
	}
	if c.Workflow.Concurrency <= 0 {
		return fmt.Errorf("workflow.concurrency must be > 0")
	}
	if c.Workflow.QueueDepth <= 0 {
		return fmt.Errorf("workflow.queue_depth must be > 0")
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.timeout_seconds must be > 0")
	}
	if c.LLM.TimeoutSeconds <= 0 {
		return fmt.Errorf("llm.timeout_seconds must be > 0")
	}
	if c.Cache.Provider == "redis" && c.Cache.Redis.Addr == "" {
		return fmt.Errorf("cache.redis.addr must be set when cache.provider is redis")
	}
	if c.History.Provider == "postgres" && c.History.DSN == "" {
		return fmt.Errorf("history.dsn must be set when history.provider is postgres")
	}
	if c.Snapshot.Provider == "gcs" && c.Snapshot.GCSBucket == "" {
		return fmt.Errorf("snapshot.gcs_bucket must be set when snapshot.provider is gcs")
	}
	if c.Snapshot.Provider == "local" && c.Snapshot.LocalDir == "" {
		return fmt.Errorf("snapshot.local_dir must be set when snapshot.provider is local")
	}
	if c.Events.Provider == "pubsub" && (c.Events.ProjectID == "" || c.Events.TopicName == "") {
		return fmt.Errorf("events.project_id and events.topic_name must be set when events.provider is pubsub")
	}
	return nil
}

// RequestTimeout returns the HTTP request timeout as a duration.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSeconds) * time.Second
}

// FetchTimeout returns the per-request fetch timeout as a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// LLMTimeout returns the per-call LLM timeout as a duration.
func (c Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLM.TimeoutSeconds) * time.Second
}

// JobTimeout returns the job-level watchdog budget as a duration.
func (c Config) JobTimeout() time.Duration {
	return time.Duration(c.Workflow.JobTimeoutSeconds) * time.Second
}

// JobTTL returns how long job state is retained in the cache.
func (c Config) JobTTL() time.Duration {
	return time.Duration(c.Workflow.JobTTLSeconds) * time.Second
}

// ResultTTL returns how long aggregate and per-step results are cached.
func (c Config) ResultTTL() time.Duration {
	return time.Duration(c.Workflow.ResultTTLSeconds) * time.Second
}

// AcquireTimeout returns how long an inline dispatch waits for a slot.
func (c Config) AcquireTimeout() time.Duration {
	return time.Duration(c.Workflow.AcquireTimeoutSeconds) * time.Second
}

// NavTimeout returns the headless navigation timeout as a duration.
func (c Config) NavTimeout() time.Duration {
	return time.Duration(c.Render.NavTimeoutSeconds) * time.Second
}

// HistoryConnLifetime returns the Postgres connection lifetime as a duration.
func (c Config) HistoryConnLifetime() time.Duration {
	return time.Duration(c.History.MaxConnLifetimeSeconds) * time.Second
}
