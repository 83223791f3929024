package config

import "time"

// Config holds all application configuration, one struct per group. Groups
// are validated independently so that a command checks only what it uses.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Generation GenerationConfig `mapstructure:"generation"`
	Session    SessionConfig    `mapstructure:"session"`
	Keywords   KeywordsConfig   `mapstructure:"keywords"`
	Community  CommunityConfig  `mapstructure:"community"`
	Tasks      TaskConfig       `mapstructure:"tasks"`
}

// Group names a top-level configuration group.
type Group string

// Configuration groups, named after their keys.
const (
	GroupServer     Group = "server"
	GroupDatabase   Group = "database"
	GroupLLM        Group = "llm"
	GroupGeneration Group = "generation"
	GroupSession    Group = "session"
	GroupKeywords   Group = "keywords"
	GroupCommunity  Group = "community"
	GroupTasks      Group = "tasks"
)

// AllGroups lists every group, in declaration order.
var AllGroups = []Group{
	GroupServer, GroupDatabase, GroupLLM, GroupGeneration,
	GroupSession, GroupKeywords, GroupCommunity, GroupTasks,
}

// group returns the settings struct for g.
func (c *Config) group(g Group) (any, bool) {
	switch g {
	case GroupServer:
		return c.Server, true
	case GroupDatabase:
		return c.Database, true
	case GroupLLM:
		return c.LLM, true
	case GroupGeneration:
		return c.Generation, true
	case GroupSession:
		return c.Session, true
	case GroupKeywords:
		return c.Keywords, true
	case GroupCommunity:
		return c.Community, true
	case GroupTasks:
		return c.Tasks, true
	}
	return nil, false
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// LLMConfig selects and configures the text-generation backend.
type LLMConfig struct {
	Provider              string  `mapstructure:"provider"                validate:"required,oneof=gemini openai"`
	GeminiAPIKey          string  `mapstructure:"gemini_api_key"          validate:"required_if=Provider gemini"`
	OpenAIAPIKey          string  `mapstructure:"openai_api_key"          validate:"required_if=Provider openai"`
	ModelName             string  `mapstructure:"model_name"              validate:"required"`
	BaseURL               string  `mapstructure:"base_url"                validate:"omitempty,url"`
	RequestTimeoutSeconds int     `mapstructure:"request_timeout_seconds" validate:"gt=0"`
	RequestsPerMinute     int     `mapstructure:"requests_per_minute"     validate:"gte=0"`
	MaxOutputTokens       int     `mapstructure:"max_output_tokens"       validate:"gte=0"`
	InputCostPerMillion   float64 `mapstructure:"input_cost_per_million"  validate:"gte=0"`
	OutputCostPerMillion  float64 `mapstructure:"output_cost_per_million" validate:"gte=0"`
}

// RequestTimeout returns the per-call deadline applied to the backend.
func (c LLMConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// GenerationConfig bounds the generate/validate loop for each request kind.
type GenerationConfig struct {
	MaxAttempts     int `mapstructure:"max_attempts"      validate:"required,gte=1,lte=10"`
	MetaMaxAttempts int `mapstructure:"meta_max_attempts" validate:"required,gte=1,lte=10"`
}

// SessionConfig configures the Redis-backed session state and its cookie.
type SessionConfig struct {
	RedisURL   string `mapstructure:"redis_url"   validate:"required,url"`
	Secret     string `mapstructure:"secret"      validate:"required,min=32"`
	TTLHours   int    `mapstructure:"ttl_hours"   validate:"required,gt=0"`
	CookieName string `mapstructure:"cookie_name" validate:"required"`
}

// TTL returns the session lifetime.
func (c SessionConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

// KeywordsConfig configures SEMrush keyword research. An empty API key
// disables research and the scheduled refresh.
type KeywordsConfig struct {
	SemrushAPIKey   string `mapstructure:"semrush_api_key"`
	BaseURL         string `mapstructure:"base_url"         validate:"omitempty,url"`
	Database        string `mapstructure:"database"`
	DisplayLimit    int    `mapstructure:"display_limit"    validate:"gte=0"`
	RefreshSchedule string `mapstructure:"refresh_schedule"`
}

// Enabled reports whether keyword research is configured.
func (c KeywordsConfig) Enabled() bool {
	return c.SemrushAPIKey != ""
}

// CommunityConfig points at the community database API.
type CommunityConfig struct {
	BaseURL        string `mapstructure:"base_url"        validate:"required,url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"gt=0"`
}

// TaskConfig configures the background task runner.
type TaskConfig struct {
	WorkerCount         int `mapstructure:"worker_count"           validate:"required,gte=1"`
	QueueSize           int `mapstructure:"queue_size"             validate:"required,gte=1"`
	StuckTaskAgeMinutes int `mapstructure:"stuck_task_age_minutes" validate:"required,gte=1"`
}
