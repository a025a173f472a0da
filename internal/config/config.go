package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv      = "SOCCER_TRENDS_CONFIG"
	intervalMinutesEnv = "SCHEDULER_INTERVAL_MINUTES"
	postLimitEnv       = "POST_LIMIT"
	commentLimitEnv    = "COMMENT_LIMIT"
	llmProviderEnv     = "LLM_PROVIDER"
	dataDirEnv         = "DATA_DIR"
	databaseDSNEnv     = "DATABASE_DSN"
	redditUserAgentEnv = "REDDIT_USER_AGENT"
	openAIAPIKeyEnv    = "OPENAI_API_KEY"
	anthropicAPIKeyEnv = "ANTHROPIC_API_KEY"
	telegramTokenEnv   = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv  = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Pipeline      PipelineConfig     `yaml:"pipeline"`
	Reddit        RedditConfig       `yaml:"reddit"`
	Analysis      AnalysisConfig     `yaml:"analysis"`
	Storage       StorageConfig      `yaml:"storage"`
	Database      DatabaseConfig     `yaml:"database"`
	Server        ServerConfig       `yaml:"server"`
	Notifications NotificationConfig `yaml:"notifications"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SchedulerConfig defines the recurring run spacing.
type SchedulerConfig struct {
	IntervalMinutes int `yaml:"intervalMinutes"`
}

// Interval resolves the configured spacing to a duration.
func (s SchedulerConfig) Interval() time.Duration {
	minutes := s.IntervalMinutes
	if minutes <= 0 {
		minutes = 60
	}
	return time.Duration(minutes) * time.Minute
}

// PipelineConfig bounds how much each run fetches.
type PipelineConfig struct {
	PostLimit    int `yaml:"postLimit"`
	CommentLimit int `yaml:"commentLimit"`
}

// RedditConfig describes the content source.
type RedditConfig struct {
	Subreddit         string `yaml:"subreddit"`
	Strategy          string `yaml:"strategy"`
	BaseURL           string `yaml:"baseUrl"`
	ListingURL        string `yaml:"listingUrl"`
	UserAgent         string `yaml:"userAgent"`
	RequestsPerMinute int    `yaml:"requestsPerMinute"`
	Burst             int    `yaml:"burst"`
	MaxRetries        int    `yaml:"maxRetries"`
}

// AnalysisConfig selects and configures the analysis provider.
type AnalysisConfig struct {
	Provider  string          `yaml:"provider"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Anthropic AnthropicConfig `yaml:"anthropic"`
}

// OpenAIConfig defines how to contact an OpenAI-compatible chat API.
type OpenAIConfig struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"apiKey"`
}

// AnthropicConfig defines the Anthropic messages API settings.
type AnthropicConfig struct {
	Model     string `yaml:"model"`
	APIKey    string `yaml:"apiKey"`
	MaxTokens int    `yaml:"maxTokens"`
}

// StorageConfig locates the document store's backing directory.
type StorageConfig struct {
	DataDirectory string `yaml:"dataDirectory"`
}

// DatabaseConfig describes the optional Postgres archive connection.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// ServerConfig controls the read-only HTTP API. Enabled is a pointer so a
// file can turn the server off without also having to set an address; nil
// means the default (on).
type ServerConfig struct {
	Enabled *bool  `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// IsEnabled reports whether the HTTP API should be served.
func (s ServerConfig) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := envInt(intervalMinutesEnv); v > 0 {
		c.Scheduler.IntervalMinutes = v
	}
	if v := envInt(postLimitEnv); v > 0 {
		c.Pipeline.PostLimit = v
	}
	if v := envInt(commentLimitEnv); v > 0 {
		c.Pipeline.CommentLimit = v
	}

	if v := os.Getenv(llmProviderEnv); v != "" {
		c.Analysis.Provider = v
	}
	if v := os.Getenv(openAIAPIKeyEnv); v != "" {
		c.Analysis.OpenAI.APIKey = v
	}
	if v := os.Getenv(anthropicAPIKeyEnv); v != "" {
		c.Analysis.Anthropic.APIKey = v
	}

	if v := os.Getenv(dataDirEnv); v != "" {
		c.Storage.DataDirectory = v
	}
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(redditUserAgentEnv); v != "" {
		c.Reddit.UserAgent = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func envInt(name string) int {
	raw := os.Getenv(name)
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("config: %s=%q is not a number, ignoring", name, raw)
		return 0
	}
	return value
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Scheduler.IntervalMinutes > 0 {
		base.Scheduler.IntervalMinutes = override.Scheduler.IntervalMinutes
	}
	if override.Pipeline.PostLimit > 0 {
		base.Pipeline.PostLimit = override.Pipeline.PostLimit
	}
	if override.Pipeline.CommentLimit > 0 {
		base.Pipeline.CommentLimit = override.Pipeline.CommentLimit
	}

	if override.Reddit.Subreddit != "" {
		base.Reddit.Subreddit = override.Reddit.Subreddit
	}
	if override.Reddit.Strategy != "" {
		base.Reddit.Strategy = override.Reddit.Strategy
	}
	if override.Reddit.BaseURL != "" {
		base.Reddit.BaseURL = override.Reddit.BaseURL
	}
	if override.Reddit.ListingURL != "" {
		base.Reddit.ListingURL = override.Reddit.ListingURL
	}
	if override.Reddit.UserAgent != "" {
		base.Reddit.UserAgent = override.Reddit.UserAgent
	}
	if override.Reddit.RequestsPerMinute > 0 {
		base.Reddit.RequestsPerMinute = override.Reddit.RequestsPerMinute
	}
	if override.Reddit.Burst > 0 {
		base.Reddit.Burst = override.Reddit.Burst
	}
	if override.Reddit.MaxRetries > 0 {
		base.Reddit.MaxRetries = override.Reddit.MaxRetries
	}

	if override.Analysis.Provider != "" {
		base.Analysis.Provider = override.Analysis.Provider
	}
	if override.Analysis.OpenAI.Endpoint != "" {
		base.Analysis.OpenAI.Endpoint = override.Analysis.OpenAI.Endpoint
	}
	if override.Analysis.OpenAI.Model != "" {
		base.Analysis.OpenAI.Model = override.Analysis.OpenAI.Model
	}
	if override.Analysis.OpenAI.APIKey != "" {
		base.Analysis.OpenAI.APIKey = override.Analysis.OpenAI.APIKey
	}
	if override.Analysis.Anthropic.Model != "" {
		base.Analysis.Anthropic.Model = override.Analysis.Anthropic.Model
	}
	if override.Analysis.Anthropic.APIKey != "" {
		base.Analysis.Anthropic.APIKey = override.Analysis.Anthropic.APIKey
	}
	if override.Analysis.Anthropic.MaxTokens > 0 {
		base.Analysis.Anthropic.MaxTokens = override.Analysis.Anthropic.MaxTokens
	}

	if override.Storage.DataDirectory != "" {
		base.Storage.DataDirectory = override.Storage.DataDirectory
	}
	if override.Database.DSN != "" {
		base.Database.DSN = override.Database.DSN
	}

	if override.Server.Enabled != nil {
		base.Server.Enabled = override.Server.Enabled
	}
	if override.Server.Addr != "" {
		base.Server.Addr = override.Server.Addr
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging:   LoggingConfig{Level: "info"},
		Scheduler: SchedulerConfig{IntervalMinutes: 60},
		Pipeline:  PipelineConfig{PostLimit: 5, CommentLimit: 20},
		Reddit: RedditConfig{
			Subreddit:         "soccer",
			Strategy:          "api",
			BaseURL:           "https://www.reddit.com",
			ListingURL:        "https://old.reddit.com",
			UserAgent:         "soccer-trends-app v1.0",
			RequestsPerMinute: 30,
			Burst:             5,
			MaxRetries:        3,
		},
		Analysis: AnalysisConfig{
			Provider: "openai",
			OpenAI: OpenAIConfig{
				Endpoint: "https://api.openai.com/v1/chat/completions",
				Model:    "gpt-4o-mini",
			},
			Anthropic: AnthropicConfig{
				Model:     "claude-sonnet-4-5-20250929",
				MaxTokens: 1024,
			},
		},
		Storage:  StorageConfig{DataDirectory: "data"},
		Server:   ServerConfig{Addr: ":5000"},
		Database: DatabaseConfig{},
	}
}
