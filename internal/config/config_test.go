package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Scheduler.IntervalMinutes != 60 {
		t.Fatalf("unexpected default interval: %d", cfg.Scheduler.IntervalMinutes)
	}
	if cfg.Pipeline.PostLimit != 5 || cfg.Pipeline.CommentLimit != 20 {
		t.Fatalf("unexpected pipeline defaults: %+v", cfg.Pipeline)
	}
	if cfg.Reddit.Subreddit != "soccer" || cfg.Reddit.Strategy != "api" {
		t.Fatalf("unexpected reddit defaults: %+v", cfg.Reddit)
	}
	if cfg.Analysis.Provider != "openai" {
		t.Fatalf("unexpected provider default: %s", cfg.Analysis.Provider)
	}
	if cfg.Storage.DataDirectory != "data" {
		t.Fatalf("unexpected data directory: %s", cfg.Storage.DataDirectory)
	}
}

func TestSchedulerInterval(t *testing.T) {
	t.Parallel()

	cfg := SchedulerConfig{IntervalMinutes: 15}
	if cfg.Interval() != 15*time.Minute {
		t.Fatalf("unexpected interval: %v", cfg.Interval())
	}

	zero := SchedulerConfig{}
	if zero.Interval() != time.Hour {
		t.Fatalf("zero interval must default to an hour, got %v", zero.Interval())
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(intervalMinutesEnv, "5")
	t.Setenv(postLimitEnv, "3")
	t.Setenv(commentLimitEnv, "7")
	t.Setenv(llmProviderEnv, "anthropic")
	t.Setenv(anthropicAPIKeyEnv, "secret")
	t.Setenv(dataDirEnv, "/tmp/trends")

	cfg := Load()

	if cfg.Scheduler.IntervalMinutes != 5 {
		t.Fatalf("interval override ignored: %d", cfg.Scheduler.IntervalMinutes)
	}
	if cfg.Pipeline.PostLimit != 3 || cfg.Pipeline.CommentLimit != 7 {
		t.Fatalf("limit overrides ignored: %+v", cfg.Pipeline)
	}
	if cfg.Analysis.Provider != "anthropic" || cfg.Analysis.Anthropic.APIKey != "secret" {
		t.Fatalf("analysis overrides ignored: %+v", cfg.Analysis)
	}
	if cfg.Storage.DataDirectory != "/tmp/trends" {
		t.Fatalf("data dir override ignored: %s", cfg.Storage.DataDirectory)
	}
}

func TestServerMergeKeepsFieldsIndependent(t *testing.T) {
	t.Parallel()

	// Disabling the server must not require setting an address too.
	disabled := false
	cfg := mergeConfig(defaultConfig(), Config{Server: ServerConfig{Enabled: &disabled}})
	if cfg.Server.IsEnabled() {
		t.Fatal("server: {enabled: false} without addr must disable the server")
	}
	if cfg.Server.Addr != ":5000" {
		t.Fatalf("default addr must survive the merge, got %s", cfg.Server.Addr)
	}

	// Overriding only the address must not flip the server off.
	cfg = mergeConfig(defaultConfig(), Config{Server: ServerConfig{Addr: ":8080"}})
	if !cfg.Server.IsEnabled() {
		t.Fatal("overriding addr alone must keep the server enabled")
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("addr override ignored: %s", cfg.Server.Addr)
	}
}

func TestLoadIgnoresInvalidNumericEnv(t *testing.T) {
	t.Setenv(postLimitEnv, "a-few")

	cfg := Load()
	if cfg.Pipeline.PostLimit != 5 {
		t.Fatalf("invalid env value must keep default, got %d", cfg.Pipeline.PostLimit)
	}
}

func TestLoadFromYAMLFile(t *testing.T) {
	raw := `
scheduler:
  intervalMinutes: 30
pipeline:
  postLimit: 8
reddit:
  subreddit: footballhighlights
  strategy: html
analysis:
  provider: anthropic
  anthropic:
    apiKey: yaml-key
storage:
  dataDirectory: /var/lib/trends
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(configPathEnv, path)
	// Shield the assertion below from an ANTHROPIC_API_KEY leaking in from
	// the host environment; env overrides are applied after the YAML file.
	t.Setenv(anthropicAPIKeyEnv, "")

	cfg := Load()

	if cfg.Scheduler.IntervalMinutes != 30 {
		t.Fatalf("yaml interval ignored: %d", cfg.Scheduler.IntervalMinutes)
	}
	if cfg.Pipeline.PostLimit != 8 {
		t.Fatalf("yaml post limit ignored: %d", cfg.Pipeline.PostLimit)
	}
	// Unset fields keep defaults.
	if cfg.Pipeline.CommentLimit != 20 {
		t.Fatalf("yaml merge clobbered comment limit: %d", cfg.Pipeline.CommentLimit)
	}
	if cfg.Reddit.Subreddit != "footballhighlights" || cfg.Reddit.Strategy != "html" {
		t.Fatalf("yaml reddit settings ignored: %+v", cfg.Reddit)
	}
	if cfg.Analysis.Provider != "anthropic" || cfg.Analysis.Anthropic.APIKey != "yaml-key" {
		t.Fatalf("yaml analysis settings ignored: %+v", cfg.Analysis)
	}
	if cfg.Storage.DataDirectory != "/var/lib/trends" {
		t.Fatalf("yaml data directory ignored: %s", cfg.Storage.DataDirectory)
	}
}
