package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Database  DatabaseConfig    `yaml:"database"`
	Schedule  ScheduleConfig    `yaml:"schedule"`
	Publish   PublishConfig     `yaml:"publish"`
	Discovery DiscoveryConfig   `yaml:"discovery"`
	Notify    NotifyConfig      `yaml:"notify"`
	Server    ServerConfig      `yaml:"server"`
	Aliases   map[string]string `yaml:"aliases"`
	Boards    []BoardConfig     `yaml:"boards"`
}

// DatabaseConfig configures the SQLite run archive.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ScheduleConfig configures the daily run.
type ScheduleConfig struct {
	// Cron is a standard 5-field cron expression in local time.
	Cron string `yaml:"cron"`

	// RunOnStart triggers a run immediately when the daemon starts.
	RunOnStart bool `yaml:"run_on_start"`
}

// PublishConfig configures git publishing of updated datasets.
type PublishConfig struct {
	Enabled bool   `yaml:"enabled"`
	RepoDir string `yaml:"repo_dir"`
	Remote  string `yaml:"remote"`
	Branch  string `yaml:"branch"`
}

// DiscoveryConfig tunes automatic roster growth.
type DiscoveryConfig struct {
	// MinSources is the number of independent sources that must report an
	// unknown name before it is admitted.
	MinSources int `yaml:"min_sources"`
}

// NotifyConfig configures run summary destinations.
type NotifyConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Webhook  WebhookConfig  `yaml:"webhook"`
}

// TelegramConfig for Telegram bot notifications.
type TelegramConfig struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token"`
	ChatID  int64  `yaml:"chat_id"`
}

// WebhookConfig for generic webhook notifications.
type WebhookConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Secret  string `yaml:"secret"`
}

// ServerConfig configures the read-only HTTP API.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// BoardConfig is one leaderboard: its dataset file, scoring knobs, and
// the categories feeding it.
type BoardConfig struct {
	Name    string `yaml:"name"`
	Enabled bool   `yaml:"enabled"`

	// DataFile is the published JSON dataset the board reads and writes.
	DataFile string `yaml:"data_file"`

	// QualificationMin is the number of categories with data an entity
	// needs before it is ranked.
	QualificationMin int `yaml:"qualification_min"`

	// DampenerBase enables the coverage dampener when inside (0, 1).
	DampenerBase float64 `yaml:"dampener_base"`

	TopN int `yaml:"top_n"`

	Categories []CategoryConfig `yaml:"categories"`
}

// CategoryConfig is one scoring axis and the sources that feed it.
type CategoryConfig struct {
	Key           string         `yaml:"key"`
	Weight        float64        `yaml:"weight"`
	LowerIsBetter bool           `yaml:"lower_is_better"`
	Sources       []SourceConfig `yaml:"sources"`
}

// SourceConfig is one measurement provider. Type selects the provider:
// "table" scrapes an HTML leaderboard table, "jsonapi" reads a JSON
// endpoint, "file" reads a local JSON map, "static" inlines values.
type SourceConfig struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
	URL  string `yaml:"url"`
	Path string `yaml:"path"`

	// Table column matching hints.
	NameHints  []string `yaml:"name_hints"`
	ScoreHints []string `yaml:"score_hints"`

	// JSON field names.
	NameField  string `yaml:"name_field"`
	ValueField string `yaml:"value_field"`

	// Static values.
	Values map[string]float64 `yaml:"values"`
}

// Default returns a Config with sensible defaults: the main board with its
// seven weighted categories and the public leaderboards that feed them.
func Default() *Config {
	return &Config{
		Database:  DatabaseConfig{Path: "./trainingrun.db"},
		Schedule:  ScheduleConfig{Cron: "0 6 * * *"},
		Publish:   PublishConfig{Remote: "origin", Branch: "main"},
		Discovery: DiscoveryConfig{MinSources: 2},
		Server:    ServerConfig{Port: 8080},
		Boards: []BoardConfig{
			{
				Name:             "trs",
				Enabled:          true,
				DataFile:         "./data/trs.json",
				QualificationMin: 5,
				TopN:             10,
				Categories: []CategoryConfig{
					{
						Key: "safety", Weight: 0.10,
						Sources: []SourceConfig{
							{Name: "safetybench", Type: "table", URL: "https://llm-safety-challenge.org/leaderboard"},
						},
					},
					{
						Key: "reasoning", Weight: 0.20,
						Sources: []SourceConfig{
							{Name: "gpqa", Type: "table", URL: "https://klu.ai/llm-leaderboard"},
							{Name: "hle", Type: "table", URL: "https://scale.com/leaderboard/humanitys_last_exam"},
						},
					},
					{
						Key: "coding", Weight: 0.20,
						Sources: []SourceConfig{
							{Name: "swebench", Type: "table", URL: "https://www.swebench.com/"},
							{Name: "webdev-arena", Type: "table", URL: "https://web.lmarena.ai/leaderboard"},
						},
					},
					{
						Key: "human_preference", Weight: 0.20,
						Sources: []SourceConfig{
							{Name: "lmarena", Type: "table", URL: "https://lmarena.ai/leaderboard", ScoreHints: []string{"arena score", "elo"}},
						},
					},
					{
						Key: "knowledge", Weight: 0.15,
						Sources: []SourceConfig{
							{Name: "mmlu-pro", Type: "table", URL: "https://huggingface.co/spaces/TIGER-Lab/MMLU-Pro"},
						},
					},
					{
						Key: "efficiency", Weight: 0.10, LowerIsBetter: true,
						Sources: []SourceConfig{
							{Name: "artificial-analysis", Type: "table", URL: "https://artificialanalysis.ai/leaderboards/models", ScoreHints: []string{"price", "cost"}},
						},
					},
					{
						Key: "usage", Weight: 0.05,
						Sources: []SourceConfig{
							{Name: "openrouter", Type: "jsonapi", URL: "https://openrouter.ai/api/v1/rankings", NameField: "model", ValueField: "tokens"},
						},
					},
				},
			},
		},
	}
}

// Load reads configuration from a YAML file and applies env var overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Board returns the named board config, or nil.
func (c *Config) Board(name string) *BoardConfig {
	for i := range c.Boards {
		if c.Boards[i].Name == name {
			return &c.Boards[i]
		}
	}
	return nil
}

func (c *Config) validate() error {
	seen := make(map[string]bool)
	for _, b := range c.Boards {
		if b.Name == "" {
			return fmt.Errorf("config: board with empty name")
		}
		if seen[b.Name] {
			return fmt.Errorf("config: duplicate board %q", b.Name)
		}
		seen[b.Name] = true

		if b.DataFile == "" {
			return fmt.Errorf("config: board %q has no data_file", b.Name)
		}
		for _, cat := range b.Categories {
			if cat.Key == "" {
				return fmt.Errorf("config: board %q has a category with empty key", b.Name)
			}
			if cat.Weight <= 0 {
				return fmt.Errorf("config: board %q category %q has non-positive weight", b.Name, cat.Key)
			}
		}
	}
	return nil
}

// applyEnvOverrides overrides config values with environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TRAININGRUN_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("TRAININGRUN_REPO_PATH"); v != "" {
		cfg.Publish.RepoDir = v
		cfg.Publish.Enabled = true
	}
	if v := os.Getenv("TELEGRAM_TOKEN"); v != "" {
		cfg.Notify.Telegram.Token = v
		cfg.Notify.Telegram.Enabled = true
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Notify.Telegram.ChatID = id
		}
	}
	if v := os.Getenv("WEBHOOK_URL"); v != "" {
		cfg.Notify.Webhook.URL = v
		cfg.Notify.Webhook.Enabled = true
	}
	if v := os.Getenv("WEBHOOK_SECRET"); v != "" {
		cfg.Notify.Webhook.Secret = v
	}
}
