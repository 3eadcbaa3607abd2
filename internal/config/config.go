package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the file scanner configuration
type Config struct {
	// Scan settings
	Scan ScanSettings `mapstructure:"scan" yaml:"scan"`

	// Local classification
	Local LocalConfig `mapstructure:"local" yaml:"local"`

	// Pattern rules, in evaluation order
	Rules []RuleConfig `mapstructure:"rules" yaml:"rules"`

	// Remote classification
	Remote RemoteConfig `mapstructure:"remote" yaml:"remote"`

	// Tag cache
	Cache CacheConfig `mapstructure:"cache" yaml:"cache"`

	// Report settings
	Report ReportConfig `mapstructure:"report" yaml:"report"`

	// Report upload
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`

	// Periodic scans
	Schedule ScheduleConfig `mapstructure:"schedule" yaml:"schedule"`

	// UI theme flag, stored for the desktop shell
	Theme string `mapstructure:"theme" yaml:"theme"`

	// keyFromEnv marks an API key taken from the environment; Save writes
	// fileAPIKey in its place
	keyFromEnv bool
	fileAPIKey string
}

// ScanSettings holds defaults for a scan
type ScanSettings struct {
	IncludeHidden bool     `mapstructure:"include_hidden" yaml:"include_hidden"`
	Extensions    string   `mapstructure:"extensions" yaml:"extensions"` // whitespace separated, e.g. ".jpg .png"
	Mode          string   `mapstructure:"mode" yaml:"mode"`             // local, remote, hybrid
	TagCap        int      `mapstructure:"tag_cap" yaml:"tag_cap"`
	Workers       int      `mapstructure:"workers" yaml:"workers"`
	Exclude       []string `mapstructure:"exclude" yaml:"exclude"`
}

// LocalConfig holds local classifier settings
type LocalConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// RuleConfig is one stored pattern rule
type RuleConfig struct {
	Category string   `mapstructure:"category" yaml:"category"`
	Patterns []string `mapstructure:"patterns" yaml:"patterns"`
	Tags     []string `mapstructure:"tags" yaml:"tags"`
}

// RemoteConfig holds remote classifier settings
type RemoteConfig struct {
	Enabled           bool        `mapstructure:"enabled" yaml:"enabled"`
	Provider          string      `mapstructure:"provider" yaml:"provider"` // anthropic, openai, http
	APIKey            string      `mapstructure:"api_key" yaml:"api_key"`
	Model             string      `mapstructure:"model" yaml:"model"`
	BaseURL           string      `mapstructure:"base_url" yaml:"base_url"`
	DailyLimit        float64     `mapstructure:"daily_limit" yaml:"daily_limit"` // USD
	PricePer1KTokens  float64     `mapstructure:"price_per_1k_tokens" yaml:"price_per_1k_tokens"`
	Timeout           int         `mapstructure:"timeout" yaml:"timeout"` // seconds per request
	RequestsPerMinute int         `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
	BudgetMode        string      `mapstructure:"budget_mode" yaml:"budget_mode"` // cumulative, per_call
	Gates             RemoteGates `mapstructure:"gates" yaml:"gates"`
	Cache             bool        `mapstructure:"cache" yaml:"cache"`
}

// RemoteGates selects which files are sent to the remote classifier.
// When Enabled is false every file is eligible.
type RemoteGates struct {
	Enabled        bool `mapstructure:"enabled" yaml:"enabled"`
	UnknownFiles   bool `mapstructure:"unknown_files" yaml:"unknown_files"`
	Documents      bool `mapstructure:"documents" yaml:"documents"`
	ProjectFolders bool `mapstructure:"project_folders" yaml:"project_folders"`
}

// CacheConfig holds tag cache settings
type CacheConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// ReportConfig holds export defaults
type ReportConfig struct {
	Format string `mapstructure:"format" yaml:"format"` // text, csv, json
	Output string `mapstructure:"output" yaml:"output"`
}

// StorageConfig holds report upload settings
type StorageConfig struct {
	S3 S3Config `mapstructure:"s3" yaml:"s3"`
}

// S3Config describes an S3-compatible bucket
type S3Config struct {
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint"`
	Region    string `mapstructure:"region" yaml:"region"`
	Bucket    string `mapstructure:"bucket" yaml:"bucket"`
	Prefix    string `mapstructure:"prefix" yaml:"prefix"`
	AccessKey string `mapstructure:"access_key" yaml:"access_key"`
	SecretKey string `mapstructure:"secret_key" yaml:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl" yaml:"use_ssl"`
}

// ScheduleConfig holds periodic scan settings
type ScheduleConfig struct {
	Spec      string `mapstructure:"spec" yaml:"spec"` // cron expression or descriptor such as @daily
	Root      string `mapstructure:"root" yaml:"root"`
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
	Upload    bool   `mapstructure:"upload" yaml:"upload"`
}

// Budget modes
const (
	BudgetCumulative = "cumulative"
	BudgetPerCall    = "per_call"
)

// Provider names
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderHTTP      = "http"
)

// DefaultPath returns the default config file location
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "filescan", "config.yaml")
}

// DefaultCachePath returns the default tag cache location
func DefaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "filescan", "tags.db")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("scan.include_hidden", false)
	v.SetDefault("scan.extensions", "")
	v.SetDefault("scan.mode", string(ModeLocal))
	v.SetDefault("scan.tag_cap", 7)
	v.SetDefault("scan.workers", 4)
	v.SetDefault("scan.exclude", []string{})

	v.SetDefault("local.enabled", true)

	v.SetDefault("remote.enabled", false)
	v.SetDefault("remote.provider", ProviderAnthropic)
	v.SetDefault("remote.model", "haiku")
	v.SetDefault("remote.daily_limit", 1.0)
	v.SetDefault("remote.price_per_1k_tokens", 0.002)
	v.SetDefault("remote.timeout", 10)
	v.SetDefault("remote.requests_per_minute", 60)
	v.SetDefault("remote.budget_mode", BudgetCumulative)
	v.SetDefault("remote.gates.enabled", false)
	v.SetDefault("remote.gates.unknown_files", true)
	v.SetDefault("remote.gates.documents", true)
	v.SetDefault("remote.gates.project_folders", true)
	v.SetDefault("remote.cache", true)

	v.SetDefault("cache.path", DefaultCachePath())
	v.SetDefault("report.format", "")
	v.SetDefault("report.output", "")
	v.SetDefault("storage.s3.use_ssl", true)
	v.SetDefault("schedule.spec", "@daily")
	v.SetDefault("schedule.upload", false)
	v.SetDefault("theme", "light")
}

// envKeys have no default, so AutomaticEnv alone would not see them
var envKeys = []string{
	"remote.api_key",
	"remote.base_url",
	"storage.s3.endpoint",
	"storage.s3.region",
	"storage.s3.bucket",
	"storage.s3.prefix",
	"storage.s3.access_key",
	"storage.s3.secret_key",
	"schedule.root",
	"schedule.output_dir",
}

// apiKeyEnv overrides remote.api_key
const apiKeyEnv = "FILESCAN_REMOTE_API_KEY"

// LoadConfig loads configuration from path, environment variables and defaults.
// A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		}
	}
	fileAPIKey := v.GetString("remote.api_key")

	// Read environment variables
	v.SetEnvPrefix("FILESCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("malformed config: %w", err)
	}

	cfg.fileAPIKey = fileAPIKey
	if os.Getenv(apiKeyEnv) != "" {
		cfg.keyFromEnv = true
	}

	// The API key also falls back to the provider's conventional variable
	if cfg.Remote.APIKey == "" {
		cfg.Remote.APIKey = providerKeyFromEnv(cfg.Remote.Provider)
		cfg.keyFromEnv = cfg.Remote.APIKey != ""
	}

	return &cfg, nil
}

// Save writes the configuration as YAML, creating parent directories.
// An API key taken from the environment is not written; the file keeps the
// key it was loaded with.
func (c *Config) Save(path string) error {
	out := *c
	if c.keyFromEnv {
		out.Remote.APIKey = c.fileAPIKey
	}

	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

// ScanConfiguration builds the per-scan options for root from the stored defaults
func (c *Config) ScanConfiguration(root string) ScanConfiguration {
	return ScanConfiguration{
		Root:          root,
		IncludeHidden: c.Scan.IncludeHidden,
		Extensions:    ParseExtensionFilter(c.Scan.Extensions),
		Mode:          ParseMode(c.Scan.Mode),
		TagCap:        c.Scan.TagCap,
		Workers:       c.Scan.Workers,
		Exclude:       c.Scan.Exclude,
	}
}

func providerKeyFromEnv(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return os.Getenv("OPENAI_API_KEY")
	case ProviderAnthropic:
		return os.Getenv("ANTHROPIC_API_KEY")
	default:
		return ""
	}
}
