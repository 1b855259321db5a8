package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/newthinker/prism/internal/core"
)

type Config struct {
	Data       DataConfig       `mapstructure:"data"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Policies   PoliciesConfig   `mapstructure:"policies"`
	Results    ResultsConfig    `mapstructure:"results"`
	Archive    ArchiveConfig    `mapstructure:"archive"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// DataConfig locates the input snapshots loaded once, up front.
type DataConfig struct {
	UniverseFile     string `mapstructure:"universe_file"`
	ReturnsFile      string `mapstructure:"returns_file"`
	FundamentalsFile string `mapstructure:"fundamentals_file"`
}

// SimulationConfig holds engine defaults, overridable per run via flags.
type SimulationConfig struct {
	PeriodsPerYear int    `mapstructure:"periods_per_year"`
	Trials         int    `mapstructure:"trials"`
	RetryLimit     int    `mapstructure:"retry_limit"`
	Workers        int    `mapstructure:"workers"`
	Seed           uint64 `mapstructure:"seed"`
}

// PoliciesConfig parameterizes the ratio-driven policy.
type PoliciesConfig struct {
	RatioName      string `mapstructure:"ratio_name"`
	RatioAscending bool   `mapstructure:"ratio_ascending"`
}

// ResultsConfig selects the durable results table backend.
type ResultsConfig struct {
	Type string `mapstructure:"type"` // "sqlite" or "csv"
	DSN  string `mapstructure:"dsn"`  // For sqlite
	Path string `mapstructure:"path"` // For csv
}

// ArchiveConfig selects the snapshot backend used after sweeps.
type ArchiveConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Type    string   `mapstructure:"type"` // "localfs" or "s3"
	Path    string   `mapstructure:"path"` // For localfs
	S3      S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Simulation: SimulationConfig{
			PeriodsPerYear: 12,
			Trials:         1000,
			RetryLimit:     3,
			Seed:           42,
		},
		Policies: PoliciesConfig{
			RatioName:      "roe",
			RatioAscending: false,
		},
		Results: ResultsConfig{
			Type: "sqlite",
			DSN:  "prism_results.db",
			Path: "prism_results.csv",
		},
		Archive: ArchiveConfig{
			Enabled: false,
			Type:    "localfs",
			Path:    "archive",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9090",
			Path:    "/metrics",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Simulation.PeriodsPerYear < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("periods_per_year must be positive, got %d", c.Simulation.PeriodsPerYear))
	}
	if c.Simulation.Trials < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("trials must be positive, got %d", c.Simulation.Trials))
	}
	if c.Simulation.RetryLimit < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("retry_limit cannot be negative, got %d", c.Simulation.RetryLimit))
	}

	switch c.Results.Type {
	case "sqlite", "csv":
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("results type must be sqlite or csv, got %q", c.Results.Type))
	}

	switch c.Archive.Type {
	case "localfs", "s3":
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("archive type must be localfs or s3, got %q", c.Archive.Type))
	}
	if c.Archive.Enabled && c.Archive.Type == "s3" && c.Archive.S3.Bucket == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("s3 bucket required when archive type is s3"))
	}

	if c.Policies.RatioName == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("policies ratio_name cannot be empty"))
	}

	return nil
}
