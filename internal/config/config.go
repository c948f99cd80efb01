package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "RETAIL"

// Config represents the complete application configuration
type Config struct {
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Quality   QualityConfig   `yaml:"quality" envconfig:"QUALITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	History   HistoryConfig   `yaml:"history" envconfig:"HISTORY"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// PipelineConfig controls what a run does
type PipelineConfig struct {
	ProjectRoot         string        `yaml:"project_root" envconfig:"PROJECT_ROOT" default:"." validate:"required"`
	SkipValidation      bool          `yaml:"skip_validation" envconfig:"SKIP_VALIDATION" default:"false"`
	StrictGate          bool          `yaml:"strict_gate" envconfig:"STRICT_GATE" default:"false"`
	RegenerateOnMissing bool          `yaml:"regenerate_on_missing" envconfig:"REGENERATE_ON_MISSING" default:"true"`
	UpdateLiveData      bool          `yaml:"update_live_data" envconfig:"UPDATE_LIVE_DATA" default:"true"`
	GeneratorSeed       int64         `yaml:"generator_seed" envconfig:"GENERATOR_SEED" default:"42"`
	Version             string        `yaml:"version" envconfig:"VERSION" default:"1.0.0" validate:"required"`
	BackupRetention     time.Duration `yaml:"backup_retention" envconfig:"BACKUP_RETENTION" default:"720h" validate:"gte=0"`
}

// QualityConfig holds the numeric thresholds used by cleaning and validation
type QualityConfig struct {
	GateThreshold   float64   `yaml:"gate_threshold" envconfig:"GATE_THRESHOLD" default:"80" validate:"gte=0,lte=100"`
	StrictThreshold float64   `yaml:"strict_threshold" envconfig:"STRICT_THRESHOLD" default:"95" validate:"gte=0,lte=100"`
	IQRMultiplier   float64   `yaml:"iqr_multiplier" envconfig:"IQR_MULTIPLIER" default:"1.5" validate:"gt=0"`
	ZScoreThreshold float64   `yaml:"zscore_threshold" envconfig:"ZSCORE_THRESHOLD" default:"3" validate:"gt=0"`
	Bounds          BoundsBox `yaml:"bounds" envconfig:"BOUNDS"`
}

// BoundsBox is the geographic operating region; coordinates outside it are rejected
type BoundsBox struct {
	MinLat float64 `yaml:"min_lat" envconfig:"MIN_LAT" default:"41" validate:"gte=-90,lte=90"`
	MaxLat float64 `yaml:"max_lat" envconfig:"MAX_LAT" default:"51" validate:"gte=-90,lte=90,gtfield=MinLat"`
	MinLon float64 `yaml:"min_lon" envconfig:"MIN_LON" default:"-5" validate:"gte=-180,lte=180"`
	MaxLon float64 `yaml:"max_lon" envconfig:"MAX_LON" default:"10" validate:"gte=-180,lte=180,gtfield=MinLon"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"both" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080" validate:"gt=0,lte=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"10m" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RunRateLimit    float64       `yaml:"run_rate_limit" envconfig:"RUN_RATE_LIMIT" default:"0.2" validate:"gt=0"`
	RunBurst        int           `yaml:"run_burst" envconfig:"RUN_BURST" default:"1" validate:"gte=1"`
}

// HistoryConfig configures the run history database
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	DBPath  string `yaml:"db_path" envconfig:"DB_PATH"`
}

// TelemetryConfig selects OpenTelemetry exporters
type TelemetryConfig struct {
	Enabled        bool    `yaml:"enabled" envconfig:"ENABLED" default:"false"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" default:"none" validate:"oneof=stdout none"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" default:"prometheus" validate:"oneof=prometheus none"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" default:"1" validate:"gte=0,lte=1"`
}

// Load loads configuration from a .env file, environment variables and an optional YAML file.
// An empty configFile means no file is read.
func Load(configFile string) (*Config, error) {
	// A missing .env is the normal case outside development
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile != "" {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	if err := cfg.resolvePaths(); err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs fills file values into env config wherever env kept the default.
// Env takes precedence for anything explicitly set.
func mergeConfigs(fileConfig, envConfig Config) Config {
	defaults := Default()

	if envConfig.Pipeline.ProjectRoot == defaults.Pipeline.ProjectRoot && fileConfig.Pipeline.ProjectRoot != "" {
		envConfig.Pipeline.ProjectRoot = fileConfig.Pipeline.ProjectRoot
	}
	if envConfig.Pipeline.Version == defaults.Pipeline.Version && fileConfig.Pipeline.Version != "" {
		envConfig.Pipeline.Version = fileConfig.Pipeline.Version
	}
	if fileConfig.Pipeline.SkipValidation {
		envConfig.Pipeline.SkipValidation = true
	}
	if fileConfig.Pipeline.StrictGate {
		envConfig.Pipeline.StrictGate = true
	}
	if envConfig.Quality.GateThreshold == defaults.Quality.GateThreshold && fileConfig.Quality.GateThreshold != 0 {
		envConfig.Quality.GateThreshold = fileConfig.Quality.GateThreshold
	}
	if envConfig.Quality.StrictThreshold == defaults.Quality.StrictThreshold && fileConfig.Quality.StrictThreshold != 0 {
		envConfig.Quality.StrictThreshold = fileConfig.Quality.StrictThreshold
	}
	if envConfig.Logging.Level == defaults.Logging.Level && fileConfig.Logging.Level != "" {
		envConfig.Logging.Level = fileConfig.Logging.Level
	}
	if envConfig.Logging.Output == defaults.Logging.Output && fileConfig.Logging.Output != "" {
		envConfig.Logging.Output = fileConfig.Logging.Output
	}
	if envConfig.Server.Port == defaults.Server.Port && fileConfig.Server.Port != 0 {
		envConfig.Server.Port = fileConfig.Server.Port
	}
	if envConfig.History.DBPath == "" {
		envConfig.History.DBPath = fileConfig.History.DBPath
	}

	return envConfig
}

// resolvePaths makes the project root absolute and fills path defaults derived from it
func (c *Config) resolvePaths() error {
	root, err := filepath.Abs(c.Pipeline.ProjectRoot)
	if err != nil {
		return fmt.Errorf("failed to resolve project root %s: %w", c.Pipeline.ProjectRoot, err)
	}
	c.Pipeline.ProjectRoot = root

	paths := NewPaths(root)
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = paths.GetLogPath(DefaultLogFileName)
	}
	if c.History.DBPath == "" {
		c.History.DBPath = paths.HistoryDB
	}
	return nil
}

// Validate checks struct constraints declared in the validate tags
func (c *Config) Validate() error {
	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}
	return validator.New().Struct(c)
}

// Paths returns the directory layout derived from the configured project root
func (c *Config) Paths() *Paths {
	return NewPaths(c.Pipeline.ProjectRoot)
}

// EffectiveGateThreshold returns the success rate a run must reach to be promoted
func (c *Config) EffectiveGateThreshold() float64 {
	if c.Pipeline.StrictGate {
		return c.Quality.StrictThreshold
	}
	return c.Quality.GateThreshold
}

// Default returns default configuration rooted at the current directory
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			ProjectRoot:         ".",
			RegenerateOnMissing: true,
			UpdateLiveData:      true,
			GeneratorSeed:       42,
			Version:             PipelineVersion,
			BackupRetention:     DefaultBackupRetention,
		},
		Quality: QualityConfig{
			GateThreshold:   DefaultGateThreshold,
			StrictThreshold: DefaultStrictThreshold,
			IQRMultiplier:   DefaultIQRMultiplier,
			ZScoreThreshold: DefaultZScoreThreshold,
			Bounds: BoundsBox{
				MinLat: DefaultMinLatitude,
				MaxLat: DefaultMaxLatitude,
				MinLon: DefaultMinLongitude,
				MaxLon: DefaultMaxLongitude,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "both",
		},
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    10 * time.Minute,
			ShutdownTimeout: 30 * time.Second,
			RunRateLimit:    0.2,
			RunBurst:        1,
		},
		History: HistoryConfig{
			Enabled: true,
		},
		Telemetry: TelemetryConfig{
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			SampleRatio:    1,
		},
	}
}

// ForRoot returns the default configuration rooted at root with paths resolved.
// Tests and embedding callers use it instead of Load.
func ForRoot(root string) *Config {
	cfg := Default()
	cfg.Pipeline.ProjectRoot = root
	if err := cfg.resolvePaths(); err != nil {
		cfg.Pipeline.ProjectRoot = root
	}
	return cfg
}
