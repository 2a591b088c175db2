package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/pkg/contracts/domain"
)

// EnvPrefix is the prefix of every configuration environment variable.
const EnvPrefix = "COMPLIANCE"

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig        `yaml:"server" envconfig:"SERVER"`
	Security      SecurityConfig      `yaml:"security" envconfig:"SECURITY"`
	Logging       LoggingConfig       `yaml:"logging" envconfig:"LOGGING"`
	Upload        UploadConfig        `yaml:"upload" envconfig:"UPLOAD"`
	Compliance    ComplianceConfig    `yaml:"compliance" envconfig:"CHECK"`
	Observability ObservabilityConfig `yaml:"observability" envconfig:"OBSERVABILITY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// UploadConfig limits accepted workbook uploads
type UploadConfig struct {
	MaxBytes   int64    `yaml:"max_bytes" envconfig:"MAX_BYTES"`
	Extensions []string `yaml:"extensions" envconfig:"EXTENSIONS"`
}

// ComplianceConfig holds the checker defaults and result retention
type ComplianceConfig struct {
	StatusColumn       string        `yaml:"status_column" envconfig:"STATUS_COLUMN"`
	OutputFilename     string        `yaml:"output_filename" envconfig:"OUTPUT_FILENAME"`
	DefaultThreshold   int           `yaml:"default_threshold" envconfig:"DEFAULT_THRESHOLD"`
	DefaultDirection   string        `yaml:"default_direction" envconfig:"DEFAULT_DIRECTION"`
	DefaultBlankPolicy string        `yaml:"default_blank_policy" envconfig:"DEFAULT_BLANK_POLICY"`
	PreviewRows        int           `yaml:"preview_rows" envconfig:"PREVIEW_ROWS"`
	ResultTTL          time.Duration `yaml:"result_ttl" envconfig:"RESULT_TTL"`
	JanitorInterval    time.Duration `yaml:"janitor_interval" envconfig:"JANITOR_INTERVAL"`
	MaxStoredResults   int           `yaml:"max_stored_results" envconfig:"MAX_STORED_RESULTS"`
}

// ObservabilityConfig controls tracing and metrics export
type ObservabilityConfig struct {
	ServiceName    string  `yaml:"service_name" envconfig:"SERVICE_NAME"`
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`
	MetricsEnabled bool    `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO"`
}

// Load builds the configuration from defaults, the optional config file and
// COMPLIANCE_* environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	return LoadFile(getConfigFilePath())
}

// LoadFile is Load with an explicit config file. An empty path skips the file.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg; keys absent from the file
// keep their current value.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	if c.Security.RateLimit.Enabled && (c.Security.RateLimit.RPS <= 0 || c.Security.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive")
	}

	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("upload max bytes must be positive")
	}

	if len(c.Upload.Extensions) == 0 {
		return fmt.Errorf("at least one upload extension must be specified")
	}

	if strings.TrimSpace(c.Compliance.StatusColumn) == "" {
		return fmt.Errorf("status column must not be empty")
	}

	if c.Compliance.DefaultThreshold < 0 {
		return fmt.Errorf("default threshold must not be negative: %d", c.Compliance.DefaultThreshold)
	}

	if _, err := domain.ParseDirection(c.Compliance.DefaultDirection); err != nil {
		return fmt.Errorf("default direction: %w", err)
	}

	if _, err := domain.ParseStatus(c.Compliance.DefaultBlankPolicy); err != nil {
		return fmt.Errorf("default blank policy: %w", err)
	}

	if c.Compliance.PreviewRows < 0 {
		return fmt.Errorf("preview rows must not be negative")
	}

	if c.Compliance.ResultTTL <= 0 {
		return fmt.Errorf("result ttl must be positive")
	}

	if c.Compliance.JanitorInterval <= 0 {
		return fmt.Errorf("janitor interval must be positive")
	}

	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		return fmt.Errorf("invalid logging output: %q", c.Logging.Output)
	}

	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}

	// Logs are always JSON
	c.Logging.Format = "json"

	switch c.Observability.TraceExporter {
	case "stdout", "none":
	default:
		return fmt.Errorf("invalid trace exporter: %q", c.Observability.TraceExporter)
	}

	return nil
}

// BlankPolicy returns the parsed default blank policy.
func (c ComplianceConfig) BlankPolicy() domain.Status {
	s, err := domain.ParseStatus(c.DefaultBlankPolicy)
	if err != nil {
		return domain.StatusNotApplicable
	}
	return s
}

// Direction returns the parsed default direction.
func (c ComplianceConfig) Direction() domain.Direction {
	d, err := domain.ParseDirection(c.DefaultDirection)
	if err != nil {
		return domain.DirectionGreaterThan
	}
	return d
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if path := os.Getenv(EnvPrefix + "_CONFIG_FILE"); path != "" {
		return path
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  60 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     20,
				Burst:   40,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/app.log",
		},
		Upload: UploadConfig{
			MaxBytes:   32 << 20, // 32MiB
			Extensions: []string{".xlsx"},
		},
		Compliance: ComplianceConfig{
			StatusColumn:       "Status",
			OutputFilename:     "Updated_Compliance_Check.xlsx",
			DefaultThreshold:   42,
			DefaultDirection:   string(domain.DirectionGreaterThan),
			DefaultBlankPolicy: string(domain.StatusNotApplicable),
			PreviewRows:        200,
			ResultTTL:          15 * time.Minute,
			JanitorInterval:    time.Minute,
			MaxStoredResults:   256,
		},
		Observability: ObservabilityConfig{
			ServiceName:    "compliance-checker",
			Environment:    "development",
			TraceExporter:  "none",
			MetricsEnabled: true,
			SampleRatio:    1.0,
		},
	}
}
