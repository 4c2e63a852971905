package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Parsing  ParsingConfig  `yaml:"parsing" envconfig:"PARSING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" default:"33554432"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"20"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"10"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"stdout"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
}

// DateAnchor selects where on a date-sheet line the date pattern may match.
type DateAnchor string

const (
	// AnchorLineStart only accepts dates at the beginning of a line.
	AnchorLineStart DateAnchor = "line-start"
	// AnchorAnywhere accepts a date anywhere in the line.
	AnchorAnywhere DateAnchor = "anywhere"
	// AnchorAuto tries line-start first and rescans anywhere in the line
	// when the anchored pass produced no entries at all.
	AnchorAuto DateAnchor = "auto"
)

// ParsingConfig contains the tunables for both document parsers. Exam
// document formats are not under this system's control, so token shapes
// are configuration rather than constants.
type ParsingConfig struct {
	// PaperIDDigits is the fixed length of a paper id token.
	PaperIDDigits int `yaml:"paper_id_digits" envconfig:"PAPER_ID_DIGITS" default:"5"`
	// RollNoMinDigits is the minimum length of a registration-style roll
	// number used by the tabular and context-window strategies.
	RollNoMinDigits int `yaml:"roll_no_min_digits" envconfig:"ROLL_NO_MIN_DIGITS" default:"9"`
	// ContextWindow is the number of characters taken on each side of a
	// roll-number occurrence by the last-resort strategy.
	ContextWindow int `yaml:"context_window" envconfig:"CONTEXT_WINDOW" default:"1000"`
	// DateAnchor controls date matching within date-sheet lines.
	DateAnchor DateAnchor `yaml:"date_anchor" envconfig:"DATE_ANCHOR" default:"auto"`
	// PreviewChars is the length of the raw-text previews returned for
	// troubleshooting.
	PreviewChars int `yaml:"preview_chars" envconfig:"PREVIEW_CHARS" default:"2000"`
	// ForceTextMode makes the roll-list parser skip the tabular strategy
	// by default; requests can still set it per call.
	ForceTextMode bool `yaml:"force_text_mode" envconfig:"FORCE_TEXT_MODE" default:"false"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" default:"output"`
	UploadDir string `yaml:"upload_dir" envconfig:"UPLOAD_DIR" default:"uploads"`
	LogsDir   string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	var cfg Config

	// Environment variables take precedence over the file.
	if err := envconfig.Process("EXAMSCHED", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile := findConfigFile(); configFile != "" {
		fileCfg, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = merge(*fileCfg, cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from a YAML file
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

// merge overlays env config on top of file config (env wins)
func merge(fileCfg, envCfg Config) Config {
	if envCfg.Server.Port == 0 {
		envCfg.Server.Port = fileCfg.Server.Port
	}
	if envCfg.Server.ReadTimeout == 0 {
		envCfg.Server.ReadTimeout = fileCfg.Server.ReadTimeout
	}
	if envCfg.Server.WriteTimeout == 0 {
		envCfg.Server.WriteTimeout = fileCfg.Server.WriteTimeout
	}
	if envCfg.Parsing.PaperIDDigits == 0 {
		envCfg.Parsing.PaperIDDigits = fileCfg.Parsing.PaperIDDigits
	}
	if envCfg.Parsing.RollNoMinDigits == 0 {
		envCfg.Parsing.RollNoMinDigits = fileCfg.Parsing.RollNoMinDigits
	}
	if envCfg.Parsing.ContextWindow == 0 {
		envCfg.Parsing.ContextWindow = fileCfg.Parsing.ContextWindow
	}
	if envCfg.Parsing.DateAnchor == "" {
		envCfg.Parsing.DateAnchor = fileCfg.Parsing.DateAnchor
	}
	return envCfg
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
	if len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}
	if c.Parsing.PaperIDDigits < 3 || c.Parsing.PaperIDDigits > 10 {
		return fmt.Errorf("paper id digits out of range: %d", c.Parsing.PaperIDDigits)
	}
	if c.Parsing.RollNoMinDigits < c.Parsing.PaperIDDigits {
		return fmt.Errorf("roll number min digits (%d) must not be shorter than paper id digits (%d)",
			c.Parsing.RollNoMinDigits, c.Parsing.PaperIDDigits)
	}
	if c.Parsing.ContextWindow <= 0 {
		return fmt.Errorf("context window must be positive")
	}
	switch c.Parsing.DateAnchor {
	case AnchorLineStart, AnchorAnywhere, AnchorAuto:
	default:
		return fmt.Errorf("invalid date anchor mode: %q", c.Parsing.DateAnchor)
	}
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}
	return nil
}

// EnsureDirectories creates the directories the service writes into
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.UploadDir, c.Paths.LogsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// findConfigFile returns the path to the config file, if any
func findConfigFile() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		filepath.Join("..", "configs", "config.yaml"),
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20,
			MaxUploadBytes:  32 << 20,
			ShutdownTimeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     20,
				Burst:   10,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "stdout",
			FilePath: "logs/app.log",
		},
		Parsing: DefaultParsing(),
		Paths: PathsConfig{
			OutputDir: "output",
			UploadDir: "uploads",
			LogsDir:   "logs",
		},
	}
}

// DefaultParsing returns the default parser tunables
func DefaultParsing() ParsingConfig {
	return ParsingConfig{
		PaperIDDigits:   5,
		RollNoMinDigits: 9,
		ContextWindow:   1000,
		DateAnchor:      AnchorAuto,
		PreviewChars:    2000,
	}
}
