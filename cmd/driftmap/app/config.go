package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/driftmap/internal/sources"
	"github.com/agentstation/driftmap/pkg/constants"
	"github.com/agentstation/driftmap/pkg/errors"
)

// EnvPrefix prefixes every environment variable the CLI reads, for example
// DRIFTMAP_SOURCE_DSN for source.dsn.
const EnvPrefix = "DRIFTMAP"

// Config holds the application configuration loaded from config files,
// environment variables and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// ConfigFile is the file actually read, if any
	ConfigFile string

	Source sources.Config

	// Workers shards the resolution pass
	Workers int
	// PerPage is the default page size for resolve
	PerPage int

	Server ServerConfig

	LogLevel  string
	LogFormat string
	LogOutput string
}

// ServerConfig holds the serve command defaults.
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
	CORS           bool          `mapstructure:"cors"`
	CORSOrigins    []string      `mapstructure:"cors_origins"`
	MetricsEnabled bool          `mapstructure:"metrics"`
}

// LoadConfig loads configuration from all sources in order of precedence:
//  1. Command-line flags (applied by UpdateFromFlags)
//  2. Environment variables (DRIFTMAP_*)
//  3. .env files
//  4. Config file (configFile, else ~/.driftmap.yaml or ./.driftmap.yaml)
//  5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile == "" {
		configFile = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("config", "reading "+configFile, err)
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".driftmap")
		// a missing default config file is not an error
		_ = v.ReadInConfig()
	}

	config := &Config{
		Verbose:    v.GetBool("verbose"),
		Quiet:      v.GetBool("quiet"),
		NoColor:    v.GetBool("no_color"),
		Format:     v.GetString("format"),
		ConfigFile: v.ConfigFileUsed(),
		Workers:    v.GetInt("engine.workers"),
		PerPage:    v.GetInt("engine.per_page"),
		LogLevel:   v.GetString("log.level"),
		LogFormat:  v.GetString("log.format"),
		LogOutput:  v.GetString("log.output"),
	}
	// Unmarshal walks every known key, so env overrides of nested keys apply.
	var sections struct {
		Source sources.Config `mapstructure:"source"`
		Server ServerConfig   `mapstructure:"server"`
	}
	if err := v.Unmarshal(&sections); err != nil {
		return nil, errors.NewConfigError("config", "decoding configuration", err)
	}
	config.Source = sections.Source
	config.Server = sections.Server

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("verbose", false)
	v.SetDefault("quiet", false)
	v.SetDefault("no_color", false)
	v.SetDefault("format", "")

	v.SetDefault("source.driver", sources.DriverFiles)
	v.SetDefault("source.path", "")
	v.SetDefault("source.rules", "")
	v.SetDefault("source.dsn", "")
	v.SetDefault("source.migrate", false)

	v.SetDefault("engine.workers", constants.DefaultWorkers)
	v.SetDefault("engine.per_page", constants.DefaultPerPage)

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cache_ttl", constants.CacheTTL)
	v.SetDefault("server.cors", false)
	v.SetDefault("server.cors_origins", []string{})
	v.SetDefault("server.metrics", true)

	// LOG_* without the prefix are honored by the logging package
	v.SetDefault("log.level", "")
	v.SetDefault("log.format", envOr("LOG_FORMAT", "auto"))
	v.SetDefault("log.output", envOr("LOG_OUTPUT", "stderr"))
}

// Validate checks values that would otherwise fail later and less clearly.
func (c *Config) Validate() error {
	if c.Workers < 1 || c.Workers > constants.MaxWorkers {
		return errors.NewValidationError("engine.workers", c.Workers, "must be between 1 and 64")
	}
	if c.PerPage < constants.MinPerPage || c.PerPage > constants.MaxPerPage {
		return errors.NewValidationError("engine.per_page", c.PerPage, "must be between 1 and 1000")
	}
	switch c.Source.Driver {
	case sources.DriverFiles, sources.DriverSQLite, sources.DriverPostgres:
	default:
		return errors.NewValidationError("source.driver", c.Source.Driver, "must be one of: files, sqlite3, postgres")
	}
	return nil
}

// UpdateFromFlags updates config values from parsed command flags.
// Flag values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads .env files; .env.local overrides .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		// godotenv.Load never overrides variables that are already set, so
		// the more specific file is loaded first.
		_ = godotenv.Load(envFile)
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
