package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// PasswordEnv overrides the MongoDB password from the config file when set
const PasswordEnv = "SHELTER_MONGO_PASSWORD"

// PathEnv overrides the default config file location
const PathEnv = "SHELTER_CONFIG_PATH"

// Config represents the application configuration
type Config struct {
	SQLDatabase   SQLConfig   `yaml:"sql_database"`   // SQLite for tickets
	NoSQLDatabase MongoConfig `yaml:"nosql_database"` // MongoDB for animal records
	LogLevel      string      `yaml:"log_level,omitempty" validate:"omitempty,oneof=debug info warning warn error DEBUG INFO WARNING WARN ERROR"`
	CORSOrigin    string      `yaml:"cors_origin,omitempty"`
	Reports       []ReportJob `yaml:"reports,omitempty" validate:"dive"`
	API           APIConfig   `yaml:"api,omitempty"`
}

// SQLConfig represents the ticket database configuration
type SQLConfig struct {
	Provider string `yaml:"provider"` // sqlite
	URI      string `yaml:"uri" validate:"required"`
}

// MongoConfig holds the recognized document store options.
// URI, when set, wins over host/port/credentials.
type MongoConfig struct {
	Provider       string            `yaml:"provider"` // mongodb
	URI            string            `yaml:"uri,omitempty"`
	Host           string            `yaml:"host"`
	Port           int               `yaml:"port" validate:"min=0,max=65535"`
	Username       string            `yaml:"username,omitempty"`
	Password       string            `yaml:"password,omitempty"`
	DatabaseName   string            `yaml:"database" validate:"required"`
	CollectionName string            `yaml:"collection" validate:"required"`
	Options        map[string]string `yaml:"options,omitempty"`
}

// ReportJob describes a scheduled report
type ReportJob struct {
	Name     string `yaml:"name" validate:"required"`
	CronExpr string `yaml:"cron_expr" validate:"required"`
	Report   string `yaml:"report" validate:"required"`
}

// APIConfig holds REST API limits
type APIConfig struct {
	RateLimit float64 `yaml:"rate_limit,omitempty" validate:"min=0"` // requests per second, 0 disables
	Burst     int     `yaml:"burst,omitempty" validate:"min=0"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		SQLDatabase: SQLConfig{
			Provider: "sqlite",
			URI:      "tickets_enhanced.db",
		},
		NoSQLDatabase: MongoConfig{
			Provider:       "mongodb",
			Host:           "localhost",
			Port:           27017,
			Username:       "aacuser",
			DatabaseName:   "aac",
			CollectionName: "animals",
		},
		LogLevel: "info",
		API: APIConfig{
			RateLimit: 20,
			Burst:     40,
		},
	}
}

// Load loads configuration from file. Fields missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if pw := os.Getenv(PasswordEnv); pw != "" {
		config.NoSQLDatabase.Password = pw
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the fields every command depends on
func (c *Config) Validate() error {
	if c.NoSQLDatabase.Provider != "mongodb" {
		return fmt.Errorf("unsupported nosql provider: %s", c.NoSQLDatabase.Provider)
	}
	if c.SQLDatabase.Provider != "sqlite" {
		return fmt.Errorf("unsupported sql provider: %s", c.SQLDatabase.Provider)
	}
	if c.NoSQLDatabase.URI == "" && c.NoSQLDatabase.Host == "" {
		return fmt.Errorf("nosql_database needs either uri or host")
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

var validate = validator.New()

// LoadEnvFile loads variables from a dotenv file without overriding the
// ones already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Save saves configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Config may carry credentials
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfigPath returns the default config file path
func GetConfigPath() string {
	if p := os.Getenv(PathEnv); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".shelter/config.yaml"
	}
	return filepath.Join(home, ".shelter", "config.yaml")
}

// Exists checks if config file exists
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
