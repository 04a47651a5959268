// Package config handles application configuration loading from a YAML file and environment variables.
package config

import (
	"errors"
	"io/fs"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	contextutils "triviaapi/internal/utils"

	"gopkg.in/yaml.v3"
)

// ConfigFileEnvVar names the environment variable that points at an explicit config file
const ConfigFileEnvVar = "TRIVIA_CONFIG_FILE"

// DefaultConfigFile is read when ConfigFileEnvVar is unset
const DefaultConfigFile = "config.yaml"

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig `json:"server" yaml:"server"`

	// Database configuration
	Database DatabaseConfig `json:"database" yaml:"database"`

	// OpenTelemetry Configuration
	OpenTelemetry OpenTelemetryConfig `json:"open_telemetry" yaml:"open_telemetry"`

	// Trivia behaviour
	Trivia TriviaConfig `json:"trivia" yaml:"trivia"`

	// Internal fields
	IsTest bool `json:"is_test" yaml:"is_test"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Port        string   `json:"port" yaml:"port" validate:"required,numeric"`
	Debug       bool     `json:"debug" yaml:"debug"`
	LogLevel    string   `json:"log_level" yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	CORSEnabled bool     `json:"cors_enabled" yaml:"cors_enabled"`
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins"`
}

// OpenTelemetryConfig holds all OpenTelemetry-related configuration
type OpenTelemetryConfig struct {
	Endpoint       string            `json:"endpoint" yaml:"endpoint"`                                         // Default: "localhost:4317"
	Protocol       string            `json:"protocol" yaml:"protocol" validate:"oneof=grpc http"`              // "grpc" or "http"
	Insecure       bool              `json:"insecure" yaml:"insecure"`                                         // Plaintext exporter connection
	Headers        map[string]string `json:"headers" yaml:"headers"`                                           // For authenticated endpoints
	ServiceName    string            `json:"service_name" yaml:"service_name"`                                 // Default: "trivia-api"
	ServiceVersion string            `json:"service_version" yaml:"service_version"`                           // From version package
	EnableTracing  bool              `json:"enable_tracing" yaml:"enable_tracing"`                             // Default: false
	EnableMetrics  bool              `json:"enable_metrics" yaml:"enable_metrics"`                             // Default: false
	EnableLogging  bool              `json:"enable_logging" yaml:"enable_logging"`                             // Default: false
	SamplingRate   float64           `json:"sampling_rate" yaml:"sampling_rate" validate:"gte=0,lte=1"`        // Default: 1.0 (100%)
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	URL             string        `json:"url" yaml:"url" validate:"required"`
	MaxOpenConns    int           `json:"max_open_conns" yaml:"max_open_conns" validate:"gte=0"`  // Maximum number of open connections to the database
	MaxIdleConns    int           `json:"max_idle_conns" yaml:"max_idle_conns" validate:"gte=0"`  // Maximum number of idle connections in the pool
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime" yaml:"conn_max_lifetime"`             // Maximum amount of time a connection may be reused
}

// TriviaConfig controls paging and quiz behaviour
type TriviaConfig struct {
	// PageSize is the number of questions per page
	PageSize int `json:"page_size" yaml:"page_size" validate:"min=1,max=100"`
	// CurrentCategoryID selects the category reported as currentCategory on the question listing
	CurrentCategoryID int `json:"current_category_id" yaml:"current_category_id" validate:"gte=0"`
	// AllCategoriesID is the quiz_category id meaning "no category filter"
	AllCategoriesID int `json:"all_categories_id" yaml:"all_categories_id" validate:"gte=0"`
	// QuizMaxQuestions ends a quiz after this many questions; 0 disables the cap
	QuizMaxQuestions int `json:"quiz_max_questions" yaml:"quiz_max_questions" validate:"gte=0"`
}

// NewConfig loads configuration from YAML file first, then overrides with environment variables
func NewConfig() (result0 *Config, err error) {
	// Load config from YAML file
	config, err := loadConfigWithOverrides()
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to load config: %w", err)
	}

	// Override with environment variables
	config.overrideFromEnv()
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, contextutils.WrapError(err, "invalid configuration")
	}

	return config, nil
}

// Default returns a configuration populated only with built-in defaults
func Default() *Config {
	c := &Config{
		Server: ServerConfig{CORSEnabled: true},
	}
	c.applyDefaults()
	return c
}

// Validate checks the configuration against its validation tags
func (c *Config) Validate() error {
	return contextutils.ValidateStruct(c)
}

// applyDefaults fills zero values with the built-in defaults
func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = DefaultServerPort
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = DefaultLogLevel
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"*"}
	}

	if c.Database.URL == "" {
		c.Database.URL = DefaultDatabaseURL
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = DefaultMaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = DefaultMaxIdleConns
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = DatabaseConnMaxLifetime
	}

	if c.OpenTelemetry.Endpoint == "" {
		c.OpenTelemetry.Endpoint = DefaultOTelEndpoint
	}
	if c.OpenTelemetry.Protocol == "" {
		c.OpenTelemetry.Protocol = "grpc"
	}
	if c.OpenTelemetry.ServiceName == "" {
		c.OpenTelemetry.ServiceName = DefaultServiceName
	}
	if c.OpenTelemetry.SamplingRate == 0 {
		c.OpenTelemetry.SamplingRate = 1.0
	}

	if c.Trivia.PageSize == 0 {
		c.Trivia.PageSize = DefaultQuestionsPerPage
	}
	if c.Trivia.CurrentCategoryID == 0 {
		c.Trivia.CurrentCategoryID = DefaultCurrentCategoryID
	}
}

// overrideFromEnv overrides config values with environment variables using reflection
func (c *Config) overrideFromEnv() {
	overrideStructFromEnv(c)
}

// overrideStructFromEnv recursively overrides struct fields with environment variables
func overrideStructFromEnv(v interface{}) {
	overrideStructFromEnvWithPrefix(v, "")
}

// envKeyFor converts a yaml tag into its environment variable name under prefix
func envKeyFor(prefix, yamlTag string) string {
	key := strings.ToUpper(strings.ReplaceAll(yamlTag, "-", "_"))
	if prefix != "" {
		key = prefix + "_" + key
	}
	return key
}

// overrideStructFromEnvWithPrefix recursively overrides struct fields with environment variables
func overrideStructFromEnvWithPrefix(v interface{}, prefix string) {
	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		return
	}

	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)

		if !field.CanSet() {
			continue
		}

		yamlTag := strings.Split(fieldType.Tag.Get("yaml"), ",")[0]
		if yamlTag == "" || yamlTag == "-" {
			continue
		}

		envKey := envKeyFor(prefix, yamlTag)

		// time.Duration is an int64 kind but is configured as "30s" style strings
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			if envVal := os.Getenv(envKey); envVal != "" {
				if d, err := time.ParseDuration(envVal); err == nil {
					field.SetInt(int64(d))
				}
			}
			continue
		}

		switch field.Kind() {
		case reflect.String:
			if envVal := os.Getenv(envKey); envVal != "" {
				field.SetString(envVal)
			}
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if envVal := os.Getenv(envKey); envVal != "" {
				if intVal, err := strconv.ParseInt(envVal, 10, 64); err == nil {
					field.SetInt(intVal)
				}
			}
		case reflect.Float32, reflect.Float64:
			if envVal := os.Getenv(envKey); envVal != "" {
				if floatVal, err := strconv.ParseFloat(envVal, 64); err == nil {
					field.SetFloat(floatVal)
				}
			}
		case reflect.Bool:
			if envVal := os.Getenv(envKey); envVal != "" {
				if boolVal, err := strconv.ParseBool(envVal); err == nil {
					field.SetBool(boolVal)
				}
			}
		case reflect.Slice:
			if envVal := os.Getenv(envKey); envVal != "" {
				// Handle string slices (like SERVER_CORS_ORIGINS)
				if field.Type().Elem().Kind() == reflect.String {
					parts := strings.Split(envVal, ",")
					for j := range parts {
						parts[j] = strings.TrimSpace(parts[j])
					}
					field.Set(reflect.ValueOf(parts))
				}
			}
		case reflect.Struct:
			if field.CanAddr() {
				overrideStructFromEnvWithPrefix(field.Addr().Interface(), envKey)
			}
		case reflect.Ptr:
			if !field.IsNil() && field.Elem().Kind() == reflect.Struct {
				overrideStructFromEnvWithPrefix(field.Interface(), envKey)
			}
		}
	}
}

// loadConfigWithOverrides loads the config file named by TRIVIA_CONFIG_FILE or the default file.
// A missing default file is not an error; a missing explicit file is.
func loadConfigWithOverrides() (result0 *Config, err error) {
	if envPath := os.Getenv(ConfigFileEnvVar); envPath != "" {
		config, err := loadConfigFromFile(envPath)
		if err != nil {
			return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to load config from %s: %w", envPath, err)
		}
		return config, nil
	}

	config, err := loadConfigFromFile(DefaultConfigFile)
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{Server: ServerConfig{CORSEnabled: true}}, nil
	}
	return config, err
}

// loadConfigFromFile loads configuration from a specific file
func loadConfigFromFile(path string) (result0 *Config, err error) {
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// cors_enabled defaults to true when the file does not mention it
	config := Config{Server: ServerConfig{CORSEnabled: true}}
	if err := yaml.Unmarshal(yamlFile, &config); err != nil {
		return nil, err
	}

	return &config, nil
}
