package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment variables that override the file
const EnvPrefix = "RECYCLE"

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	AWS        AWSConfig        `yaml:"aws"`
	JWT        JWTConfig        `yaml:"jwt"`
	Log        LogConfig        `yaml:"log"`
	SMTP       SMTPConfig       `yaml:"smtp"`
	Classifier ClassifierConfig `yaml:"classifier"`
	APNS       APNSConfig       `yaml:"apns"`
	Geo        GeoConfig        `yaml:"geo"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit" split_words:"true"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            int           `yaml:"port"`
	Host            string        `yaml:"host"`
	ReadTimeout     time.Duration `yaml:"read_timeout" split_words:"true"`
	WriteTimeout    time.Duration `yaml:"write_timeout" split_words:"true"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" split_words:"true"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" split_words:"true"`
	CORSOrigins     []string      `yaml:"cors_origins" envconfig:"CORS_ORIGINS"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int32  `yaml:"max_conns" split_words:"true"`
	MinConns int32  `yaml:"min_conns" split_words:"true"`
}

// AWSConfig holds configuration of the S3-compatible image host
type AWSConfig struct {
	Region        string `yaml:"region"`
	S3Bucket      string `yaml:"s3_bucket" envconfig:"S3_BUCKET"`
	AccessKey     string `yaml:"access_key" split_words:"true"`
	SecretKey     string `yaml:"secret_key" split_words:"true"`
	Endpoint      string `yaml:"endpoint"`
	PublicBaseURL string `yaml:"public_base_url" split_words:"true"`
	UsePathStyle  bool   `yaml:"use_path_style" split_words:"true"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret    string        `yaml:"secret"`
	AccessTTL time.Duration `yaml:"access_ttl" split_words:"true"`
	ResetTTL  time.Duration `yaml:"reset_ttl" split_words:"true"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// SMTPConfig holds outgoing mail configuration
type SMTPConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	User         string        `yaml:"user"`
	Password     string        `yaml:"password"`
	FromEmail    string        `yaml:"from_email" split_words:"true"`
	FromName     string        `yaml:"from_name" split_words:"true"`
	ResetURLBase string        `yaml:"reset_url_base" split_words:"true"`
	Timeout      time.Duration `yaml:"timeout"`
}

// ClassifierConfig holds configuration of the waste-type classifier
type ClassifierConfig struct {
	URL       string        `yaml:"url"`
	APIKey    string        `yaml:"api_key" split_words:"true"`
	LabelPath string        `yaml:"label_path" split_words:"true"`
	Timeout   time.Duration `yaml:"timeout"`
}

// APNSConfig holds Apple push notification configuration
type APNSConfig struct {
	KeyFile    string `yaml:"key_file" split_words:"true"`
	KeyID      string `yaml:"key_id" split_words:"true"`
	TeamID     string `yaml:"team_id" split_words:"true"`
	Topic      string `yaml:"topic"`
	Production bool   `yaml:"production"`
}

// GeoConfig holds proximity search configuration
type GeoConfig struct {
	RadiusKM float64 `yaml:"radius_km" split_words:"true"`
}

// RateLimitConfig holds per-IP limits for the auth routes
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// Load reads configuration from a YAML file and applies environment overrides
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// environment-only deployments run without a file
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 15 * time.Second
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"*"}
	}

	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = 10
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = 2
	}

	if c.JWT.AccessTTL == 0 {
		c.JWT.AccessTTL = 30 * time.Minute
	}
	if c.JWT.ResetTTL == 0 {
		c.JWT.ResetTTL = 24 * time.Hour
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}

	if c.AWS.Region == "" {
		c.AWS.Region = "us-east-1"
	}

	if c.SMTP.Port == 0 {
		c.SMTP.Port = 587
	}
	if c.SMTP.Timeout == 0 {
		c.SMTP.Timeout = 10 * time.Second
	}

	if c.Classifier.LabelPath == "" {
		c.Classifier.LabelPath = "label"
	}
	if c.Classifier.Timeout == 0 {
		c.Classifier.Timeout = 10 * time.Second
	}

	if c.Geo.RadiusKM == 0 {
		c.Geo.RadiusKM = 10
	}

	if c.RateLimit.RPS == 0 {
		c.RateLimit.RPS = 1
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 5
	}
}

// Validate rejects configurations the server cannot start with
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret is required")
	}
	if c.Database.DBName == "" {
		return errors.New("database.dbname is required")
	}
	if c.Geo.RadiusKM < 0 {
		return fmt.Errorf("geo.radius_km must not be negative, got %v", c.Geo.RadiusKM)
	}
	return nil
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
