package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	AWS      AWSConfig      `yaml:"aws"`
	JWT      JWTConfig      `yaml:"jwt"`
	Log      LogConfig      `yaml:"log"`
	APNs     APNsConfig     `yaml:"apns"`
	GenAI    GenAIConfig    `yaml:"genai"`
	Places   PlacesConfig   `yaml:"places"`
	Weather  WeatherConfig  `yaml:"weather"`
	Images   ImagesConfig   `yaml:"images"`
	Realtime RealtimeConfig `yaml:"realtime"`
	Uploads  UploadsConfig  `yaml:"uploads"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            int           `yaml:"port"`
	Host            string        `yaml:"host"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigin   string        `yaml:"allowed_origin"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// AWSConfig holds S3-compatible storage configuration
type AWSConfig struct {
	Region        string `yaml:"region"`
	S3Bucket      string `yaml:"s3_bucket"`
	AccessKey     string `yaml:"access_key"`
	SecretKey     string `yaml:"secret_key"`
	Endpoint      string `yaml:"endpoint"`
	PublicBaseURL string `yaml:"public_base_url"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string        `yaml:"secret"`
	TTL    time.Duration `yaml:"ttl"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// APNsConfig holds Apple push configuration. Push is disabled when KeyPath is empty.
type APNsConfig struct {
	KeyPath    string `yaml:"key_path"`
	KeyID      string `yaml:"key_id"`
	TeamID     string `yaml:"team_id"`
	Topic      string `yaml:"topic"`
	Production bool   `yaml:"production"`
}

// GenAIConfig holds generative AI configuration
type GenAIConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// PlacesConfig holds places lookup configuration
type PlacesConfig struct {
	APIKey string `yaml:"api_key"`
}

// WeatherConfig holds forecast service configuration
type WeatherConfig struct {
	BaseURL string `yaml:"base_url"`
}

// ImagesConfig holds image search configuration
type ImagesConfig struct {
	BaseURL   string `yaml:"base_url"`
	AccessKey string `yaml:"access_key"`
}

// RealtimeConfig holds trip channel tuning
type RealtimeConfig struct {
	CursorThrottle time.Duration `yaml:"cursor_throttle"`
	CursorStale    time.Duration `yaml:"cursor_stale"`
	SweepInterval  time.Duration `yaml:"sweep_interval"`
	SendBuffer     int           `yaml:"send_buffer"`
}

// UploadsConfig holds upload limits
type UploadsConfig struct {
	MaxBytes      int64         `yaml:"max_bytes"`
	PresignExpiry time.Duration `yaml:"presign_expiry"`
}

// Environment variables that override secrets from the file.
const (
	envDBPassword     = "TRIPSHARE_DB_PASSWORD"
	envJWTSecret      = "TRIPSHARE_JWT_SECRET"
	envGenAIKey       = "TRIPSHARE_GENAI_API_KEY"
	envPlacesKey      = "TRIPSHARE_PLACES_API_KEY"
	envImagesKey      = "TRIPSHARE_IMAGES_ACCESS_KEY"
	envAWSSecretKey   = "TRIPSHARE_AWS_SECRET_KEY"
	defaultMaxUpload  = 10 << 20
	defaultGenAIModel = "gemini-2.5-flash"
)

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration, applies environment overrides and defaults,
// and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	overrides := map[string]*string{
		envDBPassword:   &c.Database.Password,
		envJWTSecret:    &c.JWT.Secret,
		envGenAIKey:     &c.GenAI.APIKey,
		envPlacesKey:    &c.Places.APIKey,
		envImagesKey:    &c.Images.AccessKey,
		envAWSSecretKey: &c.AWS.SecretKey,
	}
	for name, field := range overrides {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			*field = v
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 15 * time.Second
	}
	if c.Server.AllowedOrigin == "" {
		c.Server.AllowedOrigin = "*"
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.JWT.TTL == 0 {
		c.JWT.TTL = 30 * 24 * time.Hour
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.GenAI.Model == "" {
		c.GenAI.Model = defaultGenAIModel
	}
	if c.Weather.BaseURL == "" {
		c.Weather.BaseURL = "https://api.open-meteo.com/v1/forecast"
	}
	if c.Images.BaseURL == "" {
		c.Images.BaseURL = "https://api.unsplash.com/search/photos"
	}
	if c.Realtime.CursorThrottle == 0 {
		c.Realtime.CursorThrottle = 50 * time.Millisecond
	}
	if c.Realtime.CursorStale == 0 {
		c.Realtime.CursorStale = 3 * time.Second
	}
	if c.Realtime.SweepInterval == 0 {
		c.Realtime.SweepInterval = time.Second
	}
	if c.Realtime.SendBuffer == 0 {
		c.Realtime.SendBuffer = 64
	}
	if c.Uploads.MaxBytes == 0 {
		c.Uploads.MaxBytes = defaultMaxUpload
	}
	if c.Uploads.PresignExpiry == 0 {
		c.Uploads.PresignExpiry = 5 * time.Minute
	}
}

// Validate reports configuration that the server cannot run with
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt secret is required")
	}
	if c.Uploads.MaxBytes < 0 {
		return fmt.Errorf("invalid uploads max_bytes: %d", c.Uploads.MaxBytes)
	}
	return nil
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
