package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the default location of the YAML config file.
const ConfigPath = "config.yaml"

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	Port          string `yaml:"port"`
	LogLevel      string `yaml:"logLevel"`
	DatabaseURL   string `yaml:"databaseURL"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`

	OMDBAPIKey  string `yaml:"omdbApiKey"`
	OMDBBaseURL string `yaml:"omdbBaseURL"`

	AMQPURL   string `yaml:"amqpURL"`
	PushQueue string `yaml:"pushQueue"`

	MinioEndpoint  string `yaml:"minioEndpoint"`
	MinioAccessKey string `yaml:"minioAccessKey"`
	MinioSecretKey string `yaml:"minioSecretKey"`
	MinioBucket    string `yaml:"minioBucket"`
	MinioUseSSL    bool   `yaml:"minioUseSSL"`

	MLServiceURL string `yaml:"mlServiceURL"`

	IdentityKeyPath  string `yaml:"identityKeyPath"`
	IdentityKeyID    string `yaml:"identityKeyId"`
	IdentityIssuer   string `yaml:"identityIssuer"`
	IdentityAudience string `yaml:"identityAudience"`
	TokenTTL         string `yaml:"tokenTTL"`
	ResetTokenTTL    string `yaml:"resetTokenTTL"`

	SignupRateLimitPerMinute int `yaml:"signupRateLimitPerMinute"`
	LoginRateLimitPerMinute  int `yaml:"loginRateLimitPerMinute"`
}

// Load reads config from path (defaults to config.yaml).
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	// Override with environment variables
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("OMDB_API_KEY"); v != "" {
		cfg.OMDBAPIKey = v
	}
	if v := os.Getenv("OMDB_BASE_URL"); v != "" {
		cfg.OMDBBaseURL = v
	}
	if v := os.Getenv("AMQP_URL"); v != "" {
		cfg.AMQPURL = v
	}
	if v := os.Getenv("PUSH_QUEUE"); v != "" {
		cfg.PushQueue = v
	}
	if v := os.Getenv("MINIO_ENDPOINT"); v != "" {
		cfg.MinioEndpoint = v
	}
	if v := os.Getenv("MINIO_ACCESS_KEY"); v != "" {
		cfg.MinioAccessKey = v
	}
	if v := os.Getenv("MINIO_SECRET_KEY"); v != "" {
		cfg.MinioSecretKey = v
	}
	if v := os.Getenv("MINIO_BUCKET"); v != "" {
		cfg.MinioBucket = v
	}
	if v := os.Getenv("ML_SERVICE_URL"); v != "" {
		cfg.MLServiceURL = v
	}
	if v := os.Getenv("IDENTITY_KEY_PATH"); v != "" {
		cfg.IdentityKeyPath = v
	}
	if v := os.Getenv("IDENTITY_KEY_ID"); v != "" {
		cfg.IdentityKeyID = v
	}
	if v := os.Getenv("IDENTITY_ISSUER"); v != "" {
		cfg.IdentityIssuer = v
	}
	if v := os.Getenv("IDENTITY_AUDIENCE"); v != "" {
		cfg.IdentityAudience = v
	}
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		cfg.TokenTTL = v
	}
	if v := os.Getenv("RESET_TOKEN_TTL"); v != "" {
		cfg.ResetTokenTTL = v
	}
	if v := os.Getenv("SIGNUP_RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.SignupRateLimitPerMinute = n
		}
	}
	if v := os.Getenv("LOGIN_RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.LoginRateLimitPerMinute = n
		}
	}
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validateConfig(cfg FileConfig) error {
	if cfg.Port == "" {
		return errors.New("config: port is required (set in config.yaml)")
	}
	if cfg.DatabaseURL == "" {
		return errors.New("config: databaseURL is required (set in config.yaml)")
	}
	if cfg.OMDBAPIKey == "" {
		return errors.New("config: omdbApiKey is required (set OMDB_API_KEY)")
	}
	if cfg.IdentityKeyPath == "" {
		return errors.New("config: identityKeyPath is required (set IDENTITY_KEY_PATH)")
	}
	if cfg.SignupRateLimitPerMinute < 0 || cfg.LoginRateLimitPerMinute < 0 {
		return errors.New("config: rate limits must be >= 0")
	}
	return nil
}

// ParseTokenTTL parses the optional token TTL duration string.
func ParseTokenTTL(ttlStr string) (time.Duration, error) {
	if ttlStr == "" {
		return 0, nil
	}
	dur, err := time.ParseDuration(ttlStr)
	if err != nil {
		return 0, fmt.Errorf("invalid tokenTTL duration: %w", err)
	}
	return dur, nil
}

// ParseResetTokenTTL parses the optional reset token TTL duration string.
func ParseResetTokenTTL(ttlStr string) (time.Duration, error) {
	if ttlStr == "" {
		return 0, nil
	}
	dur, err := time.ParseDuration(ttlStr)
	if err != nil {
		return 0, fmt.Errorf("invalid resetTokenTTL duration: %w", err)
	}
	return dur, nil
}
