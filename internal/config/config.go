package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Placeholder deployment defaults; every deployment is expected to override them.
const (
	DefaultBucket = "photo-deployer-photos"
	DefaultRegion = "ca-central-1"
)

// Config holds application level configuration aggregated from env/config files.
// It is read once at process start and not mutated afterwards.
type Config struct {
	Server struct {
		Addr string
	}
	Storage struct {
		Bucket   string
		Region   string
		Endpoint string
	}
	AWS struct {
		Profile string
	}
	Log struct {
		Level string
	}
}

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	// Variables already present in the environment take precedence over .env.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("PHOTO_DEPLOYER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("storage.bucket", DefaultBucket)
	v.SetDefault("storage.region", DefaultRegion)
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("aws.profile", "")
	v.SetDefault("log.level", "info")

	// Names used by the Lambda deployment.
	_ = v.BindEnv("storage.bucket", "PHOTO_DEPLOYER_STORAGE_BUCKET", "BUCKET_NAME")
	_ = v.BindEnv("storage.region", "PHOTO_DEPLOYER_STORAGE_REGION", "REGION", "AWS_REGION")

	v.SetConfigName("config")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Storage.Bucket = strings.TrimSpace(cfg.Storage.Bucket)
	cfg.Storage.Region = strings.TrimSpace(cfg.Storage.Region)
	if cfg.Storage.Bucket == "" {
		return Config{}, fmt.Errorf("storage bucket is required")
	}
	if cfg.Storage.Region == "" {
		return Config{}, fmt.Errorf("storage region is required")
	}

	return cfg, nil
}

// NewLogger builds the process logger at the configured level.
func (c Config) NewLogger(formatter logrus.Formatter) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetFormatter(formatter)

	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	logger.SetLevel(level)
	return logger, nil
}
