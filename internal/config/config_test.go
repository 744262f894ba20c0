package config

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PHOTO_DEPLOYER_SERVER_ADDR",
		"PHOTO_DEPLOYER_STORAGE_BUCKET",
		"PHOTO_DEPLOYER_STORAGE_REGION",
		"PHOTO_DEPLOYER_STORAGE_ENDPOINT",
		"PHOTO_DEPLOYER_AWS_PROFILE",
		"PHOTO_DEPLOYER_LOG_LEVEL",
		"BUCKET_NAME",
		"REGION",
		"AWS_REGION",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name         string
		env          map[string]string
		expectBucket string
		expectRegion string
		expectAddr   string
	}{
		{
			name:         "defaults",
			expectBucket: DefaultBucket,
			expectRegion: DefaultRegion,
			expectAddr:   "0.0.0.0:8080",
		},
		{
			name: "lambda variables",
			env: map[string]string{
				"BUCKET_NAME": "photo-deployer-photos-06b95d3423f5",
				"REGION":      "eu-west-1",
			},
			expectBucket: "photo-deployer-photos-06b95d3423f5",
			expectRegion: "eu-west-1",
			expectAddr:   "0.0.0.0:8080",
		},
		{
			name: "prefixed variables win",
			env: map[string]string{
				"BUCKET_NAME":                   "lambda-bucket",
				"PHOTO_DEPLOYER_STORAGE_BUCKET": "server-bucket",
				"AWS_REGION":                    "us-west-2",
				"PHOTO_DEPLOYER_SERVER_ADDR":    "127.0.0.1:9000",
			},
			expectBucket: "server-bucket",
			expectRegion: "us-west-2",
			expectAddr:   "127.0.0.1:9000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.Storage.Bucket != tt.expectBucket {
				t.Errorf("expected bucket %s, got %s", tt.expectBucket, cfg.Storage.Bucket)
			}
			if cfg.Storage.Region != tt.expectRegion {
				t.Errorf("expected region %s, got %s", tt.expectRegion, cfg.Storage.Region)
			}
			if cfg.Server.Addr != tt.expectAddr {
				t.Errorf("expected addr %s, got %s", tt.expectAddr, cfg.Server.Addr)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	var cfg Config

	cfg.Log.Level = "debug"
	logger, err := cfg.NewLogger(&logrus.JSONFormatter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logger.GetLevel() != logrus.DebugLevel {
		t.Errorf("expected debug level, got %s", logger.GetLevel())
	}

	cfg.Log.Level = "loud"
	if _, err := cfg.NewLogger(&logrus.JSONFormatter{}); err == nil {
		t.Error("expected error for unknown level")
	}
}
