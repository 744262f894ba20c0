// Package app assembles the upload pipeline from configuration for each entrypoint.
package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"photo-deployer/internal/config"
	"photo-deployer/internal/service"
	"photo-deployer/internal/storage"
)

// BuildUploadService connects the credential issuer to S3 using cfg.
func BuildUploadService(ctx context.Context, cfg config.Config, logger logrus.FieldLogger) (service.UploadService, error) {
	client, err := storage.NewS3Client(ctx, storage.S3Options{
		Region:   cfg.Storage.Region,
		Endpoint: cfg.Storage.Endpoint,
		Profile:  cfg.AWS.Profile,
	})
	if err != nil {
		return nil, fmt.Errorf("setup storage: %w", err)
	}

	logger.Infof("using s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return service.NewUploadService(storage.NewS3Service(client), service.UploadConfig{
		Bucket: cfg.Storage.Bucket,
		Region: cfg.Storage.Region,
	}), nil
}
