package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"

	"photo-deployer/internal/app"
	"photo-deployer/internal/config"
	"photo-deployer/internal/gateway"
	apphttp "photo-deployer/internal/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}

	logger, err := cfg.NewLogger(&logrus.JSONFormatter{})
	if err != nil {
		logrus.Fatalf("setup logger: %v", err)
	}

	uploads, err := app.BuildUploadService(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatalf("setup upload service: %v", err)
	}

	// Metrics are not scraped inside Lambda; the dispatcher tolerates a nil collector.
	dispatcher := apphttp.NewDispatcher(uploads, nil, logger)
	lambda.Start(gateway.NewHandler(dispatcher, logger))
}
