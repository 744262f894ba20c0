// Package cli holds the operator command line for issuing upload URLs without the
// HTTP endpoint.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"photo-deployer/internal/app"
	"photo-deployer/internal/config"
	"photo-deployer/internal/domain"
	"photo-deployer/internal/service"
)

// PresignOptions defines the options for the `presign` command.
type PresignOptions struct {
	uploads service.UploadService

	FileName string
	FileType string
	Bucket   string
	Region   string
}

func NewPresignOptions() *PresignOptions {
	return &PresignOptions{}
}

// NewPresignCommand creates the `presign` command.
func NewPresignCommand(o *PresignOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presign --file-name NAME --file-type TYPE",
		Short: "Issue a signed upload URL for one object",
		Example: `  # Sign an upload of cat.png to the configured bucket
  presign --file-name cat.png --file-type image/png

  # Override the bucket for a one-off upload
  presign -n report.pdf -t application/pdf --bucket my-bucket`,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Validate(); err != nil {
				return err
			}
			if err := o.Complete(cmd.Context()); err != nil {
				return err
			}
			return o.Run(cmd)
		},
	}

	cmd.Flags().StringVarP(&o.FileName, "file-name", "n", "", "Object key to sign (required)")
	cmd.Flags().StringVarP(&o.FileType, "file-type", "t", "", "Content type the upload must use (required)")
	cmd.Flags().StringVar(&o.Bucket, "bucket", "", "Bucket override (defaults to configuration)")
	cmd.Flags().StringVar(&o.Region, "region", "", "Region override (defaults to configuration)")

	return cmd
}

// Validate reports the first missing flag using the same field names as the HTTP API.
func (o *PresignOptions) Validate() error {
	if o.FileName == "" {
		return &service.MissingFieldError{Field: "fileName"}
	}
	if o.FileType == "" {
		return &service.MissingFieldError{Field: "fileType"}
	}
	return nil
}

// Complete builds the upload service from configuration unless one was injected.
func (o *PresignOptions) Complete(ctx context.Context) error {
	if o.uploads != nil {
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if o.Bucket != "" {
		cfg.Storage.Bucket = o.Bucket
	}
	if o.Region != "" {
		cfg.Storage.Region = o.Region
	}

	logger, err := cfg.NewLogger(&logrus.TextFormatter{FullTimestamp: true})
	if err != nil {
		return err
	}

	o.uploads, err = app.BuildUploadService(ctx, cfg, logger)
	return err
}

func (o *PresignOptions) Run(cmd *cobra.Command) error {
	desc, err := o.uploads.IssueUpload(cmd.Context(), domain.UploadRequest{
		ObjectName:  o.FileName,
		ContentType: o.FileType,
	})
	if err != nil {
		if errors.Is(err, service.ErrInternal) {
			return fmt.Errorf("issue signed upload url: %w", err)
		}
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(desc)
}

// Execute runs the presign command with signal-aware cancellation.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return NewPresignCommand(NewPresignOptions()).ExecuteContext(ctx)
}
