package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"photo-deployer/internal/domain"
	"photo-deployer/internal/storage"
)

// SignedURLTTL is how long an issued upload URL stays valid.
const SignedURLTTL = 3600 * time.Second

// ErrInternal wraps any failure of the signing collaborator.
var ErrInternal = errors.New("internal failure")

// UploadService issues signed upload descriptors.
type UploadService interface {
	IssueUpload(ctx context.Context, req domain.UploadRequest) (*domain.SignedUploadDescriptor, error)
}

// UploadConfig is the bucket identity fixed at process start.
type UploadConfig struct {
	Bucket string
	Region string
}

type uploadService struct {
	signer storage.Signer
	bucket string
	region string
}

func NewUploadService(signer storage.Signer, cfg UploadConfig) UploadService {
	return &uploadService{
		signer: signer,
		bucket: strings.TrimSpace(cfg.Bucket),
		region: strings.TrimSpace(cfg.Region),
	}
}

// IssueUpload signs a single PUT of req.ObjectName pinned to req.ContentType. It
// makes one signing attempt and does not touch the bucket.
func (s *uploadService) IssueUpload(ctx context.Context, req domain.UploadRequest) (*domain.SignedUploadDescriptor, error) {
	if req.ObjectName == "" {
		return nil, &MissingFieldError{Field: "fileName"}
	}
	if req.ContentType == "" {
		return nil, &MissingFieldError{Field: "fileType"}
	}
	if s.signer == nil {
		return nil, fmt.Errorf("%w: storage signer not configured", ErrInternal)
	}

	signedURL, err := s.signer.PresignPut(ctx, s.bucket, req.ObjectName, req.ContentType, SignedURLTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	return &domain.SignedUploadDescriptor{
		SignedURL: signedURL,
		PublicURL: s.signer.PublicURL(s.bucket, s.region, req.ObjectName),
	}, nil
}
