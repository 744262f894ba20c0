package storage

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go/encoding/httpbinding"
	"github.com/aws/smithy-go/middleware"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

// S3Options selects how the S3 client is built.
type S3Options struct {
	Region   string
	Endpoint string
	Profile  string
}

// NewS3Client loads the default AWS credential chain and builds an S3 client.
// A non-empty Endpoint switches to path-style addressing for S3-compatible stores.
func NewS3Client(ctx context.Context, opts S3Options) (*s3.Client, error) {
	if opts.Region == "" {
		return nil, fmt.Errorf("storage region is required")
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(opts.Region),
	}
	if opts.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(opts.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// S3Service signs PutObject requests against Amazon S3 (or compatible APIs).
type S3Service struct {
	presign   *s3.PresignClient
	endpoint  string
	pathStyle bool
}

// S3ServiceOption customizes an S3Service.
type S3ServiceOption func(*s3.PresignOptions)

// WithClock pins the signing time to now() instead of the wall clock.
func WithClock(now func() time.Time) S3ServiceOption {
	return func(o *s3.PresignOptions) {
		o.Presigner = clockPresigner{
			signer: v4.NewSigner(func(so *v4.SignerOptions) {
				so.DisableURIPathEscaping = true
			}),
			now: now,
		}
	}
}

func NewS3Service(client *s3.Client, opts ...S3ServiceOption) *S3Service {
	presignOpts := make([]func(*s3.PresignOptions), 0, len(opts))
	for _, opt := range opts {
		presignOpts = append(presignOpts, opt)
	}

	clientOpts := client.Options()
	return &S3Service{
		presign:   s3.NewPresignClient(client, presignOpts...),
		endpoint:  strings.TrimRight(aws.ToString(clientOpts.BaseEndpoint), "/"),
		pathStyle: clientOpts.UsePathStyle,
	}
}

func (s *S3Service) PresignPut(ctx context.Context, bucket, key, contentType string, ttl time.Duration) (string, error) {
	if bucket == "" {
		return "", fmt.Errorf("storage bucket is required")
	}
	if key == "" {
		return "", fmt.Errorf("object key is required")
	}
	if ttl <= 0 {
		return "", fmt.Errorf("presign ttl must be positive")
	}

	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPublicRead,
	}, s3.WithPresignExpires(ttl), s3.WithPresignClientFromClientOptions(
		// The presigner strips Content-Type unless it is set on the request again.
		s3.WithAPIOptions(smithyhttp.SetHeaderValue("Content-Type", contentType), hoistACL),
	))
	if err != nil {
		return "", fmt.Errorf("presign put object %s: %w", key, err)
	}

	return req.URL, nil
}

// PublicURL mirrors the addressing the SDK signs against, so the result equals the
// presigned URL with its query string removed.
func (s *S3Service) PublicURL(bucket, region, key string) string {
	path := httpbinding.EscapePath(key, false)
	switch {
	case s.endpoint != "":
		return fmt.Sprintf("%s/%s/%s", s.endpoint, bucket, path)
	case s.pathStyle || !virtualHostable(bucket):
		return fmt.Sprintf("https://s3.%s.amazonaws.com/%s/%s", region, httpbinding.EscapePath(bucket, true), path)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, region, path)
	}
}

var _ Signer = (*S3Service)(nil)

// virtualHostable reports whether bucket can be a DNS label under an https
// endpoint. Any other name is addressed path-style.
func virtualHostable(bucket string) bool {
	if len(bucket) < 3 || len(bucket) > 63 {
		return false
	}
	if net.ParseIP(bucket) != nil {
		return false
	}
	for i, c := range bucket {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		case c == '-' && i != 0 && i != len(bucket)-1:
		default:
			return false
		}
	}
	return true
}

// hoistACL moves the canned ACL header into the query string before signing,
// so an uploader only has to send Content-Type.
func hoistACL(stack *middleware.Stack) error {
	return stack.Build.Add(middleware.BuildMiddlewareFunc("HoistACL", func(
		ctx context.Context, in middleware.BuildInput, next middleware.BuildHandler,
	) (middleware.BuildOutput, middleware.Metadata, error) {
		req, ok := in.Request.(*smithyhttp.Request)
		if !ok {
			return next.HandleBuild(ctx, in)
		}
		if acl := req.Header.Get("X-Amz-Acl"); acl != "" {
			q := req.URL.Query()
			q.Set("X-Amz-Acl", acl)
			req.URL.RawQuery = q.Encode()
			req.Header.Del("X-Amz-Acl")
		}
		return next.HandleBuild(ctx, in)
	}), middleware.After)
}

// clockPresigner replaces the SDK's signing time with its own clock.
type clockPresigner struct {
	signer *v4.Signer
	now    func() time.Time
}

func (p clockPresigner) PresignHTTP(
	ctx context.Context, credentials aws.Credentials, r *http.Request,
	payloadHash string, service string, region string, _ time.Time,
	optFns ...func(*v4.SignerOptions),
) (string, http.Header, error) {
	return p.signer.PresignHTTP(ctx, credentials, r, payloadHash, service, region, p.now(), optFns...)
}
