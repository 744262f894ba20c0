package storage

import (
	"context"
	"time"
)

// Signer authorizes direct client writes to remote object storage. Implementations
// never read, write, or list objects themselves.
type Signer interface {
	// PresignPut returns a URL allowing a single PUT of key with the given content
	// type until ttl elapses.
	PresignPut(ctx context.Context, bucket, key, contentType string, ttl time.Duration) (string, error)
	// PublicURL is the credential-free address the object is readable at once written.
	PublicURL(bucket, region, key string) string
}
