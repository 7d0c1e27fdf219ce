// Package objectstore validates S3-compatible destinations (AWS S3, MinIO).
package objectstore

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/nucleus/cdc-conductor/internal/connection"
	"github.com/nucleus/cdc-conductor/internal/core"
)

// Type is the destination type tag.
const Type = "S3"

// Validator lists buckets to check the credentials, then checks the
// configured bucket exists.
type Validator struct {
	timeout time.Duration
}

// New creates an S3 validator.
func New(opts connection.Options) *Validator {
	return &Validator{timeout: opts.EffectiveTimeout()}
}

func (v *Validator) Type() string { return Type }

func (v *Validator) Validate(ctx context.Context, conn *core.Connection) connection.Result {
	return connection.Guard(ctx, conn, v.timeout, v.validate)
}

func (v *Validator) validate(ctx context.Context, params map[string]any) connection.Result {
	cfg, err := ParseConfig(params)
	if err != nil {
		return connection.InvalidParam(err)
	}

	log.Printf("[objectstore] connecting to %s bucket=%s", cfg.EndpointURL, cfg.Bucket)
	client, err := minio.New(cfg.host(), &minio.Options{
		Creds:      credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure:     cfg.UseSSL,
		Region:     cfg.Region,
		MaxRetries: 1,
	})
	if err != nil {
		return connection.Generic("Failed to create S3 client: %v", err)
	}

	// List buckets as a credential check
	if _, err := client.ListBuckets(ctx); err != nil {
		return classifyError(err, cfg.Bucket)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return classifyError(err, cfg.Bucket)
	}
	if !exists {
		return connection.NotFound("Bucket not found: %s. Please verify the bucket name and region.", cfg.Bucket)
	}
	return connection.Success()
}

// classifyError converts minio-go errors onto the validation taxonomy.
func classifyError(err error, bucket string) connection.Result {
	var minioErr minio.ErrorResponse
	if errors.As(err, &minioErr) {
		switch minioErr.Code {
		case "NoSuchBucket":
			return connection.NotFound("Bucket not found: %s. Please verify the bucket name and region.", bucket)
		case "AccessDenied", "AllAccessDisabled":
			return connection.PermissionDenied("Access denied: Check bucket policy or credentials.")
		case "InvalidAccessKeyId", "SignatureDoesNotMatch", "InvalidToken", "ExpiredToken":
			return connection.AuthenticationFailed("Authentication failed - please check accessKeyId and secretAccessKey")
		case "SlowDown", "ServiceUnavailable", "XMinioServerNotInitialized":
			return connection.Unavailable("Object store is unavailable: %s", minioErr.Message)
		}
	}

	if res, ok := connection.ClassifyNetwork(err, "S3"); ok {
		return res
	}

	// Fallback to string matching
	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "access denied"):
		return connection.PermissionDenied("Access denied: Check bucket policy or credentials.")
	case strings.Contains(errStr, "invalid access key"), strings.Contains(errStr, "signature"):
		return connection.AuthenticationFailed("Authentication failed - please check accessKeyId and secretAccessKey")
	}
	return connection.Generic("Failed to connect to object store: %v", err)
}
