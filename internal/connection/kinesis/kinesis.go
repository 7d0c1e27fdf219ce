// Package kinesis validates KINESIS destinations with DescribeStreamSummary.
package kinesis

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/kinesis"
	"github.com/aws/aws-sdk-go-v2/service/kinesis/types"
	"github.com/aws/smithy-go"

	"github.com/nucleus/cdc-conductor/internal/connection"
	"github.com/nucleus/cdc-conductor/internal/core"
)

// Type is the destination type tag.
const Type = "KINESIS"

const (
	KeyRegion       = "region"
	KeyStream       = "stream"
	KeyPartitionKey = "partitionKey"
	KeyEndpoint     = "endpoint"
	KeyAccessKey    = "accessKey"
	KeySecretKey    = "secretKey"
)

// Config holds the parsed connection parameters. Credentials are optional;
// without them the default AWS credential chain is used.
type Config struct {
	Region       string
	Stream       string
	PartitionKey string
	Endpoint     string
	AccessKey    string
	SecretKey    string
}

// ParseConfig runs the parameter phase.
func ParseConfig(params map[string]any) (*Config, error) {
	region, err := connection.RequireString(params, KeyRegion, "Region")
	if err != nil {
		return nil, err
	}
	stream, err := connection.RequireString(params, KeyStream, "Stream name")
	if err != nil {
		return nil, err
	}
	return &Config{
		Region:       region,
		Stream:       stream,
		PartitionKey: connection.StringValue(params, KeyPartitionKey),
		Endpoint:     connection.StringValue(params, KeyEndpoint),
		AccessKey:    connection.StringValue(params, KeyAccessKey),
		SecretKey:    connection.StringValue(params, KeySecretKey),
	}, nil
}

// Validator describes the configured stream without writing to it.
type Validator struct {
	timeout time.Duration
}

// New creates a Kinesis validator.
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

	client, err := newClient(ctx, cfg)
	if err != nil {
		return connection.Generic("Client error: %v", err)
	}

	out, err := client.DescribeStreamSummary(ctx, &kinesis.DescribeStreamSummaryInput{
		StreamName: aws.String(cfg.Stream),
	})
	if err != nil {
		return classifyError(err)
	}

	if summary := out.StreamDescriptionSummary; summary != nil {
		log.Printf("[kinesis] stream %s in %s is %s", cfg.Stream, cfg.Region, summary.StreamStatus)
	}
	return connection.Success()
}

func newClient(ctx context.Context, cfg *Config) (*kinesis.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return kinesis.NewFromConfig(awsCfg, func(o *kinesis.Options) {
		o.Retryer = aws.NopRetryer{}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

// classifyError maps Kinesis service errors onto the validation taxonomy.
func classifyError(err error) connection.Result {
	var notFound *types.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return connection.NotFound("Stream not found: Please verify the stream name and region.")
	}
	var denied *types.AccessDeniedException
	if errors.As(err, &denied) {
		return connection.PermissionDenied("Access denied: Check IAM permissions or credentials.")
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "UnrecognizedClientException", "InvalidSignatureException", "ExpiredTokenException",
			"InvalidClientTokenId", "MissingAuthenticationToken":
			return connection.AuthenticationFailed("Authentication failed: Check AWS access key and secret key.")
		case "AccessDenied", "AccessDeniedException":
			return connection.PermissionDenied("Access denied: Check IAM permissions or credentials.")
		case "LimitExceededException", "ServiceUnavailable", "InternalFailure":
			return connection.Unavailable("Kinesis service is unavailable: %s", apiErr.ErrorMessage())
		}
	}

	if strings.Contains(err.Error(), "failed to retrieve credentials") {
		return connection.AuthenticationFailed("Authentication failed: No AWS credentials found.")
	}
	if res, ok := connection.ClassifyNetwork(err, "Kinesis"); ok {
		return res
	}
	return connection.Generic("Failed to validate Kinesis connection: %v", err)
}
