package objectstore

import "github.com/nucleus/cdc-conductor/internal/connection"

// Descriptor describes the S3 destination form.
func (v *Validator) Descriptor() *connection.Descriptor {
	return &connection.Descriptor{
		Type:        Type,
		Title:       "S3 Object Store",
		Vendor:      "AWS / MinIO",
		Description: "S3-compatible object store sink",
		DefaultPort: 9000,
		DocsURL:     "https://min.io/docs/minio/container/index.html",
		SampleConfig: map[string]any{
			KeyEndpointURL:     "http://localhost:9000",
			KeyAccessKeyID:     "minioadmin",
			KeySecretAccessKey: "minioadmin",
			KeyBucket:          "debezium",
		},
		Fields: []*connection.FieldDescriptor{
			{Key: KeyEndpointURL, Label: "Endpoint URL", ValueType: "string", Required: true, Semantic: "HOST", Placeholder: "http://localhost:9000"},
			{Key: KeyRegion, Label: "Region", ValueType: "string", Semantic: "GENERIC"},
			{Key: KeyUseSSL, Label: "Use SSL", ValueType: "boolean", DefaultValue: "false"},
			{Key: KeyAccessKeyID, Label: "Access Key ID", ValueType: "string", Required: true, Semantic: "GENERIC"},
			{Key: KeySecretAccessKey, Label: "Secret Access Key", ValueType: "password", Required: true, Semantic: "PASSWORD", Sensitive: true},
			{Key: KeyBucket, Label: "Bucket", ValueType: "string", Required: true, Semantic: "GENERIC"},
		},
	}
}
