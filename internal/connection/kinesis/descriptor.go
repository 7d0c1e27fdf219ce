package kinesis

import "github.com/nucleus/cdc-conductor/internal/connection"

// Descriptor describes the KINESIS destination form.
func (v *Validator) Descriptor() *connection.Descriptor {
	return &connection.Descriptor{
		Type:        Type,
		Title:       "Amazon Kinesis",
		Vendor:      "AWS",
		Description: "Amazon Kinesis Data Streams sink",
		DocsURL:     "https://docs.aws.amazon.com/streams/latest/dev/introduction.html",
		SampleConfig: map[string]any{
			KeyRegion: "us-east-1",
			KeyStream: "debezium-events",
		},
		Fields: []*connection.FieldDescriptor{
			{Key: KeyRegion, Label: "Region", ValueType: "string", Required: true, Semantic: "GENERIC", Placeholder: "us-east-1"},
			{Key: KeyStream, Label: "Stream", ValueType: "string", Required: true, Semantic: "GENERIC"},
			{Key: KeyPartitionKey, Label: "Partition Key", ValueType: "string", Semantic: "GENERIC"},
			{Key: KeyEndpoint, Label: "Endpoint Override", ValueType: "string", Semantic: "HOST", Description: "For LocalStack or VPC endpoints"},
			{Key: KeyAccessKey, Label: "Access Key", ValueType: "string", Semantic: "GENERIC", Description: "Defaults to the AWS credential chain"},
			{Key: KeySecretKey, Label: "Secret Key", ValueType: "password", Semantic: "PASSWORD", Sensitive: true},
		},
	}
}
