package qdrant

import "github.com/nucleus/cdc-conductor/internal/connection"

// Descriptor describes the QDRANT destination form.
func (v *Validator) Descriptor() *connection.Descriptor {
	return &connection.Descriptor{
		Type:        Type,
		Title:       "Qdrant",
		Vendor:      "Qdrant",
		Description: "Qdrant vector database sink (gRPC)",
		DefaultPort: 6334,
		DocsURL:     "https://qdrant.tech/documentation/interfaces/",
		SampleConfig: map[string]any{
			KeyHostname: "localhost",
			KeyPort:     6334,
		},
		Fields: []*connection.FieldDescriptor{
			{Key: KeyHostname, Label: "Hostname", ValueType: "string", Required: true, Semantic: "HOST", Placeholder: "localhost"},
			{Key: KeyPort, Label: "gRPC Port", ValueType: "integer", Required: true, Semantic: "PORT", DefaultValue: "6334"},
			{Key: KeyUseTLS, Label: "Use TLS", ValueType: "boolean", DefaultValue: "false"},
			{Key: KeyAPIKey, Label: "API Key", ValueType: "password", Semantic: "PASSWORD", Sensitive: true},
		},
	}
}
