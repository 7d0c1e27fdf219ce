package milvus

import "github.com/nucleus/cdc-conductor/internal/connection"

// Descriptor describes the MILVUS destination form.
func (v *Validator) Descriptor() *connection.Descriptor {
	return &connection.Descriptor{
		Type:        Type,
		Title:       "Milvus",
		Vendor:      "Zilliz",
		Description: "Milvus vector database sink",
		DefaultPort: 19530,
		DocsURL:     "https://milvus.io/docs/connect-to-milvus-server.md",
		SampleConfig: map[string]any{
			KeyURI:      "http://localhost:19530",
			KeyDatabase: "default",
		},
		Fields: []*connection.FieldDescriptor{
			{Key: KeyURI, Label: "URI", ValueType: "string", Required: true, Semantic: "HOST", Placeholder: "http://localhost:19530"},
			{Key: KeyDatabase, Label: "Database", ValueType: "string", Semantic: "GENERIC", DefaultValue: "default"},
			{Key: KeyToken, Label: "Token", ValueType: "password", Semantic: "PASSWORD", Sensitive: true, Description: "API key or username:password; takes precedence over username/password"},
			{Key: KeyUsername, Label: "Username", ValueType: "string", Semantic: "GENERIC"},
			{Key: KeyPassword, Label: "Password", ValueType: "password", Semantic: "PASSWORD", Sensitive: true},
		},
	}
}
