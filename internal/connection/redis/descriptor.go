package redis

import "github.com/nucleus/cdc-conductor/internal/connection"

// Descriptor describes the REDIS destination form.
func (v *Validator) Descriptor() *connection.Descriptor {
	return &connection.Descriptor{
		Type:        Type,
		Title:       "Redis",
		Vendor:      "Redis",
		Description: "Redis streams sink",
		DefaultPort: 6379,
		DocsURL:     "https://redis.io/docs/latest/develop/data-types/streams/",
		SampleConfig: map[string]any{
			KeyHost: "localhost",
			KeyPort: 6379,
		},
		Fields: []*connection.FieldDescriptor{
			{Key: KeyHost, Label: "Host", ValueType: "string", Required: true, Semantic: "HOST", Placeholder: "localhost"},
			{Key: KeyPort, Label: "Port", ValueType: "integer", Required: true, Semantic: "PORT", DefaultValue: "6379"},
			{Key: KeyUsername, Label: "Username", ValueType: "string", Semantic: "GENERIC", Description: "ACL user (Redis 6+)"},
			{Key: KeyPassword, Label: "Password", ValueType: "password", Semantic: "PASSWORD", Sensitive: true},
			{Key: KeyUseSSL, Label: "Use SSL", ValueType: "boolean", DefaultValue: "false"},
		},
	}
}
