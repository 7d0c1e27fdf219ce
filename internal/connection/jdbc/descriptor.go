package jdbc

import "github.com/nucleus/cdc-conductor/internal/connection"

// Descriptor describes the JDBC destination form.
func (v *Validator) Descriptor() *connection.Descriptor {
	return &connection.Descriptor{
		Type:        Type,
		Title:       "JDBC",
		Description: "Relational database sink (PostgreSQL, SQL Server)",
		DocsURL:     "https://debezium.io/documentation/reference/stable/connectors/jdbc.html",
		SampleConfig: map[string]any{
			KeyURL:  "jdbc:postgresql://localhost:5432/postgres",
			KeyUser: "postgres",
		},
		Fields: []*connection.FieldDescriptor{
			{Key: KeyURL, Label: "JDBC URL", ValueType: "string", Required: true, Semantic: "HOST", Placeholder: "jdbc:postgresql://localhost:5432/postgres"},
			{Key: KeyUser, Label: "User", ValueType: "string", Semantic: "GENERIC"},
			{Key: KeyPassword, Label: "Password", ValueType: "password", Semantic: "PASSWORD", Sensitive: true},
		},
	}
}
