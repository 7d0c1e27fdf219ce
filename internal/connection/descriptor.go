package connection

// Descriptor provides metadata about a destination type.
// Used by the API for rendering configuration forms.
type Descriptor struct {
	Type         string             `json:"type"`
	Title        string             `json:"title"`
	Vendor       string             `json:"vendor,omitempty"`
	Description  string             `json:"description,omitempty"`
	DefaultPort  int                `json:"defaultPort,omitempty"`
	DocsURL      string             `json:"docsUrl,omitempty"`
	Fields       []*FieldDescriptor `json:"fields"`
	SampleConfig map[string]any     `json:"sampleConfig,omitempty"`
}

// FieldDescriptor defines a configuration field.
type FieldDescriptor struct {
	Key          string         `json:"key"`
	Label        string         `json:"label"`
	ValueType    string         `json:"valueType"` // "string", "integer", "boolean", "password"
	Required     bool           `json:"required"`
	Semantic     string         `json:"semantic,omitempty"` // "GENERIC", "HOST", "PORT", "PASSWORD"
	Description  string         `json:"description,omitempty"`
	Placeholder  string         `json:"placeholder,omitempty"`
	DefaultValue string         `json:"defaultValue,omitempty"`
	Sensitive    bool           `json:"sensitive,omitempty"`
	Options      []*FieldOption `json:"options,omitempty"`
}

// FieldOption represents an enum option for a field.
type FieldOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}
