package core

// =============================================================================
// PIPELINE MODELS
// Read-only inputs to compilation and validation. Nothing in this module
// mutates a Pipeline or the configuration maps it carries.
// =============================================================================

// Status is the lifecycle state of a pipeline.
type Status string

const (
	StatusCreated    Status = "created"
	StatusDeployed   Status = "deployed"
	StatusStopped    Status = "stopped"
	StatusUndeployed Status = "undeployed"
)

// Pipeline is a configured source -> transforms -> sink flow, the unit of deployment.
// Name seeds every generated storage identifier.
type Pipeline struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	LogLevel    string      `json:"logLevel"`
	Source      Connection  `json:"source"`
	Destination Connection  `json:"destination"`
	Transforms  []Transform `json:"transforms,omitempty"`
	Status      Status      `json:"status,omitempty"`
}

// Connection is a source or destination: a family tag plus loose configuration.
type Connection struct {
	ID     int64          `json:"id,omitempty"`
	Name   string         `json:"name,omitempty"`
	Type   string         `json:"type"`
	Config map[string]any `json:"config,omitempty"`
}

// Transform is a single message transformation, optionally gated by a predicate.
// IDs must be unique within a pipeline; predicate aliases derive from them.
type Transform struct {
	ID        int64          `json:"id"`
	Name      string         `json:"name,omitempty"`
	Position  int            `json:"position"`
	Type      string         `json:"type"`
	Config    map[string]any `json:"config,omitempty"`
	Predicate *Predicate     `json:"predicate,omitempty"`
}

// Predicate restricts which records a transform applies to.
type Predicate struct {
	Type   string         `json:"type"`
	Config map[string]any `json:"config,omitempty"`
	Negate bool           `json:"negate,omitempty"`
}

// HasPredicate reports whether the transform carries a usable predicate.
func (t Transform) HasPredicate() bool {
	return t.Predicate != nil && t.Predicate.Type != ""
}
