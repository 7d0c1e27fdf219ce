package storage

import (
	"strings"

	"github.com/nucleus/cdc-conductor/internal/core"
)

// PipelineNamePlaceholder is replaced by the pipeline name in table templates.
const PipelineNamePlaceholder = "@{pipeline_name}"

// maxIdentifierBytes is PostgreSQL's identifier limit (NAMEDATALEN - 1).
const maxIdentifierBytes = 63

// TableNameResolver derives backend identifiers from a pipeline.
// It is pure: the same pipeline name and template always give the same name.
type TableNameResolver struct{}

// Resolve expands templateOrSuffix for the pipeline.
//
// A value without placeholders is a literal suffix and yields
// sanitize(name) + "_" + suffix. A value with placeholders is expanded and
// then sanitized as a whole.
func (TableNameResolver) Resolve(pipeline *core.Pipeline, templateOrSuffix string) (string, error) {
	if pipeline == nil || pipeline.Name == "" {
		return "", core.InvalidArgument("Table name cannot be null or empty")
	}
	if templateOrSuffix == "" {
		return "", core.InvalidArgument("table name suffix cannot be empty for pipeline %s", pipeline.Name)
	}

	if !hasPlaceholder(templateOrSuffix) {
		base, err := SanitizeTableName(pipeline.Name)
		if err != nil {
			return "", err
		}
		return base + "_" + templateOrSuffix, nil
	}

	expanded := expandPlaceholders(templateOrSuffix, pipeline)
	return SanitizeTableName(expanded)
}

func placeholders(pipeline *core.Pipeline) map[string]string {
	return map[string]string{
		PipelineNamePlaceholder: pipeline.Name,
	}
}

func hasPlaceholder(value string) bool {
	return strings.Contains(value, PipelineNamePlaceholder)
}

func expandPlaceholders(template string, pipeline *core.Pipeline) string {
	out := template
	for placeholder, value := range placeholders(pipeline) {
		out = strings.ReplaceAll(out, placeholder, value)
	}
	return out
}

// SanitizeTableName makes name safe to use as an unquoted PostgreSQL table name:
//   - folds to lowercase
//   - replaces characters outside [a-z0-9_] with underscores
//   - ensures the name starts with a letter or underscore
//   - collapses underscore runs and trims one trailing underscore
//   - truncates to 63 bytes
func SanitizeTableName(name string) (string, error) {
	if name == "" {
		return "", core.InvalidArgument("Table name cannot be null or empty")
	}

	lowered := strings.ToLower(name)

	var b strings.Builder
	b.Grow(len(lowered) + 1)
	for _, r := range lowered {
		if isIdentifierChar(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	sanitized := b.String()

	if sanitized == "" || !isIdentifierStart(sanitized[0]) {
		sanitized = "_" + sanitized
	}

	sanitized = collapseUnderscores(sanitized)
	sanitized = strings.TrimSuffix(sanitized, "_")

	if len(sanitized) > maxIdentifierBytes {
		sanitized = sanitized[:maxIdentifierBytes]
		sanitized = strings.TrimSuffix(sanitized, "_")
	}

	return sanitized, nil
}

func isIdentifierChar(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_'
}

func isIdentifierStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || c == '_'
}

func collapseUnderscores(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevUnderscore := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '_' {
			if prevUnderscore {
				continue
			}
			prevUnderscore = true
		} else {
			prevUnderscore = false
		}
		b.WriteByte(c)
	}
	return b.String()
}
