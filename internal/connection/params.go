package connection

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParamError names the configuration field that failed the parameter phase.
type ParamError struct {
	Field   string
	Message string
}

func (e *ParamError) Error() string { return e.Message }

// StringValue returns the trimmed string form of config[key], or "" when the
// key is absent or nil.
func StringValue(config map[string]any, key string) string {
	v, ok := config[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case fmt.Stringer:
		return strings.TrimSpace(t.String())
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// RequireString returns config[key] or a ParamError "<label> must be specified".
func RequireString(config map[string]any, key, label string) (string, error) {
	v := StringValue(config, key)
	if v == "" {
		return "", &ParamError{Field: key, Message: label + " must be specified"}
	}
	return v, nil
}

// RequirePort parses config[key] as a TCP port in [1,65535].
func RequirePort(config map[string]any, key string) (int, error) {
	raw, ok := config[key]
	if !ok || raw == nil || StringValue(config, key) == "" {
		return 0, &ParamError{Field: key, Message: "Port must be specified"}
	}

	port, ok := toInt(raw)
	if !ok {
		return 0, &ParamError{Field: key, Message: "Port must be a valid integer"}
	}
	if port < 1 || port > 65535 {
		return 0, &ParamError{Field: key, Message: "Port must be between 1 and 65535"}
	}
	return port, nil
}

// OptionalBool reads config[key] as "true" or "false", returning def when
// the key is absent.
func OptionalBool(config map[string]any, key string, def bool) (bool, error) {
	raw, ok := config[key]
	if !ok || raw == nil {
		return def, nil
	}
	if b, ok := raw.(bool); ok {
		return b, nil
	}
	switch strings.ToLower(StringValue(config, key)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return def, &ParamError{Field: key, Message: fmt.Sprintf("%s must be 'true' or 'false' if specified", key)}
}

func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int32:
		return int(t), true
	case int64:
		if t > math.MaxInt32 || t < math.MinInt32 {
			return 0, false
		}
		return int(t), true
	case float64:
		if t != math.Trunc(t) || math.IsInf(t, 0) || t > math.MaxInt32 || t < math.MinInt32 {
			return 0, false
		}
		return int(t), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}
