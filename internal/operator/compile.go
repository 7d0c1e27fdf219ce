package operator

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/validation"

	"github.com/nucleus/cdc-conductor/internal/core"
	"github.com/nucleus/cdc-conductor/internal/storage"
	"github.com/nucleus/cdc-conductor/internal/transform"
)

const (
	SignalEnabledChannelsConfig       = "signal.enabled.channels"
	NotificationEnabledChannelsConfig = "notification.enabled.channels"
	DefaultSignalChannels             = "source,in-process"
	DefaultNotificationChannels       = "log"

	defaultLogLevel = "INFO"
)

// Compiler turns a pipeline into a DebeziumServer resource. It holds only the
// process-wide storage settings and performs no I/O.
type Compiler struct {
	offsets       *storage.Resolver
	schemaHistory *storage.Resolver
}

// NewCompiler creates a compiler bound to the global storage settings.
func NewCompiler(offset, schemaHistory storage.Settings) *Compiler {
	return &Compiler{
		offsets:       storage.NewOffsetResolver(offset),
		schemaHistory: storage.NewSchemaHistoryResolver(schemaHistory),
	}
}

// Compile builds the deployment resource for pipeline. Any error means nothing
// may be submitted.
func (c *Compiler) Compile(pipeline *core.Pipeline) (*DebeziumServer, error) {
	if err := validatePipeline(pipeline); err != nil {
		return nil, err
	}

	offset, err := c.offsets.Create(pipeline)
	if err != nil {
		return nil, err
	}
	history, err := c.schemaHistory.Create(pipeline)
	if err != nil {
		return nil, err
	}
	chain, err := transform.Compile(pipeline.Transforms)
	if err != nil {
		return nil, err
	}

	logLevel := pipeline.LogLevel
	if logLevel == "" {
		logLevel = defaultLogLevel
	}

	spec := DebeziumServerSpec{
		Quarkus: Quarkus{Config: map[string]any{
			"log.level":        logLevel,
			"log.console.json": false,
		}},
		Runtime: Runtime{
			API:     RuntimeAPI{Enabled: true},
			Metrics: Metrics{JmxExporter: JmxExporter{Enabled: true}},
		},
		Source: Source{
			Class:         pipeline.Source.Type,
			Offset:        newStoreSpec(offset),
			SchemaHistory: newStoreSpec(history),
			Config:        sourceConfig(pipeline.Source.Config),
		},
		Sink: Sink{
			Type:   pipeline.Destination.Type,
			Config: copyConfig(pipeline.Destination.Config),
		},
		Transforms: chain.Transforms,
		Predicates: chain.Predicates,
	}

	hash, err := specHash(spec)
	if err != nil {
		return nil, err
	}

	return &DebeziumServer{
		TypeMeta: metav1.TypeMeta{APIVersion: Group + "/" + Version, Kind: KindServer},
		ObjectMeta: metav1.ObjectMeta{
			Name:        ResourceName(pipeline.Name),
			Labels:      map[string]string{LabelConductorID: strconv.FormatInt(pipeline.ID, 10)},
			Annotations: map[string]string{AnnotationConfigHash: hash},
		},
		Spec: spec,
	}, nil
}

func validatePipeline(pipeline *core.Pipeline) error {
	if pipeline == nil {
		return core.InvalidArgument("pipeline is required")
	}
	if strings.TrimSpace(pipeline.Name) == "" {
		return core.InvalidArgument("pipeline %d has no name", pipeline.ID)
	}
	if strings.TrimSpace(pipeline.Source.Type) == "" {
		return core.InvalidArgument("pipeline %s has no source type", pipeline.Name)
	}
	if strings.TrimSpace(pipeline.Destination.Type) == "" {
		return core.InvalidArgument("pipeline %s has no destination type", pipeline.Name)
	}
	if ResourceName(pipeline.Name) == "" {
		return core.InvalidArgument("pipeline name %q cannot be used as a resource name", pipeline.Name)
	}
	return nil
}

// sourceConfig copies the source config and adds the signal and notification
// channels when the user left them unset.
func sourceConfig(in map[string]any) map[string]any {
	out := copyConfig(in)
	if out == nil {
		out = make(map[string]any, 2)
	}
	if _, ok := out[SignalEnabledChannelsConfig]; !ok {
		out[SignalEnabledChannelsConfig] = DefaultSignalChannels
	}
	if _, ok := out[NotificationEnabledChannelsConfig]; !ok {
		out[NotificationEnabledChannelsConfig] = DefaultNotificationChannels
	}
	return out
}

func copyConfig(in map[string]any) map[string]any {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// ResourceName derives the Kubernetes resource name from a pipeline name.
// Names that are already valid DNS-1123 subdomains are kept as-is.
func ResourceName(pipelineName string) string {
	if len(validation.IsDNS1123Subdomain(pipelineName)) == 0 {
		return pipelineName
	}

	var b strings.Builder
	for _, r := range strings.ToLower(pipelineName) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	name := b.String()
	for strings.Contains(name, "--") {
		name = strings.ReplaceAll(name, "--", "-")
	}
	name = strings.Trim(name, "-")
	if len(name) > validation.DNS1123SubdomainMaxLength {
		name = strings.TrimRight(name[:validation.DNS1123SubdomainMaxLength], "-")
	}
	return name
}

// specHash fingerprints the compiled spec. encoding/json sorts map keys, so
// equal specs always hash equally.
func specHash(spec DebeziumServerSpec) (string, error) {
	raw, err := json.Marshal(spec)
	if err != nil {
		return "", fmt.Errorf("encode spec: %w", err)
	}
	return strconv.FormatUint(xxh3.Hash(raw), 16), nil
}
