package operator

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/nucleus/cdc-conductor/internal/storage"
	"github.com/nucleus/cdc-conductor/internal/transform"
)

const (
	Group      = "debezium.io"
	Version    = "v1alpha1"
	KindServer = "DebeziumServer"
	Resource   = "debeziumservers"

	// LabelConductorID ties a deployment back to its pipeline id.
	LabelConductorID = "debezium.io/conductor-id"
	// AnnotationConfigHash carries the hash of the compiled spec.
	AnnotationConfigHash = "debezium.io/conductor-config-hash"
)

// GroupVersionResource of the DebeziumServer custom resource.
var GroupVersionResource = schema.GroupVersionResource{Group: Group, Version: Version, Resource: Resource}

// DebeziumServer is the deployment resource reconciled by the operator.
type DebeziumServer struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec DebeziumServerSpec `json:"spec"`
}

// DebeziumServerSpec is the compiled runtime configuration of one pipeline.
type DebeziumServerSpec struct {
	Quarkus    Quarkus                        `json:"quarkus"`
	Runtime    Runtime                        `json:"runtime"`
	Source     Source                         `json:"source"`
	Sink       Sink                           `json:"sink"`
	Transforms []transform.Transformation     `json:"transforms,omitempty"`
	Predicates map[string]transform.Predicate `json:"predicates,omitempty"`
}

// Quarkus carries runtime-engine properties such as logging.
type Quarkus struct {
	Config map[string]any `json:"config,omitempty"`
}

// Runtime toggles the API and metrics endpoints of the running pipeline.
// Suspended is the single paused flag flipped by start and stop.
type Runtime struct {
	API       RuntimeAPI `json:"api"`
	Metrics   Metrics    `json:"metrics"`
	Suspended bool       `json:"suspended"`
}

// RuntimeAPI exposes the HTTP API signals are delivered to.
type RuntimeAPI struct {
	Enabled bool `json:"enabled"`
}

// Metrics configures metric exporters of the running pipeline.
type Metrics struct {
	JmxExporter JmxExporter `json:"jmxExporter"`
}

// JmxExporter toggles the Prometheus JMX exporter.
type JmxExporter struct {
	Enabled bool `json:"enabled"`
}

// Source is the connector side of the pipeline.
type Source struct {
	Class         string         `json:"class"`
	Offset        StoreSpec      `json:"offset"`
	SchemaHistory StoreSpec      `json:"schemaHistory"`
	Config        map[string]any `json:"config,omitempty"`
}

// Sink is the destination side of the pipeline.
type Sink struct {
	Type   string         `json:"type"`
	Config map[string]any `json:"config,omitempty"`
}

// StoreSpec holds exactly one active storage backend.
type StoreSpec struct {
	File      *storage.FileStore      `json:"file,omitempty"`
	Jdbc      *storage.JdbcStore      `json:"jdbc,omitempty"`
	Kafka     *storage.KafkaStore     `json:"kafka,omitempty"`
	Redis     *storage.RedisStore     `json:"redis,omitempty"`
	ConfigMap *storage.ConfigMapStore `json:"configMap,omitempty"`
	Memory    *storage.InMemoryStore  `json:"memory,omitempty"`
}

// ActiveStore returns the single populated backend, or nil.
func (s StoreSpec) ActiveStore() storage.Store {
	switch {
	case s.File != nil:
		return s.File
	case s.Jdbc != nil:
		return s.Jdbc
	case s.Kafka != nil:
		return s.Kafka
	case s.Redis != nil:
		return s.Redis
	case s.ConfigMap != nil:
		return s.ConfigMap
	case s.Memory != nil:
		return s.Memory
	}
	return nil
}

// storeSpecBuilder places a resolved store into its StoreSpec slot.
type storeSpecBuilder struct {
	spec StoreSpec
}

func (b *storeSpecBuilder) VisitFile(s *storage.FileStore)           { b.spec.File = s }
func (b *storeSpecBuilder) VisitJdbc(s *storage.JdbcStore)           { b.spec.Jdbc = s }
func (b *storeSpecBuilder) VisitKafka(s *storage.KafkaStore)         { b.spec.Kafka = s }
func (b *storeSpecBuilder) VisitRedis(s *storage.RedisStore)         { b.spec.Redis = s }
func (b *storeSpecBuilder) VisitConfigMap(s *storage.ConfigMapStore) { b.spec.ConfigMap = s }
func (b *storeSpecBuilder) VisitInMemory(s *storage.InMemoryStore)   { b.spec.Memory = s }

func newStoreSpec(store storage.Store) StoreSpec {
	var b storeSpecBuilder
	store.Accept(&b)
	return b.spec
}
