package storage

import (
	"strconv"
	"strings"

	"github.com/nucleus/cdc-conductor/internal/core"
)

// Keys recognised in the global storage configuration.
const (
	KeyFileName = "file.filename"

	KeyJdbcURL      = "jdbc.url"
	KeyJdbcUser     = "jdbc.user"
	KeyJdbcPassword = "jdbc.password"

	KeyOffsetTableName        = "jdbc.offset.table.name"
	KeySchemaHistoryTableName = "jdbc.schema.history.table.name"

	KeyKafkaBootstrapServers  = "bootstrap.servers"
	KeyKafkaTopic             = "topic"
	KeyKafkaPartitions        = "partitions"
	KeyKafkaReplicationFactor = "replication.factor"

	KeyRedisAddress          = "address"
	KeyRedisUser             = "user"
	KeyRedisPassword         = "password"
	KeyRedisSSLEnabled       = "ssl.enabled"
	KeyRedisKey              = "key"
	KeyRedisWaitEnabled      = "wait.enabled"
	KeyRedisWaitTimeoutMs    = "wait.timeout.ms"
	KeyRedisWaitRetry        = "wait.retry.enabled"
	KeyRedisWaitRetryDelayMs = "wait.retry.delay.ms"

	KeyConfigMapName = "configmap.name"
)

const (
	OffsetTableSuffix        = "offset"
	SchemaHistoryTableSuffix = "schema_history"

	defaultKafkaPartitions        = 1
	defaultKafkaReplicationFactor = 1
)

// resolvableKeys hold table names or templates that must go through the
// TableNameResolver before they reach the compiled configuration.
var resolvableKeys = []string{KeySchemaHistoryTableName, KeyOffsetTableName}

// Settings is the process-wide backend selection for one axis.
type Settings struct {
	Type   string            `yaml:"type" json:"type"`
	Config map[string]string `yaml:"config" json:"config,omitempty"`
}

// axis captures everything that differs between the offset and the schema
// history instantiation of the resolver.
type axis struct {
	name        string
	label       string
	tableSuffix string
	tableKey    string
	kinds       map[string]Kind
}

var offsetAxis = axis{
	name:        "offset",
	label:       "Offset type",
	tableSuffix: OffsetTableSuffix,
	tableKey:    KeyOffsetTableName,
	kinds: map[string]Kind{
		"org.apache.kafka.connect.storage.FileOffsetBackingStore":   KindFile,
		"io.debezium.storage.jdbc.offset.JdbcOffsetBackingStore":    KindJdbc,
		"org.apache.kafka.connect.storage.KafkaOffsetBackingStore":  KindKafka,
		"io.debezium.storage.redis.offset.RedisOffsetBackingStore":  KindRedis,
		"io.debezium.storage.configmap.ConfigMapOffsetStore":        KindConfigMap,
		"org.apache.kafka.connect.storage.MemoryOffsetBackingStore": KindInMemory,
		string(KindFile):      KindFile,
		string(KindJdbc):      KindJdbc,
		string(KindKafka):     KindKafka,
		string(KindRedis):     KindRedis,
		string(KindConfigMap): KindConfigMap,
		string(KindInMemory):  KindInMemory,
	},
}

var schemaHistoryAxis = axis{
	name:        "schema history",
	label:       "Schema history",
	tableSuffix: SchemaHistoryTableSuffix,
	tableKey:    KeySchemaHistoryTableName,
	kinds: map[string]Kind{
		"io.debezium.storage.file.history.FileSchemaHistory":   KindFile,
		"io.debezium.storage.jdbc.history.JdbcSchemaHistory":   KindJdbc,
		"io.debezium.storage.kafka.history.KafkaSchemaHistory": KindKafka,
		"io.debezium.storage.redis.history.RedisSchemaHistory": KindRedis,
		"io.debezium.relational.history.MemorySchemaHistory":   KindInMemory,
		string(KindFile):     KindFile,
		string(KindJdbc):     KindJdbc,
		string(KindKafka):    KindKafka,
		string(KindRedis):    KindRedis,
		string(KindInMemory): KindInMemory,
	},
}

// Resolver selects a backend from the global settings and resolves the
// pipeline-specific identifiers it needs.
type Resolver struct {
	axis     axis
	settings Settings
	tables   TableNameResolver
}

// NewOffsetResolver creates the resolver for offset storage.
func NewOffsetResolver(settings Settings) *Resolver {
	return &Resolver{axis: offsetAxis, settings: settings}
}

// NewSchemaHistoryResolver creates the resolver for schema history storage.
func NewSchemaHistoryResolver(settings Settings) *Resolver {
	return &Resolver{axis: schemaHistoryAxis, settings: settings}
}

// Name identifies the axis in logs.
func (r *Resolver) Name() string { return r.axis.name }

// Kind returns the backend selected by the settings.
func (r *Resolver) Kind() (Kind, error) {
	kind, ok := r.axis.kinds[strings.TrimSpace(r.settings.Type)]
	if !ok {
		return "", core.UnsupportedConfiguration("%s %s not supported", r.axis.label, r.settings.Type)
	}
	return kind, nil
}

// Create builds the storage descriptor for pipeline. It never touches the
// settings map; resolution works on a copy.
func (r *Resolver) Create(pipeline *core.Pipeline) (Store, error) {
	kind, err := r.Kind()
	if err != nil {
		return nil, err
	}

	cfg, err := r.resolveConfig(pipeline)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindFile:
		return &FileStore{FileName: cfg[KeyFileName]}, nil
	case KindJdbc:
		return r.buildJdbc(pipeline, cfg)
	case KindKafka:
		return buildKafka(cfg)
	case KindRedis:
		return buildRedis(cfg)
	case KindConfigMap:
		return &ConfigMapStore{Name: cfg[KeyConfigMapName]}, nil
	case KindInMemory:
		return &InMemoryStore{}, nil
	}
	return nil, core.UnsupportedConfiguration("%s %s not supported", r.axis.label, r.settings.Type)
}

func (r *Resolver) resolveConfig(pipeline *core.Pipeline) (map[string]string, error) {
	cfg := make(map[string]string, len(r.settings.Config))
	for k, v := range r.settings.Config {
		cfg[k] = v
	}
	for _, key := range resolvableKeys {
		raw, ok := cfg[key]
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		resolved, err := r.tables.Resolve(pipeline, strings.TrimSpace(raw))
		if err != nil {
			return nil, err
		}
		cfg[key] = resolved
	}
	return cfg, nil
}

func (r *Resolver) buildJdbc(pipeline *core.Pipeline, cfg map[string]string) (Store, error) {
	table := cfg[r.axis.tableKey]
	if table == "" {
		resolved, err := r.tables.Resolve(pipeline, r.axis.tableSuffix)
		if err != nil {
			return nil, err
		}
		table = resolved
	}
	return &JdbcStore{
		URL:      cfg[KeyJdbcURL],
		User:     cfg[KeyJdbcUser],
		Password: cfg[KeyJdbcPassword],
		Table:    JdbcTable{Name: table},
	}, nil
}

func buildKafka(cfg map[string]string) (Store, error) {
	partitions, err := intOrDefault(cfg, KeyKafkaPartitions, defaultKafkaPartitions)
	if err != nil {
		return nil, err
	}
	replication, err := intOrDefault(cfg, KeyKafkaReplicationFactor, defaultKafkaReplicationFactor)
	if err != nil {
		return nil, err
	}

	store := &KafkaStore{
		BootstrapServers:  cfg[KeyKafkaBootstrapServers],
		Topic:             cfg[KeyKafkaTopic],
		Partitions:        partitions,
		ReplicationFactor: replication,
	}
	for k, v := range cfg {
		switch k {
		case KeyKafkaBootstrapServers, KeyKafkaTopic, KeyKafkaPartitions, KeyKafkaReplicationFactor:
			continue
		}
		if store.Props == nil {
			store.Props = make(map[string]string)
		}
		store.Props[k] = v
	}
	return store, nil
}

func buildRedis(cfg map[string]string) (Store, error) {
	timeout, err := optionalInt64(cfg, KeyRedisWaitTimeoutMs)
	if err != nil {
		return nil, err
	}
	retryDelay, err := optionalInt64(cfg, KeyRedisWaitRetryDelayMs)
	if err != nil {
		return nil, err
	}
	return &RedisStore{
		Address:    cfg[KeyRedisAddress],
		User:       cfg[KeyRedisUser],
		Password:   cfg[KeyRedisPassword],
		SSLEnabled: parseBool(cfg[KeyRedisSSLEnabled]),
		Key:        cfg[KeyRedisKey],
		Wait: RedisWaitWrite{
			Enabled:      parseBool(cfg[KeyRedisWaitEnabled]),
			TimeoutMs:    timeout,
			Retry:        parseBool(cfg[KeyRedisWaitRetry]),
			RetryDelayMs: retryDelay,
		},
	}, nil
}

func intOrDefault(cfg map[string]string, key string, def int) (int, error) {
	raw := strings.TrimSpace(cfg[key])
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, core.InvalidArgument("%s must be an integer, got %q", key, raw)
	}
	return v, nil
}

func optionalInt64(cfg map[string]string, key string) (*int64, error) {
	raw := strings.TrimSpace(cfg[key])
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, core.InvalidArgument("%s must be an integer, got %q", key, raw)
	}
	return &v, nil
}

// parseBool is true only for a case-insensitive "true".
func parseBool(raw string) bool {
	return strings.EqualFold(strings.TrimSpace(raw), "true")
}
