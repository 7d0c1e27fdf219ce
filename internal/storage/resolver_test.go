package storage_test

import (
	"errors"
	"testing"

	"github.com/nucleus/cdc-conductor/internal/core"
	"github.com/nucleus/cdc-conductor/internal/storage"
)

func testPipeline() *core.Pipeline {
	return &core.Pipeline{ID: 42, Name: "test-pipeline"}
}

func TestOffsetResolver_Jdbc(t *testing.T) {
	resolver := storage.NewOffsetResolver(storage.Settings{
		Type: "io.debezium.storage.jdbc.offset.JdbcOffsetBackingStore",
		Config: map[string]string{
			"jdbc.url":      "jdbc:postgresql://localhost:5432/postgres",
			"jdbc.user":     "test",
			"jdbc.password": "password",
		},
	})

	store, err := resolver.Create(testPipeline())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	jdbc, ok := store.(*storage.JdbcStore)
	if !ok {
		t.Fatalf("expected *JdbcStore, got %T", store)
	}
	if jdbc.Table.Name != "test_pipeline_offset" {
		t.Errorf("unexpected table name %q", jdbc.Table.Name)
	}
	if jdbc.URL != "jdbc:postgresql://localhost:5432/postgres" || jdbc.User != "test" || jdbc.Password != "password" {
		t.Errorf("unexpected connection fields: %+v", jdbc)
	}
}

func TestOffsetResolver_JdbcTableTemplate(t *testing.T) {
	settings := storage.Settings{
		Type: "jdbc",
		Config: map[string]string{
			"jdbc.url":               "jdbc:postgresql://db:5432/cdc",
			"jdbc.offset.table.name": "@{pipeline_name}_offsets",
		},
	}
	resolver := storage.NewOffsetResolver(settings)

	store, err := resolver.Create(testPipeline())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if name := store.(*storage.JdbcStore).Table.Name; name != "test_pipeline_offsets" {
		t.Errorf("unexpected table name %q", name)
	}
	if settings.Config["jdbc.offset.table.name"] != "@{pipeline_name}_offsets" {
		t.Error("Create must not mutate the global settings")
	}
}

func TestOffsetResolver_Memory(t *testing.T) {
	resolver := storage.NewOffsetResolver(storage.Settings{Type: "org.apache.kafka.connect.storage.MemoryOffsetBackingStore"})

	store, err := resolver.Create(&core.Pipeline{})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if store.Kind() != storage.KindInMemory {
		t.Errorf("expected in-memory store, got %s", store.Kind())
	}
}

func TestOffsetResolver_File(t *testing.T) {
	resolver := storage.NewOffsetResolver(storage.Settings{
		Type:   "org.apache.kafka.connect.storage.FileOffsetBackingStore",
		Config: map[string]string{"file.filename": "test-file"},
	})

	store, err := resolver.Create(testPipeline())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	file, ok := store.(*storage.FileStore)
	if !ok || file.FileName != "test-file" {
		t.Errorf("unexpected store %#v", store)
	}
}

func TestOffsetResolver_ConfigMap(t *testing.T) {
	resolver := storage.NewOffsetResolver(storage.Settings{
		Type:   "io.debezium.storage.configmap.ConfigMapOffsetStore",
		Config: map[string]string{"configmap.name": "test_map"},
	})

	store, err := resolver.Create(testPipeline())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	cm, ok := store.(*storage.ConfigMapStore)
	if !ok || cm.Name != "test_map" {
		t.Errorf("unexpected store %#v", store)
	}
}

func TestOffsetResolver_Kafka(t *testing.T) {
	resolver := storage.NewOffsetResolver(storage.Settings{
		Type: "org.apache.kafka.connect.storage.KafkaOffsetBackingStore",
		Config: map[string]string{
			"bootstrap.servers":  "localhost:9092",
			"topic":              "offsets",
			"partitions":         "1",
			"replication.factor": "2",
			"client.id":          "test-client",
		},
	})

	store, err := resolver.Create(testPipeline())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	kafka, ok := store.(*storage.KafkaStore)
	if !ok {
		t.Fatalf("expected *KafkaStore, got %T", store)
	}
	if kafka.BootstrapServers != "localhost:9092" || kafka.Topic != "offsets" {
		t.Errorf("unexpected kafka fields: %+v", kafka)
	}
	if kafka.Partitions != 1 || kafka.ReplicationFactor != 2 {
		t.Errorf("unexpected partitions/replication: %d/%d", kafka.Partitions, kafka.ReplicationFactor)
	}
	if len(kafka.Props) != 1 || kafka.Props["client.id"] != "test-client" {
		t.Errorf("expected only client.id in props, got %v", kafka.Props)
	}
}

func TestOffsetResolver_KafkaDefaultsAndBadNumber(t *testing.T) {
	store, err := storage.NewOffsetResolver(storage.Settings{Type: "kafka"}).Create(testPipeline())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	kafka := store.(*storage.KafkaStore)
	if kafka.Partitions != 1 || kafka.ReplicationFactor != 1 {
		t.Errorf("expected defaults 1/1, got %d/%d", kafka.Partitions, kafka.ReplicationFactor)
	}

	_, err = storage.NewOffsetResolver(storage.Settings{
		Type:   "kafka",
		Config: map[string]string{"partitions": "many"},
	}).Create(testPipeline())
	if !errors.Is(err, core.ErrInvalidArgument) {
		t.Errorf("expected invalid argument for bad partitions, got %v", err)
	}
}

func TestOffsetResolver_Redis(t *testing.T) {
	resolver := storage.NewOffsetResolver(storage.Settings{
		Type: "io.debezium.storage.redis.offset.RedisOffsetBackingStore",
		Config: map[string]string{
			"address":             "localhost:6379",
			"user":                "user",
			"password":            "pwd",
			"ssl.enabled":         "true",
			"key":                 "offsets",
			"wait.enabled":        "true",
			"wait.timeout.ms":     "100",
			"wait.retry.enabled":  "true",
			"wait.retry.delay.ms": "200",
		},
	})

	store, err := resolver.Create(testPipeline())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	redis, ok := store.(*storage.RedisStore)
	if !ok {
		t.Fatalf("expected *RedisStore, got %T", store)
	}
	if redis.Address != "localhost:6379" || redis.User != "user" || redis.Password != "pwd" || redis.Key != "offsets" {
		t.Errorf("unexpected redis fields: %+v", redis)
	}
	if !redis.SSLEnabled || !redis.Wait.Enabled || !redis.Wait.Retry {
		t.Errorf("expected ssl and wait flags enabled: %+v", redis)
	}
	if redis.Wait.TimeoutMs == nil || *redis.Wait.TimeoutMs != 100 {
		t.Errorf("unexpected wait timeout %v", redis.Wait.TimeoutMs)
	}
	if redis.Wait.RetryDelayMs == nil || *redis.Wait.RetryDelayMs != 200 {
		t.Errorf("unexpected retry delay %v", redis.Wait.RetryDelayMs)
	}
}

func TestOffsetResolver_Unsupported(t *testing.T) {
	_, err := storage.NewOffsetResolver(storage.Settings{Type: "io.custom.MyCustomOffset"}).Create(testPipeline())
	if !errors.Is(err, core.ErrUnsupportedConfiguration) {
		t.Fatalf("expected unsupported configuration, got %v", err)
	}
	if err.Error() != "Offset type io.custom.MyCustomOffset not supported" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestSchemaHistoryResolver_Jdbc(t *testing.T) {
	resolver := storage.NewSchemaHistoryResolver(storage.Settings{
		Type: "io.debezium.storage.jdbc.history.JdbcSchemaHistory",
		Config: map[string]string{
			"jdbc.url":      "jdbc:postgresql://localhost:5432/postgres",
			"jdbc.user":     "test",
			"jdbc.password": "password",
		},
	})

	store, err := resolver.Create(testPipeline())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	jdbc, ok := store.(*storage.JdbcStore)
	if !ok {
		t.Fatalf("expected *JdbcStore, got %T", store)
	}
	if jdbc.Table.Name != "test_pipeline_schema_history" {
		t.Errorf("unexpected table name %q", jdbc.Table.Name)
	}
}

func TestSchemaHistoryResolver_Kinds(t *testing.T) {
	tests := []struct {
		typeID string
		want   storage.Kind
	}{
		{"io.debezium.storage.file.history.FileSchemaHistory", storage.KindFile},
		{"io.debezium.storage.kafka.history.KafkaSchemaHistory", storage.KindKafka},
		{"io.debezium.storage.redis.history.RedisSchemaHistory", storage.KindRedis},
		{"io.debezium.relational.history.MemorySchemaHistory", storage.KindInMemory},
	}

	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			store, err := storage.NewSchemaHistoryResolver(storage.Settings{Type: tt.typeID}).Create(testPipeline())
			if err != nil {
				t.Fatalf("Create failed: %v", err)
			}
			if store.Kind() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, store.Kind())
			}
		})
	}
}

func TestSchemaHistoryResolver_Unsupported(t *testing.T) {
	_, err := storage.NewSchemaHistoryResolver(storage.Settings{Type: "io.custom.MyCustomOffset"}).Create(testPipeline())
	if !errors.Is(err, core.ErrUnsupportedConfiguration) {
		t.Fatalf("expected unsupported configuration, got %v", err)
	}
	if err.Error() != "Schema history io.custom.MyCustomOffset not supported" {
		t.Errorf("unexpected message %q", err.Error())
	}

	// ConfigMap storage only exists for offsets.
	if _, err := storage.NewSchemaHistoryResolver(storage.Settings{Type: "configmap"}).Create(testPipeline()); !errors.Is(err, core.ErrUnsupportedConfiguration) {
		t.Errorf("expected configmap schema history to be unsupported, got %v", err)
	}
}
