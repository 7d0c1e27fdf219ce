package storage

// Kind names a storage backend.
type Kind string

const (
	KindFile      Kind = "file"
	KindJdbc      Kind = "jdbc"
	KindKafka     Kind = "kafka"
	KindRedis     Kind = "redis"
	KindConfigMap Kind = "configmap"
	KindInMemory  Kind = "memory"
)

// Store is the sealed sum type over the supported backends. Exactly one
// variant is active per pipeline per axis (offset, schema history).
type Store interface {
	Kind() Kind
	Accept(v Visitor)
	sealed()
}

// Visitor handles every Store variant. Adding a backend adds a method here,
// which breaks every consumer until it handles the new variant.
type Visitor interface {
	VisitFile(*FileStore)
	VisitJdbc(*JdbcStore)
	VisitKafka(*KafkaStore)
	VisitRedis(*RedisStore)
	VisitConfigMap(*ConfigMapStore)
	VisitInMemory(*InMemoryStore)
}

// FileStore keeps state in a local file of the running pipeline.
type FileStore struct {
	FileName string `json:"fileName,omitempty"`
}

// JdbcStore keeps state in a database table.
type JdbcStore struct {
	URL      string    `json:"url,omitempty"`
	User     string    `json:"user,omitempty"`
	Password string    `json:"password,omitempty"`
	Table    JdbcTable `json:"table"`
}

// JdbcTable names the table holding the state.
type JdbcTable struct {
	Name string `json:"name"`
}

// KafkaStore keeps state in a Kafka topic.
type KafkaStore struct {
	BootstrapServers  string            `json:"bootstrapServers,omitempty"`
	Topic             string            `json:"topic,omitempty"`
	Partitions        int               `json:"partitions"`
	ReplicationFactor int               `json:"replicationFactor"`
	Props             map[string]string `json:"props,omitempty"`
}

// RedisStore keeps state under a Redis key.
type RedisStore struct {
	Address    string         `json:"address,omitempty"`
	User       string         `json:"user,omitempty"`
	Password   string         `json:"password,omitempty"`
	SSLEnabled bool           `json:"sslEnabled"`
	Key        string         `json:"key,omitempty"`
	Wait       RedisWaitWrite `json:"wait"`
}

// RedisWaitWrite is the write-acknowledgement policy for Redis stores.
type RedisWaitWrite struct {
	Enabled      bool   `json:"enabled"`
	TimeoutMs    *int64 `json:"timeoutMs,omitempty"`
	Retry        bool   `json:"retry"`
	RetryDelayMs *int64 `json:"retryDelayMs,omitempty"`
}

// ConfigMapStore keeps offsets in a Kubernetes ConfigMap.
type ConfigMapStore struct {
	Name string `json:"name,omitempty"`
}

// InMemoryStore keeps state in process memory; it is lost on restart.
type InMemoryStore struct{}

func (*FileStore) Kind() Kind      { return KindFile }
func (*JdbcStore) Kind() Kind      { return KindJdbc }
func (*KafkaStore) Kind() Kind     { return KindKafka }
func (*RedisStore) Kind() Kind     { return KindRedis }
func (*ConfigMapStore) Kind() Kind { return KindConfigMap }
func (*InMemoryStore) Kind() Kind  { return KindInMemory }

func (s *FileStore) Accept(v Visitor)      { v.VisitFile(s) }
func (s *JdbcStore) Accept(v Visitor)      { v.VisitJdbc(s) }
func (s *KafkaStore) Accept(v Visitor)     { v.VisitKafka(s) }
func (s *RedisStore) Accept(v Visitor)     { v.VisitRedis(s) }
func (s *ConfigMapStore) Accept(v Visitor) { v.VisitConfigMap(s) }
func (s *InMemoryStore) Accept(v Visitor)  { v.VisitInMemory(s) }

func (*FileStore) sealed()      {}
func (*JdbcStore) sealed()      {}
func (*KafkaStore) sealed()     {}
func (*RedisStore) sealed()     {}
func (*ConfigMapStore) sealed() {}
func (*InMemoryStore) sealed()  {}
