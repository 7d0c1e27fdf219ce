package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv(EnvConfigFile, "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr() != "0.0.0.0:8080" {
		t.Errorf("addr = %s", cfg.Addr())
	}
	if cfg.Storage.Offset.Type != "memory" || cfg.Storage.SchemaHistory.Type != "memory" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.DestinationTimeout("REDIS") != 5*time.Second {
		t.Errorf("timeout = %v", cfg.DestinationTimeout("REDIS"))
	}
	if cfg.Preflight.Enabled {
		t.Error("preflight should be off by default")
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("CONDUCTOR_PORT", "9090")
	t.Setenv("CONDUCTOR_OFFSET_STORAGE_TYPE", "jdbc")
	t.Setenv("CONDUCTOR_OFFSET_STORAGE_CONFIG_JDBC_URL", "jdbc:postgresql://db:5432/conductor")
	t.Setenv("CONDUCTOR_SIGNAL_RATE_LIMIT", "2.5")
	t.Setenv("CONDUCTOR_PREFLIGHT_ENABLED", "true")

	cfg := FromEnv()
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Storage.Offset.Type != "jdbc" {
		t.Errorf("offset type = %s", cfg.Storage.Offset.Type)
	}
	if got := cfg.Storage.Offset.Config["jdbc.url"]; got != "jdbc:postgresql://db:5432/conductor" {
		t.Errorf("jdbc.url = %q", got)
	}
	if cfg.Signals.RateLimit != 2.5 || !cfg.Preflight.Enabled {
		t.Errorf("signals/preflight = %+v %+v", cfg.Signals, cfg.Preflight)
	}
}

func TestFromEnv_IgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("CONDUCTOR_PORT", "eighty")
	if got := FromEnv().Server.Port; got != 8080 {
		t.Errorf("port = %d, want default", got)
	}
}

func TestLoad_YAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conductor.yaml")
	yamlDoc := `
server:
  port: 7070
kubernetes:
  namespace: cdc
storage:
  offset:
    type: io.debezium.storage.jdbc.offset.JdbcOffsetBackingStore
    config:
      jdbc.url: jdbc:postgresql://db:5432/conductor
      jdbc.offset.table.name: "@{pipeline_name}_offsets"
  schemaHistory:
    type: redis
    config:
      address: redis:6379
destinations:
  timeoutSeconds: 3
  timeouts:
    kinesis: 12
`
	if err := os.WriteFile(path, []byte(yamlDoc), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvConfigFile, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 7070 || cfg.Server.Host != "0.0.0.0" {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Kubernetes.Namespace != "cdc" {
		t.Errorf("namespace = %s", cfg.Kubernetes.Namespace)
	}
	if cfg.Storage.Offset.Config["jdbc.offset.table.name"] != "@{pipeline_name}_offsets" {
		t.Errorf("offset config = %v", cfg.Storage.Offset.Config)
	}
	if cfg.Storage.SchemaHistory.Type != "redis" {
		t.Errorf("schema history = %+v", cfg.Storage.SchemaHistory)
	}
	if cfg.DestinationTimeout("KINESIS") != 12*time.Second {
		t.Errorf("kinesis timeout = %v", cfg.DestinationTimeout("KINESIS"))
	}
	if cfg.DestinationTimeout("REDIS") != 3*time.Second {
		t.Errorf("redis timeout = %v", cfg.DestinationTimeout("REDIS"))
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		t.Setenv(EnvConfigFile, filepath.Join(t.TempDir(), "absent.yaml"))
		if _, err := Load(); err == nil {
			t.Error("expected error")
		}
	})
	t.Run("bad yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		_ = os.WriteFile(path, []byte("server: [unterminated"), 0o600)
		t.Setenv(EnvConfigFile, path)
		if _, err := Load(); err == nil {
			t.Error("expected error")
		}
	})
	t.Run("bad port", func(t *testing.T) {
		t.Setenv(EnvConfigFile, "")
		t.Setenv("CONDUCTOR_PORT", "70000")
		if _, err := Load(); err == nil {
			t.Error("expected error")
		}
	})
}
