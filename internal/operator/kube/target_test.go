package kube

import (
	"context"
	"errors"
	"io"
	"testing"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	dynamicfake "k8s.io/client-go/dynamic/fake"
	kubefake "k8s.io/client-go/kubernetes/fake"

	"github.com/nucleus/cdc-conductor/internal/core"
	"github.com/nucleus/cdc-conductor/internal/operator"
	"github.com/nucleus/cdc-conductor/internal/storage"
)

const testNamespace = "debezium"

func newTestTarget(objects ...runtime.Object) *Target {
	dyn := dynamicfake.NewSimpleDynamicClientWithCustomListKinds(
		runtime.NewScheme(),
		map[schema.GroupVersionResource]string{operator.GroupVersionResource: "DebeziumServerList"},
	)
	return New(dyn, kubefake.NewSimpleClientset(objects...), testNamespace)
}

func compile(t *testing.T, id int64, name string) *operator.DebeziumServer {
	t.Helper()
	compiler := operator.NewCompiler(
		storage.Settings{Type: "redis", Config: map[string]string{"address": "redis:6379", "wait.timeout.ms": "1000"}},
		storage.Settings{Type: "memory"},
	)
	server, err := compiler.Compile(&core.Pipeline{
		ID:          id,
		Name:        name,
		Source:      core.Connection{Type: "io.debezium.connector.postgresql.PostgresConnector"},
		Destination: core.Connection{Type: "kafka", Config: map[string]any{"producer.bootstrap.servers": "kafka:9092"}},
	})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	return server
}

func TestTarget_ApplyFindDelete(t *testing.T) {
	ctx := context.Background()
	target := newTestTarget()

	if _, ok, err := target.Find(ctx, 1); err != nil || ok {
		t.Fatalf("Find on empty cluster = %v, %v", ok, err)
	}

	applied, err := target.Apply(ctx, compile(t, 1, "orders"))
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if applied.Namespace != testNamespace {
		t.Errorf("namespace = %q", applied.Namespace)
	}

	found, ok, err := target.Find(ctx, 1)
	if err != nil || !ok {
		t.Fatalf("Find = %v, %v", ok, err)
	}
	if found.Name != "orders" || found.Spec.Sink.Type != "kafka" {
		t.Errorf("unexpected resource %+v", found.ObjectMeta)
	}
	redis, ok := found.Spec.Source.Offset.ActiveStore().(*storage.RedisStore)
	if !ok {
		t.Fatalf("offset store = %T", found.Spec.Source.Offset.ActiveStore())
	}
	if redis.Address != "redis:6379" || redis.Wait.TimeoutMs == nil || *redis.Wait.TimeoutMs != 1000 {
		t.Errorf("offset store did not round-trip: %+v", redis)
	}
	if found.Spec.Source.SchemaHistory.Memory == nil {
		t.Error("schema history store did not round-trip")
	}

	if _, ok, _ := target.Find(ctx, 2); ok {
		t.Error("Find matched another pipeline's resource")
	}

	if err := target.Delete(ctx, 1); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := target.Find(ctx, 1); ok {
		t.Error("resource still present after Delete")
	}
	if err := target.Delete(ctx, 1); err != nil {
		t.Errorf("Delete of absent resource failed: %v", err)
	}
}

func TestTarget_ApplyUpdatesInPlace(t *testing.T) {
	ctx := context.Background()
	target := newTestTarget()

	if _, err := target.Apply(ctx, compile(t, 1, "orders")); err != nil {
		t.Fatal(err)
	}
	second := compile(t, 1, "orders")
	second.Spec.Sink.Type = "redis"
	if _, err := target.Apply(ctx, second); err != nil {
		t.Fatalf("second Apply failed: %v", err)
	}

	list, err := target.resource().List(ctx, metav1.ListOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(list.Items) != 1 {
		t.Fatalf("resources = %d, want 1", len(list.Items))
	}
	found, _, _ := target.Find(ctx, 1)
	if found.Spec.Sink.Type != "redis" {
		t.Errorf("sink type = %q, want updated value", found.Spec.Sink.Type)
	}
}

func TestTarget_SetSuspended(t *testing.T) {
	ctx := context.Background()
	target := newTestTarget()

	server, err := target.Apply(ctx, compile(t, 3, "inventory"))
	if err != nil {
		t.Fatal(err)
	}
	if err := target.SetSuspended(ctx, server, true); err != nil {
		t.Fatalf("SetSuspended failed: %v", err)
	}

	found, _, _ := target.Find(ctx, 3)
	if !found.Spec.Runtime.Suspended {
		t.Error("expected suspended resource")
	}
	if !found.Spec.Runtime.API.Enabled {
		t.Error("patch clobbered sibling runtime fields")
	}
}

func TestTarget_ApplyRejectsNameOwnedByAnotherPipeline(t *testing.T) {
	ctx := context.Background()
	target := newTestTarget()

	first := compile(t, 1, "Test Pipeline!")
	second := compile(t, 2, "test-pipeline")
	if first.Name != second.Name {
		t.Fatalf("names %q and %q should collide", first.Name, second.Name)
	}

	if _, err := target.Apply(ctx, first); err != nil {
		t.Fatal(err)
	}
	_, err := target.Apply(ctx, second)
	if !errors.Is(err, core.ErrInvalidArgument) {
		t.Fatalf("Apply of colliding name = %v, want invalid argument", err)
	}

	if _, ok, _ := target.Find(ctx, 1); !ok {
		t.Error("pipeline 1 lost its deployment")
	}
	if _, ok, _ := target.Find(ctx, 2); ok {
		t.Error("pipeline 2 took over the resource")
	}
}

func TestTarget_RedeployKeepsSuspended(t *testing.T) {
	ctx := context.Background()
	target := newTestTarget()

	server, err := target.Apply(ctx, compile(t, 4, "billing"))
	if err != nil {
		t.Fatal(err)
	}
	if err := target.SetSuspended(ctx, server, true); err != nil {
		t.Fatal(err)
	}

	if _, err := target.Apply(ctx, compile(t, 4, "billing")); err != nil {
		t.Fatalf("redeploy failed: %v", err)
	}
	found, _, _ := target.Find(ctx, 4)
	if !found.Spec.Runtime.Suspended {
		t.Error("redeploy resumed a stopped pipeline")
	}
}

func TestTarget_Logs(t *testing.T) {
	pod := &corev1.Pod{ObjectMeta: metav1.ObjectMeta{
		Name:      "orders-5d8f",
		Namespace: testNamespace,
		Labels:    map[string]string{PodLabel: "orders"},
	}}
	target := newTestTarget(pod)
	server := compile(t, 1, "orders")

	rc, err := target.Logs(context.Background(), server, false)
	if err != nil {
		t.Fatalf("Logs failed: %v", err)
	}
	defer rc.Close()
	body, err := io.ReadAll(rc)
	if err != nil {
		t.Fatal(err)
	}
	if len(body) == 0 {
		t.Error("expected log output")
	}

	if _, err := target.Logs(context.Background(), compile(t, 2, "missing"), false); err == nil {
		t.Error("expected error when no pod matches")
	}
}
