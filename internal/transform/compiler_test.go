package transform_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/nucleus/cdc-conductor/internal/core"
	"github.com/nucleus/cdc-conductor/internal/transform"
)

func sampleTransforms() []core.Transform {
	return []core.Transform{
		{
			ID:       7,
			Position: 2,
			Type:     "io.debezium.transforms.ExtractNewRecordState",
			Config:   map[string]any{"drop.tombstones": "true"},
			Predicate: &core.Predicate{
				Type:   "org.apache.kafka.connect.transforms.predicates.TopicNameMatches",
				Config: map[string]any{"pattern": "inventory.*"},
				Negate: true,
			},
		},
		{
			ID:       3,
			Position: 1,
			Type:     "org.apache.kafka.connect.transforms.InsertField$Value",
			Config:   map[string]any{"static.field": "origin", "static.value": "cdc"},
		},
	}
}

func TestPredicateAlias(t *testing.T) {
	if alias := transform.PredicateAlias(core.Transform{ID: 7}); alias != "p7" {
		t.Errorf("expected p7, got %s", alias)
	}
}

func TestCompile_OrderAndPredicates(t *testing.T) {
	result, err := transform.Compile(sampleTransforms())
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	if len(result.Transforms) != 2 {
		t.Fatalf("expected 2 transformations, got %d", len(result.Transforms))
	}
	first, second := result.Transforms[0], result.Transforms[1]
	if first.Type != "org.apache.kafka.connect.transforms.InsertField$Value" {
		t.Errorf("expected position order, got first=%s", first.Type)
	}
	if first.Predicate != "" || first.Negate {
		t.Errorf("transform without predicate must have no alias: %+v", first)
	}
	if second.Predicate != "p7" || !second.Negate {
		t.Errorf("expected alias p7 negated, got %+v", second)
	}

	if len(result.Predicates) != 1 {
		t.Fatalf("expected 1 predicate, got %d", len(result.Predicates))
	}
	pred, ok := result.Predicates["p7"]
	if !ok {
		t.Fatal("expected predicate p7")
	}
	if pred.Type != "org.apache.kafka.connect.transforms.predicates.TopicNameMatches" || pred.Config["pattern"] != "inventory.*" {
		t.Errorf("unexpected predicate %+v", pred)
	}
}

func TestCompile_Idempotent(t *testing.T) {
	first, err := transform.Compile(sampleTransforms())
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	second, err := transform.Compile(sampleTransforms())
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("recompiling produced a different result:\n%+v\n%+v", first, second)
	}
}

func TestCompile_DoesNotMutateInput(t *testing.T) {
	input := sampleTransforms()
	result, err := transform.Compile(input)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	result.Transforms[1].Config["drop.tombstones"] = "false"

	if input[0].ID != 7 {
		t.Error("Compile must not reorder the caller's slice")
	}
	if input[0].Config["drop.tombstones"] != "true" {
		t.Error("compiled config must not alias the input config")
	}
}

func TestCompile_EmptyAndInvalid(t *testing.T) {
	result, err := transform.Compile(nil)
	if err != nil {
		t.Fatalf("Compile(nil) failed: %v", err)
	}
	if len(result.Transforms) != 0 || len(result.Predicates) != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}

	dup := []core.Transform{{ID: 1, Type: "a"}, {ID: 1, Type: "b"}}
	if _, err := transform.Compile(dup); !errors.Is(err, core.ErrInvalidArgument) {
		t.Errorf("expected invalid argument for duplicate IDs, got %v", err)
	}
	if _, err := transform.Compile([]core.Transform{{ID: 2}}); !errors.Is(err, core.ErrInvalidArgument) {
		t.Errorf("expected invalid argument for missing type, got %v", err)
	}
}
