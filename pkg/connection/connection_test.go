package connection

import (
	"context"
	"testing"
)

func TestBuiltinsRegistered(t *testing.T) {
	want := []string{"JDBC", "KINESIS", "MILVUS", "QDRANT", "REDIS", "S3"}
	got := Types()
	if len(got) != len(want) {
		t.Fatalf("types = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("types[%d] = %s, want %s", i, got[i], want[i])
		}
	}
	if n := len(Descriptors()); n != len(want) {
		t.Errorf("descriptors = %d", n)
	}
}

func TestValidate_UnknownType(t *testing.T) {
	res := Validate(context.Background(), &Connection{Name: "x", Type: "CARRIER_PIGEON"}, Options{})
	if res.Valid || res.Kind != KindInvalid {
		t.Errorf("result = %+v", res)
	}
}

func TestValidate_Dispatches(t *testing.T) {
	res := Validate(context.Background(), &Connection{Name: "x", Type: "redis", Config: map[string]any{}}, Options{})
	if res.Valid || res.Message != "Host must be specified" {
		t.Errorf("result = %+v", res)
	}
}
