package kinesis

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nucleus/cdc-conductor/internal/connection"
	"github.com/nucleus/cdc-conductor/internal/core"
)

func conn(cfg map[string]any) *core.Connection {
	return &core.Connection{Name: "test", Type: Type, Config: cfg}
}

func TestValidate_Parameters(t *testing.T) {
	v := New(connection.Options{Timeout: time.Second})
	tests := []struct {
		name string
		cfg  map[string]any
		want string
	}{
		{"missing region", map[string]any{"stream": "events"}, "Region must be specified"},
		{"blank region", map[string]any{"region": "", "stream": "events"}, "Region must be specified"},
		{"missing stream", map[string]any{"region": "us-east-1"}, "Stream name must be specified"},
		{"region first", map[string]any{}, "Region must be specified"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := v.Validate(context.Background(), conn(tt.cfg))
			if res.Valid || res.Kind != connection.KindInvalid || res.Message != tt.want {
				t.Errorf("result = %+v, want %q", res, tt.want)
			}
		})
	}
}

func TestValidate_Nil(t *testing.T) {
	res := New(connection.Options{}).Validate(context.Background(), nil)
	if res.Valid || res.Message != "Connection configuration cannot be null" {
		t.Errorf("result = %+v", res)
	}
}

// fakeKinesis answers every call with the given status and awsJson error type.
func fakeKinesis(t *testing.T, status int, errorType, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if target := r.Header.Get("X-Amz-Target"); target != "Kinesis_20131202.DescribeStreamSummary" {
			t.Errorf("unexpected target %q", target)
		}
		w.Header().Set("Content-Type", "application/x-amz-json-1.1")
		if errorType != "" {
			w.Header().Set("X-Amzn-Errortype", errorType)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func endpointConfig(endpoint string) map[string]any {
	return map[string]any{
		"region":    "us-east-1",
		"stream":    "events",
		"endpoint":  endpoint,
		"accessKey": "AKIDEXAMPLE",
		"secretKey": "secret",
	}
}

func TestValidate_Endpoint(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		errorType string
		body      string
		valid     bool
		kind      connection.Kind
		message   string
	}{
		{
			name:   "active stream",
			status: http.StatusOK,
			body:   `{"StreamDescriptionSummary":{"StreamName":"events","StreamStatus":"ACTIVE","OpenShardCount":1}}`,
			valid:  true,
		},
		{
			name:      "missing stream",
			status:    http.StatusBadRequest,
			errorType: "ResourceNotFoundException",
			body:      `{"__type":"ResourceNotFoundException","message":"Stream events not found"}`,
			kind:      connection.KindNotFound,
			message:   "Stream not found: Please verify the stream name and region.",
		},
		{
			name:      "access denied",
			status:    http.StatusBadRequest,
			errorType: "AccessDeniedException",
			body:      `{"__type":"AccessDeniedException","message":"not authorized"}`,
			kind:      connection.KindPermission,
			message:   "Access denied: Check IAM permissions or credentials.",
		},
		{
			name:      "bad signature",
			status:    http.StatusBadRequest,
			errorType: "UnrecognizedClientException",
			body:      `{"__type":"UnrecognizedClientException","message":"The security token included in the request is invalid."}`,
			kind:      connection.KindAuthentication,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := fakeKinesis(t, tt.status, tt.errorType, tt.body)
			res := New(connection.Options{Timeout: 2 * time.Second}).Validate(context.Background(), conn(endpointConfig(srv.URL)))
			if res.Valid != tt.valid {
				t.Fatalf("result = %+v", res)
			}
			if !tt.valid && res.Kind != tt.kind {
				t.Errorf("kind = %s (%s), want %s", res.Kind, res.Message, tt.kind)
			}
			if tt.message != "" && res.Message != tt.message {
				t.Errorf("message = %q", res.Message)
			}
		})
	}
}

func TestValidate_UnroutableEndpointTimesOut(t *testing.T) {
	if testing.Short() {
		t.Skip("network test")
	}
	start := time.Now()
	res := New(connection.Options{Timeout: time.Second}).Validate(context.Background(),
		conn(endpointConfig("http://10.255.255.1:4566")))
	if res.Valid {
		t.Fatal("expected failure for unroutable endpoint")
	}
	if res.Kind != connection.KindTimeout && res.Kind != connection.KindUnavailable {
		t.Errorf("kind = %s (%s)", res.Kind, res.Message)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("validation took %v, timeout not enforced", elapsed)
	}
}

func TestClassifyError_Fallbacks(t *testing.T) {
	if res := classifyError(errors.New("failed to retrieve credentials: no EC2 IMDS role found")); res.Kind != connection.KindAuthentication {
		t.Errorf("credentials error = %+v", res)
	}
	if res := classifyError(errors.New("boom")); res.Kind != connection.KindGeneric {
		t.Errorf("generic error = %+v", res)
	}
}
