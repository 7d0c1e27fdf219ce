package connection

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"
)

// ClassifyNetwork maps transport-level failures shared by every SDK onto the
// taxonomy. It reports false when err is not a recognised network failure.
func ClassifyNetwork(err error, service string) (Result, bool) {
	if err == nil {
		return Result{}, false
	}

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return Timeout("Connection timeout - please check host, port and network connectivity"), true
	case errors.Is(err, syscall.ECONNREFUSED):
		return Unavailable("Cannot connect to %s server - connection refused", service), true
	case errors.Is(err, syscall.ECONNRESET), errors.Is(err, syscall.EPIPE):
		return Unavailable("Cannot connect to %s server - connection reset", service), true
	case errors.Is(err, syscall.EHOSTUNREACH), errors.Is(err, syscall.ENETUNREACH):
		return Unavailable("Cannot connect to %s server - host unreachable", service), true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return Unavailable("Cannot connect to %s server - host %s not found", service, dnsErr.Name), true
	}

	// Fallback to string matching for SDKs that flatten their errors
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline"):
		return Timeout("Connection timeout - please check host, port and network connectivity"), true
	case strings.Contains(msg, "connection refused"), strings.Contains(msg, "no such host"), strings.Contains(msg, "unreachable"),
		strings.Contains(msg, "connection reset"), strings.Contains(msg, "broken pipe"):
		return Unavailable("Cannot connect to %s server - please check host and port configuration", service), true
	}
	return Result{}, false
}
