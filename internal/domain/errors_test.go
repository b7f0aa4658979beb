package domain

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"
	"syscall"
	"testing"
)

func TestOpErrorWrapUnwrap(t *testing.T) {
	root := errors.New("root")
	err := &OpError{
		Op:   "config.load_default",
		Kind: KindInvalidConfig,
		Path: "config/default.config.yaml",
		Err:  root,
	}

	if !errors.Is(err, root) {
		t.Fatalf("expected errors.Is to match cause")
	}

	var got *OpError
	if !errors.As(err, &got) {
		t.Fatalf("expected errors.As to match OpError")
	}
	if got.Kind != KindInvalidConfig {
		t.Fatalf("expected kind %s", KindInvalidConfig)
	}
	if !strings.Contains(err.Error(), "path=config/default.config.yaml") {
		t.Fatalf("expected path in message, got %q", err.Error())
	}
}

func TestIsKind(t *testing.T) {
	err := &OpError{Op: "x", Kind: KindCompile, Err: ErrCompileFailed}

	if !IsKind(err, KindCompile) {
		t.Fatalf("expected IsKind to match")
	}
	if IsKind(err, KindNotFound) {
		t.Fatalf("expected IsKind not to match other kinds")
	}
	if IsKind(errors.New("plain"), KindCompile) {
		t.Fatalf("expected plain errors never to match")
	}
}

func TestOpErrorNil(t *testing.T) {
	var err *OpError
	if err.Error() != "<nil>" {
		t.Fatalf("expected <nil>, got %q", err.Error())
	}
	if err.Unwrap() != nil {
		t.Fatalf("expected nil unwrap")
	}
}

func TestClassifyTransportError_Timeout_ContextDeadline(t *testing.T) {
	if got := ClassifyTransportError(context.DeadlineExceeded); got != TransportTimeout {
		t.Fatalf("expected timeout, got=%s", got)
	}
}

func TestClassifyTransportError_DNS(t *testing.T) {
	err := &net.DNSError{Err: "no such host", Name: "example.invalid"}
	if got := ClassifyTransportError(err); got != TransportDNS {
		t.Fatalf("expected dns, got=%s", got)
	}
}

func TestClassifyTransportError_ConnReset(t *testing.T) {
	err := &net.OpError{Op: "read", Net: "tcp", Err: syscall.ECONNRESET}
	if got := ClassifyTransportError(err); got != TransportConn {
		t.Fatalf("expected conn, got=%s", got)
	}
}

func TestClassifyTransportError_URLWraps(t *testing.T) {
	inner := &net.DNSError{Err: "no such host", Name: "x.invalid"}
	err := &url.Error{Op: "Get", URL: "http://x.invalid", Err: inner}

	if got := ClassifyTransportError(err); got != TransportDNS {
		t.Fatalf("expected dns, got=%s", got)
	}
}

func TestClassifyTransportError_Unknown(t *testing.T) {
	if got := ClassifyTransportError(errors.New("boom")); got != TransportUnknown {
		t.Fatalf("expected unknown, got=%s", got)
	}
}
