package httpclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"testing"

	"github.com/CarterFendley/pipelines/internal/domain"
)

func TestBuildJSONRequest(t *testing.T) {
	q := url.Values{"page_size": {"100"}}
	req, err := BuildJSONRequest(context.Background(), http.MethodPost, "http://host:8888/", "/apis/v2beta1/runs", q,
		map[string]any{"display_name": "seq_sample"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.URL.String() != "http://host:8888/apis/v2beta1/runs?page_size=100" {
		t.Fatalf("unexpected url %s", req.URL)
	}
	if ct := req.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected json content type, got %q", ct)
	}

	b, _ := io.ReadAll(req.Body)
	var decoded map[string]any
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("expected json body: %v", err)
	}
	if decoded["display_name"] != "seq_sample" {
		t.Fatalf("unexpected body %v", decoded)
	}
}

func TestBuildJSONRequest_NoBody(t *testing.T) {
	req, err := BuildJSONRequest(context.Background(), http.MethodGet, "http://host", "/apis/v2beta1/healthz", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Body != nil && req.Body != http.NoBody {
		t.Fatalf("expected no body")
	}
	if req.Header.Get("Content-Type") != "" {
		t.Fatalf("expected no content type without body")
	}
}

func TestBuildJSONRequest_EmptyBase(t *testing.T) {
	_, err := BuildJSONRequest(context.Background(), http.MethodGet, " ", "/x", nil, nil)
	if !domain.IsKind(err, domain.KindInvalidConfig) {
		t.Fatalf("expected invalid_config, got %v", err)
	}
}
