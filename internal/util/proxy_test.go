package util

import (
	"net/http"
	"testing"
)

func TestNewProxyFunc_Explicit(t *testing.T) {
	proxy := NewProxyFunc("http://plain-proxy:8080", "http://tls-proxy:8443", "internal.example")

	tests := []struct {
		target string
		want   string
	}{
		{"http://web.archive.org/cdx/search/cdx", "http://plain-proxy:8080"},
		{"https://index.commoncrawl.org/collinfo.json", "http://tls-proxy:8443"},
		{"https://internal.example/x", ""},
	}

	for _, tt := range tests {
		req, err := http.NewRequest(http.MethodGet, tt.target, nil)
		if err != nil {
			t.Fatal(err)
		}
		got, err := proxy(req)
		if err != nil {
			t.Fatalf("proxy(%s) failed: %v", tt.target, err)
		}
		switch {
		case tt.want == "" && got != nil:
			t.Errorf("expected no proxy for %s, got %s", tt.target, got)
		case tt.want != "" && (got == nil || got.String() != tt.want):
			t.Errorf("expected proxy %s for %s, got %v", tt.want, tt.target, got)
		}
	}
}
