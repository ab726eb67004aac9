package audit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/seoscope/seo-audit/internal/platform/errs"
)

// testHTTPClient skips the SSRF-safe dialer so tests can reach httptest
// servers on localhost.
func testHTTPClient() *HTTPClient {
	return newHTTPClient("test-agent", &http.Transport{})
}

func TestFetch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "test-agent" {
			t.Errorf("User-Agent = %q, want test-agent", got)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("X-Powered-By", "TestStack")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html><body>hello</body></html>"))
	}))
	defer ts.Close()

	result, err := testHTTPClient().Fetch(context.Background(), ts.URL+"/page")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if result.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", result.StatusCode)
	}
	if result.FinalURL != ts.URL+"/page" {
		t.Errorf("FinalURL = %q", result.FinalURL)
	}
	if !strings.Contains(result.Body, "hello") {
		t.Errorf("Body = %q", result.Body)
	}
	// Header names are flattened to lowercase.
	if result.Headers["x-powered-by"] != "TestStack" {
		t.Errorf("Headers = %v, want lowercase x-powered-by", result.Headers)
	}
}

func TestFetch_FollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/end", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/end", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("arrived"))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	result, err := testHTTPClient().Fetch(context.Background(), ts.URL+"/start")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if result.FinalURL != ts.URL+"/end" {
		t.Errorf("FinalURL = %q, want %q", result.FinalURL, ts.URL+"/end")
	}
}

func TestFetch_RedirectCap(t *testing.T) {
	var ts *httptest.Server
	ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, ts.URL+r.URL.Path+"x", http.StatusFound)
	}))
	defer ts.Close()

	_, err := testHTTPClient().Fetch(context.Background(), ts.URL+"/loop")
	if err == nil {
		t.Fatal("expected error after exceeding redirect cap")
	}
	var appErr *errs.AppError
	if !errors.As(err, &appErr) || appErr.Kind != errs.Network {
		t.Errorf("error = %v, want Network kind", err)
	}
}

func TestFetch_ErrorStatusIsNotAnError(t *testing.T) {
	// A server that answers with an error status still produced a document;
	// status policy belongs to the caller.
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("gone"))
	}))
	defer ts.Close()

	result, err := testHTTPClient().Fetch(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if result.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", result.StatusCode)
	}
}

func TestFetch_Unreachable(t *testing.T) {
	_, err := testHTTPClient().Fetch(context.Background(), "http://unreachable.invalid/")
	if err == nil {
		t.Fatal("expected error for unreachable host")
	}
	var appErr *errs.AppError
	if !errors.As(err, &appErr) || appErr.Kind != errs.Network {
		t.Errorf("error = %v, want Network kind", err)
	}
}

func TestFetch_DecodesLegacyCharset(t *testing.T) {
	// "café" in ISO-8859-1: é is a single 0xE9 byte.
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		_, _ = w.Write([]byte("<html><body>caf\xe9</body></html>"))
	}))
	defer ts.Close()

	result, err := testHTTPClient().Fetch(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !strings.Contains(result.Body, "café") {
		t.Errorf("Body = %q, want decoded café", result.Body)
	}
}

func TestFetch_BlocksPrivateAddresses(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	// The production constructor refuses to dial loopback addresses.
	_, err := NewHTTPClient("test-agent").Fetch(context.Background(), ts.URL)
	if err == nil {
		t.Fatal("expected localhost fetch to be blocked")
	}
}
