package audit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html/charset"

	"github.com/seoscope/seo-audit/internal/model"
	"github.com/seoscope/seo-audit/internal/platform/errs"
)

// Fetcher defines how components retrieve a remote document.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*model.FetchResult, error)
}

const (
	maxRedirects = 5
	fetchTimeout = 10 * time.Second

	// maxResponseBody caps how much of a response is read, protecting
	// against extremely large or infinite bodies.
	maxResponseBody = 10 << 20
)

var (
	errTooManyRedirects = errors.New("too many redirects")
	errBlockedRedirect  = errors.New("redirect to non-http(s) scheme blocked")
)

// HTTPClient implements Fetcher using a real HTTP client. A single call makes
// exactly one attempt; retry policy, if any, belongs to the caller.
type HTTPClient struct {
	client    *http.Client
	userAgent string
}

// NewHTTPClient returns a Fetcher with a 10s timeout, a transport that blocks
// connections to private/reserved IP ranges, and redirect validation capped
// at 5 hops.
func NewHTTPClient(userAgent string) *HTTPClient {
	return newHTTPClient(userAgent, &http.Transport{
		DialContext:         safeDialer().DialContext,
		MaxConnsPerHost:     10,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	})
}

func newHTTPClient(userAgent string, transport http.RoundTripper) *HTTPClient {
	return &HTTPClient{
		userAgent: userAgent,
		client: &http.Client{
			Timeout:       fetchTimeout,
			Transport:     transport,
			CheckRedirect: redirectPolicy,
		},
	}
}

// redirectPolicy validates redirect targets and limits the chain length.
func redirectPolicy(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("%w: stopped after %d", errTooManyRedirects, maxRedirects)
	}
	if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
		return fmt.Errorf("%w: %s", errBlockedRedirect, req.URL.Scheme)
	}
	return nil
}

// Fetch retrieves the document at the given URL. The response body is decoded
// to UTF-8 using the declared or sniffed charset, and response headers are
// flattened to a lowercase-name map.
func (c *HTTPClient) Fetch(ctx context.Context, targetURL string) (*model.FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, &errs.AppError{
			Kind:    errs.InvalidInput,
			Message: "invalid target URL",
			Cause:   err,
		}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &errs.AppError{
			Kind:    errs.Network,
			Message: "target could not be reached",
			Cause:   err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, &errs.AppError{
			Kind:    errs.Network,
			Message: "reading response body failed",
			Cause:   err,
		}
	}

	headers := make(map[string]string, len(resp.Header))
	for name, values := range resp.Header {
		if len(values) > 0 {
			headers[strings.ToLower(name)] = values[0]
		}
	}

	return &model.FetchResult{
		FinalURL:   resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		Headers:    headers,
		Body:       decodeBody(raw, resp.Header.Get("Content-Type")),
	}, nil
}

// decodeBody converts the raw bytes to UTF-8 based on the Content-Type header
// and content sniffing. Undecodable input is returned as-is when it already
// looks like valid UTF-8.
func decodeBody(raw []byte, contentType string) string {
	enc, _, _ := charset.DetermineEncoding(raw, contentType)
	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		if utf8.Valid(raw) {
			return string(raw)
		}
		return string(bytes.ToValidUTF8(raw, []byte("�")))
	}
	return string(decoded)
}
