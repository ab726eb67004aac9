package audit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/seoscope/seo-audit/internal/model"
	"github.com/seoscope/seo-audit/internal/platform/errs"
)

type stubFetcher struct {
	result *model.FetchResult
	err    error
}

func (s *stubFetcher) Fetch(context.Context, string) (*model.FetchResult, error) {
	return s.result, s.err
}

type stubProber struct {
	report  model.LinkReport
	panicky bool
}

func (s *stubProber) ProbePage(context.Context, *Document) model.LinkReport {
	if s.panicky {
		panic("prober blew up")
	}
	return s.report
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const enginePage = `<!DOCTYPE html>
<html>
<head>
<title>Engine Page</title>
<meta name="description" content="An audit target.">
</head>
<body>
<h1>Welcome</h1>
<p>Quality content about quality gardening. Gardening takes patience.</p>
<a href="/about">About</a>
</body>
</html>`

func engineFetchResult(url string) *model.FetchResult {
	return &model.FetchResult{
		FinalURL:   url,
		StatusCode: 200,
		Headers:    map[string]string{"server": "nginx"},
		Body:       enginePage,
	}
}

func TestRunFullAudit(t *testing.T) {
	target := "https://example.com/page"
	engine := NewEngine(
		&stubFetcher{result: engineFetchResult(target)},
		&stubProber{report: model.LinkReport{Total: 1, Internal: 1}},
		10,
		testLogger(),
	)

	report, err := engine.RunFullAudit(context.Background(), target)
	if err != nil {
		t.Fatalf("RunFullAudit: %v", err)
	}

	if report.URL != target || report.FinalURL != target {
		t.Errorf("report URLs = %q / %q", report.URL, report.FinalURL)
	}
	for _, key := range []string{"seo", "headings", "wordcount", "keywords", "links", "tech"} {
		if _, ok := report.Checks[key]; !ok {
			t.Errorf("report missing check %q", key)
		}
	}

	seo, ok := report.Checks["seo"].(model.SEOMetadata)
	if !ok {
		t.Fatalf("seo check has type %T", report.Checks["seo"])
	}
	if seo.Title != "Engine Page" {
		t.Errorf("Title = %q", seo.Title)
	}

	links, ok := report.Checks["links"].(model.LinkReport)
	if !ok || links.Total != 1 {
		t.Errorf("links check = %+v", report.Checks["links"])
	}
}

func TestRunFullAudit_CheckFailureIsolated(t *testing.T) {
	target := "https://example.com/page"
	engine := NewEngine(
		&stubFetcher{result: engineFetchResult(target)},
		&stubProber{panicky: true},
		10,
		testLogger(),
	)

	report, err := engine.RunFullAudit(context.Background(), target)
	if err != nil {
		t.Fatalf("RunFullAudit: %v", err)
	}

	failure, ok := report.Checks["links"].(model.CheckFailure)
	if !ok {
		t.Fatalf("links check has type %T, want CheckFailure", report.Checks["links"])
	}
	if failure.Error != "Links Failed" {
		t.Errorf("failure marker = %q", failure.Error)
	}

	// Every other check still settled with a real payload.
	for _, key := range []string{"seo", "headings", "wordcount", "keywords", "tech"} {
		if _, ok := report.Checks[key].(model.CheckFailure); ok {
			t.Errorf("check %q should not have failed", key)
		}
	}
}

func TestRunFullAudit_FetchFailure(t *testing.T) {
	fetchErr := &errs.AppError{Kind: errs.Network, Message: "down"}
	engine := NewEngine(&stubFetcher{err: fetchErr}, &stubProber{}, 10, testLogger())

	_, err := engine.RunFullAudit(context.Background(), "https://example.com/")
	if !errors.Is(err, fetchErr) {
		t.Errorf("err = %v, want the fetch error", err)
	}
}

func TestRunFullAudit_UpstreamErrorStatus(t *testing.T) {
	result := engineFetchResult("https://example.com/missing")
	result.StatusCode = 404
	engine := NewEngine(&stubFetcher{result: result}, &stubProber{}, 10, testLogger())

	_, err := engine.RunFullAudit(context.Background(), "https://example.com/missing")
	var appErr *errs.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("err = %v, want AppError", err)
	}
	if appErr.Kind != errs.UpstreamStatus || appErr.UpstreamStatus != 404 {
		t.Errorf("AppError = %+v", appErr)
	}
}

func TestValidateTarget(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"https", "https://example.com/page", false},
		{"http", "http://example.com", false},
		{"relative", "/just/a/path", true},
		{"no scheme", "example.com/page", true},
		{"ftp", "ftp://example.com/file", true},
		{"javascript", "javascript:alert(1)", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTarget(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTarget(%q) err = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}
