package audit

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/seoscope/seo-audit/internal/model"
	"github.com/seoscope/seo-audit/internal/platform/errs"
)

// linkProber defines how the engine checks reference reachability.
type linkProber interface {
	ProbePage(ctx context.Context, doc *Document) model.LinkReport
}

// Engine orchestrates one full page audit: a single fetch feeds every check.
type Engine struct {
	fetcher      Fetcher
	prober       linkProber
	keywordLimit int
	logger       *slog.Logger
}

// NewEngine returns an Engine backed by the given Fetcher and prober.
// keywordLimit bounds the keyword check's frequency table.
func NewEngine(fetcher Fetcher, prober linkProber, keywordLimit int, logger *slog.Logger) *Engine {
	return &Engine{
		fetcher:      fetcher,
		prober:       prober,
		keywordLimit: keywordLimit,
		logger:       logger,
	}
}

// check is one independent audit computed from the shared fetched document.
type check struct {
	name  string // key in the report
	label string // human name used in the failure marker
	run   func(ctx context.Context) (any, error)
}

// RunFullAudit fetches the target once and dispatches every check against
// that single document. Each check settles independently: a failure is
// recorded as a {error: "<Check> Failed"} marker while the other results are
// kept. The audit as a whole fails only when the initial fetch fails.
func (e *Engine) RunFullAudit(ctx context.Context, targetURL string) (*model.AuditReport, error) {
	if err := ValidateTarget(targetURL); err != nil {
		return nil, err
	}

	page, err := e.fetcher.Fetch(ctx, targetURL)
	if err != nil {
		return nil, err
	}
	if page.StatusCode >= 400 {
		return nil, &errs.AppError{
			Kind:           errs.UpstreamStatus,
			UpstreamStatus: page.StatusCode,
			Message:        "target returned an error status",
		}
	}

	doc, err := ParseDocument(page.Body, page.FinalURL)
	if err != nil {
		return nil, err
	}

	bodyText := doc.BodyText()
	checks := []check{
		{"seo", "SEO", func(context.Context) (any, error) {
			return e.metadata(page, doc), nil
		}},
		{"headings", "Headings", func(context.Context) (any, error) {
			return doc.Headings(), nil
		}},
		{"wordcount", "Wordcount", func(context.Context) (any, error) {
			return ComputeTextMetrics(bodyText), nil
		}},
		{"keywords", "Keywords", func(context.Context) (any, error) {
			return ExtractKeywords(bodyText, DefaultKeywordMinLength, e.keywordLimit), nil
		}},
		{"links", "Links", func(ctx context.Context) (any, error) {
			return e.prober.ProbePage(ctx, doc), nil
		}},
		{"tech", "Tech", func(context.Context) (any, error) {
			return doc.TechSignatures(page.Headers), nil
		}},
	}

	tasks := make([]func(context.Context) (any, error), len(checks))
	for i, c := range checks {
		tasks[i] = c.run
	}
	outcomes := SettleAll(ctx, tasks)

	report := &model.AuditReport{
		URL:      targetURL,
		FinalURL: page.FinalURL,
		Checks:   make(map[string]any, len(checks)),
	}
	for i, c := range checks {
		if outcomes[i].Err != nil {
			e.logger.Warn("audit check failed",
				"check", c.name, "url", targetURL, "error", outcomes[i].Err)
			report.Checks[c.name] = model.CheckFailure{Error: c.label + " Failed"}
			continue
		}
		report.Checks[c.name] = outcomes[i].Value
	}
	return report, nil
}

func (e *Engine) metadata(page *model.FetchResult, doc *Document) model.SEOMetadata {
	return model.SEOMetadata{
		URL:         page.FinalURL,
		Title:       doc.Title(),
		Description: doc.Description(),
		Canonical:   doc.Canonical(),
		MetaRobots:  doc.MetaRobots(),
		OpenGraph:   doc.OpenGraph(),
		HTMLVersion: doc.HTMLVersion(),
	}
}

// ValidateTarget rejects anything that is not an absolute http(s) URL.
func ValidateTarget(targetURL string) error {
	parsed, err := url.Parse(targetURL)
	if err != nil {
		return &errs.AppError{
			Kind:    errs.InvalidInput,
			Message: "invalid URL format",
			Cause:   err,
		}
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return &errs.AppError{
			Kind:    errs.InvalidInput,
			Message: "invalid URL format",
		}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return &errs.AppError{
			Kind:    errs.InvalidInput,
			Message: "only http and https URLs are supported",
		}
	}
	return nil
}
