// Package auditor exposes the page-analysis pipeline as a service with an
// HTTP transport.
package auditor

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/seoscope/seo-audit/internal/audit"
	"github.com/seoscope/seo-audit/internal/model"
	"github.com/seoscope/seo-audit/internal/platform/errs"
	"github.com/seoscope/seo-audit/internal/platform/requestid"
	"github.com/seoscope/seo-audit/internal/serp"
	"github.com/seoscope/seo-audit/internal/store"
)

// Auditor defines the contract for the full-audit engine.
type Auditor interface {
	RunFullAudit(ctx context.Context, targetURL string) (*model.AuditReport, error)
}

// LinkProber defines the contract for reference reachability checks.
type LinkProber interface {
	ProbePage(ctx context.Context, doc *audit.Document) model.LinkReport
}

// SerpResolver defines the contract for keyword result resolution.
type SerpResolver interface {
	FetchSERP(ctx context.Context, keyword string) []model.SerpEntry
}

// Service orchestrates the audit engine, prober, SERP resolver, and stores,
// and logs outcomes.
type Service struct {
	engine       Auditor
	fetcher      audit.Fetcher
	prober       LinkProber
	serp         SerpResolver
	stores       *store.Stores
	keywordLimit int
	logger       *slog.Logger
}

// NewService creates a Service backed by the given collaborators.
func NewService(
	engine Auditor,
	fetcher audit.Fetcher,
	prober LinkProber,
	serpResolver SerpResolver,
	stores *store.Stores,
	keywordLimit int,
	logger *slog.Logger,
) *Service {
	return &Service{
		engine:       engine,
		fetcher:      fetcher,
		prober:       prober,
		serp:         serpResolver,
		stores:       stores,
		keywordLimit: keywordLimit,
		logger:       logger,
	}
}

// Audit runs the full audit and logs the outcome.
func (s *Service) Audit(ctx context.Context, targetURL string) (*model.AuditReport, error) {
	logger := s.logger.With("url", targetURL, "request_id", requestid.FromContext(ctx))

	report, err := s.engine.RunFullAudit(ctx, targetURL)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = &errs.AppError{
				Kind:    errs.Timeout,
				Message: "audit timed out; the target may be slow to respond",
				Cause:   err,
			}
		}
		logger.Error("audit failed", "error", err)
		return nil, err
	}

	failed := 0
	for _, payload := range report.Checks {
		if _, ok := payload.(model.CheckFailure); ok {
			failed++
		}
	}
	logger.Info("audit complete", "checks", len(report.Checks), "failed_checks", failed)
	return report, nil
}

// loadDocument fetches and parses one page for the single-check operations.
func (s *Service) loadDocument(ctx context.Context, targetURL string) (*model.FetchResult, *audit.Document, error) {
	if err := audit.ValidateTarget(targetURL); err != nil {
		return nil, nil, err
	}

	page, err := s.fetcher.Fetch(ctx, targetURL)
	if err != nil {
		return nil, nil, err
	}
	if page.StatusCode >= 400 {
		return nil, nil, &errs.AppError{
			Kind:           errs.UpstreamStatus,
			UpstreamStatus: page.StatusCode,
			Message:        "target returned an error status",
		}
	}

	doc, err := audit.ParseDocument(page.Body, page.FinalURL)
	if err != nil {
		return nil, nil, err
	}
	return page, doc, nil
}

// Meta extracts structural metadata from the target page.
func (s *Service) Meta(ctx context.Context, targetURL string) (model.SEOMetadata, error) {
	page, doc, err := s.loadDocument(ctx, targetURL)
	if err != nil {
		return model.SEOMetadata{}, err
	}
	return model.SEOMetadata{
		URL:         page.FinalURL,
		Title:       doc.Title(),
		Description: doc.Description(),
		Canonical:   doc.Canonical(),
		MetaRobots:  doc.MetaRobots(),
		OpenGraph:   doc.OpenGraph(),
		HTMLVersion: doc.HTMLVersion(),
	}, nil
}

// Headings extracts the target page's heading structure.
func (s *Service) Headings(ctx context.Context, targetURL string) (model.HeadingReport, error) {
	_, doc, err := s.loadDocument(ctx, targetURL)
	if err != nil {
		return model.HeadingReport{}, err
	}
	return doc.Headings(), nil
}

// WordCount computes text metrics for the target page.
func (s *Service) WordCount(ctx context.Context, targetURL string) (model.TextMetrics, error) {
	_, doc, err := s.loadDocument(ctx, targetURL)
	if err != nil {
		return model.TextMetrics{}, err
	}
	return audit.ComputeTextMetrics(doc.BodyText()), nil
}

// Keywords extracts the top keyword frequencies from the target page. A
// non-positive limit falls back to the configured default.
func (s *Service) Keywords(ctx context.Context, targetURL string, limit int) ([]model.KeywordEntry, error) {
	_, doc, err := s.loadDocument(ctx, targetURL)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.keywordLimit
	}
	return audit.ExtractKeywords(doc.BodyText(), audit.DefaultKeywordMinLength, limit), nil
}

// Links probes the target page's outbound references.
func (s *Service) Links(ctx context.Context, targetURL string) (model.LinkReport, error) {
	_, doc, err := s.loadDocument(ctx, targetURL)
	if err != nil {
		return model.LinkReport{}, err
	}
	return s.prober.ProbePage(ctx, doc), nil
}

// Tech detects technology signatures on the target page.
func (s *Service) Tech(ctx context.Context, targetURL string) (model.TechReport, error) {
	page, doc, err := s.loadDocument(ctx, targetURL)
	if err != nil {
		return model.TechReport{}, err
	}
	return doc.TechSignatures(page.Headers), nil
}

// Serp resolves search results for a keyword. It never fails: provider
// outages degrade to a simulated result set.
func (s *Service) Serp(ctx context.Context, keyword string) []model.SerpEntry {
	return s.serp.FetchSERP(ctx, keyword)
}

// ScoreContent grades text (or markup reduced to text) against a keyword.
func (s *Service) ScoreContent(markup, text, keyword string) model.ContentScore {
	if text == "" {
		text = audit.TextFromHTML(markup)
	}
	return audit.ScoreContent(text, keyword)
}

// OriginFile describes a well-known file fetched from a site's origin.
type OriginFile struct {
	URL  string `json:"url"`
	Size int    `json:"size"`
	Locs int    `json:"locs,omitempty"` // <loc> entries, sitemaps only
}

// Robots fetches the target origin's robots.txt. Absence is a structured
// failure, not a success with an empty payload.
func (s *Service) Robots(ctx context.Context, targetURL string) (OriginFile, error) {
	return s.originFile(ctx, targetURL, "/robots.txt", false)
}

// Sitemap fetches the target origin's sitemap.xml and counts its <loc>
// entries. Absence is a structured failure.
func (s *Service) Sitemap(ctx context.Context, targetURL string) (OriginFile, error) {
	return s.originFile(ctx, targetURL, "/sitemap.xml", true)
}

func (s *Service) originFile(ctx context.Context, targetURL, path string, countLocs bool) (OriginFile, error) {
	if err := audit.ValidateTarget(targetURL); err != nil {
		return OriginFile{}, err
	}
	base, err := url.Parse(targetURL)
	if err != nil {
		return OriginFile{}, &errs.AppError{Kind: errs.InvalidInput, Message: "invalid URL format", Cause: err}
	}

	fileURL := base.Scheme + "://" + base.Host + path
	page, err := s.fetcher.Fetch(ctx, fileURL)
	if err != nil {
		return OriginFile{}, err
	}
	if page.StatusCode >= 400 {
		return OriginFile{}, &errs.AppError{
			Kind:           errs.UpstreamStatus,
			UpstreamStatus: page.StatusCode,
			Message:        strings.TrimPrefix(path, "/") + " not found",
		}
	}

	file := OriginFile{URL: fileURL, Size: len(page.Body)}
	if countLocs {
		file.Locs = strings.Count(page.Body, "<loc>")
	}
	return file, nil
}

// CreateProject registers a new tracked site.
func (s *Service) CreateProject(name, domain string) store.Project {
	return s.stores.Projects.Create(func(id string) store.Project {
		return store.Project{ID: id, Name: name, Domain: domain, CreatedAt: time.Now().UTC()}
	})
}

// ListProjects returns all projects in creation order.
func (s *Service) ListProjects() []store.Project {
	return s.stores.Projects.List()
}

// GetProject returns one project by id.
func (s *Service) GetProject(id string) (store.Project, error) {
	return s.stores.Projects.Get(id)
}

// DeleteProject removes one project by id.
func (s *Service) DeleteProject(id string) error {
	return s.stores.Projects.Delete(id)
}

// CheckRank resolves the SERP for a keyword and records the project's
// position: the rank of the first entry whose link points at the project's
// domain, or zero when the domain is absent from the results.
func (s *Service) CheckRank(ctx context.Context, projectID, keyword string) (store.RankRecord, error) {
	project, err := s.stores.Projects.Get(projectID)
	if err != nil {
		return store.RankRecord{}, err
	}

	position := 0
	for _, entry := range s.serp.FetchSERP(ctx, keyword) {
		if linkMatchesDomain(entry.Link, project.Domain) {
			position = entry.Rank
			break
		}
	}

	rec := s.stores.Ranks.Create(func(id string) store.RankRecord {
		return store.RankRecord{
			ID:        id,
			ProjectID: projectID,
			Keyword:   keyword,
			Position:  position,
			CheckedAt: time.Now().UTC(),
		}
	})
	return rec, nil
}

// ListRanks returns the recorded positions for one project.
func (s *Service) ListRanks(projectID string) ([]store.RankRecord, error) {
	if _, err := s.stores.Projects.Get(projectID); err != nil {
		return nil, err
	}
	var out []store.RankRecord
	for _, rec := range s.stores.Ranks.List() {
		if rec.ProjectID == projectID {
			out = append(out, rec)
		}
	}
	return out, nil
}

// AddBacklink records a known inbound link for a project.
func (s *Service) AddBacklink(projectID, sourceURL, targetURL, anchor string) (store.Backlink, error) {
	if _, err := s.stores.Projects.Get(projectID); err != nil {
		return store.Backlink{}, err
	}

	b := s.stores.Backlinks.Create(func(id string) store.Backlink {
		return store.Backlink{
			ID:        id,
			ProjectID: projectID,
			SourceURL: sourceURL,
			TargetURL: targetURL,
			Anchor:    anchor,
			AddedAt:   time.Now().UTC(),
		}
	})
	return b, nil
}

// ListBacklinks returns the recorded backlinks for one project.
func (s *Service) ListBacklinks(projectID string) ([]store.Backlink, error) {
	if _, err := s.stores.Projects.Get(projectID); err != nil {
		return nil, err
	}
	var out []store.Backlink
	for _, b := range s.stores.Backlinks.List() {
		if b.ProjectID == projectID {
			out = append(out, b)
		}
	}
	return out, nil
}

// linkMatchesDomain reports whether a result link points at the given domain
// or one of its subdomains.
func linkMatchesDomain(link, domain string) bool {
	u, err := url.Parse(link)
	if err != nil || domain == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	domain = strings.ToLower(strings.TrimPrefix(domain, "www."))
	host = strings.TrimPrefix(host, "www.")
	return host == domain || strings.HasSuffix(host, "."+domain)
}

var _ SerpResolver = (*serp.Resolver)(nil)
