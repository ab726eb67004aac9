// Package serp resolves search-engine result pages for a keyword across a
// cascade of providers, falling back to a simulated result set so callers
// always receive entries.
package serp

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/seoscope/seo-audit/internal/model"
)

// maxEntries bounds a single response.
const maxEntries = 10

// Fetcher defines how the resolver retrieves provider pages.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*model.FetchResult, error)
}

// provider is one search surface with its own extraction rules.
type provider struct {
	name      string
	searchURL func(keyword string) string
	extract   func(doc *goquery.Document) []model.SerpEntry
}

// Resolver queries providers in a fixed priority order and returns the first
// non-empty result set.
type Resolver struct {
	fetcher   Fetcher
	providers []provider
	logger    *slog.Logger
}

// NewResolver returns a Resolver with the default provider cascade:
// Bing, then DuckDuckGo's HTML endpoint, then Startpage.
func NewResolver(fetcher Fetcher, logger *slog.Logger) *Resolver {
	return &Resolver{
		fetcher: fetcher,
		logger:  logger,
		providers: []provider{
			{
				name: "bing",
				searchURL: func(keyword string) string {
					return "https://www.bing.com/search?q=" + url.QueryEscape(keyword)
				},
				extract: extractBing,
			},
			{
				name: "duckduckgo",
				searchURL: func(keyword string) string {
					return "https://html.duckduckgo.com/html/?q=" + url.QueryEscape(keyword)
				},
				extract: extractDuckDuckGo,
			},
			{
				name: "startpage",
				searchURL: func(keyword string) string {
					return "https://www.startpage.com/sp/search?query=" + url.QueryEscape(keyword)
				},
				extract: extractStartpage,
			},
		},
	}
}

// FetchSERP returns up to maxEntries results for the keyword, rank contiguous
// from 1. Provider failures are swallowed and treated as "try the next
// provider"; when every provider fails or returns empty, a deterministic
// simulated set of exactly maxEntries entries is synthesized, so the call
// never returns an empty slice and never returns an error.
func (r *Resolver) FetchSERP(ctx context.Context, keyword string) []model.SerpEntry {
	for _, p := range r.providers {
		entries := r.tryProvider(ctx, p, keyword)
		if len(entries) == 0 {
			continue
		}
		if len(entries) > maxEntries {
			entries = entries[:maxEntries]
		}
		renumber(entries)
		return entries
	}

	r.logger.Info("all serp providers empty, using simulated results", "keyword", keyword)
	return Simulated(keyword)
}

func (r *Resolver) tryProvider(ctx context.Context, p provider, keyword string) []model.SerpEntry {
	page, err := r.fetcher.Fetch(ctx, p.searchURL(keyword))
	if err != nil {
		r.logger.Debug("serp provider fetch failed", "provider", p.name, "error", err)
		return nil
	}
	if page.StatusCode >= 400 {
		r.logger.Debug("serp provider returned error status",
			"provider", p.name, "status", page.StatusCode)
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.Body))
	if err != nil {
		return nil
	}
	return p.extract(doc)
}

// renumber makes ranks contiguous starting at 1.
func renumber(entries []model.SerpEntry) {
	for i := range entries {
		entries[i].Rank = i + 1
	}
}

func extractBing(doc *goquery.Document) []model.SerpEntry {
	var entries []model.SerpEntry
	doc.Find("li.b_algo").Each(func(_ int, s *goquery.Selection) {
		anchor := s.Find("h2 a").First()
		title := strings.TrimSpace(anchor.Text())
		link := strings.TrimSpace(anchor.AttrOr("href", ""))
		if title == "" || link == "" {
			return
		}
		entries = append(entries, model.SerpEntry{
			Title:   title,
			Link:    link,
			Snippet: strings.TrimSpace(s.Find(".b_caption p").First().Text()),
		})
	})
	return entries
}

func extractDuckDuckGo(doc *goquery.Document) []model.SerpEntry {
	var entries []model.SerpEntry
	doc.Find("div.result").Each(func(_ int, s *goquery.Selection) {
		anchor := s.Find("a.result__a").First()
		title := strings.TrimSpace(anchor.Text())
		link := cleanDuckDuckGoLink(strings.TrimSpace(anchor.AttrOr("href", "")))
		if title == "" || link == "" {
			return
		}
		entries = append(entries, model.SerpEntry{
			Title:   title,
			Link:    link,
			Snippet: strings.TrimSpace(s.Find(".result__snippet").First().Text()),
		})
	})
	return entries
}

// cleanDuckDuckGoLink unwraps DuckDuckGo's redirect links, which carry the
// real target in the uddg query parameter.
func cleanDuckDuckGoLink(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href[2:]
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}

func extractStartpage(doc *goquery.Document) []model.SerpEntry {
	var entries []model.SerpEntry
	doc.Find("div.w-gl__result").Each(func(_ int, s *goquery.Selection) {
		anchor := s.Find("a.w-gl__result-title").First()
		title := strings.TrimSpace(anchor.Find("h3").Text())
		if title == "" {
			title = strings.TrimSpace(anchor.Text())
		}
		link := strings.TrimSpace(anchor.AttrOr("href", ""))
		if title == "" || link == "" {
			return
		}
		entries = append(entries, model.SerpEntry{
			Title:   title,
			Link:    link,
			Snippet: strings.TrimSpace(s.Find("p.w-gl__description").First().Text()),
		})
	})
	return entries
}
