package serp

import (
	"fmt"
	"strings"

	"github.com/seoscope/seo-audit/internal/model"
)

// Simulated synthesizes a deterministic placeholder result set of exactly
// maxEntries entries derived from the keyword. It keeps the resolver's
// contract ("always returns up to 10 entries, rank contiguous from 1")
// unconditional even when every provider is unreachable.
func Simulated(keyword string) []model.SerpEntry {
	display := strings.TrimSpace(keyword)
	if display == "" {
		display = "search"
	}
	slug := slugify(display)

	entries := make([]model.SerpEntry, maxEntries)
	for i := range entries {
		rank := i + 1
		entries[i] = model.SerpEntry{
			Rank:    rank,
			Title:   fmt.Sprintf("%s - Search Result %d", display, rank),
			Link:    fmt.Sprintf("https://www.example.com/%s/result-%d", slug, rank),
			Snippet: fmt.Sprintf("Result %d for %q: overview, guides, and related resources.", rank, display),
		}
	}
	return entries
}

// slugify lowercases the keyword and keeps alphanumerics, joining words with
// hyphens.
func slugify(s string) string {
	var sb strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(s) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			sb.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			sb.WriteByte('-')
			lastHyphen = true
		}
	}
	slug := strings.Trim(sb.String(), "-")
	if slug == "" {
		return "search"
	}
	return slug
}
