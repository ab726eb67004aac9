package audit

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/seoscope/seo-audit/internal/model"
)

// techRule matches one technology by substring over a haystack of script
// sources, stylesheet targets, and the generator meta tag.
type techRule struct {
	name    string
	needles []string
}

// techRules are checked in a fixed order so the report is deterministic.
var techRules = []techRule{
	{"WordPress", []string{"wp-content", "wp-includes", "wordpress"}},
	{"Shopify", []string{"cdn.shopify.com", "shopify"}},
	{"Wix", []string{"wix.com", "wixstatic.com"}},
	{"Squarespace", []string{"squarespace"}},
	{"Drupal", []string{"drupal"}},
	{"jQuery", []string{"jquery"}},
	{"React", []string{"react", "data-reactroot"}},
	{"Vue.js", []string{"vue.js", "vue.min.js", "vue.runtime"}},
	{"Angular", []string{"ng-version", "angular"}},
	{"Bootstrap", []string{"bootstrap"}},
	{"Tailwind CSS", []string{"tailwind"}},
	{"Google Analytics", []string{"googletagmanager.com", "google-analytics.com", "gtag("}},
	{"Font Awesome", []string{"font-awesome", "fontawesome"}},
	{"Cloudflare", []string{"cdnjs.cloudflare.com", "cloudflare"}},
}

// headerRules map response-header values to signatures the markup alone
// cannot reveal.
var headerRules = []struct {
	header string
	needle string
	name   string
}{
	{"server", "cloudflare", "Cloudflare"},
	{"server", "nginx", "nginx"},
	{"server", "apache", "Apache"},
	{"x-powered-by", "php", "PHP"},
	{"x-powered-by", "express", "Express"},
	{"x-powered-by", "asp.net", "ASP.NET"},
}

// TechSignatures detects technology fingerprints from the document's script
// and stylesheet references, the generator meta tag, and response headers.
// Detection is substring-based and deliberately heuristic.
func (d *Document) TechSignatures(headers map[string]string) model.TechReport {
	var hay strings.Builder
	d.doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		hay.WriteString(strings.ToLower(s.AttrOr("src", "")))
		hay.WriteByte('\n')
		// Inline bootstrap snippets (gtag, dataLayer) identify analytics.
		hay.WriteString(strings.ToLower(s.Text()))
		hay.WriteByte('\n')
	})
	d.doc.Find("link[href]").Each(func(_ int, s *goquery.Selection) {
		hay.WriteString(strings.ToLower(s.AttrOr("href", "")))
		hay.WriteByte('\n')
	})
	if gen := d.doc.Find(`meta[name="generator"]`).AttrOr("content", ""); gen != "" {
		hay.WriteString(strings.ToLower(gen))
		hay.WriteByte('\n')
	}

	haystack := hay.String()
	seen := map[string]bool{}
	signatures := []string{}

	for _, rule := range techRules {
		for _, needle := range rule.needles {
			if strings.Contains(haystack, needle) {
				if !seen[rule.name] {
					seen[rule.name] = true
					signatures = append(signatures, rule.name)
				}
				break
			}
		}
	}

	for _, rule := range headerRules {
		if v, ok := headers[rule.header]; ok &&
			strings.Contains(strings.ToLower(v), rule.needle) && !seen[rule.name] {
			seen[rule.name] = true
			signatures = append(signatures, rule.name)
		}
	}

	return model.TechReport{Signatures: signatures}
}
