package audit

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/seoscope/seo-audit/internal/model"
	"github.com/seoscope/seo-audit/internal/platform/errs"
)

// Document is an immutable parsed page. All accessors are pure traversals of
// the parse tree, so independent checks may read one Document concurrently.
type Document struct {
	doc  *goquery.Document
	base *url.URL
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// ParseDocument builds a Document from raw markup and the URL it was fetched
// from. The base URL must be absolute http(s).
func ParseDocument(body, baseURL string) (*Document, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, &errs.AppError{
			Kind:    errs.InvalidInput,
			Message: "invalid base URL",
			Cause:   err,
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, &errs.AppError{
			Kind:    errs.ParseFailed,
			Message: "markup could not be parsed",
			Cause:   err,
		}
	}

	return &Document{doc: doc, base: base}, nil
}

// Base returns the document's base URL.
func (d *Document) Base() *url.URL { return d.base }

// Title returns the trimmed contents of the first <title> element.
func (d *Document) Title() string {
	return strings.TrimSpace(d.doc.Find("title").First().Text())
}

// Description returns the meta description, falling back to og:description.
func (d *Document) Description() string {
	desc := strings.TrimSpace(d.doc.Find(`meta[name="description"]`).AttrOr("content", ""))
	if desc == "" {
		desc = strings.TrimSpace(d.doc.Find(`meta[property="og:description"]`).AttrOr("content", ""))
	}
	return desc
}

// Canonical returns the canonical link target, if declared.
func (d *Document) Canonical() string {
	return strings.TrimSpace(d.doc.Find(`link[rel="canonical"]`).AttrOr("href", ""))
}

// MetaRobots returns the robots meta directive, if declared.
func (d *Document) MetaRobots() string {
	return strings.TrimSpace(d.doc.Find(`meta[name="robots"]`).AttrOr("content", ""))
}

// OpenGraph collects og:* properties into a map.
func (d *Document) OpenGraph() map[string]string {
	og := map[string]string{}
	d.doc.Find(`meta[property^="og:"]`).Each(func(_ int, s *goquery.Selection) {
		prop, _ := s.Attr("property")
		content, _ := s.Attr("content")
		if prop != "" && content != "" {
			og[prop] = content
		}
	})
	return og
}

// Headings returns per-level counts and the headings in document order.
func (d *Document) Headings() model.HeadingReport {
	report := model.HeadingReport{
		Counts: map[string]int{"h1": 0, "h2": 0, "h3": 0, "h4": 0, "h5": 0, "h6": 0},
	}
	d.doc.Find("h1,h2,h3,h4,h5,h6").Each(func(_ int, s *goquery.Selection) {
		level := goquery.NodeName(s)
		report.Counts[level]++
		if text := strings.TrimSpace(s.Text()); text != "" {
			report.Items = append(report.Items, model.Heading{Level: level, Text: text})
		}
	})
	return report
}

// skippedTextContainers are elements whose text is boilerplate rather than
// page content and must not feed the text metrics or keyword extraction.
var skippedTextContainers = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"nav":      true,
	"footer":   true,
	"head":     true,
}

// BodyText returns the page's visible text with script/style/nav/footer
// content excluded and whitespace collapsed.
func (d *Document) BodyText() string {
	var sb strings.Builder
	for _, root := range d.doc.Selection.Nodes {
		collectText(root, &sb)
	}
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(sb.String(), " "))
}

func collectText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.ElementNode && skippedTextContainers[n.Data] {
		return
	}
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		sb.WriteByte(' ')
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
}

// TextFromHTML extracts visible text from a standalone markup fragment with
// the same exclusions as Document.BodyText. Unparseable input degrades to an
// empty string.
func TextFromHTML(markup string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return ""
	}
	var sb strings.Builder
	for _, root := range doc.Selection.Nodes {
		collectText(root, &sb)
	}
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(sb.String(), " "))
}

// Reference is a raw candidate reference discovered in the markup, before
// resolution against the base URL.
type Reference struct {
	Raw  string
	Elem string // the element it came from: a, img, link, script
}

// References discovers candidate references from hyperlink, image,
// stylesheet, and script-source attributes, in document order.
func (d *Document) References() []Reference {
	var refs []Reference
	collect := func(elem, attr string) {
		d.doc.Find(elem + "[" + attr + "]").Each(func(_ int, s *goquery.Selection) {
			if raw := strings.TrimSpace(s.AttrOr(attr, "")); raw != "" {
				refs = append(refs, Reference{Raw: raw, Elem: elem})
			}
		})
	}
	collect("a", "href")
	collect("img", "src")
	collect("link", "href")
	collect("script", "src")
	return refs
}

// HTMLVersion reports the markup version declared by the doctype.
func (d *Document) HTMLVersion() string {
	for _, root := range d.doc.Selection.Nodes {
		for n := root.FirstChild; n != nil; n = n.NextSibling {
			if n.Type == html.DoctypeNode {
				return doctypeVersion(n)
			}
		}
	}
	return "Unknown"
}

// doctypeVersion distinguishes HTML5 (no PUBLIC identifier) from the legacy
// doctypes listed at https://www.w3.org/QA/2002/04/valid-dtd-list.html.
func doctypeVersion(n *html.Node) string {
	var public string
	for _, attr := range n.Attr {
		if attr.Key == "public" {
			public = strings.ToLower(attr.Val)
		}
	}

	if public == "" {
		return "HTML5"
	}

	switch {
	case strings.Contains(public, "xhtml 1.1") || strings.Contains(public, "xhtml basic 1.1"):
		return "XHTML 1.1"
	case strings.Contains(public, "xhtml 1.0"):
		return "XHTML 1.0"
	case strings.Contains(public, "html 4.01"):
		return "HTML 4.01"
	default:
		return "Unknown"
	}
}
