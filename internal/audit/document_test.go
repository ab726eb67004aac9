package audit

import (
	"strings"
	"testing"
)

func mustParseDocument(t *testing.T, body, baseURL string) *Document {
	t.Helper()
	doc, err := ParseDocument(body, baseURL)
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	return doc
}

func TestDocument_Metadata(t *testing.T) {
	html := `<!DOCTYPE html><html><head>
	<title> Example Page </title>
	<meta name="description" content="A page about examples.">
	<meta name="robots" content="index,follow">
	<meta property="og:title" content="Example">
	<meta property="og:type" content="website">
	<link rel="canonical" href="https://example.com/page">
	</head><body></body></html>`

	doc := mustParseDocument(t, html, "https://example.com/page")

	if got := doc.Title(); got != "Example Page" {
		t.Errorf("Title = %q, want %q", got, "Example Page")
	}
	if got := doc.Description(); got != "A page about examples." {
		t.Errorf("Description = %q", got)
	}
	if got := doc.Canonical(); got != "https://example.com/page" {
		t.Errorf("Canonical = %q", got)
	}
	if got := doc.MetaRobots(); got != "index,follow" {
		t.Errorf("MetaRobots = %q", got)
	}
	og := doc.OpenGraph()
	if og["og:title"] != "Example" || og["og:type"] != "website" {
		t.Errorf("OpenGraph = %v", og)
	}
}

func TestDocument_DescriptionFallsBackToOpenGraph(t *testing.T) {
	html := `<html><head><meta property="og:description" content="og fallback"></head></html>`
	doc := mustParseDocument(t, html, "https://example.com/")

	if got := doc.Description(); got != "og fallback" {
		t.Errorf("Description = %q, want og fallback", got)
	}
}

func TestDocument_Headings(t *testing.T) {
	html := `<html><body>
	<h1>Main</h1>
	<h2>First sub</h2>
	<h2>Second sub</h2>
	<h3>Deep</h3>
	</body></html>`

	report := mustParseDocument(t, html, "https://example.com/").Headings()

	wantCounts := map[string]int{"h1": 1, "h2": 2, "h3": 1, "h4": 0, "h5": 0, "h6": 0}
	for level, want := range wantCounts {
		if report.Counts[level] != want {
			t.Errorf("Counts[%s] = %d, want %d", level, report.Counts[level], want)
		}
	}

	if len(report.Items) != 4 {
		t.Fatalf("Items = %d entries, want 4", len(report.Items))
	}
	if report.Items[0].Level != "h1" || report.Items[0].Text != "Main" {
		t.Errorf("first heading = %+v", report.Items[0])
	}
	if report.Items[2].Text != "Second sub" {
		t.Errorf("document order not preserved: %+v", report.Items)
	}
}

func TestDocument_BodyTextExclusions(t *testing.T) {
	html := `<html><head><title>ignored</title><style>p {color: red}</style></head><body>
	<nav>navigation menu</nav>
	<p>visible   content</p>
	<script>var hidden = "script text";</script>
	<footer>footer boilerplate</footer>
	</body></html>`

	text := mustParseDocument(t, html, "https://example.com/").BodyText()

	if text != "visible content" {
		t.Errorf("BodyText = %q, want %q", text, "visible content")
	}
}

func TestTextFromHTML(t *testing.T) {
	got := TextFromHTML(`<div><p>Hello</p><script>nope()</script><p>world.</p></div>`)
	if got != "Hello world." {
		t.Errorf("TextFromHTML = %q, want %q", got, "Hello world.")
	}
}

func TestDocument_References(t *testing.T) {
	html := `<html><head>
	<link rel="stylesheet" href="/styles.css">
	<script src="https://cdn.example.com/app.js"></script>
	</head><body>
	<a href="/about">About</a>
	<a href="">empty skipped</a>
	<img src="logo.png">
	<script>inline: no src, skipped</script>
	</body></html>`

	refs := mustParseDocument(t, html, "https://example.com/").References()

	want := map[string]string{
		"/styles.css":                    "link",
		"https://cdn.example.com/app.js": "script",
		"/about":                         "a",
		"logo.png":                       "img",
	}
	if len(refs) != len(want) {
		t.Fatalf("References = %d entries (%v), want %d", len(refs), refs, len(want))
	}
	for _, ref := range refs {
		if want[ref.Raw] != ref.Elem {
			t.Errorf("reference %q came from %q, want %q", ref.Raw, ref.Elem, want[ref.Raw])
		}
	}
}

func TestDocument_HTMLVersion(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "HTML5",
			html: `<!DOCTYPE html><html><head></head><body></body></html>`,
			want: "HTML5",
		},
		{
			name: "HTML 4.01",
			html: `<!DOCTYPE HTML PUBLIC "-//W3C//DTD HTML 4.01//EN" "http://www.w3.org/TR/html4/strict.dtd"><html></html>`,
			want: "HTML 4.01",
		},
		{
			name: "XHTML 1.0",
			html: `<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Strict//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-strict.dtd"><html></html>`,
			want: "XHTML 1.0",
		},
		{
			name: "XHTML 1.1",
			html: `<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.1//EN" "http://www.w3.org/TR/xhtml11/DTD/xhtml11.dtd"><html></html>`,
			want: "XHTML 1.1",
		},
		{
			name: "no doctype",
			html: `<html><head></head><body></body></html>`,
			want: "Unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustParseDocument(t, tt.html, "https://example.com/").HTMLVersion()
			if got != tt.want {
				t.Errorf("HTMLVersion = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseDocument_RejectsBadBase(t *testing.T) {
	for _, base := range []string{"", "not a url", "/relative/only"} {
		if _, err := ParseDocument("<html></html>", base); err == nil {
			t.Errorf("ParseDocument with base %q should fail", base)
		}
	}
}

func TestDocument_BodyTextLargePage(t *testing.T) {
	// Body text extraction must not blow up on repetitive markup.
	var sb strings.Builder
	sb.WriteString("<html><body>")
	for i := 0; i < 2000; i++ {
		sb.WriteString("<p>paragraph text here</p>")
	}
	sb.WriteString("</body></html>")

	text := mustParseDocument(t, sb.String(), "https://example.com/").BodyText()
	if !strings.HasPrefix(text, "paragraph text here") {
		t.Errorf("unexpected prefix: %q", text[:40])
	}
}
