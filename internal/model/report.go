package model

// FetchResult is one retrieved resource. Immutable once produced; owned by
// the caller that requested it.
type FetchResult struct {
	FinalURL   string            `json:"final_url"`
	StatusCode int               `json:"status_code"`
	Headers    map[string]string `json:"headers"` // lowercase name -> first value
	Body       string            `json:"body"`
}

// LinkState describes the reachability of a probed reference.
type LinkState string

const (
	LinkOK      LinkState = "ok"
	LinkBroken  LinkState = "broken"
	LinkUnknown LinkState = "unknown"
)

// LinkRecord is one discovered reference with its resolution and probe outcome.
// A result set never contains two records with the same URL.
type LinkRecord struct {
	Raw        string    `json:"raw"`
	URL        string    `json:"url"`
	Internal   bool      `json:"internal"`
	State      LinkState `json:"state"`
	StatusCode int       `json:"status_code,omitempty"` // set when State is broken due to an HTTP status
	Reason     string    `json:"reason,omitempty"`      // "timeout" when the probe failed to complete
}

// LinkReport aggregates the probe results for one page.
type LinkReport struct {
	Total    int          `json:"total"`
	Internal int          `json:"internal"`
	External int          `json:"external"`
	Broken   int          `json:"broken"`
	Records  []LinkRecord `json:"records"`
}

// TextMetrics holds deterministic text-derived measurements. All counts are
// non-negative; Readability is clamped to [0,100].
type TextMetrics struct {
	Words       int `json:"words"`
	Sentences   int `json:"sentences"`
	Syllables   int `json:"syllables"`
	Readability int `json:"readability"`
	ReadMinutes int `json:"read_minutes"`
}

// KeywordEntry is one term from the frequency table; Frequency is always >= 1.
type KeywordEntry struct {
	Term      string `json:"term"`
	Frequency int    `json:"frequency"`
}

// SerpEntry is one search result. Rank is 1-based and contiguous within a
// response; the provider that produced it is not retained.
type SerpEntry struct {
	Rank    int    `json:"rank"`
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Heading is one heading element in document order.
type Heading struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

// HeadingReport combines per-level counts with the headings themselves.
type HeadingReport struct {
	Counts map[string]int `json:"counts"`
	Items  []Heading      `json:"items"`
}

// SEOMetadata is the structural metadata extracted from a page head.
type SEOMetadata struct {
	URL         string            `json:"url"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Canonical   string            `json:"canonical,omitempty"`
	MetaRobots  string            `json:"meta_robots,omitempty"`
	OpenGraph   map[string]string `json:"open_graph,omitempty"`
	HTMLVersion string            `json:"html_version"`
}

// TechReport lists technology signatures detected in the markup.
type TechReport struct {
	Signatures []string `json:"signatures"`
}

// CheckFailure is the marker substituted for a check that did not complete.
type CheckFailure struct {
	Error string `json:"error"`
}

// AuditReport maps each check name to its payload, or to a CheckFailure if
// that check failed. It is always structurally complete: one check's failure
// never removes the others' results.
type AuditReport struct {
	URL      string         `json:"url"`
	FinalURL string         `json:"final_url"`
	Checks   map[string]any `json:"checks"`
}

// ContentScore is the response of the content scoring endpoint.
type ContentScore struct {
	Score          int      `json:"score"`
	Words          int      `json:"words"`
	Flesch         int      `json:"flesch"`
	DensityPercent float64  `json:"density_percent"`
	KeywordCount   int      `json:"keyword_count"`
	Suggestions    []string `json:"suggestions"`
}

// ErrorResponse is the JSON shape returned on failure.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
