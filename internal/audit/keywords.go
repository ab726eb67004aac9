package audit

import (
	"sort"
	"strings"

	"github.com/seoscope/seo-audit/internal/model"
)

// DefaultKeywordMinLength is the token length floor used by the HTTP surface.
const DefaultKeywordMinLength = 4

// ExtractKeywords builds a frequency table over normalized tokens: the text
// is lowercased, non-alphanumeric characters are stripped from each token,
// and tokens shorter than minLen are discarded. The top n entries are
// returned ordered by descending frequency, ties broken by first-seen order.
// Zero-frequency terms never appear.
func ExtractKeywords(text string, minLen, n int) []model.KeywordEntry {
	freq := map[string]int{}
	firstSeen := map[string]int{}

	for i, token := range strings.Fields(strings.ToLower(text)) {
		term := stripNonAlnum(token)
		if len(term) < minLen {
			continue
		}
		if _, ok := freq[term]; !ok {
			firstSeen[term] = i
		}
		freq[term]++
	}

	entries := make([]model.KeywordEntry, 0, len(freq))
	for term, count := range freq {
		entries = append(entries, model.KeywordEntry{Term: term, Frequency: count})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Frequency != entries[j].Frequency {
			return entries[i].Frequency > entries[j].Frequency
		}
		return firstSeen[entries[i].Term] < firstSeen[entries[j].Term]
	})

	if n < len(entries) {
		entries = entries[:n]
	}
	return entries
}

func stripNonAlnum(token string) string {
	var sb strings.Builder
	for _, r := range token {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
