package audit

import (
	"math"
	"regexp"
	"strings"

	"github.com/seoscope/seo-audit/internal/model"
)

const (
	// syllableWordCap bounds how many words feed the syllable total.
	// Known limitation: on documents longer than this the readability score
	// is computed from a prefix of the text.
	syllableWordCap = 500

	wordsPerMinute = 200
)

var (
	sentenceSplitRe = regexp.MustCompile(`[.!?]+`)
	silentSuffixRe  = regexp.MustCompile(`([^aeiouy])(?:es|ed|e)$`)
	vowelClusterRe  = regexp.MustCompile(`[aeiouy]{1,2}`)
)

// ComputeTextMetrics derives word, sentence, and syllable counts plus a
// Flesch-style readability score from raw document text. It is a pure
// function: every call recomputes from scratch.
func ComputeTextMetrics(text string) model.TextMetrics {
	words := strings.Fields(text)
	sentences := CountSentences(text)

	syllables := 0
	for i, w := range words {
		if i >= syllableWordCap {
			break
		}
		syllables += CountSyllables(w)
	}

	wordCount := len(words)
	return model.TextMetrics{
		Words:       wordCount,
		Sentences:   sentences,
		Syllables:   syllables,
		Readability: ReadabilityScore(wordCount, sentences, syllables),
		ReadMinutes: int(math.Ceil(float64(wordCount) / wordsPerMinute)),
	}
}

// CountSentences splits text on runs of '.', '!', '?' and counts the
// non-empty fragments.
func CountSentences(text string) int {
	count := 0
	for _, frag := range sentenceSplitRe.Split(text, -1) {
		if strings.TrimSpace(frag) != "" {
			count++
		}
	}
	return count
}

// CountSyllables estimates the syllables in one word. The heuristic: words of
// three or fewer letters count as one syllable; otherwise a trailing silent
// -e/-es/-ed after a consonant is stripped and non-overlapping vowel clusters
// (one or two of a,e,i,o,u,y) are counted, with a floor of one. This is an
// approximation, not phonetic ground truth.
func CountSyllables(word string) int {
	w := strings.ToLower(strings.TrimSpace(word))
	if w == "" {
		return 0
	}
	if len(w) <= 3 {
		return 1
	}

	w = silentSuffixRe.ReplaceAllString(w, "$1")
	clusters := len(vowelClusterRe.FindAllString(w, -1))
	if clusters == 0 {
		return 1
	}
	return clusters
}

// ReadabilityScore computes round(206.835 - 1.015*(words/sentences) -
// 84.6*(syllables/words)) clamped to [0,100]. Words and sentences are floored
// at one so degenerate inputs never divide by zero.
func ReadabilityScore(words, sentences, syllables int) int {
	w := max(words, 1)
	s := max(sentences, 1)

	score := 206.835 - 1.015*(float64(w)/float64(s)) - 84.6*(float64(syllables)/float64(w))
	rounded := int(math.Round(score))

	return min(max(rounded, 0), 100)
}
