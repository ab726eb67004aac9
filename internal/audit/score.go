package audit

import (
	"math"
	"strings"

	"github.com/seoscope/seo-audit/internal/model"
)

// Content score weights. The total is clamped to 100; each band contributes
// its share only when the signal is healthy.
const (
	scoreWordTarget  = 300
	densityFloor     = 0.5
	densityCeiling   = 3.0
	scorerMinKeyword = 3
)

// ScoreContent grades plain text against a focus keyword. The score is a
// heuristic blend of length, readability, and keyword density; suggestions
// name the signals that fell outside their healthy band.
func ScoreContent(text, keyword string) model.ContentScore {
	metrics := ComputeTextMetrics(text)
	words := strings.Fields(strings.ToLower(text))
	needle := stripNonAlnum(strings.ToLower(strings.TrimSpace(keyword)))

	count := 0
	if len(needle) >= scorerMinKeyword {
		for _, w := range words {
			if stripNonAlnum(w) == needle {
				count++
			}
		}
	}

	density := 0.0
	if len(words) > 0 {
		density = float64(count) / float64(len(words)) * 100
	}

	score := 0
	var suggestions []string

	if metrics.Words >= scoreWordTarget {
		score += 30
	} else {
		suggestions = append(suggestions, "Add more content: aim for at least 300 words.")
	}

	switch {
	case metrics.Readability >= 60:
		score += 30
	case metrics.Readability >= 40:
		score += 20
		suggestions = append(suggestions, "Shorten sentences to improve readability.")
	default:
		score += 10
		suggestions = append(suggestions, "Text is hard to read: use shorter sentences and simpler words.")
	}

	switch {
	case count == 0:
		suggestions = append(suggestions, "The keyword does not appear in the text.")
	case density >= densityFloor && density <= densityCeiling:
		score += 40
	case density > densityCeiling:
		score += 20
		suggestions = append(suggestions, "Keyword density is too high: reduce repetition.")
	default:
		score += 20
		suggestions = append(suggestions, "Use the keyword a few more times.")
	}

	if suggestions == nil {
		suggestions = []string{}
	}

	return model.ContentScore{
		Score:          min(score, 100),
		Words:          metrics.Words,
		Flesch:         metrics.Readability,
		DensityPercent: math.Round(density*100) / 100,
		KeywordCount:   count,
		Suggestions:    suggestions,
	}
}
