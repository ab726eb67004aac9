package audit

import (
	"strings"
	"testing"
)

func TestScoreContent_KeywordCounting(t *testing.T) {
	text := "Gardening is fun. Gardening, at its best, rewards patience. I love my garden."

	result := ScoreContent(text, "gardening")

	if result.KeywordCount != 2 {
		t.Errorf("KeywordCount = %d, want 2 (punctuation-stripped exact matches)", result.KeywordCount)
	}
	if result.DensityPercent <= 0 {
		t.Errorf("DensityPercent = %v, want > 0", result.DensityPercent)
	}
	if result.Words == 0 {
		t.Error("Words should be populated from the text metrics")
	}
}

func TestScoreContent_HealthyTextScoresHigh(t *testing.T) {
	// ~300 short words with the keyword at a moderate density.
	var b strings.Builder
	for i := 0; i < 100; i++ {
		if i%34 == 0 {
			b.WriteString("tea ")
		}
		b.WriteString("we sip it now. ")
	}

	result := ScoreContent(b.String(), "tea")

	if result.Score < 80 {
		t.Errorf("Score = %d, want >= 80 for long readable keyword-bearing text", result.Score)
	}
	if result.Score > 100 {
		t.Errorf("Score = %d, must not exceed 100", result.Score)
	}
}

func TestScoreContent_MissingKeywordSuggestion(t *testing.T) {
	result := ScoreContent("A short note about something else entirely.", "gardening")

	if result.KeywordCount != 0 {
		t.Errorf("KeywordCount = %d, want 0", result.KeywordCount)
	}
	found := false
	for _, s := range result.Suggestions {
		if strings.Contains(s, "does not appear") {
			found = true
		}
	}
	if !found {
		t.Errorf("Suggestions = %v, want a missing-keyword suggestion", result.Suggestions)
	}
}

func TestScoreContent_ShortKeywordNeverMatches(t *testing.T) {
	result := ScoreContent("go go go go go", "go")
	if result.KeywordCount != 0 {
		t.Errorf("KeywordCount = %d, want 0 for a keyword below the minimum length", result.KeywordCount)
	}
}

func TestScoreContent_Empty(t *testing.T) {
	result := ScoreContent("", "")

	if result.Words != 0 || result.KeywordCount != 0 {
		t.Errorf("result = %+v, want zero counts", result)
	}
	if result.Suggestions == nil {
		t.Error("Suggestions must not be nil")
	}
	if result.DensityPercent != 0 {
		t.Errorf("DensityPercent = %v, want 0", result.DensityPercent)
	}
}
