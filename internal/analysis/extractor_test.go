package analysis

import (
	"reflect"
	"testing"
)

func TestExtractKeywords_FrequencyRanking(t *testing.T) {
	got := ExtractKeywords("AI and ML and AI and ML and AI", 5)

	if len(got) != 2 {
		t.Fatalf("expected 2 keywords, got %v", got)
	}
	if got[0] != "ai" || got[1] != "ml" {
		t.Errorf(`expected ["ai" "ml"], got %v`, got)
	}
	for _, kw := range got {
		if kw == "and" {
			t.Error("stopword leaked into keywords")
		}
	}
}

func TestExtractKeywords_TieBreakFirstOccurrence(t *testing.T) {
	got := ExtractKeywords("vector retrieval vector retrieval", 5)

	if len(got) != 2 {
		t.Fatalf("expected 2 keywords, got %v", got)
	}
	// Equal frequency; the earlier token wins.
	if got[0] != "vector" {
		t.Errorf("expected first-occurring keyword first, got %v", got)
	}
}

func TestExtractKeywords_Limit(t *testing.T) {
	got := ExtractKeywords("alpha beta gamma delta epsilon", 3)
	if len(got) != 3 {
		t.Errorf("expected 3 keywords, got %d", len(got))
	}
}

func TestExtractKeywords_Empty(t *testing.T) {
	if got := ExtractKeywords("", 5); len(got) != 0 {
		t.Errorf("empty text should yield no keywords, got %v", got)
	}
	if got := ExtractKeywords("the and or", 5); len(got) != 0 {
		t.Errorf("all-stopword text should yield no keywords, got %v", got)
	}
	if got := ExtractKeywords("hello", 0); len(got) != 0 {
		t.Errorf("max 0 should yield no keywords, got %v", got)
	}
}

func TestExtractKeywords_Stemming(t *testing.T) {
	got := ExtractKeywords("running runs", 5)
	if len(got) != 1 {
		t.Errorf("inflections of one word should collapse to a single stem, got %v", got)
	}
}

func TestDetectTechnologies(t *testing.T) {
	got := DetectTechnologies("A GraphRAG pipeline built on LangChain with embedding search")

	expected := []string{"RAG", "GraphRAG", "LangChain", "Embedding"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("expected %v, got %v", expected, got)
	}

	if got := DetectTechnologies(""); got != nil {
		t.Errorf("empty text should detect nothing, got %v", got)
	}
}

func TestCountEmergingTechnologies(t *testing.T) {
	count := CountEmergingTechnologies([]string{"rag", "LangChain", "react", "RLHF"})
	if count != 3 {
		t.Errorf("expected 3 emerging technologies, got %d", count)
	}
}

func TestMatchesVerticalDomain(t *testing.T) {
	if !MatchesVerticalDomain("An assistant for healthcare providers") {
		t.Error("healthcare description should match a vertical domain")
	}
	if MatchesVerticalDomain("A general purpose chatbot") {
		t.Error("generic description should not match a vertical domain")
	}
	if MatchesVerticalDomain("") {
		t.Error("empty description should not match")
	}
}
