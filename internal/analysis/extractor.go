package analysis

import (
	"regexp"
	"sort"
	"strings"

	"github.com/kljensen/snowball/english"
)

var wordPattern = regexp.MustCompile(`[a-zA-Z]+`)

// ExtractKeywords returns up to max stemmed keywords from text, ranked by
// descending frequency. Ties break toward the keyword that appears first in
// the text. Stopwords and single-letter tokens are dropped. Empty text
// yields an empty slice.
func ExtractKeywords(text string, max int) []string {
	if text == "" || max <= 0 {
		return nil
	}

	tokens := wordPattern.FindAllString(strings.ToLower(text), -1)

	type entry struct {
		count int
		first int // position of first occurrence, for tie-breaking
	}
	frequency := make(map[string]*entry)

	pos := 0
	for _, token := range tokens {
		if len(token) < 2 || stopwords[token] {
			continue
		}
		stemmed := english.Stem(token, false)
		if e, ok := frequency[stemmed]; ok {
			e.count++
		} else {
			frequency[stemmed] = &entry{count: 1, first: pos}
		}
		pos++
	}

	keywords := make([]string, 0, len(frequency))
	for word := range frequency {
		keywords = append(keywords, word)
	}

	sort.Slice(keywords, func(i, j int) bool {
		a, b := frequency[keywords[i]], frequency[keywords[j]]
		if a.count != b.count {
			return a.count > b.count
		}
		return a.first < b.first
	})

	if len(keywords) > max {
		keywords = keywords[:max]
	}
	return keywords
}

// DetectTechnologies matches text against the emerging-technology vocabulary,
// case-insensitively. The result preserves vocabulary order.
func DetectTechnologies(text string) []string {
	if text == "" {
		return nil
	}

	lower := strings.ToLower(text)
	var detected []string
	for _, tech := range EmergingTechnologies {
		if strings.Contains(lower, strings.ToLower(tech)) {
			detected = append(detected, tech)
		}
	}
	return detected
}

// CountEmergingTechnologies returns how many of the given technology tags
// belong to the emerging-technology vocabulary.
func CountEmergingTechnologies(techs []string) int {
	known := make(map[string]bool, len(EmergingTechnologies))
	for _, tech := range EmergingTechnologies {
		known[strings.ToLower(tech)] = true
	}

	count := 0
	for _, tech := range techs {
		if known[strings.ToLower(tech)] {
			count++
		}
	}
	return count
}

// MatchesVerticalDomain reports whether the description targets one of the
// vertical industry domains rewarded by the innovation score.
func MatchesVerticalDomain(description string) bool {
	if description == "" {
		return false
	}

	lower := strings.ToLower(description)
	for _, keyword := range verticalKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
