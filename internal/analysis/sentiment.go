package analysis

import "strings"

// SentimentLabel is the coarse polarity of a piece of text.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNegative SentimentLabel = "negative"
	SentimentNeutral  SentimentLabel = "neutral"
)

// Sentiment holds the outcome of a lexicon-based sentiment pass.
type Sentiment struct {
	Score       int            `json:"score"`       // summed word weights
	Comparative float64        `json:"comparative"` // score normalized by token count
	Label       SentimentLabel `json:"label"`
	Positive    []string       `json:"positive,omitempty"`
	Negative    []string       `json:"negative,omitempty"`
}

// AnalyzeSentiment scores text against the sentiment lexicon. The label is
// positive above a comparative of 0.1, negative below -0.1, neutral otherwise.
func AnalyzeSentiment(text string) Sentiment {
	if text == "" {
		return Sentiment{Label: SentimentNeutral}
	}

	tokens := wordPattern.FindAllString(strings.ToLower(text), -1)
	if len(tokens) == 0 {
		return Sentiment{Label: SentimentNeutral}
	}

	result := Sentiment{}
	for _, token := range tokens {
		weight, ok := sentimentLexicon[token]
		if !ok {
			continue
		}
		result.Score += weight
		if weight > 0 {
			result.Positive = append(result.Positive, token)
		} else {
			result.Negative = append(result.Negative, token)
		}
	}

	result.Comparative = float64(result.Score) / float64(len(tokens))
	result.Label = labelFor(result.Comparative)
	return result
}

func labelFor(comparative float64) SentimentLabel {
	switch {
	case comparative > 0.1:
		return SentimentPositive
	case comparative < -0.1:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}
