package analysis

import "github.com/trendradar/trendradar/internal/models"

// EmergingTechnologies is the fixed vocabulary matched by DetectTechnologies.
// Detection results preserve this order.
var EmergingTechnologies = []string{
	"RAG",
	"Agent",
	"MCP",
	"AutoGPT",
	"GraphRAG",
	"LangChain",
	"Vector Database",
	"Embedding",
	"Fine-tuning",
	"RLHF",
	"Multimodal",
	"Edge AI",
	"Federated Learning",
}

// verticalKeywords mark descriptions targeting a vertical industry domain.
// InnovationScore rewards projects that match any of them.
var verticalKeywords = []string{
	"medical",
	"healthcare",
	"legal",
	"law",
	"education",
	"industrial",
	"manufacturing",
	"finance",
	"fintech",
}

// categoryKeywords drive classification. Hits are counted per category and
// ties break toward the earliest category in models.AllCategories order.
var categoryKeywords = map[models.Category][]string{
	models.CategoryLLM:          {"llm", "language model", "gpt", "transformer", "bert"},
	models.CategorySearch:       {"search", "retrieval", "rag", "vector", "embedding"},
	models.CategoryProductivity: {"office", "productivity", "automation", "workflow"},
	models.CategoryCoding:       {"code", "programming", "developer", "copilot"},
	models.CategoryContent:      {"content", "generation", "creative", "image", "video"},
	models.CategoryAgent:        {"agent", "autonomous", "multi-agent", "workflow"},
	models.CategoryVision:       {"vision", "image", "detection", "recognition"},
	models.CategoryLanguage:     {"nlp", "text", "language", "translation"},
	models.CategorySpeech:       {"speech", "voice", "audio", "tts", "asr"},
}

// stopwords is the filter list applied before keyword counting.
var stopwords = map[string]bool{
	"a": true, "about": true, "above": true, "after": true, "again": true,
	"against": true, "all": true, "am": true, "an": true, "and": true,
	"any": true, "are": true, "as": true, "at": true, "be": true,
	"because": true, "been": true, "before": true, "being": true, "below": true,
	"between": true, "both": true, "but": true, "by": true, "can": true,
	"could": true, "did": true, "do": true, "does": true, "doing": true,
	"down": true, "during": true, "each": true, "few": true, "for": true,
	"from": true, "further": true, "had": true, "has": true, "have": true,
	"having": true, "he": true, "her": true, "here": true, "hers": true,
	"him": true, "his": true, "how": true, "i": true, "if": true,
	"in": true, "into": true, "is": true, "it": true, "its": true,
	"just": true, "me": true, "more": true, "most": true, "my": true,
	"no": true, "nor": true, "not": true, "now": true, "of": true,
	"off": true, "on": true, "once": true, "only": true, "or": true,
	"other": true, "our": true, "out": true, "over": true, "own": true,
	"same": true, "she": true, "should": true, "so": true, "some": true,
	"such": true, "than": true, "that": true, "the": true, "their": true,
	"them": true, "then": true, "there": true, "these": true, "they": true,
	"this": true, "those": true, "through": true, "to": true, "too": true,
	"under": true, "until": true, "up": true, "very": true, "was": true,
	"we": true, "were": true, "what": true, "when": true, "where": true,
	"which": true, "while": true, "who": true, "whom": true, "why": true,
	"will": true, "with": true, "would": true, "you": true, "your": true,
	"yours": true,
}

// sentimentLexicon is a compact AFINN-style wordlist. Scores range -5..5.
var sentimentLexicon = map[string]int{
	"amazing": 4, "awesome": 4, "best": 3, "breakthrough": 3, "brilliant": 4,
	"clean": 2, "efficient": 2, "elegant": 2, "excellent": 3, "exciting": 3,
	"fast": 1, "fantastic": 4, "great": 3, "good": 3, "helpful": 2,
	"improved": 2, "impressive": 3, "innovative": 2, "intuitive": 2, "love": 3,
	"outstanding": 5, "powerful": 2, "reliable": 2, "robust": 2, "seamless": 2,
	"simple": 1, "smart": 1, "solid": 2, "stable": 1, "superb": 5,
	"useful": 2, "wonderful": 4,

	"awful": -3, "bad": -3, "broken": -2, "bug": -2, "buggy": -3,
	"confusing": -2, "crash": -2, "deprecated": -1, "difficult": -1, "disappointing": -2,
	"error": -2, "fail": -2, "failed": -2, "flawed": -2, "fragile": -2,
	"hate": -3, "horrible": -3, "inaccurate": -2, "insecure": -2, "limited": -1,
	"mediocre": -2, "messy": -2, "outdated": -1, "poor": -2, "problem": -2,
	"slow": -1, "terrible": -3, "unreliable": -2, "unstable": -2, "useless": -2,
	"worst": -3, "wrong": -2,
}
