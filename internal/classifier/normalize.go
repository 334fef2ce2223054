package classifier

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pulsehq/pulse/internal/model"
)

// looseAnalysis defers every field to raw bytes: models emit the wrong shape
// per field (urgency as a quoted string, keywords as a bare word) and one bad
// field must never take the others down with it.
type looseAnalysis struct {
	Category      json.RawMessage `json:"category"`
	Sentiment     json.RawMessage `json:"sentiment"`
	Urgency       json.RawMessage `json:"urgency"`
	SuggestedTeam json.RawMessage `json:"suggested_team"`
	Keywords      json.RawMessage `json:"keywords"`
}

// Normalize turns a raw completion into a validated analysis. Returns false
// when no JSON object can be recovered from the text at all; field-level
// garbage is coerced to defaults individually.
func Normalize(raw string) (model.FeedbackAnalysis, bool) {
	cleaned := extractJSON(raw)
	if cleaned == "" {
		return model.FeedbackAnalysis{}, false
	}

	var loose looseAnalysis
	if err := json.Unmarshal([]byte(cleaned), &loose); err != nil {
		return model.FeedbackAnalysis{}, false
	}

	analysis := model.FeedbackAnalysis{
		Category:      model.CanonicalCategory(coerceString(loose.Category)),
		Sentiment:     model.SentimentNeutral,
		Urgency:       coerceUrgency(loose.Urgency),
		SuggestedTeam: model.TeamProduct,
		Keywords:      coerceKeywords(loose.Keywords),
	}
	if s, ok := model.ValidSentiment(coerceString(loose.Sentiment)); ok {
		analysis.Sentiment = s
	}
	if t, ok := model.ValidTeam(coerceString(loose.SuggestedTeam)); ok {
		analysis.SuggestedTeam = t
	}
	return analysis, true
}

// extractJSON recovers the JSON object from a completion that may be wrapped
// in a markdown fence or surrounded by prose. Empty string means no object.
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

func coerceString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// coerceKeywords accepts only a list shape, keeping whatever string elements
// it holds. Anything else collapses to an empty slice.
func coerceKeywords(raw json.RawMessage) []string {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return []string{}
	}

	keywords := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			keywords = append(keywords, s)
		}
	}
	return keywords
}

func coerceUrgency(raw json.RawMessage) int {
	const fallback = 5
	if len(raw) == 0 {
		return fallback
	}

	s := strings.TrimSpace(string(raw))
	s = strings.Trim(s, `"`)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}

	n := int(f)
	switch {
	case n < 1:
		return 1
	case n > 10:
		return 10
	}
	return n
}
