package model

import (
	"strings"
	"time"
)

type (
	Sentiment string
	Source    string
	Status    string
	Team      string
)

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNegative Sentiment = "Negative"
	SentimentNeutral  Sentiment = "Neutral"
)

const (
	SourceDiscord Source = "discord"
	SourceGitHub  Source = "github"
	SourceTwitter Source = "twitter"
	SourceSupport Source = "support"
	SourceForum   Source = "forum"
)

const (
	StatusNew          Status = "new"
	StatusAcknowledged Status = "acknowledged"
	StatusEscalated    Status = "escalated"
	StatusResolved     Status = "resolved"
)

const (
	TeamEngineering Team = "engineering"
	TeamSecurity    Team = "security"
	TeamSupport     Team = "support"
	TeamProduct     Team = "product"
	TeamBilling     Team = "billing"
)

// CategoryOther is the fallback bucket for feedback the classifier could not
// place (or where classification failed entirely).
const CategoryOther = "Other"

// knownCategories is the closed set the dashboard groups by. Categories are
// stored as open strings; this set only drives canonical spelling.
var knownCategories = []string{
	"Bug",
	"Performance",
	"Security",
	"UX",
	"Feature Request",
	"Billing",
	"Praise",
	CategoryOther,
}

// CanonicalCategory maps a classifier-produced label onto the canonical
// spelling of a known category. Unknown non-empty labels pass through
// verbatim: the category set is open at the boundary, and aggregation must
// tolerate whatever the classifier emits.
func CanonicalCategory(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return CategoryOther
	}
	for _, known := range knownCategories {
		if strings.EqualFold(raw, known) {
			return known
		}
	}
	return raw
}

// ValidSentiment reports whether s is one of the three accepted values,
// comparing case-insensitively. The canonical value is returned.
func ValidSentiment(s string) (Sentiment, bool) {
	for _, v := range []Sentiment{SentimentPositive, SentimentNegative, SentimentNeutral} {
		if strings.EqualFold(s, string(v)) {
			return v, true
		}
	}
	return "", false
}

// ValidTeam reports whether s names a known team.
func ValidTeam(s string) (Team, bool) {
	for _, v := range []Team{TeamEngineering, TeamSecurity, TeamSupport, TeamProduct, TeamBilling} {
		if strings.EqualFold(s, string(v)) {
			return v, true
		}
	}
	return "", false
}

// ValidSource reports whether s names a known channel.
func ValidSource(s string) (Source, bool) {
	for _, v := range []Source{SourceDiscord, SourceGitHub, SourceTwitter, SourceSupport, SourceForum} {
		if strings.EqualFold(s, string(v)) {
			return v, true
		}
	}
	return "", false
}

// FeedbackRecord is the unit of triage. ID is assigned at persistence time;
// (Source, SourceID) is the dedup key, unique across all records.
type FeedbackRecord struct {
	ID           int64     `json:"id"`
	RawText      string    `json:"raw_text"`
	Category     string    `json:"category"`
	Sentiment    Sentiment `json:"sentiment"`
	UrgencyScore int       `json:"urgency_score"`
	Source       Source    `json:"source"`
	SourceID     string    `json:"source_id"`
	Author       string    `json:"author"`
	Status       Status    `json:"status"`
	AssignedTeam *Team     `json:"assigned_team,omitempty"`
	Notes        *string   `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FeedbackAnalysis is a validated classification result. Every field is
// guaranteed in-range regardless of what the inference service returned.
type FeedbackAnalysis struct {
	Category      string    `json:"category"`
	Sentiment     Sentiment `json:"sentiment"`
	Urgency       int       `json:"urgency"`
	SuggestedTeam Team      `json:"suggested_team"`
	Keywords      []string  `json:"keywords"`
}

// DefaultAnalysis is the fixed fallback used when classification fails at any
// step. Classification failure is never fatal to ingestion.
func DefaultAnalysis() FeedbackAnalysis {
	return FeedbackAnalysis{
		Category:      CategoryOther,
		Sentiment:     SentimentNeutral,
		Urgency:       5,
		SuggestedTeam: TeamProduct,
		Keywords:      []string{},
	}
}
