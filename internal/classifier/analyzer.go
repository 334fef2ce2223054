package classifier

import (
	"context"
	"log/slog"
	"time"

	"github.com/pulsehq/pulse/common/llm"
	"github.com/pulsehq/pulse/common/logger"
	"github.com/pulsehq/pulse/internal/model"
)

// AnalysisResponse is the shape we ask the model to produce. Field values are
// still coerced afterwards: the schema is a request, not a guarantee.
type AnalysisResponse struct {
	Category      string   `json:"category" jsonschema:"enum=Bug,enum=Performance,enum=Security,enum=UX,enum=Feature Request,enum=Billing,enum=Praise,enum=Other" jsonschema_description:"Feedback category"`
	Sentiment     string   `json:"sentiment" jsonschema:"enum=Positive,enum=Negative,enum=Neutral" jsonschema_description:"Overall sentiment"`
	Urgency       int      `json:"urgency" jsonschema:"minimum=1,maximum=10" jsonschema_description:"Urgency from 1 (cosmetic) to 10 (critical outage or security issue)"`
	SuggestedTeam string   `json:"suggested_team" jsonschema:"enum=engineering,enum=security,enum=support,enum=product,enum=billing" jsonschema_description:"Team best placed to act on this"`
	Keywords      []string `json:"keywords" jsonschema_description:"Up to five short keywords"`
}

var analysisSchema = llm.GenerateSchema[AnalysisResponse]()

const analysisSystemPrompt = `You are a product feedback triage assistant. Classify the user feedback
you are given and respond with a single JSON object with these fields:
  category: one of Bug, Performance, Security, UX, Feature Request, Billing, Praise, Other
  sentiment: one of Positive, Negative, Neutral
  urgency: an integer from 1 (cosmetic) to 10 (critical outage or security issue)
  suggested_team: one of engineering, security, support, product, billing
  keywords: up to five short lowercase keywords

Respond with the JSON object only, no prose.`

// Analyzer classifies raw feedback text. It never fails: any error along the
// way degrades to the default analysis so ingestion keeps moving.
type Analyzer struct {
	llm llm.Client
}

func NewAnalyzer(client llm.Client) *Analyzer {
	return &Analyzer{llm: client}
}

func (a *Analyzer) Analyze(ctx context.Context, text string) model.FeedbackAnalysis {
	start := time.Now()

	// Retry with exponential backoff (1s, 2s, 4s) to ride out transient rate
	// limits. Classification is enrichment, not a gate: after 3 attempts we
	// fall back to the default analysis instead of blocking the batch.
	var raw string
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		raw, err = a.llm.Complete(ctx, llm.Request{
			SystemPrompt: analysisSystemPrompt,
			UserPrompt:   text,
			SchemaName:   "feedback_analysis",
			Schema:       analysisSchema,
			Temperature:  llm.Temp(0.1),
		})
		if err == nil {
			break
		}
		if !llm.IsRetryable(ctx, err) {
			break
		}
		slog.WarnContext(ctx, "classification retry",
			"attempt", attempt+1,
			"error", err)
		time.Sleep(time.Duration(1<<attempt) * time.Second)
	}
	if err != nil {
		slog.ErrorContext(ctx, "classification failed, using default analysis",
			"model", a.llm.Model(),
			"error", err)
		return model.DefaultAnalysis()
	}

	analysis, ok := Normalize(raw)
	if !ok {
		slog.WarnContext(ctx, "classification response unusable, using default analysis",
			"model", a.llm.Model(),
			"response_preview", logger.Truncate(raw, 120))
		return model.DefaultAnalysis()
	}

	slog.DebugContext(ctx, "feedback classified",
		"category", analysis.Category,
		"urgency", analysis.Urgency,
		"latency_ms", time.Since(start).Milliseconds())
	return analysis
}
