package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within a context.
// Fields flow through context enrichment so business context (feedback_id, source,
// category) shows up on every log statement without being threaded by hand.
type LogFields struct {
	FeedbackID *int64  // Feedback record ID
	Source     *string // Origin channel (discord, github, ...)
	SourceID   *string // Identifier within the origin channel
	Category   *string // Classified category
	Action     *string // Triage action being applied
	Component  string  // Component name, e.g. "pulse.service.ingest"
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
// Context timeouts and cancellation are preserved.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, next LogFields) LogFields {
	result := existing

	if next.FeedbackID != nil {
		result.FeedbackID = next.FeedbackID
	}
	if next.Source != nil {
		result.Source = next.Source
	}
	if next.SourceID != nil {
		result.SourceID = next.SourceID
	}
	if next.Category != nil {
		result.Category = next.Category
	}
	if next.Action != nil {
		result.Action = next.Action
	}
	if next.Component != "" {
		result.Component = next.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{FeedbackID: logger.Ptr(id)})
func Ptr[T any](v T) *T {
	return &v
}

// Truncate truncates a string to maxLen characters, appending "..." if truncated.
// Useful for logging potentially long strings like raw feedback text.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
