package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Span event helpers for domain actions worth seeing on a request trace.

// RecordVoteCast marks a poll vote acceptance on the active span
func RecordVoteCast(ctx context.Context, pollID string) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent("poll.vote_cast", trace.WithAttributes(
		attribute.String("poll.id", pollID),
	))
}

// RecordNotificationFanout marks a notification write plus push
func RecordNotificationFanout(ctx context.Context, notifType string, pushed bool) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent("notification.fanout", trace.WithAttributes(
		attribute.String("notification.type", notifType),
		attribute.Bool("notification.pushed", pushed),
	))
}

// RecordModerationAction marks a moderator decision
func RecordModerationAction(ctx context.Context, action, targetType string) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent("moderation.action", trace.WithAttributes(
		attribute.String("moderation.action", action),
		attribute.String("moderation.target_type", targetType),
	))
}
