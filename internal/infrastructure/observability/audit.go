package observability

import (
	"context"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
)

// AuditRecord describes a moderation action
type AuditRecord struct {
	Action       string
	SuggestionID string
	ScopeID      string
	Term         string
	Approved     bool
}

// EmitAudit writes a moderation action to the application log and, when an
// OpenTelemetry log pipeline is installed, to the exported audit stream.
func EmitAudit(ctx context.Context, record AuditRecord) {
	LoggerFromContext(ctx).Info().
		Str("audit_action", record.Action).
		Str("suggestion_id", record.SuggestionID).
		Str("scope_id", record.ScopeID).
		Str("term", record.Term).
		Bool("approved", record.Approved).
		Msg("Moderation action")

	var rec otellog.Record
	rec.SetTimestamp(time.Now())
	rec.SetSeverity(otellog.SeverityInfo)
	rec.SetBody(otellog.StringValue(record.Action))
	rec.AddAttributes(
		otellog.String("suggestion.id", record.SuggestionID),
		otellog.String("suggestion.scope_id", record.ScopeID),
		otellog.String("suggestion.term", record.Term),
		otellog.Bool("suggestion.approved", record.Approved),
	)

	global.GetLoggerProvider().Logger(instrumentationName).Emit(ctx, rec)
}
