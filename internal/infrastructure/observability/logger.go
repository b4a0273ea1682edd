package observability

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

// InitLogger configures the global zerolog logger. Development gets a console
// writer; every other environment logs JSON with caller info. An unparsable
// level falls back to info.
func InitLogger(serviceName, env, level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	parsed, err := zerolog.ParseLevel(level)
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)

	log.Logger = newServiceLogger(os.Stdout, serviceName, env)

	if err != nil {
		log.Warn().Str("level", level).Msg("Unknown LOG_LEVEL, using info")
	}
}

func newServiceLogger(out io.Writer, serviceName, env string) zerolog.Logger {
	if env == "development" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
		return zerolog.New(out).With().Timestamp().Str("service", serviceName).Logger()
	}
	return zerolog.New(out).With().Timestamp().Caller().Str("service", serviceName).Logger()
}

// LoggerFromContext returns the global logger tagged with the trace and span
// of the active span, if any.
func LoggerFromContext(ctx context.Context) *zerolog.Logger {
	logger := log.Logger

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		logger = logger.With().
			Str("trace_id", sc.TraceID().String()).
			Str("span_id", sc.SpanID().String()).
			Logger()
	}

	return &logger
}
