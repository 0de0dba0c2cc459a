package observability

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName = "pm-assistant/http"
)

// GetTracer returns the tracer for the HTTP layer.
func GetTracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// SessionAttributes returns common attributes for chat spans.
func SessionAttributes(sessionID string, confirmation bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("chat.session_id", sessionID),
		attribute.Bool("chat.confirmation", confirmation),
	}
}

// StartRequestSpan starts a server span for one HTTP request, continuing any incoming trace.
func StartRequestSpan(ctx context.Context, header propagation.TextMapCarrier, method, route string) (context.Context, trace.Span) {
	ctx = otel.GetTextMapPropagator().Extract(ctx, header)
	return GetTracer().Start(ctx, fmt.Sprintf("%s %s", method, route),
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("http.route", route),
		),
	)
}

// Middleware wraps each request in a server span.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		ctx, span := StartRequestSpan(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header), c.Request.Method, route)
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.response.status_code", status))
		if status >= 500 {
			span.SetStatus(codes.Error, fmt.Sprintf("status %d", status))
		}
		if len(c.Errors) > 0 {
			RecordError(span, c.Errors.Last().Err, "handler")
		}
	}
}

// RecordError records an error on a span.
func RecordError(span trace.Span, err error, severity string) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.String("error.severity", severity))
}
