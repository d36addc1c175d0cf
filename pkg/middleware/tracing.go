package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/tracing"
)

// Tracing opens a server span per request, continuing any W3C trace context
// the caller sent. The span is renamed to the chi route pattern once routing
// has run, and tagged with the session and user identity.
func Tracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		propagator := otel.GetTextMapPropagator()
		ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

		attrs := []attribute.KeyValue{
			semconv.HTTPMethod(r.Method),
			semconv.HTTPTarget(r.URL.RequestURI()),
			semconv.HTTPScheme(scheme(r)),
			semconv.UserAgentOriginal(r.UserAgent()),
			attribute.String("http.client_ip", r.RemoteAddr),
		}
		if sid := SessionIDFromContext(ctx); sid != "" {
			attrs = append(attrs, attribute.String("storefront.session_id", sid))
		}
		if uid := UserIDFromContext(ctx); uid != "" {
			attrs = append(attrs, attribute.String("storefront.user_id", uid))
		}
		if cid := logger.CorrelationIDFromContext(ctx); cid != "" {
			attrs = append(attrs, attribute.String("storefront.correlation_id", cid))
		}

		ctx, span := tracing.Tracer("http").Start(ctx, r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attrs...),
		)
		defer span.End()

		propagator.Inject(ctx, propagation.HeaderCarrier(w.Header()))

		sw := newStatusWriter(w)
		next.ServeHTTP(sw, r.WithContext(ctx))

		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				span.SetName(r.Method + " " + pattern)
				span.SetAttributes(semconv.HTTPRoute(pattern))
			}
		}
		span.SetAttributes(semconv.HTTPStatusCode(sw.status))
		if sw.status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(sw.status))
		}
	})
}

// scheme returns "https" for TLS or forwarded-https requests.
func scheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		return proto
	}
	return "http"
}
