package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.12.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/pure-golang/webcore/logger"
)

const instrumentation = "github.com/pure-golang/webcore/httpserver/middleware"

// unmatchedRoute labels requests no mux pattern claimed, keeping metric cardinality bounded.
const unmatchedRoute = "unmatched"

var (
	meter = otel.GetMeterProvider().Meter(instrumentation)
	// nolint:errcheck // Sync OpenTelemetry instruments never return errors
	requestsCount, _       = meter.Int64Counter("http.request_count")
	requestTimeHist, _     = meter.Int64Histogram("http.request_time", metric.WithUnit("ms"))
	responseBodyLenHist, _ = meter.Int64Histogram("http.response_body_len", metric.WithUnit("By"))
	tracer                 = otel.Tracer(instrumentation)
)

// Monitoring traces incoming http requests, records request metrics and
// attaches a request logger to the context. Credentials and bodies are never
// copied into spans: the API carries emails and reset links.
func Monitoring(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

		ctx, span := tracer.Start(ctx, r.Method+" "+r.URL.Path, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		traceID := span.SpanContext().TraceID().String()
		w.Header().Set("X-Trace-Id", traceID)

		log := logger.FromContext(ctx).With(
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("trace_id", traceID),
		)

		srw := newStatefulRespWriter(w)
		req := r.WithContext(logger.NewContext(ctx, log))
		next.ServeHTTP(srw, req)

		// ServeMux fills Pattern on the request it was given
		route := req.Pattern
		if route == "" {
			route = unmatchedRoute
		}
		status := srw.Status()
		elapsed := time.Since(start)

		attrs := semconv.HTTPServerAttributesFromHTTPRequest("webserver", route, r)
		attrs = append(attrs,
			attribute.String("http.route", route),
			attribute.Int("http.response.status", status),
			attribute.Int("http.response.body_len", srw.written),
			attribute.Bool("http.request.authorization_present", r.Header.Get("Authorization") != ""),
			attribute.String("http.request.header.User-Agent", r.UserAgent()),
		)
		span.SetAttributes(attrs...)

		labels := metric.WithAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.route", route),
			attribute.Int("http.response.code", status),
		)
		requestsCount.Add(ctx, 1, labels)
		requestTimeHist.Record(ctx, elapsed.Milliseconds(), labels)
		responseBodyLenHist.Record(ctx, int64(srw.written), labels)

		log.DebugContext(ctx, "request handled",
			slog.Int("status", status),
			slog.Duration("elapsed", elapsed),
		)

		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
			return
		}
		span.SetStatus(codes.Ok, "")
	})
}

// statefulRespWriter remembers the sent status and counts body bytes.
type statefulRespWriter struct {
	http.ResponseWriter
	status  int
	written int
}

func newStatefulRespWriter(w http.ResponseWriter) *statefulRespWriter {
	return &statefulRespWriter{ResponseWriter: w}
}

func (w *statefulRespWriter) WriteHeader(status int) {
	if w.status != 0 {
		return
	}
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statefulRespWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.written += n
	return n, err
}

// Status returns the sent status, 200 when the handler wrote nothing.
func (w *statefulRespWriter) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// Written reports whether the status line went out.
func (w *statefulRespWriter) Written() bool {
	return w.status != 0
}

func (w *statefulRespWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *statefulRespWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
