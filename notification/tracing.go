package notification

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentation = "github.com/pure-golang/webcore/notification"

var (
	tracer = otel.Tracer(instrumentation)
	meter  = otel.GetMeterProvider().Meter(instrumentation)
	// nolint:errcheck // Sync OpenTelemetry instruments never return errors
	dispatchCount, _ = meter.Int64Counter("notification.dispatch_count",
		metric.WithDescription("email dispatches by transport and result"))
)

const (
	resultSent    = "sent"
	resultFailed  = "failed"
	resultUnknown = "unknown_transport"
)
