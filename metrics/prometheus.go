package metrics

import (
	"sync"

	"github.com/pkg/errors"
	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
)

var (
	initMx    sync.Mutex
	installed bool

	runtimeOnce sync.Once
)

// InitPrometheus installs a global otel meter provider backed by the default
// prometheus registry. Only the first call registers an exporter: a second
// exporter on the same registry would duplicate target_info and break scrapes.
// Runtime metrics are started once per process.
func InitPrometheus(namespace string) error {
	initMx.Lock()
	defer initMx.Unlock()
	if installed {
		return nil
	}

	if err := installMeterProvider(namespace, promclient.DefaultRegisterer); err != nil {
		return err
	}
	installed = true

	var runtimeErr error
	runtimeOnce.Do(func() {
		runtimeErr = runtime.Start()
	})
	if runtimeErr != nil {
		return errors.Wrap(runtimeErr, "failed to start runtime")
	}

	return nil
}

func installMeterProvider(namespace string, reg promclient.Registerer) error {
	opts := []prometheus.Option{prometheus.WithRegisterer(reg)}
	if namespace != "" {
		opts = append(opts, prometheus.WithNamespace(namespace))
	}

	exporter, err := prometheus.New(opts...)
	if err != nil {
		return errors.Wrap(err, "failed to create prometheus instance")
	}
	otel.SetMeterProvider(metric.NewMeterProvider(metric.WithReader(exporter)))
	return nil
}
