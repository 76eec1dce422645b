package metrics

import (
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Config struct {
	Enabled     bool          `envconfig:"METRICS_ENABLED" default:"false"`
	Host        string        `envconfig:"METRICS_HOST"`
	Port        int           `envconfig:"METRICS_PORT" default:"9090"`
	Namespace   string        `envconfig:"METRICS_NAMESPACE" default:"webcore"`
	ReadTimeout time.Duration `envconfig:"METRICS_READ_TIMEOUT" default:"30s"`
}

// Metrics serves GET /metrics for the prometheus scraper.
type Metrics struct {
	config   Config
	server   *http.Server
	listener net.Listener
}

// InitDefault installs the prometheus meter provider and serves /metrics.
// Disabled metrics give a no-op closer; instruments then stay on the no-op provider.
func InitDefault(config Config) (io.Closer, error) {
	if !config.Enabled {
		return io.NopCloser(nil), nil
	}

	provider := New(config)
	if err := provider.Start(); err != nil {
		return nil, errors.Wrap(err, "failed to start metrics server")
	}

	return provider, nil
}

func New(config Config) *Metrics {
	return &Metrics{
		config: config,
		server: NewHttpServer(config),
	}
}

// Start binds the listener first, so a busy port fails here and not in the background.
func (s *Metrics) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", s.server.Addr)
	}

	if err := InitPrometheus(s.config.Namespace); err != nil {
		_ = ln.Close()
		return errors.Wrap(err, "failed to init prometheus")
	}
	s.listener = ln

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Default().Warn("metrics server failed", "error", err.Error())
		}
	}()

	slog.Default().Info("metrics server started", "addr", ln.Addr().String())
	return nil
}

// Addr returns the bound address once started.
func (s *Metrics) Addr() string {
	if s.listener == nil {
		return s.server.Addr
	}
	return s.listener.Addr().String()
}

func (s *Metrics) Close() error {
	return errors.Wrap(s.server.Close(), "failed to close metrics")
}

func NewHttpServer(conf Config) *http.Server {
	r := http.NewServeMux()
	r.Handle("GET /metrics", promhttp.Handler())
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", conf.Host, conf.Port),
		Handler:           r,
		ReadTimeout:       conf.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
