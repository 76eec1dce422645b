package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"

	"github.com/pure-golang/webcore/api"
	"github.com/pure-golang/webcore/db/mongo"
	"github.com/pure-golang/webcore/diagnostics"
	"github.com/pure-golang/webcore/env"
	"github.com/pure-golang/webcore/httpserver"
	"github.com/pure-golang/webcore/httpserver/std"
	"github.com/pure-golang/webcore/logger"
	"github.com/pure-golang/webcore/metrics"
	"github.com/pure-golang/webcore/notification"
	"github.com/pure-golang/webcore/tracing"
	"github.com/pure-golang/webcore/tracing/otlp"
	"github.com/pure-golang/webcore/users"
)

const closeTimeout = 10 * time.Second

type Config struct {
	LocalMongoURI      string        `envconfig:"MONGODB_LOCAL_URI" default:"mongodb://localhost:27017"`
	ResetBaseURL       string        `envconfig:"PASSWORD_RESET_URL" default:"http://localhost:3000/reset-password"`
	DiagnosticsTimeout time.Duration `envconfig:"DIAGNOSTICS_TIMEOUT" default:"5s"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.WithErr(err).Error("server stopped")
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var logCfg logger.Config
	if err := env.InitConfig(&logCfg); err != nil {
		return errors.Wrap(err, "failed to load logger config")
	}
	logger.InitDefault(logCfg)

	var traceCfg otlp.Config
	if err := env.InitConfig(&traceCfg); err != nil {
		return errors.Wrap(err, "failed to load tracing config")
	}
	tp, err := tracing.Init(otlp.NewProviderBuilder(traceCfg))
	if err != nil {
		logger.WithErr(err).Warn("tracing disabled")
	}
	defer tp.Close()

	var metricsCfg metrics.Config
	if err := env.InitConfig(&metricsCfg); err != nil {
		return errors.Wrap(err, "failed to load metrics config")
	}
	metricsCloser, err := metrics.InitDefault(metricsCfg)
	if err != nil {
		return err
	}
	defer metricsCloser.Close()

	var cfg Config
	if err := env.InitConfig(&cfg); err != nil {
		return errors.Wrap(err, "failed to load app config")
	}

	// без MONGODB_URI сервер не стартует
	db, err := mongo.NewDefault()
	if err != nil {
		return err
	}
	defer closeProvider(db)

	local, err := mongo.New(mongo.Config{
		URI:                    cfg.LocalMongoURI,
		ServerSelectionTimeout: 2 * time.Second,
		ConnectTimeout:         2 * time.Second,
		MaxPoolSize:            1,
		RetryReads:             true,
	}, &mongo.Options{Env: env.Current()})
	if err != nil {
		return err
	}
	defer closeProvider(local)

	dispatcher, err := notification.NewDefault()
	if err != nil {
		return err
	}
	slog.Default().Info("email transport selected", slog.String("transport", string(dispatcher.Transport())))

	handler := api.New(api.Options{
		Users:        users.NewRepository(db),
		DatabaseURI:  db.URI(),
		LocalCheck:   diagnostics.NewChecker("local MongoDB", local, cfg.DiagnosticsTimeout),
		Mailer:       dispatcher,
		ResetBaseURL: cfg.ResetBaseURL,
	})

	var srvCfg std.Config
	if err := env.InitConfig(&srvCfg); err != nil {
		return errors.Wrap(err, "failed to load http config")
	}
	return serve(ctx, std.NewDefault(srvCfg, handler.Routes()))
}

// serve runs srv until ctx ends. A server that cannot bind or stops on its
// own ends serve with an error.
func serve(ctx context.Context, srv httpserver.RunableProvider) error {
	done := srv.Run()

	select {
	case <-srv.Ready():
		slog.Default().Info("listening", slog.String("addr", srv.Addr()))
	case err := <-done:
		return errors.Wrap(stoppedErr(err), "webserver failed to start")
	case <-ctx.Done():
		return srv.Close()
	}

	select {
	case err := <-done:
		return errors.Wrap(stoppedErr(err), "webserver stopped")
	case <-ctx.Done():
		return srv.Close()
	}
}

// stoppedErr turns a clean stop nobody asked for into an error.
func stoppedErr(err error) error {
	if err == nil {
		return errors.New("server exited")
	}
	return err
}

func closeProvider(p *mongo.Provider) {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	logger.WithErrIf(p.Close(ctx)).Warn("failed to close mongodb provider", slog.String("uri", p.URI()))
}
