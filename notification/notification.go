package notification

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/pure-golang/webcore/env"
	"github.com/pure-golang/webcore/logger"
	"github.com/pure-golang/webcore/mail"
)

type Options struct {
	// Logger overrides the context logger; nil means logger.Named(ctx, "mail").
	Logger *slog.Logger
	// Factories replaces the builders of known transports (tests).
	Factories map[Transport]Factory
}

// Dispatcher sends messages through the transport selected by Config.
// It is safe for concurrent use: config is read-only after New.
type Dispatcher struct {
	cfg       Config
	logger    *slog.Logger
	factories map[Transport]Factory
}

func New(cfg Config, options *Options) *Dispatcher {
	d := &Dispatcher{
		cfg:       cfg,
		factories: make(map[Transport]Factory, len(defaultFactories)),
	}
	for t, f := range defaultFactories {
		d.factories[t] = f
	}
	if options != nil {
		d.logger = options.Logger
		for t, f := range options.Factories {
			if _, ok := d.factories[t]; ok && f != nil {
				d.factories[t] = f
			}
		}
	}
	return d
}

// NewDefault creates a Dispatcher from EMAIL_* and SMTP_* variables.
func NewDefault() (*Dispatcher, error) {
	var cfg Config
	if err := env.InitConfig(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to init config")
	}
	return New(cfg, nil), nil
}

// Transport returns the configured transport.
func (d *Dispatcher) Transport() Transport {
	return d.cfg.Transport
}

// Send delivers msg and reports success. It never returns an error and never
// panics; failures are logged.
func (d *Dispatcher) Send(ctx context.Context, msg mail.Message) bool {
	err := d.Deliver(ctx, msg)
	if err == nil {
		return true
	}

	l := d.log(ctx).With(slog.String("transport", string(d.cfg.Transport)), slog.String("error", err.Error()))
	var de *DispatchError
	switch {
	case errors.Is(err, ErrUnknownTransport):
		l.ErrorContext(ctx, "unknown email service")
	case errors.As(err, &de):
		l.ErrorContext(ctx, "email sending failed", slog.String("to", msg.To))
	default:
		l.ErrorContext(ctx, "email sending failed")
	}
	return false
}

// Deliver delivers msg through the configured transport. It returns
// ErrUnknownTransport (wrapped) for an unsupported selector, otherwise
// *DispatchError for any transport failure. A panicking transport is
// reported as *DispatchError too.
func (d *Dispatcher) Deliver(ctx context.Context, msg mail.Message) (err error) {
	transport := d.cfg.Transport.Canonical()
	id := uuid.NewString()

	ctx, span := tracer.Start(ctx, "Dispatcher.Deliver", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()
	span.SetAttributes(
		attribute.String("notification.transport", string(transport)),
		attribute.String("notification.dispatch_id", id),
	)

	result := resultSent
	defer func() {
		if r := recover(); r != nil {
			err = &DispatchError{Transport: transport, Err: errors.Errorf("panic: %v", r)}
			result = resultFailed
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		dispatchCount.Add(ctx, 1, metric.WithAttributes(
			attribute.String("transport", string(transport)),
			attribute.String("result", result),
		))
	}()

	factory, ok := d.factories[transport]
	if !ok {
		result = resultUnknown
		return errors.Wrapf(ErrUnknownTransport, "%q", string(d.cfg.Transport))
	}

	l := d.log(ctx).With(slog.String("dispatch_id", id))

	sender, err := factory(d.cfg, l)
	if err != nil {
		result = resultFailed
		return &DispatchError{Transport: transport, Err: errors.Wrap(err, "failed to create sender")}
	}
	defer sender.Close()

	if err := sender.Send(ctx, msg); err != nil {
		result = resultFailed
		return &DispatchError{Transport: transport, Err: err}
	}

	if transport != TransportConsole {
		l.InfoContext(ctx, "email sent", slog.String("transport", string(transport)))
	}
	return nil
}

func (d *Dispatcher) log(ctx context.Context) *slog.Logger {
	if d.logger != nil {
		return d.logger
	}
	return logger.Named(ctx, "mail")
}
