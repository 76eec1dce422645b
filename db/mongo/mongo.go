package mongo

import (
	"context"
	stdErr "errors"
	"log/slog"
	"sync"

	"github.com/pkg/errors"
	"github.com/pure-golang/webcore/env"
	"github.com/pure-golang/webcore/logger"
	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
	"go.opentelemetry.io/otel/attribute"
)

// ConnectFunc opens a client with the given options and verifies it is usable.
type ConnectFunc func(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error)

// Client is the shared connection handle.
type Client struct {
	*mongo.Client
	database string
}

// DB returns the default database of the handle.
func (c *Client) DB() *mongo.Database {
	return c.Client.Database(c.database)
}

// DatabaseName returns the name DB resolves to.
func (c *Client) DatabaseName() string {
	return c.database
}

type Options struct {
	// Env decides whether the provider is kept in the process-wide slot.
	Env env.Config
	// Monitor overrides the command monitor; otelmongo by default.
	Monitor *event.CommandMonitor
	// Connect overrides how the client is opened; connect + ping by default.
	Connect ConnectFunc
	Logger  *slog.Logger
}

// Provider lazily opens one Client and hands the same result to every caller.
type Provider struct {
	cfg     Config
	connect    ConnectFunc
	disconnect func(ctx context.Context, c *mongo.Client) error
	monitor    *event.CommandMonitor
	logger     *slog.Logger

	mx      sync.Mutex
	attempt *attempt
	// replaced holds attempts dropped by Reset whose client may still be open.
	replaced []*attempt
}

// attempt is a single connection attempt; done is closed once client or err is set.
type attempt struct {
	done   chan struct{}
	client *Client
	err    error
}

// failed reports a finished attempt without a client; nothing to close.
func (a *attempt) failed() bool {
	select {
	case <-a.done:
		return a.client == nil
	default:
		return false
	}
}

// New validates cfg and returns a provider. Nothing is dialed until Get.
// In development the provider comes from the process-wide slot.
func New(cfg Config, options *Options) (*Provider, error) {
	if cfg.URI == "" {
		return nil, errors.Wrap(ErrConfiguration, "please define the MONGODB_URI environment variable")
	}
	if options == nil {
		options = &Options{}
	}

	if options.Env.IsDevelopment() {
		return shared(cfg, options), nil
	}
	return newProvider(cfg, options), nil
}

// NewDefault reads Config and env.Config from the environment.
// A missing MONGODB_URI fails here, before any connection attempt.
func NewDefault() (*Provider, error) {
	var cfg Config
	if err := env.InitConfig(&cfg); err != nil {
		return nil, errors.Wrap(ErrConfiguration, err.Error())
	}
	return New(cfg, &Options{Env: env.Current()})
}

func newProvider(cfg Config, options *Options) *Provider {
	p := &Provider{
		cfg:        cfg,
		connect:    options.Connect,
		disconnect: func(ctx context.Context, c *mongo.Client) error { return c.Disconnect(ctx) },
		monitor:    options.Monitor,
		logger:     options.Logger,
	}
	if p.connect == nil {
		p.connect = connectAndPing
	}
	if p.monitor == nil {
		p.monitor = otelmongo.NewMonitor()
	}
	if p.logger == nil {
		p.logger = logger.Named(context.Background(), "mongo")
	}
	return p
}

// Get returns the shared client. The first call starts the connection attempt;
// every other call waits for that same attempt. A failed attempt stays failed
// until Reset. ctx only bounds the wait, it does not cancel the attempt.
func (p *Provider) Get(ctx context.Context) (*Client, error) {
	a := p.current()

	select {
	case <-a.done:
		return a.client, a.err
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "waiting for mongodb connection")
	}
}

// Ping checks the shared client against the primary.
func (p *Provider) Ping(ctx context.Context) error {
	client, err := p.Get(ctx)
	if err != nil {
		return err
	}

	ctx, span := startSpan(ctx, "Ping")
	defer span.End()

	err = client.Ping(ctx, readpref.Primary())
	recordError(span, err)
	return errors.Wrap(err, "failed to ping mongodb")
}

// Database returns the default database of the shared client.
func (p *Provider) Database(ctx context.Context) (*mongo.Database, error) {
	client, err := p.Get(ctx)
	if err != nil {
		return nil, err
	}
	return client.DB(), nil
}

// URI returns the configured connection string.
func (p *Provider) URI() string {
	return p.cfg.URI
}

// Reset forgets the current attempt so the next Get dials again.
// Callers already waiting on an in-flight attempt still get its result.
// Clients of forgotten attempts, opened before or after Reset, stay usable
// and are disconnected by Close.
func (p *Provider) Reset() {
	p.mx.Lock()
	defer p.mx.Unlock()

	if p.attempt == nil {
		return
	}
	kept := p.replaced[:0]
	for _, a := range p.replaced {
		if !a.failed() {
			kept = append(kept, a)
		}
	}
	if !p.attempt.failed() {
		kept = append(kept, p.attempt)
	}
	p.replaced = kept
	p.attempt = nil
}

// Close disconnects every client this provider opened, including those of
// attempts dropped by Reset, and forgets them.
func (p *Provider) Close(ctx context.Context) error {
	p.mx.Lock()
	attempts := p.replaced
	if p.attempt != nil {
		attempts = append(attempts, p.attempt)
	}
	p.attempt = nil
	p.replaced = nil
	p.mx.Unlock()

	var errs []error
	for _, a := range attempts {
		if err := p.closeAttempt(ctx, a); err != nil {
			errs = append(errs, err)
		}
	}
	return stdErr.Join(errs...)
}

func (p *Provider) closeAttempt(ctx context.Context, a *attempt) error {
	select {
	case <-a.done:
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "waiting for mongodb connection")
	}
	if a.client == nil {
		return nil
	}

	ctx, span := startSpan(ctx, "Disconnect")
	defer span.End()

	if err := p.disconnect(ctx, a.client.Client); err != nil {
		recordError(span, err)
		return errors.Wrap(err, "failed to disconnect from mongodb")
	}
	p.logger.Debug("mongodb connection closed")
	return nil
}

// current returns the in-flight or finished attempt, starting one if needed.
// The attempt is stored before the dial goroutine starts, so concurrent
// callers always converge on it.
func (p *Provider) current() *attempt {
	p.mx.Lock()
	defer p.mx.Unlock()

	if p.attempt == nil {
		p.attempt = &attempt{done: make(chan struct{})}
		go p.dial(p.attempt)
	}
	return p.attempt
}

func (p *Provider) dial(a *attempt) {
	defer close(a.done)

	details, _ := ParseURI(p.cfg.URI)
	var hosts []string
	if details != nil {
		hosts = details.Hosts
	}

	ctx, span := startSpan(context.Background(), "Connect",
		attribute.StringSlice("db.hosts", hosts),
		attribute.Int64("db.max_pool_size", int64(p.cfg.MaxPoolSize)),
	)
	defer span.End()

	p.logger.Info("connecting to mongodb", "hosts", hosts)

	opts := p.cfg.ClientOptions().SetMonitor(p.monitor)
	if lo := loggerOptions(p.cfg.LogLevel, NewLogger(p.logger)); lo != nil {
		opts.SetLoggerOptions(lo)
	}

	client, err := p.connect(ctx, opts)
	if err != nil {
		recordError(span, err)
		p.logger.With("error", err.Error()).Error("mongodb connection failed")
		a.err = &ConnectionError{Err: err}
		return
	}

	recordError(span, nil)
	p.logger.Info("connected to mongodb", "hosts", hosts)
	a.client = &Client{Client: client, database: p.cfg.DatabaseName()}
}

// Проверяем подключение сразу, чтобы ошибка не откладывалась до первого запроса
func connectAndPing(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to mongo.Connect")
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		// nolint:errcheck // the ping error is the one worth reporting
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "failed to ping mongodb")
	}

	return client, nil
}
