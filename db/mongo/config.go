package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/mongo/options"
)

// Config содержит параметры подключения к MongoDB
type Config struct {
	URI                    string        `envconfig:"MONGODB_URI" required:"true"`
	Database               string        `envconfig:"MONGODB_DATABASE"` // empty: database from URI path
	AppName                string        `envconfig:"MONGODB_APP_NAME"`
	ServerSelectionTimeout time.Duration `envconfig:"MONGODB_SERVER_SELECTION_TIMEOUT" default:"5s"`
	ConnectTimeout         time.Duration `envconfig:"MONGODB_CONNECT_TIMEOUT" default:"10s"`
	SocketTimeout          time.Duration `envconfig:"MONGODB_SOCKET_TIMEOUT" default:"45s"`
	MaxPoolSize            uint64        `envconfig:"MONGODB_MAX_POOL_SIZE" default:"10"`
	RetryWrites            bool          `envconfig:"MONGODB_RETRY_WRITES" default:"true"`
	RetryReads             bool          `envconfig:"MONGODB_RETRY_READS" default:"true"`
	// LogLevel values: off, info, debug.
	LogLevel string `envconfig:"MONGODB_LOG_LEVEL" default:"off"`
}

// DatabaseName returns the configured database, falling back to the one named in the URI.
func (c Config) DatabaseName() string {
	if c.Database != "" {
		return c.Database
	}
	details, err := ParseURI(c.URI)
	if err != nil {
		return ""
	}
	return details.Database
}

// ClientOptions builds driver options. Retry flags are passed through unmodified.
func (c Config) ClientOptions() *options.ClientOptions {
	opts := options.Client().
		ApplyURI(c.URI).
		SetRetryWrites(c.RetryWrites).
		SetRetryReads(c.RetryReads)

	if c.ServerSelectionTimeout > 0 {
		opts.SetServerSelectionTimeout(c.ServerSelectionTimeout)
	}
	if c.ConnectTimeout > 0 {
		opts.SetConnectTimeout(c.ConnectTimeout)
	}
	if c.SocketTimeout > 0 {
		opts.SetSocketTimeout(c.SocketTimeout)
	}
	if c.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(c.MaxPoolSize)
	}
	if c.AppName != "" {
		opts.SetAppName(c.AppName)
	}

	return opts
}
