package diagnostics

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/pkg/errors"

	"github.com/pure-golang/webcore/db/mongo"
	"github.com/pure-golang/webcore/logger"
)

const (
	StatusSuccess = "Success"
	StatusFailed  = "Failed"

	defaultCheckTimeout = 10 * time.Second
)

// ConnectionDetails describes a connection string without its password.
type ConnectionDetails struct {
	Hostname    string `json:"hostname,omitempty"`
	Port        string `json:"port,omitempty"`
	Username    string `json:"username,omitempty"`
	HasPassword bool   `json:"hasPassword"`
	Database    string `json:"database,omitempty"`
	Protocol    string `json:"protocol"`
}

// ParseConnectionDetails reports the first host of uri. SRV strings have no port.
func ParseConnectionDetails(uri string) (ConnectionDetails, error) {
	d, err := mongo.ParseURI(uri)
	if err != nil {
		return ConnectionDetails{}, errors.Wrap(err, "failed to parse connection string")
	}

	host := d.Hosts[0]
	details := ConnectionDetails{
		Hostname:    host,
		Username:    d.Username,
		HasPassword: d.PasswordSet,
		Database:    d.Database,
		Protocol:    d.Scheme,
	}
	if h, port, err := net.SplitHostPort(host); err == nil {
		details.Hostname = h
		details.Port = port
	}
	return details, nil
}

// Pinger is satisfied by *mongo.Provider.
type Pinger interface {
	Ping(ctx context.Context) error
}

// resetter lets a failed provider dial again on the next check.
type resetter interface {
	Reset()
}

// Result is the outcome of one connectivity check.
type Result struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func (r Result) OK() bool {
	return r.Status == StatusSuccess
}

type Checker struct {
	pinger  Pinger
	name    string
	timeout time.Duration
}

// NewChecker creates a Checker; name only labels messages ("local MongoDB").
// A non-positive timeout means 10s.
func NewChecker(name string, pinger Pinger, timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = defaultCheckTimeout
	}
	return &Checker{pinger: pinger, name: name, timeout: timeout}
}

// Check pings the database and never returns an error: failures are part of Result.
func (c *Checker) Check(ctx context.Context) Result {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.pinger.Ping(ctx); err != nil {
		logger.FromContextWithErr(ctx, err).WarnContext(ctx, "database check failed", slog.String("target", c.name))
		if r, ok := c.pinger.(resetter); ok && mongo.IsConnectionError(err) {
			r.Reset()
		}
		return Result{
			Status:  StatusFailed,
			Message: "Failed to connect to " + c.name,
			Error:   err.Error(),
		}
	}

	return Result{
		Status:  StatusSuccess,
		Message: "Successfully connected to " + c.name,
	}
}
