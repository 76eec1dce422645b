package httpserver

import "io"

// Provider is an HTTP server bound to one address.
type Provider interface {
	Start() error
	io.Closer
	// Addr is the listening address once Ready is closed.
	Addr() string
	Ready() <-chan struct{}
}

// Runner starts the server in the background. The channel receives the
// result of Start once it returns: a bind error right away, nil after Close.
type Runner interface {
	Run() <-chan error
}

// RunableProvider is what cmd/server drives: Run in the background, Close on shutdown.
type RunableProvider interface {
	Provider
	Runner
}
