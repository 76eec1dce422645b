package notification

import (
	"github.com/pkg/errors"
)

// ErrUnknownTransport is returned when EMAIL_SERVICE names no known transport.
var ErrUnknownTransport = errors.New("unknown email service")

// DispatchError wraps a failure of the selected transport, panics included.
type DispatchError struct {
	Transport Transport
	Err       error
}

func (e *DispatchError) Error() string {
	return string(e.Transport) + ": " + e.Err.Error()
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}
