package mongo

import (
	"github.com/pkg/errors"
)

// ErrConfiguration возвращается, когда обязательные параметры подключения не заданы
var ErrConfiguration = errors.New("mongodb configuration error")

// ConnectionError is the single failure kind of a connection attempt:
// unreachable network, rejected credentials and exceeded timeouts all end up here.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return "mongodb connection failed: " + e.Err.Error()
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// IsConnectionError checks if err is (or wraps) a *ConnectionError.
func IsConnectionError(err error) bool {
	var connErr *ConnectionError
	return errors.As(err, &connErr)
}
