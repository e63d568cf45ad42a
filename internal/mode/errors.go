package mode

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Surface names the backend a call was made against.
type Surface string

const (
	SurfaceAPI Surface = "api"
	SurfaceDB  Surface = "db"
)

// ConnectionError is a transport or connection failure on the live path.
//
// It is the only error the Controller falls back on. Errors the live
// backend reports over a working connection (an HTTP status, a SQL syntax
// error) are not ConnectionErrors.
type ConnectionError struct {
	// Surface is the backend that could not be reached.
	Surface Surface

	// Op is the facade operation that was attempted.
	Op string

	// Err is the underlying transport error.
	Err error
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s connection failed during %s: %v", e.Surface, e.Op, e.Err)
}

// Unwrap returns the underlying transport error.
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// NewConnectionError wraps err as a ConnectionError. A nil err stays nil.
func NewConnectionError(surface Surface, op string, err error) error {
	if err == nil {
		return nil
	}
	return &ConnectionError{Surface: surface, Op: op, Err: err}
}

// IsConnectionError returns true if err is or wraps a ConnectionError.
// Uses errors.As to handle wrapped errors.
func IsConnectionError(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}

// IsNetworkError reports whether err is or wraps a net.Error, such as a
// refused dial or an i/o timeout. Context cancellation by the caller is not
// a network error.
func IsNetworkError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
