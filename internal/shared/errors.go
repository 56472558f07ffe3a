package shared

import (
	"errors"
	"fmt"
)

var (
	// Configuration errors
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// API and service errors
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrPageLimit          = fmt.Errorf("collection page limit reached")

	// Error taxonomy sentinels, matched by the typed errors below via errors.Is
	ErrTransport = fmt.Errorf("transport error")
	ErrPlatform  = fmt.Errorf("platform error")
	ErrLocalIO   = fmt.Errorf("local I/O error")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// PlatformError is a non-zero code returned in the API response envelope.
type PlatformError struct {
	Code    int
	Message string
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("%d:%s", e.Code, e.Message)
}

func (e *PlatformError) Is(target error) bool {
	return target == ErrPlatform
}

// TransportError covers network, HTTP status and decoding failures.
type TransportError struct {
	Op  string // Operation that failed, e.g. "list segments"
	Err error
}

func (e *TransportError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("transport: %v", e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// LocalIOKind distinguishes file creation failures from write failures.
type LocalIOKind int

const (
	CreateFailed LocalIOKind = iota
	WriteFailed
)

func (k LocalIOKind) String() string {
	switch k {
	case CreateFailed:
		return "could not create"
	case WriteFailed:
		return "could not write"
	default:
		return ""
	}
}

// LocalIOError is a failure writing a downloaded file to disk.
type LocalIOError struct {
	Kind LocalIOKind
	Path string
	Err  error
}

func (e *LocalIOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Kind, e.Path, e.Err)
}

func (e *LocalIOError) Unwrap() error { return e.Err }

func (e *LocalIOError) Is(target error) bool {
	return target == ErrLocalIO
}

// NewTransportError wraps err as a [TransportError] unless it already is one.
func NewTransportError(op string, err error) error {
	var te *TransportError
	if errors.As(err, &te) {
		return err
	}
	return &TransportError{Op: op, Err: err}
}
