package procfs

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingRecord means the record file is absent or unreadable, usually
	// because the process exited.
	ErrMissingRecord = errors.New("record missing")
	// ErrKeyNotFound means the record was read but does not carry the key.
	ErrKeyNotFound = errors.New("key not found")
	// ErrMalformedRecord means the record has fewer fields than required.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrUnavailable means the inputs were read but the fact cannot be
	// derived from them, such as a zero MemTotal.
	ErrUnavailable = errors.New("value unavailable")
)

// ParseError reports a value that is present but not a valid number.
type ParseError struct {
	Key   string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s value %q: %v", e.Key, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func missing(path string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrMissingRecord, path, err)
}

func malformed(path string, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrMalformedRecord, path, fmt.Sprintf(format, args...))
}
