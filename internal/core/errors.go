package core

import "errors"

var (
	// ErrEmployeeNotFound is returned by stores when no employee has the requested id.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrStreamRead marks a failure to open or read the import stream.
	// It aborts the whole import; batches already committed stay committed.
	ErrStreamRead = errors.New("failed to read input stream")

	// ErrTooManyImports is returned when every import slot stays busy for the
	// limiter's wait timeout. Clients should retry after a short delay.
	ErrTooManyImports = errors.New("too many concurrent imports, please try again later")
)
