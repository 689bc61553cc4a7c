package availability

import "errors"

var (
	// ErrUnsupportedCapability aborts a request the configured store cannot
	// serve at all.
	ErrUnsupportedCapability = errors.New("unsupported store capability")
	// ErrDataAccess wraps any failure of the backing store while a request
	// is executed.
	ErrDataAccess = errors.New("data access failure")
	// ErrInvalidFilter rejects a request before any query runs.
	ErrInvalidFilter = errors.New("invalid filter")
)
