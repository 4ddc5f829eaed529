package filemap

import "errors"

var (
	// ErrClosed is returned by mutating operations after Close.
	ErrClosed = errors.New("closed")

	// ErrInvalidKey is returned for keys that do not name a file inside the
	// map directory.
	ErrInvalidKey = errors.New("invalid key")

	// ErrReservedKey is returned for keys with a dot-prefixed component;
	// those names belong to write temporaries and hidden files.
	ErrReservedKey = errors.New("reserved key name")
)
