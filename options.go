package filemap

import (
	"io/fs"
	"log/slog"
	"time"
)

const (
	defaultClearRetryDelay = 100 * time.Millisecond
	defaultFileMode        = fs.FileMode(0o644)
)

// Options controls map behavior. The zero value is ready to use.
type Options struct {
	// Logger receives watch-loop diagnostics. Defaults to slog.Default().
	Logger *slog.Logger

	// WithoutPrevious makes Put skip reading the value it replaces. Put then
	// always reports no previous value. Use it when callers do not need the
	// old value and the extra read is unwelcome.
	WithoutPrevious bool

	// Recursive extends the key space to nested files. Keys become
	// slash-separated relative paths, subdirectories are watched as they
	// appear, and enumeration walks the whole tree.
	Recursive bool

	// ClearRetryDelay is the pause before Clear retries deletions that
	// failed on the first pass. Defaults to 100ms.
	ClearRetryDelay time.Duration

	// FileMode is applied to written entries. Defaults to 0644.
	FileMode fs.FileMode
}

func (options Options) withDefaults() Options {
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if options.ClearRetryDelay <= 0 {
		options.ClearRetryDelay = defaultClearRetryDelay
	}
	if options.FileMode == 0 {
		options.FileMode = defaultFileMode
	}
	return options
}
