// Package filemap exposes a filesystem directory as a live key/value map.
//
// Every visible file in the directory is an entry: the file name is the key
// and the decoded contents are the value. Writes go through a dot-prefixed
// temporary sibling followed by an atomic rename, so readers never observe
// partial content. A background loop watches the directory and reports
// external changes to registered listeners as insert, update, and remove
// callbacks carrying previous-value context.
//
// Names with a dot-prefixed component are reserved: they are never exposed
// as keys, never produce events, and are used for write temporaries.
//
// Change notification rides on the platform's filesystem events, so exact
// sequences are OS dependent: one logical change may surface as several raw
// events, and bursts can overflow the kernel queue. Reads stay coherent
// regardless, because cached records are gated by file modification times;
// listeners should treat callbacks as change hints, not a transaction log.
//
// Values returned by the map may be shared with its internal cache. Treat
// them as immutable.
package filemap
