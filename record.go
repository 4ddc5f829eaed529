package filemap

import (
	"sync"
	"time"
)

// record is one cached entry. Records are immutable once published: state
// changes swap in a fresh record under the cache mutex, so a pointer read
// elsewhere always sees a consistent snapshot.
type record[V any] struct {
	modTime time.Time
	sum     [32]byte
	value   V
	valid   bool
}

type recordCache[V any] struct {
	mutex   sync.Mutex
	records map[string]*record[V]
}

func newRecordCache[V any]() *recordCache[V] {
	return &recordCache[V]{records: make(map[string]*record[V])}
}

// peek returns the current record for path, or nil.
func (cache *recordCache[V]) peek(path string) *record[V] {
	cache.mutex.Lock()
	defer cache.mutex.Unlock()
	return cache.records[path]
}

// remember installs rec as the current record for path and returns the one
// it replaced, if any.
func (cache *recordCache[V]) remember(path string, rec *record[V]) *record[V] {
	cache.mutex.Lock()
	defer cache.mutex.Unlock()
	prior := cache.records[path]
	cache.records[path] = rec
	return prior
}

// invalidate marks the record for path stale without dropping it. The value
// stays available as previous-value context for a later change event; the
// next read goes back to disk.
func (cache *recordCache[V]) invalidate(path string) {
	cache.mutex.Lock()
	defer cache.mutex.Unlock()
	prior, ok := cache.records[path]
	if !ok || !prior.valid {
		return
	}
	stale := *prior
	stale.valid = false
	cache.records[path] = &stale
}

// forget drops the record for path and returns it, if any.
func (cache *recordCache[V]) forget(path string) *record[V] {
	cache.mutex.Lock()
	defer cache.mutex.Unlock()
	prior, ok := cache.records[path]
	if !ok {
		return nil
	}
	delete(cache.records, path)
	return prior
}

// reset drops every record.
func (cache *recordCache[V]) reset() {
	cache.mutex.Lock()
	defer cache.mutex.Unlock()
	clear(cache.records)
}
