package filemap

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/zeebo/blake3"

	"filemap/codec"
	"filemap/internal/scan"
)

// Map is a key/value view over the files of a single directory.
//
// All methods are safe for concurrent use. Read operations keep working
// after Close; mutations fail with ErrClosed.
type Map[V any] struct {
	dir     string
	codec   codec.Codec[V]
	options Options
	logger  *slog.Logger

	cache     *recordCache[V]
	listeners listenerSet[V]

	watcher  *fsnotify.Watcher
	done     chan struct{}
	loopDone chan struct{}

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error

	// Encoding and decoding each reuse one buffer; the mutexes serialize
	// encodes against encodes and decodes against decodes.
	writeMutex  sync.Mutex
	writeBuffer bytes.Buffer
	readMutex   sync.Mutex
	readBuffer  bytes.Buffer

	counters counters
}

// New opens the map over dir with default options, creating the directory
// if needed.
func New[V any](dir string, valueCodec codec.Codec[V]) (*Map[V], error) {
	return NewWithOptions(dir, valueCodec, Options{})
}

// NewWithOptions opens the map over dir, creating the directory if needed,
// and starts its watch loop.
func NewWithOptions[V any](dir string, valueCodec codec.Codec[V], options Options) (*Map[V], error) {
	if valueCodec == nil {
		return nil, errors.New("codec is required")
	}
	options = options.withDefaults()

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", dir, err)
	}
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return nil, fmt.Errorf("create %q: %w", absDir, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("start watcher: %w", err)
	}
	if err := watcher.Add(absDir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %q: %w", absDir, err)
	}

	m := &Map[V]{
		dir:      absDir,
		codec:    valueCodec,
		options:  options,
		logger:   options.Logger.With(slog.String("dir", absDir)),
		cache:    newRecordCache[V](),
		watcher:  watcher,
		done:     make(chan struct{}),
		loopDone: make(chan struct{}),
	}

	if options.Recursive {
		if err := m.watchSubdirs(absDir); err != nil {
			_ = watcher.Close()
			return nil, err
		}
	}

	go m.watchLoop()
	return m, nil
}

// Dir returns the absolute directory backing the map.
func (m *Map[V]) Dir() string {
	return m.dir
}

// Close stops the watch loop, waits for in-flight dispatch to finish, and
// drops the record cache. It is idempotent. Calling it from a listener
// callback deadlocks on the loop join.
func (m *Map[V]) Close() error {
	m.closeOnce.Do(func() {
		m.closed.Store(true)
		close(m.done)
		m.closeErr = m.watcher.Close()
		<-m.loopDone
		m.cache.reset()
	})
	return m.closeErr
}

// RegisterListener subscribes listener to change notifications. The
// returned registration removes it again.
func (m *Map[V]) RegisterListener(listener Listener[V]) *Registration {
	return m.listeners.register(listener)
}

// Get returns the value stored under key. Absent keys, and names the map
// never exposes, report false without error.
func (m *Map[V]) Get(key string) (V, bool, error) {
	var zero V
	if validateKey(key, m.options.Recursive) != nil {
		return zero, false, nil
	}
	rec, err := m.load(filepath.Join(m.dir, filepath.FromSlash(key)))
	if err != nil {
		return zero, false, fmt.Errorf("get %q: %w", key, err)
	}
	if rec == nil {
		return zero, false, nil
	}
	return rec.value, true, nil
}

// Contains reports whether key currently has a backing file.
func (m *Map[V]) Contains(key string) (bool, error) {
	if validateKey(key, m.options.Recursive) != nil {
		return false, nil
	}
	info, err := os.Stat(filepath.Join(m.dir, filepath.FromSlash(key)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("contains %q: %w", key, err)
	}
	return !info.IsDir(), nil
}

// ContainsValue reports whether any entry decodes to a value equal to value.
func (m *Map[V]) ContainsValue(value V) (bool, error) {
	keys, err := m.Keys()
	if err != nil {
		return false, err
	}
	for _, key := range keys {
		candidate, ok, err := m.Get(key)
		if err != nil {
			return false, err
		}
		if ok && m.codec.Equal(candidate, value) {
			return true, nil
		}
	}
	return false, nil
}

// Len reports the number of entries.
func (m *Map[V]) Len() (int, error) {
	keys, err := m.Keys()
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

// IsEmpty reports whether the map has no entries.
func (m *Map[V]) IsEmpty() (bool, error) {
	length, err := m.Len()
	return length == 0, err
}

// Keys returns the current keys in lexical order.
func (m *Map[V]) Keys() ([]string, error) {
	keys, err := scan.List(m.dir, m.options.Recursive)
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", m.dir, err)
	}
	return keys, nil
}

// Values returns the current values, ordered by key.
func (m *Map[V]) Values() ([]V, error) {
	keys, err := m.Keys()
	if err != nil {
		return nil, err
	}
	values := make([]V, 0, len(keys))
	for _, key := range keys {
		value, ok, err := m.Get(key)
		if err != nil {
			return nil, err
		}
		if ok {
			values = append(values, value)
		}
	}
	return values, nil
}

// Entries returns a copy of the current contents. Entries vanishing during
// the copy are skipped.
func (m *Map[V]) Entries() (map[string]V, error) {
	keys, err := m.Keys()
	if err != nil {
		return nil, err
	}
	entries := make(map[string]V, len(keys))
	for _, key := range keys {
		value, ok, err := m.Get(key)
		if err != nil {
			return nil, err
		}
		if ok {
			entries[key] = value
		}
	}
	return entries, nil
}

// All iterates the current entries in key order. Entries that vanish or
// fail to read mid-iteration are skipped.
func (m *Map[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		keys, err := m.Keys()
		if err != nil {
			return
		}
		for _, key := range keys {
			value, ok, err := m.Get(key)
			if err != nil || !ok {
				continue
			}
			if !yield(key, value) {
				return
			}
		}
	}
}

// load is the read-through path: a valid record whose modification time
// still matches the file is served from the cache; anything else re-reads
// the file and installs a fresh record. Absent files return nil without
// disturbing a stale record, so its value stays available as change-event
// context.
func (m *Map[V]) load(filePath string) (*record[V], error) {
	if rec := m.cache.peek(filePath); rec != nil && rec.valid {
		if info, err := os.Stat(filePath); err == nil && info.ModTime().Equal(rec.modTime) {
			return rec, nil
		}
	}
	rec, err := m.readFromDisk(filePath)
	if err != nil || rec == nil {
		return nil, err
	}
	m.cache.remember(filePath, rec)
	return rec, nil
}

// readFromDisk reads and decodes filePath under the shared read buffer. The
// modification time is taken before the content, so a racing writer causes
// a redundant re-read later, never a stale serve. Missing files and
// directories return nil.
func (m *Map[V]) readFromDisk(filePath string) (*record[V], error) {
	m.readMutex.Lock()
	defer m.readMutex.Unlock()

	file, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, nil
	}

	m.readBuffer.Reset()
	if _, err := m.readBuffer.ReadFrom(file); err != nil {
		return nil, err
	}
	data := m.readBuffer.Bytes()
	sum := blake3.Sum256(data)

	// Identical bytes decode to the prior value; skip the decode.
	if prior := m.cache.peek(filePath); prior != nil && prior.sum == sum {
		return &record[V]{modTime: info.ModTime(), sum: sum, value: prior.value, valid: true}, nil
	}

	value, err := m.codec.Decode(data)
	if err != nil {
		return nil, err
	}
	return &record[V]{modTime: info.ModTime(), sum: sum, value: value, valid: true}, nil
}

// validateKey rejects names that cannot be a file inside the map directory.
// Dot-prefixed components are reserved for temporaries and hidden files.
func validateKey(key string, recursive bool) error {
	if key == "" || key != path.Clean(key) || strings.ContainsRune(key, '\\') {
		return ErrInvalidKey
	}
	if !recursive && strings.ContainsRune(key, '/') {
		return ErrInvalidKey
	}
	if !filepath.IsLocal(filepath.FromSlash(key)) {
		return ErrInvalidKey
	}
	for _, component := range strings.Split(key, "/") {
		if scan.Hidden(component) {
			return ErrReservedKey
		}
	}
	return nil
}

func (m *Map[V]) keyPath(key string) (string, error) {
	if err := validateKey(key, m.options.Recursive); err != nil {
		return "", fmt.Errorf("%w: %q", err, key)
	}
	return filepath.Join(m.dir, filepath.FromSlash(key)), nil
}
