package filemap

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"filemap/internal/scan"
)

// watchLoop owns event handling and listener dispatch. It runs until Close
// or until the underlying watcher shuts down; unexpected errors are logged
// and the loop keeps going.
func (m *Map[V]) watchLoop() {
	defer close(m.loopDone)
	for {
		select {
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			m.handleEvent(event)
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			m.handleWatchError(err)
		case <-m.done:
			return
		}
	}
}

// handleEvent classifies one raw event. Hidden names never get past
// eventKey, and the kinds map mechanically: create reads and announces,
// write reads and announces unless content is unchanged, remove and rename
// announce unconditionally. Chmod carries no content change and is dropped.
func (m *Map[V]) handleEvent(event fsnotify.Event) {
	m.counters.events.Add(1)

	key, ok := m.eventKey(event.Name)
	if !ok {
		return
	}
	filePath := filepath.Join(m.dir, filepath.FromSlash(key))

	switch {
	case event.Has(fsnotify.Create):
		m.handleCreate(filePath, key)
	case event.Has(fsnotify.Write):
		m.handleModify(filePath, key)
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		m.handleDelete(filePath, key)
	}
}

// eventKey maps an event path to a map key. Hidden components and paths
// outside the key space report false.
func (m *Map[V]) eventKey(name string) (string, bool) {
	rel, err := filepath.Rel(m.dir, name)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	for _, component := range strings.Split(rel, "/") {
		if scan.Hidden(component) {
			return "", false
		}
	}
	if !m.options.Recursive && strings.Contains(rel, "/") {
		return "", false
	}
	return rel, true
}

func (m *Map[V]) handleCreate(filePath, key string) {
	if info, err := os.Lstat(filePath); err == nil && info.IsDir() {
		if m.options.Recursive {
			m.adoptSubdir(filePath)
		}
		return
	}
	rec, err := m.readFromDisk(filePath)
	if err != nil {
		m.noteReadError("create", filePath, err)
		return
	}
	if rec == nil {
		// Vanished between the event and the read.
		m.counters.skipped.Add(1)
		return
	}
	m.cache.remember(filePath, rec)
	m.counters.inserts.Add(1)
	m.dispatchInsert(key, rec.value)
}

func (m *Map[V]) handleModify(filePath, key string) {
	rec, err := m.readFromDisk(filePath)
	if err != nil {
		m.noteReadError("modify", filePath, err)
		return
	}
	if rec == nil {
		m.counters.skipped.Add(1)
		return
	}
	prior := m.cache.remember(filePath, rec)
	if prior != nil && (prior.sum == rec.sum || m.codec.Equal(prior.value, rec.value)) {
		m.counters.suppressed.Add(1)
		return
	}
	m.counters.updates.Add(1)
	var previous V
	if prior != nil {
		previous = prior.value
	}
	m.dispatchUpdate(key, previous, rec.value)
}

// handleDelete announces the removal even when nothing was cached, so
// deletions of files the map never read still notify.
func (m *Map[V]) handleDelete(filePath, key string) {
	prior := m.cache.forget(filePath)
	m.counters.removes.Add(1)
	var previous V
	if prior != nil {
		previous = prior.value
	}
	m.dispatchRemove(key, previous)
}

// watchSubdirs seeds recursive watches for the subdirectories present when
// the map opens.
func (m *Map[V]) watchSubdirs(root string) error {
	dirs, err := scan.Dirs(root)
	if err != nil {
		return fmt.Errorf("scan %q: %w", root, err)
	}
	for _, dir := range dirs {
		if err := m.watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %q: %w", dir, err)
		}
	}
	return nil
}

// adoptSubdir starts watching a directory that appeared under the root and
// picks up entries created before the watch took effect.
func (m *Map[V]) adoptSubdir(dir string) {
	if err := m.watcher.Add(dir); err != nil {
		m.counters.errors.Add(1)
		if !m.closed.Load() {
			m.logger.Warn("watch subdirectory failed",
				slog.String("path", dir), slog.String("error", err.Error()))
		}
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		m.noteReadError("scan", dir, err)
		return
	}
	for _, entry := range entries {
		if scan.Hidden(entry.Name()) {
			continue
		}
		child := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			m.adoptSubdir(child)
			continue
		}
		key, ok := m.eventKey(child)
		if !ok {
			continue
		}
		m.adoptFile(child, key)
	}
}

// adoptFile is the create path for files discovered by a directory scan
// rather than an event. Content already remembered means a live event got
// there first, so no second insert is announced.
func (m *Map[V]) adoptFile(filePath, key string) {
	rec, err := m.readFromDisk(filePath)
	if err != nil {
		m.noteReadError("adopt", filePath, err)
		return
	}
	if rec == nil {
		m.counters.skipped.Add(1)
		return
	}
	prior := m.cache.remember(filePath, rec)
	if prior != nil && prior.valid && prior.sum == rec.sum {
		m.counters.suppressed.Add(1)
		return
	}
	m.counters.inserts.Add(1)
	m.dispatchInsert(key, rec.value)
}

func (m *Map[V]) noteReadError(operation, filePath string, err error) {
	m.counters.errors.Add(1)
	if m.closed.Load() {
		return
	}
	m.logger.Error("watch read failed",
		slog.String("op", operation), slog.String("path", filePath), slog.String("error", err.Error()))
}

func (m *Map[V]) handleWatchError(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, fsnotify.ErrEventOverflow) {
		m.counters.overflows.Add(1)
		m.logger.Warn("event queue overflowed; changes may have been missed")
		return
	}
	m.counters.errors.Add(1)
	if !m.closed.Load() {
		m.logger.Error("watch error", slog.String("error", err.Error()))
	}
}

func (m *Map[V]) dispatchInsert(key string, value V) {
	for _, listener := range m.listeners.snapshot() {
		m.emit(func() { listener.Insert(key, value) })
	}
}

func (m *Map[V]) dispatchUpdate(key string, previous, value V) {
	for _, listener := range m.listeners.snapshot() {
		m.emit(func() { listener.Update(key, previous, value) })
	}
}

func (m *Map[V]) dispatchRemove(key string, previous V) {
	for _, listener := range m.listeners.snapshot() {
		m.emit(func() { listener.Remove(key, previous) })
	}
}

// emit isolates listener panics so one bad callback cannot kill the loop.
func (m *Map[V]) emit(notify func()) {
	defer func() {
		if recovered := recover(); recovered != nil {
			m.counters.listenerPanics.Add(1)
			m.logger.Error("listener panicked", slog.Any("panic", recovered))
		}
	}()
	notify()
}
