package filemap

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Put writes value under key and returns the value it replaced. The
// previous value is not read when Options.WithoutPrevious is set.
func (m *Map[V]) Put(key string, value V) (V, bool, error) {
	var zero V
	if m.closed.Load() {
		return zero, false, ErrClosed
	}
	filePath, err := m.keyPath(key)
	if err != nil {
		return zero, false, err
	}

	var previous V
	var hadPrevious bool
	if !m.options.WithoutPrevious {
		rec, err := m.load(filePath)
		if err != nil {
			return zero, false, fmt.Errorf("put %q: read previous: %w", key, err)
		}
		if rec != nil {
			previous, hadPrevious = rec.value, true
		}
	}

	if err := m.writeFile(filePath, value); err != nil {
		return zero, false, fmt.Errorf("put %q: %w", key, err)
	}
	m.cache.invalidate(filePath)
	return previous, hadPrevious, nil
}

// PutAll writes every entry, stopping at the first failure.
func (m *Map[V]) PutAll(entries map[string]V) error {
	for key, value := range entries {
		if _, _, err := m.Put(key, value); err != nil {
			return err
		}
	}
	return nil
}

// writeFile persists value at filePath through a dot-prefixed temporary
// sibling and an atomic rename. The shared write buffer is held across
// encode and transfer. A temporary stranded by a failure is kept for
// diagnosis.
func (m *Map[V]) writeFile(filePath string, value V) error {
	m.writeMutex.Lock()
	defer m.writeMutex.Unlock()

	m.writeBuffer.Reset()
	if err := m.codec.Encode(&m.writeBuffer, value); err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	dir, name := filepath.Split(filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tempFile, err := os.CreateTemp(dir, "."+name+"-*")
	if err != nil {
		return err
	}
	tempName := tempFile.Name()
	if _, err := tempFile.Write(m.writeBuffer.Bytes()); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write %s: %w", tempName, err)
	}
	if err := tempFile.Sync(); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("sync %s: %w", tempName, err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tempName, err)
	}
	if err := os.Chmod(tempName, m.options.FileMode); err != nil {
		return fmt.Errorf("chmod %s: %w", tempName, err)
	}
	if err := os.Rename(tempName, filePath); err != nil {
		return fmt.Errorf("rename %s: %w", tempName, err)
	}
	return nil
}

// Remove deletes the entry for key and returns the value it held.
func (m *Map[V]) Remove(key string) (V, bool, error) {
	var zero V
	if m.closed.Load() {
		return zero, false, ErrClosed
	}
	filePath, err := m.keyPath(key)
	if err != nil {
		return zero, false, err
	}

	rec, err := m.load(filePath)
	if err != nil {
		return zero, false, fmt.Errorf("remove %q: read previous: %w", key, err)
	}
	if rec == nil {
		return zero, false, nil
	}
	if err := os.Remove(filePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return zero, false, fmt.Errorf("remove %q: %w", key, err)
	}
	return rec.value, true, nil
}

// Clear deletes every entry. Deletions that fail on the first pass get one
// retry after ClearRetryDelay; whatever still fails is left behind without
// error, for a later Clear to pick up.
func (m *Map[V]) Clear() error {
	if m.closed.Load() {
		return ErrClosed
	}
	failed, err := m.removeVisible()
	if err != nil {
		return err
	}
	if len(failed) == 0 {
		return nil
	}

	select {
	case <-time.After(m.options.ClearRetryDelay):
	case <-m.done:
		return nil
	}
	for _, filePath := range failed {
		if err := os.Remove(filePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			m.logger.Debug("clear retry failed", slog.String("path", filePath), slog.String("error", err.Error()))
		}
	}
	return nil
}

func (m *Map[V]) removeVisible() ([]string, error) {
	keys, err := m.Keys()
	if err != nil {
		return nil, fmt.Errorf("clear: %w", err)
	}
	var failed []string
	for _, key := range keys {
		filePath := filepath.Join(m.dir, filepath.FromSlash(key))
		if err := os.Remove(filePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			failed = append(failed, filePath)
		}
	}
	return failed, nil
}
