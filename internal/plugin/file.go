package plugin

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked reports that another process holds the output lock.
var ErrLocked = errors.New("plugin output is locked by another process")

// ReadFile decodes the plugin at path. The file is open only for the
// duration of the call. Open errors are returned wrapped so callers can
// test them with errors.Is(err, fs.ErrNotExist).
func ReadFile(path string, opts ...Option) (*Plugin, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open plugin: %w", err)
	}
	defer file.Close()

	p, err := Decode(file, opts...)
	if err != nil {
		return nil, err
	}
	p.Path = path
	p.Name = filepath.Base(path)
	return p, nil
}

// WriteFile encodes p and replaces path with the result. The encoded bytes
// go to a temporary file in the same directory which is renamed over path,
// so a failed write leaves any previous file untouched. An advisory lock on
// path+".lock" serializes concurrent writers.
func WriteFile(path string, p *Plugin, opts ...Option) (err error) {
	data, err := Marshal(p, opts...)
	if err != nil {
		return err
	}

	lockPath := path + ".lock"
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire output lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("%w: %s", ErrLocked, lockPath)
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lockPath)
	}()

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp output: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp output: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp output: %w", err)
	}
	if err = os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("chmod temp output: %w", err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replace output: %w", err)
	}
	return nil
}
