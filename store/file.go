package store

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	cacheerrors "github.com/gozephyr/nscache/errors"
)

// FileConfig holds filesystem surface configuration.
type FileConfig struct {
	// Directory is the base directory for stored entries.
	Directory string

	// FileExtension is the extension for data files.
	FileExtension string

	// Compress enables gzip compression of stored values.
	Compress bool
}

// DefaultFileConfig returns a FileConfig with sensible defaults.
func DefaultFileConfig() *FileConfig {
	return &FileConfig{
		Directory:     "cache",
		FileExtension: ".cache",
	}
}

// File is a Surface backed by one file per key. Writes go through a
// temporary file and an atomic rename so readers never observe partial
// values.
type File struct {
	config *FileConfig
	mu     sync.RWMutex
}

// NewFile creates a filesystem surface rooted at config.Directory, creating
// the directory if needed.
func NewFile(config *FileConfig) (*File, error) {
	if config == nil {
		config = DefaultFileConfig()
	}
	if err := os.MkdirAll(config.Directory, 0o755); err != nil {
		return nil, cacheerrors.Wrap("store.NewFile", "", err)
	}
	return &File{config: config}, nil
}

// Get implements Surface.
func (f *File) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, cacheerrors.Wrap("store.File.Get", key, err)
	}
	if f.config.Compress {
		data, err = gunzip(data)
		if err != nil {
			return nil, false, cacheerrors.Wrap("store.File.Get", key, err)
		}
	}
	return data, true, nil
}

// Set implements Surface.
func (f *File) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	data := value
	if f.config.Compress {
		var err error
		data, err = gzipBytes(value)
		if err != nil {
			return cacheerrors.Wrap("store.File.Set", key, err)
		}
	}

	path := f.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return cacheerrors.Wrap("store.File.Set", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return cacheerrors.Wrap("store.File.Set", key, err)
	}
	return nil
}

// Delete implements Surface.
func (f *File) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path(key)); err != nil && !os.IsNotExist(err) {
		return cacheerrors.Wrap("store.File.Delete", key, err)
	}
	return nil
}

// Keys implements Surface.
func (f *File) Keys(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	files, err := os.ReadDir(f.config.Directory)
	if err != nil {
		return nil, cacheerrors.Wrap("store.File.Keys", "", err)
	}

	var keys []string
	for _, file := range files {
		if file.IsDir() || filepath.Ext(file.Name()) != f.config.FileExtension {
			continue
		}
		key := f.keyFromName(file.Name())
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// Clear implements Surface.
func (f *File) Clear(ctx context.Context, prefix string) error {
	keys, err := f.Keys(ctx, prefix)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := f.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// Close implements Surface.
func (f *File) Close() error {
	return nil
}

// path maps a key to its file path. Keys are query-escaped so separators and
// other unsafe characters cannot break out of the directory.
func (f *File) path(key string) string {
	return filepath.Join(f.config.Directory, url.QueryEscape(key)+f.config.FileExtension)
}

// keyFromName reverses the escaping applied by path.
func (f *File) keyFromName(name string) string {
	escaped := strings.TrimSuffix(name, f.config.FileExtension)
	key, err := url.QueryUnescape(escaped)
	if err != nil {
		return escaped
	}
	return key
}

func gzipBytes(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gunzip(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
