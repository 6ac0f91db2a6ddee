package cache

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const fileExt = ".cache"

// FileOption configures the file cache.
type FileOption func(*fileOptions)

type fileOptions struct {
	now        func() time.Time
	defaultTTL time.Duration
	perm       fs.FileMode
}

// WithFileDefaultTTL sets the expiry used when Set is called with a zero TTL.
// Default: 1 hour.
func WithFileDefaultTTL(d time.Duration) FileOption {
	return func(o *fileOptions) {
		o.defaultTTL = d
	}
}

// WithFileClock overrides the time source used for expiry.
func WithFileClock(now func() time.Time) FileOption {
	return func(o *fileOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// envelope is the on-disk record.
type envelope struct {
	Expires int64           `json:"expires"` // unix nanoseconds, 0 = never
	Data    json.RawMessage `json:"data"`
}

// File stores one file per key in a directory. Writes go through a
// temporary file and a rename, so a reader never sees a partial entry;
// concurrent writers of one key race and the last rename wins.
type File[V any] struct {
	marshaler Marshaler[V]
	opts      *fileOptions
	dir       string
}

// NewFile creates a file-backed cache rooted at dir, creating it if needed.
// A nil Marshaler selects JSON.
func NewFile[V any](dir string, m Marshaler[V], opts ...FileOption) (*File[V], error) {
	o := &fileOptions{now: time.Now, defaultTTL: time.Hour, perm: 0o750}
	for _, opt := range opts {
		opt(o)
	}
	if m == nil {
		m = jsonMarshaler[V]{}
	}
	if err := os.MkdirAll(dir, o.perm); err != nil {
		return nil, errors.Join(ErrUnavailable, err)
	}
	return &File[V]{marshaler: m, opts: o, dir: dir}, nil
}

// Dir returns the cache directory.
func (f *File[V]) Dir() string {
	return f.dir
}

// Get retrieves a value by key. Expired files are removed on read.
func (f *File[V]) Get(_ context.Context, key string) (V, error) {
	var zero V

	env, err := f.read(f.path(key))
	if err != nil {
		return zero, err
	}
	if env.expired(f.opts.now()) {
		_ = os.Remove(f.path(key))
		return zero, ErrNotFound
	}
	return f.marshaler.Unmarshal(env.Data)
}

// Set stores a value with the given TTL.
func (f *File[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	data, err := f.marshaler.Marshal(value)
	if err != nil {
		return err
	}

	env := envelope{Data: data}
	if exp := resolveTTL(f.opts.now(), ttl, f.opts.defaultTTL); !exp.IsZero() {
		env.Expires = exp.UnixNano()
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return errors.Join(ErrMarshal, err)
	}

	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path(key))
}

// Delete removes a key.
func (f *File[V]) Delete(_ context.Context, key string) error {
	if err := os.Remove(f.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Has checks whether a key exists and has not expired.
func (f *File[V]) Has(ctx context.Context, key string) (bool, error) {
	env, err := f.read(f.path(key))
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !env.expired(f.opts.now()), nil
}

// Clear removes every cache file in the directory.
func (f *File[V]) Clear(_ context.Context) error {
	_, err := f.sweep(func(string) bool { return true })
	return err
}

// Purge removes expired cache files and returns how many were dropped.
func (f *File[V]) Purge(_ context.Context) (int, error) {
	now := f.opts.now()
	return f.sweep(func(path string) bool {
		env, err := f.read(path)
		return err == nil && env.expired(now)
	})
}

// Close is a no-op for the file cache.
func (f *File[V]) Close() error {
	return nil
}

func (f *File[V]) sweep(match func(path string) bool) (int, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return 0, err
	}

	n := 0
	var errs []error
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) {
			continue
		}
		path := filepath.Join(f.dir, e.Name())
		if !match(path) {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		n++
	}
	return n, errors.Join(errs...)
}

func (f *File[V]) read(path string) (envelope, error) {
	var env envelope

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return env, ErrNotFound
		}
		return env, err
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return env, errors.Join(ErrUnmarshal, err)
	}
	return env, nil
}

func (f *File[V]) path(key string) string {
	return filepath.Join(f.dir, url.PathEscape(key)+fileExt)
}

func (e envelope) expired(now time.Time) bool {
	return e.Expires != 0 && now.UnixNano() >= e.Expires
}

var (
	_ Cache[any] = (*File[any])(nil)
	_ Purger     = (*File[any])(nil)
)
