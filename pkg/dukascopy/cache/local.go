package cache

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"

	"github.com/LimeMojito/trading-data-stream/pkg/errors"
	"github.com/LimeMojito/trading-data-stream/pkg/logger"
	"github.com/LimeMojito/trading-data-stream/pkg/model"
	"github.com/LimeMojito/trading-data-stream/pkg/stream"
)

// DefaultLocalCacheDirName is created under the home directory when no cache
// directory is configured.
const DefaultLocalCacheDirName = ".dukascopy-cache"

// LocalConfig locates the filesystem cache root.
type LocalConfig struct {
	// Dir overrides the cache root, defaulting to ${HOME}/.dukascopy-cache.
	Dir string `env:"localCacheDir"`
}

// ResolveDir applies the home-directory default.
func (c LocalConfig) ResolveDir() (string, error) {
	if c.Dir != "" {
		return c.Dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.WrapCoded(errors.IoFailureError, err)
	}
	return filepath.Join(home, DefaultLocalCacheDirName), nil
}

// LocalTickCache stores downloaded tick archives on the local filesystem,
// consulting a fallback tier when a path is not present locally.
type LocalTickCache struct {
	*fallbackTickCache
	directory string
	log       logger.Interface
}

// NewLocalTickCache creates a local-cache-first tier rooted at the directory.
func NewLocalTickCache(directory string, fallback TickCache, log logger.Interface) *LocalTickCache {
	if err := os.MkdirAll(directory, 0o755); err == nil {
		log.Debug("local cache root ready", logger.NewField("dir", directory))
	}
	tier := &fsByteTier{root: directory}
	return &LocalTickCache{
		fallbackTickCache: newFallbackTickCache("LocalTickCache", tier, fallback, log),
		directory:         directory,
		log:               log,
	}
}

// CreateBarCache creates a local bar cache backed by the same directory with
// the fallback's bar cache behind it.
func (c *LocalTickCache) CreateBarCache(validate *validator.Validate, source TickSource) BarCache {
	return &localBarCache{
		fallbackBarCache: newFallbackBarCache("LocalBarCache",
			&fsBarTier{root: c.directory},
			c.fallback.CreateBarCache(validate, source),
			c.log),
	}
}

// CacheSizeBytes computes the total size of files currently stored in the
// local cache directory.
func (c *LocalTickCache) CacheSizeBytes() (int64, error) {
	var total int64
	err := filepath.WalkDir(c.directory, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.Type().IsRegular() {
			info, err := entry.Info()
			if err != nil {
				return err
			}
			total += info.Size()
		}
		return nil
	})
	if err != nil {
		return 0, errors.WrapCoded(errors.IoFailureError, err)
	}
	return total, nil
}

// RemoveCache deletes all entries below the cache root. The root directory
// itself is left in place.
func (c *LocalTickCache) RemoveCache() error {
	c.log.Warn("removing cache", logger.NewField("dir", c.directory))
	entries, err := os.ReadDir(c.directory)
	if err != nil {
		return errors.WrapCoded(errors.IoFailureError, err)
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(c.directory, entry.Name())); err != nil {
			return errors.WrapCoded(errors.IoFailureError, err)
		}
	}
	return nil
}

// fsByteTier stores vendor paths verbatim below the cache root.
type fsByteTier struct {
	root string
}

func (t *fsByteTier) Check(_ context.Context, path string) (io.ReadCloser, bool, error) {
	file, err := os.Open(filepath.Join(t.root, filepath.FromSlash(path)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, errors.WrapCoded(errors.IoFailureError, err)
	}
	return file, true, nil
}

func (t *fsByteTier) Exists(_ context.Context, path string) (bool, error) {
	info, err := os.Stat(filepath.Join(t.root, filepath.FromSlash(path)))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.WrapCoded(errors.IoFailureError, err)
	}
	return info.Mode().IsRegular(), nil
}

func (t *fsByteTier) Save(_ context.Context, path string, data []byte) error {
	return atomicWrite(filepath.Join(t.root, filepath.FromSlash(path)), data)
}

// localBarCache persists day-of-bars payloads as JSON files below the root.
type localBarCache struct {
	*fallbackBarCache
}

// fsBarTier reads and writes the JSON bar payloads.
type fsBarTier struct {
	root string
}

func (t *fsBarTier) Check(_ context.Context, barPath string) ([]model.Bar, bool, error) {
	file, err := os.Open(filepath.Join(t.root, filepath.FromSlash(barPath)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, errors.WrapCoded(errors.IoFailureError, err)
	}
	bars, err := decodeBars(file)
	if err != nil {
		return nil, false, err
	}
	return bars, true, nil
}

func (t *fsBarTier) Exists(ctx context.Context, barPath string) (bool, error) {
	return (&fsByteTier{root: t.root}).Exists(ctx, barPath)
}

func (t *fsBarTier) Save(_ context.Context, barPath string, oneDayOfBars []model.Bar) error {
	encoded, err := encodeBars(oneDayOfBars)
	if err != nil {
		return err
	}
	return atomicWrite(filepath.Join(t.root, filepath.FromSlash(barPath)), encoded)
}

// atomicWrite persists with a write-then-rename so readers never observe a
// partial file.
func atomicWrite(target string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return errors.WrapCoded(errors.IoFailureError, err)
	}
	temp, err := os.CreateTemp(filepath.Dir(target), ".tmp-*")
	if err != nil {
		return errors.WrapCoded(errors.IoFailureError, err)
	}
	if _, err := temp.Write(data); err != nil {
		temp.Close()
		os.Remove(temp.Name())
		return errors.WrapCoded(errors.IoFailureError, err)
	}
	if err := temp.Close(); err != nil {
		os.Remove(temp.Name())
		return errors.WrapCoded(errors.IoFailureError, err)
	}
	if err := os.Rename(temp.Name(), target); err != nil {
		os.Remove(temp.Name())
		return errors.WrapCoded(errors.IoFailureError, err)
	}
	return nil
}

func decodeBars(source io.ReadCloser) ([]model.Bar, error) {
	defer source.Close()
	barStream, err := stream.FromJSONArray[model.Bar](source, nil)
	if err != nil {
		return nil, errors.WrapCoded(errors.IoFailureError, err)
	}
	bars, err := stream.Collect(barStream)
	if err != nil {
		return nil, errors.WrapCoded(errors.IoFailureError, err)
	}
	return bars, nil
}

func encodeBars(bars []model.Bar) ([]byte, error) {
	var buffer bytes.Buffer
	if err := stream.WriteSliceAsJSONArray(bars, &buffer); err != nil {
		return nil, errors.WrapCoded(errors.IoFailureError, err)
	}
	return buffer.Bytes(), nil
}
