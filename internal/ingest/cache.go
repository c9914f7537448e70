package ingest

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// Loader loads datasets through an LRU cache so several columns of the same
// file are parsed once. It is safe for concurrent use.
type Loader struct {
	cache *lru.Cache[string, *Dataset]
	group singleflight.Group
}

// NewLoader creates a loader caching up to maxItems datasets.
func NewLoader(maxItems int) (*Loader, error) {
	if maxItems <= 0 {
		maxItems = 16
	}
	c, err := lru.New[string, *Dataset](maxItems)
	if err != nil {
		return nil, err
	}
	return &Loader{cache: c}, nil
}

// Load returns the cached dataset for path and opt, reading it on a miss.
// Entries are keyed by file size and modification time, so edits invalidate them.
// Cached datasets are shared and must not be modified.
func (l *Loader) Load(path string, opt Options) (*Dataset, error) {
	key, err := cacheKey(path, opt)
	if err != nil {
		return nil, err
	}
	if ds, ok := l.cache.Get(key); ok {
		slog.Debug("dataset cache hit", "path", path)
		return ds, nil
	}
	v, err, _ := l.group.Do(key, func() (any, error) {
		ds, err := Load(path, opt)
		if err != nil {
			return nil, err
		}
		l.cache.Add(key, ds)
		return ds, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Dataset), nil
}

// Len returns the number of cached datasets.
func (l *Loader) Len() int {
	return l.cache.Len()
}

func cacheKey(path string, opt Options) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("stat dataset: %w", err)
	}
	return fmt.Sprintf("%s|%d|%d|%q|%q|%q|%q|%q|%s|%d|%d",
		abs, info.Size(), info.ModTime().UnixNano(),
		opt.Delimiter, opt.DecimalSeparator, opt.ThousandsSeparator,
		strings.Join(opt.NullTokens, "\x00"), opt.ListSeparator,
		opt.SheetName, opt.SheetIndex, opt.MaxRows), nil
}
