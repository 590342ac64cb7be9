package storage

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"sync"

	"github.com/vibe-audio/vibe/filesystem"
	"github.com/vibe-audio/vibe/util"
	"github.com/metafates/gache"
)

// FileStorage keeps one JSON file per key.
type FileStorage struct {
	dir string

	mu     sync.Mutex
	caches map[string]*gache.Cache[json.RawMessage]
}

// NewFile returns a store writing <dir>/<key>.json.
func NewFile(dir string) *FileStorage {
	return &FileStorage{
		dir:    dir,
		caches: make(map[string]*gache.Cache[json.RawMessage]),
	}
}

func (f *FileStorage) cache(key string) *gache.Cache[json.RawMessage] {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, ok := f.caches[key]
	if !ok {
		c = gache.New[json.RawMessage](&gache.Options{
			Path:       filepath.Join(f.dir, util.SanitizeFilename(key)+".json"),
			FileSystem: &filesystem.GacheFs{},
		})
		f.caches[key] = c
	}
	return c
}

func (f *FileStorage) Get(key string) ([]byte, bool, error) {
	raw, _, err := f.cache(key).Get()
	if err != nil {
		return nil, false, err
	}

	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, false, nil
	}
	return raw, true, nil
}

func (f *FileStorage) Set(key string, value []byte) error {
	return f.cache(key).Set(json.RawMessage(value))
}

// Remove stores null, which Get reports as absent.
func (f *FileStorage) Remove(key string) error {
	return f.cache(key).Set(nil)
}

func (f *FileStorage) Close() error {
	return nil
}
