// Package cache keeps downloaded chapter audio on disk so that seeking and replaying do not refetch it.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/vibe-audio/vibe/filesystem"
	"github.com/vibe-audio/vibe/log"
	"github.com/vibe-audio/vibe/where"
)

// TTL is how long a downloaded file may sit untouched before CollectGarbage removes it.
const TTL = 7 * 24 * time.Hour

const tmpSuffix = ".part"

// Media maps source URLs to local files, evicting the least recently used file once full.
// A nil *Media never hits and stores each download as a fresh temporary file.
type Media struct {
	dir     string
	entries *lru.Cache[string, string]
}

// Key derives the file name used for url.
func Key(url string) string {
	hash := sha256.Sum256([]byte(url))
	return hex.EncodeToString(hash[:])
}

// NewMedia opens the cache rooted at dir, holding at most size files.
// Files left over from earlier runs are adopted oldest first.
func NewMedia(dir string, size int) (*Media, error) {
	if size <= 0 {
		return nil, fmt.Errorf("cache size must be positive, got %d", size)
	}

	fs := filesystem.API()
	if err := fs.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, err
	}

	entries, err := lru.NewWithEvict[string, string](size, func(key, path string) {
		if err := fs.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Warnf("cache: remove %s: %s", path, err)
		}
	})
	if err != nil {
		return nil, err
	}

	m := &Media{dir: dir, entries: entries}

	infos, err := fs.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].ModTime().Before(infos[j].ModTime())
	})
	for _, info := range infos {
		if info.IsDir() || strings.HasSuffix(info.Name(), tmpSuffix) {
			continue
		}
		m.entries.Add(info.Name(), filepath.Join(dir, info.Name()))
	}

	return m, nil
}

// Lookup returns the local file holding url, if it is cached.
func (m *Media) Lookup(url string) (string, bool) {
	if m == nil {
		return "", false
	}

	key := Key(url)
	path, ok := m.entries.Get(key)
	if !ok {
		return "", false
	}

	if exists, _ := filesystem.API().Exists(path); !exists {
		m.entries.Remove(key)
		return "", false
	}

	return path, true
}

// Store copies r into the cache under url and returns the file path.
// Readers see either the previous file or the complete new one.
func (m *Media) Store(url string, r io.Reader) (string, error) {
	fs := filesystem.API()
	key := Key(url)

	if m == nil {
		return storeTemp(key, r)
	}

	path := filepath.Join(m.dir, key)

	tmp, err := fs.TempFile(m.dir, key+"-*"+tmpSuffix)
	if err != nil {
		return "", err
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		_ = fs.Remove(tmpPath)
		return "", err
	}
	if err := tmp.Close(); err != nil {
		_ = fs.Remove(tmpPath)
		return "", err
	}

	if err := fs.Rename(tmpPath, path); err != nil {
		_ = fs.Remove(tmpPath)
		return "", err
	}

	m.entries.Add(key, path)
	return path, nil
}

func storeTemp(key string, r io.Reader) (string, error) {
	fs := filesystem.API()
	dir := where.Temp()
	if err := fs.MkdirAll(dir, os.ModePerm); err != nil {
		return "", err
	}

	tmp, err := fs.TempFile(dir, key+"-*")
	if err != nil {
		return "", err
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, r); err != nil {
		_ = fs.Remove(tmp.Name())
		return "", err
	}

	return tmp.Name(), nil
}

// Len returns the number of cached files.
func (m *Media) Len() int {
	if m == nil {
		return 0
	}
	return m.entries.Len()
}

// Purge removes every cached file.
func (m *Media) Purge() {
	if m == nil {
		return
	}
	m.entries.Purge()
}

// CollectGarbage removes files under dir older than TTL along with abandoned partial downloads.
func CollectGarbage(dir string) {
	fs := filesystem.API()
	infos, err := fs.ReadDir(dir)
	if err != nil {
		return
	}

	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		stale := time.Since(info.ModTime()) > TTL
		partial := strings.HasSuffix(info.Name(), tmpSuffix) && time.Since(info.ModTime()) > time.Hour
		if stale || partial {
			_ = fs.Remove(filepath.Join(dir, info.Name()))
		}
	}
}
