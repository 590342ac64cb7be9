// Package storage is the key/value store playback state is persisted in.
package storage

import (
	"fmt"
	"path/filepath"
)

// Storage holds opaque JSON documents by key.
type Storage interface {
	// Get returns the stored value and whether the key exists.
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Remove(key string) error
	Close() error
}

// Backends.
const (
	File   = "file"
	Badger = "badger"
)

// Open opens the backend named kind rooted at dir.
func Open(kind, dir string) (Storage, error) {
	switch kind {
	case File, "":
		return NewFile(dir), nil
	case Badger:
		return OpenBadger(filepath.Join(dir, "db"))
	default:
		return nil, fmt.Errorf("unknown storage backend %q", kind)
	}
}
