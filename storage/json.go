package storage

import (
	"encoding/json"
	"fmt"
)

// CorruptError reports a stored value that is not valid JSON for its table.
type CorruptError struct {
	Key string
	Err error
}

func (e CorruptError) Error() string {
	return fmt.Errorf("corrupt value under %s: %w", e.Key, e.Err).Error()
}

func (e CorruptError) Unwrap() error {
	return e.Err
}

// Load decodes the value under key into v. found is false when the key is absent.
func Load(s Storage, key string, v any) (found bool, err error) {
	raw, found, err := s.Get(key)
	if err != nil || !found {
		return false, err
	}

	if err := json.Unmarshal(raw, v); err != nil {
		return true, CorruptError{Key: key, Err: err}
	}
	return true, nil
}

// Save encodes v and stores it under key.
func Save(s Storage, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(key, raw)
}
