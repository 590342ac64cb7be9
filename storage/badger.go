package storage

import (
	"errors"

	"github.com/dgraph-io/badger/v4"
)

// BadgerStorage keeps every key in one embedded badger database.
type BadgerStorage struct {
	db *badger.DB
}

// OpenBadger opens (or creates) the database at path.
func OpenBadger(path string) (*BadgerStorage, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	return openBadger(opts)
}

// OpenBadgerInMemory opens a database that lives only in memory.
func OpenBadgerInMemory() (*BadgerStorage, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return openBadger(opts)
}

func openBadger(opts badger.Options) (*BadgerStorage, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerStorage{db: db}, nil
}

func (b *BadgerStorage) Get(key string) (value []byte, found bool, err error) {
	err = b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		value, err = item.ValueCopy(nil)
		found = err == nil
		return err
	})
	return
}

func (b *BadgerStorage) Set(key string, value []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}

func (b *BadgerStorage) Remove(key string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

func (b *BadgerStorage) Close() error {
	return b.db.Close()
}
