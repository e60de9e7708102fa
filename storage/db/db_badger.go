package db

import (
	"github.com/dgraph-io/badger"
	"github.com/pkg/errors"
)

var _ DB = (*BadgerDB)(nil)

// BadgerDB ...
type BadgerDB struct {
	db *badger.DB
}

// NewBadgerDB ...
func NewBadgerDB(valueDir string, dir string) (*BadgerDB, error) {
	opts := badger.DefaultOptions

	return NewBadgerDBWithOpts(valueDir, dir, opts)
}

// NewBadgerDBWithOpts ...
func NewBadgerDBWithOpts(valueDir string, dir string, opts badger.Options) (*BadgerDB, error) {
	opts.Dir = dir
	opts.ValueDir = valueDir

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open badger db at %v", dir)
	}
	database := &BadgerDB{
		db: db,
	}
	return database, nil
}

// Get returns nil, nil for a missing key.
func (db *BadgerDB) Get(key []byte) ([]byte, error) {
	var value []byte
	err := db.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(nonNilBytes(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	return value, err
}

func (db *BadgerDB) Has(key []byte) (bool, error) {
	err := db.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(nonNilBytes(key))
		return err
	})
	switch err {
	case nil:
		return true, nil
	case badger.ErrKeyNotFound:
		return false, nil
	default:
		return false, err
	}
}

func (db *BadgerDB) Set(key []byte, value []byte) error {
	key = nonNilBytes(key)
	value = nonNilBytes(value)
	return db.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

// SetSync is Set; badger.DefaultOptions already syncs every write.
func (db *BadgerDB) SetSync(key []byte, value []byte) error {
	return db.Set(key, value)
}

func (db *BadgerDB) Delete(key []byte) error {
	key = nonNilBytes(key)
	return db.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

func (db *BadgerDB) Close() error {
	return db.db.Close()
}
