// Copyright © 2018 One Concern

// Package bdgr implements the storage.Store interface over an embedded
// badger key/value database.
package bdgr

import (
	"bytes"
	"context"
	"io"
	"sync"

	badger "github.com/dgraph-io/badger/v3"
	"github.com/oneconcern/datapack/pkg/storage"
	"github.com/oneconcern/datapack/pkg/storage/status"
	"go.uber.org/zap"
)

// Option configures the badger backed store
type Option func(*Store)

// Logger injects a logger into the store
func Logger(l *zap.Logger) Option {
	return func(b *Store) {
		if l != nil {
			b.l = l
		}
	}
}

// InMemory keeps the whole database in memory, without any file backing.
// Intended for tests.
func InMemory(enabled bool) Option {
	return func(b *Store) {
		b.inMemory = enabled
	}
}

// New opens a badger backed store rooted at directory.
//
// The caller owns the returned store and must Close() it to release the
// database lock.
func New(directory string, opts ...Option) (*Store, error) {
	b := &Store{
		dir: directory,
		l:   zap.NewNop(),
	}
	for _, apply := range opts {
		apply(b)
	}
	var badgerOpts badger.Options
	if b.inMemory {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		badgerOpts = badger.DefaultOptions(directory)
	}
	badgerOpts = badgerOpts.WithLoggingLevel(badger.ERROR)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, err
	}
	b.db = db
	b.l.Debug("opened badger store", zap.String("dir", b.String()))
	return b, nil
}

var _ storage.Store = &Store{}

// Store is a badger backed implementation of storage.Store
type Store struct {
	dir      string
	inMemory bool
	db       *badger.DB
	close    sync.Once
	l        *zap.Logger
}

// Close releases the underlying database. Safe to call more than once.
func (b *Store) Close() error {
	var err error
	b.close.Do(func() {
		err = b.db.Close()
	})
	return err
}

func (b *Store) String() string {
	if b.inMemory {
		return "badger@memory"
	}
	return "badger@" + b.dir
}

func badgerRewriteError(err error) error {
	switch err {
	case badger.ErrKeyNotFound:
		return status.ErrNotFound.Wrap(err)
	case badger.ErrEmptyKey:
		return status.ErrInvalidResource.Wrap(err)
	default:
		return err
	}
}

func (b *Store) Has(ctx context.Context, key string) (bool, error) {
	err := b.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(key))
		return err
	})
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return false, nil
		}
		return false, badgerRewriteError(err)
	}
	return true, nil
}

func (b *Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, badgerRewriteError(err)
	}
	return io.NopCloser(bytes.NewReader(value)), nil
}

func (b *Store) Put(ctx context.Context, key string, source io.Reader, exclusive bool) error {
	value, err := io.ReadAll(io.LimitReader(source, storage.MaxObjectSizeInMemory+1))
	if err != nil {
		return err
	}
	if len(value) > storage.MaxObjectSizeInMemory {
		return status.ErrObjectTooBig
	}
	return b.db.Update(func(txn *badger.Txn) error {
		if exclusive {
			_, err := txn.Get([]byte(key))
			if err == nil {
				return status.ErrExists
			}
			if err != badger.ErrKeyNotFound {
				return badgerRewriteError(err)
			}
		}
		return txn.Set([]byte(key), value)
	})
}

func (b *Store) Delete(ctx context.Context, key string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return badgerRewriteError(txn.Delete([]byte(key)))
	})
}

func (b *Store) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	err := b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: false})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func (b *Store) Clear(ctx context.Context) error {
	return b.db.DropAll()
}
