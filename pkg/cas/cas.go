// Package cas implements a content addressed object store on top of a
// raw storage backend.
//
// Keys are the BLAKE2B-512 digest of the stored bytes: writing the same
// content twice lands on the same key, so duplicate writes are cheap
// no-ops and the store deduplicates by construction.
package cas

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"

	lru "github.com/hashicorp/golang-lru"
	blake2b "github.com/minio/blake2b-simd"
	"github.com/oneconcern/datapack/pkg/dlogger"
	"github.com/oneconcern/datapack/pkg/errors"
	"github.com/oneconcern/datapack/pkg/storage"
	"github.com/oneconcern/datapack/pkg/storage/localfs"
	"github.com/oneconcern/datapack/pkg/storage/status"
	"go.uber.org/zap"
)

const (
	// DefaultCacheEntries is the default size of the read cache, in objects
	DefaultCacheEntries = 64

	// maxCacheableObject keeps very large objects out of the read cache
	maxCacheableObject = 8 * 1024 * 1024
)

// PutRes is the result of a Put operation
type PutRes struct {
	// Key is the content address the object lives at
	Key Key

	// Written is the size of the object in bytes
	Written int64

	// Found reports that an object with this key was already stored
	Found bool
}

// Store is a content addressed store: write bytes, get back the key
// they will always live at.
type Store interface {
	String() string
	Has(context.Context, Key) (bool, error)
	Get(context.Context, Key) (io.ReadCloser, error)
	Put(context.Context, io.Reader) (PutRes, error)
	Delete(context.Context, Key) error
	Keys(context.Context) ([]Key, error)
}

// New builds a content addressed store over a raw backend
func New(opts ...Option) (Store, error) {
	s := &objectStore{
		cacheEntries: DefaultCacheEntries,
		l:            dlogger.MustGetLogger(dlogger.LogLevelInfo),
	}
	for _, apply := range opts {
		apply(s)
	}
	if s.backend == nil {
		s.backend = localfs.New(nil)
	}
	if s.cacheEntries > 0 {
		cache, err := lru.New(s.cacheEntries)
		if err != nil {
			return nil, err
		}
		s.cache = cache
	}
	return s, nil
}

type objectStore struct {
	backend        storage.Store
	prefix         string
	cacheEntries   int
	withVerifyHash bool
	cache          *lru.Cache
	l              *zap.Logger
}

func keyForBytes(data []byte) Key {
	return Key(blake2b.Sum512(data))
}

func (s *objectStore) pather(k Key) string {
	return s.prefix + k.String()
}

func (s *objectStore) String() string {
	return "cas@" + s.backend.String()
}

func (s *objectStore) Has(ctx context.Context, key Key) (bool, error) {
	if s.cache != nil && s.cache.Contains(key) {
		return true, nil
	}
	return s.backend.Has(ctx, s.pather(key))
}

func (s *objectStore) Get(ctx context.Context, key Key) (io.ReadCloser, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			s.l.Debug("cas get from cache", zap.Stringer("key", key))
			return io.NopCloser(bytes.NewReader(cached.([]byte))), nil
		}
	}
	rdr, err := s.backend.Get(ctx, s.pather(key))
	if err != nil {
		return nil, err
	}
	defer rdr.Close()
	buf, err := readAllInMemory(rdr)
	if err != nil {
		return nil, err
	}
	if s.withVerifyHash {
		if actual := keyForBytes(buf); actual != key {
			return nil, ErrCorrupted.Wrap(fmt.Errorf("key %s, content hashes to %s", key, actual))
		}
	}
	s.maybeCache(key, buf)
	return io.NopCloser(bytes.NewReader(buf)), nil
}

func (s *objectStore) Put(ctx context.Context, source io.Reader) (PutRes, error) {
	buf, err := readAllInMemory(source)
	if err != nil {
		return PutRes{}, err
	}
	key := keyForBytes(buf)
	res := PutRes{
		Key:     key,
		Written: int64(len(buf)),
	}

	pth := s.pather(key)
	found, err := s.backend.Has(ctx, pth)
	if err != nil {
		return PutRes{}, err
	}
	if found {
		s.l.Debug("cas put found duplicate", zap.Stringer("key", key))
		res.Found = true
		return res, nil
	}
	if err := s.backend.Put(ctx, pth, bytes.NewReader(buf), storage.IfNotPresent); err != nil {
		if errors.Is(err, status.ErrExists) {
			// raced with another writer of the same content
			res.Found = true
			return res, nil
		}
		return PutRes{}, err
	}
	s.maybeCache(key, buf)
	s.l.Debug("cas put", zap.Stringer("key", key), zap.Int64("size", res.Written))
	return res, nil
}

func (s *objectStore) Delete(ctx context.Context, key Key) error {
	if s.cache != nil {
		s.cache.Remove(key)
	}
	return s.backend.Delete(ctx, s.pather(key))
}

// Keys lists the keys of all stored objects, in lexical order. Backend
// entries that do not parse as content keys are skipped.
func (s *objectStore) Keys(ctx context.Context) ([]Key, error) {
	paths, err := s.backend.Keys(ctx)
	if err != nil {
		return nil, err
	}
	keys := make([]Key, 0, len(paths))
	for _, pth := range paths {
		if len(pth) < len(s.prefix) || pth[:len(s.prefix)] != s.prefix {
			continue
		}
		key, err := KeyFromString(pth[len(s.prefix):])
		if err != nil {
			s.l.Debug("cas keys: skipping foreign entry", zap.String("path", pth))
			continue
		}
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare(keys[i][:], keys[j][:]) < 0
	})
	return keys, nil
}

func (s *objectStore) maybeCache(key Key, buf []byte) {
	if s.cache == nil || len(buf) > maxCacheableObject {
		return
	}
	s.cache.Add(key, buf)
}

func readAllInMemory(source io.Reader) ([]byte, error) {
	buf, err := io.ReadAll(io.LimitReader(source, storage.MaxObjectSizeInMemory+1))
	if err != nil {
		return nil, err
	}
	if len(buf) > storage.MaxObjectSizeInMemory {
		return nil, status.ErrObjectTooBig
	}
	return buf, nil
}
