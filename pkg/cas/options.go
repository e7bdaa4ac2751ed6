package cas

import (
	"github.com/oneconcern/datapack/pkg/storage"
	"go.uber.org/zap"
)

// Option to configure the content addressed store
type Option func(*objectStore)

// Backend specifies the raw backend store. Defaults to a local file
// system store rooted at .datapack/objects.
func Backend(store storage.Store) Option {
	return func(s *objectStore) {
		if store != nil {
			s.backend = store
		}
	}
}

// Prefix sets a prefix on backend keys, carving out a namespace within
// a shared backend. Typically ends with a path separator.
func Prefix(prefix string) Option {
	return func(s *objectStore) {
		s.prefix = prefix
	}
}

// Logger sets a logger for this store
func Logger(l *zap.Logger) Option {
	return func(s *objectStore) {
		if l != nil {
			s.l = l
		}
	}
}

// CacheEntries sets the size of the LRU read cache in number of objects.
// Zero disables caching.
func CacheEntries(entries int) Option {
	return func(s *objectStore) {
		s.cacheEntries = entries
	}
}

// VerifyHash enables content verification against the key on reads
func VerifyHash(enabled bool) Option {
	return func(s *objectStore) {
		s.withVerifyHash = enabled
	}
}
