package shard

import (
	"github.com/oneconcern/datapack/pkg/fingerprint"
	"go.uber.org/zap"
)

// DefaultConcurrency bounds the number of in-flight piece store
// operations when the caller does not say otherwise
const DefaultConcurrency = 8

// Option to tune piece storage and reconstruction
type Option func(*settings)

type settings struct {
	concurrency int
	digest      fingerprint.Func
	l           *zap.Logger
}

func defaultSettings(opts []Option) settings {
	s := settings{
		concurrency: DefaultConcurrency,
		digest:      fingerprint.Bytes,
		l:           zap.NewNop(),
	}
	for _, apply := range opts {
		apply(&s)
	}
	return s
}

// Concurrency bounds the number of concurrent piece puts or fetches.
// Values below 1 reset the default.
func Concurrency(n int) Option {
	return func(s *settings) {
		if n < 1 {
			n = DefaultConcurrency
		}
		s.concurrency = n
	}
}

// Digest injects the checksum function used for integrity checks
func Digest(digest fingerprint.Func) Option {
	return func(s *settings) {
		if digest != nil {
			s.digest = digest
		}
	}
}

// Logger injects a logger
func Logger(l *zap.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.l = l
		}
	}
}
