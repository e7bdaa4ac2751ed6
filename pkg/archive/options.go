package archive

import (
	"github.com/oneconcern/datapack/pkg/fingerprint"
	"go.uber.org/zap"
)

// DefaultConcurrency bounds concurrent object fetches during Build
const DefaultConcurrency = 8

// Option to tune archive building and verification
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

// Concurrency bounds the number of concurrent object fetches
func Concurrency(n int) Option {
	return func(s *settings) {
		if n < 1 {
			n = DefaultConcurrency
		}
		s.concurrency = n
	}
}

// Digest injects the checksum function used for the metadata checksum
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

// EncodeOption alters how an archive is written out
type EncodeOption func(*encodeSettings)

type encodeSettings struct {
	compressed bool
}

// Compressed gzip wraps the entire encoded stream
func Compressed() EncodeOption {
	return func(s *encodeSettings) {
		s.compressed = true
	}
}
