package core

import (
	"github.com/oneconcern/datapack/pkg/cas"
	"github.com/oneconcern/datapack/pkg/cipher"
	"github.com/oneconcern/datapack/pkg/fingerprint"
	"go.uber.org/zap"
)

// Option configures a Pipeline at construction
type Option func(*Pipeline)

// ContentStore injects the content store the pipeline packages into.
// Required.
func ContentStore(store cas.Store) Option {
	return func(p *Pipeline) {
		p.store = store
	}
}

// PieceSize sets the chunking window in bytes
func PieceSize(size uint64) Option {
	return func(p *Pipeline) {
		if size > 0 {
			p.pieceSize = size
		}
	}
}

// MaxPieces caps how many pieces one object may split into
func MaxPieces(limit uint32) Option {
	return func(p *Pipeline) {
		if limit > 0 {
			p.maxPieces = limit
		}
	}
}

// ReplicationFactor sets how many full copies of the piece set are
// recorded. 1 means no replication.
func ReplicationFactor(factor uint32) Option {
	return func(p *Pipeline) {
		if factor > 0 {
			p.replication = factor
		}
	}
}

// PieceConcurrency bounds concurrent piece puts and fetches
func PieceConcurrency(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// Digest injects the checksum function used for all integrity checks
func Digest(digest fingerprint.Func) Option {
	return func(p *Pipeline) {
		if digest != nil {
			p.digest = digest
		}
	}
}

// Progress registers a best effort stage observer
func Progress(progress ProgressFunc) Option {
	return func(p *Pipeline) {
		p.progress = progress
	}
}

// Logger injects a logger
func Logger(l *zap.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.l = l
		}
	}
}

// UploadOption alters a single upload
type UploadOption func(*uploadSettings)

type uploadSettings struct {
	encrypt     bool
	algorithm   cipher.Algorithm
	keyMaterial string
}

// Encrypted seals the object before chunking. Empty key material makes
// the cipher generate a key, handed back in UploadResult.KeyMaterial.
func Encrypted(alg cipher.Algorithm, keyMaterial string) UploadOption {
	return func(s *uploadSettings) {
		s.encrypt = true
		s.algorithm = alg
		s.keyMaterial = keyMaterial
	}
}

// DownloadOption alters a single download
type DownloadOption func(*downloadSettings)

type downloadSettings struct {
	keyMaterial string
}

// Key supplies the key material used to decrypt an encrypted object.
// Without it an encrypted object downloads as its sealed envelope bytes.
func Key(keyMaterial string) DownloadOption {
	return func(s *downloadSettings) {
		s.keyMaterial = keyMaterial
	}
}

// ExportOption alters a single export
type ExportOption func(*exportSettings)

type exportSettings struct {
	compressed bool
}

// ExportCompressed gzip wraps the written archive
func ExportCompressed() ExportOption {
	return func(s *exportSettings) {
		s.compressed = true
	}
}

// ImportOption alters a single import
type ImportOption func(*importSettings)

type importSettings struct {
	verifyIDs bool
}

// ImportVerifyIDs checks every re-derived content id against the
// archive metadata and fails the import on mismatch
func ImportVerifyIDs() ImportOption {
	return func(s *importSettings) {
		s.verifyIDs = true
	}
}
