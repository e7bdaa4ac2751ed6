// Package core orchestrates the content packaging pipeline: encrypt,
// chunk, replicate, store pieces, store manifest on the way up, and the
// inverse on the way down, plus multi object archive export and import.
//
// The pipeline owns no storage and no global state: it is assembled
// from an injected content store, digest function and logger, and every
// operation takes a context.
package core

import (
	"io"

	"github.com/oneconcern/datapack/pkg/cas"
	"github.com/oneconcern/datapack/pkg/core/status"
	"github.com/oneconcern/datapack/pkg/fingerprint"
	"go.uber.org/zap"
)

const (
	// DefaultPieceSize is the piece size used when the caller does not set one
	DefaultPieceSize = 2 * 1024 * 1024

	// MaxPieceSize caps the configurable piece size
	MaxPieceSize = 64 * 1024 * 1024

	// DefaultMaxPieces caps the number of pieces a single object may split into
	DefaultMaxPieces = 10000

	// DefaultPieceConcurrency bounds concurrent piece puts and fetches
	DefaultPieceConcurrency = 8
)

// ProgressFunc observes pipeline stage transitions. Purely informational:
// implementations must not rely on it for control flow.
type ProgressFunc func(stage string)

// Pipeline packages objects into a content addressed store and restores
// them, with end to end integrity guarantees.
type Pipeline struct {
	store       cas.Store
	pieceSize   uint64
	maxPieces   uint32
	replication uint32
	concurrency int
	digest      fingerprint.Func
	progress    ProgressFunc
	l           *zap.Logger
}

// New builds a pipeline. A content store is required; everything else
// has defaults. The configuration is validated here so that operations
// never start on a misconfigured pipeline.
func New(opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		pieceSize:   DefaultPieceSize,
		maxPieces:   DefaultMaxPieces,
		replication: 1,
		concurrency: DefaultPieceConcurrency,
		digest:      fingerprint.Bytes,
		l:           zap.NewNop(),
	}
	for _, apply := range opts {
		apply(p)
	}

	if p.store == nil {
		return nil, status.ErrNoContentStore
	}
	if p.pieceSize == 0 || p.pieceSize > MaxPieceSize {
		return nil, status.ErrInvalidPieceSize
	}
	if p.maxPieces == 0 {
		return nil, status.ErrInvalidMaxPieces
	}
	if p.replication == 0 {
		return nil, status.ErrInvalidReplication
	}
	return p, nil
}

// Store exposes the content store backing this pipeline
func (p *Pipeline) Store() cas.Store {
	return p.store
}

func (p *Pipeline) step(stage string) {
	p.l.Debug("pipeline stage", zap.String("stage", stage))
	if p.progress != nil {
		p.progress(stage)
	}
}

// readAllInMemory reads the whole object, guarding against inputs larger
// than the pipeline is willing to hold in memory.
func readAllInMemory(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, status.ErrObjectTooBig
	}
	return data, nil
}
