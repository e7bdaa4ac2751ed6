package shard

import (
	"context"
	"io"

	"github.com/oneconcern/datapack/pkg/cas"
	"github.com/oneconcern/datapack/pkg/errors"
	"github.com/oneconcern/datapack/pkg/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Reconstruct fetches, verifies and reassembles the object described by
// a manifest.
//
// Primary pieces are fetched concurrently, bounded by the Concurrency
// option. A primary that fails to fetch or does not digest to its
// recorded checksum falls back to its replicas, sequentially and only
// for that piece: the first replica matching the checksum is accepted.
// A piece whose every copy fails yields RecoveryError carrying the
// piece index and the last cause. Without replicas, a store failure on
// the primary propagates as-is; a digest mismatch or an unparseable
// content id fails immediately as unrecoverable.
//
// The reassembled bytes must digest to the manifest's original
// checksum; a mismatch despite every piece verifying individually fails
// with ErrManifestIntegrity.
func Reconstruct(ctx context.Context, m *model.Manifest, store cas.Store, opts ...Option) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	options := defaultSettings(opts)

	if m.PieceCount == 0 {
		if actual := options.digest(nil); actual != m.OriginalChecksum {
			return nil, ErrManifestIntegrity.Wrap(MismatchError{Expected: m.OriginalChecksum, Actual: actual})
		}
		return []byte{}, nil
	}

	verified := make([][]byte, m.PieceCount)
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(options.concurrency)

	for i := uint32(0); i < m.PieceCount; i++ {
		i := i
		group.Go(func() error {
			piece, err := recoverPiece(gctx, m, store, i, options)
			if err != nil {
				return err
			}
			verified[i] = piece
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	object := make([]byte, 0, m.OriginalSize)
	for _, piece := range verified {
		object = append(object, piece...)
	}
	if actual := options.digest(object); actual != m.OriginalChecksum {
		options.l.Error("whole object checksum mismatch",
			zap.Stringer("expected", m.OriginalChecksum),
			zap.Stringer("actual", actual),
		)
		return nil, ErrManifestIntegrity.Wrap(MismatchError{Expected: m.OriginalChecksum, Actual: actual})
	}
	return object, nil
}

// recoverPiece yields verified bytes for primary piece i, trying the
// primary first, then each replica round in order.
func recoverPiece(ctx context.Context, m *model.Manifest, store cas.Store, i uint32, options settings) ([]byte, error) {
	piece, err := fetchVerified(ctx, store, m.Pieces[i], options)
	if err == nil {
		return piece, nil
	}
	if m.ReplicationFactor == 1 {
		// mismatches and unparseable content ids are manifest defects
		if _, mismatch := err.(MismatchError); mismatch || errors.Is(err, ErrInvalidContentID) {
			return nil, RecoveryError{Index: i, Attempts: 1, Err: err}
		}
		// a pure store failure with no replica to try propagates as-is
		return nil, err
	}

	options.l.Debug("primary piece failed, trying replicas",
		zap.Uint32("piece", i),
		zap.Error(err),
	)
	for r := uint32(1); r < m.ReplicationFactor; r++ {
		piece, err = fetchVerified(ctx, store, m.Pieces[r*m.PieceCount+i], options)
		if err == nil {
			options.l.Debug("piece recovered from replica",
				zap.Uint32("piece", i),
				zap.Uint32("round", r),
			)
			return piece, nil
		}
	}
	return nil, RecoveryError{Index: i, Attempts: m.ReplicationFactor, Err: err}
}

// fetchVerified fetches one piece and checks it against its recorded
// checksum. The mismatch carries the primary index of the piece so that
// replica failures report the piece being recovered.
func fetchVerified(ctx context.Context, store cas.Store, info model.PieceInfo, options settings) ([]byte, error) {
	key, err := cas.KeyFromString(info.ContentID)
	if err != nil {
		return nil, ErrInvalidContentID.Wrap(err)
	}
	rdr, err := store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rdr.Close()
	piece, err := io.ReadAll(rdr)
	if err != nil {
		return nil, err
	}
	if actual := options.digest(piece); actual != info.Checksum {
		return nil, MismatchError{Index: info.Index, Expected: info.Checksum, Actual: actual}
	}
	return piece, nil
}
