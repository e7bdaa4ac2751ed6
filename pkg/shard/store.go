package shard

import (
	"bytes"
	"context"

	"github.com/oneconcern/datapack/pkg/cas"
	"github.com/oneconcern/datapack/pkg/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// StorePieces writes every piece to the content store and reports the
// resulting piece descriptors, content ids filled in.
//
// Puts run concurrently, bounded by the Concurrency option: every piece
// is an independent put keyed by its own content. Identical replicas
// land on the same content key, so storing a replica round costs no
// extra space; the descriptors still carry one entry per copy.
//
// The first failed put aborts the whole operation and reports the
// original error. Pieces already stored at that point are left in the
// store: cleaning them up is the store's garbage collection problem.
func StorePieces(ctx context.Context, store cas.Store, pieces [][]byte, opts ...Option) ([]model.PieceInfo, error) {
	options := defaultSettings(opts)

	infos := make([]model.PieceInfo, len(pieces))
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(options.concurrency)

	for i := range pieces {
		i := i
		group.Go(func() error {
			piece := pieces[i]
			res, err := store.Put(gctx, bytes.NewReader(piece))
			if err != nil {
				options.l.Error("piece put failed", zap.Int("piece", i), zap.Error(err))
				return err
			}
			infos[i] = model.PieceInfo{
				Index:     uint32(i),
				Size:      uint64(len(piece)),
				Checksum:  options.digest(piece),
				ContentID: res.Key.String(),
			}
			options.l.Debug("piece stored",
				zap.Int("piece", i),
				zap.Stringer("key", res.Key),
				zap.Bool("duplicate", res.Found),
			)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return infos, nil
}
