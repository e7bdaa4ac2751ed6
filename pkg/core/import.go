package core

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/oneconcern/datapack/pkg/archive"
	"github.com/oneconcern/datapack/pkg/core/status"
	"github.com/oneconcern/datapack/pkg/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ImportResult reports a completed archive import.
type ImportResult struct {
	// Metadata is the archive's own metadata record
	Metadata model.ArchiveMetadata

	// Items carries one record per recovered object, in archive order.
	// Objects whose content id already existed in the store are flagged
	// as duplicates and left unchanged, never overwritten or dropped.
	Items []model.ItemRecord
}

// Import reads an archive and stores every recovered object in the
// content store, deriving an item record per object.
//
// With ImportVerifyIDs, every re-derived content id is checked against
// the archive metadata and a mismatch fails the import.
func (p *Pipeline) Import(ctx context.Context, r io.Reader, opts ...ImportOption) (ImportResult, error) {
	var options importSettings
	for _, apply := range opts {
		apply(&options)
	}

	p.step(StageParsingArchive)
	decoded, err := archive.Decode(r)
	if err != nil {
		return ImportResult{}, err
	}

	p.step(StageStoringItems)
	items := make([]model.ItemRecord, len(decoded.Payloads))
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(p.concurrency)

	for i := range decoded.Payloads {
		i := i
		group.Go(func() error {
			payload := decoded.Payloads[i]
			res, erp := p.store.Put(gctx, bytes.NewReader(payload))
			if erp != nil {
				return erp
			}
			id := res.Key.String()
			if options.verifyIDs && id != decoded.Metadata.RootIDs[i] {
				return status.ErrImportMismatch.Wrap(
					fmt.Errorf("record %d declares id %s, content hashes to %s", i+1, decoded.Metadata.RootIDs[i], id))
			}
			items[i] = model.ItemRecord{
				ContentID: id,
				Size:      uint64(len(payload)),
				CreatedAt: model.NewTimeStamp(),
				Duplicate: res.Found,
			}
			return nil
		})
	}
	if err = group.Wait(); err != nil {
		return ImportResult{}, err
	}

	p.l.Info("archive imported",
		zap.Uint32("items", decoded.Metadata.ItemCount),
		zap.Uint64("totalSize", decoded.Metadata.TotalSize),
	)
	p.step(StageDone)
	return ImportResult{Metadata: decoded.Metadata, Items: items}, nil
}
