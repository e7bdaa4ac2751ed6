package core

import (
	"context"
	"io"

	"github.com/oneconcern/datapack/pkg/archive"
	"github.com/oneconcern/datapack/pkg/model"
	"go.uber.org/zap"
)

// Export packages the objects behind the given content ids into one
// portable archive written to w. The ids address whole stored objects
// (for chunked objects, their manifests), fetched as-is: callers who
// want reconstructed plaintext export the manifest and let the importer
// download from it.
func (p *Pipeline) Export(ctx context.Context, w io.Writer, ids []string, opts ...ExportOption) (model.ArchiveMetadata, error) {
	var options exportSettings
	for _, apply := range opts {
		apply(&options)
	}

	p.step(StageBuildingArchive)
	built, err := archive.Build(ctx, p.store, ids,
		archive.Digest(p.digest), archive.Concurrency(p.concurrency), archive.Logger(p.l))
	if err != nil {
		return model.ArchiveMetadata{}, err
	}

	p.step(StageWritingArchive)
	var encodeOpts []archive.EncodeOption
	if options.compressed {
		encodeOpts = append(encodeOpts, archive.Compressed())
	}
	if err = built.Encode(w, encodeOpts...); err != nil {
		return model.ArchiveMetadata{}, err
	}

	p.l.Info("archive exported",
		zap.Uint32("items", built.Metadata.ItemCount),
		zap.Uint64("totalSize", built.Metadata.TotalSize),
		zap.Bool("compressed", options.compressed),
	)
	p.step(StageDone)
	return built.Metadata, nil
}
