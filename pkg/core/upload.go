package core

import (
	"bytes"
	"context"
	"io"

	"github.com/oneconcern/datapack/pkg/cipher"
	"github.com/oneconcern/datapack/pkg/model"
	"github.com/oneconcern/datapack/pkg/shard"
	"github.com/oneconcern/datapack/pkg/storage"
	"go.uber.org/zap"
)

// UploadResult reports a completed upload.
type UploadResult struct {
	// ManifestID is the content id the manifest lives at: the handle to
	// pass to Download later
	ManifestID string

	// Manifest describes the stored object
	Manifest *model.Manifest

	// KeyMaterial carries the generated key when encryption was requested
	// without one. The caller must persist it out of band: it is stored
	// neither in the manifest nor in any piece.
	KeyMaterial string

	// Duplicate reports that an identical manifest was already stored
	Duplicate bool
}

// Upload packages one object: optional encryption, chunking, replication,
// concurrent piece puts, then the manifest put, strictly in that order.
// A manifest referencing unstored pieces is never written.
//
// Objects not larger than the piece size skip the chunk, replicate and
// store-pieces steps and are stored whole under a degenerate manifest
// (one piece, no replication). Zero length objects store no pieces at
// all. Neither shortcut changes the download path's guarantees.
func (p *Pipeline) Upload(ctx context.Context, r io.Reader, opts ...UploadOption) (UploadResult, error) {
	var options uploadSettings
	for _, apply := range opts {
		apply(&options)
	}

	p.step(StagePreparing)
	payload, err := readAllInMemory(r, storage.MaxObjectSizeInMemory)
	if err != nil {
		return UploadResult{}, err
	}

	var result UploadResult
	encrypted := false
	if options.encrypt {
		p.step(StageEncrypting)
		env, erc := cipher.Encrypt(payload, options.keyMaterial, options.algorithm)
		if erc != nil {
			return UploadResult{}, erc
		}
		result.KeyMaterial = env.KeyMaterial
		if payload, erc = env.MarshalBinary(); erc != nil {
			return UploadResult{}, erc
		}
		encrypted = true
	}

	manifest := &model.Manifest{
		FormatVersion:     model.CurrentManifestVersion,
		OriginalSize:      uint64(len(payload)),
		OriginalChecksum:  p.digest(payload),
		PieceSize:         p.pieceSize,
		ReplicationFactor: 1,
		Algorithm:         model.SplitFixedSize,
		CreatedAt:         model.NewTimeStamp(),
		Encrypted:         encrypted,
	}

	switch {
	case len(payload) == 0:
		// nothing to store besides the manifest

	case uint64(len(payload)) <= p.pieceSize:
		// store the object whole, under a single piece manifest
		p.step(StageStoringPieces)
		infos, ers := shard.StorePieces(ctx, p.store, [][]byte{payload},
			shard.Digest(p.digest), shard.Concurrency(p.concurrency), shard.Logger(p.l))
		if ers != nil {
			return UploadResult{}, ers
		}
		manifest.PieceCount = 1
		manifest.Pieces = infos

	default:
		p.step(StageChunking)
		pieces, ers := shard.Split(payload, p.pieceSize, p.maxPieces)
		if ers != nil {
			return UploadResult{}, ers
		}

		p.step(StageReplicating)
		replicated := shard.Replicate(pieces, p.replication)

		p.step(StageStoringPieces)
		infos, ers := shard.StorePieces(ctx, p.store, replicated,
			shard.Digest(p.digest), shard.Concurrency(p.concurrency), shard.Logger(p.l))
		if ers != nil {
			return UploadResult{}, ers
		}
		manifest.PieceCount = uint32(len(pieces))
		manifest.ReplicationFactor = p.replication
		manifest.Pieces = infos
	}

	p.step(StageStoringManifest)
	encoded, err := model.MarshalManifest(manifest)
	if err != nil {
		return UploadResult{}, err
	}
	res, err := p.store.Put(ctx, bytes.NewReader(encoded))
	if err != nil {
		return UploadResult{}, err
	}

	result.ManifestID = res.Key.String()
	result.Manifest = manifest
	result.Duplicate = res.Found
	p.l.Info("object uploaded",
		zap.String("manifest", result.ManifestID),
		zap.Uint64("size", manifest.OriginalSize),
		zap.Uint32("pieces", manifest.PieceCount),
		zap.Uint32("replication", manifest.ReplicationFactor),
		zap.Bool("encrypted", encrypted),
		zap.Bool("duplicate", result.Duplicate),
	)
	p.step(StageDone)
	return result, nil
}
