package core

import (
	"context"
	"io"

	"github.com/oneconcern/datapack/pkg/cas"
	"github.com/oneconcern/datapack/pkg/cipher"
	"github.com/oneconcern/datapack/pkg/model"
	"github.com/oneconcern/datapack/pkg/shard"
	"go.uber.org/zap"
)

// Download restores the object a manifest id points at: fetch and
// validate the manifest, reconstruct verified bytes, then decrypt when
// the object is encrypted and key material was supplied.
//
// An encrypted object downloaded without a key comes back as its sealed
// envelope bytes, integrity verified but not decrypted.
func (p *Pipeline) Download(ctx context.Context, id string, opts ...DownloadOption) ([]byte, error) {
	var options downloadSettings
	for _, apply := range opts {
		apply(&options)
	}

	manifest, err := p.DownloadManifest(ctx, id)
	if err != nil {
		return nil, err
	}

	p.step(StageReconstructing)
	payload, err := shard.Reconstruct(ctx, manifest, p.store,
		shard.Digest(p.digest), shard.Concurrency(p.concurrency), shard.Logger(p.l))
	if err != nil {
		return nil, err
	}

	if manifest.Encrypted && options.keyMaterial != "" {
		p.step(StageDecrypting)
		env, erd := cipher.UnmarshalEnvelope(payload)
		if erd != nil {
			return nil, erd
		}
		if payload, erd = cipher.Decrypt(env, options.keyMaterial); erd != nil {
			return nil, erd
		}
	}

	p.l.Info("object downloaded",
		zap.String("manifest", id),
		zap.Int("size", len(payload)),
	)
	p.step(StageDone)
	return payload, nil
}

// DownloadManifest fetches, parses and validates a manifest without
// touching any piece.
func (p *Pipeline) DownloadManifest(ctx context.Context, id string) (*model.Manifest, error) {
	p.step(StageFetchingManifest)
	key, err := cas.KeyFromString(id)
	if err != nil {
		return nil, err
	}
	rdr, err := p.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rdr.Close()
	encoded, err := io.ReadAll(rdr)
	if err != nil {
		return nil, err
	}
	return model.UnmarshalManifest(encoded)
}

// Verify reconstructs the object behind a manifest id and discards the
// bytes, reporting the manifest. The integrity check without the
// download.
func (p *Pipeline) Verify(ctx context.Context, id string) (*model.Manifest, error) {
	manifest, err := p.DownloadManifest(ctx, id)
	if err != nil {
		return nil, err
	}

	p.step(StageReconstructing)
	if _, err = shard.Reconstruct(ctx, manifest, p.store,
		shard.Digest(p.digest), shard.Concurrency(p.concurrency), shard.Logger(p.l)); err != nil {
		return nil, err
	}

	p.l.Info("object verified", zap.String("manifest", id))
	p.step(StageDone)
	return manifest, nil
}
