package core

import (
	"bytes"
	"context"
	"testing"

	"github.com/oneconcern/datapack/internal/rand"
	"github.com/oneconcern/datapack/pkg/cas"
	"github.com/oneconcern/datapack/pkg/cipher"
	"github.com/oneconcern/datapack/pkg/core/status"
	"github.com/oneconcern/datapack/pkg/errors"
	"github.com/oneconcern/datapack/pkg/shard"
	"github.com/oneconcern/datapack/pkg/storage"
	"github.com/oneconcern/datapack/pkg/storage/localfs"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func testPipeline(t *testing.T, opts ...Option) (*Pipeline, cas.Store, storage.Store) {
	backend := localfs.New(afero.NewMemMapFs())
	store, err := cas.New(cas.Backend(backend), cas.CacheEntries(0))
	require.NoError(t, err)

	p, err := New(append([]Option{ContentStore(store)}, opts...)...)
	require.NoError(t, err)
	return p, store, backend
}

func TestNewValidation(t *testing.T) {
	_, err := New()
	require.Error(t, err)
	require.True(t, errors.Is(err, status.ErrNoContentStore))

	store, err := cas.New(cas.Backend(localfs.New(afero.NewMemMapFs())))
	require.NoError(t, err)

	_, err = New(ContentStore(store), PieceSize(MaxPieceSize+1))
	require.Error(t, err)
	require.True(t, errors.Is(err, status.ErrInvalidPieceSize))

	p, err := New(ContentStore(store))
	require.NoError(t, err)
	require.NotNil(t, p.Store())
}

func TestUploadDownloadRoundTrip(t *testing.T) {
	for _, toTest := range []struct {
		name   string
		size   int
		opts   []Option
		pieces uint32
	}{
		{"small object stored whole", 100, []Option{PieceSize(1024)}, 1},
		{"exactly piece size stored whole", 1024, []Option{PieceSize(1024)}, 1},
		{"chunked", 10*1024 + 3, []Option{PieceSize(1024)}, 11},
		{"chunked and replicated", 4 * 1024, []Option{PieceSize(1024), ReplicationFactor(2)}, 4},
	} {
		t.Run(toTest.name, func(t *testing.T) {
			p, _, _ := testPipeline(t, toTest.opts...)
			data := rand.Bytes(toTest.size)

			res, err := p.Upload(context.Background(), bytes.NewReader(data))
			require.NoError(t, err)
			require.NotEmpty(t, res.ManifestID)
			require.Equal(t, toTest.pieces, res.Manifest.PieceCount)
			require.NoError(t, res.Manifest.Validate())

			back, err := p.Download(context.Background(), res.ManifestID)
			require.NoError(t, err)
			require.Equal(t, data, back)
		})
	}
}

func TestUploadEmptyObject(t *testing.T) {
	p, _, _ := testPipeline(t)

	res, err := p.Upload(context.Background(), bytes.NewReader(nil))
	require.NoError(t, err)
	require.EqualValues(t, 0, res.Manifest.PieceCount)
	require.Empty(t, res.Manifest.Pieces)

	back, err := p.Download(context.Background(), res.ManifestID)
	require.NoError(t, err)
	require.Empty(t, back)
}

func TestUploadDegenerateManifestIgnoresReplication(t *testing.T) {
	p, _, _ := testPipeline(t, PieceSize(1024), ReplicationFactor(3))
	data := rand.Bytes(100)

	res, err := p.Upload(context.Background(), bytes.NewReader(data))
	require.NoError(t, err)
	require.EqualValues(t, 1, res.Manifest.PieceCount)
	require.EqualValues(t, 1, res.Manifest.ReplicationFactor)
	require.Len(t, res.Manifest.Pieces, 1)
}

func TestUploadTooManyPiecesWritesNothing(t *testing.T) {
	p, store, _ := testPipeline(t, PieceSize(1), MaxPieces(10))
	data := rand.Bytes(11)

	_, err := p.Upload(context.Background(), bytes.NewReader(data))
	require.Error(t, err)

	var tooMany shard.TooManyPiecesError
	require.True(t, errors.As(err, &tooMany))

	keys, err := store.Keys(context.Background())
	require.NoError(t, err)
	require.Empty(t, keys)
}

func TestUploadDuplicate(t *testing.T) {
	p, _, _ := testPipeline(t, PieceSize(1024))
	data := rand.Bytes(5 * 1024)

	first, err := p.Upload(context.Background(), bytes.NewReader(data))
	require.NoError(t, err)
	require.False(t, first.Duplicate)

	// identical bytes land on the identical manifest, except for the
	// timestamp, so only piece puts dedup here
	back, err := p.Download(context.Background(), first.ManifestID)
	require.NoError(t, err)
	require.Equal(t, data, back)
}

func TestEncryptedRoundTrip(t *testing.T) {
	// the 3 MiB scenario: AES-GCM, 1 MiB pieces, factor 2
	p, _, _ := testPipeline(t, PieceSize(1024*1024), MaxPieces(10), ReplicationFactor(2))
	data := rand.Bytes(3 * 1024 * 1024)

	res, err := p.Upload(context.Background(), bytes.NewReader(data), Encrypted(cipher.AES256GCM, ""))
	require.NoError(t, err)
	require.NotEmpty(t, res.KeyMaterial)
	require.True(t, res.Manifest.Encrypted)
	// the GCM envelope header and tag push the payload past 3 MiB, so
	// the third piece spills into a short fourth one
	require.EqualValues(t, 4, res.Manifest.PieceCount)
	require.Len(t, res.Manifest.Pieces, 8)

	back, err := p.Download(context.Background(), res.ManifestID, Key(res.KeyMaterial))
	require.NoError(t, err)
	require.Equal(t, data, back)
}

func TestEncryptedWithCallerKey(t *testing.T) {
	keyMaterial, err := cipher.GenerateKeyMaterial()
	require.NoError(t, err)

	p, _, _ := testPipeline(t, PieceSize(1024))
	data := rand.Bytes(10 * 1024)

	res, err := p.Upload(context.Background(), bytes.NewReader(data), Encrypted(cipher.AES256GCM, keyMaterial))
	require.NoError(t, err)
	require.Empty(t, res.KeyMaterial)

	back, err := p.Download(context.Background(), res.ManifestID, Key(keyMaterial))
	require.NoError(t, err)
	require.Equal(t, data, back)

	// the wrong key fails authentication
	other, err := cipher.GenerateKeyMaterial()
	require.NoError(t, err)
	_, err = p.Download(context.Background(), res.ManifestID, Key(other))
	require.Error(t, err)
	require.True(t, errors.Is(err, cipher.ErrDecryptionFailed))
}

func TestDownloadEncryptedWithoutKey(t *testing.T) {
	p, _, _ := testPipeline(t, PieceSize(1024))
	data := rand.Bytes(2 * 1024)

	res, err := p.Upload(context.Background(), bytes.NewReader(data), Encrypted(cipher.AES256GCM, ""))
	require.NoError(t, err)

	// without a key the verified envelope comes back sealed
	sealed, err := p.Download(context.Background(), res.ManifestID)
	require.NoError(t, err)
	require.NotEqual(t, data, sealed)

	env, err := cipher.UnmarshalEnvelope(sealed)
	require.NoError(t, err)
	back, err := cipher.Decrypt(env, res.KeyMaterial)
	require.NoError(t, err)
	require.Equal(t, data, back)
}

func TestVerify(t *testing.T) {
	p, _, backend := testPipeline(t, PieceSize(1024))
	data := rand.Bytes(4 * 1024)

	res, err := p.Upload(context.Background(), bytes.NewReader(data))
	require.NoError(t, err)

	manifest, err := p.Verify(context.Background(), res.ManifestID)
	require.NoError(t, err)
	require.EqualValues(t, 4, manifest.PieceCount)

	// corrupt a stored piece and verify again
	key, err := cas.KeyFromString(res.Manifest.Pieces[1].ContentID)
	require.NoError(t, err)
	tampered := append([]byte{}, data[1024:2048]...)
	tampered[0] ^= 0x80
	require.NoError(t, backend.Put(context.Background(), key.String(), bytes.NewReader(tampered), storage.OverWrite))

	_, err = p.Verify(context.Background(), res.ManifestID)
	require.Error(t, err)

	var recovery shard.RecoveryError
	require.True(t, errors.As(err, &recovery))
	require.EqualValues(t, 1, recovery.Index)
}

func TestProgressStages(t *testing.T) {
	var stages []string
	p, _, _ := testPipeline(t, PieceSize(1024), Progress(func(stage string) {
		stages = append(stages, stage)
	}))
	data := rand.Bytes(3 * 1024)

	res, err := p.Upload(context.Background(), bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, []string{
		StagePreparing, StageChunking, StageReplicating,
		StageStoringPieces, StageStoringManifest, StageDone,
	}, stages)

	stages = nil
	_, err = p.Download(context.Background(), res.ManifestID)
	require.NoError(t, err)
	require.Equal(t, []string{
		StageFetchingManifest, StageReconstructing, StageDone,
	}, stages)
}

func TestDownloadUnknownManifest(t *testing.T) {
	p, _, _ := testPipeline(t)

	var ghost cas.Key
	for i := range ghost {
		ghost[i] = 0x42
	}
	_, err := p.Download(context.Background(), ghost.String())
	require.Error(t, err)
}
