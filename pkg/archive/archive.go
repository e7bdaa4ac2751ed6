// Package archive packs independently stored objects into one portable,
// length prefixed binary blob and unpacks such blobs back.
//
// An archive is a sequence of [u32 big-endian length][payload] records.
// Record 0 is a UTF-8 JSON metadata block; records 1..N carry the raw
// bytes of the objects listed in the metadata's root ids, in order.
// The whole stream may be gzip compressed: compression is a transport
// wrapper around the finished archive, detected by the leading gzip
// magic bytes, not part of the record framing.
package archive

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/oneconcern/datapack/pkg/cas"
	"github.com/oneconcern/datapack/pkg/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// MaxRecordSize caps the declared length of a single record on decode
const MaxRecordSize = 1 << 30 // 1 gig

var gzipMagic = []byte{0x1f, 0x8b}

// Archive holds one decoded or to-be-encoded archive: the metadata
// record and the payload records in root id order.
type Archive struct {
	Metadata model.ArchiveMetadata
	Payloads [][]byte
}

// Build fetches every object listed in ids from the content store and
// assembles an archive, metadata filled in.
//
// Fetches run concurrently, bounded by the Concurrency option; payload
// order follows ids. The metadata checksum covers the concatenated
// payload records in order.
func Build(ctx context.Context, store cas.Store, ids []string, opts ...Option) (*Archive, error) {
	options := defaultSettings(opts)

	payloads := make([][]byte, len(ids))
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(options.concurrency)

	for i, id := range ids {
		i, id := i, id
		group.Go(func() error {
			key, err := cas.KeyFromString(id)
			if err != nil {
				return err
			}
			rdr, err := store.Get(gctx, key)
			if err != nil {
				options.l.Error("archive object fetch failed", zap.String("id", id), zap.Error(err))
				return err
			}
			defer rdr.Close()
			payloads[i], err = io.ReadAll(rdr)
			return err
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	var totalSize uint64
	concatenated := make([]byte, 0)
	for _, payload := range payloads {
		totalSize += uint64(len(payload))
		concatenated = append(concatenated, payload...)
	}

	return &Archive{
		Metadata: model.ArchiveMetadata{
			Version:   model.CurrentArchiveVersion,
			CreatedAt: model.NewTimeStamp(),
			ItemCount: uint32(len(ids)),
			TotalSize: totalSize,
			RootIDs:   append([]string{}, ids...),
			Checksum:  options.digest(concatenated),
		},
		Payloads: payloads,
	}, nil
}

// Encode writes the framed records, metadata first. With the Compressed
// option the entire stream is gzip wrapped.
func (a *Archive) Encode(w io.Writer, opts ...EncodeOption) error {
	var encodeOpts encodeSettings
	for _, apply := range opts {
		apply(&encodeOpts)
	}

	out := w
	var gz *gzip.Writer
	if encodeOpts.compressed {
		gz = gzip.NewWriter(w)
		out = gz
	}

	meta, err := model.MarshalArchiveMetadata(&a.Metadata)
	if err != nil {
		return err
	}
	if err = writeRecord(out, meta); err != nil {
		return err
	}
	for _, payload := range a.Payloads {
		if err = writeRecord(out, payload); err != nil {
			return err
		}
	}
	if gz != nil {
		return gz.Close()
	}
	return nil
}

// Decode reads an archive, reversing compression when the stream leads
// with the gzip magic bytes.
//
// Truncated records, oversized declared lengths, metadata that is not
// valid JSON and record counts inconsistent with the metadata all fail
// with ErrParse.
func Decode(r io.Reader) (*Archive, error) {
	buffered := bufio.NewReader(r)
	head, err := buffered.Peek(len(gzipMagic))
	if err == nil && bytes.Equal(head, gzipMagic) {
		gz, erz := gzip.NewReader(buffered)
		if erz != nil {
			return nil, ErrParse.Wrap(erz)
		}
		defer gz.Close()
		return decodeRecords(bufio.NewReader(gz))
	}
	return decodeRecords(buffered)
}

func decodeRecords(r *bufio.Reader) (*Archive, error) {
	meta, err := readRecord(r)
	if err != nil {
		if err == io.EOF {
			return nil, ErrParse.Wrap(fmt.Errorf("empty archive"))
		}
		return nil, err
	}
	metadata, err := model.UnmarshalArchiveMetadata(meta)
	if err != nil {
		return nil, ErrParse.Wrap(err)
	}

	payloads := make([][]byte, 0, metadata.ItemCount)
	for {
		payload, err := readRecord(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		payloads = append(payloads, payload)
	}
	if len(payloads) != int(metadata.ItemCount) {
		return nil, ErrParse.Wrap(fmt.Errorf("metadata declares %d items, archive carries %d records", metadata.ItemCount, len(payloads)))
	}
	return &Archive{Metadata: *metadata, Payloads: payloads}, nil
}

// Verify recomputes the checksum over the concatenated payloads and
// compares it to the metadata. Decode does not call this: payload
// verification is the caller's opt-in.
func (a *Archive) Verify(opts ...Option) error {
	options := defaultSettings(opts)
	concatenated := make([]byte, 0)
	for _, payload := range a.Payloads {
		concatenated = append(concatenated, payload...)
	}
	if actual := options.digest(concatenated); actual != a.Metadata.Checksum {
		return ErrChecksum.Wrap(fmt.Errorf("expected %s, got %s", a.Metadata.Checksum, actual))
	}
	return nil
}

func writeRecord(w io.Writer, payload []byte) error {
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(payload)))
	if _, err := w.Write(length[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// readRecord reads one framed record. A clean end of stream surfaces as
// io.EOF; a header or payload cut short mid-record fails with ErrParse.
func readRecord(r io.Reader) ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, ErrParse.Wrap(fmt.Errorf("truncated record header: %w", err))
	}
	length := binary.BigEndian.Uint32(header[:])
	if length > MaxRecordSize {
		return nil, ErrParse.Wrap(fmt.Errorf("record declares %d bytes, limit is %d", length, MaxRecordSize))
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, ErrParse.Wrap(fmt.Errorf("record declares %d bytes, stream ends early: %w", length, err))
	}
	return payload, nil
}
