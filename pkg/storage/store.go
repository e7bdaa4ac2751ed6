// Copyright © 2018 One Concern

package storage

import (
	"context"
	"io"
)

// MaxObjectSizeInMemory is the largest object the in-memory helpers accept
const MaxObjectSizeInMemory = 2 * 1024 * 1024 * 1024 // 2 gigs

const (
	// OverWrite replaces an existing object with the same key
	OverWrite = false

	// IfNotPresent makes Put fail with status.ErrExists when the key is already there
	IfNotPresent = true
)

// Store implementations know how to write entries to a K/V store.
//
// Typically this is something file system-like. Examples are S3, GCS, local FS,
// or an embedded key/value database. Implementations of this interface are
// assumed to be fairly simple.
//
// The last argument to Put selects exclusive-write semantics: pass
// storage.IfNotPresent to fail on an existing object, storage.OverWrite
// to replace it.
type Store interface {
	String() string
	Has(context.Context, string) (bool, error)
	Get(context.Context, string) (io.ReadCloser, error)
	Put(context.Context, string, io.Reader, bool) error
	Delete(context.Context, string) error
	Keys(context.Context) ([]string, error)
	Clear(context.Context) error
}

// PipeIO copies the reader to the writer through an io.Pipe, so that
// failures on the read side surface on the write side copy. It reports
// the number of bytes written.
func PipeIO(writer io.Writer, reader io.Reader) (int64, error) {
	pr, pw := io.Pipe()
	go func() {
		_, err := io.Copy(pw, reader)
		pw.CloseWithError(err)
	}()
	return io.Copy(writer, pr)
}
