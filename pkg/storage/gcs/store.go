// Copyright © 2018 One Concern

// Package gcs implements the storage.Store interface for the
// Google Cloud Storage backend.
package gcs

import (
	"context"
	"io"

	gcsStorage "cloud.google.com/go/storage"
	"github.com/oneconcern/datapack/pkg/storage"
	"github.com/oneconcern/datapack/pkg/storage/status"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

type gcs struct {
	client         *gcsStorage.Client
	readOnlyClient *gcsStorage.Client
	bucket         string
	credentialFile string
	l              *zap.Logger
}

var _ storage.Store = &gcs{}

// New builds a store for the given GCS bucket.
//
// A read-only client backs Get/Has/Keys so that reads keep working with
// credentials that lack write permissions.
func New(ctx context.Context, bucket string, opts ...Option) (storage.Store, error) {
	googleStore := gcs{
		bucket: bucket,
		l:      zap.NewNop(),
	}
	for _, apply := range opts {
		apply(&googleStore)
	}

	readOpts := []option.ClientOption{option.WithScopes(gcsStorage.ScopeReadOnly)}
	writeOpts := []option.ClientOption{option.WithScopes(gcsStorage.ScopeFullControl)}
	if googleStore.credentialFile != "" {
		creds := option.WithCredentialsFile(googleStore.credentialFile)
		readOpts = append(readOpts, creds)
		writeOpts = append(writeOpts, creds)
	}

	var err error
	googleStore.readOnlyClient, err = gcsStorage.NewClient(ctx, readOpts...)
	if err != nil {
		return nil, toSentinelErrors(err)
	}
	googleStore.client, err = gcsStorage.NewClient(ctx, writeOpts...)
	if err != nil {
		return nil, toSentinelErrors(err)
	}
	return &googleStore, nil
}

func (g *gcs) String() string {
	return "gcs@" + g.bucket
}

func (g *gcs) Has(ctx context.Context, objectName string) (bool, error) {
	_, err := g.readOnlyClient.Bucket(g.bucket).Object(objectName).Attrs(ctx)
	if err != nil {
		if err == gcsStorage.ErrObjectNotExist {
			return false, nil
		}
		return false, toSentinelErrors(err)
	}
	return true, nil
}

// gcsReader exposes WriteTo so that copies out of the store skip the
// intermediate buffer used by the generic path.
type gcsReader struct {
	objectReader io.ReadCloser
}

func (r gcsReader) WriteTo(writer io.Writer) (int64, error) {
	return storage.PipeIO(writer, r.objectReader)
}

func (r gcsReader) Close() error {
	return r.objectReader.Close()
}

func (r gcsReader) Read(p []byte) (int, error) {
	return r.objectReader.Read(p)
}

func (g *gcs) Get(ctx context.Context, objectName string) (io.ReadCloser, error) {
	g.l.Debug("gcs get", zap.String("object", objectName))
	objectReader, err := g.readOnlyClient.Bucket(g.bucket).Object(objectName).NewReader(ctx)
	if err != nil {
		if err == gcsStorage.ErrObjectNotExist {
			return nil, status.ErrNotFound.Wrap(err)
		}
		return nil, toSentinelErrors(err)
	}
	return gcsReader{objectReader: objectReader}, nil
}

func (g *gcs) Put(ctx context.Context, objectName string, reader io.Reader, exclusive bool) error {
	g.l.Debug("gcs put", zap.String("object", objectName), zap.Bool("exclusive", exclusive))
	object := g.client.Bucket(g.bucket).Object(objectName)
	if exclusive {
		object = object.If(gcsStorage.Conditions{DoesNotExist: true})
	}
	// the object is finalized when the writer is closed
	writer := object.NewWriter(ctx)
	if _, err := io.Copy(writer, reader); err != nil {
		_ = writer.Close()
		return toSentinelErrors(err)
	}
	if err := writer.Close(); err != nil {
		return toSentinelErrors(err)
	}
	return nil
}

func (g *gcs) Delete(ctx context.Context, objectName string) error {
	g.l.Debug("gcs delete", zap.String("object", objectName))
	if err := g.client.Bucket(g.bucket).Object(objectName).Delete(ctx); err != nil {
		if err == gcsStorage.ErrObjectNotExist {
			return status.ErrNotFound.Wrap(err)
		}
		return toSentinelErrors(err)
	}
	return nil
}

func (g *gcs) Keys(ctx context.Context) ([]string, error) {
	g.l.Debug("gcs keys")
	var keys []string
	objectsIterator := g.readOnlyClient.Bucket(g.bucket).Objects(ctx, nil)
	for {
		attrs, err := objectsIterator.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, toSentinelErrors(err)
		}
		keys = append(keys, attrs.Name)
	}
	return keys, nil
}

func (g *gcs) Clear(ctx context.Context) error {
	return status.ErrNotImplemented
}
