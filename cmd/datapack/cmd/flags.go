// Copyright © 2018 One Concern

package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/docker/go-units"
	"github.com/go-openapi/runtime/flagext"
	"github.com/oneconcern/datapack/pkg/cas"
	"github.com/oneconcern/datapack/pkg/core"
	"github.com/oneconcern/datapack/pkg/dlogger"
	"github.com/oneconcern/datapack/pkg/storage"
	"github.com/oneconcern/datapack/pkg/storage/bdgr"
	"github.com/oneconcern/datapack/pkg/storage/gcs"
	"github.com/oneconcern/datapack/pkg/storage/localfs"
	"github.com/oneconcern/datapack/pkg/storage/sthree"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultStoreLocation = "localfs://.datapack/objects"

type flagsT struct {
	root struct {
		logLevel string
		store    string
		credFile string
	}
	pack struct {
		pieceSize   flagext.ByteSize
		maxPieces   int
		replication uint32
		concurrency int
	}
	crypt struct {
		encrypt   bool
		algorithm string
		key       string
	}
	object struct {
		file        string
		destination string
	}
	archive struct {
		file      string
		gzip      bool
		verifyIDs bool
		all       bool
	}
}

var datapackFlags = flagsT{}

func addLogLevelFlag(cmd *cobra.Command) string {
	loglevel := "loglevel"
	cmd.PersistentFlags().StringVar(&datapackFlags.root.logLevel, loglevel, "info", "The logging level (debug, info, warn, error, none)")
	return loglevel
}

func addStoreFlag(cmd *cobra.Command) string {
	store := "store"
	cmd.PersistentFlags().StringVar(&datapackFlags.root.store, store, "",
		"The store to package objects into, as a URL: localfs://<dir>, badger://<dir>, gs://<bucket> or s3://<bucket>")
	return store
}

func addCredentialFlag(cmd *cobra.Command) string {
	credential := "credential"
	cmd.PersistentFlags().StringVar(&datapackFlags.root.credFile, credential, "", "The path to the credentials file for cloud backends")
	return credential
}

func addPieceSizeFlag(cmd *cobra.Command) string {
	pieceSize := "piece-size"
	datapackFlags.pack.pieceSize = flagext.ByteSize(core.DefaultPieceSize)
	cmd.Flags().Var(&datapackFlags.pack.pieceSize, pieceSize,
		"The size of the pieces an object is split into, e.g. 2MB. Objects no larger than one piece are stored whole")
	return pieceSize
}

func addMaxPiecesFlag(cmd *cobra.Command) string {
	maxPieces := "max-pieces"
	cmd.Flags().IntVar(&datapackFlags.pack.maxPieces, maxPieces, core.DefaultMaxPieces,
		"The maximum number of pieces one object may split into")
	return maxPieces
}

func addReplicationFlag(cmd *cobra.Command) string {
	replication := "replication"
	cmd.Flags().Uint32Var(&datapackFlags.pack.replication, replication, 0,
		"The number of full copies of the piece set to record, for fault tolerance. 1 means no replication")
	return replication
}

func addConcurrencyFactorFlag(cmd *cobra.Command) string {
	concurrencyFactor := "concurrency-factor"
	cmd.Flags().IntVar(&datapackFlags.pack.concurrency, concurrencyFactor, core.DefaultPieceConcurrency,
		"Heuristic on the amount of concurrency used by piece transfers. "+
			"Turn this value down to use less memory, increase for faster operations.")
	return concurrencyFactor
}

func addEncryptFlag(cmd *cobra.Command) string {
	encrypt := "encrypt"
	cmd.Flags().BoolVar(&datapackFlags.crypt.encrypt, encrypt, false,
		"Encrypt the object before chunking, so that stored pieces carry no plaintext")
	return encrypt
}

func addAlgorithmFlag(cmd *cobra.Command) string {
	algorithm := "algorithm"
	cmd.Flags().StringVar(&datapackFlags.crypt.algorithm, algorithm, "aes-256-gcm",
		"The cipher used with --encrypt: aes-256-gcm or aes-256-ctr")
	return algorithm
}

func addKeyFlag(cmd *cobra.Command) string {
	key := "key"
	cmd.Flags().StringVar(&datapackFlags.crypt.key, key, "",
		"Hex encoded key material. On upload, left empty to have a key generated and printed. You own its persistence: it is never stored with the data")
	return key
}

func addFileFlag(cmd *cobra.Command) string {
	file := "file"
	cmd.Flags().StringVar(&datapackFlags.object.file, file, "", "The file to read the object from, - for stdin")
	return file
}

func addDestinationFlag(cmd *cobra.Command) string {
	destination := "destination"
	cmd.Flags().StringVar(&datapackFlags.object.destination, destination, "", "The file to write to, - for stdout")
	return destination
}

func addArchiveFileFlag(cmd *cobra.Command) string {
	file := "archive"
	cmd.Flags().StringVar(&datapackFlags.archive.file, file, "", "The archive file")
	return file
}

func addGzipFlag(cmd *cobra.Command) string {
	gz := "gzip"
	cmd.Flags().BoolVar(&datapackFlags.archive.gzip, gz, false, "Gzip compress the archive")
	return gz
}

func addVerifyIDsFlag(cmd *cobra.Command) string {
	verify := "verify-ids"
	cmd.Flags().BoolVar(&datapackFlags.archive.verifyIDs, verify, false,
		"Verify that every imported object hashes to the content id declared by the archive metadata")
	return verify
}

func addAllFlag(cmd *cobra.Command) string {
	all := "all"
	cmd.Flags().BoolVar(&datapackFlags.archive.all, all, false, "Archive every object in the store")
	return all
}

// paramsToBackend builds the raw storage backend selected by the store
// URL. The returned closer releases backends holding locks (badger).
func paramsToBackend(ctx context.Context, flags flagsT) (storage.Store, func() error, error) {
	noop := func() error { return nil }
	location := flags.root.store
	if location == "" {
		location = defaultStoreLocation
	}
	parts := strings.SplitN(location, "://", 2)
	if len(parts) != 2 || parts[1] == "" {
		return nil, noop, fmt.Errorf("invalid store %q, expected scheme://location", location)
	}
	scheme, target := parts[0], parts[1]

	logger, err := dlogger.GetLogger(flags.root.logLevel)
	if err != nil {
		return nil, noop, err
	}

	switch scheme {
	case "localfs":
		return localfs.New(afero.NewBasePathFs(afero.NewOsFs(), filepath.Clean(target))), noop, nil
	case "badger":
		store, erb := bdgr.New(filepath.Clean(target), bdgr.Logger(logger))
		if erb != nil {
			return nil, noop, erb
		}
		return store, store.Close, nil
	case "gs":
		store, erg := gcs.New(ctx, target, gcs.Credentials(flags.root.credFile), gcs.Logger(logger))
		if erg != nil {
			return nil, noop, erg
		}
		return store, noop, nil
	case "s3":
		return sthree.New(sthree.Bucket(target), sthree.Logger(logger)), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown store scheme %q", scheme)
	}
}

// paramsToPipeline assembles the packaging pipeline from flags and config
func paramsToPipeline(ctx context.Context, flags flagsT) (*core.Pipeline, func() error, error) {
	backend, closer, err := paramsToBackend(ctx, flags)
	if err != nil {
		return nil, closer, err
	}
	logger, err := dlogger.GetLogger(flags.root.logLevel)
	if err != nil {
		return nil, closer, err
	}

	store, err := cas.New(
		cas.Backend(storage.Instrument(logger, backend)),
		cas.Logger(logger),
	)
	if err != nil {
		return nil, closer, err
	}

	pieceSize := uint64(flags.pack.pieceSize)
	if config != nil && config.PieceSize != "" && (pieceSize == 0 || pieceSize == uint64(core.DefaultPieceSize)) {
		fromConfig, erp := units.RAMInBytes(config.PieceSize)
		if erp != nil {
			return nil, closer, fmt.Errorf("invalid pieceSize in config: %w", erp)
		}
		pieceSize = uint64(fromConfig)
	}
	replication := flags.pack.replication
	if replication == 0 {
		replication = 1
	}

	pipeline, err := core.New(
		core.ContentStore(store),
		core.PieceSize(pieceSize),
		core.MaxPieces(uint32(flags.pack.maxPieces)),
		core.ReplicationFactor(replication),
		core.PieceConcurrency(flags.pack.concurrency),
		core.Logger(logger),
		core.Progress(func(stage string) {
			logger.Debug("stage", zap.String("stage", stage))
		}),
	)
	return pipeline, closer, err
}
