package cmd

import (
	"context"
	"io"
	"os"

	"github.com/oneconcern/datapack/pkg/cipher"
	"github.com/oneconcern/datapack/pkg/core"
	"github.com/spf13/cobra"
)

// uploadCmd is the command to package one object into the store.
var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload an object",
	Long: `Upload an object: optionally encrypt it, split it into pieces, store the
pieces and print the manifest id to use for download.

With --encrypt and no --key, a key is generated and printed once: persist
it yourself, it is never stored with the data.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		pipeline, closer, err := paramsToPipeline(ctx, datapackFlags)
		defer func() { _ = closer() }()
		if err != nil {
			wrapFatalln("create pipeline", err)
			return
		}

		var source io.ReadCloser
		if datapackFlags.object.file == "" || datapackFlags.object.file == "-" {
			source = os.Stdin
		} else {
			source, err = os.Open(datapackFlags.object.file)
			if err != nil {
				wrapFatalln("open source file", err)
				return
			}
			defer source.Close()
		}

		var opts []core.UploadOption
		if datapackFlags.crypt.encrypt {
			alg, era := cipher.ParseAlgorithm(datapackFlags.crypt.algorithm)
			if era != nil {
				wrapFatalln("parse cipher algorithm", era)
				return
			}
			opts = append(opts, core.Encrypted(alg, datapackFlags.crypt.key))
		}

		res, err := pipeline.Upload(ctx, source, opts...)
		if err != nil {
			wrapFatalln("upload object", err)
			return
		}
		infoLogger.Printf("Uploaded manifest id:%s", res.ManifestID)
		if res.KeyMaterial != "" {
			infoLogger.Printf("Generated key (persist this, it will not be shown again):%s", res.KeyMaterial)
		}
		if res.Duplicate {
			infoLogger.Printf("An identical manifest was already stored")
		}
	},
}

func init() {
	addFileFlag(uploadCmd)
	addPieceSizeFlag(uploadCmd)
	addMaxPiecesFlag(uploadCmd)
	addReplicationFlag(uploadCmd)
	addConcurrencyFactorFlag(uploadCmd)
	addEncryptFlag(uploadCmd)
	addAlgorithmFlag(uploadCmd)
	addKeyFlag(uploadCmd)

	rootCmd.AddCommand(uploadCmd)
}
