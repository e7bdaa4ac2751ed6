package cmd

import (
	"context"
	"os"

	"github.com/oneconcern/datapack/pkg/core"
	"github.com/spf13/cobra"
)

// downloadCmd is the command to restore one object from the store.
var downloadCmd = &cobra.Command{
	Use:   "download <manifest-id>",
	Short: "Download an object",
	Long: `Download the object a manifest id points at: fetch its pieces, verify
every one of them and the reassembled whole, then write the object out.

Encrypted objects need --key to come back as plaintext; without it the
verified sealed envelope is written instead.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		pipeline, closer, err := paramsToPipeline(ctx, datapackFlags)
		defer func() { _ = closer() }()
		if err != nil {
			wrapFatalln("create pipeline", err)
			return
		}

		var opts []core.DownloadOption
		if datapackFlags.crypt.key != "" {
			opts = append(opts, core.Key(datapackFlags.crypt.key))
		}
		object, err := pipeline.Download(ctx, args[0], opts...)
		if err != nil {
			wrapFatalln("download object", err)
			return
		}

		destination := datapackFlags.object.destination
		if destination == "" || destination == "-" {
			if _, err = os.Stdout.Write(object); err != nil {
				wrapFatalln("write object to stdout", err)
			}
			return
		}
		if err = os.WriteFile(destination, object, 0600); err != nil {
			wrapFatalln("write object", err)
			return
		}
		infoLogger.Printf("Downloaded %d bytes to %s", len(object), destination)
	},
}

func init() {
	addDestinationFlag(downloadCmd)
	addKeyFlag(downloadCmd)
	addConcurrencyFactorFlag(downloadCmd)

	rootCmd.AddCommand(downloadCmd)
}
