package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

// verifyCmd reconstructs an object and discards the bytes: the
// integrity check without the download.
var verifyCmd = &cobra.Command{
	Use:   "verify <manifest-id>",
	Short: "Verify the integrity of a stored object",
	Long: `Verify fetches every piece of the object, checks each against its
manifest checksum (falling back to replicas where recorded) and checks
the reassembled whole against the object checksum. Nothing is written.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		pipeline, closer, err := paramsToPipeline(ctx, datapackFlags)
		defer func() { _ = closer() }()
		if err != nil {
			wrapFatalln("create pipeline", err)
			return
		}

		manifest, err := pipeline.Verify(ctx, args[0])
		if err != nil {
			wrapFatalln("verify object", err)
			return
		}
		infoLogger.Printf("OK: %d bytes in %d piece(s), replication factor %d",
			manifest.OriginalSize, manifest.PieceCount, manifest.ReplicationFactor)
	},
}

func init() {
	addConcurrencyFactorFlag(verifyCmd)

	rootCmd.AddCommand(verifyCmd)
}
