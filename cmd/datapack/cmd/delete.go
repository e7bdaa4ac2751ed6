package cmd

import (
	"context"

	"github.com/oneconcern/datapack/pkg/cas"
	"github.com/spf13/cobra"
)

// deleteCmd removes one object by content id. Deleting a piece of a
// chunked object breaks that object: there is no reference counting.
var deleteCmd = &cobra.Command{
	Use:   "delete <content-id>",
	Short: "Delete a stored object by content id",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		pipeline, closer, err := paramsToPipeline(ctx, datapackFlags)
		defer func() { _ = closer() }()
		if err != nil {
			wrapFatalln("create pipeline", err)
			return
		}

		key, err := cas.KeyFromString(args[0])
		if err != nil {
			wrapFatalln("parse content id", err)
			return
		}
		if err = pipeline.Store().Delete(ctx, key); err != nil {
			wrapFatalln("delete object", err)
			return
		}
		infoLogger.Printf("Deleted %s", args[0])
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
